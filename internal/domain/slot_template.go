package domain

import (
	"time"

	"github.com/google/uuid"
)

type SlotTemplate struct {
	ID              uuid.UUID `json:"id"`
	EstablishmentID uuid.UUID `json:"establishmentID"`
	DayOfWeek       int32     `json:"dayOfWeek"` // 0-6，0 表示周日
	StartTime       string    `json:"startTime"` // HH:MM
	EndTime         string    `json:"endTime"`   // HH:MM，不包含
	ServiceName     string    `json:"serviceName"`
	MaxCapacity     int32     `json:"maxCapacity"`
	DisplayOrder    int32     `json:"displayOrder"`
	CreatedAt       time.Time `json:"createdAt"`
	Version         int32     `json:"-"`
}
