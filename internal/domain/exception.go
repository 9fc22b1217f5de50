package domain

import (
	"time"

	"github.com/google/uuid"
)

type ExceptionType string

const (
	ExceptionTypePeriod    ExceptionType = "period"
	ExceptionTypeSingleDay ExceptionType = "single_day"
	ExceptionTypeService   ExceptionType = "service"
	ExceptionTypeTimeSlots ExceptionType = "time_slots"
)

type ExceptionStatus string

const (
	ExceptionStatusActive   ExceptionStatus = "active"
	ExceptionStatusInactive ExceptionStatus = "inactive"
)

// Exception 是数据库中保存的原始记录，哪些字段有效取决于 ExceptionType
type Exception struct {
	ID              uuid.UUID       `json:"id"`
	EstablishmentID uuid.UUID       `json:"establishmentID"`
	OrganizationID  uuid.UUID       `json:"organizationID"`
	ExceptionType   ExceptionType   `json:"exceptionType"`
	Date            *string         `json:"date,omitempty"`      // YYYY-MM-DD
	StartDate       *string         `json:"startDate,omitempty"` // YYYY-MM-DD
	EndDate         *string         `json:"endDate,omitempty"`   // YYYY-MM-DD
	SlotTemplateID  *uuid.UUID      `json:"slotTemplateID,omitempty"`
	ClosedSlots     []int32         `json:"closedSlots,omitempty"`
	Reason          string          `json:"reason"`
	Status          ExceptionStatus `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	Version         int32           `json:"-"`
}
