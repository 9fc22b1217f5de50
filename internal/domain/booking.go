package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID              uuid.UUID     `json:"id"`
	EstablishmentID uuid.UUID     `json:"establishmentID"`
	SlotTemplateID  uuid.UUID     `json:"slotTemplateID"`
	Date            string        `json:"date"` // YYYY-MM-DD
	Time            string        `json:"time"` // HH:MM
	PartySize       int32         `json:"partySize"`
	CustomerName    string        `json:"customerName"`
	CustomerEmail   string        `json:"customerEmail"`
	CustomerPhone   string        `json:"customerPhone"`
	Notes           string        `json:"notes"`
	Status          BookingStatus `json:"status"`
	CreatedAt       time.Time     `json:"createdAt"`
	Version         int32         `json:"-"`
}
