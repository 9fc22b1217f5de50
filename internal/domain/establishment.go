package domain

import (
	"time"

	"github.com/google/uuid"
)

type Establishment struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organizationID"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	Timezone       string    `json:"timezone"`
	CreatedAt      time.Time `json:"createdAt"`
	Version        int32     `json:"-"`
}
