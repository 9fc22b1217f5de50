package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/restohub/backend/internal/availability"
	"github.com/restohub/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSlugFromChineseName(t *testing.T) {
	for i := 0; i < 20; i++ {
		name := GenerateRandomRestaurantName()
		slug := GenerateSlugFromChineseName(name)
		assert.True(t, IsValidSlug(slug), "%s -> %s", name, slug)
	}
}

func TestGenerateRandomSlotTemplatesAreValid(t *testing.T) {
	for i := 0; i < 20; i++ {
		generated := GenerateRandomSlotTemplates(uuid.New())
		require.NotEmpty(t, generated)

		var accepted []domain.SlotTemplate
		for _, st := range generated {
			st.ID = uuid.New()
			require.NoError(t, ValidateSlotTemplate(st, accepted))
			accepted = append(accepted, *st)
		}
	}
}

func TestGenerateRandomExceptionIsValid(t *testing.T) {
	e := GenerateRandomEstablishment(uuid.New(), "Asia/Shanghai")
	e.ID = uuid.New()
	from := availability.Date{Year: 2024, Month: time.January, Day: 1}

	for i := 0; i < 50; i++ {
		var templates []domain.SlotTemplate
		for _, st := range GenerateRandomSlotTemplates(e.ID) {
			st.ID = uuid.New()
			templates = append(templates, *st)
		}

		exception := GenerateRandomException(e, templates, from)
		require.NoError(t, ValidateException(exception, templates), FormatExceptionSummary(exception))
	}
}
