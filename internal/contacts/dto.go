package contacts

import (
	"time"

	"github.com/google/uuid"

	"github.com/ortnersoft/crm-backend/pkg/db/models"
	"github.com/ortnersoft/crm-backend/pkg/enums"
)

// ContactDTO exposes contact data in API responses. Rating is omitted for
// roles without the view-ratings capability.
type ContactDTO struct {
	ID              uuid.UUID            `json:"id"`
	CustomerID      uuid.UUID            `json:"customer_id"`
	UserID          *uuid.UUID           `json:"user_id,omitempty"`
	Channel         enums.ContactChannel `json:"channel"`
	Subject         string               `json:"subject"`
	Notes           *string              `json:"notes,omitempty"`
	Rating          *int                 `json:"rating,omitempty"`
	DurationMinutes *int                 `json:"duration_minutes,omitempty"`
	ContactedAt     time.Time            `json:"contacted_at"`
	CreatedAt       time.Time            `json:"created_at"`
}

// CreateContactDTO holds creation-time data for a logged interaction.
type CreateContactDTO struct {
	CustomerID      uuid.UUID
	UserID          *uuid.UUID
	Channel         enums.ContactChannel
	Subject         string
	Notes           *string
	Rating          *int
	DurationMinutes *int
	ContactedAt     time.Time
}

// UpdateContactInput captures the allowed contact fields for mutation.
type UpdateContactInput struct {
	Channel         *enums.ContactChannel
	Subject         *string
	Notes           *string
	Rating          *int
	DurationMinutes *int
	ContactedAt     *time.Time
}

// FromModel maps the persisted contact into a DTO. When withRating is false
// the rating is stripped regardless of its value.
func FromModel(m *models.Contact, withRating bool) *ContactDTO {
	if m == nil {
		return nil
	}
	dto := &ContactDTO{
		ID:              m.ID,
		CustomerID:      m.CustomerID,
		UserID:          m.UserID,
		Channel:         m.Channel,
		Subject:         m.Subject,
		Notes:           m.Notes,
		DurationMinutes: m.DurationMinutes,
		ContactedAt:     m.ContactedAt,
		CreatedAt:       m.CreatedAt,
	}
	if withRating {
		dto.Rating = m.Rating
	}
	return dto
}

// ToModel prepares the GORM model from creation DTO.
func (c CreateContactDTO) ToModel() *models.Contact {
	return &models.Contact{
		CustomerID:      c.CustomerID,
		UserID:          c.UserID,
		Channel:         c.Channel,
		Subject:         c.Subject,
		Notes:           c.Notes,
		Rating:          c.Rating,
		DurationMinutes: c.DurationMinutes,
		ContactedAt:     c.ContactedAt,
	}
}
