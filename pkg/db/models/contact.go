package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ortnersoft/crm-backend/pkg/enums"
)

// Contact represents a logged interaction with a customer. Rating is the
// internal 1-5 relationship score and is only exposed to roles that may
// view ratings.
type Contact struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID      uuid.UUID            `gorm:"column:customer_id;type:uuid;not null;index"`
	UserID          *uuid.UUID           `gorm:"column:user_id;type:uuid"`
	Channel         enums.ContactChannel `gorm:"column:channel;type:text;not null"`
	Subject         string               `gorm:"column:subject;not null"`
	Notes           *string              `gorm:"column:notes"`
	Rating          *int                 `gorm:"column:rating"`
	DurationMinutes *int                 `gorm:"column:duration_minutes"`
	ContactedAt     time.Time            `gorm:"column:contacted_at;not null"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
