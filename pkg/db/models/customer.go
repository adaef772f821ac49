package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer represents a company the sales team works with.
type Customer struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyName string    `gorm:"column:company_name;not null"`
	ContactName string    `gorm:"column:contact_name;not null"`
	Email       string    `gorm:"column:email;type:text;not null;uniqueIndex"`
	Phone       *string   `gorm:"column:phone"`
	Street      *string   `gorm:"column:street"`
	PostalCode  *string   `gorm:"column:postal_code"`
	City        *string   `gorm:"column:city"`
	Country     *string   `gorm:"column:country"`
	Industry    *string   `gorm:"column:industry"`
	Notes       *string   `gorm:"column:notes"`
	Orders      []Order   `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
	Contacts    []Contact `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
