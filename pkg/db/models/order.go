package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ortnersoft/crm-backend/pkg/enums"
)

// Order represents a customer order. TotalAmount is always the sum of the
// line totals of its items and is recomputed whenever items change.
type Order struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID  uuid.UUID         `gorm:"column:customer_id;type:uuid;not null;index"`
	OrderNumber string            `gorm:"column:order_number;type:text;not null;uniqueIndex"`
	Status      enums.OrderStatus `gorm:"column:status;type:text;not null;default:'open'"`
	OrderDate   time.Time         `gorm:"column:order_date;type:date;not null"`
	TotalAmount decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,2);not null;default:0"`
	Notes       *string           `gorm:"column:notes"`
	Items       []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
