package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ortnersoft/crm-backend/pkg/db/models"
	"github.com/ortnersoft/crm-backend/pkg/enums"
)

// OrderDTO exposes order data in API responses.
type OrderDTO struct {
	ID          uuid.UUID         `json:"id"`
	CustomerID  uuid.UUID         `json:"customer_id"`
	OrderNumber string            `json:"order_number"`
	Status      enums.OrderStatus `json:"status"`
	OrderDate   string            `json:"order_date"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	Notes       *string           `json:"notes,omitempty"`
	Items       []OrderItemDTO    `json:"items"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// OrderItemDTO exposes a single order position.
type OrderItemDTO struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       uuid.UUID       `json:"product_id"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

// CreateOrderDTO holds creation-time data for a new order.
type CreateOrderDTO struct {
	CustomerID uuid.UUID
	OrderDate  time.Time
	Notes      *string
	Items      []CreateOrderItemDTO
}

// CreateOrderItemDTO describes one position to add to an order. When
// UnitPrice is nil the current catalog price is snapshotted.
type CreateOrderItemDTO struct {
	ProductID       uuid.UUID
	Quantity        int
	UnitPrice       *decimal.Decimal
	DiscountPercent decimal.Decimal
}

// UpdateOrderInput captures the allowed order fields for mutation.
type UpdateOrderInput struct {
	Status    *enums.OrderStatus
	OrderDate *time.Time
	Notes     *string
}

// UpdateOrderItemInput captures the allowed item fields for mutation.
type UpdateOrderItemInput struct {
	Quantity        *int
	UnitPrice       *decimal.Decimal
	DiscountPercent *decimal.Decimal
}

// FromModel maps the persisted order into a DTO.
func FromModel(m *models.Order) *OrderDTO {
	if m == nil {
		return nil
	}
	items := make([]OrderItemDTO, 0, len(m.Items))
	for _, item := range m.Items {
		items = append(items, OrderItemDTO{
			ID:              item.ID,
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			DiscountPercent: item.DiscountPercent,
			LineTotal:       item.LineTotal(),
		})
	}
	return &OrderDTO{
		ID:          m.ID,
		CustomerID:  m.CustomerID,
		OrderNumber: m.OrderNumber,
		Status:      m.Status,
		OrderDate:   m.OrderDate.Format("2006-01-02"),
		TotalAmount: m.TotalAmount,
		Notes:       m.Notes,
		Items:       items,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
