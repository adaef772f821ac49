package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ortnersoft/crm-backend/pkg/db/models"
)

// ProductDTO exposes catalog data in API responses.
type ProductDTO struct {
	ID          uuid.UUID       `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Unit        string          `json:"unit"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CreateProductDTO holds creation-time data for a new product.
type CreateProductDTO struct {
	SKU         string
	Name        string
	Description *string
	UnitPrice   decimal.Decimal
	Unit        string
}

// UpdateProductInput captures the allowed product fields for mutation.
type UpdateProductInput struct {
	Name        *string
	Description *string
	UnitPrice   *decimal.Decimal
	Unit        *string
	IsActive    *bool
}

// FromModel maps the persisted product into a DTO.
func FromModel(m *models.Product) *ProductDTO {
	if m == nil {
		return nil
	}
	return &ProductDTO{
		ID:          m.ID,
		SKU:         m.SKU,
		Name:        m.Name,
		Description: m.Description,
		UnitPrice:   m.UnitPrice,
		Unit:        m.Unit,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ToModel prepares the GORM model from creation DTO, supplying defaults.
func (c CreateProductDTO) ToModel() *models.Product {
	unit := c.Unit
	if unit == "" {
		unit = "piece"
	}
	return &models.Product{
		SKU:         c.SKU,
		Name:        c.Name,
		Description: c.Description,
		UnitPrice:   c.UnitPrice,
		Unit:        unit,
		IsActive:    true,
	}
}
