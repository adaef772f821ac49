package customers

import (
	"time"

	"github.com/google/uuid"

	"github.com/ortnersoft/crm-backend/pkg/db/models"
)

// CustomerDTO exposes customer data in API responses.
type CustomerDTO struct {
	ID          uuid.UUID `json:"id"`
	CompanyName string    `json:"company_name"`
	ContactName string    `json:"contact_name"`
	Email       string    `json:"email"`
	Phone       *string   `json:"phone,omitempty"`
	Street      *string   `json:"street,omitempty"`
	PostalCode  *string   `json:"postal_code,omitempty"`
	City        *string   `json:"city,omitempty"`
	Country     *string   `json:"country,omitempty"`
	Industry    *string   `json:"industry,omitempty"`
	Notes       *string   `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateCustomerDTO holds creation-time data for a new customer.
type CreateCustomerDTO struct {
	CompanyName string
	ContactName string
	Email       string
	Phone       *string
	Street      *string
	PostalCode  *string
	City        *string
	Country     *string
	Industry    *string
	Notes       *string
}

// UpdateCustomerInput captures the allowed customer fields for mutation.
type UpdateCustomerInput struct {
	CompanyName *string
	ContactName *string
	Email       *string
	Phone       *string
	Street      *string
	PostalCode  *string
	City        *string
	Country     *string
	Industry    *string
	Notes       *string
}

// FromModel maps the persisted customer into a DTO.
func FromModel(m *models.Customer) *CustomerDTO {
	if m == nil {
		return nil
	}
	return &CustomerDTO{
		ID:          m.ID,
		CompanyName: m.CompanyName,
		ContactName: m.ContactName,
		Email:       m.Email,
		Phone:       m.Phone,
		Street:      m.Street,
		PostalCode:  m.PostalCode,
		City:        m.City,
		Country:     m.Country,
		Industry:    m.Industry,
		Notes:       m.Notes,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ToModel prepares the GORM model from creation DTO.
func (c CreateCustomerDTO) ToModel() *models.Customer {
	return &models.Customer{
		CompanyName: c.CompanyName,
		ContactName: c.ContactName,
		Email:       c.Email,
		Phone:       c.Phone,
		Street:      c.Street,
		PostalCode:  c.PostalCode,
		City:        c.City,
		Country:     c.Country,
		Industry:    c.Industry,
		Notes:       c.Notes,
	}
}
