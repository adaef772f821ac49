package controllers

import (
	"net/http"
	"strings"

	"github.com/ortnersoft/crm-backend/api/middleware"
	"github.com/ortnersoft/crm-backend/api/responses"
	"github.com/ortnersoft/crm-backend/api/validators"
	"github.com/ortnersoft/crm-backend/internal/customers"
	pkgerrors "github.com/ortnersoft/crm-backend/pkg/errors"
	"github.com/ortnersoft/crm-backend/pkg/logger"
)

type customerCreateRequest struct {
	CompanyName string  `json:"company_name" validate:"required"`
	ContactName string  `json:"contact_name" validate:"required"`
	Email       string  `json:"email" validate:"required,email"`
	Phone       *string `json:"phone,omitempty"`
	Street      *string `json:"street,omitempty"`
	PostalCode  *string `json:"postal_code,omitempty"`
	City        *string `json:"city,omitempty"`
	Country     *string `json:"country,omitempty"`
	Industry    *string `json:"industry,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

func (r customerCreateRequest) toInput() customers.CreateCustomerDTO {
	return customers.CreateCustomerDTO{
		CompanyName: strings.TrimSpace(r.CompanyName),
		ContactName: strings.TrimSpace(r.ContactName),
		Email:       strings.ToLower(strings.TrimSpace(r.Email)),
		Phone:       r.Phone,
		Street:      r.Street,
		PostalCode:  r.PostalCode,
		City:        r.City,
		Country:     r.Country,
		Industry:    r.Industry,
		Notes:       r.Notes,
	}
}

// CustomerCreate registers a new customer record.
func CustomerCreate(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}

		var payload customerCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.Create(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, customer)
	}
}

// CustomerGet returns a single customer by id.
func CustomerGet(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, customer)
	}
}

// CustomerList returns a cursor-paginated customer page, optionally filtered
// by a free-text search over company, contact and email.
func CustomerList(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := customers.ListFilter{
			Search: strings.TrimSpace(r.URL.Query().Get("search")),
		}

		page, nextCursor, err := svc.List(r.Context(), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, listPayload(page, nextCursor))
	}
}

type customerUpdateRequest struct {
	CompanyName *string `json:"company_name,omitempty" validate:"omitempty,min=1"`
	ContactName *string `json:"contact_name,omitempty" validate:"omitempty,min=1"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string `json:"phone,omitempty"`
	Street      *string `json:"street,omitempty"`
	PostalCode  *string `json:"postal_code,omitempty"`
	City        *string `json:"city,omitempty"`
	Country     *string `json:"country,omitempty"`
	Industry    *string `json:"industry,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

func (r customerUpdateRequest) toInput() customers.UpdateCustomerInput {
	return customers.UpdateCustomerInput{
		CompanyName: r.CompanyName,
		ContactName: r.ContactName,
		Email:       r.Email,
		Phone:       r.Phone,
		Street:      r.Street,
		PostalCode:  r.PostalCode,
		City:        r.City,
		Country:     r.Country,
		Industry:    r.Industry,
		Notes:       r.Notes,
	}
}

// CustomerUpdate adjusts the mutable customer fields.
func CustomerUpdate(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload customerUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.Update(r.Context(), id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, customer)
	}
}

// CustomerDelete removes a customer and its dependent orders and contacts.
func CustomerDelete(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), middleware.RoleFromContext(r.Context()), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}

// CustomerRevenue reports the customer's aggregated revenue for a date range.
func CustomerRevenue(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		from, err := validators.ParseQueryDate(r, "from", true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryDate(r, "to", true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		revenue, err := svc.RevenueBetween(r.Context(), id, from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, revenue)
	}
}
