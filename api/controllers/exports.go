package controllers

import (
	"fmt"
	"net/http"

	"github.com/ortnersoft/crm-backend/api/responses"
	"github.com/ortnersoft/crm-backend/api/validators"
	"github.com/ortnersoft/crm-backend/internal/contacts"
	"github.com/ortnersoft/crm-backend/internal/customers"
	"github.com/ortnersoft/crm-backend/internal/exports"
	"github.com/ortnersoft/crm-backend/internal/orders"
	pkgerrors "github.com/ortnersoft/crm-backend/pkg/errors"
	"github.com/ortnersoft/crm-backend/pkg/logger"
	"github.com/ortnersoft/crm-backend/pkg/pagination"
)

func setCSVHeaders(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}

// ExportCustomers streams the full customer list as CSV.
func ExportCustomers(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}

		var rows []customers.CustomerDTO
		params := pagination.Params{Limit: pagination.MaxLimit}
		for {
			page, nextCursor, err := svc.List(r.Context(), customers.ListFilter{}, params)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			rows = append(rows, page...)
			if nextCursor == "" {
				break
			}
			params.Cursor = nextCursor
		}

		setCSVHeaders(w, "customers.csv")
		if err := exports.WriteCustomers(w, rows); err != nil {
			logg.Error(r.Context(), "export.customers.write", err)
		}
	}
}

// ExportOrders streams the full order list as CSV, honouring the same
// filters as the order listing.
func ExportOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var rows []orders.OrderDTO
		params := pagination.Params{Limit: pagination.MaxLimit}
		for {
			page, nextCursor, err := svc.List(r.Context(), orders.ListFilter{}, params)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			rows = append(rows, page...)
			if nextCursor == "" {
				break
			}
			params.Cursor = nextCursor
		}

		setCSVHeaders(w, "orders.csv")
		if err := exports.WriteOrders(w, rows); err != nil {
			logg.Error(r.Context(), "export.orders.write", err)
		}
	}
}

// ExportOrderDetail streams one order with its line items as CSV.
func ExportOrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setCSVHeaders(w, fmt.Sprintf("order-%s.csv", order.OrderNumber))
		if err := exports.WriteOrderDetail(w, *order); err != nil {
			logg.Error(r.Context(), "export.order_detail.write", err)
		}
	}
}

// ExportContacts streams the full contact list as CSV. The rating column is
// present only when the caller may view ratings.
func ExportContacts(svc contacts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contact service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var rows []contacts.ContactDTO
		params := pagination.Params{Limit: pagination.MaxLimit}
		for {
			page, nextCursor, err := svc.List(r.Context(), actor, contacts.ListFilter{}, params)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			rows = append(rows, page...)
			if nextCursor == "" {
				break
			}
			params.Cursor = nextCursor
		}

		setCSVHeaders(w, "contacts.csv")
		if err := exports.WriteContacts(w, rows, actor.Role.CanViewRatings()); err != nil {
			logg.Error(r.Context(), "export.contacts.write", err)
		}
	}
}
