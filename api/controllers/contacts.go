package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ortnersoft/crm-backend/api/middleware"
	"github.com/ortnersoft/crm-backend/api/responses"
	"github.com/ortnersoft/crm-backend/api/validators"
	"github.com/ortnersoft/crm-backend/internal/contacts"
	"github.com/ortnersoft/crm-backend/pkg/enums"
	pkgerrors "github.com/ortnersoft/crm-backend/pkg/errors"
	"github.com/ortnersoft/crm-backend/pkg/logger"
)

func actorFromRequest(r *http.Request) (contacts.Actor, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return contacts.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return contacts.Actor{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return contacts.Actor{
		UserID: userID,
		Role:   middleware.RoleFromContext(r.Context()),
	}, nil
}

type contactCreateRequest struct {
	CustomerID      uuid.UUID  `json:"customer_id" validate:"required"`
	UserID          *uuid.UUID `json:"user_id,omitempty"`
	Channel         string     `json:"channel" validate:"required"`
	Subject         string     `json:"subject" validate:"required"`
	Notes           *string    `json:"notes,omitempty"`
	Rating          *int       `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	DurationMinutes *int       `json:"duration_minutes,omitempty" validate:"omitempty,min=0"`
	ContactedAt     *time.Time `json:"contacted_at,omitempty"`
}

func (r contactCreateRequest) toInput(now time.Time) (contacts.CreateContactDTO, error) {
	channel, err := enums.ParseContactChannel(r.Channel)
	if err != nil {
		return contacts.CreateContactDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid channel")
	}
	contactedAt := now
	if r.ContactedAt != nil {
		contactedAt = *r.ContactedAt
	}
	return contacts.CreateContactDTO{
		CustomerID:      r.CustomerID,
		UserID:          r.UserID,
		Channel:         channel,
		Subject:         strings.TrimSpace(r.Subject),
		Notes:           r.Notes,
		Rating:          r.Rating,
		DurationMinutes: r.DurationMinutes,
		ContactedAt:     contactedAt,
	}, nil
}

// ContactCreate logs a customer interaction.
func ContactCreate(svc contacts.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload contactCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(time.Now().UTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		contact, err := svc.Create(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, contact)
	}
}

// ContactGet returns a single contact by id.
func ContactGet(svc contacts.Service, logg *logger.Logger) http.HandlerFunc {
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

		id, err := validators.ParsePathUUID(r, "contactId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		contact, err := svc.GetByID(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, contact)
	}
}

// ContactList returns a cursor-paginated contact page with optional customer
// and channel filters.
func ContactList(svc contacts.Service, logg *logger.Logger) http.HandlerFunc {
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

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filter contacts.ListFilter
		if raw := strings.TrimSpace(r.URL.Query().Get("customer_id")); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "customer_id must be a uuid"))
				return
			}
			filter.CustomerID = &id
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("channel")); raw != "" {
			channel, err := enums.ParseContactChannel(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid channel"))
				return
			}
			filter.Channel = &channel
		}

		page, nextCursor, err := svc.List(r.Context(), actor, filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, listPayload(page, nextCursor))
	}
}

type contactUpdateRequest struct {
	Channel         *string    `json:"channel,omitempty"`
	Subject         *string    `json:"subject,omitempty" validate:"omitempty,min=1"`
	Notes           *string    `json:"notes,omitempty"`
	Rating          *int       `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	DurationMinutes *int       `json:"duration_minutes,omitempty" validate:"omitempty,min=0"`
	ContactedAt     *time.Time `json:"contacted_at,omitempty"`
}

func (r contactUpdateRequest) toInput() (contacts.UpdateContactInput, error) {
	var input contacts.UpdateContactInput
	if r.Channel != nil {
		channel, err := enums.ParseContactChannel(*r.Channel)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid channel")
		}
		input.Channel = &channel
	}
	input.Subject = r.Subject
	input.Notes = r.Notes
	input.Rating = r.Rating
	input.DurationMinutes = r.DurationMinutes
	input.ContactedAt = r.ContactedAt
	return input, nil
}

// ContactUpdate adjusts the mutable contact fields.
func ContactUpdate(svc contacts.Service, logg *logger.Logger) http.HandlerFunc {
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

		id, err := validators.ParsePathUUID(r, "contactId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload contactUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		contact, err := svc.Update(r.Context(), actor, id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, contact)
	}
}

// ContactDelete removes a contact. Owners may delete their own entries,
// otherwise the delete capability is required.
func ContactDelete(svc contacts.Service, logg *logger.Logger) http.HandlerFunc {
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

		id, err := validators.ParsePathUUID(r, "contactId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), actor, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}
