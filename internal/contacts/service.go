package contacts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ortnersoft/crm-backend/pkg/db/models"
	"github.com/ortnersoft/crm-backend/pkg/enums"
	pkgerrors "github.com/ortnersoft/crm-backend/pkg/errors"
	"github.com/ortnersoft/crm-backend/pkg/pagination"
)

type contactRepository interface {
	Create(ctx context.Context, dto CreateContactDTO) (*models.Contact, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Contact, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Contact, error)
	Update(ctx context.Context, contact *models.Contact) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type customerFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
}

// Actor identifies the authenticated caller for capability checks.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// Service exposes contact operations. Ratings are only visible to roles
// with the view-ratings capability.
type Service interface {
	Create(ctx context.Context, actor Actor, input CreateContactDTO) (*ContactDTO, error)
	GetByID(ctx context.Context, actor Actor, id uuid.UUID) (*ContactDTO, error)
	List(ctx context.Context, actor Actor, filter ListFilter, params pagination.Params) ([]ContactDTO, string, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, input UpdateContactInput) (*ContactDTO, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
}

type service struct {
	repo      contactRepository
	customers customerFinder
}

// NewService builds a contact service with the provided repositories.
func NewService(repo contactRepository, customers customerFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("contact repository required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customer finder required")
	}
	return &service{repo: repo, customers: customers}, nil
}

func (s *service) Create(ctx context.Context, actor Actor, input CreateContactDTO) (*ContactDTO, error) {
	input.Subject = strings.TrimSpace(input.Subject)
	if input.Subject == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subject is required")
	}
	if !input.Channel.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid contact channel")
	}
	if input.Rating != nil {
		if !actor.Role.CanViewRatings() {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role may not set ratings")
		}
		if *input.Rating < 1 || *input.Rating > 5 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
		}
	}

	if _, err := s.customers.FindByID(ctx, input.CustomerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}

	if input.UserID == nil {
		id := actor.UserID
		input.UserID = &id
	}

	contact, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create contact")
	}
	return FromModel(contact, actor.Role.CanViewRatings()), nil
}

func (s *service) GetByID(ctx context.Context, actor Actor, id uuid.UUID) (*ContactDTO, error) {
	contact, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contact not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load contact")
	}
	return FromModel(contact, actor.Role.CanViewRatings()), nil
}

func (s *service) List(ctx context.Context, actor Actor, filter ListFilter, params pagination.Params) ([]ContactDTO, string, error) {
	rows, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list contacts")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	nextCursor := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	withRating := actor.Role.CanViewRatings()
	dtos := make([]ContactDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i], withRating))
	}
	return dtos, nextCursor, nil
}

func (s *service) Update(ctx context.Context, actor Actor, id uuid.UUID, input UpdateContactInput) (*ContactDTO, error) {
	contact, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contact not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load contact")
	}

	if input.Channel != nil {
		if !input.Channel.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid contact channel")
		}
		contact.Channel = *input.Channel
	}
	if input.Subject != nil {
		contact.Subject = *input.Subject
	}
	if input.Notes != nil {
		contact.Notes = input.Notes
	}
	if input.Rating != nil {
		if !actor.Role.CanViewRatings() {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role may not set ratings")
		}
		if *input.Rating < 1 || *input.Rating > 5 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
		}
		contact.Rating = input.Rating
	}
	if input.DurationMinutes != nil {
		contact.DurationMinutes = input.DurationMinutes
	}
	if input.ContactedAt != nil {
		contact.ContactedAt = *input.ContactedAt
	}

	if err := s.repo.Update(ctx, contact); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update contact")
	}
	return FromModel(contact, actor.Role.CanViewRatings()), nil
}

func (s *service) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	contact, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "contact not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load contact")
	}

	owns := contact.UserID != nil && *contact.UserID == actor.UserID
	if !owns && !actor.Role.CanDelete() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "role may not delete this contact")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete contact")
	}
	return nil
}
