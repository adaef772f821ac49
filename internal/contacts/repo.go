package contacts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ortnersoft/crm-backend/pkg/db/models"
	"github.com/ortnersoft/crm-backend/pkg/enums"
	"github.com/ortnersoft/crm-backend/pkg/pagination"
)

// Repository exposes contact persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a contacts repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListFilter narrows List results.
type ListFilter struct {
	CustomerID *uuid.UUID
	Channel    *enums.ContactChannel
}

// ChannelCount reports how many contacts were logged per channel.
type ChannelCount struct {
	Channel enums.ContactChannel `json:"channel"`
	Count   int64                `json:"count"`
}

// Create inserts a new contact and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateContactDTO) (*models.Contact, error) {
	contact := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(contact).Error; err != nil {
		return nil, err
	}
	return contact, nil
}

// FindByID loads a contact by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	var contact models.Contact
	if err := r.db.WithContext(ctx).First(&contact, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

// List returns a page of contacts ordered by newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Contact, error) {
	query := r.db.WithContext(ctx).Model(&models.Contact{})

	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Channel != nil {
		query = query.Where("channel = ?", *filter.Channel)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var contacts []models.Contact
	err = query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&contacts).Error
	if err != nil {
		return nil, err
	}
	return contacts, nil
}

// Update persists the provided contact model.
func (r *Repository) Update(ctx context.Context, contact *models.Contact) error {
	return r.db.WithContext(ctx).Save(contact).Error
}

// Delete removes the contact row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Contact{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ChannelCounts groups all contacts by channel.
func (r *Repository) ChannelCounts(ctx context.Context) ([]ChannelCount, error) {
	var rows []ChannelCount
	err := r.db.WithContext(ctx).
		Model(&models.Contact{}).
		Select("channel, COUNT(*) AS count").
		Group("channel").
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Recent returns the most recently logged contacts.
func (r *Repository) Recent(ctx context.Context, limit int) ([]models.Contact, error) {
	var contacts []models.Contact
	err := r.db.WithContext(ctx).
		Order("contacted_at DESC").
		Limit(limit).
		Find(&contacts).Error
	if err != nil {
		return nil, err
	}
	return contacts, nil
}

// Count returns the total number of contacts.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Contact{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
