package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ortnersoft/crm-backend/pkg/db/models"
	"github.com/ortnersoft/crm-backend/pkg/enums"
	"github.com/ortnersoft/crm-backend/pkg/pagination"
)

// Repository exposes order persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an orders repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListFilter narrows List results.
type ListFilter struct {
	CustomerID *uuid.UUID
	Status     *enums.OrderStatus
}

// Create inserts the order model including its items.
func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// FindByID loads an order with its items.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// List returns a page of orders ordered by newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Order, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{}).Preload("Items")

	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var orders []models.Order
	err = query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func sumLineTotals(items []models.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Update persists order header fields.
func (r *Repository) Update(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit("Items").Save(order).Error
}

// Delete removes the order row. Items are removed by the database cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Order{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// NextOrderNumber reserves the next per-year sequence number. Must run
// inside the same transaction as the insert; the unique index on
// order_number rejects the rare concurrent duplicate.
func NextOrderNumber(tx *gorm.DB, year int) (string, error) {
	prefix := fmt.Sprintf("A-%d", year)

	var maxNumber *string
	err := tx.Model(&models.Order{}).
		Select("MAX(order_number)").
		Where("order_number LIKE ?", prefix+"%").
		Scan(&maxNumber).Error
	if err != nil {
		return "", err
	}

	seq := 1
	if maxNumber != nil && len(*maxNumber) > len(prefix) {
		var current int
		if _, scanErr := fmt.Sscanf((*maxNumber)[len(prefix):], "%d", &current); scanErr == nil {
			seq = current + 1
		}
	}
	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

// ItemsForOrder loads all items belonging to the order within the given tx.
func ItemsForOrder(tx *gorm.DB, orderID uuid.UUID) ([]models.OrderItem, error) {
	var items []models.OrderItem
	if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// RecomputeTotal rewrites the order's total_amount from its current items.
// Callers must invoke it inside the transaction that mutated the items.
func RecomputeTotal(tx *gorm.DB, orderID uuid.UUID) error {
	items, err := ItemsForOrder(tx, orderID)
	if err != nil {
		return err
	}
	total := sumLineTotals(items)
	return tx.Model(&models.Order{}).
		Where("id = ?", orderID).
		UpdateColumn("total_amount", total).Error
}

// Recent returns the most recent orders across all customers.
func (r *Repository) Recent(ctx context.Context, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Order("order_date DESC, created_at DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
