package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ortnersoft/crm-backend/pkg/db"
	"github.com/ortnersoft/crm-backend/pkg/db/models"
	"github.com/ortnersoft/crm-backend/pkg/enums"
	pkgerrors "github.com/ortnersoft/crm-backend/pkg/errors"
	"github.com/ortnersoft/crm-backend/pkg/pagination"
)

type orderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type customerFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
}

type productFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes order operations. Item mutations and order creation run
// inside a transaction so the denormalized total always matches the items.
type Service interface {
	Create(ctx context.Context, input CreateOrderDTO) (*OrderDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]OrderDTO, string, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateOrderInput) (*OrderDTO, error)
	Delete(ctx context.Context, actorRole enums.UserRole, id uuid.UUID) error
	AddItem(ctx context.Context, orderID uuid.UUID, input CreateOrderItemDTO) (*OrderDTO, error)
	UpdateItem(ctx context.Context, orderID, itemID uuid.UUID, input UpdateOrderItemInput) (*OrderDTO, error)
	RemoveItem(ctx context.Context, orderID, itemID uuid.UUID) (*OrderDTO, error)
}

type service struct {
	client    *db.Client
	repo      orderRepository
	customers customerFinder
	products  productFinder
	now       func() time.Time
}

// NewService builds an order service with the provided dependencies.
func NewService(client *db.Client, repo orderRepository, customers customerFinder, products productFinder) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customer finder required")
	}
	if products == nil {
		return nil, fmt.Errorf("product finder required")
	}
	return &service{
		client:    client,
		repo:      repo,
		customers: customers,
		products:  products,
		now:       time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderDTO) (*OrderDTO, error) {
	if _, err := s.customers.FindByID(ctx, input.CustomerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}

	orderDate := input.OrderDate
	if orderDate.IsZero() {
		orderDate = s.now().UTC()
	}

	items := make([]models.OrderItem, 0, len(input.Items))
	for _, in := range input.Items {
		item, err := s.buildItem(ctx, in)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	order := &models.Order{
		CustomerID: input.CustomerID,
		Status:     enums.OrderStatusOpen,
		OrderDate:  orderDate,
		Notes:      input.Notes,
		Items:      items,
	}
	order.TotalAmount = sumLineTotals(items)

	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		number, err := NextOrderNumber(tx, orderDate.Year())
		if err != nil {
			return err
		}
		order.OrderNumber = number
		return tx.Create(order).Error
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}
	return FromModel(order), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return FromModel(order), nil
}

func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]OrderDTO, string, error) {
	rows, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	nextCursor := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	dtos := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos, nextCursor, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateOrderInput) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
		}
		order.Status = *input.Status
	}
	if input.OrderDate != nil {
		order.OrderDate = *input.OrderDate
	}
	if input.Notes != nil {
		order.Notes = input.Notes
	}

	if err := s.repo.Update(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
	}
	return FromModel(order), nil
}

func (s *service) Delete(ctx context.Context, actorRole enums.UserRole, id uuid.UUID) error {
	if !actorRole.CanDelete() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "role may not delete orders")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
	}
	return nil
}

func (s *service) AddItem(ctx context.Context, orderID uuid.UUID, input CreateOrderItemDTO) (*OrderDTO, error) {
	item, err := s.buildItem(ctx, input)
	if err != nil {
		return nil, err
	}
	item.OrderID = orderID

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			return err
		}
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		return RecomputeTotal(tx, orderID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add order item")
	}
	return s.GetByID(ctx, orderID)
}

func (s *service) UpdateItem(ctx context.Context, orderID, itemID uuid.UUID, input UpdateOrderItemInput) (*OrderDTO, error) {
	if input.Quantity != nil && *input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.DiscountPercent != nil && !validDiscount(*input.DiscountPercent) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount must be between 0 and 100")
	}

	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		var item models.OrderItem
		if err := tx.First(&item, "id = ? AND order_id = ?", itemID, orderID).Error; err != nil {
			return err
		}
		if input.Quantity != nil {
			item.Quantity = *input.Quantity
		}
		if input.UnitPrice != nil {
			item.UnitPrice = *input.UnitPrice
		}
		if input.DiscountPercent != nil {
			item.DiscountPercent = *input.DiscountPercent
		}
		if err := tx.Save(&item).Error; err != nil {
			return err
		}
		return RecomputeTotal(tx, orderID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order item")
	}
	return s.GetByID(ctx, orderID)
}

func (s *service) RemoveItem(ctx context.Context, orderID, itemID uuid.UUID) (*OrderDTO, error) {
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		result := tx.Delete(&models.OrderItem{}, "id = ? AND order_id = ?", itemID, orderID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return RecomputeTotal(tx, orderID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove order item")
	}
	return s.GetByID(ctx, orderID)
}

func (s *service) buildItem(ctx context.Context, input CreateOrderItemDTO) (*models.OrderItem, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if !validDiscount(input.DiscountPercent) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount must be between 0 and 100")
	}

	item := &models.OrderItem{
		ProductID:       input.ProductID,
		Quantity:        input.Quantity,
		DiscountPercent: input.DiscountPercent,
	}

	if input.UnitPrice != nil {
		item.UnitPrice = *input.UnitPrice
	} else {
		product, err := s.products.FindByID(ctx, input.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		item.UnitPrice = product.UnitPrice
	}

	if item.UnitPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price must not be negative")
	}
	return item, nil
}

func validDiscount(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(decimal.NewFromInt(100))
}
