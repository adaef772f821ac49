package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ortnersoft/crm-backend/pkg/db/models"
	"github.com/ortnersoft/crm-backend/pkg/enums"
	"github.com/ortnersoft/crm-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	customers := `
CREATE TABLE IF NOT EXISTS customers (
  id TEXT PRIMARY KEY,
  company_name TEXT NOT NULL,
  contact_name TEXT NOT NULL,
  email TEXT NOT NULL,
  phone TEXT,
  street TEXT,
  postal_code TEXT,
  city TEXT,
  country TEXT,
  industry TEXT,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  sku TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  description TEXT,
  unit_price NUMERIC NOT NULL,
  unit TEXT NOT NULL DEFAULT 'piece',
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL,
  order_number TEXT NOT NULL UNIQUE,
  status TEXT NOT NULL DEFAULT 'open',
  order_date DATETIME NOT NULL,
  total_amount NUMERIC NOT NULL DEFAULT 0,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  discount_percent NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	contacts := `
CREATE TABLE IF NOT EXISTS contacts (
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL,
  user_id TEXT,
  channel TEXT NOT NULL,
  subject TEXT NOT NULL,
  notes TEXT,
  rating INTEGER,
  duration_minutes INTEGER,
  contacted_at DATETIME NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(customers).Error)
	require.NoError(t, db.Exec(products).Error)
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	require.NoError(t, db.Exec(contacts).Error)
	return db
}

func newCustomer(t *testing.T, db *gorm.DB, name string) *models.Customer {
	t.Helper()

	customer := &models.Customer{
		ID:          uuid.New(),
		CompanyName: name,
		ContactName: "Jo Tester",
		Email:       fmt.Sprintf("%s@example.com", uuid.NewString()[:8]),
	}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

func newOrder(t *testing.T, db *gorm.DB, customerID uuid.UUID, number string, status enums.OrderStatus, orderDate time.Time, total int64) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:          uuid.New(),
		CustomerID:  customerID,
		OrderNumber: number,
		Status:      status,
		OrderDate:   orderDate,
		TotalAmount: decimal.NewFromInt(total),
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestNextOrderNumber(t *testing.T) {
	db := setupOrdersTestDB(t)
	customer := newCustomer(t, db, "Acme GmbH")

	number, err := NextOrderNumber(db, 2026)
	require.NoError(t, err)
	assert.Equal(t, "A-20260001", number)

	newOrder(t, db, customer.ID, "A-20260001", enums.OrderStatusOpen, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), 100)
	newOrder(t, db, customer.ID, "A-20260007", enums.OrderStatusOpen, time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC), 100)

	number, err = NextOrderNumber(db, 2026)
	require.NoError(t, err)
	assert.Equal(t, "A-20260008", number)

	// Sequences restart per year.
	number, err = NextOrderNumber(db, 2027)
	require.NoError(t, err)
	assert.Equal(t, "A-20270001", number)
}

func TestRecomputeTotal(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	customer := newCustomer(t, db, "Acme GmbH")
	order := newOrder(t, db, customer.ID, "A-20260001", enums.OrderStatusOpen, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), 0)

	item := &models.OrderItem{
		ID:              uuid.New(),
		OrderID:         order.ID,
		ProductID:       uuid.New(),
		Quantity:        10,
		UnitPrice:       decimal.RequireFromString("12.50"),
		DiscountPercent: decimal.NewFromInt(10),
	}
	require.NoError(t, db.Create(item).Error)
	require.NoError(t, RecomputeTotal(db, order.ID))

	reloaded, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.TotalAmount.Equal(decimal.RequireFromString("112.50")), "total %s", reloaded.TotalAmount)

	// Dropping the item brings the total back to zero.
	require.NoError(t, db.Delete(&models.OrderItem{}, "id = ?", item.ID).Error)
	require.NoError(t, RecomputeTotal(db, order.ID))

	reloaded, err = repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.TotalAmount.IsZero(), "total %s", reloaded.TotalAmount)
}

func TestSumRevenueExcludesCancelled(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	customer := newCustomer(t, db, "Acme GmbH")

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	newOrder(t, db, customer.ID, "A-20260001", enums.OrderStatusPaid, day, 500)
	newOrder(t, db, customer.ID, "A-20260002", enums.OrderStatusOpen, day, 300)
	newOrder(t, db, customer.ID, "A-20260003", enums.OrderStatusCancelled, day, 9000)

	total, err := repo.SumRevenue(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(800)), "total %s", total)
}

func TestSumCustomerRevenueRange(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	customer := newCustomer(t, db, "Acme GmbH")
	other := newCustomer(t, db, "Umbrella AG")

	newOrder(t, db, customer.ID, "A-20260001", enums.OrderStatusPaid, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), 500)
	newOrder(t, db, customer.ID, "A-20260002", enums.OrderStatusPaid, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), 300)
	newOrder(t, db, other.ID, "A-20260003", enums.OrderStatusPaid, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), 700)

	// The from bound is inclusive; the January order falls outside.
	from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	total, err := repo.SumCustomerRevenue(context.Background(), customer.ID, from, to)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(500)), "total %s", total)

	// Empty window yields zero, not an error.
	total, err = repo.SumCustomerRevenue(context.Background(), customer.ID,
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestMonthlyRevenueSince(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	customer := newCustomer(t, db, "Acme GmbH")

	newOrder(t, db, customer.ID, "A-20260001", enums.OrderStatusPaid, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), 400)
	newOrder(t, db, customer.ID, "A-20260002", enums.OrderStatusPaid, time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC), 600)
	newOrder(t, db, customer.ID, "A-20260003", enums.OrderStatusPaid, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), 250)
	newOrder(t, db, customer.ID, "A-20260004", enums.OrderStatusCancelled, time.Date(2026, 3, 21, 0, 0, 0, 0, time.UTC), 9999)

	now := time.Date(2026, 3, 25, 0, 0, 0, 0, time.UTC)
	rows, err := repo.MonthlyRevenueSince(context.Background(), now, 3)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "2026-02", rows[0].Month)
	assert.True(t, rows[0].Revenue.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, "2026-03", rows[1].Month)
	assert.True(t, rows[1].Revenue.Equal(decimal.NewFromInt(1000)))
}

func TestCustomerSnapshots(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	active := newCustomer(t, db, "Acme GmbH")
	inactive := newCustomer(t, db, "Quiet GmbH")

	newOrder(t, db, active.ID, "A-20260001", enums.OrderStatusPaid, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), 500)
	newOrder(t, db, active.ID, "A-20260002", enums.OrderStatusOpen, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), 300)
	newOrder(t, db, active.ID, "A-20260003", enums.OrderStatusCancelled, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), 9000)

	contact := &models.Contact{
		ID:          uuid.New(),
		CustomerID:  active.ID,
		Channel:     enums.ContactChannelPhone,
		Subject:     "intro call",
		ContactedAt: time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(contact).Error)

	rows, err := repo.CustomerSnapshots(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byID := map[uuid.UUID]CustomerSnapshot{}
	for _, row := range rows {
		byID[row.CustomerID] = row
	}

	snap := byID[active.ID]
	assert.True(t, snap.Revenue.Equal(decimal.NewFromInt(800)), "revenue %s", snap.Revenue)
	assert.Equal(t, 3, snap.OrderCount)
	assert.Equal(t, 1, snap.OpenOrderCount)
	assert.Equal(t, 1, snap.ContactCount)
	require.NotNil(t, snap.LastOrderAt)

	quiet := byID[inactive.ID]
	assert.True(t, quiet.Revenue.IsZero())
	assert.Equal(t, 0, quiet.OrderCount)
	assert.Nil(t, quiet.LastOrderAt)
}

func TestStatusPipeline(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	customer := newCustomer(t, db, "Acme GmbH")

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	newOrder(t, db, customer.ID, "A-20260001", enums.OrderStatusOpen, day, 100)
	newOrder(t, db, customer.ID, "A-20260002", enums.OrderStatusOpen, day, 200)
	newOrder(t, db, customer.ID, "A-20260003", enums.OrderStatusPaid, day, 700)

	rows, err := repo.StatusPipeline(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byStatus := map[enums.OrderStatus]StatusBucket{}
	for _, row := range rows {
		byStatus[row.Status] = row
	}
	assert.Equal(t, int64(2), byStatus[enums.OrderStatusOpen].Count)
	assert.True(t, byStatus[enums.OrderStatusOpen].Revenue.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, int64(1), byStatus[enums.OrderStatusPaid].Count)
}

func TestTopProducts(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	customer := newCustomer(t, db, "Acme GmbH")

	widget := &models.Product{ID: uuid.New(), SKU: "SKU-1", Name: "Widget", UnitPrice: decimal.NewFromInt(10), Unit: "piece", IsActive: true}
	gadget := &models.Product{ID: uuid.New(), SKU: "SKU-2", Name: "Gadget", UnitPrice: decimal.NewFromInt(50), Unit: "piece", IsActive: true}
	require.NoError(t, db.Create(widget).Error)
	require.NoError(t, db.Create(gadget).Error)

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	kept := newOrder(t, db, customer.ID, "A-20260001", enums.OrderStatusPaid, day, 0)
	cancelled := newOrder(t, db, customer.ID, "A-20260002", enums.OrderStatusCancelled, day, 0)

	require.NoError(t, db.Create(&models.OrderItem{ID: uuid.New(), OrderID: kept.ID, ProductID: widget.ID, Quantity: 3, UnitPrice: decimal.NewFromInt(10)}).Error)
	require.NoError(t, db.Create(&models.OrderItem{ID: uuid.New(), OrderID: kept.ID, ProductID: gadget.ID, Quantity: 2, UnitPrice: decimal.NewFromInt(50)}).Error)
	require.NoError(t, db.Create(&models.OrderItem{ID: uuid.New(), OrderID: cancelled.ID, ProductID: widget.ID, Quantity: 100, UnitPrice: decimal.NewFromInt(10)}).Error)

	rows, err := repo.TopProducts(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Gadget", rows[0].Name)
	assert.True(t, rows[0].Revenue.Equal(decimal.NewFromInt(100)), "revenue %s", rows[0].Revenue)
	assert.Equal(t, "Widget", rows[1].Name)
	assert.Equal(t, int64(3), rows[1].Quantity)
}

func TestListFiltersAndPagination(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	customer := newCustomer(t, db, "Acme GmbH")
	other := newCustomer(t, db, "Umbrella AG")

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	newOrder(t, db, customer.ID, "A-20260001", enums.OrderStatusOpen, day, 100)
	newOrder(t, db, customer.ID, "A-20260002", enums.OrderStatusPaid, day, 200)
	newOrder(t, db, other.ID, "A-20260003", enums.OrderStatusOpen, day, 300)

	status := enums.OrderStatusOpen
	rows, err := repo.List(context.Background(), ListFilter{CustomerID: &customer.ID, Status: &status}, pagination.Params{Limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "A-20260001", rows[0].OrderNumber)
}

func TestDeleteMissingOrder(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	err := repo.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
