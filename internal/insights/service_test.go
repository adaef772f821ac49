package insights

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ortnersoft/crm-backend/internal/contacts"
	"github.com/ortnersoft/crm-backend/internal/orders"
	"github.com/ortnersoft/crm-backend/pkg/db/models"
	"github.com/ortnersoft/crm-backend/pkg/enums"
	"github.com/ortnersoft/crm-backend/pkg/logger"
)

type stubOrderAggregates struct {
	snapshots []orders.CustomerSnapshot
	monthly   []orders.MonthlyRevenue
	pipeline  []orders.StatusBucket
	top       []orders.TopProduct
	recent    []models.Order
	revenue   decimal.Decimal
	count     int64
}

func (s *stubOrderAggregates) SumRevenue(_ context.Context, _, _ *time.Time) (decimal.Decimal, error) {
	return s.revenue, nil
}

func (s *stubOrderAggregates) MonthlyRevenueSince(_ context.Context, _ time.Time, _ int) ([]orders.MonthlyRevenue, error) {
	return s.monthly, nil
}

func (s *stubOrderAggregates) CustomerSnapshots(_ context.Context) ([]orders.CustomerSnapshot, error) {
	return s.snapshots, nil
}

func (s *stubOrderAggregates) StatusPipeline(_ context.Context) ([]orders.StatusBucket, error) {
	return s.pipeline, nil
}

func (s *stubOrderAggregates) TopProducts(_ context.Context, _ int) ([]orders.TopProduct, error) {
	return s.top, nil
}

func (s *stubOrderAggregates) Count(_ context.Context) (int64, error) {
	return s.count, nil
}

func (s *stubOrderAggregates) Recent(_ context.Context, _ int) ([]models.Order, error) {
	return s.recent, nil
}

type stubContactAggregates struct {
	channels []contacts.ChannelCount
	recent   []models.Contact
	count    int64
}

func (s *stubContactAggregates) ChannelCounts(_ context.Context) ([]contacts.ChannelCount, error) {
	return s.channels, nil
}

func (s *stubContactAggregates) Recent(_ context.Context, _ int) ([]models.Contact, error) {
	return s.recent, nil
}

func (s *stubContactAggregates) Count(_ context.Context) (int64, error) {
	return s.count, nil
}

type stubCustomerCounter struct {
	count   int64
	created int64
}

func (s *stubCustomerCounter) Count(_ context.Context) (int64, error) {
	return s.count, nil
}

func (s *stubCustomerCounter) CountCreatedSince(_ context.Context, _ time.Time) (int64, error) {
	return s.created, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{Output: io.Discard})
}

func snapshotAt(name string, revenue int64, orderCount int, lastOrder *time.Time) orders.CustomerSnapshot {
	return orders.CustomerSnapshot{
		CustomerID:  uuid.New(),
		CompanyName: name,
		Revenue:     decimal.NewFromInt(revenue),
		OrderCount:  orderCount,
		LastOrderAt: lastOrder,
	}
}

func newInsightsService(t *testing.T, ordersAgg *stubOrderAggregates, contactsAgg *stubContactAggregates, customers *stubCustomerCounter) *service {
	t.Helper()

	svc, err := NewService(ordersAgg, contactsAgg, customers, testLogger(), nil)
	require.NoError(t, err)
	return svc.(*service)
}

func TestDashboardAssembly(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	recentOrder := now.AddDate(0, 0, -10)
	staleOrder := now.AddDate(0, 0, -200)

	ordersAgg := &stubOrderAggregates{
		snapshots: []orders.CustomerSnapshot{
			snapshotAt("Champion GmbH", 6000, 5, &recentOrder),
			snapshotAt("Fading AG", 2000, 2, &staleOrder),
			snapshotAt("Fresh Lead", 0, 0, nil),
		},
		pipeline: []orders.StatusBucket{
			{Status: enums.OrderStatusOpen, Count: 3, Revenue: decimal.NewFromInt(900)},
			{Status: enums.OrderStatusPaid, Count: 4, Revenue: decimal.NewFromInt(7100)},
		},
		monthly: []orders.MonthlyRevenue{
			{Month: "2026-02", Revenue: decimal.NewFromInt(800)},
			{Month: "2026-03", Revenue: decimal.NewFromInt(1000)},
		},
		revenue: decimal.NewFromInt(8000),
		count:   7,
	}
	contactsAgg := &stubContactAggregates{count: 4}
	customers := &stubCustomerCounter{count: 3, created: 1}

	svc := newInsightsService(t, ordersAgg, contactsAgg, customers)
	svc.now = func() time.Time { return now }

	dashboard, err := svc.Dashboard(context.Background(), enums.UserRoleManager)
	require.NoError(t, err)

	assert.Equal(t, int64(7), dashboard.Stats.OrderCount)
	assert.True(t, dashboard.Stats.TotalRevenue.Equal(decimal.NewFromInt(8000)))
	// 8000 / 7 orders.
	assert.True(t, dashboard.Stats.AverageOrderValue.Equal(decimal.RequireFromString("1142.86")), "avg %s", dashboard.Stats.AverageOrderValue)
	// 2 of 3 customers ordered.
	assert.True(t, dashboard.Stats.ConversionRate.Equal(decimal.RequireFromString("66.7")), "conversion %s", dashboard.Stats.ConversionRate)

	assert.Equal(t, 1, dashboard.Lifecycle[enums.LifecycleStageVIP.String()])
	assert.Equal(t, 1, dashboard.Lifecycle[enums.LifecycleStageProspect.String()])

	// Fading AG is quiet, valuable, and unhealthy.
	require.Len(t, dashboard.AtRisk, 1)
	assert.Equal(t, "Fading AG", dashboard.AtRisk[0].CompanyName)

	// Never-ordered customers stay out of the top ranking.
	require.Len(t, dashboard.TopCustomers, 2)
	assert.Equal(t, "Champion GmbH", dashboard.TopCustomers[0].CompanyName)

	// Open orders and at-risk customers both trigger recommendations.
	require.NotEmpty(t, dashboard.Recommendations)
	assert.Equal(t, "Follow up on open orders", dashboard.Recommendations[0].Title)

	// 1000 vs 800 previous month.
	assert.True(t, dashboard.Forecast.GrowthRate.Equal(decimal.NewFromFloat(0.25)), "growth %s", dashboard.Forecast.GrowthRate)
}

func TestDashboardSkipsInconsistentSnapshots(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	ordersAgg := &stubOrderAggregates{
		snapshots: []orders.CustomerSnapshot{
			snapshotAt("Broken", -100, 1, nil),
			snapshotAt("Valid", 100, 1, &now),
		},
	}

	svc := newInsightsService(t, ordersAgg, &stubContactAggregates{}, &stubCustomerCounter{count: 2})
	svc.now = func() time.Time { return now }

	dashboard, err := svc.Dashboard(context.Background(), enums.UserRoleAdmin)
	require.NoError(t, err)

	total := 0
	for _, n := range dashboard.Lifecycle {
		total += n
	}
	assert.Equal(t, 1, total, "broken snapshot should be skipped")
}

func TestMonthlyRevenueZeroFills(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	ordersAgg := &stubOrderAggregates{
		monthly: []orders.MonthlyRevenue{
			{Month: "2026-03", Revenue: decimal.NewFromInt(500)},
		},
	}

	svc := newInsightsService(t, ordersAgg, &stubContactAggregates{}, &stubCustomerCounter{})
	svc.now = func() time.Time { return now }

	series, err := svc.MonthlyRevenue(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, series, 3)

	assert.Equal(t, "2026-01", series[0].Month)
	assert.True(t, series[0].Revenue.IsZero())
	assert.Equal(t, "2026-02", series[1].Month)
	assert.True(t, series[1].Revenue.IsZero())
	assert.Equal(t, "2026-03", series[2].Month)
	assert.True(t, series[2].Revenue.Equal(decimal.NewFromInt(500)))
}

func TestCustomersWithoutOrders(t *testing.T) {
	ordersAgg := &stubOrderAggregates{
		snapshots: []orders.CustomerSnapshot{
			{CustomerID: uuid.New(), CompanyName: "Ordered", OrderCount: 2},
			{CustomerID: uuid.New(), CompanyName: "Quiet", OrderCount: 0, ContactCount: 3},
		},
	}

	svc := newInsightsService(t, ordersAgg, &stubContactAggregates{}, &stubCustomerCounter{})

	inactive, err := svc.CustomersWithoutOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, inactive, 1)
	assert.Equal(t, "Quiet", inactive[0].CompanyName)
	assert.Equal(t, 3, inactive[0].ContactCount)
}

func TestKPIs(t *testing.T) {
	ordersAgg := &stubOrderAggregates{revenue: decimal.NewFromInt(4200), count: 6}
	svc := newInsightsService(t, ordersAgg, &stubContactAggregates{count: 9}, &stubCustomerCounter{count: 4})

	kpis, err := svc.KPIs(context.Background())
	require.NoError(t, err)

	assert.True(t, kpis.TotalRevenue.Equal(decimal.NewFromInt(4200)))
	assert.Equal(t, int64(6), kpis.OrderCount)
	assert.Equal(t, int64(4), kpis.CustomerCount)
	assert.Equal(t, int64(9), kpis.ContactCount)
}
