package insights

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/ortnersoft/crm-backend/internal/contacts"
	"github.com/ortnersoft/crm-backend/internal/orders"
	"github.com/ortnersoft/crm-backend/pkg/db/models"
	"github.com/ortnersoft/crm-backend/pkg/enums"
	pkgerrors "github.com/ortnersoft/crm-backend/pkg/errors"
	"github.com/ortnersoft/crm-backend/pkg/logger"
	"github.com/ortnersoft/crm-backend/pkg/metrics"
)

type orderAggregates interface {
	SumRevenue(ctx context.Context, from, to *time.Time) (decimal.Decimal, error)
	MonthlyRevenueSince(ctx context.Context, now time.Time, months int) ([]orders.MonthlyRevenue, error)
	CustomerSnapshots(ctx context.Context) ([]orders.CustomerSnapshot, error)
	StatusPipeline(ctx context.Context) ([]orders.StatusBucket, error)
	TopProducts(ctx context.Context, limit int) ([]orders.TopProduct, error)
	Count(ctx context.Context) (int64, error)
	Recent(ctx context.Context, limit int) ([]models.Order, error)
}

type contactAggregates interface {
	ChannelCounts(ctx context.Context) ([]contacts.ChannelCount, error)
	Recent(ctx context.Context, limit int) ([]models.Contact, error)
	Count(ctx context.Context) (int64, error)
}

type customerCounter interface {
	Count(ctx context.Context) (int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
}

// Service derives dashboard and report payloads from stored aggregates.
type Service interface {
	Dashboard(ctx context.Context, viewerRole enums.UserRole) (*DashboardDTO, error)
	KPIs(ctx context.Context) (*KPIReportDTO, error)
	MonthlyRevenue(ctx context.Context, months int) ([]orders.MonthlyRevenue, error)
	TopCustomers(ctx context.Context, limit int) ([]ScoredCustomer, error)
	TopProducts(ctx context.Context, limit int) ([]orders.TopProduct, error)
	CustomersWithoutOrders(ctx context.Context) ([]InactiveCustomerDTO, error)
}

type service struct {
	orders    orderAggregates
	contacts  contactAggregates
	customers customerCounter
	logg      *logger.Logger
	metrics   *metrics.InsightMetrics
	now       func() time.Time
}

// NewService builds an insights service with the provided aggregates.
func NewService(ordersAgg orderAggregates, contactsAgg contactAggregates, customers customerCounter, logg *logger.Logger, insightMetrics *metrics.InsightMetrics) (Service, error) {
	if ordersAgg == nil {
		return nil, fmt.Errorf("order aggregates required")
	}
	if contactsAgg == nil {
		return nil, fmt.Errorf("contact aggregates required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customer counter required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		orders:    ordersAgg,
		contacts:  contactsAgg,
		customers: customers,
		logg:      logg,
		metrics:   insightMetrics,
		now:       time.Now,
	}, nil
}

func (s *service) Dashboard(ctx context.Context, viewerRole enums.UserRole) (*DashboardDTO, error) {
	started := s.now()
	dashboard, err := s.buildDashboard(ctx, viewerRole)
	s.metrics.ObserveDuration("dashboard", s.now().Sub(started))
	if err != nil {
		s.metrics.IncFailure("dashboard")
		return nil, err
	}
	return dashboard, nil
}

func (s *service) buildDashboard(ctx context.Context, viewerRole enums.UserRole) (*DashboardDTO, error) {
	now := s.now().UTC()

	snaps, err := s.orders.CustomerSnapshots(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer snapshots")
	}
	scored := s.scoreSnapshots(ctx, snaps, now)

	stats, err := s.buildStats(ctx, snaps, now)
	if err != nil {
		return nil, err
	}

	pipeline, err := s.orders.StatusPipeline(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load status pipeline")
	}

	forecast, err := s.buildForecast(ctx, now)
	if err != nil {
		return nil, err
	}

	recentOrders, err := s.orders.Recent(ctx, 5)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recent orders")
	}
	recentContacts, err := s.contacts.Recent(ctx, 5)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recent contacts")
	}
	channels, err := s.contacts.ChannelCounts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load channel counts")
	}

	lifecycle := map[string]int{}
	segments := map[string]int{}
	for _, c := range scored {
		lifecycle[c.Stage.String()]++
		segments[c.Segment.String()]++
	}

	atRisk := collectAtRisk(snaps, now)

	openOrders := 0
	for _, bucket := range pipeline {
		if bucket.Status == enums.OrderStatusOpen {
			openOrders = int(bucket.Count)
		}
	}

	recommendations := BuildRecommendations(RecommendationInput{
		OpenOrders: openOrders,
		AtRisk:     len(atRisk),
		Champions:  segments[enums.RFMSegmentChampions.String()],
		Potential:  segments[enums.RFMSegmentPotential.String()],
	})

	withRating := viewerRole.CanViewRatings()
	orderDTOs := make([]orders.OrderDTO, 0, len(recentOrders))
	for i := range recentOrders {
		orderDTOs = append(orderDTOs, *orders.FromModel(&recentOrders[i]))
	}
	contactDTOs := make([]contacts.ContactDTO, 0, len(recentContacts))
	for i := range recentContacts {
		contactDTOs = append(contactDTOs, *contacts.FromModel(&recentContacts[i], withRating))
	}

	return &DashboardDTO{
		Stats:           *stats,
		Lifecycle:       lifecycle,
		TopCustomers:    topRanked(scored, 5),
		AtRisk:          atRisk,
		Pipeline:        pipeline,
		Forecast:        forecast,
		Segments:        segments,
		Recommendations: recommendations,
		RecentOrders:    orderDTOs,
		RecentContacts:  contactDTOs,
		Channels:        channels,
	}, nil
}

// scoreSnapshots classifies each customer, isolating bad rows so a single
// inconsistency cannot take the whole dashboard down.
func (s *service) scoreSnapshots(ctx context.Context, snaps []orders.CustomerSnapshot, now time.Time) []ScoredCustomer {
	maxRevenue := decimal.Zero
	for _, snap := range snaps {
		if snap.Revenue.GreaterThan(maxRevenue) {
			maxRevenue = snap.Revenue
		}
	}

	var errs error
	scored := make([]ScoredCustomer, 0, len(snaps))
	for _, snap := range snaps {
		if snap.OrderCount < 0 || snap.ContactCount < 0 || snap.Revenue.IsNegative() {
			errs = multierr.Append(errs, fmt.Errorf("inconsistent rollup for customer %s", snap.CustomerID))
			continue
		}
		scored = append(scored, ScoreCustomer(snap, maxRevenue, now))
	}

	if errs != nil {
		s.metrics.IncFailure("scoring")
		s.logg.Warn(s.logg.WithField(ctx, "skipped", len(multierr.Errors(errs))), "skipped customers during scoring: "+errs.Error())
	}
	return scored
}

func (s *service) buildStats(ctx context.Context, snaps []orders.CustomerSnapshot, now time.Time) (*StatsDTO, error) {
	totalRevenue, err := s.orders.SumRevenue(ctx, nil, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum revenue")
	}
	orderCount, err := s.orders.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}
	customerCount, err := s.customers.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count customers")
	}
	contactCount, err := s.contacts.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count contacts")
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	newCustomers, err := s.customers.CountCreatedSince(ctx, monthStart)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count new customers")
	}

	avgOrderValue := decimal.Zero
	if orderCount > 0 {
		avgOrderValue = totalRevenue.Div(decimal.NewFromInt(orderCount)).Round(2)
	}

	withOrders := 0
	for _, snap := range snaps {
		if snap.OrderCount > 0 {
			withOrders++
		}
	}
	conversion := decimal.Zero
	if customerCount > 0 {
		conversion = decimal.NewFromInt(int64(withOrders)).
			Div(decimal.NewFromInt(customerCount)).
			Mul(decimal.NewFromInt(100)).
			Round(1)
	}

	return &StatsDTO{
		TotalRevenue:          totalRevenue,
		OrderCount:            orderCount,
		CustomerCount:         customerCount,
		ContactCount:          contactCount,
		NewCustomersThisMonth: newCustomers,
		AverageOrderValue:     avgOrderValue,
		ConversionRate:        conversion,
	}, nil
}

func (s *service) buildForecast(ctx context.Context, now time.Time) (Forecast, error) {
	rows, err := s.orders.MonthlyRevenueSince(ctx, now, 3)
	if err != nil {
		return Forecast{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load monthly revenue")
	}

	byMonth := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		byMonth[row.Month] = row.Revenue
	}

	current := byMonth[now.Format("2006-01")]
	previous := byMonth[now.AddDate(0, -1, 0).Format("2006-01")]
	twoAgo := byMonth[now.AddDate(0, -2, 0).Format("2006-01")]

	return BuildForecast(current, previous, twoAgo), nil
}

func (s *service) KPIs(ctx context.Context) (*KPIReportDTO, error) {
	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)

	monthRevenue, err := s.orders.SumRevenue(ctx, &monthStart, &now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum month revenue")
	}
	yearRevenue, err := s.orders.SumRevenue(ctx, &yearStart, &now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum year revenue")
	}
	totalRevenue, err := s.orders.SumRevenue(ctx, nil, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum revenue")
	}
	orderCount, err := s.orders.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}
	customerCount, err := s.customers.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count customers")
	}
	contactCount, err := s.contacts.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count contacts")
	}

	return &KPIReportDTO{
		MonthRevenue:  monthRevenue,
		YearRevenue:   yearRevenue,
		TotalRevenue:  totalRevenue,
		OrderCount:    orderCount,
		CustomerCount: customerCount,
		ContactCount:  contactCount,
	}, nil
}

// MonthlyRevenue returns one bucket per month, zero-filled so charts always
// get a full series.
func (s *service) MonthlyRevenue(ctx context.Context, months int) ([]orders.MonthlyRevenue, error) {
	if months <= 0 {
		months = 12
	}
	now := s.now().UTC()

	rows, err := s.orders.MonthlyRevenueSince(ctx, now, months)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load monthly revenue")
	}

	byMonth := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		byMonth[row.Month] = row.Revenue
	}

	series := make([]orders.MonthlyRevenue, 0, months)
	for i := months - 1; i >= 0; i-- {
		month := now.AddDate(0, -i, 0).Format("2006-01")
		series = append(series, orders.MonthlyRevenue{Month: month, Revenue: byMonth[month]})
	}
	return series, nil
}

func (s *service) TopCustomers(ctx context.Context, limit int) ([]ScoredCustomer, error) {
	if limit <= 0 {
		limit = 5
	}
	snaps, err := s.orders.CustomerSnapshots(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer snapshots")
	}
	scored := s.scoreSnapshots(ctx, snaps, s.now().UTC())
	return topRanked(scored, limit), nil
}

func (s *service) TopProducts(ctx context.Context, limit int) ([]orders.TopProduct, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.orders.TopProducts(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load top products")
	}
	return rows, nil
}

func (s *service) CustomersWithoutOrders(ctx context.Context) ([]InactiveCustomerDTO, error) {
	snaps, err := s.orders.CustomerSnapshots(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer snapshots")
	}

	inactive := []InactiveCustomerDTO{}
	for _, snap := range snaps {
		if snap.OrderCount == 0 {
			inactive = append(inactive, InactiveCustomerDTO{
				CustomerID:   snap.CustomerID.String(),
				CompanyName:  snap.CompanyName,
				ContactCount: snap.ContactCount,
			})
		}
	}
	return inactive, nil
}

// topRanked keeps only customers that have ordered, ranked by revenue.
func topRanked(scored []ScoredCustomer, n int) []ScoredCustomer {
	ranked := make([]ScoredCustomer, 0, len(scored))
	for _, c := range scored {
		if c.OrderCount > 0 {
			ranked = append(ranked, c)
		}
	}
	return TopByRevenue(ranked, n)
}

func collectAtRisk(snaps []orders.CustomerSnapshot, now time.Time) []AtRiskCustomer {
	atRisk := []AtRiskCustomer{}
	for _, snap := range snaps {
		days := DaysSinceOrder(snap.LastOrderAt, now)
		if snap.LastOrderAt == nil || !IsAtRisk(snap.Revenue, days) {
			continue
		}
		atRisk = append(atRisk, AtRiskCustomer{
			CustomerID:  snap.CustomerID.String(),
			CompanyName: snap.CompanyName,
			Revenue:     snap.Revenue,
			HealthScore: HealthScore(days),
			DaysSince:   days,
		})
	}
	sort.SliceStable(atRisk, func(i, j int) bool {
		return atRisk[i].Revenue.GreaterThan(atRisk[j].Revenue)
	})
	if len(atRisk) > 5 {
		atRisk = atRisk[:5]
	}
	return atRisk
}
