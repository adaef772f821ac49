package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ortnersoft/crm-backend/pkg/db/models"
	"github.com/ortnersoft/crm-backend/pkg/enums"
)

// MonthlyRevenue is one calendar-month revenue bucket.
type MonthlyRevenue struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

// CustomerSnapshot is the per-customer rollup the scoring engine consumes.
type CustomerSnapshot struct {
	CustomerID     uuid.UUID       `json:"customer_id"`
	CompanyName    string          `json:"company_name"`
	Revenue        decimal.Decimal `json:"revenue"`
	OrderCount     int             `json:"order_count"`
	OpenOrderCount int             `json:"open_order_count"`
	ContactCount   int             `json:"contact_count"`
	LastOrderAt    *time.Time      `json:"last_order_at,omitempty"`
}

// StatusBucket reports count and revenue for one order status.
type StatusBucket struct {
	Status  enums.OrderStatus `json:"status"`
	Count   int64             `json:"count"`
	Revenue decimal.Decimal   `json:"revenue"`
}

// TopProduct reports sales volume for one catalog product.
type TopProduct struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// SumRevenue totals non-cancelled order revenue, optionally bounded by an
// inclusive order_date range.
func (r *Repository) SumRevenue(ctx context.Context, from, to *time.Time) (decimal.Decimal, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("status <> ?", enums.OrderStatusCancelled)

	if from != nil {
		query = query.Where("order_date >= ?", from.Format("2006-01-02"))
	}
	if to != nil {
		query = query.Where("order_date <= ?", to.Format("2006-01-02"))
	}

	var total decimal.Decimal
	if err := query.Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// SumCustomerRevenue totals non-cancelled revenue for one customer over an
// inclusive date range.
func (r *Repository) SumCustomerRevenue(ctx context.Context, customerID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("customer_id = ?", customerID).
		Where("status <> ?", enums.OrderStatusCancelled).
		Where("order_date >= ?", from.Format("2006-01-02")).
		Where("order_date <= ?", to.Format("2006-01-02")).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// MonthlyRevenueSince buckets non-cancelled revenue by calendar month,
// starting at the first day of the month `months-1` months back.
func (r *Repository) MonthlyRevenueSince(ctx context.Context, now time.Time, months int) ([]MonthlyRevenue, error) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	var rows []MonthlyRevenue
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select(r.monthExpr()+" AS month, COALESCE(SUM(total_amount), 0) AS revenue").
		Where("status <> ?", enums.OrderStatusCancelled).
		Where("order_date >= ?", start.Format("2006-01-02")).
		Group("month").
		Order("month ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CustomerSnapshots joins each customer with order and contact rollups in a
// single pass. Revenue excludes cancelled orders; counts include them.
func (r *Repository) CustomerSnapshots(ctx context.Context) ([]CustomerSnapshot, error) {
	var rows []CustomerSnapshot
	err := r.db.WithContext(ctx).Raw(fmt.Sprintf(`
		SELECT
			c.id AS customer_id,
			c.company_name AS company_name,
			COALESCE(o.revenue, 0) AS revenue,
			COALESCE(o.order_count, 0) AS order_count,
			COALESCE(o.open_order_count, 0) AS open_order_count,
			COALESCE(ct.contact_count, 0) AS contact_count,
			o.last_order_at AS last_order_at
		FROM customers c
		LEFT JOIN (
			SELECT
				customer_id,
				SUM(CASE WHEN status <> 'cancelled' THEN total_amount ELSE 0 END) AS revenue,
				COUNT(*) AS order_count,
				SUM(CASE WHEN status = 'open' THEN 1 ELSE 0 END) AS open_order_count,
				%s AS last_order_at
			FROM orders
			GROUP BY customer_id
		) o ON o.customer_id = c.id
		LEFT JOIN (
			SELECT customer_id, COUNT(*) AS contact_count
			FROM contacts
			GROUP BY customer_id
		) ct ON ct.customer_id = c.id
	`, r.lastOrderExpr())).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// StatusPipeline reports count and revenue per order status.
func (r *Repository) StatusPipeline(ctx context.Context) ([]StatusBucket, error) {
	var rows []StatusBucket
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS revenue").
		Group("status").
		Order("status ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// TopProducts ranks products by non-cancelled revenue.
func (r *Repository) TopProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	var rows []TopProduct
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			p.id AS product_id,
			p.name AS name,
			SUM(i.quantity) AS quantity,
			COALESCE(SUM(i.quantity * i.unit_price * (1 - i.discount_percent / 100.0)), 0) AS revenue
		FROM order_items i
		JOIN orders o ON o.id = i.order_id AND o.status <> 'cancelled'
		JOIN products p ON p.id = i.product_id
		GROUP BY p.id, p.name
		ORDER BY revenue DESC
		LIMIT ?
	`, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the total number of orders.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *Repository) monthExpr() string {
	if r.db.Dialector.Name() == "sqlite" {
		return "strftime('%Y-%m', order_date)"
	}
	return "to_char(order_date, 'YYYY-MM')"
}

// lastOrderExpr keeps MAX(order_date) scannable as a timestamp. SQLite drops
// the column type on aggregate expressions, so it needs a normalizing cast.
func (r *Repository) lastOrderExpr() string {
	if r.db.Dialector.Name() == "sqlite" {
		return "datetime(MAX(order_date))"
	}
	return "MAX(order_date)"
}
