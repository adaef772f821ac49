package insights

import (
	"github.com/shopspring/decimal"

	"github.com/ortnersoft/crm-backend/internal/contacts"
	"github.com/ortnersoft/crm-backend/internal/orders"
)

// StatsDTO carries the headline dashboard numbers.
type StatsDTO struct {
	TotalRevenue          decimal.Decimal `json:"total_revenue"`
	OrderCount            int64           `json:"order_count"`
	CustomerCount         int64           `json:"customer_count"`
	ContactCount          int64           `json:"contact_count"`
	NewCustomersThisMonth int64           `json:"new_customers_this_month"`
	AverageOrderValue     decimal.Decimal `json:"average_order_value"`
	ConversionRate        decimal.Decimal `json:"conversion_rate"`
}

// DashboardDTO is the full dashboard payload.
type DashboardDTO struct {
	Stats           StatsDTO                `json:"stats"`
	Lifecycle       map[string]int          `json:"lifecycle"`
	TopCustomers    []ScoredCustomer        `json:"top_customers"`
	AtRisk          []AtRiskCustomer        `json:"at_risk"`
	Pipeline        []orders.StatusBucket   `json:"pipeline"`
	Forecast        Forecast                `json:"forecast"`
	Segments        map[string]int          `json:"segments"`
	Recommendations []Recommendation        `json:"recommendations"`
	RecentOrders    []orders.OrderDTO       `json:"recent_orders"`
	RecentContacts  []contacts.ContactDTO   `json:"recent_contacts"`
	Channels        []contacts.ChannelCount `json:"channels"`
}

// KPIReportDTO summarizes activity for the running month and year.
type KPIReportDTO struct {
	MonthRevenue  decimal.Decimal `json:"month_revenue"`
	YearRevenue   decimal.Decimal `json:"year_revenue"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	OrderCount    int64           `json:"order_count"`
	CustomerCount int64           `json:"customer_count"`
	ContactCount  int64           `json:"contact_count"`
}

// InactiveCustomerDTO is a customer without a single order.
type InactiveCustomerDTO struct {
	CustomerID   string `json:"customer_id"`
	CompanyName  string `json:"company_name"`
	ContactCount int    `json:"contact_count"`
}
