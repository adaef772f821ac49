// Package exports renders CSV downloads in the dialect European
// spreadsheet tools expect: semicolon separated, UTF-8 with BOM, currency
// with two decimals.
package exports

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ortnersoft/crm-backend/internal/contacts"
	"github.com/ortnersoft/crm-backend/internal/customers"
	"github.com/ortnersoft/crm-backend/internal/orders"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func newWriter(w io.Writer) (*csv.Writer, error) {
	if _, err := w.Write(utf8BOM); err != nil {
		return nil, err
	}
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	return cw, nil
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// WriteCustomers renders the customer list.
func WriteCustomers(w io.Writer, rows []customers.CustomerDTO) error {
	cw, err := newWriter(w)
	if err != nil {
		return err
	}

	header := []string{"company", "contact", "email", "phone", "street", "postal_code", "city", "country", "industry", "created_at"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, row := range rows {
		record := []string{
			row.CompanyName,
			row.ContactName,
			row.Email,
			stringOrEmpty(row.Phone),
			stringOrEmpty(row.Street),
			stringOrEmpty(row.PostalCode),
			stringOrEmpty(row.City),
			stringOrEmpty(row.Country),
			stringOrEmpty(row.Industry),
			row.CreatedAt.Format("2006-01-02"),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteOrders renders the order list.
func WriteOrders(w io.Writer, rows []orders.OrderDTO) error {
	cw, err := newWriter(w)
	if err != nil {
		return err
	}

	header := []string{"order_number", "customer_id", "order_date", "status", "total_amount"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, row := range rows {
		record := []string{
			row.OrderNumber,
			row.CustomerID.String(),
			row.OrderDate,
			row.Status.String(),
			money(row.TotalAmount),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteContacts renders the contact list. The rating column is only
// emitted when the requester may view ratings.
func WriteContacts(w io.Writer, rows []contacts.ContactDTO, withRating bool) error {
	cw, err := newWriter(w)
	if err != nil {
		return err
	}

	header := []string{"customer_id", "channel", "subject", "contacted_at", "duration_minutes"}
	if withRating {
		header = append(header, "rating")
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, row := range rows {
		record := []string{
			row.CustomerID.String(),
			row.Channel.String(),
			row.Subject,
			row.ContactedAt.Format("2006-01-02 15:04"),
			intOrEmpty(row.DurationMinutes),
		}
		if withRating {
			record = append(record, intOrEmpty(row.Rating))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteOrderDetail renders a single order with its line items.
func WriteOrderDetail(w io.Writer, order orders.OrderDTO) error {
	cw, err := newWriter(w)
	if err != nil {
		return err
	}

	header := []string{"order_number", "product_id", "quantity", "unit_price", "discount_percent", "line_total"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, item := range order.Items {
		record := []string{
			order.OrderNumber,
			item.ProductID.String(),
			intToString(item.Quantity),
			money(item.UnitPrice),
			item.DiscountPercent.StringFixed(2),
			money(item.LineTotal),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	total := []string{order.OrderNumber, "total", "", "", "", money(order.TotalAmount)}
	if err := cw.Write(total); err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}

func intOrEmpty(v *int) string {
	if v == nil {
		return ""
	}
	return intToString(*v)
}

func intToString(v int) string {
	return strconv.Itoa(v)
}
