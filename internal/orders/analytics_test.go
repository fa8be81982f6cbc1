package orders

import (
	"testing"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
)

func order(total float64, created time.Time, paid, delivered bool, items ...domain.LineItem) domain.Order {
	return domain.Order{
		OrderDraft:  domain.OrderDraft{OrderItems: items, Prices: domain.Prices{TotalPrice: total}},
		IsPaid:      paid,
		IsDelivered: delivered,
		CreatedAt:   created,
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2024, 6, 30, 18, 0, 0, 0, time.UTC)
	day1 := time.Date(2024, 6, 28, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 6, 29, 9, 0, 0, 0, time.UTC)

	all := []domain.Order{
		order(572, day1, false, false, domain.LineItem{Name: "Jeans", Qty: 1}),
		order(1770, day1, true, false, domain.LineItem{Name: "Tee", Qty: 3}, domain.LineItem{Name: "Jeans", Qty: 1}),
		order(100.1, day2, true, true, domain.LineItem{Name: "Socks", Qty: 2}),
		order(9999, now.AddDate(0, 0, -40), true, true, domain.LineItem{Name: "Old", Qty: 50}),
	}

	s := Summarize(all, 7, now)

	assert.Equal(t, 7, s.Days)
	assert.Equal(t, 3, s.Orders)
	assert.Equal(t, 2442.1, s.Revenue)
	assert.Equal(t, 814.03, s.AverageOrderValue)
	assert.Equal(t, []DailySales{
		{Date: "2024-06-28", Revenue: 2342, Orders: 2},
		{Date: "2024-06-29", Revenue: 100.1, Orders: 1},
	}, s.DailySales)
	assert.Equal(t, []ProductSales{{"Tee", 3}, {"Jeans", 2}, {"Socks", 2}}, s.TopProducts)
	assert.Equal(t, StatusBreakdown{Pending: 1, Paid: 1, Delivered: 1}, s.Status)
}

func TestSummarize_EmptyAndDefaultWindow(t *testing.T) {
	s := Summarize(nil, 0, time.Now())

	assert.Equal(t, DefaultAnalyticsWindow, s.Days)
	assert.Zero(t, s.Orders)
	assert.Zero(t, s.AverageOrderValue)
	assert.Empty(t, s.DailySales)
	assert.Empty(t, s.TopProducts)
}

func TestSummarize_TopProductsCapped(t *testing.T) {
	now := time.Now()
	var items []domain.LineItem
	for i, name := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		items = append(items, domain.LineItem{Name: name, Qty: i + 1})
	}

	s := Summarize([]domain.Order{order(10, now, false, false, items...)}, 30, now)

	assert.Len(t, s.TopProducts, 5)
	assert.Equal(t, "g", s.TopProducts[0].Name)
}
