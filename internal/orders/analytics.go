package orders

import (
	"sort"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	DefaultAnalyticsWindow = 30
	topProductsLimit       = 5
)

type DailySales struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

type ProductSales struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

type StatusBreakdown struct {
	Pending   int `json:"pending"`
	Paid      int `json:"paid"`
	Delivered int `json:"delivered"`
}

type Summary struct {
	Days              int             `json:"days"`
	Revenue           float64         `json:"revenue"`
	Orders            int             `json:"orders"`
	AverageOrderValue float64         `json:"averageOrderValue"`
	DailySales        []DailySales    `json:"dailySales"`
	TopProducts       []ProductSales  `json:"topProducts"`
	Status            StatusBreakdown `json:"status"`
}

type dayBucket struct {
	revenue decimal.Decimal
	orders  int
}

// Summarize aggregates orders created in the last days days (counted back
// from now). Daily buckets are UTC dates in ascending order.
func Summarize(all []domain.Order, days int, now time.Time) Summary {
	if days <= 0 {
		days = DefaultAnalyticsWindow
	}
	since := now.Add(-time.Duration(days) * 24 * time.Hour)

	revenue := decimal.Zero
	daily := make(map[string]*dayBucket)
	qtyByName := make(map[string]int)
	s := Summary{Days: days}

	for _, o := range all {
		if o.CreatedAt.Before(since) {
			continue
		}
		total := decimal.NewFromFloat(o.TotalPrice)
		revenue = revenue.Add(total)
		s.Orders++

		day := o.CreatedAt.UTC().Format(time.DateOnly)
		b, ok := daily[day]
		if !ok {
			b = &dayBucket{revenue: decimal.Zero}
			daily[day] = b
		}
		b.revenue = b.revenue.Add(total)
		b.orders++

		for _, it := range o.OrderItems {
			qtyByName[it.Name] += it.Qty
		}

		switch {
		case o.IsDelivered:
			s.Status.Delivered++
		case o.IsPaid:
			s.Status.Paid++
		default:
			s.Status.Pending++
		}
	}

	s.Revenue = revenue.Round(2).InexactFloat64()
	if s.Orders > 0 {
		s.AverageOrderValue = revenue.Div(decimal.NewFromInt(int64(s.Orders))).Round(2).InexactFloat64()
	}

	s.DailySales = make([]DailySales, 0, len(daily))
	for day, b := range daily {
		s.DailySales = append(s.DailySales, DailySales{Date: day, Revenue: b.revenue.Round(2).InexactFloat64(), Orders: b.orders})
	}
	sort.Slice(s.DailySales, func(i, j int) bool { return s.DailySales[i].Date < s.DailySales[j].Date })

	s.TopProducts = make([]ProductSales, 0, len(qtyByName))
	for name, qty := range qtyByName {
		s.TopProducts = append(s.TopProducts, ProductSales{Name: name, Qty: qty})
	}
	sort.Slice(s.TopProducts, func(i, j int) bool {
		if s.TopProducts[i].Qty != s.TopProducts[j].Qty {
			return s.TopProducts[i].Qty > s.TopProducts[j].Qty
		}
		return s.TopProducts[i].Name < s.TopProducts[j].Name
	})
	if len(s.TopProducts) > topProductsLimit {
		s.TopProducts = s.TopProducts[:topProductsLimit]
	}
	return s
}
