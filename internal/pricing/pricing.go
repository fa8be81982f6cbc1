// Package pricing derives order totals from cart lines.
package pricing

import (
	"github.com/fjod/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// Rules hold the storefront's shipping and tax policy.
type Rules struct {
	// Shipping is free when the items subtotal is strictly above this amount.
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
	TaxRate               decimal.Decimal
}

var DefaultRules = Rules{
	FreeShippingThreshold: decimal.NewFromInt(1000),
	ShippingFee:           decimal.NewFromInt(100),
	TaxRate:               decimal.RequireFromString("0.18"),
}

// NewRules builds rules from plain float settings.
func NewRules(threshold, fee, taxRate float64) Rules {
	return Rules{
		FreeShippingThreshold: decimal.NewFromFloat(threshold),
		ShippingFee:           decimal.NewFromFloat(fee),
		TaxRate:               decimal.NewFromFloat(taxRate),
	}
}

// Calculate prices items with DefaultRules.
func Calculate(items []domain.LineItem) domain.Prices {
	return DefaultRules.Calculate(items)
}

func (r Rules) Calculate(items []domain.LineItem) domain.Prices {
	itemsPrice := decimal.Zero
	for _, it := range items {
		line := decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Qty)))
		itemsPrice = itemsPrice.Add(line)
	}

	shipping := r.ShippingFee
	if itemsPrice.GreaterThan(r.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	tax := itemsPrice.Mul(r.TaxRate).Round(2)
	total := itemsPrice.Add(shipping).Add(tax).Round(2)

	return domain.Prices{
		ItemsPrice:    itemsPrice.InexactFloat64(),
		ShippingPrice: shipping.InexactFloat64(),
		TaxPrice:      tax.InexactFloat64(),
		TotalPrice:    total.InexactFloat64(),
	}
}
