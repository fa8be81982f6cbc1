package pricing

import (
	"math/rand"
	"testing"

	"github.com/fjod/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestCalculate_OverThresholdShipsFree(t *testing.T) {
	got := Calculate([]domain.LineItem{{ProductID: "p1", Price: 500, Qty: 3}})

	assert.Equal(t, domain.Prices{
		ItemsPrice:    1500,
		ShippingPrice: 0,
		TaxPrice:      270,
		TotalPrice:    1770,
	}, got)
}

func TestCalculate_UnderThresholdPaysFlatFee(t *testing.T) {
	got := Calculate([]domain.LineItem{{ProductID: "p1", Price: 200, Qty: 2}})

	assert.Equal(t, domain.Prices{
		ItemsPrice:    400,
		ShippingPrice: 100,
		TaxPrice:      72,
		TotalPrice:    572,
	}, got)
}

func TestCalculate_ExactlyAtThresholdStillPaysShipping(t *testing.T) {
	got := Calculate([]domain.LineItem{{ProductID: "p1", Price: 250, Qty: 4}})

	assert.Equal(t, 1000.0, got.ItemsPrice)
	assert.Equal(t, 100.0, got.ShippingPrice)
	assert.Equal(t, 180.0, got.TaxPrice)
	assert.Equal(t, 1280.0, got.TotalPrice)
}

func TestCalculate_EmptyCart(t *testing.T) {
	got := Calculate(nil)

	assert.Equal(t, 0.0, got.ItemsPrice)
	assert.Equal(t, 100.0, got.ShippingPrice)
	assert.Equal(t, 0.0, got.TaxPrice)
	assert.Equal(t, 100.0, got.TotalPrice)
}

func TestCalculate_RoundsTaxToCents(t *testing.T) {
	got := Calculate([]domain.LineItem{{ProductID: "p1", Price: 19.99, Qty: 3}})

	assert.Equal(t, 59.97, got.ItemsPrice)
	assert.Equal(t, 10.79, got.TaxPrice) // 10.7946
	assert.Equal(t, 170.76, got.TotalPrice)
}

func TestCalculate_OrderIndependentAndIdempotent(t *testing.T) {
	items := []domain.LineItem{
		{ProductID: "a", Price: 129.5, Qty: 2},
		{ProductID: "b", Price: 799, Qty: 1},
		{ProductID: "c", Price: 49.99, Qty: 5},
		{ProductID: "d", Price: 0.1, Qty: 7},
	}
	want := Calculate(items)
	assert.Equal(t, want, Calculate(items))

	r := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]domain.LineItem(nil), items...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, Calculate(shuffled))
	}
}

func TestRules_Custom(t *testing.T) {
	rules := NewRules(50, 5, 0.1)
	got := rules.Calculate([]domain.LineItem{{ProductID: "p", Price: 20, Qty: 2}})

	assert.Equal(t, 40.0, got.ItemsPrice)
	assert.Equal(t, 5.0, got.ShippingPrice)
	assert.Equal(t, 4.0, got.TaxPrice)
	assert.Equal(t, 49.0, got.TotalPrice)
}
