package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentMethod_DecodesStringAndLegacyObject(t *testing.T) {
	cases := map[string]PaymentMethod{
		`"mobile_otp"`:           PaymentMobileOTP,
		`"cod"`:                  PaymentMethod("cod"),
		`""`:                     DefaultPaymentMethod,
		`{"method":"upi"}`:       PaymentMethod("upi"),
		`{"method":""}`:          DefaultPaymentMethod,
		`{"other":"mobile_otp"}`: DefaultPaymentMethod,
	}
	for raw, want := range cases {
		var got PaymentMethod
		require.NoError(t, json.Unmarshal([]byte(raw), &got), raw)
		assert.Equal(t, want, got, raw)
	}
}

func TestPaymentMethod_RejectsGarbage(t *testing.T) {
	var got PaymentMethod
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &got))
}

func TestShippingAddress_ValidateListsMissingFields(t *testing.T) {
	err := ShippingAddress{FullName: "A", City: "Pune"}.Validate()

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"address", "postalCode", "country", "phone"}, verr.Fields)

	full := ShippingAddress{
		FullName: "A", Address: "1 Road", City: "Pune",
		PostalCode: "411001", Country: "India", Phone: "9876543210",
	}
	assert.NoError(t, full.Validate())
	assert.False(t, full.IsZero())
	assert.True(t, ShippingAddress{}.IsZero())
}

func TestLineItem_KeyIgnoresQuantity(t *testing.T) {
	a := LineItem{ProductID: "p1", Size: "M", Color: "red", Qty: 1}
	b := LineItem{ProductID: "p1", Size: "M", Color: "red", Qty: 4}
	c := LineItem{ProductID: "p1", Size: "L", Color: "red", Qty: 1}

	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
}

func TestCheckoutStatus_Transitions(t *testing.T) {
	assert.True(t, CheckoutStatusAddressMissing.CanTransitionTo(CheckoutStatusAddressPresent))
	assert.True(t, CheckoutStatusAddressPresent.CanTransitionTo(CheckoutStatusPaymentPending))
	assert.True(t, CheckoutStatusPaymentPending.CanTransitionTo(CheckoutStatusSubmitting))
	assert.True(t, CheckoutStatusSubmitting.CanTransitionTo(CheckoutStatusSubmitted))
	assert.True(t, CheckoutStatusSubmitting.CanTransitionTo(CheckoutStatusFailed))
	assert.True(t, CheckoutStatusFailed.CanTransitionTo(CheckoutStatusPaymentPending))

	assert.False(t, CheckoutStatusAddressMissing.CanTransitionTo(CheckoutStatusSubmitting))
	assert.False(t, CheckoutStatusSubmitting.CanTransitionTo(CheckoutStatusSubmitting))
	assert.False(t, CheckoutStatusFailed.CanTransitionTo(CheckoutStatusSubmitted))
	assert.True(t, CheckoutStatusSubmitted.IsTerminal())
}

func TestOrder_FlattensDraftFields(t *testing.T) {
	o := Order{
		ID: "mock-order-1",
		OrderDraft: OrderDraft{
			PaymentMethod: PaymentMobileOTP,
			Prices:        Prices{ItemsPrice: 400, ShippingPrice: 100, TaxPrice: 72, TotalPrice: 572},
		},
	}
	data, err := json.Marshal(o)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, 572.0, raw["totalPrice"])
	assert.Equal(t, "mobile_otp", raw["paymentMethod"])
	assert.True(t, IsMockOrderID(o.ID))
}

func TestProductQuery_ValuesOmitZeroFields(t *testing.T) {
	q := ProductQuery{Keyword: "tee", Page: 2, MinPrice: 99.5, InStock: true}
	v := q.Values()

	assert.Equal(t, "tee", v.Get("keyword"))
	assert.Equal(t, "2", v.Get("pageNumber"))
	assert.Equal(t, "99.5", v.Get("minPrice"))
	assert.Equal(t, "true", v.Get("inStock"))
	assert.Empty(t, v.Get("category"))
	assert.Equal(t, q.CacheKey(), ProductQuery{InStock: true, MinPrice: 99.5, Page: 2, Keyword: "tee"}.CacheKey())
}
