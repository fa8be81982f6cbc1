package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// LineItem is one cart line. A product can appear on several lines when the
// selected size or color differs.
type LineItem struct {
	ProductID    string  `json:"_id"`
	Name         string  `json:"name"`
	Image        string  `json:"image"`
	Price        float64 `json:"price"`
	Size         string  `json:"size"`
	Color        string  `json:"color"`
	Qty          int     `json:"qty"`
	CountInStock int     `json:"countInStock"`
}

// LineKey identifies a cart line.
type LineKey struct {
	ProductID string `json:"id"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

func (i LineItem) Key() LineKey {
	return LineKey{ProductID: i.ProductID, Size: i.Size, Color: i.Color}
}

func (k LineKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.ProductID, k.Size, k.Color)
}

type ShippingAddress struct {
	FullName   string `json:"fullName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

func (a ShippingAddress) IsZero() bool {
	return a == ShippingAddress{}
}

// Validate reports every missing required field at once.
func (a ShippingAddress) Validate() error {
	var missing []string
	check := func(name, v string) {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	check("fullName", a.FullName)
	check("address", a.Address)
	check("city", a.City)
	check("postalCode", a.PostalCode)
	check("country", a.Country)
	check("phone", a.Phone)

	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// ValidationError lists the fields that block checkout progression.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// PaymentMethod is a single string tag. Older clients stored it as an object
// ({"method": "..."}); both shapes decode to the tag.
type PaymentMethod string

const (
	PaymentMobileOTP PaymentMethod = "mobile_otp"

	DefaultPaymentMethod = PaymentMobileOTP
)

// NormalizePaymentMethod maps an empty tag to the default.
func NormalizePaymentMethod(m PaymentMethod) PaymentMethod {
	if strings.TrimSpace(string(m)) == "" {
		return DefaultPaymentMethod
	}
	return PaymentMethod(strings.TrimSpace(string(m)))
}

func (m *PaymentMethod) UnmarshalJSON(data []byte) error {
	var tag string
	if err := json.Unmarshal(data, &tag); err == nil {
		*m = NormalizePaymentMethod(PaymentMethod(tag))
		return nil
	}

	var obj struct {
		Method string `json:"method"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("payment method must be a string or {\"method\": string}: %w", err)
	}
	*m = NormalizePaymentMethod(PaymentMethod(obj.Method))
	return nil
}

func (m PaymentMethod) String() string {
	return string(m)
}
