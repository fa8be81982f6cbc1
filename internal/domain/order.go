package domain

import (
	"strings"
	"time"
)

// MockOrderPrefix marks orders synthesized locally when no backend is configured.
const MockOrderPrefix = "mock-order-"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type Prices struct {
	ItemsPrice    float64 `json:"itemsPrice"`
	ShippingPrice float64 `json:"shippingPrice"`
	TaxPrice      float64 `json:"taxPrice"`
	TotalPrice    float64 `json:"totalPrice"`
}

// OrderDraft is what the client submits. The backend owns everything else.
type OrderDraft struct {
	OrderItems      []LineItem      `json:"orderItems"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	Prices
}

type Order struct {
	ID   string `json:"_id"`
	User string `json:"user,omitempty"`
	OrderDraft

	IsPaid      bool        `json:"isPaid"`
	PaidAt      *time.Time  `json:"paidAt"`
	IsDelivered bool        `json:"isDelivered"`
	DeliveredAt *time.Time  `json:"deliveredAt"`
	Status      OrderStatus `json:"status,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`

	// Mock is set on orders that only exist in session storage.
	Mock bool `json:"mock,omitempty"`
	// Placeholder is set on fabricated display orders (dev mode only).
	Placeholder bool `json:"placeholder,omitempty"`
}

func IsMockOrderID(id string) bool {
	return strings.HasPrefix(id, MockOrderPrefix)
}

// PaymentResult is forwarded to the backend when an order is paid.
type PaymentResult struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	UpdateTime string `json:"update_time"`
	Phone      string `json:"phone,omitempty"`
}
