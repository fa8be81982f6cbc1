package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fjod/storefront/internal/domain"
)

func (c *Client) CreateOrder(ctx context.Context, token string, draft domain.OrderDraft) (*domain.Order, error) {
	var order domain.Order
	if err := c.do(ctx, http.MethodPost, "/api/orders", nil, token, draft, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) GetOrder(ctx context.Context, token, id string) (*domain.Order, error) {
	var order domain.Order
	if err := c.do(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(id), nil, token, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) PayOrder(ctx context.Context, token, id string, result domain.PaymentResult) (*domain.Order, error) {
	var order domain.Order
	if err := c.do(ctx, http.MethodPut, "/api/orders/"+url.PathEscape(id)+"/pay", nil, token, result, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) ListMyOrders(ctx context.Context, token string) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.do(ctx, http.MethodGet, "/api/orders/myorders", nil, token, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListOrders is the admin listing of every order.
func (c *Client) ListOrders(ctx context.Context, token string) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.do(ctx, http.MethodGet, "/api/orders", nil, token, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
