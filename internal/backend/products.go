package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fjod/storefront/internal/domain"
)

func (c *Client) ListProducts(ctx context.Context, q domain.ProductQuery) (*domain.ProductPage, error) {
	var page domain.ProductPage
	if err := c.do(ctx, http.MethodGet, "/api/products", q.Values(), "", nil, &page); err != nil {
		return nil, err
	}
	if page.Page == 0 {
		page.Page = 1
	}
	if page.Pages == 0 {
		page.Pages = 1
	}
	return &page, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	if err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), nil, "", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) TopProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.do(ctx, http.MethodGet, "/api/products/top/rated", nil, "", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) FilterOptions(ctx context.Context) (*domain.FilterOptions, error) {
	var opts domain.FilterOptions
	if err := c.do(ctx, http.MethodGet, "/api/products/filters", nil, "", nil, &opts); err != nil {
		return nil, err
	}
	return &opts, nil
}

func (c *Client) CreateProduct(ctx context.Context, token string, p domain.Product) (*domain.Product, error) {
	var created domain.Product
	if err := c.do(ctx, http.MethodPost, "/api/products", nil, token, p, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateProduct(ctx context.Context, token, id string, p domain.Product) (*domain.Product, error) {
	var updated domain.Product
	if err := c.do(ctx, http.MethodPut, "/api/products/"+url.PathEscape(id), nil, token, p, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteProduct(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/products/"+url.PathEscape(id), nil, token, nil, nil)
}
