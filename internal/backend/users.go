package backend

import (
	"context"
	"net/http"

	"github.com/fjod/storefront/internal/domain"
)

func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.UserInfo, error) {
	var u domain.UserInfo
	if err := c.do(ctx, http.MethodPost, "/api/users/login", nil, "", creds, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Register(ctx context.Context, reg domain.Registration) (*domain.UserInfo, error) {
	var u domain.UserInfo
	if err := c.do(ctx, http.MethodPost, "/api/users", nil, "", reg, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Profile(ctx context.Context, token string) (*domain.UserInfo, error) {
	var u domain.UserInfo
	if err := c.do(ctx, http.MethodGet, "/api/users/profile", nil, token, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateProfile(ctx context.Context, token string, update domain.ProfileUpdate) (*domain.UserInfo, error) {
	var u domain.UserInfo
	if err := c.do(ctx, http.MethodPut, "/api/users/profile", nil, token, update, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
