package apiclient

import (
	"context"
	"net/http"

	"contactbook/internal/model"
	"contactbook/internal/storage"
)

// Login returns the backend envelope. A 2xx answer with success=false is
// not an error at this layer.
func (c *Client) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	var resp model.AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", "/auth/login", req, &resp); err != nil {
		return model.AuthResponse{}, err
	}
	return resp, nil
}

func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	var resp model.AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", "/auth/register", req, &resp); err != nil {
		return model.AuthResponse{}, err
	}
	return resp, nil
}

// Logout discards the bearer token locally. The backend keeps no session
// to invalidate.
func (c *Client) Logout(ctx context.Context) error {
	return c.storage.Remove(ctx, storage.TokenKey)
}
