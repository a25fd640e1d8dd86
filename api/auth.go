package api

import (
	"context"
	"fmt"
	"net/http"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login posts credentials. The backend answers by setting session cookies on
// the client's jar; the profile must be fetched separately.
func (c *Client) Login(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("email and password are required")
	}
	req, err := newRequest(http.MethodPost, loginPath, nil).withJSON(Credentials{Email: email, Password: password})
	if err != nil {
		return err
	}
	return c.do(ctx, req, nil)
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, newRequest(http.MethodPost, "/auth/logout", nil), nil)
}

// Refresh asks the backend to rotate the access cookie using the refresh
// cookie. It never triggers another refresh.
func (c *Client) Refresh(ctx context.Context) error {
	req := newRequest(http.MethodPost, refreshPath, nil)
	req.retried = true
	return c.do(ctx, req, nil)
}

func (c *Client) Profile(ctx context.Context) (UserProfile, error) {
	var profile UserProfile
	if err := c.do(ctx, newRequest(http.MethodGet, "/users/profile", nil), &profile); err != nil {
		return UserProfile{}, err
	}
	return profile, nil
}
