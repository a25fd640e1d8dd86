package api

import (
	"context"
	"net/http"
)

func (c *Client) ListSettings(ctx context.Context) ([]SystemSetting, error) {
	var settings []SystemSetting
	if err := c.do(ctx, newRequest(http.MethodGet, "/settings", nil), &settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// UpdateSettings sends key to value pairs, e.g. PRICE_ELECTRICITY=4000.
func (c *Client) UpdateSettings(ctx context.Context, values map[string]string) error {
	req, err := newRequest(http.MethodPut, "/settings", nil).withJSON(values)
	if err != nil {
		return err
	}
	return c.do(ctx, req, nil)
}

func (c *Client) ListNotifications(ctx context.Context, q ListQuery) (Page[Notification], error) {
	var page Page[Notification]
	if err := c.do(ctx, newRequest(http.MethodGet, "/notifications", q.Values()), &page); err != nil {
		return Page[Notification]{}, err
	}
	return page, nil
}

func (c *Client) UnreadNotificationCount(ctx context.Context) (int, error) {
	var count int
	if err := c.do(ctx, newRequest(http.MethodGet, "/notifications/unread-count", nil), &count); err != nil {
		return 0, err
	}
	return count, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id int64) error {
	return c.do(ctx, newRequest(http.MethodPut, idPath("/notifications", id, "read"), nil), nil)
}

func (c *Client) ListUserRequests(ctx context.Context) ([]UserRequest, error) {
	var requests []UserRequest
	if err := c.do(ctx, newRequest(http.MethodGet, "/user-requests", nil), &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (c *Client) ApproveUserRequest(ctx context.Context, id int64) error {
	return c.do(ctx, newRequest(http.MethodPost, idPath("/user-requests", id, "approve"), nil), nil)
}

func (c *Client) RejectUserRequest(ctx context.Context, id int64) error {
	return c.do(ctx, newRequest(http.MethodPost, idPath("/user-requests", id, "reject"), nil), nil)
}

func (c *Client) Dashboard(ctx context.Context) (Dashboard, error) {
	var dashboard Dashboard
	if err := c.do(ctx, newRequest(http.MethodGet, "/dashboard", nil), &dashboard); err != nil {
		return Dashboard{}, err
	}
	return dashboard, nil
}
