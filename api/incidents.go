package api

import (
	"context"
	"net/http"
)

func (c *Client) ListIncidents(ctx context.Context, q ListQuery) (Page[Incident], error) {
	var page Page[Incident]
	if err := c.do(ctx, newRequest(http.MethodGet, "/incidents", q.Values()), &page); err != nil {
		return Page[Incident]{}, err
	}
	return page, nil
}

func (c *Client) ListIncidentsByBuilding(ctx context.Context, buildingID int64) ([]Incident, error) {
	var incidents []Incident
	if err := c.do(ctx, newRequest(http.MethodGet, idPath("/incidents/building", buildingID), nil), &incidents); err != nil {
		return nil, err
	}
	return incidents, nil
}

func (c *Client) UpdateIncidentStatus(ctx context.Context, id int64, update IncidentStatusUpdate) (Incident, error) {
	req, err := newRequest(http.MethodPut, idPath("/incidents", id, "status"), nil).withJSON(update)
	if err != nil {
		return Incident{}, err
	}
	var incident Incident
	if err := c.do(ctx, req, &incident); err != nil {
		return Incident{}, err
	}
	return incident, nil
}

func (c *Client) DeleteIncident(ctx context.Context, id int64) error {
	return c.do(ctx, newRequest(http.MethodDelete, idPath("/incidents", id), nil), nil)
}
