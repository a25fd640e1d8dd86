package api

import (
	"context"
	"net/http"
)

func (c *Client) ListBuildings(ctx context.Context, q ListQuery) (Page[Building], error) {
	if q.Sort == "" {
		q.Sort = "name,asc"
	}
	var page Page[Building]
	if err := c.do(ctx, newRequest(http.MethodGet, "/buildings", q.Values()), &page); err != nil {
		return Page[Building]{}, err
	}
	return page, nil
}

func (c *Client) GetBuilding(ctx context.Context, id int64) (Building, error) {
	var building Building
	if err := c.do(ctx, newRequest(http.MethodGet, idPath("/buildings", id), nil), &building); err != nil {
		return Building{}, err
	}
	return building, nil
}

func (c *Client) CreateBuilding(ctx context.Context, input BuildingInput, image *File) (Building, error) {
	form, err := newMultipart().jsonPart("data", input).filePart("image", image).build()
	if err != nil {
		return Building{}, err
	}
	var building Building
	if err := c.do(ctx, newRequest(http.MethodPost, "/buildings", nil).withMultipart(form), &building); err != nil {
		return Building{}, err
	}
	return building, nil
}

// UpdateBuilding updates the text fields, then uploads the image when one is
// given. The returned building reflects the last call made.
func (c *Client) UpdateBuilding(ctx context.Context, id int64, input BuildingInput, image *File) (Building, error) {
	req, err := newRequest(http.MethodPut, idPath("/buildings", id), nil).withJSON(input)
	if err != nil {
		return Building{}, err
	}
	var building Building
	if err := c.do(ctx, req, &building); err != nil {
		return Building{}, err
	}
	if image == nil {
		return building, nil
	}
	form, err := newMultipart().filePart("image", image).build()
	if err != nil {
		return Building{}, err
	}
	if err := c.do(ctx, newRequest(http.MethodPost, idPath("/buildings", id, "image"), nil).withMultipart(form), &building); err != nil {
		return Building{}, err
	}
	return building, nil
}

func (c *Client) DeleteBuilding(ctx context.Context, id int64) error {
	return c.do(ctx, newRequest(http.MethodDelete, idPath("/buildings", id), nil), nil)
}
