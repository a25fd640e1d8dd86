package api

import (
	"context"
	"net/http"
)

func (c *Client) ListTenants(ctx context.Context, q ListQuery) (Page[Tenant], error) {
	if q.Sort == "" {
		q.Sort = "fullName,asc"
	}
	var page Page[Tenant]
	if err := c.do(ctx, newRequest(http.MethodGet, "/tenants", q.Values()), &page); err != nil {
		return Page[Tenant]{}, err
	}
	return page, nil
}

func (c *Client) GetTenant(ctx context.Context, id int64) (Tenant, error) {
	var tenant Tenant
	if err := c.do(ctx, newRequest(http.MethodGet, idPath("/tenants", id), nil), &tenant); err != nil {
		return Tenant{}, err
	}
	return tenant, nil
}

func (c *Client) CreateTenant(ctx context.Context, input TenantInput, citizenIDImage *File) (Tenant, error) {
	form, err := newMultipart().jsonPart("data", input).filePart("image", citizenIDImage).build()
	if err != nil {
		return Tenant{}, err
	}
	var tenant Tenant
	if err := c.do(ctx, newRequest(http.MethodPost, "/tenants", nil).withMultipart(form), &tenant); err != nil {
		return Tenant{}, err
	}
	return tenant, nil
}

func (c *Client) UpdateTenant(ctx context.Context, id int64, input TenantInput, citizenIDImage *File) (Tenant, error) {
	req, err := newRequest(http.MethodPut, idPath("/tenants", id), nil).withJSON(input)
	if err != nil {
		return Tenant{}, err
	}
	var tenant Tenant
	if err := c.do(ctx, req, &tenant); err != nil {
		return Tenant{}, err
	}
	if citizenIDImage == nil {
		return tenant, nil
	}
	form, err := newMultipart().filePart("image", citizenIDImage).build()
	if err != nil {
		return Tenant{}, err
	}
	if err := c.do(ctx, newRequest(http.MethodPost, idPath("/tenants", id, "citizen-id-image"), nil).withMultipart(form), &tenant); err != nil {
		return Tenant{}, err
	}
	return tenant, nil
}

func (c *Client) DeleteTenant(ctx context.Context, id int64) error {
	return c.do(ctx, newRequest(http.MethodDelete, idPath("/tenants", id), nil), nil)
}
