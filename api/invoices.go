package api

import (
	"context"
	"net/http"
)

func (c *Client) ListInvoices(ctx context.Context, q ListQuery) (Page[Invoice], error) {
	var page Page[Invoice]
	if err := c.do(ctx, newRequest(http.MethodGet, "/invoices", q.Values()), &page); err != nil {
		return Page[Invoice]{}, err
	}
	return page, nil
}

func (c *Client) GetInvoice(ctx context.Context, id int64) (Invoice, error) {
	var invoice Invoice
	if err := c.do(ctx, newRequest(http.MethodGet, idPath("/invoices", id), nil), &invoice); err != nil {
		return Invoice{}, err
	}
	return invoice, nil
}

func (c *Client) GenerateInvoice(ctx context.Context, payload GenerateInvoiceRequest) (Invoice, error) {
	req, err := newRequest(http.MethodPost, "/invoices/generate", nil).withJSON(payload)
	if err != nil {
		return Invoice{}, err
	}
	var invoice Invoice
	if err := c.do(ctx, req, &invoice); err != nil {
		return Invoice{}, err
	}
	return invoice, nil
}

func (c *Client) ConfirmInvoicePayment(ctx context.Context, id int64) (Invoice, error) {
	var invoice Invoice
	if err := c.do(ctx, newRequest(http.MethodPut, idPath("/invoices", id, "confirm-payment"), nil), &invoice); err != nil {
		return Invoice{}, err
	}
	return invoice, nil
}
