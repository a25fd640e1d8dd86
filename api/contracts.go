package api

import (
	"context"
	"net/http"
)

func (c *Client) ListContracts(ctx context.Context, q ListQuery) (Page[Contract], error) {
	var page Page[Contract]
	if err := c.do(ctx, newRequest(http.MethodGet, "/contracts", q.Values()), &page); err != nil {
		return Page[Contract]{}, err
	}
	return page, nil
}

func (c *Client) GetContract(ctx context.Context, id int64) (Contract, error) {
	var contract Contract
	if err := c.do(ctx, newRequest(http.MethodGet, idPath("/contracts", id), nil), &contract); err != nil {
		return Contract{}, err
	}
	return contract, nil
}

func (c *Client) CreateContract(ctx context.Context, input ContractInput) (Contract, error) {
	req, err := newRequest(http.MethodPost, "/contracts", nil).withJSON(input)
	if err != nil {
		return Contract{}, err
	}
	var contract Contract
	if err := c.do(ctx, req, &contract); err != nil {
		return Contract{}, err
	}
	return contract, nil
}

func (c *Client) DeleteContract(ctx context.Context, id int64) error {
	return c.do(ctx, newRequest(http.MethodDelete, idPath("/contracts", id), nil), nil)
}

func (c *Client) SendForSigning(ctx context.Context, id int64) (Contract, error) {
	return c.contractTransition(ctx, id, "send-for-signing")
}

func (c *Client) ApproveSignature(ctx context.Context, id int64) (Contract, error) {
	return c.contractTransition(ctx, id, "approve-signature")
}

func (c *Client) RequestTermination(ctx context.Context, id int64) (Contract, error) {
	return c.contractTransition(ctx, id, "request-termination")
}

func (c *Client) ConfirmTermination(ctx context.Context, id int64) (Contract, error) {
	return c.contractTransition(ctx, id, "confirm-termination")
}

func (c *Client) contractTransition(ctx context.Context, id int64, action string) (Contract, error) {
	var contract Contract
	if err := c.do(ctx, newRequest(http.MethodPost, idPath("/contracts", id, action), nil), &contract); err != nil {
		return Contract{}, err
	}
	return contract, nil
}

func (c *Client) UploadContractFile(ctx context.Context, id int64, file *File) (Contract, error) {
	form, err := newMultipart().filePart("file", file).build()
	if err != nil {
		return Contract{}, err
	}
	var contract Contract
	if err := c.do(ctx, newRequest(http.MethodPost, idPath("/contracts", id, "upload-file"), nil).withMultipart(form), &contract); err != nil {
		return Contract{}, err
	}
	return contract, nil
}

// ParseContractFile sends a contract document to the backend, which extracts
// a draft for the create form.
func (c *Client) ParseContractFile(ctx context.Context, file *File) (ContractInput, error) {
	form, err := newMultipart().filePart("file", file).build()
	if err != nil {
		return ContractInput{}, err
	}
	var draft ContractInput
	if err := c.do(ctx, newRequest(http.MethodPost, "/contracts/parse-file", nil).withMultipart(form), &draft); err != nil {
		return ContractInput{}, err
	}
	return draft, nil
}
