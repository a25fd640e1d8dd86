package state

import (
	"context"
	"fmt"

	"rentadm/api"
	"rentadm/workflow"
)

type ContractService interface {
	ListContracts(ctx context.Context, q api.ListQuery) (api.Page[api.Contract], error)
	GetContract(ctx context.Context, id int64) (api.Contract, error)
	CreateContract(ctx context.Context, input api.ContractInput) (api.Contract, error)
	DeleteContract(ctx context.Context, id int64) error
	SendForSigning(ctx context.Context, id int64) (api.Contract, error)
	ApproveSignature(ctx context.Context, id int64) (api.Contract, error)
	RequestTermination(ctx context.Context, id int64) (api.Contract, error)
	ConfirmTermination(ctx context.Context, id int64) (api.Contract, error)
	UploadContractFile(ctx context.Context, id int64, file *api.File) (api.Contract, error)
	ParseContractFile(ctx context.Context, file *api.File) (api.ContractInput, error)
}

type Contracts struct {
	*Collection[api.Contract]
	pending

	svc ContractService
}

func NewContracts(svc ContractService) *Contracts {
	return &Contracts{
		Collection: NewCollection(func(c api.Contract) int64 { return c.ID }),
		svc:        svc,
	}
}

func (s *Contracts) Fetch(ctx context.Context, q api.ListQuery) error {
	return track(s.Collection, "failed to fetch contracts", func() error {
		page, err := s.svc.ListContracts(ctx, q)
		if err != nil {
			return err
		}
		s.applyPage(page)
		return nil
	})
}

func (s *Contracts) FetchByID(ctx context.Context, id int64) (api.Contract, error) {
	var contract api.Contract
	err := track(s.Collection, "failed to fetch contract details", func() error {
		got, err := s.svc.GetContract(ctx, id)
		if err != nil {
			return err
		}
		s.merge(got)
		contract = got
		return nil
	})
	return contract, err
}

func (s *Contracts) Create(ctx context.Context, input api.ContractInput) (api.Contract, error) {
	var contract api.Contract
	err := track(s.Collection, "failed to create contract", func() error {
		created, err := s.svc.CreateContract(ctx, input)
		if err != nil {
			return err
		}
		s.add(created)
		contract = created
		return nil
	})
	return contract, err
}

func (s *Contracts) Delete(ctx context.Context, id int64) error {
	if err := s.acquire(id, "delete"); err != nil {
		return err
	}
	defer s.release(id)
	return track(s.Collection, "failed to delete contract", func() error {
		if err := s.svc.DeleteContract(ctx, id); err != nil {
			return err
		}
		s.remove(id)
		return nil
	})
}

// Transition runs a lifecycle action. The contract is loaded first when it is
// not cached, and the action is refused unless its status allows it.
func (s *Contracts) Transition(ctx context.Context, id int64, action workflow.Action) (api.Contract, error) {
	call, err := s.transitionCall(action)
	if err != nil {
		return api.Contract{}, err
	}
	if err := s.acquire(id, string(action)); err != nil {
		return api.Contract{}, err
	}
	defer s.release(id)

	current, err := s.cachedOrFetch(ctx, id)
	if err != nil {
		return api.Contract{}, err
	}
	if err := workflow.CheckContractAction(current, action); err != nil {
		return api.Contract{}, err
	}

	var contract api.Contract
	err = track(s.Collection, "failed to "+string(action)+" contract", func() error {
		updated, err := call(ctx, id)
		if err != nil {
			return err
		}
		s.merge(updated)
		contract = updated
		return nil
	})
	return contract, err
}

func (s *Contracts) transitionCall(action workflow.Action) (func(context.Context, int64) (api.Contract, error), error) {
	switch action {
	case workflow.ActionSendForSigning:
		return s.svc.SendForSigning, nil
	case workflow.ActionApproveSignature:
		return s.svc.ApproveSignature, nil
	case workflow.ActionRequestTermination:
		return s.svc.RequestTermination, nil
	case workflow.ActionConfirmTermination:
		return s.svc.ConfirmTermination, nil
	}
	return nil, fmt.Errorf("%q is not a contract transition", action)
}

func (s *Contracts) UploadFile(ctx context.Context, id int64, file *api.File) (api.Contract, error) {
	if err := s.acquire(id, string(workflow.ActionUploadFile)); err != nil {
		return api.Contract{}, err
	}
	defer s.release(id)

	current, err := s.cachedOrFetch(ctx, id)
	if err != nil {
		return api.Contract{}, err
	}
	if err := workflow.CheckContractAction(current, workflow.ActionUploadFile); err != nil {
		return api.Contract{}, err
	}

	var contract api.Contract
	err = track(s.Collection, "failed to upload contract file", func() error {
		updated, err := s.svc.UploadContractFile(ctx, id, file)
		if err != nil {
			return err
		}
		s.merge(updated)
		contract = updated
		return nil
	})
	return contract, err
}

// ParseFile asks the backend to extract a draft contract from a document.
// Nothing is cached.
func (s *Contracts) ParseFile(ctx context.Context, file *api.File) (api.ContractInput, error) {
	draft, err := s.svc.ParseContractFile(ctx, file)
	if err != nil {
		return api.ContractInput{}, &OpError{Message: api.Message(err, "failed to parse contract file"), Err: err}
	}
	return draft, nil
}

func (s *Contracts) cachedOrFetch(ctx context.Context, id int64) (api.Contract, error) {
	if c, ok := s.ByID(id); ok {
		return c, nil
	}
	return s.FetchByID(ctx, id)
}
