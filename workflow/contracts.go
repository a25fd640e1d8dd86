// Package workflow decides which lifecycle actions the console offers for a
// contract, invoice, meter reading or incident. The backend performs every
// transition; these checks only keep the client from asking for one that
// cannot apply.
package workflow

import (
	"errors"
	"fmt"

	"rentadm/api"
)

var ErrActionNotAllowed = errors.New("action not allowed in current status")

type Action string

const (
	ActionSendForSigning     Action = "send-for-signing"
	ActionApproveSignature   Action = "approve-signature"
	ActionRequestTermination Action = "request-termination"
	ActionConfirmTermination Action = "confirm-termination"
	ActionUploadFile         Action = "upload-file"
)

// nextAction is the one transition each status can take. TERMINATED and
// EXPIRED are terminal; EXPIRED is only ever set by the backend.
var nextAction = map[api.ContractStatus]Action{
	api.ContractDraft:              ActionSendForSigning,
	api.ContractWaitingSignatures:  ActionApproveSignature,
	api.ContractActive:             ActionRequestTermination,
	api.ContractPendingTermination: ActionConfirmTermination,
}

func uploadAllowed(status api.ContractStatus) bool {
	return status == api.ContractDraft || status == api.ContractWaitingSignatures
}

// ContractActions lists the actions valid for the contract as it stands.
func ContractActions(c api.Contract) []Action {
	actions := []Action{}
	if next, ok := nextAction[c.Status]; ok {
		if next != ActionApproveSignature || c.TenantSignatureURL != "" {
			actions = append(actions, next)
		}
	}
	if uploadAllowed(c.Status) {
		actions = append(actions, ActionUploadFile)
	}
	return actions
}

func CheckContractAction(c api.Contract, action Action) error {
	for _, allowed := range ContractActions(c) {
		if allowed == action {
			return nil
		}
	}
	if action == ActionApproveSignature && c.Status == api.ContractWaitingSignatures {
		return fmt.Errorf("%w: contract #%d has no tenant signature yet", ErrActionNotAllowed, c.ID)
	}
	return fmt.Errorf("%w: %s on contract #%d (%s)", ErrActionNotAllowed, action, c.ID, c.Status)
}

// TargetStatus is the status the backend moves a contract to after action.
func TargetStatus(action Action) (api.ContractStatus, bool) {
	switch action {
	case ActionSendForSigning:
		return api.ContractWaitingSignatures, true
	case ActionApproveSignature:
		return api.ContractActive, true
	case ActionRequestTermination:
		return api.ContractPendingTermination, true
	case ActionConfirmTermination:
		return api.ContractTerminated, true
	}
	return "", false
}

func ParseAction(raw string) (Action, error) {
	switch a := Action(raw); a {
	case ActionSendForSigning, ActionApproveSignature, ActionRequestTermination, ActionConfirmTermination, ActionUploadFile:
		return a, nil
	}
	return "", fmt.Errorf("unknown contract action %q", raw)
}
