package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentadm/api"
)

func TestContractActions(t *testing.T) {
	tests := []struct {
		name     string
		contract api.Contract
		want     []Action
	}{
		{"draft", api.Contract{Status: api.ContractDraft}, []Action{ActionSendForSigning, ActionUploadFile}},
		{"waiting without signature", api.Contract{Status: api.ContractWaitingSignatures}, []Action{ActionUploadFile}},
		{"waiting with signature", api.Contract{Status: api.ContractWaitingSignatures, TenantSignatureURL: "https://cdn/sig.png"}, []Action{ActionApproveSignature, ActionUploadFile}},
		{"active", api.Contract{Status: api.ContractActive}, []Action{ActionRequestTermination}},
		{"pending termination", api.Contract{Status: api.ContractPendingTermination}, []Action{ActionConfirmTermination}},
		{"terminated", api.Contract{Status: api.ContractTerminated}, []Action{}},
		{"expired", api.Contract{Status: api.ContractExpired}, []Action{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContractActions(tt.contract))
		})
	}
}

func TestCheckContractActionOnlyFromSourceState(t *testing.T) {
	statuses := []api.ContractStatus{
		api.ContractDraft, api.ContractWaitingSignatures, api.ContractActive,
		api.ContractPendingTermination, api.ContractTerminated, api.ContractExpired,
	}
	source := map[Action]api.ContractStatus{
		ActionSendForSigning:     api.ContractDraft,
		ActionApproveSignature:   api.ContractWaitingSignatures,
		ActionRequestTermination: api.ContractActive,
		ActionConfirmTermination: api.ContractPendingTermination,
	}

	for action, from := range source {
		for _, status := range statuses {
			c := api.Contract{ID: 7, Status: status, TenantSignatureURL: "sig"}
			err := CheckContractAction(c, action)
			if status == from {
				assert.NoError(t, err, "%s from %s", action, status)
			} else {
				assert.ErrorIs(t, err, ErrActionNotAllowed, "%s from %s", action, status)
			}
		}
	}
}

func TestApproveSignatureNeedsTenantSignature(t *testing.T) {
	err := CheckContractAction(api.Contract{ID: 3, Status: api.ContractWaitingSignatures}, ActionApproveSignature)
	require.ErrorIs(t, err, ErrActionNotAllowed)
	assert.Contains(t, err.Error(), "no tenant signature")
}

func TestTargetStatus(t *testing.T) {
	got, ok := TargetStatus(ActionConfirmTermination)
	assert.True(t, ok)
	assert.Equal(t, api.ContractTerminated, got)

	_, ok = TargetStatus(ActionUploadFile)
	assert.False(t, ok)
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction("request-termination")
	require.NoError(t, err)
	assert.Equal(t, ActionRequestTermination, a)

	_, err = ParseAction("expire")
	assert.Error(t, err)
}

func TestConfirmPaymentGate(t *testing.T) {
	for _, status := range []api.InvoiceStatus{api.InvoicePending, api.InvoicePaid, api.InvoiceOverdue} {
		assert.False(t, CanConfirmPayment(api.Invoice{Status: status}), status)
		assert.ErrorIs(t, CheckConfirmPayment(api.Invoice{Status: status}), ErrActionNotAllowed)
	}
	assert.True(t, CanConfirmPayment(api.Invoice{Status: api.InvoiceWaitingConfirmation}))
	assert.NoError(t, CheckConfirmPayment(api.Invoice{Status: api.InvoiceWaitingConfirmation}))
}

func TestPrepareInvoice(t *testing.T) {
	reading := api.MeterReading{ID: 11, RoomID: 4, ReadingMonth: 9, ReadingYear: 2026}
	contracts := []api.Contract{
		{ID: 1, RoomID: 4, Status: api.ContractTerminated},
		{ID: 2, RoomID: 5, Status: api.ContractActive},
		{ID: 3, RoomID: 4, Status: api.ContractActive},
	}
	settings := []api.SystemSetting{
		{Key: SettingElectricityPrice, Value: "3500"},
		{Key: SettingWaterPrice, Value: " 18000 "},
	}

	req, err := PrepareInvoice(reading, contracts, settings)
	require.NoError(t, err)
	assert.Equal(t, api.GenerateInvoiceRequest{
		ContractID:       3,
		PeriodMonth:      9,
		PeriodYear:       2026,
		ElectricityPrice: 3500,
		WaterPrice:       18000,
	}, req)
}

func TestPrepareInvoiceRefusals(t *testing.T) {
	active := []api.Contract{{ID: 3, RoomID: 4, Status: api.ContractActive}}
	prices := []api.SystemSetting{{Key: SettingElectricityPrice, Value: "3500"}, {Key: SettingWaterPrice, Value: "18000"}}

	_, err := PrepareInvoice(api.MeterReading{RoomID: 4, InvoiceGenerated: true}, active, prices)
	assert.ErrorIs(t, err, ErrInvoiceAlreadyGenerated)

	_, err = PrepareInvoice(api.MeterReading{RoomID: 9}, active, prices)
	assert.ErrorIs(t, err, ErrNoActiveContract)

	_, err = PrepareInvoice(api.MeterReading{RoomID: 4}, active, prices[:1])
	assert.ErrorIs(t, err, ErrMissingPrice)

	_, err = PrepareInvoice(api.MeterReading{RoomID: 4}, active, []api.SystemSetting{
		{Key: SettingElectricityPrice, Value: "0"}, {Key: SettingWaterPrice, Value: "18000"},
	})
	assert.ErrorIs(t, err, ErrMissingPrice)
}

func TestGeneratedReadingIsNeverOffered(t *testing.T) {
	assert.True(t, CanGenerateInvoice(api.MeterReading{}))
	assert.False(t, CanGenerateInvoice(api.MeterReading{InvoiceGenerated: true}))
}

func TestIncidentValidation(t *testing.T) {
	status, err := ParseIncidentStatus("in_progress")
	require.NoError(t, err)
	assert.Equal(t, api.IncidentInProgress, status)

	_, err = ParseIncidentStatus("DONE")
	assert.ErrorContains(t, err, "REPORTED, IN_PROGRESS, RESOLVED, CLOSED")

	priority, err := ParseIncidentPriority("")
	require.NoError(t, err)
	assert.Empty(t, priority)

	_, err = ParseIncidentPriority("urgent")
	assert.Error(t, err)

	assert.NoError(t, ValidateIncidentUpdate(api.IncidentStatusUpdate{Status: api.IncidentResolved, Priority: api.PriorityHigh}))
	assert.Error(t, ValidateIncidentUpdate(api.IncidentStatusUpdate{Status: "OPEN"}))
}
