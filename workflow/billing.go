package workflow

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"rentadm/api"
)

const (
	SettingElectricityPrice = "PRICE_ELECTRICITY"
	SettingWaterPrice       = "PRICE_WATER"
)

var (
	ErrInvoiceAlreadyGenerated = errors.New("invoice already generated for this reading")
	ErrNoActiveContract        = errors.New("no active contract for this room")
	ErrMissingPrice            = errors.New("unit price is not configured")
)

// CanConfirmPayment is true only while the tenant's payment waits for the
// admin's confirmation.
func CanConfirmPayment(inv api.Invoice) bool {
	return inv.Status == api.InvoiceWaitingConfirmation
}

func CheckConfirmPayment(inv api.Invoice) error {
	if CanConfirmPayment(inv) {
		return nil
	}
	return fmt.Errorf("%w: confirm-payment on invoice #%d (%s)", ErrActionNotAllowed, inv.ID, inv.Status)
}

func CanGenerateInvoice(r api.MeterReading) bool {
	return !r.InvoiceGenerated
}

// PrepareInvoice builds the generate request for a reading from the room's
// active contract and the configured unit prices.
func PrepareInvoice(r api.MeterReading, contracts []api.Contract, settings []api.SystemSetting) (api.GenerateInvoiceRequest, error) {
	if !CanGenerateInvoice(r) {
		return api.GenerateInvoiceRequest{}, fmt.Errorf("%w: reading #%d", ErrInvoiceAlreadyGenerated, r.ID)
	}

	contract, ok := ActiveContractForRoom(contracts, r.RoomID)
	if !ok {
		return api.GenerateInvoiceRequest{}, fmt.Errorf("%w: room #%d", ErrNoActiveContract, r.RoomID)
	}

	electricity, err := priceSetting(settings, SettingElectricityPrice)
	if err != nil {
		return api.GenerateInvoiceRequest{}, err
	}
	water, err := priceSetting(settings, SettingWaterPrice)
	if err != nil {
		return api.GenerateInvoiceRequest{}, err
	}

	return api.GenerateInvoiceRequest{
		ContractID:       contract.ID,
		PeriodMonth:      r.ReadingMonth,
		PeriodYear:       r.ReadingYear,
		ElectricityPrice: electricity,
		WaterPrice:       water,
	}, nil
}

func ActiveContractForRoom(contracts []api.Contract, roomID int64) (api.Contract, bool) {
	for _, c := range contracts {
		if c.RoomID == roomID && c.Status == api.ContractActive {
			return c, true
		}
	}
	return api.Contract{}, false
}

func priceSetting(settings []api.SystemSetting, key string) (float64, error) {
	for _, s := range settings {
		if s.Key != key {
			continue
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(s.Value), 64)
		if err != nil || price <= 0 {
			return 0, fmt.Errorf("%w: %s=%q", ErrMissingPrice, key, s.Value)
		}
		return price, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrMissingPrice, key)
}
