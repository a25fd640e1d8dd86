package state

import (
	"context"
	"fmt"

	"rentadm/api"
	"rentadm/workflow"
)

type InvoiceService interface {
	ListInvoices(ctx context.Context, q api.ListQuery) (api.Page[api.Invoice], error)
	GetInvoice(ctx context.Context, id int64) (api.Invoice, error)
	ConfirmInvoicePayment(ctx context.Context, id int64) (api.Invoice, error)
}

type Invoices struct {
	*Collection[api.Invoice]
	pending

	svc InvoiceService
}

func NewInvoices(svc InvoiceService) *Invoices {
	return &Invoices{
		Collection: NewCollection(func(i api.Invoice) int64 { return i.ID }),
		svc:        svc,
	}
}

func (s *Invoices) Fetch(ctx context.Context, q api.ListQuery) error {
	return track(s.Collection, "failed to fetch invoices", func() error {
		page, err := s.svc.ListInvoices(ctx, q)
		if err != nil {
			return err
		}
		s.applyPage(page)
		return nil
	})
}

func (s *Invoices) FetchByID(ctx context.Context, id int64) (api.Invoice, error) {
	var invoice api.Invoice
	err := track(s.Collection, "failed to fetch invoice details", func() error {
		got, err := s.svc.GetInvoice(ctx, id)
		if err != nil {
			return err
		}
		s.merge(got)
		invoice = got
		return nil
	})
	return invoice, err
}

func (s *Invoices) ConfirmPayment(ctx context.Context, id int64) (api.Invoice, error) {
	if err := s.acquire(id, "confirm-payment"); err != nil {
		return api.Invoice{}, err
	}
	defer s.release(id)

	current, ok := s.ByID(id)
	if !ok {
		var err error
		if current, err = s.FetchByID(ctx, id); err != nil {
			return api.Invoice{}, err
		}
	}
	if err := workflow.CheckConfirmPayment(current); err != nil {
		return api.Invoice{}, err
	}

	var invoice api.Invoice
	err := track(s.Collection, "failed to confirm payment", func() error {
		updated, err := s.svc.ConfirmInvoicePayment(ctx, id)
		if err != nil {
			return err
		}
		s.merge(updated)
		invoice = updated
		return nil
	})
	return invoice, err
}

// record keeps an invoice produced elsewhere, e.g. by generation from a
// meter reading.
func (s *Invoices) record(inv api.Invoice) {
	if _, ok := s.ByID(inv.ID); ok {
		s.merge(inv)
		return
	}
	s.add(inv)
}

type MeterReadingService interface {
	ListMeterReadings(ctx context.Context, roomID int64) ([]api.MeterReading, error)
	RecordMeterReading(ctx context.Context, roomID int64, input api.MeterReadingInput, electricImage, waterImage *api.File) (api.MeterReading, error)
	GenerateInvoice(ctx context.Context, payload api.GenerateInvoiceRequest) (api.Invoice, error)
}

// MeterReadings holds the reading history of one room at a time.
type MeterReadings struct {
	*Collection[api.MeterReading]
	pending

	svc      MeterReadingService
	invoices *Invoices
}

func NewMeterReadings(svc MeterReadingService, invoices *Invoices) *MeterReadings {
	return &MeterReadings{
		Collection: NewCollection(func(r api.MeterReading) int64 { return r.ID }),
		svc:        svc,
		invoices:   invoices,
	}
}

func (s *MeterReadings) Fetch(ctx context.Context, roomID int64) error {
	s.reset()
	return track(s.Collection, "failed to fetch meter readings", func() error {
		readings, err := s.svc.ListMeterReadings(ctx, roomID)
		if err != nil {
			return err
		}
		s.replace(readings)
		return nil
	})
}

// Record stores a new reading. It is shown first when the cached history
// belongs to the same room.
func (s *MeterReadings) Record(ctx context.Context, roomID int64, input api.MeterReadingInput, electricImage, waterImage *api.File) (api.MeterReading, error) {
	var reading api.MeterReading
	err := track(s.Collection, "failed to record meter reading", func() error {
		created, err := s.svc.RecordMeterReading(ctx, roomID, input, electricImage, waterImage)
		if err != nil {
			return err
		}
		items := s.Items()
		if len(items) == 0 || items[0].RoomID == created.RoomID {
			s.prepend(created)
		}
		reading = created
		return nil
	})
	return reading, err
}

// GenerateInvoice bills a reading. invoiceGenerated is computed by the
// backend, so the room's history is reloaded rather than patched.
func (s *MeterReadings) GenerateInvoice(ctx context.Context, reading api.MeterReading, req api.GenerateInvoiceRequest) (api.Invoice, error) {
	if !workflow.CanGenerateInvoice(reading) {
		return api.Invoice{}, fmt.Errorf("%w: reading #%d", workflow.ErrInvoiceAlreadyGenerated, reading.ID)
	}
	if err := s.acquire(reading.ID, "generate-invoice"); err != nil {
		return api.Invoice{}, err
	}
	defer s.release(reading.ID)

	invoice, err := s.svc.GenerateInvoice(ctx, req)
	if err != nil {
		msg := api.Message(err, "failed to generate invoice")
		s.fail(msg)
		return api.Invoice{}, &OpError{Message: msg, Err: err}
	}
	if s.invoices != nil {
		s.invoices.record(invoice)
	}

	s.invalidate()
	if err := s.Fetch(ctx, reading.RoomID); err != nil {
		return invoice, err
	}
	return invoice, nil
}
