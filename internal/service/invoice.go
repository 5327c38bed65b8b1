// Package service holds the business logic that sits between handlers and
// repositories: the invoice lifecycle and the outbound notification
// publisher.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/biskaken/garage-api/internal/apperr"
	"github.com/biskaken/garage-api/internal/model"
)

// InvoiceStore is the persistence contract the lifecycle manager runs over.
// *repository.InvoiceRepo implements it; tests substitute an in-memory fake.
type InvoiceStore interface {
	Create(ctx context.Context, inv *model.Invoice) error
	GetByID(ctx context.Context, id string) (model.Invoice, error)
	List(ctx context.Context, page, limit int, customerID string) ([]model.Invoice, int64, error)
	TransitionStatus(ctx context.Context, id string, from []string, to string) error
	AppendPayment(ctx context.Context, invoiceID string, p *model.Payment) (model.Invoice, error)
	Delete(ctx context.Context, id string) error
}

// InvoiceService owns invoice totals, status transitions and payment
// application. It is handed its store explicitly; nothing here touches
// process-wide state.
type InvoiceService struct {
	store InvoiceStore
}

func NewInvoiceService(store InvoiceStore) *InvoiceService {
	return &InvoiceService{store: store}
}

// ItemInput is one requested invoice line.
type ItemInput struct {
	Description    string
	Quantity       int64
	UnitPriceCents int64
}

// CreateInput carries everything needed to create an invoice.
type CreateInput struct {
	CustomerID    string
	JobID         *string
	Items         []ItemInput
	TaxCents      int64
	DiscountCents int64
	DueAt         *time.Time
}

// ComputeTotals returns the subtotal (Σ quantity × unit price) and the
// grand total (subtotal + tax − discount, clamped at zero).
func ComputeTotals(items []ItemInput, taxCents, discountCents int64) (subtotal, total int64) {
	for _, it := range items {
		subtotal += it.Quantity * it.UnitPriceCents
	}
	total = subtotal + taxCents - discountCents
	if total < 0 {
		total = 0
	}
	return subtotal, total
}

// Create validates the request, computes totals and persists the invoice.
// New invoices start in DRAFT; issuing is the explicit Send transition.
func (s *InvoiceService) Create(ctx context.Context, in CreateInput) (model.Invoice, error) {
	if len(in.Items) == 0 {
		return model.Invoice{}, apperr.New(apperr.InvalidInput, "Invoice must have at least one item")
	}
	for _, it := range in.Items {
		if strings.TrimSpace(it.Description) == "" {
			return model.Invoice{}, apperr.New(apperr.InvalidInput, "Invoice item description must not be empty")
		}
		if it.Quantity <= 0 {
			return model.Invoice{}, apperr.New(apperr.InvalidInput, "Invoice item quantity must be positive")
		}
		if it.UnitPriceCents <= 0 {
			return model.Invoice{}, apperr.New(apperr.InvalidInput, "Invoice item unit price must be positive")
		}
	}
	if in.TaxCents < 0 || in.DiscountCents < 0 {
		return model.Invoice{}, apperr.New(apperr.InvalidInput, "Tax and discount must not be negative")
	}

	subtotal, total := ComputeTotals(in.Items, in.TaxCents, in.DiscountCents)
	inv := model.Invoice{
		ID:            uuid.NewString(),
		CustomerID:    in.CustomerID,
		JobID:         in.JobID,
		SubtotalCents: subtotal,
		TaxCents:      in.TaxCents,
		DiscountCents: in.DiscountCents,
		TotalCents:    total,
		Status:        model.InvoiceDraft,
		DueAt:         in.DueAt,
		Payments:      []model.Payment{},
	}
	for _, it := range in.Items {
		inv.Items = append(inv.Items, model.InvoiceItem{
			ID:             uuid.NewString(),
			InvoiceID:      inv.ID,
			Description:    it.Description,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
		})
	}
	if err := s.store.Create(ctx, &inv); err != nil {
		return model.Invoice{}, err
	}
	return inv, nil
}

// Get loads an invoice with the overdue derivation applied.
func (s *InvoiceService) Get(ctx context.Context, id string) (model.Invoice, error) {
	inv, err := s.store.GetByID(ctx, id)
	if err != nil {
		return model.Invoice{}, err
	}
	inv.Status = inv.EffectiveStatus(time.Now().UTC())
	return inv, nil
}

// List pages invoice headers with the overdue derivation applied.
func (s *InvoiceService) List(ctx context.Context, page, limit int, customerID string) ([]model.Invoice, int64, error) {
	invs, total, err := s.store.List(ctx, page, limit, customerID)
	if err != nil {
		return nil, 0, err
	}
	now := time.Now().UTC()
	for i := range invs {
		invs[i].Status = invs[i].EffectiveStatus(now)
	}
	return invs, total, nil
}

// Send issues a DRAFT invoice to the customer.
func (s *InvoiceService) Send(ctx context.Context, id string) (model.Invoice, error) {
	if err := s.store.TransitionStatus(ctx, id, []string{model.InvoiceDraft}, model.InvoiceSent); err != nil {
		return model.Invoice{}, err
	}
	return s.Get(ctx, id)
}

// Cancel voids an unsettled invoice. PAID invoices cannot be cancelled.
func (s *InvoiceService) Cancel(ctx context.Context, id string) (model.Invoice, error) {
	if err := s.store.TransitionStatus(ctx, id,
		[]string{model.InvoiceDraft, model.InvoiceSent}, model.InvoiceCancelled); err != nil {
		return model.Invoice{}, err
	}
	return s.Get(ctx, id)
}

// RecordPayment appends a payment and reports whether this payment settled
// the invoice. Duplicate logical submissions are not deduplicated (there is
// no idempotency key); the store serializes concurrent appends so each one
// is counted exactly once.
func (s *InvoiceService) RecordPayment(ctx context.Context, invoiceID string, amountCents int64, method, reference string) (model.Invoice, bool, error) {
	if amountCents <= 0 {
		return model.Invoice{}, false, apperr.New(apperr.InvalidInput, "Payment amount must be positive")
	}
	p := model.Payment{AmountCents: amountCents, Method: method, Reference: reference}
	inv, err := s.store.AppendPayment(ctx, invoiceID, &p)
	if err != nil {
		return model.Invoice{}, false, err
	}
	// This payment caused the flip iff the invoice is PAID now and was not
	// covered before this amount landed.
	settledNow := inv.Status == model.InvoicePaid && inv.PaidCents-amountCents < inv.TotalCents
	return inv, settledNow, nil
}

// Delete removes an invoice entirely.
func (s *InvoiceService) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}
