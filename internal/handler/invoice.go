package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/biskaken/garage-api/internal/httpx"
	"github.com/biskaken/garage-api/internal/middleware"
	"github.com/biskaken/garage-api/internal/queue"
	"github.com/biskaken/garage-api/internal/service"
	"github.com/biskaken/garage-api/internal/validation"
)

// InvoiceHandler implements billing: invoice creation, the status lifecycle
// and payment recording.
type InvoiceHandler struct {
	Invoices *service.InvoiceService
}

func NewInvoiceHandler(invoices *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{Invoices: invoices}
}

type invoiceItemBody struct {
	Description    string `json:"description" validate:"required,min=1,max=500"`
	Quantity       int64  `json:"quantity" validate:"required,gt=0"`
	UnitPriceCents int64  `json:"unit_price_cents" validate:"required,gt=0"`
}

type createInvoiceBody struct {
	CustomerID    string            `json:"customer_id" validate:"required,uuid4"`
	JobID         *string           `json:"job_id" validate:"omitempty,uuid4"`
	Items         []invoiceItemBody `json:"items" validate:"required,min=1,dive"`
	TaxCents      int64             `json:"tax_cents" validate:"gte=0"`
	DiscountCents int64             `json:"discount_cents" validate:"gte=0"`
	DueAt         *time.Time        `json:"due_at"`
}

type paymentBody struct {
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
	Method      string `json:"method" validate:"required,oneof=CASH MOBILE_MONEY CARD BANK_TRANSFER USDT"`
	Reference   string `json:"reference" validate:"omitempty,max=120"`
}

type invoiceListQuery struct {
	Page       int    `query:"page" validate:"omitempty,gte=1"`
	Limit      int    `query:"limit" validate:"omitempty,gte=1,lte=100"`
	CustomerID string `query:"customer_id" validate:"omitempty,uuid4"`
}

func (q invoiceListQuery) norm() (int, int) {
	return pageQuery{Page: q.Page, Limit: q.Limit}.norm()
}

var (
	ListInvoicesSchema = validation.Schema{
		Query: func() interface{} { return new(invoiceListQuery) },
	}
	CreateInvoiceSchema = validation.Schema{
		Body: func() interface{} { return new(createInvoiceBody) },
	}
	RecordPaymentSchema = validation.Schema{
		Params: func() interface{} { return new(idParam) },
		Body:   func() interface{} { return new(paymentBody) },
	}
	InvoiceIDSchema = validation.Schema{
		Params: func() interface{} { return new(idParam) },
	}
)

// List returns a page of invoices, optionally scoped to one customer.
func (h *InvoiceHandler) List(c echo.Context) error {
	q := middleware.Input(c).Query.(*invoiceListQuery)
	page, limit := q.norm()

	ctx, cancel := reqCtx(c)
	defer cancel()

	invs, total, err := h.Invoices.List(ctx, page, limit, q.CustomerID)
	if err != nil {
		return err
	}
	return httpx.Page(c, invs, httpx.NewPagination(page, limit, total))
}

// Create opens a DRAFT invoice for a customer.
func (h *InvoiceHandler) Create(c echo.Context) error {
	body := middleware.Input(c).Body.(*createInvoiceBody)

	in := service.CreateInput{
		CustomerID:    body.CustomerID,
		JobID:         body.JobID,
		TaxCents:      body.TaxCents,
		DiscountCents: body.DiscountCents,
		DueAt:         body.DueAt,
	}
	for _, it := range body.Items {
		in.Items = append(in.Items, service.ItemInput{
			Description:    it.Description,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
		})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	inv, err := h.Invoices.Create(ctx, in)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusCreated, inv)
}

// Get returns one invoice with items and payments.
func (h *InvoiceHandler) Get(c echo.Context) error {
	id := middleware.Input(c).Params.(*idParam).ID

	ctx, cancel := reqCtx(c)
	defer cancel()

	inv, err := h.Invoices.Get(ctx, id)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, inv)
}

// Send issues a DRAFT invoice.
func (h *InvoiceHandler) Send(c echo.Context) error {
	id := middleware.Input(c).Params.(*idParam).ID

	ctx, cancel := reqCtx(c)
	defer cancel()

	inv, err := h.Invoices.Send(ctx, id)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, inv)
}

// Cancel voids an unsettled invoice.
func (h *InvoiceHandler) Cancel(c echo.Context) error {
	id := middleware.Input(c).Params.(*idParam).ID

	ctx, cancel := reqCtx(c)
	defer cancel()

	inv, err := h.Invoices.Cancel(ctx, id)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, inv)
}

// RecordPayment appends a payment against invoice :id. When the payment
// settles the invoice, an event is published to the notifications queue so
// the customer can be told their balance is cleared.
func (h *InvoiceHandler) RecordPayment(c echo.Context) error {
	in := middleware.Input(c)
	id := in.Params.(*idParam).ID
	body := in.Body.(*paymentBody)

	ctx, cancel := reqCtx(c)
	defer cancel()

	inv, settled, err := h.Invoices.RecordPayment(ctx, id, body.AmountCents, body.Method, body.Reference)
	if err != nil {
		return err
	}
	if settled {
		event := queue.InvoicePaidEvent{
			InvoiceID:  inv.ID,
			CustomerID: inv.CustomerID,
			TotalCents: inv.TotalCents,
			PaidCents:  inv.PaidCents,
			Method:     body.Method,
			PaidAt:     time.Now().UTC().Format(time.RFC3339),
		}
		if p, ok := middleware.CurrentPrincipal(c); ok {
			event.RecordedByID = p.ID
		}
		// Detached context: the publish must not inherit the request deadline
		// and its failure must not fail the payment.
		go func() {
			pubCtx, pubCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer pubCancel()
			_ = service.PublishInvoicePaid(pubCtx, event)
		}()
	}
	return httpx.OK(c, http.StatusOK, inv)
}

// Delete removes an invoice and its lines.
func (h *InvoiceHandler) Delete(c echo.Context) error {
	id := middleware.Input(c).Params.(*idParam).ID

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Invoices.Delete(ctx, id); err != nil {
		return err
	}
	return httpx.Message(c, http.StatusOK, "Invoice deleted")
}
