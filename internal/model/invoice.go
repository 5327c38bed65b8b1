package model

import "time"

// Invoice status values. DRAFT and SENT are pre-settlement; PAID and
// CANCELLED are terminal. OVERDUE is derived from the due date on read and
// collapses back to settled semantics once paid.
const (
	InvoiceDraft     = "DRAFT"
	InvoiceSent      = "SENT"
	InvoicePaid      = "PAID"
	InvoiceOverdue   = "OVERDUE"
	InvoiceCancelled = "CANCELLED"
)

// Payment methods accepted by the shop.
const (
	PayCash        = "CASH"
	PayMobileMoney = "MOBILE_MONEY"
	PayCard        = "CARD"
	PayBankXfer    = "BANK_TRANSFER"
	PayUSDT        = "USDT"
)

// Invoice mirrors the `invoices` table plus its items and payments. All
// amounts are integer cents. Invariants maintained by the service layer:
// subtotal = Σ(item.quantity × item.unit_price) and
// total = subtotal + tax − discount, clamped at zero.
type Invoice struct {
	ID            string        `json:"id"`          // invoices.id (uuid)
	CustomerID    string        `json:"customer_id"` // invoices.customer_id
	JobID         *string       `json:"job_id,omitempty"`
	Items         []InvoiceItem `json:"items"`
	SubtotalCents int64         `json:"subtotal_cents"`
	TaxCents      int64         `json:"tax_cents"`
	DiscountCents int64         `json:"discount_cents"`
	TotalCents    int64         `json:"total_cents"`
	PaidCents     int64         `json:"paid_cents"`
	Status        string        `json:"status"`
	DueAt         *time.Time    `json:"due_at,omitempty"`
	Payments      []Payment     `json:"payments"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// InvoiceItem is one billed line: parts, labour or anything else with a
// description, a positive quantity and a positive unit price.
type InvoiceItem struct {
	ID             string `json:"id"` // invoice_items.id (uuid)
	InvoiceID      string `json:"invoice_id"`
	Description    string `json:"description"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// Payment is one settlement against an invoice. The payments list is
// append-only; nothing ever deletes a payment row.
type Payment struct {
	ID          string    `json:"id"` // payments.id (uuid)
	InvoiceID   string    `json:"invoice_id"`
	AmountCents int64     `json:"amount_cents"`
	Method      string    `json:"method"`
	Reference   string    `json:"reference,omitempty"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// SettledStatus decides the stored status after a payment lands: any
// pre-settlement status flips to PAID once cumulative payments cover the
// total. Terminal statuses never move.
func SettledStatus(current string, paidCents, totalCents int64) string {
	if current == InvoicePaid || current == InvoiceCancelled {
		return current
	}
	if paidCents >= totalCents {
		return InvoicePaid
	}
	return current
}

// EffectiveStatus derives the externally visible status: a SENT invoice past
// its due date reads as OVERDUE without a stored transition.
func (inv Invoice) EffectiveStatus(now time.Time) string {
	if inv.Status == InvoiceSent && inv.DueAt != nil && now.After(*inv.DueAt) {
		return InvoiceOverdue
	}
	return inv.Status
}
