// Package queue defines the message payloads exchanged over the broker and
// the background consumer that turns them into notification log entries.
package queue

// NotificationsQueue is the single durable queue carrying customer-facing
// notification events. The SMS gateway consumes it in production; this
// service ships a log-sink consumer for development.
const NotificationsQueue = "garage.notifications"

// InvoicePaidEvent is published when a payment settles an invoice. It
// carries enough for downstream consumers to notify the customer without
// querying the primary database.
type InvoicePaidEvent struct {
	InvoiceID    string `json:"invoice_id"`
	CustomerID   string `json:"customer_id"`
	TotalCents   int64  `json:"total_cents"`
	PaidCents    int64  `json:"paid_cents"`
	Method       string `json:"method"`
	RecordedByID uint64 `json:"recorded_by_id"`
	PaidAt       string `json:"paid_at"`
}
