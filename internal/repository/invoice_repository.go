package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/biskaken/garage-api/internal/model"
)

// InvoiceRepo persists invoices, their items and their append-only payment
// lists. Payment recording is the one place in the system where concurrent
// writers race on derived state (the cumulative paid amount), so it runs in
// a transaction holding a FOR UPDATE lock on the invoice row.
type InvoiceRepo struct{ DB *sql.DB }

func NewInvoiceRepo(db *sql.DB) *InvoiceRepo { return &InvoiceRepo{DB: db} }

const invoiceColumns = "id,customer_id,job_id,subtotal_cents,tax_cents,discount_cents,total_cents,paid_cents,status,due_at,created_at,updated_at"

// querier is satisfied by both *sql.DB and *sql.Tx so the child-row loaders
// can run inside or outside a transaction.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func scanInvoice(scan func(dest ...interface{}) error) (model.Invoice, error) {
	var (
		inv   model.Invoice
		jobID sql.NullString
		dueAt sql.NullTime
	)
	err := scan(&inv.ID, &inv.CustomerID, &jobID, &inv.SubtotalCents, &inv.TaxCents,
		&inv.DiscountCents, &inv.TotalCents, &inv.PaidCents, &inv.Status, &dueAt,
		&inv.CreatedAt, &inv.UpdatedAt)
	if jobID.Valid {
		v := jobID.String
		inv.JobID = &v
	}
	if dueAt.Valid {
		t := dueAt.Time
		inv.DueAt = &t
	}
	return inv, err
}

// Create inserts the invoice and all of its items in one transaction. The
// caller (the lifecycle service) has already computed and validated totals.
func (r *InvoiceRepo) Create(ctx context.Context, inv *model.Invoice) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var jobID interface{}
	if inv.JobID != nil {
		jobID = *inv.JobID
	}
	var dueAt interface{}
	if inv.DueAt != nil {
		dueAt = *inv.DueAt
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO invoices (id, customer_id, job_id, subtotal_cents, tax_cents, discount_cents, total_cents, paid_cents, status, due_at)
		 VALUES (?,?,?,?,?,?,?,0,?,?)`,
		inv.ID, inv.CustomerID, jobID, inv.SubtotalCents, inv.TaxCents,
		inv.DiscountCents, inv.TotalCents, inv.Status, dueAt); err != nil {
		if isMissingParent(err) {
			return notFound("Customer or job")
		}
		return err
	}

	// Bulk insert the items; an invoice always has at least one.
	query := "INSERT INTO invoice_items (id, invoice_id, description, quantity, unit_price_cents) VALUES "
	args := make([]interface{}, 0, len(inv.Items)*5)
	placeholders := make([]string, 0, len(inv.Items))
	for i := range inv.Items {
		it := &inv.Items[i]
		placeholders = append(placeholders, "(?,?,?,?,?)")
		args = append(args, it.ID, it.InvoiceID, it.Description, it.Quantity, it.UnitPriceCents)
	}
	if _, err := tx.ExecContext(ctx, query+strings.Join(placeholders, ","), args...); err != nil {
		return err
	}
	return tx.Commit()
}

// GetByID loads an invoice with its items and payments.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (model.Invoice, error) {
	inv, err := scanInvoice(r.DB.QueryRowContext(ctx,
		"SELECT "+invoiceColumns+" FROM invoices WHERE id=? LIMIT 1", id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Invoice{}, notFound("Invoice")
	}
	if err != nil {
		return model.Invoice{}, err
	}
	if inv.Items, err = itemsFor(ctx, r.DB, id); err != nil {
		return model.Invoice{}, err
	}
	if inv.Payments, err = paymentsFor(ctx, r.DB, id); err != nil {
		return model.Invoice{}, err
	}
	return inv, nil
}

func itemsFor(ctx context.Context, q querier, invoiceID string) ([]model.InvoiceItem, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id,invoice_id,description,quantity,unit_price_cents FROM invoice_items WHERE invoice_id=? ORDER BY id", invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.InvoiceItem{}
	for rows.Next() {
		var it model.InvoiceItem
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.Description, &it.Quantity, &it.UnitPriceCents); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func paymentsFor(ctx context.Context, q querier, invoiceID string) ([]model.Payment, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id,invoice_id,amount_cents,method,reference,recorded_at FROM payments WHERE invoice_id=? ORDER BY recorded_at", invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := []model.Payment{}
	for rows.Next() {
		var (
			p   model.Payment
			ref sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.AmountCents, &p.Method, &ref, &p.RecordedAt); err != nil {
			return nil, err
		}
		p.Reference = ref.String
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// List returns a page of invoices (headers only), optionally filtered by
// customer, newest first.
func (r *InvoiceRepo) List(ctx context.Context, page, limit int, customerID string) ([]model.Invoice, int64, error) {
	where := ""
	args := []interface{}{}
	if customerID != "" {
		where = " WHERE customer_id=?"
		args = append(args, customerID)
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM invoices"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+invoiceColumns+" FROM invoices"+where+" ORDER BY created_at DESC LIMIT ? OFFSET ?",
		append(args, limit, (page-1)*limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []model.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, inv)
	}
	return out, total, rows.Err()
}

// TransitionStatus moves an invoice from one of the expected statuses to the
// target status. A zero-row update distinguishes a missing invoice from a
// state conflict.
func (r *InvoiceRepo) TransitionStatus(ctx context.Context, id string, from []string, to string) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(from)), ",")
	args := []interface{}{to, id}
	for _, s := range from {
		args = append(args, s)
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE invoices SET status=? WHERE id=? AND status IN ("+placeholders+")", args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		inv, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return conflict("Invoice is " + inv.Status + " and cannot become " + to)
	}
	return nil
}

// AppendPayment records a payment atomically: the invoice row is locked FOR
// UPDATE, the payment inserted, the cumulative paid amount recomputed and
// the status flipped to PAID inside the same transaction when the total is
// covered. Concurrent submissions therefore serialize; none is lost and the
// flip happens exactly once. The returned invoice is the snapshot as of this
// transaction, never a re-read: a later payment committing between this one
// and a fresh read must not show up in the paid amount the caller uses to
// decide whether this payment settled the invoice.
func (r *InvoiceRepo) AppendPayment(ctx context.Context, invoiceID string, p *model.Payment) (model.Invoice, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Invoice{}, err
	}
	defer func() { _ = tx.Rollback() }()

	inv, err := scanInvoice(tx.QueryRowContext(ctx,
		"SELECT "+invoiceColumns+" FROM invoices WHERE id=? FOR UPDATE", invoiceID).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Invoice{}, notFound("Invoice")
	}
	if err != nil {
		return model.Invoice{}, err
	}
	if inv.Status == model.InvoiceCancelled {
		return model.Invoice{}, conflict("Invoice is cancelled")
	}

	p.ID = uuid.NewString()
	p.InvoiceID = invoiceID
	p.RecordedAt = time.Now().UTC()
	var ref interface{}
	if p.Reference != "" {
		ref = p.Reference
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO payments (id, invoice_id, amount_cents, method, reference, recorded_at) VALUES (?,?,?,?,?,?)",
		p.ID, p.InvoiceID, p.AmountCents, p.Method, ref, p.RecordedAt); err != nil {
		return model.Invoice{}, err
	}

	var paidCents int64
	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount_cents),0) FROM payments WHERE invoice_id=?", invoiceID).
		Scan(&paidCents); err != nil {
		return model.Invoice{}, err
	}

	newStatus := model.SettledStatus(inv.Status, paidCents, inv.TotalCents)
	if _, err := tx.ExecContext(ctx,
		"UPDATE invoices SET paid_cents=?, status=? WHERE id=?",
		paidCents, newStatus, invoiceID); err != nil {
		return model.Invoice{}, err
	}

	inv.PaidCents = paidCents
	inv.Status = newStatus
	if inv.Items, err = itemsFor(ctx, tx, invoiceID); err != nil {
		return model.Invoice{}, err
	}
	if inv.Payments, err = paymentsFor(ctx, tx, invoiceID); err != nil {
		return model.Invoice{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Invoice{}, err
	}
	return inv, nil
}

// Delete removes an invoice and, via ON DELETE CASCADE, its items and
// payments. ADMIN-only at the route layer.
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM invoices WHERE id=?", id)
	if err != nil {
		return err
	}
	return requireRow(res, "Invoice")
}
