package repository

import (
	"context"
	"database/sql"

	"github.com/biskaken/garage-api/internal/model"
)

// ReportRepo answers aggregate questions for the dashboard.
type ReportRepo struct{ DB *sql.DB }

func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{DB: db} }

// Summary is the shop dashboard snapshot. Money fields are integer cents.
type Summary struct {
	Customers        int64            `json:"customers"`
	Vehicles         int64            `json:"vehicles"`
	JobsByStatus     map[string]int64 `json:"jobs_by_status"`
	InvoicesByStatus map[string]int64 `json:"invoices_by_status"`
	RevenueCents     int64            `json:"revenue_cents"`
	OutstandingCents int64            `json:"outstanding_cents"`
}

// Summarize gathers the dashboard counts and money totals. Revenue counts
// only settled invoices; outstanding is the unpaid remainder of issued ones.
func (r *ReportRepo) Summarize(ctx context.Context) (Summary, error) {
	s := Summary{
		JobsByStatus:     map[string]int64{},
		InvoicesByStatus: map[string]int64{},
	}

	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM customers").Scan(&s.Customers); err != nil {
		return Summary{}, err
	}
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM vehicles").Scan(&s.Vehicles); err != nil {
		return Summary{}, err
	}

	if err := r.countByStatus(ctx, "jobs", s.JobsByStatus); err != nil {
		return Summary{}, err
	}
	if err := r.countByStatus(ctx, "invoices", s.InvoicesByStatus); err != nil {
		return Summary{}, err
	}

	err := r.DB.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(paid_cents),0) FROM invoices WHERE status=?",
		model.InvoicePaid).Scan(&s.RevenueCents)
	if err != nil {
		return Summary{}, err
	}
	err = r.DB.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(total_cents - paid_cents),0) FROM invoices WHERE status=?",
		model.InvoiceSent).Scan(&s.OutstandingCents)
	if err != nil {
		return Summary{}, err
	}
	return s, nil
}

func (r *ReportRepo) countByStatus(ctx context.Context, table string, into map[string]int64) error {
	rows, err := r.DB.QueryContext(ctx, "SELECT status, COUNT(*) FROM "+table+" GROUP BY status")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return err
		}
		into[status] = n
	}
	return rows.Err()
}
