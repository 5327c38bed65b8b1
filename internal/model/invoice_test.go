package model

import (
	"testing"
	"time"
)

func TestSettledStatus(t *testing.T) {
	cases := []struct {
		name    string
		current string
		paid    int64
		total   int64
		want    string
	}{
		{"draft uncovered", InvoiceDraft, 500, 1000, InvoiceDraft},
		{"sent uncovered", InvoiceSent, 999, 1000, InvoiceSent},
		{"sent covered exactly", InvoiceSent, 1000, 1000, InvoicePaid},
		{"sent overpaid", InvoiceSent, 1500, 1000, InvoicePaid},
		{"draft covered", InvoiceDraft, 1000, 1000, InvoicePaid},
		{"paid stays paid", InvoicePaid, 2000, 1000, InvoicePaid},
		{"cancelled stays cancelled", InvoiceCancelled, 1000, 1000, InvoiceCancelled},
	}
	for _, tc := range cases {
		if got := SettledStatus(tc.current, tc.paid, tc.total); got != tc.want {
			t.Fatalf("%s: SettledStatus(%s, %d, %d) = %s, want %s",
				tc.name, tc.current, tc.paid, tc.total, got, tc.want)
		}
	}
}

func TestEffectiveStatus(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	cases := []struct {
		name string
		inv  Invoice
		want string
	}{
		{"sent past due", Invoice{Status: InvoiceSent, DueAt: &past}, InvoiceOverdue},
		{"sent before due", Invoice{Status: InvoiceSent, DueAt: &future}, InvoiceSent},
		{"sent without due date", Invoice{Status: InvoiceSent}, InvoiceSent},
		{"draft past due", Invoice{Status: InvoiceDraft, DueAt: &past}, InvoiceDraft},
		{"paid past due", Invoice{Status: InvoicePaid, DueAt: &past}, InvoicePaid},
		{"cancelled past due", Invoice{Status: InvoiceCancelled, DueAt: &past}, InvoiceCancelled},
	}
	for _, tc := range cases {
		if got := tc.inv.EffectiveStatus(now); got != tc.want {
			t.Fatalf("%s: EffectiveStatus = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestCanTransitionJob(t *testing.T) {
	allowed := [][2]string{
		{JobPending, JobInProgress},
		{JobPending, JobCancelled},
		{JobInProgress, JobCompleted},
		{JobInProgress, JobCancelled},
	}
	for _, tr := range allowed {
		if !CanTransitionJob(tr[0], tr[1]) {
			t.Fatalf("transition %s -> %s should be allowed", tr[0], tr[1])
		}
	}
	denied := [][2]string{
		{JobPending, JobCompleted},
		{JobCompleted, JobInProgress},
		{JobCompleted, JobCancelled},
		{JobCancelled, JobPending},
		{JobInProgress, JobPending},
	}
	for _, tr := range denied {
		if CanTransitionJob(tr[0], tr[1]) {
			t.Fatalf("transition %s -> %s should be denied", tr[0], tr[1])
		}
	}
}
