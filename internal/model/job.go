package model

import "time"

// Job status values. PENDING jobs wait for a bay, IN_PROGRESS jobs are on
// the floor, COMPLETED and CANCELLED are terminal.
const (
	JobPending    = "PENDING"
	JobInProgress = "IN_PROGRESS"
	JobCompleted  = "COMPLETED"
	JobCancelled  = "CANCELLED"
)

// JobStatusTransitions maps each job status to the statuses it may move to.
var JobStatusTransitions = map[string][]string{
	JobPending:    {JobInProgress, JobCancelled},
	JobInProgress: {JobCompleted, JobCancelled},
	JobCompleted:  {},
	JobCancelled:  {},
}

// CanTransitionJob reports whether a job may move from one status to another.
func CanTransitionJob(from, to string) bool {
	for _, s := range JobStatusTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Job mirrors the `jobs` table: one unit of repair work on a vehicle.
//
// Fields:
//  ID             – primary key (uuid).
//  CustomerID     – customer the work is billed to.
//  VehicleID      – vehicle in the bay.
//  AssignedUserID – staff member working the job, if assigned.
//  Description    – what was asked for.
//  Status         – PENDING, IN_PROGRESS, COMPLETED or CANCELLED.
type Job struct {
	ID             string    `json:"id"`
	CustomerID     string    `json:"customer_id"`
	VehicleID      string    `json:"vehicle_id"`
	AssignedUserID *uint64   `json:"assigned_user_id,omitempty"`
	Description    string    `json:"description"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Part mirrors the `parts` table: one inventory line.
type Part struct {
	ID             string    `json:"id"`             // parts.id (uuid)
	Name           string    `json:"name"`           // parts.name
	SKU            string    `json:"sku"`            // parts.sku, unique
	Quantity       int64     `json:"quantity"`       // parts.quantity, never negative
	UnitPriceCents int64     `json:"unit_price_cents"` // parts.unit_price_cents
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
