package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/biskaken/garage-api/internal/model"
)

// VehicleRepo persists vehicles.
type VehicleRepo struct{ DB *sql.DB }

func NewVehicleRepo(db *sql.DB) *VehicleRepo { return &VehicleRepo{DB: db} }

const vehicleColumns = "id,customer_id,make,model,year,plate,created_at,updated_at"

// Create inserts a vehicle for an existing customer.
func (r *VehicleRepo) Create(ctx context.Context, v *model.Vehicle) error {
	v.ID = uuid.NewString()
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO vehicles (id, customer_id, make, model, year, plate) VALUES (?,?,?,?,?,?)",
		v.ID, v.CustomerID, v.Make, v.Model, v.Year, v.Plate)
	if err != nil {
		if isDuplicate(err) {
			return conflict("Vehicle with this plate already exists")
		}
		if isReferenced(err) || isMissingParent(err) {
			return notFound("Customer")
		}
		return err
	}
	return nil
}

// GetByID fetches one vehicle.
func (r *VehicleRepo) GetByID(ctx context.Context, id string) (model.Vehicle, error) {
	var v model.Vehicle
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+vehicleColumns+" FROM vehicles WHERE id=? LIMIT 1", id).
		Scan(&v.ID, &v.CustomerID, &v.Make, &v.Model, &v.Year, &v.Plate, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Vehicle{}, notFound("Vehicle")
	}
	return v, err
}

// ListByCustomer returns all vehicles owned by one customer.
func (r *VehicleRepo) ListByCustomer(ctx context.Context, customerID string) ([]model.Vehicle, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+vehicleColumns+" FROM vehicles WHERE customer_id=? ORDER BY created_at", customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Vehicle{}
	for rows.Next() {
		var v model.Vehicle
		if err := rows.Scan(&v.ID, &v.CustomerID, &v.Make, &v.Model, &v.Year, &v.Plate, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Update rewrites the mutable vehicle fields.
func (r *VehicleRepo) Update(ctx context.Context, v model.Vehicle) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE vehicles SET make=?, model=?, year=?, plate=? WHERE id=?",
		v.Make, v.Model, v.Year, v.Plate, v.ID)
	if err != nil {
		if isDuplicate(err) {
			return conflict("Vehicle with this plate already exists")
		}
		return err
	}
	return requireRow(res, "Vehicle")
}

// Delete removes a vehicle unless jobs still reference it.
func (r *VehicleRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM vehicles WHERE id=?", id)
	if err != nil {
		if isReferenced(err) {
			return conflict("Vehicle has jobs on record")
		}
		return err
	}
	return requireRow(res, "Vehicle")
}
