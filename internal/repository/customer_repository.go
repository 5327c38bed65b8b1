package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/biskaken/garage-api/internal/model"
)

// CustomerRepo persists customers.
type CustomerRepo struct{ DB *sql.DB }

func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{DB: db} }

const customerColumns = "id,name,phone,email,address,created_at,updated_at"

// Create inserts a customer and, when veh is non-nil, its first vehicle in
// the same transaction so a half-created pair never survives.
func (r *CustomerRepo) Create(ctx context.Context, c *model.Customer, veh *model.Vehicle) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	c.ID = uuid.NewString()
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO customers (id, name, phone, email, address) VALUES (?,?,?,?,?)",
		c.ID, c.Name, c.Phone, c.Email, c.Address); err != nil {
		if isDuplicate(err) {
			return conflict("Customer with this phone already exists")
		}
		return err
	}
	if veh != nil {
		veh.ID = uuid.NewString()
		veh.CustomerID = c.ID
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO vehicles (id, customer_id, make, model, year, plate) VALUES (?,?,?,?,?,?)",
			veh.ID, veh.CustomerID, veh.Make, veh.Model, veh.Year, veh.Plate); err != nil {
			if isDuplicate(err) {
				return conflict("Vehicle with this plate already exists")
			}
			return err
		}
	}
	return tx.Commit()
}

// GetByID fetches one customer.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (model.Customer, error) {
	var c model.Customer
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE id=? LIMIT 1", id).
		Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Customer{}, notFound("Customer")
	}
	return c, err
}

// List returns a page of customers, optionally filtered by a name/phone
// search term, newest first.
func (r *CustomerRepo) List(ctx context.Context, page, limit int, search string) ([]model.Customer, int64, error) {
	where := ""
	args := []interface{}{}
	if search != "" {
		where = " WHERE name LIKE ? OR phone LIKE ?"
		like := "%" + search + "%"
		args = append(args, like, like)
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM customers"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+customerColumns+" FROM customers"+where+" ORDER BY created_at DESC LIMIT ? OFFSET ?",
		append(args, limit, (page-1)*limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []model.Customer{}
	for rows.Next() {
		var c model.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// Update rewrites the mutable customer fields.
func (r *CustomerRepo) Update(ctx context.Context, c model.Customer) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE customers SET name=?, phone=?, email=?, address=? WHERE id=?",
		c.Name, c.Phone, c.Email, c.Address, c.ID)
	if err != nil {
		if isDuplicate(err) {
			return conflict("Customer with this phone already exists")
		}
		return err
	}
	return requireRow(res, "Customer")
}

// Delete removes a customer. Vehicles and jobs reference customers with
// RESTRICT, so the delete fails with Conflict while history exists.
func (r *CustomerRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM customers WHERE id=?", id)
	if err != nil {
		if isReferenced(err) {
			return conflict("Customer has vehicles or jobs on record")
		}
		return err
	}
	return requireRow(res, "Customer")
}
