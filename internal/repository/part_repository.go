package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/biskaken/garage-api/internal/model"
)

// PartRepo persists inventory parts.
type PartRepo struct{ DB *sql.DB }

func NewPartRepo(db *sql.DB) *PartRepo { return &PartRepo{DB: db} }

const partColumns = "id,name,sku,quantity,unit_price_cents,created_at,updated_at"

// Create inserts a part line.
func (r *PartRepo) Create(ctx context.Context, p *model.Part) error {
	p.ID = uuid.NewString()
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO parts (id, name, sku, quantity, unit_price_cents) VALUES (?,?,?,?,?)",
		p.ID, p.Name, p.SKU, p.Quantity, p.UnitPriceCents)
	if err != nil && isDuplicate(err) {
		return conflict("Part with this SKU already exists")
	}
	return err
}

// GetByID fetches one part.
func (r *PartRepo) GetByID(ctx context.Context, id string) (model.Part, error) {
	var p model.Part
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+partColumns+" FROM parts WHERE id=? LIMIT 1", id).
		Scan(&p.ID, &p.Name, &p.SKU, &p.Quantity, &p.UnitPriceCents, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Part{}, notFound("Part")
	}
	return p, err
}

// List returns a page of parts ordered by name.
func (r *PartRepo) List(ctx context.Context, page, limit int) ([]model.Part, int64, error) {
	var total int64
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM parts").Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+partColumns+" FROM parts ORDER BY name LIMIT ? OFFSET ?",
		limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []model.Part{}
	for rows.Next() {
		var p model.Part
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.Quantity, &p.UnitPriceCents, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// Update rewrites the part's descriptive fields and price.
func (r *PartRepo) Update(ctx context.Context, p model.Part) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE parts SET name=?, sku=?, unit_price_cents=? WHERE id=?",
		p.Name, p.SKU, p.UnitPriceCents, p.ID)
	if err != nil {
		if isDuplicate(err) {
			return conflict("Part with this SKU already exists")
		}
		return err
	}
	return requireRow(res, "Part")
}

// Adjust applies a signed quantity delta. The floor lives in the WHERE
// clause: a delta that would drive stock negative changes nothing and
// returns Conflict, so concurrent adjustments cannot lose updates.
func (r *PartRepo) Adjust(ctx context.Context, id string, delta int64) (model.Part, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE parts SET quantity = quantity + ? WHERE id=? AND quantity + ? >= 0",
		delta, id, delta)
	if err != nil {
		return model.Part{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Part{}, err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return model.Part{}, err
		}
		return model.Part{}, conflict("Adjustment would drive stock below zero")
	}
	return r.GetByID(ctx, id)
}

// Delete removes a part.
func (r *PartRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM parts WHERE id=?", id)
	if err != nil {
		return err
	}
	return requireRow(res, "Part")
}
