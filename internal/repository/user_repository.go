package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"

	"github.com/biskaken/garage-api/internal/model"
	"github.com/biskaken/garage-api/internal/utils"
)

// UserRepo persists shop users (ADMIN, SUB_ADMIN, STAFF accounts).
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,name,email,password_hash,role,status,created_at,updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create inserts a user with a freshly hashed password and returns the row.
func (r *UserRepo) Create(ctx context.Context, name, email, password, role string, cost int) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.User{}, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role, status) VALUES (?,?,?,?,?)",
		name, email, hash, role, model.StatusActive)
	if err != nil {
		if isDuplicate(err) {
			return model.User{}, conflict("Email already exists")
		}
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByEmail fetches a user by normalized email, any status.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, notFound("User")
	}
	return u, err
}

// GetByID fetches a user by id, any status.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, notFound("User")
	}
	return u, err
}

// FindActivePrincipal loads the request identity for a verified token. The
// status constraint lives in the query: an INACTIVE account is
// indistinguishable from a missing one, per the auth contract.
func (r *UserRepo) FindActivePrincipal(ctx context.Context, id uint64) (model.Principal, error) {
	var p model.Principal
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,role,name FROM users WHERE id=? AND status=? LIMIT 1",
		id, model.StatusActive).Scan(&p.ID, &p.Email, &p.Role, &p.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Principal{}, notFound("User")
	}
	return p, err
}

// List returns a page of users plus the unpaged total.
func (r *UserRepo) List(ctx context.Context, page, limit int) ([]model.User, int64, error) {
	var total int64
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id LIMIT ? OFFSET ?",
		limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// Update changes a user's name and role.
func (r *UserRepo) Update(ctx context.Context, id uint64, name, role string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET name=?, role=? WHERE id=?", name, role, id)
	if err != nil {
		return err
	}
	return requireRow(res, "User")
}

// UpdateStatus activates or deactivates an account. Deactivation takes
// effect on the user's next request because every authenticated call
// re-checks status.
func (r *UserRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET status=? WHERE id=?", status, id)
	if err != nil {
		return err
	}
	return requireRow(res, "User")
}

// Delete removes a user. Accounts referenced by active jobs should be
// deactivated instead; the foreign key keeps a hard delete honest.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		if isReferenced(err) {
			return conflict("User is assigned to existing jobs")
		}
		return err
	}
	return requireRow(res, "User")
}

// EnsureSeedAdmin inserts the demo ADMIN account when the users table is
// empty. Called outside production only.
func (r *UserRepo) EnsureSeedAdmin(ctx context.Context, cost int) error {
	var n int64
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if _, err := r.Create(ctx, "Administrator", "admin@biskaken.com", "admin123", model.RoleAdmin, cost); err != nil {
		return err
	}
	log.Println("seeded demo admin account admin@biskaken.com")
	return nil
}

// requireRow converts a zero-rows-affected update into a NotFound error.
func requireRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound(what)
	}
	return nil
}
