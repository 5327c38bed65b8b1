package model

import "time"

// Role values a user account may hold. ADMIN owns the shop and the full
// surface, SUB_ADMIN manages day-to-day operations, STAFF works jobs.
const (
	RoleAdmin    = "ADMIN"
	RoleSubAdmin = "SUB_ADMIN"
	RoleStaff    = "STAFF"
)

// Account status values. Only ACTIVE users can authenticate.
const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

// Roles lists every valid role, in privilege order.
var Roles = []string{RoleAdmin, RoleSubAdmin, RoleStaff}

// ValidRole reports whether r is a known role name.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleSubAdmin || r == RoleStaff
}

// User mirrors the `users` table. PasswordHash never leaves the server;
// handlers respond with the Public view instead.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – display name.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hash of the password.
//  Role         – ADMIN, SUB_ADMIN or STAFF.
//  Status       – ACTIVE or INACTIVE.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	Status       string    // users.status
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// UserPublic is the wire shape of a user, without credentials.
type UserPublic struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Public strips the credential fields for responses.
func (u User) Public() UserPublic {
	return UserPublic{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	}
}

// Principal is the authenticated identity attached to a request after
// token verification and the active-user lookup succeed.
type Principal struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Name  string `json:"name"`
}
