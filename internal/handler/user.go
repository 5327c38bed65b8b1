package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/biskaken/garage-api/internal/apperr"
	"github.com/biskaken/garage-api/internal/httpx"
	"github.com/biskaken/garage-api/internal/middleware"
	"github.com/biskaken/garage-api/internal/model"
	"github.com/biskaken/garage-api/internal/repository"
	"github.com/biskaken/garage-api/internal/validation"
)

// UserHandler implements staff account management.
type UserHandler struct {
	Users *repository.UserRepo
	Cost  int // bcrypt cost for new accounts
}

func NewUserHandler(users *repository.UserRepo, bcryptCost int) *UserHandler {
	return &UserHandler{Users: users, Cost: bcryptCost}
}

type createUserBody struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=ADMIN SUB_ADMIN STAFF"`
}

type updateUserBody struct {
	Name string `json:"name" validate:"required,min=2"`
	Role string `json:"role" validate:"required,oneof=ADMIN SUB_ADMIN STAFF"`
}

type updateStatusBody struct {
	Status string `json:"status" validate:"required,oneof=ACTIVE INACTIVE"`
}

var (
	ListUsersSchema = validation.Schema{
		Query: func() interface{} { return new(pageQuery) },
	}
	CreateUserSchema = validation.Schema{
		Body: func() interface{} { return new(createUserBody) },
	}
	UpdateUserSchema = validation.Schema{
		Params: func() interface{} { return new(numIDParam) },
		Body:   func() interface{} { return new(updateUserBody) },
	}
	UpdateUserStatusSchema = validation.Schema{
		Params: func() interface{} { return new(numIDParam) },
		Body:   func() interface{} { return new(updateStatusBody) },
	}
	UserIDSchema = validation.Schema{
		Params: func() interface{} { return new(numIDParam) },
	}
)

// List returns a page of accounts.
func (h *UserHandler) List(c echo.Context) error {
	page, limit := middleware.Input(c).Query.(*pageQuery).norm()

	ctx, cancel := reqCtx(c)
	defer cancel()

	users, total, err := h.Users.List(ctx, page, limit)
	if err != nil {
		return err
	}
	out := make([]model.UserPublic, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return httpx.Page(c, out, httpx.NewPagination(page, limit, total))
}

// Create adds a staff account.
func (h *UserHandler) Create(c echo.Context) error {
	body := middleware.Input(c).Body.(*createUserBody)

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.Create(ctx, body.Name, body.Email, body.Password, body.Role, h.Cost)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusCreated, u.Public())
}

// Update changes a user's name and role.
func (h *UserHandler) Update(c echo.Context) error {
	in := middleware.Input(c)
	id := in.Params.(*numIDParam).ID
	body := in.Body.(*updateUserBody)

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.Update(ctx, id, body.Name, body.Role); err != nil {
		return err
	}
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, u.Public())
}

// UpdateStatus activates or deactivates an account. Deactivating yourself is
// rejected so a shop cannot lock out its last administrator.
func (h *UserHandler) UpdateStatus(c echo.Context) error {
	in := middleware.Input(c)
	id := in.Params.(*numIDParam).ID
	body := in.Body.(*updateStatusBody)

	if p, ok := middleware.CurrentPrincipal(c); ok && p.ID == id && body.Status == model.StatusInactive {
		return apperr.New(apperr.InvalidInput, "You cannot deactivate your own account")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.UpdateStatus(ctx, id, body.Status); err != nil {
		return err
	}
	return httpx.Message(c, http.StatusOK, "User status updated")
}

// Delete removes an account permanently.
func (h *UserHandler) Delete(c echo.Context) error {
	id := middleware.Input(c).Params.(*numIDParam).ID

	if p, ok := middleware.CurrentPrincipal(c); ok && p.ID == id {
		return apperr.New(apperr.InvalidInput, "You cannot delete your own account")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		return err
	}
	return httpx.Message(c, http.StatusOK, "User deleted")
}
