package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/biskaken/garage-api/internal/apperr"
	"github.com/biskaken/garage-api/internal/httpx"
	"github.com/biskaken/garage-api/internal/middleware"
	"github.com/biskaken/garage-api/internal/model"
	"github.com/biskaken/garage-api/internal/token"
	"github.com/biskaken/garage-api/internal/utils"
	"github.com/biskaken/garage-api/internal/validation"
)

// UserSource loads accounts for credential checks. *repository.UserRepo
// implements it; tests substitute an in-memory fake.
type UserSource interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
}

// AuthHandler implements login and identity endpoints.
type AuthHandler struct {
	Codec *token.Codec
	Users UserSource
}

func NewAuthHandler(codec *token.Codec, users UserSource) *AuthHandler {
	return &AuthHandler{Codec: codec, Users: users}
}

type loginBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginSchema validates POST /api/auth/login.
var LoginSchema = validation.Schema{
	Body: func() interface{} { return new(loginBody) },
}

type loginResp struct {
	User  model.UserPublic `json:"user"`
	Token string           `json:"token"`
}

// Login verifies credentials and mints a bearer token. Unknown emails, bad
// passwords and inactive accounts all collapse into the same 401 so callers
// cannot enumerate accounts.
func (h *AuthHandler) Login(c echo.Context) error {
	body := middleware.Input(c).Body.(*loginBody)

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, body.Email)
	if err != nil {
		if apperr.IsKind(err, apperr.NotFound) {
			return apperr.New(apperr.Unauthenticated, "Invalid email or password")
		}
		return err
	}
	if u.Status != model.StatusActive || !utils.VerifyPassword(u.PasswordHash, body.Password) {
		return apperr.New(apperr.Unauthenticated, "Invalid email or password")
	}

	signed, _, err := h.Codec.Issue(u.ID, u.Role)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, loginResp{User: u.Public(), Token: signed})
}

// Me returns the authenticated principal.
func (h *AuthHandler) Me(c echo.Context) error {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return apperr.New(apperr.Unauthenticated, "Authentication token required.")
	}
	return httpx.OK(c, http.StatusOK, p)
}
