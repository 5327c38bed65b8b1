package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/biskaken/garage-api/internal/apperr"
	"github.com/biskaken/garage-api/internal/handler"
	"github.com/biskaken/garage-api/internal/httpx"
	"github.com/biskaken/garage-api/internal/model"
	"github.com/biskaken/garage-api/internal/router"
	"github.com/biskaken/garage-api/internal/token"
	"github.com/biskaken/garage-api/internal/utils"
)

// fakeUsers serves accounts by email from memory.
type fakeUsers struct {
	byEmail map[string]model.User
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return model.User{}, apperr.New(apperr.NotFound, "User not found")
	}
	return u, nil
}

func passthrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

// seededUsers mirrors the development seed: one ADMIN plus one deactivated
// account. Low bcrypt cost keeps the tests fast.
func seededUsers(t *testing.T) *fakeUsers {
	t.Helper()
	adminHash, err := utils.HashPassword("admin123", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	formerHash, err := utils.HashPassword("gone4ever", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return &fakeUsers{byEmail: map[string]model.User{
		"admin@biskaken.com": {
			ID: 1, Name: "Admin", Email: "admin@biskaken.com",
			PasswordHash: adminHash, Role: model.RoleAdmin, Status: model.StatusActive,
		},
		"former@biskaken.com": {
			ID: 2, Name: "Former", Email: "former@biskaken.com",
			PasswordHash: formerHash, Role: model.RoleStaff, Status: model.StatusInactive,
		},
	}}
}

func newAuthServer(t *testing.T, codec *token.Codec, users *fakeUsers) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.HTTPErrorHandler = httpx.NewErrorHandler(false)
	router.RegisterAuth(e, handler.NewAuthHandler(codec, users), codec, staticPrincipals{}, passthrough)
	return e
}

func postLogin(e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestLoginSeededAdmin(t *testing.T) {
	codec := token.NewCodec("auth-test-secret", time.Hour)
	e := newAuthServer(t, codec, seededUsers(t))

	rec := postLogin(e, `{"email":"admin@biskaken.com","password":"admin123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	var env struct {
		Success bool `json:"success"`
		Data    struct {
			User  model.UserPublic `json:"user"`
			Token string           `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !env.Success {
		t.Fatalf("success = false")
	}
	if env.Data.User.Role != model.RoleAdmin {
		t.Fatalf("user.role = %q, want ADMIN", env.Data.User.Role)
	}
	if env.Data.User.Email != "admin@biskaken.com" {
		t.Fatalf("user.email = %q", env.Data.User.Email)
	}

	// The issued token must round-trip to the same subject and role.
	claims, err := codec.Verify(env.Data.Token)
	if err != nil {
		t.Fatalf("verify issued token: %v", err)
	}
	if claims.SubjectID != env.Data.User.ID || claims.Role != model.RoleAdmin {
		t.Fatalf("claims = %+v, want subject %d role ADMIN", claims, env.Data.User.ID)
	}
}

func TestLoginRejectionsAreIndistinguishable(t *testing.T) {
	codec := token.NewCodec("auth-test-secret", time.Hour)
	e := newAuthServer(t, codec, seededUsers(t))

	// Unknown email, wrong password and deactivated account must all
	// collapse into the same 401 so callers cannot enumerate accounts.
	cases := []struct {
		name string
		body string
	}{
		{"unknown email", `{"email":"nobody@biskaken.com","password":"admin123"}`},
		{"wrong password", `{"email":"admin@biskaken.com","password":"admin124"}`},
		{"inactive account", `{"email":"former@biskaken.com","password":"gone4ever"}`},
	}
	for _, tc := range cases {
		rec := postLogin(e, tc.body)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status = %d, want 401", tc.name, rec.Code)
		}
		env := decodeEnvelope(t, rec)
		if env.Success || env.Error != "Invalid email or password" {
			t.Fatalf("%s: envelope = %+v", tc.name, env)
		}
	}
}

func TestLoginValidatesBody(t *testing.T) {
	codec := token.NewCodec("auth-test-secret", time.Hour)
	e := newAuthServer(t, codec, seededUsers(t))

	rec := postLogin(e, `{"email":"not-an-email","password":"abc"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error != "Validation failed" {
		t.Fatalf("error = %q", env.Error)
	}
}

func TestCreateCustomerRejectsShortPhone(t *testing.T) {
	codec := token.NewCodec("auth-test-secret", time.Hour)
	store := staticPrincipals{1: {ID: 1, Role: model.RoleAdmin, Name: "Root"}}

	e := echo.New()
	e.HTTPErrorHandler = httpx.NewErrorHandler(false)
	// Validation rejects before the handler runs, so the repositories are
	// never touched.
	router.RegisterCustomers(e, handler.NewCustomerHandler(nil, nil), handler.NewVehicleHandler(nil, nil), codec, store)

	signed, _, err := codec.Issue(1, model.RoleAdmin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/customers",
		strings.NewReader(`{"name":"Bob Smith","phone":"12345"}`))
	req.Header.Set("Authorization", "Bearer "+signed)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Success {
		t.Fatalf("success = true for invalid body")
	}
	fields, ok := env.Data.([]interface{})
	if !ok || len(fields) != 1 {
		t.Fatalf("data = %#v, want exactly the phone violation", env.Data)
	}
	entry := fields[0].(map[string]interface{})
	if entry["path"] != "body.phone" {
		t.Fatalf("path = %v, want body.phone", entry["path"])
	}
	if entry["message"] != "must be at least 10 characters" {
		t.Fatalf("message = %v", entry["message"])
	}
}
