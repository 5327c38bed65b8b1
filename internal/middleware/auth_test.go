package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/biskaken/garage-api/internal/apperr"
	"github.com/biskaken/garage-api/internal/middleware"
	"github.com/biskaken/garage-api/internal/model"
	"github.com/biskaken/garage-api/internal/token"
)

// fakePrincipals serves a fixed set of active principals from memory.
type fakePrincipals struct {
	byID map[uint64]model.Principal
	err  error
}

func (f *fakePrincipals) FindActivePrincipal(_ context.Context, id uint64) (model.Principal, error) {
	if f.err != nil {
		return model.Principal{}, f.err
	}
	p, ok := f.byID[id]
	if !ok {
		return model.Principal{}, apperr.New(apperr.NotFound, "User not found")
	}
	return p, nil
}

var testCodec = token.NewCodec("middleware-test-secret", time.Hour)

func runAuthenticated(t *testing.T, store middleware.PrincipalSource, authz string, mws ...echo.MiddlewareFunc) (model.Principal, bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var (
		seen   model.Principal
		seenOK bool
	)
	h := func(c echo.Context) error {
		seen, seenOK = middleware.CurrentPrincipal(c)
		return c.NoContent(http.StatusOK)
	}
	// Authenticate runs outermost, any extra middleware in between.
	chain := h
	for i := len(mws) - 1; i >= 0; i-- {
		chain = mws[i](chain)
	}
	chain = middleware.Authenticate(testCodec, store)(chain)
	err := chain(c)
	return seen, seenOK, err
}

func TestAuthenticateMissingToken(t *testing.T) {
	store := &fakePrincipals{byID: map[uint64]model.Principal{}}
	_, _, err := runAuthenticated(t, store, "")
	if !apperr.IsKind(err, apperr.Unauthenticated) {
		t.Fatalf("err = %v, want Unauthenticated", err)
	}
}

func TestAuthenticateGarbageToken(t *testing.T) {
	store := &fakePrincipals{byID: map[uint64]model.Principal{}}
	_, _, err := runAuthenticated(t, store, "Bearer not-a-token")
	if !apperr.IsKind(err, apperr.Unauthenticated) {
		t.Fatalf("err = %v, want Unauthenticated", err)
	}
}

func TestAuthenticateWrongSecret(t *testing.T) {
	other := token.NewCodec("some-other-secret", time.Hour)
	signed, _, err := other.Issue(1, model.RoleAdmin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	store := &fakePrincipals{byID: map[uint64]model.Principal{}}
	_, _, herr := runAuthenticated(t, store, "Bearer "+signed)
	if !apperr.IsKind(herr, apperr.Unauthenticated) {
		t.Fatalf("err = %v, want Unauthenticated", herr)
	}
}

func TestAuthenticateUnknownSubject(t *testing.T) {
	signed, _, err := testCodec.Issue(99, model.RoleStaff)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	store := &fakePrincipals{byID: map[uint64]model.Principal{}}
	_, _, herr := runAuthenticated(t, store, "Bearer "+signed)
	if !apperr.IsKind(herr, apperr.Unauthenticated) {
		t.Fatalf("err = %v, want Unauthenticated", herr)
	}
}

func TestAuthenticateStoreFailure(t *testing.T) {
	signed, _, err := testCodec.Issue(1, model.RoleStaff)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	store := &fakePrincipals{err: errors.New("connection reset")}
	_, _, herr := runAuthenticated(t, store, "Bearer "+signed)
	if !apperr.IsKind(herr, apperr.Internal) {
		t.Fatalf("err = %v, want Internal", herr)
	}
}

func TestAuthenticateAttachesPrincipal(t *testing.T) {
	store := &fakePrincipals{byID: map[uint64]model.Principal{
		7: {ID: 7, Email: "lena@shop.test", Role: model.RoleSubAdmin, Name: "Lena"},
	}}
	signed, _, err := testCodec.Issue(7, model.RoleSubAdmin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	p, ok, herr := runAuthenticated(t, store, "Bearer "+signed)
	if herr != nil {
		t.Fatalf("handler err: %v", herr)
	}
	if !ok {
		t.Fatalf("principal not attached")
	}
	if p.ID != 7 || p.Role != model.RoleSubAdmin || p.Name != "Lena" {
		t.Fatalf("principal = %+v", p)
	}
}

func TestRequireRoleAllowsListedRole(t *testing.T) {
	store := &fakePrincipals{byID: map[uint64]model.Principal{
		1: {ID: 1, Role: model.RoleAdmin},
	}}
	signed, _, err := testCodec.Issue(1, model.RoleAdmin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	_, _, herr := runAuthenticated(t, store, "Bearer "+signed,
		middleware.RequireRole(model.RoleAdmin, model.RoleSubAdmin))
	if herr != nil {
		t.Fatalf("err = %v, want nil", herr)
	}
}

func TestRequireRoleRejectsOtherRole(t *testing.T) {
	store := &fakePrincipals{byID: map[uint64]model.Principal{
		2: {ID: 2, Role: model.RoleStaff},
	}}
	signed, _, err := testCodec.Issue(2, model.RoleStaff)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	_, _, herr := runAuthenticated(t, store, "Bearer "+signed,
		middleware.RequireRole(model.RoleAdmin))
	if !apperr.IsKind(herr, apperr.Forbidden) {
		t.Fatalf("err = %v, want Forbidden", herr)
	}
}

func TestRequireRoleWithoutPrincipal(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/protected", nil), httptest.NewRecorder())
	h := middleware.RequireRole(model.RoleAdmin)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); !apperr.IsKind(err, apperr.Unauthenticated) {
		t.Fatalf("err = %v, want Unauthenticated", err)
	}
}

func TestOptionalAuthAnonymous(t *testing.T) {
	store := &fakePrincipals{byID: map[uint64]model.Principal{}}
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/shop", nil), httptest.NewRecorder())

	var ok bool
	h := middleware.OptionalAuth(testCodec, store)(func(c echo.Context) error {
		_, ok = middleware.CurrentPrincipal(c)
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("err = %v", err)
	}
	if ok {
		t.Fatalf("anonymous request got a principal")
	}
}

func TestOptionalAuthBadTokenProceeds(t *testing.T) {
	store := &fakePrincipals{byID: map[uint64]model.Principal{}}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/shop", nil)
	req.Header.Set("Authorization", "Bearer nonsense")
	c := e.NewContext(req, httptest.NewRecorder())

	called := false
	h := middleware.OptionalAuth(testCodec, store)(func(c echo.Context) error {
		called = true
		if _, ok := middleware.CurrentPrincipal(c); ok {
			t.Fatalf("rejected credential still attached a principal")
		}
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("err = %v", err)
	}
	if !called {
		t.Fatalf("handler not reached")
	}
}

func TestOptionalAuthValidToken(t *testing.T) {
	store := &fakePrincipals{byID: map[uint64]model.Principal{
		5: {ID: 5, Role: model.RoleStaff, Name: "Noor"},
	}}
	signed, _, err := testCodec.Issue(5, model.RoleStaff)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/shop", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	c := e.NewContext(req, httptest.NewRecorder())

	h := middleware.OptionalAuth(testCodec, store)(func(c echo.Context) error {
		p, ok := middleware.CurrentPrincipal(c)
		if !ok || p.Name != "Noor" {
			t.Fatalf("principal = %+v ok=%v", p, ok)
		}
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("err = %v", err)
	}
}
