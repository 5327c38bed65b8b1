package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/biskaken/garage-api/internal/handler"
	"github.com/biskaken/garage-api/internal/httpx"
	"github.com/biskaken/garage-api/internal/model"
	"github.com/biskaken/garage-api/internal/router"
	"github.com/biskaken/garage-api/internal/token"
)

// These tests drive the authenticate → authorize → validate pipeline through
// real routes. Every request here is rejected by middleware, so the handlers
// never reach their repositories.

func newJobServer(t *testing.T, codec *token.Codec, store staticPrincipals) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.HTTPErrorHandler = httpx.NewErrorHandler(false)
	router.RegisterJobs(e, handler.NewJobHandler(nil), codec, store)
	return e
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) httpx.Envelope {
	t.Helper()
	var env httpx.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal: %v (%s)", err, rec.Body.String())
	}
	return env
}

func TestPipelineRejectsMissingToken(t *testing.T) {
	codec := token.NewCodec("pipeline-secret", time.Hour)
	e := newJobServer(t, codec, staticPrincipals{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Success || env.Error != "Authentication token required." {
		t.Fatalf("envelope = %+v", env)
	}
}

func TestPipelineRejectsForgedToken(t *testing.T) {
	codec := token.NewCodec("pipeline-secret", time.Hour)
	e := newJobServer(t, codec, staticPrincipals{})

	// Issue with a different secret: verification fails before authorization.
	signed, _, err := token.NewCodec("other-secret", time.Hour).Issue(1, model.RoleAdmin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Error != "Invalid token." {
		t.Fatalf("error = %q", env.Error)
	}
}

func TestPipelineForbidsStaffDelete(t *testing.T) {
	codec := token.NewCodec("pipeline-secret", time.Hour)
	store := staticPrincipals{4: {ID: 4, Role: model.RoleStaff, Name: "Ada"}}
	e := newJobServer(t, codec, store)

	signed, _, err := codec.Issue(4, model.RoleStaff)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req := httptest.NewRequest(http.MethodDelete, "/api/jobs/7f9c24e8-3b12-4fef-91f0-5b0316b0c1c6", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Error != "Insufficient permissions" {
		t.Fatalf("error = %q", env.Error)
	}
}

func TestPipelineValidatesBeforeHandler(t *testing.T) {
	codec := token.NewCodec("pipeline-secret", time.Hour)
	store := staticPrincipals{1: {ID: 1, Role: model.RoleAdmin, Name: "Root"}}
	e := newJobServer(t, codec, store)

	signed, _, err := codec.Issue(1, model.RoleAdmin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	body := `{"customer_id":"not-a-uuid","vehicle_id":"also-bad","description":"x"}`
	req := httptest.NewRequest(http.MethodPost, "/api/jobs", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+signed)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error != "Validation failed" {
		t.Fatalf("error = %q", env.Error)
	}
	fields, ok := env.Data.([]interface{})
	if !ok || len(fields) != 3 {
		t.Fatalf("data = %#v, want three field violations", env.Data)
	}
}

func TestPipelineRejectsBadStatusTarget(t *testing.T) {
	codec := token.NewCodec("pipeline-secret", time.Hour)
	store := staticPrincipals{1: {ID: 1, Role: model.RoleAdmin, Name: "Root"}}
	e := newJobServer(t, codec, store)

	signed, _, err := codec.Issue(1, model.RoleAdmin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	// PENDING is never a valid target; the schema rejects it before any
	// state machine check runs.
	req := httptest.NewRequest(http.MethodPut,
		"/api/jobs/7f9c24e8-3b12-4fef-91f0-5b0316b0c1c6/status",
		strings.NewReader(`{"status":"PENDING"}`))
	req.Header.Set("Authorization", "Bearer "+signed)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
