// Package httpx defines the JSON response envelope shared by every endpoint
// and the outermost error boundary that maps tagged errors to HTTP statuses.
package httpx

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/biskaken/garage-api/internal/apperr"
)

// Pagination describes the page window of a list response.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// Envelope is the uniform response body:
// {success, data?, message?, error?, pagination?}.
type Envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Error      string      `json:"error,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// OK writes a success envelope with the given status and payload.
func OK(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, Envelope{Success: true, Data: data})
}

// Message writes a success envelope carrying only a human message.
func Message(c echo.Context, status int, msg string) error {
	return c.JSON(status, Envelope{Success: true, Message: msg})
}

// Page writes a success envelope with list data and pagination metadata.
func Page(c echo.Context, data interface{}, p Pagination) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Pagination: &p})
}

// NewPagination computes the derived page count for a window.
func NewPagination(page, limit int, total int64) Pagination {
	pages := int64(0)
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.Unauthenticated:
		return http.StatusUnauthorized
	case apperr.Forbidden:
		return http.StatusForbidden
	case apperr.InvalidInput:
		return http.StatusBadRequest
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// NewErrorHandler returns the echo HTTPErrorHandler used as the outermost
// error boundary. Tagged errors map to their status and caller-safe message;
// validation errors carry their field list in data; everything else becomes
// a generic 500. The underlying detail is always logged with method and path,
// and leaks into the response only outside production.
func NewErrorHandler(isProd bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		req := c.Request()

		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			log.Printf("%s %s -> %d: %v", req.Method, req.URL.Path, statusFor(appErr.Kind), err)
			env := Envelope{Success: false, Error: appErr.Message}
			if len(appErr.Fields) > 0 {
				env.Data = appErr.Fields
			}
			_ = c.JSON(statusFor(appErr.Kind), env)
			return
		}

		// echo's own errors (404 route misses, 405, oversized bodies)
		if he, ok := err.(*echo.HTTPError); ok {
			msg := http.StatusText(he.Code)
			if s, ok := he.Message.(string); ok {
				msg = s
			}
			log.Printf("%s %s -> %d: %v", req.Method, req.URL.Path, he.Code, err)
			_ = c.JSON(he.Code, Envelope{Success: false, Error: msg})
			return
		}

		log.Printf("%s %s -> 500: %v", req.Method, req.URL.Path, err)
		msg := "Internal server error"
		if !isProd {
			msg = err.Error()
		}
		_ = c.JSON(http.StatusInternalServerError, Envelope{Success: false, Error: msg})
	}
}
