// Package handler implements the HTTP route handlers. Handlers run at the
// end of the pipeline (authenticate → authorize → validate) and therefore
// trust their input: anything schema-validated arrives through
// middleware.Input already bound and coerced.
package handler

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
)

// dbTimeout bounds every store round-trip issued from a handler.
const dbTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// pageQuery is the shared pagination contract: optional numeric strings,
// coerced to integers during binding.
type pageQuery struct {
	Page  int `query:"page" validate:"omitempty,gte=1"`
	Limit int `query:"limit" validate:"omitempty,gte=1,lte=100"`
}

// norm applies the documented defaults: page 1, limit 20.
func (q pageQuery) norm() (page, limit int) {
	page, limit = q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return page, limit
}

// idParam matches routes with a UUID path parameter.
type idParam struct {
	ID string `param:"id" validate:"required,uuid4"`
}

// numIDParam matches routes addressing users by numeric id.
type numIDParam struct {
	ID uint64 `param:"id" validate:"required,gt=0"`
}
