package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/biskaken/garage-api/internal/validation"
)

// inputKey is the context key holding the bound, validated request input.
const inputKey = "input"

// Validate runs the route's schema before the handler. It is composed after
// RequireRole so unauthorized callers never learn a route's field rules. On
// violation the request short-circuits with the full {path, message} list;
// on success the coerced values replace the raw request data for the handler.
func Validate(schema validation.Schema) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			in, err := schema.Run(c)
			if err != nil {
				return err
			}
			c.Set(inputKey, in)
			return next(c)
		}
	}
}

// Input returns the validated input stored by Validate. Calling it from a
// handler whose route has no Validate middleware yields the zero Input.
func Input(c echo.Context) validation.Input {
	in, _ := c.Get(inputKey).(validation.Input)
	return in
}
