// Package validation implements the declarative per-route request contracts.
// A Schema names the expected shape of {body, query, params}; running it
// binds the request into typed values (coercing numeric query strings along
// the way) and checks the declared constraints, producing one {path, message}
// pair per violation with dotted paths like "body.email" or "params.id".
// Schemas are pure: they never touch external state.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/biskaken/garage-api/internal/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their wire name (param/query/json tag), not the Go name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"param", "query", "json"} {
			if name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]; name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	// Model years run from 1900 through next year's models.
	_ = v.RegisterValidation("vehicleyear", func(fl validator.FieldLevel) bool {
		year := fl.Field().Int()
		return year >= 1900 && year <= int64(time.Now().Year()+1)
	})
	return v
}

// Schema declares the validated parts of a route's input. Each part is a
// factory returning a fresh pointer-to-struct so concurrent requests never
// share state. Nil parts are skipped.
type Schema struct {
	Body   func() interface{}
	Query  func() interface{}
	Params func() interface{}
}

// Input holds the bound, validated values for one request. Handlers
// type-assert the parts back to their schema structs.
type Input struct {
	Body   interface{}
	Query  interface{}
	Params interface{}
}

// Run binds and validates the request against the schema. On any violation
// it returns an InvalidInput error carrying the full field list; the bound
// values are only usable when the returned error is nil.
func (s Schema) Run(c echo.Context) (Input, error) {
	var (
		in     Input
		fields []apperr.FieldError
		binder echo.DefaultBinder
	)

	if s.Params != nil {
		in.Params = s.Params()
		if err := binder.BindPathParams(c, in.Params); err != nil {
			fields = append(fields, bindFieldError("params", err))
		} else {
			fields = append(fields, check("params", in.Params)...)
		}
	}
	if s.Query != nil {
		in.Query = s.Query()
		if err := binder.BindQueryParams(c, in.Query); err != nil {
			fields = append(fields, bindFieldError("query", err))
		} else {
			fields = append(fields, check("query", in.Query)...)
		}
	}
	if s.Body != nil {
		in.Body = s.Body()
		if err := binder.BindBody(c, in.Body); err != nil {
			fields = append(fields, bindFieldError("body", err))
		} else {
			fields = append(fields, check("body", in.Body)...)
		}
	}

	if len(fields) > 0 {
		return Input{}, apperr.Validation(fields)
	}
	return in, nil
}

// check runs the constraint tags and rewrites each violation's namespace
// into a dotted path rooted at the given section.
func check(section string, v interface{}) []apperr.FieldError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []apperr.FieldError{{Path: section, Message: "is invalid"}}
	}
	out := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, apperr.FieldError{
			Path:    dottedPath(section, fe.Namespace()),
			Message: messageFor(fe),
		})
	}
	return out
}

// dottedPath turns "createCustomerBody.vehicle.year" into
// "body.vehicle.year" by replacing the root struct name with the section.
func dottedPath(section, namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return section + namespace[i:]
	}
	return section
}

func bindFieldError(section string, err error) apperr.FieldError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		var be *echo.BindingError
		if errors.As(he.Internal, &be) && be.Field != "" {
			return apperr.FieldError{Path: section + "." + be.Field, Message: "must be a valid number"}
		}
	}
	if section == "body" {
		return apperr.FieldError{Path: "body", Message: "must be valid JSON"}
	}
	return apperr.FieldError{Path: section, Message: "is invalid"}
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be %s or more", fe.Param())
	case "lte":
		return fmt.Sprintf("must be %s or less", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "vehicleyear":
		return fmt.Sprintf("must be between 1900 and %d", time.Now().Year()+1)
	case "dive":
		return "is invalid"
	default:
		return fmt.Sprintf("failed %s constraint", fe.Tag())
	}
}
