package middleware // reusable HTTP middleware: authentication, roles, validation, limits

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/biskaken/garage-api/internal/apperr"
	"github.com/biskaken/garage-api/internal/model"
	"github.com/biskaken/garage-api/internal/token"
)

// principalKey is the context key under which the authenticated principal is
// stored. Handlers read it through CurrentPrincipal.
const principalKey = "principal"

// lookupTimeout bounds the store round-trip so a stalled database turns into
// a 500 instead of a hung request.
const lookupTimeout = 5 * time.Second

// PrincipalSource loads the identity behind a verified token. The lookup is
// constrained to ACTIVE accounts; implementations return a NotFound-tagged
// error when no active user matches.
type PrincipalSource interface {
	FindActivePrincipal(ctx context.Context, id uint64) (model.Principal, error)
}

// Authenticate verifies the bearer token and attaches the active principal
// to the request context. Failures short-circuit with Unauthenticated and a
// message naming the precise cause; store failures map to InternalError.
func Authenticate(codec *token.Codec, store PrincipalSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c)
			if !ok {
				return apperr.New(apperr.Unauthenticated, "Authentication token required.")
			}
			claims, err := codec.Verify(raw)
			if err != nil {
				if err == token.ErrExpired {
					return apperr.New(apperr.Unauthenticated, "Token expired.")
				}
				return apperr.New(apperr.Unauthenticated, "Invalid token.")
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), lookupTimeout)
			defer cancel()
			p, err := store.FindActivePrincipal(ctx, claims.SubjectID)
			if err != nil {
				if apperr.IsKind(err, apperr.NotFound) {
					return apperr.New(apperr.Unauthenticated, "Invalid or expired token.")
				}
				return apperr.Wrap(apperr.Internal, "Internal server error", err)
			}

			c.Set(principalKey, p)
			return next(c)
		}
	}
}

// OptionalAuth performs the same verification and lookup but never rejects:
// requests without a usable identity simply proceed unauthenticated. The two
// failure shapes are logged differently so a flood of bad credentials is
// distinguishable from ordinary anonymous traffic.
func OptionalAuth(codec *token.Codec, store PrincipalSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c)
			if !ok {
				// no credential supplied: normal anonymous request
				return next(c)
			}
			claims, err := codec.Verify(raw)
			if err != nil {
				log.Printf("optional-auth: credential rejected (%v) %s %s", err, c.Request().Method, c.Request().URL.Path)
				return next(c)
			}
			ctx, cancel := context.WithTimeout(c.Request().Context(), lookupTimeout)
			defer cancel()
			p, err := store.FindActivePrincipal(ctx, claims.SubjectID)
			if err != nil {
				log.Printf("optional-auth: principal lookup failed for subject %d: %v", claims.SubjectID, err)
				return next(c)
			}
			c.Set(principalKey, p)
			return next(c)
		}
	}
}

// CurrentPrincipal returns the principal attached by Authenticate or
// OptionalAuth, if any.
func CurrentPrincipal(c echo.Context) (model.Principal, bool) {
	p, ok := c.Get(principalKey).(model.Principal)
	return p, ok
}

func bearerToken(c echo.Context) (string, bool) {
	auth := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	return raw, raw != ""
}
