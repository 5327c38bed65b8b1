// Package token implements the bearer-token codec. Tokens are HS256 JWTs
// carrying the subject id and role, signed with a server-held secret and
// self-expiring. There is no server-side revocation; logout is client-side.
package token

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failures are reported as one of these three values so the
// auth middleware can tell the caller exactly what went wrong.
var (
	ErrMalformed    = errors.New("token malformed")
	ErrBadSignature = errors.New("token signature invalid")
	ErrExpired      = errors.New("token expired")
)

// DefaultTTL is the token lifetime used when none is configured.
const DefaultTTL = 7 * 24 * time.Hour

// Claims is the payload carried by an issued token.
type Claims struct {
	SubjectID uint64 // user id the token was minted for
	Role      string // role at issue time
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec issues and verifies bearer tokens with a single shared secret.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec builds a codec. A non-positive ttl falls back to DefaultTTL.
func NewCodec(secret string, ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Codec{secret: []byte(secret), ttl: ttl}
}

type jwtClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Issue mints a signed token for the given subject and role.
func (c *Codec) Issue(subjectID uint64, role string) (string, Claims, error) {
	now := time.Now().UTC()
	exp := now.Add(c.ttl)
	jc := jwtClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(subjectID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jc).SignedString(c.secret)
	if err != nil {
		return "", Claims{}, err
	}
	return signed, Claims{SubjectID: subjectID, Role: role, IssuedAt: now, ExpiresAt: exp}, nil
}

// Verify parses and validates a raw token string. It returns ErrExpired for
// tokens past their expiry, ErrBadSignature for signature mismatches and
// ErrMalformed for everything that does not parse as one of our tokens.
func (c *Codec) Verify(raw string) (Claims, error) {
	var jc jwtClaims
	tok, err := jwt.ParseWithClaims(raw, &jc, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadSignature
		}
		return c.secret, nil
	})
	if err != nil {
		// Expiry is checked before the signature case so a stale but
		// correctly signed token is never reported as forged.
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, ErrBadSignature):
			return Claims{}, ErrBadSignature
		default:
			return Claims{}, ErrMalformed
		}
	}
	if !tok.Valid {
		return Claims{}, ErrMalformed
	}
	subjectID, err := strconv.ParseUint(jc.Subject, 10, 64)
	if err != nil {
		return Claims{}, ErrMalformed
	}
	out := Claims{SubjectID: subjectID, Role: jc.Role}
	if jc.IssuedAt != nil {
		out.IssuedAt = jc.IssuedAt.Time
	}
	if jc.ExpiresAt != nil {
		out.ExpiresAt = jc.ExpiresAt.Time
	}
	return out, nil
}
