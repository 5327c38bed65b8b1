package token

import (
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	codec := NewCodec("unit-test-secret", time.Hour)

	signed, issued, err := codec.Issue(42, "ADMIN")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if signed == "" {
		t.Fatalf("Issue returned empty token")
	}

	got, err := codec.Verify(signed)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got.SubjectID != 42 {
		t.Fatalf("SubjectID = %d, want 42", got.SubjectID)
	}
	if got.Role != "ADMIN" {
		t.Fatalf("Role = %q, want ADMIN", got.Role)
	}
	if !got.ExpiresAt.After(got.IssuedAt) {
		t.Fatalf("ExpiresAt %v not after IssuedAt %v", got.ExpiresAt, got.IssuedAt)
	}
	if issued.SubjectID != got.SubjectID || issued.Role != got.Role {
		t.Fatalf("issued claims %+v do not match verified %+v", issued, got)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	signed, _, err := NewCodec("secret-a", time.Hour).Issue(7, "STAFF")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := NewCodec("secret-b", time.Hour).Verify(signed); err != ErrBadSignature {
		t.Fatalf("Verify with wrong secret = %v, want ErrBadSignature", err)
	}
}

func TestVerifyExpiredNotReportedAsForged(t *testing.T) {
	// A correctly signed token whose lifetime has passed must read as
	// expired, never as a signature problem.
	secret := "unit-test-secret"
	now := time.Now().UTC()
	jc := jwtClaims{
		Role: "STAFF",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(9, 10),
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jc).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := NewCodec(secret, time.Hour).Verify(signed); err != ErrExpired {
		t.Fatalf("Verify expired token = %v, want ErrExpired", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	codec := NewCodec("unit-test-secret", time.Hour)
	for _, raw := range []string{"", "garbage", "a.b.c"} {
		if _, err := codec.Verify(raw); err != ErrMalformed {
			t.Fatalf("Verify(%q) = %v, want ErrMalformed", raw, err)
		}
	}
}

func TestVerifyRejectsUnsignedAlgorithm(t *testing.T) {
	jc := jwtClaims{
		Role: "ADMIN",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodNone, jc).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewCodec("unit-test-secret", time.Hour).Verify(signed); err == nil {
		t.Fatalf("Verify accepted an unsigned token")
	}
}

func TestNewCodecDefaultTTL(t *testing.T) {
	signed, _, err := NewCodec("unit-test-secret", 0).Issue(1, "ADMIN")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := NewCodec("unit-test-secret", 0).Verify(signed)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	ttl := claims.ExpiresAt.Sub(claims.IssuedAt)
	if ttl != DefaultTTL {
		t.Fatalf("ttl = %v, want %v", ttl, DefaultTTL)
	}
}
