package security

import (
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestSignAndParseAccessToken(t *testing.T) {
	m := NewJWTManager("iss", "aud", testSecret)
	token, err := m.SignAccessToken(42, "technician", 15*time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := m.ParseAccessToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "42" {
		t.Fatalf("subject = %q, want 42", claims.Subject)
	}
	if claims.Role != "technician" {
		t.Fatalf("role = %q, want technician", claims.Role)
	}
	if claims.TokenType != "access" {
		t.Fatalf("token_type = %q, want access", claims.TokenType)
	}
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	m := NewJWTManager("iss", "aud", testSecret)
	token, err := m.SignAccessToken(1, "admin", -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.ParseAccessToken(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestParseAccessTokenRejectsWrongIssuerAudienceSecret(t *testing.T) {
	good := NewJWTManager("iss", "aud", testSecret)

	tests := []struct {
		name   string
		signer *JWTManager
	}{
		{name: "wrongIssuer", signer: NewJWTManager("other-iss", "aud", testSecret)},
		{name: "wrongAudience", signer: NewJWTManager("iss", "other-aud", testSecret)},
		{name: "wrongSecret", signer: NewJWTManager("iss", "aud", "ffffffffffffffffffffffffffffffff")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			token, err := tc.signer.SignAccessToken(1, "admin", time.Minute)
			if err != nil {
				t.Fatalf("sign: %v", err)
			}
			if _, err := good.ParseAccessToken(token); err == nil {
				t.Fatal("expected token to be rejected")
			}
		})
	}
}

func TestParseAccessTokenRejectsGarbage(t *testing.T) {
	m := NewJWTManager("iss", "aud", testSecret)
	for _, raw := range []string{"", "not-a-token", "a.b.c", strings.Repeat("x", 2048)} {
		if _, err := m.ParseAccessToken(raw); err == nil {
			t.Fatalf("expected rejection for %q", raw)
		}
	}
}

func FuzzParseAccessTokenNeverPanics(f *testing.F) {
	f.Add("")
	f.Add("a.b.c")
	f.Add("eyJhbGciOiJIUzI1NiJ9.e30.sig")

	m := NewJWTManager("iss", "aud", testSecret)
	f.Fuzz(func(t *testing.T, raw string) {
		if len(raw) > 4096 {
			raw = raw[:4096]
		}
		claims, err := m.ParseAccessToken(raw)
		if err == nil && (claims == nil || claims.Subject == "") {
			t.Fatalf("accepted token without subject: %+v", claims)
		}
	})
}
