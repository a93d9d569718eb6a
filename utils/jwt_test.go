package utils

import "testing"

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := CreateToken(42, "user")
	if err != nil {
		t.Fatalf("CreateToken() error: %v", err)
	}

	claims, err := ValidateJWT(token)
	if err != nil {
		t.Fatalf("ValidateJWT() error: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Role != "user" {
		t.Errorf("Role = %q, want %q", claims.Role, "user")
	}
}

func TestValidateJWTRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-one")
	token, err := CreateToken(1, "admin")
	if err != nil {
		t.Fatalf("CreateToken() error: %v", err)
	}

	t.Setenv("JWT_SECRET", "secret-two")
	if _, err := ValidateJWT(token); err == nil {
		t.Error("ValidateJWT() accepted token signed with a different secret")
	}
}

func TestInitJWTOverridesEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")
	InitJWT("configured-secret")
	t.Cleanup(func() { InitJWT("") })

	token, err := CreateToken(7, "user")
	if err != nil {
		t.Fatalf("CreateToken() error: %v", err)
	}
	claims, err := ValidateJWT(token)
	if err != nil {
		t.Fatalf("ValidateJWT() error: %v", err)
	}
	if claims.UserID != 7 {
		t.Errorf("UserID = %d, want 7", claims.UserID)
	}

	// The configured secret, not the environment, signed the token.
	InitJWT("")
	if _, err := ValidateJWT(token); err == nil {
		t.Error("token validated against the environment secret; config secret was ignored at signing")
	}
}

func TestValidateJWTRejectsEmpty(t *testing.T) {
	if _, err := ValidateJWT(""); err == nil {
		t.Error("ValidateJWT(\"\") = nil error, want error")
	}
}

func TestGenerateRefreshTokenHashesValue(t *testing.T) {
	raw, hashed, err := GenerateRefreshToken()
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error: %v", err)
	}
	if raw == "" || hashed == "" {
		t.Fatal("empty token or hash")
	}
	if raw == hashed {
		t.Error("raw token equals its hash; refresh tokens must be stored hashed")
	}
	if len(raw) != 64 || len(hashed) != 64 {
		t.Errorf("len(raw)=%d len(hashed)=%d, want 64/64 hex chars", len(raw), len(hashed))
	}
}
