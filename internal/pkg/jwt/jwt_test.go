package jwt

import (
	"errors"
	"testing"
)

const (
	testSecret        = "test-secret"
	testRefreshSecret = "test-refresh-secret"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken(42, "Dana", "dana@assetdesk.local", "department", testSecret, 15)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	claims, err := ValidateAccessToken(token, testSecret)
	if err != nil {
		t.Fatalf("ValidateAccessToken failed: %v", err)
	}

	if claims.UserID != 42 {
		t.Errorf("user_id = %d, want 42", claims.UserID)
	}
	if claims.Name != "Dana" || claims.Email != "dana@assetdesk.local" {
		t.Errorf("identity = %q / %q", claims.Name, claims.Email)
	}
	if claims.Role != "department" {
		t.Errorf("role = %q, want department", claims.Role)
	}
}

func TestAccessTokenWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(1, "A", "a@x", "admin", testSecret, 15)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	if _, err := ValidateAccessToken(token, "other-secret"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("got %v, want ErrTokenInvalid", err)
	}
}

func TestAccessTokenExpired(t *testing.T) {
	token, err := GenerateAccessToken(1, "A", "a@x", "admin", testSecret, -1)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	if _, err := ValidateAccessToken(token, testSecret); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("got %v, want ErrTokenExpired", err)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	token, err := GenerateRefreshToken(7, "token-id-1", testRefreshSecret, 7)
	if err != nil {
		t.Fatalf("GenerateRefreshToken failed: %v", err)
	}

	claims, err := ValidateRefreshToken(token, testRefreshSecret)
	if err != nil {
		t.Fatalf("ValidateRefreshToken failed: %v", err)
	}

	if claims.UserID != 7 || claims.TokenID != "token-id-1" {
		t.Errorf("claims = %+v", claims)
	}

	// Access and refresh tokens are not interchangeable
	if _, err := ValidateRefreshToken(token, testSecret); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("wrong secret: got %v, want ErrTokenInvalid", err)
	}
}
