package utils

import (
	"testing"
	"time"
)

const testSecret = "test-secret-key-for-unit-tests"

func TestGenerateAndValidateJWT(t *testing.T) {
	token, err := GenerateJWT("507f1f77bcf86cd799439011", "student", 9, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	claims, err := ValidateJWT(token, testSecret)
	if err != nil {
		t.Fatalf("ValidateJWT: %v", err)
	}
	if claims.UserID != "507f1f77bcf86cd799439011" {
		t.Errorf("user id = %q", claims.UserID)
	}
	if claims.Role != "student" || claims.ClassLevel != 9 {
		t.Errorf("claims = %+v", claims)
	}
}

func TestValidateJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT("u1", "admin", 0, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if _, err := ValidateJWT(token, "other-secret"); err == nil {
		t.Fatalf("token accepted with wrong secret")
	}
}

func TestValidateJWTExpired(t *testing.T) {
	token, err := GenerateJWT("u1", "student", 9, testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if _, err := ValidateJWT(token, testSecret); err == nil {
		t.Fatalf("expired token accepted")
	}
}

func TestRefreshJWT(t *testing.T) {
	token, err := GenerateJWT("u1", "teacher", 10, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	refreshed, err := RefreshJWT(token, testSecret, 2*time.Hour)
	if err != nil {
		t.Fatalf("RefreshJWT: %v", err)
	}
	claims, err := ValidateJWT(refreshed, testSecret)
	if err != nil {
		t.Fatalf("ValidateJWT on refreshed: %v", err)
	}
	if claims.Role != "teacher" || claims.ClassLevel != 10 {
		t.Errorf("refreshed claims = %+v", claims)
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi"},
		{"bearer abc", ""},
		{"abc", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := ExtractTokenFromHeader(c.header); got != c.want {
			t.Errorf("ExtractTokenFromHeader(%q) = %q, want %q", c.header, got, c.want)
		}
	}
}
