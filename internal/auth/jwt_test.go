package auth

import (
	"testing"

	"ticket-backend/internal/config"
	"ticket-backend/internal/models"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Issuer = "ticket-backend-test"
	cfg.JWT.ExpirationHours = 1
	return cfg
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewJWTManager(testConfig())
	techID := 7
	user := &models.User{
		ID:           3,
		Email:        "tech@example.com",
		Role:         "technician",
		TechnicianID: &techID,
		IsActive:     true,
	}

	token, err := m.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 3 || claims.Email != "tech@example.com" || claims.Role != "technician" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.TechnicianID == nil || *claims.TechnicianID != 7 {
		t.Errorf("TechnicianID = %v, want 7", claims.TechnicianID)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	m := NewJWTManager(testConfig())
	user := &models.User{ID: 1, Email: "a@b.c", Role: "admin", IsActive: true}

	token, err := m.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	other := testConfig()
	other.JWT.Secret = "different-secret"
	if _, err := NewJWTManager(other).ValidateToken(token); err == nil {
		t.Error("token signed with another secret accepted")
	}
}

// A pending 2FA token must never pass as a full session token, and a
// full token must never pass the pending check.
func TestTempTokenIsNotInterchangeable(t *testing.T) {
	m := NewJWTManager(testConfig())
	user := &models.User{ID: 2, Email: "admin@example.com", Role: "admin", IsActive: true}

	temp, err := m.GenerateTempToken(user)
	if err != nil {
		t.Fatalf("GenerateTempToken: %v", err)
	}
	claims, err := m.ValidateTempToken(temp)
	if err != nil {
		t.Fatalf("ValidateTempToken: %v", err)
	}
	if claims.UserID != 2 || claims.Type != "2fa_pending" {
		t.Errorf("temp claims = %+v", claims)
	}

	full, err := m.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := m.ValidateTempToken(full); err == nil {
		t.Error("full session token accepted as pending 2FA token")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2!")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "hunter2!" {
		t.Fatal("password stored in the clear")
	}
	if !VerifyPassword(hash, "hunter2!") {
		t.Error("correct password rejected")
	}
	if VerifyPassword(hash, "hunter3!") {
		t.Error("wrong password accepted")
	}
}
