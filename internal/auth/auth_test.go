package auth

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/paokel/novelhub/internal/apperr"
)

func TestLoginAndValidate(t *testing.T) {
	svc := NewService("test-secret", "hunter2", "", time.Hour)

	token, exp, err := svc.Login("hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}
	if !exp.After(time.Now()) {
		t.Errorf("expiry %v is not in the future", exp)
	}
	if !svc.Validate(token) {
		t.Error("issued token rejected")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := NewService("test-secret", "hunter2", "", time.Hour)
	if _, _, err := svc.Login("wrong"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
}

func TestLoginEmptyPassword(t *testing.T) {
	svc := NewService("test-secret", "hunter2", "", time.Hour)
	if _, _, err := svc.Login(""); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewService("test-secret", "hunter2", "", time.Hour)
	for _, cred := range []string{"", "not-a-jwt", "a.b.c"} {
		if svc.Validate(cred) {
			t.Errorf("Validate(%q) = true", cred)
		}
	}
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	issuer := NewService("secret-one", "hunter2", "", time.Hour)
	verifier := NewService("secret-two", "hunter2", "", time.Hour)

	token, _, err := issuer.Login("hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if verifier.Validate(token) {
		t.Error("token signed with another secret accepted")
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	svc := NewService("test-secret", "hunter2", "", time.Nanosecond)

	token, _, err := svc.Login("hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if svc.Validate(token) {
		t.Error("expired token accepted")
	}
}

func TestBcryptHashPrecedence(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("real-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	// Plain password deliberately different; the hash must win.
	svc := NewService("test-secret", "decoy", string(hash), time.Hour)

	if _, _, err := svc.Login("real-password"); err != nil {
		t.Errorf("hash-backed login failed: %v", err)
	}
	if _, _, err := svc.Login("decoy"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("plain password accepted despite hash: %v", err)
	}
}

func TestDefaultTTL(t *testing.T) {
	svc := NewService("s", "p", "", 0)
	if svc.TTL() != 24*time.Hour {
		t.Errorf("TTL = %v, want 24h", svc.TTL())
	}
}
