package internal

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := NewDefaultConfig()
	cfg.GitHub.Owner = "owner"
	cfg.GitHub.Repo = "repo"
	cfg.GitHub.Token = "ghp_token"
	return cfg
}

func TestDefaultConfigWithGitHubIsValid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestGitHubBackendRequiresCredentials(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Error("github backend without owner/repo/token should fail validation")
	}
}

func TestMemoryBackendSkipsGitHubConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Storage.Backend = BackendMemory
	if err := cfg.Validate(); err != nil {
		t.Errorf("memory backend should not require github config: %v", err)
	}
}

func TestUnknownBackendRejected(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Backend = "s3"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown backend accepted")
	}
}

func TestEmptyBackendDefaultsToGitHub(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Backend = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Storage.Backend != BackendGitHub {
		t.Errorf("backend = %q, want github", cfg.Storage.Backend)
	}
}

func TestHTTPPortValidation(t *testing.T) {
	cfg := validConfig()
	cfg.App.HTTP.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Error("port 0 accepted")
	}
	cfg.App.HTTP.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("port 70000 accepted")
	}
	if (&HTTPConfig{Port: 8080}).Address() != ":8080" {
		t.Error("unexpected address format")
	}
}

func TestAuthTokenModeRequirements(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.Mode = AuthModeToken
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "jwt_secret") {
		t.Errorf("err = %v, want jwt_secret complaint", err)
	}

	cfg.Auth.JWTSecret = "s3cret"
	err = cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "password") {
		t.Errorf("err = %v, want password complaint", err)
	}

	cfg.Auth.Password = "hunter2"
	if err := cfg.Validate(); err != nil {
		t.Errorf("token mode with secret and password should validate: %v", err)
	}

	if !cfg.Auth.AuthEnabled() {
		t.Error("AuthEnabled should be true in token mode")
	}
}

func TestAuthDisabledByDefault(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Auth.AuthEnabled() {
		t.Error("auth should be disabled by default")
	}
}

func TestAuthUnknownModeRejected(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.Mode = "oauth"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown auth mode accepted")
	}
}

func TestTokenTTL(t *testing.T) {
	cfg := validConfig()

	cfg.Auth.TokenTTL = "90m"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got := cfg.Auth.TTL(); got != 90*time.Minute {
		t.Errorf("TTL = %v, want 90m", got)
	}

	cfg.Auth.TokenTTL = "soon"
	if err := cfg.Validate(); err == nil {
		t.Error("invalid token_ttl accepted")
	}

	cfg.Auth.TokenTTL = ""
	if got := cfg.Auth.TTL(); got != 24*time.Hour {
		t.Errorf("empty TTL = %v, want 24h default", got)
	}
}

func TestGitHubBranchDefault(t *testing.T) {
	cfg := validConfig()
	cfg.GitHub.Branch = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.GitHub.Branch != "main" {
		t.Errorf("branch = %q, want main", cfg.GitHub.Branch)
	}
}
