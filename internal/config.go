package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Storage backends.
const (
	BackendGitHub = "github"
	BackendMemory = "memory"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Storage StorageConfig     `yaml:"storage"`
	GitHub  GitHubConfig      `yaml:"github"`
	Content ContentConfig     `yaml:"content"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if c.Storage.Backend == BackendGitHub {
		if err := c.GitHub.Validate(); err != nil {
			return err
		}
	}
	if err := c.Content.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns the HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// StorageConfig selects the repository backend.
//
//   - "github" (default): content lives in a GitHub repository; GitHubConfig
//     is required.
//   - "memory": in-process store, suitable for local development and tests.
type StorageConfig struct {
	Backend string `yaml:"backend"`
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	if c.Backend == "" {
		c.Backend = BackendGitHub
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.Required, validation.In(BackendGitHub, BackendMemory)),
	)
}

// GitHubConfig identifies the content repository and how to authenticate
// against it.
type GitHubConfig struct {
	Owner  string `yaml:"owner"`
	Repo   string `yaml:"repo"`
	Branch string `yaml:"branch"`
	Token  string `yaml:"token"`
}

// Validate validates the GitHub configuration.
func (c *GitHubConfig) Validate() error {
	if c.Branch == "" {
		c.Branch = "main"
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Owner, validation.Required),
		validation.Field(&c.Repo, validation.Required),
		validation.Field(&c.Token, validation.Required),
	)
}

// ContentConfig holds the content layout inside the repository.
type ContentConfig struct {
	// BasePath is the directory holding the manifest and the books tree.
	BasePath string `yaml:"base_path"`
	// PublicBaseURL is where stored files are publicly reachable (used to
	// resolve cover URLs). Empty means "derive from the GitHub config".
	PublicBaseURL string `yaml:"public_base_url"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	if c.BasePath == "" {
		c.BasePath = "public/content"
	}
	return nil
}

// AuthConfig holds access-gate configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": admin login issues a JWT; JWTSecret and one of
//     Password/PasswordHash must be set.
type AuthConfig struct {
	Mode         string `yaml:"mode"`
	JWTSecret    string `yaml:"jwt_secret"`
	Password     string `yaml:"password"`
	PasswordHash string `yaml:"password_hash"`
	TokenTTL     string `yaml:"token_ttl"` // Go duration string, e.g. "24h"
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken {
		if c.JWTSecret == "" {
			return fmt.Errorf("auth: mode is %q but jwt_secret is empty", AuthModeToken)
		}
		if c.Password == "" && c.PasswordHash == "" {
			return fmt.Errorf("auth: mode is %q but neither password nor password_hash is set", AuthModeToken)
		}
	}
	if c.TokenTTL != "" {
		if _, err := time.ParseDuration(c.TokenTTL); err != nil {
			return fmt.Errorf("auth: invalid token_ttl %q: %w", c.TokenTTL, err)
		}
	}
	return nil
}

// AuthEnabled returns true when the access gate is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// TTL returns the configured token lifetime, defaulting to 24h.
func (c *AuthConfig) TTL() time.Duration {
	if c.TokenTTL == "" {
		return 24 * time.Hour
	}
	d, err := time.ParseDuration(c.TokenTTL)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Storage: StorageConfig{
			Backend: BackendGitHub,
		},
		GitHub: GitHubConfig{
			Branch: "main",
		},
		Content: ContentConfig{
			BasePath: "public/content",
		},
		Auth: AuthConfig{
			Mode:     AuthModeDisabled,
			TokenTTL: "24h",
		},
	}
}
