package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/bryanpdl/briefly/internal/brief"
	"github.com/bryanpdl/briefly/internal/generator"
	"github.com/bryanpdl/briefly/internal/identity"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Draft store backends.
const (
	DraftsMemory = "memory"
	DraftsFS     = "fs"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Brief   BriefConfig       `yaml:"brief"`
	LLM     LLMConfig         `yaml:"llm"`
	Drafts  DraftsConfig      `yaml:"drafts"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Uploads UploadsConfig     `yaml:"uploads"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for _, v := range []validation.Validatable{&c.App, &c.Brief, &c.LLM, &c.Drafts, &c.SQLite, &c.Uploads, &c.Auth} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel      slog.Level `yaml:"log_level"`
	HTTP          HTTPConfig `yaml:"http"`
	PublicBaseURL string     `yaml:"public_base_url"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.PublicBaseURL, validation.Required, is.URL),
	)
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// BriefConfig selects how section content is normalized.
type BriefConfig struct {
	Mode string `yaml:"mode"`
}

// Validate validates the brief configuration.
func (c *BriefConfig) Validate() error {
	_, err := brief.ParseMode(c.Mode)
	return err
}

// ContentMode returns the configured mode. Call after Validate.
func (c *BriefConfig) ContentMode() brief.Mode {
	m, _ := brief.ParseMode(c.Mode)
	return m
}

// LLMConfig holds the text-generation model settings.
type LLMConfig struct {
	Provider string        `yaml:"provider"`
	Model    string        `yaml:"model"`
	APIKey   string        `yaml:"api_key"`
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Validate validates the LLM configuration. The mock provider needs nothing else.
func (c *LLMConfig) Validate() error {
	remote := c.Provider != generator.ProviderMock
	return validation.ValidateStruct(c,
		validation.Field(&c.Provider, validation.Required,
			validation.In(generator.ProviderOpenAI, generator.ProviderDeepSeek, generator.ProviderMock)),
		validation.Field(&c.Model, validation.When(remote, validation.Required)),
		validation.Field(&c.APIKey, validation.When(remote, validation.Required.Error("is required unless provider is mock"))),
		validation.Field(&c.BaseURL, is.URL),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

// Settings converts the configuration into client settings.
func (c *LLMConfig) Settings() generator.LLMSettings {
	return generator.LLMSettings{
		Provider: c.Provider,
		Model:    c.Model,
		APIKey:   c.APIKey,
		BaseURL:  c.BaseURL,
		Timeout:  c.Timeout,
	}
}

// DraftsConfig selects where open drafts live.
//
// Backend controls persistence:
//   - "memory" (default): drafts vanish when the process exits.
//   - "fs": one JSON file per draft under Path, watched for external edits.
type DraftsConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// Validate validates the drafts configuration.
func (c *DraftsConfig) Validate() error {
	if c.Backend == "" {
		c.Backend = DraftsMemory
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.In(DraftsMemory, DraftsFS)),
		validation.Field(&c.Path, validation.When(c.Backend == DraftsFS, validation.Required)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// UploadsConfig holds reference image storage settings.
type UploadsConfig struct {
	Path     string `yaml:"path"`
	MaxBytes int64  `yaml:"max_bytes"`
}

// Validate validates the uploads configuration.
func (c *UploadsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.MaxBytes, validation.Min(int64(0))),
	)
}

// TokenConfig grants one bearer token.
type TokenConfig struct {
	Token   string `yaml:"token"`
	Subject string `yaml:"subject"`
	Paid    bool   `yaml:"paid"`
}

// Validate validates the token entry.
func (c TokenConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Token, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): every request acts as the anonymous user, whose
//     paid flag is AnonymousPaid.
//   - "token": Bearer token authentication; Tokens must be non-empty.
type AuthConfig struct {
	Mode          string        `yaml:"mode"`
	AnonymousPaid bool          `yaml:"anonymous_paid"`
	Tokens        []TokenConfig `yaml:"tokens"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
		validation.Field(&c.Tokens),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && len(c.Tokens) == 0 {
		return fmt.Errorf("auth: mode is %q but no tokens are configured", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// Resolver builds the request identity resolver.
func (c *AuthConfig) Resolver() *identity.Resolver {
	grants := make([]identity.Grant, len(c.Tokens))
	for i, t := range c.Tokens {
		grants[i] = identity.Grant{Token: t.Token, Subject: t.Subject, Paid: t.Paid}
	}
	return identity.NewResolver(c.AuthEnabled(), c.AnonymousPaid, grants)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
			PublicBaseURL: "http://localhost:8080",
		},
		Brief: BriefConfig{
			Mode: string(brief.ModeTrimmed),
		},
		LLM: LLMConfig{
			Provider: generator.ProviderOpenAI,
			Model:    "gpt-4",
			Timeout:  3 * time.Minute,
		},
		Drafts: DraftsConfig{
			Backend: DraftsMemory,
			Path:    "./drafts",
		},
		SQLite: SQLiteConfig{
			Path: "./briefly.db",
		},
		Uploads: UploadsConfig{
			Path:     "./uploads",
			MaxBytes: 5 << 20,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
