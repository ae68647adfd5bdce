package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Workspace storage engines.
const (
	EngineFS     = "fs"
	EngineSQLite = "sqlite"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Workspace WorkspaceConfig   `yaml:"workspace"`
	Site      SiteConfig        `yaml:"site"`
	Auth      AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Workspace.Validate(); err != nil {
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

// WorkspaceConfig holds draft and category persistence configuration.
//
// Engine selects the backing store:
//   - "fs" (default): JSON files under Path, one file per record set.
//   - "sqlite": a single database file at SQLitePath.
type WorkspaceConfig struct {
	Engine     string `yaml:"engine"`
	Path       string `yaml:"path"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Validate validates the workspace configuration.
func (c *WorkspaceConfig) Validate() error {
	if c.Engine == "" {
		c.Engine = EngineFS
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Engine, validation.Required, validation.In(EngineFS, EngineSQLite)),
	); err != nil {
		return err
	}
	switch c.Engine {
	case EngineFS:
		if c.Path == "" {
			return fmt.Errorf("workspace: engine is %q but path is empty", EngineFS)
		}
	case EngineSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("workspace: engine is %q but sqlite_path is empty", EngineSQLite)
		}
	}
	return nil
}

// SiteConfig holds the path to the published site snapshot. An empty
// path means no published content; the workspace starts from drafts
// only.
type SiteConfig struct {
	SnapshotPath string `yaml:"snapshot_path"`
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
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
		Workspace: WorkspaceConfig{
			Engine:     EngineFS,
			Path:       "./workspace",
			SQLitePath: "./ansuz.db",
		},
		Site: SiteConfig{
			SnapshotPath: "./site.json",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
