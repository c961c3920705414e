package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backends for session persistence
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// Settings holds process-level settings read from the environment.
// Command line flags use these values as their defaults.
type Settings struct {
	Host        string `env:"HOST" envDefault:"localhost"`
	Port        int    `env:"PORT" envDefault:"8080"`
	ConfigDir   string `env:"CONFIG_DIR" envDefault:"configs"`
	StaticDir   string `env:"STATIC_DIR" envDefault:"static"`
	SessionsDir string `env:"SESSIONS_DIR" envDefault:"sessions"`
	Storage     string `env:"PLANTMERGE_STORAGE" envDefault:"file"`
	SQLitePath  string `env:"PLANTMERGE_SQLITE_PATH" envDefault:"plantmerge.db"`

	LogFile string `env:"PLANTMERGE_LOG_FILE"`
	Debug   bool   `env:"PLANTMERGE_DEBUG"`

	SessionTTL time.Duration `env:"PLANTMERGE_SESSION_TTL" envDefault:"24h"`
	// GeoDirect lets REST and MCP clients report positions without a
	// geolocation-capable WebSocket client attached.
	GeoDirect bool `env:"PLANTMERGE_GEO_DIRECT" envDefault:"true"`

	// APIURL is the external API probed by the stdio MCP mode
	APIURL string `env:"PLANTMERGE_API_URL" envDefault:"http://localhost:8080"`

	NgrokEnabled   bool   `env:"NGROK_ENABLED"`
	NgrokAuthToken string `env:"NGROK_AUTHTOKEN"`
	NgrokDomain    string `env:"NGROK_DOMAIN"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadSettings parses Settings from the environment and validates them
func LoadSettings() (Settings, error) {
	var s Settings
	if err := ParseEnv(&s); err != nil {
		return Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks value ranges and normalizes the storage backend name
func (s *Settings) Validate() error {
	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("settings: port must be between 0 and 65535, got %d", s.Port)
	}
	s.Storage = strings.ToLower(strings.TrimSpace(s.Storage))
	switch s.Storage {
	case StorageFile, StorageSQLite, StorageMemory:
	default:
		return fmt.Errorf("settings: unknown storage backend %q (want file, sqlite or memory)", s.Storage)
	}
	if s.SessionTTL <= 0 {
		return fmt.Errorf("settings: session TTL must be positive, got %s", s.SessionTTL)
	}
	return nil
}

// Addr returns the host:port listen address
func (s Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
