// Package config loads runtime settings. Precedence, lowest first: defaults,
// optional config file, .env file and INVENTORY_* environment variables,
// explicit overrides (command-line flags).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. INVENTORY_DATABASE_DSN.
const EnvPrefix = "INVENTORY"

// Server holds the HTTP listener settings.
type Server struct {
	Addr string `mapstructure:"addr"`
}

// Database selects the driver ("sqlite" or "postgres") and its DSN, a file
// path or ":memory:" for SQLite.
type Database struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// Admin names the account created on first run when no users exist.
type Admin struct {
	Email string `mapstructure:"email"`
}

// Log configures an optional file that receives a copy of every log line.
type Log struct {
	File string `mapstructure:"file"`
}

// CORS lists the origins allowed to call the JSON API.
type CORS struct {
	Origins []string `mapstructure:"origins"`
}

// Cookie controls session and CSRF cookie attributes. Secure should be set
// when the site is served over HTTPS.
type Cookie struct {
	Secure bool `mapstructure:"secure"`
}

// Items configures item listings. PageSize is the number of items per page.
type Items struct {
	PageSize int `mapstructure:"page_size"`
}

// Config is the complete runtime configuration.
type Config struct {
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
	Admin    Admin    `mapstructure:"admin"`
	Log      Log      `mapstructure:"log"`
	CORS     CORS     `mapstructure:"cors"`
	Cookie   Cookie   `mapstructure:"cookie"`
	Items    Items    `mapstructure:"items"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "inventory.sqlite3")
	v.SetDefault("admin.email", "admin@localhost")
	v.SetDefault("log.file", "")
	v.SetDefault("cors.origins", []string{"*"})
	v.SetDefault("cookie.secure", false)
	v.SetDefault("items.page_size", 20)
}

// Load reads the configuration. configFile may be empty; overrides maps
// dotted keys such as "database.dsn" to values that win over everything else.
func Load(configFile string, overrides map[string]any) (*Config, error) {
	// A missing .env is fine; variables already set in the environment win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	for key, value := range overrides {
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	if c.Items.PageSize <= 0 {
		return fmt.Errorf("items.page_size must be positive, got %d", c.Items.PageSize)
	}
	return nil
}
