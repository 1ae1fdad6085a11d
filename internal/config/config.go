// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported values of STORE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel            string        `mapstructure:"LOG_LEVEL"`
	HTTPAddr            string        `mapstructure:"HTTP_ADDR"`
	StoreDriver         string        `mapstructure:"STORE_DRIVER"`
	DBURL               string        `mapstructure:"DB_URL"`
	MigrationsPath      string        `mapstructure:"MIGRATIONS_PATH"`
	MongoURI            string        `mapstructure:"MONGO_URI"`
	MongoDatabase       string        `mapstructure:"MONGO_DATABASE"`
	GithubToken         string        `mapstructure:"GITHUB_TOKEN"`
	StaleAfter          time.Duration `mapstructure:"STALE_AFTER"`
	SeedQuery           string        `mapstructure:"SEED_QUERY"`
	SeedCount           int           `mapstructure:"SEED_COUNT"`
	SeedDelay           time.Duration `mapstructure:"SEED_DELAY"`
	PruneStaleRepos     bool          `mapstructure:"PRUNE_STALE_REPOS"`
	LanguageConcurrency int           `mapstructure:"LANGUAGE_CONCURRENCY"`
	GeminiAPIKey        string        `mapstructure:"GEMINI_API_KEY"`
	GeminiModel         string        `mapstructure:"GEMINI_MODEL"`
	ContributorsRepo    string        `mapstructure:"CONTRIBUTORS_REPO"`
	CORSAllowedOrigins  []string      `mapstructure:"CORS_ALLOWED_ORIGINS"`
}

var defaults = map[string]any{
	"LOG_LEVEL":            "info",
	"HTTP_ADDR":            ":8080",
	"STORE_DRIVER":         DriverPostgres,
	"DB_URL":               "",
	"MIGRATIONS_PATH":      "file://migrations",
	"MONGO_URI":            "",
	"MONGO_DATABASE":       "starRank",
	"GITHUB_TOKEN":         "",
	"STALE_AFTER":          "24h",
	"SEED_QUERY":           "followers:>1000 sort:followers-desc type:user",
	"SEED_COUNT":           20,
	"SEED_DELAY":           "1500ms",
	"PRUNE_STALE_REPOS":    false,
	"LANGUAGE_CONCURRENCY": 8,
	"GEMINI_API_KEY":       "",
	"GEMINI_MODEL":         "gemini-2.0-flash",
	"CONTRIBUTORS_REPO":    "",
	"CORS_ALLOWED_ORIGINS": "http://localhost:3000",
}

// LoadConfig reads configuration from file and/or environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()

	// Every key gets a default so Unmarshal also sees environment-only values.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// Load from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // Ignore error if file not found

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field requirements.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DBURL == "" {
			return errors.New("DB_URL is required when STORE_DRIVER is postgres")
		}
	case DriverMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required when STORE_DRIVER is mongo")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverMongo, c.StoreDriver)
	}
	if c.StaleAfter <= 0 {
		return errors.New("STALE_AFTER must be a positive duration")
	}
	if c.SeedCount <= 0 {
		return errors.New("SEED_COUNT must be positive")
	}
	if c.SeedDelay < 0 {
		return errors.New("SEED_DELAY must not be negative")
	}
	if c.LanguageConcurrency <= 0 {
		return errors.New("LANGUAGE_CONCURRENCY must be positive")
	}
	if c.ContributorsRepo != "" {
		parts := strings.Split(c.ContributorsRepo, "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return fmt.Errorf("CONTRIBUTORS_REPO must be in 'owner/name' format, got %q", c.ContributorsRepo)
		}
	}
	return nil
}

// InsightsEnabled reports whether a generative model key is configured.
func (c *Config) InsightsEnabled() bool {
	return c.GeminiAPIKey != ""
}
