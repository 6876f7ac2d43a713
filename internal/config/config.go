package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultPort               = 9101
	DefaultScrapeInterval     = 2 * time.Minute
	DefaultRequestDelay       = 1500 * time.Millisecond
	DefaultRateLimitCooldown  = 10 * time.Second
	DefaultReauthBackoff      = 60 * time.Second
	DefaultMaxWorldLookups    = 40
	DefaultMaxInstanceLookups = 20
	DefaultOfflineCadence     = 5
	DefaultFavoritesCadence   = 3
	DefaultWorldCacheSize     = 1000
	DefaultInstanceCacheSize  = 500

	DefaultBaseURL   = "https://api.vrchat.cloud/api/1"
	DefaultUserAgent = "vrcpulse/1.0 (+https://github.com/vrcpulse/vrcpulse)"

	DefaultCookieEnv   = "VRCHAT_AUTH_COOKIE"
	DefaultPasswordEnv = "VRCHAT_PASSWORD"
)

// Failed-lookup policy names accepted in failed_lookup.
const (
	FailedLookupPlaceholder = "placeholder"
	FailedLookupRetry       = "retry"
)

// Config is the top-level exporter configuration.
type Config struct {
	Exporter ExporterConfig `yaml:"exporter"`
	API      APIConfig      `yaml:"api"`
}

// ExporterConfig holds the scheduler, cache, and serving settings.
type ExporterConfig struct {
	// Port serves the /metrics exposition endpoint.
	Port int `yaml:"port"`

	// ScrapeInterval is the sleep between scrape cycles.
	ScrapeInterval time.Duration `yaml:"scrape_interval"`

	// RequestDelay is the global minimum interval between API requests.
	RequestDelay time.Duration `yaml:"request_delay"`

	// RateLimitCooldown is the forced suspension after an HTTP 429.
	RateLimitCooldown time.Duration `yaml:"rate_limit_cooldown"`

	// ReauthBackoff is the sleep after a failed re-authentication attempt.
	ReauthBackoff time.Duration `yaml:"reauth_backoff"`

	// MaxWorldLookups caps new world resolutions and world refreshes per cycle.
	MaxWorldLookups int `yaml:"max_world_lookups"`

	// MaxInstanceLookups caps new instance resolutions per cycle.
	MaxInstanceLookups int `yaml:"max_instance_lookups"`

	// OfflineCadence runs the offline-friends collector every Nth cycle.
	OfflineCadence int `yaml:"offline_cadence"`

	// FavoritesCadence runs the favorites collector every Nth cycle.
	FavoritesCadence int `yaml:"favorites_cadence"`

	// WorldCacheSize and InstanceCacheSize bound the LRU caches.
	WorldCacheSize    int `yaml:"world_cache_size"`
	InstanceCacheSize int `yaml:"instance_cache_size"`

	// FailedLookup selects what happens when a world id fails to resolve:
	// "placeholder" caches a degraded record, "retry" leaves the id
	// unresolved so a later cycle tries again.
	FailedLookup string `yaml:"failed_lookup"`
}

// APIConfig holds the upstream API settings.
type APIConfig struct {
	BaseURL   string     `yaml:"base_url"`
	UserAgent string     `yaml:"user_agent"`
	Auth      AuthConfig `yaml:"auth"`
}

// AuthConfig specifies where credentials come from. Secrets are resolved
// from environment variables, never stored in the file.
type AuthConfig struct {
	// CookieEnv names the environment variable holding the auth cookie.
	// A non-empty cookie takes precedence over username/password.
	CookieEnv string `yaml:"cookie_env"`

	// Username is the literal account name (safe to store in config).
	Username string `yaml:"username"`

	// PasswordEnv names the environment variable holding the password.
	PasswordEnv string `yaml:"password_env"`
}

// Cookie returns the auth cookie resolved from the environment.
// Returns empty string if CookieEnv is unset or the variable is not found.
func (a AuthConfig) Cookie() string {
	if a.CookieEnv == "" {
		return ""
	}
	return os.Getenv(a.CookieEnv)
}

// Password returns the account password resolved from the environment.
func (a AuthConfig) Password() string {
	if a.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(a.PasswordEnv)
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Exporter: ExporterConfig{
			Port:               DefaultPort,
			ScrapeInterval:     DefaultScrapeInterval,
			RequestDelay:       DefaultRequestDelay,
			RateLimitCooldown:  DefaultRateLimitCooldown,
			ReauthBackoff:      DefaultReauthBackoff,
			MaxWorldLookups:    DefaultMaxWorldLookups,
			MaxInstanceLookups: DefaultMaxInstanceLookups,
			OfflineCadence:     DefaultOfflineCadence,
			FavoritesCadence:   DefaultFavoritesCadence,
			WorldCacheSize:     DefaultWorldCacheSize,
			InstanceCacheSize:  DefaultInstanceCacheSize,
			FailedLookup:       FailedLookupPlaceholder,
		},
		API: APIConfig{
			BaseURL:   DefaultBaseURL,
			UserAgent: DefaultUserAgent,
			Auth: AuthConfig{
				CookieEnv:   DefaultCookieEnv,
				PasswordEnv: DefaultPasswordEnv,
			},
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	e := cfg.Exporter
	if e.Port <= 0 || e.Port > 65535 {
		return fmt.Errorf("exporter.port must be in 1..65535")
	}
	if e.ScrapeInterval <= 0 {
		return fmt.Errorf("exporter.scrape_interval must be positive")
	}
	if e.RequestDelay < 0 {
		return fmt.Errorf("exporter.request_delay must not be negative")
	}
	if e.MaxWorldLookups <= 0 {
		return fmt.Errorf("exporter.max_world_lookups must be positive")
	}
	if e.MaxInstanceLookups <= 0 {
		return fmt.Errorf("exporter.max_instance_lookups must be positive")
	}
	if e.OfflineCadence <= 0 {
		return fmt.Errorf("exporter.offline_cadence must be positive")
	}
	if e.FavoritesCadence <= 0 {
		return fmt.Errorf("exporter.favorites_cadence must be positive")
	}
	if e.WorldCacheSize <= 0 {
		return fmt.Errorf("exporter.world_cache_size must be positive")
	}
	if e.InstanceCacheSize <= 0 {
		return fmt.Errorf("exporter.instance_cache_size must be positive")
	}
	switch e.FailedLookup {
	case FailedLookupPlaceholder, FailedLookupRetry:
	default:
		return fmt.Errorf("exporter.failed_lookup must be %q or %q, got %q",
			FailedLookupPlaceholder, FailedLookupRetry, e.FailedLookup)
	}
	if cfg.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if cfg.API.Auth.CookieEnv == "" && cfg.API.Auth.Username == "" {
		return fmt.Errorf("api.auth needs cookie_env or username")
	}
	return nil
}
