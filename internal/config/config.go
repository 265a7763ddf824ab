package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/GriffinCanCode/restmanager/internal/rest/response"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration.
type Config struct {
	REST    RESTConfig   `yaml:"rest" toml:"rest"`
	Client  ClientConfig `yaml:"client" toml:"client"`
	Logging LogConfig    `yaml:"logging" toml:"logging"`
}

// RESTConfig holds the endpoint and identity of the API.
type RESTConfig struct {
	BaseURL      string `envconfig:"REST_BASE_URL" yaml:"base_url" toml:"base_url"`
	Username     string `envconfig:"REST_USERNAME" yaml:"username" toml:"username"`
	Password     string `envconfig:"REST_PASSWORD" yaml:"password" toml:"password"`
	UserAgent    string `envconfig:"REST_USER_AGENT" yaml:"user_agent" toml:"user_agent"`
	ResponseMode string `envconfig:"REST_RESPONSE_MODE" yaml:"response_mode" toml:"response_mode"`
}

// ClientConfig holds transport settings.
type ClientConfig struct {
	Timeout          Duration `envconfig:"REST_TIMEOUT" yaml:"timeout" toml:"timeout"`
	RateLimit        float64  `envconfig:"REST_RATE_LIMIT_RPS" yaml:"rate_limit_rps" toml:"rate_limit_rps"`
	Compression      bool     `envconfig:"REST_COMPRESSION" yaml:"compression" toml:"compression"`
	BreakerThreshold uint32   `envconfig:"REST_BREAKER_THRESHOLD" yaml:"breaker_threshold" toml:"breaker_threshold"`
	BreakerCooldown  Duration `envconfig:"REST_BREAKER_COOLDOWN" yaml:"breaker_cooldown" toml:"breaker_cooldown"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" yaml:"level" toml:"level"`
	Development bool   `envconfig:"LOG_DEV" yaml:"development" toml:"development"`
}

// Duration is a time.Duration that decodes from strings like "30s".
type Duration time.Duration

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Load loads configuration from environment variables.
// Unset variables keep their default values.
func Load() (*Config, error) {
	cfg := Default()
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFile loads a YAML or TOML file, then applies environment variables
// on top of it.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		REST: RESTConfig{
			ResponseMode: response.ModeJSON.String(),
		},
		Client: ClientConfig{
			Timeout:         Duration(30 * time.Second),
			BreakerCooldown: Duration(30 * time.Second),
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}

// Mode returns the parsed response mode.
func (c RESTConfig) Mode() response.Mode {
	mode, _ := response.ParseMode(c.ResponseMode)
	return mode
}

// Validate checks every section.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.REST),
		validation.Field(&c.Client),
		validation.Field(&c.Logging),
	)
}

// Validate checks the endpoint and response mode.
func (c RESTConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.BaseURL, validation.By(absoluteHTTPURL)),
		validation.Field(&c.ResponseMode, validation.By(knownMode)),
	)
}

// Validate checks transport limits.
func (c ClientConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Timeout, validation.Min(Duration(0))),
		validation.Field(&c.RateLimit, validation.Min(0.0)),
		validation.Field(&c.BreakerCooldown, validation.Min(Duration(0))),
	)
}

// Validate checks the log level.
func (c LogConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Level, validation.In("debug", "info", "warn", "error")),
	)
}

func absoluteHTTPURL(value interface{}) error {
	raw, _ := value.(string)
	if raw == "" {
		return nil
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return fmt.Errorf("must be an absolute http or https URL")
	}
	return nil
}

func knownMode(value interface{}) error {
	s, _ := value.(string)
	_, err := response.ParseMode(s)
	return err
}
