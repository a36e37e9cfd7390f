package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// DefaultNoOutputMessage is returned in place of an empty module run.
const DefaultNoOutputMessage = "\nNo matching advisories found. Try different inputs or --json."

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Module    ModuleConfig
	Render    RenderConfig
	Advisory  AdvisoryConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port      string `envconfig:"PORT" default:"8000"`
	Host      string `envconfig:"HOST" default:"0.0.0.0"`
	StaticDir string `envconfig:"STATIC_DIR" default:"web"`

	// CORSOrigins is a comma separated allow list; "*" admits any origin.
	CORSOrigins     []string      `envconfig:"CORS_ORIGINS" default:"*"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// ModuleConfig describes the module artifact and how it is run.
type ModuleConfig struct {
	// URL is an http(s) location or a local path of the artifact.
	URL string `envconfig:"MODULE_URL" default:"http://localhost:8000/static/main.wasm"`
	// Name is passed as argv[0].
	Name string `envconfig:"MODULE_NAME" default:"cvrf-review"`
	// Streaming enables the streaming load path; when false every load uses
	// the buffered fallback.
	Streaming bool `envconfig:"MODULE_STREAMING" default:"true"`
	// Timeout bounds one run. Zero disables the watchdog.
	Timeout       time.Duration `envconfig:"MODULE_TIMEOUT" default:"0s"`
	MaxConcurrent int           `envconfig:"MODULE_MAX_CONCURRENT" default:"4"`
	MaxBytes      int64         `envconfig:"MODULE_MAX_BYTES" default:"67108864"`
	NoOutput      string        `envconfig:"MODULE_NO_OUTPUT"`
	FetchRetries  int           `envconfig:"FETCH_RETRIES" default:"3"`
}

// RenderConfig holds output rendering options. With Sanitize on, rendered
// HTML is re-serialised through the span policy, so entities and style
// spacing may differ from the renderer's bytes while meaning the same markup.
type RenderConfig struct {
	Sanitize bool `envconfig:"RENDER_SANITIZE" default:"true"`
}

// AdvisoryConfig points at the form glue data files.
type AdvisoryConfig struct {
	ProductsFile string `envconfig:"PRODUCTS_FILE" default:"web/docs/products.json"`
	PresetsFile  string `envconfig:"PRESETS_FILE"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"5"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"10"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
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
	cfg := &Config{
		Server: ServerConfig{
			Port:            "8000",
			Host:            "0.0.0.0",
			StaticDir:       "web",
			CORSOrigins:     []string{"*"},
			ShutdownTimeout: 10 * time.Second,
		},
		Module: ModuleConfig{
			URL:           "http://localhost:8000/static/main.wasm",
			Name:          "cvrf-review",
			Streaming:     true,
			MaxConcurrent: 4,
			MaxBytes:      64 << 20,
			FetchRetries:  3,
		},
		Render: RenderConfig{
			Sanitize: true,
		},
		Advisory: AdvisoryConfig{
			ProductsFile: "web/docs/products.json",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 5,
			Burst:             10,
			Enabled:           true,
		},
	}
	cfg.normalize()
	return cfg
}

// normalize fills values envconfig cannot express as defaults.
func (c *Config) normalize() {
	if c.Module.NoOutput == "" {
		c.Module.NoOutput = DefaultNoOutputMessage
	}
	if c.Module.MaxConcurrent <= 0 {
		c.Module.MaxConcurrent = 1
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
	if c.Module.FetchRetries < 0 {
		c.Module.FetchRetries = 0
	}
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}
