/*
Package configs loads the server configuration from environment variables.

Values are parsed with caarlos0/env into AppConfig, defaults come from the
envDefault tags, and LoadConfig validates the combinations the hub relies on.
*/
package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	// EnvDevelopment enables console logging and relaxed origin checks.
	EnvDevelopment = "development"

	// MaxPowDifficulty bounds the number of leading hex zeros a client must find.
	MaxPowDifficulty = 8
)

// AppConfig contains every setting the server needs at runtime.
type AppConfig struct {
	// General server settings
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	Port            int           `env:"PORT" envDefault:"3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`

	// Security settings
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	PowDifficulty  int      `env:"POW_DIFFICULTY" envDefault:"0"`

	// Per-IP token buckets (events per second, burst)
	RegisterRate  float64 `env:"REGISTER_RATE" envDefault:"1"`
	RegisterBurst int     `env:"REGISTER_BURST" envDefault:"5"`
	ConnectRate   float64 `env:"CONNECT_RATE" envDefault:"1"`
	ConnectBurst  int     `env:"CONNECT_BURST" envDefault:"10"`

	// Hub settings
	SendQueueSize int   `env:"SEND_QUEUE_SIZE" envDefault:"256"`
	MaxFrameBytes int64 `env:"MAX_FRAME_BYTES" envDefault:"8192"`
}

// IsDevelopment reports whether the server runs in the development environment.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// LoadConfig reads the process environment into an AppConfig and validates it.
func LoadConfig() (*AppConfig, error) {
	return LoadConfigFrom(nil)
}

// LoadConfigFrom is LoadConfig with an explicit environment. A nil map reads the
// process environment.
func LoadConfigFrom(environ map[string]string) (*AppConfig, error) {
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}

	cfg := &AppConfig{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	origins := cfg.AllowedOrigins[:0]
	for _, origin := range cfg.AllowedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	cfg.AllowedOrigins = origins

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *AppConfig) validate() error {
	if c.Port < 1024 || c.Port > 65535 {
		return fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", c.Port, 1024, 65535)
	}

	if c.PowDifficulty < 0 || c.PowDifficulty > MaxPowDifficulty {
		return fmt.Errorf("POW_DIFFICULTY must be between 0 and %d, got %d", MaxPowDifficulty, c.PowDifficulty)
	}

	if c.RegisterRate <= 0 || c.RegisterBurst < 1 {
		return fmt.Errorf("REGISTER_RATE and REGISTER_BURST must be positive")
	}

	if c.ConnectRate <= 0 || c.ConnectBurst < 1 {
		return fmt.Errorf("CONNECT_RATE and CONNECT_BURST must be positive")
	}

	if c.SendQueueSize < 1 {
		return fmt.Errorf("SEND_QUEUE_SIZE must be at least 1, got %d", c.SendQueueSize)
	}

	if c.MaxFrameBytes < 512 {
		return fmt.Errorf("MAX_FRAME_BYTES must be at least 512, got %d", c.MaxFrameBytes)
	}

	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}

	if !c.IsDevelopment() && len(c.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_ORIGINS is required in %s environment", c.Environment)
	}

	return nil
}
