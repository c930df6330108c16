// Package config loads recoform settings from built-in defaults, an optional
// YAML file, RECOFORM_* environment variables and CLI flag overrides, in that
// order of precedence (later wins).
package config

import (
	"time"

	"github.com/goliatone/go-recoform/internal/logging"
	"github.com/goliatone/go-recoform/pkg/client"
)

// Config is the effective configuration.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Recommender RecommenderConfig `koanf:"recommender"`
	UI          UIConfig          `koanf:"ui"`
	Log         LogConfig         `koanf:"log"`
}

// ServerConfig configures the web surface.
type ServerConfig struct {
	Addr          string        `koanf:"addr" validate:"required"`
	ShutdownGrace time.Duration `koanf:"shutdown_grace" validate:"gt=0"`
	// RateLimit caps form posts per client IP per minute; 0 disables it.
	RateLimit  int           `koanf:"rate_limit" validate:"gte=0"`
	SessionTTL time.Duration `koanf:"session_ttl" validate:"gt=0"`
}

// RecommenderConfig describes the remote recommender service.
type RecommenderConfig struct {
	BaseURL string `koanf:"base_url" validate:"required,http_url"`
	// Contract optionally points at an OpenAPI document replacing the
	// embedded one.
	Contract     string        `koanf:"contract"`
	Timeout      time.Duration `koanf:"timeout" validate:"gt=0"`
	MaxBodyBytes int64         `koanf:"max_body_bytes" validate:"gt=0"`
	Breaker      BreakerConfig `koanf:"breaker"`
}

type BreakerConfig struct {
	Enabled      bool          `koanf:"enabled"`
	MinRequests  uint32        `koanf:"min_requests" validate:"gte=1"`
	FailureRatio float64       `koanf:"failure_ratio" validate:"gt=0,lte=1"`
	Interval     time.Duration `koanf:"interval" validate:"gte=0"`
	OpenTimeout  time.Duration `koanf:"open_timeout" validate:"gt=0"`
	HalfOpenMax  uint32        `koanf:"half_open_max" validate:"gte=1"`
}

// UIConfig customises labels and decorations shared by every surface.
type UIConfig struct {
	Title      string `koanf:"title"`
	NoticeHTML string `koanf:"notice_html"`
	// Icons maps a method value to inline SVG markup.
	Icons        map[string]string `koanf:"icons" validate:"dive,keys,oneof=user_based item_based cbf svd,endkeys"`
	TemplatesDir string            `koanf:"templates_dir"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cc := client.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Addr:          ":8080",
			ShutdownGrace: 5 * time.Second,
			RateLimit:     60,
			SessionTTL:    30 * time.Minute,
		},
		Recommender: RecommenderConfig{
			BaseURL:      cc.BaseURL,
			Timeout:      cc.Timeout,
			MaxBodyBytes: cc.MaxBodyBytes,
			Breaker: BreakerConfig{
				Enabled:      cc.Breaker.Enabled,
				MinRequests:  cc.Breaker.MinRequests,
				FailureRatio: cc.Breaker.FailureRatio,
				Interval:     cc.Breaker.Interval,
				OpenTimeout:  cc.Breaker.OpenTimeout,
				HalfOpenMax:  cc.Breaker.HalfOpenMax,
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// ClientConfig converts the recommender section for pkg/client.
func (c RecommenderConfig) ClientConfig() client.Config {
	return client.Config{
		BaseURL:      c.BaseURL,
		Timeout:      c.Timeout,
		MaxBodyBytes: c.MaxBodyBytes,
		Breaker: client.BreakerConfig{
			Enabled:      c.Breaker.Enabled,
			MinRequests:  c.Breaker.MinRequests,
			FailureRatio: c.Breaker.FailureRatio,
			Interval:     c.Breaker.Interval,
			OpenTimeout:  c.Breaker.OpenTimeout,
			HalfOpenMax:  c.Breaker.HalfOpenMax,
		},
	}
}

// LoggingConfig converts the log section for internal/logging.
func (c LogConfig) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Level
	cfg.Format = c.Format
	cfg.Caller = c.Caller
	return cfg
}
