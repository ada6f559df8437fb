// Package config loads texkit configuration from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wudi/texkit/observability"
)

const (
	BackendBuiltin = "builtin"
	BackendChrome  = "chrome"

	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Duration is a time.Duration written as a Go duration string in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	Page    PageConfig              `yaml:"page"`
	Render  RenderConfig            `yaml:"render"`
	Cache   CacheConfig             `yaml:"cache"`
	Log     observability.LogConfig `yaml:"log"`
	Server  ServerConfig            `yaml:"server"`
	Metrics MetricsConfig           `yaml:"metrics"`
}

// PageConfig is the PDF page geometry. Sizes are in millimetres. Language
// is a BCP 47 tag written to the document catalog; empty omits it.
type PageConfig struct {
	WidthMM  float64 `yaml:"width_mm"`
	HeightMM float64 `yaml:"height_mm"`
	Language string  `yaml:"language"`
}

type RenderConfig struct {
	Backend     string   `yaml:"backend"`
	Scale       float64  `yaml:"scale"`
	SettleDelay Duration `yaml:"settle_delay"`
	MaxHeightPx int      `yaml:"max_height_px"`
	ChromePath  string   `yaml:"chrome_path"`
}

type CacheConfig struct {
	Type  string      `yaml:"type"`
	Size  int         `yaml:"size"`
	TTL   Duration    `yaml:"ttl"`
	Redis RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type ServerConfig struct {
	Listen         string   `yaml:"listen"`
	RequestTimeout Duration `yaml:"request_timeout"`
	MaxBodyBytes   int      `yaml:"max_body_bytes"`
}

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// Default returns the configuration used when no file is given: A4 pages,
// the built-in rasterizer at 2x and an in-memory cache.
func Default() *Config {
	return &Config{
		Page: PageConfig{WidthMM: 210, HeightMM: 297, Language: "en-US"},
		Render: RenderConfig{
			Backend:     BackendBuiltin,
			Scale:       2,
			SettleDelay: Duration(100 * time.Millisecond),
			MaxHeightPx: 32000,
		},
		Cache: CacheConfig{
			Type: CacheMemory,
			Size: 128,
			TTL:  Duration(time.Hour),
		},
		Log: observability.LogConfig{
			Level:   observability.LogLevelInfo,
			Console: observability.ConsoleOutput{Enabled: true, Format: observability.LogFormatConsole},
		},
		Server: ServerConfig{
			Listen:         ":8080",
			RequestTimeout: Duration(30 * time.Second),
			MaxBodyBytes:   1 << 20,
		},
		Metrics: MetricsConfig{Enabled: true, Namespace: "texkit"},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Page.WidthMM <= 0 || c.Page.HeightMM <= 0 {
		return fmt.Errorf("page.width_mm and page.height_mm must be positive")
	}

	switch c.Render.Backend {
	case BackendBuiltin, BackendChrome:
	default:
		return fmt.Errorf("render.backend must be %q or %q, got %q", BackendBuiltin, BackendChrome, c.Render.Backend)
	}
	if c.Render.Scale <= 0 {
		return fmt.Errorf("render.scale must be positive")
	}
	if c.Render.SettleDelay < 0 {
		return fmt.Errorf("render.settle_delay must not be negative")
	}
	if c.Render.MaxHeightPx < 0 {
		return fmt.Errorf("render.max_height_px must not be negative")
	}

	switch c.Cache.Type {
	case CacheNone:
	case CacheMemory:
		if c.Cache.Size <= 0 {
			return fmt.Errorf("cache.size must be positive for memory cache")
		}
	case CacheRedis:
		if c.Cache.Redis.Addr == "" {
			return fmt.Errorf("cache.redis.addr is required for redis cache")
		}
	default:
		return fmt.Errorf("cache.type must be one of none, memory, redis, got %q", c.Cache.Type)
	}

	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen is required")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive")
	}
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return fmt.Errorf("metrics.namespace is required when metrics are enabled")
	}
	return nil
}

// PagePoints returns the page size in PDF points.
func (p PageConfig) PagePoints() (width, height float64) {
	const mmToPt = 72 / 25.4
	return p.WidthMM * mmToPt, p.HeightMM * mmToPt
}
