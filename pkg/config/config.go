package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/floe-dev/floectl/pkg/suggest"
)

//go:generate go run ../../cmd/schema/main.go -o schema.json

// Config holds the application configuration
type Config struct {
	API struct {
		BaseURL  string        `yaml:"base_url" json:"base_url" jsonschema:"required,description=Floe service base URL"`
		Timeout  time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP request timeout"`
		PageSize int           `yaml:"page_size" json:"page_size" jsonschema:"default=5,minimum=1,description=Feed page size"`
	} `yaml:"api" json:"api" jsonschema:"description=Floe API configuration"`

	State struct {
		DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:floectl.db?cache=shared&mode=rwc,description=Local state database connection string"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=10,description=Maximum number of open connections"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=5,description=Maximum number of idle connections"`
		ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
	} `yaml:"state" json:"state" jsonschema:"description=Local state database configuration"`

	Preview struct {
		Listen     string        `yaml:"listen" json:"listen" jsonschema:"default=localhost:8080,description=Preview server listen address"`
		Timeout    time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Preview server timeout"`
		Mode       string        `yaml:"mode" json:"mode" jsonschema:"default=card,enum=card,enum=list,description=Default feed view mode"`
		PageCached int           `yaml:"page_cached" json:"page_cached" jsonschema:"default=10,description=Maximum pages kept for the preview feed"`
	} `yaml:"preview" json:"preview" jsonschema:"description=Local preview server configuration"`

	Watch struct {
		Interval time.Duration `yaml:"interval" json:"interval" jsonschema:"default=1m,description=Feed poll interval"`
		PageSize int           `yaml:"page_size" json:"page_size" jsonschema:"default=20,description=Head page size per poll"`
	} `yaml:"watch" json:"watch" jsonschema:"description=Feed watcher configuration"`

	Suggest suggest.Config `yaml:"suggest" json:"suggest" jsonschema:"description=LLM tag suggestion configuration"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	// validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}

	return &cfg, nil
}

// Default returns a configuration with all defaults applied, for use when no
// config file is present. BaseURL still has to be set by the caller.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

func (c *Config) setDefaults() {
	// set defaults for api
	if c.API.Timeout == 0 {
		c.API.Timeout = 30 * time.Second
	}
	if c.API.PageSize == 0 {
		c.API.PageSize = 5
	}

	// set defaults for state database
	if c.State.DSN == "" {
		c.State.DSN = "file:floectl.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if c.State.MaxOpenConns == 0 {
		c.State.MaxOpenConns = 10
	}
	if c.State.MaxIdleConns == 0 {
		c.State.MaxIdleConns = 5
	}
	if c.State.ConnMaxLifetime == 0 {
		c.State.ConnMaxLifetime = 3600
	}

	// set defaults for preview server
	if c.Preview.Listen == "" {
		c.Preview.Listen = "localhost:8080"
	}
	if c.Preview.Timeout == 0 {
		c.Preview.Timeout = 30 * time.Second
	}
	if c.Preview.Mode == "" {
		c.Preview.Mode = "card"
	}
	if c.Preview.PageCached == 0 {
		c.Preview.PageCached = 10
	}

	// set defaults for watcher
	if c.Watch.Interval == 0 {
		c.Watch.Interval = time.Minute
	}
	if c.Watch.PageSize == 0 {
		c.Watch.PageSize = 20
	}

	// set defaults for suggester
	if c.Suggest.Temperature == 0 {
		c.Suggest.Temperature = 0.3
	}
	if c.Suggest.MaxTokens == 0 {
		c.Suggest.MaxTokens = 200
	}
	if c.Suggest.MaxTags == 0 {
		c.Suggest.MaxTags = 5
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	// validate api config
	if cfg.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if cfg.API.PageSize < 1 {
		return fmt.Errorf("api.page_size must be at least 1")
	}
	if cfg.API.Timeout < time.Second {
		return fmt.Errorf("api.timeout must be at least 1 second")
	}

	// validate preview config
	if cfg.Preview.Timeout < time.Second {
		return fmt.Errorf("preview.timeout must be at least 1 second")
	}
	if cfg.Preview.Mode != "card" && cfg.Preview.Mode != "list" {
		return fmt.Errorf("preview.mode must be card or list")
	}

	// validate watcher config
	if cfg.Watch.Interval < time.Second {
		return fmt.Errorf("watch.interval must be at least 1 second")
	}

	// validate suggester config
	if cfg.Suggest.Enabled {
		if cfg.Suggest.Model == "" {
			return fmt.Errorf("suggest.model is required when suggestions are enabled")
		}
		if cfg.Suggest.Temperature < 0 || cfg.Suggest.Temperature > 2 {
			return fmt.Errorf("suggest.temperature must be between 0 and 2")
		}
	}

	return nil
}

// GetAPIConfig returns base URL, request timeout and page size
func (c *Config) GetAPIConfig() (baseURL string, timeout time.Duration, pageSize int) {
	return c.API.BaseURL, c.API.Timeout, c.API.PageSize
}

// GetPreviewConfig returns preview server listen address, timeout and the
// maximum number of feed pages the preview keeps
func (c *Config) GetPreviewConfig() (listen string, timeout time.Duration, pageCached int) {
	return c.Preview.Listen, c.Preview.Timeout, c.Preview.PageCached
}

// GetSuggestConfig returns LLM tag suggestion configuration
func (c *Config) GetSuggestConfig() suggest.Config {
	return c.Suggest
}
