package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Source   SourceConfig   `yaml:"source"`
	LLM      LLMConfig      `yaml:"llm"`
	Cache    CacheConfig    `yaml:"cache"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// AuthConfig holds the shared secret gating the ingestion trigger.
type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

// SourceConfig describes the blog the weekly schedule is scraped from.
// MaxDocuments bounds how many recent posts are considered per run; the
// publisher's cadence makes 2 the sensible default.
type SourceConfig struct {
	FeedURL      string `yaml:"feed_url"`
	ReaderURL    string `yaml:"reader_url"`
	TitleFilter  string `yaml:"title_filter"`
	MaxDocuments int    `yaml:"max_documents"`
}

// LLMConfig points at an OpenAI-compatible chat-completions endpoint used
// to extract structured schedules from post markdown.
type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

type CacheConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable
// overrides. Env vars use the prefix GYMWEEK_ and underscore-separated paths:
//
//	GYMWEEK_SERVER_HOST, GYMWEEK_SERVER_PORT,
//	GYMWEEK_DB_HOST, GYMWEEK_DB_PORT, GYMWEEK_DB_NAME,
//	GYMWEEK_DB_USER, GYMWEEK_DB_PASSWORD, GYMWEEK_DB_SSLMODE,
//	GYMWEEK_AUTH_API_KEY, GYMWEEK_SOURCE_FEED_URL, GYMWEEK_SOURCE_READER_URL,
//	GYMWEEK_SOURCE_MAX_DOCUMENTS, GYMWEEK_LLM_BASE_URL, GYMWEEK_LLM_API_KEY,
//	GYMWEEK_LLM_MODEL
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GYMWEEK_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("GYMWEEK_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("GYMWEEK_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("GYMWEEK_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("GYMWEEK_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("GYMWEEK_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("GYMWEEK_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("GYMWEEK_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("GYMWEEK_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("GYMWEEK_SOURCE_FEED_URL"); v != "" {
		cfg.Source.FeedURL = v
	}
	if v := os.Getenv("GYMWEEK_SOURCE_READER_URL"); v != "" {
		cfg.Source.ReaderURL = v
	}
	if v := os.Getenv("GYMWEEK_SOURCE_MAX_DOCUMENTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Source.MaxDocuments = n
		}
	}
	if v := os.Getenv("GYMWEEK_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("GYMWEEK_LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("GYMWEEK_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Source.MaxDocuments == 0 {
		cfg.Source.MaxDocuments = 2
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 5 * time.Minute
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Source.FeedURL == "" {
		return fmt.Errorf("source.feed_url is required")
	}
	if c.LLM.BaseURL == "" {
		return fmt.Errorf("llm.base_url is required")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}
	return nil
}
