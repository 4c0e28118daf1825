package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const validYAML = `
server:
  host: "0.0.0.0"
  port: 8080
database:
  host: "localhost"
  port: 5432
  name: "gymweek"
  user: "gymweek"
  password: "secret"
  sslmode: "disable"
auth:
  api_key: "test-key-123"
source:
  feed_url: "https://blog.example.com/api/posts"
  reader_url: "https://reader.example.com"
  title_filter: "trainingsschema"
llm:
  base_url: "https://llm.example.com/v1"
  api_key: "llm-key"
  model: "extract-1"
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestLoadValid verifies that a well-formed YAML config loads with all
// fields populated and defaults applied.
func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "gymweek" {
		t.Errorf("database.name = %q, want %q", cfg.Database.Name, "gymweek")
	}
	if cfg.Auth.APIKey != "test-key-123" {
		t.Errorf("auth.api_key = %q, want %q", cfg.Auth.APIKey, "test-key-123")
	}
	if cfg.Source.TitleFilter != "trainingsschema" {
		t.Errorf("source.title_filter = %q, want %q", cfg.Source.TitleFilter, "trainingsschema")
	}
	if cfg.Source.MaxDocuments != 2 {
		t.Errorf("source.max_documents default = %d, want 2", cfg.Source.MaxDocuments)
	}
	if cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("cache.ttl default = %v, want 5m", cfg.Cache.TTL)
	}
	if cfg.LLM.Model != "extract-1" {
		t.Errorf("llm.model = %q, want %q", cfg.LLM.Model, "extract-1")
	}
}

// TestEnvOverride verifies that GYMWEEK_ env vars take precedence over YAML
// values.
func TestEnvOverride(t *testing.T) {
	t.Setenv("GYMWEEK_DB_PASSWORD", "from-env")
	t.Setenv("GYMWEEK_SOURCE_MAX_DOCUMENTS", "4")

	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Password != "from-env" {
		t.Errorf("database.password = %q, want %q", cfg.Database.Password, "from-env")
	}
	if cfg.Source.MaxDocuments != 4 {
		t.Errorf("source.max_documents = %d, want 4", cfg.Source.MaxDocuments)
	}
}

// TestLoadMissingRequired verifies validation failures for missing fields.
func TestLoadMissingRequired(t *testing.T) {
	const missingAPIKey = `
server:
  port: 8080
database:
  host: "localhost"
  port: 5432
  name: "gymweek"
  user: "gymweek"
source:
  feed_url: "https://blog.example.com/api/posts"
llm:
  base_url: "https://llm.example.com/v1"
  model: "extract-1"
`
	if _, err := Load(writeTemp(t, missingAPIKey)); err == nil {
		t.Fatal("expected validation error for missing auth.api_key")
	}
}

// TestDSN verifies the PostgreSQL connection string format.
func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, Name: "gymweek", User: "u", Password: "p"}
	want := "postgres://u:p@db:5432/gymweek?sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
