package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recall.yaml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_EmptyPathGivesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != Default() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
	if cfg.Search.SnippetLength != 150 || cfg.Search.MessageLimit != 50 ||
		cfg.Search.ConversationLimit != 20 || cfg.Search.SuggestionLimit != 10 {
		t.Errorf("unexpected search defaults: %+v", cfg.Search)
	}
	if cfg.Import.MaxRetries != 5 || cfg.Import.RetryDelay != 10*time.Millisecond {
		t.Errorf("unexpected import defaults: %+v", cfg.Import)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected info level, got %q", cfg.Logging.Level)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /var/lib/recall
search:
  snippet_length: 80
  message_limit: 5
import:
  pool_size: 3
  retry_delay: 250ms
logging:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Path != "/var/lib/recall" {
		t.Errorf("database.path: got %q", cfg.Database.Path)
	}
	if cfg.Search.SnippetLength != 80 || cfg.Search.MessageLimit != 5 {
		t.Errorf("search: got %+v", cfg.Search)
	}
	// Unset values still get defaults
	if cfg.Search.ConversationLimit != 20 {
		t.Errorf("search.conversation_limit: got %d", cfg.Search.ConversationLimit)
	}
	if cfg.Import.PoolSize != 3 || cfg.Import.RetryDelay != 250*time.Millisecond {
		t.Errorf("import: got %+v", cfg.Import)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging.level: got %q", cfg.Logging.Level)
	}
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("RECALL_TEST_DB", "/tmp/from-env")
	path := writeConfig(t, `
database:
  path: ${RECALL_TEST_DB}
logging:
  level: ${RECALL_TEST_UNSET_LEVEL:-warn}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Path != "/tmp/from-env" {
		t.Errorf("database.path: got %q", cfg.Database.Path)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("logging.level: got %q", cfg.Logging.Level)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Load(writeConfig(t, "search: [")); err == nil {
		t.Error("expected error for malformed yaml")
	}
	if _, err := Load(writeConfig(t, "logging:\n  level: loud\n")); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestValidate_NegativePoolSize(t *testing.T) {
	cfg := Default()
	cfg.Import.PoolSize = -2

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for negative pool size")
	}
	expected := "import.pool_size must not be negative, got -2"
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":  slog.LevelDebug,
		"INFO":   slog.LevelInfo,
		" warn ": slog.LevelWarn,
		"Error":  slog.LevelError,
	}
	for name, expected := range tests {
		level, err := ParseLevel(name)
		if err != nil {
			t.Errorf("ParseLevel(%q): unexpected error %v", name, err)
		}
		if level != expected {
			t.Errorf("ParseLevel(%q): got %v, want %v", name, level, expected)
		}
	}

	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}
