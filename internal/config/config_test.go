package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/launchmap/launchmap/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "launchmap.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := writeConfig(t, `
project = "proj-1"
root_label = "Acme"

[server]
listen = ":9090"
shutdown_timeout = "30s"

[store]
backend = "mongo"
mongo_uri = "mongodb://db:27017"

[cache]
backend = "redis"
redis_addr = "cache:6379"

[layout]
direction = "LR"
rank_separation = 120
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Project != "proj-1" || cfg.RootLabel != "Acme" {
		t.Errorf("top-level: %+v", cfg)
	}
	if cfg.Server.Listen != ":9090" || cfg.Server.ShutdownTimeout.Duration != 30*time.Second {
		t.Errorf("server: %+v", cfg.Server)
	}
	if cfg.Store.Backend != "mongo" || cfg.Store.MongoURI != "mongodb://db:27017" {
		t.Errorf("store: %+v", cfg.Store)
	}
	// Unset field keeps the default.
	if cfg.Store.MongoDatabase != "launchmap" {
		t.Errorf("default not preserved: %q", cfg.Store.MongoDatabase)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "cache:6379" {
		t.Errorf("cache: %+v", cfg.Cache)
	}
	if cfg.Layout.Direction != "LR" || cfg.Layout.RankSeparation != 120 {
		t.Errorf("layout: %+v", cfg.Layout)
	}
}

func TestLoadMissingDefaultPathIsFine(t *testing.T) {
	dir := t.TempDir()
	orig, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(orig) })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Listen != ":8080" || cfg.Store.Backend != "memory" {
		t.Errorf("defaults: %+v", cfg)
	}
}

func TestLoadMissingExplicitPathFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	for name, content := range map[string]string{
		"store backend": "[store]\nbackend = \"postgres\"\n",
		"cache backend": "[cache]\nbackend = \"memcached\"\n",
		"direction":     "[layout]\ndirection = \"BT\"\n",
	} {
		path := writeConfig(t, content)
		if _, err := Load(path); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("%s: expected INVALID_INPUT, got %v", name, err)
		}
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := writeConfig(t, "project = [unclosed")
	if _, err := Load(path); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Fatalf("expected INVALID_FORMAT, got %v", err)
	}
}
