package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testConfig = `server:
  port: "9090"
  mode: release
jwt:
  secret: 0123456789abcdef0123456789abcdef
  expire_hours: 2
storage:
  type: minio
guided:
  progress_cache_ttl: 30s
`

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(testConfig), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PREP_GUIDED_REQUIRE_CORRECT_ANSWER", "true")
	t.Setenv("DATABASE_DRIVER", "sqlite")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Database.Driver != "sqlite" {
		t.Errorf("unexpected server/database config %+v %+v", cfg.Server, cfg.Database)
	}
	if cfg.JWT.ExpireTime != 2*time.Hour {
		t.Errorf("expected 2h token lifetime, got %v", cfg.JWT.ExpireTime)
	}
	if !cfg.Guided.RequireCorrectAnswer || cfg.Guided.ProgressCacheTTL != 30*time.Second {
		t.Errorf("unexpected guided config %+v", cfg.Guided)
	}
	if cfg.RateLimit.MaxRequests != 600 {
		t.Errorf("expected default rate limit, got %d", cfg.RateLimit.MaxRequests)
	}
}
