package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Driver != DriverPostgres {
		t.Fatalf("driver: want=%q got=%q", DriverPostgres, cfg.Database.Driver)
	}
	if cfg.Stats.NullPolicy != NullPolicyExclude {
		t.Fatalf("null policy: want=%q got=%q", NullPolicyExclude, cfg.Stats.NullPolicy)
	}
	if cfg.Stats.TopN != 5 {
		t.Fatalf("top n: want=5 got=%d", cfg.Stats.TopN)
	}
	if cfg.Resolution.MaxAttempts != 3 {
		t.Fatalf("max attempts: want=3 got=%d", cfg.Resolution.MaxAttempts)
	}
}

func TestLoadFileThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "atlas.yaml")
	body := []byte(`
server:
  addr: ":9090"
database:
  driver: sqlite
  sqlitePath: /tmp/atlas.db
stats:
  nullPolicy: last
resolution:
  cacheTTL: 30s
`)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ATLAS_SERVER_ADDR", ":7070")
	t.Setenv("ATLAS_STATS_TOP_N", "3")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Fatalf("addr: want=:7070 got=%q", cfg.Server.Addr)
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Fatalf("driver: want=%q got=%q", DriverSQLite, cfg.Database.Driver)
	}
	if cfg.Database.SQLitePath != "/tmp/atlas.db" {
		t.Fatalf("sqlite path: got=%q", cfg.Database.SQLitePath)
	}
	if cfg.Stats.NullPolicy != NullPolicyLast {
		t.Fatalf("null policy: want=%q got=%q", NullPolicyLast, cfg.Stats.NullPolicy)
	}
	if cfg.Stats.TopN != 3 {
		t.Fatalf("top n: want=3 got=%d", cfg.Stats.TopN)
	}
	if cfg.Resolution.CacheTTL != 30*time.Second {
		t.Fatalf("cache ttl: want=30s got=%s", cfg.Resolution.CacheTTL)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv("ATLAS_DATABASE_DRIVER", "mysql")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestValidateTriggerRequiresPostgres(t *testing.T) {
	cfg := Default()
	cfg.Database.Driver = DriverSQLite
	cfg.Rollup.InstallDBTrigger = true
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected trigger validation error on sqlite")
	}
}

func TestPostgresDSN(t *testing.T) {
	d := DatabaseConfig{User: "u", Password: "p", Host: "h", Port: 5433, Name: "n"}
	want := "postgres://u:p@h:5433/n?sslmode=disable"
	if got := d.PostgresDSN(); got != want {
		t.Fatalf("dsn: want=%q got=%q", want, got)
	}
	d.DSN = "postgres://explicit"
	if got := d.PostgresDSN(); got != "postgres://explicit" {
		t.Fatalf("explicit dsn: got=%q", got)
	}
}
