package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_PATH", "")
	t.Setenv("WORKERS", "")

	cfg := Load()
	if cfg.Port != ":8080" {
		t.Fatalf("Port = %q", cfg.Port)
	}
	if cfg.DBPath != "./data/zoomdive.db" {
		t.Fatalf("DBPath = %q", cfg.DBPath)
	}
	if cfg.Workers <= 0 {
		t.Fatalf("Workers = %d", cfg.Workers)
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("PORT", ":9000")
	t.Setenv("DB_PATH", "/tmp/z.db")
	t.Setenv("WORKERS", "3")

	cfg := Load()
	if cfg.Port != ":9000" || cfg.DBPath != "/tmp/z.db" || cfg.Workers != 3 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoad_BadWorkers(t *testing.T) {
	t.Setenv("WORKERS", "zero")
	if cfg := Load(); cfg.Workers <= 0 {
		t.Fatalf("Workers = %d, want CPU default", cfg.Workers)
	}
}
