package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port == "" {
		t.Fatal("default port missing")
	}
	if cfg.Gemini.Model == "" || cfg.Gemini.AppraisalModel == "" {
		t.Fatalf("gemini models missing: %+v", cfg.Gemini)
	}
	if cfg.Worker.ReminderScanMinutes <= 0 || cfg.Worker.ReminderWindowHours <= 0 {
		t.Fatalf("worker defaults: %+v", cfg.Worker)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9191")
	t.Setenv("DB_MAX_CONNS", "42")
	t.Setenv("REMINDER_WINDOW_HOURS", "12")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "9191" {
		t.Fatalf("port = %s", cfg.Server.Port)
	}
	if cfg.Database.MaxConns != 42 {
		t.Fatalf("max conns = %d", cfg.Database.MaxConns)
	}
	if cfg.Worker.ReminderWindowHours != 12 {
		t.Fatalf("reminder window = %d", cfg.Worker.ReminderWindowHours)
	}
}

func TestDatabaseDSN(t *testing.T) {
	t.Parallel()

	c := DatabaseConfig{Host: "db", Port: "5432", User: "ops", Password: "secret", DBName: "opsboard", SSLMode: "disable"}
	dsn := c.DSN()
	for _, part := range []string{"@db:5432/opsboard", "sslmode=disable", "ops:secret"} {
		if !strings.Contains(dsn, part) {
			t.Fatalf("dsn %q missing %q", dsn, part)
		}
	}

	c.URL = "postgres://u:p@h/db"
	if c.DSN() != c.URL {
		t.Fatalf("explicit URL not used: %q", c.DSN())
	}
}
