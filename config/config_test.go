package config_test

import (
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/mbolis/quick-forms/config"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	return fs
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Chdir(t.TempDir())

		cfg, err := config.Load(newFlags(t))
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}
		if cfg.Addr != "0.0.0.0:80" {
			t.Errorf("unexpected addr %q", cfg.Addr)
		}
		if cfg.DBUrl != "qforms.sqlite" {
			t.Errorf("unexpected db url %q", cfg.DBUrl)
		}
		if cfg.TokenTTL != 120*time.Second {
			t.Errorf("unexpected token ttl %v", cfg.TokenTTL)
		}
		if cfg.BaseURL != "http://localhost:80" {
			t.Errorf("unexpected base url %q", cfg.BaseURL)
		}
		if err := cfg.Validate(); err == nil {
			t.Error("expected missing token secret to fail validation")
		}
	})

	t.Run("flags override environment", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("QFORMS_PORT", "9000")
		t.Setenv("QFORMS_TOKEN_SECRET", "from-env")
		t.Setenv("QFORMS_DB_URL", "env.sqlite")

		cfg, err := config.Load(newFlags(t, "--port", "8080", "--host", "127.0.0.1", "--base-url", "https://forms.example.com/"))
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}
		if cfg.Addr != "127.0.0.1:8080" {
			t.Errorf("unexpected addr %q", cfg.Addr)
		}
		if cfg.TokenSecret != "from-env" {
			t.Errorf("unexpected token secret %q", cfg.TokenSecret)
		}
		if cfg.DBUrl != "env.sqlite" {
			t.Errorf("unexpected db url %q", cfg.DBUrl)
		}
		if cfg.BaseURL != "https://forms.example.com" {
			t.Errorf("unexpected base url %q", cfg.BaseURL)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("unexpected validation error: %v", err)
		}
	})
}
