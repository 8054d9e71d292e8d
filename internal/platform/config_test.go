package platform

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(nil, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.HTTPSrvCfg.Port != 8080 {
		t.Errorf("port = %d", cfg.HTTPSrvCfg.Port)
	}
	if !cfg.NatsCfg.InProcess {
		t.Error("nats should default to in-process")
	}
	if cfg.Terminal.MaxSessions != 1000 || cfg.Terminal.IdleTimeout != 30*time.Minute {
		t.Errorf("terminal defaults = %+v", cfg.Terminal)
	}
	if cfg.Terminal.SweepSchedule != "@every 1m" {
		t.Errorf("sweep = %q", cfg.Terminal.SweepSchedule)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestParseYAMLAndEnv(t *testing.T) {
	data := []byte(`
http:
  port: 9000
terminal:
  base_url: https://clipper.example
  seed: 42
  idle_timeout: 5m
log:
  level: DEBUG
`)
	cfg, err := Parse(data, env(map[string]string{
		"CLIPPER_HTTP_PORT":    "9100",
		"CLIPPER_HEADLESS":     "true",
		"CLIPPER_MAX_SESSIONS": "12",
	}))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.HTTPSrvCfg.Port != 9100 {
		t.Errorf("env should win over yaml, port = %d", cfg.HTTPSrvCfg.Port)
	}
	if !cfg.Flags.Headless {
		t.Error("headless not applied")
	}
	if cfg.Terminal.BaseURL != "https://clipper.example" || cfg.Terminal.Seed != 42 {
		t.Errorf("terminal = %+v", cfg.Terminal)
	}
	if cfg.Terminal.IdleTimeout != 5*time.Minute || cfg.Terminal.MaxSessions != 12 {
		t.Errorf("terminal = %+v", cfg.Terminal)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("level should be lowercased, got %q", cfg.Log.Level)
	}
	// untouched sections keep their defaults
	if cfg.HTTPSrvCfg.ReadTimeout != 15*time.Second {
		t.Errorf("read timeout = %v", cfg.HTTPSrvCfg.ReadTimeout)
	}
}

func TestParseNullSection(t *testing.T) {
	cfg, err := Parse([]byte("http: null\n"), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.HTTPSrvCfg == nil || cfg.HTTPSrvCfg.Port != 8080 {
		t.Errorf("http section not restored: %+v", cfg.HTTPSrvCfg)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
		want string
	}{
		{"bad yaml", "http: [", nil, "parse"},
		{"bad env int", "", map[string]string{"CLIPPER_HTTP_PORT": "eighty"}, "CLIPPER_HTTP_PORT"},
		{"bad env bool", "", map[string]string{"CLIPPER_TLS": "maybe"}, "CLIPPER_TLS"},
		{"bad seed", "", map[string]string{"CLIPPER_SEED": "-1"}, "CLIPPER_SEED"},
		{"port range", "http:\n  port: 70000\n", nil, "http.port"},
		{"tls without cert", "http:\n  enable_tls: true\n  cert_file: \"\"\n", nil, "cert_file"},
		{"short secret", "http:\n  cookie_secret: short\n", nil, "cookie_secret"},
		{"bad schedule", "terminal:\n  sweep_schedule: whenever\n", nil, "sweep_schedule"},
		{"bad level", "log:\n  level: loud\n", nil, "log.level"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml), env(tc.env))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestLoadAppConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clipper.yaml")
	if err := os.WriteFile(path, []byte("terminal:\n  cores: 16\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("CLIPPER_BASE_URL=https://dotenv.example\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("CLIPPER_BASE_URL") })

	cfg, err := LoadAppConfig(path, envFile)
	if err != nil {
		t.Fatalf("LoadAppConfig: %v", err)
	}
	if cfg.Terminal.Cores != 16 {
		t.Errorf("cores = %d", cfg.Terminal.Cores)
	}
	if cfg.Terminal.BaseURL != "https://dotenv.example" {
		t.Errorf("base url = %q", cfg.Terminal.BaseURL)
	}

	if _, err := LoadAppConfig("", filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("missing env file should be ignored: %v", err)
	}
	if _, err := LoadAppConfig(filepath.Join(dir, "missing.yaml"), ""); err == nil {
		t.Error("missing config file should fail")
	}
}

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]slog.Level{
		"debug": slog.LevelDebug, "": slog.LevelInfo, "WARN": slog.LevelWarn, "error": slog.LevelError,
	} {
		got, err := ParseLevel(name)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v", name, got, err)
		}
	}
}
