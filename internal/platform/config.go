package platform

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CLIPPER_"

// FlagsConfig holds all boolean or string flags for the app.
type FlagsConfig struct {
	// Headless disables the HTTP server when true.
	Headless bool `yaml:"headless"`
}

// TerminalConfig tunes the simulated terminal.
type TerminalConfig struct {
	BaseURL string `yaml:"base_url"`
	// Seed makes every report reproducible. Zero seeds from the clock.
	Seed        uint64        `yaml:"seed"`
	Cores       int           `yaml:"cores"`
	MemoryGB    int           `yaml:"memory_gb"`
	MaxSessions int           `yaml:"max_sessions"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	// SweepSchedule is a cron spec for the idle session sweep.
	SweepSchedule string `yaml:"sweep_schedule"`
}

// LogConfig controls the global slog handler.
type LogConfig struct {
	Level     string `yaml:"level"`
	AddSource bool   `yaml:"add_source"`
}

// AppConfig contains the configuration for the app.
type AppConfig struct {
	Flags      *FlagsConfig          `yaml:"flags"`
	NatsCfg    *EmbeddedServerConfig `yaml:"nats"`
	HTTPSrvCfg *HTTPServerConfig     `yaml:"http"`
	Terminal   *TerminalConfig       `yaml:"terminal"`
	Log        *LogConfig            `yaml:"log"`
}

// DefaultAppConfig returns the compiled-in configuration.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Flags:      defaultFlagsCfg(),
		NatsCfg:    defaultNatsCfg(),
		HTTPSrvCfg: defaultHTTPServerCfg(),
		Terminal:   defaultTerminalCfg(),
		Log:        &LogConfig{Level: "info"},
	}
}

// LoadAppConfig layers configuration: compiled defaults, then the YAML file at
// path (optional), then envFile (optional, never overrides the real
// environment), then CLIPPER_* environment variables.
func LoadAppConfig(path, envFile string) (*AppConfig, error) {
	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}
	return Parse(data, os.LookupEnv)
}

// Parse decodes YAML data over the defaults and applies environment overrides
// from lookup.
func Parse(data []byte, lookup func(string) (string, bool)) (*AppConfig, error) {
	cfg := DefaultAppConfig()
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse: %w", err)
		}
	}
	if lookup != nil {
		if err := cfg.applyEnv(lookup); err != nil {
			return nil, err
		}
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) applyEnv(lookup func(string) (string, bool)) error {
	var errs []string
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(EnvPrefix + key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s%s: %v", EnvPrefix, key, err))
				return
			}
			*dst = b
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(EnvPrefix + key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s%s: %v", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(EnvPrefix + key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s%s: %v", EnvPrefix, key, err))
				return
			}
			*dst = d
		}
	}

	c.ensureSections()
	boolean("HEADLESS", &c.Flags.Headless)
	integer("HTTP_PORT", &c.HTTPSrvCfg.Port)
	boolean("TLS", &c.HTTPSrvCfg.EnableTLS)
	str("TLS_CERT", &c.HTTPSrvCfg.CertFile)
	str("TLS_KEY", &c.HTTPSrvCfg.KeyFile)
	str("COOKIE_SECRET", &c.HTTPSrvCfg.CookieSecret)
	boolean("NATS_IN_PROCESS", &c.NatsCfg.InProcess)
	str("NATS_STORE_DIR", &c.NatsCfg.StoreDir)
	str("BASE_URL", &c.Terminal.BaseURL)
	integer("MAX_SESSIONS", &c.Terminal.MaxSessions)
	duration("IDLE_TIMEOUT", &c.Terminal.IdleTimeout)
	str("SWEEP_SCHEDULE", &c.Terminal.SweepSchedule)
	str("LOG_LEVEL", &c.Log.Level)
	if v, ok := lookup(EnvPrefix + "SEED"); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%sSEED: %v", EnvPrefix, err))
		} else {
			c.Terminal.Seed = n
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: environment: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ensureSections replaces sections a YAML file nulled out.
func (c *AppConfig) ensureSections() {
	d := DefaultAppConfig()
	if c.Flags == nil {
		c.Flags = d.Flags
	}
	if c.NatsCfg == nil {
		c.NatsCfg = d.NatsCfg
	}
	if c.HTTPSrvCfg == nil {
		c.HTTPSrvCfg = d.HTTPSrvCfg
	}
	if c.Terminal == nil {
		c.Terminal = d.Terminal
	}
	if c.Log == nil {
		c.Log = d.Log
	}
}

func (c *AppConfig) applyDefaults() {
	c.ensureSections()
	if c.Terminal.MaxSessions == 0 {
		c.Terminal.MaxSessions = 1000
	}
	if c.Terminal.IdleTimeout == 0 {
		c.Terminal.IdleTimeout = 30 * time.Minute
	}
	if c.Terminal.SweepSchedule == "" {
		c.Terminal.SweepSchedule = "@every 1m"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	c.Log.Level = strings.ToLower(c.Log.Level)
}

func (c *AppConfig) validate() error {
	var errs []string
	if p := c.HTTPSrvCfg.Port; p < 1 || p > 65535 {
		errs = append(errs, fmt.Sprintf("http.port %d out of range", p))
	}
	if c.HTTPSrvCfg.EnableTLS && (c.HTTPSrvCfg.CertFile == "" || c.HTTPSrvCfg.KeyFile == "") {
		errs = append(errs, "http.cert_file and http.key_file are required when TLS is enabled")
	}
	if s := c.HTTPSrvCfg.CookieSecret; s != "" && len(s) < 32 {
		errs = append(errs, "http.cookie_secret must be at least 32 bytes")
	}
	if c.Terminal.MaxSessions < 1 {
		errs = append(errs, "terminal.max_sessions must be positive")
	}
	if c.Terminal.IdleTimeout < 0 {
		errs = append(errs, "terminal.idle_timeout must not be negative")
	}
	if _, err := cron.ParseStandard(c.Terminal.SweepSchedule); err != nil {
		errs = append(errs, fmt.Sprintf("terminal.sweep_schedule: %v", err))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ParseLevel maps a config level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log.level %q is not one of debug, info, warn, error", name)
}

// defaultFlagsCfg returns the default FlagsConfig.
func defaultFlagsCfg() *FlagsConfig {
	return &FlagsConfig{Headless: false}
}

// defaultHTTPServerCfg returns sane defaults for the HTTP server.
func defaultHTTPServerCfg() *HTTPServerConfig {
	return &HTTPServerConfig{
		Port:         8080,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // SSE streams stay open
		IdleTimeout:  2 * time.Minute,
		EnableTLS:    false,
		CertFile:     "./local_certs/localhost+2.pem",
		KeyFile:      "./local_certs/localhost+2-key.pem",
	}
}

// defaultNatsCfg returns the default EmbeddedServerConfig.
func defaultNatsCfg() *EmbeddedServerConfig {
	return &EmbeddedServerConfig{
		InProcess:       true,
		EnableLogging:   true,
		JetStream:       true,
		JetStreamDomain: "",
		StoreDir:        "./store/js",
	}
}

func defaultTerminalCfg() *TerminalConfig {
	return &TerminalConfig{
		Cores:         4,
		MemoryGB:      8,
		MaxSessions:   1000,
		IdleTimeout:   30 * time.Minute,
		SweepSchedule: "@every 1m",
	}
}
