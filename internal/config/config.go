// Package config loads Daleel settings: built-in defaults, overlaid by an
// optional YAML file, overlaid by DALEEL_* environment variables, then
// checked against an embedded CUE schema.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Duration is a time.Duration written as a Go duration string in YAML
// and JSON.
type Duration time.Duration

// D returns d as a time.Duration.
func (d Duration) D() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// UnmarshalYAML parses strings such as "15m" or "24h".
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalJSON writes d as a duration string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Limit is a request budget: at most Max requests per Window.
type Limit struct {
	Max    int      `yaml:"max" json:"max"`
	Window Duration `yaml:"window" json:"window"`
}

type Log struct {
	Level string `yaml:"level" json:"level"`
}

type Server struct {
	Addr            string   `yaml:"addr" json:"addr"`
	FrontendOrigin  string   `yaml:"frontendOrigin" json:"frontendOrigin"`
	ShutdownTimeout Duration `yaml:"shutdownTimeout" json:"shutdownTimeout"`
	// TrustedProxies lists the proxy addresses or CIDRs whose forwarding
	// headers are believed. Empty means the peer address is the client.
	TrustedProxies []string `yaml:"trustedProxies" json:"trustedProxies,omitempty"`
}

type Database struct {
	Path string `yaml:"path" json:"path"`
}

type Session struct {
	TTL        Duration `yaml:"ttl" json:"ttl"`
	CookieName string   `yaml:"cookieName" json:"cookieName"`
}

type CSRF struct {
	TTL Duration `yaml:"ttl" json:"ttl"`
}

type RateLimit struct {
	Public Limit `yaml:"public" json:"public"`
	Admin  Limit `yaml:"admin" json:"admin"`
	Auth   Limit `yaml:"auth" json:"auth"`
}

// Config is the complete server configuration.
type Config struct {
	Env       string    `yaml:"env" json:"env"`
	Log       Log       `yaml:"log" json:"log"`
	Server    Server    `yaml:"server" json:"server"`
	Database  Database  `yaml:"database" json:"database"`
	Session   Session   `yaml:"session" json:"session"`
	CSRF      CSRF      `yaml:"csrf" json:"csrf"`
	RateLimit RateLimit `yaml:"rateLimit" json:"rateLimit"`
}

// Production reports whether the server runs in production mode.
func (c Config) Production() bool {
	return c.Env == "production"
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Env: "development",
		Log: Log{Level: "info"},
		Server: Server{
			Addr:            ":8080",
			FrontendOrigin:  "http://localhost:3000",
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Database: Database{Path: "daleel.db"},
		Session:  Session{TTL: Duration(24 * time.Hour), CookieName: "daleel-session"},
		CSRF:     CSRF{TTL: Duration(time.Hour)},
		RateLimit: RateLimit{
			Public: Limit{Max: 100, Window: Duration(time.Minute)},
			Admin:  Limit{Max: 30, Window: Duration(time.Minute)},
			Auth:   Limit{Max: 5, Window: Duration(15 * time.Minute)},
		},
	}
}

// Load builds the configuration. path may be empty to skip the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overlays DALEEL_* environment variables.
func applyEnv(cfg *Config) error {
	str := map[string]*string{
		"DALEEL_ENV":             &cfg.Env,
		"DALEEL_LOG_LEVEL":       &cfg.Log.Level,
		"DALEEL_ADDR":            &cfg.Server.Addr,
		"DALEEL_FRONTEND_ORIGIN": &cfg.Server.FrontendOrigin,
		"DALEEL_DB_PATH":         &cfg.Database.Path,
	}
	for name, dst := range str {
		if v, ok := os.LookupEnv(name); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv("DALEEL_TRUSTED_PROXIES"); ok {
		cfg.Server.TrustedProxies = nil
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.Server.TrustedProxies = append(cfg.Server.TrustedProxies, p)
			}
		}
	}

	durations := map[string]*Duration{
		"DALEEL_SESSION_TTL": &cfg.Session.TTL,
		"DALEEL_CSRF_TTL":    &cfg.CSRF.TTL,
	}
	for name, dst := range durations {
		v, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = Duration(d)
	}

	ints := map[string]*int{
		"DALEEL_RATE_PUBLIC_MAX": &cfg.RateLimit.Public.Max,
		"DALEEL_RATE_ADMIN_MAX":  &cfg.RateLimit.Admin.Max,
		"DALEEL_RATE_AUTH_MAX":   &cfg.RateLimit.Auth.Max,
	}
	for name, dst := range ints {
		v, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = n
	}
	return nil
}

// Validate checks c against the embedded CUE schema.
func (c Config) Validate() error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	value := ctx.CompileBytes(data, cue.Filename("config.json"))
	if err := value.Err(); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
