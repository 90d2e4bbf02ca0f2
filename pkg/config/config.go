// Package config loads the nugraph configuration file.
//
// The file is TOML, read from config.toml in [Dir]. Every key is optional;
// command-line flags override the file and the file overrides [Default]:
//
//	format = "mermaid"
//	direction = "LeftToRight"
//	url = "open"
//	log = "warn"
//	links = true
//	include_version = false
//	ignore = ["System.*"]
//
//	[cache]
//	backend = "file"   # file, redis or none
//	ttl = "30m"
//	redis_url = "redis://localhost:6379/0"
//
//	[registry]
//	timeout = "30s"
//	user_agent = ""
//	attempts = 1
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	nerrors "github.com/matzehuels/nugraph/pkg/errors"
	"github.com/matzehuels/nugraph/pkg/export"
	"github.com/matzehuels/nugraph/pkg/render"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// URL actions.
const (
	URLOpen  = "open"
	URLPrint = "print"
)

// Config is the tool configuration.
type Config struct {
	Format         string   `toml:"format"`
	Direction      string   `toml:"direction"`
	URL            string   `toml:"url"`
	Log            string   `toml:"log"`
	Links          bool     `toml:"links"`
	IncludeVersion bool     `toml:"include_version"`
	Ignore         []string `toml:"ignore"`

	Cache    CacheConfig    `toml:"cache"`
	Registry RegistryConfig `toml:"registry"`
}

// CacheConfig selects where registry metadata is cached.
type CacheConfig struct {
	Backend  string   `toml:"backend"`
	TTL      Duration `toml:"ttl"`
	RedisURL string   `toml:"redis_url"`
}

// RegistryConfig tunes registry HTTP requests.
type RegistryConfig struct {
	Timeout   Duration `toml:"timeout"`
	UserAgent string   `toml:"user_agent"`
	// Attempts is the number of tries for a request failing with a 5xx or a
	// network error. 1 disables retries.
	Attempts int `toml:"attempts"`
}

// Duration is a time.Duration written as "30s" or "10m" in TOML.
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Format:    "mermaid",
		Direction: string(render.LeftToRight),
		URL:       URLOpen,
		Log:       "warn",
		Links:     true,
		Cache: CacheConfig{
			Backend: BackendFile,
			TTL:     Duration{30 * time.Minute},
		},
		Registry: RegistryConfig{
			Timeout:  Duration{30 * time.Second},
			Attempts: 1,
		},
	}
}

// Load reads path on top of the defaults. A missing file is not an error
// unless required is set.
func Load(path string, required bool) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return cfg, nil
		}
		return cfg, nerrors.Wrap(nerrors.ErrCodeInvalidInput, err, "read config")
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, nerrors.Wrap(nerrors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, nerrors.New(nerrors.ErrCodeInvalidInput, "config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return cfg, nerrors.Wrap(nerrors.ErrCodeInvalidInput, err, "config %s", path)
	}
	return cfg, nil
}

// Validate checks the enumerated values.
func (c Config) Validate() error {
	if _, err := export.ParseFormat(c.Format); err != nil {
		return err
	}
	if _, err := render.ParseDirection(c.Direction); err != nil {
		return err
	}
	if _, err := ParseURLActions(c.URL); err != nil {
		return err
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(c.Log)) {
		return fmt.Errorf("invalid log level %q", c.Log)
	}
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return errors.New("cache backend redis requires redis_url")
		}
	default:
		return fmt.Errorf("invalid cache backend %q", c.Cache.Backend)
	}
	if c.Registry.Attempts < 1 {
		return fmt.Errorf("registry attempts must be at least 1, got %d", c.Registry.Attempts)
	}
	return nil
}

// URLActions says what to do with a viewer URL.
type URLActions struct {
	Open  bool
	Print bool
}

// ParseURLActions parses "open", "print", "open,print" or "none".
func ParseURLActions(s string) (URLActions, error) {
	var a URLActions
	for _, part := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case URLOpen:
			a.Open = true
		case URLPrint:
			a.Print = true
		case "none", "":
		default:
			return a, fmt.Errorf("invalid url action %q (use open, print or both)", part)
		}
	}
	return a, nil
}
