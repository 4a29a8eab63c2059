// Package config loads the optional config.toml. Values here are the layer
// below flags and environment variables: commands start from this file and
// override per-invocation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Duration parses TOML duration strings like "45s" or "2m".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Server holds the serve command's settings.
type Server struct {
	// Addr is the listen address.
	Addr string `toml:"addr"`

	// PollInterval is how often the background poller re-derives weather.
	PollInterval Duration `toml:"poll_interval"`

	// CacheTTL bounds how long a derived parameter set is served before
	// the source is asked again.
	CacheTTL Duration `toml:"cache_ttl"`
}

// Scene holds scene construction settings.
type Scene struct {
	// Theme selects the visual theme ("light" or "dark").
	Theme string `toml:"theme"`

	// SubscriberCount sizes the gallery's seat pool.
	SubscriberCount int `toml:"subscriber_count"`
}

// Assets holds the download cache settings.
type Assets struct {
	// CacheDir overrides the default user cache location.
	CacheDir string `toml:"cache_dir"`

	// MaxAge expires cached downloads. Zero keeps them forever.
	MaxAge Duration `toml:"max_age"`
}

// Providers holds the weather provider enable/disable lists. Environment
// variables and flags override these.
type Providers struct {
	Enabled  []string `toml:"enabled"`
	Disabled []string `toml:"disabled"`
}

// Config is the root of config.toml.
type Config struct {
	Server    Server    `toml:"server"`
	Scene     Scene     `toml:"scene"`
	Assets    Assets    `toml:"assets"`
	Providers Providers `toml:"providers"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: Server{
			Addr:         ":8080",
			PollInterval: Duration(time.Minute),
			CacheTTL:     Duration(time.Minute),
		},
		Scene: Scene{
			Theme:           "dark",
			SubscriberCount: 30,
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "atrium", "config.toml"), nil
}

// Load reads the config file at path over the defaults. An empty path loads
// the default location, where a missing file is not an error; an explicit
// path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		defaultPath, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = defaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}
