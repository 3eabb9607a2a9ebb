// Package config loads the launchmap configuration file.
//
// Configuration lives in a TOML file, by default launchmap.toml in the
// working directory. Every field has a sensible default; an absent file is
// not an error.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/launchmap/launchmap/pkg/errors"
)

// DefaultPath is the config file consulted when none is specified.
const DefaultPath = "launchmap.toml"

// Config is the root configuration.
type Config struct {
	// Project is the default project ID for CLI commands.
	Project string `toml:"project"`

	// RootLabel is the display name on the hub node.
	RootLabel string `toml:"root_label"`

	Server ServerConfig `toml:"server"`
	Store  StoreConfig  `toml:"store"`
	Cache  CacheConfig  `toml:"cache"`
	Layout LayoutConfig `toml:"layout"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// Listen is the address the API binds to.
	Listen string `toml:"listen"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout duration `toml:"shutdown_timeout"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	// Backend is "memory" or "mongo".
	Backend string `toml:"backend"`

	// MongoURI and MongoDatabase configure the mongo backend.
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// CacheConfig selects and configures the layout cache.
type CacheConfig struct {
	// Backend is "null", "file", or "redis".
	Backend string `toml:"backend"`

	// Dir is the file backend's directory.
	Dir string `toml:"dir"`

	// RedisAddr, RedisPassword, and RedisDB configure the redis backend.
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// LayoutConfig overrides layout spacing parameters. Zero values use the
// layout engine defaults.
type LayoutConfig struct {
	// Direction is "TB" or "LR".
	Direction      string  `toml:"direction"`
	RankSeparation float64 `toml:"rank_separation"`
	NodeSeparation float64 `toml:"node_separation"`
	NodeWidth      float64 `toml:"node_width"`
	NodeHeight     float64 `toml:"node_height"`
}

// duration wraps time.Duration for TOML string parsing ("30s", "2m").
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		RootLabel: "Project",
		Server: ServerConfig{
			Listen:          ":8080",
			ShutdownTimeout: duration{10 * time.Second},
		},
		Store: StoreConfig{
			Backend:       "memory",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "launchmap",
		},
		Cache: CacheConfig{
			Backend:   "null",
			Dir:       ".launchmap-cache",
			RedisAddr: "localhost:6379",
		},
	}
}

// Load reads the config file at path, merged over defaults. A missing file
// at the default path yields the defaults; a missing file at an explicit
// path is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if explicit {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "config file %s not found", path)
		}
		return cfg, nil
	}
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInternal, err, "read config %s", path)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Store.Backend {
	case "memory", "mongo":
	default:
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid store backend %q (must be memory or mongo)", c.Store.Backend)
	}

	switch c.Cache.Backend {
	case "null", "file", "redis":
	default:
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid cache backend %q (must be null, file, or redis)", c.Cache.Backend)
	}

	switch c.Layout.Direction {
	case "", "TB", "LR":
	default:
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid layout direction %q (must be TB or LR)", c.Layout.Direction)
	}
	return nil
}
