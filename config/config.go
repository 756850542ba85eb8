/*
Package config implements TOML config file handling for the string-map build
tooling.

Normally it will be used by simply passing a config file name to the Load
function to obtain a Config struct.
*/
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DbDriverSqlite3    = "sqlite3"
	DbDriverPostgresql = "postgres"
)

// Config represents the parsed configuration for the string tooling.
type Config struct {
	Sim    SimConfig    `toml:"sim"`
	Paths  PathsConfig  `toml:"paths"`
	DB     DbConfig     `toml:"database"`
	Server ServerConfig `toml:"server"`
	Fetch  FetchConfig  `toml:"fetch"`
	Watch  WatchConfig  `toml:"watch"`
}

// SimConfig describes the simulation repository being built.
type SimConfig struct {
	// Repository name, lowercase-with-dashes
	Repo string `toml:"repo"`
	// Locales to build; must include the fallback locale 'en'
	Locales []string `toml:"locales"`
	// Glob patterns (relative to the repo directory) selecting the module
	// files to scan for string accesses
	ModulePatterns []string `toml:"module_patterns"`
	// Optional JSON file merged over the built-in locale table
	LocaleData string `toml:"locale_data"`
}

// PathsConfig locates the sibling checkouts and output directories.
type PathsConfig struct {
	// Directory containing the sibling repository checkouts
	ReposRoot string `toml:"repos_root"`
	// Sibling translations directory
	BabelDir string `toml:"babel_dir"`
	// Where build outputs are written
	OutDir string `toml:"out_dir"`
}

// DbConfig contains database connection configuration for build reports.
type DbConfig struct {
	// Must be 'sqlite3' or 'postgres'
	Driver string `toml:"driver"`
	// When driver is sqlite3, this is the path to the database file
	File     string `toml:"file"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Name     string `toml:"name"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	// Port that the server should run on.
	Port int `toml:"port"`
}

// FetchConfig configures the unbuilt-mode string fetcher.
type FetchConfig struct {
	// Base URL of a running strings server
	BaseURL string `toml:"base_url"`
	// Fetch every locale in the locale table instead of the configured build
	// locales. Per-file warnings are suppressed in this mode.
	AllLocales bool `toml:"all_locales"`
}

// WatchConfig configures the translation-directory watcher.
type WatchConfig struct {
	// Debounce window in milliseconds before regenerating
	DebounceMs int `toml:"debounce_ms"`
	// Glob patterns of paths to ignore
	IgnorePatterns []string `toml:"ignore_patterns"`
}

// valid checks if the Config is valid in its current state.
func (c *Config) valid() error {
	if len(c.Sim.Repo) == 0 {
		return errors.New("config: missing sim.repo value")
	}
	if len(c.Sim.Locales) == 0 {
		return errors.New("config: sim.locales must name at least one locale")
	}
	if c.DB.Driver != DbDriverSqlite3 && c.DB.Driver != DbDriverPostgresql {
		drivers := []string{DbDriverPostgresql, DbDriverSqlite3}
		return errors.New(fmt.Sprintf("config: invalid database.driver value. (Must be one of: '%v')", strings.Join(drivers, ", ")))
	}
	if c.DB.Driver == DbDriverSqlite3 && len(c.DB.File) == 0 {
		return errors.New("config: missing database.file value")
	}
	if c.DB.Driver == DbDriverPostgresql {
		if len(c.DB.Host) == 0 {
			return errors.New("config: missing database.host value")
		}
		if len(c.DB.Name) == 0 {
			return errors.New("config: missing database.name value")
		}
		if len(c.DB.User) == 0 {
			return errors.New("config: missing database.user value")
		}
		if c.DB.Port < 0 {
			return errors.New("config: invalid database.port value")
		}
	}
	if c.Server.Port < 0 {
		return errors.New("config: server.port is invalid")
	}
	if len(c.Paths.ReposRoot) == 0 {
		return errors.New("config: missing paths.repos_root value")
	}
	if len(c.Paths.BabelDir) == 0 {
		return errors.New("config: missing paths.babel_dir value")
	}
	if c.Watch.DebounceMs < 0 {
		return errors.New("config: watch.debounce_ms is invalid")
	}
	return nil
}

// Gets a connection string for this config.
func (d *DbConfig) ConnectionString() string {
	cStr := ""
	switch d.Driver {
	case DbDriverPostgresql:
		cStr = fmt.Sprintf("postgres://%v:%v@%v/%v?sslmode=disable", d.User, d.Password, d.Host, d.Name)
	case DbDriverSqlite3:
		cStr = d.File
	}
	return cStr
}

// Creates a new Config with some default values.
func new() Config {
	c := Config{
		Sim: SimConfig{
			Locales:        []string{"en"},
			ModulePatterns: []string{"js/**/*.js", "js/**/*.ts"},
		},
		Paths: PathsConfig{
			ReposRoot: filepath.FromSlash(".."),
			BabelDir:  filepath.FromSlash("../babel"),
			OutDir:    filepath.FromSlash("./build"),
		},
		DB: DbConfig{
			Driver: "sqlite3",
			File:   filepath.FromSlash("./simstrings.db"),
			Port:   5432, // Postgres default port
		},
		Server: ServerConfig{
			Port: 8281,
		},
		Fetch: FetchConfig{
			BaseURL: "http://localhost:8281",
		},
		Watch: WatchConfig{
			DebounceMs: 300,
			IgnorePatterns: []string{
				"**/_generated_development_strings/**",
				"**/.git/**",
			},
		},
	}
	return c
}

// Loads config from a TOML file and checks its validity.
func Load(file string) (Config, error) {
	conf := new()
	_, err := toml.DecodeFile(file, &conf)
	if err != nil {
		return conf, err
	}

	if err = conf.valid(); err != nil {
		return conf, err
	}

	return conf, nil
}
