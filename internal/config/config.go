// Package config loads the settings of the asyncdao command.
//
// Settings come from, in increasing precedence: asyncdao.yaml, a .env file,
// ASYNCDAO_* environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/syssam/asyncdao/dialect"
)

const (
	// DefaultFile is read when no config file is given.
	DefaultFile = "asyncdao.yaml"
	// EnvFile holds optional environment overrides.
	EnvFile = ".env"
	// EnvPrefix prefixes the environment variables read by ApplyEnv.
	EnvPrefix = "ASYNCDAO_"
)

// Config holds the settings of a generation run.
type Config struct {
	// Schema is the path of a YAML schema file.
	Schema string `yaml:"schema"`

	// DSN of the database to introspect when no schema file is set.
	DSN     string `yaml:"dsn"`
	Dialect string `yaml:"dialect"`
	// DBSchema is the MySQL database or Postgres schema to introspect.
	DBSchema string   `yaml:"db_schema"`
	Tables   []string `yaml:"tables"`
	// Converters maps "table.column" to json_object or json_array.
	Converters map[string]string `yaml:"converters"`

	Package  string   `yaml:"package"`
	Target   string   `yaml:"target"`
	Flavor   string   `yaml:"flavor"`
	JSON     *bool    `yaml:"json"`
	Features []string `yaml:"features"`
	Workers  int      `yaml:"workers"`
}

// Load reads the config file at path. An empty path reads DefaultFile
// if it exists and returns an empty config otherwise.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return LoadBytes(data)
}

// LoadBytes parses YAML config data. ${VAR} references are expanded
// from the environment before parsing.
func LoadBytes(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

// LoadEnv loads the given dotenv files into the process environment.
// Missing files are skipped. Variables already set are kept.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{EnvFile}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides settings with the ASYNCDAO_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	str("SCHEMA", &c.Schema)
	str("DSN", &c.DSN)
	str("DIALECT", &c.Dialect)
	str("DB_SCHEMA", &c.DBSchema)
	str("PACKAGE", &c.Package)
	str("TARGET", &c.Target)
	str("FLAVOR", &c.Flavor)
	if v, ok := lookup(EnvPrefix + "TABLES"); ok && v != "" {
		c.Tables = splitList(v)
	}
	if v, ok := lookup(EnvPrefix + "FEATURES"); ok && v != "" {
		c.Features = splitList(v)
	}
	if v, ok := lookup(EnvPrefix + "JSON"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sJSON: %w", EnvPrefix, err)
		}
		c.JSON = &b
	}
	if v, ok := lookup(EnvPrefix + "WORKERS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sWORKERS: %w", EnvPrefix, err)
		}
		c.Workers = n
	}
	return nil
}

// JSONEnabled reports whether POJO JSON helpers are generated. Defaults to true.
func (c *Config) JSONEnabled() bool {
	return c.JSON == nil || *c.JSON
}

// FlavorName returns the configured flavor, defaulting to classic.
func (c *Config) FlavorName() string {
	if c.Flavor == "" {
		return "classic"
	}
	return c.Flavor
}

// DriverName returns the database/sql driver registered for the dialect.
func (c *Config) DriverName() (string, error) {
	switch dialect.Normalize(c.Dialect) {
	case dialect.MySQL:
		return "mysql", nil
	case dialect.Postgres:
		return "postgres", nil
	case dialect.SQLite:
		return "sqlite", nil
	case "":
		return "", errors.New("dialect is required with a dsn")
	default:
		return "", fmt.Errorf("unsupported dialect %q", c.Dialect)
	}
}

// Validate checks the settings needed to generate code.
func (c *Config) Validate() error {
	var errs []error
	switch {
	case c.Schema == "" && c.DSN == "":
		errs = append(errs, errors.New("one of schema or dsn is required"))
	case c.Schema != "" && c.DSN != "":
		errs = append(errs, errors.New("schema and dsn are mutually exclusive"))
	case c.DSN != "":
		if _, err := c.DriverName(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Package == "" {
		errs = append(errs, errors.New("package is required"))
	}
	if c.Workers < 0 {
		errs = append(errs, errors.New("workers cannot be negative"))
	}
	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
