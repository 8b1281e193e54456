package gen

import (
	"errors"
	"go/token"
	"log/slog"
	"path"
	"runtime"

	"github.com/spf13/afero"

	"github.com/syssam/asyncdao/compiler/load"
)

// DefaultHeader is the comment written at the top of each generated file.
const DefaultHeader = "Code generated by asyncdao, DO NOT EDIT."

// Config holds the configuration of a generation run.
type Config struct {
	// Package is the import path of the generated package,
	// e.g. "github.com/org/project/vertx".
	Package string

	// Target is the directory the package is written to.
	Target string

	// Header is the comment at the top of each generated file.
	Header string

	// Flavor selects the completion style of the generated DAOs.
	Flavor Flavor

	// JSON enables FromJSON, ToJSON and New<Name>FromJSON on POJOs.
	JSON bool

	// JSONNamer returns the key a column uses in JSON documents.
	// Defaults to the column's JSONName, then its name.
	JSONNamer func(*load.Table, *load.Column) string

	// TypeHandlers render columns the generator does not know.
	TypeHandlers []TypeHandler

	// Features enabled for this run.
	Features []Feature

	// Fs receives the generated files.
	Fs afero.Fs

	// Workers bounds the files rendered in parallel.
	Workers int

	Logger *slog.Logger
}

// Option configures code generation.
type Option func(*Config) error

// WithHeader sets the file header comment.
// The header is added at the top of each generated file.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithPackage sets the output package import path.
// For example: "github.com/org/project/vertx".
func WithPackage(pkg string) Option {
	return func(c *Config) error {
		if pkg == "" {
			return NewConfigError("Package", nil, "package cannot be empty")
		}
		c.Package = pkg
		return nil
	}
}

// WithTarget sets the output directory.
// The directory where generated code will be written.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("Target", nil, "target directory cannot be empty")
		}
		c.Target = dir
		return nil
	}
}

// WithFlavor sets the completion style of the generated DAOs.
func WithFlavor(f Flavor) Option {
	return func(c *Config) error {
		if f == nil {
			return NewConfigError("Flavor", nil, "flavor cannot be nil")
		}
		c.Flavor = f
		return nil
	}
}

// WithJSON toggles the JSON helpers on POJOs. Row mappers are always
// generated.
func WithJSON(enabled bool) Option {
	return func(c *Config) error {
		c.JSON = enabled
		return nil
	}
}

// WithJSONNamer overrides the JSON key of columns.
func WithJSONNamer(fn func(*load.Table, *load.Column) string) Option {
	return func(c *Config) error {
		if fn == nil {
			return NewConfigError("JSONNamer", nil, "namer cannot be nil")
		}
		c.JSONNamer = fn
		return nil
	}
}

// WithTypeHandler adds handlers for custom column types. Handlers are
// consulted in order before the built-in types.
func WithTypeHandler(handlers ...TypeHandler) Option {
	return func(c *Config) error {
		for _, h := range handlers {
			if h == nil {
				return NewConfigError("TypeHandler", nil, "handler cannot be nil")
			}
		}
		c.TypeHandlers = append(c.TypeHandlers, handlers...)
		return nil
	}
}

// WithFeatures enables specific features.
// Features control optional code generation capabilities.
func WithFeatures(features ...Feature) Option {
	return func(c *Config) error {
		c.Features = append(c.Features, features...)
		return nil
	}
}

// WithFs sets the filesystem generated files are written to.
func WithFs(fs afero.Fs) Option {
	return func(c *Config) error {
		if fs == nil {
			return NewConfigError("Fs", nil, "filesystem cannot be nil")
		}
		c.Fs = fs
		return nil
	}
}

// WithWorkers sets the number of parallel workers.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n <= 0 {
			return NewConfigError("Workers", n, "workers must be positive")
		}
		c.Workers = n
		return nil
	}
}

// WithLogger sets the logger reporting generator warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with the given options. JSON helpers are
// on, files go to the OS filesystem and default features are enabled.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		Header:  DefaultHeader,
		JSON:    true,
		Fs:      afero.NewOsFs(),
		Workers: runtime.GOMAXPROCS(0),
		Logger:  slog.Default(),
	}
	for _, f := range AllFeatures {
		if f.Default {
			c.Features = append(c.Features, f)
		}
	}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Validate reports configuration errors the run cannot proceed with.
func (c *Config) Validate() error {
	var errs []error
	if c.Package == "" {
		errs = append(errs, NewConfigError("Package", nil, "package cannot be empty"))
	} else if name := path.Base(c.Package); !token.IsIdentifier(name) || token.IsKeyword(name) {
		errs = append(errs, NewConfigError("Package", c.Package, "last path element must be a valid Go package name"))
	}
	if c.Target == "" {
		errs = append(errs, NewConfigError("Target", nil, "target directory cannot be empty"))
	}
	if c.Flavor == nil {
		errs = append(errs, NewConfigError("Flavor", nil, "no flavor set"))
	}
	if c.Fs == nil {
		errs = append(errs, NewConfigError("Fs", nil, "filesystem cannot be nil"))
	}
	return errors.Join(errs...)
}

// PackageName returns the name of the generated package.
func (c *Config) PackageName() string { return path.Base(c.Package) }

// FeatureEnabled reports if the given feature name is enabled.
func (c *Config) FeatureEnabled(name string) bool {
	for _, f := range c.Features {
		if f.Name == name {
			return true
		}
	}
	return false
}

// cleanupFeatures removes the output of disabled features.
func (c *Config) cleanupFeatures() error {
	for _, f := range AllFeatures {
		if f.cleanup == nil || c.FeatureEnabled(f.Name) {
			continue
		}
		if err := f.cleanup(c); err != nil {
			return err
		}
	}
	return nil
}
