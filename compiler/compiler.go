// Package compiler runs the code generator on schema files.
//
//	err := compiler.GenerateFile(ctx, "schema.yaml",
//		gen.WithPackage("github.com/acme/app/vertx"),
//		gen.WithTarget("./vertx"),
//		gen.WithFlavor(async.Classic),
//	)
package compiler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/syssam/asyncdao/compiler/gen"
	"github.com/syssam/asyncdao/compiler/load"
)

// debounce groups the bursts of events editors produce on save.
const debounce = 100 * time.Millisecond

// LoadGraph builds the generator graph of s.
func LoadGraph(s *load.Schema, cfg *gen.Config) (*gen.Graph, error) {
	if cfg == nil {
		return nil, gen.NewConfigError("Config", nil, "config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return gen.NewGraph(cfg, s)
}

// Generate builds the config from opts and generates the package of s.
func Generate(ctx context.Context, s *load.Schema, opts ...gen.Option) error {
	cfg, err := gen.NewConfig(opts...)
	if err != nil {
		return err
	}
	g, err := LoadGraph(s, cfg)
	if err != nil {
		return err
	}
	return gen.NewJenniferGenerator(g).Generate(ctx)
}

// GenerateFile loads the schema file at path and generates its package.
func GenerateFile(ctx context.Context, path string, opts ...gen.Option) error {
	s, err := load.Load(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return Generate(ctx, s, opts...)
}

// Watch generates the package of the schema file at path, then again
// whenever the file changes. Generation errors are logged, not returned.
// Watch returns when ctx is done.
func Watch(ctx context.Context, path string, opts ...gen.Option) error {
	cfg, err := gen.NewConfig(opts...)
	if err != nil {
		return err
	}
	logger := cfg.Logger
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	// Editors often replace the file on save, so the directory is watched.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	run := func() {
		if err := GenerateFile(ctx, abs, opts...); err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Error("generation failed", "schema", path, "error", err)
			}
			return
		}
		logger.Info("generated", "schema", path, "target", cfg.Target)
	}
	run()

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			logger.Debug("schema changed", "schema", path, "op", event.Op.String())
			timer.Reset(debounce)
		case <-timer.C:
			run()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "error", err)
		}
	}
}
