package gen

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

var (
	// FeatureProviders generates a google/wire provider set holding every
	// DAO constructor.
	FeatureProviders = Feature{
		Name:        "providers",
		Stage:       Beta,
		Default:     false,
		Description: "Providers generates a wire.ProviderSet with the DAO constructors",
		cleanup: func(c *Config) error {
			return remove(c.Fs, c.Target, "providers.go")
		},
	}

	// FeatureTableRegistry generates a Tables slice listing every table
	// description of the package.
	FeatureTableRegistry = Feature{
		Name:        "tables",
		Stage:       Experimental,
		Default:     false,
		Description: "Tables generates a registry of all table descriptions",
		cleanup: func(c *Config) error {
			return remove(c.Fs, c.Target, "tables.go")
		},
	}

	// AllFeatures holds a list of all feature-flags.
	AllFeatures = []Feature{
		FeatureProviders,
		FeatureTableRegistry,
	}
)

// FeatureStage describes the stage of the codegen feature.
type FeatureStage int

const (
	_ FeatureStage = iota

	// Experimental features are in development, and actively being tested.
	Experimental

	// Alpha features are finished but may still change their output.
	Alpha

	// Beta features are documented, and no breaking-changes are expected for them.
	Beta

	// Stable features are Beta features that have been in use for a while.
	Stable
)

// A Feature of the codegen.
type Feature struct {
	// Name of the feature.
	Name string

	// Stage of the feature.
	Stage FeatureStage

	// Default values indicates if this feature is enabled by default.
	Default bool

	// A Description of this feature.
	Description string

	// cleanup used to cleanup all changes when a feature-flag is removed.
	// e.g. delete files from previous codegen runs.
	cleanup func(*Config) error
}

// FeatureByName returns the feature with the given name.
func FeatureByName(name string) (Feature, bool) {
	for _, f := range AllFeatures {
		if f.Name == name {
			return f, true
		}
	}
	return Feature{}, false
}

// remove file (if exists) and its dir if it's empty.
func remove(fs afero.Fs, dir, file string) error {
	if err := fs.Remove(filepath.Join(dir, file)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		return fs.Remove(dir)
	}
	return nil
}
