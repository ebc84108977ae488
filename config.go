package lume

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// SourceExt is the extension of lume source files.
const SourceExt = ".lume"

// ConfigFile is the project file name expected in the project directory.
const ConfigFile = "lume.toml"

// Config represents the lume.toml project file.
type Config struct {
	Package Package `toml:"package"`
}

// Package describes the project under the [package] table.
type Package struct {
	// Name of the package.
	Name string `toml:"name"`

	// Version of the package.
	Version string `toml:"version"`

	// Dependencies lists external package requirements.
	Dependencies []string `toml:"dependencies"`

	// Root is the source directory, relative to the project directory.
	Root string `toml:"root"`

	// Entry is the module evaluated first, relative to Root.
	Entry string `toml:"entry"`
}

// LoadConfig reads and decodes the project file in dir, applying defaults
// for absent keys. A missing file surfaces as an fs error wrapping
// os.ErrNotExist; callers treat that as fatal at startup.
func LoadConfig(dir string) (*Config, error) {
	return LoadConfigFile(filepath.Join(dir, ConfigFile))
}

// LoadConfigFile loads a config from a specific path.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	var cfg Config

	err = toml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Package.Dependencies == nil {
		c.Package.Dependencies = []string{}
	}

	if c.Package.Root == "" {
		c.Package.Root = "src"
	}

	if c.Package.Entry == "" {
		c.Package.Entry = "main" + SourceExt
	}
}
