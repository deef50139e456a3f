package stencil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrUnknownConfigFormat is returned by LoadConfig and ParseConfig for
// formats other than YAML and TOML.
var ErrUnknownConfigFormat = errors.New("unknown config format")

// fileConfig is the subset of Config that can be set from a file.
type fileConfig struct {
	Directory string `yaml:"directory" toml:"directory"`
	Extension string `yaml:"extension" toml:"extension"`
	Cache     bool   `yaml:"cache" toml:"cache"`
	Flavor    string `yaml:"flavor" toml:"flavor"`
}

// LoadConfig reads a Config from a YAML (.yaml, .yml) or TOML (.toml) file.
// The recognized keys are directory, extension, cache, and flavor ("text"
// or "html"). A relative directory is taken relative to the working
// directory, not to the file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("error reading config %q: %w", path, err)
	}
	cfg, err := ParseConfig(data, filepath.Ext(path))
	if err != nil {
		return Config{}, fmt.Errorf("error parsing config %q: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes a Config from data, which is in format: "yaml", "yml",
// or "toml", with or without a leading dot.
func ParseConfig(data []byte, format string) (Config, error) {
	var fc fileConfig
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return Config{}, err
		}
	case "toml":
		if _, err := toml.Decode(string(data), &fc); err != nil {
			return Config{}, err
		}
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownConfigFormat, format)
	}
	flavor, err := FlavorByName(fc.Flavor)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Directory: fc.Directory,
		Extension: fc.Extension,
		Cache:     fc.Cache,
		Flavor:    flavor,
	}, nil
}
