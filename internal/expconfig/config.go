// Package expconfig loads the optional meticulous.yaml ambient config file
// (SPEC_FULL.md §6.a) that supplies defaults for engine options. An
// explicit CLI flag always wins over a config default; a config default
// always wins over the library's own built-in default.
package expconfig

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the shape of meticulous.yaml.
type Config struct {
	ExperimentsDirectory string   `json:"experiments_directory,omitempty" yaml:"experiments_directory,omitempty"`
	Description          string   `json:"description,omitempty" yaml:"description,omitempty"`
	ArgsSchema           string   `json:"args_schema,omitempty" yaml:"args_schema,omitempty"`
	SnapshotGlobs        []string `json:"snapshot_globs,omitempty" yaml:"snapshot_globs,omitempty"`
}

// Load reads and parses path. A missing file is not an error: it returns
// a zero-value Config, so callers can unconditionally Load a conventional
// path like "./meticulous.yaml" without special-casing "doesn't exist".
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Config{}, err
	}
	return c, nil
}
