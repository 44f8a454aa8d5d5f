// Package session orchestrates solve attempts: it owns a timer and a
// refresh scheduler per attempt, applies the puzzle-type configuration,
// and folds finished attempts into the record store.
package session

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/soltimer-dev/soltimer/timer"
)

// Config is the puzzle-type configuration, loaded from a TOML file.
type Config struct {
	Puzzle map[string]PuzzleSpec `toml:"puzzle,omitempty"`
}

// PuzzleSpec describes how attempts at one puzzle type are timed.
type PuzzleSpec struct {
	Inspection        bool  `toml:"inspection,omitempty"`
	InspectionSeconds int64 `toml:"inspection_seconds,omitempty"`
	RefreshMillis     int64 `toml:"refresh_millis,omitempty"`
}

// InspectionMillis returns the configured inspection duration.
func (p PuzzleSpec) InspectionMillis() int64 {
	return p.InspectionSeconds * 1000
}

// DefaultConfig covers the common puzzle types with competition
// inspection settings.
func DefaultConfig() *Config {
	return &Config{
		Puzzle: map[string]PuzzleSpec{
			"222":   {Inspection: true, InspectionSeconds: 15, RefreshMillis: timer.DefaultRefreshPeriodMillis},
			"333":   {Inspection: true, InspectionSeconds: 15, RefreshMillis: timer.DefaultRefreshPeriodMillis},
			"444":   {Inspection: true, InspectionSeconds: 15, RefreshMillis: timer.DefaultRefreshPeriodMillis},
			"333bf": {Inspection: false, RefreshMillis: timer.DefaultRefreshPeriodMillis},
		},
	}
}

func parseConfig(f io.Reader) (*Config, error) {
	var out Config
	if _, err := toml.NewDecoder(f).Decode(&out); err != nil {
		return nil, err
	}
	out.applyDefaults()
	return &out, nil
}

func (c *Config) applyDefaults() {
	for name, spec := range c.Puzzle {
		if spec.Inspection && spec.InspectionSeconds == 0 {
			spec.InspectionSeconds = 15
		}
		if spec.RefreshMillis == 0 {
			spec.RefreshMillis = timer.DefaultRefreshPeriodMillis
		}
		c.Puzzle[name] = spec
	}
}

// LoadConfigFromFile reads a puzzle configuration file.
func LoadConfigFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseConfig(f)
}

// Lookup returns the spec for a named puzzle type.
func (c *Config) Lookup(name string) (PuzzleSpec, error) {
	spec, ok := c.Puzzle[name]
	if !ok {
		return PuzzleSpec{}, fmt.Errorf("session: unknown puzzle type %q", name)
	}
	return spec, nil
}
