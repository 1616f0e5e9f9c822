// Package config loads the run configuration: YAML for the solver and
// harness settings, JSON for the anchors map, and the raw ciphertext file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"k4solve/internal/cipher"
	"k4solve/internal/classing"
	"k4solve/internal/wheel"
)

// Config holds all k4solve configuration.
type Config struct {
	// Input paths
	Ciphertext string `yaml:"ciphertext"`
	Anchors    string `yaml:"anchors"`

	Classing   ClassingConfig `yaml:"classing"`
	Addressing string         `yaml:"addressing"`
	Period     PeriodConfig   `yaml:"period"`
	OptionA    bool           `yaml:"option_a"`

	// Wheels pins per-class (family, period, phase); empty means the solver
	// searches.
	Wheels []WheelOverride `yaml:"wheels"`

	Harness HarnessConfig `yaml:"harness"`
	Output  OutputConfig  `yaml:"output"`

	// ExpectedSHA256 is the digest a complete plaintext must match; empty
	// disables the check.
	ExpectedSHA256 string `yaml:"expected_sha256"`
}

// ClassingConfig selects the class-assignment formula.
type ClassingConfig struct {
	Formula    string `yaml:"formula"`
	NumClasses int    `yaml:"num_classes"`
}

// PeriodConfig bounds the solver's period search.
type PeriodConfig struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// WheelOverride pins one class's wheel configuration.
type WheelOverride struct {
	Class  int    `yaml:"class"`
	Family string `yaml:"family"`
	Period int    `yaml:"period"`
	Phase  int    `yaml:"phase"`
}

// HarnessConfig drives the batch harnesses.
type HarnessConfig struct {
	Workers   int     `yaml:"workers"`
	Timeout   string  `yaml:"timeout"`
	Trials    int     `yaml:"trials"`
	Tolerance float64 `yaml:"tolerance"`
}

// TimeoutDuration parses the per-trial deadline.
func (h HarnessConfig) TimeoutDuration() (time.Duration, error) {
	if h.Timeout == "" {
		return 30 * time.Second, nil
	}
	d, err := time.ParseDuration(h.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid harness timeout %q: %w", h.Timeout, err)
	}
	return d, nil
}

// OutputConfig names the report artifacts.
type OutputConfig struct {
	CSV    string `yaml:"csv"`
	SQLite string `yaml:"sqlite"`
	Proof  string `yaml:"proof"`
}

// Default returns the standard configuration: six classes under the mod2x3
// formula, ordinal addressing, period search 2..22, Option-A enforced.
func Default() *Config {
	return &Config{
		Classing:   ClassingConfig{Formula: "mod2x3", NumClasses: 6},
		Addressing: "ordinal",
		Period:     PeriodConfig{Min: wheel.DefaultMinPeriod, Max: wheel.DefaultMaxPeriod},
		OptionA:    true,
		Harness: HarnessConfig{
			Workers:   4,
			Timeout:   "30s",
			Trials:    1000,
			Tolerance: 0.01,
		},
	}
}

// Load reads a YAML config over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the cross-field constraints.
func (c *Config) Validate() error {
	if _, err := classing.ParseFormula(c.Classing.Formula); err != nil {
		return err
	}
	if _, err := classing.ParseAddressingMode(c.Addressing); err != nil {
		return err
	}
	if c.Period.Min < 2 || c.Period.Max < c.Period.Min {
		return fmt.Errorf("period bound [%d,%d] invalid", c.Period.Min, c.Period.Max)
	}
	for _, w := range c.Wheels {
		if w.Class < 0 || w.Class >= c.Classing.NumClasses {
			return fmt.Errorf("wheel override class %d out of range for %d classes", w.Class, c.Classing.NumClasses)
		}
		if _, err := cipher.ParseFamily(w.Family); err != nil {
			return fmt.Errorf("wheel override class %d: %w", w.Class, err)
		}
		if w.Period < 2 {
			return fmt.Errorf("wheel override class %d: period %d invalid", w.Class, w.Period)
		}
		if w.Phase < 0 || w.Phase >= w.Period {
			return fmt.Errorf("wheel override class %d: phase %d out of range for period %d", w.Class, w.Phase, w.Period)
		}
	}
	if _, err := c.Harness.TimeoutDuration(); err != nil {
		return err
	}
	if c.Harness.Tolerance < 0 || c.Harness.Tolerance > 1 {
		return fmt.Errorf("tolerance %f out of range", c.Harness.Tolerance)
	}
	return nil
}

// Assignment builds the classing assignment from the config.
func (c *Config) Assignment() (classing.Assignment, error) {
	f, err := classing.ParseFormula(c.Classing.Formula)
	if err != nil {
		return classing.Assignment{}, err
	}
	return classing.NewAssignment(f, c.Classing.NumClasses)
}

// SolveOptions builds the solver options from the config.
func (c *Config) SolveOptions() (wheel.Options, error) {
	mode, err := classing.ParseAddressingMode(c.Addressing)
	if err != nil {
		return wheel.Options{}, err
	}
	opts := wheel.Options{
		Mode:           mode,
		MinPeriod:      c.Period.Min,
		MaxPeriod:      c.Period.Max,
		EnforceOptionA: c.OptionA,
	}
	if len(c.Wheels) > 0 {
		opts.Fixed = make(map[int]wheel.Fixed, len(c.Wheels))
		for _, w := range c.Wheels {
			fam, err := cipher.ParseFamily(w.Family)
			if err != nil {
				return wheel.Options{}, err
			}
			if _, dup := opts.Fixed[w.Class]; dup {
				return wheel.Options{}, fmt.Errorf("duplicate wheel override for class %d", w.Class)
			}
			opts.Fixed[w.Class] = wheel.Fixed{Family: fam, Period: w.Period, Phase: w.Phase}
		}
	}
	return opts, nil
}

// LoadCiphertext reads and validates the ciphertext file: uppercase A-Z
// only, surrounding whitespace ignored.
func LoadCiphertext(path string) (cipher.Text, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ciphertext %s: %w", path, err)
	}
	s := strings.TrimSpace(string(data))
	text, err := cipher.ParseText(s)
	if err != nil {
		return nil, fmt.Errorf("ciphertext %s: %w", path, err)
	}
	if len(text) == 0 {
		return nil, fmt.Errorf("ciphertext %s is empty", path)
	}
	return text, nil
}
