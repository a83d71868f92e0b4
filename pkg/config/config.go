// Package config loads the project configuration: a YAML file layered over
// defaults, then environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chazu/envi/pkg/canon"
	"github.com/chazu/envi/pkg/export"
	"github.com/chazu/envi/pkg/logging"
	"github.com/chazu/envi/pkg/preview"
	"github.com/chazu/envi/pkg/raytrace"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Environment overrides.
const (
	EnvWorkdir       = "ENVI_WORKDIR"
	EnvLogLevel      = "ENVI_LOG_LEVEL"
	EnvExpandObjects = "ENVI_EXPAND_OBJECTS"
	EnvEPVersion     = "ENVI_EP_VERSION"
)

// Tolerances are the geometric tolerances in metres (Angle in radians).
type Tolerances struct {
	Merge      float64 `yaml:"merge"`
	Degenerate float64 `yaml:"degenerate"`
	Angle      float64 `yaml:"angle"`
	MinArea    float64 `yaml:"min_area"`
	Boundary   float64 `yaml:"boundary"`
}

type Metrics struct {
	// Textfile receives the counters after each run when set.
	Textfile string `yaml:"textfile"`
}

type Raytrace struct {
	BatchPerCPU int `yaml:"batch_per_cpu"`
}

type Identity struct {
	File string `yaml:"file"`
}

type Preview struct {
	Scale float64 `yaml:"scale"`
}

// Config is the project configuration.
type Config struct {
	Workdir       string         `yaml:"workdir"`
	EPVersion     string         `yaml:"energyplus_version"`
	ExpandObjects string         `yaml:"expand_objects"`
	Tolerances    Tolerances     `yaml:"tolerances"`
	Log           logging.Config `yaml:"log"`
	Metrics       Metrics        `yaml:"metrics"`
	Raytrace      Raytrace       `yaml:"raytrace"`
	Identity      Identity       `yaml:"identity"`
	Preview       Preview        `yaml:"preview"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	c := canon.DefaultOptions()
	return Config{
		Workdir:       "envi",
		EPVersion:     "9.4.0",
		ExpandObjects: "ExpandObjects",
		Tolerances: Tolerances{
			Merge:      c.Merge,
			Degenerate: c.Degenerate,
			Angle:      c.Angle,
			MinArea:    c.MinArea,
			Boundary:   0.01,
		},
		Log:      logging.Config{Level: "info", Format: "console"},
		Raytrace: Raytrace{BatchPerCPU: raytrace.DefaultBatchPerCPU},
		Preview:  Preview{Scale: preview.DefaultScale},
	}
}

// Load reads path over the defaults and applies environment overrides. An
// empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Workdir = getEnv(EnvWorkdir, c.Workdir)
	c.Log.Level = getEnv(EnvLogLevel, c.Log.Level)
	c.ExpandObjects = getEnv(EnvExpandObjects, c.ExpandObjects)
	c.EPVersion = getEnv(EnvEPVersion, c.EPVersion)
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

// Validate rejects configurations no export could run with.
func (c Config) Validate() error {
	var err error
	if c.Workdir == "" {
		err = multierr.Append(err, errors.New("workdir is empty"))
	}
	t := c.Tolerances
	for _, tol := range []struct {
		name string
		v    float64
	}{
		{"merge", t.Merge},
		{"degenerate", t.Degenerate},
		{"angle", t.Angle},
		{"min_area", t.MinArea},
		{"boundary", t.Boundary},
	} {
		if tol.v <= 0 {
			err = multierr.Append(err, fmt.Errorf("tolerances.%s must be positive, got %g", tol.name, tol.v))
		}
	}
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// IdentityFile returns the face identity file, defaulting to identity.json
// in the working directory.
func (c Config) IdentityFile() string {
	if c.Identity.File != "" {
		return c.Identity.File
	}
	return filepath.Join(c.Workdir, "identity.json")
}

// Export returns the exporter options the configuration describes.
func (c Config) Export() export.Options {
	opts := export.DefaultOptions(c.Workdir)
	opts.ExpandObjects = c.ExpandObjects
	opts.IdentityFile = c.IdentityFile()
	opts.Boundary = c.Tolerances.Boundary
	opts.Canon = canon.Options{
		Merge:      c.Tolerances.Merge,
		Degenerate: c.Tolerances.Degenerate,
		Angle:      c.Tolerances.Angle,
		MinArea:    c.Tolerances.MinArea,
	}
	return opts
}
