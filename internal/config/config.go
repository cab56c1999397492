package config

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"pixelfix/internal/codec"
	"pixelfix/internal/inputs"
)

// Config holds all run settings.
type Config struct {
	// Repair
	Debug bool `json:"debug"`

	// Inputs
	Extensions []string `json:"extensions"`
	Recursive  bool     `json:"recursive"`

	// Output
	JPEGQuality int    `json:"jpeg_quality"`
	Report      string `json:"report"`

	// Execution
	Workers  int  `json:"workers"`
	Progress bool `json:"progress"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve applies CLI overrides and fills any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty; boolean flags can only
// switch a setting on.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.Debug {
		c.Debug = true
	}
	if flags.Recursive {
		c.Recursive = true
	}
	if flags.Progress {
		c.Progress = true
	}
	if len(flags.Extensions) > 0 {
		c.Extensions = flags.Extensions
	}
	if flags.JPEGQuality > 0 {
		c.JPEGQuality = flags.JPEGQuality
	}
	if flags.Report != "" {
		c.Report = flags.Report
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	// Defaults
	if len(c.Extensions) == 0 {
		c.Extensions = inputs.DefaultExtensions
	}
	if c.JPEGQuality <= 0 {
		c.JPEGQuality = codec.DefaultJPEGQuality
	}
	if c.JPEGQuality > 100 {
		c.JPEGQuality = 100
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Debug       bool
	Recursive   bool
	Progress    bool
	Extensions  []string
	JPEGQuality int
	Report      string
	Workers     int
}
