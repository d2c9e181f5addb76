// Package config loads tool configuration for the timsdata readers.
// Values merge in order: built-in defaults, then the TOML file, then
// whatever flags the caller applies on top.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config is the root configuration.
type Config struct {
	Library LibraryConfig `toml:"library"`
	Cache   CacheConfig   `toml:"cache"`
	Buffer  BufferConfig  `toml:"buffer"`
	Merge   MergeConfig   `toml:"merge"`
}

// LibraryConfig locates the vendor coordinate-conversion library.
type LibraryConfig struct {
	// SearchPaths are tried in order when loading the shared library.
	// Empty means the platform default name on the system path.
	SearchPaths []string `toml:"search_paths"`

	// UseRecalibratedState opens acquisitions with the recalibrated
	// coordinate state when the vendor library has one.
	UseRecalibratedState bool `toml:"use_recalibrated_state"`
}

// CacheConfig bounds the frame cache.
type CacheConfig struct {
	FrameCacheSize int `toml:"frame_cache_size"`
}

// BufferConfig tunes scan-buffer negotiation.
type BufferConfig struct {
	// MaxFrameBytes is the hard cap on the negotiated scan buffer.
	MaxFrameBytes uint32 `toml:"max_frame_bytes"`

	// InitialUnits is the starting buffer size hint in 4-byte units.
	InitialUnits int `toml:"initial_units"`
}

// MergeConfig holds the scan-merging (reprofiling) parameters applied
// to combined mobility scan ranges.
type MergeConfig struct {
	FWHM float64 `toml:"fwhm"`
	DX   float64 `toml:"dx"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Cache:  CacheConfig{FrameCacheSize: 128},
		Buffer: BufferConfig{MaxFrameBytes: 16 * 1024 * 1024, InitialUnits: 128},
		Merge:  MergeConfig{FWHM: 0.04, DX: 0.001},
	}
}

// Load reads a TOML configuration file over the defaults. A missing
// file is not an error: the defaults are returned unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the readers cannot work with.
func (c *Config) Validate() error {
	if c.Cache.FrameCacheSize <= 0 {
		return fmt.Errorf("frame_cache_size must be positive, got %d", c.Cache.FrameCacheSize)
	}
	if c.Buffer.InitialUnits <= 0 {
		return fmt.Errorf("initial_units must be positive, got %d", c.Buffer.InitialUnits)
	}
	if c.Buffer.MaxFrameBytes == 0 {
		return errors.New("max_frame_bytes must be positive")
	}
	if c.Merge.FWHM <= 0 {
		return fmt.Errorf("merge fwhm must be positive, got %g", c.Merge.FWHM)
	}
	if c.Merge.DX <= 0 {
		return fmt.Errorf("merge dx must be positive, got %g", c.Merge.DX)
	}
	return nil
}
