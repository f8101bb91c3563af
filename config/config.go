package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jalad-shrimali/lane-split/osparis"
)

// ─── Conversion ─────────────────────────────────────────────────────────

// ConversionConfig picks a profile and optionally overrides its flags.
type ConversionConfig struct {
	Profile           string  `yaml:"profile"` // "timed" or "plain"
	LaneSlots         int     `yaml:"lane_slots"`
	DistanceThreshold float64 `yaml:"distance_threshold"`

	HasTimeColumn       *bool `yaml:"has_time_column"`
	ApplyDistanceFilter *bool `yaml:"apply_distance_filter"`
	DedupNames          *bool `yaml:"dedup_names"`
	DecimalCommaOutput  *bool `yaml:"decimal_comma_output"`
}

// ─── Server ─────────────────────────────────────────────────────────────

type ServerConfig struct {
	Addr           string `yaml:"addr"`
	MaxUploadMB    int64  `yaml:"max_upload_mb"`
	PreviewRows    int    `yaml:"preview_rows"`
	DownloadTTLMin int    `yaml:"download_ttl_minutes"`
	FileTemplate   string `yaml:"file_template"`
}

// Config is the top-level structure of lanesplit.yaml.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Conversion ConversionConfig `yaml:"conversion"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			MaxUploadMB:    32,
			PreviewRows:    20,
			DownloadTTLMin: 60,
			FileTemplate:   osparis.DefaultFileTemplate,
		},
		Conversion: ConversionConfig{
			Profile:           "timed",
			LaneSlots:         osparis.DefaultLaneSlots,
			DistanceThreshold: osparis.DefaultDistanceThreshold,
		},
	}
}

// Load reads a YAML config over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// validate rejects values that would silently fall back to a default or
// make the server refuse every upload.
func (c *Config) validate() error {
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be positive, got %d", c.Server.MaxUploadMB)
	}
	if c.Server.PreviewRows < 0 {
		return fmt.Errorf("server.preview_rows must not be negative, got %d", c.Server.PreviewRows)
	}
	if c.Server.DownloadTTLMin < 0 {
		return fmt.Errorf("server.download_ttl_minutes must not be negative, got %d", c.Server.DownloadTTLMin)
	}
	if c.Conversion.LaneSlots <= 0 {
		return fmt.Errorf("conversion.lane_slots must be positive, got %d", c.Conversion.LaneSlots)
	}
	if c.Conversion.DistanceThreshold <= 0 {
		return fmt.Errorf("conversion.distance_threshold must be positive, got %v", c.Conversion.DistanceThreshold)
	}
	_, err := c.Conversion.Options("")
	return err
}

// Options resolves the conversion flags. A non-empty profile replaces the
// configured one; explicit flag overrides always apply.
func (c ConversionConfig) Options(profile string) (osparis.Options, error) {
	if profile == "" {
		profile = c.Profile
	}
	opt, err := osparis.Profile(profile)
	if err != nil {
		return osparis.Options{}, err
	}
	opt.LaneSlots = c.LaneSlots
	opt.DistanceThreshold = c.DistanceThreshold

	set := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	set(&opt.HasTimeColumn, c.HasTimeColumn)
	set(&opt.ApplyDistanceFilter, c.ApplyDistanceFilter)
	set(&opt.DedupNames, c.DedupNames)
	set(&opt.DecimalCommaOutput, c.DecimalCommaOutput)
	return opt, nil
}

// DownloadTTL is how long encoded downloads stay available.
func (s ServerConfig) DownloadTTL() time.Duration {
	return time.Duration(s.DownloadTTLMin) * time.Minute
}
