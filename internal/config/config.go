package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wegman-software/osmgeom/internal/proj"
)

// Config holds the global configuration for a conversion run. The conversion
// settings are fixed at construction time; commands must not mutate them
// after the converter is built.
type Config struct {
	// Conversion settings
	TagChecking  bool     // compute "interesting" flags and area tags
	NodeSharing  bool     // share resolved node points between ways
	ExcludedTags []string // tag keys that never make an element interesting
	AreaKeys     []string // tag keys that mark a closed way as an area
	SourceSRID   int      // projection of the input document
	TargetSRID   int      // projection of the produced geometries

	// Input/output settings
	InputFile    string
	OutputFile   string
	TagTransform string // optional Lua tag-transform script

	// Database settings (load command)
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBSchema   string

	// Processing settings
	Workers   int
	BatchSize int

	// Logging and metrics
	Verbose         bool
	LogFile         string
	MetricsInterval time.Duration
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		TagChecking: true,
		NodeSharing: false,
		ExcludedTags: []string{
			"created_by", "source", "note", "fixme", "FIXME", "attribution", "odbl",
		},
		AreaKeys: []string{
			"building", "landuse", "natural", "leisure", "amenity",
			"shop", "tourism", "man_made", "water", "boundary", "place",
		},
		SourceSRID: proj.SRID4326,
		TargetSRID: proj.SRID4326,

		DBHost:   "localhost",
		DBPort:   5432,
		DBName:   "osm",
		DBUser:   "postgres",
		DBSchema: "public",

		Workers:         4,
		BatchSize:       5000,
		MetricsInterval: 30 * time.Second,
	}
}

// profile is the YAML shape of a conversion profile file. Only fields that
// are present override the defaults.
type profile struct {
	TagChecking  *bool    `yaml:"tag_checking"`
	NodeSharing  *bool    `yaml:"node_sharing"`
	ExcludedTags []string `yaml:"excluded_tags"`
	AreaKeys     []string `yaml:"area_keys"`
	SourceSRID   string   `yaml:"source_projection"`
	TargetSRID   string   `yaml:"target_projection"`
}

// LoadProfile applies a YAML profile file on top of the current settings.
func (c *Config) LoadProfile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read profile: %w", err)
	}

	var p profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("failed to parse profile %s: %w", path, err)
	}

	if p.TagChecking != nil {
		c.TagChecking = *p.TagChecking
	}
	if p.NodeSharing != nil {
		c.NodeSharing = *p.NodeSharing
	}
	if p.ExcludedTags != nil {
		c.ExcludedTags = p.ExcludedTags
	}
	if p.AreaKeys != nil {
		c.AreaKeys = p.AreaKeys
	}
	if p.SourceSRID != "" {
		srid, err := proj.ParseSRID(p.SourceSRID)
		if err != nil {
			return fmt.Errorf("profile %s: %w", path, err)
		}
		c.SourceSRID = srid
	}
	if p.TargetSRID != "" {
		srid, err := proj.ParseSRID(p.TargetSRID)
		if err != nil {
			return fmt.Errorf("profile %s: %w", path, err)
		}
		c.TargetSRID = srid
	}
	return nil
}

// ExcludedTagSet returns the exclusion list as a lookup set.
func (c *Config) ExcludedTagSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.ExcludedTags))
	for _, k := range c.ExcludedTags {
		set[k] = struct{}{}
	}
	return set
}

// AreaKeySet returns the area key list as a lookup set.
func (c *Config) AreaKeySet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.AreaKeys))
	for _, k := range c.AreaKeys {
		set[k] = struct{}{}
	}
	return set
}

// ConnectionString returns a PostgreSQL connection string.
func (c *Config) ConnectionString() string {
	connStr := fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBName, c.DBUser,
	)
	if c.DBPassword != "" {
		connStr += fmt.Sprintf(" password=%s", c.DBPassword)
	}
	return connStr
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.InputFile == "" {
		return fmt.Errorf("input file is required")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	if _, err := proj.NewTransformer(c.SourceSRID, c.TargetSRID); err != nil {
		return err
	}
	return nil
}
