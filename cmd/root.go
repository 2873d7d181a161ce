package cmd

import (
	"github.com/spf13/cobra"

	"github.com/wegman-software/osmgeom/internal/config"
	"github.com/wegman-software/osmgeom/internal/logger"
	"github.com/wegman-software/osmgeom/internal/proj"
)

var (
	cfg     = config.DefaultConfig()
	verbose bool
	logFile string
	profile string

	sourceProjection string
	targetProjection string
)

var rootCmd = &cobra.Command{
	Use:   "osmgeom",
	Short: "Convert topological OSM documents to flat geometries and back",
	Long: `osmgeom converts OSM XML and PBF documents into flat, attributed
geometry entities and serializes entities back into OSM XML.

Features:
  - Multipolygon and route relation assembly with path stitching
  - Tag-based area classification and interesting-tag filtering
  - GeoJSON export and import for the entity model
  - PostGIS loading of converted entities
  - Optional Lua hook to rewrite element tags before conversion`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg.Verbose = verbose
		cfg.LogFile = logFile
		logger.Init(verbose, logFile)

		if profile != "" {
			if err := cfg.LoadProfile(profile); err != nil {
				return err
			}
		}
		if sourceProjection != "" {
			srid, err := proj.ParseSRID(sourceProjection)
			if err != nil {
				return err
			}
			cfg.SourceSRID = srid
		}
		if targetProjection != "" {
			srid, err := proj.ParseSRID(targetProjection)
			if err != nil {
				return err
			}
			cfg.TargetSRID = srid
		}
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file for persistent logging (JSON format)")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "", "Path to YAML conversion profile")
	rootCmd.PersistentFlags().IntVarP(&cfg.Workers, "workers", "j", cfg.Workers, "Number of parallel workers")

	rootCmd.PersistentFlags().BoolVar(&cfg.TagChecking, "tag-checking", cfg.TagChecking, "Classify elements by their tags")
	rootCmd.PersistentFlags().BoolVar(&cfg.NodeSharing, "node-sharing", cfg.NodeSharing, "Share node points between ways instead of stamping source ids")
	rootCmd.PersistentFlags().StringVar(&sourceProjection, "source-projection", "", "Projection of the input document (4326 or 3857)")
	rootCmd.PersistentFlags().StringVar(&targetProjection, "target-projection", "", "Projection of produced geometries (4326 or 3857)")
}
