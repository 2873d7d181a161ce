package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wegman-software/osmgeom/internal/logger"
	"github.com/wegman-software/osmgeom/internal/pgload"
)

var loadCmd = &cobra.Command{
	Use:   "load [input.osm|input.osm.pbf]",
	Short: "Convert an OSM document and load the entities into PostGIS",
	Args:  cobra.ExactArgs(1),
	RunE:  runLoad,
}

func init() {
	loadCmd.Flags().StringVar(&cfg.DBHost, "db-host", cfg.DBHost, "PostgreSQL host")
	loadCmd.Flags().IntVar(&cfg.DBPort, "db-port", cfg.DBPort, "PostgreSQL port")
	loadCmd.Flags().StringVarP(&cfg.DBName, "db-name", "d", cfg.DBName, "PostgreSQL database name")
	loadCmd.Flags().StringVarP(&cfg.DBUser, "db-user", "U", cfg.DBUser, "PostgreSQL user")
	loadCmd.Flags().StringVarP(&cfg.DBPassword, "db-password", "W", cfg.DBPassword, "PostgreSQL password")
	loadCmd.Flags().StringVar(&cfg.DBSchema, "db-schema", cfg.DBSchema, "PostgreSQL schema")
	loadCmd.Flags().IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "Rows per insert batch")
	loadCmd.Flags().StringVar(&tagTransform, "tag-transform", "", "Lua script rewriting element tags before conversion")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	log := logger.Get()
	ctx := cmd.Context()

	start := time.Now()
	entities, err := readEntities(ctx, args[0])
	if err != nil {
		return err
	}

	loader, err := pgload.NewLoader(cfg)
	if err != nil {
		return err
	}
	defer loader.Close()

	stats, err := loader.Run(ctx, entities)
	if err != nil {
		return err
	}

	log.Info("Load finished",
		zap.Int64("rows", stats.RowsLoaded),
		zap.Duration("duration", time.Since(start).Round(time.Second)))
	return nil
}
