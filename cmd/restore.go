package cmd

import (
	"fmt"
	"os"

	"github.com/paulmach/orb/geojson"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wegman-software/osmgeom/internal/convert"
	"github.com/wegman-software/osmgeom/internal/export"
	"github.com/wegman-software/osmgeom/internal/logger"
)

var restoreOutput string

var restoreCmd = &cobra.Command{
	Use:   "restore [input.geojson]",
	Short: "Serialize GeoJSON entities back into an OSM XML document",
	Args:  cobra.ExactArgs(1),
	RunE:  runRestore,
}

func init() {
	restoreCmd.Flags().StringVarP(&restoreOutput, "output", "o", "", "Output file (default: stdout)")
	rootCmd.AddCommand(restoreCmd)
}

func runRestore(cmd *cobra.Command, args []string) error {
	log := logger.Get()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return fmt.Errorf("failed to parse GeoJSON: %w", err)
	}

	entities, err := export.FromFeatureCollection(fc)
	if err != nil {
		return err
	}

	converter, err := convert.New(cfg)
	if err != nil {
		return err
	}

	out := os.Stdout
	if restoreOutput != "" {
		out, err = os.Create(restoreOutput)
		if err != nil {
			return err
		}
		defer out.Close()
	}

	if err := converter.WriteTo(out, entities); err != nil {
		return err
	}
	log.Info("Restore complete", zap.Int("entities", len(entities)))
	return nil
}
