package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wegman-software/osmgeom/internal/convert"
	"github.com/wegman-software/osmgeom/internal/entity"
	"github.com/wegman-software/osmgeom/internal/export"
	"github.com/wegman-software/osmgeom/internal/flex"
	"github.com/wegman-software/osmgeom/internal/logger"
	"github.com/wegman-software/osmgeom/internal/metrics"
	"github.com/wegman-software/osmgeom/internal/osmxml"
	"github.com/wegman-software/osmgeom/internal/pbf"
)

var (
	convertOutput   string
	tagTransform    string
	metricsInterval time.Duration
)

var convertCmd = &cobra.Command{
	Use:   "convert [input.osm|input.osm.pbf]",
	Short: "Convert an OSM document to GeoJSON entities",
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "Output file (default: stdout)")
	convertCmd.Flags().StringVar(&tagTransform, "tag-transform", "", "Lua script rewriting element tags before conversion")
	convertCmd.Flags().DurationVar(&metricsInterval, "metrics-interval", 30*time.Second, "Interval for system metrics logging")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	log := logger.Get()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go metrics.NewCollector(metricsInterval, log).Start(ctx)

	start := time.Now()
	entities, err := readEntities(ctx, args[0])
	if err != nil {
		return err
	}
	log.Info("Conversion complete",
		zap.Int("entities", len(entities)),
		zap.Duration("duration", time.Since(start).Round(time.Millisecond)))

	fc := export.ToFeatureCollection(entities)
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode GeoJSON: %w", err)
	}

	if convertOutput == "" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(convertOutput, data, 0644)
}

// readEntities parses an OSM XML or PBF file and runs the conversion,
// applying the optional tag-transform script first.
func readEntities(ctx context.Context, path string) ([]entity.Entity, error) {
	cfg.InputFile = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var doc *osmxml.Document
	if strings.HasSuffix(path, ".pbf") {
		doc, err = pbf.ToDocument(ctx, f, cfg.Workers)
	} else {
		doc, err = osmxml.Parse(f)
	}
	if err != nil {
		return nil, err
	}

	if tagTransform != "" {
		tt, err := flex.NewTagTransform(tagTransform)
		if err != nil {
			return nil, err
		}
		defer tt.Close()
		if err := tt.ApplyToDocument(doc); err != nil {
			return nil, err
		}
	}

	converter, err := convert.New(cfg)
	if err != nil {
		return nil, err
	}
	return converter.ReadDocument(doc)
}
