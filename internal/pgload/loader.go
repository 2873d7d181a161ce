package pgload

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wegman-software/osmgeom/internal/config"
	"github.com/wegman-software/osmgeom/internal/entity"
	"github.com/wegman-software/osmgeom/internal/logger"
)

// Stats holds loader statistics
type Stats struct {
	RowsLoaded int64
}

// Loader inserts converted entities into PostGIS, one table per geometry
// class.
type Loader struct {
	cfg  *config.Config
	pool *pgxpool.Pool
}

// geometry classes and their target tables
type geomClass int

const (
	classPoint geomClass = iota
	classLine
	classPolygon
)

var classTables = map[geomClass]string{
	classPoint:   "planet_osm_point",
	classLine:    "planet_osm_line",
	classPolygon: "planet_osm_polygon",
}

var classTypes = map[geomClass]string{
	classPoint:   "GEOMETRY(Point, %d)",
	classLine:    "GEOMETRY(MultiLineString, %d)",
	classPolygon: "GEOMETRY(MultiPolygon, %d)",
}

// NewLoader connects to PostgreSQL.
func NewLoader(cfg *config.Config) (*Loader, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.Workers)

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	return &Loader{cfg: cfg, pool: pool}, nil
}

// Close closes connections.
func (l *Loader) Close() {
	l.pool.Close()
}

// Run creates the output tables and loads the entities, one worker per
// geometry class.
func (l *Loader) Run(ctx context.Context, entities []entity.Entity) (*Stats, error) {
	log := logger.Get()

	if _, err := l.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS postgis"); err != nil {
		return nil, fmt.Errorf("failed to create PostGIS extension: %w", err)
	}
	if l.cfg.DBSchema != "public" {
		if _, err := l.pool.Exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", l.cfg.DBSchema)); err != nil {
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	buckets := map[geomClass][]entity.Entity{}
	for _, e := range entities {
		if e.Geometry == nil {
			log.Warn("Entity has no geometry, skipping", zap.Int64("id", e.ID))
			continue
		}
		class, ok := classify(e.Geometry)
		if !ok {
			log.Warn("No table for geometry kind, skipping entity",
				zap.Int64("id", e.ID),
				zap.String("geometry", e.Geometry.GeoJSONType()))
			continue
		}
		buckets[class] = append(buckets[class], e)
	}

	var rows atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	for class, batch := range buckets {
		class, batch := class, batch
		g.Go(func() error {
			if err := l.ensureTable(ctx, class); err != nil {
				return err
			}
			n, err := l.loadBatch(ctx, class, batch)
			rows.Add(n)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info("Load complete", zap.Int64("rows", rows.Load()))
	return &Stats{RowsLoaded: rows.Load()}, nil
}

// classify picks the target table for an entity geometry. Single-part
// geometries are promoted to their multi variants on insert.
func classify(g orb.Geometry) (geomClass, bool) {
	switch g.(type) {
	case orb.Point:
		return classPoint, true
	case orb.LineString, orb.MultiLineString:
		return classLine, true
	case orb.Polygon, orb.MultiPolygon:
		return classPolygon, true
	}
	return 0, false
}

func (l *Loader) ensureTable(ctx context.Context, class geomClass) error {
	table := fmt.Sprintf("%s.%s", l.cfg.DBSchema, classTables[class])
	geomType := fmt.Sprintf(classTypes[class], l.cfg.TargetSRID)

	sql := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  osm_id BIGINT NOT NULL,
  osm_type TEXT NOT NULL,
  tags JSONB,
  geom %s
)`, table, geomType)

	if _, err := l.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}
	return nil
}

func (l *Loader) loadBatch(ctx context.Context, class geomClass, entities []entity.Entity) (int64, error) {
	table := fmt.Sprintf("%s.%s", l.cfg.DBSchema, classTables[class])
	sql := fmt.Sprintf(
		"INSERT INTO %s (osm_id, osm_type, tags, geom) VALUES ($1, $2, $3, ST_GeomFromWKB($4, %d))",
		table, l.cfg.TargetSRID)

	var loaded int64
	for start := 0; start < len(entities); start += l.cfg.BatchSize {
		end := start + l.cfg.BatchSize
		if end > len(entities) {
			end = len(entities)
		}

		batch := &pgx.Batch{}
		for _, e := range entities[start:end] {
			geom, err := wkb.Marshal(promote(e.Geometry))
			if err != nil {
				return loaded, fmt.Errorf("failed to encode geometry for entity %d: %w", e.ID, err)
			}
			tags, err := json.Marshal(e.Tags)
			if err != nil {
				return loaded, fmt.Errorf("failed to encode tags for entity %d: %w", e.ID, err)
			}
			batch.Queue(sql, e.ID, string(e.Kind), tags, geom)
		}

		results := l.pool.SendBatch(ctx, batch)
		for range entities[start:end] {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return loaded, fmt.Errorf("failed to insert into %s: %w", table, err)
			}
			loaded++
		}
		if err := results.Close(); err != nil {
			return loaded, err
		}
	}
	return loaded, nil
}

// promote lifts single-part geometries to multi so each table has one type.
func promote(g orb.Geometry) orb.Geometry {
	switch v := g.(type) {
	case orb.LineString:
		return orb.MultiLineString{v}
	case orb.Polygon:
		return orb.MultiPolygon{v}
	}
	return g
}
