package convert

import (
	"github.com/wegman-software/osmgeom/internal/config"
	"github.com/wegman-software/osmgeom/internal/geombuild"
	"github.com/wegman-software/osmgeom/internal/index"
	"github.com/wegman-software/osmgeom/internal/proj"
)

// Converter transforms a topological OSM document into flat attributed
// geometry entities and back. All settings are fixed at construction; Read
// and Write keep no state between calls and are safe for concurrent use on
// one Converter.
type Converter struct {
	cfg      *config.Config
	indexer  *index.Indexer
	builders map[string]geombuild.BuilderFunc
	areaKeys map[string]struct{}
	inverse  *proj.Transformer
}

// New creates a converter with the default relation builder registry.
func New(cfg *config.Config) (*Converter, error) {
	return NewWithBuilders(cfg, geombuild.DefaultRegistry())
}

// NewWithBuilders creates a converter with a caller-supplied relation type
// to builder registry. The registry is treated as immutable.
func NewWithBuilders(cfg *config.Config, builders map[string]geombuild.BuilderFunc) (*Converter, error) {
	indexer, err := index.NewIndexer(cfg)
	if err != nil {
		return nil, err
	}
	transformer, err := proj.NewTransformer(cfg.SourceSRID, cfg.TargetSRID)
	if err != nil {
		return nil, err
	}
	return &Converter{
		cfg:      cfg,
		indexer:  indexer,
		builders: builders,
		areaKeys: cfg.AreaKeySet(),
		inverse:  transformer.Inverse(),
	}, nil
}
