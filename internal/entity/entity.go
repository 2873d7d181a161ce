package entity

import (
	"github.com/paulmach/orb"
)

// Kind identifies which OSM element class an entity was derived from.
type Kind string

const (
	KindNode     Kind = "node"
	KindWay      Kind = "way"
	KindRelation Kind = "relation"
)

// ChangeState marks a pending mutation for the write path.
// It has no effect on the read path.
type ChangeState int

const (
	StateNone ChangeState = iota
	StateUpdate
	StateDelete
)

// Entity is a flat, attributed geometry produced from the topological
// document or fed back into it. IDs mirror the source ids; entities created
// outside a document carry ID 0 and receive negative placeholder ids when
// serialized.
type Entity struct {
	ID       int64
	Kind     Kind
	Version  int
	Tags     map[string]string
	State    ChangeState
	Geometry orb.Geometry

	// NodeRefs stamps each vertex of a line or polygon geometry with the
	// source node id it resolved from, aligned with the point sequence.
	// Populated on read when node sharing is disabled; the serializer uses
	// the stamps to reference the original node records instead of
	// allocating placeholders.
	NodeRefs []int64
}

// CopyTags returns a shallow copy of the entity's tag map. The copy is never
// nil, so callers can add keys without guarding.
func (e *Entity) CopyTags() map[string]string {
	tags := make(map[string]string, len(e.Tags)+1)
	for k, v := range e.Tags {
		tags[k] = v
	}
	return tags
}
