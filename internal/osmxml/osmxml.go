package osmxml

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
)

// Schema constants written to the root element.
const (
	SchemaVersion = "0.6"
	Generator     = "osmgeom"
)

// Action values carried by the optional action attribute.
const (
	ActionModify = "modify"
	ActionDelete = "delete"
)

// Tag is one k/v pair attached to a node, way or relation.
type Tag struct {
	K string `xml:"k,attr"`
	V string `xml:"v,attr"`
}

// Node is a single tagged coordinate.
type Node struct {
	ID      int64   `xml:"id,attr"`
	Lon     float64 `xml:"lon,attr"`
	Lat     float64 `xml:"lat,attr"`
	Version int     `xml:"version,attr,omitempty"`
	Action  string  `xml:"action,attr,omitempty"`
	Tags    []Tag   `xml:"tag"`
}

// NodeRef is an ordered reference from a way to a node.
type NodeRef struct {
	Ref int64 `xml:"ref,attr"`
}

// Way is an ordered list of node references.
type Way struct {
	ID      int64     `xml:"id,attr"`
	Version int       `xml:"version,attr,omitempty"`
	Action  string    `xml:"action,attr,omitempty"`
	Refs    []NodeRef `xml:"nd"`
	Tags    []Tag     `xml:"tag"`
}

// Member references a node, way or relation from a relation, with an
// optional free-form role.
type Member struct {
	Type string `xml:"type,attr"`
	Ref  int64  `xml:"ref,attr"`
	Role string `xml:"role,attr"`
}

// Relation groups members into a composite feature.
type Relation struct {
	ID      int64    `xml:"id,attr"`
	Version int      `xml:"version,attr,omitempty"`
	Action  string   `xml:"action,attr,omitempty"`
	Members []Member `xml:"member"`
	Tags    []Tag    `xml:"tag"`
}

// Document is a fully materialized OSM XML document.
type Document struct {
	XMLName   xml.Name   `xml:"osm"`
	Version   string     `xml:"version,attr"`
	Generator string     `xml:"generator,attr"`
	Nodes     []Node     `xml:"node"`
	Ways      []Way      `xml:"way"`
	Relations []Relation `xml:"relation"`
}

// NewDocument returns an empty document with the schema version and
// generator attributes set.
func NewDocument() *Document {
	return &Document{
		Version:   SchemaVersion,
		Generator: Generator,
	}
}

// Parse decodes an OSM XML document. Malformed markup and malformed numeric
// attributes (non-numeric id, ref, version, lat, lon) fail here, before any
// indexing happens.
func Parse(r io.Reader) (*Document, error) {
	doc := &Document{}
	if err := xml.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("failed to parse OSM document: %w", err)
	}
	return doc, nil
}

// WriteTo serializes the document as indented XML with a standard header.
func (d *Document) WriteTo(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("failed to encode OSM document: %w", err)
	}
	return enc.Close()
}

// TagMap converts a tag list to a map. Later duplicates win, matching the
// usual reading of duplicate keys in OSM XML.
func TagMap(tags []Tag) map[string]string {
	if len(tags) == 0 {
		return nil
	}
	m := make(map[string]string, len(tags))
	for _, t := range tags {
		m[t.K] = t.V
	}
	return m
}

// TagList converts a tag map to a list sorted by key, so serialized output
// is deterministic.
func TagList(tags map[string]string) []Tag {
	if len(tags) == 0 {
		return nil
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	list := make([]Tag, 0, len(keys))
	for _, k := range keys {
		list = append(list, Tag{K: k, V: tags[k]})
	}
	return list
}
