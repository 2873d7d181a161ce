package flex

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/wegman-software/osmgeom/internal/osmxml"
)

// TagTransform runs a user-supplied Lua script against element tags before
// indexing. The script must define
//
//	function transform_tags(kind, tags)
//
// where kind is "node", "way" or "relation" and tags is a table. Returning a
// table replaces the element's tags; returning nil keeps them unchanged.
type TagTransform struct {
	mu    sync.Mutex
	state *lua.LState
	fn    lua.LValue
}

// NewTagTransform loads and validates a transform script.
func NewTagTransform(path string) (*TagTransform, error) {
	state := lua.NewState()
	if err := state.DoFile(path); err != nil {
		state.Close()
		return nil, fmt.Errorf("failed to load tag transform script: %w", err)
	}

	fn := state.GetGlobal("transform_tags")
	if fn == lua.LNil {
		state.Close()
		return nil, fmt.Errorf("script %s does not define transform_tags(kind, tags)", path)
	}

	return &TagTransform{state: state, fn: fn}, nil
}

// Close releases the Lua state.
func (t *TagTransform) Close() {
	t.state.Close()
}

// Apply runs the script for one element. The Lua state is single-threaded,
// so calls are serialized.
func (t *TagTransform) Apply(kind string, tags map[string]string) (map[string]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tbl := t.state.NewTable()
	for k, v := range tags {
		tbl.RawSetString(k, lua.LString(v))
	}

	err := t.state.CallByParam(lua.P{
		Fn:      t.fn,
		NRet:    1,
		Protect: true,
	}, lua.LString(kind), tbl)
	if err != nil {
		return nil, fmt.Errorf("transform_tags failed: %w", err)
	}

	ret := t.state.Get(-1)
	t.state.Pop(1)

	result, ok := ret.(*lua.LTable)
	if !ok {
		return tags, nil
	}

	out := make(map[string]string)
	result.ForEach(func(k, v lua.LValue) {
		out[k.String()] = v.String()
	})
	return out, nil
}

// ApplyToDocument rewrites the tags of every element in place.
func (t *TagTransform) ApplyToDocument(doc *osmxml.Document) error {
	for i := range doc.Nodes {
		tags, err := t.Apply("node", osmxml.TagMap(doc.Nodes[i].Tags))
		if err != nil {
			return err
		}
		doc.Nodes[i].Tags = osmxml.TagList(tags)
	}
	for i := range doc.Ways {
		tags, err := t.Apply("way", osmxml.TagMap(doc.Ways[i].Tags))
		if err != nil {
			return err
		}
		doc.Ways[i].Tags = osmxml.TagList(tags)
	}
	for i := range doc.Relations {
		tags, err := t.Apply("relation", osmxml.TagMap(doc.Relations[i].Tags))
		if err != nil {
			return err
		}
		doc.Relations[i].Tags = osmxml.TagList(tags)
	}
	return nil
}
