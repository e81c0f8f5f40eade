package layout

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/astlens/pkg/errors"
	"github.com/matzehuels/astlens/pkg/geom"
	"github.com/matzehuels/astlens/pkg/tree"
)

// DocumentVersion is the current layout document format.
const DocumentVersion = 1

// =============================================================================
// Document - Serialized Layout
// =============================================================================

// Document is the serialized form of a Result. Nodes are listed in arena
// (breadth-first) order; each node names its parent by index.
//
//	{
//	  "version": 1,
//	  "options": {"threshold": 3, "box_width": 140, ...},
//	  "bounds":  {"min_x": 20, "min_y": 20, "max_x": 512, "max_y": 300},
//	  "nodes": [
//	    {"type": "Program", "parent": -1, "strategy": "row", "x": 90, "y": 42, ...},
//	    {"type": "VarDecl", "label": "x", "parent": 0, "strategy": "leaf", ...}
//	  ]
//	}
type Document struct {
	Version int       `json:"version"`
	Options Options   `json:"options"`
	Bounds  Bounds    `json:"bounds"`
	Nodes   []DocNode `json:"nodes"`
}

// Bounds is the JSON form of a geom.Rect.
type Bounds struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// DocNode is one positioned node.
type DocNode struct {
	Type     string `json:"type"`
	Label    string `json:"label,omitempty"`
	Parent   int    `json:"parent"`
	Strategy string `json:"strategy"`
	Geometry
}

// Export converts a Result to its serialized form.
func Export(r *Result) Document {
	doc := Document{Version: DocumentVersion}
	if r == nil {
		doc.Options = DefaultOptions()
		return doc
	}
	b := r.Bounds()
	doc.Options = r.opts
	doc.Bounds = Bounds{MinX: b.MinX, MinY: b.MinY, MaxX: b.MaxX, MaxY: b.MaxY}
	doc.Nodes = make([]DocNode, len(r.entries))
	for i, e := range r.entries {
		doc.Nodes[i] = DocNode{
			Type:     e.node.Type,
			Label:    e.node.Label,
			Parent:   e.parent,
			Strategy: e.strategy.String(),
			Geometry: r.geo[i],
		}
	}
	return doc
}

// Import rebuilds a Result, including a fresh tree, from a Document.
//
// Import returns an INVALID_LAYOUT error if:
//   - The version is unknown or the options are invalid
//   - The first node is not a root (parent -1) or a later node is
//   - A parent index does not precede its child, or siblings are not contiguous
//   - A recorded strategy disagrees with the node's child count
//
// Bounds are recomputed from the node boxes rather than trusted.
func Import(doc Document) (*Result, error) {
	if doc.Version != DocumentVersion {
		return nil, errors.New(errors.ErrCodeInvalidLayout, "unsupported layout version %d", doc.Version)
	}
	opts := doc.Options
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	r := &Result{opts: opts}
	if len(doc.Nodes) == 0 {
		return r, nil
	}

	r.entries = make([]entry, len(doc.Nodes))
	r.geo = make([]Geometry, len(doc.Nodes))
	r.ids = make([]int, len(doc.Nodes))
	for i, dn := range doc.Nodes {
		switch {
		case i == 0 && dn.Parent != -1:
			return nil, errors.New(errors.ErrCodeInvalidLayout, "node 0 must be the root (parent -1)")
		case i > 0 && (dn.Parent < 0 || dn.Parent >= i):
			return nil, errors.New(errors.ErrCodeInvalidLayout, "node %d: parent %d out of order", i, dn.Parent)
		case i > 1 && dn.Parent < doc.Nodes[i-1].Parent:
			return nil, errors.New(errors.ErrCodeInvalidLayout, "node %d: siblings are not contiguous", i)
		}

		n := tree.Leaf(dn.Type, dn.Label)
		e := entry{node: n, parent: dn.Parent, first: len(doc.Nodes)}
		if dn.Parent >= 0 {
			p := &r.entries[dn.Parent]
			if p.count == 0 {
				p.first = i
			}
			p.count++
			p.node.Children = append(p.node.Children, n)
			e.depth = p.depth + 1
		}
		r.entries[i] = e
		r.geo[i] = dn.Geometry
		r.ids[i] = i
	}

	for i, dn := range doc.Nodes {
		want := opts.Strategy(r.entries[i].count)
		got, ok := ParseStrategy(dn.Strategy)
		if !ok || got != want {
			return nil, errors.New(errors.ErrCodeInvalidLayout,
				"node %d: strategy %q does not match %d children (want %s)", i, dn.Strategy, r.entries[i].count, want)
		}
		r.entries[i].strategy = got
	}

	r.bounds = r.ComputeBounds()
	return r, nil
}

// MarshalDocument serializes a Result to pretty-printed JSON bytes.
func MarshalDocument(r *Result) ([]byte, error) {
	return json.MarshalIndent(Export(r), "", "  ")
}

// UnmarshalDocument decodes JSON bytes and rebuilds the Result.
func UnmarshalDocument(data []byte) (*Result, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLayout, err, "unmarshal layout")
	}
	return Import(doc)
}

// WriteDocument encodes a Result as JSON to w.
func WriteDocument(r *Result, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Export(r)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadDocumentFile reads a layout document from a JSON file.
func ReadDocumentFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalDocument(data)
}

// Rect returns b as a geom.Rect.
func (b Bounds) Rect() geom.Rect {
	return geom.Rect{MinX: b.MinX, MinY: b.MinY, MaxX: b.MaxX, MaxY: b.MaxY}
}
