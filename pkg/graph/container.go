package graph

import (
	"crypto/sha256"
	"fmt"
	"iter"

	"github.com/cordata/datakit/pkg/cell"
	"github.com/cordata/datakit/pkg/encoding"
	"github.com/cordata/datakit/pkg/record"
)

// Graph is a named vertex/edge container with a fixed structure and data
// model. Vertices keep insertion order; edges keep insertion order and
// carry weights. Identity of a vertex is the identity of its wrapped
// pointer: adding the same cell or record twice is a no-op.
//
// A Graph is not safe for concurrent mutation. Two goroutines calling
// AddEdgeUnique concurrently can both pass the duplicate check.
type Graph struct {
	name      string
	structure Structure
	model     DataModel
	vertices  []Payload
	present   map[Payload]bool
	edges     []*Edge
	features  map[string]string
}

// New creates an empty graph. Structure and data model are fixed for the
// graph's lifetime.
func New(name string, structure Structure, model DataModel) *Graph {
	return &Graph{
		name:      name,
		structure: structure,
		model:     model,
		present:   make(map[Payload]bool),
	}
}

// Name returns the graph name.
func (g *Graph) Name() string { return g.name }

// Structure returns the fixed topology variant.
func (g *Graph) Structure() Structure { return g.structure }

// Model returns the fixed data model.
func (g *Graph) Model() DataModel { return g.model }

// Feature returns a feature value, or "" when unset.
func (g *Graph) Feature(name string) string { return g.features[name] }

// SetFeature sets a feature value.
func (g *Graph) SetFeature(name, value string) {
	if g.features == nil {
		g.features = make(map[string]string)
	}
	g.features[name] = value
}

// Flag reports whether a feature is set to the canonical true value.
func (g *Graph) Flag(name string) bool { return g.features[name] == cell.FlagTrue }

// SetFlag sets a feature to the canonical true value.
func (g *Graph) SetFlag(name string) { g.SetFeature(name, cell.FlagTrue) }

// ContentHash returns a digest over the graph's name, data model, and
// structure, encoded like every other datakit content hash.
func (g *Graph) ContentHash() (string, error) {
	h := sha256.New()
	for _, part := range []string{g.name, g.model.String(), g.structure.String()} {
		if _, err := h.Write([]byte(part)); err != nil {
			return "", fmt.Errorf("%w: %v", record.ErrHashUnavailable, err)
		}
	}
	return encoding.RawURLData(h.Sum(nil)).String(), nil
}

// checkVertex validates a vertex payload against the data model.
func (g *Graph) checkVertex(p Payload) error {
	if kindOf(p) != g.model.VertexKind() {
		return fmt.Errorf("%w: %s vertices require %v payloads",
			ErrModelMismatch, g.model, g.model.VertexKind())
	}
	return nil
}

// checkEdgePayload validates an edge payload against the data model.
func (g *Graph) checkEdgePayload(p Payload) error {
	if kindOf(p) != g.model.EdgeKind() {
		return fmt.Errorf("%w: %s edges require %v payloads",
			ErrModelMismatch, g.model, g.model.EdgeKind())
	}
	return nil
}

// AddVertex inserts a vertex. Inserting an already present vertex is a
// no-op.
func (g *Graph) AddVertex(p Payload) error {
	if err := g.checkVertex(p); err != nil {
		return err
	}
	if g.present[p] {
		return nil
	}
	g.present[p] = true
	g.vertices = append(g.vertices, p)
	return nil
}

// HasVertex reports whether the vertex is present.
func (g *Graph) HasVertex(p Payload) bool { return g.present[p] }

// RemoveVertex deletes a vertex and every incident edge.
func (g *Graph) RemoveVertex(p Payload) error {
	if err := g.checkVertex(p); err != nil {
		return err
	}
	if !g.present[p] {
		return fmt.Errorf("%w: vertex %q", ErrNotFound, payloadName(p))
	}
	delete(g.present, p)
	for i, v := range g.vertices {
		if v == p {
			g.vertices = append(g.vertices[:i], g.vertices[i+1:]...)
			break
		}
	}
	kept := g.edges[:0]
	for _, e := range g.edges {
		if !e.touches(p) {
			kept = append(kept, e)
		}
	}
	g.edges = kept
	return nil
}

// VertexCount returns the number of vertices.
func (g *Graph) VertexCount() int { return len(g.vertices) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Vertices iterates over the vertices in insertion order.
func (g *Graph) Vertices() iter.Seq[Payload] {
	return func(yield func(Payload) bool) {
		for _, v := range g.vertices {
			if !yield(v) {
				return
			}
		}
	}
}

// Edges iterates over the edges in insertion order.
func (g *Graph) Edges() iter.Seq[*Edge] {
	return func(yield func(*Edge) bool) {
		for _, e := range g.edges {
			if !yield(e) {
				return
			}
		}
	}
}

// AddEdge connects src to dst with the given payload and the default
// weight. Absent endpoints are added first. The structure's loop and
// parallel-edge policies apply.
func (g *Graph) AddEdge(src, dst, payload Payload) (*Edge, error) {
	return g.AddWeightedEdge(src, dst, payload, DefaultWeight)
}

// AddWeightedEdge connects src to dst with an explicit weight.
func (g *Graph) AddWeightedEdge(src, dst, payload Payload, weight float64) (*Edge, error) {
	if err := g.checkEdgePayload(payload); err != nil {
		return nil, err
	}
	if src == dst && !g.structure.AllowsLoops() {
		return nil, fmt.Errorf("%w: vertex %q", ErrSelfLoop, payloadName(src))
	}
	if !g.structure.AllowsParallel() && g.connected(src, dst) {
		return nil, fmt.Errorf("%w: %q -> %q", ErrEdgeExists, payloadName(src), payloadName(dst))
	}
	if err := g.AddVertex(src); err != nil {
		return nil, err
	}
	if err := g.AddVertex(dst); err != nil {
		return nil, err
	}
	e := &Edge{payload: payload, source: src, target: dst, weight: weight}
	g.edges = append(g.edges, e)
	return e, nil
}

// connected reports whether any edge already joins src and dst, honoring
// direction only for directed structures.
func (g *Graph) connected(src, dst Payload) bool {
	for _, e := range g.edges {
		if e.source == src && e.target == dst {
			return true
		}
		if !g.structure.Directed() && e.source == dst && e.target == src {
			return true
		}
	}
	return false
}

// AddEdgeUnique inserts an edge only if no existing edge matches by
// content: the candidate's payload hash plus the endpoint hash pair,
// compared in both orientations. It returns the inserted edge and true, or
// nil and false when a duplicate suppressed the insert.
//
// The scan is O(E) per insertion. That is acceptable for small and medium
// graphs and is kept deliberately: replacing it would change the observable
// tie-break behavior on hash collisions.
func (g *Graph) AddEdgeUnique(src, dst, payload Payload) (*Edge, bool, error) {
	return g.AddWeightedEdgeUnique(src, dst, payload, DefaultWeight)
}

// AddWeightedEdgeUnique is AddEdgeUnique with an explicit weight.
func (g *Graph) AddWeightedEdgeUnique(src, dst, payload Payload, weight float64) (*Edge, bool, error) {
	if err := g.checkEdgePayload(payload); err != nil {
		return nil, false, err
	}
	ph, err := payloadHash(payload)
	if err != nil {
		return nil, false, err
	}
	sh, err := payloadHash(src)
	if err != nil {
		return nil, false, err
	}
	dh, err := payloadHash(dst)
	if err != nil {
		return nil, false, err
	}
	for _, e := range g.edges {
		eph, err := payloadHash(e.payload)
		if err != nil {
			return nil, false, err
		}
		if eph != ph {
			continue
		}
		esh, err := payloadHash(e.source)
		if err != nil {
			return nil, false, err
		}
		eth, err := payloadHash(e.target)
		if err != nil {
			return nil, false, err
		}
		if (esh == sh && eth == dh) || (esh == dh && eth == sh) {
			return nil, false, nil
		}
	}
	e, err := g.AddWeightedEdge(src, dst, payload, weight)
	if err != nil {
		return nil, false, err
	}
	return e, true, nil
}

// RemoveEdge deletes one edge.
func (g *Graph) RemoveEdge(e *Edge) error {
	for i, have := range g.edges {
		if have == e {
			g.edges = append(g.edges[:i], g.edges[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: edge %q", ErrNotFound, e.Name())
}

// EdgesOf returns the edges incident to a vertex, in insertion order.
func (g *Graph) EdgesOf(p Payload) []*Edge {
	var out []*Edge
	for _, e := range g.edges {
		if e.touches(p) {
			out = append(out, e)
		}
	}
	return out
}

// Degree returns the number of incident edges; a self-loop counts twice.
func (g *Graph) Degree(p Payload) int {
	n := 0
	for _, e := range g.edges {
		if e.source == p {
			n++
		}
		if e.target == p {
			n++
		}
	}
	return n
}

// Neighbors returns the vertices adjacent to p in edge insertion order,
// without duplicates. For directed structures only outgoing edges are
// followed.
func (g *Graph) Neighbors(p Payload) []Payload {
	var out []Payload
	seen := make(map[Payload]bool)
	for _, e := range g.edges {
		var next Payload
		switch {
		case e.source == p:
			next = e.target
		case e.target == p && !g.structure.Directed():
			next = e.source
		default:
			continue
		}
		if !seen[next] {
			seen[next] = true
			out = append(out, next)
		}
	}
	return out
}
