// Package graph provides a structural index over the datakit record model.
// A graph is fixed at construction to one of seven closed topology variants
// and to a data model that decides whether vertices and edges carry cells
// or records. Content hashing gives duplicate-edge suppression; traversal
// and tabular projection are built on a small in-memory container.
package graph

import (
	"errors"
	"fmt"

	"github.com/cordata/datakit/pkg/cell"
	"github.com/cordata/datakit/pkg/record"
)

// Sentinel errors.
var (
	// ErrModelMismatch is returned when an operation's payload kind
	// disagrees with the graph's fixed data model. This is a caller
	// contract violation, not a recoverable condition.
	ErrModelMismatch = errors.New("graph: payload kind does not match data model")

	// ErrNotFound is returned when a vertex or edge lookup fails.
	ErrNotFound = errors.New("graph: not found")

	// ErrEdgeExists is returned when a structure that forbids parallel
	// edges already holds an edge between the given endpoints.
	ErrEdgeExists = errors.New("graph: parallel edge not allowed")

	// ErrSelfLoop is returned when a structure that forbids self-loops is
	// asked to connect a vertex to itself.
	ErrSelfLoop = errors.New("graph: self-loop not allowed")
)

// Structure selects one of the closed set of topology variants.
type Structure int

// Topology variants.
const (
	Simple Structure = iota
	SimpleWeighted
	SimpleDirected
	SimpleDirectedWeighted
	Multi
	DirectedPseudo
	DirectedWeightedPseudo
)

var structureNames = map[Structure]string{
	Simple:                 "SimpleGraph",
	SimpleWeighted:         "SimpleWeightedGraph",
	SimpleDirected:         "SimpleDirectedGraph",
	SimpleDirectedWeighted: "SimpleDirectedWeightedGraph",
	Multi:                  "MultiGraph",
	DirectedPseudo:         "DirectedPseudograph",
	DirectedWeightedPseudo: "DirectedWeightedPseudograph",
}

// String returns the stable name of the structure, used in content hashing.
func (s Structure) String() string {
	if n, ok := structureNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Structure(%d)", int(s))
}

// ParseStructure converts a structure name back to a Structure.
func ParseStructure(s string) (Structure, error) {
	for st, n := range structureNames {
		if n == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("graph: unknown structure %q", s)
}

// Directed reports whether edges have direction.
func (s Structure) Directed() bool {
	switch s {
	case SimpleDirected, SimpleDirectedWeighted, DirectedPseudo, DirectedWeightedPseudo:
		return true
	}
	return false
}

// Weighted reports whether edges carry meaningful weights.
func (s Structure) Weighted() bool {
	switch s {
	case SimpleWeighted, SimpleDirectedWeighted, DirectedWeightedPseudo:
		return true
	}
	return false
}

// AllowsParallel reports whether two edges may share the same endpoints.
func (s Structure) AllowsParallel() bool {
	switch s {
	case Multi, DirectedPseudo, DirectedWeightedPseudo:
		return true
	}
	return false
}

// AllowsLoops reports whether an edge may connect a vertex to itself.
func (s Structure) AllowsLoops() bool {
	return s == DirectedPseudo || s == DirectedWeightedPseudo
}

// DataModel fixes the payload kinds of a graph's vertices and edges.
type DataModel int

// Data models: the first word is the vertex kind, the second the edge kind.
const (
	// ItemItem graphs connect cells with cell-typed edges.
	ItemItem DataModel = iota

	// DocItem graphs connect records with cell-typed edges.
	DocItem

	// DocDoc graphs connect records with record-typed edges.
	DocDoc
)

var dataModelNames = map[DataModel]string{
	ItemItem: "ItemItem",
	DocItem:  "DocItem",
	DocDoc:   "DocDoc",
}

// String returns the stable name of the data model, used in content hashing.
func (m DataModel) String() string {
	if n, ok := dataModelNames[m]; ok {
		return n
	}
	return fmt.Sprintf("DataModel(%d)", int(m))
}

// ParseDataModel converts a data model name back to a DataModel.
func ParseDataModel(s string) (DataModel, error) {
	for m, n := range dataModelNames {
		if n == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("graph: unknown data model %q", s)
}

// Kind is one of the two concrete payload kinds.
type Kind int

// Payload kinds.
const (
	KindItem Kind = iota
	KindDoc
)

// VertexKind returns the payload kind of the model's vertices.
func (m DataModel) VertexKind() Kind {
	if m == ItemItem {
		return KindItem
	}
	return KindDoc
}

// EdgeKind returns the payload kind of the model's edge payloads.
func (m DataModel) EdgeKind() Kind {
	if m == DocDoc {
		return KindDoc
	}
	return KindItem
}

// Payload is the sealed sum type over the two payload kinds. Wrap a cell in
// Item or a record in Doc to pass it into graph operations.
type Payload interface {
	graphPayload()
}

// Item wraps a cell as a graph payload.
type Item struct {
	*cell.Cell
}

func (Item) graphPayload() {}

// Doc wraps a record as a graph payload.
type Doc struct {
	*record.Record
}

func (Doc) graphPayload() {}

// kindOf returns the concrete kind of a payload.
func kindOf(p Payload) Kind {
	if _, ok := p.(Item); ok {
		return KindItem
	}
	return KindDoc
}

// payloadName returns the payload's name.
func payloadName(p Payload) string {
	switch v := p.(type) {
	case Item:
		return v.Cell.Name()
	case Doc:
		return v.Record.Name()
	}
	return ""
}

// payloadHash returns the payload's content hash. Record hashes exclude
// features, matching identity derivation elsewhere.
func payloadHash(p Payload) (string, error) {
	switch v := p.(type) {
	case Item:
		return v.Cell.ContentHash()
	case Doc:
		return v.Record.ContentHash(false)
	}
	return "", fmt.Errorf("%w: unknown payload %T", ErrModelMismatch, p)
}
