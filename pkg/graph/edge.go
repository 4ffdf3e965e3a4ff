package graph

// Edge connects two vertices and carries its own payload. Endpoints are
// managed by the owning graph's container, not by the edge.
type Edge struct {
	payload Payload
	source  Payload
	target  Payload
	weight  float64
}

// DefaultWeight is assigned to edges added without an explicit weight.
const DefaultWeight = 1.0

// Name returns the edge name, derived from its payload.
func (e *Edge) Name() string { return payloadName(e.payload) }

// Payload returns the edge payload.
func (e *Edge) Payload() Payload { return e.payload }

// Source returns the source vertex payload.
func (e *Edge) Source() Payload { return e.source }

// Target returns the target vertex payload.
func (e *Edge) Target() Payload { return e.target }

// Weight returns the edge weight. Unweighted structures report
// DefaultWeight.
func (e *Edge) Weight() float64 { return e.weight }

// touches reports whether the edge is incident to the given vertex.
func (e *Edge) touches(v Payload) bool {
	return e.source == v || e.target == v
}

// other returns the opposite endpoint of v, treating the edge as
// undirected. For a self-loop it returns v.
func (e *Edge) other(v Payload) Payload {
	if e.source == v {
		return e.target
	}
	return e.source
}
