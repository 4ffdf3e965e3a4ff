package graph

import "iter"

// DFS iterates vertices depth-first. With a non-nil start the traversal is
// rooted there; with a nil start every vertex is visited, seeding each
// unvisited component in vertex insertion order. Directed structures follow
// outgoing edges only.
func (g *Graph) DFS(start Payload) iter.Seq[Payload] {
	return func(yield func(Payload) bool) {
		visited := make(map[Payload]bool)
		var walk func(v Payload) bool
		walk = func(v Payload) bool {
			if visited[v] {
				return true
			}
			visited[v] = true
			if !yield(v) {
				return false
			}
			for _, next := range g.Neighbors(v) {
				if !walk(next) {
					return false
				}
			}
			return true
		}
		for _, root := range g.roots(start) {
			if !walk(root) {
				return
			}
		}
	}
}

// BFS iterates vertices breadth-first; the start semantics match DFS.
func (g *Graph) BFS(start Payload) iter.Seq[Payload] {
	return func(yield func(Payload) bool) {
		visited := make(map[Payload]bool)
		for _, root := range g.roots(start) {
			if visited[root] {
				continue
			}
			visited[root] = true
			queue := []Payload{root}
			for len(queue) > 0 {
				v := queue[0]
				queue = queue[1:]
				if !yield(v) {
					return
				}
				for _, next := range g.Neighbors(v) {
					if !visited[next] {
						visited[next] = true
						queue = append(queue, next)
					}
				}
			}
		}
	}
}

// roots returns the traversal seeds: the start vertex when given and
// present, otherwise every vertex in insertion order.
func (g *Graph) roots(start Payload) []Payload {
	if start != nil {
		if !g.present[start] {
			return nil
		}
		return []Payload{start}
	}
	return g.vertices
}
