package graph

import (
	"math"
	"slices"

	"github.com/tidwall/btree"
)

// Infinity is the distance of a location not reachable from the start.
const Infinity = math.MaxInt

// DistanceTable holds the best known distance and predecessor of every
// location for one start location.
type DistanceTable struct {
	dist map[string]int
	pred map[string]string
}

// Distance returns the shortest distance to id. ok is false when id is
// unreachable or not covered by the table.
func (t *DistanceTable) Distance(id string) (d int, ok bool) {
	d, found := t.dist[id]
	if !found || d == Infinity {
		return Infinity, false
	}
	return d, true
}

// Predecessor returns the location preceding id on its shortest path, or ""
// for the start and for unreachable locations.
func (t *DistanceTable) Predecessor(id string) string {
	return t.pred[id]
}

// Reachable reports whether id has a finite distance.
func (t *DistanceTable) Reachable(id string) bool {
	_, ok := t.Distance(id)
	return ok
}

// PathTo walks predecessor links back from end and returns the route from
// the start location to end. It returns nil when end is unreachable.
func (t *DistanceTable) PathTo(end string) []string {
	if !t.Reachable(end) {
		return nil
	}
	var path []string
	for cur := end; cur != ""; cur = t.pred[cur] {
		path = append(path, cur)
		if len(path) > len(t.dist) {
			// predecessor cycle; cannot happen with non-negative distances
			return nil
		}
	}
	slices.Reverse(path)
	return path
}

// frontierEntry is a candidate (distance, location) pair awaiting extraction.
type frontierEntry struct {
	dist int
	node string
}

func frontierLess(a, b frontierEntry) bool {
	if a.dist != b.dist {
		return a.dist < b.dist
	}
	return a.node < b.node
}

// ShortestPaths runs Dijkstra's algorithm from start over g.
//
// The frontier is an ordered set of (distance, location) pairs; equal
// distances are extracted in lexicographic order of the location ID, which
// makes predecessor choices reproducible. Superseded entries are left in
// the frontier and relax nothing when extracted. A sum that would exceed
// Infinity saturates, leaving the target unreachable through that road.
// Distances are undefined for graphs with negative road lengths.
func ShortestPaths(g *Graph, start string) *DistanceTable {
	t := &DistanceTable{
		dist: make(map[string]int, g.NodeCount()),
		pred: make(map[string]string, g.NodeCount()),
	}
	for id := range g.adjacency {
		t.dist[id] = Infinity
		t.pred[id] = ""
	}
	if _, ok := t.dist[start]; ok {
		t.dist[start] = 0
	}

	frontier := btree.NewBTreeGOptions(frontierLess, btree.Options{NoLocks: true})
	frontier.Set(frontierEntry{dist: 0, node: start})

	for frontier.Len() > 0 {
		cur, _ := frontier.PopMin()
		if !g.HasNode(cur.node) {
			break
		}
		base := t.dist[cur.node]
		for _, road := range g.Neighbors(cur.node) {
			candidate := Infinity
			if road.Distance < Infinity-base {
				candidate = base + road.Distance
			}
			if candidate < t.dist[road.To] {
				t.dist[road.To] = candidate
				t.pred[road.To] = cur.node
				frontier.Set(frontierEntry{dist: candidate, node: road.To})
			}
		}
	}

	return t
}
