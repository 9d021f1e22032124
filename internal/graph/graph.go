package graph

import (
	"cmp"
	"slices"

	"github.com/matijazezelj/roadplan/pkg/models"
)

// Graph is a directed road network keyed by location ID.
// Outgoing roads of each location are kept ordered by destination, then
// distance. Parallel roads with different distances are all retained; an
// exact duplicate is stored once.
type Graph struct {
	adjacency map[string][]models.Road
	roads     int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{adjacency: make(map[string][]models.Road)}
}

// AddEdge inserts a road from source to destination and makes sure both
// locations exist, even if destination has no outgoing roads.
func (g *Graph) AddEdge(source, destination string, distance int) {
	if _, ok := g.adjacency[destination]; !ok {
		g.adjacency[destination] = nil
	}

	road := models.Road{From: source, To: destination, Distance: distance}
	roads := g.adjacency[source]
	i, found := slices.BinarySearchFunc(roads, road, compareRoads)
	if found {
		return
	}
	g.adjacency[source] = slices.Insert(roads, i, road)
	g.roads++
}

// Neighbors returns the outgoing roads of node. The result is empty for
// locations without outgoing roads and for unknown locations. Callers must
// not modify the returned slice.
func (g *Graph) Neighbors(node string) []models.Road {
	return g.adjacency[node]
}

// HasNode reports whether id is a location of the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.adjacency[id]
	return ok
}

// Nodes returns all location IDs in lexicographic order.
func (g *Graph) Nodes() []string {
	ids := make([]string, 0, len(g.adjacency))
	for id := range g.adjacency {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Roads returns every road ordered by source, destination and distance.
func (g *Graph) Roads() []models.Road {
	all := make([]models.Road, 0, g.roads)
	for _, id := range g.Nodes() {
		all = append(all, g.adjacency[id]...)
	}
	return all
}

// NodeCount returns the number of locations.
func (g *Graph) NodeCount() int {
	return len(g.adjacency)
}

// RoadCount returns the number of distinct roads.
func (g *Graph) RoadCount() int {
	return g.roads
}

func compareRoads(a, b models.Road) int {
	if c := cmp.Compare(a.To, b.To); c != 0 {
		return c
	}
	return cmp.Compare(a.Distance, b.Distance)
}
