package planner

import (
	"testing"

	"github.com/matijazezelj/roadplan/internal/graph"
)

func scenarioGraph() *graph.Graph {
	g := graph.New()
	g.AddEdge("A", "B", 5)
	g.AddEdge("B", "C", 3)
	g.AddEdge("A", "C", 10)
	return g
}

func TestRender(t *testing.T) {
	g := scenarioGraph()
	g.AddEdge("X", "Y", 1)

	tests := []struct {
		name       string
		start, end string
		want       string
	}{
		{
			name: "detour beats direct road",
			start: "A", end: "C",
			want: "Route: A --> C (8 km):\nA --> B 5 km\nB --> C 3 km\n\n",
		},
		{
			name: "single leg",
			start: "A", end: "B",
			want: "Route: A --> B (5 km):\nA --> B 5 km\n\n",
		},
		{
			name: "start equals end",
			start: "B", end: "B",
			want: "Route: B --> B (0 km):\n\n",
		},
		{
			name: "unknown end",
			start: "A", end: "Z",
			want: "Route: A --> Z (No connection information)\n\n",
		},
		{
			name: "unknown start",
			start: "Z", end: "A",
			want: "Route: Z --> A (No connection information)\n\n",
		},
		{
			name: "unreachable",
			start: "A", end: "X",
			want: "Route: A --> X (Route cannot be determined)\n\n",
		},
		{
			name: "against road direction",
			start: "C", end: "A",
			want: "Route: C --> A (Route cannot be determined)\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := graph.ShortestPaths(g, tt.start)
			if got := Render(tt.start, tt.end, table, g); got != tt.want {
				t.Errorf("Render(%s, %s) =\n%q\nwant\n%q", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestRender_UnknownTakesPrecedence(t *testing.T) {
	g := scenarioGraph()
	// a nil table would also mean "unreachable"; the unknown check wins
	got := Render("A", "Q", nil, g)
	want := "Route: A --> Q (No connection information)\n\n"
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestRender_ParallelRoadsShowShortest(t *testing.T) {
	g := graph.New()
	g.AddEdge("A", "B", 9)
	g.AddEdge("A", "B", 4)

	got := Render("A", "B", graph.ShortestPaths(g, "A"), g)
	want := "Route: A --> B (4 km):\nA --> B 4 km\n\n"
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}
