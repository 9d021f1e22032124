package graph

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

func TestShortestPaths_PrefersCheaperDetour(t *testing.T) {
	g := New()
	g.AddEdge("A", "B", 5)
	g.AddEdge("B", "C", 3)
	g.AddEdge("A", "C", 10)

	table := ShortestPaths(g, "A")
	if d, ok := table.Distance("C"); !ok || d != 8 {
		t.Errorf("Distance(C) = %d, %v; want 8, true", d, ok)
	}
	if diff := cmp.Diff([]string{"A", "B", "C"}, table.PathTo("C")); diff != "" {
		t.Errorf("PathTo(C) mismatch (-want +got):\n%s", diff)
	}
}

func TestShortestPaths_StartIsZero(t *testing.T) {
	g := New()
	g.AddEdge("A", "B", 5)

	table := ShortestPaths(g, "A")
	if d, ok := table.Distance("A"); !ok || d != 0 {
		t.Errorf("Distance(A) = %d, %v; want 0, true", d, ok)
	}
	if p := table.Predecessor("A"); p != "" {
		t.Errorf("Predecessor(A) = %q, want none", p)
	}
	if diff := cmp.Diff([]string{"A"}, table.PathTo("A")); diff != "" {
		t.Errorf("PathTo(A) mismatch (-want +got):\n%s", diff)
	}
}

func TestShortestPaths_Unreachable(t *testing.T) {
	g := New()
	g.AddEdge("A", "B", 1)
	g.AddEdge("C", "D", 1)

	table := ShortestPaths(g, "A")
	if table.Reachable("C") {
		t.Error("C should be unreachable from A")
	}
	if table.Reachable("D") {
		t.Error("D should be unreachable from A")
	}
	if d, _ := table.Distance("D"); d != Infinity {
		t.Errorf("Distance(D) = %d, want Infinity", d)
	}
	if p := table.Predecessor("D"); p != "" {
		t.Errorf("Predecessor(D) = %q, want none", p)
	}
	if table.PathTo("D") != nil {
		t.Errorf("PathTo(D) = %v, want nil", table.PathTo("D"))
	}
}

func TestShortestPaths_DirectionMatters(t *testing.T) {
	g := New()
	g.AddEdge("A", "B", 1)

	table := ShortestPaths(g, "B")
	if table.Reachable("A") {
		t.Error("A must not be reachable from B over a one-way road")
	}
}

func TestShortestPaths_StartMissing(t *testing.T) {
	g := New()
	g.AddEdge("A", "B", 1)

	table := ShortestPaths(g, "Z")
	if table.Reachable("Z") {
		t.Error("a start outside the graph is not in the table")
	}
	if table.Reachable("A") || table.Reachable("B") {
		t.Error("nothing is reachable from a start outside the graph")
	}
}

func TestShortestPaths_ParallelRoadsUseMinimum(t *testing.T) {
	g := New()
	g.AddEdge("A", "B", 9)
	g.AddEdge("A", "B", 2)
	g.AddEdge("A", "B", 6)

	table := ShortestPaths(g, "A")
	if d, _ := table.Distance("B"); d != 2 {
		t.Errorf("Distance(B) = %d, want 2", d)
	}
}

func TestShortestPaths_TieBreakByNodeID(t *testing.T) {
	g := New()
	g.AddEdge("A", "Z", 1)
	g.AddEdge("A", "Y", 1)
	g.AddEdge("Z", "D", 1)
	g.AddEdge("Y", "D", 1)

	// Y and Z are both at distance 1; Y is extracted first and claims D.
	table := ShortestPaths(g, "A")
	if p := table.Predecessor("D"); p != "Y" {
		t.Errorf("Predecessor(D) = %q, want Y", p)
	}

	for range 20 {
		again := ShortestPaths(g, "A")
		if p := again.Predecessor("D"); p != "Y" {
			t.Fatalf("Predecessor(D) changed between runs: %q", p)
		}
	}
}

func TestShortestPaths_ZeroWeights(t *testing.T) {
	g := New()
	g.AddEdge("A", "B", 0)
	g.AddEdge("B", "C", 0)
	g.AddEdge("A", "C", 1)

	table := ShortestPaths(g, "A")
	if d, _ := table.Distance("C"); d != 0 {
		t.Errorf("Distance(C) = %d, want 0", d)
	}
	if diff := cmp.Diff([]string{"A", "B", "C"}, table.PathTo("C")); diff != "" {
		t.Errorf("PathTo(C) mismatch (-want +got):\n%s", diff)
	}
}

func TestShortestPaths_Cycle(t *testing.T) {
	g := New()
	g.AddEdge("A", "B", 1)
	g.AddEdge("B", "C", 1)
	g.AddEdge("C", "A", 1)
	g.AddEdge("C", "D", 4)

	table := ShortestPaths(g, "A")
	if d, _ := table.Distance("D"); d != 6 {
		t.Errorf("Distance(D) = %d, want 6", d)
	}
}

func TestShortestPaths_Idempotent(t *testing.T) {
	g := randomGraph(rand.New(rand.NewSource(7)), 12, 40, 20)
	for _, start := range g.Nodes() {
		first := ShortestPaths(g, start)
		second := ShortestPaths(g, start)
		if diff := cmp.Diff(first.dist, second.dist); diff != "" {
			t.Fatalf("distances differ from %s (-first +second):\n%s", start, diff)
		}
		if diff := cmp.Diff(first.pred, second.pred); diff != "" {
			t.Fatalf("predecessors differ from %s (-first +second):\n%s", start, diff)
		}
	}
}

func TestShortestPaths_SaturatesInsteadOfOverflowing(t *testing.T) {
	half := math.MaxInt/2 + 1
	g := New()
	g.AddEdge("A", "B", half)
	g.AddEdge("B", "C", half)
	g.AddEdge("A", "M", math.MaxInt)

	table := ShortestPaths(g, "A")
	if d, ok := table.Distance("B"); !ok || d != half {
		t.Errorf("Distance(B) = %d, %v; want %d, true", d, ok, half)
	}
	if d, ok := table.Distance("C"); ok {
		t.Errorf("Distance(C) = %d; the sum overflows and C must stay unreachable", d)
	}
	if table.Reachable("M") {
		t.Error("a road of length Infinity must not make M reachable")
	}
}

func TestShortestPaths_LongestAcceptedRoads(t *testing.T) {
	g := New()
	g.AddEdge("A", "B", MaxDistance)
	g.AddEdge("B", "C", MaxDistance)
	g.AddEdge("C", "D", MaxDistance)

	want := 3 * MaxDistance
	if d, ok := ShortestPaths(g, "A").Distance("D"); !ok || d != want {
		t.Errorf("Distance(D) = %d, %v; want %d, true", d, ok, want)
	}
}

func TestShortestPaths_TableCoversEveryNode(t *testing.T) {
	g := randomGraph(rand.New(rand.NewSource(3)), 10, 15, 9)
	table := ShortestPaths(g, g.Nodes()[0])
	for _, id := range g.Nodes() {
		if _, ok := table.dist[id]; !ok {
			t.Errorf("node %s missing from distance table", id)
		}
	}
}

func TestShortestPaths_PredecessorChainsAreTight(t *testing.T) {
	g := randomGraph(rand.New(rand.NewSource(11)), 15, 60, 30)
	for _, start := range g.Nodes() {
		table := ShortestPaths(g, start)
		for _, id := range g.Nodes() {
			if !table.Reachable(id) || id == start {
				continue
			}
			p := table.Predecessor(id)
			dp, _ := table.Distance(p)
			di, _ := table.Distance(id)
			tight := false
			for _, r := range g.Neighbors(p) {
				if r.To == id && dp+r.Distance == di {
					tight = true
					break
				}
			}
			if !tight {
				t.Errorf("from %s: no road %s->%s realizes distance %d", start, p, id, di)
			}
			route := table.PathTo(id)
			if route[0] != start || route[len(route)-1] != id {
				t.Errorf("from %s: PathTo(%s) = %v", start, id, route)
			}
		}
	}
}

// TestShortestPaths_BruteForce compares against exhaustive enumeration of
// simple paths on small graphs.
func TestShortestPaths_BruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := range 30 {
		g := randomGraph(rng, 6, 14, 10)
		for _, start := range g.Nodes() {
			table := ShortestPaths(g, start)
			want := bruteForceDistances(g, start)
			for _, id := range g.Nodes() {
				got, ok := table.Distance(id)
				w, reachable := want[id]
				if ok != reachable {
					t.Fatalf("trial %d: reachability of %s from %s = %v, want %v", trial, id, start, ok, reachable)
				}
				if ok && got != w {
					t.Fatalf("trial %d: Distance(%s) from %s = %d, want %d", trial, id, start, got, w)
				}
			}
		}
	}
}

// TestShortestPaths_MatchesGonum cross-checks distances on larger graphs
// against gonum's Dijkstra.
func TestShortestPaths_MatchesGonum(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for trial := range 10 {
		g := randomGraph(rng, 40, 200, 100)

		ids := make(map[string]int64)
		ref := simple.NewWeightedDirectedGraph(0, math.Inf(1))
		for i, id := range g.Nodes() {
			ids[id] = int64(i)
			ref.AddNode(simple.Node(i))
		}
		for _, r := range g.Roads() {
			if r.From == r.To {
				continue
			}
			from, to := ids[r.From], ids[r.To]
			if e := ref.WeightedEdge(from, to); e != nil && e.Weight() <= float64(r.Distance) {
				continue
			}
			ref.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(from), T: simple.Node(to), W: float64(r.Distance)})
		}

		for _, start := range g.Nodes()[:5] {
			table := ShortestPaths(g, start)
			shortest := path.DijkstraFrom(ref.Node(ids[start]), ref)
			for _, id := range g.Nodes() {
				want := shortest.WeightTo(ids[id])
				got, ok := table.Distance(id)
				if math.IsInf(want, 1) {
					if ok {
						t.Fatalf("trial %d: %s reachable from %s, gonum says not", trial, id, start)
					}
					continue
				}
				if !ok || float64(got) != want {
					t.Fatalf("trial %d: Distance(%s) from %s = %d, gonum = %v", trial, id, start, got, want)
				}
			}
		}
	}
}

func randomGraph(rng *rand.Rand, nodes, roads, maxDistance int) *Graph {
	g := New()
	name := func(i int) string { return fmt.Sprintf("N%02d", i) }
	for range roads {
		g.AddEdge(name(rng.Intn(nodes)), name(rng.Intn(nodes)), rng.Intn(maxDistance+1))
	}
	return g
}

func bruteForceDistances(g *Graph, start string) map[string]int {
	best := map[string]int{start: 0}
	onPath := map[string]bool{start: true}

	var walk func(node string, dist int)
	walk = func(node string, dist int) {
		for _, r := range g.Neighbors(node) {
			if onPath[r.To] {
				continue
			}
			d := dist + r.Distance
			if cur, ok := best[r.To]; !ok || d < cur {
				best[r.To] = d
			}
			onPath[r.To] = true
			walk(r.To, d)
			onPath[r.To] = false
		}
	}
	walk(start, 0)
	return best
}
