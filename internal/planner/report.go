package planner

import (
	"fmt"
	"strings"

	"github.com/matijazezelj/roadplan/internal/graph"
)

// Render produces the result block for a route from start to end.
//
// An unknown location is reported before reachability is considered. For a
// reachable end, each leg shows the first road from A to B in neighbour
// order, which is the shortest of any parallel roads.
func Render(start, end string, table *graph.DistanceTable, g *graph.Graph) string {
	if !g.HasNode(start) || !g.HasNode(end) {
		return unknownNodeReport(start, end)
	}
	if table == nil || !table.Reachable(end) {
		return unreachableReport(start, end)
	}

	total, _ := table.Distance(end)
	route := table.PathTo(end)

	var b strings.Builder
	fmt.Fprintf(&b, "Route: %s --> %s (%d km):\n", start, end, total)
	for i := 0; i+1 < len(route); i++ {
		from, to := route[i], route[i+1]
		fmt.Fprintf(&b, "%s --> %s %d km\n", from, to, legDistance(g, from, to))
	}
	b.WriteString("\n")
	return b.String()
}

func legDistance(g *graph.Graph, from, to string) int {
	for _, r := range g.Neighbors(from) {
		if r.To == to {
			return r.Distance
		}
	}
	return 0
}

func unknownNodeReport(start, end string) string {
	return fmt.Sprintf("Route: %s --> %s (No connection information)\n\n", start, end)
}

func unreachableReport(start, end string) string {
	return fmt.Sprintf("Route: %s --> %s (Route cannot be determined)\n\n", start, end)
}
