package graph

import (
	"bufio"
	"context"
	"fmt"
	"errors"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/matijazezelj/roadplan/pkg/models"
)

// MaxDistance is the longest road accepted by the loader. Any route of
// fewer than 2^32 roads stays below Infinity.
const MaxDistance = math.MaxInt32

// LoadStats summarizes a road network load.
type LoadStats struct {
	Lines   int
	Loaded  int
	Skipped int
}

// ParseRoadLine parses "<source> <destination> <distance>". The second
// return value is false for lines that do not carry a complete road: blank
// lines, fewer than three fields, or a distance that is not an integer in
// [0, MaxDistance]. Fields after the third are ignored.
func ParseRoadLine(line string) (models.Road, bool) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return models.Road{}, false
	}
	distance, err := strconv.Atoi(fields[2])
	if err != nil || distance < 0 || distance > MaxDistance {
		return models.Road{}, false
	}
	return models.Road{From: fields[0], To: fields[1], Distance: distance}, true
}

// Load reads a road network, one road per line. Malformed lines are skipped
// and counted; only read failures of r are returned as errors.
func Load(ctx context.Context, r io.Reader, logger *slog.Logger) (*Graph, LoadStats, error) {
	g := New()
	var stats LoadStats

	br := bufio.NewReader(r)
	for {
		line, readErr := br.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, stats, fmt.Errorf("reading road network: %w", readErr)
		}
		if line == "" && readErr != nil {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		stats.Lines++

		road, ok := ParseRoadLine(line)
		if !ok {
			stats.Skipped++
			logger.Debug("skipping malformed road line", "line", stats.Lines)
		} else {
			g.AddEdge(road.From, road.To, road.Distance)
			stats.Loaded++
		}
		if readErr != nil {
			break
		}
	}

	logger.Debug("road network loaded",
		"nodes", g.NodeCount(), "roads", g.RoadCount(), "skipped", stats.Skipped)
	return g, stats, nil
}

// FromRoads builds a graph from already parsed roads.
func FromRoads(roads []models.Road) *Graph {
	g := New()
	for _, r := range roads {
		g.AddEdge(r.From, r.To, r.Distance)
	}
	return g
}
