// Package planner answers batches of route requests against a loaded road
// network and renders one result block per request.
package planner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/matijazezelj/roadplan/internal/graph"
	"github.com/matijazezelj/roadplan/internal/metrics"
	"github.com/matijazezelj/roadplan/pkg/models"
)

// Result is the outcome of a single route request. Table holds the
// distances from Request.Start and is nil when either location is unknown.
type Result struct {
	Request  models.RouteRequest
	Outcome  models.Outcome
	Distance int
	Route    []string
	Report   string
	Table    *graph.DistanceTable
}

// Summary counts the outcomes of a batch.
type Summary struct {
	Lines       int
	Routed      int
	Unknown     int
	Unreachable int
	Skipped     int
}

// Requests returns the number of well-formed requests processed.
func (s Summary) Requests() int {
	return s.Routed + s.Unknown + s.Unreachable
}

// Planner answers route requests against a read-only graph.
type Planner struct {
	graph   *graph.Graph
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// Option configures a Planner.
type Option func(*Planner)

// WithMetrics records every processed request in rec.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(p *Planner) {
		p.metrics = rec
	}
}

// New creates a Planner over g.
func New(g *graph.Graph, logger *slog.Logger, opts ...Option) *Planner {
	p := &Planner{graph: g, logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseRouteLine parses "<start> <end>". The second return value is false
// when the line has fewer than two fields.
func ParseRouteLine(line string) (models.RouteRequest, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return models.RouteRequest{}, false
	}
	return models.RouteRequest{Start: fields[0], End: fields[1]}, true
}

// Plan answers a single request. Unknown locations are checked before the
// shortest-path search runs.
func (p *Planner) Plan(req models.RouteRequest) Result {
	began := time.Now()
	res := Result{Request: req}

	switch {
	case !p.graph.HasNode(req.Start) || !p.graph.HasNode(req.End):
		res.Outcome = models.OutcomeUnknownNode
		res.Report = Render(req.Start, req.End, nil, p.graph)
	default:
		table := graph.ShortestPaths(p.graph, req.Start)
		res.Table = table
		res.Report = Render(req.Start, req.End, table, p.graph)
		if d, ok := table.Distance(req.End); ok {
			res.Outcome = models.OutcomeRouted
			res.Distance = d
			res.Route = table.PathTo(req.End)
		} else {
			res.Outcome = models.OutcomeUnreachable
		}
	}

	p.metrics.ObserveRoute(res.Outcome, time.Since(began))
	p.logger.Debug("route planned",
		"start", req.Start, "end", req.End, "outcome", res.Outcome, "distance", res.Distance)
	return res
}

// Run reads route requests line by line and appends each result block to
// out in input order. Malformed lines are skipped. Only read and write
// failures are returned.
func (p *Planner) Run(ctx context.Context, requests io.Reader, out io.Writer) (Summary, error) {
	var sum Summary

	br := bufio.NewReader(requests)
	for {
		line, readErr := br.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return sum, fmt.Errorf("reading route requests: %w", readErr)
		}
		if line == "" && readErr != nil {
			break
		}
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		sum.Lines++

		if err := p.answer(line, out, &sum); err != nil {
			return sum, err
		}
		if readErr != nil {
			break
		}
	}

	p.logger.Info("route batch complete",
		"routed", sum.Routed, "unknown", sum.Unknown, "unreachable", sum.Unreachable, "skipped", sum.Skipped)
	return sum, nil
}

// answer plans one request line and appends its block to out. A malformed
// line is counted as skipped.
func (p *Planner) answer(line string, out io.Writer, sum *Summary) error {
	req, ok := ParseRouteLine(line)
	if !ok {
		sum.Skipped++
		p.metrics.ObserveSkippedRequest()
		p.logger.Debug("skipping malformed route line", "line", sum.Lines)
		return nil
	}

	res := p.Plan(req)
	switch res.Outcome {
	case models.OutcomeRouted:
		sum.Routed++
	case models.OutcomeUnknownNode:
		sum.Unknown++
	case models.OutcomeUnreachable:
		sum.Unreachable++
	}

	if _, err := io.WriteString(out, res.Report); err != nil {
		return fmt.Errorf("writing result for %s -> %s: %w", req.Start, req.End, err)
	}
	return nil
}
