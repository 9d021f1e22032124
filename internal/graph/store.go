package graph

import (
	"context"
	"errors"

	"github.com/matijazezelj/roadplan/pkg/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for persisting road networks and run history.
type Store interface {
	// Init initializes the store (creates tables, indexes, etc.).
	Init(ctx context.Context) error

	// Close closes the store connection.
	Close() error

	// ReplaceNetwork discards the stored road network and stores g instead.
	ReplaceNetwork(ctx context.Context, g *Graph) error

	// LoadGraph rebuilds the stored road network as an in-memory graph.
	LoadGraph(ctx context.Context) (*Graph, error)

	// NodeCount returns the number of stored locations.
	NodeCount(ctx context.Context) (int, error)

	// RoadCount returns the number of stored roads.
	RoadCount(ctx context.Context) (int, error)

	// RecordRun inserts a new run record.
	RecordRun(ctx context.Context, run models.Run) error

	// FinishRun stores the final status and counters of a run.
	FinishRun(ctx context.Context, run models.Run) error

	// GetRun retrieves a run by ID.
	GetRun(ctx context.Context, id string) (*models.Run, error)

	// ListRuns returns recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]models.Run, error)
}
