package graph

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"golang.org/x/time/rate"
)

const defaultSyncBatchSize = 500

// SyncOptions tunes how a road network is written to Memgraph.
type SyncOptions struct {
	// BatchSize is the number of locations or roads per UNWIND statement.
	BatchSize int
	// BatchesPerSecond caps the write rate; zero or less means unlimited.
	BatchesPerSecond float64
}

// SyncStats reports what a sync wrote.
type SyncStats struct {
	Nodes   int
	Roads   int
	Batches int
}

// NewMemgraphDriver connects to Memgraph over Bolt and verifies the
// connection before returning.
func NewMemgraphDriver(uri, username, password string) (neo4j.DriverWithContext, error) {
	auth := neo4j.NoAuth()
	if username != "" {
		auth = neo4j.BasicAuth(username, password, "")
	}

	driver, err := neo4j.NewDriverWithContext(uri, auth)
	if err != nil {
		return nil, fmt.Errorf("creating memgraph driver: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(context.Background())
		return nil, fmt.Errorf("memgraph connectivity check failed: %w", err)
	}
	return driver, nil
}

// SyncToMemgraph replaces the Memgraph contents with g. Locations become
// :Location nodes and roads become [:ROAD {distance}] relationships.
func SyncToMemgraph(ctx context.Context, g *Graph, driver neo4j.DriverWithContext, opts SyncOptions, logger *slog.Logger) (SyncStats, error) {
	return syncNetwork(ctx, g, driverSessions(driver), opts, logger)
}

func syncNetwork(ctx context.Context, g *Graph, newSession sessionFactory, opts SyncOptions, logger *slog.Logger) (SyncStats, error) {
	var stats SyncStats

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = defaultSyncBatchSize
	}
	limit := rate.Inf
	if opts.BatchesPerSecond > 0 {
		limit = rate.Limit(opts.BatchesPerSecond)
	}
	limiter := rate.NewLimiter(limit, 1)

	session := newSession(ctx)
	defer session.Close(ctx) //nolint:errcheck // best-effort cleanup

	logger.Info("clearing memgraph data")
	if err := runCypher(ctx, session, "MATCH (n:Location) DETACH DELETE n", nil); err != nil {
		return stats, fmt.Errorf("clearing memgraph: %w", err)
	}

	if err := runCypher(ctx, session, "CREATE INDEX ON :Location(id)", nil); err != nil {
		logger.Warn("creating index (may already exist)", "error", err)
	}

	nodes := g.Nodes()
	logger.Info("syncing locations to memgraph", "count", len(nodes))
	for i := 0; i < len(nodes); i += batchSize {
		end := min(i+batchSize, len(nodes))
		if err := limiter.Wait(ctx); err != nil {
			return stats, err
		}
		err := runCypher(ctx, session, `
			UNWIND $ids AS id
			CREATE (:Location {id: id})
		`, map[string]any{"ids": nodes[i:end]})
		if err != nil {
			return stats, fmt.Errorf("syncing location batch %d-%d: %w", i, end, err)
		}
		stats.Batches++
		stats.Nodes = end
	}

	roads := g.Roads()
	logger.Info("syncing roads to memgraph", "count", len(roads))
	for i := 0; i < len(roads); i += batchSize {
		end := min(i+batchSize, len(roads))
		params := make([]map[string]any, 0, end-i)
		for _, r := range roads[i:end] {
			params = append(params, map[string]any{"from": r.From, "to": r.To, "distance": int64(r.Distance)})
		}
		if err := limiter.Wait(ctx); err != nil {
			return stats, err
		}
		err := runCypher(ctx, session, `
			UNWIND $roads AS r
			MATCH (a:Location {id: r.from})
			MATCH (b:Location {id: r.to})
			CREATE (a)-[:ROAD {distance: r.distance}]->(b)
		`, map[string]any{"roads": params})
		if err != nil {
			return stats, fmt.Errorf("syncing road batch %d-%d: %w", i, end, err)
		}
		stats.Batches++
		stats.Roads = end
	}

	remote, err := countLocations(ctx, session)
	if err != nil {
		logger.Warn("verifying memgraph location count", "error", err)
	} else if remote != len(nodes) {
		logger.Warn("memgraph location count mismatch", "want", len(nodes), "got", remote)
	}

	logger.Info("memgraph sync complete", "nodes", stats.Nodes, "roads", stats.Roads, "batches", stats.Batches)
	return stats, nil
}

// runCypher executes a statement and drains its result so that server-side
// failures surface as errors.
func runCypher(ctx context.Context, session cypherSession, cypher string, params map[string]any) error {
	res, err := session.Run(ctx, cypher, params)
	if err != nil {
		return err
	}
	for res.Next(ctx) {
	}
	return res.Err()
}

func countLocations(ctx context.Context, session cypherSession) (int, error) {
	res, err := session.Run(ctx, "MATCH (n:Location) RETURN count(n) AS locations", nil)
	if err != nil {
		return 0, err
	}
	if !res.Next(ctx) {
		if err := res.Err(); err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("count query returned no rows")
	}
	v, ok := res.Record().Get("locations")
	if !ok {
		return 0, fmt.Errorf("count query returned no locations column")
	}
	switch n := v.(type) {
	case int64:
		return int(n), nil
	case int:
		return n, nil
	default:
		return 0, fmt.Errorf("unexpected count type %T", v)
	}
}
