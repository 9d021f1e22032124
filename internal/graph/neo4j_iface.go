package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// cypherResult is the part of neo4j.ResultWithContext the sync reads.
type cypherResult interface {
	Next(ctx context.Context) bool
	Record() *neo4j.Record
	Err() error
}

// cypherSession is the part of neo4j.SessionWithContext the sync uses.
type cypherSession interface {
	Run(ctx context.Context, cypher string, params map[string]any) (cypherResult, error)
	Close(ctx context.Context) error
}

type sessionFactory func(ctx context.Context) cypherSession

type driverSession struct {
	session neo4j.SessionWithContext
}

func (d *driverSession) Run(ctx context.Context, cypher string, params map[string]any) (cypherResult, error) {
	return d.session.Run(ctx, cypher, params)
}

func (d *driverSession) Close(ctx context.Context) error {
	return d.session.Close(ctx)
}

func driverSessions(driver neo4j.DriverWithContext) sessionFactory {
	return func(ctx context.Context) cypherSession {
		return &driverSession{session: driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})}
	}
}
