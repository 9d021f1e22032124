package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type recordedRun struct {
	cypher string
	params map[string]any
}

// fakeSession implements cypherSession for testing.
type fakeSession struct {
	runs    []recordedRun
	runFunc func(cypher string, params map[string]any) (cypherResult, error)
	closed  bool
}

func (f *fakeSession) Run(_ context.Context, cypher string, params map[string]any) (cypherResult, error) {
	f.runs = append(f.runs, recordedRun{cypher: cypher, params: params})
	if f.runFunc != nil {
		return f.runFunc(cypher, params)
	}
	return &fakeResult{}, nil
}

func (f *fakeSession) Close(_ context.Context) error {
	f.closed = true
	return nil
}

// fakeResult implements cypherResult for testing.
type fakeResult struct {
	records []*neo4j.Record
	index   int
	err     error
}

func (f *fakeResult) Next(_ context.Context) bool {
	if f.index < len(f.records) {
		f.index++
		return true
	}
	return false
}

func (f *fakeResult) Record() *neo4j.Record {
	if f.index > 0 && f.index <= len(f.records) {
		return f.records[f.index-1]
	}
	return nil
}

func (f *fakeResult) Err() error {
	return f.err
}

func countRecord(n int64) *neo4j.Record {
	return &neo4j.Record{Keys: []string{"locations"}, Values: []any{n}}
}

func fakeSessions(s *fakeSession) sessionFactory {
	return func(_ context.Context) cypherSession {
		return s
	}
}
