package models

import "time"

// Road is a directed, weighted connection between two locations.
type Road struct {
	From     string `json:"from" yaml:"from"`
	To       string `json:"to" yaml:"to"`
	Distance int    `json:"distance" yaml:"distance"`
}

// RouteRequest asks for the shortest route from Start to End.
type RouteRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Outcome classifies the result of a single route request.
type Outcome string

// Outcome constants for route requests.
const (
	OutcomeRouted      Outcome = "routed"
	OutcomeUnknownNode Outcome = "unknown_node"
	OutcomeUnreachable Outcome = "unreachable"
)

// Run records one batch of route requests processed against a road network.
type Run struct {
	ID          string     `json:"id"`
	RoadsFile   string     `json:"roads_file"`
	RoutesFile  string     `json:"routes_file"`
	ResultFile  string     `json:"result_file"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	Routed      int        `json:"routed"`
	Unknown     int        `json:"unknown"`
	Unreachable int        `json:"unreachable"`
	Skipped     int        `json:"skipped"`
	Status      string     `json:"status"`
}
