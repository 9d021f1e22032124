package graph

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/matijazezelj/roadplan/pkg/models"
	"go.yaml.in/yaml/v3"
)

// NetworkData holds a full road network snapshot for export.
type NetworkData struct {
	Nodes []string      `json:"nodes" yaml:"nodes"`
	Roads []models.Road `json:"roads" yaml:"roads"`
}

func snapshot(g *Graph) NetworkData {
	data := NetworkData{Nodes: g.Nodes(), Roads: g.Roads()}
	if data.Nodes == nil {
		data.Nodes = []string{}
	}
	if data.Roads == nil {
		data.Roads = []models.Road{}
	}
	return data
}

// ExportJSON returns the network as an indented JSON document.
func ExportJSON(g *Graph) (string, error) {
	b, err := json.MarshalIndent(snapshot(g), "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ExportYAML returns the network as a YAML document.
func ExportYAML(g *Graph) (string, error) {
	b, err := yaml.Marshal(snapshot(g))
	if err != nil {
		return "", fmt.Errorf("marshaling yaml: %w", err)
	}
	return string(b), nil
}

// ExportDOT returns the network in Graphviz DOT format.
func ExportDOT(g *Graph) string {
	var b strings.Builder
	b.WriteString("digraph roadplan {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=ellipse];\n\n")

	for _, id := range g.Nodes() {
		fmt.Fprintf(&b, "  %q;\n", id)
	}

	b.WriteString("\n")

	for _, r := range g.Roads() {
		fmt.Fprintf(&b, "  %q -> %q [label=%q];\n", r.From, r.To, fmt.Sprintf("%d km", r.Distance))
	}

	b.WriteString("}\n")
	return b.String()
}

// ExportMermaid returns the network in Mermaid format.
func ExportMermaid(g *Graph) string {
	var b strings.Builder
	b.WriteString("graph LR\n")

	for _, id := range g.Nodes() {
		fmt.Fprintf(&b, "  %s[\"%s\"]\n", mermaidSafeID(id), id)
	}

	for _, r := range g.Roads() {
		fmt.Fprintf(&b, "  %s -->|%d km| %s\n", mermaidSafeID(r.From), r.Distance, mermaidSafeID(r.To))
	}

	return b.String()
}

// Describe renders the console listing of the network: every location
// followed by its numbered outgoing roads.
func Describe(g *Graph) string {
	var b strings.Builder
	for _, id := range g.Nodes() {
		fmt.Fprintf(&b, "Node: %s\n", id)
		for i, r := range g.Neighbors(id) {
			fmt.Fprintf(&b, "Connection %d: %s (Distance: %d)\n", i+1, r.To, r.Distance)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func mermaidSafeID(id string) string {
	r := strings.NewReplacer(":", "_", ".", "_", "-", "_", "/", "_", " ", "_", "\"", "_")
	return r.Replace(id)
}
