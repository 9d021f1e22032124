package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/matijazezelj/roadplan/internal/graph"
	"github.com/matijazezelj/roadplan/internal/planner"
	"github.com/matijazezelj/roadplan/pkg/models"
)

// --- graph ---

func graphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Manage the stored road network",
	}
	cmd.AddCommand(graphImportCmd(), graphShowCmd(), graphPathCmd(), graphExportCmd(), graphSyncCmd())
	return cmd
}

// loadStoredGraph returns the network held in the database. An empty
// database is an error so that queries do not silently report every
// location as unknown.
func loadStoredGraph(ctx context.Context, store graph.Store) (*graph.Graph, error) {
	g, err := store.LoadGraph(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading road network: %w", err)
	}
	if g.NodeCount() == 0 {
		return nil, errors.New("no road network stored (run 'roadplan graph import <roads-file>' first)")
	}
	return g, nil
}

func graphImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <roads-file>",
		Short: "Load a road network file into the database, replacing the stored network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := openRoads(args[0])
			if err != nil {
				return err
			}
			defer f.Close() //nolint:errcheck // best-effort cleanup

			store, _, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close() //nolint:errcheck // best-effort cleanup
			ctx := cmd.Context()

			g, stats, err := graph.Load(ctx, f, logger)
			if err != nil {
				return err
			}
			if err := store.ReplaceNetwork(ctx, g); err != nil {
				return fmt.Errorf("storing road network: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d locations and %d roads from %s (%d lines skipped)\n",
				g.NodeCount(), g.RoadCount(), args[0], stats.Skipped)
			return nil
		},
	}
}

func graphShowCmd() *cobra.Command {
	var summary bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the stored road network",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, cfg, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close() //nolint:errcheck // best-effort cleanup
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if summary {
				path := cfg.Storage.Path
				if dbPath != "" {
					path = dbPath
				}
				sizeStr := "unknown"
				if info, err := os.Stat(path); err == nil {
					sizeStr = formatBytes(info.Size())
				}

				nodeCount, _ := store.NodeCount(ctx)
				roadCount, _ := store.RoadCount(ctx)
				_, _ = fmt.Fprintf(out, "Database: %s (%s)\n\n", path, sizeStr)
				_, _ = fmt.Fprintf(out, "Road Network Summary\n")
				_, _ = fmt.Fprintf(out, "  Locations: %d\n", nodeCount)
				_, _ = fmt.Fprintf(out, "  Roads:     %d\n", roadCount)
				return nil
			}

			g, err := loadStoredGraph(ctx, store)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(out, graph.Describe(g))
			return err
		},
	}

	cmd.Flags().BoolVar(&summary, "summary", false, "print only location and road counts")
	return cmd
}

func graphPathCmd() *cobra.Command {
	var asTable bool

	cmd := &cobra.Command{
		Use:   "path <from> <to>",
		Short: "Find the shortest route between two stored locations",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close() //nolint:errcheck // best-effort cleanup

			g, err := loadStoredGraph(cmd.Context(), store)
			if err != nil {
				return err
			}

			res := planner.New(g, logger).Plan(models.RouteRequest{Start: args[0], End: args[1]})
			out := cmd.OutOrStdout()
			if !asTable || res.Outcome != models.OutcomeRouted {
				_, err = fmt.Fprint(out, res.Report)
				return err
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "STEP\tLOCATION\tTOTAL KM")
			for i, id := range res.Route {
				d, _ := res.Table.Distance(id)
				_, _ = fmt.Fprintf(w, "%d\t%s\t%d\n", i, id, d)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asTable, "table", false, "print the route as a table of cumulative distances")
	return cmd
}

func graphExportCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the stored road network in various formats",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, _, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close() //nolint:errcheck // best-effort cleanup

			g, err := store.LoadGraph(cmd.Context())
			if err != nil {
				return fmt.Errorf("loading road network: %w", err)
			}

			var output string
			switch format {
			case "json":
				output, err = graph.ExportJSON(g)
			case "yaml":
				output, err = graph.ExportYAML(g)
			case "dot":
				output = graph.ExportDOT(g)
			case "mermaid":
				output = graph.ExportMermaid(g)
			default:
				return fmt.Errorf("unsupported format %q (use: json, yaml, dot, mermaid)", format)
			}
			if err != nil {
				return err
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), output)
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "export format: json, yaml, dot, mermaid")
	return cmd
}

func graphSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replace the Memgraph contents with the stored road network",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, cfg, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close() //nolint:errcheck // best-effort cleanup

			if !cfg.Memgraph.Enabled {
				return fmt.Errorf("memgraph is not enabled in configuration (set memgraph.enabled: true)")
			}

			g, err := loadStoredGraph(cmd.Context(), store)
			if err != nil {
				return err
			}

			driver, err := graph.NewMemgraphDriver(cfg.Memgraph.URI, cfg.Memgraph.Username, cfg.Memgraph.Password)
			if err != nil {
				return fmt.Errorf("connecting to memgraph: %w", err)
			}
			defer driver.Close(context.Background()) //nolint:errcheck // best-effort cleanup

			stats, err := graph.SyncToMemgraph(cmd.Context(), g, driver, graph.SyncOptions{
				BatchSize:        cfg.Memgraph.BatchSize,
				BatchesPerSecond: cfg.Memgraph.BatchesPerSecond,
			}, logger)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Synced %d locations and %d roads to %s in %d batches\n",
				stats.Nodes, stats.Roads, cfg.Memgraph.URI, stats.Batches)
			return nil
		},
	}
}

// --- runs ---

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect recorded planning runs",
	}
	cmd.AddCommand(runsListCmd(), runsShowCmd())
	return cmd
}

func runsListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 1 {
				return fmt.Errorf("--limit must be at least 1")
			}

			store, _, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close() //nolint:errcheck // best-effort cleanup

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tSTARTED\tSTATUS\tROUTED\tUNKNOWN\tUNREACHABLE\tSKIPPED\tDURATION")
			for _, r := range runs {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
					r.ID, r.StartedAt.Format(time.RFC3339), r.Status,
					r.Routed, r.Unknown, r.Unreachable, r.Skipped, runDuration(r))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")
	return cmd
}

func runsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a single recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close() //nolint:errcheck // best-effort cleanup

			run, err := store.GetRun(cmd.Context(), args[0])
			if errors.Is(err, graph.ErrNotFound) {
				return fmt.Errorf("run %q not found", args[0])
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Run %s (%s)\n\n", run.ID, run.Status)
			_, _ = fmt.Fprintf(out, "  Roads file:   %s\n", run.RoadsFile)
			_, _ = fmt.Fprintf(out, "  Routes file:  %s\n", run.RoutesFile)
			_, _ = fmt.Fprintf(out, "  Result file:  %s\n", run.ResultFile)
			_, _ = fmt.Fprintf(out, "  Started:      %s\n", run.StartedAt.Format(time.RFC3339))
			_, _ = fmt.Fprintf(out, "  Duration:     %s\n\n", runDuration(*run))
			_, _ = fmt.Fprintf(out, "  Routed:       %d\n", run.Routed)
			_, _ = fmt.Fprintf(out, "  Unknown:      %d\n", run.Unknown)
			_, _ = fmt.Fprintf(out, "  Unreachable:  %d\n", run.Unreachable)
			_, _ = fmt.Fprintf(out, "  Skipped:      %d\n", run.Skipped)
			return nil
		},
	}
}

func runDuration(r models.Run) string {
	if r.FinishedAt == nil {
		return "-"
	}
	return r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
