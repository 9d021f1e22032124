package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matijazezelj/roadplan/internal/config"
	"github.com/matijazezelj/roadplan/internal/graph"
	"github.com/matijazezelj/roadplan/internal/metrics"
	"github.com/matijazezelj/roadplan/internal/planner"
	"github.com/matijazezelj/roadplan/pkg/models"
)

// batchFiles holds the three files of one batch in the order they are opened.
type batchFiles struct {
	roads  *os.File
	routes *os.File
	result *os.File
}

func (b *batchFiles) Close() {
	for _, f := range []*os.File{b.roads, b.routes, b.result} {
		if f != nil {
			_ = f.Close()
		}
	}
}

func openRoads(path string) (*os.File, error) {
	f, err := os.Open(path) // #nosec G304 -- path from user
	if err != nil {
		return nil, fmt.Errorf("opening roads file: %w", err)
	}
	return f, nil
}

func openRoutes(path string) (*os.File, error) {
	f, err := os.Open(path) // #nosec G304 -- path from user
	if err != nil {
		return nil, fmt.Errorf("opening routes file: %w", err)
	}
	return f, nil
}

// createResult truncates any existing result file.
func createResult(path string) (*os.File, error) {
	f, err := os.Create(path) // #nosec G304 -- path from user
	if err != nil {
		return nil, fmt.Errorf("opening result file: %w", err)
	}
	return f, nil
}

type batchOptions struct {
	displayGraph bool
	metricsFile  string
}

// executeBatch loads the network from roads, answers every request in routes
// and writes the result blocks to result. The loaded network is printed to
// console when displayGraph is set.
func executeBatch(ctx context.Context, roads, routes io.Reader, result, console io.Writer, opts batchOptions) (planner.Summary, error) {
	var rec *metrics.Recorder
	if opts.metricsFile != "" {
		rec = metrics.NewRecorder()
	}

	g, stats, err := graph.Load(ctx, roads, logger)
	if err != nil {
		return planner.Summary{}, err
	}
	rec.ObserveNetwork(g.NodeCount(), g.RoadCount(), stats.Skipped)
	logger.Info("road network loaded",
		"nodes", g.NodeCount(), "roads", g.RoadCount(), "skipped", stats.Skipped)

	if opts.displayGraph {
		if _, err := io.WriteString(console, graph.Describe(g)); err != nil {
			return planner.Summary{}, fmt.Errorf("displaying road network: %w", err)
		}
	}

	// blocks answered before a failure still reach the result file
	w := bufio.NewWriter(result)
	sum, err := planner.New(g, logger, planner.WithMetrics(rec)).Run(ctx, routes, w)
	if flushErr := w.Flush(); flushErr != nil {
		err = errors.Join(err, fmt.Errorf("writing result file: %w", flushErr))
	}
	if err != nil {
		return sum, err
	}

	rec.MarkCompleted(time.Now())
	if err := rec.WriteTextfile(opts.metricsFile); err != nil {
		logger.Warn("writing metrics textfile failed", "path", opts.metricsFile, "error", err)
	}
	return sum, nil
}

// runInteractive prompts for the three file names, opening each one as soon
// as it is entered.
func runInteractive(ctx context.Context, in io.Reader, out io.Writer, cfg *config.Config) error {
	sc := bufio.NewScanner(in)
	sc.Split(bufio.ScanWords)
	ask := func(prompt string) string {
		_, _ = fmt.Fprint(out, prompt)
		if sc.Scan() {
			return sc.Text()
		}
		return ""
	}

	var files batchFiles
	defer files.Close()

	var err error
	if files.roads, err = openRoads(ask("Enter the road network file name: ")); err != nil {
		return err
	}
	if files.routes, err = openRoutes(ask("Enter the route requests file name: ")); err != nil {
		return err
	}
	if files.result, err = createResult(ask("Enter the result file name: ")); err != nil {
		return err
	}

	_, err = executeBatch(ctx, files.roads, files.routes, files.result, out, batchOptions{
		displayGraph: cfg.Display.Graph,
		metricsFile:  cfg.Metrics.Textfile,
	})
	return err
}

// --- plan ---

func planCmd() *cobra.Command {
	var record bool
	var metricsFile string

	cmd := &cobra.Command{
		Use:   "plan <roads-file> <routes-file> <result-file>",
		Short: "Plan every route in a request file against a road network",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := currentConfig()
			if err != nil {
				return err
			}

			var files batchFiles
			defer files.Close()
			if files.roads, err = openRoads(args[0]); err != nil {
				return err
			}
			if files.routes, err = openRoutes(args[1]); err != nil {
				return err
			}
			if files.result, err = createResult(args[2]); err != nil {
				return err
			}

			opts := batchOptions{displayGraph: cfg.Display.Graph, metricsFile: cfg.Metrics.Textfile}
			if cmd.Flags().Changed("metrics-file") {
				opts.metricsFile = metricsFile
			}

			if !record {
				_, err = executeBatch(cmd.Context(), files.roads, files.routes, files.result, cmd.OutOrStdout(), opts)
				return err
			}

			store, _, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close() //nolint:errcheck // best-effort cleanup
			ctx := cmd.Context()

			run := models.Run{
				ID:         uuid.NewString(),
				RoadsFile:  args[0],
				RoutesFile: args[1],
				ResultFile: args[2],
				StartedAt:  time.Now().UTC(),
			}
			if err := store.RecordRun(ctx, run); err != nil {
				return fmt.Errorf("recording run: %w", err)
			}

			sum, runErr := executeBatch(ctx, files.roads, files.routes, files.result, cmd.OutOrStdout(), opts)

			finished := time.Now().UTC()
			run.FinishedAt = &finished
			run.Routed, run.Unknown, run.Unreachable, run.Skipped = sum.Routed, sum.Unknown, sum.Unreachable, sum.Skipped
			run.Status = "completed"
			if runErr != nil {
				run.Status = "failed"
			}
			if err := store.FinishRun(context.Background(), run); err != nil {
				logger.Error("finishing run record", "run", run.ID, "error", err)
			}

			logger.Info("run recorded", "run", run.ID, "status", run.Status)
			return runErr
		},
	}

	cmd.Flags().BoolVar(&record, "record", false, "store a run record in the database")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write batch metrics in Prometheus text format (overrides metrics.textfile)")
	return cmd
}
