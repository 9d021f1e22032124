package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/encodeous/tint"
	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/cobra"

	"github.com/matijazezelj/roadplan/internal/config"
	"github.com/matijazezelj/roadplan/internal/graph"
)

var (
	version   = "dev"
	cfgFile   string
	dbPath    string
	logFormat string
	logLevel  string
	logger    *slog.Logger
	appCfg    *config.Config
)

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := newRootCmd().Execute(); err != nil {
		logger.Error("roadplan failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "roadplan",
		Short: "Shortest road routes between locations",
		Long: "Computes shortest-distance routes in a directed road network.\n\n" +
			"Run without a subcommand to be prompted for the road network, route request and result files.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := currentConfig()
			if err != nil {
				return err
			}
			l, err := buildLogger(os.Stderr, logFormat, logLevel, cfg.Log.File)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := currentConfig()
			if err != nil {
				return err
			}
			return runInteractive(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), cfg)
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./roadplan.yaml)")
	root.PersistentFlags().StringVar(&dbPath, "db", "", "database path (overrides config)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log output format (text, json, pretty)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		planCmd(),
		graphCmd(),
		runsCmd(),
		versionCmd(),
		completionCmd(),
	)
	return root
}

func currentConfig() (*config.Config, error) {
	if appCfg != nil {
		return appCfg, nil
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	appCfg = cfg
	return cfg, nil
}

// buildLogger creates the process logger. When logFile is set, records are
// written to both w and the file.
func buildLogger(w io.Writer, format, level, logFile string) (*slog.Logger, error) {
	lvl, err := parseLogLevel(level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var console slog.Handler
	switch format {
	case "json":
		console = slog.NewJSONHandler(w, opts)
	case "text":
		console = slog.NewTextHandler(w, opts)
	case "pretty":
		console = tint.NewHandler(w, &tint.Options{
			Level: lvl,
			ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
				if attr.Key == slog.TimeKey {
					return slog.Attr{}
				}
				return attr
			},
		})
	default:
		return nil, fmt.Errorf("invalid --log-format %q (use: text, json, pretty)", format)
	}

	if logFile == "" {
		return slog.New(console), nil
	}

	if err := os.MkdirAll(filepath.Dir(logFile), 0o750); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(logFile, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o600) // #nosec G304 -- path from config
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return slog.New(slogmulti.Fanout(console, slog.NewTextHandler(f, opts))), nil
}

func openStore() (*graph.SQLiteStore, *config.Config, error) {
	cfg, err := currentConfig()
	if err != nil {
		return nil, nil, err
	}

	path := cfg.Storage.Path
	if dbPath != "" {
		path = dbPath
	}

	store, err := graph.NewSQLiteStore(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	if err := store.Init(context.Background()); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("initializing database: %w", err)
	}

	return store, cfg, nil
}

// --- version ---

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("roadplan %s\n", version)
		},
	}
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid --log-level %q (use: debug, info, warn, error)", s)
	}
}

func completionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for roadplan.

To load completions:

Bash:
  $ source <(roadplan completion bash)

Zsh:
  $ roadplan completion zsh > "${fpath[1]}/_roadplan"

Fish:
  $ roadplan completion fish | source

PowerShell:
  PS> roadplan completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
}
