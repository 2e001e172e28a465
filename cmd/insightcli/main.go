package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/studiowebux/insightcli/internal/cli"
	"github.com/studiowebux/insightcli/internal/client"
	"github.com/studiowebux/insightcli/internal/config"
	"github.com/studiowebux/insightcli/internal/history"
	"github.com/studiowebux/insightcli/internal/keybinds"
	"github.com/studiowebux/insightcli/internal/logging"
	"github.com/studiowebux/insightcli/internal/mock"
	"github.com/studiowebux/insightcli/internal/tui"
)

var (
	version = "0.1.0"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "insightcli",
	Short: "Insight CLI - extract insights from text",
	Long: `Insight CLI sends text to an insight extraction service and shows the
JSON it returns.

Run without arguments to start the interactive form.

Examples:
  insightcli                                   # Start interactive TUI
  insightcli extract "Battery lasts two days"  # One-shot extraction
  cat review.txt | insightcli extract -o yaml  # Text from stdin
  insightcli batch reviews/*.txt               # Many files at once
  insightcli mock                              # Local sample backend
  insightcli --base-url http://api:8000        # Another service`,
	Version:       version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract [text]",
	Short: "Extract insights from text, a file or stdin",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtract(cmd, args)
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch <files...>",
	Short: "Extract insights from many files concurrently",
	Long: `Extract insights from every file and print one JSON line per file,
in the order given:

  {"file":"a.txt","result":{...}}
  {"file":"b.txt","error":"Failed to extract insights","kind":"http"}

Exits with status 1 if any file failed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(args)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past submissions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(func(store *history.Manager) error {
			return cli.ListHistory(store, cli.HistoryOptions{
				Limit:  flagLimit,
				Search: flagSearch,
				JSON:   flagJSON,
			})
		})
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all stored submissions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(func(store *history.Manager) error {
			return cli.ClearHistory(store, os.Stdout)
		})
	},
}

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Run a local mock extraction service",
	Long: `Run a mock extraction service.

Without --config it analyses any text posted to /extract-insights with a
small built-in lexicon. A YAML or JSON config defines custom routes:

  port: 5000
  routes:
    - method: POST
      path: /extract-insights
      status: 503
      delayMs: 2000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMock(cmd)
	},
}

// Global flags
var (
	flagBaseURL   string
	flagTimeout   string
	flagDebug     bool
	flagNoHistory bool
)

// Flags for extract/batch
var (
	flagFile        string
	flagOutput      string
	flagQuery       string
	flagSave        string
	flagConcurrency int
)

// Flags for history
var (
	flagLimit  int
	flagSearch string
	flagJSON   bool
)

// Flags for mock
var (
	flagMockConfig string
	flagMockPort   int
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "Extraction service base URL (default http://localhost:5000)")
	rootCmd.PersistentFlags().StringVar(&flagTimeout, "timeout", "", "Request timeout, e.g. 30s (default none)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagNoHistory, "no-history", false, "Do not record submissions")

	extractCmd.Flags().StringVarP(&flagFile, "file", "f", "", "Read text from file")
	extractCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output format (json/yaml/body)")
	extractCmd.Flags().StringVarP(&flagQuery, "query", "q", "", "JMESPath query applied to the result")
	extractCmd.Flags().StringVarP(&flagSave, "save", "s", "", "Save result to file")

	batchCmd.Flags().IntVarP(&flagConcurrency, "concurrency", "c", cli.DefaultConcurrency, "Files extracted at once")
	batchCmd.Flags().StringVarP(&flagQuery, "query", "q", "", "JMESPath query applied to each result")

	historyCmd.Flags().IntVarP(&flagLimit, "limit", "n", 20, "Maximum entries to show (0 for all)")
	historyCmd.Flags().StringVar(&flagSearch, "search", "", "Fuzzy search the submitted text")
	historyCmd.Flags().BoolVar(&flagJSON, "json", false, "Print entries as JSON")
	historyCmd.AddCommand(historyClearCmd)

	mockCmd.Flags().StringVar(&flagMockConfig, "config", "", "Mock routes file (YAML or JSON)")
	mockCmd.Flags().IntVarP(&flagMockPort, "port", "p", 5000, "Port to listen on")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mockCmd)
}

// loadConfig initializes the config directory and applies flag overrides
func loadConfig() (*config.Config, error) {
	if err := config.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if flagBaseURL != "" {
		cfg.BaseURL = flagBaseURL
	}
	if flagTimeout != "" {
		timeout, err := config.ParseTimeout(flagTimeout)
		if err != nil {
			return nil, fmt.Errorf("--timeout: %w", err)
		}
		cfg.Timeout = timeout
	}
	if flagNoHistory {
		cfg.HistoryEnabled = false
	}
	if flagOutput != "" {
		cfg.Output = flagOutput
	}

	return cfg, cfg.Validate()
}

func newClient(cfg *config.Config) (*client.Client, error) {
	return client.New(client.Options{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
	})
}

// openHistory returns nil when history is disabled; errors are logged
func openHistory(cfg *config.Config, log zerolog.Logger) *history.Manager {
	if !cfg.HistoryEnabled {
		return nil
	}
	store, err := history.NewManager(config.DatabasePath)
	if err != nil {
		log.Warn().Err(err).Msg("history unavailable")
		return nil
	}
	return store
}

// signalContext carries the logger and is cancelled on Ctrl+C
func signalContext(log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return log.WithContext(ctx), cancel
}

// runTUI starts the interactive TUI
func runTUI() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, closeLog, err := logging.New(logging.Options{Debug: flagDebug, File: config.LogFile})
	if err != nil {
		return err
	}
	defer closeLog()

	c, err := newClient(cfg)
	if err != nil {
		return err
	}

	registry, err := keybinds.LoadOrDefault(config.KeybindsFile)
	if err != nil {
		return err
	}

	return tui.Run(tui.Options{
		Client:   c,
		Config:   cfg,
		History:  openHistory(cfg, log),
		Keybinds: registry,
		Logger:   log,
	})
}

// runExtract executes a one-shot extraction
func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, closeLog, err := logging.New(logging.Options{Debug: flagDebug})
	if err != nil {
		return err
	}
	defer closeLog()

	c, err := newClient(cfg)
	if err != nil {
		return err
	}

	store := openHistory(cfg, log)
	if store != nil {
		defer store.Close()
	}

	ctx, cancel := signalContext(log)
	defer cancel()

	opts := cli.ExtractOptions{
		TextSet:      len(args) > 0,
		FilePath:     flagFile,
		OutputFormat: cfg.Output,
		Query:        flagQuery,
		SavePath:     flagSave,
		Highlight:    cfg.Highlight && cli.IsTerminal(os.Stdout),
		Theme:        cfg.Theme,
		History:      store,
	}
	if opts.TextSet {
		opts.Text = args[0]
	} else if flagFile == "" {
		opts.Stdin = cli.PipedStdin()
	}

	return cli.Extract(ctx, c, opts)
}

// runBatch extracts every file given on the command line
func runBatch(files []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, closeLog, err := logging.New(logging.Options{Debug: flagDebug})
	if err != nil {
		return err
	}
	defer closeLog()

	c, err := newClient(cfg)
	if err != nil {
		return err
	}

	store := openHistory(cfg, log)
	if store != nil {
		defer store.Close()
	}

	ctx, cancel := signalContext(log)
	defer cancel()

	return cli.Batch(ctx, c, cli.BatchOptions{
		Files:       files,
		Concurrency: flagConcurrency,
		Query:       flagQuery,
		History:     store,
	})
}

// withHistory opens the history database for the history subcommands
func withHistory(fn func(store *history.Manager) error) error {
	if err := config.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	store, err := history.NewManager(config.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	return fn(store)
}

// runMock serves the mock backend until interrupted
func runMock(cmd *cobra.Command) error {
	log, closeLog, err := logging.New(logging.Options{Debug: flagDebug})
	if err != nil {
		return err
	}
	defer closeLog()

	cfg := mock.DefaultConfig()
	workdir, _ := os.Getwd()
	if flagMockConfig != "" {
		cfg, err = mock.LoadConfig(flagMockConfig)
		if err != nil {
			return err
		}
		workdir = filepath.Dir(flagMockConfig)
	}
	if cmd.Flags().Changed("port") || cfg.Port == 0 {
		cfg.Port = flagMockPort
	}

	server := mock.NewServer(cfg, workdir, log)
	if err := server.Start(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Mock server listening on %s (Ctrl+C to stop)\n", server.Address())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	<-ctx.Done()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Stop(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	log.Info().Int("requests", len(server.GetLogs())).Msg("Mock server stopped")
	return nil
}
