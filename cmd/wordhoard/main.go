package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/wordhoard/internal/archive"
	"codeberg.org/snonux/wordhoard/internal/cache"
	"codeberg.org/snonux/wordhoard/internal/cli"
	"codeberg.org/snonux/wordhoard/internal/logging"
	"codeberg.org/snonux/wordhoard/internal/lookup"
	"codeberg.org/snonux/wordhoard/internal/mcpserver"
	"codeberg.org/snonux/wordhoard/internal/metrics"
	"codeberg.org/snonux/wordhoard/internal/processor"
	"codeberg.org/snonux/wordhoard/internal/tracing"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, flags)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, flags *cli.Flags) error {
	ctx := cmd.Context()

	// Handle --archive flag
	if flags.Archive {
		dest, err := archive.ArchiveCache(viper.GetString("cache.dir"))
		if err != nil {
			return fmt.Errorf("failed to archive cache: %w", err)
		}
		fmt.Printf("Archived cache to %s\n", dest)
		return nil
	}

	if !flags.MCPMode && len(flags.Sources) == 0 {
		return fmt.Errorf("at least one --source file is required")
	}

	logger, err := logging.New(cli.LoggingConfig())
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()
	if path := logger.FilePath(); path != "" {
		logger.Info("Logging to file", "path", path)
	}

	sessionID := uuid.NewString()
	shutdown, err := tracing.Setup(ctx, cli.TracingConfig(sessionID))
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("Tracing shutdown failed", "error", err)
		}
	}()

	recorder := metrics.NewRecorder()
	defer writeMetrics(logger.Logger, recorder)

	// Handle --list-words flag
	if flags.ListWords {
		words, err := processor.LoadWords(ctx, flags.Sources, cli.MinWordLength(), logger.Logger, recorder)
		if err != nil {
			return err
		}
		for _, word := range words {
			fmt.Println(word)
		}
		return nil
	}

	client, err := newClient(logger.Logger, recorder)
	if err != nil {
		return err
	}

	store, err := cache.Open(ctx, cli.CacheConfig())
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer func() { _ = store.Close() }()

	// Handle --mcp flag
	if flags.MCPMode {
		srv := mcpserver.New(mcpserver.Deps{
			Client:        client,
			Store:         store,
			Logger:        logger.Logger,
			MinWordLength: cli.MinWordLength(),
		})
		if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("MCP server failed: %w", err)
		}
		return nil
	}

	words, err := processor.LoadWords(ctx, flags.Sources, cli.MinWordLength(), logger.Logger, recorder)
	if err != nil {
		return err
	}

	opts := cli.ProcessorOptions(flags)
	opts.SessionID = sessionID
	proc := processor.New(processor.Deps{
		Client:   client,
		Store:    store,
		Logger:   logger.Logger,
		Recorder: recorder,
	}, opts)

	summary, runErr := proc.Run(ctx, words)
	summary.Log(logger.Logger)

	if processor.IsOrderlyStop(runErr) {
		return nil
	}
	return runErr
}

func newClient(logger *slog.Logger, recorder *metrics.Recorder) (*lookup.Client, error) {
	client, err := lookup.NewClient(cli.LookupConfig(),
		lookup.WithLogger(logger),
		lookup.WithRecorder(recorder),
	)
	var cfgErr *lookup.ConfigurationError
	if errors.As(err, &cfgErr) {
		return nil, fmt.Errorf("%w (set MERRIAM_WEBSTER_DICT_API_KEY and MERRIAM_WEBSTER_THES_API_KEY)", err)
	}
	return client, err
}

func writeMetrics(logger *slog.Logger, recorder *metrics.Recorder) {
	path := cli.MetricsFile()
	if path == "" {
		return
	}
	if err := recorder.WriteTextfile(path); err != nil {
		logger.Error("Failed to write metrics", "path", path, "error", err)
		return
	}
	logger.Info("Metrics written", "path", path)
}
