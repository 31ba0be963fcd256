package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/samvad-newsdesk/internal/app"
	"github.com/samvad-hq/samvad-newsdesk/internal/config"
	"github.com/samvad-hq/samvad-newsdesk/internal/logger"
	"github.com/samvad-hq/samvad-newsdesk/internal/news"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "newsdesk failed: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "newsdesk",
		Short:         "Topic news aggregator with AI summaries",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
	root.AddCommand(newServeCmd(), newFetchCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

type fetchFlags struct {
	topic   string
	page    int
	refresh bool
	verbose bool
}

func newFetchCmd() *cobra.Command {
	var flags fetchFlags
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Aggregate one topic and print the page as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFetch(cmd, flags)
		},
	}
	cmd.Flags().StringVar(&flags.topic, "topic", "tech", "topic to aggregate")
	cmd.Flags().IntVar(&flags.page, "page", 1, "page number (1-based)")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "bypass the cache")
	cmd.Flags().BoolVar(&flags.verbose, "verbose", false, "write structured logs to stdout")
	return cmd
}

func runServe(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	log.InfoObj("newsdesk starting", "config", map[string]any{
		"app":         cfg.AppName,
		"env":         cfg.Env,
		"port":        cfg.Port,
		"ai_provider": cfg.AIProvider,
		"page_size":   cfg.NewsPageSize,
		"strict":      cfg.ValidateTopicStrict,
	})

	ctx, stop := signal.NotifyContext(contextOrBackground(parent), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := app.NewServer(ctx, cfg, log)
	if err != nil {
		log.ErrorObj("failed to initialize server", "error", err.Error())
		return err
	}

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server run: %w", err)
	}
	return nil
}

func runFetch(cmd *cobra.Command, flags fetchFlags) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var log logger.Logger = logger.NopLogger{}
	if flags.verbose {
		if log, err = logger.Init(cfg); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer logger.Close()
	}

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := app.NewServer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer srv.Close()

	page, err := srv.Fetch(ctx, news.Request{
		Topic:        flags.topic,
		Page:         flags.page,
		ForceRefresh: flags.refresh,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(page)
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
