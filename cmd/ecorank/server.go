package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/ecorank/internal/config"
	"github.com/hyperjump/ecorank/internal/inference"
	"github.com/hyperjump/ecorank/internal/pipeline"
	"github.com/hyperjump/ecorank/internal/prompt"
	"github.com/hyperjump/ecorank/internal/server"
	"github.com/hyperjump/ecorank/pkg/utils"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServer,
}

// components holds what the server and score commands share.
type components struct {
	Config   *config.Config
	Logger   *zap.Logger
	Prompt   *prompt.Template
	Pipeline *pipeline.Pipeline
}

// initializeComponents loads configuration and wires the pipeline to the configured inference provider.
func initializeComponents(ctx context.Context) (*components, error) {
	cfg, resolvedConfigPath, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	debugMode := cfg.Debug || debugFlag
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
		zap.String("provider", cfg.Inference.Provider),
		zap.String("model", cfg.Inference.Model),
	)

	tmpl, err := prompt.LoadFile(cfg.Prompt.File)
	if err != nil {
		return nil, err
	}
	client, err := inference.NewClient(ctx, &cfg.Inference, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create inference client: %w", err)
	}
	p := pipeline.New(client,
		pipeline.WithInstruction(tmpl),
		pipeline.WithTimeout(cfg.Inference.Timeout()),
		pipeline.WithLogger(logger),
	)
	return &components{Config: cfg, Logger: logger, Prompt: tmpl, Pipeline: p}, nil
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := initializeComponents(ctx)
	if err != nil {
		return err
	}
	logger := c.Logger
	defer logger.Sync()

	g, gctx := errgroup.WithContext(ctx)

	if c.Config.Prompt.Watch && c.Config.Prompt.File != "" {
		w := prompt.NewWatcher(c.Config.Prompt.File, c.Prompt, prompt.WithLogger(logger))
		if err := w.Start(gctx); err != nil {
			return fmt.Errorf("failed to watch prompt file: %w", err)
		}
		defer w.Stop()
	}

	srv := server.NewServer(c.Pipeline, &c.Config.Server, server.Info{
		Provider:     c.Config.Inference.Provider,
		Model:        c.Config.Inference.Model,
		PromptSource: c.Prompt.Source,
	}, logger)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Stop(shutdownCtx)
	})
	return g.Wait()
}
