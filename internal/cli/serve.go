package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/askwave/askwave/internal/config"
	"github.com/askwave/askwave/internal/dispatcher"
	"github.com/askwave/askwave/internal/domain/activeusers"
	"github.com/askwave/askwave/internal/domain/group"
	"github.com/askwave/askwave/internal/domain/question"
	"github.com/askwave/askwave/internal/executor"
	"github.com/askwave/askwave/internal/hub"
	"github.com/askwave/askwave/internal/readmodel"
	"github.com/askwave/askwave/internal/seed"
	"github.com/askwave/askwave/internal/server"
	"github.com/askwave/askwave/internal/store"
	"github.com/askwave/askwave/internal/workflow"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Config string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long: `Run the HTTP command, query, and streaming server.

The event log is replayed into the in-memory read model at startup,
then the server accepts commands and serves queries and the
server-sent events stream.

Examples:
  askwave serve
  askwave serve --config askwave.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "path to YAML config file")

	return cmd
}

func runServe(opts *ServeOptions) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open event store", err)
	}
	defer st.Close()

	model := readmodel.New()
	events, err := st.ReadAll(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to replay event log", err)
	}
	for _, e := range events {
		model.Apply(e)
	}
	slog.Info("read model rebuilt", "events", len(events))

	h := hub.New()
	exec := executor.New(st,
		question.Projector{},
		group.Projector{},
		activeusers.Projector{},
	).WithApplier(model)
	disp := dispatcher.New(exec, h)
	exec.WithPublisher(disp)
	workflows := workflow.New(exec, model)

	srv := server.New(exec, workflows, model, h, cfg.ActiveUsersID)
	if err := srv.EnsureActiveUsers(ctx); err != nil {
		return WrapExitError(ExitCommandError, "failed to prepare roster", err)
	}

	if cfg.SeedFile != "" {
		if err := applySeedFile(ctx, cfg.SeedFile, workflows, model); err != nil {
			return WrapExitError(ExitCommandError, "failed to apply seed file", err)
		}
	}

	dispatchDone := make(chan struct{})
	go func() {
		defer close(dispatchDone)
		if err := disp.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("dispatcher stopped", "error", err)
		}
	}()

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Handler(),
	}
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", cfg.ListenAddr)
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-serveErr:
		return WrapExitError(ExitCommandError, "http server failed", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown incomplete", "error", err)
	}
	disp.Stop()
	<-dispatchDone
	return nil
}

func applySeedFile(ctx context.Context, path string, workflows *workflow.Workflows, model *readmodel.Model) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	doc, err := seed.Parse(data)
	if err != nil {
		return err
	}
	return seed.NewSeeder(workflows, model).Apply(ctx, doc)
}
