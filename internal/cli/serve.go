package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/daleel/internal/api"
	"github.com/roach88/daleel/internal/audit"
	"github.com/roach88/daleel/internal/auth"
	"github.com/roach88/daleel/internal/config"
	"github.com/roach88/daleel/internal/logging"
	"github.com/roach88/daleel/internal/metrics"
	"github.com/roach88/daleel/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr     string
	Database string

	// Ready is called with the bound address once the listener is open.
	// Used by tests; nil in production.
	Ready func(addr string)
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the Daleel HTTP API.

Opens (and if needed creates) the SQLite database, then serves the public,
auth and admin routes until interrupted. On SIGINT or SIGTERM in-flight
requests get the configured shutdown timeout to finish.

Example:
  daleel serve --config ./daleel.yaml
  daleel serve --addr :9090 --db /var/lib/daleel/daleel.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if opts.Addr != "" {
		cfg.Server.Addr = opts.Addr
	}
	if opts.Database != "" {
		cfg.Database.Path = opts.Database
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Production())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build logger", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	m := metrics.New()
	st, err := store.Open(cfg.Database.Path,
		store.WithObserver(m),
		store.WithObserver(logging.GuardObserver(logger)))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", zap.Error(closeErr))
		}
	}()

	sessions, err := auth.NewManager(st, cfg.Session.TTL.D(), 0)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid session settings", err)
	}
	defer sessions.Close()

	srv, err := api.New(api.Deps{
		Config:   cfg,
		Store:    st,
		Sessions: sessions,
		Audit:    audit.NewRecorder(st, logger),
		Metrics:  m,
		Logger:   logger,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build HTTP server", err)
	}
	defer srv.Close()

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := listenAndServe(ctx, cfg, srv.Handler(), logger, opts.Ready); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}
	logger.Info("server stopped gracefully")
	return nil
}

// listenAndServe serves h on cfg.Server.Addr until ctx is done, then shuts
// down within cfg.Server.ShutdownTimeout.
func listenAndServe(ctx context.Context, cfg config.Config, h http.Handler, logger *zap.Logger, ready func(string)) error {
	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Server.Addr, err)
	}

	httpSrv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.Serve(ln)
	}()
	logger.Info("server listening",
		zap.String("addr", ln.Addr().String()),
		zap.String("env", cfg.Env),
		zap.String("db", cfg.Database.Path))
	if ready != nil {
		ready(ln.Addr().String())
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout.D()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.D())
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
