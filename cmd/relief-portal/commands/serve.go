package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"relief-portal-go/internal/app"
	"relief-portal-go/pkg/logger"

	"github.com/spf13/cobra"
)

var shutdownTimeout time.Duration

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the JSON gateway",
	Long: `Serve the portal over HTTP under /api.

The process holds one session; sign in through POST /api/session/login
or start with SESSION_TOKEN set to restore an existing one.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 5*time.Second, "Grace period for in-flight requests")
}

func runServe() error {
	log := logger.NewFromEnv()
	log.Info("app: starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(log)
	if err != nil {
		log.Critical("app: init failed", "err", err)
		return err
	}
	application.Start(ctx)

	srv := application.HTTPServer()
	log.Info("http: listening", "addr", srv.Addr)

	serverErrCh := make(chan error, 1)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("app: shutdown signal received")
	case err := <-serverErrCh:
		if err != nil {
			log.Critical("http: server failed", "addr", srv.Addr, "err", err)
			runErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("http: graceful shutdown failed", "err", err)
		runErr = errors.Join(runErr, err)
	}

	if err := application.Close(); err != nil {
		log.Error("app: close failed", "err", err)
		runErr = errors.Join(runErr, err)
	}

	if runErr == nil {
		log.Info("app: stopped")
	}
	return runErr
}
