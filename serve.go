package main

import (
	"context"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mbolis/quick-forms/app"
	"github.com/mbolis/quick-forms/config"
	"github.com/mbolis/quick-forms/database"
	"github.com/mbolis/quick-forms/httpx"
	"github.com/mbolis/quick-forms/log"
	"github.com/mbolis/quick-forms/routes"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	if v, err := database.SchemaVersion(e.db); err == nil {
		log.Infof("Schema version %d", v)
	}

	app := app.App{
		DB:           e.db,
		Store:        e.store,
		BearerServer: httpx.NewBearerServer(e.db, e.cfg),
		Config:       e.cfg,
	}
	handler := routes.Wire(app)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// returns after in-flight requests drain, before the deferred Close
	return runServer(ctx, e.cfg, handler)
}

const shutdownTimeout = 10 * time.Second

func runServer(ctx context.Context, cfg config.Config, handler http.Handler) error {
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return errors.Wrap(err, "main.server.listen")
	}
	srv := &http.Server{
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	log.Info("Listening on " + cfg.Url())
	return serve(ctx, srv, ln)
}

// serve runs srv on ln until ctx is done, then waits for Shutdown to drain
// open requests.
func serve(ctx context.Context, srv *http.Server, ln net.Listener) error {
	drained := make(chan error, 1)
	go func() {
		<-ctx.Done()
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		drained <- srv.Shutdown(shutdownCtx)
	}()

	err := srv.Serve(ln)
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if err := <-drained; err != nil {
		return errors.Wrap(err, "main.server.shutdown")
	}
	return nil
}
