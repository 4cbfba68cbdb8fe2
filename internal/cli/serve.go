package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/runnerr0/docrag/internal/answer"
	"github.com/runnerr0/docrag/internal/web"
	"go.uber.org/zap"
)

// Execute implements the go-flags Commander interface for ServeCommand.
func (c *ServeCommand) Execute(args []string) error {
	env, err := loadEnvironment(c.globals)
	if err != nil {
		return err
	}
	defer env.close()

	ctx, cancel := signalContext()
	defer cancel()

	store, db, err := env.openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	defer store.Close()

	r, err := env.ranker(store)
	if err != nil {
		return err
	}
	gen, err := env.completer("answer")
	if err != nil {
		return err
	}

	defaults := web.Defaults{
		Temperature: env.cfg.Generation.Temperature,
		MaxTokens:   env.cfg.Generation.MaxTokens,
		NumDocs:     env.cfg.Retrieval.DefaultDocs,
	}
	srv := web.NewServer(answer.NewAnswerer(r, gen, env.logger), defaults, "", env.logger, env.metrics)

	host, port := env.cfg.Server.Host, env.cfg.Server.Port
	if c.Host != "" {
		host = c.Host
	}
	if c.Port != 0 {
		port = c.Port
	}
	httpServer := srv.HTTPServer(net.JoinHostPort(host, strconv.Itoa(port)))

	env.logger.Info("starting server",
		zap.String("addr", httpServer.Addr), zap.String("version", c.version), zap.String("database", env.dbPath))
	fmt.Printf("Serving on http://%s\n", httpServer.Addr)
	return runServer(ctx, httpServer, env.logger)
}

// runServer serves until ctx is cancelled, then shuts down gracefully.
func runServer(ctx context.Context, srv *http.Server, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
