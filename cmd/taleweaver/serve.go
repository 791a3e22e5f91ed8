package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"taleweaver/internal/api"
	"taleweaver/internal/game/director"
	"taleweaver/internal/session"
)

const (
	sessionIdleLimit = 2 * time.Hour
	pruneInterval    = 10 * time.Minute
)

func runServe(ctx context.Context, a *app) error {
	gen, err := a.generator(ctx)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	sessions := session.NewRegistry(func() *director.Director {
		return a.newDirector(gen)
	})
	router := api.NewRouter(api.NewHandler(sessions, a.store, a.logger), a.logger)

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		a.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		ticker := time.NewTicker(pruneInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if n := sessions.Prune(sessionIdleLimit); n > 0 {
					a.logger.Info("pruned idle sessions", zap.Int("count", n), zap.Int("remaining", sessions.Len()))
				}
			}
		}
	})

	return g.Wait()
}
