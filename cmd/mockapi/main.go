package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/drexxdk/tanstack-table/internal/assignment"
	"github.com/drexxdk/tanstack-table/internal/config"
	"github.com/drexxdk/tanstack-table/internal/fixtures"
	"github.com/drexxdk/tanstack-table/internal/logger"
	"github.com/drexxdk/tanstack-table/internal/mockapi"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	fixturePath := flag.String("fixtures", cfg.Mock.Fixtures, "YAML fixture file (defaults to the built-in assignments)")
	port := flag.Int("port", cfg.Mock.Port, "listen port")
	delay := flag.Duration("delay", 0, "artificial latency added to every table response")
	flag.Parse()

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	list, err := loadFixtures(*fixturePath)
	if err != nil {
		logr.Fatal("fixtures_invalid", zap.String("path", *fixturePath), zap.Error(err))
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	server := mockapi.New(list, logr, mockapi.Options{Delay: *delay, Metrics: mockapi.NewMetrics()})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15*time.Second + *delay,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logr.Info("server_starting", zap.String("addr", srv.Addr), zap.Int("assignments", len(list)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		for {
			select {
			case <-hup:
				reload(server, *fixturePath, logr)
			case <-gctx.Done():
				logr.Info("server_stopping")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		}
	})

	if err := g.Wait(); err != nil {
		logr.Fatal("server_failed", zap.Error(err))
	}
}

func loadFixtures(path string) ([]assignment.Assignment, error) {
	if path == "" {
		return fixtures.Default(), nil
	}
	return fixtures.Load(path)
}

// reload re-reads the fixture file; built-in fixtures get fresh ids.
func reload(server *mockapi.Server, path string, logr *zap.Logger) {
	list, err := loadFixtures(path)
	if err != nil {
		logr.Warn("fixtures_reload_failed", zap.String("path", path), zap.Error(err))
		return
	}
	server.Replace(list)
}
