package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	mongo "user-pulse/internal/clients/mongo" // mongo client singleton
	"user-pulse/internal/config"
	"user-pulse/internal/logger"

	"github.com/grafana/pyroscope-go"
	_ "go.uber.org/automaxprocs"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 25 * time.Second

func main() {
	os.Exit(run())
}

// run starts the server and blocks until shutdown. Deferred cleanup runs
// before main exits with the returned code.
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Create bootstrap logger for early errors
	bootstrapLog := log.New(os.Stderr, "bootstrap: ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		bootstrapLog.Printf("config load failed: %v", err)
		return 1
	}

	logg, err := logger.Init(cfg)
	if err != nil {
		bootstrapLog.Printf("logger init failed: %v", err)
		return 1
	}

	if cfg.PyroscopeServerAddress != "" {
		runtime.SetMutexProfileFraction(5)
		runtime.SetBlockProfileRate(5)

		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "user-pulse",
			ServerAddress:   cfg.PyroscopeServerAddress,
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
				pyroscope.ProfileGoroutines,
				pyroscope.ProfileMutexCount,
				pyroscope.ProfileMutexDuration,
				pyroscope.ProfileBlockCount,
				pyroscope.ProfileBlockDuration,
			},
		})
		if err != nil {
			logg.Error("pyroscope start", "err", err)
		} else {
			defer func() { _ = profiler.Stop() }()
			logg.Info("continuous profiling enabled", "server", cfg.PyroscopeServerAddress)
		}
	}

	_, db, err := mongo.Init(ctx, cfg, logg)
	if err != nil {
		logg.Error("mongo init", "err", err)
		return 1
	}
	logg.Info("connected to mongo", "db", db.Name())

	usersRepo, err := mongo.NewUsersRepo(ctx, db)
	if err != nil {
		logg.Error("failed to create users repository", "err", err)
		return 1
	}

	app, err := setupRouter(cfg, usersRepo, mongo.Ping)
	if err != nil {
		logg.Error("router setup", "err", err)
		return 1
	}

	logg.Info("starting UserPulse", "port", cfg.AppPort)
	portStr := fmt.Sprintf(":%d", cfg.AppPort)

	g.Go(func() error {
		err := app.Listen(portStr)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	// Graceful shutdown
	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			return err
		}
		return mongo.Shutdown(shutdownCtx)
	})

	// Wait and exit
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error("fatal", "err", err)
		return 1
	}
	logg.Info("graceful shutdown complete")
	return 0
}
