package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"mmprofiler/internal/app"
	"mmprofiler/internal/server"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the configuration file")
	mode := flag.String("mode", "single", "run mode: single, montecarlo or serve")
	flag.Parse()

	// 1. Pprof Server (for performance profiling)
	go func() {
		// Localhost only for security
		slog.Info("pprof server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("pprof server failed", slog.Any("error", err))
		}
	}()

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(*configPath); err != nil {
		slog.Error("bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "single":
		result, err := bootstrap.RunSingle(ctx, nil)
		if err != nil {
			slog.Error("run failed", slog.Any("error", err))
			os.Exit(1)
		}
		slog.Info("done", slog.String("label", result.Label), slog.Float64("pnl", result.PnL))

	case "montecarlo":
		if _, err := bootstrap.RunMonteCarlo(ctx); err != nil {
			slog.Error("batch failed", slog.Any("error", err))
			os.Exit(1)
		}

	case "serve":
		srv := server.New(bootstrap.Feed, bootstrap.Config.Server.Addr)

		// The simulation streams into the server while it accepts clients.
		go func() {
			if _, err := bootstrap.RunSingle(ctx, srv); err != nil && ctx.Err() == nil {
				slog.Error("run failed", slog.Any("error", err))
			}
		}()

		if err := srv.Run(ctx); err != nil {
			slog.Error("feed server failed", slog.Any("error", err))
			os.Exit(1)
		}

	default:
		slog.Error("unknown mode", slog.String("mode", *mode))
		os.Exit(1)
	}
}
