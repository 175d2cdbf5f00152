package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/loykin/proclife"
	"github.com/loykin/proclife/internal/logger"
	"github.com/loykin/proclife/internal/metrics"
	"github.com/loykin/proclife/internal/server"
)

// runMonitor wires the daemon and blocks until a shutdown signal. With a
// launch group it spawns and manages that single process; otherwise it
// attaches to everything already running.
func runMonitor(configPath, group string, argv []string) error {
	cfg, err := proclife.LoadConfig(configPath)
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.Log)
	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return err
	}

	mon, err := proclife.New(cfg, log)
	if err != nil {
		return err
	}

	if group != "" {
		if _, err := mon.Registry().Launch(group, argv, time.Now()); err != nil {
			return err
		}
	} else {
		attached := mon.Registry().AttachExisting(time.Now())
		log.Info("attached to existing processes", "count", attached)
	}

	if cfg.Listen != "" {
		srv := server.NewServer(cfg.Listen, mon)
		log.Info("http api listening", "addr", cfg.Listen)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	return mon.Run(context.Background())
}
