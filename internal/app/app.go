package app

import (
	"context"
	"time"

	"github.com/desprit/bicklebow/internal/config"
	"github.com/desprit/bicklebow/internal/logger"
	"github.com/desprit/bicklebow/internal/pipeline"
	"github.com/desprit/bicklebow/internal/store"
	adminhttp "github.com/desprit/bicklebow/internal/transport/http/admin"
)

// App hosts repeated pipeline runs plus the optional admin API.
type App struct {
	cfg   *config.Config
	store store.Store
	pipe  *pipeline.Pipeline
	admin *adminhttp.Server
}

// Pipeline exposes the wired pipeline for one-shot invocations.
func (a *App) Pipeline() *pipeline.Pipeline { return a.pipe }

// Store exposes the wired catalog store for maintenance commands.
func (a *App) Store() store.Store { return a.store }

// Run executes the pipeline on the configured interval until ctx is
// canceled. The in-flight run always completes before teardown: there is no
// mid-run cancellation, so runs receive a fresh context rather than ctx.
func (a *App) Run(ctx context.Context) error {
	if a.admin != nil {
		a.admin.Start()
	}
	interval := time.Duration(a.cfg.App.RunIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		a.runOnce()
		select {
		case <-ctx.Done():
			logger.Infof("shutdown requested, closing after current run")
			return a.Close()
		case <-ticker.C:
		}
	}
}

func (a *App) runOnce() {
	report, err := a.pipe.Run(context.Background())
	if err != nil {
		logger.Errorf("run %s failed: %v", report.RunID, err)
	}
}

// Close tears down the admin API and the store connection.
func (a *App) Close() error {
	if a.admin != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.admin.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("admin api shutdown: %v", err)
		}
	}
	return a.store.Close()
}
