package main

import (
	"context"

	"github.com/vyrodovalexey/avaroute/internal/config"
	"github.com/vyrodovalexey/avaroute/internal/observability"
)

// run starts the gateway and blocks until ctx is cancelled.
func run(ctx context.Context, flags cliFlags, bootLogger observability.Logger) error {
	cfg, path, err := loadAndValidateConfig(flags.configPath, bootLogger)
	if err != nil {
		return err
	}

	logger, err := configuredLogger(flags, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	app, err := initApplication(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if err := app.start(ctx); err != nil {
		app.shutdown(nil)
		return err
	}

	var watcher *config.Watcher
	if flags.watch {
		watcher, err = startConfigWatcher(ctx, app, path)
		if err != nil {
			logger.Warn("config watcher disabled", observability.Error(err))
		}
	}

	<-ctx.Done()
	logger.Info("received shutdown signal")

	app.shutdown(watcher)
	return nil
}

// start binds the gateway listener and the metrics listener.
func (app *application) start(ctx context.Context) error {
	if err := app.server.Start(ctx); err != nil {
		return err
	}

	if app.metricsServer != nil {
		if err := app.metricsServer.Start(ctx); err != nil {
			return err
		}
	}
	return nil
}

// shutdown drains the gateway and releases every component.
func (app *application) shutdown(watcher *config.Watcher) {
	app.healthChecker.SetDraining(true)

	timeout := app.config.Listener.ShutdownTimeout.Duration()
	if timeout <= 0 {
		timeout = config.DefaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if watcher != nil {
		_ = watcher.Stop()
	}

	if app.server.IsRunning() {
		if err := app.server.Stop(shutdownCtx); err != nil {
			app.logger.Error("failed to stop gateway gracefully", observability.Error(err))
		}
	}

	if app.metricsServer != nil && app.metricsServer.IsRunning() {
		if err := app.metricsServer.Stop(shutdownCtx); err != nil {
			app.logger.Error("failed to stop metrics server gracefully", observability.Error(err))
		}
	}

	if err := app.limiter.Close(); err != nil {
		app.logger.Error("failed to close rate limiter", observability.Error(err))
	}

	if err := app.tracer.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("failed to shutdown tracer", observability.Error(err))
	}

	app.logger.Info("gateway stopped")
}
