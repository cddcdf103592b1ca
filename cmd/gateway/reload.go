package main

import (
	"context"
	"reflect"

	"github.com/vyrodovalexey/avaroute/internal/config"
	"github.com/vyrodovalexey/avaroute/internal/observability"
)

// startConfigWatcher watches configPath and swaps in the routes of every
// valid new configuration.
func startConfigWatcher(ctx context.Context, app *application, configPath string) (*config.Watcher, error) {
	watcher, err := config.NewWatcher(configPath,
		func(newCfg *config.GatewayConfig) {
			app.logger.Info("configuration changed, reloading")
			app.reload(newCfg)
		},
		config.WithLogger(app.logger),
		config.WithErrorCallback(func(err error) {
			app.metrics.RecordConfigReload(false)
			app.logger.Error("configuration reload rejected", observability.Error(err))
		}),
	)
	if err != nil {
		return nil, err
	}

	if err := watcher.Start(ctx); err != nil {
		_ = watcher.Stop()
		return nil, err
	}

	// The file may have changed between the initial load and the watch.
	if last := watcher.LastConfig(); last != nil && !reflect.DeepEqual(last.Routes, app.config.Routes) {
		app.logger.Info("configuration changed before watch started, reloading")
		app.reload(last)
	}
	return watcher, nil
}

// reload rebuilds the route table. Settings that are bound at startup
// only take effect after a restart and are reported as such.
func (app *application) reload(newCfg *config.GatewayConfig) {
	warnRestartRequired(app.config, newCfg, app.logger)

	if err := app.dispatcher.Reload(newCfg); err != nil {
		app.metrics.RecordConfigReload(false)
		app.logger.Error("failed to reload routes", observability.Error(err))
		return
	}

	app.metrics.RecordConfigReload(true)
	app.logger.Info("routes reloaded",
		observability.Int("routes", app.dispatcher.Router().Len()),
	)
}

func warnRestartRequired(old, next *config.GatewayConfig, logger observability.Logger) {
	for _, section := range restartRequiredSections(old, next) {
		logger.Warn("configuration section changed; restart required to apply",
			observability.String("section", section),
		)
	}
}

// restartRequiredSections lists, in a fixed order, the sections that are
// bound at startup and differ between old and next.
func restartRequiredSections(old, next *config.GatewayConfig) []string {
	sections := []struct {
		name    string
		changed bool
	}{
		{"listener", !reflect.DeepEqual(old.Listener, next.Listener)},
		{"rateLimit", !reflect.DeepEqual(old.RateLimit, next.RateLimit)},
		{"redis", !reflect.DeepEqual(old.Redis, next.Redis)},
		{"observability", !reflect.DeepEqual(old.Observability, next.Observability)},
	}

	var changed []string
	for _, s := range sections {
		if s.changed {
			changed = append(changed, s.name)
		}
	}
	return changed
}
