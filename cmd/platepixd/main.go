// Package main is the entry point for the platepixd widget daemon.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmylchreest/platepix/internal/catalog"
	"github.com/jmylchreest/platepix/internal/config"
	"github.com/jmylchreest/platepix/internal/daemon"
	"github.com/jmylchreest/platepix/internal/dbus"
	"github.com/jmylchreest/platepix/internal/localize"
	"github.com/jmylchreest/platepix/internal/selection"
	"github.com/jmylchreest/platepix/internal/store"
	"github.com/jmylchreest/platepix/internal/widget"
)

var (
	// Build-time variables
	version = "dev"
)

func main() {
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	appConfigPath := flag.String("config", "", "Path to the shared app config (default: ~/.config/platepix/config.toml)")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		println("platepixd version", version)
		os.Exit(0)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if err := run(logger, *appConfigPath); err != nil {
		logger.Error("platepixd failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, appConfigPath string) error {
	logger.Info("starting platepixd", "version", version)

	// The app config names the group, store, catalogs and language; the
	// daemon config only covers refresh behaviour.
	appCfg, err := config.LoadConfig(appConfigPath)
	if err != nil {
		return err
	}
	cfg, err := config.LoadDaemonConfig()
	if err != nil {
		return err
	}
	daemonConfigPath, err := config.DaemonConfigPath()
	if err != nil {
		return err
	}

	catalogs, err := catalog.NewLoader(appCfg.CatalogDir(), logger).LoadAll()
	if err != nil {
		return err
	}
	bundle, err := localize.Load(appCfg.Locale.Language)
	if err != nil {
		return err
	}

	ns, err := store.Open(appCfg.StoreOptions())
	if err != nil {
		// Serve catalog defaults until restarted with a working store.
		logger.Warn("running without shared namespace", "error", err)
		ns = nil
	} else {
		defer ns.Close()
		logger.Info("shared namespace opened", "group", appCfg.Group.ID, "backend", appCfg.Store.Backend)
	}

	svc := selection.New(ns, selection.Options{Logger: logger})
	provider := widget.NewProvider(svc, catalogs, bundle, appCfg.Theme.Name)

	d, err := daemon.New(provider, daemon.Options{
		Config:     cfg,
		ConfigPath: daemonConfigPath,
		Namespace:  ns,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	if cfg.DBus.Enabled {
		server := dbus.NewWidgetServer(d, logger)
		if err := server.Start(); err != nil {
			logger.Warn("D-Bus service disabled", "error", err)
		} else {
			d.SetPublisher(server)
			defer func() {
				if err := server.Stop(); err != nil {
					logger.Warn("error stopping D-Bus server", "error", err)
				}
			}()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// SIGHUP forces a refresh.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for range hup {
			logger.Info("received SIGHUP, refreshing")
			d.Refresh()
		}
	}()

	logger.Info("platepixd ready", "sets", cfg.Widget.Sets, "snapshot", d.SnapshotPath())
	err = d.Run(ctx)
	signal.Stop(hup)

	logger.Info("platepixd stopped")
	return err
}
