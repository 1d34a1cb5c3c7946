package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/platepix/internal/catalog"
	"github.com/jmylchreest/platepix/internal/config"
	"github.com/jmylchreest/platepix/internal/localize"
	"github.com/jmylchreest/platepix/internal/selection"
	"github.com/jmylchreest/platepix/internal/store"
	"github.com/jmylchreest/platepix/internal/widget"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// errSharedUnavailable is returned by commands that must write to the
// shared namespace when it could not be opened.
var errSharedUnavailable = errors.New("shared namespace unavailable; see --verbose for details")

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose    bool
		configPath string
		language   string
		backend    string
	}
	logger *slog.Logger

	// namespace is nil when the shared store could not be opened.
	namespace store.Namespace
	catalogs  map[catalog.Set]*catalog.Catalog
	bundle    *localize.Bundle
	selector  *selection.Service
	provider  *widget.Provider
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "platepix",
	Short: "Daily food motivation for your desktop",
	Long: `platepix shows one motivational message per day, shared with the
platepixd widget process so both always display the same item.

Running platepix without a subcommand launches the interactive TUI.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		var err error
		cfg, err = loadConfig(globalOpts.configPath, globalOpts.backend)
		if err != nil {
			return err
		}

		// Catalog problems are start-up contract violations.
		catalogs, err = catalog.NewLoader(cfg.CatalogDir(), logger).LoadAll()
		if err != nil {
			return fmt.Errorf("failed to load catalogs: %w", err)
		}

		lang := cfg.Locale.Language
		if globalOpts.language != "" {
			lang = globalOpts.language
		}
		bundle, err = localize.Load(lang)
		if err != nil {
			return fmt.Errorf("failed to load translations: %w", err)
		}

		namespace = openNamespace()
		selector = selection.New(namespace, selection.Options{Logger: logger})
		provider = widget.NewProvider(selector, catalogs, bundle, cfg.Theme.Name)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if namespace != nil {
			return namespace.Close()
		}
		return nil
	},
	// Default to TUI when no subcommand is provided
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/platepix/config.toml)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.language, "lang", "",
		"Display language, e.g. en or de (default: from config or environment)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.backend, "backend", "",
		"Shared store backend: file, sqlite or memory (default: from config)")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// loadConfig loads the config file and applies the --backend override.
// The override is validated like the file so a typo fails the command
// instead of silently running without the shared namespace.
func loadConfig(path, backend string) (*config.Config, error) {
	c, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if backend != "" {
		c.Store.Backend = backend
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("--backend: %w", err)
		}
	}
	return c, nil
}

// openNamespace opens the shared namespace. Failure is not fatal: the app
// keeps working with catalog defaults.
func openNamespace() store.Namespace {
	if err := config.EnsureDataDir(); err != nil {
		logger.Warn("failed to create data directory", "error", err)
	}

	ns, err := store.Open(cfg.StoreOptions())
	if err != nil {
		logger.Warn("running without shared namespace", "error", err)
		return nil
	}
	logger.Debug("opened shared namespace", "group", cfg.Group.ID, "backend", cfg.Store.Backend)
	return ns
}

// requireNamespace returns the shared namespace or errSharedUnavailable.
func requireNamespace() (store.Namespace, error) {
	if namespace == nil {
		return nil, errSharedUnavailable
	}
	return namespace, nil
}

// parseSets converts set arguments, defaulting to every loaded set.
func parseSets(args []string) ([]catalog.Set, error) {
	if len(args) == 0 {
		return provider.Sets(), nil
	}
	sets := make([]catalog.Set, 0, len(args))
	for _, a := range args {
		set, err := catalog.ParseSet(a)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	return sets, nil
}
