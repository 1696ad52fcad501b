/*
Package cli implements the supply-intel commands.

Every command that touches models builds an env: configuration (file, then
environment, then flags), a zap logger, prometheus collectors, the SQLite
activity log with its background tracker, and the intelligence service wired
to all of them. env.close flushes activity and writes the metrics textfile.
*/
package cli

import (
	"fmt"

	"github.com/khanglvm/supply-intel/internal/activity"
	"github.com/khanglvm/supply-intel/internal/config"
	"github.com/khanglvm/supply-intel/internal/intel"
	"github.com/khanglvm/supply-intel/internal/logging"
	"github.com/khanglvm/supply-intel/internal/metrics"
	"github.com/khanglvm/supply-intel/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// flagBindings maps config keys to the global flags overriding them.
var flagBindings = []struct {
	key  string
	flag string
}{
	{"model.path", "model"},
	{"logging.level", "log-level"},
	{"logging.format", "log-format"},
	{"metrics.textfile", "metrics-file"},
}

// AddGlobalFlags registers the persistent flags shared by all commands.
func AddGlobalFlags(root *cobra.Command) {
	flags := root.PersistentFlags()
	flags.String("config", "", "Config file (default ~/.supply-intel.yaml)")
	flags.String("model", "", "Model artifact path or redis://host:port/db?key=name")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("log-format", "", "Log format: console or json")
	flags.String("metrics-file", "", "Write prometheus metrics to this textfile on exit")
}

type env struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
	store   *storage.SQLiteStorage
	tracker *activity.Tracker
	svc     *intel.Service
}

// loadConfig resolves configuration for cmd, letting changed flags win.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := viper.New()
	flags := cmd.Flags()

	for _, b := range flagBindings {
		if f := flags.Lookup(b.flag); f != nil {
			if err := v.BindPFlag(b.key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag --%s: %w", b.flag, err)
			}
		}
	}

	path, _ := flags.GetString("config")
	return config.LoadWith(v, path)
}

func newEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}

	store := storage.Disabled()
	if cfg.Storage.Enabled {
		store = storage.NewStorage(cfg.Storage.Path, logger)
	}

	m := metrics.New()
	tracker := activity.NewTracker(store, logger)

	svc := intel.New(
		intel.WithLogger(logger),
		intel.WithMetrics(m),
		intel.WithTracker(tracker),
		intel.WithScorer(cfg.Scoring.Scorer()),
		intel.WithForecastParams(cfg.Forecast.Params()),
		intel.WithMaxFeatures(cfg.Similarity.MaxFeatures),
	)

	return &env{
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		store:   store,
		tracker: tracker,
		svc:     svc,
	}, nil
}

// loadModel restores the persisted bundle. A missing artifact is fine.
func (e *env) loadModel(cmd *cobra.Command) error {
	if _, err := e.svc.Load(cmd.Context(), e.cfg.Model.Path); err != nil {
		return fmt.Errorf("failed to load model from %s: %w", e.cfg.Model.Path, err)
	}
	return nil
}

func (e *env) close() {
	e.tracker.Stop()

	if err := e.store.Close(); err != nil {
		e.logger.Warn("failed to close activity log", zap.Error(err))
	}

	if e.cfg.Metrics.Textfile != "" {
		if err := e.metrics.WriteTextfile(e.cfg.Metrics.Textfile); err != nil {
			e.logger.Warn("failed to export metrics", zap.Error(err))
		}
	}

	_ = e.logger.Sync()
}
