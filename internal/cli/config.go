package cli

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/xaenox/offline-assistant/internal/conversation"
	"github.com/xaenox/offline-assistant/internal/metrics"
	"github.com/xaenox/offline-assistant/internal/responder"
	"github.com/xaenox/offline-assistant/internal/storage"
	"github.com/xaenox/offline-assistant/pkg/config"
)

// LocalOwner owns reminders and notes created from the terminal.
const LocalOwner = "local"

// options holds flag values shared by every command.
type options struct {
	configPath string
	mode       string
	driver     string
	logLevel   string
}

func globalFlags(opts *options) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to a YAML config file",
			Sources:     cli.EnvVars("ASSISTANT_CONFIG"),
			Destination: &opts.configPath,
		},
		&cli.StringFlag{
			Name:        "mode",
			Aliases:     []string{"m"},
			Usage:       "Response mode: hybrid, intent or conversational",
			Destination: &opts.mode,
		},
		&cli.StringFlag{
			Name:        "storage",
			Usage:       "Storage driver: memory, sqlite or postgres",
			Destination: &opts.driver,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Destination: &opts.logLevel,
		},
	}
}

// load reads the config file and applies flag overrides on top.
func (o *options) load() (*config.Config, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.mode != "" {
		cfg.Assistant.Mode = o.mode
	}
	if o.driver != "" {
		cfg.Storage.Driver = o.driver
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zcfg.Level = level

	return zcfg.Build()
}

func newStore(cfg *config.Config, logger *zap.Logger) (storage.Gateway, error) {
	return storage.New(storage.Config{
		Driver:     cfg.Storage.Driver,
		SQLitePath: cfg.Storage.SQLitePath,
		Database: storage.DatabaseConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		},
	}, logger)
}

func newEngine(cfg *config.Config, store storage.Gateway, m *metrics.Collector, logger *zap.Logger) *responder.Engine {
	opts := []responder.Option{
		responder.WithLogger(logger),
		responder.WithListLimit(cfg.Assistant.ListLimit),
		responder.WithMetrics(m),
	}
	if cfg.Assistant.Seed != 0 {
		opts = append(opts, responder.WithRand(rand.New(rand.NewSource(cfg.Assistant.Seed))))
	} else {
		opts = append(opts, responder.WithRand(rand.New(rand.NewSource(time.Now().UnixNano()))))
	}
	return responder.New(store, opts...)
}

func sessionFactory(cfg *config.Config, engine *responder.Engine, m *metrics.Collector, logger *zap.Logger) func(owner string) *conversation.Session {
	mode, _ := conversation.ParseMode(cfg.Assistant.Mode)
	return func(owner string) *conversation.Session {
		return conversation.New(engine,
			conversation.WithID(owner),
			conversation.WithMode(mode),
			conversation.WithHistorySize(cfg.Assistant.HistorySize),
			conversation.WithStrictThreshold(cfg.Assistant.StrictThreshold),
			conversation.WithMetrics(m),
			conversation.WithLogger(logger),
		)
	}
}

// env is everything a command needs, built once per invocation.
type env struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   storage.Gateway
	engine  *responder.Engine
	metrics *metrics.Collector
}

// env builds the shared dependencies. Metrics are recorded only when reg is
// non-nil.
func (o *options) env(reg prometheus.Registerer) (*env, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	store, err := newStore(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	var m *metrics.Collector
	if reg != nil {
		if m, err = metrics.New(reg); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	return &env{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		engine:  newEngine(cfg, store, m, logger),
		metrics: m,
	}, nil
}

func (e *env) session(owner string) *conversation.Session {
	return sessionFactory(e.cfg, e.engine, e.metrics, e.logger)(owner)
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.logger.Warn("Failed to close storage", zap.Error(err))
	}
	_ = e.logger.Sync()
}
