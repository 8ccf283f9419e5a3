package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/dusk-indust/scimpact/internal/config"
	"github.com/dusk-indust/scimpact/internal/impact"
	"github.com/dusk-indust/scimpact/internal/kg"
	"github.com/dusk-indust/scimpact/internal/logging"
	"github.com/dusk-indust/scimpact/internal/metrics"
	"github.com/dusk-indust/scimpact/internal/narrative"
	"github.com/dusk-indust/scimpact/internal/sparql"
)

// app is the fully wired dependency set for one process.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	graph    kg.Graph
	analyzer *impact.Analyzer
}

// loadConfig reads the file, overlays the environment and CLI flags, and
// validates the result.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)
	if flags.Backend != "" {
		cfg.Store.Backend = flags.Backend
	}
	if flags.Fixture != "" {
		cfg.Store.Fixture = flags.Fixture
	}
	if flags.Verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp wires config, logging, metrics, the graph backend, the narrator
// and the analyzer. Callers must call close.
func newApp(ctx context.Context, flags *globalFlags) (*app, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	g, err := openGraph(ctx, cfg, m, logger)
	if err != nil {
		logger.Sync()
		return nil, err
	}

	narrator := newNarrator(cfg, m, logger)

	analyzer := impact.NewAnalyzer(g, narrator,
		impact.WithLogger(logger),
		impact.WithMetrics(m),
		impact.WithMaxDepth(cfg.Traversal.MaxDepth),
	)

	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		metrics:  m,
		graph:    g,
		analyzer: analyzer,
	}, nil
}

func (a *app) close() {
	if err := a.graph.Close(); err != nil {
		a.logger.Warn("close graph", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// openGraph returns the configured graph backend.
func openGraph(ctx context.Context, cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) (kg.Graph, error) {
	switch cfg.Store.Backend {
	case config.BackendSPARQL:
		client, err := sparql.NewHTTPClient(cfg.Store.Endpoint)
		if err != nil {
			return nil, err
		}
		logger.Info("using SPARQL store",
			zap.String("endpoint", client.Endpoint()),
			zap.Duration("timeout", cfg.Store.Timeout),
		)
		return kg.NewSPARQLGraph(sparql.Instrumented(client, m.ObserveStoreQuery), cfg.Store.Timeout), nil

	case config.BackendMemory:
		g := kg.NewMemGraph()
		if err := loadFixture(ctx, cfg.Store.Fixture, g, logger); err != nil {
			return nil, err
		}
		return g, nil

	case config.BackendKuzu:
		return openKuzu(ctx, cfg, logger)

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// loadFixture populates w from the fixture at path. An empty path leaves the
// graph empty.
func loadFixture(ctx context.Context, path string, w kg.Writer, logger *zap.Logger) error {
	if path == "" {
		logger.Warn("no fixture configured; graph is empty")
		return w.InitSchema(ctx)
	}
	fx, err := kg.ReadFixture(path)
	if err != nil {
		return err
	}
	if err := fx.Load(ctx, w); err != nil {
		return fmt.Errorf("load fixture %s: %w", path, err)
	}
	logger.Info("loaded fixture", zap.String("path", path))
	return nil
}

// newNarrator builds the narration stage. Configuration problems degrade to a
// narrator that always yields the failure placeholder.
func newNarrator(cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) impact.Narrator {
	genCfg := narrative.Config{
		Timeout:         cfg.Narrative.Timeout,
		MaxOutputLength: cfg.Narrative.MaxOutputLength,
		Deterministic:   cfg.Narrative.Deterministic,
	}
	opts := []narrative.Option{narrative.WithLogger(logger), narrative.WithMetrics(m)}

	if !cfg.Narrative.Enabled {
		return narrative.New(narrative.Unavailable("narration disabled"), genCfg, opts...)
	}

	text, err := narrative.NewOpenAIGenerator(narrative.OpenAIConfig{
		BaseURL:    cfg.Narrative.BaseURL,
		Model:      cfg.Narrative.Model,
		Credential: cfg.Narrative.Credential,
	})
	if err != nil {
		if !errors.Is(err, narrative.ErrUnavailable) {
			logger.Error("narrative generator", zap.Error(err))
		} else {
			logger.Warn("narrative generator unavailable", zap.Error(err))
		}
		return narrative.New(narrative.Unavailable(err.Error()), genCfg, opts...)
	}

	logger.Info("narrative generator ready",
		zap.String("model", cfg.Narrative.Model),
		zap.String("base_url", cfg.Narrative.BaseURL),
	)
	return narrative.New(text, genCfg, opts...)
}
