//go:build cgo

package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dusk-indust/scimpact/internal/config"
	"github.com/dusk-indust/scimpact/internal/kg"
)

func openKuzu(ctx context.Context, cfg *config.Config, logger *zap.Logger) (kg.Graph, error) {
	var (
		g   *kg.KuzuGraph
		err error
	)
	if cfg.Store.KuzuPath == "" {
		g, err = kg.NewKuzuGraph()
	} else {
		g, err = kg.NewKuzuFileGraph(cfg.Store.KuzuPath)
	}
	if err != nil {
		return nil, fmt.Errorf("open kuzu graph: %w", err)
	}

	if err := loadFixture(ctx, cfg.Store.Fixture, g, logger); err != nil {
		g.Close()
		return nil, err
	}
	if stats, err := g.Stats(ctx); err == nil {
		logger.Info("kuzu graph ready",
			zap.Int("nodes", stats.NodeCount),
			zap.Int("edges", stats.EdgeCount),
		)
	}
	return g, nil
}
