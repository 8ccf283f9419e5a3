//go:build !cgo

package main

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/dusk-indust/scimpact/internal/config"
	"github.com/dusk-indust/scimpact/internal/kg"
)

func openKuzu(context.Context, *config.Config, *zap.Logger) (kg.Graph, error) {
	return nil, errors.New("kuzu backend requires a cgo build")
}
