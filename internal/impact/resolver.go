package impact

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/dusk-indust/scimpact/internal/kg"
)

// Resolver maps human-supplied display names to canonical entities.
type Resolver struct {
	graph  kg.Graph
	logger *zap.Logger
}

// NewResolver creates a Resolver over g. A nil logger discards output.
func NewResolver(g kg.Graph, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{graph: g, logger: logger}
}

// Resolve returns the entity of class whose label equals displayName,
// ignoring case. No match yields *kg.NotFoundError.
//
// Duplicate labels resolve to the first match in the store's result order.
// That order is not guaranteed to be stable across stores or reloads, so a
// warning is logged whenever more than one entity matches.
func (r *Resolver) Resolve(ctx context.Context, displayName string, class kg.Class) (kg.Entity, error) {
	name := strings.TrimSpace(displayName)
	if name == "" {
		return kg.Entity{}, &kg.NotFoundError{Class: class, Name: displayName}
	}

	matches, err := r.graph.FindByLabel(ctx, class, name)
	if err != nil {
		return kg.Entity{}, err
	}
	if len(matches) == 0 {
		return kg.Entity{}, &kg.NotFoundError{Class: class, Name: displayName}
	}
	if len(matches) > 1 {
		r.logger.Warn("ambiguous label, using first match in store order",
			zap.String("class", string(class)),
			zap.String("name", name),
			zap.Int("matches", len(matches)),
			zap.String("chosen", matches[0].ID.String()))
	}
	return matches[0], nil
}
