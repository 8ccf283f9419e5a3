// Package impact answers "what breaks if supplier X fails": it resolves the
// supplier, aggregates the parts, products and regions its failure reaches,
// and attaches a best-effort narrative.
package impact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dusk-indust/scimpact/internal/kg"
	"github.com/dusk-indust/scimpact/internal/metrics"
	"github.com/dusk-indust/scimpact/internal/sparql"
	"github.com/dusk-indust/scimpact/internal/traversal"
)

// NotFoundHint is returned with every not-found report.
const NotFoundHint = "Check the exact supplier label in the source data, or confirm the knowledge graph was loaded into the store."

// Narrator turns evidence text into a narrative. Implementations must not
// fail: any problem is reported inside the returned string.
type Narrator interface {
	Summarize(ctx context.Context, supplierName, evidenceText string) string
}

// Analyzer is the top-level impact analysis use case.
type Analyzer struct {
	resolver   *Resolver
	aggregator *Aggregator
	narrator   Narrator
	logger     *zap.Logger
	metrics    *metrics.Metrics
	maxDepth   int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *zap.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Analyzer) { a.metrics = m }
}

// WithMaxDepth bounds subcomponent closures.
func WithMaxDepth(d int) Option {
	return func(a *Analyzer) { a.maxDepth = d }
}

// NewAnalyzer wires a resolver, traversal engine and aggregator over g.
// narrator may be nil, in which case reports carry an empty narrative.
func NewAnalyzer(g kg.Graph, narrator Narrator, opts ...Option) *Analyzer {
	a := &Analyzer{narrator: narrator, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	a.resolver = NewResolver(g, a.logger)
	a.aggregator = NewAggregator(traversal.NewEngine(g), a.maxDepth)
	return a
}

// Resolver exposes the analyzer's entity resolver.
func (a *Analyzer) Resolver() *Resolver {
	return a.resolver
}

// Analyze runs resolve, aggregate and narrate for supplierName.
//
// An unknown supplier is a normal result: the report has NotFound set and
// neither traversal nor narration runs. Store failures abort the request
// with no partial report. A cancelled ctx yields ctx.Err().
func (a *Analyzer) Analyze(ctx context.Context, supplierName string, limits Limits) (report *Report, err error) {
	start := time.Now()
	logger := a.logger.With(zap.String("supplier", supplierName))
	defer func() {
		a.metrics.ObserveRequest(requestOutcome(report, err), time.Since(start))
	}()

	if err := limits.Validate(); err != nil {
		return nil, err
	}

	supplier, err := a.resolver.Resolve(ctx, supplierName, kg.ClassSupplier)
	if err != nil {
		var nf *kg.NotFoundError
		if errors.As(err, &nf) {
			logger.Info("supplier not found")
			return &Report{
				NotFound: true,
				Error:    fmt.Sprintf("Supplier not found in KG: %s", supplierName),
				Hint:     NotFoundHint,
			}, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logger.Error("resolve supplier failed", zap.Error(err))
		return nil, fmt.Errorf("resolve supplier: %w", err)
	}

	ev, err := a.aggregator.Build(ctx, supplier.ID, limits)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logger.Error("build evidence failed", zap.String("supplier_id", supplier.ID.String()), zap.Error(err))
		return nil, fmt.Errorf("build evidence: %w", err)
	}

	var narrative string
	if a.narrator != nil {
		narrative = a.narrator.Summarize(ctx, supplierName, ev.Text)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	logger.Info("impact analysis complete",
		zap.String("supplier_id", supplier.ID.String()),
		zap.Int("parts", len(ev.Parts)),
		zap.Int("products", len(ev.Products)),
		zap.Int("regions", len(ev.Regions)),
		zap.Duration("elapsed", time.Since(start)))

	return newReport(supplierName, supplier, ev, narrative), nil
}

func requestOutcome(r *Report, err error) string {
	switch {
	case err == nil && r != nil && r.NotFound:
		return metrics.OutcomeNotFound
	case err == nil:
		return metrics.OutcomeFound
	case errors.Is(err, ErrInvalidLimits):
		return metrics.OutcomeInvalid
	case errors.Is(err, sparql.ErrStore):
		return metrics.OutcomeStore
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeCanceled
	default:
		return metrics.OutcomeStore
	}
}
