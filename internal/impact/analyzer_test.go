package impact

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/scimpact/internal/kg"
	"github.com/dusk-indust/scimpact/internal/metrics"
	"github.com/dusk-indust/scimpact/internal/sparql"
)

func TestAnalyze_Found(t *testing.T) {
	narrator := &recordingNarrator{answer: "1) Summary of impact: bikes stop."}
	a := NewAnalyzer(smallGraph(t), narrator)

	report, err := a.Analyze(context.Background(), "acme", DefaultLimits())
	require.NoError(t, err)
	require.False(t, report.NotFound)

	assert.Equal(t, SupplierRef{Name: "acme", ID: id(kg.ClassSupplier, "S1").String()}, report.Supplier)
	assert.Equal(t, []EntityRef{{ID: id(kg.ClassPart, "P1").String(), Label: "Bolt"}}, report.ImpactedParts)
	require.Len(t, report.ImpactedProducts, 1)
	assert.Equal(t, "Bike", report.ImpactedProducts[0].Label)
	assert.Equal(t, "Frame", report.ImpactedProducts[0].ViaComponent.Label)
	require.Len(t, report.ImpactedRegions, 1)
	assert.Equal(t, "Plant A", report.ImpactedRegions[0].ViaFacility.Label)
	assert.Equal(t, "1) Summary of impact: bikes stop.", report.Narrative)

	assert.Equal(t, 1, narrator.calls)
	assert.Equal(t, "acme", narrator.supplier)
	assert.Equal(t, report.EvidenceText, narrator.evidence, "narrator sees exactly the evidence text")
}

func TestAnalyze_NotFoundSkipsNarration(t *testing.T) {
	narrator := &recordingNarrator{answer: "should not be used"}
	a := NewAnalyzer(smallGraph(t), narrator)

	report, err := a.Analyze(context.Background(), "Nonexistent Corp", DefaultLimits())
	require.NoError(t, err)
	assert.True(t, report.NotFound)
	assert.Equal(t, "Supplier not found in KG: Nonexistent Corp", report.Error)
	assert.Equal(t, NotFoundHint, report.Hint)
	assert.Zero(t, narrator.calls)

	data, err := json.Marshal(report)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"Supplier not found in KG: Nonexistent Corp","hint":"`+NotFoundHint+`"}`, string(data))
}

func TestAnalyze_NarrativeFailureKeepsStructure(t *testing.T) {
	narrator := &recordingNarrator{answer: "(LLM summarization failed: connection refused)"}
	a := NewAnalyzer(smallGraph(t), narrator)

	report, err := a.Analyze(context.Background(), "Acme", DefaultLimits())
	require.NoError(t, err)
	assert.Len(t, report.ImpactedParts, 1)
	assert.Len(t, report.ImpactedProducts, 1)
	assert.Len(t, report.ImpactedRegions, 1)
	assert.Contains(t, report.Narrative, "LLM summarization failed")
}

func TestAnalyze_StoreErrorIsNotNotFound(t *testing.T) {
	storeErr := &sparql.TimeoutError{Endpoint: "http://kg", Timeout: time.Second, Err: context.DeadlineExceeded}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	narrator := &recordingNarrator{}
	a := NewAnalyzer(errGraph{Graph: smallGraph(t), rel: kg.RelDeliversTo, err: storeErr}, narrator, WithMetrics(m))

	report, err := a.Analyze(context.Background(), "Acme", DefaultLimits())
	assert.Nil(t, report)
	require.Error(t, err)
	assert.ErrorIs(t, err, sparql.ErrStore)
	assert.True(t, sparql.IsTimeout(err))
	assert.Zero(t, narrator.calls)

	assert.Equal(t, 1.0, requestCount(t, reg, metrics.OutcomeStore))
}

func TestAnalyze_ResolveStoreError(t *testing.T) {
	storeErr := &sparql.QueryError{Endpoint: "http://kg", Reason: sparql.ReasonUnreachable, Err: errors.New("refused")}
	a := NewAnalyzer(failingFinder{Graph: smallGraph(t), err: storeErr}, nil)

	_, err := a.Analyze(context.Background(), "Acme", DefaultLimits())
	require.Error(t, err)
	assert.Equal(t, sparql.ReasonUnreachable, sparql.ReasonOf(err))
	assert.False(t, errors.Is(err, kg.ErrNotFound))
}

func TestAnalyze_Canceled(t *testing.T) {
	a := NewAnalyzer(smallGraph(t), &recordingNarrator{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := a.Analyze(ctx, "Acme", DefaultLimits())
	assert.Nil(t, report)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyze_CanceledDuringNarration(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	a := NewAnalyzer(smallGraph(t), cancellingNarrator{cancel: cancel})

	report, err := a.Analyze(ctx, "Acme", DefaultLimits())
	assert.Nil(t, report, "no partial report after cancellation")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyze_InvalidLimits(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	a := NewAnalyzer(smallGraph(t), nil, WithMetrics(m))

	_, err := a.Analyze(context.Background(), "Acme", Limits{Parts: 10, Products: -1, Regions: 10})
	assert.ErrorIs(t, err, ErrInvalidLimits)
	assert.Equal(t, 1.0, requestCount(t, reg, metrics.OutcomeInvalid))
}

func TestAnalyze_NilNarrator(t *testing.T) {
	a := NewAnalyzer(smallGraph(t), nil)

	report, err := a.Analyze(context.Background(), "Acme", DefaultLimits())
	require.NoError(t, err)
	assert.Empty(t, report.Narrative)
}

func TestAnalyze_Idempotent(t *testing.T) {
	a := NewAnalyzer(fixtureGraph(t), &recordingNarrator{answer: "same"})
	ctx := context.Background()

	first, err := a.Analyze(ctx, "Acme Metals", DefaultLimits())
	require.NoError(t, err)
	second, err := a.Analyze(ctx, "Acme Metals", DefaultLimits())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

type cancellingNarrator struct{ cancel context.CancelFunc }

func (c cancellingNarrator) Summarize(context.Context, string, string) string {
	c.cancel()
	return "(LLM summarization failed: context canceled)"
}

// requestCount reads scimpact_impact_requests_total{outcome} from reg.
func requestCount(t *testing.T, reg *prometheus.Registry, outcome string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "scimpact_impact_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "outcome" && lp.GetValue() == outcome {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
