// Package narrative turns impact evidence into a natural-language summary.
// Narration is best-effort: every failure is converted into a placeholder
// string at this package's boundary and never reaches the caller as an error.
package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dusk-indust/scimpact/internal/metrics"
)

// ErrUnavailable marks a text generator that cannot run because it is not
// configured (no model or no credential).
var ErrUnavailable = errors.New("text generation unavailable")

// Defaults applied by New when Config leaves a field zero.
const (
	DefaultTimeout         = 60 * time.Second
	DefaultMaxOutputLength = 512
)

// Options are passed to a TextGenerator for one call.
type Options struct {
	MaxOutputLength int
	Deterministic   bool
}

// TextGenerator is the external text-generation capability.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

// Error wraps a narration failure with the stage that produced it.
type Error struct {
	Stage string // "generate", "timeout", "panic" or "empty"
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Config controls a Generator.
type Config struct {
	Timeout         time.Duration
	MaxOutputLength int
	Deterministic   bool
}

// Generator is the failure-isolated narration stage.
type Generator struct {
	text    TextGenerator
	cfg     Config
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// WithMetrics sets the metrics sink for narration failures.
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Generator) { g.metrics = m }
}

// New creates a Generator calling text.
func New(text TextGenerator, cfg Config, opts ...Option) *Generator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxOutputLength <= 0 {
		cfg.MaxOutputLength = DefaultMaxOutputLength
	}
	g := &Generator{text: text, cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type outcome struct {
	text string
	err  error
}

// Summarize asks the text generator to explain evidenceText. It always
// returns within the configured timeout (or when ctx ends), and returns a
// placeholder describing the failure instead of an error.
func (g *Generator) Summarize(ctx context.Context, supplierName, evidenceText string) string {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	prompt := BuildPrompt(supplierName, evidenceText)
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: &Error{Stage: "panic", Err: fmt.Errorf("%v", r)}}
			}
		}()
		text, err := g.text.Generate(ctx, prompt, Options{
			MaxOutputLength: g.cfg.MaxOutputLength,
			Deterministic:   g.cfg.Deterministic,
		})
		done <- outcome{text: text, err: err}
	}()

	var res outcome
	select {
	case res = <-done:
	case <-ctx.Done():
		res = outcome{err: ctx.Err()}
	}

	switch {
	case res.err != nil && errors.Is(res.err, context.DeadlineExceeded):
		return g.fail(&Error{Stage: "timeout", Err: fmt.Errorf("no response within %s", g.cfg.Timeout)})
	case res.err != nil:
		var ne *Error
		if errors.As(res.err, &ne) {
			return g.fail(ne)
		}
		return g.fail(&Error{Stage: "generate", Err: res.err})
	case strings.TrimSpace(res.text) == "":
		return g.fail(&Error{Stage: "empty", Err: errors.New("model returned no text")})
	}
	return strings.TrimSpace(res.text)
}

func (g *Generator) fail(err *Error) string {
	g.metrics.NarrativeFailed()
	g.logger.Warn("narrative generation failed", zap.String("stage", err.Stage), zap.Error(err.Err))
	return Placeholder(err)
}

// Placeholder is the in-band text that replaces a failed narrative.
func Placeholder(err error) string {
	return fmt.Sprintf("(LLM summarization failed: %v)", err)
}

// IsPlaceholder reports whether s is a failure placeholder.
func IsPlaceholder(s string) bool {
	return strings.HasPrefix(s, "(LLM summarization failed:")
}

// Unavailable returns a TextGenerator that always fails with reason wrapped
// in ErrUnavailable.
func Unavailable(reason string) TextGenerator {
	return unavailable{reason: reason}
}

type unavailable struct{ reason string }

func (u unavailable) Generate(context.Context, string, Options) (string, error) {
	return "", fmt.Errorf("%w: %s", ErrUnavailable, u.reason)
}
