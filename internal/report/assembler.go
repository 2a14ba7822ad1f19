package report

import (
	"context"

	"go.uber.org/zap"

	"github.com/adaian/adreport-cli/internal/ingest"
	"github.com/adaian/adreport-cli/internal/metrics"
	"github.com/adaian/adreport-cli/internal/model"
	"github.com/adaian/adreport-cli/internal/resilience"
)

// Generator is the external summarization collaborator: one call taking the
// assembled prompt (structured JSON output expected) and returning the
// response text or a classified error. pkg/gemini and pkg/anthropic
// implement it.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// Assembler builds the collaborator request from reduced documents and the
// authoritative aggregate, governs the call with bounded retry, and parses
// the response into structured data.
type Assembler struct {
	gen      Generator
	retry    resilience.RetryConfig
	metrics  *metrics.Metrics
	provider string
}

// NewAssembler creates an Assembler around an explicit generator handle.
func NewAssembler(gen Generator, retry resilience.RetryConfig) *Assembler {
	return &Assembler{gen: gen, retry: retry, provider: "generator"}
}

// WithMetrics instruments every generator attempt under the given provider
// label. Returns the receiver for call chaining.
func (a *Assembler) WithMetrics(m *metrics.Metrics, provider string) *Assembler {
	a.metrics = m
	if provider != "" {
		a.provider = provider
	}
	return a
}

// Generate runs prompt assembly, the retried collaborator call, the strict
// response parse and the anchor overwrite. Transient overload is retried up
// to the budget; quota and format failures surface immediately.
func (a *Assembler) Generate(ctx context.Context, family model.Family, totals *ingest.Totals, sections []Section) (*model.AnalysisReport, error) {
	prompt := BuildPrompt(family, totals, sections)
	zap.L().Debug("assembled report prompt",
		zap.String("family", string(family)),
		zap.Int("prompt_chars", len(prompt)),
		zap.Int("sections", len(sections)),
	)

	cfg := a.retry
	if cfg.OnRetry == nil {
		cfg.OnRetry = resilience.RetryLogger(a.provider, "generate_report")
	}

	raw, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (string, error) {
		out, err := a.gen.GenerateJSON(ctx, prompt)
		a.metrics.GeneratorAttempt(a.provider, attemptOutcome(err))
		return out, err
	})
	if err != nil {
		return nil, err
	}

	return ParseResponse(raw, family, AnchorSummary(totals))
}

// attemptOutcome labels one generator call for the attempts counter.
func attemptOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case resilience.IsQuota(err):
		return "quota"
	case resilience.IsTransient(err):
		return "transient"
	default:
		return "error"
	}
}
