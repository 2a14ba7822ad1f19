package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adaian/adreport-cli/internal/ingest"
	"github.com/adaian/adreport-cli/internal/metrics"
	"github.com/adaian/adreport-cli/internal/model"
	"github.com/adaian/adreport-cli/internal/resilience"
)

// stubGenerator returns scripted responses per call.
type stubGenerator struct {
	calls     int
	responses []string
	errs      []error
}

func (s *stubGenerator) GenerateJSON(_ context.Context, _ string) (string, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return "", errors.New("stub exhausted")
}

func fastRetry() resilience.RetryConfig {
	return resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}
}

func testTotals() *ingest.Totals {
	return &ingest.Totals{Cost: 1000, Revenue: 3000, Roas: 300, Conversions: 10, Clicks: 100}
}

func TestAssembler_Generate(t *testing.T) {
	gen := &stubGenerator{responses: []string{`{"summary":{},"criticalIssues":["문제"]}`}}
	a := NewAssembler(gen, fastRetry())

	rpt, err := a.Generate(context.Background(), model.FamilySearch, testTotals(), []Section{{Title: "D", Body: "x"}})
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, "₩1,000", rpt.Summary.TotalCost)
	assert.Equal(t, []string{"문제"}, rpt.CriticalIssues)
}

func TestAssembler_RetriesOverloadThenSucceeds(t *testing.T) {
	gen := &stubGenerator{
		errs:      []error{resilience.NewTransientError(errors.New("overloaded"), 503), nil},
		responses: []string{"", `{"summary":{}}`},
	}
	a := NewAssembler(gen, fastRetry())

	_, err := a.Generate(context.Background(), model.FamilySearch, testTotals(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, gen.calls)
}

func TestAssembler_QuotaSurfacesWithoutRetry(t *testing.T) {
	gen := &stubGenerator{errs: []error{
		resilience.NewQuotaError(errors.New("quota exceeded"), 429),
		resilience.NewQuotaError(errors.New("quota exceeded"), 429),
	}}
	a := NewAssembler(gen, fastRetry())

	_, err := a.Generate(context.Background(), model.FamilySearch, testTotals(), nil)
	require.Error(t, err)
	assert.True(t, resilience.IsQuota(err))
	assert.Equal(t, 1, gen.calls)
}

func TestAssembler_RecordsGeneratorAttempts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	gen := &stubGenerator{
		errs:      []error{resilience.NewTransientError(errors.New("overloaded"), 503), nil},
		responses: []string{"", `{"summary":{}}`},
	}
	a := NewAssembler(gen, fastRetry()).WithMetrics(m, "gemini")

	_, err := a.Generate(context.Background(), model.FamilySearch, testTotals(), nil)
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"transient": 1, "ok": 1}, gatherAttempts(t, reg, "gemini"))
}

func TestAssembler_RecordsQuotaAttempt(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	gen := &stubGenerator{errs: []error{resilience.NewQuotaError(errors.New("quota exceeded"), 429)}}
	a := NewAssembler(gen, fastRetry()).WithMetrics(m, "anthropic")

	_, err := a.Generate(context.Background(), model.FamilySearch, testTotals(), nil)
	require.Error(t, err)

	assert.Equal(t, map[string]float64{"quota": 1}, gatherAttempts(t, reg, "anthropic"))
}

// gatherAttempts collects the attempts counter as outcome → value, asserting
// every series carries the expected provider label.
func gatherAttempts(t *testing.T, reg *prometheus.Registry, provider string) map[string]float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)

	got := map[string]float64{}
	for _, mf := range mfs {
		if mf.GetName() != "adreport_generator_attempts_total" {
			continue
		}
		for _, series := range mf.GetMetric() {
			var outcome string
			for _, lp := range series.GetLabel() {
				switch lp.GetName() {
				case "provider":
					assert.Equal(t, provider, lp.GetValue())
				case "outcome":
					outcome = lp.GetValue()
				}
			}
			got[outcome] = series.GetCounter().GetValue()
		}
	}
	return got
}

func TestAssembler_FormatErrorNotRetried(t *testing.T) {
	gen := &stubGenerator{responses: []string{"이것은 JSON이 아닙니다"}}
	a := NewAssembler(gen, fastRetry())

	_, err := a.Generate(context.Background(), model.FamilySearch, testTotals(), nil)
	require.Error(t, err)

	var fe *FormatError
	assert.True(t, errors.As(err, &fe))
	// The malformed response came back successfully; only the parse failed.
	assert.Equal(t, 1, gen.calls)
}
