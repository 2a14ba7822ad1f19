package analyzer

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adaian/adreport-cli/internal/config"
	"github.com/adaian/adreport-cli/internal/model"
	"github.com/adaian/adreport-cli/internal/report"
	"github.com/adaian/adreport-cli/internal/resilience"
	"github.com/adaian/adreport-cli/internal/store"
)

const searchCampaignCSV = `네이버 검색광고 캠페인 보고서
조회기간: 2026-01-01 ~ 2026-01-31

캠페인,노출수,클릭수,총비용,전환수,전환매출액
브랜드검색,10000,500,100000,10,300000
파워링크,20000,800,200000,20,500000
합계,30000,1300,300000,30,800000
`

const keywordCSV = `검색어,노출수,클릭수,총비용,전환수,전환매출액
운동화,5000,300,90000,8,250000
러닝화,3000,150,60000,4,120000
샌들,1000,20,5000,0,0
`

// stubGenerator returns scripted responses in order.
type stubGenerator struct {
	responses []string
	errs      []error
	calls     int
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
	return s.responses[len(s.responses)-1], nil
}

const goodResponse = `{"summary":{"totalCost":"echo","roasChange":"+5%"},"deepInsights":[{"title":"인사이트","description":"설명","severity":"low"}]}`

func testConfig() *config.Config {
	return &config.Config{
		Ingest: config.IngestConfig{TopN: 100, MaxBodyBytes: 10 * 1024 * 1024},
		Report: config.ReportConfig{
			Provider:         "gemini",
			SearchSectionCap: 100_000,
			GFASectionCap:    50_000,
			DeadlineSecs:     10,
		},
	}
}

func newTestAnalyzer(t *testing.T, gen report.Generator) (*Analyzer, store.Store) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))

	retry := resilience.RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}
	asm := report.NewAssembler(gen, retry)
	return New(testConfig(), st, asm, nil, nil), st
}

func searchInputs() []Input {
	return []Input{
		{Role: "campaign", Name: "campaign.csv", Data: []byte(searchCampaignCSV)},
		{Role: "keyword", Name: "keywords.csv", Data: []byte(keywordCSV)},
	}
}

func TestRun_Success(t *testing.T) {
	gen := &stubGenerator{responses: []string{goodResponse}}
	a, st := newTestAnalyzer(t, gen)

	res, err := a.Run(context.Background(), model.FamilySearch, searchInputs())
	require.NoError(t, err)
	require.NotNil(t, res.Report)
	require.NotEmpty(t, res.RunID)

	// Anchors come from the local aggregate, not the echoed response, and
	// exclude the 합계 summary row.
	assert.Equal(t, float64(300000), res.Totals.Cost)
	assert.Equal(t, float64(800000), res.Totals.Revenue)
	assert.Equal(t, "₩300,000", res.Report.Summary.TotalCost)
	assert.Equal(t, "+5%", res.Report.Summary.RoasChange)

	run, err := st.GetRun(context.Background(), res.RunID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	require.NotNil(t, run.Totals)
	assert.Equal(t, float64(300000), run.Totals.Cost)
	assert.Equal(t, 2, run.Totals.RowsUsed)
}

func TestRun_RequiresCampaignFile(t *testing.T) {
	a, _ := newTestAnalyzer(t, &stubGenerator{responses: []string{goodResponse}})

	_, err := a.Run(context.Background(), model.FamilySearch, []Input{
		{Role: "keyword", Name: "k.csv", Data: []byte(keywordCSV)},
	})
	var runErr *Error
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, KindBadInput, runErr.Kind)
	assert.Contains(t, runErr.UserMessage(), "필수 파일")
}

func TestRun_RejectsRoleFromOtherFamily(t *testing.T) {
	a, _ := newTestAnalyzer(t, &stubGenerator{responses: []string{goodResponse}})

	_, err := a.Run(context.Background(), model.FamilySearch, []Input{
		{Role: "creative", Name: "c.csv", Data: []byte(searchCampaignCSV)},
	})
	var runErr *Error
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, KindBadInput, runErr.Kind)
}

func TestRun_SizeBudget(t *testing.T) {
	a, _ := newTestAnalyzer(t, &stubGenerator{responses: []string{goodResponse}})
	a.cfg.Ingest.MaxBodyBytes = 64

	_, err := a.Run(context.Background(), model.FamilySearch, searchInputs())
	var runErr *Error
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, KindTooLarge, runErr.Kind)
	assert.Contains(t, runErr.UserMessage(), "10MB")
}

func TestRun_HeaderNotFound(t *testing.T) {
	gen := &stubGenerator{responses: []string{goodResponse}}
	a, st := newTestAnalyzer(t, gen)

	_, err := a.Run(context.Background(), model.FamilySearch, []Input{
		{Role: "campaign", Name: "noise.csv", Data: []byte("이것은,보고서가,아닙니다\n1,2,3\n")},
	})
	var runErr *Error
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, KindHeaderNotFound, runErr.Kind)
	assert.Equal(t, 0, gen.calls)

	runs, err := st.ListRuns(context.Background(), store.RunFilter{Status: model.RunStatusFailed})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, KindHeaderNotFound, runs[0].ErrorKind)
}

func TestRun_TransientExhaustion(t *testing.T) {
	overload := resilience.NewTransientError(errors.New("model overloaded"), 503)
	gen := &stubGenerator{errs: []error{overload, overload, overload}}
	a, st := newTestAnalyzer(t, gen)

	_, err := a.Run(context.Background(), model.FamilySearch, searchInputs())
	var runErr *Error
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, KindOverloaded, runErr.Kind)
	assert.Equal(t, 3, gen.calls)

	runs, err := st.ListRuns(context.Background(), store.RunFilter{Status: model.RunStatusFailed})
	require.NoError(t, err)
	require.Len(t, runs, 1)
}

func TestRun_QuotaNotRetried(t *testing.T) {
	quota := resilience.NewQuotaError(errors.New("rate limit exceeded"), 429)
	gen := &stubGenerator{errs: []error{quota}}
	a, _ := newTestAnalyzer(t, gen)

	_, err := a.Run(context.Background(), model.FamilySearch, searchInputs())
	var runErr *Error
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, KindQuota, runErr.Kind)
	assert.Equal(t, 1, gen.calls)
}

func TestRun_BadModelOutput(t *testing.T) {
	gen := &stubGenerator{responses: []string{"죄송하지만 JSON이 아닌 답변입니다"}}
	a, _ := newTestAnalyzer(t, gen)

	_, err := a.Run(context.Background(), model.FamilySearch, searchInputs())
	var runErr *Error
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, KindBadFormat, runErr.Kind)
}

func TestRun_GFAUsesReducedSections(t *testing.T) {
	var prompt string
	gen := &captureGenerator{response: goodResponse, captured: &prompt}
	a, _ := newTestAnalyzer(t, gen)

	gfaCampaign := "캠페인,노출,클릭,총 비용,구매완료수,구매완료 전환 매출액\n디스플레이A,1000,50,40000,2,90000\n"
	creative := "소재,노출,클릭,총 비용,구매완료수,구매완료 전환 매출액\n배너1,500,20,30000,1,50000\n배너2,400,10,10000,0,0\n"

	res, err := a.Run(context.Background(), model.FamilyGFA, []Input{
		{Role: "campaign", Name: "c.csv", Data: []byte(gfaCampaign)},
		{Role: "creative", Name: "cr.csv", Data: []byte(creative)},
	})
	require.NoError(t, err)
	assert.Equal(t, float64(40000), res.Totals.Cost)

	assert.Contains(t, prompt, "CAMPAIGN (Daily)")
	assert.Contains(t, prompt, "CREATIVES (Top spenders, pre-filtered)")
	assert.Contains(t, prompt, "배너1")
	// GFA prompts carry the funnel averages.
	assert.Contains(t, prompt, "Avg CPM")
}

// captureGenerator records the prompt it was handed.
type captureGenerator struct {
	response string
	captured *string
}

func (c *captureGenerator) GenerateJSON(_ context.Context, prompt string) (string, error) {
	*c.captured = prompt
	return c.response, nil
}

func TestRun_KeywordSectionReduced(t *testing.T) {
	var prompt string
	gen := &captureGenerator{response: goodResponse, captured: &prompt}
	a, _ := newTestAnalyzer(t, gen)
	a.cfg.Ingest.TopN = 2

	_, err := a.Run(context.Background(), model.FamilySearch, searchInputs())
	require.NoError(t, err)

	// Top 2 by cost survive, the cheapest keyword is dropped.
	assert.Contains(t, prompt, "운동화")
	assert.Contains(t, prompt, "러닝화")
	assert.False(t, strings.Contains(prompt, "샌들"))
}
