package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adaian/adreport-cli/internal/ingest"
	"github.com/adaian/adreport-cli/internal/model"
)

func TestBuildPrompt_EmbedsAnchorsAndSections(t *testing.T) {
	totals := &ingest.Totals{Cost: 1000, Revenue: 3000, Roas: 300, Clicks: 100, Conversions: 10}
	sections := []Section{
		{Title: "CAMPAIGN (Weekly)", Body: "총비용,클릭수\n1000,100"},
		{Title: "TOP 100 KEYWORDS (By Cost)", Body: "검색어,총비용\n운동화,500", Note: "pre-filtered high-spend keywords"},
	}

	prompt := BuildPrompt(model.FamilySearch, totals, sections)

	assert.Contains(t, prompt, "MANDATORY: USE THESE PRE-CALCULATED TOTALS")
	assert.Contains(t, prompt, "₩1,000")
	assert.Contains(t, prompt, "₩3,000")
	assert.Contains(t, prompt, "300.00%")
	assert.Contains(t, prompt, "총비용,클릭수")
	assert.Contains(t, prompt, "pre-filtered high-spend keywords")
	assert.Contains(t, prompt, "한국어로 작성해주세요")
	assert.Contains(t, prompt, `"topKeywords"`)
	assert.NotContains(t, prompt, `"funnelAnalysis"`)
}

func TestBuildPrompt_GFAFamilyFunnelAnchors(t *testing.T) {
	totals := &ingest.Totals{Cost: 1000, Revenue: 4000, Roas: 400, CPM: 100, CTR: 1, CPC: 10, CVR: 5}
	prompt := BuildPrompt(model.FamilyGFA, totals, []Section{{Title: "CAMPAIGN/PERIOD DATA", Body: "x"}})

	assert.Contains(t, prompt, "Avg CPM: 100")
	assert.Contains(t, prompt, "Avg CTR: 1.00%")
	assert.Contains(t, prompt, `"funnelAnalysis"`)
	assert.Contains(t, prompt, `"creativeStats"`)
	assert.NotContains(t, prompt, `"topKeywords"`)
}

func TestBuildPrompt_CapsSectionBody(t *testing.T) {
	long := strings.Repeat("아", 500)
	prompt := BuildPrompt(model.FamilySearch, &ingest.Totals{}, []Section{
		{Title: "BIG", Body: long, Cap: 100},
	})
	assert.Contains(t, prompt, strings.Repeat("아", 100))
	assert.NotContains(t, prompt, strings.Repeat("아", 101))
}

func TestTruncateRunes_MultibyteSafe(t *testing.T) {
	s := "가나다라마"
	assert.Equal(t, "가나다", truncateRunes(s, 3))
	assert.Equal(t, s, truncateRunes(s, 10))
	assert.Equal(t, s, truncateRunes(s, 0)) // 0 means uncapped
}
