package report

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adaian/adreport-cli/internal/ingest"
	"github.com/adaian/adreport-cli/internal/model"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{`{"a":1}`, `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripFences(tt.in))
	}
}

func testSummary() model.ExecutiveSummary {
	return model.ExecutiveSummary{
		TotalCost:        "₩1,000",
		TotalRevenue:     "₩3,000",
		TotalRoas:        "300.00%",
		TotalConversions: "10",
	}
}

func TestParseResponse_DecodesAndAnchorsSummary(t *testing.T) {
	raw := "```json\n" + `{
		"summary": {"totalCost": "₩999,999,999", "totalRoas": "9000%", "roasChange": "+15%"},
		"criticalIssues": ["모바일 ROAS가 낮습니다"],
		"trendData": [{"name": "11.10", "value": 3000, "cost": 1000, "roas": 300}]
	}` + "\n```"

	rpt, err := ParseResponse(raw, model.FamilySearch, testSummary())
	require.NoError(t, err)

	// Collaborator-echoed summary numbers never survive; the local anchors do.
	assert.Equal(t, "₩1,000", rpt.Summary.TotalCost)
	assert.Equal(t, "₩3,000", rpt.Summary.TotalRevenue)
	assert.Equal(t, "300.00%", rpt.Summary.TotalRoas)
	// Change deltas are the collaborator's to estimate.
	assert.Equal(t, "+15%", rpt.Summary.RoasChange)

	assert.Len(t, rpt.CriticalIssues, 1)
	require.Len(t, rpt.TrendData, 1)
	assert.Equal(t, 3000.0, rpt.TrendData[0].Value)
}

func TestParseResponse_FormatError(t *testing.T) {
	_, err := ParseResponse("죄송합니다, JSON을 만들 수 없었습니다.", model.FamilySearch, testSummary())
	require.Error(t, err)

	var fe *FormatError
	assert.True(t, errors.As(err, &fe), "expected FormatError, got %T", err)
}

func TestAnchorSummary_Formatting(t *testing.T) {
	totals := &ingest.Totals{Cost: 1234567, Revenue: 3000, Roas: 243.2, Conversions: 42}
	s := AnchorSummary(totals)

	assert.Equal(t, "₩1,234,567", s.TotalCost)
	assert.Equal(t, "₩3,000", s.TotalRevenue)
	assert.Equal(t, "243.20%", s.TotalRoas)
	assert.Equal(t, "42", s.TotalConversions)
}
