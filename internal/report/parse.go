package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adaian/adreport-cli/internal/ingest"
	"github.com/adaian/adreport-cli/internal/model"
)

// FormatError reports that the collaborator's response was not parseable
// JSON after fence-stripping. The caller surfaces it as a failed generation
// that must not be charged against the user's quota.
type FormatError struct {
	Err error
}

func (e *FormatError) Error() string {
	return "report: response is not valid JSON: " + e.Err.Error()
}

func (e *FormatError) Unwrap() error { return e.Err }

// StripFences removes markdown code-fence wrappers the collaborator tends to
// emit around JSON bodies.
func StripFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// ParseResponse strictly decodes the collaborator's response into an
// AnalysisReport. The deep shape beyond JSON validity is trusted; only the
// summary block is repaired, by overwriting it with the locally formatted
// anchors — those are authoritative regardless of what was echoed.
func ParseResponse(raw string, family model.Family, summary model.ExecutiveSummary) (*model.AnalysisReport, error) {
	cleaned := StripFences(raw)

	var rpt model.AnalysisReport
	dec := json.NewDecoder(strings.NewReader(cleaned))
	if err := dec.Decode(&rpt); err != nil {
		return nil, &FormatError{Err: err}
	}

	rpt.Summary.TotalCost = summary.TotalCost
	rpt.Summary.TotalRevenue = summary.TotalRevenue
	rpt.Summary.TotalRoas = summary.TotalRoas
	rpt.Summary.TotalConversions = summary.TotalConversions
	if rpt.Summary.RoasChange == "" {
		rpt.Summary.RoasChange = summary.RoasChange
	}
	if rpt.Summary.CostChange == "" {
		rpt.Summary.CostChange = summary.CostChange
	}
	return &rpt, nil
}

// AnchorSummary renders the locally computed totals as the formatted
// executive summary strings the report carries.
func AnchorSummary(t *ingest.Totals) model.ExecutiveSummary {
	return model.ExecutiveSummary{
		TotalCost:        formatKRW(t.Cost),
		TotalRevenue:     formatKRW(t.Revenue),
		TotalRoas:        fmt.Sprintf("%.2f%%", t.Roas),
		TotalConversions: formatCount(t.Conversions),
	}
}
