package ingest

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Totals is the authoritative aggregate for one document, computed from a
// single full pass over every data row. These are the anchors the report
// collaborator must echo verbatim; they are never derived from a reduced
// top-N subset.
type Totals struct {
	Cost        float64
	Revenue     float64
	Conversions float64
	Clicks      float64
	Impressions float64

	// Derived ratios, zero when the denominator is zero.
	Roas float64 // revenue / cost * 100
	CPC  float64 // cost / clicks
	CTR  float64 // clicks / impressions * 100
	CPM  float64 // cost / impressions * 1000
	CVR  float64 // conversions / clicks * 100

	// Coverage counters. Malformed cells default to zero rather than
	// aborting the pass, which makes a bad cell indistinguishable from a
	// true zero; these counters keep that discrepancy diagnosable.
	RowsUsed       int
	RowsSkipped    int
	CellsDefaulted int
}

// summaryMarkers match platform-injected grand-total rows by their first
// field. Those rows restate subtotals and would double-count every metric.
var summaryMarkers = []string{"합계", "total"}

// isSummaryRow reports whether the tokenized row is a platform total row.
func isSummaryRow(fields []string) bool {
	if len(fields) == 0 {
		return false
	}
	first := strings.ToLower(fields[0])
	for _, marker := range summaryMarkers {
		if strings.Contains(first, marker) {
			return true
		}
	}
	return false
}

// Aggregate walks every line after the header and accumulates per-role sums.
// Rows shorter than the header and platform summary rows are skipped
// silently (counted, not errored). A document whose cost column cannot be
// resolved cannot be aggregated at all.
func Aggregate(doc *Document, profile Profile) (*Totals, error) {
	header, err := LocateHeader(doc, profile)
	if err != nil {
		return nil, err
	}

	columns := ResolveColumns(header.Fields, profile)
	if columns.Index(RoleCost) == Unresolved {
		return nil, eris.Errorf("ingest: no cost column in %s header, cannot aggregate", profile.Kind)
	}

	t := &Totals{}
	sums := map[Role]*float64{
		RoleCost:        &t.Cost,
		RoleRevenue:     &t.Revenue,
		RoleConversions: &t.Conversions,
		RoleClicks:      &t.Clicks,
		RoleImpressions: &t.Impressions,
	}

	for i := header.Row + 1; i < doc.Len(); i++ {
		line := doc.Line(i)
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := SplitFields(line)
		if len(fields) < len(header.Fields) || isSummaryRow(fields) {
			t.RowsSkipped++
			continue
		}

		for role, sum := range sums {
			idx := columns.Index(role)
			if idx == Unresolved || idx >= len(fields) {
				continue
			}
			v, ok := parseNumberOK(fields[idx])
			if !ok && strings.TrimSpace(fields[idx]) != "" {
				t.CellsDefaulted++
			}
			*sum += v
		}
		t.RowsUsed++
	}

	t.deriveRatios()
	return t, nil
}

func (t *Totals) deriveRatios() {
	if t.Cost > 0 {
		t.Roas = t.Revenue / t.Cost * 100
	}
	if t.Clicks > 0 {
		t.CPC = t.Cost / t.Clicks
		t.CVR = t.Conversions / t.Clicks * 100
	}
	if t.Impressions > 0 {
		t.CTR = t.Clicks / t.Impressions * 100
		t.CPM = t.Cost / t.Impressions * 1000
	}
}
