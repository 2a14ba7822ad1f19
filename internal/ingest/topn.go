package ingest

import (
	"sort"
	"strings"
)

// Reduced is a cost-reduced document: the header line plus the top-N data
// rows by descending cost, original text preserved verbatim. It bounds the
// payload handed to the report collaborator independent of source file size.
// Only these high-spend rows receive qualitative analysis; the authoritative
// totals still come from a full Aggregate pass.
type Reduced struct {
	Header string
	Rows   []string
	Limit  int

	// Fallback is set when no header or cost column could be resolved and
	// the first N raw lines were returned unsorted instead. Downstream
	// consumers tolerate this degraded form.
	Fallback bool
}

// Text reassembles the reduced document as newline-joined CSV text.
func (r *Reduced) Text() string {
	if r.Fallback {
		return strings.Join(r.Rows, "\n")
	}
	parts := make([]string, 0, len(r.Rows)+1)
	parts = append(parts, r.Header)
	parts = append(parts, r.Rows...)
	return strings.Join(parts, "\n")
}

// ReduceTopN selects the limit highest-cost data rows of doc. Rows shorter
// than the header and platform summary rows are excluded; ties keep original
// row order (stable sort). When the header or cost column cannot be found
// the first limit raw lines are returned unchanged, marked Fallback —
// degraded but never fatal.
func ReduceTopN(doc *Document, profile Profile, limit int) *Reduced {
	if limit <= 0 {
		limit = 100
	}

	header, err := LocateHeader(doc, profile)
	if err != nil {
		return rawFallback(doc, limit)
	}
	columns := ResolveColumns(header.Fields, profile)
	costIdx := columns.Index(RoleCost)
	if costIdx == Unresolved {
		return rawFallback(doc, limit)
	}

	type costedRow struct {
		line string
		cost float64
	}
	var rows []costedRow

	for i := header.Row + 1; i < doc.Len(); i++ {
		line := doc.Line(i)
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := SplitFields(line)
		if len(fields) < len(header.Fields) || isSummaryRow(fields) {
			continue
		}
		cost := 0.0
		if costIdx < len(fields) {
			cost = ParseNumber(fields[costIdx])
		}
		rows = append(rows, costedRow{line: line, cost: cost})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].cost > rows[j].cost
	})

	if len(rows) > limit {
		rows = rows[:limit]
	}
	selected := make([]string, len(rows))
	for i, r := range rows {
		selected[i] = r.line
	}

	return &Reduced{
		Header: doc.Line(header.Row),
		Rows:   selected,
		Limit:  limit,
	}
}

func rawFallback(doc *Document, limit int) *Reduced {
	var rows []string
	for _, line := range doc.Lines() {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, line)
		if len(rows) == limit {
			break
		}
	}
	return &Reduced{Rows: rows, Limit: limit, Fallback: true}
}
