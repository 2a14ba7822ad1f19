package model

import "time"

// RunStatus represents the current state of an analysis run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// InputFile records one uploaded export at the request boundary.
type InputFile struct {
	Role  string `json:"role"` // campaign / device / keyword / creative / audience
	Name  string `json:"name,omitempty"`
	Bytes int    `json:"bytes"`
}

// AnchorTotals is the persisted snapshot of the locally computed aggregate
// for a run. The full AnalysisReport is deliberately not stored — only the
// numeric anchors and coverage counters needed for run history.
type AnchorTotals struct {
	Cost           float64 `json:"cost"`
	Revenue        float64 `json:"revenue"`
	Conversions    float64 `json:"conversions"`
	Clicks         float64 `json:"clicks"`
	Impressions    float64 `json:"impressions"`
	Roas           float64 `json:"roas"`
	RowsUsed       int     `json:"rows_used"`
	RowsSkipped    int     `json:"rows_skipped"`
	CellsDefaulted int     `json:"cells_defaulted"`
}

// Run is one analysis request's history record.
type Run struct {
	ID         string        `json:"id"`
	Family     Family        `json:"family"`
	Status     RunStatus     `json:"status"`
	Files      []InputFile   `json:"files"`
	Totals     *AnchorTotals `json:"totals,omitempty"`
	ErrorKind  string        `json:"error_kind,omitempty"`
	Error      string        `json:"error,omitempty"`
	DurationMS int64         `json:"duration_ms"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}
