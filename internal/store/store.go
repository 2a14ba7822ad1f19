// Package store persists analysis run history. Only run metadata and the
// locally computed anchor totals are recorded; generated reports are
// returned to the caller and never written to disk.
package store

import (
	"context"

	"github.com/adaian/adreport-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Family model.Family    `json:"family,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for run history.
type Store interface {
	CreateRun(ctx context.Context, family model.Family, files []model.InputFile) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, totals *model.AnchorTotals, durationMS int64) error
	FailRun(ctx context.Context, runID string, errorKind, errorMsg string, durationMS int64) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	Migrate(ctx context.Context) error
	Close() error
}
