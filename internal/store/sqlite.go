package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/adaian/adreport-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	family      TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'running',
	files       TEXT NOT NULL,
	totals      TEXT,
	error_kind  TEXT NOT NULL DEFAULT '',
	error       TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_family ON runs(family);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, family model.Family, files []model.InputFile) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	filesJSON, err := json.Marshal(files)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal files")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, family, status, files, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, string(family), string(model.RunStatusRunning), string(filesJSON), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.Run{
		ID:        id,
		Family:    family,
		Status:    model.RunStatusRunning,
		Files:     files,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, totals *model.AnchorTotals, durationMS int64) error {
	totalsJSON, err := json.Marshal(totals)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal totals")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, totals = ?, duration_ms = ?, updated_at = ? WHERE id = ?`,
		string(model.RunStatusComplete), string(totalsJSON), durationMS, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkAffected(res, runID)
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, errorKind, errorMsg string, durationMS int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error_kind = ?, error = ?, duration_ms = ?, updated_at = ? WHERE id = ?`,
		string(model.RunStatusFailed), errorKind, errorMsg, durationMS, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", runID)
	}
	return checkAffected(res, runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, family, status, files, totals, error_kind, error, duration_ms, created_at, updated_at
		 FROM runs WHERE id = ?`, runID)
	r, err := scanRun(row.Scan)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}
	return r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, family, status, files, totals, error_kind, error, duration_ms, created_at, updated_at
		FROM runs WHERE 1=1`
	args := []any{}

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Family != "" {
		query += ` AND family = ?`
		args = append(args, string(filter.Family))
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

func checkAffected(res sql.Result, runID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

// scanRun decodes one runs row via the given Scan function, shared by
// GetRun and ListRuns.
func scanRun(scan func(dest ...any) error) (*model.Run, error) {
	var (
		r          model.Run
		family     string
		status     string
		filesJSON  string
		totalsJSON sql.NullString
	)
	err := scan(&r.ID, &family, &status, &filesJSON, &totalsJSON,
		&r.ErrorKind, &r.Error, &r.DurationMS, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.Family = model.Family(family)
	r.Status = model.RunStatus(status)
	if err := json.Unmarshal([]byte(filesJSON), &r.Files); err != nil {
		return nil, eris.Wrap(err, "unmarshal files")
	}
	if totalsJSON.Valid && totalsJSON.String != "" {
		r.Totals = &model.AnchorTotals{}
		if err := json.Unmarshal([]byte(totalsJSON.String), r.Totals); err != nil {
			return nil, eris.Wrap(err, "unmarshal totals")
		}
	}
	return &r, nil
}
