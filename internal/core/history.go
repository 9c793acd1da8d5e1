package core

// history.go records finished runs.
//
// The web UI lists recent runs and serves their artifacts for download. A
// desktop install keeps the list in memory; when DATABASE_URL is set the
// runs are stored in Postgres so the list survives restarts and is shared
// between instances.

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultHistoryLimit is the default number of runs returned by Recent.
const DefaultHistoryLimit = 20

// RunStatus is the outcome of a run.
type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// RunRecord is one entry of the run history.
type RunRecord struct {
	ID           string    `json:"id"`
	Status       RunStatus `json:"status"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	PrimaryFile  string    `json:"complot_file"`
	LayerFile    string    `json:"layer_file"`
	TemplateFile string    `json:"template_file,omitempty"`
	ReportPath   string    `json:"report_path,omitempty"`
	SummaryPath  string    `json:"summary_path,omitempty"`
	Summary      *Summary  `json:"summary,omitempty"`
	Error        string    `json:"error,omitempty"`
	ErrorCode    string    `json:"error_code,omitempty"`
}

// RunHistory stores run records.
type RunHistory interface {
	Save(ctx context.Context, rec RunRecord) error
	Get(ctx context.Context, id string) (RunRecord, error)
	Recent(ctx context.Context, limit int) ([]RunRecord, error)
}

// ============================================================================
// In-memory history
// ============================================================================

// MemoryRunHistory keeps the most recent runs in memory.
type MemoryRunHistory struct {
	mu       sync.RWMutex
	capacity int
	records  []RunRecord // oldest first
}

// NewMemoryRunHistory creates a history holding at most capacity runs.
func NewMemoryRunHistory(capacity int) *MemoryRunHistory {
	if capacity <= 0 {
		capacity = DefaultHistoryLimit
	}
	return &MemoryRunHistory{capacity: capacity}
}

// Save stores rec, replacing an earlier record with the same ID.
func (h *MemoryRunHistory) Save(_ context.Context, rec RunRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := range h.records {
		if h.records[i].ID == rec.ID {
			h.records[i] = rec
			return nil
		}
	}

	h.records = append(h.records, rec)
	if over := len(h.records) - h.capacity; over > 0 {
		h.records = append(h.records[:0], h.records[over:]...)
	}
	return nil
}

// Get returns the run with id, or ErrRunNotFound.
func (h *MemoryRunHistory) Get(_ context.Context, id string) (RunRecord, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, rec := range h.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return RunRecord{}, fmt.Errorf("%s: %w", id, ErrRunNotFound)
}

// Recent returns up to limit runs, newest first.
func (h *MemoryRunHistory) Recent(_ context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]RunRecord, 0, min(limit, len(h.records)))
	for i := len(h.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, h.records[i])
	}
	return out, nil
}

// ============================================================================
// Postgres history
// ============================================================================

const createRunsTable = `CREATE TABLE IF NOT EXISTS qc_runs (
	id            UUID PRIMARY KEY,
	status        TEXT NOT NULL,
	started_at    TIMESTAMPTZ NOT NULL,
	finished_at   TIMESTAMPTZ NOT NULL,
	complot_file  TEXT NOT NULL,
	layer_file    TEXT NOT NULL,
	template_file TEXT NOT NULL DEFAULT '',
	report_path   TEXT NOT NULL DEFAULT '',
	summary_path  TEXT NOT NULL DEFAULT '',
	summary       JSONB,
	error         TEXT NOT NULL DEFAULT '',
	error_code    TEXT NOT NULL DEFAULT ''
)`

const selectRunColumns = `SELECT id::text, status, started_at, finished_at, complot_file, layer_file,
	template_file, report_path, summary_path, summary::text, error, error_code
	FROM qc_runs`

// PgRunHistory stores runs in the qc_runs table.
type PgRunHistory struct {
	pool *pgxpool.Pool
}

// NewPgRunHistory creates the qc_runs table if needed and returns a history
// backed by pool.
func NewPgRunHistory(ctx context.Context, pool *pgxpool.Pool) (*PgRunHistory, error) {
	if _, err := pool.Exec(ctx, createRunsTable); err != nil {
		return nil, fmt.Errorf("create qc_runs: %w", err)
	}
	return &PgRunHistory{pool: pool}, nil
}

// Save upserts rec.
func (h *PgRunHistory) Save(ctx context.Context, rec RunRecord) error {
	var summary *string
	if rec.Summary != nil {
		data, err := json.Marshal(rec.Summary)
		if err != nil {
			return fmt.Errorf("encode summary: %w", err)
		}
		s := string(data)
		summary = &s
	}

	_, err := h.pool.Exec(ctx, `INSERT INTO qc_runs
		(id, status, started_at, finished_at, complot_file, layer_file, template_file,
		 report_path, summary_path, summary, error, error_code)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			finished_at = EXCLUDED.finished_at,
			report_path = EXCLUDED.report_path,
			summary_path = EXCLUDED.summary_path,
			summary = EXCLUDED.summary,
			error = EXCLUDED.error,
			error_code = EXCLUDED.error_code`,
		rec.ID, string(rec.Status), rec.StartedAt, rec.FinishedAt, rec.PrimaryFile, rec.LayerFile,
		rec.TemplateFile, rec.ReportPath, rec.SummaryPath, summary, rec.Error, rec.ErrorCode,
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", rec.ID, err)
	}
	return nil
}

// Get returns the run with id, or ErrRunNotFound.
func (h *PgRunHistory) Get(ctx context.Context, id string) (RunRecord, error) {
	row := h.pool.QueryRow(ctx, selectRunColumns+` WHERE id::text = $1`, id)
	rec, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}
	return rec, err
}

// Recent returns up to limit runs, newest first.
func (h *PgRunHistory) Recent(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := h.pool.Query(ctx, selectRunColumns+` ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RunRecord, 0)
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRun(row pgx.Row) (RunRecord, error) {
	var (
		rec     RunRecord
		status  string
		summary *string
	)
	err := row.Scan(&rec.ID, &status, &rec.StartedAt, &rec.FinishedAt, &rec.PrimaryFile, &rec.LayerFile,
		&rec.TemplateFile, &rec.ReportPath, &rec.SummaryPath, &summary, &rec.Error, &rec.ErrorCode)
	if err != nil {
		return RunRecord{}, err
	}
	rec.Status = RunStatus(status)

	if summary != nil {
		var s Summary
		if err := json.Unmarshal([]byte(*summary), &s); err != nil {
			return RunRecord{}, fmt.Errorf("decode summary of run %s: %w", rec.ID, err)
		}
		rec.Summary = &s
	}
	return rec, nil
}
