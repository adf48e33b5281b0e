package history

import (
	"context"
	"database/sql"
	"time"
)

type Repository interface {
	CreateRun(ctx context.Context, run *Run) error
	FinishRun(ctx context.Context, id string, res Result) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const runColumns = `id, input_path, output_path, source_label, frame_rate, frame_start, handle_size,
	shot_count, exported_count, neutral_grades, default_saturations, status, error, created_at, updated_at`

func (r *SQLiteRepository) CreateRun(ctx context.Context, run *Run) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.InputPath, nullString(run.OutputPath), run.SourceLabel, run.FrameRate, run.FrameStart, run.HandleSize,
		run.ShotCount, run.ExportedCount, run.NeutralGrades, run.DefaultSaturations,
		run.Status, nullString(run.Error),
		run.CreatedAt.UTC().Format(time.RFC3339), run.UpdatedAt.UTC().Format(time.RFC3339))
	return err
}

// FinishRun marks the run completed, or failed when res.Err is set.
func (r *SQLiteRepository) FinishRun(ctx context.Context, id string, res Result) error {
	status, errMsg := RunStatusCompleted, ""
	if res.Err != nil {
		status, errMsg = RunStatusFailed, res.Err.Error()
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE runs SET output_path = ?, shot_count = ?, exported_count = ?, neutral_grades = ?,
			default_saturations = ?, status = ?, error = ?, updated_at = ?
		WHERE id = ?
	`, nullString(res.OutputPath), res.ShotCount, res.ExportedCount, res.NeutralGrades,
		res.DefaultSaturations, status, nullString(errMsg), time.Now().UTC().Format(time.RFC3339), id)
	return err
}

func (r *SQLiteRepository) GetRun(ctx context.Context, id string) (*Run, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

func (r *SQLiteRepository) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var run Run
	var outputPath, errMsg sql.NullString
	var createdAt, updatedAt string

	err := s.Scan(&run.ID, &run.InputPath, &outputPath, &run.SourceLabel, &run.FrameRate, &run.FrameStart, &run.HandleSize,
		&run.ShotCount, &run.ExportedCount, &run.NeutralGrades, &run.DefaultSaturations,
		&run.Status, &errMsg, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	run.OutputPath = outputPath.String
	run.Error = errMsg.String
	run.CreatedAt = parseTime(createdAt)
	run.UpdatedAt = parseTime(updatedAt)
	return &run, nil
}

// parseTime accepts RFC 3339 and SQLite's datetime('now') layout.
func parseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	t, _ := time.Parse(time.DateTime, s)
	return t
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
