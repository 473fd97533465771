package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/praxis-hub/praxis-practice-hub/internal/domain/practicelog"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/shared"
	"github.com/praxis-hub/praxis-practice-hub/pkg/dateutil"
)

// LogRepository implements practicelog.Repository for PostgreSQL. Upsert is
// one INSERT ... ON CONFLICT statement, so concurrent writes to the same
// (commitment, date) serialize on the unique constraint and the last
// committed writer's payload survives.
type LogRepository struct {
	conn *Connection
}

// NewLogRepository creates a new LogRepository.
func NewLogRepository(conn *Connection) *LogRepository {
	return &LogRepository{conn: conn}
}

const logColumns = `id, commitment_id, log_date, completed, value, notes, created_at, updated_at`

// Upsert atomically creates or overwrites the entry for (commitment, date).
// Completed is always replaced; value and notes fall back to the stored
// field via COALESCE when the payload leaves them out.
func (r *LogRepository) Upsert(ctx context.Context, commitmentID string, date time.Time, p practicelog.Payload) (*practicelog.Entry, bool, error) {
	query := `
		INSERT INTO practice_logs
			(id, commitment_id, log_date, completed, value, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, ''), NOW(), NOW())
		ON CONFLICT (commitment_id, log_date) DO UPDATE SET
			completed  = EXCLUDED.completed,
			value      = COALESCE($5, practice_logs.value),
			notes      = COALESCE($6, practice_logs.notes),
			updated_at = NOW()
		RETURNING ` + logColumns + `, (created_at = updated_at) AS inserted
	`

	day := dateutil.Normalize(date)
	var e practicelog.Entry
	var logDate time.Time
	var created bool

	err := r.conn.QueryRow(ctx, query,
		uuid.New().String(), commitmentID, day, p.Completed, p.Value, p.Notes,
	).Scan(
		&e.ID, &e.CommitmentID, &logDate, &e.Completed, &e.Value, &e.Notes,
		&e.CreatedAt, &e.UpdatedAt, &created,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return nil, false, shared.ErrCommitmentNotFound
		}
		return nil, false, fmt.Errorf("failed to upsert log entry: %w", err)
	}

	e.Date = dateutil.Normalize(logDate)
	return &e, created, nil
}

// GetForDate returns the entry for an exact calendar date.
func (r *LogRepository) GetForDate(ctx context.Context, commitmentID string, date time.Time) (*practicelog.Entry, error) {
	query := `SELECT ` + logColumns + ` FROM practice_logs WHERE commitment_id = $1 AND log_date = $2`

	e, err := scanLog(r.conn.QueryRow(ctx, query, commitmentID, dateutil.Normalize(date)))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrLogNotFound
		}
		return nil, fmt.Errorf("failed to get log entry: %w", err)
	}
	return e, nil
}

// List returns a commitment's entries ordered by date ascending. Zero
// bounds are open.
func (r *LogRepository) List(ctx context.Context, commitmentID string, from, to time.Time) ([]*practicelog.Entry, error) {
	query := `SELECT ` + logColumns + ` FROM practice_logs WHERE commitment_id = $1`
	args := []interface{}{commitmentID}

	if !from.IsZero() {
		args = append(args, dateutil.Normalize(from))
		query += fmt.Sprintf(" AND log_date >= $%d", len(args))
	}
	if !to.IsZero() {
		args = append(args, dateutil.Normalize(to))
		query += fmt.Sprintf(" AND log_date <= $%d", len(args))
	}
	query += " ORDER BY log_date"

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list log entries: %w", err)
	}
	defer rows.Close()

	var entries []*practicelog.Entry
	for rows.Next() {
		e, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanLog(row rowScanner) (*practicelog.Entry, error) {
	var e practicelog.Entry
	var logDate time.Time

	err := row.Scan(
		&e.ID, &e.CommitmentID, &logDate, &e.Completed, &e.Value, &e.Notes,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.Date = dateutil.Normalize(logDate)
	return &e, nil
}
