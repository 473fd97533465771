package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/praxis-hub/praxis-practice-hub/internal/domain/commitment"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/shared"
	"github.com/praxis-hub/praxis-practice-hub/pkg/dateutil"
)

// CommitmentRepository implements commitment.Repository for PostgreSQL.
// The partial unique index uq_commitments_user_template_live is the
// authority for the one-active-commitment invariant; this repository only
// translates its violation into the domain error.
type CommitmentRepository struct {
	conn *Connection
}

// NewCommitmentRepository creates a new CommitmentRepository.
func NewCommitmentRepository(conn *Connection) *CommitmentRepository {
	return &CommitmentRepository{conn: conn}
}

const commitmentColumns = `id, user_id, template_id, status, start_date,
	end_date, target_value, created_at, updated_at`

// Create persists a new commitment.
func (r *CommitmentRepository) Create(ctx context.Context, c *commitment.Commitment) error {
	query := `
		INSERT INTO commitments
			(id, user_id, template_id, status, start_date, end_date, target_value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.conn.Exec(ctx, query,
		c.ID, c.UserID, c.TemplateID, c.Status.String(),
		c.StartDate, c.EndDate, c.TargetValue, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrCommitmentExists
		}
		if IsForeignKeyViolation(err) {
			return shared.ErrPracticeNotFound
		}
		return fmt.Errorf("failed to insert commitment: %w", err)
	}
	return nil
}

// GetByID returns a commitment by ID.
func (r *CommitmentRepository) GetByID(ctx context.Context, id string) (*commitment.Commitment, error) {
	query := `SELECT ` + commitmentColumns + ` FROM commitments WHERE id = $1`

	c, err := scanCommitment(r.conn.QueryRow(ctx, query, id))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrCommitmentNotFound
		}
		return nil, fmt.Errorf("failed to get commitment: %w", err)
	}
	return c, nil
}

// Update persists changes to an existing commitment. Un-archiving a
// commitment back into a (user, template) pair that has since gained a new
// live commitment trips the partial unique index; that surfaces as
// ErrCommitmentExists like any other duplicate.
func (r *CommitmentRepository) Update(ctx context.Context, c *commitment.Commitment) error {
	query := `
		UPDATE commitments
		SET status = $2, start_date = $3, end_date = $4, target_value = $5, updated_at = $6
		WHERE id = $1
	`
	tag, err := r.conn.Exec(ctx, query,
		c.ID, c.Status.String(), c.StartDate, c.EndDate, c.TargetValue, c.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrCommitmentExists
		}
		return fmt.Errorf("failed to update commitment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrCommitmentNotFound
	}
	return nil
}

// ListForUser returns a user's commitments matching the filter, ordered by
// creation time ascending.
func (r *CommitmentRepository) ListForUser(ctx context.Context, userID string, filter commitment.ListFilter) ([]*commitment.Commitment, error) {
	query := `SELECT ` + commitmentColumns + ` FROM commitments WHERE user_id = $1`
	args := []interface{}{userID}

	if !filter.IncludeArchived {
		query += " AND status <> 'ARCHIVED'"
	}
	if filter.Window != nil {
		// Interval intersection: starts before the window ends and does
		// not end before it starts.
		args = append(args, filter.Window.End, filter.Window.Start)
		query += fmt.Sprintf(" AND start_date <= $%d AND (end_date IS NULL OR end_date >= $%d)", len(args)-1, len(args))
	}
	query += " ORDER BY created_at"
	if filter.Page != nil {
		args = append(args, filter.Page.Limit(), filter.Page.Offset())
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list commitments: %w", err)
	}
	defer rows.Close()

	var commitments []*commitment.Commitment
	for rows.Next() {
		c, err := scanCommitment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan commitment: %w", err)
		}
		commitments = append(commitments, c)
	}
	return commitments, rows.Err()
}

// CountByTemplate returns how many commitments reference a template.
func (r *CommitmentRepository) CountByTemplate(ctx context.Context, templateID string) (int, error) {
	var n int
	err := r.conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM commitments WHERE template_id = $1`, templateID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count commitments: %w", err)
	}
	return n, nil
}

func scanCommitment(row rowScanner) (*commitment.Commitment, error) {
	var c commitment.Commitment
	var status string
	var startDate time.Time
	var endDate *time.Time

	err := row.Scan(
		&c.ID, &c.UserID, &c.TemplateID, &status, &startDate,
		&endDate, &c.TargetValue, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Status = commitment.Status(status)
	// DATE columns come back at midnight in the session zone; pin them to
	// the canonical midnight-UTC representation.
	c.StartDate = dateutil.Normalize(startDate)
	if endDate != nil {
		e := dateutil.Normalize(*endDate)
		c.EndDate = &e
	}
	return &c, nil
}
