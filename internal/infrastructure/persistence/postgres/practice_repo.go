package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/praxis-hub/praxis-practice-hub/internal/domain/practice"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/shared"
)

// PracticeRepository implements practice.Repository for PostgreSQL.
type PracticeRepository struct {
	conn *Connection
}

// NewPracticeRepository creates a new PracticeRepository.
func NewPracticeRepository(conn *Connection) *PracticeRepository {
	return &PracticeRepository{conn: conn}
}

const practiceColumns = `id, title, description, category, tracking_type,
	is_template, creator_id, disabled, created_at, updated_at`

// Create persists a new template.
func (r *PracticeRepository) Create(ctx context.Context, t *practice.Template) error {
	query := `
		INSERT INTO practice_templates
			(id, title, description, category, tracking_type, is_template, creator_id, disabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.conn.Exec(ctx, query,
		t.ID, t.Title, t.Description, t.Category, t.Tracking.String(),
		t.IsTemplate, nullableString(t.CreatorID), t.Disabled, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrPracticeExists
		}
		return fmt.Errorf("failed to insert template: %w", err)
	}
	return nil
}

// GetByID returns a template by ID.
func (r *PracticeRepository) GetByID(ctx context.Context, id string) (*practice.Template, error) {
	query := `SELECT ` + practiceColumns + ` FROM practice_templates WHERE id = $1`

	t, err := scanPractice(r.conn.QueryRow(ctx, query, id))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrPracticeNotFound
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return t, nil
}

// Update persists changes to an existing template.
func (r *PracticeRepository) Update(ctx context.Context, t *practice.Template) error {
	query := `
		UPDATE practice_templates
		SET title = $2, description = $3, category = $4, disabled = $5, updated_at = $6
		WHERE id = $1
	`
	tag, err := r.conn.Exec(ctx, query,
		t.ID, t.Title, t.Description, t.Category, t.Disabled, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrPracticeNotFound
	}
	return nil
}

// List returns templates matching the filter, ordered by title. An empty
// CreatorID lists the public catalog; a set one lists that user's custom
// practices.
func (r *PracticeRepository) List(ctx context.Context, filter practice.Filter) ([]*practice.Template, error) {
	query := `SELECT ` + practiceColumns + ` FROM practice_templates WHERE 1=1`
	args := []interface{}{}

	if filter.CreatorID != "" {
		args = append(args, filter.CreatorID)
		query += fmt.Sprintf(" AND creator_id = $%d", len(args))
	} else {
		query += " AND creator_id IS NULL"
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if !filter.IncludeDisabled {
		query += " AND NOT disabled"
	}
	query += " ORDER BY title"

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var templates []*practice.Template
	for rows.Next() {
		t, err := scanPractice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// Delete removes a template outright. Reference checks belong to the
// caller; the foreign key still backstops a race.
func (r *PracticeRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.conn.Exec(ctx, `DELETE FROM practice_templates WHERE id = $1`, id)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return shared.ErrPracticeInUse
		}
		return fmt.Errorf("failed to delete template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrPracticeNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPractice(row rowScanner) (*practice.Template, error) {
	var t practice.Template
	var tracking string
	var creatorID sql.NullString

	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Category, &tracking,
		&t.IsTemplate, &creatorID, &t.Disabled, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Tracking = practice.TrackingType(tracking)
	if creatorID.Valid {
		t.CreatorID = creatorID.String
	}
	return &t, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
