package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION SUPPORT
// ══════════════════════════════════════════════════════════════════════════════

// Migration represents a database migration.
type Migration struct {
	Version   int
	Name      string
	UpSQL     string
	DownSQL   string
	AppliedAt time.Time
	IsApplied bool
}

// Migrator applies embedded migrations in version order, each inside its
// own transaction, tracked in schema_migrations.
type Migrator struct {
	conn       *Connection
	migrations []Migration
	tableName  string
}

// NewMigrator creates a new migrator with the embedded migrations.
func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{
		conn:       conn,
		migrations: GetMigrations(),
		tableName:  "schema_migrations",
	}
}

// EnsureMigrationTable creates the migration tracking table if absent.
func (m *Migrator) EnsureMigrationTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`, m.tableName)

	if _, err := m.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// GetAppliedMigrations returns the applied migration versions.
func (m *Migrator) GetAppliedMigrations(ctx context.Context) (map[int]time.Time, error) {
	query := fmt.Sprintf("SELECT version, applied_at FROM %s ORDER BY version", m.tableName)

	rows, err := m.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var version int
		var appliedAt time.Time
		if err := rows.Scan(&version, &appliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[version] = appliedAt
	}
	return applied, rows.Err()
}

// Migrate applies all pending migrations.
func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.EnsureMigrationTable(ctx); err != nil {
		return err
	}

	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}

	for _, mig := range m.migrations {
		if _, ok := applied[mig.Version]; ok {
			continue
		}
		if mig.UpSQL == "" {
			return fmt.Errorf("%w: missing up SQL for migration %d", ErrMigrationFailed, mig.Version)
		}

		err := m.conn.WithTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.UpSQL); err != nil {
				return fmt.Errorf("failed to execute migration %d: %w", mig.Version, err)
			}
			insert := fmt.Sprintf("INSERT INTO %s (version, name) VALUES ($1, $2)", m.tableName)
			_, err := tx.Exec(ctx, insert, mig.Version, mig.Name)
			return err
		})
		if err != nil {
			return fmt.Errorf("%w: version %d: %v", ErrMigrationFailed, mig.Version, err)
		}
	}
	return nil
}

// Status returns each migration annotated with its applied state.
func (m *Migrator) Status(ctx context.Context) ([]Migration, error) {
	if err := m.EnsureMigrationTable(ctx); err != nil {
		return nil, err
	}

	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]Migration, len(m.migrations))
	copy(result, m.migrations)
	for i := range result {
		if appliedAt, ok := applied[result[i].Version]; ok {
			result[i].IsApplied = true
			result[i].AppliedAt = appliedAt
		}
	}
	return result, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// EMBEDDED MIGRATIONS
// ══════════════════════════════════════════════════════════════════════════════

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_practice_templates",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_commitments",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
		{
			Version: 3,
			Name:    "create_practice_logs",
			UpSQL:   migration003Up,
			DownSQL: migration003Down,
		},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: PRACTICE TEMPLATES
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Template catalog: curated entries (creator_id IS NULL) and per-user
-- custom practices. Templates referenced by commitments are never deleted,
-- only disabled.

CREATE TABLE IF NOT EXISTS practice_templates (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    title VARCHAR(200) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    category VARCHAR(50) NOT NULL,
    tracking_type VARCHAR(10) NOT NULL,
    is_template BOOLEAN NOT NULL DEFAULT TRUE,
    creator_id VARCHAR(100),
    disabled BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_tracking_type CHECK (tracking_type IN ('BOOLEAN', 'NUMERIC', 'TEXT')),
    CONSTRAINT template_has_no_creator CHECK (is_template = (creator_id IS NULL))
);

CREATE INDEX IF NOT EXISTS idx_templates_category ON practice_templates(category) WHERE NOT disabled;
CREATE INDEX IF NOT EXISTS idx_templates_creator ON practice_templates(creator_id) WHERE creator_id IS NOT NULL;
`

const migration001Down = `
DROP TABLE IF EXISTS practice_templates;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: COMMITMENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Commitments: a user's time-bounded link to a template. The partial
-- unique index is the authority for "one non-archived commitment per
-- (user, template)"; re-joins after archival insert fresh rows.

CREATE TABLE IF NOT EXISTS commitments (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id VARCHAR(100) NOT NULL,
    template_id UUID NOT NULL REFERENCES practice_templates(id),
    status VARCHAR(10) NOT NULL DEFAULT 'ACTIVE',
    start_date DATE NOT NULL,
    end_date DATE,
    target_value DOUBLE PRECISION,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_status CHECK (status IN ('ACTIVE', 'PAUSED', 'COMPLETED', 'ARCHIVED')),
    CONSTRAINT valid_date_order CHECK (end_date IS NULL OR end_date >= start_date)
);

CREATE UNIQUE INDEX IF NOT EXISTS uq_commitments_user_template_live
    ON commitments(user_id, template_id)
    WHERE status <> 'ARCHIVED';

CREATE INDEX IF NOT EXISTS idx_commitments_user ON commitments(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_commitments_template ON commitments(template_id);
CREATE INDEX IF NOT EXISTS idx_commitments_user_window ON commitments(user_id, start_date, end_date);
`

const migration002Down = `
DROP TABLE IF EXISTS commitments;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: PRACTICE LOGS
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Log ledger: one row per (commitment, calendar day), written exclusively
-- through INSERT ... ON CONFLICT so concurrent submissions settle as
-- last-writer-wins without duplicates.

CREATE TABLE IF NOT EXISTS practice_logs (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    commitment_id UUID NOT NULL REFERENCES commitments(id) ON DELETE CASCADE,
    log_date DATE NOT NULL,
    completed BOOLEAN NOT NULL DEFAULT FALSE,
    value DOUBLE PRECISION,
    notes TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    UNIQUE(commitment_id, log_date)
);

CREATE INDEX IF NOT EXISTS idx_logs_commitment_date ON practice_logs(commitment_id, log_date);
CREATE INDEX IF NOT EXISTS idx_logs_commitment_completed ON practice_logs(commitment_id, log_date) WHERE completed;
`

const migration003Down = `
DROP TABLE IF EXISTS practice_logs;
`
