package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/intervue/internal/domain/model"
)

const journalSchema = `
CREATE TABLE IF NOT EXISTS activity_journal (
	id         UUID PRIMARY KEY,
	user_id    TEXT NOT NULL,
	kind       TEXT NOT NULL,
	target_id  TEXT NOT NULL,
	outcome    TEXT NOT NULL,
	payload    JSONB,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS activity_journal_user_created_idx
	ON activity_journal (user_id, created_at DESC);
`

// PostgresJournal stores entries in the activity_journal table.
type PostgresJournal struct {
	pool *pgxpool.Pool
}

// ConnectJournal opens a pool on dsn, pings it and ensures the schema.
func ConnectJournal(ctx context.Context, dsn string) (*PostgresJournal, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	j := &PostgresJournal{pool: pool}
	if err := j.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return j, nil
}

// EnsureSchema creates the journal table when missing.
func (j *PostgresJournal) EnsureSchema(ctx context.Context) error {
	if _, err := j.pool.Exec(ctx, journalSchema); err != nil {
		return fmt.Errorf("failed to create journal schema: %w", err)
	}
	return nil
}

// Close closes the pool.
func (j *PostgresJournal) Close() {
	if j.pool != nil {
		j.pool.Close()
	}
}

func (j *PostgresJournal) Name() string { return "postgres" }

func (j *PostgresJournal) Append(ctx context.Context, e model.JournalEntry) error {
	if e.ID == "" || e.UserID == "" {
		return ErrInvalidEntry
	}
	var payload []byte
	if len(e.Payload) > 0 {
		var err error
		if payload, err = json.Marshal(e.Payload); err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
	}
	_, err := j.pool.Exec(ctx,
		`INSERT INTO activity_journal (id, user_id, kind, target_id, outcome, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO NOTHING`,
		e.ID, e.UserID, string(e.Kind), e.TargetID, e.Outcome, payload, e.At,
	)
	if err != nil {
		return fmt.Errorf("failed to append journal entry: %w", err)
	}
	return nil
}

func (j *PostgresJournal) Recent(ctx context.Context, userID string, limit int) ([]model.JournalEntry, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	rows, err := j.pool.Query(ctx,
		`SELECT id::text, user_id, kind, target_id, outcome, payload, created_at
		 FROM activity_journal
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.JournalEntry, error) {
		var e model.JournalEntry
		var kind string
		var payload []byte
		if err := row.Scan(&e.ID, &e.UserID, &kind, &e.TargetID, &e.Outcome, &payload, &e.At); err != nil {
			return e, err
		}
		e.Kind = model.JournalKind(kind)
		if len(payload) > 0 {
			_ = json.Unmarshal(payload, &e.Payload)
		}
		return e, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan journal: %w", err)
	}
	return out, nil
}
