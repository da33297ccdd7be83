package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DB represents a database connection interface.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

const createInteractions = `
	CREATE TABLE IF NOT EXISTS interactions (
		id          TEXT PRIMARY KEY,
		session_id  TEXT NOT NULL,
		kind        TEXT NOT NULL,
		input       TEXT NOT NULL,
		output      TEXT NOT NULL,
		occurred_at TIMESTAMP NOT NULL
	)
`

// InteractionRepository stores audited interactions.
type InteractionRepository struct {
	db DB
}

// NewInteractionRepository creates a new interaction repository.
func NewInteractionRepository(db DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

// Migrate creates the interactions table if needed.
func (r *InteractionRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createInteractions); err != nil {
		return fmt.Errorf("create interactions table: %w", err)
	}
	return nil
}

// Create inserts an interaction, assigning an id and timestamp if unset.
func (r *InteractionRepository) Create(ctx context.Context, in *Interaction) error {
	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}
	if in.OccurredAt.IsZero() {
		in.OccurredAt = time.Now()
	}
	in.OccurredAt = in.OccurredAt.UTC()

	query := `
		INSERT INTO interactions (id, session_id, kind, input, output, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		in.ID.String(), in.SessionID, string(in.Kind), in.Input, in.Output, in.OccurredAt,
	)
	return err
}

// Recent returns the latest interactions, newest first.
func (r *InteractionRepository) Recent(ctx context.Context, limit int) ([]*Interaction, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, session_id, kind, input, output, occurred_at
		FROM interactions
		ORDER BY occurred_at DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Interaction
	for rows.Next() {
		var (
			in   Interaction
			id   string
			kind string
		)
		if err := rows.Scan(&id, &in.SessionID, &kind, &in.Input, &in.Output, &in.OccurredAt); err != nil {
			return nil, err
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse interaction id %q: %w", id, err)
		}
		in.ID = parsed
		in.Kind = InteractionKind(kind)
		out = append(out, &in)
	}
	return out, rows.Err()
}
