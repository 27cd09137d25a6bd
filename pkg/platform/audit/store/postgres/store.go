package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	audit "msgbarrier/pkg/platform/audit"
	txcontext "msgbarrier/pkg/platform/tx"
)

// Schema creates the audit table used by Store.
const Schema = `
CREATE TABLE IF NOT EXISTS barrier_audit_events (
	id          UUID PRIMARY KEY,
	category    TEXT NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL,
	action      TEXT NOT NULL,
	subject     TEXT NOT NULL DEFAULT '',
	decision    TEXT NOT NULL DEFAULT '',
	reason      TEXT NOT NULL DEFAULT '',
	policy      TEXT NOT NULL DEFAULT '',
	message_id  TEXT NOT NULL DEFAULT '',
	request_id  TEXT NOT NULL DEFAULT '',
	actor_id    TEXT NOT NULL DEFAULT '',
	client_ip   TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS barrier_audit_events_occurred_at_idx ON barrier_audit_events (occurred_at DESC);
`

// Store implements audit.Store on PostgreSQL. It is the sink when no Kafka
// brokers are configured but a database is.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const insertEvent = `
	INSERT INTO barrier_audit_events (
		id, category, occurred_at, action, subject, decision,
		reason, policy, message_id, request_id, actor_id, client_ip
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`

// Append writes one event, joining the caller's transaction when the
// context carries one.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	return insert(ctx, s.execer(ctx), event)
}

// AppendBatch writes events in a single transaction.
func (s *Store) AppendBatch(ctx context.Context, events []audit.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin audit batch: %w", err)
	}
	for _, event := range events {
		if err := insert(ctx, tx, event); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit audit batch: %w", err)
	}
	return nil
}

func insert(ctx context.Context, exec dbExecutor, event audit.Event) error {
	_, err := exec.ExecContext(ctx, insertEvent,
		uuid.New(),
		string(event.Category),
		event.Timestamp,
		event.Action,
		event.Subject,
		event.Decision,
		event.Reason,
		event.Policy,
		event.MessageID,
		event.RequestID,
		event.ActorID,
		event.ClientIP,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListRecent returns the N most recent events, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, occurred_at, action, subject, decision,
			   reason, policy, message_id, request_id, actor_id, client_ip
		FROM barrier_audit_events
		ORDER BY occurred_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			category string
			event    audit.Event
		)
		if err := rows.Scan(&category, &event.Timestamp, &event.Action, &event.Subject, &event.Decision,
			&event.Reason, &event.Policy, &event.MessageID, &event.RequestID, &event.ActorID, &event.ClientIP); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
