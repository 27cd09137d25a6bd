package originlist

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"msgbarrier/internal/barrier/models"
	"msgbarrier/pkg/domain"
	"msgbarrier/pkg/platform/sentinel"
	txcontext "msgbarrier/pkg/platform/tx"
)

// Schema creates the origin list table used by PostgresStore.
const Schema = `
CREATE TABLE IF NOT EXISTS barrier_origin_entries (
	id         UUID PRIMARY KEY,
	list       TEXT NOT NULL,
	origin     TEXT NOT NULL,
	reason     TEXT NOT NULL DEFAULT '',
	created_by TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ,
	UNIQUE (list, origin)
);
CREATE INDEX IF NOT EXISTS barrier_origin_entries_expires_at_idx ON barrier_origin_entries (expires_at);
`

// PostgresStore persists origin entries in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed origin store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Add(ctx context.Context, entry *models.OriginEntry) error {
	if entry == nil {
		return fmt.Errorf("origin entry is required")
	}
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO barrier_origin_entries (id, list, origin, reason, created_by, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (list, origin) DO UPDATE SET
			id = EXCLUDED.id,
			reason = EXCLUDED.reason,
			created_by = EXCLUDED.created_by,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at
	`,
		entry.ID,
		string(entry.List),
		entry.Origin.String(),
		entry.Reason,
		entry.CreatedBy,
		entry.CreatedAt,
		nullTime(entry.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("add origin entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) Remove(ctx context.Context, list models.OriginList, origin string) error {
	res, err := s.execer(ctx).ExecContext(ctx,
		`DELETE FROM barrier_origin_entries WHERE list = $1 AND origin = $2`,
		string(list), origin,
	)
	if err != nil {
		return fmt.Errorf("remove origin entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove origin entry: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("origin %s on %s list: %w", origin, list, sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, list models.OriginList, now time.Time) ([]*models.OriginEntry, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT id, list, origin, reason, created_by, created_at, expires_at
		FROM barrier_origin_entries
		WHERE list = $1 AND (expires_at IS NULL OR expires_at > $2)
		ORDER BY origin
	`, string(list), now)
	if err != nil {
		return nil, fmt.Errorf("list origin entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.OriginEntry, 0)
	for rows.Next() {
		var (
			entry     models.OriginEntry
			listName  string
			origin    string
			expiresAt sql.NullTime
		)
		if err := rows.Scan(&entry.ID, &listName, &origin, &entry.Reason, &entry.CreatedBy, &entry.CreatedAt, &expiresAt); err != nil {
			return nil, fmt.Errorf("scan origin entry: %w", err)
		}
		loc, err := domain.ParseLocation(origin)
		if err != nil {
			return nil, fmt.Errorf("parse stored origin %q: %w", origin, err)
		}
		entry.List = models.OriginList(listName)
		entry.Origin = loc
		if expiresAt.Valid {
			entry.ExpiresAt = &expiresAt.Time
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate origin entries: %w", err)
	}
	return entries, nil
}

// Replace swaps the full content of one list in a single transaction.
func (s *PostgresStore) Replace(ctx context.Context, list models.OriginList, entries []*models.OriginEntry) error {
	return txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		if _, err := s.execer(ctx).ExecContext(ctx,
			`DELETE FROM barrier_origin_entries WHERE list = $1`, string(list)); err != nil {
			return fmt.Errorf("clear origin list: %w", err)
		}
		for _, entry := range entries {
			if entry.List != list {
				return fmt.Errorf("entry for %s on %s list: list mismatch", entry.Origin, entry.List)
			}
			if err := s.Add(ctx, entry); err != nil {
				return err
			}
		}
		return nil
	})
}

// StartCleanup runs periodic cleanup of expired entries until ctx is cancelled.
func (s *PostgresStore) StartCleanup(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.RemoveExpiredAt(ctx, time.Now()); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RemoveExpiredAt removes all entries that have expired as of the given time.
// Exported for testability; background cleanup passes wall-clock time.
func (s *PostgresStore) RemoveExpiredAt(ctx context.Context, now time.Time) error {
	if _, err := s.execer(ctx).ExecContext(ctx,
		`DELETE FROM barrier_origin_entries WHERE expires_at IS NOT NULL AND expires_at <= $1`, now); err != nil {
		return fmt.Errorf("cleanup origin entries: %w", err)
	}
	return nil
}

func nullTime(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *value, Valid: true}
}
