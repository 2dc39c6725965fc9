package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/google/uuid"

	audit "xcmkit/pkg/platform/audit"
	txcontext "xcmkit/pkg/platform/tx"
)

// Schema creates the directive audit table.
const Schema = `
CREATE TABLE IF NOT EXISTS directive_audit (
	id          UUID        PRIMARY KEY,
	category    TEXT        NOT NULL,
	action      TEXT        NOT NULL,
	timestamp   TIMESTAMPTZ NOT NULL,
	request_id  TEXT        NOT NULL DEFAULT '',
	actor_id    TEXT        NOT NULL DEFAULT '',
	subject     TEXT        NOT NULL DEFAULT '',
	destination TEXT        NOT NULL DEFAULT '',
	direction   TEXT        NOT NULL DEFAULT '',
	xcm_version INT         NOT NULL DEFAULT 0,
	asset_count INT         NOT NULL DEFAULT 0,
	fingerprint TEXT        NOT NULL DEFAULT '',
	reason      TEXT        NOT NULL DEFAULT ''
)`

// Store implements audit.Store and audit.Reader on PostgreSQL.
// Appends join the caller's transaction when one is present in context.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the audit table when it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create directive audit table: %w", err)
	}
	return nil
}

// Append inserts event. Duplicate ids are ignored so redelivery is harmless.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	// Category always follows the action.
	category := audit.AuditEvent(event.Action).Category()

	query := `
		INSERT INTO directive_audit (
			id, category, action, timestamp, request_id, actor_id,
			subject, destination, direction, xcm_version, asset_count,
			fingerprint, reason
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, query,
		event.ID,
		string(category),
		event.Action,
		event.Timestamp,
		event.RequestID,
		event.ActorID,
		event.Subject,
		event.Destination,
		event.Direction,
		event.XcmVersion,
		event.AssetCount,
		event.Fingerprint,
		event.Reason,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListRecent returns the limit most recent events, oldest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	query := `
		SELECT id, category, action, timestamp, request_id, actor_id,
			   subject, destination, direction, xcm_version, asset_count,
			   fingerprint, reason
		FROM directive_audit
		ORDER BY timestamp DESC
	`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}
	slices.Reverse(events)
	return events, nil
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event
	for rows.Next() {
		var (
			category string
			event    audit.Event
		)
		err := rows.Scan(
			&event.ID,
			&category,
			&event.Action,
			&event.Timestamp,
			&event.RequestID,
			&event.ActorID,
			&event.Subject,
			&event.Destination,
			&event.Direction,
			&event.XcmVersion,
			&event.AssetCount,
			&event.Fingerprint,
			&event.Reason,
		)
		if err != nil {
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
