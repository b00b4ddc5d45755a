package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "custos/pkg/domain"
	audit "custos/pkg/platform/audit"
)

// Store implements audit.Store using the transactional outbox pattern.
// Events are written to the outbox table and published to Kafka by the
// outbox worker; Kafka is the durable sink for audit events.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL audit store that writes to the outbox.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// outboxPayload is the JSON structure published to Kafka. Field names match
// audit.Event for proper deserialization by downstream consumers.
type outboxPayload struct {
	ID          string `json:"ID"`
	Category    string `json:"Category"`
	Timestamp   string `json:"Timestamp"`
	EntityID    string `json:"EntityID,omitempty"`
	FrameworkID string `json:"FrameworkID,omitempty"`
	Subject     string `json:"Subject,omitempty"`
	Action      string `json:"Action"`
	Reason      string `json:"Reason,omitempty"`
	RequestID   string `json:"RequestID,omitempty"`
	Count       int    `json:"Count,omitempty"`
}

// Append writes an audit event to the outbox table for Kafka publishing.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID := uuid.New()

	// Always derive category from action - eventCategories map is the source of truth
	category := audit.Action(event.Action).Category()

	payload := outboxPayload{
		ID:        eventID.String(),
		Category:  string(category),
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
		Subject:   event.Subject,
		Action:    event.Action,
		Reason:    event.Reason,
		RequestID: event.RequestID,
		Count:     event.Count,
	}
	if !event.EntityID.IsNil() {
		payload.EntityID = event.EntityID.String()
	}
	if !event.FrameworkID.IsNil() {
		payload.FrameworkID = event.FrameworkID.String()
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	// Partition key groups an entity's events onto one partition so
	// consumers see them in order.
	key := payload.EntityID
	if key == "" {
		key = string(category)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_outbox (id, partition_key, payload, created_at)
		VALUES ($1, $2, $3, $4)
	`, eventID, key, raw, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("append audit outbox: %w", err)
	}
	return nil
}

// OutboxRow is one pending event awaiting publication.
type OutboxRow struct {
	ID      uuid.UUID
	Key     string
	Payload []byte
}

// PendingBatch returns up to limit unsent outbox rows, oldest first.
func (s *Store) PendingBatch(ctx context.Context, limit int) ([]OutboxRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, partition_key, payload
		FROM audit_outbox
		WHERE sent_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("load audit outbox batch: %w", err)
	}
	defer rows.Close()

	var batch []OutboxRow
	for rows.Next() {
		var row OutboxRow
		if err := rows.Scan(&row.ID, &row.Key, &row.Payload); err != nil {
			return nil, fmt.Errorf("scan audit outbox row: %w", err)
		}
		batch = append(batch, row)
	}
	return batch, rows.Err()
}

// MarkSent stamps the given rows as published. Unstamped rows are retried
// on the next worker pass.
func (s *Store) MarkSent(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE audit_outbox SET sent_at = $1 WHERE id = ANY($2)
	`, time.Now().UTC(), pq.Array(ids))
	if err != nil {
		return fmt.Errorf("mark audit outbox sent: %w", err)
	}
	return nil
}

// List satisfies the publisher's read-back interface for parity with the
// memory store. The outbox is write-mostly; this exists for admin debugging.
func (s *Store) List(ctx context.Context, entityID id.EntityID) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM audit_outbox
		WHERE partition_key = $1
		ORDER BY created_at
	`, entityID.String())
	if err != nil {
		return nil, fmt.Errorf("list audit outbox: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan audit outbox payload: %w", err)
		}
		var p outboxPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode audit outbox payload: %w", err)
		}
		events = append(events, eventFromPayload(p))
	}
	return events, rows.Err()
}

func eventFromPayload(p outboxPayload) audit.Event {
	event := audit.Event{
		Category:  audit.EventCategory(p.Category),
		Subject:   p.Subject,
		Action:    p.Action,
		Reason:    p.Reason,
		RequestID: p.RequestID,
		Count:     p.Count,
	}
	if ts, err := time.Parse(time.RFC3339Nano, p.Timestamp); err == nil {
		event.Timestamp = ts
	}
	if p.EntityID != "" {
		if eid, err := id.ParseEntityID(p.EntityID); err == nil {
			event.EntityID = eid
		}
	}
	if p.FrameworkID != "" {
		if fid, err := id.ParseFrameworkID(p.FrameworkID); err == nil {
			event.FrameworkID = fid
		}
	}
	return event
}
