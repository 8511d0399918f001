package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"leadflow_backend/internal/leads/domain"
)

// Inbox row statuses. Deferred events stay pending with a deferred_until
// timestamp and reappear once it passes.
const (
	inboxStatusPending   = "pending"
	inboxStatusProcessed = "processed"
	inboxStatusFailed    = "failed"
)

// Enqueue stores an inbound event and returns its identifier.
func (r *Repository) Enqueue(ctx context.Context, event domain.InboxEvent) (string, error) {
	id := event.ID
	if id == "" {
		id = uuid.NewString()
	}
	receivedAt := event.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO lead_inbox (
			id, business, lead_id, event, name, phone, email, source,
			channel, service_interest, location, urgency, message,
			status, received_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15
		)
	`,
		id, event.Business, event.LeadID, event.Event, event.Name, event.Phone,
		event.Email, event.Source, event.Channel, event.ServiceInterest,
		event.Location, event.Urgency, event.Message,
		inboxStatusPending, receivedAt,
	)
	if err != nil {
		return "", fmt.Errorf("enqueue inbox event for %s/%s: %w", event.Business, event.LeadID, err)
	}
	return id, nil
}

// ListPending returns pending events for a business whose deferral, if
// any, has expired. Ordered by arrival so rescoring applies in sequence.
func (r *Repository) ListPending(ctx context.Context, business string, now time.Time) ([]domain.InboxEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, business, lead_id, event, name, phone, email, source,
		       channel, service_interest, location, urgency, message,
		       received_at, deferred_until
		FROM lead_inbox
		WHERE business = $1
		  AND status = $2
		  AND (deferred_until IS NULL OR deferred_until <= $3)
		ORDER BY received_at ASC
	`, business, inboxStatusPending, now)
	if err != nil {
		return nil, fmt.Errorf("list pending inbox for %s: %w", business, err)
	}
	defer rows.Close()

	events := make([]domain.InboxEvent, 0)
	for rows.Next() {
		var e domain.InboxEvent
		if err := rows.Scan(
			&e.ID, &e.Business, &e.LeadID, &e.Event, &e.Name, &e.Phone,
			&e.Email, &e.Source, &e.Channel, &e.ServiceInterest,
			&e.Location, &e.Urgency, &e.Message,
			&e.ReceivedAt, &e.DeferredUntil,
		); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return events, nil
}

// MarkProcessed retires a consumed inbox event.
func (r *Repository) MarkProcessed(ctx context.Context, eventID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE lead_inbox
		SET status = $2, processed_at = now()
		WHERE id = $1
	`, eventID, inboxStatusProcessed)
	if err != nil {
		return fmt.Errorf("mark inbox event %s processed: %w", eventID, err)
	}
	return nil
}

// MarkFailed records a processing failure. The event stays out of the
// pending set; the failure reason aids manual triage.
func (r *Repository) MarkFailed(ctx context.Context, eventID, reason string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE lead_inbox
		SET status = $2, error = $3, processed_at = now()
		WHERE id = $1
	`, eventID, inboxStatusFailed, reason)
	if err != nil {
		return fmt.Errorf("mark inbox event %s failed: %w", eventID, err)
	}
	return nil
}

// Defer keeps an event pending but invisible until the given time, so a
// lead inside its message gap or cooldown is retried automatically.
func (r *Repository) Defer(ctx context.Context, eventID string, until time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE lead_inbox
		SET deferred_until = $2
		WHERE id = $1
	`, eventID, until)
	if err != nil {
		return fmt.Errorf("defer inbox event %s: %w", eventID, err)
	}
	return nil
}
