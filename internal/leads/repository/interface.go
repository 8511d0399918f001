package repository

import (
	"context"
	"time"

	"leadflow_backend/internal/leads/domain"
)

// =====================================
// Segregated Interfaces (Interface Segregation Principle)
// =====================================

// RecordReader provides read access to lead records.
type RecordReader interface {
	GetLead(ctx context.Context, business, leadID string) (*domain.Lead, error)
}

// RecordWriter persists lead records. SaveLead uses optimistic locking:
// it returns ErrVersionConflict when the stored version moved under us.
type RecordWriter interface {
	SaveLead(ctx context.Context, lead *domain.Lead) error
}

// InboxStore manages the pending-event queue for a business.
type InboxStore interface {
	Enqueue(ctx context.Context, event domain.InboxEvent) (string, error)
	ListPending(ctx context.Context, business string, now time.Time) ([]domain.InboxEvent, error)
	MarkProcessed(ctx context.Context, eventID string) error
	MarkFailed(ctx context.Context, eventID, reason string) error
	Defer(ctx context.Context, eventID string, until time.Time) error
}

// MessageStore persists generated follow-up messages.
type MessageStore interface {
	SaveMessage(ctx context.Context, msg domain.Message) error
	ListMessages(ctx context.Context, business, leadID string) ([]domain.Message, error)
}

// LeadsRepository is the full store surface the orchestrator works with.
type LeadsRepository interface {
	RecordReader
	RecordWriter
	InboxStore
	MessageStore
}
