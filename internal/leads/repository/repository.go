// Package repository persists lead records, the inbox queue, and
// generated messages in Postgres.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"leadflow_backend/internal/leads/domain"
)

var (
	ErrNotFound        = errors.New("lead not found")
	ErrVersionConflict = errors.New("lead record was modified concurrently")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ LeadsRepository = (*Repository)(nil)

const leadColumns = `
	lead_id, business, name, phone, email, source, channel,
	service_interest, location, urgency, message,
	score, tier, sequence, messages_sent, last_message_at,
	status, history, version, created_at, updated_at
`

// GetLead loads one lead record. Returns ErrNotFound when the lead
// identifier has never been seen for this business.
func (r *Repository) GetLead(ctx context.Context, business, leadID string) (*domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE business = $1 AND lead_id = $2
	`, business, leadID)

	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get lead %s/%s: %w", business, leadID, err)
	}
	return lead, nil
}

// SaveLead inserts a new record or updates an existing one. Updates
// carry the version read at load time; a mismatch means another writer
// got there first and the caller must reload and retry.
func (r *Repository) SaveLead(ctx context.Context, lead *domain.Lead) error {
	history, err := json.Marshal(lead.History)
	if err != nil {
		return fmt.Errorf("marshal history for %s: %w", lead.ID, err)
	}

	if lead.Version == 0 {
		err := r.pool.QueryRow(ctx, `
			INSERT INTO leads (
				lead_id, business, name, phone, email, source, channel,
				service_interest, location, urgency, message,
				score, tier, sequence, messages_sent, last_message_at,
				status, history, version, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
				$12, $13, $14, $15, $16, $17, $18, 1, $19, $20
			)
			RETURNING version
		`,
			lead.ID, lead.Business, lead.Name, lead.Phone, lead.Email, lead.Source, lead.Channel,
			lead.ServiceInterest, lead.Location, lead.Urgency, lead.Message,
			lead.Score, lead.Tier, lead.Sequence, lead.MessagesSent, lead.LastMessageAt,
			lead.Status, history, lead.CreatedAt, lead.UpdatedAt,
		).Scan(&lead.Version)
		if err != nil {
			return fmt.Errorf("insert lead %s/%s: %w", lead.Business, lead.ID, err)
		}
		return nil
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET
			name = $3, phone = $4, email = $5, source = $6, channel = $7,
			service_interest = $8, location = $9, urgency = $10, message = $11,
			score = $12, tier = $13, sequence = $14, messages_sent = $15,
			last_message_at = $16, status = $17, history = $18,
			version = version + 1, updated_at = $19
		WHERE business = $1 AND lead_id = $2 AND version = $20
	`,
		lead.Business, lead.ID, lead.Name, lead.Phone, lead.Email, lead.Source, lead.Channel,
		lead.ServiceInterest, lead.Location, lead.Urgency, lead.Message,
		lead.Score, lead.Tier, lead.Sequence, lead.MessagesSent,
		lead.LastMessageAt, lead.Status, history, lead.UpdatedAt, lead.Version,
	)
	if err != nil {
		return fmt.Errorf("update lead %s/%s: %w", lead.Business, lead.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	lead.Version++
	return nil
}

func scanLead(row pgx.Row) (*domain.Lead, error) {
	var lead domain.Lead
	var history []byte
	err := row.Scan(
		&lead.ID, &lead.Business, &lead.Name, &lead.Phone, &lead.Email, &lead.Source, &lead.Channel,
		&lead.ServiceInterest, &lead.Location, &lead.Urgency, &lead.Message,
		&lead.Score, &lead.Tier, &lead.Sequence, &lead.MessagesSent, &lead.LastMessageAt,
		&lead.Status, &history, &lead.Version, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &lead.History); err != nil {
			return nil, fmt.Errorf("unmarshal history: %w", err)
		}
	}
	return &lead, nil
}
