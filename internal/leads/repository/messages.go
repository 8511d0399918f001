package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"leadflow_backend/internal/leads/domain"
)

// SaveMessage stores a generated follow-up for downstream sending.
func (r *Repository) SaveMessage(ctx context.Context, msg domain.Message) error {
	id := msg.ID
	if id == "" {
		id = uuid.NewString()
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO lead_messages (
			id, business, lead_id, sequence, message_number, channel,
			message_text, subject_line, tone, variables_used, model,
			status, generated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
	`,
		id, msg.Business, msg.LeadID, msg.Sequence, msg.MessageNumber, msg.Channel,
		msg.MessageText, msg.SubjectLine, msg.Tone, msg.VariablesUsed, msg.Model,
		msg.Status, msg.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("save message for %s/%s: %w", msg.Business, msg.LeadID, err)
	}
	return nil
}

// ListMessages returns a lead's generated messages oldest first, used as
// prior-message context for the next generation.
func (r *Repository) ListMessages(ctx context.Context, business, leadID string) ([]domain.Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, business, lead_id, sequence, message_number, channel,
		       message_text, subject_line, tone, variables_used, model,
		       status, generated_at
		FROM lead_messages
		WHERE business = $1 AND lead_id = $2
		ORDER BY generated_at ASC
	`, business, leadID)
	if err != nil {
		return nil, fmt.Errorf("list messages for %s/%s: %w", business, leadID, err)
	}
	defer rows.Close()

	messages := make([]domain.Message, 0)
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(
			&m.ID, &m.Business, &m.LeadID, &m.Sequence, &m.MessageNumber, &m.Channel,
			&m.MessageText, &m.SubjectLine, &m.Tone, &m.VariablesUsed, &m.Model,
			&m.Status, &m.GeneratedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return messages, nil
}
