package domain

import "time"

// MessageStatusPendingSend marks a generated message that has not yet
// been handed to a delivery channel.
const MessageStatusPendingSend = "pending_send"

// Message is one generated follow-up, stored for downstream sending.
type Message struct {
	ID            string    `json:"id"`
	Business      string    `json:"business"`
	LeadID        string    `json:"lead_id"`
	Sequence      Sequence  `json:"sequence"`
	MessageNumber int       `json:"message_number"`
	Channel       string    `json:"channel"`
	MessageText   string    `json:"message_text"`
	SubjectLine   *string   `json:"subject_line"`
	Tone          string    `json:"tone"`
	VariablesUsed []string  `json:"variables_used"`
	Model         string    `json:"model"`
	Status        string    `json:"status"`
	GeneratedAt   time.Time `json:"generated_at"`
}
