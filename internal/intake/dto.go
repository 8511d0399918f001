package intake

import (
	"time"

	"leadflow_backend/internal/leads/domain"
)

// InboundLeadRequest is the payload for submitting a lead event. Only
// the lead identifier is mandatory; everything else enriches scoring.
type InboundLeadRequest struct {
	LeadID          string  `json:"lead_id" validate:"required,min=1,max=200"`
	Event           string  `json:"event" validate:"omitempty,max=50"`
	Name            *string `json:"name" validate:"omitempty,max=200"`
	Phone           *string `json:"phone" validate:"omitempty,max=30"`
	Email           *string `json:"email" validate:"omitempty,email,max=254"`
	Source          *string `json:"source" validate:"omitempty,max=100"`
	Channel         *string `json:"channel" validate:"omitempty,oneof=whatsapp email sms dm"`
	ServiceInterest *string `json:"service_interest" validate:"omitempty,max=200"`
	Location        *string `json:"location" validate:"omitempty,max=200"`
	Urgency         *string `json:"urgency" validate:"omitempty,max=50"`
	Message         *string `json:"message" validate:"omitempty,max=5000"`
}

// QueuedResponse acknowledges an accepted lead event.
type QueuedResponse struct {
	InboxID  string `json:"inbox_id"`
	Business string `json:"business"`
	LeadID   string `json:"lead_id"`
	Status   string `json:"status"`
}

// LeadResponse is the read model for one lead record.
type LeadResponse struct {
	LeadID          string         `json:"lead_id"`
	Business        string         `json:"business"`
	Name            *string        `json:"name"`
	Phone           *string        `json:"phone"`
	Email           *string        `json:"email"`
	Source          *string        `json:"source"`
	Channel         string         `json:"channel"`
	ServiceInterest *string        `json:"service_interest"`
	Location        *string        `json:"location"`
	Urgency         *string        `json:"urgency"`
	Score           int            `json:"score"`
	Tier            string         `json:"tier"`
	Sequence        string         `json:"sequence"`
	MessagesSent    int            `json:"messages_sent"`
	LastMessageAt   *time.Time     `json:"last_message_at"`
	Status          string         `json:"status"`
	History         []HistoryEntry `json:"history"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// HistoryEntry mirrors one applied scoring event.
type HistoryEntry struct {
	Event       string    `json:"event"`
	ScoreChange int       `json:"score_change"`
	NewScore    int       `json:"new_score"`
	At          time.Time `json:"at"`
}

// MessageResponse is the read model for one generated follow-up.
type MessageResponse struct {
	ID            string     `json:"id"`
	Sequence      string     `json:"sequence"`
	MessageNumber int        `json:"message_number"`
	Channel       string     `json:"channel"`
	MessageText   string     `json:"message_text"`
	SubjectLine   *string    `json:"subject_line"`
	Tone          string     `json:"tone"`
	Status        string     `json:"status"`
	GeneratedAt   time.Time  `json:"generated_at"`
}

func toLeadResponse(lead *domain.Lead) LeadResponse {
	history := make([]HistoryEntry, 0, len(lead.History))
	for _, h := range lead.History {
		history = append(history, HistoryEntry{
			Event:       h.Event,
			ScoreChange: h.ScoreChange,
			NewScore:    h.NewScore,
			At:          h.At,
		})
	}

	return LeadResponse{
		LeadID:          lead.ID,
		Business:        lead.Business,
		Name:            lead.Name,
		Phone:           lead.Phone,
		Email:           lead.Email,
		Source:          lead.Source,
		Channel:         lead.Channel,
		ServiceInterest: lead.ServiceInterest,
		Location:        lead.Location,
		Urgency:         lead.Urgency,
		Score:           lead.Score,
		Tier:            string(lead.Tier),
		Sequence:        string(lead.Sequence),
		MessagesSent:    lead.MessagesSent,
		LastMessageAt:   lead.LastMessageAt,
		Status:          string(lead.Status),
		History:         history,
		CreatedAt:       lead.CreatedAt,
		UpdatedAt:       lead.UpdatedAt,
	}
}

func toMessageResponse(msg domain.Message) MessageResponse {
	return MessageResponse{
		ID:            msg.ID,
		Sequence:      string(msg.Sequence),
		MessageNumber: msg.MessageNumber,
		Channel:       msg.Channel,
		MessageText:   msg.MessageText,
		SubjectLine:   msg.SubjectLine,
		Tone:          msg.Tone,
		Status:        msg.Status,
		GeneratedAt:   msg.GeneratedAt,
	}
}
