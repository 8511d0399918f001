// Package domain provides the core business rules for the leads bounded
// context: the lead record, tier classification, sequence selection, and
// the event vocabulary shared by scoring and guardrails.
package domain

import "time"

// Status is the lifecycle state of a lead record. Archived is the
// terminal resting state until a reactivation brings the lead back.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Tier is the qualitative bucket derived from the score.
type Tier string

const (
	TierHot  Tier = "hot"
	TierWarm Tier = "warm"
	TierCold Tier = "cold"
)

// Sequence is the follow-up campaign type assigned to a lead.
type Sequence string

const (
	SequenceImmediate    Sequence = "immediate"
	SequenceNurture      Sequence = "nurture"
	SequenceReactivation Sequence = "reactivation"
	SequenceQuoteChase   Sequence = "quote_chase"
)

// Lead event names. NewLead is the implied event for first contact,
// Reply the default for unspecified rescoring triggers.
const (
	EventNewLead       = "new_lead"
	EventReply         = "reply"
	EventQuoteRequest  = "quote_request"
	EventPostQuote     = "post_quote"
	EventPhotosSent    = "photos_sent"
	EventMeetingBooked = "meeting_booked"
	EventSilent7d      = "silent_7d"
	EventSilent30d     = "silent_30d"
)

// Lead is the durable record for one lead, scoped to a business.
// Contact fields are nullable; they carry whatever the inbound event
// provided. Version backs optimistic locking in the store.
type Lead struct {
	ID              string         `json:"lead_id"`
	Business        string         `json:"business"`
	Name            *string        `json:"name"`
	Phone           *string        `json:"phone"`
	Email           *string        `json:"email"`
	Source          *string        `json:"source"`
	Channel         string         `json:"channel"`
	ServiceInterest *string        `json:"service_interest"`
	Location        *string        `json:"location"`
	Urgency         *string        `json:"urgency"`
	Message         *string        `json:"message"`
	Score           int            `json:"score"`
	Tier            Tier           `json:"tier"`
	Sequence        Sequence       `json:"sequence"`
	MessagesSent    int            `json:"messages_sent"`
	LastMessageAt   *time.Time     `json:"last_message_at"`
	Status          Status         `json:"status"`
	History         []HistoryEntry `json:"history"`
	Version         int64          `json:"-"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// HistoryEntry is one applied scoring or rescoring event. History is
// append-only; it is the audit trail and the idempotency ledger.
type HistoryEntry struct {
	Event        string    `json:"event"`
	ScoreChange  int       `json:"score_change"`
	NewScore     int       `json:"new_score"`
	At           time.Time `json:"at"`
	InboxEventID string    `json:"inbox_event_id,omitempty"`
}

// HasProcessed reports whether the given inbox event was already applied
// to this lead. Re-delivered events short-circuit instead of double
// counting their score delta.
func (l *Lead) HasProcessed(inboxEventID string) bool {
	if inboxEventID == "" {
		return false
	}
	for _, entry := range l.History {
		if entry.InboxEventID == inboxEventID {
			return true
		}
	}
	return false
}

// AppendHistory records an applied event. History entries are never
// mutated in place.
func (l *Lead) AppendHistory(entry HistoryEntry) {
	l.History = append(l.History, entry)
}
