package domain

import "time"

// InboxEvent is one pending inbound lead event awaiting processing.
// ID is the physical event identity used for idempotent rescoring.
type InboxEvent struct {
	ID              string     `json:"id"`
	Business        string     `json:"business"`
	LeadID          string     `json:"lead_id"`
	Event           string     `json:"event"`
	Name            *string    `json:"name"`
	Phone           *string    `json:"phone"`
	Email           *string    `json:"email"`
	Source          *string    `json:"source"`
	Channel         *string    `json:"channel"`
	ServiceInterest *string    `json:"service_interest"`
	Location        *string    `json:"location"`
	Urgency         *string    `json:"urgency"`
	Message         *string    `json:"message"`
	ReceivedAt      time.Time  `json:"received_at"`
	DeferredUntil   *time.Time `json:"deferred_until,omitempty"`
}

// EventOrDefault resolves the effective event name: new_lead for first
// contact, reply for an unspecified trigger on a known lead.
func (e InboxEvent) EventOrDefault(existing bool) string {
	if e.Event != "" {
		return e.Event
	}
	if existing {
		return EventReply
	}
	return EventNewLead
}
