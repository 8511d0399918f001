// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"leadflow_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Lead Lifecycle Events
// =============================================================================

// InboxEventQueued is published when an inbound lead event lands in the inbox.
type InboxEventQueued struct {
	BaseEvent
	InboxID  string    `json:"inboxId"`
	Business string    `json:"business"`
	LeadID   string    `json:"leadId"`
	Event    string    `json:"event"`
}

func (e InboxEventQueued) EventName() string { return "leads.inbox.queued" }

// LeadScored is published after scoring or rescoring updates a lead record.
type LeadScored struct {
	BaseEvent
	Business    string `json:"business"`
	LeadID      string `json:"leadId"`
	Event       string `json:"event"`
	ScoreChange int    `json:"scoreChange"`
	NewScore    int    `json:"newScore"`
	Tier        string `json:"tier"`
	Sequence    string `json:"sequence"`
}

func (e LeadScored) EventName() string { return "leads.lead.scored" }

// HotLeadFlagged is published when a lead lands in the hot tier.
// Escalation routing comes from the business targets config; delivery of
// the alert itself is outside this system.
type HotLeadFlagged struct {
	BaseEvent
	Business          string  `json:"business"`
	LeadID            string  `json:"leadId"`
	Name              *string `json:"name,omitempty"`
	Score             int     `json:"score"`
	EscalationChannel *string `json:"escalationChannel,omitempty"`
	EscalationContact *string `json:"escalationContact,omitempty"`
}

func (e HotLeadFlagged) EventName() string { return "leads.lead.hot_flagged" }

// FollowUpGenerated is published when a follow-up message payload is stored.
type FollowUpGenerated struct {
	BaseEvent
	Business      string    `json:"business"`
	LeadID        string    `json:"leadId"`
	MessageID     string    `json:"messageId"`
	Sequence      string    `json:"sequence"`
	MessageNumber int       `json:"messageNumber"`
	Channel       string    `json:"channel"`
}

func (e FollowUpGenerated) EventName() string { return "leads.followup.generated" }

// LeadArchived is published when the guardrail evaluator archives a lead.
type LeadArchived struct {
	BaseEvent
	Business string `json:"business"`
	LeadID   string `json:"leadId"`
	Reason   string `json:"reason"`
}

func (e LeadArchived) EventName() string { return "leads.lead.archived" }

// LeadReactivated is published when an archived lead returns to active
// after its cooldown elapses.
type LeadReactivated struct {
	BaseEvent
	Business string `json:"business"`
	LeadID   string `json:"leadId"`
}

func (e LeadReactivated) EventName() string { return "leads.lead.reactivated" }
