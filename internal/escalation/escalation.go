// Package escalation consumes lead lifecycle events and surfaces the
// ones a human must see. Hot-lead alerts are routed to the business's
// configured escalation channel; delivery of the alert itself is
// handled outside this system, so the notifier writes the structured
// alert record that delivery tooling tails.
package escalation

import (
	"context"
	"fmt"

	"leadflow_backend/internal/events"
	"leadflow_backend/platform/logger"
)

// Module subscribes to lead lifecycle events on the event bus.
type Module struct {
	log *logger.Logger
}

func NewModule(log *logger.Logger) *Module {
	return &Module{log: log}
}

// RegisterHandlers subscribes to all relevant domain events on the event bus.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.HotLeadFlagged{}.EventName(), m)
	bus.Subscribe(events.FollowUpGenerated{}.EventName(), m)
	bus.Subscribe(events.LeadArchived{}.EventName(), m)
	bus.Subscribe(events.LeadReactivated{}.EventName(), m)

	m.log.Info("escalation module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.HotLeadFlagged:
		m.handleHotLead(e)
	case events.FollowUpGenerated:
		m.log.Info("follow-up ready to send",
			"business", e.Business,
			"lead_id", e.LeadID,
			"message_id", e.MessageID,
			"sequence", e.Sequence,
			"message_number", e.MessageNumber,
			"channel", e.Channel,
		)
	case events.LeadArchived:
		m.log.Info("lead archived",
			"business", e.Business,
			"lead_id", e.LeadID,
			"reason", e.Reason,
		)
	case events.LeadReactivated:
		m.log.Info("lead reactivated",
			"business", e.Business,
			"lead_id", e.LeadID,
		)
	default:
		return fmt.Errorf("escalation: unexpected event %s", event.EventName())
	}
	return nil
}

func (m *Module) handleHotLead(e events.HotLeadFlagged) {
	channel := "owner"
	if e.EscalationChannel != nil && *e.EscalationChannel != "" {
		channel = *e.EscalationChannel
	}
	contact := ""
	if e.EscalationContact != nil {
		contact = *e.EscalationContact
	}
	name := "unknown"
	if e.Name != nil && *e.Name != "" {
		name = *e.Name
	}

	m.log.Warn("HOT LEAD escalation",
		"business", e.Business,
		"lead_id", e.LeadID,
		"name", name,
		"score", e.Score,
		"escalation_channel", channel,
		"escalation_contact", contact,
	)
}
