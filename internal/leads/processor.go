// Package leads drives pending lead events through scoring, guardrails,
// and message generation, committing each outcome to the store.
package leads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"leadflow_backend/internal/bizconfig"
	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/guardrail"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/scoring"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"
)

// Generator is the message-generation collaborator. The concrete
// implementation calls Anthropic; tests inject a fake.
type Generator interface {
	Generate(
		ctx context.Context,
		lead *domain.Lead,
		priorMessages []domain.Message,
		sequence domain.Sequence,
		messageNumber int,
		biz *bizconfig.Business,
	) (*domain.Message, error)
}

// Summary counts what one processing pass did for a business.
type Summary struct {
	Business  string
	Processed int
	Messages  int
	HotLeads  int
	Archived  int
	Deferred  int
	Failures  int
}

// Processor is the lifecycle orchestrator. One invocation drains a
// business's pending inbox events sequentially; the store's optimistic
// versioning catches concurrent writers.
type Processor struct {
	repo repository.LeadsRepository
	gen  Generator
	bus  events.Bus
	log  *logger.Logger
	now  func() time.Time
}

func NewProcessor(repo repository.LeadsRepository, gen Generator, bus events.Bus, log *logger.Logger) *Processor {
	return &Processor{
		repo: repo,
		gen:  gen,
		bus:  bus,
		log:  log,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// ProcessBusiness drains the pending inbox for one business. A failure
// on one lead never aborts the rest; only an unreadable inbox is fatal.
func (p *Processor) ProcessBusiness(ctx context.Context, biz *bizconfig.Business) (Summary, error) {
	summary := Summary{Business: biz.Slug}
	log := p.log.WithBusiness(biz.Slug)

	pending, err := p.repo.ListPending(ctx, biz.Slug, p.now())
	if err != nil {
		return summary, fmt.Errorf("list pending inbox for %s: %w", biz.Slug, err)
	}
	if len(pending) == 0 {
		log.Debug("no pending lead events")
		return summary, nil
	}

	log.Info("processing pending lead events", "count", len(pending))

	for _, event := range pending {
		if event.LeadID == "" {
			log.Warn("skipping inbox event with no lead_id", "inbox_id", event.ID)
			if err := p.repo.MarkFailed(ctx, event.ID, "missing lead_id"); err != nil {
				log.DatabaseError("mark inbox failed", err)
			}
			summary.Failures++
			continue
		}

		if err := p.processEvent(ctx, biz, event, &summary); err != nil {
			log.WithLead(event.LeadID).Error("lead event processing failed",
				"inbox_id", event.ID,
				"error", err,
			)
			summary.Failures++
			// Store failures, generation failures, and version conflicts
			// leave the event pending for the next run. Anything else is
			// recorded as failed so a poison event cannot wedge the inbox.
			if kind := apperr.GetKind(err); kind != apperr.KindUnavailable && kind != apperr.KindConflict {
				if markErr := p.repo.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
					log.DatabaseError("mark inbox failed", markErr)
				}
			}
		}
	}

	return summary, nil
}

// processEvent resolves one inbox event end to end.
func (p *Processor) processEvent(ctx context.Context, biz *bizconfig.Business, event domain.InboxEvent, summary *Summary) error {
	now := p.now()
	log := p.log.WithBusiness(biz.Slug).WithLead(event.LeadID)

	lead, err := p.repo.GetLead(ctx, biz.Slug, event.LeadID)
	existing := err == nil
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return apperr.Unavailable("load lead record", err)
	}

	eventName := event.EventOrDefault(existing)

	if existing {
		if lead.HasProcessed(event.ID) {
			log.Info("inbox event already applied, consuming", "inbox_id", event.ID)
			summary.Processed++
			return p.markProcessed(ctx, event.ID)
		}
		p.rescore(lead, eventName, event.ID, biz.Targets, now)
	} else {
		lead = p.newLead(biz, event, eventName, now)
	}

	p.publish(ctx, events.LeadScored{
		BaseEvent:   events.NewBaseEvent(),
		Business:    biz.Slug,
		LeadID:      lead.ID,
		Event:       eventName,
		ScoreChange: lead.History[len(lead.History)-1].ScoreChange,
		NewScore:    lead.Score,
		Tier:        string(lead.Tier),
		Sequence:    string(lead.Sequence),
	})

	log.LeadProcessed(biz.Slug, lead.ID, eventName, lead.Score, string(lead.Tier), string(lead.Sequence))

	if lead.Tier == domain.TierHot {
		summary.HotLeads++
		log.HotLead(biz.Slug, lead.ID, lead.Score)
		p.publish(ctx, events.HotLeadFlagged{
			BaseEvent:         events.NewBaseEvent(),
			Business:          biz.Slug,
			LeadID:            lead.ID,
			Name:              lead.Name,
			Score:             lead.Score,
			EscalationChannel: optional(biz.Targets.EscalationChannel),
			EscalationContact: optional(biz.Targets.EscalationContact),
		})
	}

	decision := guardrail.Evaluate(lead, biz.Targets, now)

	switch decision.Action {
	case guardrail.ActionArchive:
		log.Info("archiving lead", "reason", decision.Reason)
		lead.Status = domain.StatusArchived
		lead.UpdatedAt = now
		if err := p.saveLead(ctx, lead); err != nil {
			return err
		}
		p.publish(ctx, events.LeadArchived{
			BaseEvent: events.NewBaseEvent(),
			Business:  biz.Slug,
			LeadID:    lead.ID,
			Reason:    decision.Reason,
		})
		summary.Processed++
		summary.Archived++
		return p.markProcessed(ctx, event.ID)

	case guardrail.ActionDefer:
		// Nothing is persisted on the lead; the event stays pending and
		// resurfaces once the gap or cooldown elapses.
		log.Info("deferring lead event", "reason", decision.Reason, "retry_at", decision.RetryAt)
		summary.Deferred++
		if err := p.repo.Defer(ctx, event.ID, decision.RetryAt); err != nil {
			return apperr.Unavailable("defer inbox event", err)
		}
		return nil
	}

	if decision.Reactivate {
		log.Info("reactivating archived lead")
		lead.Status = domain.StatusActive
		lead.Sequence = domain.SequenceReactivation
		p.publish(ctx, events.LeadReactivated{
			BaseEvent: events.NewBaseEvent(),
			Business:  biz.Slug,
			LeadID:    lead.ID,
		})
	}

	priorMessages, err := p.repo.ListMessages(ctx, biz.Slug, lead.ID)
	if err != nil {
		// Prior messages only enrich the prompt; generation proceeds
		// without them.
		log.DatabaseError("list prior messages", err)
		priorMessages = nil
	}

	msg, err := p.gen.Generate(ctx, lead, priorMessages, lead.Sequence, decision.MessageNumber, biz)
	if err != nil {
		log.GenerationError(biz.Slug, lead.ID, err)
		return err
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	if err := p.repo.SaveMessage(ctx, *msg); err != nil {
		return apperr.Unavailable("save generated message", err)
	}

	lead.MessagesSent = decision.MessageNumber
	lead.LastMessageAt = &now
	lead.UpdatedAt = now
	if err := p.saveLead(ctx, lead); err != nil {
		return err
	}

	p.publish(ctx, events.FollowUpGenerated{
		BaseEvent:     events.NewBaseEvent(),
		Business:      biz.Slug,
		LeadID:        lead.ID,
		MessageID:     msg.ID,
		Sequence:      string(msg.Sequence),
		MessageNumber: msg.MessageNumber,
		Channel:       msg.Channel,
	})

	summary.Processed++
	summary.Messages++
	return p.markProcessed(ctx, event.ID)
}

// rescore applies an event delta to an existing lead and re-derives its
// tier and sequence. The history entry records the inbox event identity
// so re-delivery is idempotent.
func (p *Processor) rescore(lead *domain.Lead, eventName, inboxEventID string, targets bizconfig.Targets, now time.Time) {
	delta, newScore := scoring.Rescore(lead.Score, eventName)
	lead.Score = newScore
	lead.Tier = domain.ClassifyTier(newScore, targets.HotThreshold, targets.WarmThreshold)
	lead.Sequence = domain.NextSequence(lead.Sequence, lead.Tier, eventName)
	lead.AppendHistory(domain.HistoryEntry{
		Event:        eventName,
		ScoreChange:  delta,
		NewScore:     newScore,
		At:           now,
		InboxEventID: inboxEventID,
	})
	lead.UpdatedAt = now
}

// newLead scores a first-contact event into a fresh record.
func (p *Processor) newLead(biz *bizconfig.Business, event domain.InboxEvent, eventName string, now time.Time) *domain.Lead {
	result := scoring.Score(scoring.Attributes{
		Source:          deref(event.Source),
		ServiceInterest: deref(event.ServiceInterest),
		Location:        deref(event.Location),
		Urgency:         deref(event.Urgency),
		Event:           eventName,
	}, biz.Targets, biz.Services, biz.Locations)

	channel := deref(event.Channel)
	if channel == "" {
		channel = "whatsapp"
	}

	return &domain.Lead{
		ID:              event.LeadID,
		Business:        biz.Slug,
		Name:            event.Name,
		Phone:           event.Phone,
		Email:           event.Email,
		Source:          event.Source,
		Channel:         channel,
		ServiceInterest: event.ServiceInterest,
		Location:        event.Location,
		Urgency:         event.Urgency,
		Message:         event.Message,
		Score:           result.Score,
		Tier:            result.Tier,
		Sequence:        result.Sequence,
		Status:          domain.StatusActive,
		History: []domain.HistoryEntry{{
			Event:        eventName,
			ScoreChange:  result.Score,
			NewScore:     result.Score,
			At:           now,
			InboxEventID: event.ID,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (p *Processor) saveLead(ctx context.Context, lead *domain.Lead) error {
	if err := p.repo.SaveLead(ctx, lead); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return apperr.Wrap(apperr.KindConflict, "lead record changed under us, will retry next run", err).
				WithOp("SaveLead")
		}
		return apperr.Unavailable("persist lead record", err)
	}
	return nil
}

func (p *Processor) markProcessed(ctx context.Context, eventID string) error {
	if err := p.repo.MarkProcessed(ctx, eventID); err != nil {
		return apperr.Unavailable("archive inbox event", err)
	}
	return nil
}

func (p *Processor) publish(ctx context.Context, event events.Event) {
	if p.bus == nil {
		return
	}
	p.bus.Publish(ctx, event)
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
