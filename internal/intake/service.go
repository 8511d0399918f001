package intake

import (
	"context"
	"errors"
	"time"

	"leadflow_backend/internal/bizconfig"
	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/phone"
)

// Store is the repository surface intake needs.
type Store interface {
	repository.RecordReader
	repository.InboxStore
	repository.MessageStore
}

// Service queues inbound lead events and serves lead read models.
type Service struct {
	store Store
	biz   *bizconfig.Reader
	bus   events.Bus
	log   *logger.Logger
}

func NewService(store Store, biz *bizconfig.Reader, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, biz: biz, bus: bus, log: log}
}

// SubmitLead validates the business, normalizes contact data, and
// enqueues the event for the next processing run.
func (s *Service) SubmitLead(ctx context.Context, business string, req InboundLeadRequest) (*QueuedResponse, error) {
	if err := s.businessExists(business); err != nil {
		return nil, err
	}

	if req.Phone != nil {
		if !phone.IsPlausible(*req.Phone) {
			return nil, apperr.Validation("phone number is not plausible")
		}
		normalized := phone.NormalizeE164(*req.Phone)
		req.Phone = &normalized
	}

	event := domain.InboxEvent{
		Business:        business,
		LeadID:          req.LeadID,
		Event:           req.Event,
		Name:            req.Name,
		Phone:           req.Phone,
		Email:           req.Email,
		Source:          req.Source,
		Channel:         req.Channel,
		ServiceInterest: req.ServiceInterest,
		Location:        req.Location,
		Urgency:         req.Urgency,
		Message:         req.Message,
		ReceivedAt:      time.Now().UTC(),
	}

	inboxID, err := s.store.Enqueue(ctx, event)
	if err != nil {
		s.log.DatabaseError("enqueue inbox event", err)
		return nil, apperr.Unavailable("could not queue lead event", err)
	}

	s.bus.Publish(ctx, events.InboxEventQueued{
		BaseEvent: events.NewBaseEvent(),
		InboxID:   inboxID,
		Business:  business,
		LeadID:    req.LeadID,
		Event:     event.EventOrDefault(false),
	})

	s.log.WithBusiness(business).WithLead(req.LeadID).Info("lead event queued", "inbox_id", inboxID)

	return &QueuedResponse{
		InboxID:  inboxID,
		Business: business,
		LeadID:   req.LeadID,
		Status:   "queued",
	}, nil
}

// GetLead returns the lead record read model.
func (s *Service) GetLead(ctx context.Context, business, leadID string) (*LeadResponse, error) {
	if err := s.businessExists(business); err != nil {
		return nil, err
	}

	lead, err := s.store.GetLead(ctx, business, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("lead not found")
		}
		return nil, apperr.Unavailable("could not load lead", err)
	}

	resp := toLeadResponse(lead)
	return &resp, nil
}

// ListLeadMessages returns the generated follow-ups for one lead.
func (s *Service) ListLeadMessages(ctx context.Context, business, leadID string) ([]MessageResponse, error) {
	if err := s.businessExists(business); err != nil {
		return nil, err
	}

	messages, err := s.store.ListMessages(ctx, business, leadID)
	if err != nil {
		return nil, apperr.Unavailable("could not load messages", err)
	}

	out := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, toMessageResponse(m))
	}
	return out, nil
}

func (s *Service) businessExists(business string) error {
	slugs, err := s.biz.ListBusinesses()
	if err != nil {
		return apperr.Unavailable("business configuration unavailable", err)
	}
	for _, slug := range slugs {
		if slug == business {
			return nil
		}
	}
	return apperr.NotFound("unknown business")
}
