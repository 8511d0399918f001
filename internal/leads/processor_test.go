package leads

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"leadflow_backend/internal/bizconfig"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

// fakeRepo is an in-memory LeadsRepository. Reads hand out copies so a
// deferred event observably leaves the stored record untouched.
type fakeRepo struct {
	leads     map[string]*domain.Lead
	pending   []domain.InboxEvent
	processed []string
	failed    map[string]string
	deferred  map[string]time.Time
	messages  []domain.Message

	saveLeadErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		leads:    make(map[string]*domain.Lead),
		failed:   make(map[string]string),
		deferred: make(map[string]time.Time),
	}
}

func key(business, leadID string) string { return business + "/" + leadID }

func (f *fakeRepo) GetLead(_ context.Context, business, leadID string) (*domain.Lead, error) {
	lead, ok := f.leads[key(business, leadID)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *lead
	copied.History = append([]domain.HistoryEntry(nil), lead.History...)
	return &copied, nil
}

func (f *fakeRepo) SaveLead(_ context.Context, lead *domain.Lead) error {
	if f.saveLeadErr != nil {
		return f.saveLeadErr
	}
	lead.Version++
	copied := *lead
	copied.History = append([]domain.HistoryEntry(nil), lead.History...)
	f.leads[key(lead.Business, lead.ID)] = &copied
	return nil
}

func (f *fakeRepo) Enqueue(_ context.Context, event domain.InboxEvent) (string, error) {
	f.pending = append(f.pending, event)
	return event.ID, nil
}

func (f *fakeRepo) ListPending(_ context.Context, business string, now time.Time) ([]domain.InboxEvent, error) {
	out := make([]domain.InboxEvent, 0)
	for _, e := range f.pending {
		if e.Business == business {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeRepo) MarkProcessed(_ context.Context, eventID string) error {
	f.processed = append(f.processed, eventID)
	return nil
}

func (f *fakeRepo) MarkFailed(_ context.Context, eventID, reason string) error {
	f.failed[eventID] = reason
	return nil
}

func (f *fakeRepo) Defer(_ context.Context, eventID string, until time.Time) error {
	f.deferred[eventID] = until
	return nil
}

func (f *fakeRepo) SaveMessage(_ context.Context, msg domain.Message) error {
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeRepo) ListMessages(_ context.Context, business, leadID string) ([]domain.Message, error) {
	out := make([]domain.Message, 0)
	for _, m := range f.messages {
		if m.Business == business && m.LeadID == leadID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeGenerator struct {
	err   error
	calls int
}

func (g *fakeGenerator) Generate(
	_ context.Context,
	lead *domain.Lead,
	_ []domain.Message,
	sequence domain.Sequence,
	messageNumber int,
	_ *bizconfig.Business,
) (*domain.Message, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &domain.Message{
		Business:      lead.Business,
		LeadID:        lead.ID,
		Sequence:      sequence,
		MessageNumber: messageNumber,
		Channel:       lead.Channel,
		MessageText:   fmt.Sprintf("follow-up %d", messageNumber),
		Status:        domain.MessageStatusPendingSend,
		GeneratedAt:   testNow,
	}, nil
}

func strptr(s string) *string { return &s }

func testBusiness() *bizconfig.Business {
	return &bizconfig.Business{
		Slug: "phoenix-roofing",
		Brand: bizconfig.Brand{
			Identity: bizconfig.Identity{BusinessName: "Phoenix Roofing"},
		},
		Services: []bizconfig.Service{
			{Name: "Kitchen", Slug: "kitchen"},
		},
		Targets: bizconfig.Targets{
			MaxFollowups:     4,
			FollowupGapHours: 24,
			CooldownDays:     90,
			HotThreshold:     60,
			WarmThreshold:    40,
			SourceScores:     map[string]int{"referral": 20},
			ServiceScores:    map[string]int{"kitchen": 15},
		},
		Locations: bizconfig.Locations{
			Tier1: []string{"tier_1_area"},
		},
	}
}

func newTestProcessor(repo *fakeRepo, gen Generator) *Processor {
	p := NewProcessor(repo, gen, nil, logger.New("development"))
	p.now = func() time.Time { return testNow }
	return p
}

func TestNewHotLeadEndToEnd(t *testing.T) {
	repo := newFakeRepo()
	repo.pending = []domain.InboxEvent{{
		ID:              "evt-1",
		Business:        "phoenix-roofing",
		LeadID:          "lead-001",
		Name:            strptr("Sarah"),
		Source:          strptr("referral"),
		ServiceInterest: strptr("kitchen"),
		Location:        strptr("tier_1_area"),
		Urgency:         strptr("asap"),
	}}
	gen := &fakeGenerator{}
	p := newTestProcessor(repo, gen)

	summary, err := p.ProcessBusiness(context.Background(), testBusiness())
	if err != nil {
		t.Fatalf("ProcessBusiness: %v", err)
	}

	if summary.Processed != 1 || summary.Messages != 1 || summary.HotLeads != 1 || summary.Failures != 0 {
		t.Errorf("summary = %+v", summary)
	}

	lead := repo.leads["phoenix-roofing/lead-001"]
	if lead == nil {
		t.Fatal("lead record not saved")
	}
	// referral 20 + kitchen 15 + tier 1 15 + asap 20
	if lead.Score != 70 {
		t.Errorf("score = %d, want 70", lead.Score)
	}
	if lead.Tier != domain.TierHot || lead.Sequence != domain.SequenceImmediate {
		t.Errorf("tier/sequence = %s/%s", lead.Tier, lead.Sequence)
	}
	if lead.MessagesSent != 1 {
		t.Errorf("messages sent = %d, want 1", lead.MessagesSent)
	}
	if lead.LastMessageAt == nil || !lead.LastMessageAt.Equal(testNow) {
		t.Errorf("last message at = %v", lead.LastMessageAt)
	}
	if len(lead.History) != 1 || lead.History[0].Event != domain.EventNewLead || lead.History[0].InboxEventID != "evt-1" {
		t.Errorf("history = %+v", lead.History)
	}
	if len(repo.messages) != 1 || repo.messages[0].MessageNumber != 1 {
		t.Errorf("messages = %+v", repo.messages)
	}
	if len(repo.processed) != 1 || repo.processed[0] != "evt-1" {
		t.Errorf("processed = %v", repo.processed)
	}
}

func TestRescoreExistingLead(t *testing.T) {
	repo := newFakeRepo()
	repo.leads["phoenix-roofing/lead-002"] = &domain.Lead{
		ID:       "lead-002",
		Business: "phoenix-roofing",
		Channel:  "whatsapp",
		Score:    40,
		Tier:     domain.TierWarm,
		Sequence: domain.SequenceNurture,
		Status:   domain.StatusActive,
		Version:  1,
		History:  []domain.HistoryEntry{{Event: domain.EventNewLead, NewScore: 40, InboxEventID: "evt-0"}},
	}
	repo.pending = []domain.InboxEvent{{
		ID:       "evt-2",
		Business: "phoenix-roofing",
		LeadID:   "lead-002",
		Event:    domain.EventMeetingBooked,
	}}
	p := newTestProcessor(repo, &fakeGenerator{})

	summary, err := p.ProcessBusiness(context.Background(), testBusiness())
	if err != nil {
		t.Fatalf("ProcessBusiness: %v", err)
	}
	if summary.HotLeads != 1 || summary.Messages != 1 {
		t.Errorf("summary = %+v", summary)
	}

	lead := repo.leads["phoenix-roofing/lead-002"]
	if lead.Score != 70 {
		t.Errorf("score = %d, want 70", lead.Score)
	}
	if lead.Tier != domain.TierHot {
		t.Errorf("tier = %s, want hot", lead.Tier)
	}
	// Hot and not in quote_chase escalates to immediate.
	if lead.Sequence != domain.SequenceImmediate {
		t.Errorf("sequence = %s, want immediate", lead.Sequence)
	}
	if len(lead.History) != 2 {
		t.Fatalf("history = %+v", lead.History)
	}
	last := lead.History[1]
	if last.Event != domain.EventMeetingBooked || last.ScoreChange != 30 || last.NewScore != 70 || last.InboxEventID != "evt-2" {
		t.Errorf("last history entry = %+v", last)
	}
}

func TestRedeliveredEventIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	repo.leads["phoenix-roofing/lead-003"] = &domain.Lead{
		ID:       "lead-003",
		Business: "phoenix-roofing",
		Score:    55,
		Tier:     domain.TierWarm,
		Sequence: domain.SequenceNurture,
		Status:   domain.StatusActive,
		Version:  2,
		History: []domain.HistoryEntry{
			{Event: domain.EventNewLead, NewScore: 40, InboxEventID: "evt-0"},
			{Event: domain.EventReply, ScoreChange: 15, NewScore: 55, InboxEventID: "evt-3"},
		},
	}
	repo.pending = []domain.InboxEvent{{
		ID:       "evt-3",
		Business: "phoenix-roofing",
		LeadID:   "lead-003",
		Event:    domain.EventReply,
	}}
	gen := &fakeGenerator{}
	p := newTestProcessor(repo, gen)

	summary, err := p.ProcessBusiness(context.Background(), testBusiness())
	if err != nil {
		t.Fatalf("ProcessBusiness: %v", err)
	}
	if summary.Processed != 1 || summary.Messages != 0 {
		t.Errorf("summary = %+v", summary)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times, want 0", gen.calls)
	}
	// Delta not applied twice.
	if lead := repo.leads["phoenix-roofing/lead-003"]; lead.Score != 55 {
		t.Errorf("score = %d, want 55", lead.Score)
	}
	if len(repo.processed) != 1 {
		t.Errorf("processed = %v", repo.processed)
	}
}

func TestExhaustedSequenceArchivesWithoutGenerating(t *testing.T) {
	repo := newFakeRepo()
	repo.leads["phoenix-roofing/lead-004"] = &domain.Lead{
		ID:           "lead-004",
		Business:     "phoenix-roofing",
		Score:        30,
		Tier:         domain.TierCold,
		Sequence:     domain.SequenceImmediate,
		MessagesSent: 4,
		Status:       domain.StatusActive,
		Version:      1,
	}
	repo.pending = []domain.InboxEvent{{
		ID:       "evt-4",
		Business: "phoenix-roofing",
		LeadID:   "lead-004",
		Event:    "unknown_ping",
	}}
	gen := &fakeGenerator{}
	p := newTestProcessor(repo, gen)

	summary, err := p.ProcessBusiness(context.Background(), testBusiness())
	if err != nil {
		t.Fatalf("ProcessBusiness: %v", err)
	}
	if summary.Archived != 1 || summary.Messages != 0 {
		t.Errorf("summary = %+v", summary)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times, want 0", gen.calls)
	}
	if lead := repo.leads["phoenix-roofing/lead-004"]; lead.Status != domain.StatusArchived {
		t.Errorf("status = %s, want archived", lead.Status)
	}
	if len(repo.processed) != 1 {
		t.Errorf("processed = %v", repo.processed)
	}
}

func TestTooSoonDefersAndLeavesRecordUnchanged(t *testing.T) {
	lastMsg := testNow.Add(-10 * time.Hour)
	stored := &domain.Lead{
		ID:            "lead-005",
		Business:      "phoenix-roofing",
		Score:         45,
		Tier:          domain.TierWarm,
		Sequence:      domain.SequenceNurture,
		MessagesSent:  1,
		LastMessageAt: &lastMsg,
		Status:        domain.StatusActive,
		Version:       3,
	}
	repo := newFakeRepo()
	repo.leads["phoenix-roofing/lead-005"] = stored
	repo.pending = []domain.InboxEvent{{
		ID:       "evt-5",
		Business: "phoenix-roofing",
		LeadID:   "lead-005",
		Event:    domain.EventReply,
	}}
	p := newTestProcessor(repo, &fakeGenerator{})

	summary, err := p.ProcessBusiness(context.Background(), testBusiness())
	if err != nil {
		t.Fatalf("ProcessBusiness: %v", err)
	}
	if summary.Deferred != 1 {
		t.Errorf("summary = %+v", summary)
	}

	// The stored record is untouched: no rescore, no version bump.
	if stored.Score != 45 || stored.Version != 3 || len(stored.History) != 0 {
		t.Errorf("stored record mutated: %+v", stored)
	}
	wantRetry := lastMsg.Add(24 * time.Hour)
	if got := repo.deferred["evt-5"]; !got.Equal(wantRetry) {
		t.Errorf("deferred until %v, want %v", got, wantRetry)
	}
	if len(repo.processed) != 0 {
		t.Errorf("event should stay pending, processed = %v", repo.processed)
	}
}

func TestArchivedLeadReactivatesAfterCooldown(t *testing.T) {
	repo := newFakeRepo()
	repo.leads["phoenix-roofing/lead-006"] = &domain.Lead{
		ID:           "lead-006",
		Business:     "phoenix-roofing",
		Score:        20,
		Tier:         domain.TierCold,
		Sequence:     domain.SequenceImmediate,
		MessagesSent: 2,
		Status:       domain.StatusArchived,
		UpdatedAt:    testNow.Add(-95 * 24 * time.Hour),
		Version:      5,
	}
	repo.pending = []domain.InboxEvent{{
		ID:       "evt-6",
		Business: "phoenix-roofing",
		LeadID:   "lead-006",
		Event:    domain.EventReply,
	}}
	p := newTestProcessor(repo, &fakeGenerator{})

	if _, err := p.ProcessBusiness(context.Background(), testBusiness()); err != nil {
		t.Fatalf("ProcessBusiness: %v", err)
	}

	lead := repo.leads["phoenix-roofing/lead-006"]
	if lead.Status != domain.StatusActive {
		t.Errorf("status = %s, want active", lead.Status)
	}
	if lead.Sequence != domain.SequenceReactivation {
		t.Errorf("sequence = %s, want reactivation", lead.Sequence)
	}
	// Message numbering restarts.
	if lead.MessagesSent != 1 {
		t.Errorf("messages sent = %d, want 1", lead.MessagesSent)
	}
	if len(repo.messages) != 1 || repo.messages[0].MessageNumber != 1 {
		t.Errorf("messages = %+v", repo.messages)
	}
}

func TestGenerationFailureLeavesEventPending(t *testing.T) {
	repo := newFakeRepo()
	repo.pending = []domain.InboxEvent{{
		ID:       "evt-7",
		Business: "phoenix-roofing",
		LeadID:   "lead-007",
		Source:   strptr("referral"),
	}}
	gen := &fakeGenerator{err: apperr.Unavailable("model unavailable", errors.New("boom"))}
	p := newTestProcessor(repo, gen)

	summary, err := p.ProcessBusiness(context.Background(), testBusiness())
	if err != nil {
		t.Fatalf("ProcessBusiness: %v", err)
	}
	if summary.Failures != 1 || summary.Messages != 0 {
		t.Errorf("summary = %+v", summary)
	}
	// Not processed, not failed: retried next run.
	if len(repo.processed) != 0 {
		t.Errorf("processed = %v", repo.processed)
	}
	if len(repo.failed) != 0 {
		t.Errorf("failed = %v", repo.failed)
	}
	// No lead state or message was committed.
	if len(repo.messages) != 0 {
		t.Errorf("messages = %+v", repo.messages)
	}
}

func TestStoreFailureLeavesEventPending(t *testing.T) {
	repo := newFakeRepo()
	repo.saveLeadErr = errors.New("connection reset")
	repo.pending = []domain.InboxEvent{{
		ID:       "evt-store",
		Business: "phoenix-roofing",
		LeadID:   "lead-store",
		Source:   strptr("referral"),
	}}
	p := newTestProcessor(repo, &fakeGenerator{})

	summary, err := p.ProcessBusiness(context.Background(), testBusiness())
	if err != nil {
		t.Fatalf("ProcessBusiness: %v", err)
	}
	if summary.Failures != 1 {
		t.Errorf("summary = %+v", summary)
	}
	if len(repo.processed) != 0 || len(repo.failed) != 0 {
		t.Errorf("event should stay pending: processed=%v failed=%v", repo.processed, repo.failed)
	}
}

func TestEventWithoutLeadIDIsMarkedFailed(t *testing.T) {
	repo := newFakeRepo()
	repo.pending = []domain.InboxEvent{{
		ID:       "evt-8",
		Business: "phoenix-roofing",
	}}
	p := newTestProcessor(repo, &fakeGenerator{})

	summary, err := p.ProcessBusiness(context.Background(), testBusiness())
	if err != nil {
		t.Fatalf("ProcessBusiness: %v", err)
	}
	if summary.Failures != 1 {
		t.Errorf("summary = %+v", summary)
	}
	if repo.failed["evt-8"] != "missing lead_id" {
		t.Errorf("failed = %v", repo.failed)
	}
}

func TestOneBadLeadDoesNotAbortTheBatch(t *testing.T) {
	repo := newFakeRepo()
	repo.pending = []domain.InboxEvent{
		{ID: "evt-9", Business: "phoenix-roofing"}, // missing lead_id
		{ID: "evt-10", Business: "phoenix-roofing", LeadID: "lead-010", Source: strptr("referral"), Urgency: strptr("asap")},
	}
	p := newTestProcessor(repo, &fakeGenerator{})

	summary, err := p.ProcessBusiness(context.Background(), testBusiness())
	if err != nil {
		t.Fatalf("ProcessBusiness: %v", err)
	}
	if summary.Failures != 1 || summary.Processed != 1 || summary.Messages != 1 {
		t.Errorf("summary = %+v", summary)
	}
	if repo.leads["phoenix-roofing/lead-010"] == nil {
		t.Error("second lead not processed")
	}
}

func TestQuoteRequestForcesQuoteChase(t *testing.T) {
	repo := newFakeRepo()
	repo.pending = []domain.InboxEvent{{
		ID:       "evt-11",
		Business: "phoenix-roofing",
		LeadID:   "lead-011",
		Event:    domain.EventQuoteRequest,
		Source:   strptr("referral"),
		Urgency:  strptr("asap"),
	}}
	p := newTestProcessor(repo, &fakeGenerator{})

	if _, err := p.ProcessBusiness(context.Background(), testBusiness()); err != nil {
		t.Fatalf("ProcessBusiness: %v", err)
	}
	if lead := repo.leads["phoenix-roofing/lead-011"]; lead.Sequence != domain.SequenceQuoteChase {
		t.Errorf("sequence = %s, want quote_chase", lead.Sequence)
	}
}
