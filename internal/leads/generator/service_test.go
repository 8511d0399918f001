package generator

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"leadflow_backend/internal/bizconfig"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/ai/anthropic"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"
)

type fakeClient struct {
	response string
	err      error
	lastReq  anthropic.MessageRequest
}

func (f *fakeClient) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &anthropic.MessageResponse{Text: f.response}, nil
}

func strptr(s string) *string { return &s }

func testBusiness() *bizconfig.Business {
	return &bizconfig.Business{
		Slug: "phoenix-roofing",
		Brand: bizconfig.Brand{
			Slug:     "phoenix-roofing",
			Identity: bizconfig.Identity{BusinessName: "Phoenix Roofing", Industry: "Roofing"},
			Voice:    bizconfig.Voice{Tone: []string{"Friendly"}},
		},
		Services: []bizconfig.Service{
			{Name: "Roof Replacement", Slug: "roof-replacement", PriceRange: "£5k-£15k"},
		},
		Audiences: []bizconfig.Audience{
			{Name: "Older Homeowners", PainPoints: []string{"Leaks after storms"}},
		},
	}
}

func testLead() *domain.Lead {
	return &domain.Lead{
		ID:              "lead-001",
		Business:        "phoenix-roofing",
		Name:            strptr("Sarah"),
		Channel:         "whatsapp",
		ServiceInterest: strptr("Roof Replacement"),
		Location:        strptr("Richmond"),
		Score:           70,
		Tier:            domain.TierHot,
	}
}

func newTestService(t *testing.T, client anthropic.Client) *Service {
	t.Helper()
	playbook := filepath.Join(t.TempDir(), "follow-up-sequences.md")
	if err := os.WriteFile(playbook, []byte("# Follow-up Sequences\n\nBe helpful."), 0o644); err != nil {
		t.Fatalf("write playbook: %v", err)
	}
	return NewService(client, logger.New("development"), Options{
		Model:         "test-model",
		RatePerMinute: 6000,
		PlaybookPath:  playbook,
	})
}

func TestGenerateParsesModelJSON(t *testing.T) {
	client := &fakeClient{response: `{
		"message_text": "Hi Sarah, following up on your roof.",
		"subject_line": null,
		"channel": "whatsapp",
		"tone": "warm",
		"variables_used": ["name", "service"]
	}`}
	svc := newTestService(t, client)

	msg, err := svc.Generate(context.Background(), testLead(), nil, domain.SequenceImmediate, 1, testBusiness())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if msg.MessageText != "Hi Sarah, following up on your roof." {
		t.Errorf("message text = %q", msg.MessageText)
	}
	if msg.Sequence != domain.SequenceImmediate || msg.MessageNumber != 1 {
		t.Errorf("stage = %s #%d", msg.Sequence, msg.MessageNumber)
	}
	if msg.Status != domain.MessageStatusPendingSend {
		t.Errorf("status = %q, want pending_send", msg.Status)
	}
	if msg.Model != "test-model" {
		t.Errorf("model = %q", msg.Model)
	}
	if msg.Business != "phoenix-roofing" || msg.LeadID != "lead-001" {
		t.Errorf("identity = %s/%s", msg.Business, msg.LeadID)
	}
}

func TestGenerateStripsCodeFence(t *testing.T) {
	client := &fakeClient{response: "```json\n{\"message_text\": \"Hello there\", \"channel\": \"whatsapp\"}\n```"}
	svc := newTestService(t, client)

	msg, err := svc.Generate(context.Background(), testLead(), nil, domain.SequenceNurture, 2, testBusiness())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if msg.MessageText != "Hello there" {
		t.Errorf("message text = %q", msg.MessageText)
	}
	if msg.VariablesUsed == nil || len(msg.VariablesUsed) != 0 {
		t.Errorf("variables used = %#v, want empty slice", msg.VariablesUsed)
	}
}

func TestGenerateMissingPlaybookIsUnavailable(t *testing.T) {
	client := &fakeClient{response: `{"message_text": "Hi"}`}
	svc := NewService(client, logger.New("development"), Options{
		Model:         "test-model",
		RatePerMinute: 6000,
		PlaybookPath:  filepath.Join(t.TempDir(), "missing.md"),
	})

	_, err := svc.Generate(context.Background(), testLead(), nil, domain.SequenceImmediate, 1, testBusiness())
	if err == nil {
		t.Fatal("expected error")
	}
	// Unavailable keeps the triggering inbox event pending so the run
	// after the playbook is restored picks it back up.
	if apperr.GetKind(err) != apperr.KindUnavailable {
		t.Errorf("kind = %v, want unavailable", apperr.GetKind(err))
	}
	if client.lastReq.Model != "" {
		t.Error("model should not be called without a playbook")
	}
}

func TestGenerateUnparsableOutputIsUnavailable(t *testing.T) {
	client := &fakeClient{response: "Sorry, I can't do JSON today."}
	svc := newTestService(t, client)

	_, err := svc.Generate(context.Background(), testLead(), nil, domain.SequenceImmediate, 1, testBusiness())
	if err == nil {
		t.Fatal("expected error")
	}
	if apperr.GetKind(err) != apperr.KindUnavailable {
		t.Errorf("kind = %v, want unavailable", apperr.GetKind(err))
	}
}

func TestGenerateDefaultsChannelFromLead(t *testing.T) {
	client := &fakeClient{response: `{"message_text": "Hi"}`}
	svc := newTestService(t, client)

	lead := testLead()
	lead.Channel = "email"
	msg, err := svc.Generate(context.Background(), lead, nil, domain.SequenceImmediate, 1, testBusiness())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if msg.Channel != "email" {
		t.Errorf("channel = %q, want email", msg.Channel)
	}
}

func TestPromptsCarryLeadAndBusinessContext(t *testing.T) {
	client := &fakeClient{response: `{"message_text": "Hi"}`}
	svc := newTestService(t, client)

	prior := []domain.Message{
		{Sequence: domain.SequenceImmediate, MessageNumber: 1, MessageText: "First touch message"},
	}
	if _, err := svc.Generate(context.Background(), testLead(), prior, domain.SequenceImmediate, 2, testBusiness()); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	system := client.lastReq.System
	for _, want := range []string{"Phoenix Roofing", "Roof Replacement", "Older Homeowners", "GUARDRAILS"} {
		if !strings.Contains(system, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}

	if len(client.lastReq.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(client.lastReq.Messages))
	}
	user := client.lastReq.Messages[0].Content
	for _, want := range []string{"Sarah", "Richmond", "Message number: 2", "First touch message", "Follow-up Sequences"} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q", want)
		}
	}
}

func TestParsePayloadRequiresMessageText(t *testing.T) {
	if _, err := parsePayload(`{"channel": "whatsapp"}`); err == nil {
		t.Error("expected error for missing message_text")
	}
}
