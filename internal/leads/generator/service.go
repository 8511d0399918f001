// Package generator produces personalised follow-up messages for leads
// by prompting an Anthropic model with the business voice, the lead's
// context, and the follow-up playbook.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"leadflow_backend/internal/bizconfig"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/ai/anthropic"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"
)

// Options tune the generation call.
type Options struct {
	Model         string
	MaxTokens     int64
	RatePerMinute int
	PlaybookPath  string
}

// Service generates follow-up messages. The Anthropic client is
// injected so tests can substitute a fake.
type Service struct {
	client  anthropic.Client
	log     *logger.Logger
	opts    Options
	limiter *rate.Limiter

	mu       sync.Mutex
	playbook string
}

func NewService(client anthropic.Client, log *logger.Logger, opts Options) *Service {
	if opts.Model == "" {
		opts.Model = "claude-sonnet-4-5"
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 2048
	}
	if opts.RatePerMinute <= 0 {
		opts.RatePerMinute = 20
	}

	return &Service{
		client:  client,
		log:     log,
		opts:    opts,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RatePerMinute)), 1),
	}
}

// generatedPayload is the JSON schema the model is instructed to return.
type generatedPayload struct {
	MessageText   string   `json:"message_text"`
	SubjectLine   *string  `json:"subject_line"`
	Channel       string   `json:"channel"`
	Tone          string   `json:"tone"`
	VariablesUsed []string `json:"variables_used"`
}

// Generate produces one follow-up message for a lead at the given
// sequence stage. Collaborator failures come back as Unavailable so the
// orchestrator leaves the event for retry.
func (s *Service) Generate(
	ctx context.Context,
	lead *domain.Lead,
	priorMessages []domain.Message,
	sequence domain.Sequence,
	messageNumber int,
	biz *bizconfig.Business,
) (*domain.Message, error) {
	// A missing playbook is retryable: the inbox events must stay
	// pending until the file is restored, not be marked failed.
	playbook, err := s.loadPlaybook()
	if err != nil {
		return nil, apperr.Unavailable("follow-up playbook unavailable", err)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, apperr.Unavailable("generation rate limit wait interrupted", err)
	}

	systemPrompt := buildSystemPrompt(biz.Brand, biz.Services, biz.Audiences)
	userPrompt := buildUserPrompt(lead, priorMessages, sequence, messageNumber, playbook)

	s.log.Info("generating follow-up",
		"business", lead.Business,
		"lead_id", lead.ID,
		"sequence", sequence,
		"message_number", messageNumber,
		"model", s.opts.Model,
	)

	resp, err := s.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     s.opts.Model,
		MaxTokens: s.opts.MaxTokens,
		System:    systemPrompt,
		Messages:  []anthropic.Message{{Role: "user", Content: userPrompt}},
	})
	if err != nil {
		return nil, apperr.Unavailable("message generation call failed", err)
	}

	payload, err := parsePayload(resp.Text)
	if err != nil {
		s.log.Error("generation response was not valid JSON",
			"business", lead.Business,
			"lead_id", lead.ID,
			"raw", truncate(resp.Text, 500),
		)
		return nil, apperr.Unavailable("message generation returned unparsable output", err)
	}

	channel := payload.Channel
	if channel == "" {
		channel = orDefault(lead.Channel, "whatsapp")
	}

	msg := &domain.Message{
		Business:      lead.Business,
		LeadID:        lead.ID,
		Sequence:      sequence,
		MessageNumber: messageNumber,
		Channel:       channel,
		MessageText:   payload.MessageText,
		SubjectLine:   payload.SubjectLine,
		Tone:          payload.Tone,
		VariablesUsed: payload.VariablesUsed,
		Model:         s.opts.Model,
		Status:        domain.MessageStatusPendingSend,
		GeneratedAt:   time.Now().UTC(),
	}
	if msg.VariablesUsed == nil {
		msg.VariablesUsed = []string{}
	}

	s.log.Info("follow-up generated",
		"business", lead.Business,
		"lead_id", lead.ID,
		"output_tokens", resp.Usage.OutputTokens,
	)

	return msg, nil
}

// loadPlaybook reads and caches the follow-up sequences playbook.
func (s *Service) loadPlaybook() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.playbook != "" {
		return s.playbook, nil
	}
	content, err := os.ReadFile(s.opts.PlaybookPath)
	if err != nil {
		return "", fmt.Errorf("read playbook %s: %w", s.opts.PlaybookPath, err)
	}
	s.playbook = string(content)
	return s.playbook, nil
}

var (
	fenceOpenRe  = regexp.MustCompile("(?i)^```json?\n?")
	fenceCloseRe = regexp.MustCompile("(?i)\n?```\\s*$")
)

// parsePayload strips an optional markdown code fence and decodes the
// model's JSON.
func parsePayload(text string) (*generatedPayload, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = fenceOpenRe.ReplaceAllString(cleaned, "")
	cleaned = fenceCloseRe.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	var payload generatedPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("parse generation response: %w", err)
	}
	if payload.MessageText == "" {
		return nil, fmt.Errorf("generation response missing message_text")
	}
	return &payload, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
