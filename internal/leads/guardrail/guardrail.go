// Package guardrail decides whether a lead gets a follow-up now. It
// enforces the per-sequence message cap, the minimum gap between
// messages, and the cooldown before an archived lead can be reactivated.
package guardrail

import (
	"fmt"
	"time"

	"leadflow_backend/internal/bizconfig"
	"leadflow_backend/internal/leads/domain"
)

// Action is the guardrail verdict for one pending event.
type Action string

const (
	// ActionGenerate allows a follow-up message to be produced.
	ActionGenerate Action = "generate"
	// ActionArchive retires the lead; its sequence is exhausted.
	ActionArchive Action = "archive"
	// ActionDefer leaves the lead untouched and re-queues the event
	// until RetryAt.
	ActionDefer Action = "defer"
)

// Decision is the evaluator's verdict. MessageNumber is set for
// generate; RetryAt for defer. Reactivate means the lead must move back
// to active on the reactivation sequence before generating.
type Decision struct {
	Action        Action
	Reason        string
	MessageNumber int
	RetryAt       time.Time
	Reactivate    bool
}

// Evaluate runs the guardrail rules in fixed order, short-circuiting at
// the first match. It never mutates the lead; the caller applies the
// decision.
func Evaluate(lead *domain.Lead, targets bizconfig.Targets, now time.Time) Decision {
	maxMsgs := domain.MaxMessages(lead.Sequence, targets.MaxFollowups)
	if lead.MessagesSent >= maxMsgs {
		return Decision{
			Action: ActionArchive,
			Reason: fmt.Sprintf("max followups reached (%d/%d)", lead.MessagesSent, maxMsgs),
		}
	}

	if lead.LastMessageAt != nil {
		gap := time.Duration(targets.FollowupGapHours) * time.Hour
		elapsed := now.Sub(*lead.LastMessageAt)
		if elapsed < gap {
			return Decision{
				Action:  ActionDefer,
				Reason:  fmt.Sprintf("too soon for next message (%.1fh < %dh)", elapsed.Hours(), targets.FollowupGapHours),
				RetryAt: lead.LastMessageAt.Add(gap),
			}
		}
	}

	if lead.Status == domain.StatusArchived {
		cooldown := time.Duration(targets.CooldownDays) * 24 * time.Hour
		sinceArchive := now.Sub(lead.UpdatedAt)
		if sinceArchive < cooldown {
			return Decision{
				Action:  ActionDefer,
				Reason:  fmt.Sprintf("in cooldown (%.0fd < %dd)", sinceArchive.Hours()/24, targets.CooldownDays),
				RetryAt: lead.UpdatedAt.Add(cooldown),
			}
		}
		// Past cooldown the lead restarts on the reactivation sequence.
		return Decision{
			Action:        ActionGenerate,
			Reason:        "cooldown elapsed, reactivating",
			MessageNumber: 1,
			Reactivate:    true,
		}
	}

	return Decision{
		Action:        ActionGenerate,
		Reason:        "eligible for follow-up",
		MessageNumber: lead.MessagesSent + 1,
	}
}
