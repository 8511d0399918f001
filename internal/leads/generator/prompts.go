package generator

import (
	"fmt"
	"strings"

	"leadflow_backend/internal/bizconfig"
	"leadflow_backend/internal/leads/domain"
)

// buildSystemPrompt assembles the business context and hard guardrails
// the model writes under.
func buildSystemPrompt(brand bizconfig.Brand, services []bizconfig.Service, audiences []bizconfig.Audience) string {
	var b strings.Builder

	name := brand.Identity.BusinessName
	if name == "" {
		name = "the business"
	}

	fmt.Fprintf(&b, "You are a lead follow-up specialist for %s.\n\n", name)
	b.WriteString("## Your Role\n")
	b.WriteString("Generate personalised follow-up messages for leads. Each message must feel hand-written, specific to the lead's situation, and match the business voice.\n\n")

	b.WriteString("## Business Identity\n")
	fmt.Fprintf(&b, "- Name: %s\n", orNA(brand.Identity.BusinessName))
	fmt.Fprintf(&b, "- Industry: %s\n", orNA(brand.Identity.Industry))
	fmt.Fprintf(&b, "- Tagline: %s\n", orNA(brand.Identity.Tagline))
	fmt.Fprintf(&b, "- Experience: %s\n", orNA(brand.Identity.YearsExperience))
	fmt.Fprintf(&b, "- Phone: %s\n", orNA(brand.Identity.Phone))
	fmt.Fprintf(&b, "- Website: %s\n\n", orNA(brand.Identity.Website))

	b.WriteString("## Voice & Tone\n")
	if len(brand.Voice.Tone) > 0 {
		for _, tone := range brand.Voice.Tone {
			fmt.Fprintf(&b, "- %s\n", tone)
		}
	} else {
		b.WriteString("- Professional and approachable\n")
	}
	fmt.Fprintf(&b, "- Spelling: %s\n", orDefault(brand.Voice.Spelling, "British English"))
	if brand.Voice.BannedWords != "" {
		fmt.Fprintf(&b, "- BANNED words: %s\n", brand.Voice.BannedWords)
	}
	if brand.Voice.PreferredWords != "" {
		fmt.Fprintf(&b, "- Preferred words: %s\n", brand.Voice.PreferredWords)
	}
	b.WriteString("\n")

	b.WriteString("## Emoji Style\n")
	fmt.Fprintf(&b, "- Style: %s\n", orDefault(brand.Emoji.Style, "moderate"))
	fmt.Fprintf(&b, "- Greeting: %s\n", orDefault(brand.Emoji.Greeting, "👋"))
	fmt.Fprintf(&b, "- Closing: %s\n\n", orDefault(brand.Emoji.Closing, "🙏"))

	b.WriteString("## CTA\n")
	fmt.Fprintf(&b, "- Primary: %s\n", orDefault(brand.CTA.Primary, "Get in touch"))
	fmt.Fprintf(&b, "- Secondary: %s\n\n", orDefault(brand.CTA.Secondary, "Visit website"))

	b.WriteString("## Trust Signals\n")
	if len(brand.TrustSignals) > 0 {
		for i, signal := range brand.TrustSignals {
			fmt.Fprintf(&b, "%d. %s\n", i+1, signal)
		}
	} else {
		b.WriteString("(none configured)\n")
	}
	b.WriteString("\n")

	b.WriteString("## Services\n")
	for _, svc := range services {
		fmt.Fprintf(&b, "- %s: %s | %s | Timeline: %s\n",
			svc.Name,
			orDefault(svc.Description, svc.Slug),
			orDefault(svc.PriceRange, "price TBD"),
			orDefault(svc.Timeline, "TBD"))
	}
	b.WriteString("\n")

	b.WriteString("## Audiences\n")
	for _, aud := range audiences {
		fmt.Fprintf(&b, "%s:\n  Pain points:\n", aud.Name)
		if len(aud.PainPoints) > 0 {
			for _, pain := range aud.PainPoints {
				fmt.Fprintf(&b, "  - %s\n", pain)
			}
		} else {
			b.WriteString("  (none listed)\n")
		}
	}
	b.WriteString("\n")

	b.WriteString("## Consultation\n")
	fmt.Fprintf(&b, "- Type: %s\n", orDefault(brand.Consultation.Type, "consultation"))
	fmt.Fprintf(&b, "- Quote type: %s\n", orDefault(brand.Consultation.QuoteType, "quote"))
	fmt.Fprintf(&b, "- Specialist: %s\n", orDefault(brand.Consultation.SpecialistTitle, "team member"))
	fmt.Fprintf(&b, "- Response time: %s\n\n", orDefault(brand.Consultation.ResponseTime, "within 24 hours"))

	b.WriteString("## Process Steps\n")
	if len(brand.ProcessSteps) > 0 {
		for i, step := range brand.ProcessSteps {
			fmt.Fprintf(&b, "%d. %s\n", i+1, step)
		}
	} else {
		b.WriteString("(none configured)\n")
	}
	b.WriteString("\n")

	b.WriteString("## Team\n")
	founder := brand.Team.Founder
	if founder == "" {
		founder = orDefault(brand.Identity.BusinessName, "the team")
	}
	fmt.Fprintf(&b, "- Founder: %s\n", founder)
	for _, member := range brand.Team.Members {
		fmt.Fprintf(&b, "- %s\n", member)
	}
	b.WriteString("\n")

	b.WriteString(`## GUARDRAILS — STRICT
1. NEVER fabricate testimonials, reviews, or case studies
2. NEVER commit to specific pricing or timelines — offer to discuss
3. NEVER pretend to be a human — identify as the business, not an individual (unless using a team member name)
4. NEVER use competitor names
5. Keep WhatsApp messages under 300 words
6. Keep email messages under 500 words
7. Always include a clear but non-pushy CTA
8. Match the emoji style setting — do not over-use emojis`)

	return b.String()
}

// buildUserPrompt frames one lead, its sequence stage, and the playbook.
func buildUserPrompt(lead *domain.Lead, priorMessages []domain.Message, sequence domain.Sequence, messageNumber int, playbook string) string {
	var b strings.Builder

	channel := orDefault(lead.Channel, "whatsapp")

	b.WriteString("Generate a follow-up message for this lead.\n\n")
	b.WriteString("## Lead Context\n")
	fmt.Fprintf(&b, "- Name: %s\n", orDefault(deref(lead.Name), "there"))
	fmt.Fprintf(&b, "- Service interest: %s\n", orDefault(deref(lead.ServiceInterest), "general enquiry"))
	fmt.Fprintf(&b, "- Location: %s\n", orDefault(deref(lead.Location), "not specified"))
	fmt.Fprintf(&b, "- Source: %s\n", orDefault(deref(lead.Source), "unknown"))
	fmt.Fprintf(&b, "- Channel: %s\n", channel)
	fmt.Fprintf(&b, "- Urgency: %s\n", orDefault(deref(lead.Urgency), "exploring"))
	fmt.Fprintf(&b, "- Score: %d (%s)\n", lead.Score, lead.Tier)
	fmt.Fprintf(&b, "- Original message: %q\n", orDefault(deref(lead.Message), "No message provided"))

	if len(priorMessages) > 0 {
		b.WriteString("\nPrior messages sent:\n")
		for i, m := range priorMessages {
			text := m.MessageText
			if len(text) > 100 {
				text = text[:100]
			}
			fmt.Fprintf(&b, "  %d. [%s #%d] %s...\n", i+1, m.Sequence, m.MessageNumber, text)
		}
	}

	b.WriteString("\n## Sequence & Stage\n")
	fmt.Fprintf(&b, "- Sequence: %s\n", sequence)
	fmt.Fprintf(&b, "- Message number: %d\n\n", messageNumber)

	b.WriteString("## Playbook Reference\n")
	b.WriteString(playbook)
	b.WriteString("\n\n## Instructions\n")
	fmt.Fprintf(&b, "1. Write a message for %s sequence, message #%d\n", sequence, messageNumber)
	b.WriteString("2. Personalise using the lead's name, service interest, and location\n")
	b.WriteString("3. Match the business voice and tone exactly\n")
	b.WriteString("4. Use the playbook templates as guidance but make it feel natural and personal\n")
	b.WriteString("5. For WhatsApp/DM: keep it conversational, under 300 words\n")
	b.WriteString("6. For email: include a subject line, keep body under 500 words\n")
	b.WriteString("7. Return ONLY valid JSON in this exact schema:\n\n")
	fmt.Fprintf(&b, `{
  "message_text": "The complete message ready to send",
  "subject_line": "Email subject line or null for WhatsApp/DM",
  "channel": %q,
  "tone": "warm|professional|casual",
  "variables_used": ["name", "service", "location"],
  "sequence": %q,
  "message_number": %d
}`, channel, sequence, messageNumber)

	return b.String()
}

func orNA(v string) string {
	return orDefault(v, "N/A")
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
