package bizconfig

import "strings"

// Brand is everything message generation needs to write in the
// business's voice.
type Brand struct {
	Slug         string
	Identity     Identity
	CTA          CTA
	Voice        Voice
	Emoji        Emoji
	Consultation Consultation
	TrustSignals []string
	ProcessSteps []string
	Team         Team
}

type Identity struct {
	BusinessName    string
	Tagline         string
	Industry        string
	YearsExperience string
	Website         string
	Phone           string
	Email           string
}

type CTA struct {
	Primary      string
	PrimaryURL   string
	Secondary    string
	SecondaryURL string
}

type Voice struct {
	Tone           []string
	Spelling       string
	BannedWords    string
	PreferredWords string
}

type Emoji struct {
	Style    string
	Greeting string
	Closing  string
}

type Consultation struct {
	Type            string
	QuoteType       string
	SpecialistTitle string
	ResponseTime    string
}

type Team struct {
	Founder string
	Members []string
}

// ReadBrand parses brand.md for one business.
func (r *Reader) ReadBrand(slug string) (Brand, error) {
	lines, err := r.readDoc(slug, "brand.md")
	if err != nil {
		return Brand{}, err
	}

	brand := Brand{Slug: slug}
	currentSection := ""

	for _, line := range lines {
		if m := h2Re.FindStringSubmatch(line); m != nil {
			currentSection = strings.ToLower(strings.TrimSpace(m[1]))
			continue
		}

		setIfEmpty(&brand.Identity.BusinessName, line, "business_name")
		setIfEmpty(&brand.Identity.Tagline, line, "tagline")
		setIfEmpty(&brand.Identity.Industry, line, "industry")
		setIfEmpty(&brand.Identity.YearsExperience, line, "years_experience")
		setIfEmpty(&brand.Identity.Website, line, "website")
		setIfEmpty(&brand.Identity.Phone, line, "phone")
		setIfEmpty(&brand.Identity.Email, line, "email")

		setIfEmpty(&brand.CTA.Primary, line, "cta_primary")
		setIfEmpty(&brand.CTA.PrimaryURL, line, "cta_primary_url")
		setIfEmpty(&brand.CTA.Secondary, line, "cta_secondary")
		setIfEmpty(&brand.CTA.SecondaryURL, line, "cta_secondary_url")

		for _, label := range []string{"tone_1", "tone_2", "tone_3", "tone_4"} {
			if tone := fieldValue(line, label); tone != "" && !contains(brand.Voice.Tone, tone) {
				brand.Voice.Tone = append(brand.Voice.Tone, tone)
			}
		}
		setIfEmpty(&brand.Voice.Spelling, line, "spelling")
		setIfEmpty(&brand.Voice.BannedWords, line, "banned_words")
		setIfEmpty(&brand.Voice.PreferredWords, line, "preferred_words")

		setIfEmpty(&brand.Emoji.Style, line, "emoji_style")
		setIfEmpty(&brand.Emoji.Greeting, line, "greeting_emoji")
		setIfEmpty(&brand.Emoji.Closing, line, "closing_emoji")

		setIfEmpty(&brand.Consultation.Type, line, "consultation_type")
		setIfEmpty(&brand.Consultation.QuoteType, line, "quote_type")
		setIfEmpty(&brand.Consultation.SpecialistTitle, line, "specialist_title")
		setIfEmpty(&brand.Consultation.ResponseTime, line, "response_time")

		setIfEmpty(&brand.Team.Founder, line, "founder")
		for _, label := range []string{"team_member_1", "team_member_2", "team_member_3"} {
			if member := fieldValue(line, label); member != "" && !contains(brand.Team.Members, member) {
				brand.Team.Members = append(brand.Team.Members, member)
			}
		}

		if strings.Contains(currentSection, "trust signal") {
			if item := numberedItem(line); item != "" {
				brand.TrustSignals = append(brand.TrustSignals, item)
			}
		}
		if strings.Contains(currentSection, "process step") {
			if item := numberedItem(line); item != "" {
				brand.ProcessSteps = append(brand.ProcessSteps, item)
			}
		}
	}

	return brand, nil
}

func numberedItem(line string) string {
	m := numberedRe.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	val := strings.TrimSpace(m[1])
	if strings.HasPrefix(val, "[") {
		return ""
	}
	return val
}

func contains(items []string, v string) bool {
	for _, item := range items {
		if item == v {
			return true
		}
	}
	return false
}
