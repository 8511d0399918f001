package bizconfig

import "strings"

// Targets holds the lead-management knobs for one business: follow-up
// limits, tier thresholds, escalation routing, and the source/service
// score tables.
type Targets struct {
	MaxFollowups      int
	FollowupGapHours  int
	CooldownDays      int
	HotThreshold      int
	WarmThreshold     int
	EscalationChannel string
	EscalationContact string
	SourceScores      map[string]int
	ServiceScores     map[string]int
}

// sourceNameMap maps the human-readable source names used in targets.md
// tables to the canonical source values carried on inbound leads.
var sourceNameMap = map[string]string{
	"referral":                     "referral",
	"organic inbound (whatsapp/dm)": "organic_inbound",
	"organic inbound":              "organic_inbound",
	"paid ad click → cta":          "paid_ad",
	"paid ad click -> cta":         "paid_ad",
	"paid ad":                      "paid_ad",
	"social dm (organic)":          "social_dm",
	"social dm":                    "social_dm",
	"ad → form fill":               "paid_ad",
	"ad -> form fill":              "paid_ad",
	"website form":                 "website_form",
	"cold outreach reply":          "cold_outreach",
	"cold outreach":                "cold_outreach",
	"scraped listing":              "scraped",
	"scraped":                      "scraped",
}

// ReadTargets parses targets.md. Missing scalar fields fall back to
// engine defaults so a sparse document still yields a usable config.
func (r *Reader) ReadTargets(slug string) (Targets, error) {
	lines, err := r.readDoc(slug, "targets.md")
	if err != nil {
		return Targets{}, err
	}

	targets := Targets{
		MaxFollowups:     4,
		FollowupGapHours: 24,
		CooldownDays:     90,
		HotThreshold:     80,
		WarmThreshold:    50,
		SourceScores:     make(map[string]int),
		ServiceScores:    make(map[string]int),
	}

	currentSection := ""
	inTable := false

	for _, line := range lines {
		if m := h2Re.FindStringSubmatch(line); m != nil {
			currentSection = strings.ToLower(strings.TrimSpace(m[1]))
			inTable = false
			continue
		}

		if set, err := setIntField(&targets.MaxFollowups, line, "max_followups"); err != nil {
			return Targets{}, err
		} else if set {
			continue
		}
		if set, err := setIntField(&targets.FollowupGapHours, line, "followup_gap_hours"); err != nil {
			return Targets{}, err
		} else if set {
			continue
		}
		if set, err := setIntField(&targets.CooldownDays, line, "cooldown_days"); err != nil {
			return Targets{}, err
		} else if set {
			continue
		}
		if set, err := setIntField(&targets.HotThreshold, line, "hot_threshold"); err != nil {
			return Targets{}, err
		} else if set {
			continue
		}
		if set, err := setIntField(&targets.WarmThreshold, line, "warm_threshold"); err != nil {
			return Targets{}, err
		} else if set {
			continue
		}

		setIfEmpty(&targets.EscalationChannel, line, "escalation_channel")
		setIfEmpty(&targets.EscalationContact, line, "escalation_contact")

		if strings.Contains(currentSection, "source scores") {
			if tableSepRe.MatchString(line) {
				inTable = true
				continue
			}
			if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "| source") {
				continue
			}
			if m := scoreRowRe.FindStringSubmatch(line); m != nil && inTable {
				name := strings.ToLower(strings.TrimSpace(m[1]))
				key, ok := sourceNameMap[name]
				if !ok {
					key = strings.ReplaceAll(name, " ", "_")
				}
				targets.SourceScores[key] = mustAtoi(m[2])
			}
		}

		if strings.Contains(currentSection, "service scores") {
			if tableSepRe.MatchString(line) {
				inTable = true
				continue
			}
			if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "| service") {
				continue
			}
			if m := scoreRowRe.FindStringSubmatch(line); m != nil && inTable {
				name := strings.TrimSpace(m[1])
				if strings.HasPrefix(name, "[") {
					continue
				}
				targets.ServiceScores[Slugify(name)] = mustAtoi(m[2])
			}
		}
	}

	return targets, nil
}
