package bizconfig

import (
	"regexp"
	"strings"
)

// Audience is one target segment from audiences.md.
type Audience struct {
	Name           string
	Profile        string
	Locations      string
	BudgetRange    string
	PainPoints     []string
	TriggerMoments []string
	ContentAngle   string
	Platforms      string
}

var (
	audienceHeaderRe = regexp.MustCompile(`(?i)^##\s+Audience\s+\d+:\s*(.+)$`)
	subListItemRe    = regexp.MustCompile(`^\s+-\s+(.+)$`)
)

// ReadAudiences parses audiences.md. Pain points and trigger moments are
// indented sub-lists under a bare field label.
func (r *Reader) ReadAudiences(slug string) ([]Audience, error) {
	lines, err := r.readDoc(slug, "audiences.md")
	if err != nil {
		return nil, err
	}

	var audiences []Audience
	var current *Audience
	listField := ""

	flush := func() {
		if current != nil && current.Name != "" && !strings.HasPrefix(current.Name, "[") {
			audiences = append(audiences, *current)
		}
		current = nil
	}

	for _, line := range lines {
		if m := audienceHeaderRe.FindStringSubmatch(line); m != nil {
			flush()
			name := strings.TrimSpace(m[1])
			name = strings.TrimSuffix(strings.TrimPrefix(name, "["), "]")
			current = &Audience{Name: name}
			listField = ""
			continue
		}
		// Any other h2 ends the audience section.
		if h2Re.MatchString(line) {
			flush()
			listField = ""
			continue
		}
		if current == nil {
			continue
		}

		if isListFieldLabel(line, "pain_points") {
			listField = "pain_points"
			continue
		}
		if isListFieldLabel(line, "trigger_moments") {
			listField = "trigger_moments"
			continue
		}

		if listField != "" {
			if m := subListItemRe.FindStringSubmatch(line); m != nil {
				val := strings.TrimSpace(m[1])
				if !strings.HasPrefix(val, "[") {
					if listField == "pain_points" {
						current.PainPoints = append(current.PainPoints, val)
					} else {
						current.TriggerMoments = append(current.TriggerMoments, val)
					}
				}
				continue
			}
		}

		for _, f := range []struct {
			label string
			dst   *string
		}{
			{"profile", &current.Profile},
			{"locations", &current.Locations},
			{"budget_range", &current.BudgetRange},
			{"content_angle", &current.ContentAngle},
			{"platforms", &current.Platforms},
		} {
			if v := fieldValue(line, f.label); v != "" {
				*f.dst = v
				listField = ""
				break
			}
		}
	}

	flush()
	return audiences, nil
}
