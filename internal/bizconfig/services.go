package bizconfig

import (
	"regexp"
	"strings"
)

// Service is one entry from the business's service catalogue.
type Service struct {
	Name        string
	Slug        string
	Description string
	PriceRange  string
	Timeline    string
	Includes    string
	IdealFor    string
}

var serviceHeaderRe = regexp.MustCompile(`(?i)^##\s+Service\s+\d+:\s*(.+)$`)

// ReadServices parses services.md. Entries without a filled-in name and
// slug are dropped, so a half-edited template does not leak into scoring.
func (r *Reader) ReadServices(slug string) ([]Service, error) {
	lines, err := r.readDoc(slug, "services.md")
	if err != nil {
		return nil, err
	}

	var services []Service
	var current *Service

	flush := func() {
		if current != nil && current.Name != "" && !strings.HasPrefix(current.Name, "[") && current.Slug != "" {
			services = append(services, *current)
		}
		current = nil
	}

	for _, line := range lines {
		if m := serviceHeaderRe.FindStringSubmatch(line); m != nil {
			flush()
			name := strings.TrimSpace(m[1])
			name = strings.TrimSuffix(strings.TrimPrefix(name, "["), "]")
			current = &Service{Name: name}
			continue
		}
		if current == nil {
			continue
		}

		setIfEmpty(&current.Slug, line, "slug")
		setIfEmpty(&current.Description, line, "description")
		setIfEmpty(&current.PriceRange, line, "price_range")
		setIfEmpty(&current.Timeline, line, "timeline")
		setIfEmpty(&current.Includes, line, "includes")
		setIfEmpty(&current.IdealFor, line, "ideal_for")
	}

	flush()
	return services, nil
}
