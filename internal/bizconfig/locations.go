package bizconfig

import (
	"regexp"
	"strings"
)

// Locations holds the service-area tier lists used for lead scoring.
// Tier 1 is the core area, tier 3 the fringe.
type Locations struct {
	Tier1 []string
	Tier2 []string
	Tier3 []string
}

var locationItemRe = regexp.MustCompile(`^-\s+(.+)$`)

// ReadLocations parses locations.md.
func (r *Reader) ReadLocations(slug string) (Locations, error) {
	lines, err := r.readDoc(slug, "locations.md")
	if err != nil {
		return Locations{}, err
	}

	var locations Locations
	var currentTier *[]string

	for _, line := range lines {
		if m := h2Re.FindStringSubmatch(line); m != nil {
			section := strings.ToLower(strings.TrimSpace(m[1]))
			switch {
			case strings.Contains(section, "tier 1"):
				currentTier = &locations.Tier1
			case strings.Contains(section, "tier 2"):
				currentTier = &locations.Tier2
			case strings.Contains(section, "tier 3"):
				currentTier = &locations.Tier3
			default:
				currentTier = nil
			}
			continue
		}
		if currentTier == nil {
			continue
		}

		if m := locationItemRe.FindStringSubmatch(line); m != nil {
			val := strings.TrimSpace(m[1])
			if !strings.HasPrefix(val, "[") {
				*currentTier = append(*currentTier, val)
			}
		}
	}

	return locations, nil
}
