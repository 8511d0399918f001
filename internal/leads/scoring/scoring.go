// Package scoring turns lead attributes and business score tables into a
// numeric score, and applies event deltas when an existing lead comes
// back with new activity.
package scoring

import (
	"strings"

	"leadflow_backend/internal/bizconfig"
	"leadflow_backend/internal/leads/domain"
)

// Location tier points. First tier with a match wins, checked in order.
const (
	tier1Points = 15
	tier2Points = 10
	tier3Points = 5
)

// urgencyScores is the fixed urgency table.
var urgencyScores = map[string]int{
	"asap":       20,
	"1-3_months": 12,
	"exploring":  3,
}

// rescoreDeltas maps follow-up events to score deltas. Unrecognized
// events score zero.
var rescoreDeltas = map[string]int{
	domain.EventReply:         15,
	domain.EventQuoteRequest:  20,
	domain.EventPhotosSent:    25,
	domain.EventMeetingBooked: 30,
	domain.EventSilent7d:      -10,
	domain.EventSilent30d:     -30,
}

// Result is a fresh classification for a new lead.
type Result struct {
	Score    int
	Tier     domain.Tier
	Sequence domain.Sequence
}

// Attributes are the scoreable fields of an inbound lead event.
type Attributes struct {
	Source          string
	ServiceInterest string
	Location        string
	Urgency         string
	Event           string
}

// Score computes a new lead's score from the business tables and derives
// its tier and sequence.
func Score(attrs Attributes, targets bizconfig.Targets, services []bizconfig.Service, locations bizconfig.Locations) Result {
	score := targets.SourceScores[attrs.Source] +
		serviceScore(attrs.ServiceInterest, targets.ServiceScores, services) +
		locationScore(attrs.Location, locations) +
		urgencyScores[attrs.Urgency]

	tier := domain.ClassifyTier(score, targets.HotThreshold, targets.WarmThreshold)

	event := attrs.Event
	if event == "" {
		event = domain.EventNewLead
	}

	return Result{
		Score:    score,
		Tier:     tier,
		Sequence: domain.SelectSequence(tier, event),
	}
}

// Rescore returns the delta for an event and the resulting score,
// clamped at zero.
func Rescore(oldScore int, event string) (delta, newScore int) {
	delta = rescoreDeltas[event]
	newScore = oldScore + delta
	if newScore < 0 {
		newScore = 0
	}
	return delta, newScore
}

// serviceScore looks up the service table by normalized slug. A zero
// entry counts as a miss and falls back to matching the catalogue's
// declared names before giving up at zero.
func serviceScore(serviceInterest string, serviceScores map[string]int, services []bizconfig.Service) int {
	if serviceInterest == "" {
		return 0
	}
	slug := bizconfig.Slugify(serviceInterest)
	if score := serviceScores[slug]; score != 0 {
		return score
	}
	for _, svc := range services {
		if svc.Slug == slug || bizconfig.Slugify(svc.Name) == slug {
			return serviceScores[svc.Slug]
		}
	}
	return 0
}

// locationScore does a bidirectional case-insensitive substring match
// against the tier lists, tier 1 first.
func locationScore(location string, locations bizconfig.Locations) int {
	if location == "" {
		return 0
	}
	loc := strings.ToLower(location)
	if matchesAny(loc, locations.Tier1) {
		return tier1Points
	}
	if matchesAny(loc, locations.Tier2) {
		return tier2Points
	}
	if matchesAny(loc, locations.Tier3) {
		return tier3Points
	}
	return 0
}

func matchesAny(loc string, areas []string) bool {
	for _, area := range areas {
		a := strings.ToLower(area)
		if strings.Contains(loc, a) || strings.Contains(a, loc) {
			return true
		}
	}
	return false
}
