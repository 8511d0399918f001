package scoring

import (
	"testing"

	"leadflow_backend/internal/bizconfig"
	"leadflow_backend/internal/leads/domain"
)

func testTargets() bizconfig.Targets {
	return bizconfig.Targets{
		HotThreshold:  60,
		WarmThreshold: 40,
		SourceScores: map[string]int{
			"referral":     20,
			"website_form": 10,
		},
		ServiceScores: map[string]int{
			"kitchen-renovation": 15,
			"bathroom":           10,
		},
	}
}

func testServices() []bizconfig.Service {
	return []bizconfig.Service{
		{Name: "Kitchen Renovation", Slug: "kitchen-renovation"},
		{Name: "Bathroom", Slug: "bathroom"},
	}
}

func testLocations() bizconfig.Locations {
	return bizconfig.Locations{
		Tier1: []string{"Richmond"},
		Tier2: []string{"Wimbledon"},
		Tier3: []string{"Croydon"},
	}
}

func TestScoreSumsAllFactors(t *testing.T) {
	result := Score(Attributes{
		Source:          "referral",
		ServiceInterest: "Kitchen Renovation",
		Location:        "Richmond",
		Urgency:         "asap",
	}, testTargets(), testServices(), testLocations())

	// 20 source + 15 service + 15 tier 1 + 20 asap
	if result.Score != 70 {
		t.Errorf("score = %d, want 70", result.Score)
	}
	if result.Tier != domain.TierHot {
		t.Errorf("tier = %s, want hot", result.Tier)
	}
	if result.Sequence != domain.SequenceImmediate {
		t.Errorf("sequence = %s, want immediate", result.Sequence)
	}
}

func TestScoreUnknownFactorsScoreZero(t *testing.T) {
	result := Score(Attributes{
		Source:          "carrier_pigeon",
		ServiceInterest: "moat digging",
		Location:        "Atlantis",
		Urgency:         "someday",
	}, testTargets(), testServices(), testLocations())

	if result.Score != 0 {
		t.Errorf("score = %d, want 0", result.Score)
	}
	if result.Tier != domain.TierCold {
		t.Errorf("tier = %s, want cold", result.Tier)
	}
	if result.Sequence != domain.SequenceReactivation {
		t.Errorf("sequence = %s, want reactivation", result.Sequence)
	}
}

func TestServiceScoreFallsBackToCatalogueName(t *testing.T) {
	targets := testTargets()
	// Table keyed by slug only; the lead says the display name with
	// different casing.
	result := Score(Attributes{ServiceInterest: "kitchen renovation"}, targets, testServices(), bizconfig.Locations{})
	if result.Score != 15 {
		t.Errorf("score = %d, want 15", result.Score)
	}

	// A name that normalizes to a catalogue name but not a table key
	// still resolves through the catalogue's slug.
	targets.ServiceScores = map[string]int{"kitchen-reno": 12}
	services := []bizconfig.Service{{Name: "Kitchen Renovation", Slug: "kitchen-reno"}}
	result = Score(Attributes{ServiceInterest: "Kitchen Renovation"}, targets, services, bizconfig.Locations{})
	if result.Score != 12 {
		t.Errorf("score via catalogue = %d, want 12", result.Score)
	}

	// A zero table entry is a miss, not a hit; the catalogue slug
	// still resolves the real score.
	targets.ServiceScores = map[string]int{"kitchen-renovation": 0, "kitchen-reno": 12}
	result = Score(Attributes{ServiceInterest: "Kitchen Renovation"}, targets, services, bizconfig.Locations{})
	if result.Score != 12 {
		t.Errorf("score with zero table entry = %d, want 12", result.Score)
	}
}

func TestLocationScoreTierOrderAndBidirectionalMatch(t *testing.T) {
	locations := bizconfig.Locations{
		Tier1: []string{"Kingston upon Thames"},
		Tier2: []string{"Kingston"},
		Tier3: []string{"London"},
	}
	tests := []struct {
		name     string
		location string
		want     int
	}{
		{"lead location contains configured area", "greater london area", 5},
		{"configured area contains lead location", "Kingston", 15},
		{"tier 1 wins over tier 2", "Kingston upon Thames", 15},
		{"tier 3 match", "South London", 5},
		{"case insensitive", "KINGSTON UPON THAMES", 15},
		{"no match", "Manchester", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := locationScore(tc.location, locations)
			if got != tc.want {
				t.Errorf("locationScore(%q) = %d, want %d", tc.location, got, tc.want)
			}
		})
	}
}

func TestRescoreDeltas(t *testing.T) {
	tests := []struct {
		event     string
		oldScore  int
		wantDelta int
		wantScore int
	}{
		{domain.EventReply, 40, 15, 55},
		{domain.EventQuoteRequest, 40, 20, 60},
		{domain.EventPhotosSent, 40, 25, 65},
		{domain.EventMeetingBooked, 40, 30, 70},
		{domain.EventSilent7d, 40, -10, 30},
		{domain.EventSilent30d, 40, -30, 10},
		{"unknown_event", 40, 0, 40},
	}
	for _, tc := range tests {
		delta, newScore := Rescore(tc.oldScore, tc.event)
		if delta != tc.wantDelta || newScore != tc.wantScore {
			t.Errorf("Rescore(%d, %s) = (%d, %d), want (%d, %d)",
				tc.oldScore, tc.event, delta, newScore, tc.wantDelta, tc.wantScore)
		}
	}
}

func TestRescoreClampsAtZero(t *testing.T) {
	delta, newScore := Rescore(10, domain.EventSilent30d)
	if delta != -30 {
		t.Errorf("delta = %d, want -30", delta)
	}
	if newScore != 0 {
		t.Errorf("newScore = %d, want 0 (clamped)", newScore)
	}
}
