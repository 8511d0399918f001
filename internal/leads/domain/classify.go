package domain

// maxSequenceMessages caps how many follow-ups each sequence may send.
// Sequences not listed fall back to the business's max_followups target.
var maxSequenceMessages = map[Sequence]int{
	SequenceImmediate:    4,
	SequenceNurture:      4,
	SequenceReactivation: 2,
	SequenceQuoteChase:   3,
}

// quoteEvents are the events that always route a lead into quote_chase.
var quoteEvents = map[string]bool{
	EventQuoteRequest: true,
	EventPostQuote:    true,
}

// ClassifyTier buckets a score against the business thresholds. Both
// thresholds are inclusive lower bounds.
func ClassifyTier(score, hotThreshold, warmThreshold int) Tier {
	switch {
	case score >= hotThreshold:
		return TierHot
	case score >= warmThreshold:
		return TierWarm
	default:
		return TierCold
	}
}

// IsQuoteEvent reports whether the event is quote-related.
func IsQuoteEvent(event string) bool {
	return quoteEvents[event]
}

// SelectSequence assigns the follow-up sequence for a freshly scored
// lead. Quote events win over tier.
func SelectSequence(tier Tier, event string) Sequence {
	switch {
	case IsQuoteEvent(event):
		return SequenceQuoteChase
	case tier == TierHot:
		return SequenceImmediate
	case tier == TierWarm:
		return SequenceNurture
	default:
		return SequenceReactivation
	}
}

// NextSequence updates an existing lead's sequence after a rescore.
// The sequence is sticky: it only moves on a quote request, or when the
// lead turns hot while not already being quote-chased.
func NextSequence(current Sequence, tier Tier, event string) Sequence {
	if event == EventQuoteRequest {
		return SequenceQuoteChase
	}
	if tier == TierHot && current != SequenceQuoteChase {
		return SequenceImmediate
	}
	return current
}

// MaxMessages returns the follow-up cap for a sequence, falling back to
// the business's configured max when the sequence has no specific cap.
func MaxMessages(sequence Sequence, maxFollowups int) int {
	if max, ok := maxSequenceMessages[sequence]; ok {
		return max
	}
	return maxFollowups
}
