package ml

// recRule is one recommendation candidate: a predicate over the current race
// state and the note to emit when it holds.
type recRule struct {
	When bool
	Text string
}

// firstMatches collects the notes of matching rules in declaration order, up
// to limit, falling back to a single default when nothing fires.
func firstMatches(rules []recRule, limit int, fallback string) []string {
	out := make([]string, 0, limit)
	for _, r := range rules {
		if !r.When {
			continue
		}
		out = append(out, r.Text)
		if len(out) == limit {
			return out
		}
	}
	if len(out) == 0 && fallback != "" {
		out = append(out, fallback)
	}
	return out
}
