package track

// Candidate pairs a template with its selection weight.
type Candidate struct {
	Template *Template
	Weight   float64
}

// CandidatesOf wraps templates with their own configured weights.
func CandidatesOf(ts []*Template) []Candidate {
	out := make([]Candidate, 0, len(ts))
	for _, t := range ts {
		if t == nil {
			continue
		}
		out = append(out, Candidate{Template: t, Weight: t.Weight})
	}
	return out
}

// PickWeighted returns one template with probability proportional to its
// weight. Nil templates are dropped first and negative weights count as
// zero. When no weight is left the first valid candidate wins, so a
// catalogue of all-zero weights behaves deterministically. Exactly one
// value is drawn from src whenever a valid candidate exists.
func PickWeighted(cands []Candidate, src Source) (*Template, bool) {
	var first *Template
	total := 0.0
	for _, c := range cands {
		if c.Template == nil {
			continue
		}
		if first == nil {
			first = c.Template
		}
		if c.Weight > 0 {
			total += c.Weight
		}
	}
	if first == nil {
		return nil, false
	}

	roll := src.Float64()
	if total <= 0 {
		return first, true
	}

	roll *= total
	var last *Template
	for _, c := range cands {
		if c.Template == nil || c.Weight <= 0 {
			continue
		}
		if roll < c.Weight {
			return c.Template, true
		}
		roll -= c.Weight
		last = c.Template
	}
	// Float rounding can leave a sliver past the final bucket.
	return last, true
}
