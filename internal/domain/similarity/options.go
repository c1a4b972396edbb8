package similarity

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithWeights overrides field weights by name. Unknown names are ignored;
// a weight of 0 disables the field.
func WithWeights(weights map[string]int) Option {
	return func(s *Scorer) {
		for i := range s.fields {
			if w, ok := weights[s.fields[i].name]; ok && w >= 0 {
				s.fields[i].weight = w
			}
		}
	}
}

// WithSalaryTolerance sets the relative difference accepted for salary fields.
func WithSalaryTolerance(tolerance float64) Option {
	return func(s *Scorer) {
		if tolerance >= 0 && tolerance < 1 {
			s.salaryTolerance = tolerance
		}
	}
}

// WithFuzzyThreshold sets the edit-distance similarity a fuzzy field must exceed.
func WithFuzzyThreshold(threshold float64) Option {
	return func(s *Scorer) {
		if threshold > 0 && threshold <= 1 {
			s.fuzzyThreshold = threshold
		}
	}
}
