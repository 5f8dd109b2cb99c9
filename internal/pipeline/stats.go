package pipeline

// Stats accumulates batch results. It is an explicit accumulator passed
// through the batch loop rather than ambient shared state.
type Stats struct {
	Total       int
	Succeeded   int
	Failed      int
	OutputBytes int64
	Outcomes    []Outcome
}

// Record folds one job outcome into the tally.
func (s *Stats) Record(o Outcome) {
	s.Total++
	if o.Succeeded() {
		s.Succeeded++
		s.OutputBytes += o.OutputSize
	} else {
		s.Failed++
	}
	s.Outcomes = append(s.Outcomes, o)
}
