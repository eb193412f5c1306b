package anodize

import "time"

// StepStatistics summarizes one completed step.
type StepStatistics struct {
	// Step is the number of completed steps, starting at 1.
	Step int
	// Elapsed is the wall time since the run started.
	Elapsed time.Duration
	// Duration is the wall time spent on this step.
	Duration time.Duration
	Counts   Counts

	// Interactions counts pairs handed to the rule engine.
	Interactions int
	// Skipped counts partner picks that fell outside the closed z range.
	Skipped int
	// Conflicts counts fired interactions dropped because one of their cells
	// was already written earlier in the step.
	Conflicts int
	// Fired counts applied interactions per rule.
	Fired [NumRules]int
}

// Applied returns the number of interactions committed to the lattice.
func (s StepStatistics) Applied() int {
	n := 0
	for r, v := range s.Fired {
		if Rule(r) != RuleNone {
			n += v
		}
	}
	return n
}

// Observer receives every completed step.
type Observer interface {
	ObserveStep(StepStatistics)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(StepStatistics)

// ObserveStep calls f.
func (f ObserverFunc) ObserveStep(s StepStatistics) { f(s) }

type tally struct {
	interactions int
	skipped      int
	conflicts    int
	fired        [NumRules]int
}

func (t *tally) add(o tally) {
	t.interactions += o.interactions
	t.skipped += o.skipped
	t.conflicts += o.conflicts
	for i, v := range o.fired {
		t.fired[i] += v
	}
}
