package testutil

import "testing"

// Scenario runs Given/When/Then steps as subtests in order. Once a step
// fails the remaining steps are skipped, since each builds on the last.
type Scenario struct {
	t      *testing.T
	broken bool
}

func NewScenario(t *testing.T) *Scenario {
	return &Scenario{t: t}
}

func (s *Scenario) Given(desc string, fn func(t *testing.T)) *Scenario {
	return s.step("Given", desc, fn)
}

func (s *Scenario) When(desc string, fn func(t *testing.T)) *Scenario {
	return s.step("When", desc, fn)
}

func (s *Scenario) Then(desc string, fn func(t *testing.T)) *Scenario {
	return s.step("Then", desc, fn)
}

func (s *Scenario) And(desc string, fn func(t *testing.T)) *Scenario {
	return s.step("And", desc, fn)
}

func (s *Scenario) step(keyword, desc string, fn func(t *testing.T)) *Scenario {
	s.t.Helper()
	name := keyword + " " + desc
	if s.broken {
		s.t.Run(name, func(t *testing.T) { t.Skip("earlier step failed") })
		return s
	}
	if !s.t.Run(name, fn) {
		s.broken = true
	}
	return s
}
