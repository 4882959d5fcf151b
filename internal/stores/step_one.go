package stores

import (
	"sync"
	"time"
)

// StepOneData is the first wizard step: reporting period and the scalar
// counters entered alongside it. A nil Period means the tenant has not picked
// a range yet; assembly then defaults the dates to "now".
type StepOneData struct {
	Period        *Period `json:"period"`
	VisitorsCount int     `json:"visitors_count"`
	ReceiptsCount int     `json:"receipts_count"`
}

// StepOne owns the first step's state.
type StepOne struct {
	mu   sync.RWMutex
	data StepOneData
}

func NewStepOne() *StepOne { return &StepOne{} }

// Set replaces the whole step state.
func (s *StepOne) Set(d StepOneData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.Period != nil {
		p := *d.Period
		d.Period = &p
	}
	s.data = d
}

// SetPeriod records the chosen date range.
func (s *StepOne) SetPeriod(start, end time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Period = &Period{Start: start, End: end}
}

// SetCounts records the visitor and receipt counters.
func (s *StepOne) SetCounts(visitors, receipts int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.VisitorsCount = visitors
	s.data.ReceiptsCount = receipts
}

// Snapshot returns a copy of the step state.
func (s *StepOne) Snapshot() StepOneData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d := s.data
	if d.Period != nil {
		p := *d.Period
		d.Period = &p
	}
	return d
}

// Reset clears the step.
func (s *StepOne) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = StepOneData{}
}
