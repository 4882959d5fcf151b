package stores

import (
	"sync"

	"tenantreport/internal/core"
)

// StepThreeData is the exclusions step: returns/certificates and other
// excluded amounts, both subtracted from the gross turnover.
type StepThreeData struct {
	Refunds      Table[core.RefundRow] `json:"refunds"`
	OtherAmounts Table[core.AmountRow] `json:"otherAmounts"`
}

// TotalWithVAT is the VAT-inclusive exclusion total.
func (d StepThreeData) TotalWithVAT() float64 {
	return d.Refunds.WithVAT + d.OtherAmounts.WithVAT
}

// TotalVAT is the VAT component of the exclusions.
func (d StepThreeData) TotalVAT() float64 {
	return d.Refunds.VAT + d.OtherAmounts.VAT
}

// TotalWithoutVAT is the VAT-exclusive exclusion total.
func (d StepThreeData) TotalWithoutVAT() float64 {
	return d.TotalWithVAT() - d.TotalVAT()
}

// StepThree owns the exclusion tables.
type StepThree struct {
	mu   sync.RWMutex
	data StepThreeData
}

func NewStepThree() *StepThree { return &StepThree{} }

// UpdateRefunds replaces the refunds table wholesale.
func (s *StepThree) UpdateRefunds(t Table[core.RefundRow]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Refunds = copyTable(t)
}

// UpdateOtherAmounts replaces the other-exclusions table wholesale.
func (s *StepThree) UpdateOtherAmounts(t Table[core.AmountRow]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.OtherAmounts = copyTable(t)
}

// Set replaces the whole step.
func (s *StepThree) Set(d StepThreeData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = StepThreeData{
		Refunds:      copyTable(d.Refunds),
		OtherAmounts: copyTable(d.OtherAmounts),
	}
}

// Snapshot returns a deep copy of the step state.
func (s *StepThree) Snapshot() StepThreeData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StepThreeData{
		Refunds:      copyTable(s.data.Refunds),
		OtherAmounts: copyTable(s.data.OtherAmounts),
	}
}

// Reset clears the step.
func (s *StepThree) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = StepThreeData{}
}
