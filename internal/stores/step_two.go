package stores

import (
	"sync"

	"tenantreport/internal/core"
)

// StepTwoData is the turnover step: the four positive tables.
type StepTwoData struct {
	Kkt      Table[core.KktRow]    `json:"kkt"`
	CashKkt  Table[core.CashRow]   `json:"cashKkt"`
	NonCash  Table[core.AmountRow] `json:"nonCash"`
	OtherSum Table[core.AmountRow] `json:"otherSum"`
}

// TotalWithVAT is the gross VAT-inclusive turnover across the four tables.
func (d StepTwoData) TotalWithVAT() float64 {
	return d.Kkt.WithVAT + d.CashKkt.WithVAT + d.NonCash.WithVAT + d.OtherSum.WithVAT
}

// TotalVAT is the VAT component across the four tables.
func (d StepTwoData) TotalVAT() float64 {
	return d.Kkt.VAT + d.CashKkt.VAT + d.NonCash.VAT + d.OtherSum.VAT
}

// TotalWithoutVAT is the VAT-exclusive turnover.
func (d StepTwoData) TotalWithoutVAT() float64 {
	return d.TotalWithVAT() - d.TotalVAT()
}

// StepTwo owns the turnover tables. Only the owning caller and the report
// orchestrator (after a successful submission) write to it.
type StepTwo struct {
	mu   sync.RWMutex
	data StepTwoData
}

func NewStepTwo() *StepTwo { return &StepTwo{} }

// UpdateKkt replaces the KKT table wholesale.
func (s *StepTwo) UpdateKkt(t Table[core.KktRow]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Kkt = copyTable(t)
}

// UpdateCashKkt replaces the settlement-account table wholesale.
func (s *StepTwo) UpdateCashKkt(t Table[core.CashRow]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.CashKkt = copyTable(t)
}

// UpdateNonCash replaces the non-cash table wholesale.
func (s *StepTwo) UpdateNonCash(t Table[core.AmountRow]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.NonCash = copyTable(t)
}

// UpdateOtherSum replaces the other-amounts table wholesale.
func (s *StepTwo) UpdateOtherSum(t Table[core.AmountRow]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.OtherSum = copyTable(t)
}

// Set replaces the whole step, e.g. when hydrating from a persisted snapshot
// or a prior API fetch.
func (s *StepTwo) Set(d StepTwoData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = StepTwoData{
		Kkt:      copyTable(d.Kkt),
		CashKkt:  copyTable(d.CashKkt),
		NonCash:  copyTable(d.NonCash),
		OtherSum: copyTable(d.OtherSum),
	}
}

// RemoveKktRow drops a row and recomputes the table's totals. Removal is an
// explicit user action; an unsaved row disappears outright and a persisted
// one is filtered from the collection (its backend deletion is the backend's
// concern).
func (s *StepTwo) RemoveKktRow(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.data.Kkt.Rows
	if index < 0 || index >= len(rows) {
		return
	}
	rows = append(rows[:index:index], rows[index+1:]...)
	totals := core.KktTotals(rows)
	s.data.Kkt = Table[core.KktRow]{Rows: rows, WithVAT: totals.WithVAT, VAT: totals.VAT}
}

// Snapshot returns a deep copy of the step state.
func (s *StepTwo) Snapshot() StepTwoData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StepTwoData{
		Kkt:      copyTable(s.data.Kkt),
		CashKkt:  copyTable(s.data.CashKkt),
		NonCash:  copyTable(s.data.NonCash),
		OtherSum: copyTable(s.data.OtherSum),
	}
}

// Reset clears the step.
func (s *StepTwo) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = StepTwoData{}
}
