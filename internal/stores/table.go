// Package stores holds the wizard step state: table rows plus their derived
// totals. Each store has a single writer; everything handed out is a snapshot
// copy, and tables are replaced wholesale rather than patched in place.
package stores

import (
	"time"

	"tenantreport/internal/core"
)

// Table is one table of a step: its rows and the totals recomputed whenever
// the rows change.
type Table[T any] struct {
	Rows    []T     `json:"rows"`
	WithVAT float64 `json:"withVAT"`
	VAT     float64 `json:"VAT"`
}

// Period is the inclusive reporting date range.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Totals converts the table's derived pair into a core value.
func (t Table[T]) Totals() core.Totals {
	return core.Totals{WithVAT: t.WithVAT, VAT: t.VAT}
}

func copyRows[T any](rows []T) []T {
	out := make([]T, len(rows))
	copy(out, rows)
	return out
}

func copyTable[T any](t Table[T]) Table[T] {
	return Table[T]{Rows: copyRows(t.Rows), WithVAT: t.WithVAT, VAT: t.VAT}
}
