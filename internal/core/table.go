package core

// Totals is the derived pair recomputed whenever a table's rows change.
// WithVAT is not required to exceed VAT; the only invariant is additive:
// each field equals the sum of the relevant row amounts.
type Totals struct {
	WithVAT float64 `json:"withVAT"`
	VAT     float64 `json:"VAT"`
}

// WithoutVAT returns the VAT-exclusive total.
func (t Totals) WithoutVAT() float64 { return t.WithVAT - t.VAT }

// Add returns the element-wise sum of t and o.
func (t Totals) Add(o Totals) Totals {
	return Totals{WithVAT: t.WithVAT + o.WithVAT, VAT: t.VAT + o.VAT}
}

// Sub returns t reduced by o. Used to subtract the exclusion tables from the
// gross turnover.
func (t Totals) Sub(o Totals) Totals {
	return Totals{WithVAT: t.WithVAT - o.WithVAT, VAT: t.VAT - o.VAT}
}

// Combine sums a list of table totals.
func Combine(tt ...Totals) Totals {
	var sum Totals
	for _, t := range tt {
		sum = sum.Add(t)
	}
	return sum
}

// KktTotals aggregates a KKT table. The VAT-inclusive total is the meter
// difference plus the advance amount per row; the VAT total is the
// without-advance VAT plus the advance VAT. The VAT sum is rounded to two
// decimals once, on the final sum.
func KktTotals(rows []KktRow) Totals {
	var t Totals
	for _, row := range rows {
		meterDifference := ParseAmount(row.EndMeterReading) - ParseAmount(row.StartMeterReading)
		t.WithVAT += meterDifference + ParseAmount(row.AdvanceWithoutCertificatesWithNDS)
		t.VAT += ParseAmount(row.AmountWithoutAdvanceNDS) + ParseAmount(row.AdvanceWithoutCertificatesNDS)
	}
	t.VAT = Round2(t.VAT)
	return t
}

// CashTotals aggregates a settlement-account table.
func CashTotals(rows []CashRow) Totals {
	var t Totals
	for _, row := range rows {
		t.WithVAT += ParseAmount(row.AmountWithNDS)
		t.VAT += ParseAmount(row.AmountNDS)
	}
	t.VAT = Round2(t.VAT)
	return t
}

// AmountTotals aggregates a nonCash, otherSum or otherAmounts table.
func AmountTotals(rows []AmountRow) Totals {
	var t Totals
	for _, row := range rows {
		t.WithVAT += ParseAmount(row.AmountWithNDS)
		t.VAT += ParseAmount(row.AmountNDS)
	}
	t.VAT = Round2(t.VAT)
	return t
}

// RefundTotals aggregates an exclusion table: returns plus sold gift
// certificates.
func RefundTotals(rows []RefundRow) Totals {
	var t Totals
	for _, row := range rows {
		t.WithVAT += ParseAmount(row.ReturnsGoodsServicesWithNDS) + ParseAmount(row.GiftCertificatesSoldWithNDS)
		t.VAT += ParseAmount(row.ReturnsGoodsServicesNDS) + ParseAmount(row.GiftCertificatesSoldNDS)
	}
	t.VAT = Round2(t.VAT)
	return t
}
