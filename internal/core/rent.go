package core

import "math"

// vatDivisor converts a VAT-inclusive payment to its VAT-exclusive figure.
// The backend contract assumes the standard 20% rate.
const vatDivisor = 1.2

// RentInput carries the figures the rent derivation consumes: the grand
// VAT-inclusive turnover (exclusions already subtracted), the contract's
// rent percentage and the fixed comparison base.
type RentInput struct {
	TotalWithVAT   float64
	RentPercentage float64
	ComparisonBase float64
}

// RentFigures is the derived percentage-of-turnover rent.
type RentFigures struct {
	PercentageWithVAT float64
	PaymentWithVAT    float64
	PaymentWithoutVAT float64
}

// CalculateRent derives the rent payment from aggregated turnover. The
// payment never goes below zero when the comparison base exceeds the
// percentage figure.
func CalculateRent(in RentInput) RentFigures {
	percentage := in.TotalWithVAT * in.RentPercentage / 100
	payment := math.Max(0, percentage-in.ComparisonBase)
	return RentFigures{
		PercentageWithVAT: percentage,
		PaymentWithVAT:    payment,
		PaymentWithoutVAT: payment / vatDivisor,
	}
}
