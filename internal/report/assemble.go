package report

import (
	"time"

	"tenantreport/internal/core"
	"tenantreport/internal/stores"
)

// isoTimestamp matches the wire format the backend expects for period bounds.
const isoTimestamp = "2006-01-02T15:04:05.000Z07:00"

// Scalars are the read-only figures supplied from outside the wizard:
// the contract's rent percentage and the comparison base.
type Scalars struct {
	ComparisonBase float64
	RentPercentage float64
}

// now is stubbed in tests.
var now = time.Now

// Assemble maps the current step snapshots into the wire payload. It is
// side-effect-free: the snapshots are read, never written. Every amount is
// coerced through ParseAmount so a malformed string becomes 0, every
// file_ids sequence is emitted (empty, not null), and all six table arrays
// are present even when their tables are empty. A missing or zero period
// date defaults to the current instant.
func Assemble(one stores.StepOneData, two stores.StepTwoData, three stores.StepThreeData, scalars Scalars, status Status) Payload {
	return Payload{
		Status: status,
		Report: Report{
			VisitorsCount:               one.VisitorsCount,
			ReceiptsCount:               one.ReceiptsCount,
			ComparisonBase:              scalars.ComparisonBase,
			RentPercentage:              scalars.RentPercentage,
			Kkts:                        assembleKkts(two.Kkt.Rows),
			CashTurnoversWithoutKkt:     assembleCashTurnovers(two.CashKkt.Rows),
			CashTurnoversNonCash:        assembleAmountTurnovers(two.NonCash.Rows),
			CashTurnoversOther:          assembleAmountTurnovers(two.OtherSum.Rows),
			KktsExclusions:              assembleExclusions(three.Refunds.Rows),
			CashTurnoverExclusionsOther: assembleAmountTurnovers(three.OtherAmounts.Rows),
			Period:                      assemblePeriod(one.Period),
		},
	}
}

func assemblePeriod(p *stores.Period) Period {
	if p == nil {
		current := now().UTC().Format(isoTimestamp)
		return Period{Start: current, End: current}
	}
	return Period{Start: safeDate(p.Start), End: safeDate(p.End)}
}

func safeDate(t time.Time) string {
	if t.IsZero() {
		t = now()
	}
	return t.UTC().Format(isoTimestamp)
}

func fileIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return []int64{}
	}
	out := make([]int64, len(ids))
	copy(out, ids)
	return out
}

func assembleKkts(rows []core.KktRow) []Kkt {
	out := make([]Kkt, 0, len(rows))
	for _, row := range rows {
		out = append(out, Kkt{
			Name:                              row.Name,
			RegistrationNumber:                row.RegistrationNumber,
			StartMeterReading:                 core.ParseAmount(row.StartMeterReading),
			EndMeterReading:                   core.ParseAmount(row.EndMeterReading),
			AmountWithoutAdvanceWithNDS:       core.ParseAmount(row.AmountWithoutAdvanceWithNDS),
			AmountWithoutAdvanceNDS:           core.ParseAmount(row.AmountWithoutAdvanceNDS),
			AdvanceWithoutCertificatesWithNDS: core.ParseAmount(row.AdvanceWithoutCertificatesWithNDS),
			AdvanceWithoutCertificatesNDS:     core.ParseAmount(row.AdvanceWithoutCertificatesNDS),
			FileIDs:                           fileIDs(row.FileIDs),
		})
	}
	return out
}

func assembleCashTurnovers(rows []core.CashRow) []CashTurnoverWithoutKkt {
	out := make([]CashTurnoverWithoutKkt, 0, len(rows))
	for _, row := range rows {
		out = append(out, CashTurnoverWithoutKkt{
			Name:                    row.Name,
			SettlementAccountNumber: row.SettlementAccountNumber,
			AmountWithNDS:           core.ParseAmount(row.AmountWithNDS),
			AmountNDS:               core.ParseAmount(row.AmountNDS),
			FileIDs:                 fileIDs(row.FileIDs),
		})
	}
	return out
}

func assembleAmountTurnovers(rows []core.AmountRow) []CashTurnover {
	out := make([]CashTurnover, 0, len(rows))
	for _, row := range rows {
		out = append(out, CashTurnover{
			Name:          row.Name,
			AmountWithNDS: core.ParseAmount(row.AmountWithNDS),
			AmountNDS:     core.ParseAmount(row.AmountNDS),
			FileIDs:       fileIDs(row.FileIDs),
		})
	}
	return out
}

func assembleExclusions(rows []core.RefundRow) []KktExclusion {
	out := make([]KktExclusion, 0, len(rows))
	for _, row := range rows {
		out = append(out, KktExclusion{
			Name:                        row.Name,
			RegistrationNumber:          row.RegistrationNumber,
			ReturnsGoodsServicesWithNDS: core.ParseAmount(row.ReturnsGoodsServicesWithNDS),
			ReturnsGoodsServicesNDS:     core.ParseAmount(row.ReturnsGoodsServicesNDS),
			GiftCertificatesSoldWithNDS: core.ParseAmount(row.GiftCertificatesSoldWithNDS),
			GiftCertificatesSoldNDS:     core.ParseAmount(row.GiftCertificatesSoldNDS),
			FileIDs:                     fileIDs(row.FileIDs),
		})
	}
	return out
}
