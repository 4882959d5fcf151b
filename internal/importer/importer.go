// Package importer reads tenant-filled xlsx workbooks into step tables. One
// sheet per table; the first row is a header. Everything coming off a sheet
// is untyped text, so every cell goes through the same normalization the
// form inputs use before the rows are validated.
package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"tenantreport/internal/core"
	"tenantreport/internal/services"
	"tenantreport/internal/stores"
)

// Sheet names expected in the workbook. A missing sheet leaves its table
// empty.
const (
	SheetKkt          = "ККТ"
	SheetCashKkt      = "Безналичные расчеты"
	SheetNonCash      = "Неденежные формы"
	SheetOtherSum     = "Иные суммы"
	SheetRefunds      = "Возвраты"
	SheetOtherAmounts = "Иные исключения"
)

// Result is the imported wizard state, ready for stores.Set.
type Result struct {
	StepTwo   stores.StepTwoData
	StepThree stores.StepThreeData
}

// Import reads a workbook and validates the resulting rows. The returned
// error carries the first validation problem in the same form the wizard
// shows.
func Import(r io.Reader) (Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Result{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var res Result

	kktRows, err := sheetRows(f, SheetKkt)
	if err != nil {
		return Result{}, err
	}
	res.StepTwo.Kkt.Rows = parseKktRows(kktRows)
	res.StepTwo.Kkt.WithVAT, res.StepTwo.Kkt.VAT = totalsOf(core.KktTotals(res.StepTwo.Kkt.Rows))

	cashRows, err := sheetRows(f, SheetCashKkt)
	if err != nil {
		return Result{}, err
	}
	res.StepTwo.CashKkt.Rows = parseCashRows(cashRows)
	res.StepTwo.CashKkt.WithVAT, res.StepTwo.CashKkt.VAT = totalsOf(core.CashTotals(res.StepTwo.CashKkt.Rows))

	nonCashRows, err := sheetRows(f, SheetNonCash)
	if err != nil {
		return Result{}, err
	}
	res.StepTwo.NonCash.Rows = parseAmountRows(nonCashRows)
	res.StepTwo.NonCash.WithVAT, res.StepTwo.NonCash.VAT = totalsOf(core.AmountTotals(res.StepTwo.NonCash.Rows))

	otherSumRows, err := sheetRows(f, SheetOtherSum)
	if err != nil {
		return Result{}, err
	}
	res.StepTwo.OtherSum.Rows = parseAmountRows(otherSumRows)
	res.StepTwo.OtherSum.WithVAT, res.StepTwo.OtherSum.VAT = totalsOf(core.AmountTotals(res.StepTwo.OtherSum.Rows))

	refundRows, err := sheetRows(f, SheetRefunds)
	if err != nil {
		return Result{}, err
	}
	res.StepThree.Refunds.Rows = parseRefundRows(refundRows)
	res.StepThree.Refunds.WithVAT, res.StepThree.Refunds.VAT = totalsOf(core.RefundTotals(res.StepThree.Refunds.Rows))

	otherRows, err := sheetRows(f, SheetOtherAmounts)
	if err != nil {
		return Result{}, err
	}
	res.StepThree.OtherAmounts.Rows = parseAmountRows(otherRows)
	res.StepThree.OtherAmounts.WithVAT, res.StepThree.OtherAmounts.VAT = totalsOf(core.AmountTotals(res.StepThree.OtherAmounts.Rows))

	validator := services.NewFormValidator()
	if err := validator.ValidateStepTwo(res.StepTwo); err != nil {
		return Result{}, fmt.Errorf("imported workbook is invalid: %w", err)
	}
	if err := validator.ValidateStepThree(res.StepThree); err != nil {
		return Result{}, fmt.Errorf("imported workbook is invalid: %w", err)
	}

	return res, nil
}

// sheetRows returns the data rows of a sheet (header dropped), or nil when
// the sheet does not exist.
func sheetRows(f *excelize.File, sheet string) ([][]string, error) {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, nil
	}
	return rows[1:], nil
}

func totalsOf(t core.Totals) (float64, float64) { return t.WithVAT, t.VAT }

// cell returns the trimmed cell at index i, "" past the row's end. Trailing
// empty cells are not materialized by excelize, so short rows are normal.
func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func amount(row []string, i int) string {
	return core.FormatBlur(cell(row, i))
}

// Columns: name, registration number, start/end readings, amount without
// advance + its VAT, advance + its VAT.
func parseKktRows(rows [][]string) []core.KktRow {
	out := make([]core.KktRow, 0, len(rows))
	for _, row := range rows {
		if isBlank(row) {
			continue
		}
		out = append(out, core.KktRow{
			Name:                              cell(row, 0),
			RegistrationNumber:                core.CleanRegistrationNumber(cell(row, 1)),
			StartMeterReading:                 amount(row, 2),
			EndMeterReading:                   amount(row, 3),
			AmountWithoutAdvanceWithNDS:       amount(row, 4),
			AmountWithoutAdvanceNDS:           amount(row, 5),
			AdvanceWithoutCertificatesWithNDS: amount(row, 6),
			AdvanceWithoutCertificatesNDS:     amount(row, 7),
			FileIDs:                           []int64{},
			IsNew:                             true,
		})
	}
	return out
}

// Columns: name, settlement account, amount with VAT, VAT.
func parseCashRows(rows [][]string) []core.CashRow {
	out := make([]core.CashRow, 0, len(rows))
	for _, row := range rows {
		if isBlank(row) {
			continue
		}
		out = append(out, core.CashRow{
			Name:                    cell(row, 0),
			SettlementAccountNumber: cell(row, 1),
			AmountWithNDS:           amount(row, 2),
			AmountNDS:               amount(row, 3),
			FileIDs:                 []int64{},
			IsNew:                   true,
		})
	}
	return out
}

// Columns: name, amount with VAT, VAT.
func parseAmountRows(rows [][]string) []core.AmountRow {
	out := make([]core.AmountRow, 0, len(rows))
	for _, row := range rows {
		if isBlank(row) {
			continue
		}
		out = append(out, core.AmountRow{
			Name:          cell(row, 0),
			AmountWithNDS: amount(row, 1),
			AmountNDS:     amount(row, 2),
			FileIDs:       []int64{},
			IsNew:         true,
		})
	}
	return out
}

// Columns: name, registration number, returns + VAT, certificates + VAT.
func parseRefundRows(rows [][]string) []core.RefundRow {
	out := make([]core.RefundRow, 0, len(rows))
	for _, row := range rows {
		if isBlank(row) {
			continue
		}
		out = append(out, core.RefundRow{
			Name:                        cell(row, 0),
			RegistrationNumber:          core.CleanRegistrationNumber(cell(row, 1)),
			ReturnsGoodsServicesWithNDS: amount(row, 2),
			ReturnsGoodsServicesNDS:     amount(row, 3),
			GiftCertificatesSoldWithNDS: amount(row, 4),
			GiftCertificatesSoldNDS:     amount(row, 5),
			FileIDs:                     []int64{},
			IsNew:                       true,
		})
	}
	return out
}
