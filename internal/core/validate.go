package core

import "strings"

const registrationNumberLength = 16

// User-facing validation messages. The UI layer shows them verbatim, so they
// stay in the contract language of the tenant portal.
const (
	MsgFieldRequired = "Поле обязательно для заполнения"
	MsgKktLength     = "Номер ККТ должен содержать ровно 16 цифр"
	MsgKktDuplicate  = "Этот номер ККТ уже есть в отчете"
	MsgMeterOrder    = "Начальное значение не может быть больше конечного"
	MsgAmountNumeric = "Сумма должна быть числом"
)

// ErrorMap stores one error message per row index. Absence means no error.
type ErrorMap map[int]string

// Set records an error for a row.
func (m ErrorMap) Set(index int, msg string) { m[index] = msg }

// Clear removes a row's error unconditionally. Called on every edit of a
// field, before re-validation.
func (m ErrorMap) Clear(index int) { delete(m, index) }

// Get returns the error for a row, or "" when the row is clean.
func (m ErrorMap) Get(index int) string { return m[index] }

// Has reports whether the row currently carries an error.
func (m ErrorMap) Has(index int) bool { return m[index] != "" }

// CheckForDuplicates reports whether another row in the same table carries
// the same registration number as rows[index]. Empty numbers never match.
func CheckForDuplicates(rows []KktRow, index int) bool {
	if index < 0 || index >= len(rows) {
		return false
	}
	current := rows[index].RegistrationNumber
	if current == "" {
		return false
	}
	for i, row := range rows {
		if i != index && row.RegistrationNumber == current {
			return true
		}
	}
	return false
}

// ValidateKktNumber checks rows[index].RegistrationNumber: required, exactly
// 16 digits, unique among the table's rows. The first failing rule is stored
// in errs; a passing check clears the row's error.
func ValidateKktNumber(rows []KktRow, index int, errs ErrorMap) bool {
	if index < 0 || index >= len(rows) {
		return false
	}
	number := rows[index].RegistrationNumber

	if strings.TrimSpace(number) == "" {
		errs.Set(index, MsgFieldRequired)
		return false
	}
	if len(number) != registrationNumberLength {
		errs.Set(index, MsgKktLength)
		return false
	}
	if CheckForDuplicates(rows, index) {
		errs.Set(index, MsgKktDuplicate)
		return false
	}

	errs.Clear(index)
	return true
}

// ValidateRefundNumber applies the 16-digit rule to an exclusion row. There
// is no cross-row duplicate check for exclusions.
func ValidateRefundNumber(rows []RefundRow, index int, errs ErrorMap) bool {
	if index < 0 || index >= len(rows) {
		return false
	}
	number := rows[index].RegistrationNumber

	if strings.TrimSpace(number) == "" {
		errs.Set(index, MsgFieldRequired)
		return false
	}
	if len(number) != registrationNumberLength {
		errs.Set(index, MsgKktLength)
		return false
	}

	errs.Clear(index)
	return true
}

// ValidateMeterReadings enforces start ≤ end on a KKT row. Missing readings
// count as "0,00". When the readings are ordered again, a stale ordering
// error is cleared without touching other errors on the row.
func ValidateMeterReadings(rows []KktRow, index int, errs ErrorMap) bool {
	if index < 0 || index >= len(rows) {
		return false
	}

	startStr := rows[index].StartMeterReading
	if startStr == "" {
		startStr = "0,00"
	}
	endStr := rows[index].EndMeterReading
	if endStr == "" {
		endStr = "0,00"
	}

	if ParseAmount(startStr) > ParseAmount(endStr) {
		errs.Set(index, MsgMeterOrder)
		return false
	}
	if errs.Get(index) == MsgMeterOrder {
		errs.Clear(index)
	}
	return true
}

// ShouldShowKktError reports whether the registration-number field of
// rows[index] should be highlighted: either the value is still missing or a
// validation error is recorded.
func ShouldShowKktError(rows []KktRow, index int, errs ErrorMap) bool {
	if index < 0 || index >= len(rows) {
		return false
	}
	return rows[index].RegistrationNumber == "" || errs.Has(index)
}

// ShouldShowMeterError reports whether a meter-reading field should be
// highlighted. An ordering violation marks both the start and the end field.
func ShouldShowMeterError(rows []KktRow, index int, errs ErrorMap) bool {
	if index < 0 || index >= len(rows) {
		return false
	}
	return errs.Get(index) == MsgMeterOrder
}
