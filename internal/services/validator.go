package services

import (
	"fmt"
	"strings"

	"tenantreport/internal/core"
	"tenantreport/internal/stores"
)

// Field labels used in form-level validation messages.
const (
	fieldName               = "Наименование"
	fieldRegistrationNumber = "Регистрационный номер"
	fieldSettlementAccount  = "Расчетный счет"
)

// FormValidator checks whole step snapshots before submission. Row-level
// validation in core covers live editing; this pass walks every row of every
// table and stops at the first problem.
type FormValidator struct{}

func NewFormValidator() *FormValidator { return &FormValidator{} }

// rowFieldError names the localized table and the 1-based row of a missing
// required field.
func rowFieldError(kind core.Kind, row int, field string) error {
	return fmt.Errorf("В таблице %s (строка %d): не заполнено поле %q", kind.LocalName(), row, field)
}

// rowRuleError prefixes a core validation message with the table and row.
func rowRuleError(kind core.Kind, row int, msg string) error {
	return fmt.Errorf("В таблице %s (строка %d): %s", kind.LocalName(), row, msg)
}

// ValidateStepTwo checks the four revenue tables. The first failing rule
// across all rows is returned; nil means the step can be submitted.
func (v *FormValidator) ValidateStepTwo(data stores.StepTwoData) error {
	kktErrs := core.ErrorMap{}
	for i, row := range data.Kkt.Rows {
		if strings.TrimSpace(row.Name) == "" {
			return rowFieldError(core.KindKkt, i+1, fieldName)
		}
		if strings.TrimSpace(row.RegistrationNumber) == "" {
			return rowFieldError(core.KindKkt, i+1, fieldRegistrationNumber)
		}
		if !core.ValidateKktNumber(data.Kkt.Rows, i, kktErrs) {
			return rowRuleError(core.KindKkt, i+1, kktErrs.Get(i))
		}
		if !core.ValidateMeterReadings(data.Kkt.Rows, i, kktErrs) {
			return rowRuleError(core.KindKkt, i+1, kktErrs.Get(i))
		}
	}

	for i, row := range data.CashKkt.Rows {
		if strings.TrimSpace(row.Name) == "" {
			return rowFieldError(core.KindCashKkt, i+1, fieldName)
		}
		if strings.TrimSpace(row.SettlementAccountNumber) == "" {
			return rowFieldError(core.KindCashKkt, i+1, fieldSettlementAccount)
		}
		if !core.ValidAmount(row.AmountWithNDS) || !core.ValidAmount(row.AmountNDS) {
			return rowRuleError(core.KindCashKkt, i+1, core.MsgAmountNumeric)
		}
	}

	if err := validateAmountRows(core.KindNonCash, data.NonCash.Rows); err != nil {
		return err
	}
	return validateAmountRows(core.KindOtherSum, data.OtherSum.Rows)
}

// ValidateStepThree checks the exclusion tables.
func (v *FormValidator) ValidateStepThree(data stores.StepThreeData) error {
	refundErrs := core.ErrorMap{}
	for i, row := range data.Refunds.Rows {
		if strings.TrimSpace(row.Name) == "" {
			return rowFieldError(core.KindRefunds, i+1, fieldName)
		}
		if strings.TrimSpace(row.RegistrationNumber) == "" {
			return rowFieldError(core.KindRefunds, i+1, fieldRegistrationNumber)
		}
		if !core.ValidateRefundNumber(data.Refunds.Rows, i, refundErrs) {
			return rowRuleError(core.KindRefunds, i+1, refundErrs.Get(i))
		}
	}

	return validateAmountRows(core.KindOtherAmounts, data.OtherAmounts.Rows)
}

func validateAmountRows(kind core.Kind, rows []core.AmountRow) error {
	for i, row := range rows {
		if strings.TrimSpace(row.Name) == "" {
			return rowFieldError(kind, i+1, fieldName)
		}
		if !core.ValidAmount(row.AmountWithNDS) || !core.ValidAmount(row.AmountNDS) {
			return rowRuleError(kind, i+1, core.MsgAmountNumeric)
		}
	}
	return nil
}
