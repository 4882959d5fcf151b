// Package report defines the backend wire contract for a tenant sales
// report and assembles the payload from step-store snapshots.
package report

// Status is the wire submission status. A draft is resumable; a submitted
// report is terminal (the backend decides what that means).
type Status string

const (
	StatusDraft     Status = "Draft"
	StatusSubmitted Status = "Submitted"
)

// Payload is the body of POST /tenants/reports.
type Payload struct {
	Status Status `json:"status"`
	Report Report `json:"report"`
}

// Report carries the period scalars and all six table arrays. The arrays are
// always present on the wire, empty rather than omitted.
type Report struct {
	VisitorsCount               int                      `json:"visitors_count"`
	ReceiptsCount               int                      `json:"receipts_count"`
	ComparisonBase              float64                  `json:"comparison_base"`
	RentPercentage              float64                  `json:"rent_percentage"`
	Kkts                        []Kkt                    `json:"kkts"`
	CashTurnoversWithoutKkt     []CashTurnoverWithoutKkt `json:"cash_turnovers_without_kkt"`
	CashTurnoversNonCash        []CashTurnover           `json:"cash_turnovers_non_cash"`
	CashTurnoversOther          []CashTurnover           `json:"cash_turnovers_other"`
	KktsExclusions              []KktExclusion           `json:"kkts_exclusions"`
	CashTurnoverExclusionsOther []CashTurnover           `json:"cash_turnover_exclusions_other"`
	Period                      Period                   `json:"period"`
}

// Period is the reporting range as ISO-8601 timestamps.
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Kkt is one cash register on the wire; amounts are numeric.
type Kkt struct {
	Name                              string  `json:"name"`
	RegistrationNumber                string  `json:"registration_number"`
	StartMeterReading                 float64 `json:"start_meter_reading"`
	EndMeterReading                   float64 `json:"end_meter_reading"`
	AmountWithoutAdvanceWithNDS       float64 `json:"amount_without_advance_with_nds"`
	AmountWithoutAdvanceNDS           float64 `json:"amount_without_advance_nds"`
	AdvanceWithoutCertificatesWithNDS float64 `json:"advance_without_certificates_with_nds"`
	AdvanceWithoutCertificatesNDS     float64 `json:"advance_without_certificates_nds"`
	FileIDs                           []int64 `json:"file_ids"`
}

// CashTurnoverWithoutKkt is one settlement-account line.
type CashTurnoverWithoutKkt struct {
	Name                    string  `json:"name"`
	SettlementAccountNumber string  `json:"settlement_account_number"`
	AmountWithNDS           float64 `json:"amount_with_nds"`
	AmountNDS               float64 `json:"amount_nds"`
	FileIDs                 []int64 `json:"file_ids"`
}

// CashTurnover is the shared shape of the non-cash, other and other-exclusion
// arrays.
type CashTurnover struct {
	Name          string  `json:"name"`
	AmountWithNDS float64 `json:"amount_with_nds"`
	AmountNDS     float64 `json:"amount_nds"`
	FileIDs       []int64 `json:"file_ids"`
}

// KktExclusion is one returns/certificates exclusion line.
type KktExclusion struct {
	Name                        string  `json:"name"`
	RegistrationNumber          string  `json:"registration_number"`
	ReturnsGoodsServicesWithNDS float64 `json:"returns_goods_services_with_nds"`
	ReturnsGoodsServicesNDS     float64 `json:"returns_goods_services_nds"`
	GiftCertificatesSoldWithNDS float64 `json:"gift_certificates_sold_with_nds"`
	GiftCertificatesSoldNDS     float64 `json:"gift_certificates_sold_nds"`
	FileIDs                     []int64 `json:"file_ids"`
}

// SubmitResult is what a successful submission returns.
type SubmitResult struct {
	ReportID int64  `json:"reportId"`
	Message  string `json:"message"`
}

// UploadedFile describes a stored attachment referenced by row file_ids.
type UploadedFile struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	MimeType  string `json:"mime_type"`
	Size      int64  `json:"size"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
