package core

// Kind identifies which table a row collection belongs to. Each kind has its
// own field set and validation rules.
type Kind string

const (
	KindKkt          Kind = "kkt"          // cash-register readings
	KindCashKkt      Kind = "cashKkt"      // cash turnover without a register, keyed by settlement account
	KindNonCash      Kind = "nonCash"      // non-cash turnover
	KindOtherSum     Kind = "otherSum"     // other amounts
	KindRefunds      Kind = "refunds"      // exclusions: returns and gift certificates
	KindOtherAmounts Kind = "otherAmounts" // other exclusion amounts
)

// PositiveKinds contribute to the gross report total; ExclusionKinds are
// subtracted from it before the rent calculation.
var (
	PositiveKinds  = []Kind{KindKkt, KindCashKkt, KindNonCash, KindOtherSum}
	ExclusionKinds = []Kind{KindRefunds, KindOtherAmounts}
)

// IsValid reports whether k is one of the six known table kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindKkt, KindCashKkt, KindNonCash, KindOtherSum, KindRefunds, KindOtherAmounts:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (k Kind) String() string { return string(k) }

// LocalName returns the user-facing table name used in validation messages.
func (k Kind) LocalName() string {
	switch k {
	case KindKkt:
		return "ККТ"
	case KindCashKkt:
		return "безналичных расчетов"
	case KindNonCash:
		return "неденежных форм расчетов"
	case KindOtherSum:
		return "иных сумм"
	case KindRefunds:
		return "возвратов"
	case KindOtherAmounts:
		return "иных сумм исключений"
	default:
		return string(k)
	}
}

// KktRow is one cash register: meter readings plus the advance amounts that
// are tracked outside the meter difference. Amount fields hold normalized
// display strings ("1234,56").
type KktRow struct {
	ID                                *int64  `json:"id,omitempty"`
	Name                              string  `json:"name"`
	RegistrationNumber                string  `json:"registration_number"`
	StartMeterReading                 string  `json:"start_meter_reading"`
	EndMeterReading                   string  `json:"end_meter_reading"`
	AmountWithoutAdvanceWithNDS       string  `json:"amount_without_advance_with_nds"`
	AmountWithoutAdvanceNDS           string  `json:"amount_without_advance_nds"`
	AdvanceWithoutCertificatesWithNDS string  `json:"advance_without_certificates_with_nds"`
	AdvanceWithoutCertificatesNDS     string  `json:"advance_without_certificates_nds"`
	FileIDs                           []int64 `json:"file_ids"`

	// Transient UI flags, not part of wire or persisted snapshots.
	IsNew   bool `json:"-"`
	IsDirty bool `json:"-"`
}

// CashRow is cash turnover without a register, keyed by settlement account.
type CashRow struct {
	ID                      *int64  `json:"id,omitempty"`
	Name                    string  `json:"name"`
	SettlementAccountNumber string  `json:"settlement_account_number"`
	AmountWithNDS           string  `json:"amount_with_nds"`
	AmountNDS               string  `json:"amount_nds"`
	FileIDs                 []int64 `json:"file_ids"`

	IsNew   bool `json:"-"`
	IsDirty bool `json:"-"`
}

// AmountRow is the shared shape of the nonCash, otherSum and otherAmounts
// tables: a name plus one VAT-inclusive/VAT pair.
type AmountRow struct {
	ID            *int64  `json:"id,omitempty"`
	Name          string  `json:"name"`
	AmountWithNDS string  `json:"amount_with_nds"`
	AmountNDS     string  `json:"amount_nds"`
	FileIDs       []int64 `json:"file_ids"`

	IsNew   bool `json:"-"`
	IsDirty bool `json:"-"`
}

// RefundRow is one exclusion line: returned goods/services and sold gift
// certificates for a specific register.
type RefundRow struct {
	ID                          *int64  `json:"id,omitempty"`
	Name                        string  `json:"name"`
	RegistrationNumber          string  `json:"registration_number"`
	ReturnsGoodsServicesWithNDS string  `json:"returns_goods_services_with_nds"`
	ReturnsGoodsServicesNDS     string  `json:"returns_goods_services_nds"`
	GiftCertificatesSoldWithNDS string  `json:"gift_certificates_sold_with_nds"`
	GiftCertificatesSoldNDS     string  `json:"gift_certificates_sold_nds"`
	FileIDs                     []int64 `json:"file_ids"`

	IsNew   bool `json:"-"`
	IsDirty bool `json:"-"`
}
