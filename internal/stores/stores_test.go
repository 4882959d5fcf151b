package stores

import (
	"reflect"
	"testing"
	"time"

	"tenantreport/internal/core"
)

func TestStepTwoRoundTrip(t *testing.T) {
	store := NewStepTwo()

	kktRows := []core.KktRow{
		{
			Name:               "Касса 1",
			RegistrationNumber: "1234567890123456",
			StartMeterReading:  "100,00",
			EndMeterReading:    "250,00",
			FileIDs:            []int64{1, 2},
		},
	}
	totals := core.KktTotals(kktRows)
	store.UpdateKkt(Table[core.KktRow]{Rows: kktRows, WithVAT: totals.WithVAT, VAT: totals.VAT})

	otherRows := []core.AmountRow{
		{Name: "прочее", AmountWithNDS: "100,00", AmountNDS: "20,00", FileIDs: []int64{}},
	}
	otherTotals := core.AmountTotals(otherRows)
	store.UpdateOtherSum(Table[core.AmountRow]{Rows: otherRows, WithVAT: otherTotals.WithVAT, VAT: otherTotals.VAT})

	got := store.Snapshot()
	if !reflect.DeepEqual(got.Kkt.Rows, kktRows) {
		t.Fatalf("kkt rows changed across save/snapshot: %+v", got.Kkt.Rows)
	}
	if !reflect.DeepEqual(got.OtherSum.Rows, otherRows) {
		t.Fatalf("otherSum rows changed across save/snapshot: %+v", got.OtherSum.Rows)
	}
	if got.Kkt.WithVAT != totals.WithVAT || got.Kkt.VAT != totals.VAT {
		t.Fatalf("kkt totals = {%v %v}, want {%v %v}", got.Kkt.WithVAT, got.Kkt.VAT, totals.WithVAT, totals.VAT)
	}
}

func TestStepTwoSnapshotIsACopy(t *testing.T) {
	store := NewStepTwo()
	store.UpdateNonCash(Table[core.AmountRow]{
		Rows: []core.AmountRow{{Name: "a", AmountWithNDS: "1,00"}},
	})

	snap := store.Snapshot()
	snap.NonCash.Rows[0].Name = "mutated"

	if store.Snapshot().NonCash.Rows[0].Name != "a" {
		t.Fatal("mutating a snapshot must not leak into the store")
	}
}

func TestStepTwoDerivedTotals(t *testing.T) {
	d := StepTwoData{
		Kkt:      Table[core.KktRow]{WithVAT: 300, VAT: 50},
		CashKkt:  Table[core.CashRow]{WithVAT: 30.3, VAT: 3.03},
		NonCash:  Table[core.AmountRow]{WithVAT: 100, VAT: 20},
		OtherSum: Table[core.AmountRow]{WithVAT: 150.5, VAT: 30.1},
	}
	if got := d.TotalWithVAT(); got != 580.8 {
		t.Fatalf("TotalWithVAT = %v, want 580.8", got)
	}
	wantVAT := 103.13
	if got := d.TotalVAT(); got != wantVAT {
		t.Fatalf("TotalVAT = %v, want %v", got, wantVAT)
	}
	if got := d.TotalWithoutVAT(); got != 580.8-wantVAT {
		t.Fatalf("TotalWithoutVAT = %v, want %v", got, 580.8-wantVAT)
	}
}

func TestStepTwoRemoveKktRow(t *testing.T) {
	store := NewStepTwo()
	id := int64(7)
	rows := []core.KktRow{
		{ID: &id, StartMeterReading: "0,00", EndMeterReading: "100,00"},
		{IsNew: true, StartMeterReading: "0,00", EndMeterReading: "50,00"},
	}
	totals := core.KktTotals(rows)
	store.UpdateKkt(Table[core.KktRow]{Rows: rows, WithVAT: totals.WithVAT, VAT: totals.VAT})

	store.RemoveKktRow(1)
	got := store.Snapshot().Kkt
	if len(got.Rows) != 1 {
		t.Fatalf("expected 1 row after removal, got %d", len(got.Rows))
	}
	if got.WithVAT != 100 {
		t.Fatalf("totals not recomputed after removal: %v", got.WithVAT)
	}

	// Out-of-range removal is a no-op.
	store.RemoveKktRow(5)
	if len(store.Snapshot().Kkt.Rows) != 1 {
		t.Fatal("out-of-range removal must not change the table")
	}
}

func TestStepOnePeriod(t *testing.T) {
	store := NewStepOne()
	if store.Snapshot().Period != nil {
		t.Fatal("fresh store has no period")
	}

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	store.SetPeriod(start, end)
	store.SetCounts(1500, 320)

	snap := store.Snapshot()
	if snap.Period == nil || !snap.Period.Start.Equal(start) || !snap.Period.End.Equal(end) {
		t.Fatalf("period = %+v", snap.Period)
	}
	if snap.VisitorsCount != 1500 || snap.ReceiptsCount != 320 {
		t.Fatalf("counts = %d/%d", snap.VisitorsCount, snap.ReceiptsCount)
	}

	snap.Period.Start = snap.Period.Start.AddDate(0, 1, 0)
	if !store.Snapshot().Period.Start.Equal(start) {
		t.Fatal("snapshot period must be a copy")
	}
}

func TestStepThreeTotalsAndReset(t *testing.T) {
	store := NewStepThree()
	store.UpdateRefunds(Table[core.RefundRow]{WithVAT: 180, VAT: 30})
	store.UpdateOtherAmounts(Table[core.AmountRow]{WithVAT: 20, VAT: 4})

	d := store.Snapshot()
	if d.TotalWithVAT() != 200 || d.TotalVAT() != 34 {
		t.Fatalf("totals = %v/%v", d.TotalWithVAT(), d.TotalVAT())
	}

	store.Reset()
	if got := store.Snapshot(); got.TotalWithVAT() != 0 || len(got.Refunds.Rows) != 0 {
		t.Fatalf("reset left state behind: %+v", got)
	}
}
