package store

import (
	"testing"

	"github.com/gyeh/ccmcalc/internal/model"
)

func rec(npi, name string, benes int64, allowed float64) model.PhysicianRecord {
	return model.PhysicianRecord{
		NPI:                npi,
		Name:               name,
		State:              "NY",
		TotalBeneficiaries: benes,
		MedicareAllowed:    allowed,
	}
}

func TestAdd_DuplicateNPIIsNoOp(t *testing.T) {
	s := New(model.DefaultAssumptions(), false)

	if !s.Add(rec("1111111111", "Jane Smith", 100, 10000)) {
		t.Fatal("first add should succeed")
	}
	before := s.Totals()

	if s.Add(rec("1111111111", "Jane Smith Again", 999, 99999)) {
		t.Error("duplicate add should report false")
	}

	if s.Len() != 1 {
		t.Fatalf("Len: got %d, want 1", s.Len())
	}
	got := s.Records()[0]
	if got.Name != "Jane Smith" || got.TotalBeneficiaries != 100 {
		t.Errorf("duplicate add altered the original record: %+v", got)
	}
	if s.Totals() != before {
		t.Error("totals changed after duplicate add")
	}
}

func TestRemove(t *testing.T) {
	s := New(model.DefaultAssumptions(), false)
	s.Add(rec("1111111111", "A One", 100, 1000))
	s.Add(rec("2222222222", "B Two", 200, 2000))
	s.Add(rec("3333333333", "C Three", 300, 3000))

	if !s.Remove("2222222222") {
		t.Fatal("remove existing should report true")
	}
	if s.Remove("2222222222") {
		t.Error("second remove should report false")
	}

	records := s.Records()
	if len(records) != 2 {
		t.Fatalf("Len: got %d, want 2", len(records))
	}
	if records[0].NPI != "1111111111" || records[1].NPI != "3333333333" {
		t.Errorf("order not preserved after remove: %s, %s", records[0].NPI, records[1].NPI)
	}

	// Index stays consistent: re-adding the removed NPI works, and the
	// survivor is still addressable.
	if !s.Add(rec("2222222222", "B Two", 200, 2000)) {
		t.Error("re-add after remove should succeed")
	}
	if !s.Remove("3333333333") {
		t.Error("remove of shifted record should succeed")
	}
}

func TestSetProfitMode_ToggleIsIdempotent(t *testing.T) {
	s := New(model.DefaultAssumptions(), false)
	s.Add(rec("1111111111", "Jane Smith", 100, 10000))
	before := s.Records()

	s.SetProfitMode(true)
	withProfit := s.Records()
	if withProfit[0].Profit == nil {
		t.Fatal("profit should be set after enabling profit mode")
	}

	s.SetProfitMode(false)
	after := s.Records()
	if after[0].Profit != nil {
		t.Error("profit should be nil after disabling profit mode")
	}
	if after[0].CCMRevenue != before[0].CCMRevenue ||
		after[0].EnrolledPatients != before[0].EnrolledPatients ||
		after[0].ProjectedTotal != before[0].ProjectedTotal {
		t.Errorf("toggle round-trip altered funnel values: %+v vs %+v", after[0], before[0])
	}
}

func TestSetAssumptions_RecomputeDoesNotCompound(t *testing.T) {
	a := model.DefaultAssumptions()
	s := New(a, false)
	s.Add(rec("1111111111", "Jane Smith", 100, 10000))

	a.EnrolledPercent = 60
	s.SetAssumptions(a)
	first := s.Records()

	s.SetAssumptions(a)
	second := s.Records()

	if first[0].EnrolledPatients != second[0].EnrolledPatients ||
		first[0].CCMRevenue != second[0].CCMRevenue {
		t.Errorf("recompute with identical assumptions changed output: %+v vs %+v", second[0], first[0])
	}

	// Derivation always starts from the raw record, never from prior output.
	if first[0].TotalBeneficiaries != 100 {
		t.Errorf("raw beneficiary count mutated: %d", first[0].TotalBeneficiaries)
	}
}

func TestReplaceAll_KeepsFirstDuplicate(t *testing.T) {
	s := New(model.DefaultAssumptions(), false)
	s.Add(rec("9999999999", "Old Record", 1, 1))

	s.ReplaceAll([]model.PhysicianRecord{
		rec("1111111111", "First", 100, 1000),
		rec("1111111111", "Second", 200, 2000),
		rec("2222222222", "Third", 300, 3000),
	})

	records := s.Records()
	if len(records) != 2 {
		t.Fatalf("Len: got %d, want 2", len(records))
	}
	if records[0].Name != "First" {
		t.Errorf("duplicate NPI should keep first occurrence, got %q", records[0].Name)
	}
	if records[1].NPI != "2222222222" {
		t.Errorf("unexpected second record: %+v", records[1])
	}
}

func TestSnapshot_IsolatedFromLaterMutation(t *testing.T) {
	s := New(model.DefaultAssumptions(), true)
	s.Add(rec("1111111111", "Jane Smith", 100, 10000))

	snap := s.Snapshot("before")
	if snap.Name != "before" || len(snap.Records) != 1 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	wantProfit := *snap.Records[0].Profit

	// Mutate the store every way available.
	a := s.Assumptions()
	a.EnrolledPercent = 5
	s.SetAssumptions(a)
	s.SetProfitMode(false)
	s.Add(rec("2222222222", "New Doc", 500, 50000))
	s.Remove("1111111111")

	if len(snap.Records) != 1 {
		t.Fatalf("snapshot record count changed: %d", len(snap.Records))
	}
	if snap.Records[0].NPI != "1111111111" {
		t.Errorf("snapshot contents changed: %+v", snap.Records[0])
	}
	if snap.Records[0].Profit == nil || *snap.Records[0].Profit != wantProfit {
		t.Error("snapshot pointer fields were not deep-copied")
	}
	if snap.Assumptions.EnrolledPercent != model.DefaultAssumptions().EnrolledPercent {
		t.Errorf("snapshot assumptions changed: %f", snap.Assumptions.EnrolledPercent)
	}
}

func TestRestore(t *testing.T) {
	s := New(model.DefaultAssumptions(), true)
	s.Add(rec("1111111111", "Jane Smith", 100, 10000))
	s.Add(rec("2222222222", "John Doe", 200, 20000))
	snap := s.Snapshot("roundtrip")

	other := New(model.AssumptionSet{}, false)
	other.Restore(snap)

	if other.Len() != 2 {
		t.Fatalf("Len after restore: got %d, want 2", other.Len())
	}
	if !other.ProfitMode() {
		t.Error("profit mode not restored")
	}
	if other.Assumptions() != model.DefaultAssumptions() {
		t.Errorf("assumptions not restored: %+v", other.Assumptions())
	}

	// Index rebuilt: dedup and removal work against restored contents.
	if other.Add(rec("1111111111", "Duplicate", 1, 1)) {
		t.Error("restored store should reject duplicate NPI")
	}
	if !other.Remove("2222222222") {
		t.Error("restored store should remove by NPI")
	}
}
