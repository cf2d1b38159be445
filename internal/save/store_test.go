package save

import (
	"path/filepath"
	"testing"

	"github.com/orbitalworks/orbital-treasury/internal/budget"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "treasury.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestFreshStoreHasNoSnapshot(t *testing.T) {
	store := openTestStore(t)
	_, ok, err := store.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if ok {
		t.Fatal("expected no snapshot in a fresh store")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := openTestStore(t)

	policy := budget.DefaultPolicy()
	policy.FundingPerRep = 3100
	policy.BigProject.Enabled = true
	policy.BigProject.DivertPercentage = 33

	want := Snapshot{
		Funds:      123456.5,
		Reputation: 210.25,
		Science:    44.4,
		UT:         648000,
		Engine: budget.EngineState{
			LastPeriodStart: 648000,
			Reserve:         16000,
			PendingZero:     true,
			LaunchCosts:     2500,
			FacilityArchive: 31000,
		},
		Policy: policy,
	}

	if err := store.Write(want); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, ok, err := store.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !ok {
		t.Fatal("expected a snapshot")
	}

	if got.Funds != want.Funds || got.Reputation != want.Reputation ||
		got.Science != want.Science || got.UT != want.UT {
		t.Fatalf("resources mismatch: %+v", got)
	}
	if got.Engine != want.Engine {
		t.Fatalf("engine state mismatch: %+v vs %+v", got.Engine, want.Engine)
	}
	if got.Policy.FundingPerRep != 3100 {
		t.Fatalf("policy funding_per_rep lost: %v", got.Policy.FundingPerRep)
	}
	if !got.Policy.BigProject.Enabled || got.Policy.BigProject.DivertPercentage != 33 {
		t.Fatalf("policy siphon config lost: %+v", got.Policy.BigProject)
	}
}

func TestWriteOverwritesSlots(t *testing.T) {
	store := openTestStore(t)

	first := Snapshot{Funds: 100, Policy: budget.DefaultPolicy()}
	second := Snapshot{Funds: 999, Policy: budget.DefaultPolicy()}

	if err := store.Write(first); err != nil {
		t.Fatalf("write first: %v", err)
	}
	if err := store.Write(second); err != nil {
		t.Fatalf("write second: %v", err)
	}

	got, ok, err := store.Read()
	if err != nil || !ok {
		t.Fatalf("read: %v %v", ok, err)
	}
	if got.Funds != 999 {
		t.Fatalf("expected latest funds 999, got %v", got.Funds)
	}
}

func TestRawSlotAccess(t *testing.T) {
	store := openTestStore(t)

	if _, ok, err := store.Get("custom.slot"); err != nil || ok {
		t.Fatalf("expected empty slot, got ok=%v err=%v", ok, err)
	}
	if err := store.Put("custom.slot", "hello"); err != nil {
		t.Fatalf("put: %v", err)
	}
	value, ok, err := store.Get("custom.slot")
	if err != nil || !ok || value != "hello" {
		t.Fatalf("expected hello, got %q ok=%v err=%v", value, ok, err)
	}
}
