package budget

import "testing"

func TestWages(t *testing.T) {
	policy := DefaultPolicy()
	policy.WagesEnabled = true
	policy.WageAssigned = 2000
	policy.WageIdle = 1000

	crew := []CrewMember{
		{Name: "Jeb", ExperienceLevel: 3, Status: StatusAssigned, Type: TypeCrew},  // 2000 x 4
		{Name: "Bob", ExperienceLevel: 1, Status: StatusAvailable, Type: TypeCrew}, // 1000 x 2
		{Name: "Tour", ExperienceLevel: 5, Status: StatusAssigned, Type: TypeTourist},
		{Name: "Gone", ExperienceLevel: 4, Status: StatusLost, Type: TypeCrew},
	}

	assigned, idle := Wages(&policy, crew)
	if !almostEqual(assigned, 8000) {
		t.Fatalf("expected assigned wages 8000, got %v", assigned)
	}
	if !almostEqual(idle, 2000) {
		t.Fatalf("expected idle wages 2000, got %v", idle)
	}

	policy.WagesEnabled = false
	assigned, idle = Wages(&policy, crew)
	if assigned != 0 || idle != 0 {
		t.Fatalf("disabled wages must be zero, got %v/%v", assigned, idle)
	}
}

func TestVesselMaintenance(t *testing.T) {
	policy := DefaultPolicy()
	policy.VesselMaintenanceEnabled = true
	policy.VesselCostPer100t = 500

	vessels := []Vessel{
		{Name: "Station", Mass: 200, Type: VesselStation}, // 1000
		{Name: "Probe", Mass: 50, Type: VesselProbe},      // 250
		{Name: "Junk", Mass: 900, Type: VesselDebris},     // free
		{Name: "Flag", Mass: 0.1, Type: VesselFlag},       // free
		{Name: "Rock", Mass: 5000, Type: VesselSpaceObject},
		{Name: "???", Mass: 100, Type: VesselUnknown},
		{Name: "Strander", Mass: 0.09, Type: VesselEVA},
	}

	got := VesselMaintenance(&policy, vessels)
	if !almostEqual(got, 1250) {
		t.Fatalf("expected 1250 maintenance, got %v", got)
	}

	policy.VesselMaintenanceEnabled = false
	if got := VesselMaintenance(&policy, vessels); got != 0 {
		t.Fatalf("disabled maintenance must be zero, got %v", got)
	}
}

func TestFacilityLevelFromNormalized(t *testing.T) {
	tests := []struct {
		normalized float64
		upgrades   int
		want       int
	}{
		{0.0, 2, 1},
		{0.5, 2, 2},
		{1.0, 2, 3},
		{0.24, 2, 1},  // rounds down
		{0.26, 2, 2},  // rounds up
		{-0.5, 2, 1},  // clamped input
		{1.5, 2, 3},   // clamped input
		{0.7, 0, 1},   // no upgrade tiers
		{0.5, -3, 1},  // nonsense upgrade count
	}
	for _, tt := range tests {
		if got := FacilityLevelFromNormalized(tt.normalized, tt.upgrades); got != tt.want {
			t.Fatalf("level(%v, %d): expected %d, got %d", tt.normalized, tt.upgrades, tt.want, got)
		}
	}
}

func TestFacilityMaintenanceArchive(t *testing.T) {
	policy := DefaultPolicy()
	policy.FacilityMaintenanceEnabled = true

	host := &fakeHost{facilities: map[FacilityKind]int{
		FacilityAssemblyBuilding: 2,
		FacilityTrackingStation:  3,
		// Pad level is high but must not appear in the recurring bill.
		FacilityLaunchPad: 3,
	}}

	var tracker CostTracker
	if err := tracker.RecomputeFacilityArchive(&policy, host); err != nil {
		t.Fatalf("recompute: %v", err)
	}

	// Expected: every recurring kind at level 1 except VAB (x2) and
	// tracking station (x4), using the default base cost table.
	want := 0.0
	for _, kind := range RecurringFacilityKinds {
		mult := 1.0
		switch kind {
		case FacilityAssemblyBuilding:
			mult = 2
		case FacilityTrackingStation:
			mult = 4
		}
		want += mult * policy.BaseCost(kind)
	}
	if !almostEqual(tracker.FacilityArchive(), want) {
		t.Fatalf("expected archive %v, got %v", want, tracker.FacilityArchive())
	}

	// A failed recompute keeps the previous archive.
	host.facilityErr = errHostDown
	if err := tracker.RecomputeFacilityArchive(&policy, host); err == nil {
		t.Fatal("expected recompute error")
	}
	if !almostEqual(tracker.FacilityArchive(), want) {
		t.Fatalf("failed recompute clobbered the archive: %v", tracker.FacilityArchive())
	}
}

func TestLaunchCostAccumulator(t *testing.T) {
	policy := DefaultPolicy()
	policy.LaunchCostsEnabled = true
	policy.LaunchCostPadPer100t = 1000
	policy.LaunchCostRunwayPer100t = 500

	var tracker CostTracker

	tests := []struct {
		name     string
		mass     float64
		facility FacilityKind
		level    int
		wantFee  float64
	}{
		{"base level pad is free", 300, FacilityLaunchPad, 1, 0},
		{"light vehicle is free", 99.9, FacilityLaunchPad, 3, 0},
		{"pad level 2", 200, FacilityLaunchPad, 2, 200.0 / 100 * 1000 * 2},
		{"runway level 3", 150, FacilityRunway, 3, 150.0 / 100 * 500 * 4},
		{"non-launch facility", 500, FacilityResearch, 3, 0},
	}

	total := 0.0
	for _, tt := range tests {
		fee := tracker.AccumulateLaunch(&policy, tt.mass, tt.facility, tt.level)
		if !almostEqual(fee, tt.wantFee) {
			t.Fatalf("%s: expected fee %v, got %v", tt.name, tt.wantFee, fee)
		}
		total += fee
	}

	if !almostEqual(tracker.LaunchCosts(), total) {
		t.Fatalf("expected accumulator %v, got %v", total, tracker.LaunchCosts())
	}

	// Draining reads once and resets.
	if drained := tracker.DrainLaunchCosts(); !almostEqual(drained, total) {
		t.Fatalf("expected drain %v, got %v", total, drained)
	}
	if tracker.LaunchCosts() != 0 {
		t.Fatalf("expected empty accumulator after drain, got %v", tracker.LaunchCosts())
	}

	// Disabled launch costs never accumulate.
	policy.LaunchCostsEnabled = false
	if fee := tracker.AccumulateLaunch(&policy, 500, FacilityLaunchPad, 3); fee != 0 {
		t.Fatalf("disabled launch costs charged %v", fee)
	}
}

func TestCostsAreNonNegative(t *testing.T) {
	// A normalized policy guarantees non-negative rates; every calculator
	// must then return >= 0 for any world.
	policy := DefaultPolicy()
	policy.WageAssigned = -50
	policy.VesselCostPer100t = -1
	policy.Normalize()

	crew := []CrewMember{{ExperienceLevel: 5, Status: StatusAssigned, Type: TypeCrew}}
	vessels := []Vessel{{Mass: 1000, Type: VesselShip}}

	assigned, idle := Wages(&policy, crew)
	if assigned < 0 || idle < 0 {
		t.Fatalf("negative wages: %v/%v", assigned, idle)
	}
	if got := VesselMaintenance(&policy, vessels); got < 0 {
		t.Fatalf("negative vessel maintenance: %v", got)
	}

	breakdown := CostBreakdown{WagesAssigned: assigned, WagesIdle: idle}
	if breakdown.Total() < 0 {
		t.Fatalf("negative total: %v", breakdown.Total())
	}
}
