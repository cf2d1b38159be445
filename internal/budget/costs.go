/*
Package budget
File: costs.go
Description:
    The non-discretionary cost calculators. Wages and vessel maintenance
    are pure functions over a world snapshot. Facility maintenance is
    computed on demand but ARCHIVED, because the host only answers
    facility-level queries while the space center is loaded. Launch fees
    accumulate event-by-event and drain once per settlement.
*/

package budget

import (
	"fmt"
	"math"
)

// CostBreakdown is the itemized bill a settlement pays before any siphon runs.
type CostBreakdown struct {
	WagesAssigned       float64 `json:"wages_assigned"`
	WagesIdle           float64 `json:"wages_idle"`
	VesselMaintenance   float64 `json:"vessel_maintenance"`
	FacilityMaintenance float64 `json:"facility_maintenance"`
	LaunchCosts         float64 `json:"launch_costs"`
}

// Total sums the breakdown.
func (c CostBreakdown) Total() float64 {
	return c.WagesAssigned + c.WagesIdle + c.VesselMaintenance + c.FacilityMaintenance + c.LaunchCosts
}

// Wages returns the period payroll, split into assigned and idle sums.
// Tourists never draw a wage. Disabled payroll returns zeros.
func Wages(p *Policy, crew []CrewMember) (assigned, idle float64) {
	if !p.WagesEnabled {
		return 0, 0
	}
	for _, member := range crew {
		if member.Type == TypeTourist {
			continue
		}
		// Wages scale with seniority: a level-0 rookie costs 1x the rate.
		seniority := float64(member.ExperienceLevel + 1)
		switch member.Status {
		case StatusAssigned:
			assigned += p.WageAssigned * seniority
		case StatusAvailable:
			idle += p.WageIdle * seniority
		}
	}
	return assigned, idle
}

// VesselMaintenance charges upkeep per 100 tons of active fleet mass.
// Debris, flags, tracked space objects, unknowns and EVA kerbals are free.
func VesselMaintenance(p *Policy, vessels []Vessel) float64 {
	if !p.VesselMaintenanceEnabled {
		return 0
	}
	total := 0.0
	for _, v := range vessels {
		switch v.Type {
		case VesselDebris, VesselFlag, VesselSpaceObject, VesselUnknown, VesselEVA:
			continue
		}
		total += v.Mass / 100 * p.VesselCostPer100t
	}
	return total
}

// FacilityLevelFromNormalized converts the host's 0.0-1.0 building level
// into the 1-based integer level the cost tables use. A building with two
// upgrade tiers yields levels 1..3.
func FacilityLevelFromNormalized(normalized float64, upgradeCount int) int {
	if upgradeCount < 0 {
		upgradeCount = 0
	}
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}
	return int(math.Round(normalized*float64(upgradeCount))) + 1
}

// CostTracker owns the two pieces of cost state that outlive a single
// query: the archived facility maintenance bill and the launch fee
// accumulator for the current period.
type CostTracker struct {
	facilityArchive float64
	launchCosts     float64
}

// RecomputeFacilityArchive rebuilds the recurring facility bill from live
// facility levels and stores it. Must only be called while the host can
// answer FacilityLevel queries; on any query error the previous archive is
// kept and the error returned.
func (t *CostTracker) RecomputeFacilityArchive(p *Policy, host Host) error {
	if !p.FacilityMaintenanceEnabled {
		t.facilityArchive = 0
		return nil
	}
	total := 0.0
	for _, kind := range RecurringFacilityKinds {
		level, err := host.FacilityLevel(kind)
		if err != nil {
			return fmt.Errorf("facility %s: %w", kind, err)
		}
		total += p.LevelMultiplier(level) * p.BaseCost(kind)
	}
	t.facilityArchive = total
	return nil
}

// FacilityArchive returns the last archived facility maintenance bill.
// Safe to call from any scene.
func (t *CostTracker) FacilityArchive() float64 {
	return t.facilityArchive
}

// AccumulateLaunch adds the rollout fee for one launch to the period
// accumulator and returns the fee charged. Level-1 launch facilities are
// free, as is anything under 100 tons.
func (t *CostTracker) AccumulateLaunch(p *Policy, mass float64, facility FacilityKind, level int) float64 {
	if !p.LaunchCostsEnabled || level <= 1 || mass < 100 {
		return 0
	}
	var rate float64
	switch facility {
	case FacilityLaunchPad:
		rate = p.LaunchCostPadPer100t
	case FacilityRunway:
		rate = p.LaunchCostRunwayPer100t
	default:
		return 0
	}
	fee := mass / 100 * rate * p.LevelMultiplier(level)
	t.launchCosts += fee
	return fee
}

// LaunchCosts returns the fees accumulated so far this period.
func (t *CostTracker) LaunchCosts() float64 {
	return t.launchCosts
}

// DrainLaunchCosts returns the accumulated fees and resets the accumulator
// for the next period. Called exactly once per settlement.
func (t *CostTracker) DrainLaunchCosts() float64 {
	drained := t.launchCosts
	t.launchCosts = 0
	return drained
}
