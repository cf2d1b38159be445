/*
Package budget
File: policy.go
Description:
    The Policy is the single bag of tunables every other component reads.
    It is loaded from the career YAML file at startup, optionally adjusted
    by a difficulty preset, and treated as immutable for the duration of
    one settlement pass.

    Convention: every percentage field is stored on a 0-100 scale and
    divided by 100 exactly once at the point of use. Normalize() enforces
    the ranges.
*/

package budget

import "math"

// SiphonConfig is the part every siphon stage shares: an on/off switch and
// the percentage of disposable funds the stage may divert.
type SiphonConfig struct {
	Enabled          bool    `yaml:"enabled" json:"enabled"`
	DivertPercentage float64 `yaml:"divert_percentage" json:"divert_percentage"` // 0-100
}

// PublicRelationsConfig buys reputation with disposable funds.
type PublicRelationsConfig struct {
	SiphonConfig `yaml:",inline"`
	FundsPerRep  float64 `yaml:"funds_per_rep" json:"funds_per_rep"` // Cost of 1.0 reputation point
}

// ResearchLabConfig buys science points with disposable funds. Spending on
// the lab always costs some reputation on the side (see siphon.go).
type ResearchLabConfig struct {
	SiphonConfig     `yaml:",inline"`
	SciencePointCost float64 `yaml:"science_point_cost" json:"science_point_cost"` // Cost of 1.0 science point
}

// BigProjectConfig feeds the capped savings reserve.
type BigProjectConfig struct {
	SiphonConfig    `yaml:",inline"`
	ReserveMultiple float64 `yaml:"reserve_multiple" json:"reserve_multiple"` // Ceiling = GrossBudget x this
	FeePercent      float64 `yaml:"fee_percent" json:"fee_percent"`           // Transfer fee, 0-100, pure loss
}

// Policy holds every tunable of the budget model.
type Policy struct {
	// Period timing
	PeriodDays     float64 `yaml:"period_days" json:"period_days"`
	DayLengthHours float64 `yaml:"day_length_hours" json:"day_length_hours"` // 6 for a Kerbin-style career, 24 otherwise

	// Funding entitlement
	FundingPerRep float64 `yaml:"funding_per_rep" json:"funding_per_rep"`
	MinimumRep    float64 `yaml:"minimum_rep" json:"minimum_rep"`

	// Reputation dynamics
	RepDecayEnabled     bool    `yaml:"rep_decay_enabled" json:"rep_decay_enabled"`
	RepDecayRate        float64 `yaml:"rep_decay_rate" json:"rep_decay_rate"` // Points lost per period
	DeathPenaltyEnabled bool    `yaml:"death_penalty_enabled" json:"death_penalty_enabled"`
	DeathPenaltyRate    float64 `yaml:"death_penalty_rate" json:"death_penalty_rate"` // Scaled by (XP level + 1)

	// Wages
	WagesEnabled bool    `yaml:"wages_enabled" json:"wages_enabled"`
	WageAssigned float64 `yaml:"wage_assigned" json:"wage_assigned"` // Per period, scaled by (XP level + 1)
	WageIdle     float64 `yaml:"wage_idle" json:"wage_idle"`

	// Vessel maintenance
	VesselMaintenanceEnabled bool    `yaml:"vessel_maintenance_enabled" json:"vessel_maintenance_enabled"`
	VesselCostPer100t        float64 `yaml:"vessel_cost_per_100t" json:"vessel_cost_per_100t"`

	// Facility maintenance (recurring kinds only; pad and runway are costed
	// at launch time instead). The lookup table replaces what the host mod
	// did with per-facility switch statements.
	FacilityMaintenanceEnabled bool                     `yaml:"facility_maintenance_enabled" json:"facility_maintenance_enabled"`
	FacilityBaseCost           map[FacilityKind]float64 `yaml:"facility_base_cost" json:"facility_base_cost"`

	// LevelMultipliers maps facility level 1..3 to a maintenance/launch
	// cost multiplier. Index 0 holds level 1.
	LevelMultipliers [3]float64 `yaml:"level_multipliers" json:"level_multipliers"`

	// Launch fees, charged per 100 tons on rollout
	LaunchCostsEnabled      bool    `yaml:"launch_costs_enabled" json:"launch_costs_enabled"`
	LaunchCostPadPer100t    float64 `yaml:"launch_cost_pad_per_100t" json:"launch_cost_pad_per_100t"`
	LaunchCostRunwayPer100t float64 `yaml:"launch_cost_runway_per_100t" json:"launch_cost_runway_per_100t"`

	// Behavior toggles
	ContractInterception bool `yaml:"contract_interception" json:"contract_interception"` // Contract fund rewards become reputation
	CostForgiveness      bool `yaml:"cost_forgiveness" json:"cost_forgiveness"`           // Negative net budgets are forgiven

	// Siphon stages, in execution order
	PublicRelations PublicRelationsConfig `yaml:"public_relations" json:"public_relations"`
	ResearchLab     ResearchLabConfig     `yaml:"research_lab" json:"research_lab"`
	BigProject      BigProjectConfig      `yaml:"big_project" json:"big_project"`
}

// DefaultPolicy returns the baseline ("normal" difficulty) tuning.
func DefaultPolicy() Policy {
	return Policy{
		PeriodDays:     30,
		DayLengthHours: 6,
		FundingPerRep:  2200,
		MinimumRep:     150,

		RepDecayEnabled:     true,
		RepDecayRate:        5,
		DeathPenaltyEnabled: true,
		DeathPenaltyRate:    15,

		WagesEnabled: true,
		WageAssigned: 2000,
		WageIdle:     1000,

		VesselMaintenanceEnabled: true,
		VesselCostPer100t:        500,

		FacilityMaintenanceEnabled: true,
		FacilityBaseCost: map[FacilityKind]float64{
			FacilityAdministration:   2000,
			FacilityAstronautComplex: 2000,
			FacilityMissionControl:   3000,
			FacilityResearch:         4000,
			FacilitySpaceplaneHangar: 4000,
			FacilityTrackingStation:  3000,
			FacilityAssemblyBuilding: 4000,
			FacilityOther:            1000,
			FacilityLaunchPad:        2000,
			FacilityRunway:           2000,
		},
		LevelMultipliers: [3]float64{1, 2, 4},

		LaunchCostsEnabled:      true,
		LaunchCostPadPer100t:    1000,
		LaunchCostRunwayPer100t: 1000,

		ContractInterception: false,
		CostForgiveness:      false,

		PublicRelations: PublicRelationsConfig{
			SiphonConfig: SiphonConfig{Enabled: false, DivertPercentage: 10},
			FundsPerRep:  10000,
		},
		ResearchLab: ResearchLabConfig{
			SiphonConfig:     SiphonConfig{Enabled: false, DivertPercentage: 10},
			SciencePointCost: 10000,
		},
		BigProject: BigProjectConfig{
			SiphonConfig:    SiphonConfig{Enabled: false, DivertPercentage: 25},
			ReserveMultiple: 1,
			FeePercent:      20,
		},
	}
}

// PeriodSeconds converts the configured period length to simulated seconds.
func (p *Policy) PeriodSeconds() float64 {
	return p.PeriodDays * p.DayLengthHours * 3600
}

// LevelMultiplier looks up the cost multiplier for a 1-based facility level.
// Out-of-range levels clamp to the table edges.
func (p *Policy) LevelMultiplier(level int) float64 {
	if level < 1 {
		level = 1
	}
	if level > len(p.LevelMultipliers) {
		level = len(p.LevelMultipliers)
	}
	return p.LevelMultipliers[level-1]
}

// BaseCost looks up the base maintenance/launch cost for a facility kind.
// Unknown kinds fall back to the "other" bucket.
func (p *Policy) BaseCost(kind FacilityKind) float64 {
	if cost, ok := p.FacilityBaseCost[kind]; ok {
		return cost
	}
	return p.FacilityBaseCost[FacilityOther]
}

// Normalize clamps every rate to >= 0 and every percentage to [0,100].
// Called after the policy is loaded or replaced; settlement assumes it holds.
func (p *Policy) Normalize() {
	clampRate := func(v *float64) {
		if *v < 0 || math.IsNaN(*v) {
			*v = 0
		}
	}
	clampPct := func(v *float64) {
		clampRate(v)
		if *v > 100 {
			*v = 100
		}
	}

	clampRate(&p.PeriodDays)
	if p.PeriodDays == 0 {
		p.PeriodDays = 1 // A zero-length period would settle every tick
	}
	clampRate(&p.DayLengthHours)
	if p.DayLengthHours == 0 {
		p.DayLengthHours = 24
	}
	clampRate(&p.FundingPerRep)
	clampRate(&p.MinimumRep)
	clampRate(&p.RepDecayRate)
	clampRate(&p.DeathPenaltyRate)
	clampRate(&p.WageAssigned)
	clampRate(&p.WageIdle)
	clampRate(&p.VesselCostPer100t)
	clampRate(&p.LaunchCostPadPer100t)
	clampRate(&p.LaunchCostRunwayPer100t)
	clampRate(&p.BigProject.ReserveMultiple)

	for kind, cost := range p.FacilityBaseCost {
		if cost < 0 || math.IsNaN(cost) {
			p.FacilityBaseCost[kind] = 0
		}
	}
	for i := range p.LevelMultipliers {
		clampRate(&p.LevelMultipliers[i])
	}

	clampPct(&p.PublicRelations.DivertPercentage)
	clampRate(&p.PublicRelations.FundsPerRep)
	clampPct(&p.ResearchLab.DivertPercentage)
	clampRate(&p.ResearchLab.SciencePointCost)
	clampPct(&p.BigProject.DivertPercentage)
	clampPct(&p.BigProject.FeePercent)
}
