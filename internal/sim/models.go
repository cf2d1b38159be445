/*
Package sim
File: models.go
Description:
    Defines the structures that map the career YAML file. The file carries
    the starting world (funds, reputation, rosters, facilities), the budget
    policy, and named difficulty presets.

    No logic is performed here; this file is strictly for type definitions.
*/

package sim

import "github.com/orbitalworks/orbital-treasury/internal/budget"

// Facility is one upgradeable building as the host reports it: a
// normalized 0.0-1.0 level plus how many upgrade tiers the building has.
type Facility struct {
	Level    float64 `yaml:"level" json:"level"`
	Upgrades int     `yaml:"upgrades" json:"upgrades"`
}

// CareerConfig is the "career:" block of the YAML file.
type CareerConfig struct {
	Name       string                           `yaml:"name" json:"name"`
	Funds      float64                          `yaml:"funds" json:"funds"`
	Reputation float64                          `yaml:"reputation" json:"reputation"`
	Science    float64                          `yaml:"science" json:"science"`
	UT         float64                          `yaml:"ut" json:"ut"`     // Simulated seconds since career start
	Warp       float64                          `yaml:"warp" json:"warp"` // Simulated seconds per real second
	Scene      budget.Scene                     `yaml:"scene" json:"scene"`
	Crew       []budget.CrewMember              `yaml:"crew" json:"crew"`
	Vessels    []budget.Vessel                  `yaml:"vessels" json:"vessels"`
	Facilities map[budget.FacilityKind]Facility `yaml:"facilities" json:"facilities"`
}

// Preset is a named difficulty override. Only the knobs a preset names are
// applied; nil pointers leave the base policy untouched.
type Preset struct {
	PeriodDays           *float64 `yaml:"period_days"`
	FundingPerRep        *float64 `yaml:"funding_per_rep"`
	MinimumRep           *float64 `yaml:"minimum_rep"`
	RepDecayRate         *float64 `yaml:"rep_decay_rate"`
	DeathPenaltyRate     *float64 `yaml:"death_penalty_rate"`
	WageAssigned         *float64 `yaml:"wage_assigned"`
	WageIdle             *float64 `yaml:"wage_idle"`
	VesselCostPer100t    *float64 `yaml:"vessel_cost_per_100t"`
	CostForgiveness      *bool    `yaml:"cost_forgiveness"`
	ContractInterception *bool    `yaml:"contract_interception"`
}

// Apply overlays the preset's set knobs onto a policy.
func (pr Preset) Apply(p *budget.Policy) {
	if pr.PeriodDays != nil {
		p.PeriodDays = *pr.PeriodDays
	}
	if pr.FundingPerRep != nil {
		p.FundingPerRep = *pr.FundingPerRep
	}
	if pr.MinimumRep != nil {
		p.MinimumRep = *pr.MinimumRep
	}
	if pr.RepDecayRate != nil {
		p.RepDecayRate = *pr.RepDecayRate
	}
	if pr.DeathPenaltyRate != nil {
		p.DeathPenaltyRate = *pr.DeathPenaltyRate
	}
	if pr.WageAssigned != nil {
		p.WageAssigned = *pr.WageAssigned
	}
	if pr.WageIdle != nil {
		p.WageIdle = *pr.WageIdle
	}
	if pr.VesselCostPer100t != nil {
		p.VesselCostPer100t = *pr.VesselCostPer100t
	}
	if pr.CostForgiveness != nil {
		p.CostForgiveness = *pr.CostForgiveness
	}
	if pr.ContractInterception != nil {
		p.ContractInterception = *pr.ContractInterception
	}
}

// CareerFile is the root of the YAML document.
type CareerFile struct {
	Career  CareerConfig      `yaml:"career"`
	Policy  budget.Policy     `yaml:"policy"`
	Presets map[string]Preset `yaml:"presets"`
}
