/*
Package budget
File: siphon.go
Description:
    The siphon chain: three configurable stages that compete, in a FIXED
    order, for the disposable funds left after costs are paid.

    1. Public Relations  - buys reputation
    2. Research Lab      - buys science (at a reputation cost)
    3. Big Project       - feeds the capped savings reserve

    Each stage consumes from the output of the previous one. The shared
    "disposable funds" value is threaded stage to stage as a plain local;
    nothing here touches the live fund balance (the engine commits the
    final delta in one go, see engine.go).
*/

package budget

import "math"

// Stage names used in results and notifications.
const (
	StagePublicRelations = "public_relations"
	StageResearchLab     = "research_lab"
	StageBigProject      = "big_project"
)

// SiphonResult records what one stage actually did with the funds it saw.
type SiphonResult struct {
	Stage string  `json:"stage"`
	Units float64 `json:"units"` // Reputation or science points granted; funds banked for big_project
	Spent float64 `json:"spent"` // Funds removed from the disposable pool
	Fee   float64 `json:"fee"`   // Transfer fee lost outright (big_project only)
}

// BigProjectAccount is the one siphon with persistent state: the reserve
// balance and the pending-zero flag used to defeat the editor rollback
// exploit (engine.go has the story).
type BigProjectAccount struct {
	Reserve     float64 `json:"reserve"`
	PendingZero bool    `json:"pending_zero"`
}

// ClampToCeiling enforces 0 <= Reserve <= ceiling. Called whenever the
// gross budget may have dropped, since the ceiling follows it down.
func (a *BigProjectAccount) ClampToCeiling(ceiling float64) {
	if a.Reserve > ceiling {
		a.Reserve = ceiling
	}
	if a.Reserve < 0 {
		a.Reserve = 0
	}
}

// round1 rounds to one decimal place. Grants are made in tenths of a
// point, matching what the host displays.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// siphonChain bundles everything the three stages need for one pass.
type siphonChain struct {
	policy  *Policy
	host    Host
	ledger  Ledger
	account *BigProjectAccount
	notify  Notifier
}

// Run executes the three stages in order and returns the funds left over
// plus a result entry per stage that actually fired.
func (c siphonChain) Run(disposable float64) (float64, []SiphonResult) {
	var results []SiphonResult

	disposable, prResult, prRan := c.publicRelations(disposable)
	if prRan {
		results = append(results, prResult)
		c.notify.Notify("siphon_"+StagePublicRelations, prResult)
	}

	disposable, labResult, labRan := c.researchLab(disposable)
	if labRan {
		results = append(results, labResult)
		c.notify.Notify("siphon_"+StageResearchLab, labResult)
	}

	disposable, bigResult, bigRan := c.bigProject(disposable)
	if bigRan {
		results = append(results, bigResult)
		c.notify.Notify("siphon_"+StageBigProject, bigResult)
	}

	return disposable, results
}

// desiredUnits applies the shared percentage contract: how many whole
// tenths of a unit can this stage buy out of the available funds?
func desiredUnits(available, unitCost, divertPercentage float64) float64 {
	if unitCost <= 0 {
		return 0
	}
	return round1(available / unitCost * divertPercentage / 100)
}

// publicRelations converts a slice of disposable funds into reputation.
func (c siphonChain) publicRelations(available float64) (float64, SiphonResult, bool) {
	cfg := c.policy.PublicRelations
	if available <= 0 || !cfg.Enabled || cfg.DivertPercentage <= 0 {
		return available, SiphonResult{}, false
	}
	units := desiredUnits(available, cfg.FundsPerRep, cfg.DivertPercentage)
	if units <= 0 {
		return available, SiphonResult{}, false
	}
	c.host.AddReputation(units)
	spent := units * cfg.FundsPerRep
	return available - spent, SiphonResult{Stage: StagePublicRelations, Units: units, Spent: spent}, true
}

// researchLab converts a slice of disposable funds into science. Diverting
// public money to the lab always costs reputation on the side, bounded so
// this stage alone can never push reputation below the floor.
func (c siphonChain) researchLab(available float64) (float64, SiphonResult, bool) {
	cfg := c.policy.ResearchLab
	if available <= 0 || !cfg.Enabled || cfg.DivertPercentage <= 0 {
		return available, SiphonResult{}, false
	}
	units := desiredUnits(available, cfg.SciencePointCost, cfg.DivertPercentage)
	if units <= 0 {
		return available, SiphonResult{}, false
	}
	c.host.AddScience(units)

	repPenalty := units
	if headroom := c.host.Reputation() - c.policy.MinimumRep; repPenalty > headroom {
		repPenalty = headroom
	}
	if repPenalty > 0 {
		c.host.AddReputation(-repPenalty)
	}

	spent := units * cfg.SciencePointCost
	return available - spent, SiphonResult{Stage: StageResearchLab, Units: units, Spent: spent}, true
}

// bigProject moves a slice of disposable funds into the savings reserve.
// Unlike the other two stages the take is capped by the reserve's remaining
// headroom, and a transfer fee is skimmed off the top. The fee is a pure
// loss: it leaves the disposable pool but is never credited anywhere.
func (c siphonChain) bigProject(available float64) (float64, SiphonResult, bool) {
	cfg := c.policy.BigProject
	if available <= 0 || !cfg.Enabled || cfg.DivertPercentage <= 0 {
		return available, SiphonResult{}, false
	}

	ceiling := c.ledger.GrossBudget() * cfg.ReserveMultiple
	maxAllowed := ceiling - c.account.Reserve
	if maxAllowed <= 0 {
		return available, SiphonResult{}, false
	}

	actual := available * cfg.DivertPercentage / 100
	if actual > maxAllowed {
		actual = maxAllowed
	}
	if actual <= 0 {
		return available, SiphonResult{}, false
	}

	fee := actual * cfg.FeePercent / 100
	banked := actual - fee
	c.account.Reserve += banked

	return available - actual, SiphonResult{Stage: StageBigProject, Units: banked, Spent: actual, Fee: fee}, true
}
