/*
Package budget
File: reputation.go
Description:
    The reputation ledger wraps the host's raw reputation value with the
    budget model's floor and decay semantics. The funding entitlement
    (gross budget) is derived here because it is purely a function of
    effective reputation.
*/

package budget

// Ledger adapts the host reputation value to the budget model.
type Ledger struct {
	policy *Policy
	host   Host
}

// NewLedger wraps a host with the policy's reputation semantics.
func NewLedger(policy *Policy, host Host) Ledger {
	return Ledger{policy: policy, host: host}
}

// EffectiveReputation never reads below the configured floor: a disgraced
// agency still gets the minimum appropriation.
func (l Ledger) EffectiveReputation() float64 {
	rep := l.host.Reputation()
	if rep < l.policy.MinimumRep {
		return l.policy.MinimumRep
	}
	return rep
}

// GrossBudget is the period funding entitlement before any cost is paid.
func (l Ledger) GrossBudget() float64 {
	return l.EffectiveReputation() * l.policy.FundingPerRep
}

// ApplyDecay bleeds reputation toward the floor once per period. The decay
// amount is bounded by the distance to the floor, so decay alone can never
// push reputation below it (and never adds reputation when already below).
func (l Ledger) ApplyDecay() {
	if !l.policy.RepDecayEnabled {
		return
	}
	headroom := l.host.Reputation() - l.policy.MinimumRep
	decay := l.policy.RepDecayRate
	if decay > headroom {
		decay = headroom
	}
	if decay <= 0 {
		return
	}
	l.host.AddReputation(-decay)
}

// ApplyDeathPenalty charges the reputation cost of losing a crew member of
// the given experience level. It only fires while reputation is at or above
// the floor, and if the subtraction undershoots the floor the value is
// reset to exactly the floor. Note the asymmetry with ApplyDecay: decay is
// bounded before subtracting, the death penalty clamps after.
func (l Ledger) ApplyDeathPenalty(level int) float64 {
	if !l.policy.DeathPenaltyEnabled {
		return 0
	}
	rep := l.host.Reputation()
	if rep < l.policy.MinimumRep {
		return 0
	}
	penalty := l.policy.DeathPenaltyRate * float64(level+1)
	l.host.AddReputation(-penalty)
	if l.host.Reputation() < l.policy.MinimumRep {
		l.host.SetReputation(l.policy.MinimumRep)
	}
	return penalty
}
