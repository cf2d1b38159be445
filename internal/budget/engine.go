/*
Package budget
File: engine.go
Description:
    The budget period orchestrator. Watches simulated time, and when a
    period has elapsed runs one atomic settlement pass:

    costs -> net budget -> account top-up -> siphon chain -> commit.

    The pass operates on a local accounting value; the live balance is
    only touched at the top-up and the final commit. A failed pass leaves
    the clock alone so the next check retries it, which is why Settle
    returns a report-or-error instead of swallowing failures.
*/

package budget

import "fmt"

// BudgetClock tracks the period phase. LastPeriodStart advances by exactly
// one PeriodLength per settlement (never "now"), so a late check does not
// drift the schedule.
type BudgetClock struct {
	LastPeriodStart float64 `json:"last_period_start"` // Simulated UT seconds
	PeriodLength    float64 `json:"period_length"`     // Simulated seconds
}

// SettlementReport describes everything one settlement pass did.
type SettlementReport struct {
	PeriodStart      float64        `json:"period_start"`
	NextPeriodStart  float64        `json:"next_period_start"`
	GrossBudget      float64        `json:"gross_budget"`
	Costs            CostBreakdown  `json:"costs"`
	Net              float64        `json:"net"`
	DebtForgiven     bool           `json:"debt_forgiven"`
	TopUp            float64        `json:"top_up"`
	DisposableBefore float64        `json:"disposable_before"`
	DisposableAfter  float64        `json:"disposable_after"`
	Siphons          []SiphonResult `json:"siphons,omitempty"`
	ReserveBalance   float64        `json:"reserve_balance"`
	ReserveCeiling   float64        `json:"reserve_ceiling"`
}

// EngineState is the engine's mutable state in persistable form.
type EngineState struct {
	LastPeriodStart float64 `json:"last_period_start"`
	Reserve         float64 `json:"reserve"`
	PendingZero     bool    `json:"pending_zero"`
	LaunchCosts     float64 `json:"launch_costs"`
	FacilityArchive float64 `json:"facility_archive"`
}

// Engine is the orchestrator. One instance per career session, constructed
// by the composition root and handed its collaborators explicitly; there
// are no package-level singletons here.
type Engine struct {
	policy     Policy
	host       Host
	notify     Notifier
	clock      BudgetClock
	costs      CostTracker
	bigProject BigProjectAccount
	scene      Scene
}

// NewEngine wires an engine to its host. The budget clock starts its first
// period at nowUT; Restore overrides it when resuming a saved career.
func NewEngine(policy Policy, host Host, notify Notifier, nowUT float64) *Engine {
	policy.Normalize()
	if notify == nil {
		notify = NopNotifier{}
	}
	return &Engine{
		policy: policy,
		host:   host,
		notify: notify,
		clock: BudgetClock{
			LastPeriodStart: nowUT,
			PeriodLength:    policy.PeriodSeconds(),
		},
		scene: SceneSpaceCenter,
	}
}

func (e *Engine) ledger() Ledger {
	return NewLedger(&e.policy, e.host)
}

// Policy returns a copy of the active policy.
func (e *Engine) Policy() Policy {
	return e.policy
}

// SetPolicy replaces the active policy (player toggles, preset change).
// Applied between settlements; the next pass sees the new values.
func (e *Engine) SetPolicy(p Policy) {
	p.Normalize()
	e.policy = p
	e.clock.PeriodLength = p.PeriodSeconds()
	// The ceiling may have moved with the new tuning.
	e.bigProject.ClampToCeiling(e.ReserveCeiling())
}

// Clock returns the current budget clock.
func (e *Engine) Clock() BudgetClock {
	return e.clock
}

// GrossBudget is the funding entitlement at current reputation.
func (e *Engine) GrossBudget() float64 {
	return e.ledger().GrossBudget()
}

// ReserveBalance is the big-project savings balance.
func (e *Engine) ReserveBalance() float64 {
	return e.bigProject.Reserve
}

// ReserveCeiling is the maximum the reserve may hold at current reputation.
func (e *Engine) ReserveCeiling() float64 {
	return e.ledger().GrossBudget() * e.policy.BigProject.ReserveMultiple
}

// CurrentCosts itemizes what the next settlement would charge, using the
// archived facility bill and the launch fees accumulated so far.
func (e *Engine) CurrentCosts() CostBreakdown {
	assigned, idle := Wages(&e.policy, e.host.Crew())
	return CostBreakdown{
		WagesAssigned:       assigned,
		WagesIdle:           idle,
		VesselMaintenance:   VesselMaintenance(&e.policy, e.host.Vessels()),
		FacilityMaintenance: e.facilityMaintenance(),
		LaunchCosts:         e.costs.LaunchCosts(),
	}
}

// facilityMaintenance reads the archive, honoring the toggle so a stale
// archive never bills a disabled concern.
func (e *Engine) facilityMaintenance() float64 {
	if !e.policy.FacilityMaintenanceEnabled {
		return 0
	}
	return e.costs.FacilityArchive()
}

// NetEstimate previews the next period's net budget.
func (e *Engine) NetEstimate() float64 {
	net := e.GrossBudget() - e.CurrentCosts().Total()
	if net < 0 && e.policy.CostForgiveness {
		net = 0
	}
	return net
}

// SettleIfDue runs one settlement pass if a full period has elapsed.
// Returns (nil, nil) when not due. On error the clock is NOT advanced, so
// the caller's next check retries the same period.
func (e *Engine) SettleIfDue(now float64) (*SettlementReport, error) {
	period := e.policy.PeriodSeconds()
	e.clock.PeriodLength = period

	// Impossible clock condition (time warp rollback, save tampering):
	// step backward by whole periods until the start is sane again.
	for e.clock.LastPeriodStart > now {
		e.clock.LastPeriodStart -= period
	}

	if now-e.clock.LastPeriodStart < period {
		return nil, nil
	}

	report, err := e.settle()
	if err != nil {
		return nil, err
	}

	// 7. Advance by exactly one period. Not "now": a check that fires late
	// must not shift the phase of every future period.
	report.PeriodStart = e.clock.LastPeriodStart
	e.clock.LastPeriodStart += period

	// 8. Periodic reputation decay, then re-clamp the reserve since the
	// ceiling tracks gross budget downward.
	e.ledger().ApplyDecay()
	e.bigProject.ClampToCeiling(e.ReserveCeiling())
	report.ReserveBalance = e.bigProject.Reserve
	report.ReserveCeiling = e.ReserveCeiling()

	// 9. Remind the player when the next check lands.
	report.NextPeriodStart = e.clock.LastPeriodStart + period
	e.notify.Notify("next_period", map[string]float64{"ut": report.NextPeriodStart})

	return report, nil
}

// settle is steps 1-6 of the pass. Any error aborts before the clock moves.
func (e *Engine) settle() (*SettlementReport, error) {
	// 1. Resolve the pending editor-exploit fixup before anything reads
	// the reserve, and clamp it against the current ceiling.
	if e.bigProject.PendingZero {
		e.bigProject.Reserve = 0
		e.bigProject.PendingZero = false
	}
	e.bigProject.ClampToCeiling(e.ReserveCeiling())

	// 2. Itemize the non-discretionary bill. Launch fees drain here; the
	// accumulator starts the next period at zero.
	assigned, idle := Wages(&e.policy, e.host.Crew())
	costs := CostBreakdown{
		WagesAssigned:       assigned,
		WagesIdle:           idle,
		VesselMaintenance:   VesselMaintenance(&e.policy, e.host.Vessels()),
		FacilityMaintenance: e.facilityMaintenance(),
		LaunchCosts:         e.costs.DrainLaunchCosts(),
	}

	// 3. Net entitlement. A negative net is real debt unless forgiven.
	gross := e.ledger().GrossBudget()
	net := gross - costs.Total()
	forgiven := false
	if net < 0 && e.policy.CostForgiveness {
		net = 0
		forgiven = true
	}

	// 4. Top up the account to the net amount. Funds already above the net
	// budget are never clawed back here.
	topUp := 0.0
	if funds := e.host.Funds(); funds < net {
		topUp = net - funds
		if err := e.host.AddFunds(topUp); err != nil {
			return nil, fmt.Errorf("budget top-up: %w", err)
		}
	}

	// 5. Whatever the account now holds is disposable; thread it through
	// the siphon chain. Stages mutate reputation/science/reserve directly
	// but only ever see the local funds value.
	disposable := e.host.Funds()
	chain := siphonChain{
		policy:  &e.policy,
		host:    e.host,
		ledger:  e.ledger(),
		account: &e.bigProject,
		notify:  e.notify,
	}
	remaining, siphons := chain.Run(disposable)

	// 6. Commit the post-siphon balance. This is the moment siphoned funds
	// actually leave the account.
	if delta := remaining - e.host.Funds(); delta != 0 {
		if err := e.host.AddFunds(delta); err != nil {
			return nil, fmt.Errorf("siphon commit: %w", err)
		}
	}

	return &SettlementReport{
		GrossBudget:      gross,
		Costs:            costs,
		Net:              net,
		DebtForgiven:     forgiven,
		TopUp:            topUp,
		DisposableBefore: disposable,
		DisposableAfter:  remaining,
		Siphons:          siphons,
	}, nil
}

// OnVesselRollout handles a launch event from the host. The fee lands in
// the launch accumulator and is paid at the next settlement. If the host
// cannot answer the facility-level query right now, no fee is charged.
func (e *Engine) OnVesselRollout(mass float64, facility FacilityKind) float64 {
	level, err := e.host.FacilityLevel(facility)
	if err != nil {
		return 0
	}
	fee := e.costs.AccumulateLaunch(&e.policy, mass, facility, level)
	if fee > 0 {
		e.notify.Notify("launch_fee", map[string]any{"facility": facility, "fee": fee})
	}
	return fee
}

// OnCrewStatusChange handles a roster transition. Only a transition into
// the lost status matters: it charges the death penalty.
func (e *Engine) OnCrewStatusChange(member CrewMember, newStatus RosterStatus) float64 {
	if newStatus != StatusLost {
		return 0
	}
	penalty := e.ledger().ApplyDeathPenalty(member.ExperienceLevel)
	if penalty > 0 {
		// Reputation just dropped, so the reserve ceiling did too.
		e.bigProject.ClampToCeiling(e.ReserveCeiling())
		e.notify.Notify("crew_lost", map[string]any{"name": member.Name, "penalty": penalty})
	}
	return penalty
}

// OnSceneChange tracks which part of the host is loaded. Leaving the
// editor resolves the pending-zero fixup: if the reserve was withdrawn
// in-editor, its in-memory value is zeroed unconditionally here, before
// any other processing can read it. The editor rolls back fund changes on
// exit but not this engine's state, so without the flag a player could
// withdraw the reserve, revert the editor session, and keep both the
// funds and the reserve.
func (e *Engine) OnSceneChange(scene Scene) {
	e.scene = scene
	if scene != SceneEditor && e.bigProject.PendingZero {
		e.bigProject.Reserve = 0
		e.bigProject.PendingZero = false
	}
}

// Scene returns the scene the engine last saw.
func (e *Engine) Scene() Scene {
	return e.scene
}

// RecomputeFacilityMaintenanceArchive refreshes the archived facility bill
// from live levels. The composition root calls this whenever it knows the
// space center is loaded; settlements read the archive, never the live
// levels.
func (e *Engine) RecomputeFacilityMaintenanceArchive() error {
	return e.costs.RecomputeFacilityArchive(&e.policy, e.host)
}

// WithdrawReserve moves the whole reserve balance back into the account.
// Withdrawing while the editor is loaded arms the pending-zero flag (see
// OnSceneChange).
func (e *Engine) WithdrawReserve() (float64, error) {
	amount := e.bigProject.Reserve
	if amount <= 0 {
		return 0, nil
	}
	if err := e.host.AddFunds(amount); err != nil {
		return 0, fmt.Errorf("reserve withdrawal: %w", err)
	}
	e.bigProject.Reserve = 0
	if e.scene == SceneEditor {
		e.bigProject.PendingZero = true
	}
	e.notify.Notify("reserve_withdrawn", map[string]float64{"amount": amount})
	return amount, nil
}

// InterceptContract converts a contract's fund reward into reputation when
// interception is enabled: the agency is salaried, it does not work for
// prize money. Returns the adjusted fund and reputation rewards.
func (e *Engine) InterceptContract(fundsReward float64) (funds, reputation float64) {
	if !e.policy.ContractInterception || fundsReward <= 0 || e.policy.FundingPerRep <= 0 {
		return fundsReward, 0
	}
	return 0, round1(fundsReward / e.policy.FundingPerRep)
}

// State exports the engine's mutable state for persistence.
func (e *Engine) State() EngineState {
	return EngineState{
		LastPeriodStart: e.clock.LastPeriodStart,
		Reserve:         e.bigProject.Reserve,
		PendingZero:     e.bigProject.PendingZero,
		LaunchCosts:     e.costs.launchCosts,
		FacilityArchive: e.costs.facilityArchive,
	}
}

// Restore loads previously persisted engine state.
func (e *Engine) Restore(s EngineState) {
	e.clock.LastPeriodStart = s.LastPeriodStart
	e.bigProject.Reserve = s.Reserve
	e.bigProject.PendingZero = s.PendingZero
	e.costs.launchCosts = s.LaunchCosts
	e.costs.facilityArchive = s.FacilityArchive
}
