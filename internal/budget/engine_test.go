package budget

import "testing"

// quietPolicy disables every cost and siphon so settlement arithmetic can
// be tested in isolation. 30 six-hour days per period.
func quietPolicy() Policy {
	p := DefaultPolicy()
	p.WagesEnabled = false
	p.VesselMaintenanceEnabled = false
	p.FacilityMaintenanceEnabled = false
	p.LaunchCostsEnabled = false
	p.RepDecayEnabled = false
	p.PublicRelations.Enabled = false
	p.ResearchLab.Enabled = false
	p.BigProject.Enabled = false
	return p
}

type recordingNotifier struct {
	kinds []string
}

func (n *recordingNotifier) Notify(kind string, _ any) {
	n.kinds = append(n.kinds, kind)
}

func TestSettlementTopsUpToNetBudget(t *testing.T) {
	// Reputation 150 on a 150 floor at 2200 funds/rep: gross 330000.
	policy := quietPolicy()
	policy.MinimumRep = 150
	policy.FundingPerRep = 2200

	host := &fakeHost{rep: 150, funds: 10000}
	notify := &recordingNotifier{}
	engine := NewEngine(policy, host, notify, 0)
	period := policy.PeriodSeconds()

	report, err := engine.SettleIfDue(period)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if report == nil {
		t.Fatal("expected a settlement report")
	}
	if !almostEqual(report.GrossBudget, 330000) {
		t.Fatalf("expected gross 330000, got %v", report.GrossBudget)
	}
	if !almostEqual(report.TopUp, 320000) {
		t.Fatalf("expected top-up 320000, got %v", report.TopUp)
	}
	if !almostEqual(host.funds, 330000) {
		t.Fatalf("expected funds 330000, got %v", host.funds)
	}
	if engine.Clock().LastPeriodStart != period {
		t.Fatalf("expected clock advanced by one period, got %v", engine.Clock().LastPeriodStart)
	}
	if len(notify.kinds) == 0 || notify.kinds[len(notify.kinds)-1] != "next_period" {
		t.Fatalf("expected a next_period reminder, got %v", notify.kinds)
	}
}

func TestSettlementNotDue(t *testing.T) {
	policy := quietPolicy()
	host := &fakeHost{rep: 200, funds: 1000}
	engine := NewEngine(policy, host, nil, 0)

	report, err := engine.SettleIfDue(policy.PeriodSeconds() / 2)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if report != nil {
		t.Fatalf("expected no-op, got %+v", report)
	}
	if host.funds != 1000 {
		t.Fatalf("no-op check mutated funds: %v", host.funds)
	}
}

func TestSettlementNeverClawsBackFunds(t *testing.T) {
	policy := quietPolicy()
	policy.MinimumRep = 150
	policy.FundingPerRep = 2200

	// Already holding more than the 330000 net: no top-up, no claw-back.
	host := &fakeHost{rep: 150, funds: 500000}
	engine := NewEngine(policy, host, nil, 0)

	report, err := engine.SettleIfDue(policy.PeriodSeconds())
	if err != nil || report == nil {
		t.Fatalf("settle: %v %v", report, err)
	}
	if report.TopUp != 0 {
		t.Fatalf("expected no top-up, got %v", report.TopUp)
	}
	if host.funds != 500000 {
		t.Fatalf("expected funds untouched at 500000, got %v", host.funds)
	}
}

func TestSettlementDebtAndForgiveness(t *testing.T) {
	// One assigned level-0 crew member at a ruinous wage: costs exceed the
	// gross budget.
	base := quietPolicy()
	base.MinimumRep = 0
	base.FundingPerRep = 100
	base.WagesEnabled = true
	base.WageAssigned = 100000

	crew := []CrewMember{{Name: "Anate", ExperienceLevel: 0, Status: StatusAssigned, Type: TypeCrew}}

	t.Run("debt flows through", func(t *testing.T) {
		policy := base
		policy.CostForgiveness = false
		host := &fakeHost{rep: 100, funds: 0, crew: crew}
		engine := NewEngine(policy, host, nil, 0)

		report, err := engine.SettleIfDue(policy.PeriodSeconds())
		if err != nil || report == nil {
			t.Fatalf("settle: %v %v", report, err)
		}
		// Gross 10000, cost 100000: net -90000 is a real debit.
		if !almostEqual(report.Net, -90000) {
			t.Fatalf("expected net -90000, got %v", report.Net)
		}
		if !almostEqual(host.funds, -90000) {
			t.Fatalf("expected funds -90000, got %v", host.funds)
		}
	})

	t.Run("debt forgiven", func(t *testing.T) {
		policy := base
		policy.CostForgiveness = true
		host := &fakeHost{rep: 100, funds: 0, crew: crew}
		engine := NewEngine(policy, host, nil, 0)

		report, err := engine.SettleIfDue(policy.PeriodSeconds())
		if err != nil || report == nil {
			t.Fatalf("settle: %v %v", report, err)
		}
		if report.Net != 0 || !report.DebtForgiven {
			t.Fatalf("expected forgiven zero net, got %+v", report)
		}
		if host.funds != 0 {
			t.Fatalf("expected funds unchanged at 0, got %v", host.funds)
		}
	})
}

func TestLateSettlementPreservesPhase(t *testing.T) {
	policy := quietPolicy()
	host := &fakeHost{rep: 200}
	engine := NewEngine(policy, host, nil, 0)
	period := policy.PeriodSeconds()

	// The check fires late, 1.7 periods in. The clock must advance to
	// exactly one period, not to "now".
	if _, err := engine.SettleIfDue(1.7 * period); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if engine.Clock().LastPeriodStart != period {
		t.Fatalf("expected phase-preserving advance to %v, got %v", period, engine.Clock().LastPeriodStart)
	}

	// 0.2 periods later nothing is due yet.
	report, err := engine.SettleIfDue(1.9 * period)
	if err != nil || report != nil {
		t.Fatalf("expected quiet check, got %+v %v", report, err)
	}
}

func TestImpossibleClockStepsBackward(t *testing.T) {
	policy := quietPolicy()
	host := &fakeHost{rep: 200}
	engine := NewEngine(policy, host, nil, 0)
	period := policy.PeriodSeconds()

	// A clock from the future (warp rollback) steps back whole periods.
	engine.Restore(EngineState{LastPeriodStart: 10 * period})

	report, err := engine.SettleIfDue(2.5 * period)
	if err != nil || report != nil {
		t.Fatalf("expected corrected quiet check, got %+v %v", report, err)
	}
	if engine.Clock().LastPeriodStart != 2*period {
		t.Fatalf("expected correction to %v, got %v", 2*period, engine.Clock().LastPeriodStart)
	}
}

func TestFailedSettlementRetriesWithoutAdvancing(t *testing.T) {
	policy := quietPolicy()
	policy.MinimumRep = 150
	policy.FundingPerRep = 2200

	host := &fakeHost{rep: 150, funds: 0, addFundsErr: errHostDown}
	engine := NewEngine(policy, host, nil, 0)
	period := policy.PeriodSeconds()

	if _, err := engine.SettleIfDue(period); err == nil {
		t.Fatal("expected settlement failure")
	}
	if engine.Clock().LastPeriodStart != 0 {
		t.Fatalf("failed pass advanced the clock: %v", engine.Clock().LastPeriodStart)
	}

	// Host recovers: the same period settles on the next check.
	host.addFundsErr = nil
	report, err := engine.SettleIfDue(period)
	if err != nil || report == nil {
		t.Fatalf("retry failed: %+v %v", report, err)
	}
	if engine.Clock().LastPeriodStart != period {
		t.Fatalf("expected clock advanced on retry, got %v", engine.Clock().LastPeriodStart)
	}
}

func TestReserveClampedAfterDecay(t *testing.T) {
	policy := quietPolicy()
	policy.MinimumRep = 100
	policy.FundingPerRep = 1000
	policy.RepDecayEnabled = true
	policy.RepDecayRate = 50
	policy.BigProject.ReserveMultiple = 1

	// Reserve sits exactly on the 200000 ceiling; decay drops reputation
	// to 150, the ceiling to 150000, and the reserve must follow.
	host := &fakeHost{rep: 200, funds: 300000}
	engine := NewEngine(policy, host, nil, 0)
	engine.Restore(EngineState{Reserve: 200000})

	report, err := engine.SettleIfDue(policy.PeriodSeconds())
	if err != nil || report == nil {
		t.Fatalf("settle: %v %v", report, err)
	}
	if !almostEqual(host.rep, 150) {
		t.Fatalf("expected decayed reputation 150, got %v", host.rep)
	}
	if !almostEqual(engine.ReserveBalance(), 150000) {
		t.Fatalf("expected reserve clamped to 150000, got %v", engine.ReserveBalance())
	}
	if !almostEqual(report.ReserveCeiling, 150000) {
		t.Fatalf("expected reported ceiling 150000, got %v", report.ReserveCeiling)
	}
}

func TestEditorWithdrawalExploitFixup(t *testing.T) {
	policy := quietPolicy()
	host := &fakeHost{rep: 500, funds: 0}
	engine := NewEngine(policy, host, nil, 0)

	// Withdraw the reserve while the editor is loaded.
	engine.Restore(EngineState{Reserve: 50000})
	engine.OnSceneChange(SceneEditor)
	amount, err := engine.WithdrawReserve()
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if amount != 50000 || host.funds != 50000 {
		t.Fatalf("expected 50000 withdrawn, got %v (funds %v)", amount, host.funds)
	}

	// The editor rolls back fund state on exit but not the engine's; the
	// pending flag must zero a restored reserve on the next scene change.
	engine.Restore(EngineState{Reserve: 50000, PendingZero: true})
	engine.OnSceneChange(SceneSpaceCenter)
	if engine.ReserveBalance() != 0 {
		t.Fatalf("expected reserve zeroed after leaving editor, got %v", engine.ReserveBalance())
	}
}

func TestPendingZeroResolvedAtSettlement(t *testing.T) {
	policy := quietPolicy()
	host := &fakeHost{rep: 500, funds: 1000000}
	engine := NewEngine(policy, host, nil, 0)

	// Flag armed against a restored reserve, no scene change before the
	// settlement fires: step 1 must resolve it.
	engine.Restore(EngineState{Reserve: 75000, PendingZero: true})

	report, err := engine.SettleIfDue(policy.PeriodSeconds())
	if err != nil || report == nil {
		t.Fatalf("settle: %v %v", report, err)
	}
	if engine.ReserveBalance() != 0 {
		t.Fatalf("expected reserve zeroed by settlement, got %v", engine.ReserveBalance())
	}
}

func TestWithdrawOutsideEditorDoesNotArmFlag(t *testing.T) {
	policy := quietPolicy()
	host := &fakeHost{rep: 500}
	engine := NewEngine(policy, host, nil, 0)

	engine.Restore(EngineState{Reserve: 1000})
	engine.OnSceneChange(SceneSpaceCenter)
	if _, err := engine.WithdrawReserve(); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if engine.State().PendingZero {
		t.Fatal("flag armed outside the editor")
	}
}

func TestContractInterception(t *testing.T) {
	policy := quietPolicy()
	policy.FundingPerRep = 2200

	host := &fakeHost{}
	engine := NewEngine(policy, host, nil, 0)

	// Off: rewards pass through.
	funds, rep := engine.InterceptContract(22000)
	if funds != 22000 || rep != 0 {
		t.Fatalf("expected pass-through, got %v/%v", funds, rep)
	}

	// On: funds become reputation at the funding rate.
	policy.ContractInterception = true
	engine.SetPolicy(policy)
	funds, rep = engine.InterceptContract(22000)
	if funds != 0 || !almostEqual(rep, 10) {
		t.Fatalf("expected 0 funds / 10 rep, got %v/%v", funds, rep)
	}
}

func TestOnCrewStatusChange(t *testing.T) {
	policy := quietPolicy()
	policy.MinimumRep = 150
	policy.DeathPenaltyEnabled = true
	policy.DeathPenaltyRate = 15

	host := &fakeHost{rep: 200}
	engine := NewEngine(policy, host, nil, 0)

	member := CrewMember{Name: "Dunrod", ExperienceLevel: 2, Type: TypeCrew}

	// Non-lost transitions are free.
	if penalty := engine.OnCrewStatusChange(member, StatusAvailable); penalty != 0 {
		t.Fatalf("expected no penalty, got %v", penalty)
	}

	// Scenario: level 2 loss at rate 15 charges 45 points.
	if penalty := engine.OnCrewStatusChange(member, StatusLost); !almostEqual(penalty, 45) {
		t.Fatalf("expected penalty 45, got %v", penalty)
	}
	if !almostEqual(host.rep, 155) {
		t.Fatalf("expected reputation 155, got %v", host.rep)
	}
}

func TestStateRoundTrip(t *testing.T) {
	policy := quietPolicy()
	host := &fakeHost{rep: 100}
	engine := NewEngine(policy, host, nil, 0)

	want := EngineState{
		LastPeriodStart: 648000,
		Reserve:         12345,
		PendingZero:     true,
		LaunchCosts:     678,
		FacilityArchive: 9100,
	}
	engine.Restore(want)

	if got := engine.State(); got != want {
		t.Fatalf("state round trip mismatch: %+v vs %+v", got, want)
	}
}
