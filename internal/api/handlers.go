/*
Package api
File: handlers.go
Description:
    The HTTP surface of the treasury. These handlers process incoming
    JSON requests, validate them, drive the budget engine and the career
    world, and return JSON responses.

    Key Responsibilities:
    - Input Validation (Is the JSON valid? Does the entity exist?)
    - State Modification (Feeding host events into the engine)
    - Serialization (Everything the engine computes and a UI displays)

    The career world and the engine are single-threaded by contract. The
    Server's state lock is the one place that contract is enforced: every
    handler and the heartbeat take it before touching either.
*/

package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/orbitalworks/orbital-treasury/internal/budget"
	"github.com/orbitalworks/orbital-treasury/internal/save"
	"github.com/orbitalworks/orbital-treasury/internal/sim"
)

// Server owns the wired career, engine, hub and save store. One instance
// per process, constructed in main.
type Server struct {
	mu      sync.RWMutex // Guards career + engine. Handlers and heartbeat MUST hold it.
	career  *sim.Career
	engine  *budget.Engine
	hub     *Hub
	store   *save.Store
	presets map[string]sim.Preset
}

// NewServer wires the API surface. store may be nil in tests.
func NewServer(career *sim.Career, engine *budget.Engine, hub *Hub, store *save.Store, presets map[string]sim.Preset) *Server {
	return &Server{
		career:  career,
		engine:  engine,
		hub:     hub,
		store:   store,
		presets: presets,
	}
}

// Request DTOs (Data Transfer Objects)
// These structs define exactly what we expect the client to send us.

type RolloutRequest struct {
	Name     string              `json:"name"`
	Mass     float64             `json:"mass"`
	Type     budget.VesselType   `json:"type"`
	Facility budget.FacilityKind `json:"facility"`
}

type CrewStatusRequest struct {
	Name   string              `json:"name"`
	Status budget.RosterStatus `json:"status"`
}

type ContractOfferRequest struct {
	FundsReward float64 `json:"funds_reward"`
}

type SceneRequest struct {
	Scene budget.Scene `json:"scene"`
}

type PresetRequest struct {
	Name string `json:"name"`
}

type WarpRequest struct {
	Warp float64 `json:"warp"`
}

// BudgetReport is the read accessor bundle a UI polls between settlements.
type BudgetReport struct {
	UT             float64              `json:"ut"`
	Scene          budget.Scene         `json:"scene"`
	GrossBudget    float64              `json:"gross_budget"`
	NetEstimate    float64              `json:"net_estimate"`
	Costs          budget.CostBreakdown `json:"costs"`
	CostTotal      float64              `json:"cost_total"`
	ReserveBalance float64              `json:"reserve_balance"`
	ReserveCeiling float64              `json:"reserve_ceiling"`
	Clock          budget.BudgetClock   `json:"clock"`
	NextSettlement float64              `json:"next_settlement"`
}

// Routes assembles the HTTP mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Information Endpoints
	mux.HandleFunc("/api/budget", s.HandleGetBudget)
	mux.HandleFunc("/api/career", s.HandleGetCareer)
	mux.HandleFunc("/api/policy", s.HandlePolicy)

	// Host Event Endpoints
	mux.HandleFunc("/api/events/rollout", s.HandleRollout)
	mux.HandleFunc("/api/events/crew-status", s.HandleCrewStatus)
	mux.HandleFunc("/api/events/contract", s.HandleContractOffer)
	mux.HandleFunc("/api/scene", s.HandleScene)

	// Action Endpoints
	mux.HandleFunc("/api/facilities/recompute", s.HandleRecomputeFacilities)
	mux.HandleFunc("/api/reserve/withdraw", s.HandleWithdrawReserve)
	mux.HandleFunc("/api/policy/preset", s.HandleApplyPreset)
	mux.HandleFunc("/api/warp", s.HandleWarp)

	// Real-Time WebSocket Endpoint
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ServeWs(s.hub, w, r)
	})

	return mux
}

// Tick is the heartbeat body: advance simulated time, settle if a period
// elapsed, broadcast and persist the outcome. A failed settlement only
// logs; the clock was not advanced, so the next tick retries it.
func (s *Server) Tick(realSeconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.career.Advance(realSeconds)

	report, err := s.engine.SettleIfDue(s.career.UT())
	if err != nil {
		log.Printf("BUDGET: settlement failed (will retry next check): %v", err)
		return
	}
	if report == nil {
		return
	}

	log.Printf("BUDGET: period settled: gross %.0f, costs %.0f, net %.0f, reserve %.0f/%.0f",
		report.GrossBudget, report.Costs.Total(), report.Net, report.ReserveBalance, report.ReserveCeiling)
	if s.hub != nil {
		s.hub.Publish("settlement", report)
	}
	s.persistLocked()
}

// persistLocked writes the current snapshot. Caller must hold mu.
func (s *Server) persistLocked() {
	if s.store == nil {
		return
	}
	snap := save.Snapshot{
		Funds:      s.career.Funds(),
		Reputation: s.career.Reputation(),
		Science:    s.career.Science(),
		UT:         s.career.UT(),
		Engine:     s.engine.State(),
		Policy:     s.engine.Policy(),
	}
	if err := s.store.Write(snap); err != nil {
		log.Printf("SAVE: write failed: %v", err)
	}
}

// ReplacePolicy swaps in a freshly loaded policy and preset table
// (SIGHUP hot reload). World state is untouched.
func (s *Server) ReplacePolicy(policy budget.Policy, presets map[string]sim.Preset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.SetPolicy(policy)
	s.presets = presets
}

// Persist saves the current state (shutdown path).
func (s *Server) Persist() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persistLocked()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// HandleGetBudget returns everything a budget UI displays between
// settlements: entitlement, projected costs, reserve state, clock.
func (s *Server) HandleGetBudget(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock() // Read Lock (allows concurrent reads, blocks writes)
	defer s.mu.RUnlock()

	costs := s.engine.CurrentCosts()
	clock := s.engine.Clock()
	writeJSON(w, BudgetReport{
		UT:             s.career.UT(),
		Scene:          s.career.Scene(),
		GrossBudget:    s.engine.GrossBudget(),
		NetEstimate:    s.engine.NetEstimate(),
		Costs:          costs,
		CostTotal:      costs.Total(),
		ReserveBalance: s.engine.ReserveBalance(),
		ReserveCeiling: s.engine.ReserveCeiling(),
		Clock:          clock,
		NextSettlement: clock.LastPeriodStart + clock.PeriodLength,
	})
}

// HandleGetCareer returns the full world snapshot.
func (s *Server) HandleGetCareer(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	writeJSON(w, s.career.Snapshot())
}

// HandlePolicy reads (GET) or replaces (POST) the active policy. A posted
// policy is normalized before it takes effect, so out-of-range rates and
// percentages are clamped rather than rejected.
func (s *Server) HandlePolicy(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.mu.RLock()
		defer s.mu.RUnlock()
		writeJSON(w, s.engine.Policy())

	case http.MethodPost:
		var policy budget.Policy
		if err := json.NewDecoder(r.Body).Decode(&policy); err != nil {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		s.mu.Lock() // Write Lock (exclusive access required)
		defer s.mu.Unlock()
		s.engine.SetPolicy(policy)
		writeJSON(w, s.engine.Policy())

	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// HandleApplyPreset overlays a named difficulty preset onto the policy.
func (s *Server) HandleApplyPreset(w http.ResponseWriter, r *http.Request) {
	var req PresetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	preset, ok := s.presets[req.Name]
	if !ok {
		http.Error(w, "Preset not found", http.StatusNotFound)
		return
	}

	policy := s.engine.Policy()
	preset.Apply(&policy)
	s.engine.SetPolicy(policy)
	log.Printf("BUDGET: preset %q applied", req.Name)
	writeJSON(w, s.engine.Policy())
}

// HandleRollout registers a launch: the vessel joins the active list and
// the launch fee (if any) lands in the period accumulator.
func (s *Server) HandleRollout(w http.ResponseWriter, r *http.Request) {
	var req RolloutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if req.Mass < 0 {
		http.Error(w, "Negative mass", http.StatusBadRequest)
		return
	}
	if req.Type == "" {
		req.Type = budget.VesselShip
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.career.AddVessel(budget.Vessel{Name: req.Name, Mass: req.Mass, Type: req.Type})
	fee := s.engine.OnVesselRollout(req.Mass, req.Facility)
	writeJSON(w, map[string]float64{"fee": fee})
}

// HandleCrewStatus applies a roster transition. A transition to "lost"
// charges the reputation death penalty.
func (s *Server) HandleCrewStatus(w http.ResponseWriter, r *http.Request) {
	var req CrewStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	member, ok := s.career.UpdateCrewStatus(req.Name, req.Status)
	if !ok {
		http.Error(w, "Crew member not found", http.StatusNotFound)
		return
	}
	penalty := s.engine.OnCrewStatusChange(member, req.Status)
	writeJSON(w, map[string]float64{"penalty": penalty})
}

// HandleContractOffer runs a fund-reward contract through interception.
// With interception off the reward passes through untouched; with it on,
// the funds become reputation.
func (s *Server) HandleContractOffer(w http.ResponseWriter, r *http.Request) {
	var req ContractOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	funds, rep := s.engine.InterceptContract(req.FundsReward)
	if funds != 0 {
		if err := s.career.AddFunds(funds); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if rep != 0 {
		s.career.AddReputation(rep)
	}
	writeJSON(w, map[string]float64{"funds": funds, "reputation": rep})
}

// HandleScene switches the loaded scene. Arriving at the space center
// refreshes the facility maintenance archive, since that is the only
// scene where live facility levels can be read.
func (s *Server) HandleScene(w http.ResponseWriter, r *http.Request) {
	var req SceneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	switch req.Scene {
	case budget.SceneSpaceCenter, budget.SceneEditor, budget.SceneFlight, budget.SceneTracking:
	default:
		http.Error(w, "Unknown scene", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.career.SetScene(req.Scene)
	s.engine.OnSceneChange(req.Scene)
	if req.Scene == budget.SceneSpaceCenter {
		if err := s.engine.RecomputeFacilityMaintenanceArchive(); err != nil {
			log.Printf("BUDGET: facility archive refresh: %v", err)
		}
	}
	writeJSON(w, map[string]any{"scene": req.Scene})
}

// HandleRecomputeFacilities forces a facility archive refresh. Fails when
// the space center is not loaded.
func (s *Server) HandleRecomputeFacilities(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.engine.RecomputeFacilityMaintenanceArchive(); err != nil {
		http.Error(w, fmt.Sprintf("recompute: %v", err), http.StatusConflict)
		return
	}
	writeJSON(w, map[string]float64{"facility_maintenance": s.engine.CurrentCosts().FacilityMaintenance})
}

// HandleWithdrawReserve empties the big-project reserve into the account.
func (s *Server) HandleWithdrawReserve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	amount, err := s.engine.WithdrawReserve()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]float64{"amount": amount, "funds": s.career.Funds()})
}

// HandleWarp changes the simulated time warp factor.
func (s *Server) HandleWarp(w http.ResponseWriter, r *http.Request) {
	var req WarpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.career.SetWarp(req.Warp)
	writeJSON(w, map[string]float64{"warp": s.career.Warp()})
}
