/*
Package sim
File: career.go
Description:
    The simulated career world: the host-game state the budget engine
    treats as an external collaborator. It owns funds, reputation,
    science, the crew roster, the vessel list, the facility levels and
    the simulated clock, and implements the budget.Host contract.

    Loading mirrors the universe.yaml flow: read the file, unmarshal over
    defaults, fill in whatever a fresh career is missing.
*/

package sim

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/orbitalworks/orbital-treasury/internal/budget"
)

// ErrLocationNotLoaded is returned for facility queries outside the space
// center scene. Callers are expected to read the archived value instead.
var ErrLocationNotLoaded = errors.New("space center not loaded")

// Career is the live world state. It is NOT safe for concurrent use on its
// own; the API layer serializes access with its state lock.
type Career struct {
	name       string
	funds      float64
	reputation float64
	science    float64
	ut         float64
	warp       float64
	scene      budget.Scene
	crew       []budget.CrewMember
	vessels    []budget.Vessel
	facilities map[budget.FacilityKind]Facility
}

// Load reads a career file and returns the world, the normalized policy
// and the difficulty presets.
func Load(path string) (*Career, budget.Policy, map[string]Preset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, budget.Policy{}, nil, fmt.Errorf("read career file: %w", err)
	}

	// Unmarshal over the defaults so a sparse file stays playable.
	file := CareerFile{Policy: budget.DefaultPolicy()}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, budget.Policy{}, nil, fmt.Errorf("parse career file: %w", err)
	}
	file.Policy.Normalize()

	return NewCareer(file.Career), file.Policy, file.Presets, nil
}

// NewCareer builds a world from config, applying fresh-career defaults for
// anything the file leaves out.
func NewCareer(cfg CareerConfig) *Career {
	c := &Career{
		name:       cfg.Name,
		funds:      cfg.Funds,
		reputation: cfg.Reputation,
		science:    cfg.Science,
		ut:         cfg.UT,
		warp:       cfg.Warp,
		scene:      cfg.Scene,
		crew:       cfg.Crew,
		vessels:    cfg.Vessels,
		facilities: cfg.Facilities,
	}
	if c.name == "" {
		c.name = "Unnamed Space Program"
	}
	if c.warp <= 0 {
		c.warp = 1
	}
	if c.scene == "" {
		c.scene = budget.SceneSpaceCenter
	}
	if c.facilities == nil {
		c.facilities = make(map[budget.FacilityKind]Facility)
	}
	return c
}

// Snapshot exports the world in serializable form (API responses, saves).
func (c *Career) Snapshot() CareerConfig {
	return CareerConfig{
		Name:       c.name,
		Funds:      c.funds,
		Reputation: c.reputation,
		Science:    c.science,
		UT:         c.ut,
		Warp:       c.warp,
		Scene:      c.scene,
		Crew:       c.crew,
		Vessels:    c.vessels,
		Facilities: c.facilities,
	}
}

// Advance moves the simulated clock forward by realSeconds of wall time,
// scaled by the warp factor.
func (c *Career) Advance(realSeconds float64) {
	if realSeconds > 0 {
		c.ut += realSeconds * c.warp
	}
}

// UT reports the current simulated time in seconds.
func (c *Career) UT() float64 { return c.ut }

// Warp reports the time warp factor.
func (c *Career) Warp() float64 { return c.warp }

// SetWarp changes the time warp factor. Non-positive values pause at 1x
// rather than running time backwards.
func (c *Career) SetWarp(warp float64) {
	if warp <= 0 {
		warp = 1
	}
	c.warp = warp
}

// Name reports the career name.
func (c *Career) Name() string { return c.name }

// Scene reports which part of the host game is loaded.
func (c *Career) Scene() budget.Scene { return c.scene }

// SetScene switches the loaded scene.
func (c *Career) SetScene(scene budget.Scene) { c.scene = scene }

// Science reports banked science points.
func (c *Career) Science() float64 { return c.science }

// RestoreResources overwrites the resource state from a saved snapshot.
func (c *Career) RestoreResources(funds, reputation, science, ut float64) {
	c.funds = funds
	c.reputation = reputation
	c.science = science
	c.ut = ut
}

// SetCrew replaces the roster (crew status events, test setup).
func (c *Career) SetCrew(crew []budget.CrewMember) { c.crew = crew }

// UpdateCrewStatus flips one roster entry to a new status and returns the
// member, or false if no such name exists.
func (c *Career) UpdateCrewStatus(name string, status budget.RosterStatus) (budget.CrewMember, bool) {
	for i := range c.crew {
		if c.crew[i].Name == name {
			c.crew[i].Status = status
			return c.crew[i], true
		}
	}
	return budget.CrewMember{}, false
}

// SetVessels replaces the vessel list.
func (c *Career) SetVessels(vessels []budget.Vessel) { c.vessels = vessels }

// AddVessel appends a vessel (rollout events).
func (c *Career) AddVessel(v budget.Vessel) { c.vessels = append(c.vessels, v) }

// --- budget.Host implementation ---

// Funds reports the current account balance.
func (c *Career) Funds() float64 { return c.funds }

// AddFunds commits a fund delta. NaN and infinite deltas are rejected so a
// bad policy value cannot poison the balance.
func (c *Career) AddFunds(delta float64) error {
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return fmt.Errorf("refusing fund delta %v", delta)
	}
	c.funds += delta
	return nil
}

// Reputation reports current raw reputation.
func (c *Career) Reputation() float64 { return c.reputation }

// AddReputation adjusts reputation by delta.
func (c *Career) AddReputation(delta float64) { c.reputation += delta }

// SetReputation overwrites reputation exactly (hard clamps).
func (c *Career) SetReputation(value float64) { c.reputation = value }

// AddScience adds earned science points.
func (c *Career) AddScience(delta float64) { c.science += delta }

// Crew returns the current roster.
func (c *Career) Crew() []budget.CrewMember { return c.crew }

// Vessels returns the active vessel list.
func (c *Career) Vessels() []budget.Vessel { return c.vessels }

// FacilityLevel reports a building's 1-based level. Only valid while the
// space center is loaded; buildings missing from the map are base level.
func (c *Career) FacilityLevel(kind budget.FacilityKind) (int, error) {
	if c.scene != budget.SceneSpaceCenter {
		return 0, ErrLocationNotLoaded
	}
	f, ok := c.facilities[kind]
	if !ok {
		return 1, nil
	}
	return budget.FacilityLevelFromNormalized(f.Level, f.Upgrades), nil
}
