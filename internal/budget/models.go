/*
Package budget
File: models.go
Description:
    Defines the data structures and collaborator contracts used by the
    budget engine. The engine never talks to the host game directly;
    everything it needs (funds, reputation, science, rosters, facility
    levels) comes in through the Host interface defined here.

    No logic is performed here; this file is strictly for type definitions.
*/

package budget

// RosterStatus describes what a crew member is currently doing.
type RosterStatus string

const (
	StatusAssigned  RosterStatus = "assigned"  // On an active mission
	StatusAvailable RosterStatus = "available" // Idle at the astronaut complex
	StatusLost      RosterStatus = "lost"      // Dead or missing in action
)

// KerbalType separates paying passengers from payroll crew.
type KerbalType string

const (
	TypeCrew      KerbalType = "crew"
	TypeTourist   KerbalType = "tourist" // Tourists pay us; they never draw a wage
	TypeApplicant KerbalType = "applicant"
)

// CrewMember is one entry in the host's crew roster.
type CrewMember struct {
	Name            string       `yaml:"name" json:"name"`
	ExperienceLevel int          `yaml:"level" json:"level"` // 0-5 in the host game
	Status          RosterStatus `yaml:"status" json:"status"`
	Type            KerbalType   `yaml:"type" json:"type"`
}

// VesselType classifies an entry in the host's vessel list.
type VesselType string

const (
	VesselShip        VesselType = "ship"
	VesselProbe       VesselType = "probe"
	VesselLander      VesselType = "lander"
	VesselStation     VesselType = "station"
	VesselBase        VesselType = "base"
	VesselPlane       VesselType = "plane"
	VesselRelay       VesselType = "relay"
	VesselDebris      VesselType = "debris"
	VesselFlag        VesselType = "flag"
	VesselSpaceObject VesselType = "space_object"
	VesselUnknown     VesselType = "unknown"
	VesselEVA         VesselType = "eva"
)

// Vessel is one entry in the host's active vessel list.
type Vessel struct {
	Name string     `yaml:"name" json:"name"`
	Mass float64    `yaml:"mass" json:"mass"` // Total mass in tons
	Type VesselType `yaml:"type" json:"type"`
}

// FacilityKind identifies one upgradeable building at the space center.
type FacilityKind string

const (
	FacilityAdministration   FacilityKind = "administration"
	FacilityAstronautComplex FacilityKind = "astronaut_complex"
	FacilityMissionControl   FacilityKind = "mission_control"
	FacilityResearch         FacilityKind = "research_and_development"
	FacilitySpaceplaneHangar FacilityKind = "spaceplane_hangar"
	FacilityTrackingStation  FacilityKind = "tracking_station"
	FacilityAssemblyBuilding FacilityKind = "vehicle_assembly_building"
	FacilityLaunchPad        FacilityKind = "launch_pad"
	FacilityRunway           FacilityKind = "runway"
	FacilityOther            FacilityKind = "other" // Catch-all for modded buildings
)

// RecurringFacilityKinds are the buildings that draw maintenance every period.
// The two launch facilities (pad, runway) are deliberately absent: they are
// costed per launch, not per period.
var RecurringFacilityKinds = []FacilityKind{
	FacilityAdministration,
	FacilityAstronautComplex,
	FacilityMissionControl,
	FacilityResearch,
	FacilitySpaceplaneHangar,
	FacilityTrackingStation,
	FacilityAssemblyBuilding,
	FacilityOther,
}

// Scene identifies which part of the host game is currently loaded.
// Facility level queries are only valid at the space center, and the
// vessel editor has its own fund-rollback semantics (see engine.go).
type Scene string

const (
	SceneSpaceCenter Scene = "space_center"
	SceneEditor      Scene = "editor"
	SceneFlight      Scene = "flight"
	SceneTracking    Scene = "tracking"
)

// Host is the collaborator surface the engine consumes. In production this
// is the simulated career state; tests substitute a stub.
//
// AddFunds is the only operation that can fail (the host may reject a
// commit); everything else is in-memory state the host always has.
type Host interface {
	Funds() float64
	AddFunds(delta float64) error

	Reputation() float64
	AddReputation(delta float64)
	SetReputation(value float64)

	AddScience(delta float64)

	Crew() []CrewMember
	Vessels() []Vessel

	// FacilityLevel reports the upgrade level (1-based) of a building.
	// Only valid while the space center is loaded; returns an error
	// otherwise. Callers that need the value at arbitrary times must go
	// through the maintenance archive instead (see costs.go).
	FacilityLevel(kind FacilityKind) (int, error)
}

// Notifier receives user-facing events (siphon grants, settlement reports,
// period reminders). The engine treats it as fire-and-forget.
type Notifier interface {
	Notify(kind string, payload any)
}

// NopNotifier discards all notifications. Used when no hub is attached.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(string, any) {}
