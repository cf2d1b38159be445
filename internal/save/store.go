/*
Package save
File: store.go
Description:
    The persisted-state surface: a SQLite-backed table of named slots,
    one value per slot, so a career survives process restarts. Resource
    and engine state land in individual scalar slots; the policy travels
    as one YAML blob because its exact field layout is a config concern,
    not a storage one.
*/

package save

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"github.com/orbitalworks/orbital-treasury/internal/budget"
)

// Slot names. An implementation artifact, not a contract: bump them and
// old saves simply read as fresh careers.
const (
	slotFunds      = "career.funds"
	slotReputation = "career.reputation"
	slotScience    = "career.science"
	slotUT         = "career.ut"

	slotPeriodStart     = "clock.last_period_start"
	slotReserve         = "big_project.reserve"
	slotPendingZero     = "big_project.pending_zero"
	slotLaunchCosts     = "launch_costs.accumulated"
	slotFacilityArchive = "facility_maintenance.archive"

	slotPolicy = "policy"
)

// Snapshot is everything one save captures.
type Snapshot struct {
	Funds      float64
	Reputation float64
	Science    float64
	UT         float64
	Engine     budget.EngineState
	Policy     budget.Policy
}

// Store is the SQLite slot store.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a save file. WAL keeps the heartbeat's frequent
// small writes cheap.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("save path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open save db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping save db: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS career_state (
		slot  TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create career_state: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put writes one named slot.
func (s *Store) Put(slot, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO career_state (slot, value) VALUES (?, ?)
		 ON CONFLICT(slot) DO UPDATE SET value = excluded.value`,
		slot, value,
	)
	if err != nil {
		return fmt.Errorf("put slot %s: %w", slot, err)
	}
	return nil
}

// Get reads one named slot. The second return is false when the slot has
// never been written.
func (s *Store) Get(slot string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM career_state WHERE slot = ?`, slot).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get slot %s: %w", slot, err)
	}
	return value, true, nil
}

func (s *Store) getFloat(slot string) (float64, bool, error) {
	raw, ok, err := s.Get(slot)
	if err != nil || !ok {
		return 0, ok, err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("slot %s: %w", slot, err)
	}
	return v, true, nil
}

// Write persists a full snapshot. Settlements call this after every pass,
// so the balance on disk can never be more than one period stale.
func (s *Store) Write(snap Snapshot) error {
	policyBlob, err := yaml.Marshal(snap.Policy)
	if err != nil {
		return fmt.Errorf("marshal policy: %w", err)
	}

	writes := []struct {
		slot  string
		value string
	}{
		{slotFunds, strconv.FormatFloat(snap.Funds, 'g', -1, 64)},
		{slotReputation, strconv.FormatFloat(snap.Reputation, 'g', -1, 64)},
		{slotScience, strconv.FormatFloat(snap.Science, 'g', -1, 64)},
		{slotUT, strconv.FormatFloat(snap.UT, 'g', -1, 64)},
		{slotPeriodStart, strconv.FormatFloat(snap.Engine.LastPeriodStart, 'g', -1, 64)},
		{slotReserve, strconv.FormatFloat(snap.Engine.Reserve, 'g', -1, 64)},
		{slotPendingZero, strconv.FormatBool(snap.Engine.PendingZero)},
		{slotLaunchCosts, strconv.FormatFloat(snap.Engine.LaunchCosts, 'g', -1, 64)},
		{slotFacilityArchive, strconv.FormatFloat(snap.Engine.FacilityArchive, 'g', -1, 64)},
		{slotPolicy, string(policyBlob)},
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	for _, w := range writes {
		if _, err := tx.Exec(
			`INSERT INTO career_state (slot, value) VALUES (?, ?)
			 ON CONFLICT(slot) DO UPDATE SET value = excluded.value`,
			w.slot, w.value,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("save slot %s: %w", w.slot, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Read loads the last snapshot. The second return is false when the file
// holds no save yet (fresh career).
func (s *Store) Read() (Snapshot, bool, error) {
	var snap Snapshot

	policyBlob, ok, err := s.Get(slotPolicy)
	if err != nil {
		return snap, false, err
	}
	if !ok {
		return snap, false, nil
	}
	snap.Policy = budget.DefaultPolicy()
	if err := yaml.Unmarshal([]byte(policyBlob), &snap.Policy); err != nil {
		return snap, false, fmt.Errorf("unmarshal policy: %w", err)
	}
	snap.Policy.Normalize()

	floats := []struct {
		slot string
		dest *float64
	}{
		{slotFunds, &snap.Funds},
		{slotReputation, &snap.Reputation},
		{slotScience, &snap.Science},
		{slotUT, &snap.UT},
		{slotPeriodStart, &snap.Engine.LastPeriodStart},
		{slotReserve, &snap.Engine.Reserve},
		{slotLaunchCosts, &snap.Engine.LaunchCosts},
		{slotFacilityArchive, &snap.Engine.FacilityArchive},
	}
	for _, f := range floats {
		v, _, err := s.getFloat(f.slot)
		if err != nil {
			return snap, false, err
		}
		*f.dest = v
	}

	rawPending, ok, err := s.Get(slotPendingZero)
	if err != nil {
		return snap, false, err
	}
	if ok {
		snap.Engine.PendingZero, _ = strconv.ParseBool(rawPending)
	}

	return snap, true, nil
}
