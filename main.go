/*
Package main
File: main.go
Description: Server entry point. Loads the career and its budget policy,
restores any saved state, wires the engine to the real-time WebSocket hub,
and runs the background heartbeat that keeps simulated time moving.
*/

package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/orbitalworks/orbital-treasury/internal/api"
	"github.com/orbitalworks/orbital-treasury/internal/budget"
	"github.com/orbitalworks/orbital-treasury/internal/save"
	"github.com/orbitalworks/orbital-treasury/internal/sim"
)

// serverConfig holds the runtime knobs that are deployment concerns, not
// career tuning. Everything gameplay-related lives in the career file.
type serverConfig struct {
	Addr        string `env:"TREASURY_ADDR" envDefault:":8081"`
	CareerFile  string `env:"TREASURY_CAREER" envDefault:"career.yaml"`
	SaveFile    string `env:"TREASURY_SAVE" envDefault:"treasury.db"`
	TickSeconds int    `env:"TREASURY_TICK_SECONDS" envDefault:"1"`
}

func main() {
	// 1. Runtime configuration from the environment
	var cfg serverConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("Config Fail: %v", err)
	}
	if cfg.TickSeconds < 1 {
		cfg.TickSeconds = 1
	}

	// 2. Load the career world, policy and difficulty presets from YAML
	career, policy, presets, err := sim.Load(cfg.CareerFile)
	if err != nil {
		log.Fatalf("Career Fail: %v", err)
	}

	// 3. Open the save store and restore the previous session, if any
	store, err := save.Open(cfg.SaveFile)
	if err != nil {
		log.Fatalf("Save Fail: %v", err)
	}
	snap, restored, err := store.Read()
	if err != nil {
		log.Fatalf("Save Restore Fail: %v", err)
	}

	// 4. Initialize and start the real-time WebSocket hub
	hub := api.NewHub()
	go hub.Run()

	// 5. Wire the budget engine to its collaborators. The engine is built
	// exactly once here; nothing else may construct one for this career.
	if restored {
		log.Printf("SAVE: resuming career %q at UT %.0f", career.Name(), snap.UT)
		career.RestoreResources(snap.Funds, snap.Reputation, snap.Science, snap.UT)
		policy = snap.Policy
	}
	engine := budget.NewEngine(policy, career, api.HubNotifier{Hub: hub}, career.UT())
	if restored {
		engine.Restore(snap.Engine)
	}

	// Prime the facility maintenance archive while the space center is the
	// freshly loaded scene. Later refreshes ride on scene changes.
	if err := engine.RecomputeFacilityMaintenanceArchive(); err != nil {
		log.Printf("BUDGET: initial facility archive: %v", err)
	}

	server := api.NewServer(career, engine, hub, store, presets)

	// 6. THE BUDGET HEARTBEAT
	// Advances simulated time and settles the period when one has elapsed.
	// A failed pass leaves the clock alone and retries on the next tick.
	tick := time.Duration(cfg.TickSeconds) * time.Second
	go func() {
		ticker := time.NewTicker(tick)
		for range ticker.C {
			server.Tick(tick.Seconds())
		}
	}()

	// 7. Hot-reload logic: SIGHUP re-reads the career file's policy and
	// presets without restarting (world state is left alone).
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGHUP)
		for {
			<-sigChan
			log.Println("SIGNAL: Reloading policy & presets...")
			if _, newPolicy, newPresets, err := sim.Load(cfg.CareerFile); err != nil {
				log.Printf("Reload failed: %v", err)
			} else {
				server.ReplacePolicy(newPolicy, newPresets)
			}
		}
	}()

	// 8. Graceful shutdown: save the career before exiting
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("SIGNAL: Saving and shutting down...")
		server.Persist()
		if err := store.Close(); err != nil {
			log.Printf("SAVE: close: %v", err)
		}
		os.Exit(0)
	}()

	// 9. Start the server
	log.Printf("ORBITAL TREASURY Server live on %s", cfg.Addr)
	log.Printf("Career: %q | Period: %.0f days | Real-time Hub: Online",
		career.Name(), policy.PeriodDays)

	if err := http.ListenAndServe(cfg.Addr, corsMiddleware(server.Routes())); err != nil {
		log.Fatal(err)
	}
}

// corsMiddleware lets a browser-based mission-control client talk to the
// service across domains.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
