// Command replay re-executes a recorded session against a fresh kernel
// and verifies that every tick reproduces the logged state digest.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	ticklog "gridware.ai/internal/persistence/log"
	"gridware.ai/internal/sim/scenario"
	"gridware.ai/internal/sim/warehouse"
)

func main() {
	var (
		ticksPath    = flag.String("ticks", "", "path to a ticks.jsonl.zst session log")
		scenarioPath = flag.String("scenario", "", "scenario yaml the session ran with (empty = defaults)")
		seed         = flag.Int64("seed", 0, "override scenario seed (0 = keep scenario value)")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "[replay] ", log.LstdFlags|log.Lmicroseconds)

	if *ticksPath == "" {
		logger.Fatal("-ticks is required")
	}

	cfg, err := scenario.Load(*scenarioPath)
	if err != nil {
		logger.Fatalf("load scenario: %v", err)
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	env, err := warehouse.New(cfg)
	if err != nil {
		logger.Fatalf("build env: %v", err)
	}

	var checked, mismatched int
	err = ticklog.ReadTicks(*ticksPath, func(entry warehouse.TickLogEntry) bool {
		var got string
		switch {
		case len(entry.Actions) == 0 && entry.Step == 0:
			// Reset marker written by the server on explicit RESET.
			env.Reset()
			got = env.StateDigest()
		default:
			res, err := env.Step(entry.Actions)
			if err != nil {
				logger.Fatalf("episode %d step %d: %v", entry.Episode, entry.Step, err)
			}
			got = res.Digest
		}
		checked++
		if entry.Digest != "" && got != entry.Digest {
			mismatched++
			logger.Printf("digest mismatch at episode %d step %d (tick %d): log %s, replay %s",
				entry.Episode, entry.Step, entry.Tick, entry.Digest, got)
		}
		return true
	})
	if err != nil {
		logger.Fatalf("read ticks: %v", err)
	}

	if mismatched > 0 {
		logger.Fatalf("replay diverged: %d of %d ticks mismatched", mismatched, checked)
	}
	fmt.Printf("replay ok: %d ticks verified, final episode %d\n", checked, env.Episode())
}
