package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	azb "github.com/VanrothDEV/AZB-Raumschiff"
	kitlog "github.com/go-kit/kit/log"
)

// Runs the lunar landing mission, either from the built-in reference profile or
// from a TOML scenario file.

var (
	scenario string
	fast     bool
	short    bool
	verbose  bool
)

func init() {
	flag.StringVar(&scenario, "scenario", "", "mission scenario TOML file")
	flag.BoolVar(&fast, "fast", false, "5 s step and sparse telemetry")
	flag.BoolVar(&short, "short", false, "one simulated hour only")
	flag.BoolVar(&verbose, "verbose", false, "log every subsystem")
}

func main() {
	flag.Parse()

	cfg := azb.DefaultSimConfig()
	if scenario != "" {
		var err error
		cfg, err = azb.LoadScenario(scenario)
		if err != nil {
			log.Fatal(err)
		}
	}
	if fast {
		cfg.Step = 5
		cfg.TelemetryInterval = 600
	}
	if short {
		cfg.MaxTime = 3600
	}

	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	if !verbose {
		logger = levelFilter(logger)
	}

	result := azb.NewMission(cfg, logger).Run()

	fmt.Println("==================== MISSION REPORT ====================")
	if result.Success {
		fmt.Println("Status:        SUCCESS - lunar landing complete")
	} else {
		fmt.Printf("Status:        FAILED (%s)\n", result.Outcome)
	}
	hours := result.MissionTime / 3600
	fmt.Printf("Mission time:  %.1f h (%.2f d)\n", hours, hours/24)
	fmt.Printf("Fuel used:     %.0f kg\n", result.FuelUsed)
	fmt.Printf("Final phase:   %s\n", result.Phase)
	r, v := result.Final.R, result.Final.V
	fmt.Printf("Position:      [%.0f, %.0f, %.0f] km\n", r[0]/1e3, r[1]/1e3, r[2]/1e3)
	fmt.Printf("Velocity:      [%.1f, %.1f, %.1f] m/s\n", v[0], v[1], v[2])
	fmt.Printf("Telemetry:     %d packets\n", len(result.Telemetry.Packets()))
	fmt.Println("========================================================")

	if !result.Success {
		os.Exit(1)
	}
}

// levelFilter drops info-level records so only notices and worse reach stdout.
func levelFilter(next kitlog.Logger) kitlog.Logger {
	return kitlog.LoggerFunc(func(keyvals ...interface{}) error {
		for i := 0; i+1 < len(keyvals); i += 2 {
			if keyvals[i] == "level" && keyvals[i+1] == "info" {
				return nil
			}
		}
		return next.Log(keyvals...)
	})
}
