// README: Offline replay; runs the conflict scan and an auto-assign plan over a snapshot file.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	_ "time/tzdata"

	"fleetdispatch/internal/config"
	"fleetdispatch/internal/modules/dispatch"
	"fleetdispatch/internal/modules/routes"
	"fleetdispatch/internal/modules/scheduling"
)

type Config struct {
	SnapshotPath     string
	Date             string
	ReleaseConflicts bool
	JSON             bool
}

func main() {
	cfg := loadConfig()
	appCfg, err := config.Load()
	if err != nil {
		fail(err)
	}
	policy, err := dispatch.PolicyFromConfig(appCfg.Policy)
	if err != nil {
		fail(err)
	}
	if appCfg.Policy.RoutesFile != "" {
		entries, err := routes.LoadFile(appCfg.Policy.RoutesFile)
		if err != nil {
			fail(err)
		}
		policy.Routes = routes.NewService(policy.Routes, entries, nil).Table()
	}

	snap, err := readSnapshot(cfg.SnapshotPath)
	if err != nil {
		fail(err)
	}
	out := Replay(scheduling.NewEngine(policy), snap, cfg.Date, cfg.ReleaseConflicts)
	if cfg.JSON {
		err = out.WriteJSON(os.Stdout)
	} else {
		out.WriteText(os.Stdout)
	}
	if err != nil {
		fail(err)
	}
	if len(out.After.ConflictIDs) > 0 {
		os.Exit(2)
	}
}

func loadConfig() Config {
	var cfg Config
	flag.StringVar(&cfg.SnapshotPath, "snapshot", envOrDefault("DISPATCH_REPLAY_SNAPSHOT", "snapshot.json"), "Snapshot JSON path")
	flag.StringVar(&cfg.Date, "date", envOrDefault("DISPATCH_REPLAY_DATE", ""), "Only replay bookings of this date (YYYY-MM-DD)")
	flag.BoolVar(&cfg.ReleaseConflicts, "release-conflicts", envOrDefaultBool("DISPATCH_REPLAY_RELEASE", false), "Release blocking conflicts before planning")
	flag.BoolVar(&cfg.JSON, "json", envOrDefaultBool("DISPATCH_REPLAY_JSON", false), "Print JSON instead of text")
	flag.Parse()
	return cfg
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(v)
		return v == "1" || v == "true" || v == "yes"
	}
	return def
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "replay:", err)
	os.Exit(1)
}
