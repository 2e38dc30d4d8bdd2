package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"rankbot/internal/core/version"
	"rankbot/internal/modkit"
	"rankbot/internal/modkit/module"
	"rankbot/internal/platform/config"
	"rankbot/internal/platform/logger"

	rankermod "rankbot/internal/services/ranker/module"

	"github.com/joho/godotenv"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func main() {
	// .env is optional; real deployments configure through the environment
	_ = godotenv.Load()

	var (
		fPolicy  = flag.String("config", "", "path to the policy file (overrides CORE_RANKER_POLICY)")
		fDryRun  = flag.Bool("dry-run", false, "log decisions without changing any roles")
		fWorkers = flag.Int("workers", 0, "concurrency for scans and updates (overrides CORE_RANKER_WORKERS)")
	)
	flag.Parse()

	l := logger.Get()
	bi := version.Info()
	l.Info().Str("version", bi.Version).Str("commit", bi.Commit).Msg("rankbot starting")

	// Surface flags to the module's FromConfig
	mustSetEnv("CORE_RANKER_POLICY", *fPolicy)
	if *fDryRun {
		mustSetEnv("CORE_RANKER_DRY_RUN", "1")
	}
	if *fWorkers > 0 {
		mustSetEnv("CORE_RANKER_WORKERS", strconv.Itoa(*fWorkers))
	}

	deps := modkit.Deps{
		Cfg: config.New(),
		Log: *l,
	}

	rk := rankermod.New(deps)
	module.Register(rk.Name(), rk.Ports())

	// SIGINT/SIGTERM cancel the run; in-flight updates still finish
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ports := rk.Ports().(rankermod.Ports)
	sum, err := ports.Runner.Run(ctx)
	if err != nil {
		l.Fatal().Err(err).Msg("rank run failed")
	}
	if !sum.Clean() {
		l.Error().
			Str("run_id", sum.RunID).
			Int("failed", sum.Failed).
			Int("scan_errors", len(sum.ScanErrors)).
			Msg("rank run finished with failures")
		os.Exit(1)
	}
}
