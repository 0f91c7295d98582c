// Copyright (c) 2020-2023, The OTNS Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

package vlcns_main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/otns/vlcns/cli"
	"github.com/otns/vlcns/dispatcher"
	"github.com/otns/vlcns/logger"
	"github.com/otns/vlcns/progctx"
	"github.com/otns/vlcns/simulation"
	"github.com/otns/vlcns/tracedb"
	. "github.com/otns/vlcns/types"
)

type MainArgs struct {
	Scenario    string
	LogLevel    string
	WatchLevel  string
	Duration    float64
	Seed        int64
	Step        float64
	DumpFrames  bool
	MetricsAddr string
	Linger      bool
	KpiFile     string
	TraceDb     string
	Interactive bool
}

var (
	args MainArgs
)

func parseArgs(fs *flag.FlagSet, argv []string) error {
	fs.StringVar(&args.Scenario, "scenario", "scenario.yaml", "specify the YAML scenario file")
	fs.StringVar(&args.LogLevel, "log", "warn", "set logging level: trace, debug, info, note, warn, error.")
	fs.StringVar(&args.WatchLevel, "watch", "off", "set watch level for all receivers: off, trace, debug, info, note, warn, error.")
	fs.Float64Var(&args.Duration, "duration", 0, "override the scenario duration in seconds (0 keeps the scenario value)")
	fs.Int64Var(&args.Seed, "seed", 0, "override the scenario random seed (0 keeps the scenario value)")
	fs.Float64Var(&args.Step, "step", 1.0, "simulated seconds between progress reports")
	fs.BoolVar(&args.DumpFrames, "dump-frames", false, "log every transmitted frame")
	fs.StringVar(&args.MetricsAddr, "metrics", "", "serve Prometheus metrics on this address, e.g. localhost:9100")
	fs.StringVar(&args.KpiFile, "kpi", "", "write the reception KPIs of the run as JSON to this file")
	fs.StringVar(&args.TraceDb, "trace-db", "", "record every reception into this SQLite file")
	fs.BoolVar(&args.Interactive, "cli", false, "control the run from an interactive console instead of running to the end")
	fs.BoolVar(&args.Linger, "linger", false, "keep serving metrics after the run until interrupted")
	return fs.Parse(argv)
}

// Main parses the command line, runs the scenario and prints the receiver statistics to stdout.
func Main(ctx *progctx.ProgCtx, argv []string) error {
	fs := flag.NewFlagSet("vlcns", flag.ContinueOnError)
	if err := parseArgs(fs, argv); err != nil {
		return err
	}

	lv, err := logger.ParseLevelString(args.LogLevel)
	if err != nil {
		return err
	}
	logger.SetLevel(lv)
	if args.Step <= 0 {
		return errors.Errorf("invalid step %g", args.Step)
	}

	ctx.CancelOnSignals(syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT, syscall.SIGHUP)

	sim, reg, err := createSimulation()
	if err != nil {
		return err
	}

	if args.MetricsAddr != "" {
		serveMetrics(ctx, reg)
	}

	if args.TraceDb != "" {
		store, err := openTrace(ctx, sim)
		if err != nil {
			return err
		}
		defer func() {
			if cErr := store.Close(); cErr != nil {
				logger.Errorf("closing trace database: %v", cErr)
			}
		}()
	}

	kpi := sim.GetKpiManager()
	kpi.Start()
	if args.Interactive {
		if err = cli.Cli.Run(cli.NewCmdRunner(ctx, sim), nil); err != nil && ctx.Err() == nil {
			return err
		}
	} else if err = runSimulation(ctx, sim); err != nil {
		return err
	}
	kpi.Stop()
	printStats(os.Stdout, sim)
	if args.KpiFile != "" {
		if err = kpi.SaveFile(args.KpiFile); err != nil {
			return err
		}
	}

	if args.MetricsAddr != "" && args.Linger {
		logger.Infof("serving metrics on %s until interrupted", args.MetricsAddr)
		<-ctx.Done()
	}
	ctx.Cancel(nil)
	ctx.Wait()
	return nil
}

func createSimulation() (*simulation.Simulation, *prometheus.Registry, error) {
	cfg, err := simulation.LoadYamlConfigFile(args.Scenario)
	if err != nil {
		return nil, nil, err
	}
	if args.Duration > 0 {
		cfg.Duration = &args.Duration
	}
	if args.Seed != 0 {
		cfg.Seed = &args.Seed
	}

	dcfg := dispatcher.DefaultConfig()
	dcfg.DumpFrames = args.DumpFrames
	if args.WatchLevel != "off" && args.WatchLevel != "none" {
		if _, err = logger.ParseLevelString(args.WatchLevel); err != nil {
			return nil, nil, err
		}
		dcfg.DefaultWatchOn = true
		dcfg.WatchLogLevel = args.WatchLevel
	}

	reg := prometheus.NewRegistry()
	sim, err := simulation.NewSimulation(cfg, dcfg, reg)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "scenario %s", args.Scenario)
	}
	return sim, reg, nil
}

// runSimulation advances the scenario in steps so that a signal can interrupt long runs.
func runSimulation(ctx *progctx.ProgCtx, sim *simulation.Simulation) error {
	step := SecondsToTimestamp(args.Step)
	wallStart := time.Now()
	for {
		now := sim.Dispatcher().CurTime()
		if now >= sim.Duration() {
			break
		}
		if ctx.Err() != nil {
			return errors.Errorf("interrupted at %s s", humanize.FtoaWithDigits(TimestampToSeconds(now), 3))
		}
		d := sim.Duration() - now
		if d > step {
			d = step
		}
		sim.Go(d)
		logger.Infof("simulated %ss of %ss", humanize.FtoaWithDigits(TimestampToSeconds(sim.Dispatcher().CurTime()), 3),
			humanize.FtoaWithDigits(TimestampToSeconds(sim.Duration()), 3))
	}
	logger.Infof("run finished in %v", time.Since(wallStart).Round(time.Millisecond))
	return nil
}

func openTrace(ctx *progctx.ProgCtx, sim *simulation.Simulation) (*tracedb.SqliteStore, error) {
	store := tracedb.NewSqliteStore(args.TraceDb)
	runId, err := store.CreateRun(ctx, args.Scenario, sim.Seed(), sim.Config())
	if err != nil {
		_ = store.Close()
		return nil, errors.Wrapf(err, "trace database %s", args.TraceDb)
	}
	logger.Infof("recording receptions as run %d in %s", runId, args.TraceDb)
	sim.RecordReceptions(store)
	return store, nil
}

func serveMetrics(ctx *progctx.ProgCtx, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: args.MetricsAddr, Handler: mux}

	ctx.Defer(func() {
		_ = srv.Close()
	})
	ctx.WaitAdd("metrics", 1)
	go func() {
		defer ctx.WaitDone("metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("metrics server stopped unexpectedly: %v", err)
		}
	}()
}

func printStats(w io.Writer, sim *simulation.Simulation) {
	stats := sim.Dispatcher().PhyStats()
	fmt.Fprintf(w, "%-12s %8s %8s %8s %8s %8s %8s %8s %6s\n",
		"receiver", "tx", "signals", "weak", "decoded", "lost", "collide", "ignored", "busy")
	for _, s := range stats {
		fmt.Fprintf(w, "%-12s %8s %8s %8s %8s %8s %8s %8s %5s%%\n", s.Name,
			humanize.Comma(int64(s.Transmitted)), humanize.Comma(int64(s.Signals)),
			humanize.Comma(int64(s.UnderSensitivity)), humanize.Comma(int64(s.Decoded)),
			humanize.Comma(int64(s.NotDecoded)), humanize.Comma(int64(s.Collisions)),
			humanize.Comma(int64(s.Ignored)), humanize.FtoaWithDigits(s.BusyRatio*100, 2))
	}
	t := dispatcher.Totals(stats)
	fmt.Fprintf(w, "%-12s %8s %8s %8s %8s %8s %8s %8s\n", "total", "",
		humanize.Comma(int64(t.Signals)), humanize.Comma(int64(t.UnderSensitivity)),
		humanize.Comma(int64(t.Decoded)), humanize.Comma(int64(t.NotDecoded)),
		humanize.Comma(int64(t.Collisions)), humanize.Comma(int64(t.Ignored)))

	for _, id := range sim.GetNodes() {
		app := sim.App(id)
		if app == nil || !app.Enabled() {
			continue
		}
		var recv uint64
		for _, n := range app.Received {
			recv += n
		}
		fmt.Fprintf(w, "node %d: sent %s beacons, received %s\n", id, humanize.Comma(int64(app.Sent)), humanize.Comma(int64(recv)))
	}
}
