// Command flowlangd is the thin host binary: it loads a package manifest,
// obtains the entry module's AST (from the on-disk cache — this build
// carries no parser, so an uncached entry is a startup error), runs it to
// completion, then drains the event loop until every registered handle
// closes or SIGINT/SIGTERM asks for shutdown. The lifecycle mirrors
// app.go's initialize -> start -> signal.Notify -> shutdown sequence.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/BDNK1/flowlang/astcache"
	"github.com/BDNK1/flowlang/config"
	"github.com/BDNK1/flowlang/interpreter"
	"github.com/BDNK1/flowlang/internal/telemetry"
	"github.com/BDNK1/flowlang/runtime"
	"github.com/BDNK1/flowlang/stdlib"
	"github.com/BDNK1/flowlang/value"
	"github.com/BDNK1/flowlang/webbridge"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tel := telemetry.Setup(ctx, "flowlangd")
	defer tel.Shutdown(context.Background())
	log := tel.Logger

	manifestPath := "config.flowlang.json"
	if v := os.Getenv("FLOWLANG_MANIFEST"); v != "" {
		manifestPath = v
	}
	manifest, err := config.Load(manifestPath)
	if err != nil {
		log.Error("loading manifest", "error", err)
		os.Exit(1)
	}

	source, err := os.ReadFile(manifest.Entry)
	if err != nil {
		log.Error("reading entry module", "entry", manifest.Entry, "error", err)
		os.Exit(1)
	}

	prog, ok := astcache.Load(manifest.Entry, source)
	if !ok {
		log.Error("no cached ast for entry module and this build carries no parser", "entry", manifest.Entry)
		os.Exit(1)
	}

	rt := runtime.New()
	rt.SetMetrics(tel.Metrics)
	loader := stdlib.NewLoader(rt)
	eval := interpreter.New(loader, rt, log, manifest.TypeRequired)
	eval.Timers = rt

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutdown signal received")
		rt.SignalShutdown()
		cancel()
	}()

	_, runSpan := tel.Metrics.StartSpan(ctx, "flowlang.script.run")
	rerr := eval.RunProgram(prog)
	runSpan.End()
	if rerr != nil {
		log.Error("script raised an uncaught error", "error", rerr.Error())
		os.Exit(1)
	}

	runDrainLoop(ctx, log, rt, eval, tel.Metrics)
}

// runDrainLoop wires Runtime.RunDrainLoop's two callback hooks to the
// top-level evaluator: timer callbacks run on the shared evaluator directly
// (the drain loop invokes them one at a time, never concurrently), web
// callbacks run on a per-request clone so that concurrent handlers never
// share one evaluator's environment stack. Each web handler invocation is
// wrapped in its own span; a handler that raises replies with a
// materialized 500 rather than letting the default-null reply fall through
// to a 204, per §7.
func runDrainLoop(ctx context.Context, log *slog.Logger, rt *runtime.Runtime, eval *interpreter.Evaluator, metrics *telemetry.Metrics) {
	invoke := func(fn value.Value, args []value.Value) {
		if _, rerr := eval.ExecuteFunction(fn, args); rerr != nil {
			log.Error("timer callback raised", "error", rerr.Error())
		}
	}
	dispatchWeb := func(fn value.Value, args []value.Value, reply chan value.Value) {
		_, span := metrics.StartSpan(ctx, "flowlang.web.handler")
		defer span.End()

		handlerEval := eval.Clone()
		result, rerr := handlerEval.ExecuteFunction(fn, args)
		if rerr != nil {
			log.Error("web handler raised", "error", rerr.Error())
			reply <- webbridge.ServerErrorResponse(rerr.Error())
			return
		}
		reply <- result
	}
	rt.RunDrainLoop(ctx, invoke, dispatchWeb)
	log.Info("event loop drained, exiting")
}
