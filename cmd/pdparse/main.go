// Command pdparse parses Pure Data patch files and reports their structure.
//
//	pdparse [flags] [file.pd | dir ...]
//
// Without arguments the current directory is searched for .pd files.
// --watch re-parses patches when they change and --serve exposes the
// results over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/ritzau/pd-parser/pkg/analysis"
	"github.com/ritzau/pd-parser/pkg/config"
	"github.com/ritzau/pd-parser/pkg/finder"
	"github.com/ritzau/pd-parser/pkg/logging"
	"github.com/ritzau/pd-parser/pkg/output"
	"github.com/ritzau/pd-parser/pkg/pubsub"
	"github.com/ritzau/pd-parser/pkg/web"
)

// Exit codes
const (
	exitOK     = 0
	exitFailed = 1 // some patch failed to parse or validate
	exitUsage  = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func newFlagSet(stderr io.Writer) (*pflag.FlagSet, *string) {
	f := pflag.NewFlagSet("pdparse", pflag.ContinueOnError)
	f.SetOutput(stderr)
	f.Usage = func() {
		fmt.Fprintf(stderr, "Usage: pdparse [flags] [file.pd | dir ...]\n\nFlags:\n")
		f.PrintDefaults()
	}

	configFile := f.StringP("config", "c", "", "Config file (.toml or .yaml), default pd-parser.toml if present")
	f.StringP("format", "f", "summary", "Output format: summary, json or yaml")
	f.BoolP("watch", "w", false, "Re-parse patches when they change")
	f.Bool("serve", false, "Serve results over HTTP")
	f.IntP("port", "p", 8080, "Port for --serve")
	f.Bool("validate", false, "Run structural checks and report feedback loops")
	f.Bool("strict", false, "Treat warnings as failures")
	f.IntP("jobs", "j", 0, "Files parsed in parallel (0 = one per CPU)")
	f.Duration("debounce", 0, "Quiet period before re-parsing in --watch mode (default 300ms)")
	f.String("verbosity", "", "Log level: trace, debug, info, warn or error")
	f.CountP("verbose", "v", "Increase log verbosity (-v debug, -vv trace)")
	f.Bool("log-json", false, "Log as JSON")
	return f, configFile
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags, configFile := newFlagSet(stderr)
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg, err := config.Load(flags, *configFile)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}
	setupLogging(cfg, stderr)
	if cfg.File != "" {
		logging.Debug("loaded config file", "path", cfg.File)
	}

	format, err := output.ParseFormat(cfg.Format)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	roots := flags.Args()
	if len(roots) == 0 {
		roots = []string{"."}
	}
	paths, err := finder.ResolvePaths(roots)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	store := analysis.NewStore()
	var server *web.Server
	var publisher pubsub.Publisher
	if cfg.Serve {
		server = web.NewServer(store, cfg.Validate)
		publisher = server.Publisher()
	}
	runner := analysis.NewRunner(store, publisher)
	opts := analysis.Options{Jobs: cfg.Jobs, Validate: cfg.Validate, Reason: "initial parse"}

	results, err := runner.Run(ctx, paths, opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailed
	}
	if err := output.Write(stdout, format, results, cfg.Strict); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailed
	}

	if !cfg.Watch && !cfg.Serve {
		return exitCode(results, cfg.Strict)
	}

	g, ctx := errgroup.WithContext(ctx)
	if server != nil {
		g.Go(func() error { return server.Start(ctx, cfg.Port) })
	}
	if cfg.Watch {
		for _, root := range roots {
			w := &patchWatcher{
				root:     root,
				runner:   runner,
				opts:     opts,
				debounce: cfg.Debounce,
				format:   format,
				strict:   cfg.Strict,
				out:      stdout,
			}
			g.Go(func() error { return w.run(ctx) })
		}
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailed
	}
	return exitOK
}

func setupLogging(cfg *config.Config, stderr io.Writer) {
	logging.SetOutput(stderr)
	logging.SetJSONOutput(cfg.LogJSON)

	level := logging.LevelForVerbosity(cfg.VerboseCnt)
	if cfg.Verbosity != "" {
		parsed, ok := logging.ParseLevel(cfg.Verbosity)
		if !ok {
			logging.Warn("unknown verbosity, using info", "verbosity", cfg.Verbosity)
		}
		level = parsed
	}
	logging.SetLevel(level)
}

func exitCode(results []*analysis.FileResult, strict bool) int {
	for _, fr := range results {
		if !fr.OK(strict) {
			return exitFailed
		}
	}
	return exitOK
}
