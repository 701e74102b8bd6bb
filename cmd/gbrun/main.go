package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/gbbridge/internal/bridge"
	"github.com/GriffinCanCode/gbbridge/internal/host"
	"github.com/GriffinCanCode/gbbridge/internal/infrastructure/logging"
	"github.com/GriffinCanCode/gbbridge/internal/runner"
	"github.com/GriffinCanCode/gbbridge/internal/sandbox"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

var errNoPages = errors.New("no pages matched")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	fixtures  string
	debugMode string
	desktop   bool
	json      bool
	timeout   time.Duration
	verbose   bool
	patterns  []string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("gbrun", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.fixtures, "fixtures", "", "host simulator fixtures (YAML)")
	fs.StringVar(&opts.debugMode, "debug-mode", "production", "production, alert or suppress")
	fs.BoolVar(&opts.desktop, "desktop", false, "desktop fallback for request, location and preferences")
	fs.BoolVar(&opts.json, "json", false, "print one JSON record per page")
	fs.DurationVar(&opts.timeout, "timeout", 5*time.Second, "per-page timeout")
	fs.BoolVar(&opts.verbose, "v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.patterns = fs.Args()
	if len(opts.patterns) == 0 {
		return opts, errors.New("at least one page pattern is required")
	}
	return opts, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		fmt.Fprintln(stderr, "gbrun:", err)
		return exitUsage
	}
	mode, err := bridge.ParseDebugMode(opts.debugMode)
	if err != nil {
		fmt.Fprintln(stderr, "gbrun:", err)
		return exitUsage
	}

	logger, err := logging.New(logging.CLIConfig(opts.verbose))
	if err != nil {
		logger = logging.NewNop()
	}
	defer logger.Sync()

	pages, err := expand(opts.patterns)
	if err != nil {
		fmt.Fprintln(stderr, "gbrun:", err)
		return exitUsage
	}

	fixtures := host.Fixtures{}
	if opts.fixtures != "" {
		if fixtures, err = host.LoadFixtures(opts.fixtures); err != nil {
			fmt.Fprintln(stderr, "gbrun:", err)
			return exitUsage
		}
	}

	bridgeCfg := bridge.Config{DebugMode: mode, DesktopMode: opts.desktop}
	sbCfg := sandbox.DefaultConfig()
	sbCfg.Timeout = opts.timeout
	sbCfg.Bridge = bridgeCfg
	sbCfg.Logger = logger.Logger

	pool, err := sandbox.NewPool(sbCfg, 1)
	if err != nil {
		fmt.Fprintln(stderr, "gbrun:", err)
		return exitFailed
	}
	defer pool.Close()

	r := runner.New(pool, runner.Options{
		Bridge:    bridgeCfg,
		Fixtures:  fixtures,
		Simulate:  true,
		Transport: bridge.NewDesktopTransport(sbCfg.Transport).WithLogger(logger.Logger),
		Logger:    logger.Logger,
	})

	status := exitOK
	for _, path := range pages {
		in, err := readInput(path)
		if err != nil {
			logger.Error("Failed to read page", zap.String("page", path), zap.Error(err))
			status = exitFailed
			continue
		}

		rec, err := r.Run(context.Background(), in)
		if err != nil {
			logger.Error("Failed to run page", zap.String("page", path), zap.Error(err))
			status = exitFailed
			continue
		}
		if rec.Failed() {
			status = exitFailed
		}

		if opts.json {
			data, err := sonic.Marshal(rec)
			if err != nil {
				logger.Error("Failed to encode record", zap.Error(err))
				status = exitFailed
				continue
			}
			fmt.Fprintln(stdout, string(data))
			continue
		}
		report(logger.Logger, rec)
	}
	return status
}

// expand resolves the patterns to a sorted, de-duplicated file list
func expand(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var pages []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				pages = append(pages, m)
			}
		}
	}
	if len(pages) == 0 {
		return nil, errNoPages
	}
	sort.Strings(pages)
	return pages, nil
}

func readInput(path string) (runner.Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return runner.Input{}, err
	}
	in := runner.Input{Name: path}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js":
		in.Script = string(data)
	default:
		in.HTML = string(data)
	}
	return in, nil
}

func report(logger *zap.Logger, rec *runner.Record) {
	for _, d := range rec.Dispatches {
		logger.Info("Dispatch",
			zap.String("page", rec.Name),
			zap.String("kind", d.Kind),
			zap.String("url", d.URL),
			zap.String("text", d.Text),
		)
	}
	for _, cb := range rec.Callbacks {
		logger.Info("Callback",
			zap.String("page", rec.Name),
			zap.String("name", cb.Name),
			zap.Bool("defined", cb.Defined),
			zap.Any("args", cb.Args),
		)
	}
	for _, entry := range rec.Console {
		logger.Info("Console",
			zap.String("page", rec.Name),
			zap.String("level", entry.Level),
			zap.String("message", entry.Message),
		)
	}
	if rec.Failed() {
		logger.Error("Page failed", zap.String("page", rec.Name), zap.String("error", rec.Error))
	}
}
