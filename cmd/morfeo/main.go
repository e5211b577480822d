// Command morfeo analyzes text and prints one word per line:
//
//	form lemma tag [senses]
//
// with a blank line after each sentence. Without file arguments it reads
// standard input and writes standard output. With files, each one is
// analyzed by its own stream over a shared analyzer and written to
// <file>.out; up to -workers files run at once.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/cognicore/morfeo/pkg/morfeo"
	"github.com/cognicore/morfeo/pkg/morfeo/config"
)

func main() {
	var (
		configPath = flag.String("config", "", "Pipeline config YAML (required)")
		workers    = flag.Int("workers", runtime.NumCPU(), "Files analyzed concurrently")
		level      = flag.String("level", "", "Override output level: token, splitted, morfo, tagged")
		logLevel   = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	)
	flag.Parse()

	logger := newLogger(*logLevel)
	if *configPath == "" {
		logger.Error("--config required")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts, err := loadOptions(*configPath, *level)
	if err != nil {
		logger.Error("load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	analyzer, err := morfeo.New(ctx, opts, morfeo.WithLogger(logger))
	if err != nil {
		logger.Error("build analyzer", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer analyzer.Close()

	if flag.NArg() == 0 {
		out := bufio.NewWriter(os.Stdout)
		stats, err := analyzer.Run(ctx, os.Stdin, out)
		if ferr := out.Flush(); err == nil {
			err = ferr
		}
		if err != nil {
			logger.Error("analyze stdin", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logStats(logger, "stdin", stats)
		return
	}

	if err := analyzeFiles(ctx, analyzer, flag.Args(), *workers, logger); err != nil {
		logger.Error("analyze files", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
	slog.SetDefault(logger)
	return logger
}

// loadOptions reads the config file and applies the -level override.
func loadOptions(path, level string) (*config.Options, error) {
	opts, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if level != "" {
		opts.Output.Level = config.Level(level)
		if !opts.Output.Level.Includes(config.LevelTagged) {
			opts.Senses.Enabled = false
		}
		if err := opts.Validate(); err != nil {
			return nil, fmt.Errorf("config: -level: %w", err)
		}
	}
	return opts, nil
}

// analyzeFiles runs one stream per file, at most workers at a time. The
// first failure cancels the remaining files.
func analyzeFiles(ctx context.Context, a *morfeo.Analyzer, files []string, workers int, logger *slog.Logger) error {
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, path := range files {
		g.Go(func() error {
			return analyzeFile(gctx, a, path, logger)
		})
	}
	return g.Wait()
}

func analyzeFile(ctx context.Context, a *morfeo.Analyzer, path string, logger *slog.Logger) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(path + ".out")
	if err != nil {
		return err
	}
	w := bufio.NewWriter(out)

	stats, err := a.Run(ctx, in, w)
	if ferr := w.Flush(); err == nil {
		err = ferr
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	logStats(logger, path, stats)
	return nil
}

func logStats(logger *slog.Logger, source string, st morfeo.Stats) {
	logger.Info("analysis complete",
		slog.String("source", source),
		slog.Int("lines", st.Lines),
		slog.Int("sentences", st.Sentences),
		slog.Int("words", st.Words),
		slog.Int("skipped", st.Skipped),
		slog.Int("replaced", st.Replaced),
	)
}
