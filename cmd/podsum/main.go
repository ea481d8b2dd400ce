// Command podsum builds the weekly podcast digest from the command line.
//
//	podsum [channels...] [--days 7] [--limit 1] [--output DIR] [--pdf] [--email] [--dry-run]
//	podsum summarize FILE [--template blog|insights|brief]
//	podsum watch DIR
//	podsum channels [list|add|remove|enable|disable] [handle]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/joho/godotenv"

	"github.com/anatolykoptev/go_podcast/internal/app"
	"github.com/anatolykoptev/go_podcast/internal/channels"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := os.Args[1:]
	cmd := ""
	if len(args) > 0 {
		switch args[0] {
		case "summarize", "watch", "channels":
			cmd, args = args[0], args[1:]
		}
	}

	var err error
	switch cmd {
	case "summarize":
		err = runSummarize(ctx, args)
	case "watch":
		err = runWatch(ctx, args)
	case "channels":
		err = runChannels(args)
	default:
		err = runDigest(ctx, args)
	}
	if logFile != nil {
		_ = logFile.Close()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "podsum: %v\n", err)
		os.Exit(1)
	}
}

// common holds the flags every subcommand accepts.
type common struct {
	config  *string
	output  *string
	verbose *bool
}

func commonFlags(fs *flag.FlagSet) common {
	return common{
		config:  fs.String("config", env.Str("PODCAST_CONFIG_DIR", "config"), "Directory holding channels.yaml and settings.yaml"),
		output:  fs.String("output", "", "Output directory (default: output_directory from channels.yaml)"),
		verbose: fs.Bool("verbose", false, "Debug logging"),
	}
}

// open sets up logging and opens the app with the common flags.
func (c common) open(ctx context.Context) (*app.App, error) {
	setupLogging(*c.verbose, channels.Logging{})
	a, err := app.Open(ctx, app.Options{ConfigDir: *c.config, OutputDir: *c.output})
	if err != nil {
		return nil, err
	}
	setupLogging(*c.verbose, a.Channels.Settings().Logging)
	return a, nil
}

// parseArgs parses fs allowing flags and positional arguments to be mixed.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

var logFile io.Closer

// setupLogging installs a text handler on stderr, plus the log file from
// settings.yaml when enabled. --verbose wins over the configured level.
func setupLogging(verbose bool, cfg channels.Logging) {
	level := logLevel(cfg.Level)
	if verbose {
		level = slog.LevelDebug
	}
	var w io.Writer = os.Stderr
	if cfg.LogToFile && cfg.LogFile != "" && logFile == nil {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o750); err == nil {
			if f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640); err == nil {
				logFile = f
				w = io.MultiWriter(os.Stderr, f)
			}
		}
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func logLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR", "CRITICAL":
		return slog.LevelError
	}
	return slog.LevelInfo
}
