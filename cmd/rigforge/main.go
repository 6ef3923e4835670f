// rigforge builds simulation-ready physics rigs from parsed vehicle
// documents and exports them through the configured backend.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"

	"github.com/rigforge/rigforge/internal/builder"
	"github.com/rigforge/rigforge/internal/config"
	"github.com/rigforge/rigforge/internal/diag"
	"github.com/rigforge/rigforge/internal/export"
	"github.com/rigforge/rigforge/internal/logging"
	"github.com/rigforge/rigforge/pkg/rigdef"
)

// CurrentVersion can be overridden at build time via ldflags.
var (
	CurrentVersion = "0.1.0"
	BuildDate      = "unknown"
)

var (
	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	SessionStartTime = time.Now()
)

func usage() {
	fmt.Fprintf(os.Stderr, `rigforge %s (built %s)

Usage:
  rigforge build <document.json> [options]
  rigforge version

Options:
  -config <dir>      directory holding rigforge.cfg.json (default ".")
  -origin <x,y,z>    world position to assemble the rig at (default 0,0,0)
  -modules <a,b,c>   optional document modules to include
  -log-level <lvl>   debug, info, warn or error
`, CurrentVersion, BuildDate)
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	switch args[0] {
	case "version":
		fmt.Printf("rigforge %s (built %s)\n", CurrentVersion, BuildDate)
	case "build":
		if len(args) < 2 {
			usage()
			os.Exit(2)
		}
		if err := runBuild(args[1], args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "rigforge:", err)
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(2)
	}
}

// buildOptions are the command-line overrides of one build run.
type buildOptions struct {
	configDir string
	origin    [3]float32
	modules   []string
	logLevel  string
}

func parseBuildOptions(args []string) (buildOptions, error) {
	opts := buildOptions{configDir: "."}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-config":
			i++
			if i >= len(args) {
				return opts, fmt.Errorf("-config requires a directory")
			}
			opts.configDir = args[i]
		case "-origin":
			i++
			if i >= len(args) {
				return opts, fmt.Errorf("-origin requires x,y,z")
			}
			if _, err := fmt.Sscanf(args[i], "%f,%f,%f",
				&opts.origin[0], &opts.origin[1], &opts.origin[2]); err != nil {
				return opts, fmt.Errorf("invalid -origin %q: %w", args[i], err)
			}
		case "-modules":
			i++
			if i >= len(args) {
				return opts, fmt.Errorf("-modules requires a comma-separated list")
			}
			opts.modules = splitList(args[i])
		case "-log-level":
			i++
			if i >= len(args) {
				return opts, fmt.Errorf("-log-level requires a level")
			}
			opts.logLevel = args[i]
		default:
			return opts, fmt.Errorf("unknown option %q", args[i])
		}
	}
	return opts, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func runBuild(docPath string, rest []string) error {
	opts, err := parseBuildOptions(rest)
	if err != nil {
		return err
	}

	configLoadErr := config.Load(opts.configDir)
	if configLoadErr != nil {
		config.LoadDefaults()
	}

	logLevel := config.GetString("logLevel")
	if opts.logLevel != "" {
		logLevel = opts.logLevel
	}

	// The section-keyword provider closes over a builder that does not
	// exist yet when logging comes up.
	var b *builder.Builder
	provider := func() []slog.Attr {
		if b == nil {
			return nil
		}
		return b.SectionAttrs()()
	}

	logsDir := config.GetString("logsDir")
	var logFile *os.File
	if err := os.MkdirAll(logsDir, 0755); err == nil {
		logFile, _ = os.Create(logging.LogFilePath(logsDir, "rigforge", SessionStartTime))
	}

	SlogManager = logging.NewSlogManager()
	if logFile != nil {
		defer logFile.Close()
		SlogManager.Setup(logFile, logLevel, provider)
	} else {
		SlogManager.Setup(nil, logLevel, provider)
	}
	Logger = SlogManager.Logger()

	if configLoadErr != nil {
		Logger.Warn("no config file found, using defaults", "dir", opts.configDir, "error", configLoadErr)
	}

	buildDefaults, err := config.GetBuildDefaults()
	if err != nil {
		return err
	}
	limits, err := config.GetLimits()
	if err != nil {
		return err
	}
	exportCfg, err := config.GetExport()
	if err != nil {
		return err
	}

	doc, err := rigdef.Load(docPath)
	if err != nil {
		return fmt.Errorf("loading document: %w", err)
	}
	if len(opts.modules) > 0 {
		doc.SelectedModules = opts.modules
	}

	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	collector := diag.NewCollector()
	sink := diag.Multi(collector, diag.NewZerologSink(zlog))

	b, err = builder.New(Logger, sink, buildDefaults, limits)
	if err != nil {
		return err
	}

	r, err := b.Build(doc, mgl32.Vec3(opts.origin))
	if err != nil {
		return fmt.Errorf("building rig: %w", err)
	}

	warnings := collector.Count(diag.SeverityWarning)
	errors := collector.Count(diag.SeverityError)
	Logger.Info("diagnostics summary", "warnings", warnings, "errors", errors)

	backend, err := export.NewBackend(exportCfg, zlog)
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("initializing export backend: %w", err)
	}
	if err := backend.Export(r, collector.Messages()); err != nil {
		return fmt.Errorf("exporting rig: %w", err)
	}
	if err := backend.Close(); err != nil {
		return fmt.Errorf("closing export backend: %w", err)
	}

	if loc, ok := backend.(export.Locatable); ok {
		fmt.Printf("%s: %d nodes, %d beams, %d wheels -> %s\n",
			r.Name, r.NodeCount(), r.BeamCount(), len(r.Wheels), loc.ExportedFilePath())
	} else {
		fmt.Printf("%s: %d nodes, %d beams, %d wheels\n",
			r.Name, r.NodeCount(), r.BeamCount(), len(r.Wheels))
	}
	return nil
}
