// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.19
//

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	m "github.com/mkhts/gorinex"
	"github.com/mkhts/gorinex/internal/logging"
	"github.com/mkhts/gorinex/internal/observability"
	"github.com/mkhts/gorinex/store"
	"github.com/mkhts/gorinex/track"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

func main() {

	// Parse command line arguments
	args, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "err=%s\n", err.Error())
		}
		os.Exit(1)
	}

	// Run the main application
	if err := runApplication(context.Background(), args, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "err=%s\n", err.Error())
		os.Exit(1)
	}
}

// Main application processing
func runApplication(ctx context.Context, args cmdOpt, stdout io.Writer) error {

	log := logging.New(logging.Config{Level: args.logLevel, Format: args.logFormat})

	// Tracing
	shutdown, err := observability.InitTracing(ctx, observability.TracingConfig{Enabled: args.tracing}, log)
	if err != nil {
		return fmt.Errorf("failed to init tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdown, log)

	// Metrics
	reg := prometheus.NewRegistry()
	collector, err := observability.NewParseCollector(reg)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	// Load input file
	opts := []m.Option{
		m.WithSystems(args.use...),
		m.WithLogger(log),
		m.WithRecorder(collector),
	}
	ds, err := readInput(ctx, args.inFn, args.group, opts)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filepath.Base(args.inFn), err)
	}
	fmt.Fprintln(stdout, ds)

	// Write container group
	if args.outFn != "" {
		if err := store.Write(args.outFn, ds); err != nil {
			return fmt.Errorf("failed to write %s: %w", args.outFn, err)
		}
		log.Info(ctx, "dataset stored", logging.String("out", args.outFn), logging.String("group", ds.Kind.String()))
	}

	// Ground track
	if args.track {
		pts, err := track.FromNav(ds)
		if err != nil {
			log.Warn(ctx, "no ground track", logging.String("file", args.inFn), logging.Err(err))
		} else if err := track.Write(stdout, pts); err != nil {
			return fmt.Errorf("failed to write track: %w", err)
		}
	}

	if args.metrics {
		if err := collector.WriteText(stdout); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}

// Read input by file name, falling back to the header when the name tells nothing
func readInput(ctx context.Context, fn, group string, opts []m.Option) (*m.Dataset, error) {
	if filepath.Ext(fn) == containerExt {
		return readContainer(fn, group)
	}
	kind, err := m.KindFromName(fn)
	if err != nil {
		return m.ReadFile(ctx, fn, opts...)
	}
	switch kind {
	case m.Navigation:
		return m.ReadNavFile(ctx, fn, opts...)
	default:
		return m.ReadObsFile(ctx, fn, opts...)
	}
}

const containerExt = ".db"

// Read a dataset stored by an earlier run. Without a group name OBS is preferred over NAV.
func readContainer(fn, group string) (*m.Dataset, error) {
	// store.Open would create a missing file
	if _, err := os.Stat(fn); err != nil {
		return nil, err
	}
	c, err := store.Open(fn)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	if group == "" {
		groups, err := c.Groups()
		if err != nil {
			return nil, err
		}
		for _, g := range []string{m.Observation.String(), m.Navigation.String()} {
			if slices.Contains(groups, g) {
				group = g
				break
			}
		}
	}
	return c.Get(group)
}

// Structure to hold command line argument information
type cmdOpt struct {
	inFn      string
	outFn     string
	use       m.SystemList
	group     string
	track     bool
	metrics   bool
	tracing   bool
	logLevel  string
	logFormat string
}

// Optional YAML configuration; command line flags take precedence
type fileConfig struct {
	Use     string `yaml:"use"`
	Out     string `yaml:"out"`
	Track   bool   `yaml:"track"`
	Metrics bool   `yaml:"metrics"`
	Log     struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Tracing struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"tracing"`
}

func loadConfig(fn string) (*fileConfig, error) {
	b, err := os.ReadFile(fn)
	if err != nil {
		return nil, err
	}
	cfg := &fileConfig{}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", fn, err)
	}
	return cfg, nil
}

// Parse command line arguments
func parseArgs(argv []string, stderr io.Writer) (a cmdOpt, err error) {
	fs := flag.NewFlagSet("gorinex", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, `
[Usage]
	%s [Options] file.yyN|file.yyO|*.rnx|container.db

[Options]
`, filepath.Base(os.Args[0]))
		fs.PrintDefaults()
	}
	var cfgFn, use string
	var verbose bool
	fs.StringVar(&a.outFn, "o", "", "Container file to store the dataset in. The group named after the file kind (NAV or OBS) is replaced, other groups are kept.")
	fs.StringVar(&use, "use", "", "Satellite systems to read from observation files. G(GPS), R(Glonass), S(SBAS), J(QZSS), C(Beidou), E(Galileo). Comma-separated without spaces. Default: all")
	fs.StringVar(&cfgFn, "config", "", "YAML configuration file. Command line options take precedence.")
	fs.BoolVar(&a.track, "track", false, "Print the ground track of satellites whose navigation records carry positions (SBAS).")
	fs.BoolVar(&a.metrics, "metrics", false, "Print parse metrics in Prometheus text format.")
	fs.BoolVar(&a.tracing, "trace", false, "Print trace spans to stderr.")
	fs.StringVar(&a.group, "group", "", "Group to read when the input is a container file (.db). Default: OBS if stored, else NAV")
	fs.BoolVar(&verbose, "v", false, "Verbose (debug) logging.")
	if err := fs.Parse(argv); err != nil {
		return a, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return a, fmt.Errorf("one input file is required")
	}
	a.inFn = fs.Arg(0)

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["use"] {
		if a.use, err = m.ParseSystems(use); err != nil {
			return a, fmt.Errorf("invalid value %q for flag -use: %w", use, err)
		}
	}

	if cfgFn != "" {
		cfg, err := loadConfig(cfgFn)
		if err != nil {
			return a, err
		}
		if !set["o"] {
			a.outFn = cfg.Out
		}
		if !set["use"] && cfg.Use != "" {
			if err := a.use.Set(cfg.Use); err != nil {
				return a, fmt.Errorf("invalid use in %s: %w", cfgFn, err)
			}
		}
		if !set["track"] {
			a.track = cfg.Track
		}
		if !set["metrics"] {
			a.metrics = cfg.Metrics
		}
		if !set["trace"] {
			a.tracing = cfg.Tracing.Enabled
		}
		a.logLevel = cfg.Log.Level
		a.logFormat = cfg.Log.Format
	}
	if verbose {
		a.logLevel = "debug"
	}
	return a, nil
}
