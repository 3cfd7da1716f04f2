// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.17
//

package gorinex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mkhts/gorinex/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// RINEX 3.04 specification
// https://files.igs.org/pub/data/format/rinex304.pdf
//

const tracerName = "github.com/mkhts/gorinex"

// Recorder receives parse statistics. Labels are plain strings so that metric
// backends need not import this package.
type Recorder interface {
	ObserveRecords(kind, system string, n int)
	ObserveError(kind, reason string)
	ObserveDuration(kind string, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRecords(string, string, int)    {}
func (nopRecorder) ObserveError(string, string)           {}
func (nopRecorder) ObserveDuration(string, time.Duration) {}

// Option configures a read.
type Option func(*options)

type options struct {
	ctx      context.Context
	systems  []SatelliteSystem
	registry *Registry
	log      logging.Logger
	rec      Recorder
	filename string
}

// WithSystems restricts OBS decoding to the given satellite systems. No systems means all.
func WithSystems(sys ...SatelliteSystem) Option {
	return func(o *options) { o.systems = slices.Clone(sys) }
}

// WithRegistry replaces the default layout registry.
func WithRegistry(r *Registry) Option {
	return func(o *options) { o.registry = r }
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithRecorder sends parse statistics to r.
func WithRecorder(r Recorder) Option {
	return func(o *options) { o.rec = r }
}

// WithFilename sets the file name stored in the dataset attributes and in errors.
func WithFilename(name string) Option {
	return func(o *options) { o.filename = name }
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.ctx == nil {
		o.ctx = context.Background()
	}
	if o.registry == nil {
		o.registry = DefaultRegistry()
	}
	if o.log == nil {
		o.log = logging.Noop()
	}
	if o.rec == nil {
		o.rec = nopRecorder{}
	}
	return o
}

func (o *options) use(sys SatelliteSystem) bool {
	return len(o.systems) == 0 || slices.Contains(o.systems, sys)
}

// ReadNav reads a whole RINEX 2 or 3 navigation message file.
func ReadNav(r io.Reader, opts ...Option) (*Dataset, error) {
	return read(r, Navigation, newOptions(opts))
}

// ReadObs reads a whole RINEX 2 or 3 observation file.
func ReadObs(r io.Reader, opts ...Option) (*Dataset, error) {
	return read(r, Observation, newOptions(opts))
}

// Read reads a whole RINEX file of the kind named by its header.
func Read(r io.Reader, opts ...Option) (*Dataset, error) {
	return read(r, 0, newOptions(opts))
}

// ReadFile opens path and reads it according to its header.
func ReadFile(ctx context.Context, path string, opts ...Option) (*Dataset, error) {
	return readFile(ctx, path, 0, opts)
}

// ReadNavFile opens path and reads it as a navigation file.
func ReadNavFile(ctx context.Context, path string, opts ...Option) (*Dataset, error) {
	return readFile(ctx, path, Navigation, opts)
}

// ReadObsFile opens path and reads it as an observation file.
func ReadObsFile(ctx context.Context, path string, opts ...Option) (*Dataset, error) {
	return readFile(ctx, path, Observation, opts)
}

func readFile(ctx context.Context, path string, want FileKind, opts []Option) (*Dataset, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "gorinex.ReadFile",
		trace.WithAttributes(attribute.String("rinex.file", path)))
	defer span.End()

	fail := func(err error) (*Dataset, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return fail(err)
	}
	defer f.Close()

	o := newOptions(append([]Option{WithFilename(filepath.Base(path))}, opts...))
	o.ctx = ctx
	ds, err := read(f, want, o)
	if err != nil {
		return fail(err)
	}
	span.SetAttributes(
		attribute.String("rinex.kind", ds.Kind.String()),
		attribute.Float64("rinex.version", ds.Version),
		attribute.Int("rinex.epochs", len(ds.Time)),
	)
	return ds, nil
}

func kindLabel(k FileKind) string {
	switch k {
	case Navigation, Observation:
		return k.String()
	}
	return "UNKNOWN"
}

// Parse header and body; nothing partial is returned on failure
func read(r io.Reader, want FileKind, o *options) (ds *Dataset, err error) {
	start := time.Now()
	kind := want
	var counts map[SatelliteSystem]int
	defer func() {
		if err != nil {
			err = annotate(err, o.filename, 0, "")
			o.rec.ObserveError(kindLabel(kind), ErrorReason(err))
			o.log.Debug(o.ctx, "read failed", logging.String("file", o.filename), logging.Err(err))
			ds = nil
			return
		}
		o.rec.ObserveDuration(kindLabel(kind), time.Since(start))
		for sys, n := range counts {
			o.rec.ObserveRecords(kindLabel(kind), sys.String(), n)
		}
	}()

	lr := newLineReader(r)
	h, err := scanHeader(lr)
	if err != nil {
		return nil, err
	}
	if want != 0 && h.Kind != want {
		return nil, newParseError(ErrUnsupportedFileKind, 1, string(byte(h.Kind)), "expected %s file, header says %s", want, h.Kind)
	}
	kind = h.Kind
	o.log.Debug(o.ctx, "header read",
		logging.String("file", o.filename),
		logging.String("kind", h.Kind.String()),
		logging.Any("version", h.Version),
		logging.Int("lines", lr.Line()))

	attrs := Attributes{
		Version:  h.Version,
		Filename: o.filename,
		Header:   maps.Clone(h.Attrs),
	}
	if pos, perr := h.ApproxPosition(); perr == nil {
		attrs.Position = &pos
	} else if !errors.Is(perr, ErrNoApproxPosition) {
		o.log.Warn(o.ctx, "ignoring receiver position", logging.String("file", o.filename), logging.Err(perr))
	}

	switch h.Kind {
	case Navigation:
		asm := newNavAssembler()
		if err := readNavBody(lr, h, o.registry, asm); err != nil {
			return nil, err
		}
		ds, counts = asm.dataset(h, attrs), asm.counts
		if asm.layout != nil {
			o.log.Debug(o.ctx, "layout", logging.String("layout", asm.layout.String()))
		}
	case Observation:
		ol, err := newObsLayouts(h, o.registry, o.use)
		if err != nil {
			return nil, err
		}
		asm := newObsAssembler(ol.fields)
		if h.Major() == 2 {
			err = readObsBody2(lr, ol, len(h.ObsTypesFor(SystemGPS)), asm)
		} else {
			err = readObsBody3(lr, ol, asm)
		}
		if err != nil {
			return nil, err
		}
		ds, counts = asm.dataset(h, attrs), asm.counts
	}
	o.log.Debug(o.ctx, "body read",
		logging.String("file", o.filename),
		logging.Int("epochs", len(ds.Time)),
		logging.Int("satellites", len(ds.SV)),
		logging.Int("fields", len(ds.Fields)))
	return ds, nil
}

// KindFromName guesses the file kind from a RINEX file name:
// "*.yyN", "*N.rnx" and "*.nav" are navigation files, "*.yyO", "*O.rnx" and "*.obs" observation files.
func KindFromName(name string) (FileKind, error) {
	base := strings.ToLower(filepath.Base(name))
	switch filepath.Ext(base) {
	case ".nav":
		return Navigation, nil
	case ".obs":
		return Observation, nil
	}
	base = strings.TrimSuffix(base, ".rnx")
	if base == "" {
		return 0, &ParseError{Err: ErrUnsupportedFileKind, Raw: name, Msg: "empty file name"}
	}
	switch base[len(base)-1] {
	case 'n':
		return Navigation, nil
	case 'o':
		return Observation, nil
	}
	return 0, &ParseError{Err: ErrUnsupportedFileKind, Raw: name, Msg: fmt.Sprintf("cannot tell file kind from %q", filepath.Base(name))}
}
