// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.17
//

package gorinex

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Dimension names
const (
	DimTime = "time"
	DimSV   = "sv"
)

// Name of the epoch flag variable of OBS datasets
const FlagVar = "flag"

// Record is one decoded satellite epoch. It is not modified after decoding.
type Record struct {
	SV     Satellite
	Time   time.Time
	Flag   int // Epoch flag, OBS only
	Values map[string]float64
}

// Attributes describe where a dataset came from.
type Attributes struct {
	Version  float64
	Filename string
	Position *r3.Vec          // Approximate receiver position, OBS only
	Header   map[string]string // Header values keyed by label
}

// Variable is one named data array of a dataset.
// Data has one row per epoch and one column (dims {time}) or one column per satellite (dims {time, sv}).
// Data is nil when the dataset has no epochs (or, for {time, sv} variables, no satellites).
type Variable struct {
	Dims []string
	Data *mat.Dense
}

// Values returns a copy of the variable's elements in row-major order.
func (v *Variable) Values() []float64 {
	if v.Data == nil {
		return nil
	}
	r, c := v.Data.Dims()
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		out = append(out, v.Data.RawRowView(i)...)
	}
	return out
}

// Dataset is the assembled content of one RINEX file.
//
// For NAV, SV runs along the time axis (SV[i] is the satellite of record i).
// For OBS, SV is the satellite axis in order of first appearance.
type Dataset struct {
	Kind    FileKind
	Version float64
	System  SatelliteSystem // Layout system of NAV records, 0 for OBS or empty NAV
	Time    []time.Time
	SV      []Satellite
	Fields  []string
	Vars    map[string]*Variable
	Attrs   Attributes
}

// Var returns the named variable, or nil.
func (ds *Dataset) Var(name string) *Variable {
	return ds.Vars[name]
}

// At returns the value of field for epoch i and satellite column j (j is 0 for NAV).
func (ds *Dataset) At(name string, i, j int) float64 {
	v := ds.Vars[name]
	if v == nil || v.Data == nil {
		return math.NaN()
	}
	return v.Data.At(i, j)
}

// Equal compares two datasets field for field, treating NaN as equal to NaN.
func (ds *Dataset) Equal(o *Dataset) bool {
	if ds == nil || o == nil {
		return ds == o
	}
	if ds.Kind != o.Kind || ds.Version != o.Version || ds.System != o.System {
		return false
	}
	if len(ds.Time) != len(o.Time) || !slices.Equal(ds.SV, o.SV) || !slices.Equal(ds.Fields, o.Fields) {
		return false
	}
	for i := range ds.Time {
		if !ds.Time[i].Equal(o.Time[i]) {
			return false
		}
	}
	if len(ds.Vars) != len(o.Vars) {
		return false
	}
	for name, v := range ds.Vars {
		w, ok := o.Vars[name]
		if !ok || !slices.Equal(v.Dims, w.Dims) {
			return false
		}
		if (v.Data == nil) != (w.Data == nil) {
			return false
		}
		if v.Data == nil {
			continue
		}
		r1, c1 := v.Data.Dims()
		r2, c2 := w.Data.Dims()
		if r1 != r2 || c1 != c2 || !floats.Same(v.Values(), w.Values()) {
			return false
		}
	}
	return ds.Attrs.equal(o.Attrs)
}

func (a Attributes) equal(b Attributes) bool {
	if a.Version != b.Version || a.Filename != b.Filename {
		return false
	}
	if (a.Position == nil) != (b.Position == nil) {
		return false
	}
	if a.Position != nil && *a.Position != *b.Position {
		return false
	}
	if len(a.Header) != len(b.Header) {
		return false
	}
	for k, v := range a.Header {
		if w, ok := b.Header[k]; !ok || w != v {
			return false
		}
	}
	return true
}

// Display dataset overview
func (ds *Dataset) String() string {
	if len(ds.Time) == 0 {
		return fmt.Sprintf("%s (RINEX %.2f): NO DATA", ds.Kind, ds.Version)
	}
	var svs []Satellite
	for _, s := range ds.SV {
		if !slices.Contains(svs, s) {
			svs = append(svs, s)
		}
	}
	var sb strings.Builder
	for _, s := range svs {
		sb.WriteString(" ")
		sb.WriteString(s.String())
	}
	first, last := ds.Time[0], ds.Time[len(ds.Time)-1]
	var pos string
	if ds.Attrs.Position != nil {
		pos = fmt.Sprintf("position(llh):\n\t%s\n", ToLLH(*ds.Attrs.Position))
	}
	a := `%s (RINEX %.2f) %s
datetime:
	%s - %s (%d)
	%s - %s (GPST)
%ssats:
	%s
fields:
	%s
`
	return fmt.Sprintf(a, ds.Kind, ds.Version, ds.Attrs.Filename,
		first.UTC().Format("2006/01/02 15:04:05.000"), last.UTC().Format("2006/01/02 15:04:05.000"), len(ds.Time),
		NewGPSTime(first), NewGPSTime(last), pos,
		strings.TrimSpace(sb.String()), strings.Join(ds.Fields, " "))
}

// ------------------------------------
// Assemblers
// ------------------------------------

// Collects NAV records column by column in file order
type navAssembler struct {
	layout *FieldLayout
	times  []time.Time
	svs    []Satellite
	cols   map[string][]float64
	counts map[SatelliteSystem]int
}

func newNavAssembler() *navAssembler {
	return &navAssembler{cols: map[string][]float64{}, counts: map[SatelliteSystem]int{}}
}

// All records of one file must share the first record's layout
func (a *navAssembler) add(rec *Record, layout *FieldLayout) error {
	if a.layout == nil {
		a.layout = layout
	} else if layout != a.layout {
		return &ParseError{
			Err: ErrMixedLayout,
			Msg: fmt.Sprintf("%s record after %s records", layout.System, a.layout.System),
			Raw: rec.SV.String(),
		}
	}
	a.times = append(a.times, rec.Time)
	a.svs = append(a.svs, rec.SV)
	a.counts[rec.SV.System]++
	for _, name := range layout.fields {
		v, ok := rec.Values[name]
		if !ok {
			v = math.NaN()
		}
		a.cols[name] = append(a.cols[name], v)
	}
	return nil
}

func (a *navAssembler) dataset(h *Header, attrs Attributes) *Dataset {
	ds := &Dataset{
		Kind:    Navigation,
		Version: h.Version,
		Time:    a.times,
		SV:      a.svs,
		Vars:    map[string]*Variable{},
		Attrs:   attrs,
	}
	if a.layout == nil {
		return ds
	}
	ds.System = a.layout.System
	ds.Fields = a.layout.Fields()
	for _, name := range ds.Fields {
		v := &Variable{Dims: []string{DimTime}}
		if n := len(a.times); n > 0 {
			v.Data = mat.NewDense(n, 1, a.cols[name])
		}
		ds.Vars[name] = v
	}
	return ds
}

// Collects OBS epochs; the satellite axis grows as new satellites appear
type obsAssembler struct {
	fields  []string
	index   map[string]int
	times   []time.Time
	flags   []float64
	svs     []Satellite
	svIndex map[Satellite]int
	rows    [][]obsCell // rows[epoch]
	counts  map[SatelliteSystem]int
}

type obsCell struct {
	sv     int
	values []float64 // aligned to fields
}

func newObsAssembler(fields []string) *obsAssembler {
	a := &obsAssembler{
		fields:  fields,
		index:   make(map[string]int, len(fields)),
		svIndex: map[Satellite]int{},
		counts:  map[SatelliteSystem]int{},
	}
	for i, f := range fields {
		a.index[f] = i
	}
	return a
}

func (a *obsAssembler) addEpoch(t time.Time, flag int) {
	a.times = append(a.times, t)
	a.flags = append(a.flags, float64(flag))
	a.rows = append(a.rows, nil)
}

func (a *obsAssembler) add(rec *Record) {
	j, ok := a.svIndex[rec.SV]
	if !ok {
		j = len(a.svs)
		a.svs = append(a.svs, rec.SV)
		a.svIndex[rec.SV] = j
	}
	a.counts[rec.SV.System]++
	values := make([]float64, len(a.fields))
	for i := range values {
		values[i] = math.NaN()
	}
	for name, v := range rec.Values {
		if i, ok := a.index[name]; ok {
			values[i] = v
		}
	}
	last := len(a.rows) - 1
	a.rows[last] = append(a.rows[last], obsCell{sv: j, values: values})
}

func (a *obsAssembler) dataset(h *Header, attrs Attributes) *Dataset {
	ds := &Dataset{
		Kind:    Observation,
		Version: h.Version,
		Time:    a.times,
		SV:      a.svs,
		Fields:  slices.Clone(a.fields),
		Vars:    map[string]*Variable{},
		Attrs:   attrs,
	}
	nt, nsv := len(a.times), len(a.svs)
	flag := &Variable{Dims: []string{DimTime}}
	if nt > 0 {
		flag.Data = mat.NewDense(nt, 1, a.flags)
	}
	ds.Vars[FlagVar] = flag
	for k, name := range a.fields {
		v := &Variable{Dims: []string{DimTime, DimSV}}
		if nt > 0 && nsv > 0 {
			data := make([]float64, nt*nsv)
			for i := range data {
				data[i] = math.NaN()
			}
			for i, row := range a.rows {
				for _, c := range row {
					data[i*nsv+c.sv] = c.values[k]
				}
			}
			v.Data = mat.NewDense(nt, nsv, data)
		}
		ds.Vars[name] = v
	}
	return ds
}
