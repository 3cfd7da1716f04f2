// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.14
//

package gorinex

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// RINEX 2.11 specification
// https://files.igs.org/pub/data/format/rinex211.txt
// RINEX 3 SBAS navigation
// http://www.gage.es/sites/default/files/gLAB/HTML/SBAS_Navigation_Rinex_v3.01.html

// Ordered slot names of a GPS ephemeris record, 4 slots per continuation line. Empty names are spare slots.
var gpsNavSlots = []string{
	"SVclockBias", "SVclockDrift", "SVclockDriftRate",
	"IODE", "Crs", "DeltaN", "M0",
	"Cuc", "Eccentricity", "Cus", "sqrtA",
	"Toe", "Cic", "OMEGA0", "Cis",
	"Io", "Crc", "omega", "OMEGA DOT",
	"IDOT", "CodesL2", "GPSWeek", "L2Pflag",
	"SVacc", "SVhealth", "TGD", "IODC",
	"TransTime", "FitIntvl", "", "",
}

var sbasNavSlots = []string{
	"aGf0", "aGf1", "MsgTxTime",
	"X", "dX", "dX2", "SVhealth",
	"Y", "dY", "dY2", "URA",
	"Z", "dZ", "dZ2", "IODN",
}

// FieldLayout is the resolved column layout of one record type.
// It is immutable once built.
type FieldLayout struct {
	Version int
	Kind    FileKind
	System  SatelliteSystem
	Width   int // Characters per slot
	Span    int // Characters of a slot holding the value
	slots   []string
	fields  []string
}

func newFieldLayout(version int, kind FileKind, sys SatelliteSystem, width, span int, slots []string) *FieldLayout {
	l := &FieldLayout{
		Version: version,
		Kind:    kind,
		System:  sys,
		Width:   width,
		Span:    span,
		slots:   slices.Clone(slots),
	}
	for _, s := range slots {
		if s != "" {
			l.fields = append(l.fields, s)
		}
	}
	return l
}

// Fields returns the named fields in record order, without spare slots.
func (l *FieldLayout) Fields() []string {
	return slices.Clone(l.fields)
}

// Slots returns the number of fixed-width slots in one record.
func (l *FieldLayout) Slots() int {
	return len(l.slots)
}

func (l *FieldLayout) String() string {
	return fmt.Sprintf("RINEX %d %s %c (%d fields, width %d)", l.Version, l.Kind, byte(l.System), len(l.fields), l.Width)
}

// Decode the named slots of raw into field values. Spare slots are not read,
// so whatever a writer left there cannot fail the record. len(raw) must be Slots()*Width.
func (l *FieldLayout) decode(raw string) (map[string]float64, error) {
	if want := len(l.slots) * l.Width; len(raw) != want {
		return nil, newParseError(ErrFieldDecode, 0, "", "%d columns for layout with %d slots", len(raw), len(l.slots))
	}
	m := make(map[string]float64, len(l.fields))
	for i, name := range l.slots {
		if name == "" {
			continue
		}
		from := i * l.Width
		f := decodeField(raw[from : from+l.Span])
		if f.state == fieldMalformed {
			return nil, newParseError(ErrFieldDecode, 0, f.raw, "%s is not a number", name)
		}
		m[name] = f.Float()
	}
	return m, nil
}

// Column span [From, To) within a padded line
type span struct {
	From, To int
}

// Column geometry of one RINEX dialect
type dialect struct {
	navFirst     span // Data on the epoch line of a NAV record
	navCont      span // Data on each continuation line
	navContLines int  // Continuation lines per NAV record; 0 means read while lines start with a space
}

type layoutKey struct {
	version int
	kind    FileKind
	system  SatelliteSystem
}

// Registry maps (version, kind, satellite system) to field layouts.
// It is built once and only read afterwards, so it may be shared freely.
type Registry struct {
	layouts  map[layoutKey]*FieldLayout
	dialects map[int]dialect
}

var defaultRegistry = newDefaultRegistry()

// DefaultRegistry returns the shared registry of the layouts this package knows.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

func newDefaultRegistry() *Registry {
	r := &Registry{
		layouts: map[layoutKey]*FieldLayout{},
		dialects: map[int]dialect{
			2: {navFirst: span{22, 79}, navCont: span{3, 79}, navContLines: 7},
			3: {navFirst: span{23, 80}, navCont: span{4, 80}, navContLines: 0},
		},
	}
	// RINEX 2 NAV files are GPS only
	r.add(newFieldLayout(2, Navigation, SystemGPS, navFieldWidth, navFieldWidth, gpsNavSlots))
	r.add(newFieldLayout(3, Navigation, SystemGPS, navFieldWidth, navFieldWidth, gpsNavSlots))
	r.add(newFieldLayout(3, Navigation, SystemSBAS, navFieldWidth, navFieldWidth, sbasNavSlots))
	return r
}

func (r *Registry) add(l *FieldLayout) {
	r.layouts[layoutKey{l.Version, l.Kind, l.System}] = l
}

// Lookup returns the layout for a record. Recognized systems without a layout
// (GLONASS, QZSS, BeiDou, Galileo) fail with ErrUnsupportedSatelliteSystem.
func (r *Registry) Lookup(version int, kind FileKind, sys SatelliteSystem) (*FieldLayout, error) {
	if _, ok := r.dialects[version]; !ok {
		return nil, newParseError(ErrUnsupportedVersion, 0, "", "version %d", version)
	}
	if l, ok := r.layouts[layoutKey{version, kind, sys}]; ok {
		return l, nil
	}
	if !sys.IsValid() {
		return nil, newParseError(ErrUnsupportedSatelliteSystem, 0, string(sys), "unknown satellite system")
	}
	return nil, newParseError(ErrUnsupportedSatelliteSystem, 0, string(sys), "no %s layout for %s in RINEX %d", kind, sys, version)
}

// ObsLayout builds the layout of an observation record from header-declared types.
func (r *Registry) ObsLayout(version int, sys SatelliteSystem, types []string) (*FieldLayout, error) {
	if _, ok := r.dialects[version]; !ok {
		return nil, newParseError(ErrUnsupportedVersion, 0, "", "version %d", version)
	}
	if len(types) == 0 {
		return nil, newParseError(ErrUnsupportedSatelliteSystem, 0, string(sys), "no observation types declared for %s", sys)
	}
	return newFieldLayout(version, Observation, sys, obsFieldWidth, obsValueWidth, types), nil
}

func (r *Registry) dialect(version int) (dialect, error) {
	d, ok := r.dialects[version]
	if !ok {
		return d, newParseError(ErrUnsupportedVersion, 0, "", "version %d", version)
	}
	return d, nil
}
