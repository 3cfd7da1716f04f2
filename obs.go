// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.19
//

package gorinex

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/exp/slices"
)

// Epoch flags above this value announce event records instead of observations
const maxObsFlag = 1

// Epoch flag of cycle slip records, which are laid out like observations
const cycleSlipFlag = 6

// Parsed epoch line of an observation file
type obsEpoch struct {
	time time.Time
	flag int
	nsat int
	sats []string // RINEX 2 only: satellite names listed on the epoch line(s)
}

// Resolved observation layouts, one per satellite system in use
type obsLayouts struct {
	bySys  map[SatelliteSystem]*FieldLayout
	fields []string
	use    func(SatelliteSystem) bool
}

// Resolve the per-system layouts once from the header; fields is the union of all types in declaration order
func newObsLayouts(h *Header, reg *Registry, use func(SatelliteSystem) bool) (*obsLayouts, error) {
	ol := &obsLayouts{bySys: map[SatelliteSystem]*FieldLayout{}, use: use}
	for _, sys := range h.Systems {
		if !use(sys) {
			continue
		}
		types := h.ObsTypesFor(sys)
		if len(types) == 0 {
			continue
		}
		l, err := reg.ObsLayout(h.Major(), sys, types)
		if err != nil {
			return nil, err
		}
		ol.bySys[sys] = l
		for _, t := range types {
			if !slices.Contains(ol.fields, t) {
				ol.fields = append(ol.fields, t)
			}
		}
	}
	return ol, nil
}

// Read date and time from a RINEX 3 observation epoch line
//
//	> YYYY MM DD HH MM SS.SSSSSSS  F NNN
func obsEpoch3(line string) (*obsEpoch, error) {
	if line == "" || line[0] != '>' {
		return nil, newParseError(ErrMalformedEpochLine, 0, line, "epoch line must start with '>'")
	}
	c := newColumns(line, 35)
	e := &obsEpoch{
		flag: c.atoiOrZero(31, 32),
		nsat: c.atoiOrZero(32, 35),
	}
	if c.err != nil || e.flag > maxObsFlag {
		return e, c.err
	}
	year := c.atoi(2, 6)
	month := c.atoi(7, 9)
	day := c.atoi(10, 12)
	hour := c.atoi(13, 15)
	minute := c.atoi(16, 18)
	sec := c.atof(18, 29)
	checkEpoch(c, year, month, day, hour, minute, sec)
	if c.err != nil {
		return nil, c.err
	}
	e.time = epochTime(year, month, day, hour, minute, sec)
	return e, nil
}

// Read date and time plus the satellite list from a RINEX 2 observation epoch line
//
//	 YY MM DD HH MM SS.SSSSSSS  F NNNSNNSNN...
func obsEpoch2(lr *lineReader, line string) (*obsEpoch, error) {
	c := newColumns(line, 68)
	e := &obsEpoch{
		flag: c.atoiOrZero(28, 29),
		nsat: c.atoiOrZero(29, 32),
	}
	if c.err != nil {
		return nil, c.err
	}
	switch {
	case e.flag == cycleSlipFlag:
		// Only the satellite list is needed to step over the records
	case e.flag > maxObsFlag:
		return e, nil
	default:
		year := FullYear(c.atoi(1, 3))
		month := c.atoi(4, 6)
		day := c.atoi(7, 9)
		hour := c.atoi(10, 12)
		minute := c.atoi(13, 15)
		sec := c.atof(15, 26)
		checkEpoch(c, year, month, day, hour, minute, sec)
		if c.err != nil {
			return nil, c.err
		}
		e.time = epochTime(year, month, day, hour, minute, sec)
	}

	// Satellite list, 12 per line, continued on following lines
	list := c.str(32, 68)
	for k := 0; k < e.nsat; k++ {
		if k > 0 && k%obs2SatsLine == 0 {
			cont, ok := lr.Next()
			if !ok {
				return nil, newParseError(ErrMalformedEpochLine, lr.Line(), line, "satellite list ended after %d of %d", k, e.nsat)
			}
			list = padRight(cont, 68)[32:68]
		}
		j := (k % obs2SatsLine) * 3
		e.sats = append(e.sats, list[j:j+3])
	}
	return e, nil
}

// Skip the special records following an event epoch
func skipEventRecords(lr *lineReader, n int) error {
	for i := 0; i < n; i++ {
		if _, ok := lr.Next(); !ok {
			return newParseError(ErrMalformedEpochLine, lr.Line(), "", "event announces %d records, input ended after %d", n, i)
		}
	}
	return nil
}

func (ol *obsLayouts) layoutFor(sv Satellite, line int, raw string) (*FieldLayout, error) {
	l, ok := ol.bySys[sv.System]
	if !ok {
		return nil, newParseError(ErrUnsupportedSatelliteSystem, line, raw, "no observation types declared for %s", sv.System)
	}
	return l, nil
}

func obsKey(sv Satellite, t time.Time) string {
	return fmt.Sprintf("%s %s", sv, t.Format("2006-01-02T15:04:05.000000"))
}

// Read observation epochs following a RINEX 3 header
func readObsBody3(lr *lineReader, ol *obsLayouts, asm *obsAssembler) error {
	for {
		line, ok := lr.Next()
		if !ok {
			return lr.Err()
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		epochLine := lr.Line()
		e, err := obsEpoch3(line)
		if err != nil {
			return annotate(err, "", epochLine, "")
		}
		if e.flag > maxObsFlag {
			if err := skipEventRecords(lr, e.nsat); err != nil {
				return err
			}
			continue
		}
		asm.addEpoch(e.time, e.flag)
		for i := 0; i < e.nsat; i++ {
			sl, ok := lr.Next()
			if !ok {
				return newParseError(ErrMalformedEpochLine, epochLine, line, "epoch lists %d satellites, input ended after %d", e.nsat, i)
			}
			sv, err := ParseSatellite(padRight(sl, 3)[:3])
			if err != nil {
				return annotate(err, "", lr.Line(), "")
			}
			if !ol.use(sv.System) {
				continue
			}
			l, err := ol.layoutFor(sv, lr.Line(), sl)
			if err != nil {
				return err
			}
			width := 3 + l.Slots()*l.Width
			values, err := l.decode(padRight(sl, width)[3:width])
			if err != nil {
				return annotate(err, "", lr.Line(), obsKey(sv, e.time))
			}
			asm.add(&Record{SV: sv, Time: e.time, Flag: e.flag, Values: values})
		}
	}
}

// Read observation epochs following a RINEX 2 header
func readObsBody2(lr *lineReader, ol *obsLayouts, ntypes int, asm *obsAssembler) error {
	nlines := (ntypes + obs2PerLine - 1) / obs2PerLine
	for {
		line, ok := lr.Next()
		if !ok {
			return lr.Err()
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		epochLine := lr.Line()
		e, err := obsEpoch2(lr, line)
		if err != nil {
			return annotate(err, "", epochLine, "")
		}
		switch {
		case e.flag == cycleSlipFlag:
			if err := skipEventRecords(lr, len(e.sats)*nlines); err != nil {
				return err
			}
			continue
		case e.flag > maxObsFlag:
			if err := skipEventRecords(lr, e.nsat); err != nil {
				return err
			}
			continue
		}
		asm.addEpoch(e.time, e.flag)
		for _, name := range e.sats {
			var buf strings.Builder
			buf.Grow(nlines * lineWidth)
			for k := 0; k < nlines; k++ {
				sl, ok := lr.Next()
				if !ok {
					return newParseError(ErrMalformedEpochLine, epochLine, line, "observations of %s end early", strings.TrimSpace(name))
				}
				buf.WriteString(padRight(sl, lineWidth)[:lineWidth])
			}
			sv, err := ParseSatellite(name)
			if err != nil {
				return annotate(err, "", epochLine, "")
			}
			if !ol.use(sv.System) {
				continue
			}
			l, err := ol.layoutFor(sv, epochLine, name)
			if err != nil {
				return err
			}
			values, err := l.decode(buf.String()[:l.Slots()*l.Width])
			if err != nil {
				return annotate(err, "", lr.Line(), obsKey(sv, e.time))
			}
			asm.add(&Record{SV: sv, Time: e.time, Flag: e.flag, Values: values})
		}
	}
}
