// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.17
//

package gorinex

import (
	"fmt"
	"strings"
	"time"
)

// Raw text of one NAV record before decoding
type navRaw struct {
	sv     Satellite
	toc    time.Time
	line   int // Line number of the epoch line
	layout *FieldLayout
	buf    strings.Builder
}

func (r *navRaw) key() string {
	return fmt.Sprintf("%s %s", r.sv, r.toc.Format("2006-01-02T15:04:05.0"))
}

// Decode the accumulated text; its length must match the layout exactly
func (r *navRaw) decode() (*Record, error) {
	raw := r.buf.String()
	l := r.layout
	if want := l.Slots() * l.Width; len(raw) != want {
		return nil, newParseError(ErrFieldDecode, r.line, "", "record has %d columns, %s needs %d", len(raw), l, want)
	}
	m, err := l.decode(raw)
	if err != nil {
		return nil, err
	}
	return &Record{SV: r.sv, Time: r.toc, Values: m}, nil
}

// Read satellite and ToC from a RINEX 2 navigation epoch line
//
//	PRN YY MM DD HH MM SS.S
func navEpoch2(line string) (Satellite, time.Time, error) {
	c := newColumns(line, lineWidth)
	prn := c.atoi(0, 2)
	year := FullYear(c.atoi(3, 5))
	month := c.atoi(6, 8)
	day := c.atoi(9, 11)
	hour := c.atoi(12, 14)
	minute := c.atoi(15, 17)
	sec := c.atoi(17, 20)
	tenth := c.atoiOrZero(21, 22)
	checkEpoch(c, year, month, day, hour, minute, float64(sec))
	if c.err != nil {
		return Satellite{}, time.Time{}, c.err
	}
	t := time.Date(year, time.Month(month), day, hour, minute, sec, tenth*100000*1000, time.UTC)
	return Satellite{System: SystemGPS, PRN: prn}, t, nil
}

// Read satellite name and ToC from a RINEX 3 navigation epoch line
//
//	SNN YYYY MM DD HH MM SS
func navEpoch3(line string) (Satellite, time.Time, error) {
	c := newColumns(line, lineWidth)
	sv, err := ParseSatellite(c.str(0, 3))
	if err != nil {
		return sv, time.Time{}, err
	}
	year := c.atoi(4, 8)
	month := c.atoi(9, 11)
	day := c.atoi(12, 14)
	hour := c.atoi(15, 17)
	minute := c.atoi(18, 20)
	sec := c.atoi(21, 23)
	checkEpoch(c, year, month, day, hour, minute, float64(sec))
	if c.err != nil {
		return sv, time.Time{}, c.err
	}
	return sv, time.Date(year, time.Month(month), day, hour, minute, sec, 0, time.UTC), nil
}

// Read navigation records following the header
func readNavBody(lr *lineReader, h *Header, reg *Registry, asm *navAssembler) error {
	d, err := reg.dialect(h.Major())
	if err != nil {
		return err
	}
	for {
		line, ok := lr.Next()
		if !ok {
			return lr.Err()
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, err := readNavRecord(lr, line, h, reg, d)
		if err != nil {
			return err
		}
		if err := asm.add(rec.rec, rec.layout); err != nil {
			return annotate(err, "", rec.line, rec.key())
		}
	}
}

type navDecoded struct {
	*navRaw
	rec *Record
}

// Stitch the epoch line and its continuation lines into one record
func readNavRecord(lr *lineReader, line string, h *Header, reg *Registry, d dialect) (*navDecoded, error) {
	r := &navRaw{line: lr.Line()}
	var err error
	switch h.Major() {
	case 2:
		r.sv, r.toc, err = navEpoch2(line)
		if err == nil {
			r.layout, err = reg.Lookup(2, Navigation, SystemGPS)
		}
	default:
		r.sv, r.toc, err = navEpoch3(line)
		if err == nil {
			r.layout, err = reg.Lookup(h.Major(), Navigation, r.sv.System)
		}
	}
	if err != nil {
		raw := line
		if len(raw) > 23 {
			raw = raw[:23]
		}
		return nil, annotate(err, "", r.line, strings.TrimSpace(raw))
	}

	r.buf.Grow(r.layout.Slots() * r.layout.Width)
	first := padRight(line, d.navFirst.To)
	r.buf.WriteString(first[d.navFirst.From:d.navFirst.To])
	if d.navContLines > 0 {
		for i := 0; i < d.navContLines; i++ {
			cont, ok := lr.Next()
			if !ok {
				break
			}
			r.buf.WriteString(padRight(cont, d.navCont.To)[d.navCont.From:d.navCont.To])
		}
	} else {
		for {
			cont, ok := lr.Peek()
			if !ok || cont == "" || cont[0] != ' ' {
				break
			}
			lr.Next()
			r.buf.WriteString(padRight(cont, d.navCont.To)[d.navCont.From:d.navCont.To])
		}
	}

	rec, err := r.decode()
	if err != nil {
		return nil, annotate(err, "", r.line, r.key())
	}
	return &navDecoded{navRaw: r, rec: rec}, nil
}
