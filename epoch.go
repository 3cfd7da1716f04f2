// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.19
//

package gorinex

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// FullYear expands a 2-digit RINEX 2 year: 80-99 are 1980-1999, 00-79 are 2000-2079.
func FullYear(yy int) int {
	if yy >= 80 && yy <= 99 {
		return yy + 1900
	}
	if yy < 80 {
		return yy + 2000
	}
	return yy
}

// Fixed column reader for epoch lines. The first failure sticks, so callers check err once.
type columns struct {
	line string
	err  error
}

func newColumns(line string, width int) *columns {
	return &columns{line: padRight(line, width)}
}

func (c *columns) atoi(from, to int) int {
	if c.err != nil {
		return 0
	}
	s := strings.TrimSpace(c.line[from:to])
	v, err := strconv.Atoi(s)
	if err != nil {
		c.err = newParseError(ErrMalformedEpochLine, 0, c.line[from:to], "columns %d-%d", from, to)
	}
	return v
}

// Like atoi, but blank columns read as zero
func (c *columns) atoiOrZero(from, to int) int {
	if c.err == nil && strings.TrimSpace(c.line[from:to]) == "" {
		return 0
	}
	return c.atoi(from, to)
}

func (c *columns) atof(from, to int) float64 {
	if c.err != nil {
		return 0
	}
	f := decodeField(c.line[from:to])
	if f.state != fieldValue {
		c.err = newParseError(ErrMalformedEpochLine, 0, c.line[from:to], "columns %d-%d", from, to)
	}
	return f.value
}

func (c *columns) str(from, to int) string {
	return c.line[from:to]
}

// Build a UTC epoch with seconds rounded to microseconds
func epochTime(year, month, day, hour, minute int, sec float64) time.Time {
	whole := math.Floor(sec)
	us := math.Round((sec - whole) * 1e6)
	return time.Date(year, time.Month(month), day, hour, minute, int(whole), int(us)*1000, time.UTC)
}

// Reject calendar values that time.Date would silently normalize, such as February 31
func checkEpoch(c *columns, year, month, day, hour, minute int, sec float64) {
	if c.err != nil {
		return
	}
	if month < 1 || month > 12 || day < 1 || day > 31 || hour < 0 || hour > 23 || minute < 0 || minute > 59 || sec < 0 || sec >= 61 {
		c.err = newParseError(ErrMalformedEpochLine, 0, c.line, "date or time out of range")
		return
	}
	if t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC); t.Month() != time.Month(month) || t.Day() != day {
		c.err = newParseError(ErrMalformedEpochLine, 0, c.line, "no such date %04d-%02d-%02d", year, month, day)
	}
}
