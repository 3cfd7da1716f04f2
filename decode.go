// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.14
//

package gorinex

import (
	"math"
	"strconv"
	"strings"
)

// Result of decoding one fixed-width slot
type fieldState uint8

const (
	fieldValue fieldState = iota
	fieldMissing
	fieldMalformed
)

type field struct {
	state fieldState
	value float64
	raw   string
}

// Float collapses a missing field to NaN.
func (f field) Float() float64 {
	if f.state == fieldMissing {
		return math.NaN()
	}
	return f.value
}

// Read a real value, absorbing the Fortran D exponent used in RINEX files
func decodeField(s string) field {
	t := strings.TrimSpace(s)
	if t == "" {
		return field{state: fieldMissing, value: math.NaN()}
	}
	t = strings.Map(func(r rune) rune {
		switch r {
		case 'D', 'd':
			return 'E'
		}
		return r
	}, t)
	// Only plain decimal notation; ParseFloat would also accept "Inf", "NaN" or hex
	for _, r := range t {
		if !(r >= '0' && r <= '9' || r == '.' || r == '+' || r == '-' || r == 'E' || r == 'e') {
			return field{state: fieldMalformed, raw: s}
		}
	}
	v, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return field{state: fieldMalformed, raw: s}
	}
	return field{state: fieldValue, value: v}
}

// DecodeFixed splits raw into ceil(len/width) slots of width characters and decodes each one.
// Blank slots decode to NaN; a slot that is neither blank nor a number is an ErrFieldDecode.
func DecodeFixed(raw string, width int) ([]float64, error) {
	return decodeSlots(raw, width, width)
}

// Decode slots of the given width, reading a value only from the first span characters of each
func decodeSlots(raw string, width, span int) ([]float64, error) {
	if width <= 0 || span <= 0 || span > width {
		return nil, newParseError(ErrFieldDecode, 0, "", "invalid slot geometry width=%d span=%d", width, span)
	}
	n := (len(raw) + width - 1) / width
	out := make([]float64, n)
	for i := range out {
		from := i * width
		to := min(from+span, len(raw))
		f := decodeField(raw[from:to])
		if f.state == fieldMalformed {
			return nil, newParseError(ErrFieldDecode, 0, f.raw, "slot %d is not a number", i)
		}
		out[i] = f.Float()
	}
	return out, nil
}
