// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.19
//

package gorinex

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFixed(t *testing.T) {
	assert := assert.New(t)

	v, err := DecodeFixed(" 0.123456789012D-04-0.301049090922E-03                   ", 19)
	require.NoError(t, err)
	require.Len(t, v, 3)
	assert.Equal(1.23456789012e-05, v[0])
	assert.Equal(-3.01049090922e-04, v[1])
	assert.True(math.IsNaN(v[2]))

	// Single token with no leading digit
	v, err = DecodeFixed(" .123456789012D-04", 18)
	require.NoError(t, err)
	assert.Equal([]float64{1.23456789012e-05}, v)

	// Leading-dot mantissa and lowercase exponent
	v, err = DecodeFixed("  .123456789012d+01", 19)
	require.NoError(t, err)
	assert.Equal(1.23456789012, v[0])

	// Short tail still forms a slot
	v, err = DecodeFixed("  1.5  2", 5)
	require.NoError(t, err)
	assert.Equal([]float64{1.5, 2}, v)

	v, err = DecodeFixed("", 19)
	require.NoError(t, err)
	assert.Empty(v)
}

func TestDecodeFixedMalformed(t *testing.T) {
	for _, raw := range []string{"      1.2.3", "        abc", "        NaN", "        Inf", "     0x1p-2"} {
		_, err := DecodeFixed(raw, 11)
		assert.ErrorIs(t, err, ErrFieldDecode, raw)

		var pe *ParseError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, raw, pe.Raw)
	}
}

func TestDecodeSlotsSpan(t *testing.T) {
	// 16 column OBS slots: F14.3 value, then LLI and SSI which are not part of the value
	v, err := decodeSlots(" 124173377.32516  23629347.915  ", 16, 14)
	require.NoError(t, err)
	assert.Equal(t, []float64{124173377.325, 23629347.915}, v)

	_, err = decodeSlots("1", 0, 0)
	assert.ErrorIs(t, err, ErrFieldDecode)
}

func TestFullYear(t *testing.T) {
	assert.Equal(t, 1980, FullYear(80))
	assert.Equal(t, 1999, FullYear(99))
	assert.Equal(t, 2000, FullYear(0))
	assert.Equal(t, 2079, FullYear(79))
	assert.Equal(t, 2010, FullYear(10))
}
