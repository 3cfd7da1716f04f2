// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.14
//

package gorinex

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookup(t *testing.T) {
	reg := DefaultRegistry()
	assert.Same(t, reg, DefaultRegistry())

	gps2, err := reg.Lookup(2, Navigation, SystemGPS)
	require.NoError(t, err)
	assert.Equal(t, 31, gps2.Slots())
	assert.Len(t, gps2.Fields(), 29)
	assert.Equal(t, navFieldWidth, gps2.Width)

	gps3, err := reg.Lookup(3, Navigation, SystemGPS)
	require.NoError(t, err)
	assert.Equal(t, gps2.Fields(), gps3.Fields())

	sbas, err := reg.Lookup(3, Navigation, SystemSBAS)
	require.NoError(t, err)
	assert.Equal(t, 15, sbas.Slots())
	assert.Equal(t, "X", sbas.Fields()[3])

	for _, sys := range []SatelliteSystem{SystemGalileo, SystemGLONASS, SystemQZSS, SystemBeiDou, 'X'} {
		_, err := reg.Lookup(3, Navigation, sys)
		assert.ErrorIs(t, err, ErrUnsupportedSatelliteSystem, "%c", byte(sys))
	}
	_, err = reg.Lookup(2, Navigation, SystemSBAS)
	assert.ErrorIs(t, err, ErrUnsupportedSatelliteSystem)
	_, err = reg.Lookup(4, Navigation, SystemGPS)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestFieldsIsACopy(t *testing.T) {
	l, err := DefaultRegistry().Lookup(3, Navigation, SystemSBAS)
	require.NoError(t, err)
	f := l.Fields()
	f[0] = "changed"
	assert.Equal(t, "aGf0", l.Fields()[0])
}

func TestObsLayout(t *testing.T) {
	l, err := DefaultRegistry().ObsLayout(3, SystemGPS, []string{"C1C", "L1C"})
	require.NoError(t, err)
	assert.Equal(t, Observation, l.Kind)
	assert.Equal(t, 16, l.Width)
	assert.Equal(t, 14, l.Span)

	m, err := l.decode("         1.00015" + strings.Repeat(" ", 16))
	require.NoError(t, err)
	assert.Equal(t, 1.0, m["C1C"])
	assert.True(t, math.IsNaN(m["L1C"]))

	_, err = l.decode("         1.00015")
	assert.ErrorIs(t, err, ErrFieldDecode)

	_, err = DefaultRegistry().ObsLayout(3, SystemGPS, nil)
	assert.ErrorIs(t, err, ErrUnsupportedSatelliteSystem)
}
