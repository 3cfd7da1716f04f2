// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.12
//

package gorinex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSatelliteID(t *testing.T) {
	tests := []struct {
		sat  string
		want int
	}{
		{"G05", 5},
		{"R07", 44},
		{"S20", 120},
		{"J01", 193},
		{"C11", 11},
	}
	for _, tt := range tests {
		sv, err := ParseSatellite(tt.sat)
		require.NoError(t, err, tt.sat)
		assert.Equal(t, tt.sat, sv.String())
		id, err := sv.ID()
		require.NoError(t, err, tt.sat)
		assert.Equal(t, tt.want, id, tt.sat)
	}

	_, err := Satellite{SystemGalileo, 5}.ID()
	assert.ErrorIs(t, err, ErrUnsupportedSatelliteSystem)
	_, err = SatelliteSystem('X').Offset()
	assert.ErrorIs(t, err, ErrUnsupportedSatelliteSystem)
}

func TestParseSatellite(t *testing.T) {
	sv, err := ParseSatellite(" 5")
	require.NoError(t, err)
	assert.Equal(t, Satellite{SystemGPS, 5}, sv)

	sv, err = ParseSatellite("G 7")
	require.NoError(t, err)
	assert.Equal(t, Satellite{SystemGPS, 7}, sv)

	_, err = ParseSatellite("Gxx")
	assert.ErrorIs(t, err, ErrMalformedEpochLine)
	_, err = ParseSatellite("G")
	assert.ErrorIs(t, err, ErrMalformedEpochLine)

	sv, err = ParseSatellite("X01")
	assert.ErrorIs(t, err, ErrUnsupportedSatelliteSystem)
	assert.Equal(t, SatelliteSystem('X'), sv.System)
}

func TestSatelliteSystemString(t *testing.T) {
	assert.Equal(t, "BeiDou", SystemBeiDou.String())
	assert.True(t, SystemQZSS.IsValid())
	assert.False(t, SatelliteSystem('M').IsValid())
}
