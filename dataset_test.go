// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.16
//

package gorinex

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatasetEqual(t *testing.T) {
	a := readTestdata(t, "demo.10o")
	b := readTestdata(t, "demo.10o")
	require.True(t, a.Equal(b), "NaN cells must compare equal")

	b.Var("C1").Data.Set(0, 0, 1)
	assert.False(t, a.Equal(b))

	c := readTestdata(t, "demo.10o")
	c.Attrs.Header["COMMENT"] = "other"
	assert.False(t, a.Equal(c))

	d := readTestdata(t, "demo.10o", WithSystems(SystemGPS))
	assert.False(t, a.Equal(d))

	assert.True(t, (*Dataset)(nil).Equal(nil))
	assert.False(t, a.Equal(nil))
}

func TestObsAssemblerGrowsSatelliteAxis(t *testing.T) {
	asm := newObsAssembler([]string{"C1C", "S1C"})
	t0 := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	g1 := Satellite{SystemGPS, 1}
	r2 := Satellite{SystemGLONASS, 2}

	asm.addEpoch(t0, 0)
	asm.add(&Record{SV: g1, Time: t0, Values: map[string]float64{"C1C": 1}})
	asm.addEpoch(t0.Add(time.Second), 1)
	asm.add(&Record{SV: r2, Time: t0, Values: map[string]float64{"C1C": 2, "S1C": 3, "X": 9}})
	asm.add(&Record{SV: g1, Time: t0, Values: map[string]float64{"S1C": 4}})
	asm.addEpoch(t0.Add(2*time.Second), 0)

	ds := asm.dataset(&Header{Version: 3.04}, Attributes{})
	assert.Equal(t, []Satellite{g1, r2}, ds.SV)
	r, c := ds.Var("C1C").Data.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, c)

	want := []float64{1, math.NaN(), math.NaN(), 2, math.NaN(), math.NaN()}
	got := ds.Var("C1C").Values()
	for i := range want {
		if math.IsNaN(want[i]) {
			assert.True(t, math.IsNaN(got[i]), "C1C[%d]", i)
		} else {
			assert.Equal(t, want[i], got[i], "C1C[%d]", i)
		}
	}
	assert.Equal(t, 4.0, ds.At("S1C", 1, 0))
	assert.Equal(t, []float64{0, 1, 0}, ds.Var(FlagVar).Values())
	assert.Equal(t, map[SatelliteSystem]int{SystemGPS: 2, SystemGLONASS: 1}, asm.counts)
}

func TestEmptyObsDataset(t *testing.T) {
	ds := newObsAssembler([]string{"C1C"}).dataset(&Header{Version: 3.02}, Attributes{})
	assert.Nil(t, ds.Var("C1C").Data)
	assert.Nil(t, ds.Var(FlagVar).Values())
	assert.True(t, math.IsNaN(ds.At("C1C", 0, 0)))
	assert.Contains(t, ds.String(), "NO DATA")
}

func TestDatasetString(t *testing.T) {
	s := readTestdata(t, "demo3.10o").String()
	assert.True(t, strings.HasPrefix(s, "OBS (RINEX 3.02) demo3.10o"))
	assert.Contains(t, s, "2010/03/05 00:00:30.000 - 2010/03/05 00:01:00.500 (2)")
	assert.Contains(t, s, "week1573 432030.0s - week1573 432060.5s (GPST)")
	assert.Contains(t, s, "35.679514962 139.561384732 109.0133")
	assert.Contains(t, s, "G13 R19 G04")
	assert.Contains(t, s, "C1C L1C D1C S1C")
}

func TestNavStringHasNoPosition(t *testing.T) {
	s := readTestdata(t, "demo3.10n").String()
	assert.NotContains(t, s, "position")
	assert.Contains(t, s, "S20")
}
