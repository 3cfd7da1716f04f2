// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.17
//

package gorinex

import (
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemListFlag(t *testing.T) {
	var use SystemList
	fs := flag.NewFlagSet("t", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Var(&use, "use", "")

	require.NoError(t, fs.Parse([]string{"-use", "g,R,G"}))
	assert.Equal(t, SystemList{SystemGPS, SystemGLONASS}, use)
	assert.Equal(t, "G,R", use.String())
	assert.True(t, use.Contains(SystemGLONASS))
	assert.False(t, use.Contains(SystemSBAS))

	assert.Error(t, fs.Parse([]string{"-use", "GR"}))
	assert.Error(t, fs.Parse([]string{"-use", "M"}))
}

func TestParseSystemsAll(t *testing.T) {
	for _, s := range []string{"", "all", "ALL"} {
		l, err := ParseSystems(s)
		require.NoError(t, err)
		assert.Empty(t, l)
		assert.True(t, l.Contains(SystemBeiDou))
	}
}
