// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.12
//

package gorinex

import (
	"fmt"
	"strconv"
	"strings"
)

// Type representing satellite system like 'G'
type SatelliteSystem byte

const (
	SystemGPS     SatelliteSystem = 'G'
	SystemGLONASS SatelliteSystem = 'R'
	SystemSBAS    SatelliteSystem = 'S'
	SystemQZSS    SatelliteSystem = 'J'
	SystemBeiDou  SatelliteSystem = 'C'
	SystemGalileo SatelliteSystem = 'E'
)

// Recognized satellite systems in display order
var knownSystems = []SatelliteSystem{SystemGPS, SystemGLONASS, SystemSBAS, SystemQZSS, SystemBeiDou, SystemGalileo}

// Check validity of satellite system
func (s SatelliteSystem) IsValid() bool {
	switch s {
	case SystemGPS, SystemGLONASS, SystemSBAS, SystemQZSS, SystemBeiDou, SystemGalileo:
		return true
	}
	return false
}

func (s SatelliteSystem) String() string {
	switch s {
	case SystemGPS:
		return "GPS"
	case SystemGLONASS:
		return "GLONASS"
	case SystemSBAS:
		return "SBAS"
	case SystemQZSS:
		return "QZSS"
	case SystemBeiDou:
		return "BeiDou"
	case SystemGalileo:
		return "Galileo"
	default:
		return fmt.Sprintf("unknown(%q)", byte(s))
	}
}

// Offset returns the PRN offset of the system. Galileo has no assigned offset.
func (s SatelliteSystem) Offset() (int, error) {
	switch s {
	case SystemGPS:
		return OffsetGPS, nil
	case SystemGLONASS:
		return OffsetGLONASS, nil
	case SystemSBAS:
		return OffsetSBAS, nil
	case SystemQZSS:
		return OffsetQZSS, nil
	case SystemBeiDou:
		return OffsetBeiDou, nil
	case SystemGalileo:
		return 0, &ParseError{Err: ErrUnsupportedSatelliteSystem, Msg: "Galileo PRN offset is not defined", Raw: string(s)}
	default:
		return 0, &ParseError{Err: ErrUnsupportedSatelliteSystem, Msg: "unknown satellite system", Raw: string(s)}
	}
}

// Satellite names one space vehicle, e.g. G05
type Satellite struct {
	System SatelliteSystem
	PRN    int
}

func (s Satellite) String() string {
	return fmt.Sprintf("%c%02d", byte(s.System), s.PRN)
}

// ID folds the satellite into a single integer identifier using the PRN offsets.
func (s Satellite) ID() (int, error) {
	off, err := s.System.Offset()
	if err != nil {
		return 0, err
	}
	return s.PRN + off, nil
}

// ParseSatellite reads a 3 character satellite name like "G05", "G 5" or " 5".
// A blank system character means GPS, as in RINEX 2 files.
func ParseSatellite(s string) (Satellite, error) {
	if len(s) < 2 {
		return Satellite{}, &ParseError{Err: ErrMalformedEpochLine, Msg: "satellite name too short", Raw: s}
	}
	sys := SatelliteSystem(s[0])
	if sys == ' ' {
		sys = SystemGPS
	}
	prn, err := strconv.Atoi(strings.TrimSpace(s[1:]))
	if err != nil {
		return Satellite{}, &ParseError{Err: ErrMalformedEpochLine, Msg: "invalid satellite number", Raw: s}
	}
	if !sys.IsValid() {
		return Satellite{System: sys, PRN: prn}, &ParseError{Err: ErrUnsupportedSatelliteSystem, Msg: "unknown satellite system", Raw: s}
	}
	return Satellite{System: sys, PRN: prn}, nil
}
