// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.12
//

package gorinex

// PRN offsets used to fold satellites of different systems into one integer id
// https://github.com/mvglasow/satstat/wiki/NMEA-IDs
const (
	OffsetGPS     = 0
	OffsetGLONASS = 37
	OffsetSBAS    = 100
	OffsetQZSS    = 192
	OffsetBeiDou  = 0
)

// WGS84 ellipsoid
const (
	Re = 6378137.0           // Earth's radius [m]
	Fe = 1.0 / 298.257223563 // Earth's flattening
)

const (
	lineWidth     = 80 // Width of a RINEX text line
	labelCol      = 60 // First column of a header label
	navFieldWidth = 19 // D19.12 in NAV records
	obsFieldWidth = 16 // F14.3 + LLI + SSI in OBS records
	obsValueWidth = 14 // F14.3 part of an OBS slot
	obs2PerLine   = 5  // Observation slots per line in RINEX 2 OBS
	obs2TypesLine = 9  // Observation types per "# / TYPES OF OBSERV" line
	obs3TypesLine = 13 // Observation types per "SYS / # / OBS TYPES" line
	obs2SatsLine  = 12 // Satellites per RINEX 2 epoch line
)

// Header labels
const (
	labelVersionType = "RINEX VERSION / TYPE"
	labelObsTypes3   = "SYS / # / OBS TYPES"
	labelObsTypes2   = "# / TYPES OF OBSERV"
	labelApproxPos   = "APPROX POSITION XYZ"
	labelEndOfHeader = "END OF HEADER"
)
