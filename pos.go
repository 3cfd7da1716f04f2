// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.17
//

package gorinex

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// PosLLH is a geodetic position on the WGS84 ellipsoid.
type PosLLH struct {
	Lat float64 // [rad]
	Lon float64 // [rad]
	Hei float64 // Ellipsoidal height [m]
}

func (llh PosLLH) String() string {
	return fmt.Sprintf("%.9f %.9f %.4f", llh.Lat/math.Pi*180, llh.Lon/math.Pi*180, llh.Hei)
}

// ToLLH converts an ECEF position [m] such as APPROX POSITION XYZ to latitude, longitude and height.
func ToLLH(pos r3.Vec) PosLLH {
	// In case of origin
	if pos.X == 0 && pos.Y == 0 && pos.Z == 0 {
		return PosLLH{Lat: 0, Lon: 0, Hei: -Re}
	}

	// Ellipsoid parameters
	f := Fe                     // Flattening
	a := Re                     // Semi-major axis
	b := a * (1 - f)            // Semi-minor axis
	e := math.Sqrt(f * (2 - f)) // Eccentricity

	// Parameters for coordinate transformation
	h := a*a - b*b
	p := math.Hypot(pos.X, pos.Y)
	t := math.Atan2(pos.Z*a, p*b)
	sint := math.Sin(t)
	cost := math.Cos(t)

	// Conversion to latitude and longitude
	lat := math.Atan2(pos.Z+h/b*sint*sint*sint, p-h/a*cost*cost*cost)
	lon := math.Atan2(pos.Y, pos.X)
	n := a / math.Sqrt(1-e*e*math.Sin(lat)*math.Sin(lat)) // Radius of curvature in the prime vertical
	hei := p/math.Cos(lat) - n
	return PosLLH{Lat: lat, Lon: lon, Hei: hei}
}
