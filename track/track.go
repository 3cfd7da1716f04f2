// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.18
//

// Package track turns satellite positions broadcast in navigation messages
// into a ground track (latitude, longitude, altitude) for plotting.
package track

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
	"github.com/mkhts/gorinex"
)

// ErrNoPosition is returned for datasets without X, Y, Z position fields.
var ErrNoPosition = errors.New("dataset has no satellite positions")

// Point is one sub-satellite point.
type Point struct {
	Time  time.Time
	SV    gorinex.Satellite
	Lat   float64 // [deg]
	Lon   float64 // [deg]
	AltKm float64 // [km]
}

// FromNav converts the X, Y, Z fields (km, inertial frame) of a NAV dataset to
// geodetic points. Records with a missing coordinate are skipped.
func FromNav(ds *gorinex.Dataset) ([]Point, error) {
	if ds == nil || ds.Kind != gorinex.Navigation {
		return nil, ErrNoPosition
	}
	x, y, z := ds.Var("X"), ds.Var("Y"), ds.Var("Z")
	if x == nil || y == nil || z == nil {
		return nil, ErrNoPosition
	}

	var pts []Point
	for i, t := range ds.Time {
		v := satellite.Vector3{X: ds.At("X", i, 0), Y: ds.At("Y", i, 0), Z: ds.At("Z", i, 0)}
		if math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z) {
			continue
		}
		alt, _, ll := satellite.ECIToLLA(v, gmst(t))
		deg := satellite.LatLongDeg(ll)
		pts = append(pts, Point{
			Time:  t,
			SV:    ds.SV[i],
			Lat:   deg.Latitude,
			Lon:   deg.Longitude,
			AltKm: alt,
		})
	}
	return pts, nil
}

// Greenwich mean sidereal time [rad]
func gmst(t time.Time) float64 {
	t = t.UTC()
	year, month, day := t.Date()
	hour, min, sec := t.Clock()
	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	jd += float64(t.Nanosecond()) / 1e9 / 86400
	return satellite.ThetaG_JD(jd)
}

// Write prints points as tab-separated rows with a title line.
func Write(w io.Writer, pts []Point) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "time\tsv\tlat(deg)\tlon(deg)\talt(km)\n")
	for _, p := range pts {
		fmt.Fprintf(bw, "%s\t%s\t%.6f\t%.6f\t%.3f\n",
			p.Time.UTC().Format("2006-01-02T15:04:05.000"), p.SV, p.Lat, p.Lon, p.AltKm)
	}
	return bw.Flush()
}
