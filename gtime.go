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
	"time"
)

// GPS time starts from 1980/1/6 00:00:00
var gpsEpoch = time.Date(1980, 1, 6, 0, 0, 0, 0, time.UTC)

const secPerWeek = 3600 * 24 * 7

// GPSTime is an epoch as GPS week and seconds of week.
// No leap seconds are applied; RINEX epochs are already in the file's time system.
type GPSTime struct {
	Week int
	Sec  float64
}

func NewGPSTime(dt time.Time) GPSTime {
	t := dt.Unix() - gpsEpoch.Unix() // Elapsed seconds since 1980/1/6 00:00:00
	week := t / secPerWeek
	sec := t % secPerWeek
	if sec < 0 {
		week--
		sec += secPerWeek
	}
	return GPSTime{
		Week: int(week),
		Sec:  float64(sec) + float64(dt.Nanosecond())/1e9,
	}
}

func (p GPSTime) ToTime() time.Time {
	i := int64(math.Trunc(p.Sec))
	t := int64(secPerWeek*p.Week) + i + gpsEpoch.Unix()
	n := int64(math.Round((p.Sec - float64(i)) * 1e9))
	return time.Unix(t, n).UTC()
}

func (p GPSTime) String() string {
	return fmt.Sprintf("week%d %7.1fs", p.Week, p.Sec)
}
