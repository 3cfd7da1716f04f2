// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.17
//

package gorinex

import (
	"strings"

	"golang.org/x/exp/slices"
)

// ------------------------------------
// For command argument parsing
// ------------------------------------

// SystemList is a flag.Value holding satellite systems like "G,R". Empty means all.
type SystemList []SatelliteSystem

func (p *SystemList) Set(s string) error {
	l, err := ParseSystems(s)
	if err != nil {
		return err
	}
	*p = l
	return nil
}

func (p *SystemList) String() string {
	if p == nil {
		return ""
	}
	a := make([]string, len(*p))
	for i, s := range *p {
		a[i] = string(byte(s))
	}
	return strings.Join(a, ",")
}

func (p *SystemList) Contains(s SatelliteSystem) bool {
	return len(*p) == 0 || slices.Contains(*p, s)
}

// ParseSystems reads a comma-separated list of system letters. "" and "all" select every system.
func ParseSystems(s string) (SystemList, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return SystemList{}, nil
	}
	var l SystemList
	for _, a := range strings.Split(s, ",") {
		a = strings.TrimSpace(a)
		if len(a) != 1 {
			return nil, &ParseError{Err: ErrUnsupportedSatelliteSystem, Raw: a, Msg: "expected one system letter"}
		}
		sys := SatelliteSystem(strings.ToUpper(a)[0])
		if !sys.IsValid() {
			return nil, &ParseError{Err: ErrUnsupportedSatelliteSystem, Raw: a, Msg: "unknown satellite system"}
		}
		if !slices.Contains(l, sys) {
			l = append(l, sys)
		}
	}
	return l, nil
}
