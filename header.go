// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.15
//

package gorinex

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/spatial/r3"
)

// FileKind is the RINEX file type read from column 20 of the first line
type FileKind byte

const (
	Navigation  FileKind = 'N'
	Observation FileKind = 'O'
)

func (k FileKind) String() string {
	switch k {
	case Navigation:
		return "NAV"
	case Observation:
		return "OBS"
	default:
		return fmt.Sprintf("unknown(%q)", byte(k))
	}
}

// RINEX file types that exist but are not read by this package
const otherRinexTypes = "GHMCLBQEJIS"

// Header holds everything derived from a RINEX header. It is not modified after ReadHeader returns.
type Header struct {
	Version  float64
	Kind     FileKind
	System   SatelliteSystem // Column 40 of the first line, 0 if absent
	Systems  []SatelliteSystem
	ObsTypes map[SatelliteSystem][]string
	Attrs    map[string]string // Header values keyed by label; repeated labels are joined by newlines
	Labels   []string          // Labels in file order, repeats included
}

// Major returns the dialect selecting integer part of the version.
func (h *Header) Major() int {
	return int(h.Version)
}

// ApproxPosition parses "APPROX POSITION XYZ" into a vector.
func (h *Header) ApproxPosition() (r3.Vec, error) {
	v, ok := h.Attrs[labelApproxPos]
	if !ok {
		return r3.Vec{}, ErrNoApproxPosition
	}
	la := strings.Fields(v)
	if len(la) < 3 {
		return r3.Vec{}, newParseError(ErrMalformedHeader, 0, v, "%s needs 3 values", labelApproxPos)
	}
	var xyz [3]float64
	for i := range xyz {
		f := decodeField(la[i])
		if f.state != fieldValue {
			return r3.Vec{}, newParseError(ErrMalformedHeader, 0, v, "%s value %d", labelApproxPos, i)
		}
		xyz[i] = f.value
	}
	return r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

// ObsTypesFor returns the observation types declared for sys.
func (h *Header) ObsTypesFor(sys SatelliteSystem) []string {
	return h.ObsTypes[sys]
}

// ReadHeader reads a RINEX header up to and including the END OF HEADER line.
func ReadHeader(r io.Reader) (*Header, error) {
	return scanHeader(newLineReader(r))
}

func scanHeader(lr *lineReader) (*Header, error) {

	// Check version and file type
	line, ok := lr.Next()
	if !ok {
		if err := lr.Err(); err != nil {
			return nil, err
		}
		return nil, newParseError(ErrMalformedHeader, 0, "", "empty input")
	}
	h, err := parseVersionLine(line)
	if err != nil {
		return nil, annotate(err, "", lr.Line(), "")
	}
	h.addAttr(labelVersionType, headerValue(line))

	// Read header lines until END OF HEADER
	for {
		line, ok := lr.Next()
		if !ok {
			if err := lr.Err(); err != nil {
				return nil, err
			}
			return nil, newParseError(ErrMissingHeaderTerminator, lr.Line(), "", "input ended inside header")
		}
		if strings.Contains(line, labelEndOfHeader) {
			break
		}
		label := headerLabel(line)
		switch label {
		case "":
			continue
		case labelObsTypes3:
			if err := h.readObsTypes3(lr, line); err != nil {
				return nil, err
			}
		case labelObsTypes2:
			if err := h.readObsTypes2(lr, line); err != nil {
				return nil, err
			}
		default:
			h.addAttr(label, headerValue(line))
		}
	}

	// RINEX 2 declares one list of types for every system in the file
	if h.Major() == 2 && h.Kind == Observation {
		types := h.ObsTypes[0]
		delete(h.ObsTypes, 0)
		for _, sys := range knownSystems {
			h.ObsTypes[sys] = types
		}
		h.Systems = slices.Clone(knownSystems)
	}
	return h, nil
}

func parseVersionLine(line string) (*Header, error) {
	if len(line) < 21 {
		return nil, newParseError(ErrMalformedHeader, 0, line, "first line has %d characters, need at least 21", len(line))
	}
	ver, err := strconv.ParseFloat(strings.TrimSpace(line[:9]), 64)
	if err != nil {
		return nil, newParseError(ErrMalformedHeader, 0, line[:9], "invalid version")
	}
	if v := int(ver); v != 2 && v != 3 {
		return nil, newParseError(ErrUnsupportedVersion, 0, line[:9], "version %g", ver)
	}
	h := &Header{
		Version:  ver,
		ObsTypes: map[SatelliteSystem][]string{},
		Attrs:    map[string]string{},
	}
	switch typ := line[20]; {
	case typ == 'N' || typ == 'O':
		h.Kind = FileKind(typ)
	case strings.IndexByte(otherRinexTypes, typ) >= 0:
		return nil, newParseError(ErrUnsupportedFileKind, 0, string(typ), "file type %c", typ)
	default:
		return nil, newParseError(ErrMalformedHeader, 0, string(typ), "unrecognized file type")
	}
	if len(line) > 40 {
		h.System = SatelliteSystem(line[40])
	}
	return h, nil
}

func (h *Header) addAttr(label, value string) {
	value = strings.TrimRight(value, " ")
	h.Labels = append(h.Labels, label)
	if prev, ok := h.Attrs[label]; ok {
		h.Attrs[label] = prev + "\n" + value
		return
	}
	h.Attrs[label] = value
}

// Read continuation lines of a type list, each of which must repeat the label
func continueTypes(lr *lineReader, label string, extra int, types []string) ([]string, error) {
	for i := 0; i < extra; i++ {
		line, ok := lr.Next()
		if !ok {
			return nil, newParseError(ErrMissingHeaderTerminator, lr.Line(), "", "input ended inside %s", label)
		}
		if headerLabel(line) != label {
			return nil, newParseError(ErrMalformedHeader, lr.Line(), line, "continuation line of %s", label)
		}
		types = append(types, strings.Fields(padRight(line, labelCol)[6:labelCol])...)
	}
	return types, nil
}

// Read observation codes of one system (RINEX 3)
func (h *Header) readObsTypes3(lr *lineReader, line string) error {
	val := padRight(line, labelCol)
	sys := SatelliteSystem(val[0])
	n, err := strconv.Atoi(strings.TrimSpace(val[1:6]))
	if err != nil || n < 0 {
		return newParseError(ErrMalformedHeader, lr.Line(), line, "invalid number of observation types")
	}
	types := strings.Fields(val[6:labelCol])
	extra := 0
	if n > 0 {
		extra = (n - 1) / obs3TypesLine
	}
	if types, err = continueTypes(lr, labelObsTypes3, extra, types); err != nil {
		return err
	}
	if len(types) != n {
		return newParseError(ErrMalformedHeader, lr.Line(), line, "%c declares %d observation types, found %d", byte(sys), n, len(types))
	}
	if !slices.Contains(h.Systems, sys) {
		h.Systems = append(h.Systems, sys)
	}
	h.ObsTypes[sys] = append(h.ObsTypes[sys], types...)
	return nil
}

// Read observation codes shared by all systems (RINEX 2)
func (h *Header) readObsTypes2(lr *lineReader, line string) error {
	val := padRight(line, labelCol)
	n, err := strconv.Atoi(strings.TrimSpace(val[:6]))
	if err != nil || n < 0 {
		return newParseError(ErrMalformedHeader, lr.Line(), line, "invalid number of observation types")
	}
	types := strings.Fields(val[6:labelCol])
	extra := 0
	if n > 0 {
		extra = (n - 1) / obs2TypesLine
	}
	if types, err = continueTypes(lr, labelObsTypes2, extra, types); err != nil {
		return err
	}
	if len(types) != n {
		return newParseError(ErrMalformedHeader, lr.Line(), line, "%d observation types declared, found %d", n, len(types))
	}
	h.ObsTypes[0] = append(h.ObsTypes[0], types...)
	return nil
}
