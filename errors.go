// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.12
//

package gorinex

import (
	"errors"
	"fmt"
	"strings"
)

// Every parse error wraps exactly one of these; test with errors.Is.
var (
	ErrMalformedHeader            = errors.New("malformed header")
	ErrMissingHeaderTerminator    = errors.New("missing END OF HEADER")
	ErrUnsupportedVersion         = errors.New("unsupported RINEX version")
	ErrUnsupportedFileKind        = errors.New("unsupported file kind")
	ErrUnsupportedSatelliteSystem = errors.New("unsupported satellite system")
	ErrMalformedEpochLine         = errors.New("malformed epoch line")
	ErrFieldDecode                = errors.New("field decode error")
	ErrMixedLayout                = errors.New("mixed record layouts")
)

// ErrNoApproxPosition is returned by Header.ApproxPosition when the header has no such line.
var ErrNoApproxPosition = errors.New("no APPROX POSITION XYZ in header")

// ParseError carries the location and raw text of a parse failure.
type ParseError struct {
	Err    error  // One of the Err* sentinels
	File   string // Source file name, if known
	Line   int    // 1-based line number, 0 if unknown
	Record string // Record key (satellite and epoch) if the failure is inside a record
	Raw    string // Offending raw text
	Msg    string
}

func (e *ParseError) Error() string {
	var sb strings.Builder
	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(":")
	}
	if e.Line > 0 {
		sb.WriteString(fmt.Sprintf("%d:", e.Line))
	}
	if sb.Len() > 0 {
		sb.WriteString(" ")
	}
	sb.WriteString(e.Err.Error())
	if e.Msg != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Msg)
	}
	if e.Record != "" {
		sb.WriteString(fmt.Sprintf(" (record %s)", e.Record))
	}
	if e.Raw != "" {
		sb.WriteString(fmt.Sprintf(" [%q]", e.Raw))
	}
	return sb.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Fill in location details that the inner decoder did not know about
func annotate(err error, file string, line int, record string) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		if pe.File == "" {
			pe.File = file
		}
		if pe.Line == 0 {
			pe.Line = line
		}
		if pe.Record == "" {
			pe.Record = record
		}
	}
	return err
}

func newParseError(sentinel error, line int, raw string, format string, a ...any) *ParseError {
	return &ParseError{Err: sentinel, Line: line, Raw: raw, Msg: fmt.Sprintf(format, a...)}
}

// ErrorReason returns a short label for err, used as a metric label.
func ErrorReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformedHeader):
		return "malformed_header"
	case errors.Is(err, ErrMissingHeaderTerminator):
		return "missing_header_terminator"
	case errors.Is(err, ErrUnsupportedVersion):
		return "unsupported_version"
	case errors.Is(err, ErrUnsupportedFileKind):
		return "unsupported_file_kind"
	case errors.Is(err, ErrUnsupportedSatelliteSystem):
		return "unsupported_satellite_system"
	case errors.Is(err, ErrMalformedEpochLine):
		return "malformed_epoch_line"
	case errors.Is(err, ErrFieldDecode):
		return "field_decode"
	case errors.Is(err, ErrMixedLayout):
		return "mixed_layout"
	default:
		return "io"
	}
}
