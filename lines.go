// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.13
//

package gorinex

import (
	"bufio"
	"io"
	"strings"
)

// Line source with one line of look-ahead
type lineReader struct {
	sc      *bufio.Scanner
	lineNum int
	next    string
	hasNext bool
	done    bool
}

func newLineReader(r io.Reader) *lineReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1024*1024)
	return &lineReader{sc: sc}
}

func (lr *lineReader) fill() {
	if lr.hasNext || lr.done {
		return
	}
	if lr.sc.Scan() {
		lr.next = lr.sc.Text()
		lr.hasNext = true
		return
	}
	lr.done = true
}

// Next consumes and returns the next line.
func (lr *lineReader) Next() (string, bool) {
	lr.fill()
	if !lr.hasNext {
		return "", false
	}
	lr.hasNext = false
	lr.lineNum++
	return lr.next, true
}

// Peek returns the next line without consuming it.
func (lr *lineReader) Peek() (string, bool) {
	lr.fill()
	if !lr.hasNext {
		return "", false
	}
	return lr.next, true
}

// Line returns the 1-based number of the last line returned by Next.
func (lr *lineReader) Line() int {
	return lr.lineNum
}

// Err returns the first non-EOF error of the underlying reader.
func (lr *lineReader) Err() error {
	return lr.sc.Err()
}

// Fill in blanks if trailing columns were omitted
func padRight(l string, n int) string {
	if len(l) >= n {
		return l
	}
	return l + strings.Repeat(" ", n-len(l))
}

// Extract HEADER LABEL string from a header line
func headerLabel(l string) string {
	if len(l) < labelCol {
		return ""
	}
	return strings.TrimSpace(l[labelCol:])
}

// Extract the value columns of a header line
func headerValue(l string) string {
	if len(l) < labelCol {
		return l
	}
	return l[:labelCol]
}
