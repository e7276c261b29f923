// Copyright 2025 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package secqr

import (
	"errors"
	"strings"

	"github.com/unixdj/secqr/coding"
)

var errText = errors.New("qr: invalid text matrix")

// ParseText returns the matrix drawn in s, one line per row and one
// character per module.  '#', 'X', '1' and '█' are black; ' ', '.',
// '_' and '0' are white.  Empty lines are ignored.  The drawing must
// be square.
func ParseText(s string) (*BitMatrix, error) {
	var rows [][]bool
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		var row []bool
		for _, r := range line {
			switch r {
			case '#', 'X', '1', '█':
				row = append(row, true)
			case ' ', '.', '_', '0':
				row = append(row, false)
			default:
				return nil, errText
			}
		}
		rows = append(rows, row)
	}
	for _, row := range rows {
		if len(row) != len(rows) {
			return nil, errText
		}
	}
	return coding.NewBitMatrix(len(rows), func(x, y int) bool {
		return rows[y][x]
	}), nil
}

// FormatText draws m for ParseText, '#' for black and '.' for white.
func FormatText(m *BitMatrix) string {
	var b strings.Builder
	for y := 0; y < m.Size(); y++ {
		for x := 0; x < m.Size(); x++ {
			if m.Black(x, y) {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
