// Copyright 2025 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package secqr

import "github.com/unixdj/secqr/coding"

// A Point is a position in an image, such as the centre of a finder
// pattern reported by a detector.
type Point struct {
	X, Y float64
}

// A Result is a decoded code.
type Result struct {
	Text  string // decoded text
	Bytes []byte // corrected data codewords

	// ByteSegments holds the raw content of byte segments.
	ByteSegments [][]byte

	Version coding.Version
	Level   Level
	Mask    coding.Mask

	// Mirrored is set if the code was read with rows and columns
	// swapped.
	Mirrored bool

	StructuredAppend *StructuredAppend // nil if absent

	// ECI is the last ECI designator in effect, or -1.
	ECI int
	// ApplicationIndicator is set by FNC1 in second position,
	// -1 if absent.
	ApplicationIndicator int
	// SymbologyIdentifier is "]Q1" to "]Q6".
	SymbologyIdentifier string

	// ErrorsCorrected is the number of codewords repaired by error
	// correction.
	ErrorsCorrected int

	// Points are the detector points passed to DecodePoints, with
	// the first and third swapped for a mirrored code.
	Points []Point
}
