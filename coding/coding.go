// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package coding implements low-level details of reading keyed QR
// codes: version and block tables, the function pattern layout, format
// and version information, data masks, codeword extraction, block
// de-interleaving, error correction and segment decoding.
package coding // import "github.com/unixdj/secqr/coding"

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/unixdj/secqr/gf256"
)

var (
	ErrLevel   = errors.New("qr: invalid level")
	ErrVersion = errors.New("qr: invalid version")
)

// A FormatError reports structural data of a QR code (dimension,
// version or format information, segment grammar) that is unreadable
// or inconsistent.
type FormatError string

func (e FormatError) Error() string { return "qr: format error: " + string(e) }

func formatErrorf(format string, a ...any) FormatError {
	return FormatError(fmt.Sprintf(format, a...))
}

// A ChecksumError reports a block which Reed-Solomon error correction
// failed to repair.
type ChecksumError struct {
	Block int // index of the block in table order
}

func (e ChecksumError) Error() string {
	return "qr: checksum error in block " + strconv.Itoa(e.Block)
}

// Field is the field for QR error correction.
var Field = gf256.NewField(0x11d, 2)

// rs is shared by all decodes; RSDecoder is stateless.
var rs = gf256.NewRSDecoder(Field)

// A Version represents a QR version.
// The version specifies the size of the QR code:
// a QR code with version v has 4v+17 pixels on a side.
// Versions run from 1 to 40: the larger the version, the more
// information the code can store.
type Version int

// Code versions.
const (
	MinVersion Version = 1  // Minimum QR version
	MaxVersion Version = 40 // Maximum QR version
)

func (v Version) String() string { return strconv.Itoa(int(v)) }

// IsValid reports whether v is a QR version.
func (v Version) IsValid() bool { return MinVersion <= v && v <= MaxVersion }

// QR version size classes, selecting character count field lengths.
const (
	Class0 = iota // QR versions 1 to 9
	Class1        // QR versions 10 to 26
	Class2        // QR versions 27 to 40
)

// SizeClass returns the size class of v, as documented under Class0.
func (v Version) SizeClass() int {
	if v <= 9 {
		return Class0
	}
	if v <= 26 {
		return Class1
	}
	return Class2
}

// Size returns the number of pixels on a side of a code of version v.
func (v Version) Size() int { return int(v)*4 + 17 }

// VersionForSize returns the version of a code with siz pixels on
// a side.  Sizes not of the form 4v+17 for a valid version are
// rejected with a FormatError.
func VersionForSize(siz int) (Version, error) {
	v := Version((siz - 17) / 4)
	if siz < MinVersion.Size() || siz > MaxVersion.Size() ||
		(siz-17)%4 != 0 {
		return 0, formatErrorf("invalid dimension %d", siz)
	}
	return v, nil
}

// TotalBytes returns the number of data and check codewords in
// a code of version v.
func (v Version) TotalBytes() int { return vtab[v].bytes }

// RemainderBits returns the number of data region pixels left over
// after the last codeword.
func (v Version) RemainderBits() int { return vtab[v].remainder }

// DataBytes returns the number of data bytes that can be
// stored in a QR code with the given version and level.
func (v Version) DataBytes(l Level) int {
	vt := &vtab[v]
	lev := vt.level[l]
	return vt.bytes - lev.nblock*lev.check
}

// A Level represents a QR error correction level.
// From least to most tolerant of errors, they are L, M, Q, H.
type Level int

const (
	L Level = iota
	M
	Q
	H
)

func (l Level) String() string {
	if L <= l && l <= H {
		return "LMQH"[l : l+1]
	}
	return strconv.Itoa(int(l))
}

// IsValid reports whether l is an error correction level.
func (l Level) IsValid() bool { return L <= l && l <= H }

// ParseLevel returns the level named by s, one of "L", "M", "Q"
// and "H" in either case.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "L", "l":
		return L, nil
	case "M", "m":
		return M, nil
	case "Q", "q":
		return Q, nil
	case "H", "h":
		return H, nil
	}
	return 0, ErrLevel
}

// formatBits returns the two bit format information encoding of l:
// L=01, M=00, Q=11, H=10.
func (l Level) formatBits() uint16 { return uint16(l ^ 1) }

func levelForBits(b uint16) Level { return Level(b&3) ^ 1 }
