// Copyright 2025 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package secqr decodes keyed QR codes.

A keyed QR code is laid out as a standard QR code, but every pixel of
its data region is additionally XORed with a bit of a 256 bit key:
data pixel n in scan order with key bit n mod 256.  Only a reader
holding the same key recovers the content.

The decoder takes a square BitMatrix of pixels, one per module, with
no quiet zone.  FromImage and ReadPBM extract such a matrix from an
image holding nothing but an upright code.
*/
package secqr // import "github.com/unixdj/secqr"

import (
	"errors"

	"github.com/unixdj/secqr/coding"
)

// ErrNotFound is returned when no code is found in an image.
var ErrNotFound = errors.New("qr: code not found")

// ErrKey is returned for a missing or malformed key.
var ErrKey = coding.ErrKey

type (
	// A FormatError reports unreadable or inconsistent version or
	// format information, an invalid size or malformed segments.
	FormatError = coding.FormatError
	// A ChecksumError reports a block that error correction could not
	// repair.
	ChecksumError = coding.ChecksumError

	// A Key is the 256 bit key of a code.
	Key = coding.Key
	// A BitMatrix is an immutable square grid of pixels.
	BitMatrix = coding.BitMatrix
	// A Level is an error correction level.
	Level = coding.Level
	// StructuredAppend locates a code in a sequence of codes.
	StructuredAppend = coding.StructuredAppendInfo
)

// Error correction levels.
const (
	L = coding.L // 20% redundant
	M = coding.M // 38% redundant
	Q = coding.Q // 55% redundant
	H = coding.H // 65% redundant
)

// KeyFromString returns the key for an operator supplied string: its
// UTF-8 bytes, most significant bit first, truncated or padded with
// zero bits to 256 bits.
func KeyFromString(s string) Key { return coding.KeyFromString(s) }

// ParseKeyHex parses a key written as 64 hexadecimal digits.
func ParseKeyHex(s string) (Key, error) { return coding.ParseKeyHex(s) }
