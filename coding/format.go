// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import "math/bits"

// Format and version information are accepted within this many
// flipped bits of a valid codeword.
const maxBitErrors = 3

// formatXOR is applied to the format information so that it is never
// all zeros.
const formatXOR = 0x5412

// FormatInfo holds the error correction level and mask pattern.
type FormatInfo struct {
	Level Level
	Mask  Mask
}

// formatTab holds the format information codeword for each of the 32
// combinations of level and mask, indexed by the 5 data bits.
var formatTab [32]uint16

func init() {
	for i := range formatTab {
		formatTab[i] = uint16(bch(uint32(i), 10, 0x537)) ^ formatXOR
	}
}

func (fi FormatInfo) data() int { return int(fi.Level.formatBits())<<3 | int(fi.Mask) }

func formatInfoForData(d int) FormatInfo {
	return FormatInfo{levelForBits(uint16(d >> 3)), Mask(d & 7)}
}

// FormatBits returns the 15 bit format information codeword for fi,
// most significant bit first as placed in the code.
func FormatBits(fi FormatInfo) uint16 { return formatTab[fi.data()] }

// VersionBits returns the 18 bit version information codeword for v,
// or 0 below version 7.
func VersionBits(v Version) uint32 {
	if v < 7 || !v.IsValid() {
		return 0
	}
	return vtab[v].pattern
}

// nearestFormat returns the table index closest to the codeword r and
// its distance.  Ties go to the lower index.
func nearestFormat(r uint16) (int, int) {
	best, dist := 0, 16
	for i, c := range formatTab {
		if d := bits.OnesCount16(c ^ r); d < dist {
			best, dist = i, d
		}
	}
	return best, dist
}

// DecodeFormatBits returns the format information nearest to the two
// copies a and b read from a code.  The first copy wins ties.  If
// neither copy is within 3 bits of a valid codeword, the copies are
// tried once more with the format XOR pattern applied, for codes
// printed without it.
func DecodeFormatBits(a, b uint16) (FormatInfo, error) {
	for try := 0; try < 2; try++ {
		ia, da := nearestFormat(a)
		ib, db := nearestFormat(b)
		if db < da {
			ia, da = ib, db
		}
		if da <= maxBitErrors {
			return formatInfoForData(ia), nil
		}
		a ^= formatXOR
		b ^= formatXOR
	}
	return FormatInfo{}, FormatError("unreadable format information")
}

// DecodeVersionBits returns the version nearest to the 18 bit version
// information codeword r, accepted within 3 bits.
func DecodeVersionBits(r uint32) (Version, error) {
	best, dist := Version(0), 19
	for v := Version(7); v <= MaxVersion; v++ {
		if d := bits.OnesCount32(vtab[v].pattern ^ r); d < dist {
			best, dist = v, d
		}
	}
	if dist > maxBitErrors {
		return 0, FormatError("unreadable version information")
	}
	return best, nil
}
