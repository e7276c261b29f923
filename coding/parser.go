// Copyright 2025 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

// readBits reads the pixels at cells as a number, first cell most
// significant.
func readBits(m *BitMatrix, cells []Cell) uint32 {
	var r uint32
	for _, c := range cells {
		r <<= 1
		if m.Black(int(c.X), int(c.Y)) {
			r |= 1
		}
	}
	return r
}

// ReadVersion returns the version of the code in m.  Below version 7
// the version follows from the size.  Otherwise the version
// information in the top right corner is read first, then the copy in
// the bottom left; a copy is accepted only if it agrees with the size.
func ReadVersion(m *BitMatrix) (Version, error) {
	siz := m.Size()
	v, err := VersionForSize(siz)
	if err != nil || v < 7 {
		return v, err
	}
	a, b := VersionCells(siz)
	for _, cells := range [][]Cell{a[:], b[:]} {
		if rv, err := DecodeVersionBits(readBits(m, cells)); err == nil &&
			rv.Size() == siz {
			return rv, nil
		}
	}
	return 0, formatErrorf("version information does not match size %d", siz)
}

// ReadFormatInfo returns the format information of the code in m.
func ReadFormatInfo(m *BitMatrix) (FormatInfo, error) {
	siz := m.Size()
	if _, err := VersionForSize(siz); err != nil {
		return FormatInfo{}, err
	}
	a, b := FormatCells(siz)
	return DecodeFormatBits(uint16(readBits(m, a[:])),
		uint16(readBits(m, b[:])))
}

// ReadCodewords returns the data and checksum codewords of the code
// in m, version v, with the mask from fi and key k undone.
// Remainder bits are discarded.
func ReadCodewords(m *BitMatrix, fi FormatInfo, v Version, k *Key) ([]byte, error) {
	if !v.IsValid() || m.Size() != v.Size() {
		return nil, formatErrorf("version %v does not match size %d",
			v, m.Size())
	}
	if !fi.Mask.IsValid() || !fi.Level.IsValid() {
		return nil, FormatError("invalid format information")
	}
	p, err := PlanFor(v)
	if err != nil {
		return nil, err
	}
	out := make([]byte, v.TotalBytes())
	for n, c := range p.Cells()[:len(out)*8] {
		x, y := int(c.X), int(c.Y)
		if m.Black(x, y) != fi.Mask.Combined(y, x, n, k) {
			out[n>>3] |= 0x80 >> (n & 7)
		}
	}
	return out, nil
}

// A Parser reads the structure of one code.  It caches the version and
// format information it reads.  A Parser is not safe for concurrent
// use, but the BitMatrix it reads may be shared.
type Parser struct {
	m *BitMatrix

	version Version
	fi      *FormatInfo
}

// NewParser returns a Parser reading m.  Sizes that are not those of
// a QR code are rejected before any pixel is read.
func NewParser(m *BitMatrix) (*Parser, error) {
	if _, err := VersionForSize(m.Size()); err != nil {
		return nil, err
	}
	return &Parser{m: m}, nil
}

// Matrix returns the code read by p.
func (p *Parser) Matrix() *BitMatrix { return p.m }

// Version returns the version of the code.
func (p *Parser) Version() (Version, error) {
	if p.version != 0 {
		return p.version, nil
	}
	v, err := ReadVersion(p.m)
	if err != nil {
		return 0, err
	}
	p.version = v
	return v, nil
}

// FormatInfo returns the format information of the code.
func (p *Parser) FormatInfo() (FormatInfo, error) {
	if p.fi != nil {
		return *p.fi, nil
	}
	fi, err := ReadFormatInfo(p.m)
	if err != nil {
		return fi, err
	}
	p.fi = &fi
	return fi, nil
}

// Codewords returns the codewords of the code with the mask and key k
// undone.
func (p *Parser) Codewords(k *Key) ([]byte, error) {
	v, err := p.Version()
	if err != nil {
		return nil, err
	}
	fi, err := p.FormatInfo()
	if err != nil {
		return nil, err
	}
	return ReadCodewords(p.m, fi, v, k)
}

// WithMaskReset returns a Parser over the same code with no readings
// cached.  Masks are undone as codewords are read and never applied
// to the matrix, so the matrix itself is shared.
func (p *Parser) WithMaskReset() *Parser { return &Parser{m: p.m} }

// Transposed returns a Parser reading the code with rows and columns
// swapped, as a mirrored code is read.  Readings of p are not carried
// over.
func (p *Parser) Transposed() *Parser { return &Parser{m: p.m.Transpose()} }
