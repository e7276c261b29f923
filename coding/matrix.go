// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import (
	"bytes"
	"strings"
)

// A BitMatrix is a square pixel grid read from a QR code, 1 is black,
// 0 is white.  Rows are packed eight pixels per byte, most significant
// bit first.  A BitMatrix is immutable: every transformation returns
// a new BitMatrix, so one value may be shared by concurrent decodes.
type BitMatrix struct {
	bitmap []byte
	size   int
	stride int
}

// NewBitMatrix returns a BitMatrix of siz pixels on a side with the
// pixel at (x, y) black if black(x, y) returns true.
func NewBitMatrix(siz int, black func(x, y int) bool) *BitMatrix {
	if siz < 0 {
		siz = 0
	}
	m := newBitMatrix(siz)
	for y := 0; y < siz; y++ {
		row := m.bitmap[y*m.stride:]
		for x := 0; x < siz; x++ {
			if black(x, y) {
				row[x>>3] |= 0x80 >> (x & 7)
			}
		}
	}
	return m
}

func newBitMatrix(siz int) *BitMatrix {
	stride := (siz + 7) >> 3
	return &BitMatrix{
		bitmap: make([]byte, stride*siz),
		size:   siz,
		stride: stride,
	}
}

// FromBitmap returns a BitMatrix with a copy of bitmap, which holds
// siz rows of stride bytes each.
func FromBitmap(bitmap []byte, siz, stride int) (*BitMatrix, error) {
	if siz < 0 || stride < (siz+7)>>3 || len(bitmap) < siz*stride {
		return nil, formatErrorf("bitmap too short for %d pixels", siz)
	}
	m := newBitMatrix(siz)
	last := byte(0xff) << (-siz & 7)
	for y := 0; y < siz; y++ {
		row := m.bitmap[y*m.stride : (y+1)*m.stride]
		copy(row, bitmap[y*stride:])
		if len(row) != 0 {
			row[len(row)-1] &= last
		}
	}
	return m, nil
}

// Size returns the number of pixels on a side.
func (m *BitMatrix) Size() int {
	if m == nil {
		return 0
	}
	return m.size
}

// Black returns true if the pixel at (x,y) is black.
func (m *BitMatrix) Black(x, y int) bool {
	return 0 <= x && x < m.size && 0 <= y && y < m.size &&
		m.bitmap[y*m.stride+x>>3]&(0x80>>(x&7)) != 0
}

// Bitmap returns a copy of the packed pixels and the row stride.
func (m *BitMatrix) Bitmap() ([]byte, int) {
	return bytes.Clone(m.bitmap), m.stride
}

// Clone returns a copy of m.
func (m *BitMatrix) Clone() *BitMatrix {
	return &BitMatrix{
		bitmap: bytes.Clone(m.bitmap),
		size:   m.size,
		stride: m.stride,
	}
}

// Transpose returns m with rows and columns swapped, the reading of
// a mirrored code.
func (m *BitMatrix) Transpose() *BitMatrix {
	t := newBitMatrix(m.size)
	for y := 0; y < m.size; y++ {
		row := m.bitmap[y*m.stride:]
		xb, xm := y>>3, byte(0x80)>>(y&7)
		for x := 0; x < m.size; x++ {
			if row[x>>3]&(0x80>>(x&7)) != 0 {
				t.bitmap[x*t.stride+xb] |= xm
			}
		}
	}
	return t
}

// Equal reports whether m and o have the same size and pixels.
func (m *BitMatrix) Equal(o *BitMatrix) bool {
	return m.size == o.size && bytes.Equal(m.bitmap, o.bitmap)
}

// String returns the code drawn with Unicode half blocks, two rows per
// line, with a quiet zone of 2 pixels.
func (m *BitMatrix) String() string {
	const q = 2
	var b strings.Builder
	for y := -q; y < m.size+q; y += 2 {
		for x := -q; x < m.size+q; x++ {
			n := 0
			if m.Black(x, y) {
				n = 2
			}
			if m.Black(x, y+1) {
				n++
			}
			b.WriteString([4]string{"█", "▀", "▄", " "}[n])
		}
		b.WriteByte('\n')
	}
	return b.String()
}
