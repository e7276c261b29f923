// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import "sync"

// A Cell is the position of a pixel, X is the column and Y the row.
type Cell struct {
	X, Y uint8
}

// A Plan describes the layout of a QR code of a specific version.
type Plan struct {
	Version Version // QR code version
	Size    int     // number of pixels on a side

	fmap  *BitMatrix // pixel map: 0 is data or checksum, 1 is other
	cells []Cell     // data pixels in zigzag scan order
}

// Plans are created the first time a version is used and never
// modified afterwards.
var plans [MaxVersion + 1]struct {
	once sync.Once
	p    *Plan
}

// PlanFor returns the Plan for version v.
func PlanFor(v Version) (*Plan, error) {
	if !v.IsValid() {
		return nil, ErrVersion
	}
	p := &plans[v]
	p.once.Do(func() { p.p = vplan(v) })
	return p.p, nil
}

// IsFunction reports whether the pixel at (x, y) belongs to a
// function pattern: finder, separator, timing, alignment, format or
// version information.
func (p *Plan) IsFunction(x, y int) bool { return p.fmap.Black(x, y) }

// Cells returns the data and checksum pixels in zigzag scan order.
// The first v.TotalBytes()*8 cells hold codewords, most significant
// bit first; the rest are remainder bits.  The returned slice is
// shared and must not be modified.
func (p *Plan) Cells() []Cell { return p.cells }

// Alignment returns the centre coordinates used by alignment patterns.
// Pattern centres are all pairs of coordinates except the three
// overlapping the position boxes.
func (p *Plan) Alignment() []int { return vtab[p.Version].align }

// vplan creates a Plan for the given version.
func vplan(v Version) *Plan {
	siz := v.Size()
	m := newBitMatrix(siz)
	set := func(x, y, w, h int) {
		for yy := y; yy < y+h; yy++ {
			row := m.bitmap[yy*m.stride:]
			for xx := x; xx < x+w; xx++ {
				row[xx>>3] |= 0x80 >> (xx & 7)
			}
		}
	}

	// Position boxes with separators and format information.
	set(0, 0, 9, 9)      // top left
	set(siz-8, 0, 8, 9)  // top right
	set(0, siz-8, 9, 8)  // bottom left, including the dark pixel
	set(6, 9, 1, siz-17) // vertical timing
	set(9, 6, siz-17, 1) // horizontal timing
	if pos := vtab[v].align; len(pos) > 1 {
		last := len(pos) - 1
		for i, x := range pos {
			for j, y := range pos {
				if i == 0 && (j == 0 || j == last) || j == 0 && i == last {
					continue
				}
				set(x-2, y-2, 5, 5)
			}
		}
	}
	if v >= 7 {
		set(siz-11, 0, 3, 6) // top right version information
		set(0, siz-11, 6, 3) // bottom left version information
	}

	p := &Plan{Version: v, Size: siz, fmap: m}
	p.cells = make([]Cell, 0, v.TotalBytes()*8+v.RemainderBits())
	// Scan column pairs right to left, right pixel first,
	// alternating upwards and downwards.
	up := true
	for x := siz - 1; x > 0; x -= 2 {
		if x == 6 { // vertical timing strip
			x--
		}
		for i := 0; i < siz; i++ {
			y := i
			if up {
				y = siz - 1 - i
			}
			for xx := x; xx > x-2; xx-- {
				if !m.Black(xx, y) {
					p.cells = append(p.cells, Cell{uint8(xx), uint8(y)})
				}
			}
		}
		up = !up
	}
	return p
}

// FormatCells returns the positions of the two copies of format
// information in a code of siz pixels on a side, most significant
// bit first.
func FormatCells(siz int) (a, b [15]Cell) {
	n := 0
	for x := 0; x <= 5; x++ {
		a[n] = Cell{uint8(x), 8}
		n++
	}
	a[6], a[7], a[8] = Cell{7, 8}, Cell{8, 8}, Cell{8, 7}
	for y := 5; y >= 0; y-- {
		a[14-y] = Cell{8, uint8(y)}
	}
	n = 0
	for y := siz - 1; y >= siz-7; y-- {
		b[n] = Cell{8, uint8(y)}
		n++
	}
	for x := siz - 8; x < siz; x++ {
		b[n] = Cell{uint8(x), 8}
		n++
	}
	return a, b
}

// VersionCells returns the positions of the two copies of version
// information in a code of siz pixels on a side, most significant bit
// first: a in the top right corner, b in the bottom left.
func VersionCells(siz int) (a, b [18]Cell) {
	for k := 0; k < 18; k++ {
		x, y := uint8(siz-11+k%3), uint8(k/3)
		a[17-k] = Cell{x, y}
		b[17-k] = Cell{y, x}
	}
	return a, b
}
