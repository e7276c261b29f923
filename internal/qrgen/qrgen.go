// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2025 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package qrgen draws keyed QR codes for tests.
//
// Data is laid out as by a standard QR encoder, then every data pixel
// is XORed with its mask bit and the key bit for its position in scan
// order.  Mask selection by penalty is not done: the caller picks the
// mask.
package qrgen

import (
	"fmt"
	"image"
	"image/color"

	"github.com/unixdj/secqr/coding"
	"github.com/unixdj/secqr/gf256"
)

// A Segment writes one segment to a bit stream for a code of the given
// size class.
type Segment func(b *Bits, class int)

func mode(b *Bits, m coding.Mode) { b.Write(uint32(m), 4) }

// Num returns a numeric segment of the digits in s.
func Num(s string) Segment {
	return func(b *Bits, class int) {
		mode(b, coding.Numeric)
		b.Write(uint32(len(s)), coding.Numeric.CountLength(class))
		for i := 0; i < len(s); i += 3 {
			n := min(3, len(s)-i)
			v := uint32(0)
			for _, c := range []byte(s[i : i+n]) {
				v = v*10 + uint32(c-'0')
			}
			b.Write(v, [4]int{0, 4, 7, 10}[n])
		}
	}
}

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ $%*+-./:"

func alphaIndex(c byte) uint32 {
	for i := 0; i < len(alphabet); i++ {
		if alphabet[i] == c {
			return uint32(i)
		}
	}
	panic(fmt.Sprintf("qrgen: %q not alphanumeric", c))
}

// Alpha returns an alphanumeric segment of s.
func Alpha(s string) Segment {
	return func(b *Bits, class int) {
		mode(b, coding.Alphanumeric)
		b.Write(uint32(len(s)), coding.Alphanumeric.CountLength(class))
		i := 0
		for ; i+1 < len(s); i += 2 {
			b.Write(alphaIndex(s[i])*45+alphaIndex(s[i+1]), 11)
		}
		if i < len(s) {
			b.Write(alphaIndex(s[i]), 6)
		}
	}
}

// Bytes returns a byte segment of p.
func Bytes(p []byte) Segment {
	return func(b *Bits, class int) {
		mode(b, coding.Byte)
		b.Write(uint32(len(p)), coding.Byte.CountLength(class))
		for _, c := range p {
			b.Write(uint32(c), 8)
		}
	}
}

// Kanji returns a kanji segment of Shift JIS encoded two byte
// characters.
func Kanji(sjis []byte) Segment {
	return func(b *Bits, class int) {
		mode(b, coding.Kanji)
		b.Write(uint32(len(sjis)/2), coding.Kanji.CountLength(class))
		for i := 0; i+1 < len(sjis); i += 2 {
			c := uint32(sjis[i])<<8 | uint32(sjis[i+1])
			if c <= 0x9ffc {
				c -= 0x8140
			} else {
				c -= 0xc140
			}
			b.Write(c>>8*0xc0+c&0xff, 13)
		}
	}
}

// Hanzi returns a GB2312 hanzi segment of two byte characters.
func Hanzi(gb []byte) Segment {
	return func(b *Bits, class int) {
		mode(b, coding.Hanzi)
		b.Write(coding.GB2312Subset, 4)
		b.Write(uint32(len(gb)/2), coding.Hanzi.CountLength(class))
		for i := 0; i+1 < len(gb); i += 2 {
			c := uint32(gb[i])<<8 | uint32(gb[i+1])
			if c <= 0xaafe {
				c -= 0xa1a1
			} else {
				c -= 0xa6a1
			}
			b.Write(c>>8*0x60+c&0xff, 13)
		}
	}
}

// ECI returns an ECI segment designating v.
func ECI(v int) Segment {
	return func(b *Bits, class int) {
		mode(b, coding.ECI)
		switch {
		case v < 1<<7:
			b.Write(uint32(v), 8)
		case v < 1<<14:
			b.Write(0x8000|uint32(v), 16)
		default:
			b.Write(0xc00000|uint32(v), 24)
		}
	}
}

// StructuredAppend returns a structured append header for code index
// of total, with the given parity.
func StructuredAppend(index, total, parity int) Segment {
	return func(b *Bits, class int) {
		mode(b, coding.StructuredAppend)
		b.Write(uint32(index<<4|(total-1)), 8)
		b.Write(uint32(parity), 8)
	}
}

// FNC1First returns an FNC1 in first position indicator.
func FNC1First() Segment {
	return func(b *Bits, class int) { mode(b, coding.FNC1First) }
}

// FNC1Second returns an FNC1 in second position indicator with
// application indicator ai.
func FNC1Second(ai int) Segment {
	return func(b *Bits, class int) {
		mode(b, coding.FNC1Second)
		b.Write(uint32(ai), 8)
	}
}

// Raw returns a segment writing the low n bits of v.
func Raw(v uint32, n int) Segment {
	return func(b *Bits, class int) { b.Write(v, n) }
}

// Data returns the padded data codewords holding segs.
func Data(v coding.Version, l coding.Level, segs ...Segment) ([]byte, error) {
	nd := v.DataBytes(l)
	var b Bits
	for _, s := range segs {
		s(&b, v.SizeClass())
	}
	if b.Bits() > nd*8 {
		return nil, fmt.Errorf("qrgen: %d bits do not fit in %d-%v",
			b.Bits(), v, l)
	}
	b.PadTo(4, nd*8)
	return b.Bytes(), nil
}

// Codewords splits data into blocks, adds checksums and interleaves
// the blocks as they are laid out in a code.
func Codewords(v coding.Version, l coding.Level, data []byte) ([]byte, error) {
	t, err := coding.Blocks(v, l)
	if err != nil {
		return nil, err
	}
	if len(data) != t.DataCodewords() {
		return nil, fmt.Errorf("qrgen: %d data codewords, want %d",
			len(data), t.DataCodewords())
	}
	rs := gf256.NewRSEncoder(coding.Field, t.ECCodewords)
	var blocks, checks [][]byte
	for _, g := range t.Groups {
		for i := 0; i < g.Count; i++ {
			d := data[:g.DataCodewords]
			data = data[g.DataCodewords:]
			c := make([]byte, t.ECCodewords)
			rs.ECC(d, c)
			blocks = append(blocks, d)
			checks = append(checks, c)
		}
	}
	out := make([]byte, 0, v.TotalBytes())
	for i := 0; i < t.Groups[len(t.Groups)-1].DataCodewords; i++ {
		for _, d := range blocks {
			if i < len(d) {
				out = append(out, d[i])
			}
		}
	}
	for i := 0; i < t.ECCodewords; i++ {
		for _, c := range checks {
			out = append(out, c[i])
		}
	}
	return out, nil
}

// Encode returns a keyed code of version v, level l and mask m
// holding segs.
func Encode(v coding.Version, l coding.Level, m coding.Mask, k *coding.Key, segs ...Segment) (*coding.BitMatrix, error) {
	data, err := Data(v, l, segs...)
	if err != nil {
		return nil, err
	}
	return EncodeData(v, l, m, k, data)
}

// EncodeData returns a keyed code holding the data codewords data,
// which need not be a valid segment stream.
func EncodeData(v coding.Version, l coding.Level, m coding.Mask, k *coding.Key, data []byte) (*coding.BitMatrix, error) {
	cw, err := Codewords(v, l, data)
	if err != nil {
		return nil, err
	}
	return Draw(v, coding.FormatInfo{Level: l, Mask: m}, k, cw)
}

// Draw lays out codewords cw in a code of version v with format
// information fi, masked with fi.Mask and key k.
func Draw(v coding.Version, fi coding.FormatInfo, k *coding.Key, cw []byte) (*coding.BitMatrix, error) {
	p, err := coding.PlanFor(v)
	if err != nil {
		return nil, err
	}
	if len(cw) != v.TotalBytes() {
		return nil, fmt.Errorf("qrgen: %d codewords, want %d",
			len(cw), v.TotalBytes())
	}
	siz := p.Size
	g := make([][]bool, siz)
	for y := range g {
		g[y] = make([]bool, siz)
	}

	// Position boxes.
	for _, o := range [][2]int{{0, 0}, {siz - 7, 0}, {0, siz - 7}} {
		for dy := 0; dy < 7; dy++ {
			for dx := 0; dx < 7; dx++ {
				r := max(abs(dx-3), abs(dy-3))
				g[o[1]+dy][o[0]+dx] = r != 2
			}
		}
	}
	// Timing.
	for i := 8; i < siz-8; i++ {
		g[6][i] = i%2 == 0
		g[i][6] = i%2 == 0
	}
	// Alignment boxes.
	if pos := p.Alignment(); len(pos) > 1 {
		last := len(pos) - 1
		for i, x := range pos {
			for j, y := range pos {
				if i == 0 && (j == 0 || j == last) || j == 0 && i == last {
					continue
				}
				for dy := -2; dy <= 2; dy++ {
					for dx := -2; dx <= 2; dx++ {
						g[y+dy][x+dx] = max(abs(dx), abs(dy)) != 1
					}
				}
			}
		}
	}
	g[siz-8][8] = true

	fb := coding.FormatBits(fi)
	fa, fbc := coding.FormatCells(siz)
	for i := 0; i < 15; i++ {
		bit := fb>>(14-i)&1 != 0
		g[fa[i].Y][fa[i].X] = bit
		g[fbc[i].Y][fbc[i].X] = bit
	}
	if vb := coding.VersionBits(v); vb != 0 {
		va, vbc := coding.VersionCells(siz)
		for i := 0; i < 18; i++ {
			bit := vb>>(17-i)&1 != 0
			g[va[i].Y][va[i].X] = bit
			g[vbc[i].Y][vbc[i].X] = bit
		}
	}

	for n, c := range p.Cells() {
		x, y := int(c.X), int(c.Y)
		bit := false
		if n < len(cw)*8 {
			bit = cw[n>>3]&(0x80>>(n&7)) != 0
		}
		g[y][x] = bit != fi.Mask.Combined(y, x, n, k)
	}
	return coding.NewBitMatrix(siz, func(x, y int) bool { return g[y][x] }), nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Image renders m with scale pixels per module and a quiet zone of
// quiet modules.
func Image(m *coding.BitMatrix, scale, quiet int) *image.Gray {
	siz := (m.Size() + 2*quiet) * scale
	img := image.NewGray(image.Rect(0, 0, siz, siz))
	for y := 0; y < siz; y++ {
		for x := 0; x < siz; x++ {
			c := color.Gray{0xff}
			if m.Black(x/scale-quiet, y/scale-quiet) {
				c.Y = 0
			}
			img.SetGray(x, y, c)
		}
	}
	return img
}
