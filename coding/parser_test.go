// Copyright 2025 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/unixdj/secqr/coding"
	"github.com/unixdj/secqr/internal/qrgen"
)

var testKey = coding.KeyFromString("correct horse battery staple!!!!")

func TestBadDimension(t *testing.T) {
	for _, siz := range []int{0, 1, 20, 22, 23, 24, 178, 181} {
		m := coding.NewBitMatrix(siz, func(x, y int) bool { return true })
		var fe coding.FormatError
		if _, err := coding.NewParser(m); !errors.As(err, &fe) {
			t.Errorf("NewParser(%d) = %v", siz, err)
		}
		if _, err := coding.ReadVersion(m); !errors.As(err, &fe) {
			t.Errorf("ReadVersion(%d) = %v", siz, err)
		}
		if _, err := coding.ReadFormatInfo(m); !errors.As(err, &fe) {
			t.Errorf("ReadFormatInfo(%d) = %v", siz, err)
		}
	}
}

func TestReadCodewords(t *testing.T) {
	for _, tt := range []struct {
		v coding.Version
		l coding.Level
		m coding.Mask
	}{
		{1, coding.M, 0}, {2, coding.L, 1}, {5, coding.Q, 2}, {7, coding.H, 3},
		{10, coding.M, 4}, {21, coding.L, 5}, {27, coding.Q, 6}, {40, coding.H, 7},
	} {
		data, err := qrgen.Data(tt.v, tt.l, qrgen.Alpha("KEYED QR"))
		if err != nil {
			t.Fatal(err)
		}
		want, err := qrgen.Codewords(tt.v, tt.l, data)
		if err != nil {
			t.Fatal(err)
		}
		m, err := qrgen.EncodeData(tt.v, tt.l, tt.m, &testKey, data)
		if err != nil {
			t.Fatal(err)
		}
		p, err := coding.NewParser(m)
		if err != nil {
			t.Fatal(err)
		}
		if v, err := p.Version(); err != nil || v != tt.v {
			t.Errorf("%v-%v: version %v, %v", tt.v, tt.l, v, err)
		}
		fi, err := p.FormatInfo()
		if err != nil || fi != (coding.FormatInfo{Level: tt.l, Mask: tt.m}) {
			t.Errorf("%v-%v: format %v, %v", tt.v, tt.l, fi, err)
		}
		got, err := p.Codewords(&testKey)
		if err != nil || !bytes.Equal(got, want) {
			t.Errorf("%v-%v: codewords differ, %v", tt.v, tt.l, err)
		}
	}
}

// withCells returns m with the pixels at cells set from the most
// significant bit of bits down.
func withCells(m *coding.BitMatrix, cells []coding.Cell, bits uint32) *coding.BitMatrix {
	set := make(map[coding.Cell]bool)
	for i, c := range cells {
		set[c] = bits>>(len(cells)-1-i)&1 != 0
	}
	return coding.NewBitMatrix(m.Size(), func(x, y int) bool {
		if b, ok := set[coding.Cell{X: uint8(x), Y: uint8(y)}]; ok {
			return b
		}
		return m.Black(x, y)
	})
}

func TestReadVersion(t *testing.T) {
	m, err := qrgen.Encode(7, coding.L, 0, &testKey, qrgen.Num("1"))
	if err != nil {
		t.Fatal(err)
	}
	va, vb := coding.VersionCells(m.Size())

	// A damaged first copy falls back to the second.
	bad := withCells(m, va[:], 0)
	if v, err := coding.ReadVersion(bad); err != nil || v != 7 {
		t.Errorf("damaged first copy: %v, %v", v, err)
	}
	// A version not matching the size is rejected.
	bad = withCells(m, va[:], coding.VersionBits(8))
	bad = withCells(bad, vb[:], coding.VersionBits(8))
	var fe coding.FormatError
	if _, err := coding.ReadVersion(bad); !errors.As(err, &fe) {
		t.Errorf("mismatched version: %v", err)
	}
	// Three flipped bits in each copy are corrected.
	vbits := coding.VersionBits(7)
	bad = withCells(m, va[:], vbits^0x00007)
	bad = withCells(bad, vb[:], vbits^0x38000)
	if v, err := coding.ReadVersion(bad); err != nil || v != 7 {
		t.Errorf("3 errors: %v, %v", v, err)
	}
}

func TestReadFormatInfoDamaged(t *testing.T) {
	m, err := qrgen.Encode(1, coding.Q, 5, &testKey, qrgen.Num("42"))
	if err != nil {
		t.Fatal(err)
	}
	fa, fb := coding.FormatCells(m.Size())
	var fe coding.FormatError
	bad := withCells(withCells(m, fa[:], 0x2aaa), fb[:], 0x2aaa^0x7fff)
	if _, err := coding.ReadFormatInfo(bad); !errors.As(err, &fe) {
		t.Errorf("garbage format information: %v", err)
	}
	bad = withCells(m, fa[:], 0)
	if fi, err := coding.ReadFormatInfo(bad); err != nil ||
		fi != (coding.FormatInfo{Level: coding.Q, Mask: 5}) {
		t.Errorf("damaged first copy: %v, %v", fi, err)
	}
}

func TestParserTransposed(t *testing.T) {
	m, err := qrgen.Encode(3, coding.H, 6, &testKey, qrgen.Num("31415"))
	if err != nil {
		t.Fatal(err)
	}
	p, _ := coding.NewParser(m)
	tp := p.Transposed()
	if tp.Matrix().Equal(m) || !tp.Matrix().Transpose().Equal(m) {
		t.Error("Transposed does not transpose")
	}
	if p.Matrix() != m || p.WithMaskReset().Matrix() != m {
		t.Error("receiver modified")
	}
	a, _ := p.Codewords(&testKey)
	b, _ := tp.Transposed().Codewords(&testKey)
	if !bytes.Equal(a, b) {
		t.Error("double transpose reads different codewords")
	}
}
