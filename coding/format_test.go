// Copyright 2025 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding_test

import (
	"testing"

	"github.com/unixdj/secqr/coding"
)

func TestFormatBits(t *testing.T) {
	for _, tt := range []struct {
		fi   coding.FormatInfo
		want uint16
	}{
		{coding.FormatInfo{Level: coding.L, Mask: 0}, 0x77c4},
		{coding.FormatInfo{Level: coding.M, Mask: 0}, 0x5412},
	} {
		if got := coding.FormatBits(tt.fi); got != tt.want {
			t.Errorf("FormatBits(%v) = %#x, want %#x", tt.fi, got, tt.want)
		}
	}
	for _, tt := range []struct {
		v    coding.Version
		want uint32
	}{{6, 0}, {7, 0x07c94}, {40, 0x28c69}} {
		if got := coding.VersionBits(tt.v); got != tt.want {
			t.Errorf("VersionBits(%v) = %#x, want %#x", tt.v, got, tt.want)
		}
	}
}

func allFormats() []coding.FormatInfo {
	var fis []coding.FormatInfo
	for l := coding.L; l <= coding.H; l++ {
		for m := coding.Mask(0); m < 8; m++ {
			fis = append(fis, coding.FormatInfo{Level: l, Mask: m})
		}
	}
	return fis
}

func TestDecodeFormatBits(t *testing.T) {
	// Flip 0 to 3 bits spread over the codeword.
	errs := []uint16{0, 1 << 14, 1<<3 | 1<<9, 1<<0 | 1<<7 | 1<<13}
	for _, fi := range allFormats() {
		fb := coding.FormatBits(fi)
		for _, e := range errs {
			if got, err := coding.DecodeFormatBits(fb^e, 0x7fff); err != nil || got != fi {
				t.Errorf("%v with errors %#x in first copy: %v, %v", fi, e, got, err)
			}
			if got, err := coding.DecodeFormatBits(0, fb^e); err != nil || got != fi {
				t.Errorf("%v with errors %#x in second copy: %v, %v", fi, e, got, err)
			}
		}
		// Codes without the format XOR pattern.
		if got, err := coding.DecodeFormatBits(fb^0x5412, fb^0x5413); err != nil || got != fi {
			t.Errorf("%v unmasked: %v, %v", fi, got, err)
		}
	}
}

func TestDecodeFormatBitsTie(t *testing.T) {
	a := coding.FormatInfo{Level: coding.Q, Mask: 3}
	b := coding.FormatInfo{Level: coding.H, Mask: 6}
	got, err := coding.DecodeFormatBits(coding.FormatBits(a)^0x7, coding.FormatBits(b)^0x7000)
	if err != nil || got != a {
		t.Errorf("tie: %v, %v, want %v", got, err, a)
	}
	got, err = coding.DecodeFormatBits(coding.FormatBits(a)^0x7, coding.FormatBits(b)^0x3)
	if err != nil || got != b {
		t.Errorf("closer second copy: %v, %v, want %v", got, err, b)
	}
}

func TestDecodeVersionBits(t *testing.T) {
	for v := coding.Version(7); v <= coding.MaxVersion; v++ {
		vb := coding.VersionBits(v)
		for _, e := range []uint32{0, 1 << 17, 1<<2 | 1<<11, 1<<0 | 1<<8 | 1<<16} {
			if got, err := coding.DecodeVersionBits(vb ^ e); err != nil || got != v {
				t.Errorf("version %v with errors %#x: %v, %v", v, e, got, err)
			}
		}
	}
}
