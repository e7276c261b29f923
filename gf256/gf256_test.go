// Copyright 2025 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gf256

import (
	"bytes"
	"math/rand"
	"testing"
)

var qrField = NewField(0x11d, 2)

func TestExpLog(t *testing.T) {
	f := qrField
	for i := 0; i < 255; i++ {
		if got := f.Log(f.Exp(i)); got != i {
			t.Errorf("Log(Exp(%d)) = %d", i, got)
		}
	}
	for x := 1; x < 256; x++ {
		if got := f.Mul(byte(x), f.Inv(byte(x))); got != 1 {
			t.Errorf("%#x * Inv(%#x) = %#x", x, x, got)
		}
		if got := f.Div(byte(x), byte(x)); got != 1 {
			t.Errorf("%#x / %#x = %#x", x, x, got)
		}
	}
	if f.Log(0) != -1 || f.Inv(0) != 0 || f.Exp(-1) != 0 {
		t.Error("zero handling")
	}
}

func TestReducible(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewField(0x100, 2) did not panic")
		}
	}()
	NewField(0x100, 2)
}

func TestECC(t *testing.T) {
	// HELLO WORLD, version 1, level M.
	data := []byte{32, 91, 11, 120, 209, 114, 220, 77, 67, 64, 236, 17, 236, 17, 236, 17}
	want := []byte{196, 35, 39, 119, 235, 215, 231, 226, 93, 23}
	check := make([]byte, len(want))
	NewRSEncoder(qrField, len(want)).ECC(data, check)
	if !bytes.Equal(check, want) {
		t.Errorf("ECC = %v, want %v", check, want)
	}
}

// codeword returns n random bytes, the last c of them a checksum.
func codeword(r *rand.Rand, n, c int) []byte {
	p := make([]byte, n)
	r.Read(p[:n-c])
	NewRSEncoder(qrField, c).ECC(p[:n-c], p[n-c:])
	return p
}

// corrupt changes k distinct bytes of p.
func corrupt(r *rand.Rand, p []byte, k int) {
	for _, i := range r.Perm(len(p))[:k] {
		p[i] ^= byte(1 + r.Intn(255))
	}
}

func TestCorrect(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	rs := NewRSDecoder(qrField)
	for _, tt := range []struct{ n, c int }{
		{26, 7}, {26, 10}, {44, 28}, {100, 20}, {153, 30}, {255, 30},
	} {
		for k := 0; k <= tt.c/2; k++ {
			want := codeword(r, tt.n, tt.c)
			p := bytes.Clone(want)
			corrupt(r, p, k)
			n, err := rs.Correct(p, tt.c)
			if err != nil {
				t.Errorf("%d/%d with %d errors: %v", tt.n, tt.c, k, err)
				continue
			}
			if n != k || !bytes.Equal(p, want) {
				t.Errorf("%d/%d with %d errors: corrected %d, match %v",
					tt.n, tt.c, k, n, bytes.Equal(p, want))
			}
		}
	}
}

func TestCorrectTooMany(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	rs := NewRSDecoder(qrField)
	for i := 0; i < 200; i++ {
		c := 10 + 2*r.Intn(10)
		want := codeword(r, c+20+r.Intn(50), c)
		p := bytes.Clone(want)
		corrupt(r, p, c/2+1+r.Intn(3))
		bad := bytes.Clone(p)
		_, err := rs.Correct(p, c)
		switch {
		case err == nil && bytes.Equal(p, want):
			t.Fatalf("corrected more than %d errors", c/2)
		case err != nil && !bytes.Equal(p, bad):
			t.Fatal("failed correction modified the codeword")
		case err != nil && err != ErrUncorrectable:
			t.Fatalf("unexpected error %v", err)
		}
	}
}

func TestCorrectBadArgs(t *testing.T) {
	rs := NewRSDecoder(qrField)
	for _, tt := range []struct{ n, c int }{{10, 0}, {10, 10}, {256, 10}} {
		if _, err := rs.Correct(make([]byte, tt.n), tt.c); err != ErrUncorrectable {
			t.Errorf("Correct(%d bytes, %d) = %v", tt.n, tt.c, err)
		}
	}
}
