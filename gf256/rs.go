// Copyright 2025 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gf256

import "errors"

// ErrUncorrectable is returned by RSDecoder.Correct when the
// codeword contains more errors than the code can correct.
var ErrUncorrectable = errors.New("gf256: uncorrectable codeword")

// An RSDecoder implements Reed-Solomon decoding over a given field.
// The first consecutive root of the generator polynomial is α⁰, as
// produced by RSEncoder.  An RSDecoder holds no mutable state and may
// be used concurrently.
type RSDecoder struct {
	f *Field
}

// NewRSDecoder returns a new Reed-Solomon decoder over the given field.
func NewRSDecoder(f *Field) *RSDecoder {
	return &RSDecoder{f: f}
}

// Correct corrects errors in place in p, which holds data bytes
// followed by c error correction bytes, and returns the number of
// corrected bytes.  At most c/2 errors are corrected.  If p cannot
// be corrected, Correct returns ErrUncorrectable and leaves p
// unmodified.
func (rs *RSDecoder) Correct(p []byte, c int) (int, error) {
	if c <= 0 || c >= len(p) || len(p) > 255 {
		return 0, ErrUncorrectable
	}
	f := rs.f
	s := rs.syndromes(p, c)
	if s == nil {
		return 0, nil
	}

	// Berlekamp-Massey: find the error locator polynomial
	// Λ(x) = Π(1 + Xₖx), stored lowest degree first.
	lambda := make([]byte, c+1)
	prev := make([]byte, c+1)
	tmp := make([]byte, c+1)
	lambda[0], prev[0] = 1, 1
	l, m, b := 0, 1, byte(1)
	for r := 0; r < c; r++ {
		d := s[r]
		for i := 1; i <= l; i++ {
			d ^= f.Mul(lambda[i], s[r-i])
		}
		if d == 0 {
			m++
			continue
		}
		coef := f.Div(d, b)
		if 2*l <= r {
			copy(tmp, lambda)
			for i := 0; i+m <= c; i++ {
				lambda[i+m] ^= f.Mul(coef, prev[i])
			}
			l = r + 1 - l
			prev, tmp = tmp, prev
			b, m = d, 1
		} else {
			for i := 0; i+m <= c; i++ {
				lambda[i+m] ^= f.Mul(coef, prev[i])
			}
			m++
		}
	}
	if l == 0 || 2*l > c {
		return 0, ErrUncorrectable
	}
	lambda = lambda[:l+1]

	// Chien search: Λ(X⁻¹) = 0 for an error at degree e, X = αᵉ.
	// Degree e is at index len(p)-1-e.
	n := len(p)
	pos := make([]int, 0, l)
	for e := 0; e < n; e++ {
		if rs.eval(lambda, f.Exp(255-e%255)) == 0 {
			pos = append(pos, e)
		}
	}
	if len(pos) != l {
		return 0, ErrUncorrectable
	}

	// Forney: Ω(x) = S(x)Λ(x) mod xᶜ,
	// eₖ = Xₖ Ω(Xₖ⁻¹) / Λ'(Xₖ⁻¹).
	omega := make([]byte, c)
	for i := 0; i < c; i++ {
		for j := 0; j <= l && j <= i; j++ {
			omega[i] ^= f.Mul(s[i-j], lambda[j])
		}
	}
	deriv := make([]byte, l)
	for i := 1; i <= l; i += 2 {
		deriv[i-1] = lambda[i]
	}
	fix := make([]byte, len(pos))
	for k, e := range pos {
		x := f.Exp(e)
		xinv := f.Inv(x)
		den := rs.eval(deriv, xinv)
		if den == 0 {
			return 0, ErrUncorrectable
		}
		fix[k] = f.Mul(x, f.Div(rs.eval(omega, xinv), den))
	}

	q := make([]byte, n)
	copy(q, p)
	for k, e := range pos {
		q[n-1-e] ^= fix[k]
	}
	if rs.syndromes(q, c) != nil {
		return 0, ErrUncorrectable
	}
	copy(p, q)
	return l, nil
}

// syndromes returns the syndromes S₀..S_{c-1} of p, or nil if all
// are zero.  p[0] is the highest degree coefficient.
func (rs *RSDecoder) syndromes(p []byte, c int) []byte {
	f := rs.f
	s := make([]byte, c)
	nonzero := false
	for j := 0; j < c; j++ {
		a := f.Exp(j)
		var v byte
		for _, x := range p {
			v = f.Mul(v, a) ^ x
		}
		s[j] = v
		if v != 0 {
			nonzero = true
		}
	}
	if !nonzero {
		return nil
	}
	return s
}

// eval evaluates the polynomial p, stored lowest degree first, at x.
func (rs *RSDecoder) eval(p []byte, x byte) byte {
	var v byte
	for i := len(p) - 1; i >= 0; i-- {
		v = rs.f.Mul(v, x) ^ p[i]
	}
	return v
}
