// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

// BitStream reads bits from the underlying buffer, most significant
// bit first.
type BitStream struct {
	b   []byte
	pos int
}

// NewBitStream returns a BitStream reading from b.
func NewBitStream(b []byte) BitStream { return BitStream{b: b} }

// Available returns the number of unread bits.
func (s *BitStream) Available() int { return len(s.b)*8 - s.pos }

// Next returns the next bit from s as 0 or 1.
// Past end of buffer Next returns 0.
func (s *BitStream) Next() byte {
	var b byte
	if i := s.pos >> 3; i < len(s.b) {
		b = s.b[i] >> (7 &^ s.pos) & 1
		s.pos++
	}
	return b
}

// Read returns the next n bits, 0 <= n <= 32, as a number.  Past end
// of buffer Read returns zero bits; callers check Available first.
func (s *BitStream) Read(n int) uint32 {
	var v uint32
	for ; n > 0; n-- {
		v = v<<1 | uint32(s.Next())
	}
	return v
}
