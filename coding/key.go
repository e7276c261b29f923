// Copyright 2025 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import (
	"encoding/hex"
	"errors"
	"strings"
)

// KeyBits is the length of a Key in bits.
const KeyBits = 256

// A Key holds the 256 bit keystream XORed with the data region of
// a keyed QR code.  Bit n of the key is bit 7-n%8 of byte n/8, most
// significant bit first.  Data pixel n in scan order is flipped when
// key bit n mod 256 is set.
type Key [KeyBits / 8]byte

var ErrKey = errors.New("qr: invalid key")

// Bit returns key bit n mod 256.
func (k *Key) Bit(n int) bool {
	n &= KeyBits - 1
	return k[n>>3]&(0x80>>(n&7)) != 0
}

// KeyFromBytes returns a Key holding the first 32 bytes of b, padded
// with zero bytes if b is shorter.
func KeyFromBytes(b []byte) Key {
	var k Key
	copy(k[:], b)
	return k
}

// KeyFromString returns the key for an operator supplied string: its
// UTF-8 bytes, most significant bit first, truncated or padded with
// zero bits to 256 bits.
func KeyFromString(s string) Key { return KeyFromBytes([]byte(s)) }

// ParseKeyHex parses a key written as exactly 64 hexadecimal digits.
func ParseKeyHex(s string) (Key, error) {
	var k Key
	if len(s) != 2*len(k) {
		return k, ErrKey
	}
	if _, err := hex.Decode(k[:], []byte(s)); err != nil {
		return Key{}, ErrKey
	}
	return k, nil
}

// ParseKeyBits parses a key written as exactly 256 characters '0'
// and '1', bit 0 first.
func ParseKeyBits(s string) (Key, error) {
	var k Key
	if len(s) != KeyBits {
		return k, ErrKey
	}
	for n, c := range []byte(s) {
		switch c {
		case '1':
			k[n>>3] |= 0x80 >> (n & 7)
		case '0':
		default:
			return Key{}, ErrKey
		}
	}
	return k, nil
}

// Hex returns k as 64 hexadecimal digits.
func (k *Key) Hex() string { return hex.EncodeToString(k[:]) }

// BitString returns k as 256 characters '0' and '1'.
func (k *Key) BitString() string {
	var b strings.Builder
	b.Grow(KeyBits)
	for n := 0; n < KeyBits; n++ {
		if k.Bit(n) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}
