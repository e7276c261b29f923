// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import "strconv"

// A Mask identifies one of the eight data mask patterns.
type Mask int

// Mask patterns, i is the row and j the column:
//
//	0: ▄▀▄▀▄▀▄▀▄▀▄▀  1: ▄▄▄▄▄▄▄▄▄▄▄▄  2:  ██ ██ ██ ██  3: ▄█▀▄█▀▄█▀▄█▀
//	   ▄▀▄▀▄▀▄▀▄▀▄▀     ▄▄▄▄▄▄▄▄▄▄▄▄      ██ ██ ██ ██     ▀▄█▀▄█▀▄█▀▄█
//	   ▄▀▄▀▄▀▄▀▄▀▄▀     ▄▄▄▄▄▄▄▄▄▄▄▄      ██ ██ ██ ██     █▀▄█▀▄█▀▄█▀▄
//
//	4:    ███   ███  5:  ▄▄▄▄▄ ▄▄▄▄▄  6:    ▄▄▄   ▄▄▄  7: ▄█▄▀ ▀▄█▄▀ ▀
//	   ███   ███         █▀▄▀█ █▀▄▀█      ▄▀▄ █ ▄▀▄ █     ▄▀█▀▄ ▄▀█▀▄
//	      ███   ███      ██▄██ ██▄██      █▄▄▀  █▄▄▀      ▄  ▀██▄  ▀██
var maskFunc = [8]func(i, j int) bool{
	func(i, j int) bool { return (i+j)%2 == 0 },
	func(i, j int) bool { return i%2 == 0 },
	func(i, j int) bool { return j%3 == 0 },
	func(i, j int) bool { return (i+j)%3 == 0 },
	func(i, j int) bool { return (i/2+j/3)%2 == 0 },
	func(i, j int) bool { return i*j%6 == 0 },
	func(i, j int) bool { return i*j%6 < 3 },
	func(i, j int) bool { return (i+j+i*j%3)%2 == 0 },
}

func (m Mask) String() string { return strconv.Itoa(int(m)) }

// IsValid reports whether m is a mask pattern.
func (m Mask) IsValid() bool { return 0 <= m && m <= 7 }

// Masked reports whether mask m flips the pixel in row i, column j.
func (m Mask) Masked(i, j int) bool { return maskFunc[m](i, j) }

// Combined reports whether the pixel in row i, column j, which is data
// pixel n in scan order, is flipped by mask m together with key k.
// Both are applied as XOR, so their order does not matter.
func (m Mask) Combined(i, j, n int, k *Key) bool {
	return maskFunc[m](i, j) != k.Bit(n)
}
