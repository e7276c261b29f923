// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

// Version table rows: total codewords, remainder bits, EC codewords
// per level, and number of blocks per level.  From qrencode qrspec.c.
var capacity = [MaxVersion + 1]struct {
	words     int
	remainder int
	ec        [4]int
	blocks    [4]int
}{
	1:  {26, 0, [4]int{7, 10, 13, 17}, [4]int{1, 1, 1, 1}},
	2:  {44, 7, [4]int{10, 16, 22, 28}, [4]int{1, 1, 1, 1}},
	3:  {70, 7, [4]int{15, 26, 36, 44}, [4]int{1, 1, 2, 2}},
	4:  {100, 7, [4]int{20, 36, 52, 64}, [4]int{1, 2, 2, 4}},
	5:  {134, 7, [4]int{26, 48, 72, 88}, [4]int{1, 2, 4, 4}},
	6:  {172, 7, [4]int{36, 64, 96, 112}, [4]int{2, 4, 4, 4}},
	7:  {196, 0, [4]int{40, 72, 108, 130}, [4]int{2, 4, 6, 5}},
	8:  {242, 0, [4]int{48, 88, 132, 156}, [4]int{2, 4, 6, 6}},
	9:  {292, 0, [4]int{60, 110, 160, 192}, [4]int{2, 5, 8, 8}},
	10: {346, 0, [4]int{72, 130, 192, 224}, [4]int{4, 5, 8, 8}},
	11: {404, 0, [4]int{80, 150, 224, 264}, [4]int{4, 5, 8, 11}},
	12: {466, 0, [4]int{96, 176, 260, 308}, [4]int{4, 8, 10, 11}},
	13: {532, 0, [4]int{104, 198, 288, 352}, [4]int{4, 9, 12, 16}},
	14: {581, 3, [4]int{120, 216, 320, 384}, [4]int{4, 9, 16, 16}},
	15: {655, 3, [4]int{132, 240, 360, 432}, [4]int{6, 10, 12, 18}},
	16: {733, 3, [4]int{144, 280, 408, 480}, [4]int{6, 10, 17, 16}},
	17: {815, 3, [4]int{168, 308, 448, 532}, [4]int{6, 11, 16, 19}},
	18: {901, 3, [4]int{180, 338, 504, 588}, [4]int{6, 13, 18, 21}},
	19: {991, 3, [4]int{196, 364, 546, 650}, [4]int{7, 14, 21, 25}},
	20: {1085, 3, [4]int{224, 416, 600, 700}, [4]int{8, 16, 20, 25}},
	21: {1156, 4, [4]int{224, 442, 644, 750}, [4]int{8, 17, 23, 25}},
	22: {1258, 4, [4]int{252, 476, 690, 816}, [4]int{9, 17, 23, 34}},
	23: {1364, 4, [4]int{270, 504, 750, 900}, [4]int{9, 18, 25, 30}},
	24: {1474, 4, [4]int{300, 560, 810, 960}, [4]int{10, 20, 27, 32}},
	25: {1588, 4, [4]int{312, 588, 870, 1050}, [4]int{12, 21, 29, 35}},
	26: {1706, 4, [4]int{336, 644, 952, 1110}, [4]int{12, 23, 34, 37}},
	27: {1828, 4, [4]int{360, 700, 1020, 1200}, [4]int{12, 25, 34, 40}},
	28: {1921, 3, [4]int{390, 728, 1050, 1260}, [4]int{13, 26, 35, 42}},
	29: {2051, 3, [4]int{420, 784, 1140, 1350}, [4]int{14, 28, 38, 45}},
	30: {2185, 3, [4]int{450, 812, 1200, 1440}, [4]int{15, 29, 40, 48}},
	31: {2323, 3, [4]int{480, 868, 1290, 1530}, [4]int{16, 31, 43, 51}},
	32: {2465, 3, [4]int{510, 924, 1350, 1620}, [4]int{17, 33, 45, 54}},
	33: {2611, 3, [4]int{540, 980, 1440, 1710}, [4]int{18, 35, 48, 57}},
	34: {2761, 3, [4]int{570, 1036, 1530, 1800}, [4]int{19, 37, 51, 60}},
	35: {2876, 0, [4]int{570, 1064, 1590, 1890}, [4]int{19, 38, 53, 63}},
	36: {3034, 0, [4]int{600, 1120, 1680, 1980}, [4]int{20, 40, 56, 66}},
	37: {3196, 0, [4]int{630, 1204, 1770, 2100}, [4]int{21, 43, 59, 70}},
	38: {3362, 0, [4]int{660, 1260, 1860, 2220}, [4]int{22, 45, 62, 74}},
	39: {3532, 0, [4]int{720, 1316, 1950, 2310}, [4]int{24, 47, 65, 77}},
	40: {3706, 0, [4]int{750, 1372, 2040, 2430}, [4]int{25, 49, 68, 81}},
}

// First two alignment pattern coordinates after 6, or 0.
var align = [MaxVersion + 1][2]int{
	{},                                         // unused
	{0, 0}, {18, 0}, {22, 0}, {26, 0}, {30, 0}, // 1-5
	{34, 0}, {22, 38}, {24, 42}, {26, 46}, {28, 50}, // 6-10
	{30, 54}, {32, 58}, {34, 62}, {26, 46}, {26, 48}, // 11-15
	{26, 50}, {30, 54}, {30, 56}, {30, 58}, {34, 62}, // 16-20
	{28, 50}, {26, 50}, {30, 54}, {28, 54}, {32, 58}, // 21-25
	{30, 58}, {34, 62}, {26, 50}, {30, 54}, {26, 52}, // 26-30
	{30, 56}, {34, 60}, {30, 58}, {34, 62}, {30, 54}, // 31-35
	{24, 50}, {28, 54}, {32, 58}, {26, 54}, {30, 58}, // 36-40
}

// A version describes metadata associated with a version.
type version struct {
	align     []int  // alignment pattern coordinates
	bytes     int    // total codewords
	remainder int    // remainder bits
	pattern   uint32 // version information, 0 below version 7
	level     [4]level
}

type level struct {
	nblock int // number of blocks
	check  int // check codewords per block
}

// Version table.
var vtab [MaxVersion + 1]version

func init() {
	for v := MinVersion; v <= MaxVersion; v++ {
		c := &capacity[v]
		vt := &vtab[v]
		vt.bytes = c.words
		vt.remainder = c.remainder
		for l := range vt.level {
			vt.level[l] = level{c.blocks[l], c.ec[l] / c.blocks[l]}
		}
		siz := v.Size()
		vt.align = []int{6}
		if a := align[v]; a[0] != 0 {
			for x := a[0]; x <= siz-7; x += a[1] - a[0] {
				vt.align = append(vt.align, x)
				if a[1] == 0 {
					break
				}
			}
		}
		if v >= 7 {
			vt.pattern = bch(uint32(v), 12, 0x1f25)
		}
	}
}

// bch returns data followed by its BCH remainder of n bits for the
// generator poly.
func bch(data uint32, n uint, poly uint32) uint32 {
	rem := data << n
	pn := uint(0)
	for p := poly; p > 1; p >>= 1 {
		pn++
	}
	for i := int(n + 6); i >= int(pn); i-- {
		if rem&(1<<uint(i)) != 0 {
			rem ^= poly << (uint(i) - pn)
		}
	}
	return data<<n | rem
}
