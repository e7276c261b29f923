// Copyright 2025 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

// A DataBlock holds the data codewords of one block followed by its
// checksum codewords.
type DataBlock struct {
	Codewords        []byte
	NumDataCodewords int
}

// A BlockGroup describes Count blocks of DataCodewords data codewords
// each.
type BlockGroup struct {
	Count         int
	DataCodewords int
}

// A BlockTable describes the blocks of a code of a given version and
// level.  All blocks carry ECCodewords checksum codewords.  Short
// blocks come first; the second group, if any, has one more data
// codeword per block.
type BlockTable struct {
	ECCodewords int
	Groups      []BlockGroup
}

// NumBlocks returns the total number of blocks.
func (t BlockTable) NumBlocks() int {
	n := 0
	for _, g := range t.Groups {
		n += g.Count
	}
	return n
}

// DataCodewords returns the total number of data codewords.
func (t BlockTable) DataCodewords() int {
	n := 0
	for _, g := range t.Groups {
		n += g.Count * g.DataCodewords
	}
	return n
}

// Blocks returns the block table for version v and level l.
func Blocks(v Version, l Level) (BlockTable, error) {
	if !v.IsValid() {
		return BlockTable{}, ErrVersion
	}
	if !l.IsValid() {
		return BlockTable{}, ErrLevel
	}
	lev := vtab[v].level[l]
	nd := v.DataBytes(l)
	db := nd / lev.nblock
	long := nd % lev.nblock
	t := BlockTable{ECCodewords: lev.check}
	t.Groups = append(t.Groups, BlockGroup{lev.nblock - long, db})
	if long != 0 {
		t.Groups = append(t.Groups, BlockGroup{long, db + 1})
	}
	return t, nil
}

// SplitBlocks de-interleaves the codewords read from a code of
// version v and level l into blocks in table order.  Data codewords
// are interleaved one per block, long blocks taking the last column
// alone, then checksum codewords likewise.
func SplitBlocks(raw []byte, v Version, l Level) ([]DataBlock, error) {
	t, err := Blocks(v, l)
	if err != nil {
		return nil, err
	}
	if len(raw) != v.TotalBytes() {
		return nil, formatErrorf("%d codewords for version %v, want %d",
			len(raw), v, v.TotalBytes())
	}
	blocks := make([]DataBlock, 0, t.NumBlocks())
	for _, g := range t.Groups {
		for i := 0; i < g.Count; i++ {
			blocks = append(blocks, DataBlock{
				Codewords:        make([]byte, g.DataCodewords+t.ECCodewords),
				NumDataCodewords: g.DataCodewords,
			})
		}
	}
	short := t.Groups[0].DataCodewords
	longAt := t.Groups[0].Count
	for i := 0; i < short; i++ {
		for j := range blocks {
			blocks[j].Codewords[i], raw = raw[0], raw[1:]
		}
	}
	for j := longAt; j < len(blocks); j++ {
		blocks[j].Codewords[short], raw = raw[0], raw[1:]
	}
	for i := 0; i < t.ECCodewords; i++ {
		for j := range blocks {
			b := &blocks[j]
			b.Codewords[b.NumDataCodewords+i], raw = raw[0], raw[1:]
		}
	}
	return blocks, nil
}
