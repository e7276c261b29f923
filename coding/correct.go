// Copyright 2025 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

// CorrectBlocks corrects errors in blocks in place and returns their
// data codewords concatenated in order, with the total number of
// corrected codewords.  A block that cannot be corrected fails the
// whole code with a ChecksumError.
func CorrectBlocks(blocks []DataBlock) ([]byte, int, error) {
	total := 0
	for _, b := range blocks {
		total += b.NumDataCodewords
	}
	out := make([]byte, 0, total)
	nerr := 0
	for i, b := range blocks {
		n, err := rs.Correct(b.Codewords, len(b.Codewords)-b.NumDataCodewords)
		if err != nil {
			return nil, 0, ChecksumError{Block: i}
		}
		nerr += n
		out = append(out, b.Codewords[:b.NumDataCodewords]...)
	}
	return out, nerr, nil
}
