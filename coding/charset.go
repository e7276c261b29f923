// Copyright 2025 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import (
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// ECI designators with a known character set.  UTF-8 maps to nil,
// the bytes are used as is.  US-ASCII is read as ISO 8859-1, which
// agrees with it on every ASCII byte.
var eciCharset = map[int]encoding.Encoding{
	0:   charmap.CodePage437,
	1:   charmap.ISO8859_1,
	2:   charmap.CodePage437,
	3:   charmap.ISO8859_1,
	4:   charmap.ISO8859_2,
	5:   charmap.ISO8859_3,
	6:   charmap.ISO8859_4,
	7:   charmap.ISO8859_5,
	8:   charmap.ISO8859_6,
	9:   charmap.ISO8859_7,
	10:  charmap.ISO8859_8,
	11:  charmap.ISO8859_9,
	12:  charmap.ISO8859_10,
	13:  charmap.Windows874, // ISO 8859-11 with extensions
	15:  charmap.ISO8859_13,
	16:  charmap.ISO8859_14,
	17:  charmap.ISO8859_15,
	18:  charmap.ISO8859_16,
	20:  japanese.ShiftJIS,
	21:  charmap.Windows1250,
	22:  charmap.Windows1251,
	23:  charmap.Windows1252,
	24:  charmap.Windows1256,
	25:  unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
	26:  nil,
	27:  charmap.ISO8859_1,
	28:  traditionalchinese.Big5,
	29:  simplifiedchinese.GB18030,
	30:  korean.EUCKR,
	170: charmap.ISO8859_1,
}

// KnownECI reports whether ECI designator eci names a supported
// character set.
func KnownECI(eci int) bool {
	_, ok := eciCharset[eci]
	return ok
}

// decodeCharset returns b decoded from enc as a string.
func decodeCharset(enc encoding.Encoding, b []byte) (string, error) {
	if enc == nil {
		return string(b), nil
	}
	s, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", formatErrorf("invalid text in segment: %v", err)
	}
	return string(s), nil
}

// guessCharset returns the character set for byte segments outside
// any ECI: UTF-8 if b is valid UTF-8, ISO 8859-1 otherwise.
func guessCharset(b []byte) encoding.Encoding {
	if utf8.Valid(b) {
		return nil
	}
	return charmap.ISO8859_1
}
