// Copyright 2025 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import (
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// A Mode is a segment mode indicator.
type Mode int

// Mode indicators.
const (
	Terminator       Mode = 0
	Numeric          Mode = 1
	Alphanumeric     Mode = 2
	StructuredAppend Mode = 3
	Byte             Mode = 4
	FNC1First        Mode = 5
	ECI              Mode = 7
	Kanji            Mode = 8
	FNC1Second       Mode = 9
	Hanzi            Mode = 13
)

var modeNames = map[Mode]string{
	Terminator:       "terminator",
	Numeric:          "numeric",
	Alphanumeric:     "alphanumeric",
	StructuredAppend: "structured append",
	Byte:             "byte",
	FNC1First:        "FNC1 first position",
	ECI:              "ECI",
	Kanji:            "kanji",
	FNC1Second:       "FNC1 second position",
	Hanzi:            "hanzi",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return "mode " + strconv.Itoa(int(m))
}

// countLength holds character count field lengths per size class.
var countLength = map[Mode][3]int{
	Numeric:      {10, 12, 14},
	Alphanumeric: {9, 11, 13},
	Byte:         {8, 16, 16},
	Kanji:        {8, 10, 12},
	Hanzi:        {8, 10, 12},
}

// CountLength returns the length of the character count field of mode
// m in a code of size class class, or 0 if m has no count.
func (m Mode) CountLength(class int) int { return countLength[m][class] }

// GB2312Subset is the only hanzi subset indicator supported.
const GB2312Subset = 1

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ $%*+-./:"

// A StructuredAppendInfo holds the position of a code in a sequence
// of up to 16 codes and the parity of the whole message.
type StructuredAppendInfo struct {
	Sequence int // index in the high nibble, count-1 in the low
	Parity   int
}

// Index returns the position of the code in the sequence, from 0.
func (sa StructuredAppendInfo) Index() int { return sa.Sequence >> 4 }

// Total returns the number of codes in the sequence.
func (sa StructuredAppendInfo) Total() int { return sa.Sequence&0xf + 1 }

// A Payload is the decoded content of a code.
type Payload struct {
	Text         string
	ByteSegments [][]byte // raw bytes of byte segments

	StructuredAppend *StructuredAppendInfo // nil if absent

	// ECI is the last ECI designator in effect, or -1.
	ECI int
	// ApplicationIndicator follows an FNC1 in second position
	// mode indicator, -1 if absent.
	ApplicationIndicator int
	// SymbologyModifier is the modifier of the symbology
	// identifier ]Q<n>.
	SymbologyModifier int
}

// SymbologyIdentifier returns the symbology identifier, "]Q1" to
// "]Q6".
func (p *Payload) SymbologyIdentifier() string {
	return "]Q" + strconv.Itoa(p.SymbologyModifier)
}

type segmentDecoder struct {
	s     BitStream
	class int
	text  strings.Builder
	p     *Payload

	enc     encoding.Encoding // byte segment character set, if eciSet
	eciSet  bool
	fnc1    bool
	fnc1Pos Mode
}

// DecodeSegments decodes the data codewords of a code of version v.
// Decoding stops at a terminator or when fewer than 4 bits are left.
// Malformed segments are reported as a FormatError.
func DecodeSegments(data []byte, v Version) (*Payload, error) {
	if !v.IsValid() {
		return nil, ErrVersion
	}
	d := &segmentDecoder{
		s:     NewBitStream(data),
		class: v.SizeClass(),
		p:     &Payload{ECI: -1, ApplicationIndicator: -1},
	}
	if err := d.decode(); err != nil {
		return nil, err
	}
	d.p.Text = d.text.String()
	d.p.SymbologyModifier = d.modifier()
	return d.p, nil
}

func (d *segmentDecoder) modifier() int {
	m := 1
	switch d.fnc1Pos {
	case FNC1First:
		m = 3
	case FNC1Second:
		m = 5
	}
	if d.eciSet {
		m++
	}
	return m
}

// need fails unless n more bits are available.
func (d *segmentDecoder) need(n int, m Mode) error {
	if d.s.Available() < n {
		return formatErrorf("%v segment truncated", m)
	}
	return nil
}

func (d *segmentDecoder) decode() error {
	for {
		if d.s.Available() < 4 {
			return nil
		}
		mode := Mode(d.s.Read(4))
		switch mode {
		case Terminator:
			return nil
		case FNC1First, FNC1Second:
			d.fnc1 = true
			if d.fnc1Pos == 0 {
				d.fnc1Pos = mode
			}
			if mode == FNC1Second {
				if err := d.need(8, mode); err != nil {
					return err
				}
				d.p.ApplicationIndicator = int(d.s.Read(8))
			}
		case StructuredAppend:
			if err := d.need(16, mode); err != nil {
				return err
			}
			d.p.StructuredAppend = &StructuredAppendInfo{
				Sequence: int(d.s.Read(8)),
				Parity:   int(d.s.Read(8)),
			}
		case ECI:
			eci, err := d.eciValue()
			if err != nil {
				return err
			}
			enc, ok := eciCharset[eci]
			if !ok {
				return formatErrorf("unsupported ECI %d", eci)
			}
			d.enc, d.eciSet = enc, true
			d.p.ECI = eci
		case Hanzi:
			if err := d.need(4, mode); err != nil {
				return err
			}
			if subset := d.s.Read(4); subset != GB2312Subset {
				return formatErrorf("unsupported hanzi subset %d", subset)
			}
			if err := d.segment(mode); err != nil {
				return err
			}
		case Numeric, Alphanumeric, Byte, Kanji:
			if err := d.segment(mode); err != nil {
				return err
			}
		default:
			return formatErrorf("unknown mode indicator %d", int(mode))
		}
	}
}

// segment decodes a segment with a character count.
func (d *segmentDecoder) segment(mode Mode) error {
	cl := mode.CountLength(d.class)
	if err := d.need(cl, mode); err != nil {
		return err
	}
	count := int(d.s.Read(cl))
	switch mode {
	case Numeric:
		return d.numeric(count)
	case Alphanumeric:
		return d.alphanumeric(count)
	case Byte:
		return d.bytes(count)
	case Kanji:
		return d.double(count, mode, 0xc0, 0x1f00, 0x8140, 0xc140, japanese.ShiftJIS)
	default:
		return d.double(count, mode, 0x60, 0xa00, 0xa1a1, 0xa6a1, simplifiedchinese.GBK)
	}
}

func (d *segmentDecoder) numeric(count int) error {
	for ; count > 0; count -= 3 {
		n, width, limit := 3, 10, uint32(1000)
		switch count {
		case 1:
			n, width, limit = 1, 4, 10
		case 2:
			n, width, limit = 2, 7, 100
		}
		if err := d.need(width, Numeric); err != nil {
			return err
		}
		v := d.s.Read(width)
		if v >= limit {
			return formatErrorf("numeric value %d out of range", v)
		}
		s := strconv.Itoa(int(v))
		for i := len(s); i < n; i++ {
			d.text.WriteByte('0')
		}
		d.text.WriteString(s)
	}
	return nil
}

func (d *segmentDecoder) alphanumeric(count int) error {
	var b []byte
	for ; count > 1; count -= 2 {
		if err := d.need(11, Alphanumeric); err != nil {
			return err
		}
		v := d.s.Read(11)
		if v/45 >= 45 {
			return formatErrorf("alphanumeric value %d out of range", v)
		}
		b = append(b, alphabet[v/45], alphabet[v%45])
	}
	if count == 1 {
		if err := d.need(6, Alphanumeric); err != nil {
			return err
		}
		v := d.s.Read(6)
		if v >= 45 {
			return formatErrorf("alphanumeric value %d out of range", v)
		}
		b = append(b, alphabet[v])
	}
	if d.fnc1 {
		// %% stands for %, a lone % for GS.
		out := b[:0]
		for i := 0; i < len(b); i++ {
			c := b[i]
			if c == '%' {
				if i+1 < len(b) && b[i+1] == '%' {
					i++
				} else {
					c = 0x1d
				}
			}
			out = append(out, c)
		}
		b = out
	}
	d.text.Write(b)
	return nil
}

func (d *segmentDecoder) bytes(count int) error {
	if err := d.need(8*count, Byte); err != nil {
		return err
	}
	b := make([]byte, count)
	for i := range b {
		b[i] = byte(d.s.Read(8))
	}
	d.p.ByteSegments = append(d.p.ByteSegments, b)
	enc := d.enc
	if !d.eciSet {
		enc = guessCharset(b)
	}
	s, err := decodeCharset(enc, b)
	if err != nil {
		return err
	}
	d.text.WriteString(s)
	return nil
}

// double decodes a kanji or hanzi segment: 13 bit values packing
// two byte characters of enc.
func (d *segmentDecoder) double(count int, mode Mode, div, split, lo, hi uint32, enc encoding.Encoding) error {
	if err := d.need(13*count, mode); err != nil {
		return err
	}
	b := make([]byte, 0, 2*count)
	for i := 0; i < count; i++ {
		v := d.s.Read(13)
		c := v/div<<8 | v%div
		if c < split {
			c += lo
		} else {
			c += hi
		}
		b = append(b, byte(c>>8), byte(c))
	}
	s, err := decodeCharset(enc, b)
	if err != nil {
		return err
	}
	d.text.WriteString(s)
	return nil
}

// eciValue reads an ECI designator of 1, 2 or 3 bytes.
func (d *segmentDecoder) eciValue() (int, error) {
	if err := d.need(8, ECI); err != nil {
		return 0, err
	}
	first := int(d.s.Read(8))
	var n int
	switch {
	case first&0x80 == 0:
		return first, nil
	case first&0xc0 == 0x80:
		first &= 0x3f
		n = 8
	case first&0xe0 == 0xc0:
		first &= 0x1f
		n = 16
	default:
		return 0, formatErrorf("invalid ECI designator %#x", first)
	}
	if err := d.need(n, ECI); err != nil {
		return 0, err
	}
	return first<<n | int(d.s.Read(n)), nil
}
