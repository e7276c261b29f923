// Copyright 2025 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package secqr_test

import (
	"errors"
	"math/bits"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/unixdj/secqr"
	"github.com/unixdj/secqr/coding"
	"github.com/unixdj/secqr/internal/qrgen"
)

var key = secqr.KeyFromString("correct horse battery staple!!!!")

func hello(t *testing.T) *secqr.BitMatrix {
	m, err := qrgen.Encode(1, secqr.M, 2, &key, qrgen.Alpha("HELLO"))
	require.NoError(t, err)
	return m
}

// Ensure a code decodes with the key it was made with.
func TestDecodeHello(t *testing.T) {
	res, err := secqr.Decode(hello(t), &key)
	require.NoError(t, err)
	require.Equal(t, "HELLO", res.Text)
	require.Equal(t, coding.Version(1), res.Version)
	require.Equal(t, secqr.M, res.Level)
	require.Equal(t, coding.Mask(2), res.Mask)
	require.False(t, res.Mirrored)
	require.Equal(t, -1, res.ECI)
	require.Equal(t, "]Q1", res.SymbologyIdentifier)
	require.Nil(t, res.StructuredAppend)
	require.Zero(t, res.ErrorsCorrected)
	require.Len(t, res.Bytes, coding.Version(1).DataBytes(secqr.M))
}

func isDecodeError(err error) bool {
	var fe secqr.FormatError
	var ce secqr.ChecksumError
	return errors.As(err, &fe) || errors.As(err, &ce)
}

// Ensure a different key does not decode the code.
func TestDecodeWrongKey(t *testing.T) {
	m := hello(t)
	for _, s := range []string{
		"", "wrong key", strings.Repeat("\xff", 32),
	} {
		k := secqr.KeyFromString(s)
		res, err := secqr.Decode(m, &k)
		require.Error(t, err, "key %q decoded %v", s, res)
		require.True(t, isDecodeError(err), "key %q: %v", s, err)
	}
}

// Ensure a transposed code is read mirrored and the outer points are
// swapped.
func TestDecodeMirrored(t *testing.T) {
	for _, v := range []coding.Version{1, 4, 7, 12} {
		m, err := qrgen.Encode(v, secqr.Q, 5, &key, qrgen.Alpha("MIRROR"))
		require.NoError(t, err)
		a, b, c := secqr.Point{X: 1, Y: 1}, secqr.Point{X: 9, Y: 1}, secqr.Point{X: 1, Y: 9}
		points := []secqr.Point{a, b, c}
		res, err := new(secqr.Decoder).DecodePoints(m.Transpose(), &key, points)
		require.NoError(t, err, "version %v", v)
		require.Equal(t, "MIRROR", res.Text)
		require.True(t, res.Mirrored)
		require.Equal(t, []secqr.Point{c, b, a}, res.Points)
		require.Equal(t, []secqr.Point{a, b, c}, points, "caller's points modified")

		res, err = new(secqr.Decoder).DecodePoints(m.Transpose(), &key, points[:2])
		require.NoError(t, err)
		require.Equal(t, []secqr.Point{a, b}, res.Points)

		res, err = new(secqr.Decoder).DecodePoints(m, &key, points)
		require.NoError(t, err)
		require.False(t, res.Mirrored)
		require.Equal(t, points, res.Points)
	}
}

// Ensure a failed mirrored reading reports the error of the first.
func TestDecodeOriginalError(t *testing.T) {
	m := hello(t)
	p, err := coding.PlanFor(1)
	require.NoError(t, err)
	// Invert 8 codewords, more than 5 can be corrected.
	flip := make(map[coding.Cell]bool)
	for _, c := range p.Cells()[:64] {
		flip[c] = true
	}
	bad := coding.NewBitMatrix(m.Size(), func(x, y int) bool {
		return m.Black(x, y) != flip[coding.Cell{X: uint8(x), Y: uint8(y)}]
	})
	_, err = secqr.Decode(bad, &key)
	var ce secqr.ChecksumError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, 0, ce.Block)

	_, err = secqr.Decode(bad.Transpose(), &key)
	require.True(t, isDecodeError(err), "%v", err)
}

// withFormat returns m with both copies of its format information
// replaced by w.
func withFormat(m *secqr.BitMatrix, w uint16) *secqr.BitMatrix {
	a, b := coding.FormatCells(m.Size())
	set := make(map[coding.Cell]bool)
	for i := range a {
		bit := w>>(14-i)&1 != 0
		set[a[i]], set[b[i]] = bit, bit
	}
	return coding.NewBitMatrix(m.Size(), func(x, y int) bool {
		if v, ok := set[coding.Cell{X: uint8(x), Y: uint8(y)}]; ok {
			return v
		}
		return m.Black(x, y)
	})
}

// Ensure the error of the first reading is reported when the mirrored
// reading fails in a different way.
func TestDecodeOriginalErrorDistinct(t *testing.T) {
	m := hello(t)
	p, err := coding.PlanFor(1)
	require.NoError(t, err)
	flip := make(map[coding.Cell]bool)
	for _, c := range p.Cells()[:64] {
		flip[c] = true
	}
	m = coding.NewBitMatrix(m.Size(), func(x, y int) bool {
		return m.Black(x, y) != flip[coding.Cell{X: uint8(x), Y: uint8(y)}]
	})

	// Transposing reverses the format bits.  Find a single bit error
	// that leaves the format readable but its reversal unreadable.
	fb := coding.FormatBits(coding.FormatInfo{Level: secqr.M, Mask: 2})
	var bad *secqr.BitMatrix
	for i := 0; i < 15 && bad == nil; i++ {
		w := fb ^ 1<<i
		r := bits.Reverse16(w) >> 1
		if _, err := coding.DecodeFormatBits(r, r); err != nil {
			bad = withFormat(m, w)
		}
	}
	require.NotNil(t, bad)

	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	d := &secqr.Decoder{Log: log}

	// First reading: checksum error.  Mirrored: format error.
	_, err = d.Decode(bad, &key)
	var ce secqr.ChecksumError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, 0, ce.Block)
	require.Equal(t, "qr: mirrored format unreadable", hook.LastEntry().Message)
	require.IsType(t, secqr.FormatError(""), hook.LastEntry().Data["mirrored"])

	// First reading: format error.  Mirrored: checksum error.
	hook.Reset()
	_, err = d.Decode(bad.Transpose(), &key)
	var fe secqr.FormatError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, "qr: mirrored reading failed", hook.LastEntry().Message)
	require.Equal(t, secqr.ChecksumError{Block: 0}, hook.LastEntry().Data["mirrored"])
}

// Ensure a nil key is rejected.
func TestDecodeNilKey(t *testing.T) {
	_, err := secqr.Decode(hello(t), nil)
	require.ErrorIs(t, err, secqr.ErrKey)
}

// Ensure damaged codewords are corrected and counted.
func TestDecodeCorrected(t *testing.T) {
	m := hello(t)
	p, _ := coding.PlanFor(1)
	flip := make(map[coding.Cell]bool)
	for _, c := range p.Cells()[8:24] { // codewords 1 and 2
		flip[c] = true
	}
	bad := coding.NewBitMatrix(m.Size(), func(x, y int) bool {
		return m.Black(x, y) != flip[coding.Cell{X: uint8(x), Y: uint8(y)}]
	})
	res, err := secqr.Decode(bad, &key)
	require.NoError(t, err)
	require.Equal(t, "HELLO", res.Text)
	require.Equal(t, 2, res.ErrorsCorrected)
}

// Ensure sizes that are not QR code sizes are rejected.
func TestDecodeBadSize(t *testing.T) {
	for _, siz := range []int{0, 20, 22, 23, 24, 181} {
		m := coding.NewBitMatrix(siz, func(x, y int) bool { return (x+y)%2 == 0 })
		_, err := secqr.Decode(m, &key)
		var fe secqr.FormatError
		require.ErrorAs(t, err, &fe, "size %d", siz)
	}
}

// Ensure unreadable format information is a FormatError.
func TestDecodeNoFormat(t *testing.T) {
	m := hello(t)
	fa, fb := coding.FormatCells(m.Size())
	set := make(map[coding.Cell]bool)
	for i := 0; i < 15; i++ {
		set[fa[i]] = 0x2aaa>>(14-i)&1 != 0
		set[fb[i]] = 0x5555>>(14-i)&1 != 0
	}
	bad := coding.NewBitMatrix(m.Size(), func(x, y int) bool {
		if b, ok := set[coding.Cell{X: uint8(x), Y: uint8(y)}]; ok {
			return b
		}
		return m.Black(x, y)
	})
	_, err := secqr.Decode(bad, &key)
	var fe secqr.FormatError
	require.ErrorAs(t, err, &fe)
}

func payload(n int) string {
	var b strings.Builder
	for i := 0; b.Len() < n; i++ {
		b.WriteString("keyed code ")
		b.WriteByte(byte('a' + i%26))
		b.WriteByte(' ')
	}
	return b.String()[:n]
}

// Ensure codes of all size classes decode.
func TestDecodeVersions(t *testing.T) {
	for _, tt := range []struct {
		v coding.Version
		l secqr.Level
		m coding.Mask
	}{
		{1, secqr.L, 0}, {2, secqr.H, 1}, {7, secqr.M, 2}, {9, secqr.Q, 3},
		{10, secqr.L, 4}, {15, secqr.H, 5}, {26, secqr.Q, 6},
		{27, secqr.M, 7}, {33, secqr.L, 1}, {40, secqr.H, 3}, {40, secqr.L, 6},
	} {
		text := payload(tt.v.DataBytes(tt.l) - 3)
		m, err := qrgen.Encode(tt.v, tt.l, tt.m, &key, qrgen.Bytes([]byte(text)))
		require.NoError(t, err)
		res, err := secqr.Decode(m, &key)
		require.NoError(t, err, "%v-%v", tt.v, tt.l)
		require.Equal(t, text, res.Text)
		require.Equal(t, tt.v, res.Version)
		require.Equal(t, tt.l, res.Level)
		require.Equal(t, tt.m, res.Mask)
	}
}

// Ensure metadata segments are reported.
func TestDecodeMetadata(t *testing.T) {
	m, err := qrgen.Encode(5, secqr.M, 4, &key,
		qrgen.StructuredAppend(1, 3, 0x2a),
		qrgen.ECI(26),
		qrgen.Bytes([]byte("grüße")),
		qrgen.Num("2025"))
	require.NoError(t, err)
	res, err := secqr.Decode(m, &key)
	require.NoError(t, err)
	require.Equal(t, "grüße2025", res.Text)
	require.Equal(t, 26, res.ECI)
	require.Equal(t, "]Q2", res.SymbologyIdentifier)
	require.NotNil(t, res.StructuredAppend)
	require.Equal(t, 1, res.StructuredAppend.Index())
	require.Equal(t, 3, res.StructuredAppend.Total())
	require.Equal(t, 0x2a, res.StructuredAppend.Parity)
	require.Equal(t, [][]byte{[]byte("grüße")}, res.ByteSegments)
}

// Ensure concurrent decodes sharing a matrix agree.
func TestDecodeConcurrent(t *testing.T) {
	m, err := qrgen.Encode(10, secqr.Q, 6, &key, qrgen.Alpha("CONCURRENT DECODE"))
	require.NoError(t, err)
	mt := m.Transpose()
	var g errgroup.Group
	for i := 0; i < 32; i++ {
		in := m
		if i%2 != 0 {
			in = mt
		}
		g.Go(func() error {
			res, err := secqr.Decode(in, &key)
			if err != nil {
				return err
			}
			if res.Text != "CONCURRENT DECODE" || res.Mirrored != (in == mt) {
				return errors.New("wrong result " + res.Text)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.True(t, m.Transpose().Equal(mt), "matrix modified")
}

// Ensure the mirrored retry is logged.
func TestDecodeLog(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	d := &secqr.Decoder{Log: log}
	_, err := d.Decode(hello(t).Transpose(), &key)
	require.NoError(t, err)
	require.NotNil(t, hook.LastEntry())
	require.Equal(t, "qr: read mirrored code", hook.LastEntry().Message)
	require.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)
}
