// Copyright 2025 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package secqr

import (
	"errors"
	"io"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/unixdj/secqr/coding"
)

// A Decoder decodes keyed QR codes.  A Decoder holds no state between
// calls and may be used by several goroutines at once.
type Decoder struct {
	// Log receives debug entries about mirrored retries.
	// If nil, nothing is logged.
	Log logrus.FieldLogger
}

var nopLog = &logrus.Logger{
	Out:       io.Discard,
	Formatter: new(logrus.TextFormatter),
	Hooks:     make(logrus.LevelHooks),
	Level:     logrus.PanicLevel,
}

func (d *Decoder) log() logrus.FieldLogger {
	if d == nil || d.Log == nil {
		return nopLog
	}
	return d.Log
}

// Decode decodes the code in m with key k using a zero Decoder.
func Decode(m *BitMatrix, k *Key) (*Result, error) {
	return (*Decoder)(nil).Decode(m, k)
}

// Decode decodes the code in m with key k.
func (d *Decoder) Decode(m *BitMatrix, k *Key) (*Result, error) {
	return d.DecodePoints(m, k, nil)
}

// DecodePoints decodes the code in m with key k.  points are the
// detector points the code was sampled from; they are returned in
// Result.Points.
//
// If the code cannot be read, it is read again with rows and columns
// swapped, as a mirrored code.  The second reading is attempted only
// if its version and format information are readable.  If it also
// fails, the error of the first reading is returned.  If it succeeds,
// Result.Mirrored is set and the first and third of three or more
// points are swapped.
//
// Errors are a FormatError or a ChecksumError, or ErrKey if k is nil.
func (d *Decoder) DecodePoints(m *BitMatrix, k *Key, points []Point) (*Result, error) {
	if k == nil {
		return nil, ErrKey
	}
	p, err := coding.NewParser(m)
	if err != nil {
		return nil, err
	}
	res, err := decode(p, k)
	if err == nil {
		res.Points = slices.Clone(points)
		return res, nil
	}
	var fe FormatError
	var ce ChecksumError
	if !errors.As(err, &fe) && !errors.As(err, &ce) {
		return nil, err
	}

	orig := err
	log := d.log().WithError(orig)
	mp := p.WithMaskReset().Transposed()
	if _, err := mp.Version(); err != nil {
		log.WithField("mirrored", err).Debug("qr: mirrored version unreadable")
		return nil, orig
	}
	if _, err := mp.FormatInfo(); err != nil {
		log.WithField("mirrored", err).Debug("qr: mirrored format unreadable")
		return nil, orig
	}
	res, err = decode(mp, k)
	if err != nil {
		log.WithField("mirrored", err).Debug("qr: mirrored reading failed")
		return nil, orig
	}
	log.Debug("qr: read mirrored code")
	res.Mirrored = true
	res.Points = slices.Clone(points)
	if len(res.Points) >= 3 {
		res.Points[0], res.Points[2] = res.Points[2], res.Points[0]
	}
	return res, nil
}

// decode runs the whole pipeline on one reading of a code.
func decode(p *coding.Parser, k *Key) (*Result, error) {
	v, err := p.Version()
	if err != nil {
		return nil, err
	}
	fi, err := p.FormatInfo()
	if err != nil {
		return nil, err
	}
	raw, err := p.Codewords(k)
	if err != nil {
		return nil, err
	}
	blocks, err := coding.SplitBlocks(raw, v, fi.Level)
	if err != nil {
		return nil, err
	}
	data, nerr, err := coding.CorrectBlocks(blocks)
	if err != nil {
		return nil, err
	}
	pl, err := coding.DecodeSegments(data, v)
	if err != nil {
		return nil, err
	}
	return &Result{
		Text:                 pl.Text,
		Bytes:                data,
		ByteSegments:         pl.ByteSegments,
		Version:              v,
		Level:                fi.Level,
		Mask:                 fi.Mask,
		StructuredAppend:     pl.StructuredAppend,
		ECI:                  pl.ECI,
		ApplicationIndicator: pl.ApplicationIndicator,
		SymbologyIdentifier:  pl.SymbologyIdentifier(),
		ErrorsCorrected:      nerr,
	}, nil
}
