// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package secqr

import (
	"bufio"
	"errors"
	"image"
	"image/color"
	"io"
	"strconv"
)

var errPBM = errors.New("qr: invalid PBM image")

func init() {
	image.RegisterFormat("pbm", "P1", decodePBM, decodePBMConfig)
	image.RegisterFormat("pbm", "P4", decodePBM, decodePBMConfig)
}

// WritePBM writes a Portable Bit Map image of m to w, scale pixels
// per module with a quiet zone of border modules, for use with
// netpbm.
func WritePBM(w io.Writer, m *BitMatrix, scale, border int) error {
	if scale < 1 || border < 0 {
		return errors.New("qr: invalid scale or border")
	}
	b := bufio.NewWriter(w)
	siz := m.Size()
	length := scale * (siz + border*2)
	ls := strconv.Itoa(length)
	if _, err := b.WriteString("P4\n" + ls + " " + ls + "\n"); err != nil {
		return err
	}
	row := make([]byte, (length+7)/8)
	for y := -border; y < siz+border; y++ {
		clear(row)
		for x := 0; x < siz; x++ {
			if !m.Black(x, y) {
				continue
			}
			for i := (x + border) * scale; i < (x+border+1)*scale; i++ {
				row[i>>3] |= 0x80 >> (i & 7)
			}
		}
		for i := 0; i < scale; i++ {
			if _, err := b.Write(row); err != nil {
				return err
			}
		}
	}
	return b.Flush()
}

type pbmReader struct {
	*bufio.Reader
}

// token returns the next header field, skipping white space and
// comments.
func (r pbmReader) token() (string, error) {
	var tok []byte
	for {
		c, err := r.ReadByte()
		if err != nil {
			if err == io.EOF && len(tok) != 0 {
				return string(tok), nil
			}
			return "", err
		}
		switch {
		case c == '#':
			if _, err := r.ReadString('\n'); err != nil {
				return "", err
			}
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' ||
			c == '\v' || c == '\f':
			if len(tok) != 0 {
				return string(tok), nil
			}
		default:
			tok = append(tok, c)
		}
	}
}

func (r pbmReader) header() (magic string, w, h int, err error) {
	if magic, err = r.token(); err != nil {
		return
	}
	if magic != "P1" && magic != "P4" {
		return "", 0, 0, errPBM
	}
	var ws, hs string
	if ws, err = r.token(); err != nil {
		return
	}
	if hs, err = r.token(); err != nil {
		return
	}
	w, err1 := strconv.Atoi(ws)
	h, err2 := strconv.Atoi(hs)
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 || w > 1<<14 || h > 1<<14 {
		return "", 0, 0, errPBM
	}
	return magic, w, h, nil
}

func decodePBMConfig(r io.Reader) (image.Config, error) {
	_, w, h, err := pbmReader{bufio.NewReader(r)}.header()
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{ColorModel: color.GrayModel, Width: w, Height: h}, nil
}

// decodePBM reads a plain (P1) or raw (P4) PBM image.
func decodePBM(rd io.Reader) (image.Image, error) {
	r := pbmReader{bufio.NewReader(rd)}
	magic, w, h, err := r.header()
	if err != nil {
		return nil, err
	}
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	if magic == "P4" {
		row := make([]byte, (w+7)/8)
		for y := 0; y < h; y++ {
			if _, err := io.ReadFull(r, row); err != nil {
				return nil, err
			}
			for x := 0; x < w; x++ {
				if row[x>>3]&(0x80>>(x&7)) != 0 {
					img.Pix[y*img.Stride+x] = 0
				}
			}
		}
		return img, nil
	}
	for i := 0; i < w*h; {
		c, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		switch c {
		case '1':
			img.Pix[i/w*img.Stride+i%w] = 0
			fallthrough
		case '0':
			i++
		case ' ', '\t', '\n', '\r', '\v', '\f':
		case '#':
			if _, err := r.ReadString('\n'); err != nil {
				return nil, err
			}
		default:
			return nil, errPBM
		}
	}
	return img, nil
}

// ReadPBM reads a PBM image and returns the code in it.
func ReadPBM(r io.Reader) (*BitMatrix, error) {
	img, err := decodePBM(r)
	if err != nil {
		return nil, err
	}
	return FromImage(img)
}
