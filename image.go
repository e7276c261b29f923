// Copyright 2025 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package secqr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"math"
	"math/bits"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/unixdj/secqr/coding"
)

// A bitImage is an image binarized to black and white, packed eight
// pixels per byte, most significant bit first.
type bitImage struct {
	w, h   int
	stride int
	bits   []byte
}

func (b *bitImage) get(x, y int) bool {
	return b.bits[y*b.stride+x>>3]&(0x80>>(x&7)) != 0
}

// binarize converts img to black and white, black being darker than
// the mean luminance.  Luminance is computed twice rather than kept.
func binarize(img image.Image) *bitImage {
	r := img.Bounds()
	w, h := r.Dx(), r.Dy()
	b := &bitImage{w: w, h: h, stride: (w + 7) >> 3}
	b.bits = make([]byte, b.stride*h)
	if w*h == 0 {
		return b
	}
	gray := func(x, y int) int {
		return int(color.GrayModel.Convert(img.At(r.Min.X+x, r.Min.Y+y)).(color.Gray).Y)
	}
	sum := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum += gray(x, y)
		}
	}
	mean := sum / (w * h)
	for y := 0; y < h; y++ {
		row := b.bits[y*b.stride:]
		for x := 0; x < w; x++ {
			if gray(x, y) < mean {
				row[x>>3] |= 0x80 >> (x & 7)
			}
		}
	}
	return b
}

// topLeft returns the first black pixel in row order.
func (b *bitImage) topLeft() (int, int, bool) {
	for i, v := range b.bits {
		if v != 0 {
			return i%b.stride*8 + bits.LeadingZeros8(v), i / b.stride, true
		}
	}
	return 0, 0, false
}

// bottomRight returns the last black pixel in row order.
func (b *bitImage) bottomRight() (int, int, bool) {
	for i := len(b.bits) - 1; i >= 0; i-- {
		if v := b.bits[i]; v != 0 {
			return i%b.stride*8 + 7 - bits.TrailingZeros8(v), i / b.stride, true
		}
	}
	return 0, 0, false
}

// moduleSize estimates the module size from the diagonal of the top
// left position box starting at (x, y): black, white, black, white,
// black spans 7 modules.
func (b *bitImage) moduleSize(x, y int) (float64, bool) {
	x0 := x
	black := true
	transitions := 0
	for ; x < b.w && y < b.h; x, y = x+1, y+1 {
		if black != b.get(x, y) {
			if transitions++; transitions == 5 {
				break
			}
			black = !black
		}
	}
	if x == b.w || y == b.h {
		return 0, false
	}
	return float64(x-x0) / 7, true
}

// FromImage returns the code in img, which must contain nothing but an
// upright, unrotated code and its quiet zone.  The module size is
// estimated from the top left position box and each module is sampled
// at its centre.  If no code is found, FromImage returns ErrNotFound.
func FromImage(img image.Image) (*BitMatrix, error) {
	b := binarize(img)
	left, top, ok := b.topLeft()
	if !ok {
		return nil, ErrNotFound
	}
	right, bottom, ok := b.bottomRight()
	if !ok {
		return nil, ErrNotFound
	}
	mod, ok := b.moduleSize(left, top)
	if !ok || left >= right || top >= bottom {
		return nil, ErrNotFound
	}
	if bottom-top != right-left {
		right = left + bottom - top
		if right >= b.w {
			return nil, ErrNotFound
		}
	}
	siz := int(math.Round(float64(right-left+1) / mod))
	if siz <= 0 || siz != int(math.Round(float64(bottom-top+1)/mod)) {
		return nil, ErrNotFound
	}
	if _, err := coding.VersionForSize(siz); err != nil {
		return nil, ErrNotFound
	}

	// Sample module centres, pulling back from the far edge if the
	// estimate overshoots by less than half a module.
	nudge := int(mod / 2)
	top += nudge
	left += nudge
	if over := left + int(float64(siz-1)*mod) - right; over > 0 {
		if over > nudge {
			return nil, ErrNotFound
		}
		left -= over
	}
	if over := top + int(float64(siz-1)*mod) - bottom; over > 0 {
		if over > nudge {
			return nil, ErrNotFound
		}
		top -= over
	}
	return coding.NewBitMatrix(siz, func(x, y int) bool {
		return b.get(left+int(float64(x)*mod), top+int(float64(y)*mod))
	}), nil
}

// MaxPixels is the largest image, in pixels, DecodeImage decodes.
const MaxPixels = 1 << 24

// ErrImageTooLarge is returned for images with too many pixels.
var ErrImageTooLarge = errors.New("qr: image too large")

// DecodeImage reads an image in any registered format from r and
// returns the code in it.  PNG, JPEG, GIF, BMP, TIFF and WebP are
// registered.  Images larger than MaxPixels are rejected.
func DecodeImage(r io.Reader) (*BitMatrix, error) {
	return DecodeImageLimit(r, MaxPixels)
}

// DecodeImageLimit is like DecodeImage, but rejects images with more
// than maxPixels pixels with ErrImageTooLarge.  The size is read from
// the image header before the image is decoded.
func DecodeImageLimit(r io.Reader, maxPixels int64) (*BitMatrix, error) {
	var head bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, &head))
	if err != nil {
		return nil, err
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}
	img, _, err := image.Decode(io.MultiReader(&head, r))
	if err != nil {
		return nil, err
	}
	return FromImage(img)
}
