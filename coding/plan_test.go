// Copyright 2025 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding_test

import (
	"testing"

	"github.com/unixdj/secqr/coding"
)

func TestPlanCells(t *testing.T) {
	for v := coding.MinVersion; v <= coding.MaxVersion; v++ {
		p, err := coding.PlanFor(v)
		if err != nil {
			t.Fatal(err)
		}
		cells := p.Cells()
		if want := v.TotalBytes()*8 + v.RemainderBits(); len(cells) != want {
			t.Errorf("version %v: %d data pixels, want %d", v, len(cells), want)
		}
		seen := make(map[coding.Cell]bool, len(cells))
		for _, c := range cells {
			if seen[c] || p.IsFunction(int(c.X), int(c.Y)) ||
				int(c.X) >= p.Size || int(c.Y) >= p.Size {
				t.Errorf("version %v: bad data pixel %v", v, c)
				break
			}
			seen[c] = true
		}
		fa, fb := coding.FormatCells(p.Size)
		for i := range fa {
			if !p.IsFunction(int(fa[i].X), int(fa[i].Y)) ||
				!p.IsFunction(int(fb[i].X), int(fb[i].Y)) {
				t.Errorf("version %v: format bit %d in data", v, i)
			}
		}
		if v >= 7 {
			va, vb := coding.VersionCells(p.Size)
			for i := range va {
				if !p.IsFunction(int(va[i].X), int(va[i].Y)) ||
					!p.IsFunction(int(vb[i].X), int(vb[i].Y)) {
					t.Errorf("version %v: version bit %d in data", v, i)
				}
			}
		}
	}
}

func TestPlanInvalid(t *testing.T) {
	for _, v := range []coding.Version{0, 41, -1} {
		if _, err := coding.PlanFor(v); err != coding.ErrVersion {
			t.Errorf("PlanFor(%v) = %v", v, err)
		}
	}
}

// The first codeword of every code occupies the bottom right corner.
func TestPlanOrder(t *testing.T) {
	p, _ := coding.PlanFor(1)
	want := []coding.Cell{{20, 20}, {19, 20}, {20, 19}, {19, 19}}
	for i, c := range want {
		if p.Cells()[i] != c {
			t.Errorf("cell %d = %v, want %v", i, p.Cells()[i], c)
		}
	}
}

func TestVersionForSize(t *testing.T) {
	for siz, want := range map[int]coding.Version{21: 1, 25: 2, 45: 7, 177: 40} {
		if v, err := coding.VersionForSize(siz); err != nil || v != want {
			t.Errorf("VersionForSize(%d) = %v, %v", siz, v, err)
		}
	}
	for _, siz := range []int{0, 17, 20, 22, 24, 181} {
		if _, err := coding.VersionForSize(siz); err == nil {
			t.Errorf("VersionForSize(%d) succeeded", siz)
		}
	}
}
