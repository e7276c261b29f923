// Copyright 2025 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package secqr_test

import (
	"fmt"

	"github.com/unixdj/secqr"
	"github.com/unixdj/secqr/internal/qrgen"
)

func Example() {
	k := secqr.KeyFromString("example key")
	m, err := qrgen.Encode(1, secqr.M, 0, &k, qrgen.Alpha("HELLO"))
	if err != nil {
		panic(err)
	}
	res, err := secqr.Decode(m, &k)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(res.Text, res.Version, res.Level)
	// Output: HELLO 1 M
}
