// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !go1.22

package hashmap

import (
	"golang.org/x/exp/rand"
)

func rand64() uint64 {
	return rand.Uint64()
}
