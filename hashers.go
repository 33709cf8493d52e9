// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hashmap

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"
)

// Stock hash and equal functions for common key types. All hashers
// mix the per-table seed so slot positions differ between Map
// instances.

// HashBytes hashes a byte-slice key.
func HashBytes(seed uint64, key []byte) uint64 {
	return xxh3.HashSeed(key, seed)
}

// HashString hashes a string key.
func HashString(seed uint64, key string) uint64 {
	return xxh3.HashStringSeed(key, seed)
}

// HashUint64 hashes an unsigned integer key.
func HashUint64(seed uint64, key uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], key)
	return xxh3.HashSeed(buf[:], seed)
}

// HashInt hashes an int key.
func HashInt(seed uint64, key int) uint64 {
	return HashUint64(seed, uint64(key))
}

// EqComparable is an equal function for any comparable key type.
func EqComparable[K comparable](a, b K) bool {
	return a == b
}
