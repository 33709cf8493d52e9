// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hashmap provides the Map type, a hash table using open
// addressing with Robin-Hood linear probing and backward-shift
// deletion. Users provide an equal and a hash function for the key
// type.
//
// The following requirements are the user's responsibility to follow:
//   - equal(a, b) => hash(seed, a) == hash(seed, b)
//   - equal(a, a) must be true for all values of a. Be careful around NaN
//     float values. Go's built-in `map` has special cases for handling
//     this, but `Map` does not.
//   - If a key in a `Map` contains references -- such as pointers, maps,
//     or slices -- modifying the referenced data in a way that affects
//     the result of the equal or hash functions will result in undefined
//     behavior.
//   - For good performance hash functions should return uniformly
//     distributed data across the entire 64-bits of the value.
package hashmap

// This file contains the hash table core. The data is arranged into a
// single contiguous array of slots, sized to a power of two so the
// starting position of a key is hash & (len(slots)-1). A slot is
// either empty or holds one entry together with its probe distance:
// how far the entry sits from its starting position.
//
// On collision, insertion walks forward through the array. Whenever
// the entry being carried has probed further than the slot's current
// occupant, the two are swapped and the displaced occupant continues
// the walk (Robin-Hood probing: take from entries close to home, give
// to entries far from it). This keeps probe distances close together,
// which is what lets lookups stop early: once we reach a slot whose
// occupant is closer to home than the key we're looking for would be,
// the key cannot be stored any further along.
//
// Deletion shifts the entries following the vacated slot back by one
// until it finds an empty slot or an entry already at its starting
// position. There are no tombstones, so probe distances do not creep
// up over many delete/insert cycles.
//
// When the table passes 7/8 load it is rehashed into an array of
// twice the size. The capacity never shrinks on its own; see
// ShrinkToFit.

import (
	"errors"
	"math"
)

const (
	// minCapacity is the smallest slot array ever allocated.
	minCapacity = 8

	// Maximum load is loadFactorNum/loadFactorDen of capacity,
	// kept as a fraction to allow integer math.
	loadFactorNum = 7
	loadFactorDen = 8

	// maxCapacity is the largest power-of-two capacity representable
	// in an int.
	maxCapacity = math.MaxInt>>1 + 1

	// flags
	hashWriting = 4 // a goroutine is writing to the map
)

// ErrInvalidCapacity is returned by NewCap when the requested capacity
// is zero, negative, or too large to round up to a power of two.
var ErrInvalidCapacity = errors.New("hashmap: invalid capacity")

// Map implements a hashmap
type Map[K, E any] struct {
	count int // # live slots == size of map
	// Only the first 8 bits are used.
	flags uint32

	// gen counts structural changes: new keys, deletions, rehashes,
	// Clear. Iterators snapshot it to detect invalidation.
	gen uint64

	// slots is the backing array. Its length is always a power of
	// two. nil until the first insert when no capacity was requested.
	slots []slot[K, E]

	// growAt is the count above which the next insert rehashes,
	// i.e. len(slots) * loadFactorNum / loadFactorDen.
	growAt int

	seed uint64

	hash  func(seed uint64, key K) uint64
	equal func(K, K) bool
}

// slot is one cell of the backing array. dib ("distance from initial
// bucket") is the occupant's probe distance plus one; zero marks an
// empty slot, so the zero value of a slot array is all empty.
type slot[K, E any] struct {
	dib  uint64
	key  K
	elem E
}

// KeyElem contains a Key and Elem.
type KeyElem[K, E any] struct {
	Key  K
	Elem E
}

// New instantiates a new Map initialized with any KeyElems passed.
// The equal func must return true for two values of K that are equal
// and false otherwise. The hash func should return a uniformly
// distributed hash value and must incorporate the seed argument,
// which differs between Map instances. If equal(a, b) then
// hash(seed, a) == hash(seed, b). Stock hash functions for common key
// types are provided in this package, see [HashString].
func New[K, E any](
	equal func(a, b K) bool,
	hash func(seed uint64, key K) uint64,
	kes ...KeyElem[K, E]) *Map[K, E] {

	m := &Map[K, E]{seed: rand64(), hash: hash, equal: equal}
	if len(kes) != 0 {
		m.Reserve(len(kes))
		for _, ke := range kes {
			m.Set(ke.Key, ke.Elem)
		}
	}
	return m
}

// NewCap instantiates a new Map with a backing array of at least
// capacity slots, rounded up to the next power of two and never less
// than 8. See [New] for discussion of the equal and hash arguments.
// It returns ErrInvalidCapacity if capacity is not positive or cannot
// be rounded up.
func NewCap[K, E any](
	capacity int,
	equal func(a, b K) bool,
	hash func(seed uint64, key K) uint64) (*Map[K, E], error) {

	if capacity <= 0 || capacity > maxCapacity {
		return nil, ErrInvalidCapacity
	}
	m := &Map[K, E]{seed: rand64(), hash: hash, equal: equal}
	m.adopt(make([]slot[K, E], nextPow2(capacity)))
	return m, nil
}

// nextPow2 returns the smallest valid capacity >= n.
func nextPow2(n int) int {
	c := minCapacity
	for c < n {
		c *= 2
	}
	return c
}

// capacityFor returns the smallest valid capacity whose growth
// watermark admits n entries, capped at maxCapacity. Dividing before
// multiplying is exact for power-of-two capacities and cannot
// overflow the way c*loadFactorNum can.
func capacityFor(n int) int {
	c := minCapacity
	for n > c/loadFactorDen*loadFactorNum {
		if c == maxCapacity {
			break
		}
		c *= 2
	}
	return c
}

// adopt installs slots as the backing array and recomputes the growth
// watermark.
func (m *Map[K, E]) adopt(slots []slot[K, E]) {
	if len(slots)&(len(slots)-1) != 0 {
		panic("capacity is not power of 2")
	}
	m.slots = slots
	m.growAt = len(slots) * loadFactorNum / loadFactorDen
}

// Len returns the count of occupied slots in m.
func (m *Map[K, E]) Len() int {
	if m == nil {
		return 0
	}
	return m.count
}

// Cap returns the number of slots in m's backing array.
func (m *Map[K, E]) Cap() int {
	if m == nil {
		return 0
	}
	return len(m.slots)
}

// Get returns the element associated with key and true if that key is
// in the Map, otherwise it returns the zero value of E and false.
func (m *Map[K, E]) Get(key K) (E, bool) {
	p := m.ref(key)
	if p == nil {
		var zeroE E
		return zeroE, false
	}
	return *p, true
}

// GetRef returns a pointer to the element associated with key, or nil
// if key is not in the Map. The pointer stays valid only until the
// next structural change to m (a new key, a deletion, Clear, Reserve,
// ShrinkToFit); using it after that is undefined behavior.
// Overwriting the element of an existing key does not move slots and
// keeps the pointer valid.
func (m *Map[K, E]) GetRef(key K) *E {
	return m.ref(key)
}

func (m *Map[K, E]) ref(key K) *E {
	if m == nil || m.count == 0 {
		return nil
	}
	// The stdlib map does a cheap runtime check of concurrent reads
	// and writes here. Unfortunately, if done here the race detector
	// will flag it.
	s := m.find(m.hash(m.seed, key), key)
	if s == nil {
		return nil
	}
	return &s.elem
}

// find walks the probe sequence of hash and returns the slot holding
// key, or nil if key is not present.
func (m *Map[K, E]) find(hash uint64, key K) *slot[K, E] {
	if m.count == 0 {
		return nil
	}
	mask := uint64(len(m.slots) - 1)
	i := hash & mask
	dib := uint64(1)
	for {
		s := &m.slots[i]
		if s.dib == 0 || s.dib < dib {
			// Empty slot, or an occupant closer to home than key
			// would be here: key cannot be stored further along.
			return nil
		}
		if s.dib == dib && m.equal(key, s.key) {
			return s
		}
		i = (i + 1) & mask
		dib++
	}
}

// Set associates key with elem in m. If the key was already present
// its previous element is returned together with true.
func (m *Map[K, E]) Set(key K, elem E) (prev E, replaced bool) {
	if m == nil {
		// We have to panic here rather than initialize an empty map
		// because we need the user to pass in hash and equal
		// functions
		panic("Set called on nil map")
	}
	if m.flags&hashWriting != 0 {
		panic("concurrent map writes")
	}
	hash := m.hash(m.seed, key)
	// Set hashWriting after calling m.hash, since m.hash may panic,
	// in which case we have not actually done a write.
	m.flags ^= hashWriting

	if m.slots == nil {
		m.adopt(make([]slot[K, E], minCapacity))
	}

	if s := m.find(hash, key); s != nil {
		// already have a mapping for key. Update it in place: a
		// pure overwrite never moves slots, grows the table, or
		// invalidates iterators.
		prev, replaced = s.elem, true
		s.key = key
		s.elem = elem
	} else {
		// Did not find a mapping for key. Grow only on a genuine
		// insertion.
		if m.count+1 > m.growAt {
			m.rehash(len(m.slots) * 2)
		}
		m.place(hash, key, elem)
		m.count++
		m.gen++
	}

	if m.flags&hashWriting == 0 {
		panic("concurrent map writes")
	}
	m.flags &^= hashWriting
	return prev, replaced
}

// Update applies fn to the element associated with key and stores the
// result. If key is not present fn receives the zero value of E and
// its result is inserted.
func (m *Map[K, E]) Update(key K, fn func(cur E) E) {
	if p := m.ref(key); p != nil {
		*p = fn(*p)
		return
	}
	var zeroE E
	m.Set(key, fn(zeroE))
}

// Delete removes key and its associated element from the map. If the
// key was present its element is returned together with true.
func (m *Map[K, E]) Delete(key K) (prev E, deleted bool) {
	if m == nil || m.count == 0 {
		return prev, false
	}
	if m.flags&hashWriting != 0 {
		panic("concurrent map writes")
	}

	hash := m.hash(m.seed, key)

	// Set hashWriting after calling m.hash, since m.hash may panic,
	// in which case we have not actually done a write (delete).
	m.flags ^= hashWriting

	mask := uint64(len(m.slots) - 1)
	i := hash & mask
	dib := uint64(1)
	for {
		s := &m.slots[i]
		if s.dib == 0 || s.dib < dib {
			break // not present
		}
		if s.dib == dib && m.equal(key, s.key) {
			prev, deleted = s.elem, true
			m.shiftBack(i)
			m.count--
			m.gen++
			// Reset the hash seed to make it more difficult for
			// attackers to repeatedly trigger hash collisions. See
			// go issue 25237.
			if m.count == 0 {
				m.seed = rand64()
			}
			break
		}
		i = (i + 1) & mask
		dib++
	}

	if m.flags&hashWriting == 0 {
		panic("concurrent map writes")
	}
	m.flags &^= hashWriting
	return prev, deleted
}

// shiftBack vacates slot i, then shifts each following occupant back
// one slot until it reaches an empty slot or an occupant already at
// its starting position. This is what keeps lookups free of tombstone
// checks.
func (m *Map[K, E]) shiftBack(i uint64) {
	mask := uint64(len(m.slots) - 1)
	for {
		next := (i + 1) & mask
		n := &m.slots[next]
		if n.dib <= 1 {
			// Clear key and elem in case they have pointers
			m.slots[i] = slot[K, E]{}
			return
		}
		m.slots[i] = *n
		m.slots[i].dib--
		i = next
	}
}

// Reserve grows the backing array so that n entries can be held
// without rehashing. It never shrinks the array.
func (m *Map[K, E]) Reserve(n int) {
	if m == nil {
		panic("Reserve called on nil map")
	}
	target := capacityFor(n)
	if target <= len(m.slots) {
		return
	}
	if m.flags&hashWriting != 0 {
		panic("concurrent map writes")
	}
	m.flags ^= hashWriting
	m.rehash(target)
	if m.flags&hashWriting == 0 {
		panic("concurrent map writes")
	}
	m.flags &^= hashWriting
}

// ShrinkToFit rehashes into the smallest backing array whose growth
// watermark still admits the current count. It is never called
// automatically: deleting entries does not release slot memory.
func (m *Map[K, E]) ShrinkToFit() {
	if m == nil || m.slots == nil {
		return
	}
	target := capacityFor(m.count)
	if target >= len(m.slots) {
		return
	}
	if m.flags&hashWriting != 0 {
		panic("concurrent map writes")
	}
	m.flags ^= hashWriting
	m.rehash(target)
	if m.flags&hashWriting == 0 {
		panic("concurrent map writes")
	}
	m.flags &^= hashWriting
}

// rehash moves every occupant into a freshly allocated array of
// newCap slots. Probe distances are recomputed from scratch since the
// mask changed. The old array is only dropped once the new one has
// been allocated, so a failed allocation cannot tear the table.
func (m *Map[K, E]) rehash(newCap int) {
	old := m.slots
	m.adopt(make([]slot[K, E], newCap))
	for j := range old {
		if old[j].dib == 0 {
			continue
		}
		m.place(m.hash(m.seed, old[j].key), old[j].key, old[j].elem)
	}
	m.gen++
}

// place performs a Robin-Hood insertion of a key known to be absent.
func (m *Map[K, E]) place(hash uint64, key K, elem E) {
	mask := uint64(len(m.slots) - 1)
	i := hash & mask
	cur := slot[K, E]{dib: 1, key: key, elem: elem}
	for {
		s := &m.slots[i]
		if s.dib == 0 {
			*s = cur
			return
		}
		if s.dib < cur.dib {
			*s, cur = cur, *s
		}
		cur.dib++
		i = (i + 1) & mask
	}
}

// Clear deletes all keys from m. The backing array is kept at its
// current capacity so the Map can be refilled without reallocating.
func (m *Map[K, E]) Clear() {
	if m == nil || m.count == 0 {
		return
	}
	if m.flags&hashWriting != 0 {
		panic("concurrent map writes")
	}
	m.flags ^= hashWriting

	m.count = 0
	m.gen++
	m.seed = rand64()

	// zero out all slots so stale keys and elems don't retain memory
	for i := range m.slots {
		m.slots[i] = slot[K, E]{}
	}

	if m.flags&hashWriting == 0 {
		panic("concurrent map writes")
	}
	m.flags &^= hashWriting
}

// Iterator is instantiated by a call to Iter. It allows iterating
// over a Map.
type Iterator[K, E any] struct {
	key  K
	elem E
	m    *Map[K, E]
	gen  uint64
	i    int
}

// Iter instantiates an Iterator to explore the elements of the Map.
// Entries are produced in backing-array slot order, which is neither
// the insertion order nor stable across rehashes.
//
// The Iterator is only valid as long as m is not structurally changed:
// a new key, a deletion, Clear, Reserve or ShrinkToFit all relocate
// entries, and Next panics if any of them happened since the Iterator
// was created. Overwriting the element of an existing key keeps
// iterators valid.
func (m *Map[K, E]) Iter() *Iterator[K, E] {
	if m == nil {
		return &Iterator[K, E]{}
	}
	return &Iterator[K, E]{m: m, gen: m.gen}
}

// Key returns the key at the iterator's current position. This is
// only valid after a call to Next() that returns true.
func (it *Iterator[K, E]) Key() K {
	return it.key
}

// Elem returns the element at the iterator's current position. This
// is only valid after a call to Next() that returns true.
func (it *Iterator[K, E]) Elem() E {
	return it.elem
}

// Next moves the iterator to the next element. Next returns false
// when the iterator is complete.
func (it *Iterator[K, E]) Next() bool {
	m := it.m
	if m == nil {
		return false
	}
	if it.gen != m.gen {
		panic("map modified during iteration")
	}
	for it.i < len(m.slots) {
		s := &m.slots[it.i]
		it.i++
		if s.dib == 0 {
			continue
		}
		it.key = s.key
		it.elem = s.elem
		return true
	}
	// end of iteration
	var (
		zeroK K
		zeroE E
	)
	it.key = zeroK
	it.elem = zeroE
	return false
}
