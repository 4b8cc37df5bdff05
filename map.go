// Copyright 2025 The Hashtable Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package hashtable implements a generic hash table that maps unique keys to
// mutable values using separate chaining, similar to Go's builtin map type
// but with an explicit, iterator-based API.
//
// # Layout
//
// A Map's entries live in a bucket array whose length (the capacity) is
// always a power of two. Each bucket holds an independent chain of entries
// whose keys hash to that bucket under the current capacity. A collision
// simply appends to the chain; no probing or tombstones are involved.
//
// Alongside the bucket array the Map maintains an occupancy bitset with one
// bit per bucket, set iff the bucket's chain is non-empty. Iteration composes
// with the bitset to jump directly to the next occupied bucket instead of
// scanning every slot, which makes a full traversal O(occupied buckets +
// entries) rather than O(capacity). The bitset is rebuilt wholesale whenever
// the bucket array is rebuilt; it is never patched incrementally across a
// rehash.
//
// # Growth
//
// Insertions consult the load factor (entries / capacity) first. If placing
// one more entry would push the load factor to or beyond the configured
// maximum (default 1.0), the capacity is doubled and every entry is relocated
// into a freshly built bucket array before the new entry is placed. The
// target bucket for the new entry is computed exactly once, against the final
// capacity. Capacity never shrinks.
//
// # Iterators
//
// An Iterator is a (bucket, position) cursor plus a dedicated end sentinel.
// Iterators are invalidated by any mutation of the table other than the
// replacement cursor returned by Erase; using an invalidated iterator is
// undefined except where Erase documents otherwise.
//
// A Map is NOT goroutine-safe.
package hashtable

import (
	"errors"
	"fmt"
	"iter"
	"math/bits"
	"strings"

	"github.com/yourbasic/bit"
)

const (
	// invariants gates the expensive full-table verification performed after
	// every mutation. Meant for debugging only.
	invariants = false

	// minCapacity is the smallest non-zero bucket array length. A Map
	// constructed with zero capacity allocates no buckets until the first
	// insertion grows it to at least this many.
	minCapacity = 8

	defaultMaxLoadFactor = 1.0
)

// ErrKeyNotFound is returned by At when the key is absent from the table.
var ErrKeyNotFound = errors.New("hashtable: key not found")

// ErrBucketRange is returned by BucketSize when the bucket index is not less
// than the current bucket count.
var ErrBucketRange = errors.New("hashtable: bucket index out of range")

// Slot holds a key and value. The key is immutable once stored; the value
// may be updated in place through Put, Ref, At, or Iterator.SetValue.
type Slot[K comparable, V any] struct {
	key   K
	value V
}

// Pair is a key-value pair, used for bulk insertion from literal lists.
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// Map is an unordered associative container mapping unique keys to values,
// implemented as a chained hash table with automatic growth. The zero value
// for a Map is not usable; construct one with New or Collect.
//
// A Map is NOT goroutine-safe.
type Map[K comparable, V any] struct {
	// The hash strategy applied to keys of type K. Defaults to the runtime's
	// maphash with a per-table random seed.
	hasher Hasher[K]
	// buckets is the bucket array; len(buckets) is the capacity and is
	// always zero or a power of two.
	buckets [][]Slot[K, V]
	// occupied has bit i set iff buckets[i] is non-empty. It is the only
	// authority on occupancy: first/last occupied buckets are derived from
	// it on demand rather than tracked separately.
	occupied *bit.Set
	// The number of entries across all chains.
	used int
	// The load factor threshold at or above which an insertion grows the
	// bucket array.
	maxLoad float64
}

// New constructs a new Map with the specified initial capacity, rounded up
// to a power of two. If initialCapacity is 0 the map starts with no buckets
// and allocates on the first insertion.
func New[K comparable, V any](initialCapacity int, options ...option[K, V]) *Map[K, V] {
	m := &Map[K, V]{
		hasher:   defaultHasher[K](),
		occupied: bit.New(),
		maxLoad:  defaultMaxLoadFactor,
	}
	for _, op := range options {
		op.apply(m)
	}
	if initialCapacity > 0 {
		m.buckets = make([][]Slot[K, V], nextPow2(max(initialCapacity, minCapacity)))
	}
	return m
}

// Collect constructs a new Map from an iterator sequence of key-value
// pairs. Keys already collected are skipped, consistent with Insert.
func Collect[K comparable, V any](seq iter.Seq2[K, V], options ...option[K, V]) *Map[K, V] {
	m := New[K, V](0, options...)
	m.InsertSeq(seq)
	return m
}

// Len returns the number of entries in the map.
func (m *Map[K, V]) Len() int {
	return m.used
}

// Empty reports whether the map holds no entries.
func (m *Map[K, V]) Empty() bool {
	return m.used == 0
}

// BucketCount returns the current capacity: the length of the bucket array,
// which is the denominator of the load factor.
func (m *Map[K, V]) BucketCount() int {
	return len(m.buckets)
}

// OccupiedBuckets returns the number of buckets with a non-empty chain.
func (m *Map[K, V]) OccupiedBuckets() int {
	return m.occupied.Size()
}

// BucketSize returns the length of the chain in bucket i. It returns an
// error wrapping ErrBucketRange if i is not in [0, BucketCount()).
func (m *Map[K, V]) BucketSize(i int) (int, error) {
	if i < 0 || i >= len(m.buckets) {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", ErrBucketRange, i, len(m.buckets))
	}
	return len(m.buckets[i]), nil
}

// Bucket returns the index of the bucket the key maps to under the current
// capacity. The result is only stable until the next rehash. If the map has
// no buckets yet, Bucket returns 0.
func (m *Map[K, V]) Bucket(key K) int {
	if len(m.buckets) == 0 {
		return 0
	}
	return m.bucketIndex(key)
}

// LoadFactor returns the current entries-per-bucket ratio, or 0 for a map
// with no buckets.
func (m *Map[K, V]) LoadFactor() float64 {
	if len(m.buckets) == 0 {
		return 0
	}
	return float64(m.used) / float64(len(m.buckets))
}

// MaxLoadFactor returns the load factor threshold at or above which an
// insertion triggers growth.
func (m *Map[K, V]) MaxLoadFactor() float64 {
	return m.maxLoad
}

// SetMaxLoadFactor changes the growth threshold. Lowering it below the
// current load factor rehashes immediately so that the new threshold holds.
// SetMaxLoadFactor panics if f is not positive.
func (m *Map[K, V]) SetMaxLoadFactor(f float64) {
	if !(f > 0) {
		panic("hashtable: max load factor must be positive")
	}
	m.maxLoad = f
	if m.used > 0 && m.LoadFactor() > f {
		m.Reserve(m.used)
	}
}

// Rehash grows the bucket array to hold at least n buckets, relocating every
// entry into its recomputed bucket. It is a no-op if n does not exceed the
// current capacity; capacity never shrinks. All iterators are invalidated.
func (m *Map[K, V]) Rehash(n int) {
	target := nextPow2(max(n, minCapacity))
	if target <= len(m.buckets) {
		return
	}
	m.rebuild(target)
}

// Reserve grows the bucket array so that n entries fit without exceeding the
// maximum load factor.
func (m *Map[K, V]) Reserve(n int) {
	if n <= 0 {
		return
	}
	m.Rehash(int(float64(n)/m.maxLoad) + 1)
}

// Put inserts an entry into the map, overwriting the value if an entry with
// the same key already exists.
func (m *Map[K, V]) Put(key K, value V) {
	if b, p, ok := m.findSlot(key); ok {
		m.buckets[b][p].value = value
		return
	}
	m.place(key, value)
}

// Ref returns a pointer to the value stored for key, inserting an entry with
// the zero value first if the key is absent. It is the analogue of the
// expression table[key] used as an assignable location. The pointer is valid
// until the next mutation of the map.
func (m *Map[K, V]) Ref(key K) *V {
	if b, p, ok := m.findSlot(key); ok {
		return &m.buckets[b][p].value
	}
	var zero V
	b, p := m.place(key, zero)
	return &m.buckets[b][p].value
}

// At returns a pointer to the value stored for key, or an error wrapping
// ErrKeyNotFound if the key is absent. Unlike Ref, At never inserts.
func (m *Map[K, V]) At(key K) (*V, error) {
	if b, p, ok := m.findSlot(key); ok {
		return &m.buckets[b][p].value, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrKeyNotFound, key)
}

// Get retrieves the value for key, returning ok=false if the key is not
// present.
func (m *Map[K, V]) Get(key K) (value V, ok bool) {
	if b, p, found := m.findSlot(key); found {
		return m.buckets[b][p].value, true
	}
	return value, false
}

// Insert adds an entry for key if none exists. It returns an iterator at the
// inserted or pre-existing entry and whether the insertion took place.
// Insert never overwrites: inserting an already-present key is a no-op that
// reports false.
func (m *Map[K, V]) Insert(key K, value V) (Iterator[K, V], bool) {
	if b, p, ok := m.findSlot(key); ok {
		return Iterator[K, V]{m: m, bucket: b, pos: p}, false
	}
	b, p := m.place(key, value)
	return Iterator[K, V]{m: m, bucket: b, pos: p}, true
}

// InsertPairs applies Insert pairwise to the given pairs and returns the
// number of entries actually inserted. Pairs whose key is already present,
// including duplicates within pairs itself, are silently skipped.
func (m *Map[K, V]) InsertPairs(pairs ...Pair[K, V]) int {
	var n int
	for _, p := range pairs {
		if _, ok := m.Insert(p.Key, p.Value); ok {
			n++
		}
	}
	return n
}

// InsertSeq applies Insert pairwise to the sequence and returns the number
// of entries actually inserted.
func (m *Map[K, V]) InsertSeq(seq iter.Seq2[K, V]) int {
	var n int
	for k, v := range seq {
		if _, ok := m.Insert(k, v); ok {
			n++
		}
	}
	return n
}

// Find returns an iterator at the entry for key, or End if the key is
// absent.
func (m *Map[K, V]) Find(key K) Iterator[K, V] {
	if b, p, ok := m.findSlot(key); ok {
		return Iterator[K, V]{m: m, bucket: b, pos: p}
	}
	return m.End()
}

// Contains reports whether an entry for key exists.
func (m *Map[K, V]) Contains(key K) bool {
	_, _, ok := m.findSlot(key)
	return ok
}

// Count returns the number of entries for key: 1 if present, 0 otherwise,
// since keys are unique.
func (m *Map[K, V]) Count(key K) int {
	if m.Contains(key) {
		return 1
	}
	return 0
}

// Erase removes the entry the iterator references and returns an iterator at
// the next live entry, or End if none remains. Within the erased entry's
// chain the successor keeps its position; otherwise the cursor jumps to the
// next occupied bucket. Erase panics if the iterator does not reference a
// live entry of this map.
func (m *Map[K, V]) Erase(it Iterator[K, V]) Iterator[K, V] {
	if it.m != m || it.bucket < 0 || it.bucket >= len(m.buckets) ||
		it.pos < 0 || it.pos >= len(m.buckets[it.bucket]) {
		panic("hashtable: Erase on an iterator that does not reference a live entry")
	}

	chain := m.buckets[it.bucket]
	m.buckets[it.bucket] = append(chain[:it.pos], chain[it.pos+1:]...)
	m.used--
	if len(m.buckets[it.bucket]) == 0 {
		m.occupied.Delete(it.bucket)
	}
	m.checkInvariants()

	// The entries after the erased position shifted left by one, so the old
	// position now names the former successor.
	if it.pos < len(m.buckets[it.bucket]) {
		return Iterator[K, V]{m: m, bucket: it.bucket, pos: it.pos}
	}
	if b := m.occupied.Next(it.bucket); b != -1 {
		return Iterator[K, V]{m: m, bucket: b, pos: 0}
	}
	return m.End()
}

// EraseKey removes the entry for key if present, returning the number of
// entries removed (0 or 1).
func (m *Map[K, V]) EraseKey(key K) int {
	it := m.Find(key)
	if it == m.End() {
		return 0
	}
	m.Erase(it)
	return 1
}

// EraseRange removes the entries in [first, last) and returns the position
// after the last erased entry. Erasing shifts positions within a chain, so
// the stop entry is identified by its key rather than by coordinates that
// may no longer be current once earlier entries have been removed.
func (m *Map[K, V]) EraseRange(first, last Iterator[K, V]) Iterator[K, V] {
	if first.m != m || last.m != m {
		panic("hashtable: EraseRange on iterators from a different table")
	}
	if last == m.End() {
		for first != m.End() {
			first = m.Erase(first)
		}
		return first
	}
	stop := last.Key()
	for first != m.End() && first.Key() != stop {
		first = m.Erase(first)
	}
	return first
}

// Clear removes all entries, retaining the current capacity.
func (m *Map[K, V]) Clear() {
	m.occupied.Visit(func(i int) bool {
		m.buckets[i] = nil
		return false
	})
	m.occupied = bit.New()
	m.used = 0
	m.checkInvariants()
}

// Clone returns a deep copy of the map sharing the hash strategy and maximum
// load factor. The copy is built in full before being returned; the receiver
// is not modified.
func (m *Map[K, V]) Clone() *Map[K, V] {
	c := &Map[K, V]{
		hasher:   m.hasher,
		buckets:  make([][]Slot[K, V], len(m.buckets)),
		occupied: bit.New(),
		used:     m.used,
		maxLoad:  m.maxLoad,
	}
	m.occupied.Visit(func(i int) bool {
		c.buckets[i] = append([]Slot[K, V](nil), m.buckets[i]...)
		c.occupied.Add(i)
		return false
	})
	c.checkInvariants()
	return c
}

// All calls yield sequentially for each key and value present in the map,
// skipping empty buckets via the occupancy bitset. If yield returns false,
// iteration stops. All is usable with range-over-func:
//
//	for k, v := range m.All {
//		fmt.Println(k, v)
//	}
//
// The map must not be mutated during iteration.
func (m *Map[K, V]) All(yield func(key K, value V) bool) {
	// Snapshot the bucket array and occupancy set so that iteration remains
	// memory-safe if the map is rehashed mid-iteration, though mutations are
	// not guaranteed to be visible.
	buckets := m.buckets
	occupied := m.occupied
	for b := occupied.Next(-1); b != -1; b = occupied.Next(b) {
		for i := range buckets[b] {
			if !yield(buckets[b][i].key, buckets[b][i].value) {
				return
			}
		}
	}
}

// Keys returns an iterator over the keys in unspecified order.
func (m *Map[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		m.All(func(k K, _ V) bool {
			return yield(k)
		})
	}
}

// Values returns an iterator over the values in unspecified order.
func (m *Map[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		m.All(func(_ K, v V) bool {
			return yield(v)
		})
	}
}

// Equal reports whether two maps hold the same set of keys with equal
// values. The comparison is order-independent.
func Equal[K, V comparable](a, b *Map[K, V]) bool {
	return EqualFunc(a, b, func(x, y V) bool { return x == y })
}

// EqualFunc is like Equal but compares values with eq, allowing
// non-comparable value types.
func EqualFunc[K comparable, V any](a, b *Map[K, V], eq func(V, V) bool) bool {
	if a.Len() != b.Len() {
		return false
	}
	equal := true
	a.All(func(k K, v V) bool {
		if bv, ok := b.Get(k); !ok || !eq(v, bv) {
			equal = false
			return false
		}
		return true
	})
	return equal
}

// bucketIndex returns the bucket for key under the current capacity. The
// capacity must be non-zero.
func (m *Map[K, V]) bucketIndex(key K) int {
	return int(m.hasher.Hash(key) & uint64(len(m.buckets)-1))
}

// findSlot locates the bucket and chain position holding key's entry.
func (m *Map[K, V]) findSlot(key K) (bucket, pos int, ok bool) {
	if len(m.buckets) == 0 {
		return -1, -1, false
	}
	b := m.bucketIndex(key)
	for i := range m.buckets[b] {
		if m.buckets[b][i].key == key {
			return b, i, true
		}
	}
	return -1, -1, false
}

// place appends a new entry known not to be in the table, growing first if
// needed. The target bucket is computed exactly once, after any growth, so
// the index is always valid under the final capacity.
func (m *Map[K, V]) place(key K, value V) (bucket, pos int) {
	m.ensureRoom()
	b := m.bucketIndex(key)
	m.buckets[b] = append(m.buckets[b], Slot[K, V]{key: key, value: value})
	if len(m.buckets[b]) == 1 {
		m.occupied.Add(b)
	}
	m.used++
	m.checkInvariants()
	return b, len(m.buckets[b]) - 1
}

// ensureRoom grows the bucket array if placing one more entry would push the
// load factor to or beyond the maximum.
func (m *Map[K, V]) ensureRoom() {
	if len(m.buckets) == 0 {
		m.rebuild(minCapacity)
	}
	if float64(m.used+1) < m.maxLoad*float64(len(m.buckets)) {
		return
	}
	target := 2 * len(m.buckets)
	for float64(m.used+1) >= m.maxLoad*float64(target) {
		target *= 2
	}
	m.rebuild(target)
}

// rebuild allocates a bucket array of exactly newCapacity (a power of two),
// relocates every entry into its recomputed chain, and rebuilds the
// occupancy set from scratch. The new state is constructed in full before
// being swapped in, so a fault during relocation leaves the old state
// observable rather than a half-migrated table.
func (m *Map[K, V]) rebuild(newCapacity int) {
	buckets := make([][]Slot[K, V], newCapacity)
	occupied := bit.New()
	mask := uint64(newCapacity - 1)
	m.occupied.Visit(func(i int) bool {
		for _, s := range m.buckets[i] {
			j := int(m.hasher.Hash(s.key) & mask)
			buckets[j] = append(buckets[j], s)
			occupied.Add(j)
		}
		return false
	})
	m.buckets, m.occupied = buckets, occupied
	m.checkInvariants()
}

// checkInvariants verifies the bookkeeping after a mutation. Compiled away
// unless the invariants constant is enabled; tests exercise the same checks
// through their own verification helper.
func (m *Map[K, V]) checkInvariants() {
	if invariants {
		if c := len(m.buckets); c != 0 && c&(c-1) != 0 {
			panic(fmt.Sprintf("invariant failed: capacity %d is not a power of two\n%s", c, m.debugString()))
		}
		var used int
		for i := range m.buckets {
			n := len(m.buckets[i])
			used += n
			if occ := m.occupied.Contains(i); occ != (n > 0) {
				panic(fmt.Sprintf("invariant failed: bucket %d len=%d but occupied=%t\n%s", i, n, occ, m.debugString()))
			}
			for _, s := range m.buckets[i] {
				if j := m.bucketIndex(s.key); j != i {
					panic(fmt.Sprintf("invariant failed: key %v stored in bucket %d, hashes to %d\n%s", s.key, i, j, m.debugString()))
				}
			}
		}
		if used != m.used {
			panic(fmt.Sprintf("invariant failed: found %d entries, but used count is %d\n%s", used, m.used, m.debugString()))
		}
	}
}

func (m *Map[K, V]) debugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "capacity=%d  used=%d  max-load-factor=%.2f\n", len(m.buckets), m.used, m.maxLoad)
	for i := range m.buckets {
		if len(m.buckets[i]) == 0 {
			continue
		}
		fmt.Fprintf(&buf, "  %4d:", i)
		for _, s := range m.buckets[i] {
			fmt.Fprintf(&buf, " %v=%v", s.key, s.value)
		}
		fmt.Fprintf(&buf, "\n")
	}
	return buf.String()
}

// nextPow2 returns the smallest power of two >= n, for n >= 1.
func nextPow2(n int) int {
	return 1 << bits.Len(uint(n-1))
}
