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

package hashtable

// endBucket is the bucket index of the end sentinel. The sentinel is
// deliberately independent of the occupied-bucket bounds so that it stays
// stable as entries at the edges of the table come and go.
const endBucket = -1

// Iterator is a forward cursor over the entries of a Map: a (bucket,
// position-within-chain) pair, or the end sentinel. Iterators are comparable
// with ==; two iterators are equal only if they view the same Map and
// reference the same position, so iterators over different tables never
// compare equal.
//
// An Iterator is a non-owning view. Any mutation of the Map other than
// in-place value updates invalidates outstanding iterators, except for the
// replacement cursor Erase returns; advancing or dereferencing an
// invalidated iterator is undefined.
type Iterator[K comparable, V any] struct {
	m      *Map[K, V]
	bucket int
	pos    int
}

// Begin returns an iterator at the first entry: position 0 of the first
// occupied bucket, or End if the map is empty.
func (m *Map[K, V]) Begin() Iterator[K, V] {
	if b := m.occupied.Next(-1); b != -1 {
		return Iterator[K, V]{m: m, bucket: b, pos: 0}
	}
	return m.End()
}

// End returns the end sentinel, the position one past the last entry.
func (m *Map[K, V]) End() Iterator[K, V] {
	return Iterator[K, V]{m: m, bucket: endBucket, pos: 0}
}

// Next returns an iterator advanced by one entry: the next position in the
// current chain if there is one, otherwise position 0 of the next occupied
// bucket, otherwise End. Next panics when called on an iterator that does
// not reference a live entry.
func (it Iterator[K, V]) Next() Iterator[K, V] {
	it.mustBeLive()
	if it.pos+1 < len(it.m.buckets[it.bucket]) {
		it.pos++
		return it
	}
	if b := it.m.occupied.Next(it.bucket); b != -1 {
		return Iterator[K, V]{m: it.m, bucket: b, pos: 0}
	}
	return it.m.End()
}

// Key returns the key of the referenced entry.
func (it Iterator[K, V]) Key() K {
	it.mustBeLive()
	return it.m.buckets[it.bucket][it.pos].key
}

// Value returns the value of the referenced entry.
func (it Iterator[K, V]) Value() V {
	it.mustBeLive()
	return it.m.buckets[it.bucket][it.pos].value
}

// SetValue updates the value of the referenced entry in place.
func (it Iterator[K, V]) SetValue(v V) {
	it.mustBeLive()
	it.m.buckets[it.bucket][it.pos].value = v
}

// Ptr returns a pointer to the value of the referenced entry. The pointer is
// valid until the next mutation of the map.
func (it Iterator[K, V]) Ptr() *V {
	it.mustBeLive()
	return &it.m.buckets[it.bucket][it.pos].value
}

func (it Iterator[K, V]) mustBeLive() {
	if it.m == nil || it.bucket < 0 || it.bucket >= len(it.m.buckets) ||
		it.pos < 0 || it.pos >= len(it.m.buckets[it.bucket]) {
		panic("hashtable: iterator does not reference a live entry")
	}
}
