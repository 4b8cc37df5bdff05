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

// option provides an interface to do work on Map while it is being created.
type option[K comparable, V any] interface {
	apply(m *Map[K, V])
}

type hasherOption[K comparable, V any] struct {
	hasher Hasher[K]
}

func (op hasherOption[K, V]) apply(m *Map[K, V]) {
	m.hasher = op.hasher
}

// WithHasher is an option to specify the hash strategy to use for a
// Map[K,V] in place of the seeded maphash default.
func WithHasher[K comparable, V any](hasher Hasher[K]) option[K, V] {
	return hasherOption[K, V]{hasher}
}

type maxLoadFactorOption[K comparable, V any] struct {
	f float64
}

func (op maxLoadFactorOption[K, V]) apply(m *Map[K, V]) {
	if !(op.f > 0) {
		panic("hashtable: max load factor must be positive")
	}
	m.maxLoad = op.f
}

// WithMaxLoadFactor is an option to specify the load factor threshold at or
// above which an insertion grows the bucket array. The default is 1.0.
// Construction panics if f is not positive.
func WithMaxLoadFactor[K comparable, V any](f float64) option[K, V] {
	return maxLoadFactorOption[K, V]{f}
}
