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

import (
	"hash/maphash"

	"github.com/zeebo/xxh3"
)

// Hasher is the hash strategy a Map is generic over. Implementations must be
// deterministic for an unchanged key, free of side effects, and cheap. Keys
// that compare equal must hash equal. The full 64-bit result is reduced to a
// bucket index by the Map; a strategy with a narrower result type cannot
// satisfy this interface, so width mismatches are rejected at compile time.
type Hasher[K any] interface {
	Hash(key K) uint64
}

// defaultHasher returns the standard general-purpose strategy: the runtime's
// maphash over the key's memory representation, seeded per table.
func defaultHasher[K comparable]() Hasher[K] {
	return maphashHasher[K]{seed: maphash.MakeSeed()}
}

type maphashHasher[K comparable] struct {
	seed maphash.Seed
}

func (h maphashHasher[K]) Hash(key K) uint64 {
	return maphash.Comparable(h.seed, key)
}

// HasherXXH3 hashes string-like keys with XXH3. The zero value uses seed 0;
// set Seed to make hash values, and therefore bucket placement, reproducible
// across tables and processes.
type HasherXXH3[K ~string] struct {
	Seed uint64
}

// Hash hashes key to a 64-bit hash value.
func (h HasherXXH3[K]) Hash(key K) uint64 {
	return xxh3.HashStringSeed(string(key), h.Seed)
}
