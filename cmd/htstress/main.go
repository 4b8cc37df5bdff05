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

// htstress exercises the hash table with a random key/value workload and
// reports how the table behaves under load: growth, bucket occupancy, and
// chain lengths.
package main

import (
	"flag"
	"math/rand"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/phuslu/log"

	"github.com/shaurya0/hashtable"
)

func main() {
	n := flag.Int("n", 1<<20, "number of random insertions")
	capacity := flag.Int("capacity", 1<<10, "initial bucket capacity")
	maxLoad := flag.Float64("max-load-factor", 1.0, "load factor growth threshold")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random source seed")
	flag.Parse()

	l := log.Logger{
		Level:  log.InfoLevel,
		Writer: &log.IOWriter{Writer: os.Stderr},
	}

	l.Info().
		Str("n", humanize.Comma(int64(*n))).
		Int("capacity", *capacity).
		Float64("max_load_factor", *maxLoad).
		Int64("seed", *seed).
		Msg("starting random insert workload")

	rng := rand.New(rand.NewSource(*seed))
	m := hashtable.New[int, int](*capacity,
		hashtable.WithMaxLoadFactor[int, int](*maxLoad))

	start := time.Now()
	for i := 0; i < *n; i++ {
		*m.Ref(rng.Int()) = rng.Int()
	}
	elapsed := time.Since(start)

	maxChain := 0
	for i := 0; i < m.BucketCount(); i++ {
		if n, err := m.BucketSize(i); err == nil && n > maxChain {
			maxChain = n
		}
	}

	l.Info().
		Str("entries", humanize.Comma(int64(m.Len()))).
		Str("buckets", humanize.Comma(int64(m.BucketCount()))).
		Str("occupied", humanize.Comma(int64(m.OccupiedBuckets()))).
		Float64("load_factor", m.LoadFactor()).
		Int("max_chain", maxChain).
		Dur("elapsed", elapsed).
		Msg("workload complete")

	// A small scripted sequence covering the rest of the API surface.
	a := hashtable.New[int, int](0)
	b := hashtable.New[int, int](0)
	a.InsertPairs(hashtable.Pair[int, int]{Key: 1, Value: 1}, hashtable.Pair[int, int]{Key: 2, Value: 2})
	l.Info().
		Bool("equal_before", hashtable.Equal(a, b)).
		Msg("comparing fresh tables")

	*a.Ref(2) = 3
	b.Put(1, 1)
	b.Put(2, 3)
	l.Info().
		Bool("equal_after", hashtable.Equal(a, b)).
		Int("len", a.Len()).
		Msg("upsert applied")

	a.Clear()
	l.Info().
		Bool("empty", a.Empty()).
		Int("buckets", a.BucketCount()).
		Msg("cleared")
}
