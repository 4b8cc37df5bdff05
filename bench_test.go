package hashtable

import (
	"fmt"
	"strconv"
	"testing"
)

type benchKey interface {
	int64 | string
}

func genKeys[K benchKey](n int) []K {
	keys := make([]K, n)
	for i := range keys {
		switch p := any(&keys[i]).(type) {
		case *int64:
			*p = int64(i)
		case *string:
			*p = strconv.Itoa(i)
		}
	}
	return keys
}

func benchSizes[K benchKey](fn func(b *testing.B, keys []K)) func(b *testing.B) {
	return func(b *testing.B) {
		for _, n := range []int{16, 1024, 65536} {
			b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
				fn(b, genKeys[K](n))
			})
		}
	}
}

func benchmarkRuntimeMapGetHit[K benchKey](b *testing.B, keys []K) {
	m := make(map[K]K, len(keys))
	for _, k := range keys {
		m[k] = k
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m[keys[i%len(keys)]]
	}
}

func benchmarkChainMapGetHit[K benchKey](b *testing.B, keys []K) {
	m := New[K, K](len(keys))
	for _, k := range keys {
		m.Put(k, k)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = m.Get(keys[i%len(keys)])
	}
}

func BenchmarkMapGetHit(b *testing.B) {
	b.Run("impl=runtimeMap", func(b *testing.B) {
		b.Run("t=Int64", benchSizes(benchmarkRuntimeMapGetHit[int64]))
		b.Run("t=String", benchSizes(benchmarkRuntimeMapGetHit[string]))
	})
	b.Run("impl=chainMap", func(b *testing.B) {
		b.Run("t=Int64", benchSizes(benchmarkChainMapGetHit[int64]))
		b.Run("t=String", benchSizes(benchmarkChainMapGetHit[string]))
	})
}

func benchmarkRuntimeMapPutGrow[K benchKey](b *testing.B, keys []K) {
	for i := 0; i < b.N; i++ {
		m := make(map[K]K)
		for _, k := range keys {
			m[k] = k
		}
		if len(m) != len(keys) {
			b.Fatal("unexpected length")
		}
	}
}

func benchmarkChainMapPutGrow[K benchKey](b *testing.B, keys []K) {
	for i := 0; i < b.N; i++ {
		m := New[K, K](0)
		for _, k := range keys {
			m.Put(k, k)
		}
		if m.Len() != len(keys) {
			b.Fatal("unexpected length")
		}
	}
}

func BenchmarkMapPutGrow(b *testing.B) {
	b.Run("impl=runtimeMap", func(b *testing.B) {
		b.Run("t=Int64", benchSizes(benchmarkRuntimeMapPutGrow[int64]))
		b.Run("t=String", benchSizes(benchmarkRuntimeMapPutGrow[string]))
	})
	b.Run("impl=chainMap", func(b *testing.B) {
		b.Run("t=Int64", benchSizes(benchmarkChainMapPutGrow[int64]))
		b.Run("t=String", benchSizes(benchmarkChainMapPutGrow[string]))
	})
}

func benchmarkChainMapPutPreAllocate[K benchKey](b *testing.B, keys []K) {
	for i := 0; i < b.N; i++ {
		m := New[K, K](len(keys))
		for _, k := range keys {
			m.Put(k, k)
		}
		if m.Len() != len(keys) {
			b.Fatal("unexpected length")
		}
	}
}

func BenchmarkMapPutPreAllocate(b *testing.B) {
	b.Run("impl=chainMap", func(b *testing.B) {
		b.Run("t=Int64", benchSizes(benchmarkChainMapPutPreAllocate[int64]))
		b.Run("t=String", benchSizes(benchmarkChainMapPutPreAllocate[string]))
	})
}

func benchmarkRuntimeMapIter[K benchKey](b *testing.B, keys []K) {
	m := make(map[K]K, len(keys))
	for _, k := range keys {
		m[k] = k
	}
	b.ResetTimer()
	var sink int
	for i := 0; i < b.N; i++ {
		for range m {
			sink++
		}
	}
	_ = sink
}

func benchmarkChainMapIter[K benchKey](b *testing.B, keys []K) {
	m := New[K, K](len(keys))
	for _, k := range keys {
		m.Put(k, k)
	}
	b.ResetTimer()
	var sink int
	for i := 0; i < b.N; i++ {
		m.All(func(K, K) bool {
			sink++
			return true
		})
	}
	_ = sink
}

func BenchmarkMapIter(b *testing.B) {
	b.Run("impl=runtimeMap", func(b *testing.B) {
		b.Run("t=Int64", benchSizes(benchmarkRuntimeMapIter[int64]))
	})
	b.Run("impl=chainMap", func(b *testing.B) {
		b.Run("t=Int64", benchSizes(benchmarkChainMapIter[int64]))
	})
}
