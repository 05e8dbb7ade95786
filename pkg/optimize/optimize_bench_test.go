package optimize

import (
	"testing"
)

// Benchmarks use the 256 KiB slice size the upload copy path hands out.
const benchSliceSize = 256 * 1024

func BenchmarkBytePool_GetPut(b *testing.B) {
	pool := NewBytePool(benchSliceSize)
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		buf := pool.Get()
		buf[len(buf)-1] = byte(i)
		pool.Put(buf)
	}
}

func BenchmarkBytePool_GetPutParallel(b *testing.B) {
	pool := NewBytePool(benchSliceSize)
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			buf := pool.Get()
			buf[0] = 1
			pool.Put(buf)
		}
	})
}

func BenchmarkByteAllocation(b *testing.B) {
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		buf := make([]byte, benchSliceSize)
		buf[len(buf)-1] = byte(i)
	}
}
