package integration

import (
	"testing"
)

// Benchmark for GET /products; to run: go test -bench=. ./test/integration -run ^$
func BenchmarkListProducts(b *testing.B) {
	u := baseURL(b)
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			resp, err := client.Get(u + "/products")
			if err == nil {
				_ = resp.Body.Close()
			}
		}
	})
}
