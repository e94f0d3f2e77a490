// Package benchmark provides performance benchmarks for the handoff
// record stores.
//
// Run benchmarks with:
//
//	go test -bench=. -benchmem ./internal/tests/benchmark/...
//
// Compare engines for marker operations only:
//
//	go test -bench=BenchmarkMarker -benchmem ./internal/tests/benchmark/...
//
// Compare results:
//
//	benchstat old.txt new.txt
package benchmark
