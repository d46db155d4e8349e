package compute

import (
	"testing"

	"github.com/san-kum/nbodybench/internal/body"
)

func benchStore(b *testing.B, n int) *body.Store {
	b.Helper()
	s, err := body.NewStore(n)
	if err != nil {
		b.Fatal(err)
	}
	body.Randomize(s, 42)
	return s
}

func BenchmarkAccumulateSerial(b *testing.B) {
	s := benchStore(b, 1024)
	backend := NewSerialBackend(nil)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := backend.Accumulate(s, 0.01, 1e-9); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAccumulateCPU(b *testing.B) {
	s := benchStore(b, 1024)
	backend := NewCPUBackend()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := backend.Accumulate(s, 0.01, 1e-9); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAccumulateFastInvSqrt(b *testing.B) {
	s := benchStore(b, 1024)
	backend := NewCPUBackendWith(DefaultGrid(), FastInvSqrt)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := backend.Accumulate(s, 0.01, 1e-9); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkIntegrate(b *testing.B) {
	s := benchStore(b, 1<<16)
	backend := NewCPUBackend()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := backend.Integrate(s, 0.01); err != nil {
			b.Fatal(err)
		}
	}
}
