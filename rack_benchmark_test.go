// rack_benchmark_test.go - Tick and render path benchmarks

package main

import "testing"

func benchRack(b *testing.B) *Rack {
	b.Helper()
	r, err := BuildRack(DemoPatch(), 48000)
	if err != nil {
		b.Fatal(err)
	}
	r.Seal()
	return r
}

func BenchmarkTickFrameDemoPatch(b *testing.B) {
	r := benchRack(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.TickFrame()
	}
}

func BenchmarkRenderInto512Frames(b *testing.B) {
	r := benchRack(b)
	buf := make([]float32, 1024)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.RenderInto(buf, 512)
	}
	b.ReportMetric(float64(b.N*512), "frames")
}

func BenchmarkBuildSchedule(b *testing.B) {
	r, err := BuildRack(DemoPatch(), 48000)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.BuildSchedule()
	}
}
