// render_test.go - End-to-end render boundary tests

package main

import (
	"math"
	"testing"
)

func mustBuildRack(t *testing.T, spec PatchSpec) *Rack {
	t.Helper()
	r, err := BuildRack(spec, TEST_SR)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

// demoReference mirrors the demo patch signal path sample-by-sample:
// phase accumulating at 2pi*220/48000 per sample, envelope following the
// gate, both channels clamp(sin(phase)*level, -1, 1).
type demoReference struct {
	gate Module
	env  Module
	vco  Module
}

func newDemoReference() *demoReference {
	ref := &demoReference{}
	moduleInit(&ref.gate, MOD_GATE, "G", 0, 0, 1)
	moduleInit(&ref.env, MOD_ADSR, "E", 1, 1, 1)
	moduleInit(&ref.vco, MOD_VCO, "V", 2, 1, 1)
	ref.gate.gateLen = 1.0
	ref.env.attack = 0.01
	ref.env.decay = 0.25
	ref.env.sustain = 0.6
	ref.env.release = 0.5
	return ref
}

func (ref *demoReference) next(dt float32) float32 {
	gate := tickGate(&ref.gate, dt)
	level := tickADSR(&ref.env, gate, TEST_SR)
	sine := tickVCO(&ref.vco, TEST_SR, 220)
	// VCA with zero default gain: the envelope CV is the gain
	return clampf(sine*level, MIN_SAMPLE, MAX_SAMPLE)
}

func TestRenderDemoPatchMatchesReference(t *testing.T) {
	r := mustBuildRack(t, DemoPatch())
	r.Seal()

	ref := newDemoReference()
	const chunkFrames = 480
	buf := make([]float32, 2*chunkFrames)

	for chunk := 0; chunk < 10; chunk++ {
		n, status := r.RenderInto(buf, chunkFrames)
		if n != chunkFrames || status != RENDER_CONTINUE {
			t.Fatalf("chunk %d: n=%d status=%d", chunk, n, status)
		}
		for i := 0; i < chunkFrames; i++ {
			want := ref.next(r.dt)
			gotL := buf[2*i]
			gotR := buf[2*i+1]
			if gotL != gotR {
				t.Fatalf("chunk %d frame %d: channels differ: %v vs %v", chunk, i, gotL, gotR)
			}
			if diff := math.Abs(float64(gotL - want)); diff > 1e-6 {
				t.Fatalf("chunk %d frame %d: got %v want %v", chunk, i, gotL, want)
			}
		}
	}
}

func TestRenderBudgetCompletes(t *testing.T) {
	r := mustBuildRack(t, DemoPatch())
	r.SetRenderBudget(100)
	r.Seal()

	buf := make([]float32, 128)

	n, status := r.RenderInto(buf, 64)
	if n != 64 || status != RENDER_CONTINUE {
		t.Fatalf("first buffer: n=%d status=%d", n, status)
	}

	n, status = r.RenderInto(buf, 64)
	if n != 36 || status != RENDER_COMPLETE {
		t.Fatalf("second buffer: n=%d status=%d, want 36/COMPLETE", n, status)
	}
	for i := 36; i < 64; i++ {
		if buf[2*i] != 0 || buf[2*i+1] != 0 {
			t.Fatalf("frame %d past budget not silent", i)
		}
	}
	if r.RemainingFrames() != 0 {
		t.Errorf("remaining budget %d, want 0", r.RemainingFrames())
	}

	// Further pulls stay silent and complete
	n, status = r.RenderInto(buf, 64)
	if n != 0 || status != RENDER_COMPLETE {
		t.Fatalf("drained rack: n=%d status=%d", n, status)
	}
}

func TestRenderUnboundedNeverCompletes(t *testing.T) {
	r := mustBuildRack(t, DemoPatch())
	r.Seal()

	buf := make([]float32, 64)
	for i := 0; i < 8; i++ {
		if n, status := r.RenderInto(buf, 32); n != 32 || status != RENDER_CONTINUE {
			t.Fatalf("pull %d: n=%d status=%d", i, n, status)
		}
	}
	if r.RemainingFrames() != -1 {
		t.Errorf("unbounded budget changed to %d", r.RemainingFrames())
	}
}

// A cyclic patch renders in degraded declaration order: values may be a
// pass stale, but every sample must stay finite.
func TestRenderCycleStaysFinite(t *testing.T) {
	r := NewRack(TEST_SR)
	a, _ := r.AddModule(MOD_VCA, "A", 2, 1)
	b, _ := r.AddModule(MOD_VCA, "B", 2, 1)
	out, _ := r.AddModule(MOD_OUT, "OUT", 2, 0)
	r.modules[a].gain = 0.9
	r.modules[b].gain = 0.9
	for _, w := range []WireSpec{
		{a, 0, b, 0},
		{b, 0, a, 0},
		{a, 0, out, 0},
		{a, 0, out, 1},
	} {
		if err := r.Connect(w.FromModule, w.FromPort, w.ToModule, w.ToPort); err != nil {
			t.Fatal(err)
		}
	}
	r.BuildSchedule()
	if !r.CycleFallback() {
		t.Fatal("cycle not flagged")
	}
	r.Seal()

	buf := make([]float32, 128)
	for i := 0; i < 4; i++ {
		r.RenderInto(buf, 64)
		for j, s := range buf {
			if math.IsNaN(float64(s)) || math.IsInf(float64(s), 0) {
				t.Fatalf("pull %d sample %d non-finite: %v", i, j, s)
			}
		}
	}
}

func TestRenderInterleavesStereo(t *testing.T) {
	r := NewRack(TEST_SR)
	pl, _ := r.AddModule(MOD_PARAM, "L", 0, 1)
	pr, _ := r.AddModule(MOD_PARAM, "R", 0, 1)
	out, _ := r.AddModule(MOD_OUT, "OUT", 2, 0)
	r.modules[pl].value = 0.25
	r.modules[pr].value = -0.5
	if err := r.Connect(pl, 0, out, 0); err != nil {
		t.Fatal(err)
	}
	if err := r.Connect(pr, 0, out, 1); err != nil {
		t.Fatal(err)
	}
	r.BuildSchedule()
	r.Seal()

	buf := make([]float32, 32)
	r.RenderInto(buf, 16)
	for i := 0; i < 16; i++ {
		if buf[2*i] != 0.25 || buf[2*i+1] != -0.5 {
			t.Fatalf("frame %d: (%v, %v), want (0.25, -0.5)", i, buf[2*i], buf[2*i+1])
		}
	}
}

// renderStats captures statistical properties of rendered audio, checked
// against loose expected ranges rather than bit-exact golden data.
type renderStats struct {
	rms           float64
	peak          float64
	dcOffset      float64
	zeroCrossings int
}

func computeRenderStats(samples []float32) renderStats {
	if len(samples) == 0 {
		return renderStats{}
	}
	var sum, sumSq, peak float64
	var crossings int
	prevSign := samples[0] >= 0
	for _, s := range samples {
		v := float64(s)
		sum += v
		sumSq += v * v
		if math.Abs(v) > peak {
			peak = math.Abs(v)
		}
		sign := s >= 0
		if sign != prevSign {
			crossings++
		}
		prevSign = sign
	}
	n := float64(len(samples))
	return renderStats{
		rms:           math.Sqrt(sumSq / n),
		peak:          peak,
		dcOffset:      sum / n,
		zeroCrossings: crossings,
	}
}

func TestDemoPatchRenderStatistics(t *testing.T) {
	r := mustBuildRack(t, DemoPatch())
	r.Seal()

	const frames = TEST_SR // one second, gate high throughout
	buf := make([]float32, 2*frames)
	r.RenderInto(buf, frames)

	left := make([]float32, frames)
	for i := range left {
		left[i] = buf[2*i]
	}
	stats := computeRenderStats(left)

	if stats.peak > 1.0 {
		t.Errorf("peak %v exceeds full scale", stats.peak)
	}
	if stats.peak < 0.5 {
		t.Errorf("peak %v too low for an enveloped full-scale sine", stats.peak)
	}
	if stats.rms < 0.2 || stats.rms > 0.8 {
		t.Errorf("rms %v outside expected envelope range", stats.rms)
	}
	if math.Abs(stats.dcOffset) > 0.01 {
		t.Errorf("dc offset %v, sine voice should be centered", stats.dcOffset)
	}
	// 220 Hz crosses zero twice per cycle
	if stats.zeroCrossings < 420 || stats.zeroCrossings > 460 {
		t.Errorf("zero crossings %d, want ~440 for 220 Hz", stats.zeroCrossings)
	}
}
