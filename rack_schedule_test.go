// rack_schedule_test.go - Topological scheduler tests

package main

import "testing"

// For any acyclic patch, every wire's producer must be scheduled before
// its consumer.
func assertWireOrder(t *testing.T, r *Rack) {
	t.Helper()
	for i := 0; i < r.numWires; i++ {
		w := r.wires[i]
		if w.fromModule == w.toModule {
			continue
		}
		from := r.SchedulePosition(w.fromModule)
		to := r.SchedulePosition(w.toModule)
		if from < 0 || to < 0 {
			t.Fatalf("wire %d endpoints missing from schedule", i)
		}
		if from >= to {
			t.Errorf("wire %d: producer %d scheduled at %d, consumer %d at %d",
				i, w.fromModule, from, w.toModule, to)
		}
	}
}

func TestScheduleProducersBeforeConsumers(t *testing.T) {
	r, err := BuildRack(DemoPatch(), 48000)
	if err != nil {
		t.Fatal(err)
	}
	if r.CycleFallback() {
		t.Fatal("demo patch misreported as cyclic")
	}
	if r.topoCount != r.numModules {
		t.Fatalf("schedule has %d entries for %d modules", r.topoCount, r.numModules)
	}
	assertWireOrder(t, r)
}

// Declaration order deliberately disagrees with dependency order here:
// the sink and mixer are declared before their producers.
func TestScheduleDiamondAgainstDeclarationOrder(t *testing.T) {
	r := NewRack(48000)
	out, _ := r.AddModule(MOD_OUT, "OUT", 2, 0)
	mix, _ := r.AddModule(MOD_MIX4, "MIX", 4, 1)
	vcaA, _ := r.AddModule(MOD_VCA, "VCA_A", 2, 1)
	vcaB, _ := r.AddModule(MOD_VCA, "VCA_B", 2, 1)
	src, _ := r.AddModule(MOD_LFO, "LFO", 0, 1)

	for _, w := range []WireSpec{
		{src, 0, vcaA, 0},
		{src, 0, vcaB, 0},
		{vcaA, 0, mix, 0},
		{vcaB, 0, mix, 1},
		{mix, 0, out, 0},
		{mix, 0, out, 1},
	} {
		if err := r.Connect(w.FromModule, w.FromPort, w.ToModule, w.ToPort); err != nil {
			t.Fatal(err)
		}
	}
	r.BuildSchedule()

	if r.CycleFallback() {
		t.Fatal("acyclic diamond misreported as cyclic")
	}
	assertWireOrder(t, r)
}

// A module wired to its own input is a one-sample feedback loop, not a
// scheduling cycle.
func TestSelfWireExcludedFromDependencies(t *testing.T) {
	r := NewRack(48000)
	vca, _ := r.AddModule(MOD_VCA, "VCA", 2, 1)
	out, _ := r.AddModule(MOD_OUT, "OUT", 2, 0)
	if err := r.Connect(vca, 0, vca, 0); err != nil {
		t.Fatal(err)
	}
	if err := r.Connect(vca, 0, out, 0); err != nil {
		t.Fatal(err)
	}
	r.BuildSchedule()

	if r.CycleFallback() {
		t.Error("self-wire misclassified as unresolved cycle")
	}
	if r.topoCount != r.numModules {
		t.Errorf("schedule has %d entries for %d modules", r.topoCount, r.numModules)
	}
}

func TestCycleFallsBackToDeclarationOrder(t *testing.T) {
	r := NewRack(48000)
	a, _ := r.AddModule(MOD_VCA, "A", 2, 1)
	b, _ := r.AddModule(MOD_VCA, "B", 2, 1)
	if err := r.Connect(a, 0, b, 0); err != nil {
		t.Fatal(err)
	}
	if err := r.Connect(b, 0, a, 0); err != nil {
		t.Fatal(err)
	}
	r.BuildSchedule()

	if !r.CycleFallback() {
		t.Fatal("two-module cycle not flagged")
	}
	if r.topoCount != r.numModules {
		t.Fatalf("fallback schedule has %d entries for %d modules", r.topoCount, r.numModules)
	}
	for i := 0; i < r.topoCount; i++ {
		if r.topoOrder[i] != i {
			t.Errorf("fallback order[%d] = %d, want declaration order", i, r.topoOrder[i])
		}
	}
}

// Parallel wires between the same pair collapse to one dependency edge;
// the duplicate must not wedge the in-degree bookkeeping.
func TestParallelWiresCollapse(t *testing.T) {
	r := NewRack(48000)
	src, _ := r.AddModule(MOD_LFO, "LFO", 0, 1)
	out, _ := r.AddModule(MOD_OUT, "OUT", 2, 0)
	if err := r.Connect(src, 0, out, 0); err != nil {
		t.Fatal(err)
	}
	if err := r.Connect(src, 0, out, 1); err != nil {
		t.Fatal(err)
	}
	r.BuildSchedule()

	if r.CycleFallback() {
		t.Error("parallel wires misreported as cycle")
	}
	if r.SchedulePosition(src) >= r.SchedulePosition(out) {
		t.Error("producer scheduled after consumer")
	}
}
