// rack.go - Rack graph instance: module arena, wire table, lifecycle

/*
 ██▀███   ▄▄▄       ▄████▄   ██ ▄█▀   ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██ ▒ ██▒▒████▄    ▒██▀ ▀█   ██▄█▒    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▓██ ░▄█ ▒▒██  ▀█▄  ▒▓█    ▄ ▓███▄░    ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
▒██▀▀█▄  ░██▄▄▄▄██ ▒▓▓▄ ▄██▒▓██ █▄    ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██▓ ▒██▒ ▓█   ▓██▒▒ ▓███▀ ░▒██▒ █▄   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░ ▒▓ ░▒▓░ ▒▒   ▓▒█░░ ░▒ ▒  ░▒ ▒▒ ▓▒   ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
  ░▒ ░ ▒░  ▒   ▒▒ ░  ░  ▒   ░ ░▒ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
  ░░   ░   ░   ▒   ░        ░ ░░ ░      ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
   ░           ░  ░░ ░      ░  ░        ░  ░         ░       ░  ░           ░    ░  ░

(c) 2025 - 2026 The RackEngine Authors
https://github.com/Larshalvorhansen/RackEngine
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"sync/atomic"
)

// Rack owns the full module and wire collections, the computed evaluation
// order and the designated sink. It is assembled once, sealed, and then
// stepped sample-by-sample by exactly one render goroutine.
type Rack struct {
	sampleRate int
	srF        float32 // sample rate as float32, hot on the tick path
	dt         float32 // one sample period, 1/sampleRate

	numModules int
	modules    [MAX_MODULES]Module

	numWires int
	wires    [MAX_WIRES]Wire

	topoOrder     [MAX_MODULES]int
	topoCount     int
	cycleFallback bool

	// Per-tick output value scratch table, indexed [module][port].
	// Preallocated so the tick path never allocates.
	outVals [MAX_MODULES][MAX_OUTPUTS]float32

	// Index of the MOD_OUT sink, -1 until one is added.
	outModule int

	// Remaining render budget in frames, -1 runs unbounded. Atomic so the
	// control goroutine can poll it while the stream renders.
	framesLeft atomic.Int64

	// Sealed once a stream starts consuming the rack; topology edits are
	// rejected from then on.
	sealed atomic.Bool
}

func NewRack(sampleRate int) *Rack {
	r := &Rack{
		sampleRate: sampleRate,
		srF:        float32(sampleRate),
		dt:         1.0 / float32(sampleRate),
		outModule:  -1,
	}
	r.framesLeft.Store(-1)
	return r
}

func (r *Rack) SampleRate() int { return r.sampleRate }

func (r *Rack) NumModules() int { return r.numModules }

func (r *Rack) NumWires() int { return r.numWires }

// CycleFallback reports whether the last schedule build degraded to
// declaration order because of an unresolved cycle.
func (r *Rack) CycleFallback() bool { return r.cycleFallback }

// Seal freezes the topology. Called when a stream starts; AddModule and
// Connect fail afterwards.
func (r *Rack) Seal() {
	r.sealed.CompareAndSwap(false, true)
}

// SetRenderBudget limits rendering to the given number of frames. A
// negative budget runs until the stream is torn down.
func (r *Rack) SetRenderBudget(frames int64) {
	if frames < 0 {
		frames = -1
	}
	r.framesLeft.Store(frames)
}

// RemainingFrames reports the unrendered part of the budget, -1 when
// unbounded.
func (r *Rack) RemainingFrames() int64 {
	return r.framesLeft.Load()
}

// SinkModule returns the id of the designated MOD_OUT sink, -1 when the
// patch has none.
func (r *Rack) SinkModule() int { return r.outModule }

// FindModule returns the id of the first module of the given type, or -1.
func (r *Rack) FindModule(typ ModuleType) int {
	for i := 0; i < r.numModules; i++ {
		if r.modules[i].typ == typ {
			return i
		}
	}
	return -1
}

// SetKeyGate flips the manual gate of a MOD_KEYGATE module. Safe to call
// from outside the render goroutine.
func (r *Rack) SetKeyGate(id int, high bool) error {
	if id < 0 || id >= r.numModules || r.modules[id].typ != MOD_KEYGATE {
		return fmt.Errorf("rack: module %d is not a key gate", id)
	}
	r.modules[id].keyGate.Store(high)
	return nil
}

// ToggleKeyGate inverts the manual gate and returns the new state.
func (r *Rack) ToggleKeyGate(id int) (bool, error) {
	if id < 0 || id >= r.numModules || r.modules[id].typ != MOD_KEYGATE {
		return false, fmt.Errorf("rack: module %d is not a key gate", id)
	}
	g := &r.modules[id].keyGate
	for {
		old := g.Load()
		if g.CompareAndSwap(old, !old) {
			return !old, nil
		}
	}
}
