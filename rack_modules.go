// rack_modules.go - Module registry and typed per-module state

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
	"errors"
	"sync/atomic"
)

// Engine limits. The module and wire tables are fixed-capacity arenas;
// module ids are array positions and stay stable for the rack's lifetime.
const (
	MAX_MODULES = 64
	MAX_INPUTS  = 8
	MAX_OUTPUTS = 8
	MAX_WIRES   = 128
)

type ModuleType int

const (
	MOD_PARAM   ModuleType = iota // constant CV output
	MOD_GATE                      // gate high for N seconds, then low
	MOD_VCO                       // sine oscillator, linear Hz CV input
	MOD_LFO                       // sine oscillator, fixed frequency, no CV
	MOD_ADSR                      // envelope generator (gate in -> env out)
	MOD_VCA                       // amplifier (signal in * gain)
	MOD_MIX4                      // 4-channel weighted mixer
	MOD_OUT                       // sink: L/R inputs become the rendered sample
	MOD_KEYGATE                   // gate driven from the keyboard in live mode
)

// Envelope stages (MOD_ADSR)
const (
	ENV_IDLE = iota
	ENV_ATTACK
	ENV_DECAY
	ENV_SUSTAIN
	ENV_RELEASE
)

var (
	ErrTooManyModules = errors.New("rack: module table full")
	ErrTooManyWires   = errors.New("rack: wire table full")
	ErrBadEndpoint    = errors.New("rack: wire endpoint out of range")
	ErrBadPortCount   = errors.New("rack: port count exceeds limit")
	ErrSealed         = errors.New("rack: topology sealed while stream is active")
)

// Module is one signal-processing unit. Per-type state lives in a flat
// record dispatched on the type tag; only the fields for the module's own
// type are ever touched.
type Module struct {
	typ        ModuleType
	name       string
	id         int
	numInputs  int
	numOutputs int

	// Single upstream source per input (hard-normalled jack), -1 when
	// unconnected. Unconnected inputs resolve to 0.
	inSrcMod  [MAX_INPUTS]int
	inSrcPort [MAX_INPUTS]int

	// MOD_PARAM
	value float32

	// MOD_GATE
	gateLen float32 // seconds the gate stays high
	gateT   float32 // elapsed time

	// MOD_VCO / MOD_LFO
	phase float32
	freq  float32 // base frequency in Hz

	// MOD_ADSR: attack/decay/release in seconds, sustain in [0,1]
	attack   float32
	decay    float32
	sustain  float32
	release  float32
	env      float32
	envPhase int

	// MOD_VCA default gain, overridden by a non-zero gain input
	gain float32

	// MOD_MIX4 channel weights
	mixWeights [4]float32

	// MOD_KEYGATE state, flipped from the terminal goroutine while the
	// stream renders. Lock-free on the tick path.
	keyGate atomic.Bool
}

func moduleInit(m *Module, typ ModuleType, name string, id, nIn, nOut int) {
	m.typ = typ
	m.name = name
	m.id = id
	m.numInputs = nIn
	m.numOutputs = nOut
	for i := 0; i < MAX_INPUTS; i++ {
		m.inSrcMod[i] = -1
		m.inSrcPort[i] = -1
	}
	m.value = 0
	m.gateLen = 0
	m.gateT = 0
	m.phase = 0
	m.freq = 0
	m.attack = 0
	m.decay = 0
	m.sustain = 0
	m.release = 0
	m.env = 0
	m.envPhase = ENV_IDLE
	m.gain = 0
	m.mixWeights = [4]float32{}
	m.keyGate.Store(false)
}

// AddModule mints the next arena index for a module of the given type and
// zeroes its state. Fails closed when the table is full; the existing
// modules are left untouched.
func (r *Rack) AddModule(typ ModuleType, name string, nIn, nOut int) (int, error) {
	if r.sealed.Load() {
		return -1, ErrSealed
	}
	if r.numModules >= MAX_MODULES {
		return -1, ErrTooManyModules
	}
	if nIn < 0 || nIn > MAX_INPUTS || nOut < 0 || nOut > MAX_OUTPUTS {
		return -1, ErrBadPortCount
	}
	id := r.numModules
	moduleInit(&r.modules[id], typ, name, id, nIn, nOut)
	if typ == MOD_OUT {
		r.outModule = id
	}
	r.numModules++
	return id, nil
}

// DefaultPortCounts returns the input/output port counts a module type
// declares when a patch description does not override them.
func DefaultPortCounts(typ ModuleType) (nIn, nOut int) {
	switch typ {
	case MOD_PARAM, MOD_LFO, MOD_KEYGATE, MOD_GATE:
		return 0, 1
	case MOD_VCO, MOD_ADSR:
		return 1, 1
	case MOD_VCA:
		return 2, 1
	case MOD_MIX4:
		return 4, 1
	case MOD_OUT:
		return 2, 0
	}
	return 0, 0
}
