// rack_patch.go - Patch descriptions consumed once at setup time

package main

import "fmt"

// ModuleSpec describes one module of a patch: its type and initial
// parameters. Port counts default per type (DefaultPortCounts) unless
// overridden. Only the fields meaningful for the type are read.
type ModuleSpec struct {
	Type    ModuleType
	Name    string
	Inputs  int // 0 = type default
	Outputs int // 0 = type default

	Value      float32    // MOD_PARAM
	GateLen    float32    // MOD_GATE, seconds
	Freq       float32    // MOD_VCO base / MOD_LFO frequency, Hz
	Attack     float32    // MOD_ADSR, seconds
	Decay      float32    // MOD_ADSR, seconds
	Sustain    float32    // MOD_ADSR, level 0..1
	Release    float32    // MOD_ADSR, seconds
	Gain       float32    // MOD_VCA default gain
	MixWeights [4]float32 // MOD_MIX4
}

// WireSpec routes (FromModule, FromPort) -> (ToModule, ToPort). Module
// references are indices into PatchSpec.Modules.
type WireSpec struct {
	FromModule int
	FromPort   int
	ToModule   int
	ToPort     int
}

// PatchSpec is the serialized form of one rack: an ordered module list
// plus a wire list. Consumed once at setup, never at runtime.
type PatchSpec struct {
	Modules []ModuleSpec
	Wires   []WireSpec
}

// BuildRack assembles a rack from a patch description and computes its
// schedule. The rack is returned unsealed so callers can still set a
// render budget; Seal is called when the stream starts.
func BuildRack(spec PatchSpec, sampleRate int) (*Rack, error) {
	r := NewRack(sampleRate)
	for i := range spec.Modules {
		ms := &spec.Modules[i]
		nIn, nOut := DefaultPortCounts(ms.Type)
		if ms.Inputs > 0 {
			nIn = ms.Inputs
		}
		if ms.Outputs > 0 {
			nOut = ms.Outputs
		}
		id, err := r.AddModule(ms.Type, ms.Name, nIn, nOut)
		if err != nil {
			return nil, fmt.Errorf("module %d (%s): %w", i, ms.Name, err)
		}
		applyParams(&r.modules[id], ms)
	}
	for i, ws := range spec.Wires {
		if err := r.Connect(ws.FromModule, ws.FromPort, ws.ToModule, ws.ToPort); err != nil {
			return nil, fmt.Errorf("wire %d: %w", i, err)
		}
	}
	r.BuildSchedule()
	return r, nil
}

func applyParams(m *Module, ms *ModuleSpec) {
	switch ms.Type {
	case MOD_PARAM:
		m.value = ms.Value
	case MOD_GATE:
		m.gateLen = ms.GateLen
	case MOD_VCO, MOD_LFO:
		m.freq = ms.Freq
	case MOD_ADSR:
		m.attack = ms.Attack
		m.decay = ms.Decay
		m.sustain = ms.Sustain
		m.release = ms.Release
	case MOD_VCA:
		m.gain = ms.Gain
	case MOD_MIX4:
		m.mixWeights = ms.MixWeights
	}
}

// DemoPatch is the classic one-voice patch: a 220 Hz constant drives a
// CV-only oscillator, a one-second gate shapes it through an ADSR into the
// amplifier, and the result feeds both sink channels.
func DemoPatch() PatchSpec {
	return PatchSpec{
		Modules: []ModuleSpec{
			{Type: MOD_PARAM, Name: "ParamFreq", Value: 220},
			{Type: MOD_GATE, Name: "Gate", GateLen: 1.0},
			{Type: MOD_VCO, Name: "VCO", Freq: 0}, // CV only
			{Type: MOD_ADSR, Name: "ADSR", Attack: 0.01, Decay: 0.25, Sustain: 0.6, Release: 0.5},
			{Type: MOD_VCA, Name: "VCA", Gain: 0}, // controlled by env
			{Type: MOD_OUT, Name: "OUT"},
		},
		Wires: []WireSpec{
			{0, 0, 2, 0}, // ParamFreq -> VCO freq CV (Hz add)
			{1, 0, 3, 0}, // Gate -> ADSR gate
			{2, 0, 4, 0}, // VCO -> VCA input
			{3, 0, 4, 1}, // ADSR -> VCA gain
			{4, 0, 5, 0}, // VCA -> OUT L
			{4, 0, 5, 1}, // VCA -> OUT R
		},
	}
}

// LiveDemoPatch is DemoPatch with the timed gate swapped for a keyboard
// gate, for -live mode.
func LiveDemoPatch() PatchSpec {
	p := DemoPatch()
	p.Modules[1] = ModuleSpec{Type: MOD_KEYGATE, Name: "KeyGate"}
	return p
}
