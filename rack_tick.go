// rack_tick.go - Per-sample DSP dispatch over the scheduled module order

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

import "math"

const TWO_PI = float32(2 * math.Pi)

// MIN_ENV_TIME floors attack/decay/release so the per-sample ramp step
// never divides by zero.
const MIN_ENV_TIME = 1e-5

const (
	MAX_SAMPLE = 1.0
	MIN_SAMPLE = -1.0
)

func clampf(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// inputValue resolves one input jack to the already-computed output of its
// wired source for this tick, or 0 when unconnected.
func (r *Rack) inputValue(m *Module, port int) float32 {
	if port >= m.numInputs {
		return 0
	}
	sm := m.inSrcMod[port]
	sp := m.inSrcPort[port]
	if sm < 0 || sp < 0 {
		return 0
	}
	return r.outVals[sm][sp]
}

func tickParam(m *Module) float32 {
	return m.value
}

// tickGate holds high for gateLen seconds of elapsed stream time, then low.
func tickGate(m *Module, dt float32) float32 {
	var v float32
	if m.gateT < m.gateLen {
		v = 1.0
	}
	m.gateT += dt
	return v
}

func tickKeyGate(m *Module) float32 {
	if m.keyGate.Load() {
		return 1.0
	}
	return 0
}

// tickSineOsc advances the phase accumulator by one period at the given
// frequency and returns sin(phase). Negative frequencies clamp to zero.
func tickSineOsc(m *Module, freq, sr float32) float32 {
	if freq < 0 {
		freq = 0
	}
	inc := TWO_PI * freq / sr
	m.phase += inc
	if m.phase >= TWO_PI {
		m.phase -= TWO_PI
	}
	return float32(math.Sin(float64(m.phase)))
}

// tickVCO adds the control voltage to the base frequency in the linear Hz
// domain.
func tickVCO(m *Module, sr, cvHz float32) float32 {
	return tickSineOsc(m, m.freq+cvHz, sr)
}

func tickLFO(m *Module, sr float32) float32 {
	return tickSineOsc(m, m.freq, sr)
}

// tickADSR advances the linear envelope state machine by one sample. The
// gate input is thresholded at 0.5; a rising edge restarts the attack from
// the current level, a falling edge enters release from any active stage.
func tickADSR(m *Module, gate, sr float32) float32 {
	a := m.attack
	if a < MIN_ENV_TIME {
		a = MIN_ENV_TIME
	}
	d := m.decay
	if d < MIN_ENV_TIME {
		d = MIN_ENV_TIME
	}
	rel := m.release
	if rel < MIN_ENV_TIME {
		rel = MIN_ENV_TIME
	}
	s := clampf(m.sustain, 0, 1)

	env := m.env
	if gate >= 0.5 {
		if m.envPhase == ENV_IDLE || m.envPhase == ENV_RELEASE {
			m.envPhase = ENV_ATTACK
		}
		switch m.envPhase {
		case ENV_ATTACK:
			env += 1.0 / (a * sr)
			if env >= 1.0 {
				env = 1.0
				m.envPhase = ENV_DECAY
			}
		case ENV_DECAY:
			if env > s {
				env -= 1.0 / (d * sr)
				if env <= s {
					env = s
					m.envPhase = ENV_SUSTAIN
				}
			} else {
				env = s
				m.envPhase = ENV_SUSTAIN
			}
		case ENV_SUSTAIN:
			env = s
		}
	} else {
		if m.envPhase != ENV_IDLE {
			m.envPhase = ENV_RELEASE
		}
		if m.envPhase == ENV_RELEASE {
			env -= 1.0 / (rel * sr)
			if env <= 0 {
				env = 0
				m.envPhase = ENV_IDLE
			}
		}
	}
	m.env = clampf(env, 0, 1)
	return m.env
}

// tickVCA multiplies the signal by the gain CV when one is patched in; a
// zero gain input falls back to the stored default. Override, not
// additive.
func tickVCA(m *Module, sig, gainCV float32) float32 {
	g := m.gain
	if gainCV != 0 {
		g = gainCV
	}
	return sig * g
}

func tickMix4(m *Module, a, b, c, d float32) float32 {
	return a*m.mixWeights[0] + b*m.mixWeights[1] + c*m.mixWeights[2] + d*m.mixWeights[3]
}

// TickFrame evaluates every module once, strictly in scheduled order, and
// returns the sink's clamped L/R sample. Real-time path: no allocation, no
// locks, no syscalls.
func (r *Rack) TickFrame() (left, right float32) {
	for k := 0; k < r.topoCount; k++ {
		m := &r.modules[r.topoOrder[k]]
		switch m.typ {
		case MOD_PARAM:
			r.outVals[m.id][0] = tickParam(m)
		case MOD_GATE:
			r.outVals[m.id][0] = tickGate(m, r.dt)
		case MOD_KEYGATE:
			r.outVals[m.id][0] = tickKeyGate(m)
		case MOD_VCO:
			cv := r.inputValue(m, 0)
			r.outVals[m.id][0] = tickVCO(m, r.srF, cv)
		case MOD_LFO:
			r.outVals[m.id][0] = tickLFO(m, r.srF)
		case MOD_ADSR:
			gate := r.inputValue(m, 0)
			r.outVals[m.id][0] = tickADSR(m, gate, r.srF)
		case MOD_VCA:
			sig := r.inputValue(m, 0)
			gainCV := r.inputValue(m, 1)
			r.outVals[m.id][0] = tickVCA(m, sig, gainCV)
		case MOD_MIX4:
			a := r.inputValue(m, 0)
			b := r.inputValue(m, 1)
			c := r.inputValue(m, 2)
			d := r.inputValue(m, 3)
			r.outVals[m.id][0] = tickMix4(m, a, b, c, d)
		case MOD_OUT:
			left = clampf(r.inputValue(m, 0), MIN_SAMPLE, MAX_SAMPLE)
			right = clampf(r.inputValue(m, 1), MIN_SAMPLE, MAX_SAMPLE)
		}
	}
	return left, right
}
