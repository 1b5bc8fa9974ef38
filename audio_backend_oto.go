//go:build !headless

// audio_backend_oto.go - OTO v3 audio output implementation

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
	"io"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/oto/v3"
)

const OTO_CHANNELS = 2
const OTO_BYTES_PER_FRAME = OTO_CHANNELS * 4 // stereo float32

type OtoPlayer struct {
	ctx       *oto.Context
	player    *oto.Player
	rack      atomic.Pointer[Rack] // Atomic for lock-free Read()
	sampleBuf []float32            // Pre-allocated sample buffer
	started   bool
	mutex     sync.Mutex // Only for setup/control operations
}

func NewOtoPlayer(sampleRate int) (*OtoPlayer, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: OTO_CHANNELS,
		Format:       oto.FormatFloat32LE,
		BufferSize:   4,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	return &OtoPlayer{
		ctx:     ctx,
		started: false,
	}, nil
}

func (op *OtoPlayer) SetupPlayer(rack *Rack) {
	op.mutex.Lock()
	defer op.mutex.Unlock()

	op.rack.Store(rack)
	op.player = op.ctx.NewPlayer(op)
	// Pre-allocate for typical oto buffer sizes (4096 bytes = 512 stereo frames)
	op.sampleBuf = make([]float32, 1024)
}

// Read is the pull side of the real-time contract: oto invokes it once per
// output buffer and the rack renders one scheduled tick pass per frame
// directly into the buffer. io.EOF reports the render budget exhausted,
// which makes oto end the stream at the buffer boundary.
func (op *OtoPlayer) Read(p []byte) (n int, err error) {
	// Load rack pointer atomically - no lock needed for the hot path
	rack := op.rack.Load()
	if rack == nil {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}

	frames := len(p) / OTO_BYTES_PER_FRAME
	numSamples := frames * OTO_CHANNELS

	// Ensure our pre-allocated buffer is large enough
	// This should rarely happen after initial SetupPlayer
	if len(op.sampleBuf) < numSamples {
		op.sampleBuf = make([]float32, numSamples)
	}
	samples := op.sampleBuf[:numSamples]

	var status RenderStatus
	if frames > 0 {
		_, status = rack.RenderInto(samples, frames)
		copy(p, (*[1 << 30]byte)(unsafe.Pointer(&samples[0]))[:numSamples*4])
	}
	// Zero any trailing bytes that do not make a whole frame
	for i := numSamples * 4; i < len(p); i++ {
		p[i] = 0
	}

	if status == RENDER_COMPLETE {
		return len(p), io.EOF
	}
	return len(p), nil
}

func (op *OtoPlayer) Start() {
	op.mutex.Lock()
	defer op.mutex.Unlock()

	if !op.started && op.player != nil {
		op.player.Play()
		op.started = true
	}
}

func (op *OtoPlayer) Stop() {
	op.mutex.Lock()
	defer op.mutex.Unlock()

	if op.started && op.player != nil {
		op.player.Close()
		op.started = false
	}
}

func (op *OtoPlayer) Close() {
	op.Stop()
	op.mutex.Lock()
	defer op.mutex.Unlock()

	if op.player != nil {
		op.player.Close()
		op.player = nil
	}
}

func (op *OtoPlayer) IsStarted() bool {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	return op.started
}

// NewAudioOutput opens the requested backend and wires it to the rack.
// Backend-open failures are the only fatal conditions the engine raises;
// the graph core itself never fails during rendering.
func NewAudioOutput(backend, sampleRate int, rack *Rack) (AudioOutput, error) {
	switch backend {
	case AUDIO_BACKEND_OTO:
		op, err := NewOtoPlayer(sampleRate)
		if err != nil {
			return nil, fmt.Errorf("oto backend: %w", err)
		}
		op.SetupPlayer(rack)
		return op, nil
	case AUDIO_BACKEND_ALSA:
		ap, err := NewALSAPlayer(sampleRate, rack)
		if err != nil {
			return nil, fmt.Errorf("alsa backend: %w", err)
		}
		return ap, nil
	case AUDIO_BACKEND_HEADLESS:
		return NewNullOutput(), nil
	}
	return nil, fmt.Errorf("unknown audio backend %d", backend)
}
