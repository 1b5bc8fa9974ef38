//go:build !headless

// audio_backend_alsa.go - ALSA audio output implementation

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

/*
#cgo LDFLAGS: -lasound
#include <alsa/asoundlib.h>
#include <stdlib.h>

static snd_pcm_t* openPCM(const char* device, int* err) {
    snd_pcm_t* handle;
    *err = snd_pcm_open(&handle, device, SND_PCM_STREAM_PLAYBACK, 0);
    return handle;
}

static int setupPCM(snd_pcm_t* handle, unsigned int rate, unsigned int channels) {
    snd_pcm_hw_params_t* params;
    int err;

    snd_pcm_hw_params_alloca(&params);
    err = snd_pcm_hw_params_any(handle, params);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_access(handle, params, SND_PCM_ACCESS_RW_INTERLEAVED);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_format(handle, params, SND_PCM_FORMAT_FLOAT);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_channels(handle, params, channels);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_rate(handle, params, rate, 0);
    if (err < 0) return err;

    err = snd_pcm_hw_params(handle, params);
    if (err < 0) return err;

    return snd_pcm_prepare(handle);
}

static int writePCM(snd_pcm_t* handle, float* buffer, int frames) {
    return snd_pcm_writei(handle, buffer, frames);
}

static void closePCM(snd_pcm_t* handle) {
    if (handle != NULL) {
        snd_pcm_drain(handle);
        snd_pcm_close(handle);
    }
}
*/
import "C"
import (
	"fmt"
	"sync"
	"unsafe"
)

const ALSA_CHANNELS = 2
const ALSA_CHUNK_FRAMES = 512

type ALSAPlayer struct {
	handle  *C.snd_pcm_t
	rack    *Rack
	started bool
	playing bool
	mutex   sync.Mutex
	samples []float32
	done    chan struct{}
}

func NewALSAPlayer(sampleRate int, rack *Rack) (*ALSAPlayer, error) {
	var cerr C.int
	dev := C.CString("default")
	defer C.free(unsafe.Pointer(dev))
	handle := C.openPCM(dev, &cerr)
	if cerr < 0 {
		return nil, fmt.Errorf("failed to open PCM device: %s", C.GoString(C.snd_strerror(cerr)))
	}

	if cerr = C.setupPCM(handle, C.uint(sampleRate), C.uint(ALSA_CHANNELS)); cerr < 0 {
		C.closePCM(handle)
		return nil, fmt.Errorf("failed to setup PCM: %s", C.GoString(C.snd_strerror(cerr)))
	}

	return &ALSAPlayer{
		handle:  handle,
		rack:    rack,
		samples: make([]float32, ALSA_CHUNK_FRAMES*ALSA_CHANNELS),
	}, nil
}

func (ap *ALSAPlayer) IsStarted() bool {
	ap.mutex.Lock()
	defer ap.mutex.Unlock()
	return ap.started
}

// feed pulls chunks from the rack and pushes them at the device until the
// render budget completes or the stream is stopped.
func (ap *ALSAPlayer) feed() {
	defer close(ap.done)
	for {
		ap.mutex.Lock()
		if !ap.playing || ap.handle == nil {
			ap.mutex.Unlock()
			return
		}
		_, status := ap.rack.RenderInto(ap.samples, ALSA_CHUNK_FRAMES)
		frames := C.writePCM(ap.handle, (*C.float)(unsafe.Pointer(&ap.samples[0])), C.int(ALSA_CHUNK_FRAMES))
		if frames == -C.EPIPE {
			C.snd_pcm_prepare(ap.handle)
			frames = C.writePCM(ap.handle, (*C.float)(unsafe.Pointer(&ap.samples[0])), C.int(ALSA_CHUNK_FRAMES))
		}
		ap.mutex.Unlock()
		if frames < 0 || status == RENDER_COMPLETE {
			return
		}
	}
}

func (ap *ALSAPlayer) Start() {
	ap.mutex.Lock()
	defer ap.mutex.Unlock()

	if !ap.started {
		ap.started = true
		ap.playing = true
		ap.done = make(chan struct{})
		go ap.feed()
	}
}

func (ap *ALSAPlayer) Stop() {
	ap.mutex.Lock()
	if ap.playing {
		ap.playing = false
		ap.started = false
	}
	done := ap.done
	ap.mutex.Unlock()
	if done != nil {
		<-done
	}
}

func (ap *ALSAPlayer) Close() {
	ap.Stop()
	ap.mutex.Lock()
	defer ap.mutex.Unlock()

	if ap.handle != nil {
		C.closePCM(ap.handle)
		ap.handle = nil
	}
}
