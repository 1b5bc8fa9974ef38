// audio_output.go - Common interface for audio output backends

package main

import "fmt"

const (
	AUDIO_BACKEND_OTO = iota
	AUDIO_BACKEND_ALSA
	AUDIO_BACKEND_HEADLESS
)

// AudioOutput is implemented by all output backends. The backend pulls
// interleaved stereo frames from the rack via RenderInto for as long as
// the stream is started.
type AudioOutput interface {
	// Start begins pulling frames from the rack
	Start()
	// Stop pauses the stream without releasing the device
	Stop()
	// Close releases the device; the backend cannot be restarted after
	Close()
	// IsStarted returns true while the stream is running
	IsStarted() bool
}

// ParseBackend maps a CLI backend name to its constant.
func ParseBackend(name string) (int, error) {
	switch name {
	case "oto":
		return AUDIO_BACKEND_OTO, nil
	case "alsa":
		return AUDIO_BACKEND_ALSA, nil
	case "headless", "none":
		return AUDIO_BACKEND_HEADLESS, nil
	}
	return -1, fmt.Errorf("unknown audio backend %q", name)
}

// NullOutput discards the stream. Used for the headless backend and as the
// explicit "none" device; rendering is driven directly by whoever owns the
// rack instead.
type NullOutput struct {
	started bool
}

func NewNullOutput() *NullOutput { return &NullOutput{} }

func (n *NullOutput) Start()          { n.started = true }
func (n *NullOutput) Stop()           { n.started = false }
func (n *NullOutput) Close()          { n.started = false }
func (n *NullOutput) IsStarted() bool { return n.started }
