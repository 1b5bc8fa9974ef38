//go:build headless

// audio_backend_headless.go - No-device backend for CI and tests

package main

// NewAudioOutput in headless builds always discards the stream; rendering
// is driven directly through RenderInto by whoever owns the rack.
func NewAudioOutput(backend, sampleRate int, rack *Rack) (AudioOutput, error) {
	_ = backend
	_ = sampleRate
	_ = rack
	return NewNullOutput(), nil
}
