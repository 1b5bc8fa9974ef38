// render.go - Pull-driven render boundary between the rack and an audio backend

package main

// RenderStatus is the engine's half of the callback contract: CONTINUE
// asks the host for more buffers, COMPLETE tells it the fixed-duration
// budget has run out.
type RenderStatus int

const (
	RENDER_CONTINUE RenderStatus = iota
	RENDER_COMPLETE
)

// RenderInto fills buf with up to frames interleaved stereo float32
// frames, one full scheduled tick pass per frame, and returns how many
// frames carry signal. When the render budget runs out mid-buffer the
// remainder is written as silence and the status flips to
// RENDER_COMPLETE. buf must hold at least 2*frames samples.
//
// Called from the audio backend's callback; must finish within the
// buffer's real-time deadline, so it allocates nothing and takes no locks.
func (r *Rack) RenderInto(buf []float32, frames int) (int, RenderStatus) {
	todo := frames
	left := r.framesLeft.Load()
	if left >= 0 && left < int64(frames) {
		todo = int(left)
	}

	for i := 0; i < todo; i++ {
		l, rr := r.TickFrame()
		buf[2*i] = l
		buf[2*i+1] = rr
	}
	for i := todo; i < frames; i++ {
		buf[2*i] = 0
		buf[2*i+1] = 0
	}

	if left >= 0 {
		left -= int64(todo)
		r.framesLeft.Store(left)
		if left <= 0 {
			return todo, RENDER_COMPLETE
		}
	}
	return todo, RENDER_CONTINUE
}
