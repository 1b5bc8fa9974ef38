// terminal_live.go - Raw-terminal keyboard control for live gate triggering

package main

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// LiveKeys puts the terminal in raw mode and maps keys to a MOD_KEYGATE
// module while the stream renders: space toggles the gate, q (or Ctrl-C)
// quits. The gate flag is an atomic, so the render goroutine reads it
// lock-free; the topology itself stays sealed.
type LiveKeys struct {
	rack         *Rack
	gateID       int
	fd           int
	oldTermState *term.State
	done         chan struct{}
}

func NewLiveKeys(rack *Rack, gateID int) *LiveKeys {
	return &LiveKeys{
		rack:   rack,
		gateID: gateID,
		done:   make(chan struct{}),
	}
}

// Start sets stdin to raw mode and begins reading keys in a goroutine.
// Call Stop() to restore the terminal.
func (lk *LiveKeys) Start() error {
	lk.fd = int(os.Stdin.Fd())

	// Raw mode disables OS-level echo and line buffering so single
	// keystrokes arrive immediately.
	oldState, err := term.MakeRaw(lk.fd)
	if err != nil {
		return fmt.Errorf("live keys: failed to set raw mode: %w", err)
	}
	lk.oldTermState = oldState

	fmt.Print("live mode: space toggles the gate, q quits\r\n")

	go func() {
		defer close(lk.done)
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				return
			}
			if n == 0 {
				continue
			}
			switch buf[0] {
			case ' ':
				high, err := lk.rack.ToggleKeyGate(lk.gateID)
				if err != nil {
					return
				}
				if high {
					fmt.Print("gate on\r\n")
				} else {
					fmt.Print("gate off\r\n")
				}
			case 'q', 0x03, 0x1B: // q, Ctrl-C, Esc
				return
			}
		}
	}()
	return nil
}

// Done is closed when the user quits.
func (lk *LiveKeys) Done() <-chan struct{} {
	return lk.done
}

// Stop restores the terminal state.
func (lk *LiveKeys) Stop() {
	if lk.oldTermState != nil {
		_ = term.Restore(lk.fd, lk.oldTermState)
		lk.oldTermState = nil
	}
}
