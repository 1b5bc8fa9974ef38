// rack_wires.go - Wire table and per-input source mapping

package main

// Wire is a directed connection from one output port to one input port.
// Module ids are arena indices, so a wire is four plain ints.
type Wire struct {
	fromModule int
	fromPort   int
	toModule   int
	toPort     int
}

// Connect routes an output port to an input port. Fails without mutating
// the graph when either endpoint is out of range or the wire table is
// full. Reconnecting an already-connected input silently replaces the
// prior source (see setInputSource).
func (r *Rack) Connect(fromMod, fromPort, toMod, toPort int) error {
	if r.sealed.Load() {
		return ErrSealed
	}
	if r.numWires >= MAX_WIRES {
		return ErrTooManyWires
	}
	if fromMod < 0 || fromMod >= r.numModules || toMod < 0 || toMod >= r.numModules {
		return ErrBadEndpoint
	}
	if fromPort < 0 || fromPort >= r.modules[fromMod].numOutputs {
		return ErrBadEndpoint
	}
	if toPort < 0 || toPort >= r.modules[toMod].numInputs {
		return ErrBadEndpoint
	}
	r.wires[r.numWires] = Wire{fromMod, fromPort, toMod, toPort}
	r.numWires++
	r.setInputSource(toMod, toPort, fromMod, fromPort)
	return nil
}

// setInputSource installs the single-source mapping for an input jack.
// Policy: last write wins, earlier connections to the same input are
// discarded without summing. Summing takes an explicit MOD_MIX4. Kept as
// one function so the policy stays swappable and testable on its own.
func (r *Rack) setInputSource(toMod, toPort, fromMod, fromPort int) {
	m := &r.modules[toMod]
	m.inSrcMod[toPort] = fromMod
	m.inSrcPort[toPort] = fromPort
}

// InputSource reports the module/port currently feeding an input, with
// ok=false for an unconnected jack.
func (r *Rack) InputSource(mod, port int) (srcMod, srcPort int, ok bool) {
	if mod < 0 || mod >= r.numModules || port < 0 || port >= r.modules[mod].numInputs {
		return -1, -1, false
	}
	m := &r.modules[mod]
	if m.inSrcMod[port] < 0 {
		return -1, -1, false
	}
	return m.inSrcMod[port], m.inSrcPort[port], true
}
