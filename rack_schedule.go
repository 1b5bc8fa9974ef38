// rack_schedule.go - Module evaluation order from the wire dependency graph

package main

import (
	"fmt"
	"os"
)

// BuildSchedule computes a module-level topological order so every
// consumer runs after its producers. Parallel wires between the same
// module pair collapse to one dependency edge; self-wires are dropped,
// which lets a module feed back into itself with a one-sample delay
// without counting as a cycle.
//
// Kahn-style in-degree zeroing. When a genuine multi-hop cycle keeps the
// order from resolving, the whole graph falls back to declaration order
// with a warning: rendering still completes, but values downstream of the
// cycle may be one pass stale. Called once per topology change, never per
// sample.
func (r *Rack) BuildSchedule() {
	var edge [MAX_MODULES][MAX_MODULES]bool
	var indeg [MAX_MODULES]int

	for i := 0; i < r.numWires; i++ {
		w := r.wires[i]
		if w.fromModule == w.toModule || edge[w.fromModule][w.toModule] {
			continue
		}
		edge[w.fromModule][w.toModule] = true
		indeg[w.toModule]++
	}

	var queue [MAX_MODULES]int
	qh, qt := 0, 0
	for m := 0; m < r.numModules; m++ {
		if indeg[m] == 0 {
			queue[qt] = m
			qt++
		}
	}

	r.topoCount = 0
	for qh < qt {
		m := queue[qh]
		qh++
		r.topoOrder[r.topoCount] = m
		r.topoCount++
		for n := 0; n < r.numModules; n++ {
			if !edge[m][n] {
				continue
			}
			indeg[n]--
			if indeg[n] == 0 {
				queue[qt] = n
				qt++
			}
		}
	}

	r.cycleFallback = r.topoCount != r.numModules
	if r.cycleFallback {
		fmt.Fprintln(os.Stderr, "[warn] rack: cycle in patch; falling back to declaration order")
		r.topoCount = r.numModules
		for m := 0; m < r.numModules; m++ {
			r.topoOrder[m] = m
		}
	}
}

// SchedulePosition returns a module's slot in the computed order, or -1
// when no schedule has been built.
func (r *Rack) SchedulePosition(id int) int {
	for i := 0; i < r.topoCount; i++ {
		if r.topoOrder[i] == id {
			return i
		}
	}
	return -1
}
