// Package taint implements the four-level trust lattice and monotonic
// propagation over it.
package taint

import "github.com/ppiankov/taintgate/internal/model"

// Compare returns -1, 0, or 1 as a is less risky than, equal to, or
// riskier than b under the lattice order.
func Compare(a, b model.TaintLevel) int {
	ra, rb := model.LevelRank[a], model.LevelRank[b]
	switch {
	case ra < rb:
		return -1
	case ra > rb:
		return 1
	default:
		return 0
	}
}

// Max returns the riskiest level in the set. The empty set yields
// trusted (the identity element of the lattice join).
func Max(levels ...model.TaintLevel) model.TaintLevel {
	out := model.Trusted
	for _, l := range levels {
		if model.LevelRank[l] > model.LevelRank[out] {
			out = l
		}
	}
	return out
}

// Propagate derives an action's output trust from the trust of all
// trust-bearing inputs that fed it.
//
// INVARIANT: the output is never less risky than the riskiest input.
func Propagate(levels ...model.TaintLevel) model.TaintLevel {
	return Max(levels...)
}
