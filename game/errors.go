package game

import "errors"

// ErrIllegalAction is returned when an action submitted for application is
// not in the legal set at the current state: amount below min-raise, bet
// exceeding stack, or an action of the wrong kind for the betting context.
var ErrIllegalAction = errors.New("game: illegal action")

// ErrInconsistentState signals an internal invariant violation — legal
// actions requested on a terminal state, pot not matching the sum of
// commitments. It indicates a solver bug, not a caller mistake, and must be
// treated as fatal by anything driving the traversal.
var ErrInconsistentState = errors.New("game: inconsistent state")
