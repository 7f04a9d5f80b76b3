// Package stage holds the selection state machines behind the deck's
// interactive widgets.
//
// Two components are provided, both owning a single clamped index into an
// immutable record list:
//
//   - Walkthrough steps through an ordered list and discloses each record's
//     messages over timed phases. Every selection change bumps a generation
//     counter; a timed Advance carries the generation it was scheduled under
//     and is ignored once that generation is no longer current.
//   - Selector picks one record from an unordered list with no timing at all.
//
// Neither component starts timers itself. GoTo returns the schedule of
// advances and the caller's event loop (bubbletea in pkg/ui, Player for
// headless use) feeds them back through Apply when they fall due.
package stage

import "errors"

// ErrEmptyRecords is returned when a component is built over an empty list.
var ErrEmptyRecords = errors.New("stage: record list is empty")

// Clamp limits i to the index range of a list of length n.
// n must be positive.
func Clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}
