package stage

// Walkthrough presents one record at a time from an ordered list and reveals
// its messages in timed phases.
//
// State is (index, phase, generation). The zero value is unusable; build one
// with NewWalkthrough.
type Walkthrough[R any] struct {
	records  []R
	index    int
	phase    Phase
	gen      uint64
	timeline Timeline
}

// View is the render data for a walkthrough: the selected record plus the
// reveal phase. It is derived on every call and never cached.
type View[R any] struct {
	Record R
	Index  int
	Len    int
	Phase  Phase
	Gen    uint64
}

// Visible reports whether the message for phase p is shown.
func (v View[R]) Visible(p Phase) bool { return v.Phase >= p }

// First reports whether the view is on the first record.
func (v View[R]) First() bool { return v.Index == 0 }

// Last reports whether the view is on the last record.
func (v View[R]) Last() bool { return v.Len > 0 && v.Index == v.Len-1 }

// Settled reports whether every message of the record is visible.
func (v View[R]) Settled() bool { return v.Phase >= FinalPhase }

// NewWalkthrough builds a walkthrough over records, starting at (0, PhasePrompt).
// The slice is copied.
func NewWalkthrough[R any](records []R, tl Timeline) (Walkthrough[R], error) {
	if len(records) == 0 {
		return Walkthrough[R]{}, ErrEmptyRecords
	}
	if err := tl.Validate(); err != nil {
		return Walkthrough[R]{}, err
	}
	rs := make([]R, len(records))
	copy(rs, records)
	w := Walkthrough[R]{records: rs, timeline: tl}
	if tl.ReducedMotion {
		w.phase = FinalPhase
	}
	return w, nil
}

// Start (re)starts the reveal for the current selection, as on mount.
func (w *Walkthrough[R]) Start() []Advance {
	return w.GoTo(w.index)
}

// GoTo selects the record at i, clamped to the list bounds, resets the phase
// and returns the reveal schedule for the new selection. Every advance handed
// out before this call becomes stale.
func (w *Walkthrough[R]) GoTo(i int) []Advance {
	if len(w.records) == 0 {
		return nil
	}
	w.index = Clamp(i, len(w.records))
	w.gen++
	w.phase = PhasePrompt
	if w.timeline.ReducedMotion {
		w.phase = FinalPhase
	}
	return w.timeline.schedule(w.gen)
}

// Next moves one record forward. On the last record it does nothing and
// returns nil.
func (w *Walkthrough[R]) Next() []Advance {
	if w.index >= len(w.records)-1 {
		return nil
	}
	return w.GoTo(w.index + 1)
}

// Previous moves one record back. On the first record it does nothing and
// returns nil.
func (w *Walkthrough[R]) Previous() []Advance {
	if w.index <= 0 {
		return nil
	}
	return w.GoTo(w.index - 1)
}

// Apply performs a timed advance. It reports false, leaving the state
// untouched, when the advance belongs to an earlier selection or would not
// move the phase forward.
func (w *Walkthrough[R]) Apply(a Advance) bool {
	if a.Gen != w.gen {
		return false
	}
	if a.Phase <= w.phase || a.Phase > FinalPhase {
		return false
	}
	w.phase = a.Phase
	return true
}

// CurrentView returns the selected record and reveal state.
func (w Walkthrough[R]) CurrentView() View[R] {
	if len(w.records) == 0 {
		return View[R]{}
	}
	return View[R]{
		Record: w.records[w.index],
		Index:  w.index,
		Len:    len(w.records),
		Phase:  w.phase,
		Gen:    w.gen,
	}
}

// Index returns the selected position.
func (w Walkthrough[R]) Index() int { return w.index }

// Phase returns the current reveal phase.
func (w Walkthrough[R]) Phase() Phase { return w.phase }

// Len returns the number of records.
func (w Walkthrough[R]) Len() int { return len(w.records) }

// Complete reports whether the last record is selected.
func (w Walkthrough[R]) Complete() bool {
	return len(w.records) > 0 && w.index == len(w.records)-1
}

// Records returns the record list. Callers must not modify it.
func (w Walkthrough[R]) Records() []R { return w.records }

// Timeline returns the reveal timing in use.
func (w Walkthrough[R]) Timeline() Timeline { return w.timeline }
