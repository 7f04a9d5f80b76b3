package stage

// Selector holds one selected record out of a fixed, unordered list.
// Selection is synchronous: there is no phase and no schedule.
type Selector[R any] struct {
	records []R
	index   int
}

// Selection is the render data for a Selector.
type Selection[R any] struct {
	Record R
	Index  int
	Len    int
}

// NewSelector builds a selector over records with the first one selected.
// The slice is copied.
func NewSelector[R any](records []R) (Selector[R], error) {
	if len(records) == 0 {
		return Selector[R]{}, ErrEmptyRecords
	}
	rs := make([]R, len(records))
	copy(rs, records)
	return Selector[R]{records: rs}, nil
}

// Select picks the record at i, clamped to the list bounds, and reports
// whether the selection changed.
func (s *Selector[R]) Select(i int) bool {
	if len(s.records) == 0 {
		return false
	}
	next := Clamp(i, len(s.records))
	changed := next != s.index
	s.index = next
	return changed
}

// Move shifts the selection by delta, clamped.
func (s *Selector[R]) Move(delta int) bool {
	return s.Select(s.index + delta)
}

// CurrentView returns the selected record.
func (s Selector[R]) CurrentView() Selection[R] {
	if len(s.records) == 0 {
		return Selection[R]{}
	}
	return Selection[R]{
		Record: s.records[s.index],
		Index:  s.index,
		Len:    len(s.records),
	}
}

// Index returns the selected position.
func (s Selector[R]) Index() int { return s.index }

// Len returns the number of records.
func (s Selector[R]) Len() int { return len(s.records) }

// Records returns the record list. Callers must not modify it.
func (s Selector[R]) Records() []R { return s.records }
