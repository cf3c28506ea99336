package table

// Direction is the order applied to data rows.
type Direction int

const (
	None Direction = iota
	Ascending
	Descending
)

func (d Direction) String() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return "none"
	}
}

// Indicator is the marker drawn next to a sorted header.
func (d Direction) Indicator() string {
	switch d {
	case Ascending:
		return "▲"
	case Descending:
		return "▼"
	default:
		return ""
	}
}

// NoColumn is the Column of an unsorted state.
const NoColumn = -1

// SortState is the column and direction applied to the grid.
type SortState struct {
	Column    int
	Direction Direction
}

// Unsorted returns the initial state.
func Unsorted() SortState {
	return SortState{Column: NoColumn, Direction: None}
}

// Sorted reports whether the state reorders rows.
func (s SortState) Sorted() bool {
	return s.Direction != None && s.Column >= 0
}

// DirectionFor returns the direction applied to column, None if the column is
// not the sorted one.
func (s SortState) DirectionFor(column int) Direction {
	if !s.Sorted() || s.Column != column {
		return None
	}
	return s.Direction
}

// Next is the transition taken when the header of column is activated:
// another column becomes ascending, ascending becomes descending, and
// descending clears the sort.
func Next(s SortState, column int) SortState {
	if !s.Sorted() || s.Column != column {
		return SortState{Column: column, Direction: Ascending}
	}
	if s.Direction == Ascending {
		return SortState{Column: column, Direction: Descending}
	}
	return Unsorted()
}

// SortHolder owns the sort state of one view. It is not safe for concurrent
// use; the UI loop is its only writer.
type SortHolder struct {
	state           SortState
	resetOnModeExit bool
}

// NewSortHolder returns an unsorted holder. When resetOnModeExit is set,
// leaving preview mode clears the sort.
func NewSortHolder(resetOnModeExit bool) *SortHolder {
	return &SortHolder{state: Unsorted(), resetOnModeExit: resetOnModeExit}
}

// State returns the current sort state.
func (h *SortHolder) State() SortState {
	return h.state
}

// Activate applies a header activation on column and returns the new state.
func (h *SortHolder) Activate(column int) SortState {
	h.state = Next(h.state, column)
	return h.state
}

// ModeExited is called when the view leaves preview mode.
func (h *SortHolder) ModeExited() {
	if h.resetOnModeExit {
		h.Reset()
	}
}

// ResetOnModeExit reports the configured mode-exit behavior.
func (h *SortHolder) ResetOnModeExit() bool {
	return h.resetOnModeExit
}

// Reset clears the sort.
func (h *SortHolder) Reset() {
	h.state = Unsorted()
}
