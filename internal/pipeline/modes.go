package pipeline

import "errors"

// ErrModesExhausted means every cascade mode produced an unacceptable
// structure. There is no partial output; the document run fails.
var ErrModesExhausted = errors.New("all resolution modes exhausted without an acceptable structure")

// Mode is one strategy in the fallback cascade. Modes are tried
// top-down; each rejection falls through to the next.
type Mode int

const (
	ModeWithPageNumbers Mode = iota
	ModeNoPageNumbers
	ModeNoTOC
)

func (m Mode) String() string {
	switch m {
	case ModeWithPageNumbers:
		return "with_page_numbers"
	case ModeNoPageNumbers:
		return "no_page_numbers"
	case ModeNoTOC:
		return "no_toc"
	}
	return "unknown"
}

// Next returns the fallback mode, or false from the terminal mode.
func (m Mode) Next() (Mode, bool) {
	switch m {
	case ModeWithPageNumbers:
		return ModeNoPageNumbers, true
	case ModeNoPageNumbers:
		return ModeNoTOC, true
	}
	return m, false
}

// Accept thresholds for one verified candidate structure: a perfect
// score is accepted as-is, anything above the repair floor is repaired
// and accepted, anything else falls through to the next mode.
const repairFloor = 0.6
