// Package grid implements the Terminal Emulator Grid: per-pane character
// storage, cursor state, and scrollback, driven by a byte stream that has
// already been parsed into Perform-style events. Grid implements
// ansicode.Handler directly so github.com/danielgatis/go-ansicode's
// decoder can drive it without an intermediate terminal-emulation layer.
package grid

import "image/color"

// CellFlags is a bitmask of rendering attributes carried on a cell,
// independent of its foreground/background color.
type CellFlags uint16

const (
	FlagBold CellFlags = 1 << iota
	FlagDim
	FlagItalic
	FlagUnderline
	FlagDoubleUnderline
	FlagCurlyUnderline
	FlagBlinkSlow
	FlagBlinkFast
	FlagReverse
	FlagHidden
	FlagStrike
	FlagWide
	FlagWideSpacer
)

// Hyperlink associates a cell with an OSC-8 clickable link.
type Hyperlink struct {
	ID  string
	URI string
}

// Cell is one character position: a rune plus its style.
type Cell struct {
	Char           rune
	Fg             color.Color
	Bg             color.Color
	UnderlineColor color.Color
	Flags          CellFlags
	Hyperlink      *Hyperlink
}

// Reset returns a cell to its blank, unstyled state.
func (c *Cell) Reset() {
	*c = Cell{Char: ' '}
}

// HasFlag reports whether flag is set.
func (c Cell) HasFlag(flag CellFlags) bool { return c.Flags&flag != 0 }

// Row is one line of cells plus whether it line-wrapped into the next
// row (so reflow/copy operations know not to treat the boundary as a
// hard newline).
type Row struct {
	Cells   []Cell
	Wrapped bool
}

// NewRow allocates a row of cols blank cells.
func NewRow(cols int) Row {
	cells := make([]Cell, cols)
	for i := range cells {
		cells[i] = Cell{Char: ' '}
	}
	return Row{Cells: cells}
}

// Position is a zero-based (row, col) grid coordinate.
type Position struct {
	Row int
	Col int
}

// SavedCursor is the state captured by SaveCursorPosition/DECSC and
// restored by RestoreCursorPosition/DECRC.
type SavedCursor struct {
	Pos    Position
	Style  Cell
	Origin bool
}

// CursorShape selects the on-screen cursor glyph.
type CursorShape int

const (
	CursorBlock CursorShape = iota
	CursorUnderline
	CursorBar
)
