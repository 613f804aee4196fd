package grid

import (
	"image/color"

	"github.com/danielgatis/go-ansicode"
	"github.com/mattn/go-runewidth"
)

var _ ansicode.Handler = (*Grid)(nil)

// modeSet records the opaque mode bits SetMode/UnsetMode calls carry. go-ansicode
// identifies modes by ansicode.TerminalMode value; the Grid does not
// need to know what each one means except line-wrap and insert, which
// it consults directly on every Input call, and cursor visibility,
// which the Compositor reads back through CursorVisible.
type modeSet map[ansicode.TerminalMode]bool

// Grid is one pane's terminal emulator state: two screens (primary with
// scrollback, alternate without), cursor, saved cursor, tab stops,
// scrolling region, and the modes that change how Input/LineFeed behave.
// It implements ansicode.Handler so an ansicode.Decoder can drive it
// directly from raw PTY bytes.
type Grid struct {
	rows, cols int

	primary   []Row
	alternate []Row
	active    *[]Row
	altScreen bool

	above *scrollback

	cursor      Position
	savedCursor SavedCursor
	template    Cell

	scrollTop, scrollBottom int
	tabStops                map[int]bool

	modes             modeSet
	wrap              bool
	insert            bool
	origin            bool
	keypadApplication bool

	charsets      [4]ansicode.Charset
	activeCharset int

	title      string
	titleStack []string

	palette map[int]color.Color

	currentHyperlink *Hyperlink

	cursorStyle   CursorShape
	cursorVisible bool

	workingDir string

	dirty map[int]bool

	respond      func([]byte)
	clipboard    func(sel byte, data []byte)
	clipboardGet func(sel byte) []byte
	bell         func()
}

// ScrollbackLimit bounds how many lines are retained above the viewport,
// per-pane (spec's scrollback eviction bound).
const ScrollbackLimit = 10000

// New creates a Grid sized rows x cols with default modes (line wrap and
// cursor visibility on, matching a freshly reset VT220-class terminal).
func New(rows, cols int) *Grid {
	if rows <= 0 {
		rows = 24
	}
	if cols <= 0 {
		cols = 80
	}
	g := &Grid{
		rows: rows, cols: cols,
		primary:       makeRows(rows, cols),
		alternate:     makeRows(rows, cols),
		above:         newScrollback(ScrollbackLimit),
		scrollBottom:  rows - 1,
		tabStops:      defaultTabStops(cols),
		modes:         make(modeSet),
		wrap:          true,
		cursorVisible: true,
		palette:       defaultPalette(),
		dirty:         make(map[int]bool),
	}
	g.active = &g.primary
	return g
}

// defaultPalette seeds the dynamic-color slots (10 = foreground, 11 =
// background) a child queries via OSC 10/11 before the pane has ever
// received an explicit SetColor. Assumes a dark terminal (white on
// black), the same default a COLORFGBG-less environment falls back to.
func defaultPalette() map[int]color.Color {
	return map[int]color.Color{
		10: color.White,
		11: color.Black,
	}
}

// SetOutputs wires the side-effect callbacks the Grid needs for requests
// that must leave the pane: writing a response back to the child
// (DeviceStatus/IdentifyTerminal), clipboard I/O (OSC 52), and the bell.
// All three default to no-ops when unset.
func (g *Grid) SetOutputs(respond func([]byte), clipboardSet func(byte, []byte), clipboardGet func(byte) []byte, bell func()) {
	g.respond, g.clipboard, g.clipboardGet, g.bell = respond, clipboardSet, clipboardGet, bell
}

func makeRows(rows, cols int) []Row {
	out := make([]Row, rows)
	for i := range out {
		out[i] = NewRow(cols)
	}
	return out
}

func defaultTabStops(cols int) map[int]bool {
	stops := make(map[int]bool)
	for c := 8; c < cols; c += 8 {
		stops[c] = true
	}
	return stops
}

// Rows and Cols report the current viewport dimensions.
func (g *Grid) Rows() int { return g.rows }
func (g *Grid) Cols() int { return g.cols }

// Cursor returns the cursor's current viewport position.
func (g *Grid) Cursor() Position { return g.cursor }

// CursorVisible reports whether the cursor should be drawn.
func (g *Grid) CursorVisible() bool { return g.cursorVisible }

// CursorShape reports the active cursor glyph.
func (g *Grid) CursorShape() CursorShape { return g.cursorStyle }

// Title returns the current window/tab title (OSC 0/2).
func (g *Grid) Title() string { return g.title }

// WorkingDirectory returns the last OSC-7 reported cwd, or "" if none.
func (g *Grid) WorkingDirectory() string { return g.workingDir }

// Line returns one row of the active screen by viewport index. Returns
// the zero Row for an out-of-range index.
func (g *Grid) Line(row int) Row {
	active := *g.active
	if row < 0 || row >= len(active) {
		return Row{}
	}
	return active[row]
}

// ScrollbackLine returns a line above the viewport, 0 = most recently
// scrolled off. Returns ok=false past the retained history.
func (g *Grid) ScrollbackLine(n int) (Row, bool) {
	if g.altScreen {
		return Row{}, false
	}
	return g.above.at(n)
}

// ScrollbackLen reports how many lines of history are retained.
func (g *Grid) ScrollbackLen() int {
	if g.altScreen {
		return 0
	}
	return g.above.len()
}

// ClearScrollback discards all retained history above the viewport,
// used by the ClearScroll action.
func (g *Grid) ClearScrollback() {
	g.above.clear()
}

// TakeDirty returns the set of viewport rows touched since the last
// call and clears it, used by the Compositor to extract changed chunks.
func (g *Grid) TakeDirty() []int {
	rows := make([]int, 0, len(g.dirty))
	for r := range g.dirty {
		rows = append(rows, r)
	}
	g.dirty = make(map[int]bool)
	return rows
}

func (g *Grid) markDirty(row int) { g.dirty[row] = true }

// Resize changes the viewport dimensions in place. Existing content is
// preserved top-left-anchored; rows/cols beyond the new size are
// dropped, new ones are blank. Matches TerminalResize idempotence: an
// identical (rows, cols) call is a no-op.
func (g *Grid) Resize(rows, cols int) {
	if rows == g.rows && cols == g.cols {
		return
	}
	g.primary = resizeRows(g.primary, rows, cols)
	g.alternate = resizeRows(g.alternate, rows, cols)
	g.rows, g.cols = rows, cols
	if g.scrollBottom >= rows {
		g.scrollBottom = rows - 1
	}
	if g.cursor.Row >= rows {
		g.cursor.Row = rows - 1
	}
	if g.cursor.Col >= cols {
		g.cursor.Col = cols - 1
	}
	g.tabStops = defaultTabStops(cols)
	for r := 0; r < rows; r++ {
		g.markDirty(r)
	}
}

func resizeRows(rows []Row, newRows, newCols int) []Row {
	out := make([]Row, newRows)
	for i := range out {
		out[i] = NewRow(newCols)
	}
	for i := 0; i < len(rows) && i < newRows; i++ {
		for c := 0; c < len(rows[i].Cells) && c < newCols; c++ {
			out[i].Cells[c] = rows[i].Cells[c]
		}
		out[i].Wrapped = rows[i].Wrapped
	}
	return out
}

// Write feeds raw PTY bytes through an ansicode.Decoder bound to this
// Grid. Callers construct the decoder once (ansicode.NewDecoder(grid))
// and reuse it, since it carries UTF-8 decode state across writes.
func (g *Grid) Write(decoder *ansicode.Decoder, data []byte) {
	decoder.Write(data)
}

func runeCellWidth(r rune) int {
	return runewidth.RuneWidth(r)
}
