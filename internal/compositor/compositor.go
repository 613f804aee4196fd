// Package compositor composes every pane in a client's active tab into
// the single character grid that gets serialized and written to that
// client's terminal, handling floating-pane occlusion and pane frames.
package compositor

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/zellij-org/zellij-go/internal/grid"
	"github.com/zellij-org/zellij-go/internal/screen"
)

// CharacterChunk is one contiguous run of cells on a single output row
// that changed since the last render, ready to be style-diffed and
// written out as one escape sequence plus its run of characters.
type CharacterChunk struct {
	Row   int
	Col   int
	Cells []grid.Cell
}

// Frame is everything a client needs to redraw its terminal: the full
// composed grid (for clients reconnecting or resizing, which need a
// complete repaint) and the list of chunks that changed since the
// client's last render.
type Frame struct {
	Rows, Cols int
	Changed    []CharacterChunk
	CursorRow  int
	CursorCol  int
	CursorShow bool
}

// Compose builds tab's full rendered frame for client. It merges the
// tab's tiled panes (drawn in split-tree order) with its floating pane
// stack (drawn back-to-front so the frontmost floating pane wins ties),
// draws a frame glyph around every pane, and reports only the rows that
// differ from the previous render via each pane's own dirty tracking.
func Compose(tab *screen.Tab, client screen.ClientId, viewport screen.Rect) Frame {
	out := make([][]grid.Cell, viewport.Rows)
	for r := range out {
		out[r] = make([]grid.Cell, viewport.Cols)
		for c := range out[r] {
			out[r][c] = grid.Cell{Char: ' '}
		}
	}
	dirtyRows := make(map[int]bool)

	panes := tab.Panes()
	zOrder := tab.FloatingZOrder()

	if fsId, ok := tab.IsFullscreen(client); ok {
		if p, found := tab.Pane(fsId); found {
			drawPane(out, dirtyRows, p, viewport)
			return frameFromRows(out, dirtyRows, viewport, p)
		}
	}

	for _, p := range panes {
		if p.Floating {
			continue
		}
		drawTiledPane(out, dirtyRows, p, panes, zOrder, viewport)
	}

	for _, id := range zOrder {
		p, ok := tab.Pane(id)
		if !ok {
			continue
		}
		drawPane(out, dirtyRows, p, viewport)
	}

	focused, _ := tab.FocusedPane(client)
	var cursorPane *screen.Pane
	if p, ok := tab.Pane(focused); ok {
		cursorPane = p
	}
	return frameFromRows(out, dirtyRows, viewport, cursorPane)
}

// drawTiledPane draws p's dirty rows like drawPane, but skips the
// column spans any floating pane currently occupies on that row — a
// tiled pane's content never overwrites a floating pane sitting on top
// of it, whether that row is fully covered, covered on just one side,
// or split by the floating pane into a visible left and right part.
func drawTiledPane(out [][]grid.Cell, dirtyRows map[int]bool, p *screen.Pane, panes []*screen.Pane, zOrder []screen.PaneId, viewport screen.Rect) {
	for _, row := range dirtyPaneRows(p) {
		destRow := p.Geom.Y + row
		if destRow < 0 || destRow >= viewport.Rows {
			continue
		}
		occluded := occludedSpans(panes, zOrder, destRow, viewport.Cols)
		visible := visibleSpans(occluded, viewport.Cols)
		line := p.Line(row)
		for _, v := range visible {
			for destCol := v.From; destCol < v.To; destCol++ {
				col := destCol - p.Geom.X
				if col < 0 || col >= len(line.Cells) {
					continue
				}
				out[destRow][destCol] = line.Cells[col]
			}
		}
		dirtyRows[destRow] = true
	}
	drawFrame(out, dirtyRows, p.Geom, viewport)
}

func drawPane(out [][]grid.Cell, dirtyRows map[int]bool, p *screen.Pane, viewport screen.Rect) {
	for _, row := range dirtyPaneRows(p) {
		destRow := p.Geom.Y + row
		if destRow < 0 || destRow >= viewport.Rows {
			continue
		}
		line := p.Line(row)
		for col, cell := range line.Cells {
			destCol := p.Geom.X + col
			if destCol < 0 || destCol >= viewport.Cols {
				continue
			}
			out[destRow][destCol] = cell
		}
		dirtyRows[destRow] = true
	}
	drawFrame(out, dirtyRows, p.Geom, viewport)
}

// dirtyPaneRows returns the rows of p that need redrawing: every row in
// the pane's content area while it's scrolled into its history (since
// Pane.Line is then reading scrollback the Grid's own dirty tracking
// knows nothing about), or just the Grid's dirty set otherwise. Either
// way, TakeDirty is always called so it keeps draining.
func dirtyPaneRows(p *screen.Pane) []int {
	dirty := p.Grid.TakeDirty()
	if !p.Scrolled() {
		return dirty
	}
	rows := make([]int, p.Geom.Rows)
	for i := range rows {
		rows[i] = i
	}
	return rows
}

// drawFrame draws a one-cell border around geom, combining with any
// glyph already present (e.g. a floating pane's frame crossing a tiled
// pane's frame) via CombineBoundary rather than overwriting it.
func drawFrame(out [][]grid.Cell, dirtyRows map[int]bool, geom screen.Rect, viewport screen.Rect) {
	top, bottom := geom.Y-1, geom.Y+geom.Rows
	left, right := geom.X-1, geom.X+geom.Cols

	set := func(r, c int, glyph rune) {
		if r < 0 || r >= viewport.Rows || c < 0 || c >= viewport.Cols {
			return
		}
		existing := out[r][c].Char
		out[r][c] = grid.Cell{Char: CombineBoundary(existing, glyph)}
		dirtyRows[r] = true
	}

	for c := geom.X; c < right; c++ {
		set(top, c, GlyphHorizontal)
		set(bottom, c, GlyphHorizontal)
	}
	for r := geom.Y; r < bottom; r++ {
		set(r, left, GlyphVertical)
		set(r, right, GlyphVertical)
	}
	set(top, left, GlyphTopLeft)
	set(top, right, GlyphTopRight)
	set(bottom, left, GlyphBottomLeft)
	set(bottom, right, GlyphBottomRight)
}

func frameFromRows(out [][]grid.Cell, dirtyRows map[int]bool, viewport screen.Rect, cursorPane *screen.Pane) Frame {
	f := Frame{Rows: viewport.Rows, Cols: viewport.Cols}
	for r := range out {
		if !dirtyRows[r] {
			continue
		}
		f.Changed = append(f.Changed, chunksForRow(r, out[r])...)
	}
	if cursorPane != nil {
		pos := cursorPane.Grid.Cursor()
		f.CursorRow = cursorPane.Geom.Y + pos.Row
		f.CursorCol = cursorPane.Geom.X + pos.Col
		f.CursorShow = cursorPane.Grid.CursorVisible()
	}
	return f
}

// chunksForRow splits one fully-rendered output row into the minimal
// number of CharacterChunks, breaking a chunk only where the cell style
// changes — an unbroken run of identically-styled cells is one chunk so
// the output doesn't emit an escape sequence per character.
func chunksForRow(row int, cells []grid.Cell) []CharacterChunk {
	var chunks []CharacterChunk
	start := 0
	for i := 1; i <= len(cells); i++ {
		if i == len(cells) || !sameStyle(cells[i], cells[start]) {
			chunks = append(chunks, CharacterChunk{Row: row, Col: start, Cells: append([]grid.Cell(nil), cells[start:i]...)})
			start = i
		}
	}
	return chunks
}

func sameStyle(a, b grid.Cell) bool {
	return a.Fg == b.Fg && a.Bg == b.Bg && a.Flags == b.Flags && a.UnderlineColor == b.UnderlineColor && a.Hyperlink == b.Hyperlink
}

// EncodeANSI renders chunk as an escape-sequence-framed run of text,
// emitting an SGR reset/set only at the chunk boundary (the cells
// within a chunk are already known to share one style) and wrapping the
// run in OSC 8 if it carries a hyperlink.
func EncodeANSI(chunk CharacterChunk) []byte {
	var buf bytes.Buffer
	if len(chunk.Cells) == 0 {
		return buf.Bytes()
	}
	style := chunk.Cells[0]
	fmt.Fprintf(&buf, "\x1b[%d;%dH", chunk.Row+1, chunk.Col+1)
	buf.WriteString(sgrFor(style))
	if style.Hyperlink != nil {
		fmt.Fprintf(&buf, "\x1b]8;id=%s;%s\x1b\\", style.Hyperlink.ID, style.Hyperlink.URI)
	}
	for _, cell := range chunk.Cells {
		buf.WriteRune(cell.Char)
	}
	if style.Hyperlink != nil {
		buf.WriteString("\x1b]8;;\x1b\\")
	}
	buf.WriteString("\x1b[0m")
	return buf.Bytes()
}

func sgrFor(c grid.Cell) string {
	var buf bytes.Buffer
	buf.WriteString("\x1b[0")
	if c.HasFlag(grid.FlagBold) {
		buf.WriteString(";1")
	}
	if c.HasFlag(grid.FlagDim) {
		buf.WriteString(";2")
	}
	if c.HasFlag(grid.FlagItalic) {
		buf.WriteString(";3")
	}
	if c.HasFlag(grid.FlagUnderline) {
		buf.WriteString(";4")
	}
	if c.HasFlag(grid.FlagReverse) {
		buf.WriteString(";7")
	}
	if c.HasFlag(grid.FlagStrike) {
		buf.WriteString(";9")
	}
	buf.WriteString("m")
	writeColorSGR(&buf, c.Fg, false)
	writeColorSGR(&buf, c.Bg, true)
	return buf.String()
}

// writeColorSGR appends a truecolor foreground (38;2;r;g;b) or
// background (48;2;r;g;b) SGR sequence for col, or nothing if col is
// nil (the cell uses the terminal's default color).
func writeColorSGR(buf *bytes.Buffer, col color.Color, background bool) {
	if col == nil {
		return
	}
	r, g, b, _ := col.RGBA()
	base := 38
	if background {
		base = 48
	}
	fmt.Fprintf(buf, "\x1b[%d;2;%d;%d;%dm", base, r>>8, g>>8, b>>8)
}
