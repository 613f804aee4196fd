package grid

import (
	"encoding/base64"
	"fmt"
	"image/color"

	"github.com/danielgatis/go-ansicode"
)

// Input places one decoded rune at the cursor, handling line wrap, insert
// mode, and wide-character spacer cells.
func (g *Grid) Input(r rune) {
	if g.activeCharset >= 0 && g.activeCharset < 4 && g.charsets[g.activeCharset] == ansicode.CharsetLineDrawing {
		r = translateLineDrawing(r)
	}

	width := runeCellWidth(r)
	if width == 0 {
		return
	}

	if g.cursor.Col+width > g.cols {
		if g.wrap {
			(*g.active)[g.cursor.Row].Wrapped = true
			g.cursor.Col = 0
			g.cursor.Row++
			if g.cursor.Row > g.scrollBottom {
				g.scrollUpRegion(1)
				g.cursor.Row = g.scrollBottom
			}
		} else if width == 2 {
			return
		} else {
			g.cursor.Col = g.cols - 1
		}
	}

	if g.insert {
		g.insertBlanksAt(g.cursor.Row, g.cursor.Col, width)
	}

	row := &(*g.active)[g.cursor.Row]
	if g.cursor.Col < g.cols {
		cell := &row.Cells[g.cursor.Col]
		*cell = g.template
		cell.Char = r
		cell.Hyperlink = g.currentHyperlink
		if width == 2 {
			cell.Flags |= FlagWide
		}
		g.markDirty(g.cursor.Row)
	}
	g.cursor.Col++
	if width == 2 && g.cursor.Col < g.cols {
		spacer := &row.Cells[g.cursor.Col]
		spacer.Reset()
		spacer.Fg, spacer.Bg = g.template.Fg, g.template.Bg
		spacer.Flags = FlagWideSpacer
		g.cursor.Col++
	}
	if g.cursor.Col > g.cols-1 && !g.wrap {
		g.cursor.Col = g.cols - 1
	}
}

func translateLineDrawing(r rune) rune {
	switch r {
	case 'j':
		return '┘'
	case 'k':
		return '┐'
	case 'l':
		return '┌'
	case 'm':
		return '└'
	case 'n':
		return '┼'
	case 'q':
		return '─'
	case 't':
		return '├'
	case 'u':
		return '┤'
	case 'v':
		return '┴'
	case 'w':
		return '┬'
	case 'x':
		return '│'
	default:
		return r
	}
}

func (g *Grid) insertBlanksAt(row, col, n int) {
	cells := (*g.active)[row].Cells
	if col >= len(cells) {
		return
	}
	copy(cells[col+n:], cells[col:len(cells)-n])
	for i := col; i < col+n && i < len(cells); i++ {
		cells[i] = Cell{Char: ' '}
	}
}

// Backspace moves the cursor left one column, stopping at column 0.
func (g *Grid) Backspace() {
	if g.cursor.Col > 0 {
		g.cursor.Col--
	}
}

// Bell invokes the bell callback, if any.
func (g *Grid) Bell() {
	if g.bell != nil {
		g.bell()
	}
}

// CarriageReturn moves the cursor to column 0.
func (g *Grid) CarriageReturn() { g.cursor.Col = 0 }

// ClearLine clears part or all of the cursor's row.
func (g *Grid) ClearLine(mode ansicode.LineClearMode) {
	row := &(*g.active)[g.cursor.Row]
	switch mode {
	case ansicode.LineClearModeRight:
		clearRange(row, g.cursor.Col, g.cols)
	case ansicode.LineClearModeLeft:
		clearRange(row, 0, g.cursor.Col+1)
	case ansicode.LineClearModeAll:
		clearRange(row, 0, g.cols)
	}
	g.markDirty(g.cursor.Row)
}

func clearRange(row *Row, from, to int) {
	for i := from; i < to && i < len(row.Cells); i++ {
		row.Cells[i] = Cell{Char: ' '}
	}
}

// ClearScreen clears part or all of the active screen.
func (g *Grid) ClearScreen(mode ansicode.ClearMode) {
	switch mode {
	case ansicode.ClearModeBelow:
		clearRange(&(*g.active)[g.cursor.Row], g.cursor.Col, g.cols)
		for r := g.cursor.Row + 1; r < g.rows; r++ {
			clearRange(&(*g.active)[r], 0, g.cols)
			g.markDirty(r)
		}
	case ansicode.ClearModeAbove:
		for r := 0; r < g.cursor.Row; r++ {
			clearRange(&(*g.active)[r], 0, g.cols)
			g.markDirty(r)
		}
		clearRange(&(*g.active)[g.cursor.Row], 0, g.cursor.Col+1)
	case ansicode.ClearModeAll, ansicode.ClearModeSaved:
		for r := 0; r < g.rows; r++ {
			clearRange(&(*g.active)[r], 0, g.cols)
			g.markDirty(r)
		}
	}
	g.markDirty(g.cursor.Row)
}

// ClearTabs removes the tab stop at the cursor, or all tab stops.
func (g *Grid) ClearTabs(mode ansicode.TabulationClearMode) {
	switch mode {
	case ansicode.TabulationClearModeCurrent:
		delete(g.tabStops, g.cursor.Col)
	case ansicode.TabulationClearModeAll:
		g.tabStops = make(map[int]bool)
	}
}

// ClipboardLoad answers an OSC-52 read request with the current
// clipboard contents, base64-encoded, through the respond callback.
func (g *Grid) ClipboardLoad(clipboard byte, terminator string) {
	if g.clipboardGet == nil || g.respond == nil {
		return
	}
	data := g.clipboardGet(clipboard)
	payload := fmt.Sprintf("\x1b]52;%c;%s%s", clipboard, base64.StdEncoding.EncodeToString(data), terminator)
	g.respond([]byte(payload))
}

// ClipboardStore writes base64-decoded OSC-52 data to the clipboard
// callback.
func (g *Grid) ClipboardStore(clipboard byte, data []byte) {
	if g.clipboard == nil {
		return
	}
	decoded := make([]byte, base64.StdEncoding.DecodedLen(len(data)))
	n, err := base64.StdEncoding.Decode(decoded, data)
	if err != nil {
		return
	}
	g.clipboard(clipboard, decoded[:n])
}

// ConfigureCharset designates charset into one of the four G0-G3 slots.
func (g *Grid) ConfigureCharset(index ansicode.CharsetIndex, charset ansicode.Charset) {
	if idx := int(index); idx >= 0 && idx < 4 {
		g.charsets[idx] = charset
	}
}

// Decaln fills the screen with 'E' (DEC alignment test).
func (g *Grid) Decaln() {
	for r := 0; r < g.rows; r++ {
		row := &(*g.active)[r]
		for c := range row.Cells {
			row.Cells[c] = Cell{Char: 'E'}
		}
		g.markDirty(r)
	}
}

// DeleteChars removes n cells at the cursor, shifting the remainder of
// the row left and filling the vacated tail with blanks.
func (g *Grid) DeleteChars(n int) {
	row := &(*g.active)[g.cursor.Row]
	cells := row.Cells
	col := g.cursor.Col
	if col >= len(cells) {
		return
	}
	if n > len(cells)-col {
		n = len(cells) - col
	}
	copy(cells[col:], cells[col+n:])
	for i := len(cells) - n; i < len(cells); i++ {
		cells[i] = Cell{Char: ' '}
	}
	g.markDirty(g.cursor.Row)
}

// DeleteLines removes n lines at the cursor's row within the scrolling
// region, shifting lines below up.
func (g *Grid) DeleteLines(n int) {
	g.deleteLinesInRegion(g.cursor.Row, n)
}

func (g *Grid) deleteLinesInRegion(at, n int) {
	active := *g.active
	bottom := g.scrollBottom
	if at < g.scrollTop || at > bottom {
		return
	}
	for i := 0; i < n; i++ {
		copy(active[at:bottom], active[at+1:bottom+1])
		active[bottom] = NewRow(g.cols)
	}
	for r := at; r <= bottom; r++ {
		g.markDirty(r)
	}
}

// DeviceStatus answers a device status / cursor position report.
func (g *Grid) DeviceStatus(n int) {
	if g.respond == nil {
		return
	}
	switch n {
	case 5:
		g.respond([]byte("\x1b[0n"))
	case 6:
		g.respond([]byte(fmt.Sprintf("\x1b[%d;%dR", g.cursor.Row+1, g.cursor.Col+1)))
	}
}

// EraseChars blanks n cells at the cursor without shifting the row.
func (g *Grid) EraseChars(n int) {
	clearRange(&(*g.active)[g.cursor.Row], g.cursor.Col, g.cursor.Col+n)
	g.markDirty(g.cursor.Row)
}

// Goto moves the cursor to an absolute row/col, clamped to the grid.
func (g *Grid) Goto(row, col int) {
	g.cursor.Row = clamp(row, 0, g.rows-1)
	g.cursor.Col = clamp(col, 0, g.cols-1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// GotoCol moves the cursor to an absolute column on the current row.
func (g *Grid) GotoCol(col int) { g.cursor.Col = clamp(col, 0, g.cols-1) }

// GotoLine moves the cursor to an absolute row on the current column.
func (g *Grid) GotoLine(row int) { g.cursor.Row = clamp(row, 0, g.rows-1) }

// HorizontalTabSet sets a tab stop at the cursor's column.
func (g *Grid) HorizontalTabSet() { g.tabStops[g.cursor.Col] = true }

// IdentifyTerminal answers a DA (device attributes) request.
func (g *Grid) IdentifyTerminal(b byte) {
	if g.respond != nil {
		g.respond([]byte("\x1b[?1;2c"))
	}
}

// InsertBlank inserts n blanks at the cursor, shifting the row right.
func (g *Grid) InsertBlank(n int) { g.insertBlanksAt(g.cursor.Row, g.cursor.Col, n) }

// InsertBlankLines inserts n blank lines at the cursor within the
// scrolling region, shifting lines below down.
func (g *Grid) InsertBlankLines(n int) {
	active := *g.active
	at, bottom := g.cursor.Row, g.scrollBottom
	if at < g.scrollTop || at > bottom {
		return
	}
	for i := 0; i < n; i++ {
		copy(active[at+1:bottom+1], active[at:bottom])
		active[at] = NewRow(g.cols)
	}
	for r := at; r <= bottom; r++ {
		g.markDirty(r)
	}
}

// LineFeed moves the cursor down one row, scrolling the region (and, on
// the primary screen, evicting into scrollback) when already at the
// bottom margin.
func (g *Grid) LineFeed() {
	if g.cursor.Row == g.scrollBottom {
		g.scrollUpRegion(1)
	} else if g.cursor.Row < g.rows-1 {
		g.cursor.Row++
	}
}

// scrollUpRegion shifts the scrolling region up by n lines. On the
// primary screen with the default full-height region, evicted lines are
// pushed to scrollback; the alternate screen and non-default regions
// discard them, matching a real terminal's no-scrollback-in-altscreen
// behavior.
func (g *Grid) scrollUpRegion(n int) {
	active := *g.active
	top, bottom := g.scrollTop, g.scrollBottom
	keepHistory := !g.altScreen && top == 0 && bottom == g.rows-1
	for i := 0; i < n; i++ {
		if keepHistory {
			g.above.push(active[top])
		}
		copy(active[top:bottom], active[top+1:bottom+1])
		active[bottom] = NewRow(g.cols)
	}
	for r := top; r <= bottom; r++ {
		g.markDirty(r)
	}
}

// MoveBackward moves the cursor left n columns.
func (g *Grid) MoveBackward(n int) { g.cursor.Col = clamp(g.cursor.Col-n, 0, g.cols-1) }

// MoveBackwardTabs moves the cursor left across n tab stops.
func (g *Grid) MoveBackwardTabs(n int) {
	for ; n > 0; n-- {
		c := g.cursor.Col - 1
		for c > 0 && !g.tabStops[c] {
			c--
		}
		g.cursor.Col = clamp(c, 0, g.cols-1)
	}
}

// MoveDown moves the cursor down n rows without regard to margins.
func (g *Grid) MoveDown(n int) { g.cursor.Row = clamp(g.cursor.Row+n, 0, g.rows-1) }

// MoveDownCr moves the cursor down n rows and to column 0.
func (g *Grid) MoveDownCr(n int) {
	g.MoveDown(n)
	g.cursor.Col = 0
}

// MoveForward moves the cursor right n columns.
func (g *Grid) MoveForward(n int) { g.cursor.Col = clamp(g.cursor.Col+n, 0, g.cols-1) }

// MoveForwardTabs moves the cursor right across n tab stops.
func (g *Grid) MoveForwardTabs(n int) {
	for ; n > 0; n-- {
		c := g.cursor.Col + 1
		for c < g.cols-1 && !g.tabStops[c] {
			c++
		}
		g.cursor.Col = clamp(c, 0, g.cols-1)
	}
}

// MoveUp moves the cursor up n rows without regard to margins.
func (g *Grid) MoveUp(n int) { g.cursor.Row = clamp(g.cursor.Row-n, 0, g.rows-1) }

// MoveUpCr moves the cursor up n rows and to column 0.
func (g *Grid) MoveUpCr(n int) {
	g.MoveUp(n)
	g.cursor.Col = 0
}

// PopKeyboardMode is a no-op: the Grid does not track the Kitty keyboard
// protocol mode stack itself (the Input Router owns key-encoding
// decisions); it only needs to absorb the escape sequence harmlessly.
func (g *Grid) PopKeyboardMode(n int) {}

// PopTitle restores the most recently pushed title.
func (g *Grid) PopTitle() {
	if n := len(g.titleStack); n > 0 {
		g.title = g.titleStack[n-1]
		g.titleStack = g.titleStack[:n-1]
	}
}

// PrivacyMessageReceived discards PM strings; no pane feature consumes
// them.
func (g *Grid) PrivacyMessageReceived(data []byte) {}

// PushKeyboardMode is a no-op for the same reason as PopKeyboardMode.
func (g *Grid) PushKeyboardMode(mode ansicode.KeyboardMode) {}

// PushTitle saves the current title on the title stack.
func (g *Grid) PushTitle() { g.titleStack = append(g.titleStack, g.title) }

// ReportKeyboardMode answers with the default (disabled) keyboard
// protocol mode, since the Grid does not implement it.
func (g *Grid) ReportKeyboardMode() {
	if g.respond != nil {
		g.respond([]byte("\x1b[?0u"))
	}
}

// ReportModifyOtherKeys answers with "not set".
func (g *Grid) ReportModifyOtherKeys() {
	if g.respond != nil {
		g.respond([]byte("\x1b[>4;0m"))
	}
}

// ResetColor clears a palette override back to the default.
func (g *Grid) ResetColor(i int) { delete(g.palette, i) }

// ResetState restores the Grid to its power-on defaults (a soft reset).
func (g *Grid) ResetState() {
	fresh := New(g.rows, g.cols)
	fresh.respond, fresh.clipboard, fresh.clipboardGet, fresh.bell = g.respond, g.clipboard, g.clipboardGet, g.bell
	*g = *fresh
}

// RestoreCursorPosition restores the cursor and template saved by
// SaveCursorPosition.
func (g *Grid) RestoreCursorPosition() {
	g.cursor = g.savedCursor.Pos
	g.template = g.savedCursor.Style
	g.origin = g.savedCursor.Origin
}

// ReverseIndex moves the cursor up one row, scrolling the region down
// when already at the top margin (the inverse of LineFeed).
func (g *Grid) ReverseIndex() {
	if g.cursor.Row == g.scrollTop {
		g.scrollDownRegion(1)
	} else if g.cursor.Row > 0 {
		g.cursor.Row--
	}
}

func (g *Grid) scrollDownRegion(n int) {
	active := *g.active
	top, bottom := g.scrollTop, g.scrollBottom
	for i := 0; i < n; i++ {
		copy(active[top+1:bottom+1], active[top:bottom])
		active[top] = NewRow(g.cols)
	}
	for r := top; r <= bottom; r++ {
		g.markDirty(r)
	}
}

// SaveCursorPosition records the cursor, template, and origin mode for a
// later RestoreCursorPosition (DECSC).
func (g *Grid) SaveCursorPosition() {
	g.savedCursor = SavedCursor{Pos: g.cursor, Style: g.template, Origin: g.origin}
}

// ScrollDown shifts the scrolling region's content down n lines (DECDSL).
func (g *Grid) ScrollDown(n int) { g.scrollDownRegion(n) }

// ScrollUp shifts the scrolling region's content up n lines (DECSL).
func (g *Grid) ScrollUp(n int) { g.scrollUpRegion(n) }

// SetActiveCharset selects which of the four designated charsets (G0-G3)
// is active.
func (g *Grid) SetActiveCharset(n int) {
	if n >= 0 && n < 4 {
		g.activeCharset = n
	}
}

// SetColor overrides a palette index (OSC 4).
func (g *Grid) SetColor(index int, c color.Color) { g.palette[index] = c }

// SetCursorStyle changes the cursor glyph (block/underline/bar),
// following the standard DECSCUSR numbering (1-2 block, 3-4 underline,
// 5-6 bar; odd values blink, even values are steady — blink state is a
// client rendering concern, not tracked here).
func (g *Grid) SetCursorStyle(style ansicode.CursorStyle) {
	switch (int(style) + 1) / 2 {
	case 1:
		g.cursorStyle = CursorBlock
	case 2:
		g.cursorStyle = CursorUnderline
	case 3:
		g.cursorStyle = CursorBar
	}
}

// SetDynamicColor answers an OSC 10/11/etc. color query with the
// requested palette entry: the defaultPalette seed or whatever
// ResetColor/SetColor last established. An index with no entry gets no
// reply. The attaching terminal's own colors are not consulted here.
func (g *Grid) SetDynamicColor(prefix string, index int, terminator string) {
	if g.respond == nil {
		return
	}
	c, ok := g.palette[index]
	if !ok {
		return
	}
	r, gr, b, _ := c.RGBA()
	g.respond([]byte(fmt.Sprintf("\x1b]%s;rgb:%04x/%04x/%04x%s", prefix, r, gr, b, terminator)))
}

// SetHyperlink sets or clears the hyperlink attached to subsequently
// written cells (OSC 8).
func (g *Grid) SetHyperlink(hyperlink *ansicode.Hyperlink) {
	if hyperlink == nil {
		g.currentHyperlink = nil
		return
	}
	g.currentHyperlink = &Hyperlink{ID: hyperlink.ID, URI: hyperlink.URI}
}

// SetKeyboardMode is a no-op; see PushKeyboardMode.
func (g *Grid) SetKeyboardMode(mode ansicode.KeyboardMode, behavior ansicode.KeyboardModeBehavior) {}

// SetKeypadApplicationMode flips the cursor-key encoding the Input
// Router should use; the Input Router reads it back through
// KeypadApplicationMode.
func (g *Grid) SetKeypadApplicationMode() { g.keypadApplication = true }

// UnsetKeypadApplicationMode reverts to numeric keypad encoding.
func (g *Grid) UnsetKeypadApplicationMode() { g.keypadApplication = false }

// KeypadApplicationMode reports the state toggled by
// Set/UnsetKeypadApplicationMode.
func (g *Grid) KeypadApplicationMode() bool { return g.keypadApplication }

// SetMode records a terminal mode bit as active, and special-cases the
// few bits Grid must act on directly: line wrap and insert mode (which
// Input consults on every call), origin mode (which re-homes the cursor
// to the scrolling region), cursor visibility, and the primary<->
// alternate screen swap (DECSET 1049), which saves the cursor and
// switches the active buffer without scrollback.
func (g *Grid) SetMode(mode ansicode.TerminalMode) {
	g.modes[mode] = true
	switch mode {
	case ansicode.TerminalModeLineWrap:
		g.wrap = true
	case ansicode.TerminalModeInsert:
		g.insert = true
	case ansicode.TerminalModeOrigin:
		g.origin = true
		g.cursor = Position{Row: g.scrollTop, Col: 0}
	case ansicode.TerminalModeShowCursor:
		g.cursorVisible = true
	case ansicode.TerminalModeSwapScreenAndSetRestoreCursor:
		g.EnterAlternateScreen()
	}
}

// UnsetMode clears a mode bit set by SetMode.
func (g *Grid) UnsetMode(mode ansicode.TerminalMode) {
	delete(g.modes, mode)
	switch mode {
	case ansicode.TerminalModeLineWrap:
		g.wrap = false
	case ansicode.TerminalModeInsert:
		g.insert = false
	case ansicode.TerminalModeOrigin:
		g.origin = false
	case ansicode.TerminalModeShowCursor:
		g.cursorVisible = false
	case ansicode.TerminalModeSwapScreenAndSetRestoreCursor:
		g.ExitAlternateScreen()
	}
}

// EnterAlternateScreen saves the cursor and switches rendering to the
// alternate buffer, which carries no scrollback.
func (g *Grid) EnterAlternateScreen() {
	if g.altScreen {
		return
	}
	g.SaveCursorPosition()
	g.altScreen = true
	g.active = &g.alternate
	for r := range g.alternate {
		g.alternate[r] = NewRow(g.cols)
	}
}

// ExitAlternateScreen switches rendering back to the primary buffer and
// restores the cursor saved on entry.
func (g *Grid) ExitAlternateScreen() {
	if !g.altScreen {
		return
	}
	g.altScreen = false
	g.active = &g.primary
	g.RestoreCursorPosition()
}

// InAlternateScreen reports whether the alternate buffer is active.
func (g *Grid) InAlternateScreen() bool { return g.altScreen }

// SetModifyOtherKeys is a no-op; the Input Router owns key encoding.
func (g *Grid) SetModifyOtherKeys(modify ansicode.ModifyOtherKeys) {}

// SetScrollingRegion sets the DECSTBM scrolling margins (1-based,
// inclusive), clamped to the grid and defaulting to the full height
// when given an empty or inverted range.
func (g *Grid) SetScrollingRegion(top, bottom int) {
	top--
	bottom--
	if top < 0 {
		top = 0
	}
	if bottom >= g.rows || bottom < top {
		bottom = g.rows - 1
	}
	g.scrollTop, g.scrollBottom = top, bottom
	g.cursor = Position{Row: top, Col: 0}
}

// StartOfStringReceived discards SOS strings; no pane feature consumes
// them.
func (g *Grid) StartOfStringReceived(data []byte) {}

// SetTerminalCharAttribute updates the SGR template applied to
// subsequently written cells.
func (g *Grid) SetTerminalCharAttribute(attr ansicode.TerminalCharAttribute) {
	switch attr.Attr {
	case ansicode.CharAttributeReset:
		g.template = Cell{Char: ' '}
	case ansicode.CharAttributeBold:
		g.template.Flags |= FlagBold
	case ansicode.CharAttributeDim:
		g.template.Flags |= FlagDim
	case ansicode.CharAttributeItalic:
		g.template.Flags |= FlagItalic
	case ansicode.CharAttributeUnderline:
		g.template.Flags = g.template.Flags&^(FlagDoubleUnderline|FlagCurlyUnderline) | FlagUnderline
	case ansicode.CharAttributeDoubleUnderline:
		g.template.Flags = g.template.Flags&^(FlagUnderline|FlagCurlyUnderline) | FlagDoubleUnderline
	case ansicode.CharAttributeBlinkSlow:
		g.template.Flags |= FlagBlinkSlow
	case ansicode.CharAttributeBlinkFast:
		g.template.Flags |= FlagBlinkFast
	case ansicode.CharAttributeReverse:
		g.template.Flags |= FlagReverse
	case ansicode.CharAttributeHidden:
		g.template.Flags |= FlagHidden
	case ansicode.CharAttributeStrike:
		g.template.Flags |= FlagStrike
	case ansicode.CharAttributeCancelBold:
		g.template.Flags &^= FlagBold
	case ansicode.CharAttributeCancelBoldDim:
		g.template.Flags &^= FlagBold | FlagDim
	case ansicode.CharAttributeCancelItalic:
		g.template.Flags &^= FlagItalic
	case ansicode.CharAttributeCancelUnderline:
		g.template.Flags &^= FlagUnderline | FlagDoubleUnderline | FlagCurlyUnderline
	case ansicode.CharAttributeCancelBlink:
		g.template.Flags &^= FlagBlinkSlow | FlagBlinkFast
	case ansicode.CharAttributeCancelReverse:
		g.template.Flags &^= FlagReverse
	case ansicode.CharAttributeCancelHidden:
		g.template.Flags &^= FlagHidden
	case ansicode.CharAttributeCancelStrike:
		g.template.Flags &^= FlagStrike
	case ansicode.CharAttributeForeground:
		g.template.Fg = resolveColor(attr)
	case ansicode.CharAttributeBackground:
		g.template.Bg = resolveColor(attr)
	case ansicode.CharAttributeUnderlineColor:
		if attr.RGBColor == nil && attr.IndexedColor == nil && attr.NamedColor == nil {
			g.template.UnderlineColor = nil
		} else {
			g.template.UnderlineColor = resolveColor(attr)
		}
	}
}

func resolveColor(attr ansicode.TerminalCharAttribute) color.Color {
	if attr.RGBColor != nil {
		return color.RGBA{R: attr.RGBColor.R, G: attr.RGBColor.G, B: attr.RGBColor.B, A: 255}
	}
	if attr.IndexedColor != nil {
		return paletteColor(int(attr.IndexedColor.Index))
	}
	return nil
}

// paletteColor maps a 256-color index to its standard xterm RGB value:
// 0-15 the 16 ANSI colors (xterm's default values, from ansi16),
// 16-231 the 6x6x6 color cube, 232-255 the grayscale ramp.
func paletteColor(index int) color.Color {
	switch {
	case index < 0 || index > 255:
		return color.Black
	case index < 16:
		return ansi16[index]
	case index < 232:
		i := index - 16
		r := cubeLevel(i / 36)
		g := cubeLevel((i / 6) % 6)
		b := cubeLevel(i % 6)
		return color.RGBA{R: r, G: g, B: b, A: 255}
	default:
		v := uint8(8 + (index-232)*10)
		return color.RGBA{R: v, G: v, B: v, A: 255}
	}
}

func cubeLevel(n int) uint8 {
	if n == 0 {
		return 0
	}
	return uint8(55 + n*40)
}

var ansi16 = [16]color.RGBA{
	{0, 0, 0, 255}, {205, 0, 0, 255}, {0, 205, 0, 255}, {205, 205, 0, 255},
	{0, 0, 238, 255}, {205, 0, 205, 255}, {0, 205, 205, 255}, {229, 229, 229, 255},
	{127, 127, 127, 255}, {255, 0, 0, 255}, {0, 255, 0, 255}, {255, 255, 0, 255},
	{92, 92, 255, 255}, {255, 0, 255, 255}, {0, 255, 255, 255}, {255, 255, 255, 255},
}

// SetTitle sets the window/tab title (OSC 0/2).
func (g *Grid) SetTitle(title string) { g.title = title }

// Substitute erases the cell at the cursor (SUB, rarely used).
func (g *Grid) Substitute() {
	row := &(*g.active)[g.cursor.Row]
	if g.cursor.Col < len(row.Cells) {
		row.Cells[g.cursor.Col] = Cell{Char: ' '}
		g.markDirty(g.cursor.Row)
	}
}

// Tab advances the cursor to the next tab stop, n times.
func (g *Grid) Tab(n int) { g.MoveForwardTabs(n) }

// TextAreaSizeChars answers the viewport size in character cells.
func (g *Grid) TextAreaSizeChars() {
	if g.respond != nil {
		g.respond([]byte(fmt.Sprintf("\x1b[8;%d;%dt", g.rows, g.cols)))
	}
}

// TextAreaSizePixels answers an assumed 8x16 cell size; no pane feature
// depends on exact pixel geometry beyond satisfying the query.
func (g *Grid) TextAreaSizePixels() {
	if g.respond != nil {
		g.respond([]byte(fmt.Sprintf("\x1b[4;%d;%dt", g.rows*16, g.cols*8)))
	}
}

// CellSizePixels answers the assumed per-cell pixel size.
func (g *Grid) CellSizePixels() {
	if g.respond != nil {
		g.respond([]byte("\x1b[6;16;8t"))
	}
}

// SetWorkingDirectory records the OSC-7 reported cwd.
func (g *Grid) SetWorkingDirectory(uri string) { g.workingDir = uri }

// WorkingDirectoryPath returns the filesystem path portion of the last
// OSC-7 URI (stripping a "file://host" prefix if present).
func (g *Grid) WorkingDirectoryPath() string {
	const prefix = "file://"
	if len(g.workingDir) < len(prefix) || g.workingDir[:len(prefix)] != prefix {
		return g.workingDir
	}
	rest := g.workingDir[len(prefix):]
	for i, c := range rest {
		if c == '/' {
			return rest[i:]
		}
	}
	return ""
}

// ApplicationCommandReceived discards APC strings. Image protocols
// (Sixel, Kitty graphics) are not part of the session runtime's scope;
// a pane that emits them renders as if the escape sequence were a no-op,
// matching how a real terminal degrades gracefully for an unsupported
// protocol.
func (g *Grid) ApplicationCommandReceived(data []byte) {}

// SixelReceived discards Sixel image data for the same reason as
// ApplicationCommandReceived.
func (g *Grid) SixelReceived(params [][]uint16, data []byte) {}
