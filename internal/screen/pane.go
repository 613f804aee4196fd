package screen

import (
	"strings"

	"github.com/danielgatis/go-ansicode"

	"github.com/zellij-org/zellij-go/internal/grid"
	"github.com/zellij-org/zellij-go/internal/ptymgr"
)

// PaneState tracks a terminal pane's child process lifecycle: spawned
// and running, or exited and (for hold-on-exit panes) waiting to be
// re-run or closed by the user. Plugin panes are always Running.
type PaneState int

const (
	PaneRunning PaneState = iota
	PanePending
	PaneExited
)

// Pane is one tile or floating window: either a PTY-backed terminal
// (with its own Grid and decoder) or a plugin instance (whose content
// the Plugin Host renders into a separate buffer the Compositor reads
// the same way).
type Pane struct {
	Id    PaneId
	Title string

	Grid    *grid.Grid
	decoder *ansicode.Decoder

	Geom       Rect
	Floating   bool
	Fullscreen bool

	State      PaneState
	ExitCode   *int
	RunCommand *ptymgr.RunCommand
	HoldOnExit bool

	Selection *Selection

	// ScrollOffset is how many lines above the live viewport the pane is
	// currently scrolled, 0 meaning the live grid (no scrollback shown).
	ScrollOffset int
}

// Selection is an inclusive text selection within a pane, in viewport
// coordinates.
type Selection struct {
	Start, End grid.Position
	Active     bool
}

// NewTerminalPane constructs a pane backed by a fresh Grid sized to
// geom's content area.
func NewTerminalPane(id PaneId, geom Rect) *Pane {
	g := grid.New(geom.Rows, geom.Cols)
	p := &Pane{Id: id, Grid: g, Geom: geom}
	p.decoder = ansicode.NewDecoder(g)
	return p
}

// NewPluginPane constructs a pane that will be rendered by the Plugin
// Host rather than by a Grid driven from PTY bytes; Grid is still used
// as the pane's character buffer so the Compositor has one uniform
// representation to read from. The Plugin Host's rendered output is
// ANSI text like a terminal's, so it is fed through the same decoder.
func NewPluginPane(id PaneId, geom Rect) *Pane {
	g := grid.New(geom.Rows, geom.Cols)
	p := &Pane{Id: id, Grid: g, Geom: geom}
	p.decoder = ansicode.NewDecoder(g)
	return p
}

// Feed writes bytes through the pane's decoder into its Grid — PTY
// output for a terminal pane, or the Plugin Host's rendered frame for a
// plugin pane.
func (p *Pane) Feed(data []byte) {
	if p.decoder != nil {
		p.decoder.Write(data)
	}
}

// Resize changes the pane's content-area geometry and its Grid to
// match. A resize to the pane's current size is a no-op past the first
// call, matching the idempotence invariant for repeated identical
// resizes.
func (p *Pane) Resize(geom Rect) {
	if geom == p.Geom {
		return
	}
	p.Geom = geom
	p.Grid.Resize(geom.Rows, geom.Cols)
}

// ScrollUp moves the pane's view n lines back into scrollback, clamped
// to the history actually retained.
func (p *Pane) ScrollUp(n int) {
	max := p.Grid.ScrollbackLen()
	p.ScrollOffset += n
	if p.ScrollOffset > max {
		p.ScrollOffset = max
	}
}

// ScrollDown moves the pane's view n lines toward the live viewport.
func (p *Pane) ScrollDown(n int) {
	p.ScrollOffset -= n
	if p.ScrollOffset < 0 {
		p.ScrollOffset = 0
	}
}

// ScrollToBottom returns the pane to the live viewport.
func (p *Pane) ScrollToBottom() {
	p.ScrollOffset = 0
}

// Scrolled reports whether the pane is showing scrollback rather than
// the live viewport.
func (p *Pane) Scrolled() bool {
	return p.ScrollOffset > 0
}

// Line returns row vr of the pane's currently visible view, blending
// retained scrollback above the live grid according to ScrollOffset.
func (p *Pane) Line(vr int) grid.Row {
	if p.ScrollOffset == 0 {
		return p.Grid.Line(vr)
	}
	if vr < p.ScrollOffset {
		row, ok := p.Grid.ScrollbackLine(p.ScrollOffset - 1 - vr)
		if !ok {
			return grid.NewRow(p.Geom.Cols)
		}
		return row
	}
	return p.Grid.Line(vr - p.ScrollOffset)
}

// SelectedText renders the pane's current Selection as plain text,
// joining wrapped rows without a newline and skipping wide-rune spacer
// cells so double-width glyphs aren't duplicated.
func (p *Pane) SelectedText() string {
	if p.Selection == nil {
		return ""
	}
	start, end := p.Selection.Start, p.Selection.End
	if end.Row < start.Row || (end.Row == start.Row && end.Col < start.Col) {
		start, end = end, start
	}
	var b strings.Builder
	for r := start.Row; r <= end.Row; r++ {
		row := p.Line(r)
		from, to := 0, len(row.Cells)
		if r == start.Row {
			from = start.Col
		}
		if r == end.Row {
			to = end.Col + 1
		}
		if from < 0 {
			from = 0
		}
		if to > len(row.Cells) {
			to = len(row.Cells)
		}
		for c := from; c < to; c++ {
			cell := row.Cells[c]
			if cell.HasFlag(grid.FlagWideSpacer) {
				continue
			}
			b.WriteRune(cell.Char)
		}
		if r < end.Row && !row.Wrapped {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
