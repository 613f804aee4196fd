package screen

import (
	"github.com/zellij-org/zellij-go/internal/grid"
	"github.com/zellij-org/zellij-go/internal/ptymgr"
)

// SwapLayoutState tracks a tab's position within its cycle of alternate
// layouts (the layouts themselves are loaded from layout files, which
// this implementation doesn't parse; Names stays empty and nothing in
// this package advances Index).
type SwapLayoutState struct {
	Names []string
	Index int
}

// Tab is one tiled workspace within a session: a binary split tree of
// tiled panes plus a z-ordered stack of floating panes layered on top.
// Each client attached to the session focuses one pane within the tab
// independently.
type Tab struct {
	Index TabIndex
	Name  string

	// SyncInput, when set, fans out ActionWriteToFocused to every
	// terminal pane in the tab rather than just the focused one.
	SyncInput bool

	SwapLayout *SwapLayoutState

	root     *PaneNode
	panes    map[PaneId]*Pane
	floating []PaneId // z-order, back to front; last element is frontmost

	focused      map[ClientId]PaneId
	fullscreened map[ClientId]PaneId
	viewport     Rect
}

// NewTab creates a tab containing a single pane filling viewport.
func NewTab(index TabIndex, name string, first *Pane, viewport Rect) *Tab {
	t := &Tab{
		Index:        index,
		Name:         name,
		root:         NewLeaf(first.Id),
		panes:        map[PaneId]*Pane{first.Id: first},
		focused:      make(map[ClientId]PaneId),
		fullscreened: make(map[ClientId]PaneId),
		viewport:     viewport,
	}
	first.Geom = viewport
	first.Grid.Resize(viewport.Rows, viewport.Cols)
	return t
}

// Pane looks up a pane by id, tiled or floating.
func (t *Tab) Pane(id PaneId) (*Pane, bool) {
	p, ok := t.panes[id]
	return p, ok
}

// Panes returns every pane in the tab, tiled and floating.
func (t *Tab) Panes() []*Pane {
	out := make([]*Pane, 0, len(t.panes))
	for _, p := range t.panes {
		out = append(out, p)
	}
	return out
}

// Viewport returns the tab's current viewport rect, the geometry a
// session resurrection snapshot needs to recreate the tab before
// replaying its pane layout.
func (t *Tab) Viewport() Rect {
	return t.viewport
}

// FocusedPane returns the pane client currently has focus on. If the
// client has never focused a pane in this tab, any one pane is chosen
// deterministically (the first tiled leaf) so every client always has
// a focus target.
func (t *Tab) FocusedPane(client ClientId) (PaneId, bool) {
	if id, ok := t.focused[client]; ok {
		if _, stillExists := t.panes[id]; stillExists {
			return id, true
		}
	}
	leaves := t.root.Leaves()
	if len(leaves) == 0 {
		return PaneId{}, false
	}
	return leaves[0], true
}

// SetFocus records client's focused pane.
func (t *Tab) SetFocus(client ClientId, id PaneId) {
	if _, ok := t.panes[id]; ok {
		t.focused[client] = id
	}
}

// Split adds newPane as a sibling of at, splitting at's rect along dir.
// The new pane takes half the space (50/50); a SplitNone direction adds
// newPane as a floating pane instead of tiling it.
func (t *Tab) Split(at PaneId, dir ptymgr.SplitDirection, newPane *Pane) {
	if dir == ptymgr.SplitNone {
		t.AddFloating(newPane)
		return
	}
	if _, ok := t.panes[at]; !ok {
		t.AddFloating(newPane)
		return
	}
	replacement := &PaneNode{
		Direction:   dir,
		Children:    []*PaneNode{NewLeaf(at), NewLeaf(newPane.Id)},
		Constraints: []Dimension{Percent(50), Percent(50)},
	}
	if !t.root.Replace(at, replacement) {
		t.root = replacement
	}
	t.panes[newPane.Id] = newPane
	t.Relayout()
}

// AddFloating layers newPane on top of the floating stack at a default
// offset so successive floating panes don't perfectly overlap.
func (t *Tab) AddFloating(p *Pane) {
	p.Floating = true
	offset := len(t.floating) * 2
	geom := Rect{
		X: t.viewport.X + offset, Y: t.viewport.Y + offset,
		Rows: min(t.viewport.Rows-offset, t.viewport.Rows*2/3),
		Cols: min(t.viewport.Cols-offset, t.viewport.Cols*2/3),
	}
	p.Resize(geom)
	t.panes[p.Id] = p
	t.floating = append(t.floating, p.Id)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// ClosePane removes id from the tab. Returns false if id was the tab's
// last pane (the caller must close the whole tab instead). Collapsing a
// tiled pane's split promotes its sibling in its place; removing a
// floating pane just drops it from the z-order stack.
func (t *Tab) ClosePane(id PaneId) bool {
	p, ok := t.panes[id]
	if !ok {
		return true
	}
	if p.Floating {
		for i, f := range t.floating {
			if f == id {
				t.floating = append(t.floating[:i], t.floating[i+1:]...)
				break
			}
		}
		delete(t.panes, id)
		return true
	}

	if t.root.Pane != nil && *t.root.Pane == id {
		if len(t.panes) == 1 {
			return false
		}
	}
	t.root.Remove(id)
	delete(t.panes, id)
	for c, focused := range t.fullscreened {
		if focused == id {
			delete(t.fullscreened, c)
		}
	}
	t.Relayout()
	return true
}

// Relayout recomputes every tiled pane's geometry from the split tree
// and resizes each pane's Grid to match. Floating panes are untouched —
// their geometry is independent of the tile tree.
func (t *Tab) Relayout() {
	resolved := t.root.Resolve(t.viewport)
	for id, rect := range resolved {
		if p, ok := t.panes[id]; ok && !p.Floating {
			p.Resize(rect)
		}
	}
}

// Resize changes the tab's viewport (e.g. the client's terminal window
// changed size) and relayouts every tiled pane. A resize to the same
// viewport is a no-op.
func (t *Tab) Resize(viewport Rect) {
	if viewport == t.viewport {
		return
	}
	t.viewport = viewport
	t.Relayout()
}

// RaiseFloating moves id to the front of the floating z-order stack.
func (t *Tab) RaiseFloating(id PaneId) {
	for i, f := range t.floating {
		if f == id {
			t.floating = append(append(t.floating[:i], t.floating[i+1:]...), id)
			return
		}
	}
}

// FloatingZOrder returns floating pane ids back-to-front.
func (t *Tab) FloatingZOrder() []PaneId { return t.floating }

// ToggleFullscreen toggles whether client's focused pane occupies the
// whole viewport. Calling it twice returns to the prior layout exactly,
// satisfying the idempotence invariant.
func (t *Tab) ToggleFullscreen(client ClientId) {
	focused, ok := t.FocusedPane(client)
	if !ok {
		return
	}
	if prev, already := t.fullscreened[client]; already && prev == focused {
		delete(t.fullscreened, client)
		t.Relayout()
		return
	}
	t.fullscreened[client] = focused
	if p, ok := t.panes[focused]; ok {
		p.Resize(t.viewport)
	}
}

// IsFullscreen reports whether client currently has a fullscreened
// pane, and which one.
func (t *Tab) IsFullscreen(client ClientId) (PaneId, bool) {
	id, ok := t.fullscreened[client]
	return id, ok
}

// PaneAt hit-tests an absolute viewport coordinate against the tab's
// panes, checking the floating stack front-to-back before the tiled
// panes underneath, and returns the pane along with the point
// translated into that pane's local content coordinates.
func (t *Tab) PaneAt(row, col int) (PaneId, grid.Position, bool) {
	for i := len(t.floating) - 1; i >= 0; i-- {
		id := t.floating[i]
		p, ok := t.panes[id]
		if !ok {
			continue
		}
		if pos, inside := localPoint(p, row, col); inside {
			return id, pos, true
		}
	}
	for id, p := range t.panes {
		if p.Floating {
			continue
		}
		if pos, inside := localPoint(p, row, col); inside {
			return id, pos, true
		}
	}
	return PaneId{}, grid.Position{}, false
}

// LocalPoint translates an absolute viewport coordinate into id's local
// content coordinates, if id exists and the point lies within it.
func (t *Tab) LocalPoint(id PaneId, row, col int) (grid.Position, bool) {
	p, ok := t.panes[id]
	if !ok {
		return grid.Position{}, false
	}
	return localPoint(p, row, col)
}

func localPoint(p *Pane, row, col int) (grid.Position, bool) {
	r, c := row-p.Geom.Y, col-p.Geom.X
	if r < 0 || r >= p.Geom.Rows || c < 0 || c >= p.Geom.Cols {
		return grid.Position{}, false
	}
	return grid.Position{Row: r, Col: c}, true
}

// resizeStep is the number of cells a single Resize action moves the
// shared border between a pane and its neighbor.
const resizeStep = 2

// ResizePane grows or shrinks id along dir's axis by trading size with
// its adjacent sibling on that side of the nearest split. It is a no-op
// — leaving every pane's geometry untouched — if id has no sibling on
// that side, if either side's constraint isn't percentage-based, or if
// the resize would shrink any tiled pane below the minimum content
// size.
func (t *Tab) ResizePane(id PaneId, dir Direction, grow bool) bool {
	axis := axisFor(dir)
	parent, parentRect, idx, ok := findAncestorWithRect(t.root, t.viewport, id, axis)
	if !ok {
		return false
	}
	var neighbor int
	switch dir {
	case DirRight, DirDown:
		neighbor = idx + 1
		if neighbor >= len(parent.Children) {
			return false
		}
	case DirLeft, DirUp:
		neighbor = idx - 1
		if neighbor < 0 {
			return false
		}
	}
	origIdx, okI := percentOf(parent.Constraints[idx])
	origNeighbor, okN := percentOf(parent.Constraints[neighbor])
	if !okI || !okN {
		return false
	}
	extent := parentRect.Cols
	if axis == ptymgr.SplitHorizontal {
		extent = parentRect.Rows
	}
	if extent <= 0 {
		return false
	}
	deltaPercent := 100 * float64(resizeStep) / float64(extent)
	sign := 1.0
	if !grow {
		sign = -1.0
	}
	newIdx := origIdx + sign*deltaPercent
	newNeighbor := origNeighbor - sign*deltaPercent
	if newIdx <= 0 || newNeighbor <= 0 {
		return false
	}

	savedIdx, savedNeighbor := parent.Constraints[idx], parent.Constraints[neighbor]
	parent.Constraints[idx] = Percent(newIdx)
	parent.Constraints[neighbor] = Percent(newNeighbor)
	t.Relayout()
	if !t.allPanesFitMinimum() {
		parent.Constraints[idx], parent.Constraints[neighbor] = savedIdx, savedNeighbor
		t.Relayout()
		return false
	}
	return true
}

// allPanesFitMinimum reports whether every tiled pane in the tab still
// meets the minimum content size.
func (t *Tab) allPanesFitMinimum() bool {
	for _, p := range t.panes {
		if p.Floating {
			continue
		}
		if !FitsMinimum(p.Geom) {
			return false
		}
	}
	return true
}

// MoveFocus moves client's focus to the nearest tiled pane lying in
// dir's direction from the currently focused pane, geometrically. It is
// a no-op if no pane lies in that direction.
func (t *Tab) MoveFocus(client ClientId, dir Direction) bool {
	focused, ok := t.FocusedPane(client)
	if !ok {
		return false
	}
	cur, ok := t.panes[focused]
	if !ok || cur.Floating {
		return false
	}
	var best PaneId
	bestDist := -1
	for id, p := range t.panes {
		if id == focused || p.Floating {
			continue
		}
		dist, adjacent := adjacentInDirection(cur.Geom, p.Geom, dir)
		if !adjacent {
			continue
		}
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			best = id
		}
	}
	if bestDist < 0 {
		return false
	}
	t.SetFocus(client, best)
	return true
}

// adjacentInDirection reports whether candidate lies in dir's direction
// from from, overlapping it along the perpendicular axis, and the gap
// between them along dir's axis.
func adjacentInDirection(from, candidate Rect, dir Direction) (int, bool) {
	switch dir {
	case DirLeft:
		if candidate.X+candidate.Cols > from.X || !rowsOverlap(from, candidate) {
			return 0, false
		}
		return from.X - (candidate.X + candidate.Cols), true
	case DirRight:
		if candidate.X < from.X+from.Cols || !rowsOverlap(from, candidate) {
			return 0, false
		}
		return candidate.X - (from.X + from.Cols), true
	case DirUp:
		if candidate.Y+candidate.Rows > from.Y || !colsOverlap(from, candidate) {
			return 0, false
		}
		return from.Y - (candidate.Y + candidate.Rows), true
	case DirDown:
		if candidate.Y < from.Y+from.Rows || !colsOverlap(from, candidate) {
			return 0, false
		}
		return candidate.Y - (from.Y + from.Rows), true
	}
	return 0, false
}

func rowsOverlap(a, b Rect) bool {
	return a.Y < b.Y+b.Rows && b.Y < a.Y+a.Rows
}

func colsOverlap(a, b Rect) bool {
	return a.X < b.X+b.Cols && b.X < a.X+a.Cols
}
