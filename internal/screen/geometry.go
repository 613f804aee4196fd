package screen

import "github.com/zellij-org/zellij-go/internal/ptymgr"

// MinRows and MinCols are the smallest a pane's content area may be
// resized to, including its one-cell frame on each side that has one.
const (
	MinRows = 3
	MinCols = 5
)

// DimensionKind selects whether a split child's size is a percentage of
// its parent or a fixed cell count.
type DimensionKind int

const (
	DimPercent DimensionKind = iota
	DimFixed
)

// Dimension is one split child's size constraint.
type Dimension struct {
	Kind    DimensionKind
	Percent float64
	Fixed   int
}

// Percent builds a percentage-based Dimension.
func Percent(p float64) Dimension { return Dimension{Kind: DimPercent, Percent: p} }

// Fixed builds a fixed-cell-count Dimension.
func Fixed(n int) Dimension { return Dimension{Kind: DimFixed, Fixed: n} }

// Rect is an absolute, resolved rectangle in screen cells.
type Rect struct {
	X, Y, Rows, Cols int
}

// PaneGeom is the resolved geometry of one pane's content area (frame
// excluded — ptymgr.Resize is always called with exactly this size).
type PaneGeom = Rect

// PaneNode is one node of a tab's binary split tree: either a leaf
// holding a single pane, or an internal node splitting its rect among
// children along Direction according to Constraints.
type PaneNode struct {
	Pane        *PaneId
	Direction   ptymgr.SplitDirection
	Children    []*PaneNode
	Constraints []Dimension
}

// NewLeaf builds a single-pane node.
func NewLeaf(id PaneId) *PaneNode { return &PaneNode{Pane: &id} }

// Resolve computes the absolute geometry of every pane in the tree
// rooted at n, given the rect available to the whole tree. Percentage
// children are resolved against what remains after fixed children are
// subtracted; remaining rounding goes to the last percentage child, so
// children always exactly tile the parent rect with no gap or overlap.
func (n *PaneNode) Resolve(rect Rect) map[PaneId]Rect {
	out := make(map[PaneId]Rect)
	n.resolveInto(rect, out)
	return out
}

func (n *PaneNode) resolveInto(rect Rect, out map[PaneId]Rect) {
	if n.Pane != nil {
		out[*n.Pane] = rect
		return
	}
	if len(n.Children) == 0 {
		return
	}
	sizes := splitSizes(rect, n.Direction, n.Constraints)
	offset := 0
	for i, child := range n.Children {
		size := sizes[i]
		var childRect Rect
		if n.Direction == ptymgr.SplitVertical {
			childRect = Rect{X: rect.X + offset, Y: rect.Y, Rows: rect.Rows, Cols: size}
		} else {
			childRect = Rect{X: rect.X, Y: rect.Y + offset, Rows: size, Cols: rect.Cols}
		}
		child.resolveInto(childRect, out)
		offset += size
	}
}

// splitSizes turns percentage/fixed Dimension constraints into concrete
// cell counts along the split's axis, always summing to exactly the
// available extent.
func splitSizes(rect Rect, dir ptymgr.SplitDirection, constraints []Dimension) []int {
	total := rect.Rows
	if dir == ptymgr.SplitVertical {
		total = rect.Cols
	}

	sizes := make([]int, len(constraints))
	remaining := total
	fixedSum := 0
	for i, c := range constraints {
		if c.Kind == DimFixed {
			sizes[i] = c.Fixed
			fixedSum += c.Fixed
		}
	}
	remaining -= fixedSum

	percentTotal := 0.0
	for _, c := range constraints {
		if c.Kind == DimPercent {
			percentTotal += c.Percent
		}
	}
	if percentTotal == 0 {
		percentTotal = 100
	}

	assigned := 0
	lastPercentIdx := -1
	for i, c := range constraints {
		if c.Kind != DimPercent {
			continue
		}
		share := int(float64(remaining) * c.Percent / percentTotal)
		sizes[i] = share
		assigned += share
		lastPercentIdx = i
	}
	if lastPercentIdx >= 0 {
		sizes[lastPercentIdx] += remaining - assigned
	}
	return sizes
}

// Leaves returns every leaf's PaneId in left-to-right / top-to-bottom
// order.
func (n *PaneNode) Leaves() []PaneId {
	if n.Pane != nil {
		return []PaneId{*n.Pane}
	}
	var out []PaneId
	for _, c := range n.Children {
		out = append(out, c.Leaves()...)
	}
	return out
}

// Replace swaps the leaf holding old for a fresh subtree, used when
// splitting an existing pane into two.
func (n *PaneNode) Replace(old PaneId, with *PaneNode) bool {
	if n.Pane != nil {
		if *n.Pane == old {
			*n = *with
			return true
		}
		return false
	}
	for _, c := range n.Children {
		if c.Replace(old, with) {
			return true
		}
	}
	return false
}

// Remove deletes the leaf holding id from the tree. If doing so leaves
// its parent split with a single remaining child, that child is
// promoted in the parent's place (the split collapses). Returns false
// if id was not found, or if n itself is the sole leaf (nothing to
// collapse into — the caller must close the tab instead).
func (n *PaneNode) Remove(id PaneId) bool {
	for _, c := range n.Children {
		if c.Pane != nil && *c.Pane == id {
			return n.removeChild(c)
		}
		if c.Remove(id) {
			return true
		}
	}
	return false
}

func (n *PaneNode) removeChild(target *PaneNode) bool {
	idx := -1
	for i, c := range n.Children {
		if c == target {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	n.Children = append(n.Children[:idx], n.Children[idx+1:]...)
	n.Constraints = append(n.Constraints[:idx], n.Constraints[idx+1:]...)
	if len(n.Children) == 1 {
		*n = *n.Children[0]
	} else {
		rebalance(n.Constraints)
	}
	return true
}

// rebalance spreads 100% evenly across remaining percentage children
// after one sibling is removed, leaving fixed-size children untouched.
func rebalance(constraints []Dimension) {
	percentCount := 0
	for _, c := range constraints {
		if c.Kind == DimPercent {
			percentCount++
		}
	}
	if percentCount == 0 {
		return
	}
	even := 100.0 / float64(percentCount)
	for i := range constraints {
		if constraints[i].Kind == DimPercent {
			constraints[i].Percent = even
		}
	}
}

// FitsMinimum reports whether rect meets the minimum pane content size.
func FitsMinimum(rect Rect) bool { return rect.Rows >= MinRows-2 && rect.Cols >= MinCols-2 }

// Direction is a screen-relative direction, used by the directional
// Resize, MoveFocus and BreakPane actions.
type Direction int

const (
	DirLeft Direction = iota
	DirRight
	DirUp
	DirDown
)

// axisFor maps a Direction onto the split axis it resizes or searches
// along: Left/Right move along a column split, Up/Down along a row
// split.
func axisFor(dir Direction) ptymgr.SplitDirection {
	if dir == DirUp || dir == DirDown {
		return ptymgr.SplitHorizontal
	}
	return ptymgr.SplitVertical
}

// percentOf returns d's percentage value, or ok=false if d is a fixed
// size — resize only operates on percentage-constrained splits.
func percentOf(d Dimension) (float64, bool) {
	if d.Kind != DimPercent {
		return 0, false
	}
	return d.Percent, true
}

// findAncestorWithRect searches the tree rooted at n (covering rect)
// for id's nearest ancestor that splits along axis, returning that
// node, the rect it was resolved against, and the index of its child
// subtree that holds id. Splits along the other axis between id and
// that ancestor are passed over. If no ancestor splits along axis (or
// id isn't found at all), ok is false — resize only ever considers a
// pane's nearest relevant split.
func findAncestorWithRect(n *PaneNode, rect Rect, id PaneId, axis ptymgr.SplitDirection) (parent *PaneNode, parentRect Rect, idx int, ok bool) {
	if n.Pane != nil {
		return nil, Rect{}, 0, false
	}
	sizes := splitSizes(rect, n.Direction, n.Constraints)
	offset := 0
	for i, child := range n.Children {
		size := sizes[i]
		var childRect Rect
		if n.Direction == ptymgr.SplitVertical {
			childRect = Rect{X: rect.X + offset, Y: rect.Y, Rows: rect.Rows, Cols: size}
		} else {
			childRect = Rect{X: rect.X, Y: rect.Y + offset, Rows: size, Cols: rect.Cols}
		}
		if child.Pane == nil {
			if p, r, ix, found := findAncestorWithRect(child, childRect, id, axis); found {
				return p, r, ix, true
			}
		}
		for _, leaf := range child.Leaves() {
			if leaf != id {
				continue
			}
			if n.Direction == axis {
				return n, rect, i, true
			}
			return nil, Rect{}, 0, false
		}
		offset += size
	}
	return nil, Rect{}, 0, false
}
