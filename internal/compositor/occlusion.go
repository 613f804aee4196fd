package compositor

import (
	"sort"

	"github.com/zellij-org/zellij-go/internal/screen"
)

// span is a half-open column range [From, To) on one row.
type span struct{ From, To int }

// occludedSpans returns, for tiledRow, the column ranges covered by any
// floating pane's content rectangle (its Geom; the frame drawn one cell
// outside it is not included), back-to-front so a later
// (frontmost) pane's span can subsume an earlier one. Four relationships
// between a floating pane and a tiled row are possible, handled
// uniformly by plain interval math rather than as four separate cases:
// the floating pane may not reach the row at all (no span), fully span
// it (one span covering the whole width), or leave a column prefix
// and/or suffix of the row visible (the floating pane's span starts
// after 0 and/or ends before the row's width).
func occludedSpans(panes []*screen.Pane, zOrder []screen.PaneId, row int, rowWidth int) []span {
	var spans []span
	for _, id := range zOrder {
		p := lookup(panes, id)
		if p == nil {
			continue
		}
		top, bottom := p.Geom.Y, p.Geom.Y+p.Geom.Rows
		if row < top || row >= bottom {
			continue
		}
		left := clampInt(p.Geom.X, 0, rowWidth)
		right := clampInt(p.Geom.X+p.Geom.Cols, 0, rowWidth)
		if left < right {
			spans = append(spans, span{From: left, To: right})
		}
	}
	return mergeSpans(spans)
}

func lookup(panes []*screen.Pane, id screen.PaneId) *screen.Pane {
	for _, p := range panes {
		if p.Id == id {
			return p
		}
	}
	return nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// mergeSpans coalesces overlapping/adjacent spans so a row's visible
// gaps (the complement of the merged spans) are well defined — this is
// what lets fully-covered, left-covered, right-covered, and
// middle-split rows all fall out of the same subtraction below.
func mergeSpans(spans []span) []span {
	if len(spans) < 2 {
		return spans
	}
	for i := 0; i < len(spans); i++ {
		for j := i + 1; j < len(spans); j++ {
			if spans[i].From <= spans[j].To && spans[j].From <= spans[i].To {
				if spans[j].From < spans[i].From {
					spans[i].From = spans[j].From
				}
				if spans[j].To > spans[i].To {
					spans[i].To = spans[j].To
				}
				spans = append(spans[:j], spans[j+1:]...)
				j = i
			}
		}
	}
	sort.Slice(spans, func(a, b int) bool { return spans[a].From < spans[b].From })
	return spans
}

// visibleSpans returns the column ranges of a row of width cols NOT
// covered by occluded. A tiled row with no floating overlap yields one
// span covering the whole row; full coverage yields none; partial
// coverage on one or both sides yields one or two spans (the "fully
// covered", "left-covered", "right-covered", and "middle-split" cases).
func visibleSpans(occluded []span, cols int) []span {
	if len(occluded) == 0 {
		return []span{{From: 0, To: cols}}
	}
	var out []span
	cursor := 0
	for _, o := range occluded {
		if o.From > cursor {
			out = append(out, span{From: cursor, To: o.From})
		}
		if o.To > cursor {
			cursor = o.To
		}
	}
	if cursor < cols {
		out = append(out, span{From: cursor, To: cols})
	}
	return out
}
