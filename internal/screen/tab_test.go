package screen

import (
	"testing"

	"github.com/zellij-org/zellij-go/internal/ptymgr"
)

func testPaneId(n uint32) PaneId { return TerminalPaneId(ptymgr.TerminalId(n)) }

func TestNewTabFillsViewport(t *testing.T) {
	viewport := Rect{Rows: 24, Cols: 80}
	first := NewTerminalPane(testPaneId(1), Rect{})
	tab := NewTab(0, "main", first, viewport)

	p, ok := tab.Pane(testPaneId(1))
	if !ok {
		t.Fatal("expected pane 1 to exist")
	}
	if p.Geom != viewport {
		t.Fatalf("Geom = %+v, want %+v", p.Geom, viewport)
	}
}

func TestSplitTilesWithoutOverlapOrGap(t *testing.T) {
	viewport := Rect{Rows: 20, Cols: 80}
	first := NewTerminalPane(testPaneId(1), Rect{})
	tab := NewTab(0, "main", first, viewport)

	second := NewTerminalPane(testPaneId(2), Rect{})
	tab.Split(testPaneId(1), ptymgr.SplitVertical, second)

	p1, _ := tab.Pane(testPaneId(1))
	p2, _ := tab.Pane(testPaneId(2))

	if p1.Geom.Cols+p2.Geom.Cols != viewport.Cols {
		t.Fatalf("cols %d + %d != %d", p1.Geom.Cols, p2.Geom.Cols, viewport.Cols)
	}
	if p1.Geom.Rows != viewport.Rows || p2.Geom.Rows != viewport.Rows {
		t.Fatalf("expected full-height split, got rows %d and %d", p1.Geom.Rows, p2.Geom.Rows)
	}
	if p1.Geom.X+p1.Geom.Cols != p2.Geom.X {
		t.Fatalf("panes not adjacent: p1 ends at %d, p2 starts at %d", p1.Geom.X+p1.Geom.Cols, p2.Geom.X)
	}
}

func TestClosePaneCollapsesSplit(t *testing.T) {
	viewport := Rect{Rows: 20, Cols: 80}
	first := NewTerminalPane(testPaneId(1), Rect{})
	tab := NewTab(0, "main", first, viewport)
	second := NewTerminalPane(testPaneId(2), Rect{})
	tab.Split(testPaneId(1), ptymgr.SplitHorizontal, second)

	if ok := tab.ClosePane(testPaneId(2)); !ok {
		t.Fatal("ClosePane returned false unexpectedly")
	}

	remaining, ok := tab.Pane(testPaneId(1))
	if !ok {
		t.Fatal("expected pane 1 to remain")
	}
	if remaining.Geom != viewport {
		t.Fatalf("Geom after collapse = %+v, want full viewport %+v", remaining.Geom, viewport)
	}
}

func TestClosingLastPaneFails(t *testing.T) {
	first := NewTerminalPane(testPaneId(1), Rect{})
	tab := NewTab(0, "main", first, Rect{Rows: 10, Cols: 10})
	if tab.ClosePane(testPaneId(1)) {
		t.Fatal("expected ClosePane on the tab's only pane to fail")
	}
}

func TestToggleFullscreenIsIdempotent(t *testing.T) {
	viewport := Rect{Rows: 20, Cols: 80}
	first := NewTerminalPane(testPaneId(1), Rect{})
	tab := NewTab(0, "main", first, viewport)
	second := NewTerminalPane(testPaneId(2), Rect{})
	tab.Split(testPaneId(1), ptymgr.SplitVertical, second)

	before, _ := tab.Pane(testPaneId(1))
	beforeGeom := before.Geom

	tab.ToggleFullscreen(0)
	tab.ToggleFullscreen(0)

	after, _ := tab.Pane(testPaneId(1))
	if after.Geom != beforeGeom {
		t.Fatalf("geom after fullscreen round-trip = %+v, want %+v", after.Geom, beforeGeom)
	}
}

func TestResizeNoOpAtSameViewport(t *testing.T) {
	viewport := Rect{Rows: 20, Cols: 80}
	first := NewTerminalPane(testPaneId(1), Rect{})
	tab := NewTab(0, "main", first, viewport)
	tab.Resize(viewport)
	p, _ := tab.Pane(testPaneId(1))
	if p.Geom != viewport {
		t.Fatalf("Geom = %+v, want unchanged %+v", p.Geom, viewport)
	}
}

func TestPaneGroupsToggle(t *testing.T) {
	g := NewPaneGroups()
	id := testPaneId(1)
	g.Toggle(id, 0)
	if len(g.Group(0)) != 1 {
		t.Fatalf("expected 1 grouped pane, got %d", len(g.Group(0)))
	}
	g.Toggle(id, 0)
	if len(g.Group(0)) != 0 {
		t.Fatalf("expected group empty after second toggle, got %d", len(g.Group(0)))
	}
}
