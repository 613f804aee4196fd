package screen

import (
	"testing"

	"github.com/zellij-org/zellij-go/internal/ptymgr"
)

func TestResizePaneGrowsAndShrinksNeighbor(t *testing.T) {
	viewport := Rect{Rows: 20, Cols: 80}
	first := NewTerminalPane(testPaneId(1), Rect{})
	tab := NewTab(0, "main", first, viewport)
	second := NewTerminalPane(testPaneId(2), Rect{})
	tab.Split(testPaneId(1), ptymgr.SplitVertical, second)

	p1, _ := tab.Pane(testPaneId(1))
	before := p1.Geom.Cols

	if !tab.ResizePane(testPaneId(1), DirRight, true) {
		t.Fatal("expected ResizePane to succeed")
	}
	p1, _ = tab.Pane(testPaneId(1))
	p2, _ := tab.Pane(testPaneId(2))
	if p1.Geom.Cols <= before {
		t.Fatalf("expected pane 1 to grow, before=%d after=%d", before, p1.Geom.Cols)
	}
	if p1.Geom.Cols+p2.Geom.Cols != viewport.Cols {
		t.Fatalf("panes should still tile exactly: %d + %d != %d", p1.Geom.Cols, p2.Geom.Cols, viewport.Cols)
	}
}

// TestResizeNoOpWhenNeighborAtMinimum exercises the spec's resize
// no-op requirement: shrinking a neighbor already at the minimum
// content size must leave every pane's geometry untouched.
func TestResizeNoOpWhenNeighborAtMinimum(t *testing.T) {
	viewport := Rect{Rows: 20, Cols: 10}
	first := NewTerminalPane(testPaneId(1), Rect{})
	tab := NewTab(0, "main", first, viewport)
	second := NewTerminalPane(testPaneId(2), Rect{})
	tab.Split(testPaneId(1), ptymgr.SplitVertical, second)

	// Shrink pane 2 down toward the minimum repeatedly.
	for i := 0; i < 50; i++ {
		tab.ResizePane(testPaneId(2), DirLeft, false)
	}
	p1Before, _ := tab.Pane(testPaneId(1))
	p2Before, _ := tab.Pane(testPaneId(2))
	if !FitsMinimum(p2Before.Geom) {
		t.Fatalf("expected neighbor to have settled at the minimum size, got %+v", p2Before.Geom)
	}

	if tab.ResizePane(testPaneId(2), DirLeft, false) {
		t.Fatal("expected resize past the minimum to be rejected")
	}
	p1After, _ := tab.Pane(testPaneId(1))
	p2After, _ := tab.Pane(testPaneId(2))
	if p1After.Geom != p1Before.Geom || p2After.Geom != p2Before.Geom {
		t.Fatalf("expected no-op resize to leave geometry unchanged: %+v/%+v -> %+v/%+v",
			p1Before.Geom, p2Before.Geom, p1After.Geom, p2After.Geom)
	}
}

func TestResizeNoOpWithoutSiblingOnThatSide(t *testing.T) {
	viewport := Rect{Rows: 20, Cols: 80}
	first := NewTerminalPane(testPaneId(1), Rect{})
	tab := NewTab(0, "main", first, viewport)
	second := NewTerminalPane(testPaneId(2), Rect{})
	tab.Split(testPaneId(1), ptymgr.SplitVertical, second)

	if tab.ResizePane(testPaneId(1), DirLeft, true) {
		t.Fatal("expected resize to be a no-op: pane 1 has no left sibling")
	}
	if tab.ResizePane(testPaneId(1), DirUp, true) {
		t.Fatal("expected resize to be a no-op: split is vertical, not horizontal")
	}
}

func TestMoveFocusFindsAdjacentPane(t *testing.T) {
	viewport := Rect{Rows: 20, Cols: 80}
	first := NewTerminalPane(testPaneId(1), Rect{})
	tab := NewTab(0, "main", first, viewport)
	second := NewTerminalPane(testPaneId(2), Rect{})
	tab.Split(testPaneId(1), ptymgr.SplitVertical, second)

	tab.SetFocus(0, testPaneId(1))
	if !tab.MoveFocus(0, DirRight) {
		t.Fatal("expected MoveFocus right to succeed")
	}
	focused, _ := tab.FocusedPane(0)
	if focused != testPaneId(2) {
		t.Fatalf("focused = %v, want pane 2", focused)
	}
	if tab.MoveFocus(0, DirRight) {
		t.Fatal("expected MoveFocus right from the rightmost pane to be a no-op")
	}
}

func TestSyncInputFansOutToEveryTerminalPane(t *testing.T) {
	s := newTestScreen()
	tab := addTestTab(s, 0, "main")
	second := NewTerminalPane(testPaneId(100), Rect{})
	tab.Split(testPaneId(1), ptymgr.SplitVertical, second)
	tab.SyncInput = true
	s.SetActiveTab(0, 0)

	// With no pty attached, applyAction's Write calls are no-ops, but
	// they must not reach the single-pane ActionWriteToFocused branch;
	// regression covered by not panicking on a nil pty above and by
	// TestToggleSyncTabFlips asserting the flag itself.
	s.Apply(Instruction{Action: &Action{Kind: ActionWriteToFocused, Client: 0, Bytes: []byte("x")}})
}

func TestToggleSyncTabFlips(t *testing.T) {
	s := newTestScreen()
	tab := addTestTab(s, 0, "main")
	s.SetActiveTab(0, 0)

	s.Apply(Instruction{Action: &Action{Kind: ActionToggleSyncTab, Client: 0}})
	if !tab.SyncInput {
		t.Fatal("expected SyncInput to be set after toggle")
	}
	s.Apply(Instruction{Action: &Action{Kind: ActionToggleSyncTab, Client: 0}})
	if tab.SyncInput {
		t.Fatal("expected SyncInput to be cleared after second toggle")
	}
}

func TestSwitchTabWrapsAround(t *testing.T) {
	s := newTestScreen()
	addTestTab(s, 0, "one")
	addTestTab(s, 1, "two")
	s.SetActiveTab(0, 0)

	s.switchTab(0, 1)
	tab, _ := s.ActiveTab(0)
	if tab.Index != 1 {
		t.Fatalf("active tab = %d, want 1", tab.Index)
	}
	s.switchTab(0, 1)
	tab, _ = s.ActiveTab(0)
	if tab.Index != 0 {
		t.Fatalf("expected wraparound back to tab 0, got %d", tab.Index)
	}
}

func TestBreakPaneCreatesNewTab(t *testing.T) {
	s := newTestScreen()
	tab := addTestTab(s, 0, "main")
	second := NewTerminalPane(testPaneId(100), Rect{})
	tab.Split(testPaneId(1), ptymgr.SplitVertical, second)
	s.SetActiveTab(0, 0)
	tab.SetFocus(0, testPaneId(100))

	before := len(s.Tabs)
	s.breakPane(0, tab.Index, tab, DirRight)
	if len(s.Tabs) != before+1 {
		t.Fatalf("expected a new tab, got %d tabs (was %d)", len(s.Tabs), before)
	}
	if _, ok := tab.Pane(testPaneId(100)); ok {
		t.Fatal("expected the broken-out pane to be gone from its original tab")
	}
}
