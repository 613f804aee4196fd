package screen

import (
	"strings"
	"testing"

	"github.com/zellij-org/zellij-go/internal/grid"
)

func TestScrollUpAndDownClampToHistory(t *testing.T) {
	p := NewTerminalPane(testPaneId(1), Rect{Rows: 5, Cols: 10})

	p.ScrollUp(100)
	if p.ScrollOffset != p.Grid.ScrollbackLen() {
		t.Fatalf("ScrollOffset = %d, want clamped to ScrollbackLen %d", p.ScrollOffset, p.Grid.ScrollbackLen())
	}
	p.ScrollDown(100)
	if p.ScrollOffset != 0 {
		t.Fatalf("ScrollOffset = %d, want 0 after ScrollDown past the bottom", p.ScrollOffset)
	}
	if p.Scrolled() {
		t.Fatal("expected Scrolled() false at the live viewport")
	}
}

func TestApplyScrollActionMovesPaneOffset(t *testing.T) {
	s := newTestScreen()
	tab := addTestTab(s, 0, "main")
	s.SetActiveTab(0, 0)
	p, _ := tab.Pane(testPaneId(1))
	for i := 0; i < 30; i++ {
		p.Feed([]byte("line\r\n"))
	}

	s.Apply(Instruction{Action: &Action{Kind: ActionScroll, Client: 0, Scroll: ScrollLineUp}})
	if !p.Scrolled() {
		t.Fatal("expected pane to be scrolled after ScrollLineUp")
	}
	s.Apply(Instruction{Action: &Action{Kind: ActionScroll, Client: 0, Scroll: ScrollToBottom}})
	if p.Scrolled() {
		t.Fatal("expected pane back at the live viewport after ScrollToBottom")
	}
}

func TestScrollClearWipesScrollback(t *testing.T) {
	p := NewTerminalPane(testPaneId(1), Rect{Rows: 2, Cols: 10})
	for i := 0; i < 10; i++ {
		p.Feed([]byte("line\r\n"))
	}
	if p.Grid.ScrollbackLen() == 0 {
		t.Fatal("expected scrolling past the viewport to retain scrollback")
	}
	applyScroll(p, ScrollClear)
	if p.Grid.ScrollbackLen() != 0 {
		t.Fatalf("ScrollbackLen = %d, want 0 after ScrollClear", p.Grid.ScrollbackLen())
	}
}

func TestSelectionAndCopyPushesOSC52(t *testing.T) {
	s := newTestScreen()
	tab := addTestTab(s, 0, "main")
	s.SetActiveTab(0, 0)
	p, _ := tab.Pane(testPaneId(1))
	p.Feed([]byte("hello"))

	s.Apply(Instruction{Action: &Action{Kind: ActionSelectionStart, Client: 0, MouseRow: 0, MouseCol: 0}})
	s.Apply(Instruction{Action: &Action{Kind: ActionSelectionUpdate, Client: 0, MouseRow: 0, MouseCol: 4}})
	s.Apply(Instruction{Action: &Action{Kind: ActionSelectionEnd, Client: 0, MouseRow: 0, MouseCol: 4}})

	if p.Selection == nil || p.Selection.Active {
		t.Fatalf("expected a finalized, inactive selection, got %+v", p.Selection)
	}
	if got := p.SelectedText(); got != "hello" {
		t.Fatalf("SelectedText() = %q, want %q", got, "hello")
	}

	s.Apply(Instruction{Action: &Action{Kind: ActionCopy, Client: 0}})
	out := s.TakeClientOutput(0)
	if len(out) != 1 || !strings.Contains(string(out[0]), "52;c;") {
		t.Fatalf("expected one OSC 52 clipboard sequence, got %v", out)
	}
}

func TestPaneLineBlendsScrollbackAboveLiveGrid(t *testing.T) {
	p := NewTerminalPane(testPaneId(1), Rect{Rows: 2, Cols: 10})
	p.Feed([]byte("one\r\ntwo\r\nthree\r\n"))
	if p.Grid.ScrollbackLen() == 0 {
		t.Fatal("expected the first line to have scrolled into history")
	}
	p.ScrollUp(1)
	if !p.Scrolled() {
		t.Fatal("expected pane to report scrolled")
	}
	var row grid.Row = p.Line(0)
	if len(row.Cells) == 0 {
		t.Fatal("expected Line(0) to return scrollback content while scrolled")
	}
}
