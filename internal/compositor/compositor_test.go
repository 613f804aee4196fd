package compositor

import (
	"image/color"
	"strings"
	"testing"

	"github.com/zellij-org/zellij-go/internal/grid"
	"github.com/zellij-org/zellij-go/internal/ptymgr"
	"github.com/zellij-org/zellij-go/internal/screen"
)

func paneId(n uint32) screen.PaneId { return screen.TerminalPaneId(ptymgr.TerminalId(n)) }

func TestCombineBoundaryUnionsConnections(t *testing.T) {
	cases := []struct{ a, b, want rune }{
		{'┐', '│', '┤'},
		{'┐', '┌', '┬'},
		{'┐', '└', '┼'},
		{' ', '│', '│'},
		{'─', ' ', '─'},
	}
	for _, c := range cases {
		if got := CombineBoundary(c.a, c.b); got != c.want {
			t.Errorf("CombineBoundary(%q, %q) = %q, want %q", c.a, c.b, got, c.want)
		}
	}
}

func TestComposeDrawsFrameAroundSinglePane(t *testing.T) {
	viewport := screen.Rect{Rows: 10, Cols: 20}
	first := screen.NewTerminalPane(paneId(1), viewport)
	tab := screen.NewTab(0, "main", first, viewport)

	frame := Compose(tab, 0, viewport)
	if frame.Rows != 10 || frame.Cols != 20 {
		t.Fatalf("Frame dims = %dx%d, want 10x20", frame.Rows, frame.Cols)
	}
}

func TestOccludedSpansCoversMiddleOfRow(t *testing.T) {
	tiled := &screen.Pane{Id: paneId(1), Geom: screen.Rect{X: 0, Y: 0, Rows: 10, Cols: 40}}
	floating := &screen.Pane{Id: paneId(2), Geom: screen.Rect{X: 10, Y: 2, Rows: 5, Cols: 10}}
	panes := []*screen.Pane{tiled, floating}
	zOrder := []screen.PaneId{floating.Id}

	occ := occludedSpans(panes, zOrder, 3, 40)
	visible := visibleSpans(occ, 40)
	if len(visible) != 2 {
		t.Fatalf("expected a left and right visible span (middle-split row), got %d: %+v", len(visible), visible)
	}
	if visible[0].From != 0 || visible[0].To != 10 {
		t.Fatalf("left span = %+v, want [0,10)", visible[0])
	}
	if visible[1].From != 20 || visible[1].To != 40 {
		t.Fatalf("right span = %+v, want [20,40)", visible[1])
	}
}

func TestOccludedSpansRowOutsideFloatingIsFullyVisible(t *testing.T) {
	floating := &screen.Pane{Id: paneId(1), Geom: screen.Rect{X: 10, Y: 2, Rows: 5, Cols: 10}}
	panes := []*screen.Pane{floating}
	zOrder := []screen.PaneId{floating.Id}

	occ := occludedSpans(panes, zOrder, 0, 40)
	visible := visibleSpans(occ, 40)
	if len(visible) != 1 || visible[0].From != 0 || visible[0].To != 40 {
		t.Fatalf("expected whole row visible, got %+v", visible)
	}
}

func TestEncodeANSIEmitsForegroundAndBackgroundSGR(t *testing.T) {
	chunk := CharacterChunk{
		Row: 1, Col: 2,
		Cells: []grid.Cell{{
			Char: 'x',
			Fg:   color.RGBA{R: 0xff, G: 0x00, B: 0x00, A: 0xff},
			Bg:   color.RGBA{R: 0x00, G: 0x00, B: 0xff, A: 0xff},
		}},
	}
	out := string(EncodeANSI(chunk))
	if !strings.Contains(out, "\x1b[38;2;255;0;0m") {
		t.Fatalf("expected a truecolor foreground sequence, got %q", out)
	}
	if !strings.Contains(out, "\x1b[48;2;0;0;255m") {
		t.Fatalf("expected a truecolor background sequence, got %q", out)
	}
}

func TestEncodeANSIOmitsColorSGRForDefaultCell(t *testing.T) {
	chunk := CharacterChunk{Cells: []grid.Cell{{Char: 'y'}}}
	out := string(EncodeANSI(chunk))
	if strings.Contains(out, "38;2") || strings.Contains(out, "48;2") {
		t.Fatalf("expected no color SGR for an unstyled cell, got %q", out)
	}
}
