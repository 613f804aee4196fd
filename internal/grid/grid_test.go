package grid

import (
	"testing"

	"github.com/danielgatis/go-ansicode"
)

func writeString(g *Grid, s string) {
	dec := ansicode.NewDecoder(g)
	dec.Write([]byte(s))
}

func TestInputAdvancesCursorAndWritesCells(t *testing.T) {
	g := New(5, 10)
	writeString(g, "hi")
	row := g.Line(0)
	if row.Cells[0].Char != 'h' || row.Cells[1].Char != 'i' {
		t.Fatalf("row = %q%q, want hi", string(row.Cells[0].Char), string(row.Cells[1].Char))
	}
	if g.Cursor() != (Position{Row: 0, Col: 2}) {
		t.Fatalf("cursor = %+v, want (0,2)", g.Cursor())
	}
}

func TestLineWrapMarksRowWrapped(t *testing.T) {
	g := New(3, 4)
	writeString(g, "abcde")
	if !g.Line(0).Wrapped {
		t.Fatal("expected row 0 to be marked wrapped")
	}
	if g.Line(1).Cells[0].Char != 'e' {
		t.Fatalf("row1[0] = %q, want e", string(g.Line(1).Cells[0].Char))
	}
}

func TestScrollbackBoundedByLimit(t *testing.T) {
	g := New(2, 4)
	g.above = newScrollback(3)
	for i := 0; i < 10; i++ {
		writeString(g, "x\r\n")
	}
	if g.ScrollbackLen() > 3 {
		t.Fatalf("ScrollbackLen() = %d, want <= 3", g.ScrollbackLen())
	}
}

func TestResizeIdempotentAtSameDimensions(t *testing.T) {
	g := New(5, 10)
	writeString(g, "hello")
	before := g.Line(0)
	g.Resize(5, 10)
	after := g.Line(0)
	for i := range before.Cells {
		if before.Cells[i].Char != after.Cells[i].Char {
			t.Fatalf("resize to identical size changed cell %d", i)
		}
	}
}

func TestAlternateScreenHasNoScrollback(t *testing.T) {
	g := New(2, 4)
	g.EnterAlternateScreen()
	for i := 0; i < 10; i++ {
		writeString(g, "x\r\n")
	}
	if g.ScrollbackLen() != 0 {
		t.Fatalf("ScrollbackLen() in alt screen = %d, want 0", g.ScrollbackLen())
	}
	g.ExitAlternateScreen()
	if g.InAlternateScreen() {
		t.Fatal("expected to have left alternate screen")
	}
}

func TestCarriageReturnAndLineFeed(t *testing.T) {
	g := New(3, 5)
	writeString(g, "ab\r\ncd")
	if g.Line(1).Cells[0].Char != 'c' {
		t.Fatalf("row1[0] = %q, want c", string(g.Line(1).Cells[0].Char))
	}
	if g.Cursor().Col != 2 {
		t.Fatalf("cursor col = %d, want 2", g.Cursor().Col)
	}
}

func TestClearScreenAll(t *testing.T) {
	g := New(2, 3)
	writeString(g, "abcdef")
	writeString(g, "\x1b[2J")
	for r := 0; r < 2; r++ {
		for _, c := range g.Line(r).Cells {
			if c.Char != ' ' {
				t.Fatalf("row %d not cleared: %q", r, string(c.Char))
			}
		}
	}
}
