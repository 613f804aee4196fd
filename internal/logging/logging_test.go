package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/zellij-org/zellij-go/internal/bus"
)

func TestPrintfRecordsInfoLine(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.Printf("pane %d spawned", 7)

	lines := l.RecentInfo()
	if len(lines) != 1 {
		t.Fatalf("expected 1 info line, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "pane 7 spawned") {
		t.Errorf("unexpected line: %q", lines[0])
	}
	if len(l.RecentErrors()) != 0 {
		t.Error("expected no error lines")
	}
	if !strings.Contains(buf.String(), "pane 7 spawned") {
		t.Error("expected the message to reach the underlying writer")
	}
}

func TestErrorfRecordsErrorLineSeparately(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.Errorf("pty %d write failed", 3)

	if len(l.RecentInfo()) != 0 {
		t.Error("expected no info lines")
	}
	errs := l.RecentErrors()
	if len(errs) != 1 || !strings.Contains(errs[0], "pty 3 write failed") {
		t.Fatalf("unexpected error lines: %v", errs)
	}
}

func TestRingBufferDropsOldestPastCapacity(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	for i := 0; i < ringCapacity+10; i++ {
		l.Printf("line %d", i)
	}
	lines := l.RecentInfo()
	if len(lines) != ringCapacity {
		t.Fatalf("expected %d lines retained, got %d", ringCapacity, len(lines))
	}
	if !strings.Contains(lines[0], "line 10") {
		t.Errorf("expected oldest retained line to be 'line 10', got %q", lines[0])
	}
}

func TestRecoverCatchesPanicAndCallsOnFatal(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	var diagnostic string

	func() {
		defer Recover(l, bus.ErrorContext{}.Push(bus.ContextScreen), func(d string) {
			diagnostic = d
		})
		panic("boom")
	}()

	if diagnostic == "" {
		t.Fatal("expected onFatal to receive a diagnostic")
	}
	if !strings.Contains(diagnostic, "boom") {
		t.Errorf("expected diagnostic to mention the panic value, got %q", diagnostic)
	}
	if len(l.RecentErrors()) != 1 {
		t.Fatalf("expected the panic to be recorded as an error line, got %v", l.RecentErrors())
	}
}
