package bus

import "testing"

func TestErrorContextPushOrdersOldestFirst(t *testing.T) {
	var ctx ErrorContext
	ctx = ctx.Push(ContextServer)
	ctx = ctx.Push(ContextPty)
	ctx = ctx.Push(ContextScreen)

	got := ctx.String()
	want := "server > pty > screen"
	if got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestErrorContextDropsOldestWhenFull(t *testing.T) {
	var ctx ErrorContext
	for i := 0; i < errorContextDepth+3; i++ {
		ctx = ctx.Push(ContextScreen)
	}
	if len(ctx.Frames()) != errorContextDepth {
		t.Fatalf("Frames() len = %d, want %d", len(ctx.Frames()), errorContextDepth)
	}
}

func TestEmptyErrorContextString(t *testing.T) {
	var ctx ErrorContext
	if ctx.String() != "<no context>" {
		t.Fatalf("String() = %q, want sentinel", ctx.String())
	}
}

func TestDiagnosticIncludesContextFirst(t *testing.T) {
	var ctx ErrorContext
	ctx = ctx.Push(ContextPlugin)
	diag := Diagnostic(ctx, "boom")
	want := "plugin\npanic: boom"
	if diag != want {
		t.Fatalf("Diagnostic() = %q, want %q", diag, want)
	}
}
