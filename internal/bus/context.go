// Package bus implements the typed message channels that connect the
// session runtime's actors (Screen, PTY Manager, Plugin Host, Input Router,
// Server) and the small per-thread diagnostic stack that rides along with
// every send.
package bus

import (
	"fmt"
	"strings"
)

// ContextType tags which actor produced or is handling a message at a
// given point in its lifetime. The zero value is unset and never
// appears in a populated ErrorContext.
type ContextType int

const (
	ContextUnset ContextType = iota
	ContextScreen
	ContextPty
	ContextPlugin
	ContextInput
	ContextServer
	ContextCompositor
	ContextIPC
)

func (c ContextType) String() string {
	switch c {
	case ContextScreen:
		return "screen"
	case ContextPty:
		return "pty"
	case ContextPlugin:
		return "plugin"
	case ContextInput:
		return "input"
	case ContextServer:
		return "server"
	case ContextCompositor:
		return "compositor"
	case ContextIPC:
		return "ipc"
	default:
		return "unset"
	}
}

// errorContextDepth bounds the diagnostic stack so it stays Copy-able and
// cheap to thread through every send.
const errorContextDepth = 8

// ErrorContext is a small fixed-capacity stack of ContextType values
// recording which actor produced and handled each message on the way to
// a failure. It is a plain value type: copying it copies the whole
// stack, so it can be attached to a message without any shared state or
// synchronization.
type ErrorContext struct {
	frames [errorContextDepth]ContextType
	len    int
}

// Push records that ctx is now handling the message. If the stack is
// already full, the oldest frame is dropped to make room — the stack
// favors the most recent handlers, which are the most useful for
// localizing a failure.
func (e ErrorContext) Push(ctx ContextType) ErrorContext {
	if e.len < errorContextDepth {
		e.frames[e.len] = ctx
		e.len++
		return e
	}
	copy(e.frames[:], e.frames[1:])
	e.frames[errorContextDepth-1] = ctx
	return e
}

// Frames returns the recorded context tags, oldest first.
func (e ErrorContext) Frames() []ContextType {
	out := make([]ContextType, e.len)
	copy(out, e.frames[:e.len])
	return out
}

// String renders the context stack as a diagnostic trail, e.g.
// "server > pty > screen". Used as the first line of a fatal diagnostic.
func (e ErrorContext) String() string {
	if e.len == 0 {
		return "<no context>"
	}
	parts := make([]string, e.len)
	for i := 0; i < e.len; i++ {
		parts[i] = e.frames[i].String()
	}
	return strings.Join(parts, " > ")
}

// Diagnostic formats a panic value together with the context stack, the
// shape a per-actor panic hook forwards to the server loop.
func Diagnostic(ctx ErrorContext, recovered any) string {
	return fmt.Sprintf("%s\npanic: %v", ctx, recovered)
}
