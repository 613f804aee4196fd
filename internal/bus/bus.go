package bus

import (
	"fmt"
	"log"
)

// Envelope wraps an actor inbox payload together with the ErrorContext
// accumulated on its way to this actor.
type Envelope[T any] struct {
	Ctx     ErrorContext
	Payload T
}

// Sender is the write side of an actor's inbox. Unbounded senders never
// block; bounded senders apply backpressure by blocking the caller until
// room is available, matching the PTY->Screen contract (one runaway
// child must not exhaust memory for the rest of the session).
type Sender[T any] struct {
	ch     chan Envelope[T]
	self   ContextType
	closed bool
}

// NewUnboundedSender wraps a channel created with a large/zero-cost
// buffer so sends never apply backpressure.
func NewUnboundedSender[T any](ch chan Envelope[T], self ContextType) *Sender[T] {
	return &Sender[T]{ch: ch, self: self}
}

// NewBoundedSender wraps a channel created with a small fixed buffer,
// used for links (like PTY->Screen) that must apply backpressure.
func NewBoundedSender[T any](ch chan Envelope[T], self ContextType) *Sender[T] {
	return &Sender[T]{ch: ch, self: self}
}

// Send pushes payload to the inbox, recording that it passed through the
// sender's own actor context. Blocks if the channel is bounded and full.
func (s *Sender[T]) Send(ctx ErrorContext, payload T) {
	if s == nil || s.ch == nil {
		return
	}
	s.ch <- Envelope[T]{Ctx: ctx.Push(s.self), Payload: payload}
}

// Close closes the underlying channel, signalling shutdown to the
// receiver via the normal closed-channel read. It does not count other
// Senders sharing the same channel: the first Close closes it for all of
// them. Safe to call more than once on the same Sender.
func (s *Sender[T]) Close() {
	if s == nil || s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// NewInbox allocates the channel backing an actor's inbox. capacity <= 0
// means unbounded (a large buffer sized to never realistically fill);
// capacity > 0 applies real backpressure at that depth.
func NewInbox[T any](capacity int) chan Envelope[T] {
	if capacity <= 0 {
		// "Unbounded" inboxes still need a concrete buffer in Go; size it
		// generously so a send never blocks under realistic load while
		// keeping the channel bounded in memory.
		capacity = 4096
	}
	return make(chan Envelope[T], capacity)
}

// PanicHook recovers a panic in an actor's run loop, logs the ErrorContext
// trail, and forwards a fatal notice to onFatal (the server loop, which
// broadcasts Exit(Error(trace)) to the session's clients and tears the
// session down without touching any other session).
func PanicHook(logger *log.Logger, ctx ErrorContext, onFatal func(diagnostic string)) {
	if r := recover(); r != nil {
		diag := Diagnostic(ctx, r)
		if logger != nil {
			logger.Print(diag)
		}
		if onFatal != nil {
			onFatal(diag)
		}
	}
}

// Drain eagerly consumes every message an actor owes its inbox once its
// run loop observes a shutdown signal, so handler-side invariants that
// assume idempotent draining are respected even when a send race leaves
// a few messages behind.
func Drain[T any](ch chan Envelope[T], handle func(Envelope[T])) {
	for {
		select {
		case env, ok := <-ch:
			if !ok {
				return
			}
			handle(env)
		default:
			return
		}
	}
}

// ErrShutdown is returned by blocking actor operations once the actor's
// inbox channel has been closed (the last sender dropped).
var ErrShutdown = fmt.Errorf("bus: actor inbox closed")
