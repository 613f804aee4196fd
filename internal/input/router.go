package input

import (
	"github.com/zellij-org/zellij-go/internal/ptymgr"
	"github.com/zellij-org/zellij-go/internal/screen"
)

// NamedKey identifies a non-printable key a terminal reports as a
// multi-byte escape sequence rather than a literal rune.
type NamedKey int

const (
	KeyNone NamedKey = iota
	KeyEnter
	KeyEsc
	KeyBackspace
	KeyTab
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyPageUp
	KeyPageDown
)

// Key is one decoded key press: either a printable rune or a named key,
// plus the modifiers held with it.
type Key struct {
	Rune  rune
	Named NamedKey
	Ctrl  bool
	Alt   bool
	Shift bool
}

// Router tracks one client's current Mode and dispatches its key/mouse/
// paste events into screen.Actions. Each attached client owns its own
// Router — mode is client-local, matching the per-client mode the
// original multiplexer exposes (one client can be in pane mode while
// another stays in normal mode on the same session).
type Router struct {
	Client screen.ClientId
	Mode   Mode
	Editor LineEditor

	bracketedPaste bool
}

// NewRouter constructs a Router for client, starting in normal mode.
func NewRouter(client screen.ClientId) *Router {
	return &Router{Client: client, Mode: ModeNormal}
}

// HandleKey interprets key according to the Router's current mode,
// returning the screen.Actions it produces (zero or more). Switching
// into Pane, Tab, Locked or a rename mode produces none, since Mode is
// Input-local state; entering or leaving Resize, Move or Scroll mode
// emits an ActionChangeMode so Screen can report the new mode.
func (r *Router) HandleKey(key Key) []screen.Action {
	if r.Mode.IsTextEntry() {
		return r.handleTextEntryKey(key)
	}

	// Resize/Move/Scroll handle their own Esc (they return to normal mode
	// via changeModeAction, and Scroll also snaps back to the live
	// viewport), so the generic reset below must not intercept it first.
	inNewMode := r.Mode == ModeResize || r.Mode == ModeMove || r.Mode == ModeScroll
	if (key.Named == KeyEsc && !inNewMode) || (key.Ctrl && key.Rune == 'c' && r.Mode != ModeNormal && r.Mode != ModeLocked) {
		r.Mode = ModeNormal
		return nil
	}

	switch r.Mode {
	case ModeLocked:
		return r.writeRaw(key)
	case ModeNormal:
		return r.handleNormalKey(key)
	case ModePane:
		return r.handlePaneKey(key)
	case ModeTab:
		return r.handleTabKey(key)
	case ModeResize:
		return r.handleResizeKey(key)
	case ModeMove:
		return r.handleMoveKey(key)
	case ModeScroll:
		return r.handleScrollKey(key)
	default:
		r.Mode = ModeNormal
		return nil
	}
}

func (r *Router) handleNormalKey(key Key) []screen.Action {
	if key.Ctrl {
		switch key.Rune {
		case 'p':
			r.Mode = ModePane
			return nil
		case 't':
			r.Mode = ModeTab
			return nil
		case 'n':
			return []screen.Action{{Kind: screen.ActionSplit, Client: r.Client, SplitDir: ptymgr.SplitVertical}}
		case 'g':
			return []screen.Action{{Kind: screen.ActionTogglePaneGroup, Client: r.Client}}
		case 'l':
			r.Mode = ModeLocked
			return nil
		case 'r':
			r.Mode = ModeResize
			return r.changeModeAction()
		case 'w':
			r.Mode = ModeMove
			return r.changeModeAction()
		case 's':
			r.Mode = ModeScroll
			return r.changeModeAction()
		}
	}
	return r.writeRaw(key)
}

// changeModeAction reports the Router's current Mode to Screen, so
// plugins subscribed to mode updates and the client's own status line
// (pushed back down over IPC) stay in sync with client-local Mode
// state.
func (r *Router) changeModeAction() []screen.Action {
	return []screen.Action{{Kind: screen.ActionChangeMode, Client: r.Client, ModeName: r.Mode.String()}}
}

func (r *Router) handlePaneKey(key Key) []screen.Action {
	switch {
	case key.Rune == 'n':
		r.Mode = ModeNormal
		return []screen.Action{{Kind: screen.ActionSplit, Client: r.Client, SplitDir: ptymgr.SplitVertical}}
	case key.Rune == 'h':
		r.Mode = ModeNormal
		return []screen.Action{{Kind: screen.ActionSplit, Client: r.Client, SplitDir: ptymgr.SplitHorizontal}}
	case key.Rune == 'x':
		r.Mode = ModeNormal
		return []screen.Action{{Kind: screen.ActionClosePane, Client: r.Client}}
	case key.Rune == 'z':
		r.Mode = ModeNormal
		return []screen.Action{{Kind: screen.ActionToggleFullscreen, Client: r.Client}}
	case key.Rune == 'f':
		r.Mode = ModeNormal
		return []screen.Action{{Kind: screen.ActionRaiseFloating, Client: r.Client}}
	case key.Rune == 'r':
		r.Mode = ModeRenamePane
		r.Editor.Reset()
		return nil
	case key.Named == KeyRight || key.Rune == 'l':
		return []screen.Action{{Kind: screen.ActionFocusNext, Client: r.Client}}
	case key.Named == KeyLeft || key.Rune == 'k':
		return []screen.Action{{Kind: screen.ActionFocusPrev, Client: r.Client}}
	case key.Named == KeyEnter:
		r.Mode = ModeNormal
		return nil
	}
	return nil
}

func (r *Router) handleTabKey(key Key) []screen.Action {
	switch {
	case key.Rune == 'n':
		r.Mode = ModeNormal
		return []screen.Action{{Kind: screen.ActionNewTab, Client: r.Client}}
	case key.Rune == 'x':
		r.Mode = ModeNormal
		return []screen.Action{{Kind: screen.ActionCloseTab, Client: r.Client}}
	case key.Rune == 'r':
		r.Mode = ModeRenameTab
		r.Editor.Reset()
		return nil
	case key.Rune >= '1' && key.Rune <= '9':
		r.Mode = ModeNormal
		return []screen.Action{{Kind: screen.ActionGoToTab, Client: r.Client, TargetTab: screen.TabIndex(key.Rune - '1')}}
	case key.Named == KeyRight || key.Rune == 'l':
		r.Mode = ModeNormal
		return []screen.Action{{Kind: screen.ActionSwitchTabNext, Client: r.Client}}
	case key.Named == KeyLeft || key.Rune == 'h':
		r.Mode = ModeNormal
		return []screen.Action{{Kind: screen.ActionSwitchTabPrev, Client: r.Client}}
	case key.Rune == 's':
		r.Mode = ModeNormal
		return []screen.Action{{Kind: screen.ActionToggleSyncTab, Client: r.Client}}
	case key.Rune == 'b':
		r.Mode = ModeNormal
		return []screen.Action{{Kind: screen.ActionBreakPane, Client: r.Client, BreakDir: screen.DirRight}}
	case key.Named == KeyEnter:
		r.Mode = ModeNormal
		return nil
	}
	return nil
}

// handleResizeKey grows the focused pane toward hjkl/arrow keys, and
// shrinks it the same direction when Shift is held — HJKL or Shift+
// arrow — matching the multiplexer convention that the direction key
// names which edge moves.
func (r *Router) handleResizeKey(key Key) []screen.Action {
	if dir, ok := resizeDirection(key); ok {
		shrink := key.Shift || (key.Rune >= 'A' && key.Rune <= 'Z')
		return []screen.Action{{Kind: screen.ActionResizePane, Client: r.Client, ResizeDir: dir, Grow: !shrink}}
	}
	if key.Named == KeyEnter || key.Named == KeyEsc {
		r.Mode = ModeNormal
		return r.changeModeAction()
	}
	return nil
}

func resizeDirection(key Key) (screen.Direction, bool) {
	switch {
	case key.Named == KeyLeft || key.Rune == 'h' || key.Rune == 'H':
		return screen.DirLeft, true
	case key.Named == KeyRight || key.Rune == 'l' || key.Rune == 'L':
		return screen.DirRight, true
	case key.Named == KeyUp || key.Rune == 'k' || key.Rune == 'K':
		return screen.DirUp, true
	case key.Named == KeyDown || key.Rune == 'j' || key.Rune == 'J':
		return screen.DirDown, true
	}
	return 0, false
}

func (r *Router) handleMoveKey(key Key) []screen.Action {
	if dir, ok := resizeDirection(key); ok {
		return []screen.Action{{Kind: screen.ActionMoveFocus, Client: r.Client, MoveDir: dir}}
	}
	if key.Named == KeyEnter || key.Named == KeyEsc {
		r.Mode = ModeNormal
		return r.changeModeAction()
	}
	return nil
}

func (r *Router) handleScrollKey(key Key) []screen.Action {
	switch {
	case key.Named == KeyUp || key.Rune == 'k':
		return []screen.Action{{Kind: screen.ActionScroll, Client: r.Client, Scroll: screen.ScrollLineUp}}
	case key.Named == KeyDown || key.Rune == 'j':
		return []screen.Action{{Kind: screen.ActionScroll, Client: r.Client, Scroll: screen.ScrollLineDown}}
	case key.Named == KeyPageUp:
		return []screen.Action{{Kind: screen.ActionScroll, Client: r.Client, Scroll: screen.ScrollPageUp}}
	case key.Named == KeyPageDown:
		return []screen.Action{{Kind: screen.ActionScroll, Client: r.Client, Scroll: screen.ScrollPageDown}}
	case key.Ctrl && key.Rune == 'u':
		return []screen.Action{{Kind: screen.ActionScroll, Client: r.Client, Scroll: screen.ScrollHalfPageUp}}
	case key.Ctrl && key.Rune == 'd':
		return []screen.Action{{Kind: screen.ActionScroll, Client: r.Client, Scroll: screen.ScrollHalfPageDown}}
	case key.Rune == 'c':
		return []screen.Action{{Kind: screen.ActionScroll, Client: r.Client, Scroll: screen.ScrollClear}}
	case key.Rune == 'e':
		r.Mode = ModeNormal
		actions := []screen.Action{{Kind: screen.ActionScroll, Client: r.Client, Scroll: screen.ScrollEditScrollback}}
		return append(actions, r.changeModeAction()...)
	case key.Named == KeyEnter || key.Named == KeyEsc:
		r.Mode = ModeNormal
		actions := []screen.Action{{Kind: screen.ActionScroll, Client: r.Client, Scroll: screen.ScrollToBottom}}
		return append(actions, r.changeModeAction()...)
	}
	return nil
}

// handleTextEntryKey feeds key into the Router's LineEditor for every
// mode that collects free text, committing on Enter and cancelling on
// Escape (both return to normal mode; Escape discards the buffer).
func (r *Router) handleTextEntryKey(key Key) []screen.Action {
	switch key.Named {
	case KeyEnter:
		mode := r.Mode
		text := r.Editor.String()
		r.Mode = ModeNormal
		r.Editor.Reset()
		switch mode {
		case ModeRenameTab:
			return []screen.Action{{Kind: screen.ActionRenameTab, Client: r.Client, Name: text}}
		case ModeRenamePane:
			return []screen.Action{{Kind: screen.ActionRenamePane, Client: r.Client, Name: text}}
		default:
			return nil
		}
	case KeyEsc:
		r.Mode = ModeNormal
		r.Editor.Reset()
		return nil
	case KeyBackspace:
		r.Editor.DeleteBackward()
		return nil
	case KeyLeft:
		r.Editor.CursorLeft()
		return nil
	case KeyRight:
		r.Editor.CursorRight()
		return nil
	}
	if key.Ctrl {
		switch key.Rune {
		case 'a':
			r.Editor.CursorToStart()
		case 'e':
			r.Editor.CursorToEnd()
		case 'k':
			r.Editor.KillToEnd()
		case 'u':
			r.Editor.KillToStart()
		}
		return nil
	}
	if key.Rune != 0 {
		r.Editor.InsertRune(key.Rune)
	}
	return nil
}

func (r *Router) writeRaw(key Key) []screen.Action {
	b := encodeKey(key)
	if b == nil {
		return nil
	}
	return []screen.Action{{Kind: screen.ActionWriteToFocused, Client: r.Client, Bytes: b}}
}

// encodeKey translates a decoded Key back into the bytes a raw terminal
// would have sent, so Normal/Locked mode can forward input the focused
// pane's child process understands.
func encodeKey(key Key) []byte {
	switch key.Named {
	case KeyEnter:
		return []byte{'\r'}
	case KeyBackspace:
		return []byte{0x7F}
	case KeyTab:
		return []byte{'\t'}
	case KeyEsc:
		return []byte{0x1B}
	case KeyUp:
		return []byte("\x1b[A")
	case KeyDown:
		return []byte("\x1b[B")
	case KeyRight:
		return []byte("\x1b[C")
	case KeyLeft:
		return []byte("\x1b[D")
	case KeyPageUp:
		return []byte("\x1b[5~")
	case KeyPageDown:
		return []byte("\x1b[6~")
	}
	if key.Ctrl && key.Rune >= 'a' && key.Rune <= 'z' {
		return []byte{byte(key.Rune-'a') + 1}
	}
	if key.Rune != 0 {
		return []byte(string(key.Rune))
	}
	return nil
}

// HandlePaste wraps pastedText in bracketed-paste framing (ESC[200~ ...
// ESC[201~) when in a mode that forwards input straight to the pane,
// matching how a real terminal reports a paste to an application that
// requested bracketed-paste mode.
func (r *Router) HandlePaste(client screen.ClientId, pastedText []byte) []screen.Action {
	if r.Mode != ModeNormal && r.Mode != ModeLocked {
		return nil
	}
	buf := make([]byte, 0, len(pastedText)+12)
	buf = append(buf, "\x1b[200~"...)
	buf = append(buf, pastedText...)
	buf = append(buf, "\x1b[201~"...)
	return []screen.Action{{Kind: screen.ActionWriteToFocused, Client: client, Bytes: buf}}
}

// Mouse button numbers as reported by SGR mouse mode (1006).
const (
	MouseButtonLeft  = 0
	MouseButtonRight = 2
	MouseWheelUp     = 64
	MouseWheelDown   = 65
)

// MouseEvent is a decoded SGR mouse report.
type MouseEvent struct {
	Row, Col int
	Button   int
	Pressed  bool
	Dragging bool
}

// HandleMouse turns a mouse event into a selection/focus action: a
// left-button press starts a selection at the clicked pane (and moves
// focus there); dragging with the button held extends it; releasing
// ends it. A right-button press copies the current selection, matching
// a terminal's usual left-select/right-copy convention. Wheel events
// scroll the client's focused pane without disturbing its selection or
// focus; the wheel event's row and column are not used.
func (r *Router) HandleMouse(ev MouseEvent) []screen.Action {
	switch {
	case ev.Button == MouseWheelUp:
		return []screen.Action{{Kind: screen.ActionScroll, Client: r.Client, Scroll: screen.ScrollLineUp}}
	case ev.Button == MouseWheelDown:
		return []screen.Action{{Kind: screen.ActionScroll, Client: r.Client, Scroll: screen.ScrollLineDown}}
	case ev.Button == MouseButtonLeft && ev.Pressed && !ev.Dragging:
		return []screen.Action{{Kind: screen.ActionSelectionStart, Client: r.Client, MouseRow: ev.Row, MouseCol: ev.Col}}
	case ev.Button == MouseButtonLeft && ev.Pressed && ev.Dragging:
		return []screen.Action{{Kind: screen.ActionSelectionUpdate, Client: r.Client, MouseRow: ev.Row, MouseCol: ev.Col}}
	case ev.Button == MouseButtonLeft && !ev.Pressed:
		return []screen.Action{{Kind: screen.ActionSelectionEnd, Client: r.Client, MouseRow: ev.Row, MouseCol: ev.Col}}
	case ev.Button == MouseButtonRight && ev.Pressed:
		return []screen.Action{{Kind: screen.ActionCopy, Client: r.Client}}
	}
	return nil
}
