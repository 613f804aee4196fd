package input

import (
	"testing"

	"github.com/zellij-org/zellij-go/internal/screen"
)

func TestCtrlREntersResizeModeAndChangesMode(t *testing.T) {
	r := NewRouter(0)
	actions := r.HandleKey(Key{Rune: 'r', Ctrl: true})
	if r.Mode != ModeResize {
		t.Fatalf("Mode = %v, want ModeResize", r.Mode)
	}
	if len(actions) != 1 || actions[0].Kind != screen.ActionChangeMode {
		t.Fatalf("expected one ActionChangeMode, got %v", actions)
	}
	if actions[0].ModeName != ModeResize.String() {
		t.Fatalf("ModeName = %q, want %q", actions[0].ModeName, ModeResize.String())
	}
}

func TestResizeModeKeysEmitResizePaneActions(t *testing.T) {
	r := NewRouter(0)
	r.Mode = ModeResize

	actions := r.HandleKey(Key{Rune: 'l'})
	if len(actions) != 1 || actions[0].Kind != screen.ActionResizePane {
		t.Fatalf("expected ActionResizePane, got %v", actions)
	}
	if actions[0].ResizeDir != screen.DirRight || !actions[0].Grow {
		t.Fatalf("expected grow-right, got dir=%v grow=%v", actions[0].ResizeDir, actions[0].Grow)
	}

	actions = r.HandleKey(Key{Rune: 'L'})
	if len(actions) != 1 || actions[0].Grow {
		t.Fatalf("expected shrink (Grow=false) for uppercase L, got %v", actions)
	}

	if r.Mode != ModeResize {
		t.Fatalf("Mode = %v, want to stay in ModeResize while resizing", r.Mode)
	}
	actions = r.HandleKey(Key{Named: KeyEnter})
	if r.Mode != ModeNormal {
		t.Fatalf("Mode = %v, want ModeNormal after Enter", r.Mode)
	}
	if len(actions) != 1 || actions[0].Kind != screen.ActionChangeMode {
		t.Fatalf("expected ActionChangeMode on mode exit, got %v", actions)
	}
}

func TestMoveModeKeysEmitMoveFocusActions(t *testing.T) {
	r := NewRouter(0)
	r.Mode = ModeMove

	actions := r.HandleKey(Key{Named: KeyDown})
	if len(actions) != 1 || actions[0].Kind != screen.ActionMoveFocus || actions[0].MoveDir != screen.DirDown {
		t.Fatalf("expected ActionMoveFocus down, got %v", actions)
	}
}

func TestScrollModeKeysEmitScrollActions(t *testing.T) {
	r := NewRouter(0)
	r.Mode = ModeScroll

	cases := []struct {
		key  Key
		kind screen.ScrollKind
	}{
		{Key{Rune: 'k'}, screen.ScrollLineUp},
		{Key{Rune: 'j'}, screen.ScrollLineDown},
		{Key{Named: KeyPageUp}, screen.ScrollPageUp},
		{Key{Named: KeyPageDown}, screen.ScrollPageDown},
		{Key{Rune: 'u', Ctrl: true}, screen.ScrollHalfPageUp},
		{Key{Rune: 'd', Ctrl: true}, screen.ScrollHalfPageDown},
		{Key{Rune: 'c'}, screen.ScrollClear},
	}
	for _, c := range cases {
		actions := r.HandleKey(c.key)
		if len(actions) != 1 || actions[0].Kind != screen.ActionScroll || actions[0].Scroll != c.kind {
			t.Fatalf("key %+v: expected ActionScroll %v, got %v", c.key, c.kind, actions)
		}
		if r.Mode != ModeScroll {
			t.Fatalf("key %+v: expected to stay in ModeScroll", c.key)
		}
	}

	actions := r.HandleKey(Key{Named: KeyEsc})
	if r.Mode != ModeNormal {
		t.Fatalf("Mode = %v, want ModeNormal after Esc", r.Mode)
	}
	if len(actions) != 2 || actions[0].Kind != screen.ActionScroll || actions[0].Scroll != screen.ScrollToBottom {
		t.Fatalf("expected ScrollToBottom followed by ActionChangeMode, got %v", actions)
	}
	if actions[1].Kind != screen.ActionChangeMode {
		t.Fatalf("expected ActionChangeMode as the second action, got %v", actions[1])
	}
}

func TestHandleMouseLeftDragReleaseDrivesSelection(t *testing.T) {
	r := NewRouter(0)

	start := r.HandleMouse(MouseEvent{Row: 1, Col: 2, Button: MouseButtonLeft, Pressed: true})
	if len(start) != 1 || start[0].Kind != screen.ActionSelectionStart {
		t.Fatalf("expected ActionSelectionStart, got %v", start)
	}

	drag := r.HandleMouse(MouseEvent{Row: 1, Col: 5, Button: MouseButtonLeft, Pressed: true, Dragging: true})
	if len(drag) != 1 || drag[0].Kind != screen.ActionSelectionUpdate {
		t.Fatalf("expected ActionSelectionUpdate, got %v", drag)
	}

	release := r.HandleMouse(MouseEvent{Row: 1, Col: 5, Button: MouseButtonLeft, Pressed: false})
	if len(release) != 1 || release[0].Kind != screen.ActionSelectionEnd {
		t.Fatalf("expected ActionSelectionEnd, got %v", release)
	}

	copyAction := r.HandleMouse(MouseEvent{Button: MouseButtonRight, Pressed: true})
	if len(copyAction) != 1 || copyAction[0].Kind != screen.ActionCopy {
		t.Fatalf("expected ActionCopy, got %v", copyAction)
	}
}

func TestHandleMouseWheelScrolls(t *testing.T) {
	r := NewRouter(0)

	up := r.HandleMouse(MouseEvent{Button: MouseWheelUp})
	if len(up) != 1 || up[0].Kind != screen.ActionScroll || up[0].Scroll != screen.ScrollLineUp {
		t.Fatalf("expected ScrollLineUp, got %v", up)
	}
	down := r.HandleMouse(MouseEvent{Button: MouseWheelDown})
	if len(down) != 1 || down[0].Kind != screen.ActionScroll || down[0].Scroll != screen.ScrollLineDown {
		t.Fatalf("expected ScrollLineDown, got %v", down)
	}
}

func TestTabModeSwitchAndSyncKeys(t *testing.T) {
	r := NewRouter(0)
	r.Mode = ModeTab

	actions := r.HandleKey(Key{Rune: 'l'})
	if len(actions) != 1 || actions[0].Kind != screen.ActionSwitchTabNext {
		t.Fatalf("expected ActionSwitchTabNext, got %v", actions)
	}

	r.Mode = ModeTab
	actions = r.HandleKey(Key{Rune: 's'})
	if len(actions) != 1 || actions[0].Kind != screen.ActionToggleSyncTab {
		t.Fatalf("expected ActionToggleSyncTab, got %v", actions)
	}

	r.Mode = ModeTab
	actions = r.HandleKey(Key{Rune: 'b'})
	if len(actions) != 1 || actions[0].Kind != screen.ActionBreakPane {
		t.Fatalf("expected ActionBreakPane, got %v", actions)
	}
}
