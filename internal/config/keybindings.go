package config

import (
	"github.com/zellij-org/zellij-go/internal/input"
	"github.com/zellij-org/zellij-go/internal/screen"
)

// actionNames maps the action-name strings a config.yaml may bind a
// key to onto the ActionKind the core understands. Key-syntax parsing
// (turning "ctrl-p" into modifier+rune) and a shipped default table
// are out of scope here — the core imposes no default keymap, per
// the keybinding-surface contract in the external-interfaces section;
// this only resolves the action half of a binding once a caller (the
// CLI/config layer) has already matched a literal key to its name.
var actionNames = map[string]screen.ActionKind{
	"split":             screen.ActionSplit,
	"close-pane":        screen.ActionClosePane,
	"close-tab":         screen.ActionCloseTab,
	"new-tab":           screen.ActionNewTab,
	"go-to-tab":         screen.ActionGoToTab,
	"focus-next":        screen.ActionFocusNext,
	"focus-prev":        screen.ActionFocusPrev,
	"toggle-fullscreen": screen.ActionToggleFullscreen,
	"resize-viewport":   screen.ActionResizeViewport,
	"write":             screen.ActionWriteToFocused,
	"toggle-floating":   screen.ActionToggleFloating,
	"raise-floating":    screen.ActionRaiseFloating,
	"rename-tab":        screen.ActionRenameTab,
	"rename-pane":       screen.ActionRenamePane,
	"toggle-pane-group": screen.ActionTogglePaneGroup,
}

// ResolveAction looks up the ActionKind a config.yaml keybinding
// entry names.
func ResolveAction(name string) (screen.ActionKind, bool) {
	kind, ok := actionNames[name]
	return kind, ok
}

// BindingsForMode returns the literal-key -> action-name table a
// config declares for mode, or nil if it declares none (an empty
// table in a mode means unmodified keys pass through unchanged,
// matching the keybinding-surface contract).
func (c *Config) BindingsForMode(mode input.Mode) map[string]string {
	if c == nil {
		return nil
	}
	return c.Keybindings[mode.String()]
}
