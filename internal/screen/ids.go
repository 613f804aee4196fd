// Package screen owns the Screen/Tab/Pane model: binary split-tree
// tiling, floating pane z-order, pane groups, and the full per-pane
// instruction set (focus, resize, scroll, selection, mode, layout).
// It is the actor described as Screen, one per session.
package screen

import (
	"github.com/google/uuid"

	"github.com/zellij-org/zellij-go/internal/ptymgr"
)

// ClientId identifies one attached terminal client (a human at a
// keyboard) for the lifetime of its connection.
type ClientId uint16

// TabIndex identifies one tab within a session, stable for the tab's
// lifetime (closing tab 1 does not renumber tab 2).
type TabIndex int

// PluginId identifies one running plugin instance.
type PluginId uuid.UUID

// String renders a PluginId the way a pane title or log line would show
// it.
func (p PluginId) String() string { return uuid.UUID(p).String() }

// NewPluginId allocates a fresh plugin instance id.
func NewPluginId() PluginId { return PluginId(uuid.New()) }

// PaneKind distinguishes the two things that can occupy a pane slot.
type PaneKind int

const (
	PaneKindTerminal PaneKind = iota
	PaneKindPlugin
)

// PaneId tags a pane slot with exactly one of a PTY-backed terminal or a
// running plugin instance — the two are never both populated.
type PaneId struct {
	Kind     PaneKind
	Terminal ptymgr.TerminalId
	Plugin   PluginId
}

// TerminalPaneId builds a PaneId for a PTY-backed pane.
func TerminalPaneId(id ptymgr.TerminalId) PaneId {
	return PaneId{Kind: PaneKindTerminal, Terminal: id}
}

// PluginPaneId builds a PaneId for a plugin-backed pane.
func PluginPaneId(id PluginId) PaneId {
	return PaneId{Kind: PaneKindPlugin, Plugin: id}
}
