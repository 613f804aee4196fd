// Package ipc implements the client<->server transport (6): a
// length-prefixed framed protocol over a per-session Unix domain
// socket, the message enums carried over it, and the attach-probing
// and session-directory helpers a client uses to discover live
// sessions before connecting.
package ipc

import (
	"github.com/zellij-org/zellij-go/internal/bus"
	"github.com/zellij-org/zellij-go/internal/screen"
)

// ClientMessageKind enumerates the payload variants a client may send.
type ClientMessageKind int

const (
	MsgNewClient ClientMessageKind = iota
	MsgAttachClient
	MsgAction
	MsgTerminalResize
	MsgTerminalPixelDimensions
	MsgBackgroundColor
	MsgForegroundColor
	MsgClientExited
	MsgKillSession
	MsgConnStatus
	MsgDetachSession
)

// ClientAttrs describes the attaching terminal: its size and any
// capability flags the server needs before it can render a first
// frame.
type ClientAttrs struct {
	Rows, Cols  int
	PixelWidth  int
	PixelHeight int
	TrueColor   bool
}

// ClientOptions carries the command-line options a brand-new session
// is created with (layout path, starting cwd, and so on). Left as a
// loosely-typed bag here; the config layer is what gives it meaning.
type ClientOptions struct {
	Layout string
	Cwd    string
}

// ClientMessage is one frame a client sends to the server. Only the
// fields relevant to Kind are populated, matching the Action payload
// convention screen.Action already uses.
type ClientMessage struct {
	Kind ClientMessageKind
	Ctx  bus.ErrorContext

	Attrs   ClientAttrs
	Opts    ClientOptions
	Layout  string
	Plugins []string

	AttachTab  screen.TabIndex
	AttachPane *screen.PaneId

	Action screen.Action

	ResizeRows, ResizeCols int

	PixelWidth, PixelHeight int

	ColorInstruction string

	DetachClients []screen.ClientId
}

// ServerMessageKind enumerates the payload variants the server may
// send back to an attached client.
type ServerMessageKind int

const (
	MsgRender ServerMessageKind = iota
	MsgUnblockInputThread
	MsgSwitchToMode
	MsgConnected
	MsgActiveClients
	MsgExit
	MsgLog
	MsgLogError
	MsgSwitchSession
)

// ExitReason enumerates why a session stopped serving a client.
type ExitReason int

const (
	ExitNormal ExitReason = iota
	ExitError
	ExitForceDetached
	ExitWrongPassword
	ExitNoMoreAttachableClients
)

// String renders reason the way a client prints it on final teardown.
func (r ExitReason) String() string {
	switch r {
	case ExitNormal:
		return "normal"
	case ExitError:
		return "error"
	case ExitForceDetached:
		return "force detached"
	case ExitWrongPassword:
		return "wrong password"
	case ExitNoMoreAttachableClients:
		return "no more attachable clients"
	default:
		return "unknown"
	}
}

// ServerMessage is one frame the server sends to a client.
type ServerMessage struct {
	Kind ServerMessageKind

	RenderBytes []byte

	Mode string

	ActiveClients []screen.ClientId

	ExitReason    ExitReason
	ExitBacktrace string

	LogLines []string

	SwitchSessionTarget string
}
