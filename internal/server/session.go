// Package server is the session runtime's glue layer: it owns one
// Screen, its PTY Manager, and its ipc.Server, and runs the single
// loop that applies every client action and PTY event to Screen and
// broadcasts the resulting frames back out. No other package wires
// these actors together; everything below it (bus, ptymgr, screen,
// compositor, ipc) stays usable on its own.
package server

import (
	"bytes"
	"context"
	"fmt"

	"github.com/zellij-org/zellij-go/internal/bus"
	"github.com/zellij-org/zellij-go/internal/compositor"
	"github.com/zellij-org/zellij-go/internal/config"
	"github.com/zellij-org/zellij-go/internal/ipc"
	"github.com/zellij-org/zellij-go/internal/logging"
	"github.com/zellij-org/zellij-go/internal/plugin"
	"github.com/zellij-org/zellij-go/internal/ptymgr"
	"github.com/zellij-org/zellij-go/internal/resurrect"
	"github.com/zellij-org/zellij-go/internal/screen"
)

// ptyInboxCapacity bounds the PTY Manager -> Screen link so one chatty
// child process applies backpressure instead of exhausting memory for
// the rest of the session.
const ptyInboxCapacity = 64

// serverVersion is compared against every plugin's exported version
// string on load; a mismatch refuses to load that plugin.
const serverVersion = "0.1.0"

// Session runs one named session end to end: accepting client
// connections, spawning the first tab for a brand-new session,
// dispatching every attached client's actions into Screen, and
// broadcasting Render frames after every change.
type Session struct {
	name   string
	cfg    *config.Config
	logger *logging.Logger

	scr *screen.Screen
	pty *ptymgr.Manager
	ipc *ipc.Server

	clients  map[screen.ClientId]*ipc.Conn
	ptyInbox chan bus.Envelope[ptymgr.ScreenInstruction]
}

// Open claims name's session socket and constructs the actors that
// back it. The caller must call Run to start serving.
func Open(name string, cfg *config.Config, logger *logging.Logger) (*Session, error) {
	if cfg == nil {
		cfg = &config.Config{}
	}

	ptyInbox := bus.NewInbox[ptymgr.ScreenInstruction](ptyInboxCapacity)
	toScreen := bus.NewBoundedSender(ptyInbox, bus.ContextPty)
	pty := ptymgr.New(toScreen, logger.Std())
	scr := screen.New(pty, logger.Std())
	scr.AttachPluginHost(plugin.New(context.Background(), serverVersion, logger.Std()))

	ipcServer, err := ipc.Listen(name, logger.Std())
	if err != nil {
		return nil, fmt.Errorf("open session %q: %w", name, err)
	}

	return &Session{
		name:     name,
		cfg:      cfg,
		logger:   logger,
		scr:      scr,
		pty:      pty,
		ipc:      ipcServer,
		clients:  make(map[screen.ClientId]*ipc.Conn),
		ptyInbox: ptyInbox,
	}, nil
}

// Run serves the session until it's killed, panics, or every client
// sends DetachSession and the listener is closed. defer'd recovery
// broadcasts Exit(Error) to every attached client before tearing down,
// matching the rest of the runtime's one-recover-per-actor convention.
func (s *Session) Run() {
	ctx := bus.ErrorContext{}.Push(bus.ContextServer)
	defer logging.Recover(s.logger, ctx, func(diagnostic string) {
		s.ipc.Broadcast(ipc.ServerMessage{Kind: ipc.MsgExit, ExitReason: ipc.ExitError, ExitBacktrace: diagnostic})
		s.ipc.Close()
	})

	go s.ipc.Serve()

	for {
		select {
		case conn, ok := <-s.ipc.Attach:
			if !ok {
				return
			}
			s.handleAttach(conn)

		case env, ok := <-s.ptyInbox:
			if !ok {
				return
			}
			s.scr.Apply(screen.Instruction{FromPty: &env.Payload})
			s.broadcastRenders()
		}
	}
}

func (s *Session) handleAttach(conn *ipc.Conn) {
	s.clients[conn.Id] = conn

	if len(s.scr.Tabs) == 0 {
		viewport := screen.Rect{Rows: conn.Hello.Attrs.Rows, Cols: conn.Hello.Attrs.Cols}
		var cmd *ptymgr.RunCommand
		if s.cfg.DefaultShell != "" {
			cmd = &ptymgr.RunCommand{Command: s.cfg.DefaultShell, Cwd: conn.Hello.Opts.Cwd}
		}
		ctx := bus.ErrorContext{}.Push(bus.ContextServer)
		if _, err := s.scr.NewTab(ctx, conn.Id, viewport, cmd, conn.Hello.Opts.Cwd); err != nil {
			s.logger.Errorf("session %s: new tab for client %d: %v", s.name, conn.Id, err)
		}
	} else if _, ok := s.scr.ActiveTab(conn.Id); !ok {
		s.scr.SetActiveTab(conn.Id, s.scr.Tabs[0].Index)
	}

	go s.readClient(conn)
}

func (s *Session) readClient(conn *ipc.Conn) {
	for {
		msg, err := conn.Recv()
		if err != nil {
			s.handleDetach(conn.Id)
			return
		}
		if s.dispatch(conn, msg) {
			return
		}
	}
}

// dispatch applies one client message and reports whether the client
// loop that called it should stop (the session was killed).
func (s *Session) dispatch(conn *ipc.Conn, msg ipc.ClientMessage) bool {
	switch msg.Kind {
	case ipc.MsgAction:
		action := msg.Action
		action.Client = conn.Id
		s.scr.Apply(screen.Instruction{Action: &action})
		if action.Kind == screen.ActionChangeMode {
			if err := conn.Send(ipc.ServerMessage{Kind: ipc.MsgSwitchToMode, Mode: action.ModeName}); err != nil {
				s.logger.Errorf("session %s: send mode change to client %d: %v", s.name, conn.Id, err)
			}
		}
		for _, out := range s.scr.TakeClientOutput(conn.Id) {
			if err := conn.Send(ipc.ServerMessage{Kind: ipc.MsgRender, RenderBytes: out}); err != nil {
				s.logger.Errorf("session %s: send sideband output to client %d: %v", s.name, conn.Id, err)
			}
		}
		s.broadcastRenders()

	case ipc.MsgTerminalResize:
		if tab, ok := s.scr.ActiveTab(conn.Id); ok {
			tab.Resize(screen.Rect{Rows: msg.ResizeRows, Cols: msg.ResizeCols})
			s.broadcastRenders()
		}

	case ipc.MsgForegroundColor:
		s.logger.Printf("session %s: client %d reports foreground color %s", s.name, conn.Id, msg.ColorInstruction)

	case ipc.MsgBackgroundColor:
		s.logger.Printf("session %s: client %d reports background color %s", s.name, conn.Id, msg.ColorInstruction)

	case ipc.MsgDetachSession:
		for _, id := range msg.DetachClients {
			s.handleDetach(id)
		}

	case ipc.MsgKillSession:
		s.shutdown(ipc.ExitNormal)
		return true
	}
	return false
}

func (s *Session) handleDetach(id screen.ClientId) {
	delete(s.clients, id)
	s.scr.RemoveClient(id)
	s.ipc.Detach(id)
}

// shutdown saves a resurrection snapshot of the session's current
// layout, tells every client why it's exiting, and releases the
// session's socket.
func (s *Session) shutdown(reason ipc.ExitReason) {
	if err := resurrect.Save(resurrect.FromTabs(s.name, s.scr.Tabs)); err != nil {
		s.logger.Errorf("session %s: save resurrection snapshot: %v", s.name, err)
	}
	if err := s.scr.ClosePlugins(context.Background()); err != nil {
		s.logger.Errorf("session %s: close plugin host: %v", s.name, err)
	}
	s.ipc.Broadcast(ipc.ServerMessage{Kind: ipc.MsgExit, ExitReason: reason})
	s.ipc.Close()
}

// broadcastRenders composes and sends a fresh frame to every attached
// client. Two clients sharing one tab in the same tick is a known
// limitation: a Grid's dirty rows are consumed by the first Compose
// call that reads them, so the second client on that tab only gets a
// full frame on its next independent change (a resize or reattach,
// both of which force a full repaint upstream in compositor.Compose).
func (s *Session) broadcastRenders() {
	for id, conn := range s.clients {
		tab, ok := s.scr.ActiveTab(id)
		if !ok {
			continue
		}
		frame := compositor.Compose(tab, id, tab.Viewport())
		if len(frame.Changed) == 0 && !frame.CursorShow {
			continue
		}

		var buf bytes.Buffer
		for _, chunk := range frame.Changed {
			buf.Write(compositor.EncodeANSI(chunk))
		}
		if frame.CursorShow {
			fmt.Fprintf(&buf, "\x1b[%d;%dH", frame.CursorRow+1, frame.CursorCol+1)
		}

		if err := conn.Send(ipc.ServerMessage{Kind: ipc.MsgRender, RenderBytes: buf.Bytes()}); err != nil {
			s.logger.Errorf("session %s: render to client %d: %v", s.name, id, err)
		}
	}
}

// Close releases the session's socket and lock file without
// broadcasting Exit, for callers that already know every client is
// gone (e.g. a test harness tearing down).
func (s *Session) Close() error {
	if err := s.scr.ClosePlugins(context.Background()); err != nil {
		s.logger.Errorf("session %s: close plugin host: %v", s.name, err)
	}
	return s.ipc.Close()
}
