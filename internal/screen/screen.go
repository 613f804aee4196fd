package screen

import (
	"context"
	"log"
	"os"

	"github.com/aymanbagabas/go-osc52/v2"

	"github.com/zellij-org/zellij-go/internal/bus"
	"github.com/zellij-org/zellij-go/internal/plugin"
	"github.com/zellij-org/zellij-go/internal/ptymgr"
)

// Instruction is Screen's inbox message type: either an event forwarded
// from the PTY Manager, or an action originating from a client (via the
// Input Router) or the IPC server.
type Instruction struct {
	FromPty *ptymgr.ScreenInstruction
	Action  *Action
}

// ActionKind enumerates the client-originated operations Screen handles.
type ActionKind int

const (
	ActionSplit ActionKind = iota
	ActionClosePane
	ActionCloseTab
	ActionNewTab
	ActionGoToTab
	ActionFocusNext
	ActionFocusPrev
	ActionToggleFullscreen
	ActionResizeViewport
	ActionWriteToFocused
	ActionToggleFloating
	ActionRaiseFloating
	ActionRenameTab
	ActionRenamePane
	ActionTogglePaneGroup

	ActionResizePane
	ActionMoveFocus
	ActionScroll
	ActionSwitchTabNext
	ActionSwitchTabPrev
	ActionToggleSyncTab
	ActionBreakPane
	ActionChangeMode

	ActionSelectionStart
	ActionSelectionUpdate
	ActionSelectionEnd
	ActionCopy

	ActionLoadPlugin
)

// ScrollKind selects which scrollback movement an ActionScroll performs.
type ScrollKind int

const (
	ScrollLineUp ScrollKind = iota
	ScrollLineDown
	ScrollPageUp
	ScrollPageDown
	ScrollHalfPageUp
	ScrollHalfPageDown
	ScrollToBottom
	ScrollClear
	ScrollEditScrollback
)

// Action is one client-originated instruction, carrying only the fields
// relevant to its Kind.
type Action struct {
	Kind   ActionKind
	Client ClientId

	SplitDir ptymgr.SplitDirection
	RunCmd   *ptymgr.RunCommand
	Cwd      string

	Viewport  Rect
	Name      string
	Bytes     []byte
	TargetTab TabIndex

	ResizeDir Direction
	Grow      bool
	MoveDir   Direction
	BreakDir  Direction
	Scroll    ScrollKind
	ModeName  string

	MouseRow, MouseCol int

	PluginPath    string
	Subscriptions []plugin.EventKind
}

// Screen is the Screen actor: owns every Tab in the session, the pane
// tree within each, and the pty Manager used to spawn/resize/signal
// terminal panes. It runs single-threaded: its exported methods are
// not safe for concurrent use, so calls come from one goroutine at a
// time (the session loop in internal/server, or directly,
// synchronously, before that loop starts, e.g. to build the first tab).
type Screen struct {
	Tabs      []*Tab
	activeTab map[ClientId]TabIndex
	nextTab   TabIndex

	pty    *ptymgr.Manager
	groups *PaneGroups

	pendingPanes map[ptymgr.TerminalId]pendingPane

	logger *log.Logger

	toPty *bus.Sender[ptymgr.SpawnTerminal]

	plugins    *plugin.Host
	pluginInst map[PaneId]plugin.Id

	// clientMode records each client's current Input mode, reported by
	// ActionChangeMode, so plugin mode-update events always carry the
	// latest value.
	clientMode map[ClientId]string

	// clientOutput is a per-client sideband for bytes Screen wants
	// written straight to a client's terminal outside the normal render
	// path (e.g. an OSC 52 clipboard sequence from a Copy action).
	clientOutput map[ClientId][][]byte
}

type pendingPane struct {
	tab    TabIndex
	target ptymgr.ClientOrTabIndex
	split  ptymgr.SplitDirection
}

// New constructs an empty Screen. Call NewTab at least once before any
// client attaches.
func New(pty *ptymgr.Manager, logger *log.Logger) *Screen {
	if logger == nil {
		logger = log.New(logWriterDiscard{}, "", 0)
	}
	return &Screen{
		activeTab:    make(map[ClientId]TabIndex),
		groups:       NewPaneGroups(),
		pendingPanes: make(map[ptymgr.TerminalId]pendingPane),
		pty:          pty,
		logger:       logger,
		pluginInst:   make(map[PaneId]plugin.Id),
		clientMode:   make(map[ClientId]string),
		clientOutput: make(map[ClientId][][]byte),
	}
}

// AttachPluginHost wires h into Screen so ActionLoadPlugin and plugin
// pane input/output have somewhere to go. A Screen with no Host
// attached treats ActionLoadPlugin as a no-op, logged on every request.
func (s *Screen) AttachPluginHost(h *plugin.Host) {
	s.plugins = h
}

// ClosePlugins tears down every loaded plugin instance's Host. Called
// once, on session shutdown.
func (s *Screen) ClosePlugins(ctx context.Context) error {
	if s.plugins == nil {
		return nil
	}
	return s.plugins.Close(ctx)
}

// pushClientOutput queues bytes to be written straight to client's
// terminal, bypassing the normal composited render.
func (s *Screen) pushClientOutput(client ClientId, b []byte) {
	s.clientOutput[client] = append(s.clientOutput[client], b)
}

// TakeClientOutput returns and clears client's queued sideband output.
func (s *Screen) TakeClientOutput(client ClientId) [][]byte {
	out := s.clientOutput[client]
	delete(s.clientOutput, client)
	return out
}

type logWriterDiscard struct{}

func (logWriterDiscard) Write(p []byte) (int, error) { return len(p), nil }

// Apply handles one Instruction synchronously. The Server/Router calls
// this from the Screen actor's own goroutine after receiving it off the
// bus.
func (s *Screen) Apply(instr Instruction) {
	switch {
	case instr.FromPty != nil:
		s.applyPty(instr.FromPty)
	case instr.Action != nil:
		s.applyAction(instr.Action)
	}
}

func (s *Screen) applyPty(ev *ptymgr.ScreenInstruction) {
	switch {
	case ev.NewPane != nil:
		s.installNewPane(ev.NewPane)
	case ev.PtyBytes != nil:
		s.feedBytes(ev.PtyBytes)
	case ev.ExitInfo != nil:
		s.handleExit(ev.ExitInfo)
	}
}

func (s *Screen) installNewPane(msg *ptymgr.NewPaneMsg) {
	pending, ok := s.pendingPanes[msg.TerminalId]
	if !ok {
		return
	}
	delete(s.pendingPanes, msg.TerminalId)

	tab := s.tabByIndex(pending.tab)
	if tab == nil {
		return
	}
	id := TerminalPaneId(msg.TerminalId)

	if len(tab.panes) == 0 {
		geom := tab.viewport
		pane := NewTerminalPane(id, geom)
		*tab = *NewTab(tab.Index, tab.Name, pane, tab.viewport)
		return
	}

	client := ClientId(0)
	if pending.target.ClientId != nil {
		client = ClientId(*pending.target.ClientId)
	}
	focused, _ := tab.FocusedPane(client)
	pane := NewTerminalPane(id, Rect{})
	tab.Split(focused, pending.split, pane)
}

func (s *Screen) feedBytes(b *ptymgr.PtyBytes) {
	id := TerminalPaneId(b.TerminalId)
	for _, tab := range s.Tabs {
		if p, ok := tab.panes[id]; ok {
			p.Feed(b.Bytes)
			return
		}
	}
}

func (s *Screen) handleExit(info *ptymgr.ExitInfo) {
	id := TerminalPaneId(info.TerminalId)
	for _, tab := range s.Tabs {
		if p, ok := tab.panes[id]; ok {
			p.State = PaneExited
			p.ExitCode = info.ExitCode
			if !p.HoldOnExit {
				tab.ClosePane(id)
				s.groups.RemovePane(id)
				s.pty.Clear(info.TerminalId)
			}
			return
		}
	}
}

func (s *Screen) tabByIndex(idx TabIndex) *Tab {
	for _, t := range s.Tabs {
		if t.Index == idx {
			return t
		}
	}
	return nil
}

// NewTab registers a new, empty Tab right away, makes it client's
// active tab, and spawns the tab's first pane, which is installed once
// the PTY reports it ready. cwd/cmd follow the same semantics as
// ptymgr.SpawnTerminal.
func (s *Screen) NewTab(ctx bus.ErrorContext, client ClientId, viewport Rect, cmd *ptymgr.RunCommand, cwd string) (TabIndex, error) {
	idx := s.nextTab
	s.nextTab++
	s.Tabs = append(s.Tabs, &Tab{
		Index: idx, viewport: viewport,
		panes: make(map[PaneId]*Pane), focused: make(map[ClientId]PaneId),
		fullscreened: make(map[ClientId]PaneId),
	})
	s.activeTab[client] = idx

	c := uint16(client)
	id, err := s.pty.SpawnTerminal(ctx, ptymgr.SpawnTerminal{
		Cwd: cwd, Command: cmd,
		Target: ptymgr.ClientOrTabIndex{ClientId: &c},
		Rows:   viewport.Rows, Cols: viewport.Cols,
	})
	if err != nil {
		return idx, err
	}
	s.pendingPanes[id] = pendingPane{tab: idx, target: ptymgr.ClientOrTabIndex{ClientId: &c}}
	return idx, nil
}

func (s *Screen) applyAction(a *Action) {
	tabIdx, ok := s.activeTab[a.Client]
	if !ok {
		return
	}
	tab := s.tabByIndex(tabIdx)
	if tab == nil {
		return
	}

	switch a.Kind {
	case ActionSplit:
		var ctx bus.ErrorContext
		c := uint16(a.Client)
		id, err := s.pty.SpawnTerminal(ctx, ptymgr.SpawnTerminal{
			Cwd: a.Cwd, Command: a.RunCmd,
			Target: ptymgr.ClientOrTabIndex{ClientId: &c},
			Split:  a.SplitDir,
		})
		if err == nil {
			s.pendingPanes[id] = pendingPane{tab: tabIdx, target: ptymgr.ClientOrTabIndex{ClientId: &c}, split: a.SplitDir}
		}

	case ActionClosePane:
		focused, ok := tab.FocusedPane(a.Client)
		if !ok {
			return
		}
		switch focused.Kind {
		case PaneKindTerminal:
			s.pty.ClosePane(focused.Terminal)
		case PaneKindPlugin:
			if instID, ok := s.pluginInst[focused]; ok && s.plugins != nil {
				s.plugins.Unload(context.Background(), instID)
				delete(s.pluginInst, focused)
			}
			tab.ClosePane(focused)
		}

	case ActionToggleFullscreen:
		tab.ToggleFullscreen(a.Client)

	case ActionResizeViewport:
		tab.Resize(a.Viewport)
		for _, p := range tab.Panes() {
			if p.Id.Kind == PaneKindTerminal {
				s.pty.Resize(p.Id.Terminal, p.Geom.Rows, p.Geom.Cols)
			}
		}

	case ActionWriteToFocused:
		if tab.SyncInput {
			for _, p := range tab.Panes() {
				if p.Floating || p.Id.Kind != PaneKindTerminal {
					continue
				}
				s.pty.Write(p.Id.Terminal, a.Bytes)
			}
			return
		}
		focused, ok := tab.FocusedPane(a.Client)
		if !ok {
			return
		}
		switch focused.Kind {
		case PaneKindTerminal:
			s.pty.Write(focused.Terminal, a.Bytes)
		case PaneKindPlugin:
			if s.plugins == nil {
				return
			}
			instID, ok := s.pluginInst[focused]
			if !ok {
				return
			}
			inst, ok := s.plugins.Instance(instID)
			if !ok {
				return
			}
			if err := s.plugins.Dispatch(context.Background(), inst, plugin.EventKey, a.Bytes); err != nil {
				s.logger.Printf("dispatch key to plugin %s: %v", inst.Path, err)
				return
			}
			s.renderPluginPane(focused, inst)
		}

	case ActionRenameTab:
		tab.Name = a.Name

	case ActionRenamePane:
		if focused, ok := tab.FocusedPane(a.Client); ok {
			if p, found := tab.Pane(focused); found {
				p.Title = a.Name
			}
		}

	case ActionTogglePaneGroup:
		if focused, ok := tab.FocusedPane(a.Client); ok {
			s.groups.Toggle(focused, a.Client)
		}

	case ActionGoToTab:
		if s.tabByIndex(a.TargetTab) != nil {
			s.activeTab[a.Client] = a.TargetTab
		}

	case ActionRaiseFloating:
		if focused, ok := tab.FocusedPane(a.Client); ok {
			tab.RaiseFloating(focused)
		}

	case ActionNewTab:
		var ctx bus.ErrorContext
		s.NewTab(ctx, a.Client, tab.viewport, a.RunCmd, a.Cwd)

	case ActionCloseTab:
		s.CloseTab(tabIdx)

	case ActionFocusNext:
		cycleFocus(tab, a.Client, 1)

	case ActionFocusPrev:
		cycleFocus(tab, a.Client, -1)

	case ActionResizePane:
		if focused, ok := tab.FocusedPane(a.Client); ok {
			tab.ResizePane(focused, a.ResizeDir, a.Grow)
		}

	case ActionMoveFocus:
		tab.MoveFocus(a.Client, a.MoveDir)

	case ActionScroll:
		focused, ok := tab.FocusedPane(a.Client)
		if !ok {
			return
		}
		p, found := tab.Pane(focused)
		if !found {
			return
		}
		if a.Scroll == ScrollEditScrollback {
			s.editScrollback(a.Client, tabIdx, p)
			return
		}
		applyScroll(p, a.Scroll)

	case ActionSwitchTabNext:
		s.switchTab(a.Client, 1)

	case ActionSwitchTabPrev:
		s.switchTab(a.Client, -1)

	case ActionToggleSyncTab:
		tab.SyncInput = !tab.SyncInput

	case ActionBreakPane:
		s.breakPane(a.Client, tabIdx, tab, a.BreakDir)

	case ActionChangeMode:
		s.clientMode[a.Client] = a.ModeName
		s.notifyPluginsModeChanged(a.ModeName)

	case ActionSelectionStart:
		if id, pos, ok := tab.PaneAt(a.MouseRow, a.MouseCol); ok {
			if p, found := tab.Pane(id); found {
				p.Selection = &Selection{Start: pos, End: pos, Active: true}
				tab.SetFocus(a.Client, id)
			}
		}

	case ActionSelectionUpdate:
		if focused, ok := tab.FocusedPane(a.Client); ok {
			if p, found := tab.Pane(focused); found && p.Selection != nil && p.Selection.Active {
				if pos, ok := tab.LocalPoint(focused, a.MouseRow, a.MouseCol); ok {
					p.Selection.End = pos
				}
			}
		}

	case ActionSelectionEnd:
		if focused, ok := tab.FocusedPane(a.Client); ok {
			if p, found := tab.Pane(focused); found && p.Selection != nil {
				p.Selection.Active = false
			}
		}

	case ActionCopy:
		if focused, ok := tab.FocusedPane(a.Client); ok {
			if p, found := tab.Pane(focused); found && p.Selection != nil {
				text := p.SelectedText()
				if text != "" {
					s.pushClientOutput(a.Client, []byte(osc52.New(text).String()))
				}
			}
		}

	case ActionLoadPlugin:
		s.loadPlugin(a, tabIdx, tab)
	}
}

// applyScroll moves p's view according to kind, using p's own content
// rows for a full/half page.
func applyScroll(p *Pane, kind ScrollKind) {
	page := p.Geom.Rows
	if page < 1 {
		page = 1
	}
	half := page / 2
	if half < 1 {
		half = 1
	}
	switch kind {
	case ScrollLineUp:
		p.ScrollUp(1)
	case ScrollLineDown:
		p.ScrollDown(1)
	case ScrollPageUp:
		p.ScrollUp(page)
	case ScrollPageDown:
		p.ScrollDown(page)
	case ScrollHalfPageUp:
		p.ScrollUp(half)
	case ScrollHalfPageDown:
		p.ScrollDown(half)
	case ScrollToBottom:
		p.ScrollToBottom()
	case ScrollClear:
		p.ScrollToBottom()
		p.Grid.ClearScrollback()
	}
}

// switchTab moves client's active tab to the next (dir=1) or previous
// (dir=-1) tab in s.Tabs order, wrapping around.
func (s *Screen) switchTab(client ClientId, dir int) {
	if len(s.Tabs) == 0 {
		return
	}
	cur, ok := s.activeTab[client]
	idx := 0
	if ok {
		for i, t := range s.Tabs {
			if t.Index == cur {
				idx = i
				break
			}
		}
	}
	next := ((idx+dir)%len(s.Tabs) + len(s.Tabs)) % len(s.Tabs)
	s.activeTab[client] = s.Tabs[next].Index
}

// breakPane moves client's focused pane out of tab and into a brand new
// tab of its own, inserted immediately left or right of tab's current
// position according to dir. A no-op if tab has only one pane (nothing
// to break out from).
func (s *Screen) breakPane(client ClientId, tabIdx TabIndex, tab *Tab, dir Direction) {
	focused, ok := tab.FocusedPane(client)
	if !ok {
		return
	}
	p, found := tab.Pane(focused)
	if !found || len(tab.panes) == 1 {
		return
	}
	if !tab.ClosePane(focused) {
		return
	}

	idx := s.nextTab
	s.nextTab++
	newTab := &Tab{
		Index:        idx,
		Name:         p.Title,
		viewport:     tab.viewport,
		panes:        map[PaneId]*Pane{focused: p},
		root:         NewLeaf(focused),
		focused:      make(map[ClientId]PaneId),
		fullscreened: make(map[ClientId]PaneId),
	}
	p.Floating = false
	p.Resize(newTab.viewport)

	pos := len(s.Tabs)
	for i, t := range s.Tabs {
		if t.Index == tabIdx {
			if dir == DirLeft {
				pos = i
			} else {
				pos = i + 1
			}
			break
		}
	}
	s.Tabs = append(s.Tabs, nil)
	copy(s.Tabs[pos+1:], s.Tabs[pos:])
	s.Tabs[pos] = newTab
	s.activeTab[client] = idx
}

// notifyPluginsModeChanged dispatches a ModeUpdate event to every loaded
// plugin instance and re-renders each one, so plugin panes that draw
// mode-dependent UI (a status bar showing the current Input mode, say)
// stay current.
func (s *Screen) notifyPluginsModeChanged(mode string) {
	if s.plugins == nil {
		return
	}
	ctx := context.Background()
	for paneID, instID := range s.pluginInst {
		inst, ok := s.plugins.Instance(instID)
		if !ok {
			continue
		}
		if err := s.plugins.Dispatch(ctx, inst, plugin.EventModeUpdate, []byte(mode)); err != nil {
			s.logger.Printf("dispatch mode update to plugin %s: %v", inst.Path, err)
			continue
		}
		s.renderPluginPane(paneID, inst)
	}
}

// renderPluginPane asks the Plugin Host to redraw inst and feeds the
// result into its pane's Grid, wherever in the session that pane lives.
func (s *Screen) renderPluginPane(id PaneId, inst *plugin.Instance) {
	for _, t := range s.Tabs {
		p, ok := t.Pane(id)
		if !ok {
			continue
		}
		out, err := s.plugins.Render(context.Background(), inst, p.Geom.Rows, p.Geom.Cols)
		if err != nil {
			s.logger.Printf("render plugin %s: %v", inst.Path, err)
			return
		}
		p.Feed(out)
		return
	}
}

// loadPlugin reads a's wasm module from disk, loads it into the
// attached Plugin Host for a.Client, and tiles or floats the resulting
// pane into tab the same way a freshly spawned terminal pane would be.
func (s *Screen) loadPlugin(a *Action, tabIdx TabIndex, tab *Tab) {
	if s.plugins == nil {
		s.logger.Printf("plugin load requested but no plugin host is attached")
		return
	}
	wasmBytes, err := os.ReadFile(a.PluginPath)
	if err != nil {
		s.logger.Printf("load plugin %s: %v", a.PluginPath, err)
		return
	}
	ctx := context.Background()
	inst, err := s.plugins.Load(ctx, a.PluginPath, wasmBytes, uint16(a.Client), a.Subscriptions)
	if err != nil {
		s.logger.Printf("load plugin %s: %v", a.PluginPath, err)
		return
	}

	id := PluginPaneId(NewPluginId())
	pane := NewPluginPane(id, Rect{})
	s.pluginInst[id] = inst.Id
	if focused, ok := tab.FocusedPane(a.Client); ok {
		tab.Split(focused, ptymgr.SplitVertical, pane)
	} else {
		tab.AddFloating(pane)
	}
	s.renderPluginPane(id, inst)
}

// editScrollback dumps p's full retained history plus its live viewport
// to a temp file and opens it in the user's $EDITOR (vi if unset), the
// same pattern a terminal emulator's "open scrollback in pager" feature
// follows.
func (s *Screen) editScrollback(client ClientId, tabIdx TabIndex, p *Pane) {
	if p.Id.Kind != PaneKindTerminal {
		return
	}
	path, err := dumpScrollback(p)
	if err != nil {
		s.logger.Printf("edit scrollback: %v", err)
		return
	}
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}
	var ctx bus.ErrorContext
	c := uint16(client)
	id, err := s.pty.SpawnTerminal(ctx, ptymgr.SpawnTerminal{
		Command: &ptymgr.RunCommand{Command: editor, Args: []string{path}},
		Target:  ptymgr.ClientOrTabIndex{ClientId: &c},
		Split:   ptymgr.SplitHorizontal,
	})
	if err != nil {
		s.logger.Printf("spawn scrollback editor: %v", err)
		return
	}
	s.pendingPanes[id] = pendingPane{tab: tabIdx, target: ptymgr.ClientOrTabIndex{ClientId: &c}, split: ptymgr.SplitHorizontal}
}

// cycleFocus moves client's focus to the next (dir=1) or previous
// (dir=-1) tiled pane in split-tree leaf order, wrapping around.
func cycleFocus(tab *Tab, client ClientId, dir int) {
	leaves := tab.root.Leaves()
	if len(leaves) == 0 {
		return
	}
	focused, ok := tab.FocusedPane(client)
	if !ok {
		tab.SetFocus(client, leaves[0])
		return
	}
	idx := 0
	for i, id := range leaves {
		if id == focused {
			idx = i
			break
		}
	}
	next := ((idx+dir)%len(leaves) + len(leaves)) % len(leaves)
	tab.SetFocus(client, leaves[next])
}

// ActiveTab returns the tab client currently has open.
func (s *Screen) ActiveTab(client ClientId) (*Tab, bool) {
	idx, ok := s.activeTab[client]
	if !ok {
		return nil, false
	}
	t := s.tabByIndex(idx)
	return t, t != nil
}

// SetActiveTab assigns client's active tab directly, without requiring
// one already be set the way ActionGoToTab's dispatch does. The server
// loop uses this once, when a client attaches to a session that
// already has tabs (a brand-new session instead gets its first active
// tab as a side effect of NewTab).
func (s *Screen) SetActiveTab(client ClientId, idx TabIndex) bool {
	if s.tabByIndex(idx) == nil {
		return false
	}
	s.activeTab[client] = idx
	return true
}

// RemoveClient drops every per-client record client leaves behind
// (its active tab and, in each tab, its focus/fullscreen state) once
// it detaches. Panes it was focused on are left exactly as they were;
// only the client's own bookkeeping is cleared.
func (s *Screen) RemoveClient(client ClientId) {
	delete(s.activeTab, client)
	for _, t := range s.Tabs {
		delete(t.focused, client)
		delete(t.fullscreened, client)
	}
}

// CloseTab removes idx and its panes, signaling the Manager to tear
// down every terminal pane it held. Clients focused on the closed tab
// move to the first remaining tab, or no tab if it was the last one.
func (s *Screen) CloseTab(idx TabIndex) {
	var removed *Tab
	kept := s.Tabs[:0]
	for _, t := range s.Tabs {
		if t.Index == idx {
			removed = t
			continue
		}
		kept = append(kept, t)
	}
	s.Tabs = kept
	if removed == nil {
		return
	}
	for _, p := range removed.Panes() {
		if p.Id.Kind == PaneKindTerminal {
			s.pty.ClosePane(p.Id.Terminal)
		}
	}
	for client, active := range s.activeTab {
		if active == idx {
			if len(s.Tabs) > 0 {
				s.activeTab[client] = s.Tabs[0].Index
			} else {
				delete(s.activeTab, client)
			}
		}
	}
}
