package ptymgr

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
	"github.com/google/shlex"

	"github.com/zellij-org/zellij-go/internal/bus"
)

// ScreenInstruction is the subset of Screen's inbox the PTY Manager
// produces: new panes, PTY bytes, and exit notifications. Screen itself
// owns the full instruction set (internal/screen); the manager only
// needs to be able to emit into it.
type ScreenInstruction struct {
	NewPane   *NewPaneMsg
	PtyBytes  *PtyBytes
	ExitInfo  *ExitInfo
	WarnNoTTY string
}

// NewPaneMsg tells Screen a terminal pane's PTY is ready to be installed.
type NewPaneMsg struct {
	TerminalId TerminalId
	Target     ClientOrTabIndex
	Split      SplitDirection
}

// terminalState tracks one child process/PTY pair end to end, satisfying
// invariant 4: running -> exited-reported -> cleared is monotonic.
type terminalState struct {
	id         TerminalId
	cmd        *exec.Cmd
	ptmx       *os.File
	rows       int
	cols       int
	exited     bool
	reported   bool
	cleared    bool
	runCmd     *RunCommand
	holdOnExit bool
}

// Manager is the PTY Manager actor: one control-plane goroutine handling
// SpawnTerminal/ClosePane/signal instructions, plus one async reader
// goroutine per active PTY.
type Manager struct {
	mu        sync.Mutex
	terminals map[TerminalId]*terminalState
	nextId    TerminalId

	toScreen *bus.Sender[ScreenInstruction]
	logger   *log.Logger

	wg sync.WaitGroup
}

// New constructs a Manager that forwards events to Screen via toScreen.
// toScreen should be a bounded sender: the PTY->Screen link is the one
// link in the bus required to apply backpressure so one chatty child
// cannot exhaust memory for the rest of the session.
func New(toScreen *bus.Sender[ScreenInstruction], logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.New(os.Stderr, "ptymgr: ", log.LstdFlags)
	}
	return &Manager{
		terminals: make(map[TerminalId]*terminalState),
		toScreen:  toScreen,
		logger:    logger,
	}
}

// SpawnTerminal opens a PTY, starts the requested command (or the
// failover command once, on first-attempt failure), and tells Screen a
// new pane is ready. Returns CommandNotFoundError if neither command
// resolves.
func (m *Manager) SpawnTerminal(ctx bus.ErrorContext, req SpawnTerminal) (TerminalId, error) {
	cmd := req.Command
	if cmd == nil {
		cmd = defaultShellCommand(req.Cwd)
	}

	id, ptmx, started, err := m.startChild(cmd, req.Rows, req.Cols)
	if err != nil {
		if req.FailoverCmd != nil {
			id, ptmx, started, err = m.startChild(req.FailoverCmd, req.Rows, req.Cols)
			if err == nil {
				cmd = req.FailoverCmd
			}
		}
		if err != nil {
			return 0, &CommandNotFoundError{Command: cmd.Command, Err: err}
		}
	}

	m.mu.Lock()
	m.terminals[id] = &terminalState{
		id: id, cmd: started, ptmx: ptmx,
		rows: req.Rows, cols: req.Cols,
		runCmd: cmd, holdOnExit: req.HoldOnExit,
	}
	m.mu.Unlock()

	m.toScreen.Send(ctx, ScreenInstruction{NewPane: &NewPaneMsg{
		TerminalId: id, Target: req.Target, Split: req.Split,
	}})

	m.wg.Add(1)
	go m.readLoop(ctx, id, ptmx)
	m.wg.Add(1)
	go m.waitLoop(ctx, id, started)
	return id, nil
}

func (m *Manager) startChild(cmd *RunCommand, rows, cols int) (TerminalId, *os.File, *exec.Cmd, error) {
	path, err := exec.LookPath(cmd.Command)
	if err != nil {
		return 0, nil, nil, err
	}
	c := exec.Command(path, cmd.Args...)
	c.Dir = cmd.Cwd
	m.mu.Lock()
	m.nextId++
	id := m.nextId
	m.mu.Unlock()
	c.Env = append(os.Environ(), fmt.Sprintf("ZELLIJ_PANE_ID=%d", id))

	if rows <= 0 {
		rows = 24
	}
	if cols <= 0 {
		cols = 80
	}
	ptmx, err := pty.StartWithSize(c, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	if err != nil {
		return 0, nil, nil, err
	}
	return id, ptmx, c, nil
}

// defaultShellCommand resolves the user's login shell the way the OS
// PTY back-end would: $SHELL, falling back to /bin/sh.
func defaultShellCommand(cwd string) *RunCommand {
	sh := os.Getenv("SHELL")
	if sh == "" {
		sh = "/bin/sh"
	}
	return &RunCommand{Command: sh, Cwd: cwd}
}

// ParseCommandLine splits a user-supplied command string into argv,
// used when SpawnTerminal/NewTab carry a raw "command" attribute rather
// than a pre-split RunCommand.
func ParseCommandLine(line, cwd string) (*RunCommand, error) {
	argv, err := shlex.Split(line)
	if err != nil || len(argv) == 0 {
		return nil, fmt.Errorf("ptymgr: parse command %q: %w", line, err)
	}
	return &RunCommand{Command: argv[0], Args: argv[1:], Cwd: cwd}, nil
}

// readLoop is the async per-fd reader task: read into a 64 KiB buffer,
// forward to Screen through the bounded sender (which blocks, i.e.
// applies backpressure, when Screen's inbox is full), stop on EOF.
func (m *Manager) readLoop(ctx bus.ErrorContext, id TerminalId, ptmx *os.File) {
	defer m.wg.Done()
	buf := make([]byte, readBufferSize)
	for {
		n, err := ptmx.Read(buf)
		if n > 0 {
			out := make([]byte, n)
			copy(out, buf[:n])
			m.toScreen.Send(ctx, ScreenInstruction{PtyBytes: &PtyBytes{TerminalId: id, Bytes: out}})
		}
		if err != nil {
			return
		}
	}
}

// waitLoop blocks on the child's exit, marks it reaped, and emits
// CommandPaneExited. Stale events for an id that the caller has already
// cleared (ClosePane completed) are silently dropped by Screen, not here
// — the manager always reports a real exit exactly once.
func (m *Manager) waitLoop(ctx bus.ErrorContext, id TerminalId, cmd *exec.Cmd) {
	defer m.wg.Done()
	err := cmd.Wait()

	m.mu.Lock()
	st, ok := m.terminals[id]
	if !ok || st.reported {
		m.mu.Unlock()
		return
	}
	st.exited = true
	st.reported = true
	runCmd := st.runCmd
	m.mu.Unlock()

	var code *int
	if cmd.ProcessState != nil {
		c := cmd.ProcessState.ExitCode()
		code = &c
	}
	_ = err
	m.toScreen.Send(ctx, ScreenInstruction{ExitInfo: &ExitInfo{TerminalId: id, ExitCode: code, Context: runCmd}})
}

// Resize sets the PTY's window size to exactly the pane's content
// rectangle (frame borders excluded). Screen calls it for every terminal
// pane on ActionResizeViewport only; splits, pane closes, pane resizes,
// fullscreen toggles and a client's TerminalResize message change pane
// geometry without calling it.
func (m *Manager) Resize(id TerminalId, rows, cols int) error {
	m.mu.Lock()
	st, ok := m.terminals[id]
	m.mu.Unlock()
	if !ok || st.ptmx == nil {
		return fmt.Errorf("ptymgr: resize: unknown terminal %d", id)
	}
	st.rows, st.cols = rows, cols
	return pty.Setsize(st.ptmx, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
}

// Write sends bytes into the child's controlling PTY. Writes are
// blocking; they are always short, and the OS buffers them, so no
// separate non-blocking write path is required. A nil Manager writes
// nothing and returns an error.
func (m *Manager) Write(id TerminalId, p []byte) (int, error) {
	if m == nil {
		return 0, fmt.Errorf("ptymgr: write: no manager for terminal %d", id)
	}
	m.mu.Lock()
	st, ok := m.terminals[id]
	m.mu.Unlock()
	if !ok || st.ptmx == nil {
		return 0, fmt.Errorf("ptymgr: write: unknown terminal %d", id)
	}
	return st.ptmx.Write(p)
}

// ClosePane sends SIGHUP, waits a grace period, then escalates to
// SIGKILL if the child hasn't reaped. The terminal id is only eligible
// for reuse once the OS has reported it reaped.
func (m *Manager) ClosePane(id TerminalId) {
	m.mu.Lock()
	st, ok := m.terminals[id]
	m.mu.Unlock()
	if !ok || st.cmd == nil || st.cmd.Process == nil {
		return
	}
	st.cmd.Process.Signal(syscall.SIGHUP)
	go func() {
		time.Sleep(defaultSignalGrace)
		m.mu.Lock()
		exited := st.exited
		m.mu.Unlock()
		if !exited {
			st.cmd.Process.Signal(syscall.SIGKILL)
		}
	}()
}

// SendSigint delivers Ctrl-C-equivalent SIGINT to the pane's child.
func (m *Manager) SendSigint(id TerminalId) error {
	return m.signal(id, syscall.SIGINT)
}

// SendSigkill forcibly terminates the pane's child.
func (m *Manager) SendSigkill(id TerminalId) error {
	return m.signal(id, syscall.SIGKILL)
}

func (m *Manager) signal(id TerminalId, sig syscall.Signal) error {
	m.mu.Lock()
	st, ok := m.terminals[id]
	m.mu.Unlock()
	if !ok || st.cmd == nil || st.cmd.Process == nil {
		return fmt.Errorf("ptymgr: signal: unknown terminal %d", id)
	}
	return st.cmd.Process.Signal(sig)
}

// Clear marks a terminal id as reclaimable. Screen calls this once it
// has finished tearing down the owning pane after CommandPaneExited —
// crossing the exited-not-yet-reported to cleared boundary.
func (m *Manager) Clear(id TerminalId) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.terminals[id]; ok {
		st.cleared = true
		if st.ptmx != nil {
			st.ptmx.Close()
		}
		delete(m.terminals, id)
	}
}

// ReRunCommand restarts a pane's command in place (used for "hold on
// exit" panes), reusing the same terminal id and PTY fd semantics by
// allocating a fresh PTY and replacing the child.
func (m *Manager) ReRunCommand(ctx bus.ErrorContext, id TerminalId) error {
	m.mu.Lock()
	st, ok := m.terminals[id]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("ptymgr: rerun: unknown terminal %d", id)
	}
	if st.ptmx != nil {
		st.ptmx.Close()
	}
	_, ptmx, started, err := m.startChild(st.runCmd, st.rows, st.cols)
	if err != nil {
		return &CommandNotFoundError{TerminalId: id, Command: st.runCmd.Command, Err: err}
	}
	m.mu.Lock()
	st.ptmx = ptmx
	st.cmd = started
	st.exited = false
	st.reported = false
	m.mu.Unlock()

	m.wg.Add(1)
	go m.readLoop(ctx, id, ptmx)
	m.wg.Add(1)
	go m.waitLoop(ctx, id, started)
	return nil
}

// Wait blocks until all reader and waiter goroutines exit, used by tests
// and by a clean session shutdown.
func (m *Manager) Wait() { m.wg.Wait() }
