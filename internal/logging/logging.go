// Package logging gives every actor a package-level *log.Logger
// writing to a per-session file under the runtime directory, plus a
// ring buffer of recent lines the IPC layer surfaces to attached
// clients as Log/LogError messages. Fatal/panic events are captured
// by Recover (bus.PanicHook's recover-and-report steps) and logged
// through the same Logger.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/zellij-org/zellij-go/internal/bus"
)

// ringCapacity bounds how many recent lines a Logger retains for
// Log/LogError delivery; older lines are dropped, not flushed, since
// the file on disk is the durable record.
const ringCapacity = 200

// Logger is one actor's (or the session's) log sink: a *log.Logger
// over a file plus a bounded ring buffer of the lines it wrote, split
// by level so Log and LogError IPC messages can be assembled
// separately.
type Logger struct {
	std  *log.Logger
	file io.Closer

	mu        sync.Mutex
	infoLines []string
	errLines  []string
}

// Dir returns the directory session log files live under
// ($HOME/.config/zellij-go/logs). Unlike internal/config's ConfigDir,
// it does not consult XDG_CONFIG_HOME.
func Dir() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "zellij-go", "logs")
}

// Open creates (or appends to) sessionName's log file under Dir and
// returns a Logger writing to it.
func Open(sessionName string) (*Logger, error) {
	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	path := filepath.Join(dir, sessionName+".log")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return &Logger{
		std:  log.New(f, "", log.LstdFlags|log.Lmicroseconds),
		file: f,
	}, nil
}

// New wraps an already-open writer, used by tests and by callers that
// want their own file/rotation policy instead of Open's default.
func New(w io.Writer) *Logger {
	closer, _ := w.(io.Closer)
	return &Logger{std: log.New(w, "", log.LstdFlags|log.Lmicroseconds), file: closer}
}

// Printf logs an informational line.
func (l *Logger) Printf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	l.std.Print(line)
	l.record(&l.infoLines, line)
}

// Errorf logs an error-level line, kept separately so it surfaces via
// LogError rather than Log over IPC.
func (l *Logger) Errorf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	l.std.Print("error: " + line)
	l.record(&l.errLines, line)
}

func (l *Logger) record(dst *[]string, line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*dst = append(*dst, fmt.Sprintf("%s %s", time.Now().UTC().Format(time.RFC3339), line))
	if len(*dst) > ringCapacity {
		*dst = (*dst)[len(*dst)-ringCapacity:]
	}
}

// RecentInfo returns the informational lines retained in the ring
// buffer, the body of a Log IPC message.
func (l *Logger) RecentInfo() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.infoLines))
	copy(out, l.infoLines)
	return out
}

// RecentErrors returns the error lines retained in the ring buffer,
// the body of a LogError IPC message.
func (l *Logger) RecentErrors() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.errLines))
	copy(out, l.errLines)
	return out
}

// Std returns the underlying *log.Logger, the shape bus.PanicHook
// expects.
func (l *Logger) Std() *log.Logger {
	return l.std
}

// Close releases the underlying file, if Logger owns one.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Recover is bus.PanicHook with l as the sink: call via defer at the
// top of every actor's run loop. It calls recover itself, since recover
// only stops a panic when called directly by the deferred function.
// onFatal receives the bus.Diagnostic string (context trail + panic
// value) the server loop broadcasts as Exit(Error(trace)) to every
// attached client.
func Recover(l *Logger, ctx bus.ErrorContext, onFatal func(diagnostic string)) {
	if r := recover(); r != nil {
		diagnostic := bus.Diagnostic(ctx, r)
		l.Errorf("%s", diagnostic)
		if onFatal != nil {
			onFatal(diagnostic)
		}
	}
}
