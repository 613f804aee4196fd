package ptymgr

import (
	"testing"
	"time"

	"github.com/zellij-org/zellij-go/internal/bus"
)

func newTestManager() (*Manager, chan bus.Envelope[ScreenInstruction]) {
	ch := bus.NewInbox[ScreenInstruction](64)
	sender := bus.NewUnboundedSender(ch, bus.ContextPty)
	return New(sender, nil), ch
}

func TestSpawnTerminalDeliversNewPaneThenExit(t *testing.T) {
	m, ch := newTestManager()
	var ctx bus.ErrorContext

	id, err := m.SpawnTerminal(ctx, SpawnTerminal{
		Command: &RunCommand{Command: "/bin/echo", Args: []string{"hello"}},
		Rows:    24, Cols: 80,
	})
	if err != nil {
		t.Fatalf("SpawnTerminal: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero terminal id")
	}

	var sawNewPane, sawExit bool
	deadline := time.After(2 * time.Second)
	for !sawExit {
		select {
		case env := <-ch:
			if env.Payload.NewPane != nil && env.Payload.NewPane.TerminalId == id {
				sawNewPane = true
			}
			if env.Payload.ExitInfo != nil && env.Payload.ExitInfo.TerminalId == id {
				sawExit = true
			}
		case <-deadline:
			t.Fatal("timed out waiting for exit")
		}
	}
	if !sawNewPane {
		t.Error("expected a NewPane message before exit")
	}
	m.Wait()
}

func TestSpawnTerminalCommandNotFound(t *testing.T) {
	m, _ := newTestManager()
	var ctx bus.ErrorContext

	_, err := m.SpawnTerminal(ctx, SpawnTerminal{
		Command: &RunCommand{Command: "this-binary-does-not-exist-anywhere"},
		Rows:    24, Cols: 80,
	})
	if err == nil {
		t.Fatal("expected an error for a missing command")
	}
	var notFound *CommandNotFoundError
	if !asCommandNotFound(err, &notFound) {
		t.Fatalf("expected *CommandNotFoundError, got %T: %v", err, err)
	}
}

func asCommandNotFound(err error, target **CommandNotFoundError) bool {
	cnf, ok := err.(*CommandNotFoundError)
	if ok {
		*target = cnf
	}
	return ok
}

func TestResizeUnknownTerminal(t *testing.T) {
	m, _ := newTestManager()
	if err := m.Resize(999, 10, 10); err == nil {
		t.Fatal("expected error resizing an unknown terminal")
	}
}

func TestParseCommandLineSplitsArgv(t *testing.T) {
	cmd, err := ParseCommandLine(`bash -c "echo hi"`, "/tmp")
	if err != nil {
		t.Fatalf("ParseCommandLine: %v", err)
	}
	if cmd.Command != "bash" {
		t.Errorf("Command = %q, want bash", cmd.Command)
	}
	if len(cmd.Args) != 2 || cmd.Args[0] != "-c" || cmd.Args[1] != "echo hi" {
		t.Errorf("Args = %#v, want [-c, echo hi]", cmd.Args)
	}
}
