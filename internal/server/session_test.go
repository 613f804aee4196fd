package server

import (
	"testing"
	"time"

	"github.com/zellij-org/zellij-go/internal/config"
	"github.com/zellij-org/zellij-go/internal/ipc"
	"github.com/zellij-org/zellij-go/internal/logging"
)

// newTestEnv points HOME/XDG_RUNTIME_DIR at a throwaway directory so
// the session socket, log file, and any resurrection snapshot all land
// under t.TempDir() instead of the real user's config directory.
func newTestEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_RUNTIME_DIR", "")
}

func openTestSession(t *testing.T, name string, cfg *config.Config) *Session {
	t.Helper()
	logger, err := logging.Open(name)
	if err != nil {
		t.Fatalf("open logger: %v", err)
	}
	t.Cleanup(func() { logger.Close() })

	sess, err := Open(name, cfg, logger)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	return sess
}

func recvRender(t *testing.T, client *ipc.Client) ipc.ServerMessage {
	t.Helper()
	type result struct {
		msg ipc.ServerMessage
		err error
	}
	ch := make(chan result, 1)
	go func() {
		msg, err := client.Recv()
		ch <- result{msg, err}
	}()
	select {
	case r := <-ch:
		if r.err != nil {
			t.Fatalf("recv: %v", r.err)
		}
		return r.msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a server message")
		return ipc.ServerMessage{}
	}
}

// TestNewClientSpawnsFirstTabAndRenders exercises the whole path a
// real attach takes: dial, handshake, a first tab spawned from
// DefaultShell, and a render frame produced once the shell's PTY
// reports output.
func TestNewClientSpawnsFirstTabAndRenders(t *testing.T) {
	newTestEnv(t)

	cfg := &config.Config{DefaultShell: "/bin/echo"}
	sess := openTestSession(t, "render-session", cfg)
	defer sess.Close()
	go sess.Run()

	client, err := ipc.Dial("render-session", ipc.ClientMessage{
		Kind:  ipc.MsgNewClient,
		Attrs: ipc.ClientAttrs{Rows: 24, Cols: 80},
	})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	msg := recvRender(t, client)
	if msg.Kind != ipc.MsgRender {
		t.Fatalf("expected a render frame, got kind %v", msg.Kind)
	}
}

// TestKillSessionBroadcastsExitAndSavesSnapshot confirms the kill path
// notifies attached clients and leaves a resurrection snapshot behind
// before the socket closes.
func TestKillSessionBroadcastsExitAndSavesSnapshot(t *testing.T) {
	newTestEnv(t)

	cfg := &config.Config{DefaultShell: "/bin/echo"}
	sess := openTestSession(t, "kill-session", cfg)
	go sess.Run()

	client, err := ipc.Dial("kill-session", ipc.ClientMessage{
		Kind:  ipc.MsgNewClient,
		Attrs: ipc.ClientAttrs{Rows: 24, Cols: 80},
	})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	// Drain the first render frame from the spawned tab before killing.
	recvRender(t, client)

	if err := client.Send(ipc.ClientMessage{Kind: ipc.MsgKillSession}); err != nil {
		t.Fatalf("send kill: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for Exit")
		default:
		}
		msg := recvRender(t, client)
		if msg.Kind == ipc.MsgExit {
			if msg.ExitReason != ipc.ExitNormal {
				t.Fatalf("expected a normal exit reason, got %v", msg.ExitReason)
			}
			return
		}
	}
}
