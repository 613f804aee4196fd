package ipc

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/zellij-org/zellij-go/internal/screen"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	want := ClientMessage{Kind: MsgAction, Action: screen.Action{Kind: screen.ActionClosePane, Client: 3}}
	if err := WriteClientMessage(&buf, want); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadClientMessage(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Kind != want.Kind || got.Action.Kind != want.Action.Kind || got.Action.Client != want.Action.Client {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestReadFrameRejectsOversizedLength(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, make([]byte, 16)); err != nil {
		t.Fatalf("write: %v", err)
	}
	corrupt := buf.Bytes()
	corrupt[0] = 0xff // inflate the length prefix past maxFrameBytes
	if _, err := ReadFrame(bytes.NewReader(corrupt)); err == nil {
		t.Fatal("expected an error for an oversized frame length")
	}
}

func TestServerHandshakeAndBroadcast(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_RUNTIME_DIR", "")

	srv, err := Listen("test-session", nil)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer srv.Close()
	go srv.Serve()

	client, err := Dial("test-session", ClientMessage{Kind: MsgNewClient, Attrs: ClientAttrs{Rows: 20, Cols: 80}})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	var conn *Conn
	select {
	case conn = <-srv.Attach:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for attach")
	}
	if conn.Hello.Attrs.Rows != 20 || conn.Hello.Attrs.Cols != 80 {
		t.Fatalf("unexpected hello attrs: %+v", conn.Hello.Attrs)
	}

	srv.Broadcast(ServerMessage{Kind: MsgRender, RenderBytes: []byte("hello")})
	reply, err := client.Recv()
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	if reply.Kind != MsgRender || string(reply.RenderBytes) != "hello" {
		t.Fatalf("unexpected broadcast payload: %+v", reply)
	}

	if got := srv.ActiveClients(); len(got) != 1 || got[0] != conn.Id {
		t.Fatalf("expected one active client %d, got %v", conn.Id, got)
	}
}

func TestProbeDeadSocketIsDead(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/nothing.sock"
	if Probe(path) != StatusDead {
		t.Fatal("expected a nonexistent socket to probe dead")
	}
}

func TestProbeLiveServerIsLive(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/live.sock"
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		if _, err := ReadClientMessage(conn); err != nil {
			return
		}
		WriteServerMessage(conn, ServerMessage{Kind: MsgConnected})
	}()

	if Probe(path) != StatusLive {
		t.Fatal("expected the listening socket to probe live")
	}
}

func TestClaimSocketRemovesStaleSocketFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/stale.sock"
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ln.Close() // leaves the socket file behind with nothing listening

	unlock, err := ClaimSocket(path)
	if err != nil {
		t.Fatalf("expected stale socket to be claimable, got: %v", err)
	}
	defer unlock()
}

func TestExitReasonString(t *testing.T) {
	if ExitForceDetached.String() != "force detached" {
		t.Fatalf("unexpected string: %s", ExitForceDetached.String())
	}
}
