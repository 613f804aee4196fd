package ipc

import (
	"fmt"
	"net"
	"time"
)

// dialTimeout bounds the initial connect; once connected, reads and
// writes have no deadline beyond the OS's own and simply block, since
// a real session may sit idle for long stretches between keystrokes.
const dialTimeout = 2 * time.Second

// Client is an attached terminal's connection to a session server.
type Client struct {
	conn net.Conn
}

// Dial connects to the session named name, sends hello as the first
// frame (NewClient or AttachClient), and returns once the server
// replies Connected.
func Dial(name string, hello ClientMessage) (*Client, error) {
	path, err := Find(name)
	if err != nil {
		return nil, err
	}
	conn, err := net.DialTimeout("unix", path, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("dial session %q: %w", name, err)
	}

	if err := WriteClientMessage(conn, hello); err != nil {
		conn.Close()
		return nil, err
	}
	reply, err := ReadServerMessage(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("handshake with session %q: %w", name, err)
	}
	if reply.Kind != MsgConnected {
		conn.Close()
		return nil, fmt.Errorf("session %q rejected handshake", name)
	}
	return &Client{conn: conn}, nil
}

// Send frames and writes msg to the server.
func (c *Client) Send(msg ClientMessage) error {
	return WriteClientMessage(c.conn, msg)
}

// Recv reads the next framed message the server sends.
func (c *Client) Recv() (ServerMessage, error) {
	return ReadServerMessage(c.conn)
}

// Close disconnects from the server. The server observes this as a
// normal peer disconnect and detaches the client (7: IPC error
// handling treats peer disconnect as a routine event, not a fault).
func (c *Client) Close() error {
	return c.conn.Close()
}

// ListSessions returns every session socket found in the default
// directory together with whether it answered a liveness probe,
// giving a client attach-selection UI enough to grey out dead
// entries rather than hide them outright.
func ListSessions() ([]SessionStatus, error) {
	entries, err := List()
	if err != nil {
		return nil, err
	}
	out := make([]SessionStatus, len(entries))
	for i, e := range entries {
		out[i] = SessionStatus{Name: e.Name, Path: e.Path, Status: Probe(e.Path)}
	}
	return out, nil
}

// SessionStatus pairs a discovered session with its probed liveness.
type SessionStatus struct {
	Name   string
	Path   string
	Status ConnStatus
}
