package ipc

import (
	"log"
	"net"
	"os"
	"sync"

	"github.com/zellij-org/zellij-go/internal/screen"
)

// Conn is one attached client's connection: the raw net.Conn plus the
// client id the rest of the runtime addresses it by. Handed to the
// session glue layer via Server's Attach channel so it can register a
// Router and a render loop for this client without the ipc package
// needing to know anything about Screen's internals.
type Conn struct {
	Id     screen.ClientId
	Hello  ClientMessage
	raw    net.Conn
	mu     sync.Mutex
	closed bool
}

// Send frames and writes msg to the client. Safe for concurrent use;
// the render loop and the session-control path may both write to the
// same client.
func (c *Conn) Send(msg ServerMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return net.ErrClosed
	}
	return WriteServerMessage(c.raw, msg)
}

// Recv reads the next framed message this client sends.
func (c *Conn) Recv() (ClientMessage, error) {
	return ReadClientMessage(c.raw)
}

// Close tears down the underlying connection. Safe to call more than
// once.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.raw.Close()
}

// Server listens on one session's socket and hands each accepted,
// handshaked connection to Attach. It owns only the transport: no
// Screen, Tab, or Pane state crosses into this package, matching the
// ownership split between actors and the server/glue layer above them
// (9: a pane's record must reach session data without owning it).
type Server struct {
	name     string
	listener net.Listener
	unlock   func()
	logger   *log.Logger

	mu     sync.Mutex
	nextId screen.ClientId
	conns  map[screen.ClientId]*Conn

	// Attach receives one *Conn per successfully handshaked client,
	// in the order they connected. The glue layer is expected to
	// drain it continuously; a full channel stalls new attaches.
	Attach chan *Conn
}

// Listen claims name's socket (probing and clearing any stale
// leftover) and starts listening. The caller must call Close to
// release the socket and its lock file.
func Listen(name string, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	if err := EnsureDir(); err != nil {
		return nil, err
	}
	path := Path(name)
	unlock, err := ClaimSocket(path)
	if err != nil {
		return nil, err
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		unlock()
		return nil, err
	}

	return &Server{
		name:     name,
		listener: ln,
		unlock:   unlock,
		logger:   logger,
		conns:    make(map[screen.ClientId]*Conn),
		Attach:   make(chan *Conn, 8),
	}, nil
}

// Serve accepts connections until the listener is closed. Each
// accepted connection is handshaked (NewClient or AttachClient) and,
// on success, pushed to Attach; on failure it's closed without ever
// reaching the rest of the runtime.
func (s *Server) Serve() {
	for {
		raw, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handshake(raw)
	}
}

func (s *Server) handshake(raw net.Conn) {
	hello, err := ReadClientMessage(raw)
	if err != nil {
		raw.Close()
		return
	}
	if hello.Kind == MsgConnStatus {
		// Liveness probe, not a real attach: answer and disconnect.
		WriteServerMessage(raw, ServerMessage{Kind: MsgConnected})
		raw.Close()
		return
	}
	if hello.Kind != MsgNewClient && hello.Kind != MsgAttachClient {
		s.logger.Printf("ipc: first frame from new connection was kind %d, not a handshake", hello.Kind)
		raw.Close()
		return
	}

	s.mu.Lock()
	id := s.nextId
	s.nextId++
	conn := &Conn{Id: id, Hello: hello, raw: raw}
	s.conns[id] = conn
	s.mu.Unlock()

	if err := conn.Send(ServerMessage{Kind: MsgConnected}); err != nil {
		s.removeConn(id)
		raw.Close()
		return
	}

	s.Attach <- conn
}

func (s *Server) removeConn(id screen.ClientId) {
	s.mu.Lock()
	delete(s.conns, id)
	s.mu.Unlock()
}

// Broadcast sends msg to every currently attached client, skipping
// (and logging) any whose connection has gone bad rather than letting
// one stuck client block delivery to the rest.
func (s *Server) Broadcast(msg ServerMessage) {
	s.mu.Lock()
	conns := make([]*Conn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		if err := c.Send(msg); err != nil {
			s.logger.Printf("ipc: broadcast to client %d failed: %v", c.Id, err)
		}
	}
}

// Detach removes id from the server's registry and closes its
// connection, the wire-level half of DetachSession/ClientExited.
func (s *Server) Detach(id screen.ClientId) {
	s.mu.Lock()
	conn, ok := s.conns[id]
	delete(s.conns, id)
	s.mu.Unlock()
	if ok {
		conn.Close()
	}
}

// ActiveClients returns the ids of every currently attached client.
func (s *Server) ActiveClients() []screen.ClientId {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]screen.ClientId, 0, len(s.conns))
	for id := range s.conns {
		ids = append(ids, id)
	}
	return ids
}

// Close stops accepting new connections, closes every attached
// client, and releases the session socket and its lock file.
func (s *Server) Close() error {
	err := s.listener.Close()
	s.mu.Lock()
	conns := make([]*Conn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.conns = make(map[screen.ClientId]*Conn)
	s.mu.Unlock()
	for _, c := range conns {
		c.Close()
	}
	if s.unlock != nil {
		s.unlock()
	}
	os.Remove(Path(s.name))
	return err
}
