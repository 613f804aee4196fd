package ipc

import (
	"net"
	"os"
	"time"

	"github.com/gofrs/flock"
)

// probeTimeout bounds how long ConnStatus probing waits for a dial
// and the Connected reply before calling the candidate socket dead.
const probeTimeout = 500 * time.Millisecond

// ConnStatus is the result of probing one session socket.
type ConnStatus int

const (
	// StatusDead means the socket didn't connect, or connected but
	// the liveness check against it never got a reply.
	StatusDead ConnStatus = iota
	StatusLive
)

// Probe opens path and sends ConnStatus, returning StatusLive only if
// a live server replied Connected within probeTimeout. Used both by a
// client deciding whether to attach and by a would-be server deciding
// whether a socket file left behind by a previous run is stale.
func Probe(path string) ConnStatus {
	conn, err := net.DialTimeout("unix", path, probeTimeout)
	if err != nil {
		return StatusDead
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(probeTimeout))
	if err := WriteClientMessage(conn, ClientMessage{Kind: MsgConnStatus}); err != nil {
		return StatusDead
	}
	reply, err := ReadServerMessage(conn)
	if err != nil || reply.Kind != MsgConnected {
		return StatusDead
	}
	return StatusLive
}

// ClaimSocket prepares path for a brand-new server listener: it locks
// a sibling ".lock" file so two server processes racing to bind the
// same session name serialize on the probe-then-remove-then-listen
// sequence, then removes path if it's a stale leftover from a crashed
// prior run. The returned unlock func must be called once the
// listener is bound (or the attempt abandoned).
func ClaimSocket(path string) (unlock func(), err error) {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, err
	}
	unlock = func() { lock.Unlock() }

	if _, statErr := os.Stat(path); statErr == nil {
		if Probe(path) == StatusLive {
			unlock()
			return nil, &AlreadyRunningError{Path: path}
		}
		os.Remove(path)
	}
	return unlock, nil
}

// AlreadyRunningError reports that a live server already owns path.
type AlreadyRunningError struct {
	Path string
}

func (e *AlreadyRunningError) Error() string {
	return "a session is already listening on " + e.Path
}
