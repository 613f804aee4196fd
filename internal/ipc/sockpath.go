package ipc

import (
	"fmt"
	"os"
	"path/filepath"
)

// socketExt is the filename suffix every session socket carries, so
// Dir listings can distinguish session sockets from any other file an
// operator drops alongside them.
const socketExt = ".sock"

// Dir returns the per-user runtime directory sessions' sockets live
// under. $XDG_RUNTIME_DIR is preferred when set, matching how most
// terminal multiplexers pick a runtime directory; otherwise falls
// back to a dotdir under $HOME so a machine without systemd still
// gets a stable, private location.
func Dir() string {
	if xdg := os.Getenv("XDG_RUNTIME_DIR"); xdg != "" {
		return filepath.Join(xdg, "zellij-go")
	}
	return filepath.Join(os.Getenv("HOME"), ".zellij-go", "sockets")
}

// Path returns the socket path for a session named name.
func Path(name string) string {
	return filepath.Join(Dir(), name+socketExt)
}

// EnsureDir creates the socket directory with owner-only permissions
// if it doesn't already exist.
func EnsureDir() error {
	return os.MkdirAll(Dir(), 0o700)
}

// Find globs the socket directory for a session named name. Returns
// an error if zero or more than one socket matches.
func Find(name string) (string, error) {
	return FindIn(Dir(), name)
}

// FindIn globs dir for a session named name.
func FindIn(dir, name string) (string, error) {
	pattern := filepath.Join(dir, name+socketExt)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", err
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no session named %q", name)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("ambiguous session name %q: %d sockets match", name, len(matches))
	}
}

// SessionEntry is one parsed session socket.
type SessionEntry struct {
	Name string
	Path string
}

// List returns every session socket in the default directory,
// regardless of whether the session behind it is still alive — use
// Probe to tell live sessions from stale socket files.
func List() ([]SessionEntry, error) {
	return ListIn(Dir())
}

// ListIn returns every session socket in dir.
func ListIn(dir string) ([]SessionEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []SessionEntry
	for _, e := range entries {
		name := e.Name()
		if filepath.Ext(name) != socketExt {
			continue
		}
		out = append(out, SessionEntry{
			Name: name[:len(name)-len(socketExt)],
			Path: filepath.Join(dir, name),
		})
	}
	return out, nil
}
