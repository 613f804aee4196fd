// Package resurrect implements the session-resurrection snapshot
// named in the external-interfaces section (6): a serialised record
// of a session's tabs, pane layout, and spawn commands, opaque to the
// core but versioned so a future format change can detect and reject
// (rather than silently misinterpret) a snapshot newer than this build.
package resurrect

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/zellij-org/zellij-go/internal/ptymgr"
	"github.com/zellij-org/zellij-go/internal/screen"
)

// Version is the current snapshot format version. Load rejects any
// snapshot whose Version is higher than this (a newer, unknown
// format) but accepts lower versions verbatim — the core has no
// migration logic for older snapshots, matching "format is opaque to
// the core but versioned": versioning exists to detect incompatible
// future formats, not to drive automatic upgrades.
const Version = 1

// Snapshot is the resurrectable state of one session: enough to
// recreate its tabs and spawn each pane's command again, not a replay
// of its scrollback or grid contents.
type Snapshot struct {
	Version     int           `yaml:"version"`
	Id          uuid.UUID     `yaml:"id"`
	SessionName string        `yaml:"session_name"`
	Tabs        []TabSnapshot `yaml:"tabs"`
}

// TabSnapshot is one tab's resurrectable state.
type TabSnapshot struct {
	Name     string         `yaml:"name"`
	Viewport RectSnapshot   `yaml:"viewport"`
	Panes    []PaneSnapshot `yaml:"panes"`
}

// RectSnapshot mirrors screen.Rect in a form stable across internal
// refactors of that type (the snapshot format must outlive any one
// in-memory representation).
type RectSnapshot struct {
	X, Y, Rows, Cols int
}

// PaneSnapshot is one pane's resurrectable state: its geometry and,
// for a terminal pane, the command that should be respawned in it.
// For a plugin pane FromTabs records geometry, floating state and
// title only; PluginPath is left empty, as a screen.Pane does not carry
// its plugin's path.
type PaneSnapshot struct {
	Geom       RectSnapshot `yaml:"geom"`
	Floating   bool         `yaml:"floating"`
	Title      string       `yaml:"title,omitempty"`
	Command    string       `yaml:"command,omitempty"`
	Args       []string     `yaml:"args,omitempty"`
	Cwd        string       `yaml:"cwd,omitempty"`
	PluginPath string       `yaml:"plugin_path,omitempty"`
}

// FromTabs builds a Snapshot from a session's live tabs.
func FromTabs(sessionName string, tabs []*screen.Tab) Snapshot {
	snap := Snapshot{
		Version:     Version,
		Id:          uuid.New(),
		SessionName: sessionName,
		Tabs:        make([]TabSnapshot, len(tabs)),
	}
	for i, tab := range tabs {
		snap.Tabs[i] = tabSnapshotFrom(tab)
	}
	return snap
}

func tabSnapshotFrom(tab *screen.Tab) TabSnapshot {
	viewport := tab.Viewport()
	ts := TabSnapshot{
		Name:     tab.Name,
		Viewport: rectSnapshotFrom(viewport),
	}
	for _, p := range tab.Panes() {
		ts.Panes = append(ts.Panes, paneSnapshotFrom(p))
	}
	return ts
}

func rectSnapshotFrom(r screen.Rect) RectSnapshot {
	return RectSnapshot{X: r.X, Y: r.Y, Rows: r.Rows, Cols: r.Cols}
}

func (r RectSnapshot) Rect() screen.Rect {
	return screen.Rect{X: r.X, Y: r.Y, Rows: r.Rows, Cols: r.Cols}
}

func paneSnapshotFrom(p *screen.Pane) PaneSnapshot {
	ps := PaneSnapshot{
		Geom:     rectSnapshotFrom(p.Geom),
		Floating: p.Floating,
		Title:    p.Title,
	}
	if p.Id.Kind == screen.PaneKindTerminal && p.RunCommand != nil {
		ps.Command = p.RunCommand.Command
		ps.Args = p.RunCommand.Args
		ps.Cwd = p.RunCommand.Cwd
	}
	return ps
}

// RunCommand reconstructs the spawn command this pane snapshot
// describes, or nil for a plugin pane / a terminal pane that held no
// command (the bare default shell).
func (p PaneSnapshot) RunCommand() *ptymgr.RunCommand {
	if p.Command == "" {
		return nil
	}
	return &ptymgr.RunCommand{Command: p.Command, Args: p.Args, Cwd: p.Cwd}
}

// Dir returns the directory resurrection snapshots are written under.
func Dir() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "zellij-go", "resurrect")
}

// Path returns the snapshot path for a session named name.
func Path(name string) string {
	return filepath.Join(Dir(), name+".yaml")
}

// Save serializes snap and writes it to its session's snapshot file.
func Save(snap Snapshot) error {
	if err := os.MkdirAll(Dir(), 0o755); err != nil {
		return fmt.Errorf("create resurrect dir: %w", err)
	}
	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	path := Path(snap.SessionName)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return nil
}

// Load reads and decodes the snapshot for a session named name.
func Load(name string) (Snapshot, error) {
	return LoadFrom(Path(name))
}

// LoadFrom reads and decodes the snapshot at path.
func LoadFrom(path string) (Snapshot, error) {
	var snap Snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return snap, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	if snap.Version > Version {
		return snap, fmt.Errorf("snapshot %s is format version %d, newer than this build supports (%d)", path, snap.Version, Version)
	}
	return snap, nil
}

// Delete removes a session's snapshot file, if any. Matches
// resurrectable-session deletion: a missing file is not an error.
func Delete(name string) error {
	err := os.Remove(Path(name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// List returns the session names with a saved snapshot, newest first
// is NOT guaranteed here — callers that need recency (e.g. the
// session-manager-style "created N ago" ordering) should stat each
// path themselves; this only enumerates what exists.
func List() ([]string, error) {
	entries, err := os.ReadDir(Dir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if filepath.Ext(name) == ".yaml" {
			names = append(names, name[:len(name)-len(".yaml")])
		}
	}
	return names, nil
}
