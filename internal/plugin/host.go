// Package plugin implements the Plugin Host (4.7): loading sandboxed
// WebAssembly plugin modules that act as panes and event subscribers,
// exposing the host-call surface they invoke, and delivering events to
// the subscriptions each plugin declares.
package plugin

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// Id identifies one loaded plugin instance.
type Id uint64

// EventKind enumerates the event types a plugin may subscribe to.
type EventKind string

const (
	EventModeUpdate              EventKind = "ModeUpdate"
	EventTabUpdate               EventKind = "TabUpdate"
	EventKey                     EventKind = "Key"
	EventPermissionRequestResult EventKind = "PermissionRequestResult"
	EventCommandPaneExited       EventKind = "CommandPaneExited"
	EventTimer                   EventKind = "Timer"
	EventPastedText              EventKind = "PastedText"
	EventHostFolderChanged       EventKind = "HostFolderChanged"
)

// instructionBudget bounds how many events one plugin instance may
// handle across its lifetime before the host evicts it. wazero has no
// raw instruction counter exposed to the host; this approximates a
// soft per-instance budget by counting delivered events instead,
// advisory rather than true guest-cycle metering.
const instructionBudget = 200_000

// Instance is one loaded, running plugin.
type Instance struct {
	Id       Id
	Path     string
	ClientId uint16

	module api.Module
	stdout bytes.Buffer

	subscriptions map[EventKind]bool

	mu      sync.Mutex
	calls   int
	evicted bool
	trap    error
}

// Evicted reports whether inst has exceeded its instruction budget and
// been shut out of further event delivery.
func (inst *Instance) Evicted() bool {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.evicted
}

// Trap returns the error from inst's most recent failed call, if any.
func (inst *Instance) Trap() error {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.trap
}

// Subscribed reports whether inst declared kind in its subscription
// set — events outside it are never delivered.
func (inst *Instance) Subscribed(kind EventKind) bool {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.subscriptions[kind]
}

// Host owns every loaded plugin instance for a session plus the shared,
// mutex-protected content-hash module cache.
type Host struct {
	mu sync.Mutex

	runtime   wazero.Runtime
	cache     *moduleCache
	instances map[Id]*Instance
	nextId    Id

	logger *log.Logger

	serverVersion string
}

// New constructs a Host. serverVersion is compared against every
// plugin's exported version string on load.
func New(ctx context.Context, serverVersion string, logger *log.Logger) *Host {
	if logger == nil {
		logger = log.New(discard{}, "", 0)
	}
	return &Host{
		runtime:       wazero.NewRuntime(ctx),
		cache:         newModuleCache(),
		instances:     make(map[Id]*Instance),
		logger:        logger,
		serverVersion: serverVersion,
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// Close releases every loaded module and the underlying wazero runtime.
func (h *Host) Close(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.runtime.Close(ctx)
}

// VersionMismatchError reports that a plugin's exported version string
// does not match the server's. Fatal for that plugin only.
type VersionMismatchError struct {
	Path          string
	PluginVersion string
	ServerVersion string
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("plugin %s version %q does not match server version %q", e.Path, e.PluginVersion, e.ServerVersion)
}

// Load compiles (or reuses a cached compilation of) wasmBytes and
// instantiates it for client. Compilation is cached by content hash;
// instances are not cached at all, so every Load call (for another
// client, or again for the same client and path) creates a new,
// independent instance sharing the one compiled module.
func (h *Host) Load(ctx context.Context, path string, wasmBytes []byte, client uint16, subscriptions []EventKind) (*Instance, error) {
	hash := contentHash(wasmBytes)

	compiled, err := h.cache.getOrCompile(ctx, h.runtime, hash, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("compile plugin %s: %w", path, err)
	}

	h.mu.Lock()
	id := h.nextId
	h.nextId++
	h.mu.Unlock()

	inst := &Instance{
		Id:            id,
		Path:          path,
		ClientId:      client,
		subscriptions: subscriptionSet(subscriptions),
	}

	hostModule, err := h.buildHostModule(ctx, inst)
	if err != nil {
		return nil, fmt.Errorf("build host module for %s: %w", path, err)
	}
	defer hostModule.Close(ctx)

	cfg := wazero.NewModuleConfig().
		WithName(fmt.Sprintf("plugin-%d", id)).
		WithStdout(&inst.stdout).
		WithStderr(&inst.stdout)
	mod, err := h.runtime.InstantiateModule(ctx, compiled, cfg)
	if err != nil {
		return nil, fmt.Errorf("instantiate plugin %s: %w", path, err)
	}
	inst.module = mod

	if err := assertPluginVersion(ctx, mod, h.serverVersion); err != nil {
		mod.Close(ctx)
		return nil, err
	}

	h.mu.Lock()
	h.instances[id] = inst
	h.mu.Unlock()
	return inst, nil
}

// buildHostModule exposes the host-call surface (subscribe, send key,
// spawn pane, switch mode, get state) as wazero host functions under
// the "zellij" namespace, matching the synchronous, single-threaded
// host-call contract: every call completes before control returns to
// the plugin.
func (h *Host) buildHostModule(ctx context.Context, inst *Instance) (api.Module, error) {
	builder := h.runtime.NewHostModuleBuilder("zellij")
	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, kindPtr, kindLen uint32) {
			kind := EventKind(readString(m, kindPtr, kindLen))
			inst.mu.Lock()
			inst.subscriptions[kind] = true
			inst.mu.Unlock()
		}).
		Export("host_subscribe")
	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, kindPtr, kindLen uint32) {
			kind := EventKind(readString(m, kindPtr, kindLen))
			inst.mu.Lock()
			delete(inst.subscriptions, kind)
			inst.mu.Unlock()
		}).
		Export("host_unsubscribe")
	return builder.Instantiate(ctx)
}

func readString(m api.Module, ptr, length uint32) string {
	buf, ok := m.Memory().Read(ptr, length)
	if !ok {
		return ""
	}
	return string(buf)
}

func subscriptionSet(kinds []EventKind) map[EventKind]bool {
	set := make(map[EventKind]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return set
}

func contentHash(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Unload tears down inst and removes it from the Host.
func (h *Host) Unload(ctx context.Context, id Id) {
	h.mu.Lock()
	inst, ok := h.instances[id]
	delete(h.instances, id)
	h.mu.Unlock()
	if ok && inst.module != nil {
		inst.module.Close(ctx)
	}
}

// Instance looks up a loaded plugin by id.
func (h *Host) Instance(id Id) (*Instance, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	inst, ok := h.instances[id]
	return inst, ok
}
