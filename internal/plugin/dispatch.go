package plugin

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/tetratelabs/wazero/api"
)

// Dispatch delivers an event of kind to inst if and only if inst
// declared kind in its subscription set; events outside that set are
// silently dropped rather than queued, matching the spec's
// subscription-gated delivery contract. payload is copied into the
// guest's memory at a scratch offset the plugin's handle_event export
// reads back via its single pointer argument (layout: see writeToGuest).
func (h *Host) Dispatch(ctx context.Context, inst *Instance, kind EventKind, payload []byte) error {
	if inst.Evicted() {
		return fmt.Errorf("plugin %s evicted, event dropped", inst.Path)
	}
	if !inst.Subscribed(kind) {
		return nil
	}

	inst.mu.Lock()
	inst.calls++
	over := inst.calls > instructionBudget
	if over {
		inst.evicted = true
	}
	inst.mu.Unlock()
	if over {
		return fmt.Errorf("plugin %s exceeded its instruction budget and was evicted", inst.Path)
	}

	fn := inst.module.ExportedFunction("handle_event")
	if fn == nil {
		return nil
	}

	ptr, err := writeToGuest(ctx, inst.module, []byte(kind), payload)
	if err != nil {
		return fmt.Errorf("write event payload for plugin %s: %w", inst.Path, err)
	}

	if _, err := fn.Call(ctx, uint64(ptr)); err != nil {
		inst.mu.Lock()
		inst.trap = err
		inst.mu.Unlock()
		return fmt.Errorf("plugin %s trapped handling %s: %w", inst.Path, kind, err)
	}
	return nil
}

// writeToGuest packs kind and payload into the guest's exported
// scratch buffer (its "alloc" export, a common wasm-guest convention
// for host-to-guest byte transfer) and returns the pointer the guest
// reads from. Layout: 4-byte kind length, kind bytes, payload bytes.
func writeToGuest(ctx context.Context, mod api.Module, kind, payload []byte) (uint32, error) {
	alloc := mod.ExportedFunction("alloc")
	if alloc == nil {
		return 0, fmt.Errorf("plugin does not export alloc")
	}
	total := 4 + len(kind) + len(payload)
	results, err := alloc.Call(ctx, uint64(total))
	if err != nil {
		return 0, err
	}
	ptr := uint32(results[0])

	buf := make([]byte, total)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(kind)))
	copy(buf[4:4+len(kind)], kind)
	copy(buf[4+len(kind):], payload)

	if !mod.Memory().Write(ptr, buf) {
		return 0, fmt.Errorf("failed writing %d bytes to guest memory at %d", total, ptr)
	}
	return ptr, nil
}
