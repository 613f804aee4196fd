package plugin

import (
	"context"
	"fmt"
)

// Render asks inst to draw itself at rows x cols and returns its
// stdout, the plugin pane's content for this frame. The Render
// Compositor treats this exactly like a Grid's rendered line — one
// style per character — so a plugin pane composites identically to a
// terminal pane.
func (h *Host) Render(ctx context.Context, inst *Instance, rows, cols int) ([]byte, error) {
	if inst.Evicted() {
		err := inst.Trap()
		if err == nil {
			err = fmt.Errorf("plugin %s exceeded its instruction budget and was evicted", inst.Path)
		}
		return ErrorPaneContent(err, cols), nil
	}

	fn := inst.module.ExportedFunction("render")
	if fn == nil {
		return nil, nil
	}

	inst.stdout.Reset()
	if _, err := fn.Call(ctx, uint64(rows), uint64(cols)); err != nil {
		inst.mu.Lock()
		inst.trap = err
		inst.mu.Unlock()
		return ErrorPaneContent(err, cols), nil
	}
	out := make([]byte, inst.stdout.Len())
	copy(out, inst.stdout.Bytes())
	return out, nil
}
