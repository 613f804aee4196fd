package plugin

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero"
)

// moduleCache compiles each distinct plugin wasm blob exactly once,
// keyed by its content hash so a plugin reloaded after a config change
// (but with unchanged bytes) skips recompilation. Shared across every
// Load call on the Host and protected by a mutex, matching the single
// shared, mutex-guarded cache the resource model calls for.
type moduleCache struct {
	mu      sync.Mutex
	modules map[string]wazero.CompiledModule
}

func newModuleCache() *moduleCache {
	return &moduleCache{modules: make(map[string]wazero.CompiledModule)}
}

func (c *moduleCache) getOrCompile(ctx context.Context, runtime wazero.Runtime, hash string, wasmBytes []byte) (wazero.CompiledModule, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if compiled, ok := c.modules[hash]; ok {
		return compiled, nil
	}
	compiled, err := runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, err
	}
	c.modules[hash] = compiled
	return compiled, nil
}

// evict drops hash from the cache and closes its compiled module,
// releasing the compiled code. Used when a plugin path is explicitly
// reloaded with different bytes.
func (c *moduleCache) evict(ctx context.Context, hash string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if compiled, ok := c.modules[hash]; ok {
		compiled.Close(ctx)
		delete(c.modules, hash)
	}
}
