package plugin

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"
)

// assertPluginVersion calls the guest's exported plugin_version
// function (a no-arg function returning one value that packs ptr<<32|len
// of a string in the guest's own linear memory) and rejects the plugin if the
// string it returns doesn't match serverVersion exactly.
//
// Mirrors the original multiplexer's load-time behavior: a version
// mismatch is fatal for that one plugin, never for the server.
func assertPluginVersion(ctx context.Context, mod api.Module, serverVersion string) error {
	fn := mod.ExportedFunction("plugin_version")
	if fn == nil {
		return &VersionMismatchError{Path: mod.Name(), PluginVersion: "unavailable", ServerVersion: serverVersion}
	}
	results, err := fn.Call(ctx)
	if err != nil {
		return fmt.Errorf("call plugin_version: %w", err)
	}
	if len(results) != 1 {
		return fmt.Errorf("plugin_version returned %d results, want 1", len(results))
	}
	ptr := uint32(results[0] >> 32)
	length := uint32(results[0])
	version := readString(mod, ptr, length)
	if version != serverVersion {
		return &VersionMismatchError{Path: mod.Name(), PluginVersion: version, ServerVersion: serverVersion}
	}
	return nil
}
