package plugin

import (
	"bytes"

	"github.com/kr/text"
)

// ErrorPaneContent renders err as the fixed-width text a trapped or
// evicted plugin's pane shows instead of its normal content. A plugin
// crashing never takes down the session — it becomes a readable error
// message in its own pane.
func ErrorPaneContent(err error, cols int) []byte {
	if err == nil {
		return nil
	}
	if cols < 20 {
		cols = 20
	}
	var buf bytes.Buffer
	buf.WriteString("plugin error:\n\n")
	wrapped := text.Wrap(err.Error(), cols)
	buf.WriteString(wrapped)
	return buf.Bytes()
}
