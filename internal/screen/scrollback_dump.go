package screen

import (
	"os"
	"strings"

	"github.com/zellij-org/zellij-go/internal/grid"
)

// dumpScrollback writes p's full retained history (oldest line first)
// followed by its current live viewport to a fresh temp file and
// returns its path, for the EditScrollback action.
func dumpScrollback(p *Pane) (string, error) {
	f, err := os.CreateTemp("", "zellij-go-scrollback-*.txt")
	if err != nil {
		return "", err
	}
	defer f.Close()

	var b strings.Builder
	n := p.Grid.ScrollbackLen()
	for i := n - 1; i >= 0; i-- {
		row, ok := p.Grid.ScrollbackLine(i)
		if !ok {
			continue
		}
		writeRowText(&b, row)
	}
	for r := 0; r < p.Grid.Rows(); r++ {
		writeRowText(&b, p.Grid.Line(r))
	}

	if _, err := f.WriteString(b.String()); err != nil {
		return "", err
	}
	return f.Name(), nil
}

func writeRowText(b *strings.Builder, row grid.Row) {
	for _, cell := range row.Cells {
		if cell.HasFlag(grid.FlagWideSpacer) {
			continue
		}
		b.WriteRune(cell.Char)
	}
	if !row.Wrapped {
		b.WriteByte('\n')
	}
}
