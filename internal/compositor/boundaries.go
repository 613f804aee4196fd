package compositor

// direction is a bitmask of which sides a box-drawing boundary glyph
// connects to. Combining two boundary symbols (e.g. where a floating
// pane's frame crosses a tiled pane's frame) is the union of their
// connection masks mapped back to a glyph — this reproduces the
// original implementation's exhaustive pairwise combination table
// (every (symbolA, symbolB) -> symbol case) as one small lookup in each
// direction instead of ~50 explicit pairs.
type direction uint8

const (
	north direction = 1 << iota
	south
	east
	west
)

var dirsForGlyph = map[rune]direction{
	'│': north | south,
	'─': east | west,
	'┌': south | east,
	'┐': south | west,
	'└': north | east,
	'┘': north | west,
	'├': north | south | east,
	'┤': north | south | west,
	'┬': east | west | south,
	'┴': east | west | north,
	'┼': north | south | east | west,
}

var glyphForDirs = map[direction]rune{
	north | south:               '│',
	east | west:                 '─',
	south | east:                '┌',
	south | west:                '┐',
	north | east:                '└',
	north | west:                '┘',
	north | south | east:        '├',
	north | south | west:        '┤',
	east | west | south:         '┬',
	east | west | north:         '┴',
	north | south | east | west: '┼',
}

// CombineBoundary merges two box-drawing frame glyphs that land on the
// same cell (a floating pane's frame crossing a tiled pane's frame, or
// two tiled frames meeting at a T-junction) into the single glyph that
// connects every side either one did. Either argument may be a
// non-boundary rune (e.g. ' '), in which case the other is returned
// unchanged.
func CombineBoundary(a, b rune) rune {
	da, aok := dirsForGlyph[a]
	db, bok := dirsForGlyph[b]
	switch {
	case !aok && !bok:
		return a
	case !aok:
		return b
	case !bok:
		return a
	}
	combined := da | db
	if g, ok := glyphForDirs[combined]; ok {
		return g
	}
	return a
}

// Frame glyphs used to draw a pane's border.
const (
	GlyphTopLeft     = '┌'
	GlyphTopRight    = '┐'
	GlyphBottomLeft  = '└'
	GlyphBottomRight = '┘'
	GlyphHorizontal  = '─'
	GlyphVertical    = '│'
)
