package input

import "testing"

func TestDecoderPlainRune(t *testing.T) {
	var d Decoder
	keys := d.Feed([]byte("a"))
	if len(keys) != 1 || keys[0].Rune != 'a' || keys[0].Ctrl {
		t.Fatalf("unexpected keys: %+v", keys)
	}
}

func TestDecoderCtrlLetter(t *testing.T) {
	var d Decoder
	keys := d.Feed([]byte{0x10}) // ctrl-p
	if len(keys) != 1 || !keys[0].Ctrl || keys[0].Rune != 'p' {
		t.Fatalf("unexpected keys: %+v", keys)
	}
}

func TestDecoderNamedKeys(t *testing.T) {
	var d Decoder
	keys := d.Feed([]byte{'\r', '\t', 0x7F})
	if len(keys) != 3 {
		t.Fatalf("expected 3 keys, got %+v", keys)
	}
	if keys[0].Named != KeyEnter || keys[1].Named != KeyTab || keys[2].Named != KeyBackspace {
		t.Fatalf("unexpected keys: %+v", keys)
	}
}

func TestDecoderArrowKeySequence(t *testing.T) {
	var d Decoder
	keys := d.Feed([]byte("\x1b[A"))
	if len(keys) != 1 || keys[0].Named != KeyUp {
		t.Fatalf("expected Up key, got %+v", keys)
	}
}

func TestDecoderArrowKeySplitAcrossFeeds(t *testing.T) {
	var d Decoder
	keys := d.Feed([]byte("\x1b["))
	if len(keys) != 0 {
		t.Fatalf("expected no keys yet, got %+v", keys)
	}
	keys = d.Feed([]byte("B"))
	if len(keys) != 1 || keys[0].Named != KeyDown {
		t.Fatalf("expected Down key once the sequence completes, got %+v", keys)
	}
}

func TestDecoderBareEscape(t *testing.T) {
	var d Decoder
	keys := d.Feed([]byte{0x1B, 'x'})
	if len(keys) != 1 || keys[0].Rune != 'x' || !keys[0].Alt {
		t.Fatalf("expected Alt+x, got %+v", keys)
	}
}

func TestDecoderMixedStreamPreservesOrder(t *testing.T) {
	var d Decoder
	keys := d.Feed([]byte("hi\x1b[Abye"))
	if len(keys) != 6 {
		t.Fatalf("expected 6 keys, got %d: %+v", len(keys), keys)
	}
	if keys[0].Rune != 'h' || keys[1].Rune != 'i' || keys[2].Named != KeyUp || keys[3].Rune != 'b' {
		t.Fatalf("unexpected decode order: %+v", keys)
	}
}
