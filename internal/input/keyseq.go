package input

import "strconv"

// IsEscSequenceComplete reports whether seq (starting with ESC) forms a
// complete escape sequence: a CSI sequence ends at its first final byte
// in 0x40-0x7E, an SS3 sequence (ESC O) needs exactly one more byte, and
// anything else is complete as soon as the byte after ESC arrives.
func IsEscSequenceComplete(seq []byte) bool {
	if len(seq) < 2 {
		return false
	}
	switch seq[1] {
	case '[':
		if len(seq) < 3 {
			return false
		}
		final := seq[len(seq)-1]
		return final >= 0x40 && final <= 0x7E
	case 'O':
		return len(seq) >= 3
	default:
		return true
	}
}

// IsShiftEnterSequence reports whether seq is a Shift+Enter key report,
// in either xterm's modifyOtherKeys form (ESC[27;2;13~) or kitty's form
// (ESC[13;2u).
func IsShiftEnterSequence(seq []byte) bool {
	return matchesCSIParams(seq, 'u', "13;2") || matchesCSIParams(seq, '~', "27;2;13", "13;2")
}

// IsCtrlEnterSequence reports whether seq is a Ctrl+Enter key report
// (kitty ESC[13;5u, xterm ESC[27;5;13~).
func IsCtrlEnterSequence(seq []byte) bool {
	return matchesCSIParams(seq, 'u', "13;5") || matchesCSIParams(seq, '~', "27;5;13")
}

// IsCtrlEscapeSequence reports whether seq is a Ctrl+Escape key report
// (kitty ESC[27;5u, xterm ESC[27;5;27~).
func IsCtrlEscapeSequence(seq []byte) bool {
	return matchesCSIParams(seq, 'u', "27;5") || matchesCSIParams(seq, '~', "27;5;27")
}

func matchesCSIParams(seq []byte, final byte, anyOf ...string) bool {
	if len(seq) < 3 || seq[1] != '[' {
		return false
	}
	if seq[len(seq)-1] != final {
		return false
	}
	params := string(seq[2 : len(seq)-1])
	for _, want := range anyOf {
		if params == want {
			return true
		}
	}
	return false
}

// FormatDebugKey renders a single byte for key-trace logging.
func FormatDebugKey(b byte) string {
	switch b {
	case 0x1B:
		return "esc"
	case 0x0D:
		return "cr"
	case 0x0A:
		return "lf"
	case 0x09:
		return "tab"
	case 0x7F:
		return "del"
	}
	if b >= 0x20 && b <= 0x7E {
		return string([]byte{b})
	}
	return "0x" + strconv.FormatUint(uint64(b), 16)
}
