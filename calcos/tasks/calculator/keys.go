package calculator

import (
	"unicode/utf8"

	"calcpad/calcos/calc"
)

type keyKind uint8

const (
	keyNone keyKind = iota
	keyEsc
	keyEnter
	keyBackspace
	keyDelete
	keyRune
)

type key struct {
	kind keyKind
	r    rune
}

// nextKey decodes one key from VT100 input. ok is false when b holds an
// incomplete sequence; unsupported sequences decode to keyNone.
func nextKey(b []byte) (consumed int, k key, ok bool) {
	if len(b) == 0 {
		return 0, key{}, false
	}

	switch b[0] {
	case 0x1b:
		if len(b) == 1 {
			return 1, key{kind: keyEsc}, true
		}
		if b[1] != '[' {
			return 1, key{kind: keyEsc}, true
		}
		return csiKey(b)
	case '\r', '\n':
		return 1, key{kind: keyEnter}, true
	case 0x7f, 0x08:
		return 1, key{kind: keyBackspace}, true
	}

	if !utf8.FullRune(b) {
		return 0, key{}, false
	}
	r, sz := utf8.DecodeRune(b)
	if r == utf8.RuneError && sz == 1 {
		return 1, key{}, true
	}
	if r < 0x20 {
		return sz, key{}, true
	}
	return sz, key{kind: keyRune, r: r}, true
}

// csiKey consumes an ESC [ params final sequence.
func csiKey(b []byte) (int, key, bool) {
	for i := 2; i < len(b); i++ {
		c := b[i]
		switch {
		case c >= '0' && c <= '9', c == ';':
			continue
		case c >= 0x40 && c <= 0x7e:
			if c == '~' && string(b[2:i]) == "3" {
				return i + 1, key{kind: keyDelete}, true
			}
			return i + 1, key{}, true
		default:
			return 1, key{kind: keyEsc}, true
		}
	}
	return 0, key{}, false
}

// commandForKey maps a decoded key to a calculator command.
func commandForKey(k key) (calc.Command, bool) {
	switch k.kind {
	case keyEnter:
		return calc.EqualsCommand(), true
	case keyEsc, keyDelete:
		return calc.ClearCommand(), true
	case keyRune:
		return calc.CommandForRune(k.r)
	default:
		return calc.Command{}, false
	}
}
