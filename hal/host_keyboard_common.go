//go:build !tinygo

package hal

import "context"

type hostKeyboard struct {
	ch chan KeyEvent
}

func newHostKeyboard() *hostKeyboard {
	return &hostKeyboard{ch: make(chan KeyEvent, 64)}
}

func (k *hostKeyboard) Events() <-chan KeyEvent { return k.ch }

// inject types s as key presses, blocking while the event queue is full.
//
// Newlines become KeyEnter and ESC (0x1b) becomes KeyEscape; every other rune
// is delivered as text input.
func (k *hostKeyboard) inject(ctx context.Context, s string) error {
	for _, r := range s {
		ev := KeyEvent{Press: true, Rune: r}
		switch r {
		case '\r', '\n':
			ev = KeyEvent{Code: KeyEnter, Press: true}
		case 0x1b:
			ev = KeyEvent{Code: KeyEscape, Press: true}
		}
		select {
		case k.ch <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
