//go:build !tinygo

package hal

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testTimeout = 2 * time.Second

func TestRGB565RoundTrip(t *testing.T) {
	tests := []struct {
		r, g, b uint8
	}{
		{0, 0, 0},
		{255, 255, 255},
		{255, 0, 0},
		{0, 255, 0},
		{0, 0, 255},
	}
	for _, tt := range tests {
		r, g, b := RGB888(RGB565(tt.r, tt.g, tt.b))
		if r != tt.r || g != tt.g || b != tt.b {
			t.Fatalf("RGB888(RGB565(%d,%d,%d)) = %d,%d,%d", tt.r, tt.g, tt.b, r, g, b)
		}
	}
}

func pixelAt(fb *hostFramebuffer, x, y int) uint16 {
	off := y*fb.stride + x*2
	return uint16(fb.buf[off]) | uint16(fb.buf[off+1])<<8
}

func TestFillRectClips(t *testing.T) {
	fb := newHostFramebuffer(8, 4)
	p := RGB565(255, 255, 255)

	FillRectRGB565(fb, -2, -2, 4, 4, p)
	FillRectRGB565(fb, 6, 2, 10, 10, p)

	if pixelAt(fb, 0, 0) != p || pixelAt(fb, 1, 1) != p {
		t.Fatal("expected top-left corner filled")
	}
	if pixelAt(fb, 2, 2) != 0 {
		t.Fatal("fill leaked outside the clipped rectangle")
	}
	if pixelAt(fb, 7, 3) != p {
		t.Fatal("expected bottom-right corner filled")
	}
}

func TestRectOutline(t *testing.T) {
	fb := newHostFramebuffer(6, 6)
	p := RGB565(0, 255, 0)
	RectOutlineRGB565(fb, 1, 1, 4, 4, p)

	if pixelAt(fb, 1, 1) != p || pixelAt(fb, 4, 4) != p || pixelAt(fb, 4, 1) != p {
		t.Fatal("expected outline corners set")
	}
	if pixelAt(fb, 2, 2) != 0 {
		t.Fatal("outline filled the interior")
	}
}

func TestFramebufferSnapshotRGBA(t *testing.T) {
	fb := newHostFramebuffer(2, 1)
	fb.ClearRGB(255, 0, 0)

	scratch := make([]byte, len(fb.buf))
	dst := make([]byte, 2*4)
	fb.snapshotRGBA(scratch, dst)

	want := []byte{255, 0, 0, 255, 255, 0, 0, 255}
	if !bytes.Equal(dst, want) {
		t.Fatalf("snapshotRGBA() = %v, want %v", dst, want)
	}
}

func TestKeyboardInject(t *testing.T) {
	k := newHostKeyboard()
	if err := k.inject(context.Background(), "1+\n\x1b"); err != nil {
		t.Fatalf("inject: %v", err)
	}

	want := []KeyEvent{
		{Press: true, Rune: '1'},
		{Press: true, Rune: '+'},
		{Code: KeyEnter, Press: true},
		{Code: KeyEscape, Press: true},
	}
	for i, w := range want {
		select {
		case got := <-k.Events():
			if got != w {
				t.Fatalf("event %d = %+v, want %+v", i, got, w)
			}
		default:
			t.Fatalf("missing event %d", i)
		}
	}
}

func TestKeyboardInjectCanceled(t *testing.T) {
	k := &hostKeyboard{ch: make(chan KeyEvent)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := k.inject(ctx, "1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("inject on canceled context = %v, want context.Canceled", err)
	}
}

func TestStatusShowDedupes(t *testing.T) {
	var s hostStatus
	s.Show("ignored without sink")

	var got []string
	s.setSink(func(line string) { got = append(got, line) })
	s.Show("12")
	s.Show("12")
	s.Show("12 +")
	s.Show("12")

	want := []string{"12", "12 +", "12"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("sink lines = %q, want %q", got, want)
	}
}

func TestHostTimeStep(t *testing.T) {
	now := time.Unix(0, 0)
	ht := newHostTime()
	ht.now = func() time.Time { return now }

	ht.step(1)
	now = now.Add(2500 * time.Microsecond)
	ht.step(1)
	now = now.Add(600 * time.Microsecond)
	ht.step(1)

	var last uint64
	n := 0
	for {
		select {
		case last = <-ht.Ticks():
			n++
			continue
		default:
		}
		break
	}
	if n != 4 || last != 4 {
		t.Fatalf("got %d ticks ending at %d, want 4 ending at 4", n, last)
	}
}

func TestLoggerWritesLines(t *testing.T) {
	var buf bytes.Buffer
	h := newHostHAL(&buf)
	h.Logger().WriteLineString("a")
	h.Logger().WriteLineBytes([]byte("b"))

	if buf.String() != "a\nb\n" {
		t.Fatalf("logger output = %q", buf.String())
	}
}

func TestRunHeadlessStopsAfterTicks(t *testing.T) {
	var buf bytes.Buffer
	steps := 0
	err := RunHeadless(context.Background(), func(h HAL) func() error {
		if h.Display().Framebuffer() == nil || h.Input().Keyboard() == nil {
			t.Error("host HAL missing devices")
		}
		return func() error {
			steps++
			return nil
		}
	}, HeadlessConfig{Enabled: true, Hz: 1000, Ticks: 3, Out: &buf})
	if err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}
	if steps != 3 {
		t.Fatalf("steps = %d, want 3", steps)
	}
}

func TestRunHeadlessPropagatesStepError(t *testing.T) {
	boom := errors.New("boom")
	err := RunHeadless(context.Background(), func(HAL) func() error {
		return func() error { return boom }
	}, HeadlessConfig{Hz: 1000, Out: &bytes.Buffer{}})
	if !errors.Is(err, boom) {
		t.Fatalf("RunHeadless() = %v, want boom", err)
	}
}

func TestRunHeadlessMissingScriptFile(t *testing.T) {
	err := RunHeadless(context.Background(), func(HAL) func() error { return nil },
		HeadlessConfig{Hz: 1000, Ticks: 1, ScriptFile: filepath.Join(t.TempDir(), "missing.txt"), Out: &bytes.Buffer{}})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("RunHeadless() = %v, want os.ErrNotExist", err)
	}
}

func TestRunHeadlessInjectsScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.txt")
	if err := os.WriteFile(path, []byte("=\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := make(chan KeyEvent, 8)
	err := RunHeadless(context.Background(), func(h HAL) func() error {
		events := h.Input().Keyboard().Events()
		return func() error {
			for {
				select {
				case ev := <-events:
					got <- ev
				default:
					return nil
				}
			}
		}
	}, HeadlessConfig{Hz: 1000, Ticks: 200, Script: "7", ScriptFile: path, Out: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}

	want := []KeyEvent{{Press: true, Rune: '7'}, {Press: true, Rune: '='}, {Code: KeyEnter, Press: true}}
	for i, w := range want {
		select {
		case ev := <-got:
			if ev != w {
				t.Fatalf("event %d = %+v, want %+v", i, ev, w)
			}
		default:
			t.Fatalf("missing event %d", i)
		}
	}
}

func TestWatchScriptReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keys.txt")
	if err := os.WriteFile(path, []byte("1"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan string, 4)
	done := make(chan error, 1)
	go func() {
		done <- watchScript(ctx, path, func(s string) { changes <- s })
	}()

	// Give the watcher time to register before writing.
	deadline := time.After(testTimeout)
	for {
		if err := os.WriteFile(path, []byte("2+2="), 0o644); err != nil {
			t.Fatal(err)
		}
		select {
		case s := <-changes:
			if s != "2+2=" {
				t.Fatalf("change = %q, want 2+2=", s)
			}
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("watchScript: %v", err)
			}
			return
		case <-time.After(100 * time.Millisecond):
		case <-deadline:
			t.Fatal("timed out waiting for script change")
		}
	}
}
