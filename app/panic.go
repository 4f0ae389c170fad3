package app

import (
	"fmt"
	"image/color"
	"strings"

	"calcpad/calcos/kernel"
	"calcpad/hal"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

func installPanicHandler(k *kernel.Kernel, h hal.HAL) {
	k.SetPanicHandler(func(info kernel.PanicInfo) {
		lines := panicLines(info)
		if l := h.Logger(); l != nil {
			for _, line := range lines {
				l.WriteLineString(line)
			}
		}
		if disp := h.Display(); disp != nil {
			drawPanicScreen(disp.Framebuffer(), lines)
		}
	})
}

func panicLines(info kernel.PanicInfo) []string {
	lines := []string{fmt.Sprintf("calcpad panic: task=%d panic=%v", info.TaskID, info.Value)}
	if len(info.Stack) == 0 {
		return append(lines, "stack: unavailable")
	}
	for _, line := range strings.Split(string(info.Stack), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func drawPanicScreen(fb hal.Framebuffer, lines []string) {
	if fb == nil || fb.Format() != hal.PixelFormatRGB565 {
		return
	}
	font := &proggy.TinySZ8pt7b
	fontHeight := int(font.GetYAdvance())
	_, outbox := tinyfont.LineWidth(font, "0")
	cols := 1
	if outbox > 0 {
		cols = max(fb.Width()/int(outbox), 1)
	}

	fb.ClearRGB(0xFF, 0xFF, 0xFF)
	d := panicDisplay{fb: fb}
	fg := color.RGBA{A: 0xFF}

	y := 0
	for _, line := range lines {
		for _, chunk := range wrapRunes(strings.ReplaceAll(line, "\t", "  "), cols) {
			if y+fontHeight > fb.Height() {
				_ = fb.Present()
				return
			}
			tinyfont.WriteLine(d, font, 0, int16(y+fontHeight), chunk, fg)
			y += fontHeight
		}
	}
	_ = fb.Present()
}

// wrapRunes splits s into chunks of at most n runes.
func wrapRunes(s string, n int) []string {
	r := []rune(s)
	if len(r) == 0 {
		return []string{""}
	}
	var out []string
	for len(r) > n {
		out = append(out, string(r[:n]))
		r = r[n:]
	}
	return append(out, string(r))
}

type panicDisplay struct {
	fb hal.Framebuffer
}

func (d panicDisplay) Size() (x, y int16) {
	return int16(d.fb.Width()), int16(d.fb.Height())
}

func (d panicDisplay) SetPixel(x, y int16, c color.RGBA) {
	hal.FillRectRGB565(d.fb, int(x), int(y), 1, 1, hal.RGB565(c.R, c.G, c.B))
}

func (d panicDisplay) Display() error { return nil }
