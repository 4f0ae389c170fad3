package calculator

import (
	"image/color"

	"calcpad/hal"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

var (
	colorTitle  = color.RGBA{R: 0xEE, G: 0xEE, B: 0xEE, A: 0xFF}
	colorExpr   = color.RGBA{R: 0x9A, G: 0xC6, B: 0xFF, A: 0xFF}
	colorResult = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	colorError  = color.RGBA{R: 0xFF, G: 0x55, B: 0x55, A: 0xFF}
	colorKey    = color.RGBA{R: 0xCC, G: 0xCC, B: 0xCC, A: 0xFF}
	colorHint   = color.RGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xFF}
)

// keypad is the on-screen legend, row by row.
var keypad = [4][4]string{
	{"7", "8", "9", "/"},
	{"4", "5", "6", "*"},
	{"1", "2", "3", "-"},
	{"C", "0", "=", "+"},
}

const (
	margin      = 8
	exprScale   = 2
	resultScale = 3
)

func (t *Task) initFont() bool {
	t.font = &proggy.TinySZ8pt7b
	t.fontHeight = int16(t.font.GetYAdvance())
	_, outboxWidth := tinyfont.LineWidth(t.font, "0")
	t.fontWidth = int16(outboxWidth)
	return t.fontWidth > 0 && t.fontHeight > 0
}

func (t *Task) render() {
	d := t.engine.Display()
	if t.status != nil {
		t.status.Show(d.Line())
	}

	if t.fb == nil || t.fb.Format() != hal.PixelFormatRGB565 || t.fb.Buffer() == nil {
		return
	}
	w, h := t.fb.Width(), t.fb.Height()
	fh := int(t.fontHeight)

	t.fb.ClearRGB(0x08, 0x0B, 0x10)
	t.drawText(margin, margin/2, "CALCPAD", colorTitle, 1)

	// Expression and result are right-aligned like a pocket calculator.
	y := margin/2 + fh + margin
	expr := d.Expression()
	if expr == "" {
		expr = "0"
	}
	scale := t.fitScale(expr, w-2*margin, exprScale)
	t.drawText(w-margin-t.textWidth(expr)*scale, y, expr, colorExpr, scale)
	y += fh*scale + margin/2

	if d.Evaluated() {
		c := colorResult
		if d.Failed {
			c = colorError
		}
		res := "= " + d.Result
		scale = t.fitScale(res, w-2*margin, resultScale)
		t.drawText(w-margin-t.textWidth(res)*scale, y, res, c, scale)
	}
	y += fh*resultScale + margin

	footerY := h - fh - margin/2
	t.drawKeypad(margin, y, w-2*margin, footerY-margin-y)

	footer := t.message
	footerColor := colorError
	if footer == "" {
		footer = "Enter: =   Esc/Del: clear"
		footerColor = colorHint
	}
	t.drawText(margin, footerY, footer, footerColor, 1)

	_ = t.fb.Present()
}

func (t *Task) drawKeypad(x0, y0, w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	cellW, cellH := w/4, h/4
	border := hal.RGB565(0x2B, 0x33, 0x44)
	lit := hal.RGB565(0x3A, 0x5A, 0x8C)

	for row, keys := range keypad {
		for col, label := range keys {
			x := x0 + col*cellW
			y := y0 + row*cellH
			if label == t.lastKey {
				hal.FillRectRGB565(t.fb, x+1, y+1, cellW-2, cellH-2, lit)
			}
			hal.RectOutlineRGB565(t.fb, x, y, cellW, cellH, border)

			scale := t.fitScale(label, cellW-4, 2)
			tx := x + (cellW-t.textWidth(label)*scale)/2
			ty := y + (cellH-int(t.fontHeight)*scale)/2
			t.drawText(tx, ty, label, colorKey, scale)
		}
	}
}

// fitScale returns the largest scale up to maxScale at which s fits in width.
func (t *Task) fitScale(s string, width, maxScale int) int {
	tw := t.textWidth(s)
	for scale := maxScale; scale > 1; scale-- {
		if tw*scale <= width {
			return scale
		}
	}
	return 1
}

func (t *Task) textWidth(s string) int {
	_, outbox := tinyfont.LineWidth(t.font, s)
	return int(outbox)
}

func (t *Task) drawText(x, y int, s string, c color.RGBA, scale int) {
	var d drivers.Displayer = &fbDisplayer{fb: t.fb}
	if scale > 1 {
		d = &scaledDisplayer{fb: t.fb, x0: x, y0: y, scale: scale}
		x, y = 0, 0
	}
	tinyfont.WriteLine(d, t.font, int16(x), int16(y)+t.fontHeight, s, c)
}

var (
	_ drivers.Displayer = (*fbDisplayer)(nil)
	_ drivers.Displayer = (*scaledDisplayer)(nil)
)

type fbDisplayer struct {
	fb hal.Framebuffer
}

func (d *fbDisplayer) Size() (x, y int16) {
	if d.fb == nil {
		return 0, 0
	}
	return int16(d.fb.Width()), int16(d.fb.Height())
}

func (d *fbDisplayer) SetPixel(x, y int16, c color.RGBA) {
	if d.fb == nil || d.fb.Format() != hal.PixelFormatRGB565 {
		return
	}
	buf := d.fb.Buffer()
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= d.fb.Width() || iy < 0 || iy >= d.fb.Height() {
		return
	}
	off := iy*d.fb.StrideBytes() + ix*2
	if off+1 >= len(buf) {
		return
	}
	pixel := hal.RGB565(c.R, c.G, c.B)
	buf[off] = byte(pixel)
	buf[off+1] = byte(pixel >> 8)
}

func (d *fbDisplayer) Display() error { return nil }

// scaledDisplayer draws each pixel as a scale x scale block anchored at
// (x0, y0).
type scaledDisplayer struct {
	fb     hal.Framebuffer
	x0, y0 int
	scale  int
}

func (d *scaledDisplayer) Size() (x, y int16) {
	if d.fb == nil || d.scale <= 0 {
		return 0, 0
	}
	return int16((d.fb.Width() - d.x0) / d.scale), int16((d.fb.Height() - d.y0) / d.scale)
}

func (d *scaledDisplayer) SetPixel(x, y int16, c color.RGBA) {
	hal.FillRectRGB565(d.fb, d.x0+int(x)*d.scale, d.y0+int(y)*d.scale, d.scale, d.scale, hal.RGB565(c.R, c.G, c.B))
}

func (d *scaledDisplayer) Display() error { return nil }
