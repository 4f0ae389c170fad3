package hal

// RGB565 packs an 8-bit-per-channel color into a PixelFormatRGB565 pixel.
func RGB565(r, g, b uint8) uint16 {
	rr := uint16(r>>3) & 0x1F
	gg := uint16(g>>2) & 0x3F
	bb := uint16(b>>3) & 0x1F
	return (rr << 11) | (gg << 5) | bb
}

// RGB888 expands an RGB565 pixel to 8-bit channels.
func RGB888(p uint16) (r, g, b uint8) {
	rr := (p >> 11) & 0x1F
	gg := (p >> 5) & 0x3F
	bb := p & 0x1F

	r = uint8((rr * 255) / 31)
	g = uint8((gg * 255) / 63)
	b = uint8((bb * 255) / 31)
	return r, g, b
}

// FillRectRGB565 fills a clipped rectangle of an RGB565 framebuffer.
func FillRectRGB565(fb Framebuffer, x0, y0, w, h int, pixel uint16) {
	if fb == nil || fb.Format() != PixelFormatRGB565 || w <= 0 || h <= 0 {
		return
	}
	buf := fb.Buffer()
	stride := fb.StrideBytes()
	x1, y1 := min(x0+w, fb.Width()), min(y0+h, fb.Height())
	x0, y0 = max(x0, 0), max(y0, 0)

	lo := byte(pixel)
	hi := byte(pixel >> 8)
	for y := y0; y < y1; y++ {
		row := y * stride
		for x := x0; x < x1; x++ {
			off := row + x*2
			if off+1 >= len(buf) {
				break
			}
			buf[off] = lo
			buf[off+1] = hi
		}
	}
}

// RectOutlineRGB565 draws a one-pixel rectangle border.
func RectOutlineRGB565(fb Framebuffer, x0, y0, w, h int, pixel uint16) {
	if w <= 0 || h <= 0 {
		return
	}
	FillRectRGB565(fb, x0, y0, w, 1, pixel)
	FillRectRGB565(fb, x0, y0+h-1, w, 1, pixel)
	FillRectRGB565(fb, x0, y0, 1, h, pixel)
	FillRectRGB565(fb, x0+w-1, y0, 1, h, pixel)
}
