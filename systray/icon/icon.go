// Package icon draws the tray and favicon image.
package icon

import (
	"bytes"
	"encoding/binary"
)

const size = 32

type rgba struct{ r, g, b, a uint8 }

var (
	transparent = rgba{}
	board       = rgba{0x2D, 0x7F, 0xF9, 0xFF}
	paper       = rgba{0xFF, 0xFF, 0xFF, 0xFF}
	clip        = rgba{0x1B, 0x4F, 0xA0, 0xFF}
	ink         = rgba{0x9A, 0xB8, 0xE8, 0xFF}
	readyOn     = rgba{0x2E, 0xC4, 0x5A, 0xFF}
)

// pixels draws the icon top-down. ready adds a green badge.
func pixels(ready bool) [size][size]rgba {
	var px [size][size]rgba
	fill := func(x0, y0, x1, y1 int, c rgba) {
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				px[y][x] = c
			}
		}
	}

	// Board with clipped corners.
	fill(5, 4, 27, 31, board)
	for _, p := range [][2]int{{5, 4}, {26, 4}, {5, 30}, {26, 30}} {
		px[p[1]][p[0]] = transparent
	}
	fill(8, 8, 24, 28, paper)
	fill(11, 1, 21, 7, clip)
	fill(14, 2, 18, 4, board)

	// Text lines standing in for a path.
	for _, y := range []int{12, 16, 20, 24} {
		fill(10, y, 22, y+2, ink)
	}

	if ready {
		for y := 20; y < 32; y++ {
			for x := 20; x < 32; x++ {
				dx, dy := x-26, y-26
				if dx*dx+dy*dy <= 30 {
					px[y][x] = readyOn
				}
			}
		}
	}
	return px
}

// ICO returns a 32x32, 32bpp .ico file.
func ICO(ready bool) []byte {
	px := pixels(ready)

	const (
		dirSize   = 6
		entrySize = 16
		infoSize  = 40
		xorSize   = size * size * 4
		andStride = 4 // 32 bits padded to a DWORD
		andSize   = andStride * size
	)
	imageSize := infoSize + xorSize + andSize

	buf := new(bytes.Buffer)
	buf.Grow(dirSize + entrySize + imageSize)
	w := func(v any) { binary.Write(buf, binary.LittleEndian, v) }

	// ICONDIR
	w(uint16(0))
	w(uint16(1)) // icon
	w(uint16(1)) // one image

	// ICONDIRENTRY
	buf.WriteByte(size)
	buf.WriteByte(size)
	buf.WriteByte(0) // no palette
	buf.WriteByte(0)
	w(uint16(1))  // planes
	w(uint16(32)) // bpp
	w(uint32(imageSize))
	w(uint32(dirSize + entrySize))

	// BITMAPINFOHEADER; height covers the XOR and AND masks.
	w(uint32(infoSize))
	w(int32(size))
	w(int32(size * 2))
	w(uint16(1))
	w(uint16(32))
	w(uint32(0)) // BI_RGB
	w(uint32(xorSize + andSize))
	w(int32(0))
	w(int32(0))
	w(uint32(0))
	w(uint32(0))

	// Pixels are stored bottom-up as BGRA.
	for y := size - 1; y >= 0; y-- {
		for x := 0; x < size; x++ {
			p := px[y][x]
			buf.Write([]byte{p.b, p.g, p.r, p.a})
		}
	}

	// AND mask: transparency comes from alpha, so every bit is clear.
	buf.Write(make([]byte, andSize))

	return buf.Bytes()
}
