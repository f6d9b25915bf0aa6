// Package bitmap turns clipboard DIB data into .bmp files and manages the
// directory they are saved in.
package bitmap

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	fileHeaderSize = 14
	infoHeaderSize = 40
	biBitfields    = 3
)

// ErrShortDIB is returned when the data cannot hold a BITMAPINFOHEADER.
var ErrShortDIB = errors.New("DIB data shorter than BITMAPINFOHEADER")

// colorTableSize returns the bytes between the info header and the pixels.
func colorTableSize(dib []byte) int {
	bitCount := binary.LittleEndian.Uint16(dib[14:])
	compression := binary.LittleEndian.Uint32(dib[16:])
	clrUsed := binary.LittleEndian.Uint32(dib[32:])

	if compression == biBitfields && (bitCount == 16 || bitCount == 32) {
		return 12
	}
	if bitCount <= 8 {
		colors := clrUsed
		if colors == 0 {
			colors = 1 << bitCount
		}
		return int(colors) * 4
	}
	return 0
}

// DIBToBMP prepends a BITMAPFILEHEADER to a CF_DIB payload.
func DIBToBMP(dib []byte) ([]byte, error) {
	if len(dib) < infoHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortDIB, len(dib))
	}

	headerSize := binary.LittleEndian.Uint32(dib[0:])
	offBits := uint32(fileHeaderSize) + headerSize + uint32(colorTableSize(dib))
	fileSize := uint32(fileHeaderSize + len(dib))

	buf := new(bytes.Buffer)
	buf.Grow(int(fileSize))

	buf.WriteString("BM")
	binary.Write(buf, binary.LittleEndian, fileSize)
	binary.Write(buf, binary.LittleEndian, uint16(0)) // Reserved
	binary.Write(buf, binary.LittleEndian, uint16(0)) // Reserved
	binary.Write(buf, binary.LittleEndian, offBits)
	buf.Write(dib)

	return buf.Bytes(), nil
}
