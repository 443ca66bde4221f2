package plot

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"io"
	"math"
)

const (
	inchesPerMeter = 1 / 0.0254

	// 8 byte signature followed by the 25 byte IHDR chunk
	ihdrEnd = 33
)

// EncodePNG writes img as a PNG carrying a pHYs chunk so viewers and
// printers pick up the physical resolution.
func EncodePNG(w io.Writer, img image.Image, dpi float64) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}

	data := buf.Bytes()
	if len(data) < ihdrEnd || string(data[12:16]) != "IHDR" {
		return fmt.Errorf("encoding png: unexpected header layout")
	}

	if _, err := w.Write(data[:ihdrEnd]); err != nil {
		return fmt.Errorf("writing png: %w", err)
	}
	if _, err := w.Write(physChunk(dpi)); err != nil {
		return fmt.Errorf("writing png: %w", err)
	}
	if _, err := w.Write(data[ihdrEnd:]); err != nil {
		return fmt.Errorf("writing png: %w", err)
	}

	return nil
}

// physChunk builds a pHYs chunk with equal x and y pixels per meter.
func physChunk(dpi float64) []byte {
	ppm := uint32(math.Round(dpi * inchesPerMeter))

	chunk := make([]byte, 4+4+9+4)
	binary.BigEndian.PutUint32(chunk[0:4], 9)
	copy(chunk[4:8], "pHYs")
	binary.BigEndian.PutUint32(chunk[8:12], ppm)
	binary.BigEndian.PutUint32(chunk[12:16], ppm)
	chunk[16] = 1 // unit: meter
	binary.BigEndian.PutUint32(chunk[17:21], crc32.ChecksumIEEE(chunk[4:17]))

	return chunk
}
