// Package display pushes packed bitmaps to the plant monitor's OLED. The
// connection is an explicit object owned by the caller, never a package
// global, so tests can swap in a fake and the bridge can share one serial
// port between ingest and display.
package display

import (
	"fmt"

	"plantlink/bitmap"
)

type Connection interface {
	Write(data []byte) error
	Close() error
}

// Frame marker bytes understood by the firmware.
const (
	Soh   = 0xA5
	Draw  = 0x42
	Clear = 0x52
)

// The panel is 128 pixels wide, so a row never exceeds 16 packed bytes.
const maxStride = 16

// The firmware buffers one frame slice at a time; taller bitmaps are sent
// as a sequence of vertical slices.
const maxSliceHeight = 64

// drawHeader announces a bitmap slice: stride in bytes, then the slice
// height as a little-endian uint16. (stride * height) data bytes follow.
func drawHeader(strideBytes byte, heightRows uint16) []byte {
	return []byte{
		Soh, Draw,
		strideBytes,
		byte(heightRows & 0xFF), byte(heightRows >> 8),
	}
}

// clearScreen blanks the panel.
func clearScreen() []byte {
	return []byte{Soh, Clear}
}

// WriteBitmap sends a packed bitmap to the display, splitting it vertically
// when it is taller than the firmware's slice buffer.
func WriteBitmap(c Connection, b *bitmap.PackedBitmap) error {
	if b.Stride() > maxStride {
		return fmt.Errorf("Bitmap too wide for display: %s", b)
	}
	strideU8 := byte(b.Stride())

	for sliceStart := 0; sliceStart < b.Height(); sliceStart += maxSliceHeight {
		sliceEnd := sliceStart + maxSliceHeight
		if sliceEnd >= b.Height() {
			sliceEnd = b.Height()
		}

		slice := b.VerticalSlice(sliceStart, sliceEnd-sliceStart)
		if err := c.Write(drawHeader(strideU8, uint16(slice.Height()))); err != nil {
			return err
		}
		if err := c.Write(slice.Data()); err != nil {
			return err
		}
	}

	return nil
}

// ClearScreen blanks the display.
func ClearScreen(c Connection) error {
	return c.Write(clearScreen())
}
