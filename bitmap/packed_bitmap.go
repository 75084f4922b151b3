// This file implements methods to pack pixel grid data into the bit
// structure accepted by the device display.

package bitmap

import "fmt"

// a bitmap packed in memory, one bit per pixel, MSB first within each
// byte. Each row starts on a fresh byte; when the width is not a
// multiple of 8 the unused low-order bits of a row's final byte are
// always zero.
type PackedBitmap struct {
	data                  []byte
	width, height, stride int
}

const bitsPerWord = 8

func (b *PackedBitmap) Width() int {
	return b.width
}

func (b *PackedBitmap) Height() int {
	return b.height
}

// Stride is the number of bytes per row, ceil(width/8).
func (b *PackedBitmap) Stride() int {
	return b.stride
}

func (b *PackedBitmap) Data() []byte {
	return b.data
}

// Bit gets a single bit from the bitmap at the (x, y) coordinate, returns either 0 or 1
func (b *PackedBitmap) Bit(x int, y int) byte {
	index := (y * b.stride) + (x / bitsPerWord)
	return (b.data[index] >> (bitsPerWord - 1 - x%bitsPerWord)) & 1
}

func (b *PackedBitmap) String() string {
	return fmt.Sprintf("PackedBitmap(%d,%d)", b.width, b.height)
}

// VerticalSlice takes a horizontal band of the packed bitmap, with the
// specified height and start row. Rows are byte-aligned so the band is a
// plain subslice of the data.
func (b *PackedBitmap) VerticalSlice(start int, height int) *PackedBitmap {
	return &PackedBitmap{
		data:   b.data[b.stride*start : b.stride*(start+height)],
		width:  b.width,
		height: height,
		stride: b.stride,
	}
}

// Grid decodes the bitmap back into a pixel grid, mapping set bits to the
// fore sample and clear bits to the back sample. Packing the result with a
// predicate matching that mapping reproduces the identical byte sequence.
func (b *PackedBitmap) Grid(fore uint8, back uint8) *PixelGrid {
	samples := make([]uint8, b.width*b.height)
	for y := range b.height {
		for x := range b.width {
			if b.Bit(x, y) == 1 {
				samples[y*b.width+x] = fore
			} else {
				samples[y*b.width+x] = back
			}
		}
	}
	return &PixelGrid{samples: samples, width: b.width, height: b.height}
}

// Pack maps the grid into the packed device bitmap structure. Pixels are
// accumulated most-significant-bit first in left-to-right order, flushed
// every 8 pixels and at the end of each row. A final partial byte is
// left-aligned: the padding stays in the low-order bits and is zero.
// Passing a nil predicate selects Black.
func Pack(g *PixelGrid, foreground Predicate) *PackedBitmap {
	if foreground == nil {
		foreground = Black
	}
	width, height, stride := g.width, g.height, (g.width+bitsPerWord-1)/bitsPerWord
	data := make([]byte, stride*height)

	for y := range height {
		var p byte = 0
		for x := range width {
			p = p << 1
			if foreground(g.samples[y*g.width+x]) {
				p |= 1
			}

			if x%bitsPerWord == bitsPerWord-1 {
				data[y*stride+x/bitsPerWord] = p
				p = 0
			}
		}
		if rem := width % bitsPerWord; rem != 0 {
			data[y*stride+stride-1] = p << (bitsPerWord - rem)
		}
	}

	return &PackedBitmap{data, width, height, stride}
}
