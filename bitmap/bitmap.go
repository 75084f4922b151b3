// Package bitmap converts thresholded pixel grids into the packed 1-bit
// row-major format the device OLED consumes, and can render that format
// as a C header for static inclusion in firmware.
package bitmap

import "fmt"

// Predicate classifies a luminance sample as a set ("drawn") pixel.
type Predicate func(sample uint8) bool

// Black is the default predicate: a sample of exactly 0 is foreground.
// This mirrors a prior binary threshold step, not a greyscale mapping;
// threshold the image before building a PixelGrid.
func Black(sample uint8) bool {
	return sample == 0
}

// PixelGrid is a 2D grid of luminance samples in [0,255], row-major,
// top-to-bottom and left-to-right within each row. It is a snapshot:
// the constructor copies the sample data.
type PixelGrid struct {
	samples       []uint8
	width, height int
}

func NewPixelGrid(width int, height int, samples []uint8) (*PixelGrid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("Grid dimensions must be positive, got %vx%v", width, height)
	}
	if len(samples) != width*height {
		return nil, fmt.Errorf("Grid samples not consistent with provided width and height (got %v, expecting %v*%v=%v)",
			len(samples),
			width,
			height,
			width*height,
		)
	}

	s := make([]uint8, len(samples))
	copy(s, samples)
	return &PixelGrid{samples: s, width: width, height: height}, nil
}

func (g *PixelGrid) Width() int {
	return g.width
}

func (g *PixelGrid) Height() int {
	return g.height
}

// Sample returns the luminance sample at the (x, y) coordinate.
func (g *PixelGrid) Sample(x int, y int) uint8 {
	return g.samples[y*g.width+x]
}

func (g *PixelGrid) String() string {
	return fmt.Sprintf("PixelGrid(%d,%d)", g.width, g.height)
}
