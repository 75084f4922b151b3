// Package render adapts decoded images into the thresholded pixel grids the
// bitmap encoder consumes. Foreground (drawn) pixels come out as sample 0,
// matching bitmap.Black.
package render

import (
	"image"
	"image/color"
	"math"

	"github.com/makeworld-the-better-one/dither/v2"
	"golang.org/x/image/draw"

	"plantlink/bitmap"
)

// DefaultThreshold splits the 8-bit luminance range down the middle.
const DefaultThreshold = 128

type Options struct {
	// TargetWidth scales the image to this width, preserving aspect ratio.
	// Zero keeps the source size.
	TargetWidth int
	// Gamma applies a gamma correction to the greyscale image before
	// binarizing. Zero means no correction. The OLED wants around 0.5 or
	// the image reads too dark.
	Gamma float64
	// Threshold: luminance at or below this is foreground. Zero selects
	// DefaultThreshold. Ignored when Dither is set.
	Threshold uint8
	// Dither selects serpentine Floyd-Steinberg dithering instead of a
	// fixed threshold.
	Dither bool
}

// ToGrid scales, grey-converts and binarizes an image into a PixelGrid.
func ToGrid(i image.Image, o Options) (*bitmap.PixelGrid, error) {
	scaled := scale(i, o.TargetWidth)
	grey := toGray(scaled, o.Gamma)

	if o.Dither {
		return ditherToGrid(grey)
	}
	return thresholdToGrid(grey, o.Threshold)
}

func scale(i image.Image, targetWidth int) image.Image {
	srcWidth := i.Bounds().Dx()
	if targetWidth <= 0 || targetWidth == srcWidth {
		return i
	}

	scaledBounds := image.Rect(0, 0, targetWidth, i.Bounds().Dy()*targetWidth/srcWidth)
	scaledImage := image.NewRGBA(scaledBounds)
	draw.CatmullRom.Scale(scaledImage, scaledBounds, i, i.Bounds(), draw.Over, nil)
	return scaledImage
}

func toGray(i image.Image, gamma float64) *image.Gray {
	bounds := i.Bounds()
	grey := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			g := color.GrayModel.Convert(i.At(x, y)).(color.Gray)
			if gamma > 0 {
				v := math.Pow(float64(g.Y)/255, gamma)
				g.Y = uint8(v * 255)
			}
			grey.SetGray(x-bounds.Min.X, y-bounds.Min.Y, g)
		}
	}
	return grey
}

func thresholdToGrid(grey *image.Gray, threshold uint8) (*bitmap.PixelGrid, error) {
	if threshold == 0 {
		threshold = DefaultThreshold
	}

	width, height := grey.Bounds().Dx(), grey.Bounds().Dy()
	samples := make([]uint8, width*height)
	for y := range height {
		for x := range width {
			if grey.GrayAt(x, y).Y > threshold {
				samples[y*width+x] = 255
			}
		}
	}
	return bitmap.NewPixelGrid(width, height, samples)
}

func ditherToGrid(grey *image.Gray) (*bitmap.PixelGrid, error) {
	palette := []color.Color{color.Black, color.White}
	ditherer := dither.NewDitherer(palette)
	ditherer.Matrix = dither.FloydSteinberg
	ditherer.Serpentine = true
	dithered := ditherer.DitherPaletted(grey)

	// Palette order is preserved by DitherPaletted, so index 0 is black.
	width, height := dithered.Bounds().Dx(), dithered.Bounds().Dy()
	samples := make([]uint8, width*height)
	for y := range height {
		for x := range width {
			if dithered.ColorIndexAt(x, y) != 0 {
				samples[y*width+x] = 255
			}
		}
	}
	return bitmap.NewPixelGrid(width, height, samples)
}
