// Package preprocess normalizes decoded images before OCR. The chain is
// deterministic: the same input image always yields the same output, so
// cache keys computed from the original bytes stay valid.
package preprocess

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
)

// Options tunes the enhancement chain. Zero values fall back to the
// defaults from DefaultOptions.
type Options struct {
	// MinDimension is the smallest acceptable edge length. Images whose
	// shorter edge is below this are upscaled to it.
	MinDimension int
	// MaxWidth caps the output width. Wider images are downscaled.
	MaxWidth int
}

// DefaultOptions returns the standard chain tuning: upscale below 300px,
// downscale above 2000px wide.
func DefaultOptions() Options {
	return Options{
		MinDimension: 300,
		MaxWidth:     2000,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MinDimension <= 0 {
		o.MinDimension = d.MinDimension
	}
	if o.MaxWidth <= 0 {
		o.MaxWidth = d.MaxWidth
	}
	return o
}

// Enhance runs the full preparation chain: flatten transparency onto
// white, resize into the OCR-friendly range, light denoise, contrast
// stretch, then sharpen. The input image is never modified.
func Enhance(img image.Image, opts Options) *image.NRGBA {
	opts = opts.withDefaults()

	out := Flatten(img)
	out = resize(out, opts)
	out = imaging.Blur(out, 0.4)
	out = StretchContrast(out)
	out = imaging.Sharpen(out, 0.6)
	return out
}

// Flatten composites the image over an opaque white background. OCR
// engines treat transparent pixels as black, which inverts text on
// transparent PNGs; white matches the scanned-document assumption.
func Flatten(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	flat := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(flat, flat.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), img, bounds.Min, draw.Over)
	return flat
}

// resize brings the image into the target range. Upscaling wins when an
// image is both too small and too wide (not possible with the default
// tuning, but options are caller-controlled).
func resize(img *image.NRGBA, opts Options) *image.NRGBA {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	minDim := w
	if h < minDim {
		minDim = h
	}

	switch {
	case minDim > 0 && minDim < opts.MinDimension:
		scale := float64(opts.MinDimension) / float64(minDim)
		return imaging.Resize(img, int(float64(w)*scale+0.5), 0, imaging.Lanczos)
	case w > opts.MaxWidth:
		return imaging.Resize(img, opts.MaxWidth, 0, imaging.Lanczos)
	default:
		return img
	}
}

// StretchContrast applies a linear histogram stretch on luminance,
// anchored at the 1st and 99th percentiles so isolated hot or dead
// pixels do not pin the range.
func StretchContrast(img *image.NRGBA) *image.NRGBA {
	lo, hi := percentileBounds(img, 0.01, 0.99)
	if hi <= lo {
		return img
	}

	span := float64(hi - lo)
	var lut [256]uint8
	for i := range lut {
		v := (float64(i) - float64(lo)) / span * 255.0
		switch {
		case v < 0:
			v = 0
		case v > 255:
			v = 255
		}
		lut[i] = uint8(v + 0.5)
	}

	out := imaging.Clone(img)
	for i := 0; i < len(out.Pix); i += 4 {
		out.Pix[i+0] = lut[out.Pix[i+0]]
		out.Pix[i+1] = lut[out.Pix[i+1]]
		out.Pix[i+2] = lut[out.Pix[i+2]]
	}
	return out
}

// percentileBounds returns the luminance values at the given low/high
// percentiles of the image's histogram.
func percentileBounds(img *image.NRGBA, low, high float64) (uint8, uint8) {
	var hist [256]int
	total := 0
	for i := 0; i < len(img.Pix); i += 4 {
		y := luma(img.Pix[i], img.Pix[i+1], img.Pix[i+2])
		hist[y]++
		total++
	}
	if total == 0 {
		return 0, 255
	}

	lo := cumulativeAt(hist[:], int(low*float64(total)))
	hi := cumulativeAt(hist[:], int(high*float64(total)))
	return lo, hi
}

func cumulativeAt(hist []int, target int) uint8 {
	sum := 0
	for v, n := range hist {
		sum += n
		if sum > target {
			return uint8(v)
		}
	}
	return 255
}

// luma computes ITU-R BT.601 luminance from 8-bit RGB.
func luma(r, g, b uint8) uint8 {
	return uint8((299*int(r) + 587*int(g) + 114*int(b)) / 1000)
}
