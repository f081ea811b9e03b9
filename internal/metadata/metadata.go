// Package metadata derives descriptive properties from a decoded image:
// dimensions, format, transparency, and basic color characteristics.
package metadata

import (
	"image"
	"math"
)

// Info describes an uploaded image. All fields are derived from the
// decoded pixels and the detected format, never from client headers.
type Info struct {
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	Format          string  `json:"format"`
	AspectRatio     float64 `json:"aspect_ratio"`
	Megapixels      float64 `json:"megapixels"`
	HasTransparency bool    `json:"has_transparency"`
	Color           Color   `json:"color_info"`
}

// Color summarizes the image's tonal content on 8-bit scales.
type Color struct {
	AvgRed      float64 `json:"avg_red"`
	AvgGreen    float64 `json:"avg_green"`
	AvgBlue     float64 `json:"avg_blue"`
	Brightness  float64 `json:"brightness"`
	IsGrayscale bool    `json:"is_grayscale"`
}

// sampleTarget caps color analysis work on large images by stepping the
// pixel grid so roughly 128x128 samples are taken.
const sampleTarget = 128

// Extract computes metadata from a decoded image and its detected
// format name.
func Extract(img image.Image, format string) Info {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	info := Info{
		Width:      w,
		Height:     h,
		Format:     format,
		Megapixels: round2(float64(w) * float64(h) / 1e6),
	}
	if h > 0 {
		info.AspectRatio = round2(float64(w) / float64(h))
	}
	if w == 0 || h == 0 {
		return info
	}

	stepX := max(1, w/sampleTarget)
	stepY := max(1, h/sampleTarget)

	var sumR, sumG, sumB float64
	samples := 0
	gray := true
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			r, g, b, a := img.At(x, y).RGBA()
			if a < 0xffff {
				info.HasTransparency = true
			}
			r8 := float64(r >> 8)
			g8 := float64(g >> 8)
			b8 := float64(b >> 8)
			sumR += r8
			sumG += g8
			sumB += b8
			if gray && (math.Abs(r8-g8) > 8 || math.Abs(g8-b8) > 8) {
				gray = false
			}
			samples++
		}
	}

	info.Color = Color{
		AvgRed:      round2(sumR / float64(samples)),
		AvgGreen:    round2(sumG / float64(samples)),
		AvgBlue:     round2(sumB / float64(samples)),
		IsGrayscale: gray,
	}
	info.Color.Brightness = round2(
		0.299*info.Color.AvgRed + 0.587*info.Color.AvgGreen + 0.114*info.Color.AvgBlue)
	return info
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
