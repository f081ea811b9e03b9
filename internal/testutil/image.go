package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ImageSize represents common image dimensions.
type ImageSize struct {
	Width  int
	Height int
}

var (
	// Common test image sizes.
	SmallSize  = ImageSize{320, 240}
	MediumSize = ImageSize{640, 480}
	LargeSize  = ImageSize{1024, 768}
)

// TextImageConfig holds configuration for generating synthetic text images.
type TextImageConfig struct {
	Text       string
	Size       ImageSize
	Background color.Color
	Foreground color.Color
	FontFace   font.Face
	Multiline  bool
}

// DefaultTextImageConfig returns a default configuration for test images.
func DefaultTextImageConfig() TextImageConfig {
	return TextImageConfig{
		Text:       "Sample Text",
		Size:       MediumSize,
		Background: color.White,
		Foreground: color.Black,
		FontFace:   basicfont.Face7x13,
		Multiline:  false,
	}
}

// GenerateTextImage creates a synthetic text image with the given configuration.
func GenerateTextImage(config TextImageConfig) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, config.Size.Width, config.Size.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{config.Background}, image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{config.Foreground},
		Face: config.FontFace,
	}

	if config.Multiline {
		words := strings.Fields(config.Text)
		if len(words) == 0 {
			words = []string{"sample"}
		}
		wordsPerLine := 3
		var lines []string
		for i := 0; i < len(words); i += wordsPerLine {
			end := min(i+wordsPerLine, len(words))
			lines = append(lines, strings.Join(words[i:end], " "))
		}

		lineHeight := config.FontFace.Metrics().Height.Ceil()
		startY := (config.Size.Height - len(lines)*lineHeight) / 2
		for i, line := range lines {
			y := startY + (i+1)*lineHeight
			textWidth := font.MeasureString(config.FontFace, line).Ceil()
			x := (config.Size.Width - textWidth) / 2
			drawer.Dot = fixed.P(x, y)
			drawer.DrawString(line)
		}
		return img
	}

	textWidth := font.MeasureString(config.FontFace, config.Text).Ceil()
	textHeight := config.FontFace.Metrics().Height.Ceil()
	drawer.Dot = fixed.P((config.Size.Width-textWidth)/2, (config.Size.Height+textHeight)/2)
	drawer.DrawString(config.Text)
	return img
}

// GenerateUniformImage creates a single-color image of the given size.
func GenerateUniformImage(size ImageSize, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	return img
}

// GenerateNoiseImage creates an image of random pixels from a fixed seed,
// so tests stay deterministic.
func GenerateNoiseImage(size ImageSize, seed int64) *image.RGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	for y := range size.Height {
		for x := range size.Width {
			v := uint8(rng.Intn(256))
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}

// GenerateAlphaImage creates an RGBA image with a transparent background and
// an opaque centered square, for exercising alpha flattening.
func GenerateAlphaImage(size ImageSize) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size.Width, size.Height))
	inner := image.Rect(size.Width/4, size.Height/4, 3*size.Width/4, 3*size.Height/4)
	draw.Draw(img, inner, &image.Uniform{color.NRGBA{0, 0, 0, 255}}, image.Point{}, draw.Src)
	return img
}

// PNGBytes encodes an image as PNG, failing the test on error.
func PNGBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// JPEGBytes encodes an image as JPEG, failing the test on error.
func JPEGBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

// TextPNG is a convenience helper producing an encoded PNG with the given text.
func TextPNG(t *testing.T, text string) []byte {
	t.Helper()
	cfg := DefaultTextImageConfig()
	cfg.Text = text
	return PNGBytes(t, GenerateTextImage(cfg))
}
