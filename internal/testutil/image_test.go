package testutil

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTextImage_Dimensions(t *testing.T) {
	cfg := DefaultTextImageConfig()
	img := GenerateTextImage(cfg)
	assert.Equal(t, cfg.Size.Width, img.Bounds().Dx())
	assert.Equal(t, cfg.Size.Height, img.Bounds().Dy())
}

func TestGenerateNoiseImage_Deterministic(t *testing.T) {
	a := GenerateNoiseImage(SmallSize, 42)
	b := GenerateNoiseImage(SmallSize, 42)
	assert.Equal(t, a.Pix, b.Pix)

	c := GenerateNoiseImage(SmallSize, 7)
	assert.NotEqual(t, a.Pix, c.Pix)
}

func TestTextPNG_Decodes(t *testing.T) {
	data := TextPNG(t, "Hello")
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, MediumSize.Width, img.Bounds().Dx())
}
