package engine

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/otiai10/gosseract/v2"
	"github.com/pictext/pictext/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPSMFor(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		want gosseract.PageSegMode
	}{
		{"wide banner", 1200, 100, gosseract.PSM_SINGLE_LINE},
		{"tall receipt", 100, 1200, gosseract.PSM_SINGLE_COLUMN},
		{"document page", 800, 1000, gosseract.PSM_SINGLE_BLOCK},
		{"square", 500, 500, gosseract.PSM_SINGLE_BLOCK},
		{"just under wide cutoff", 300, 101, gosseract.PSM_SINGLE_BLOCK},
		{"degenerate height", 100, 0, gosseract.PSM_SINGLE_BLOCK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, psmFor(image.Rect(0, 0, tt.w, tt.h)))
		})
	}
}

func TestBinarize_SplitsAtMeanLuminance(t *testing.T) {
	// Left half dark, right half light.
	img := image.NewGray(image.Rect(0, 0, 100, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 100; x++ {
			v := uint8(60)
			if x >= 50 {
				v = 200
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}

	bin := binarize(img)

	assert.Equal(t, uint8(0), bin.GrayAt(10, 5).Y)
	assert.Equal(t, uint8(255), bin.GrayAt(90, 5).Y)
}

func TestBinarize_TextSurvives(t *testing.T) {
	cfg := testutil.DefaultTextImageConfig()
	cfg.Text = "binarize me"
	img := testutil.GenerateTextImage(cfg)

	bin := binarize(img)

	black, white := 0, 0
	for _, v := range bin.Pix {
		if v == 0 {
			black++
		} else {
			white++
		}
	}
	// Only the two poles remain, and the text pixels are the minority.
	assert.Equal(t, len(bin.Pix), black+white)
	assert.Greater(t, black, 0)
	assert.Greater(t, white, black)
}

func TestEncodeBinarized_ProducesDecodablePNG(t *testing.T) {
	data, err := encodeBinarized(testutil.GenerateNoiseImage(testutil.SmallSize, 4))
	require.NoError(t, err)

	decoded, format, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, testutil.SmallSize.Width, decoded.Bounds().Dx())
}

func TestNewTesseract_DefaultLanguage(t *testing.T) {
	assert.Equal(t, "eng", NewTesseract("").language)
	assert.Equal(t, "deu+eng", NewTesseract("deu+eng").language)
	assert.Equal(t, NameTesseract, NewTesseract("").Name())
}
