package quality

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/pictext/pictext/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssess_ScoreInRange(t *testing.T) {
	for _, img := range []image.Image{
		testutil.GenerateTextImage(testutil.DefaultTextImageConfig()),
		testutil.GenerateUniformImage(testutil.SmallSize, color.White),
		testutil.GenerateNoiseImage(testutil.MediumSize, 1),
	} {
		a := Assess(img)
		assert.GreaterOrEqual(t, a.Score, 0.0)
		assert.LessOrEqual(t, a.Score, 100.0)
		assert.NotEmpty(t, a.Label)
	}
}

func TestAssess_UniformImageScoresLow(t *testing.T) {
	img := testutil.GenerateUniformImage(testutil.SmallSize, color.Gray{Y: 128})

	a := Assess(img)

	assert.Zero(t, a.Sharpness)
	assert.Zero(t, a.Contrast)
	assert.Equal(t, "poor", a.Label)
	assert.NotEmpty(t, a.Recommendations)
}

func TestAssess_TextImageScoresWell(t *testing.T) {
	cfg := testutil.DefaultTextImageConfig()
	cfg.Size = testutil.LargeSize
	cfg.Text = "The quick brown fox\njumps over the lazy dog\n0123456789"
	img := testutil.GenerateTextImage(cfg)

	a := Assess(img)

	assert.Greater(t, a.Sharpness, 50.0)
	assert.Greater(t, a.Contrast, 5.0)
	assert.GreaterOrEqual(t, a.Score, 40.0)
}

func TestAssess_BlurLowersSharpness(t *testing.T) {
	cfg := testutil.DefaultTextImageConfig()
	cfg.Text = "sharpness probe text"
	sharp := testutil.GenerateTextImage(cfg)
	blurred := imaging.Blur(sharp, 3.0)

	sharpScore := Assess(sharp)
	blurScore := Assess(blurred)

	assert.Greater(t, sharpScore.Sharpness, blurScore.Sharpness)
}

func TestAssess_ResolutionMonotone(t *testing.T) {
	small := Assess(testutil.GenerateNoiseImage(testutil.SmallSize, 9))
	large := Assess(testutil.GenerateNoiseImage(testutil.LargeSize, 9))

	// Same texture at higher resolution never scores strictly lower.
	assert.GreaterOrEqual(t, large.Resolution, small.Resolution)
	assert.GreaterOrEqual(t, large.Score, small.Score)
}

func TestLabelFor(t *testing.T) {
	assert.Equal(t, "poor", labelFor(39.9))
	assert.Equal(t, "fair", labelFor(40))
	assert.Equal(t, "fair", labelFor(59.9))
	assert.Equal(t, "good", labelFor(60))
	assert.Equal(t, "excellent", labelFor(80))
	assert.Equal(t, "excellent", labelFor(100))
}

func TestAssess_RecommendationsTargetWeakSubscores(t *testing.T) {
	img := testutil.GenerateUniformImage(testutil.ImageSize{Width: 64, Height: 64}, color.White)

	a := Assess(img)

	require.Len(t, a.Recommendations, 3)
	assert.Contains(t, a.Recommendations[0], "resolution")
	assert.Contains(t, a.Recommendations[1], "blurry")
	assert.Contains(t, a.Recommendations[2], "contrast")
}
