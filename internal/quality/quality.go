// Package quality scores how well an image is likely to OCR. The
// assessment is a pure function of the pixels: a weighted blend of
// resolution, sharpness and contrast sub-scores, plus human-readable
// recommendations for whichever sub-score falls short.
package quality

import (
	"image"
	"math"
)

// Assessment is the quality report for one image.
type Assessment struct {
	Score           float64  `json:"score"`
	Label           string   `json:"quality_label"`
	Resolution      float64  `json:"resolution_score"`
	Sharpness       float64  `json:"sharpness_score"`
	Contrast        float64  `json:"contrast_score"`
	Recommendations []string `json:"recommendations"`
}

// Sub-score weights. Sharpness dominates because blur hurts OCR more
// than low resolution does.
const (
	weightResolution = 0.30
	weightSharpness  = 0.45
	weightContrast   = 0.25
)

// Label thresholds on the blended score.
const (
	labelFair      = 40.0
	labelGood      = 60.0
	labelExcellent = 80.0
)

// Recommendation thresholds on the individual sub-scores.
const (
	lowResolution = 50.0
	lowSharpness  = 50.0
	lowContrast   = 50.0
)

// Assess scores the image on a 0-100 scale.
func Assess(img image.Image) Assessment {
	gray := toGray(img)

	a := Assessment{
		Resolution: resolutionScore(img.Bounds()),
		Sharpness:  sharpnessScore(gray),
		Contrast:   contrastScore(gray),
	}
	a.Score = round1(weightResolution*a.Resolution +
		weightSharpness*a.Sharpness +
		weightContrast*a.Contrast)
	a.Label = labelFor(a.Score)
	a.Recommendations = recommendations(a)
	return a
}

func labelFor(score float64) string {
	switch {
	case score >= labelExcellent:
		return "excellent"
	case score >= labelGood:
		return "good"
	case score >= labelFair:
		return "fair"
	default:
		return "poor"
	}
}

func recommendations(a Assessment) []string {
	recs := make([]string, 0, 3)
	if a.Resolution < lowResolution {
		recs = append(recs, "Image resolution is low; capture or scan at a higher resolution for better text recognition")
	}
	if a.Sharpness < lowSharpness {
		recs = append(recs, "Image appears blurry; hold the camera steady or rescan in focus")
	}
	if a.Contrast < lowContrast {
		recs = append(recs, "Text contrast is low; improve lighting or increase contrast between text and background")
	}
	return recs
}

// resolutionScore maps megapixels onto 0-100. Around 2MP (a typical
// document scan) earns full marks; the curve is linear below that.
func resolutionScore(bounds image.Rectangle) float64 {
	mp := float64(bounds.Dx()) * float64(bounds.Dy()) / 1e6
	score := mp / 2.0 * 100.0
	return clamp100(score)
}

// sharpnessScore estimates focus via the variance of a Laplacian
// convolution. Variance below ~10 reads as badly blurred, above ~500 as
// fully sharp; the mapping is logarithmic between.
func sharpnessScore(g *image.Gray) float64 {
	variance := laplacianVariance(g)
	if variance <= 0 {
		return 0
	}
	score := math.Log10(variance/10.0) / math.Log10(50.0) * 100.0
	return clamp100(score)
}

// contrastScore maps the standard deviation of luminance onto 0-100.
// A stddev of 64 (a quarter of the 8-bit range) or more is full marks.
func contrastScore(g *image.Gray) float64 {
	var sum, sumSq float64
	n := len(g.Pix)
	if n == 0 {
		return 0
	}
	for _, v := range g.Pix {
		f := float64(v)
		sum += f
		sumSq += f * f
	}
	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return clamp100(math.Sqrt(variance) / 64.0 * 100.0)
}

// laplacianVariance convolves with the 4-neighbor Laplacian kernel and
// returns the response variance.
func laplacianVariance(g *image.Gray) float64 {
	w := g.Bounds().Dx()
	h := g.Bounds().Dy()
	if w < 3 || h < 3 {
		return 0
	}

	var sum, sumSq float64
	n := 0
	for y := 1; y < h-1; y++ {
		row := y * g.Stride
		for x := 1; x < w-1; x++ {
			i := row + x
			lap := 4*int(g.Pix[i]) -
				int(g.Pix[i-1]) - int(g.Pix[i+1]) -
				int(g.Pix[i-g.Stride]) - int(g.Pix[i+g.Stride])
			f := float64(lap)
			sum += f
			sumSq += f * f
			n++
		}
	}
	mean := sum / float64(n)
	return sumSq/float64(n) - mean*mean
}

func toGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			g.Set(x-bounds.Min.X, y-bounds.Min.Y, img.At(x, y))
		}
	}
	return g
}

func clamp100(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return round1(v)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
