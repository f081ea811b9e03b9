package engine

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

// Aspect-ratio cutoffs for page segmentation mode selection.
const (
	wideAspect = 3.0
	tallAspect = 1.0 / 3.0
)

// Tesseract is the secondary adapter, backed by a local Tesseract
// install via gosseract. It needs no network and serves as the
// fallback when the primary engine is unavailable.
type Tesseract struct {
	language string
}

var _ Engine = (*Tesseract)(nil)

// NewTesseract builds the local adapter. language is a Tesseract
// language code ("eng", "deu", "eng+fra", ...); empty means "eng".
func NewTesseract(language string) *Tesseract {
	if language == "" {
		language = "eng"
	}
	return &Tesseract{language: language}
}

func (t *Tesseract) Name() string { return NameTesseract }

// Recognize binarizes the image, picks a page segmentation mode from
// its shape, and runs recognition. A fresh gosseract client per call
// keeps the adapter safe for concurrent use.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image, _ []byte) Outcome {
	prepared, err := encodeBinarized(img)
	if err != nil {
		return Outcome{Err: fmt.Errorf("tesseract prepare: %w", err)}
	}
	if err := ctx.Err(); err != nil {
		return Outcome{Err: fmt.Errorf("tesseract: %w", err)}
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.language); err != nil {
		return Outcome{Err: fmt.Errorf("tesseract language %q: %w", t.language, err)}
	}
	if err := client.SetPageSegMode(psmFor(img.Bounds())); err != nil {
		return Outcome{Err: fmt.Errorf("tesseract psm: %w", err)}
	}
	if err := client.SetImageFromBytes(prepared); err != nil {
		return Outcome{Err: fmt.Errorf("tesseract set image: %w", err)}
	}

	text, err := client.Text()
	if err != nil {
		return Outcome{Err: fmt.Errorf("tesseract recognize: %w", err)}
	}
	if err := ctx.Err(); err != nil {
		return Outcome{Err: fmt.Errorf("tesseract: %w", err)}
	}

	return Outcome{Text: text, Confidence: wordConfidence(client)}
}

// wordConfidence averages per-word confidences, scaled from
// Tesseract's 0-100 range to 0-1. No words means no text, which is a
// zero-confidence success.
func wordConfidence(client *gosseract.Client) float64 {
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, box := range boxes {
		sum += box.Confidence
	}
	return sum / float64(len(boxes)) / 100.0
}

// psmFor selects a page segmentation mode from the image's shape: very
// wide images read as a single text line, very tall ones as a single
// column, everything else as one uniform block.
func psmFor(bounds image.Rectangle) gosseract.PageSegMode {
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())
	if h == 0 {
		return gosseract.PSM_SINGLE_BLOCK
	}
	aspect := w / h
	switch {
	case aspect > wideAspect:
		return gosseract.PSM_SINGLE_LINE
	case aspect < tallAspect:
		return gosseract.PSM_SINGLE_COLUMN
	default:
		return gosseract.PSM_SINGLE_BLOCK
	}
}

// encodeBinarized converts the image to black-and-white PNG bytes.
// Tesseract performs markedly better on clean binary input than on
// grayscale or color.
func encodeBinarized(img image.Image) ([]byte, error) {
	bin := binarize(img)
	var buf bytes.Buffer
	if err := png.Encode(&buf, bin); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// binarize thresholds the image at its mean luminance. A mean-based
// threshold adapts to overall exposure without a full Otsu pass.
func binarize(img image.Image) *image.Gray {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	gray := image.NewGray(image.Rect(0, 0, w, h))

	var sum uint64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gray.Set(x, y, img.At(bounds.Min.X+x, bounds.Min.Y+y))
			sum += uint64(gray.GrayAt(x, y).Y)
		}
	}
	if w == 0 || h == 0 {
		return gray
	}
	threshold := uint8(sum / uint64(w*h))

	for i, v := range gray.Pix {
		if v >= threshold {
			gray.Pix[i] = 255
		} else {
			gray.Pix[i] = 0
		}
	}
	return gray
}
