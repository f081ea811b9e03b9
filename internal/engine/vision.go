package engine

import (
	"context"
	"fmt"
	"image"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

// Default confidences per detection mode, used when the response
// carries no usable per-annotation confidence. Document mode is the
// more reliable of the two for dense text.
const (
	documentModeConfidence = 0.95
	textModeConfidence     = 0.90
)

// VisionConfig carries the credential settings for the Cloud Vision
// adapter. When both fields are empty, application default credentials
// are used.
type VisionConfig struct {
	CredentialsJSON string
	CredentialsFile string
}

// Vision is the primary adapter, backed by the Cloud Vision API. One
// Recognize call issues both detection modes in a single batch request
// and keeps the better result.
type Vision struct {
	client *vision.ImageAnnotatorClient
}

var _ Engine = (*Vision)(nil)

// NewVision builds the Cloud Vision adapter. Credential resolution
// order: inline JSON, credentials file, application default.
func NewVision(ctx context.Context, cfg VisionConfig) (*Vision, error) {
	var opts []option.ClientOption
	switch {
	case cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return &Vision{client: client}, nil
}

func (v *Vision) Name() string { return NameVision }

// Recognize runs DOCUMENT_TEXT_DETECTION and TEXT_DETECTION over the
// same image in one round trip, then selects whichever mode produced
// the more complete text.
func (v *Vision) Recognize(ctx context.Context, _ image.Image, png []byte) Outcome {
	img := &visionpb.Image{Content: png}
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image:    img,
				Features: []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}},
			},
			{
				Image:    img,
				Features: []*visionpb.Feature{{Type: visionpb.Feature_TEXT_DETECTION}},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return Outcome{Err: fmt.Errorf("vision annotate: %w", err)}
	}
	if len(resp.Responses) < 2 {
		return Outcome{Err: fmt.Errorf("vision annotate: got %d responses, want 2", len(resp.Responses))}
	}

	docResp, textResp := resp.Responses[0], resp.Responses[1]
	if docResp.Error != nil && textResp.Error != nil {
		return Outcome{Err: fmt.Errorf("vision annotate: %s", docResp.Error.Message)}
	}

	doc := documentOutcome(docResp)
	sparse := textOutcome(textResp)
	return pickBetter(doc, sparse)
}

// documentOutcome extracts the dense-text result. Confidence is the
// average of page confidences when the response reports them.
func documentOutcome(resp *visionpb.AnnotateImageResponse) Outcome {
	if resp.Error != nil {
		return Outcome{Err: fmt.Errorf("vision document mode: %s", resp.Error.Message)}
	}
	fta := resp.FullTextAnnotation
	if fta == nil {
		return Outcome{Confidence: documentModeConfidence}
	}

	var sum float64
	var n int
	for _, page := range fta.Pages {
		if page.Confidence > 0 {
			sum += float64(page.Confidence)
			n++
		}
	}
	conf := documentModeConfidence
	if n > 0 {
		conf = sum / float64(n)
	}
	return Outcome{Text: fta.Text, Confidence: conf}
}

// textOutcome extracts the sparse-text result. The first annotation is
// the full detected text; the rest are per-word boxes.
func textOutcome(resp *visionpb.AnnotateImageResponse) Outcome {
	if resp.Error != nil {
		return Outcome{Err: fmt.Errorf("vision text mode: %s", resp.Error.Message)}
	}
	if len(resp.TextAnnotations) == 0 {
		return Outcome{Confidence: textModeConfidence}
	}
	return Outcome{
		Text:       resp.TextAnnotations[0].Description,
		Confidence: textModeConfidence,
	}
}

// pickBetter selects between the two detection modes: longer
// non-whitespace content wins, ties prefer document mode, and a failed
// mode never beats a successful one.
func pickBetter(doc, sparse Outcome) Outcome {
	switch {
	case doc.Failed():
		return sparse
	case sparse.Failed():
		return doc
	case denseLen(sparse.Text) > denseLen(doc.Text):
		return sparse
	default:
		return doc
	}
}

// Close releases the underlying API client.
func (v *Vision) Close() error {
	return v.client.Close()
}
