// Package engine adapts the two recognition backends, Google Cloud
// Vision and a local Tesseract install, to one interface. Adapters
// normalize backend-specific shapes into Outcome and never panic;
// transport faults, remote error statuses and timeouts all surface as
// a failed Outcome for the orchestrator to act on.
package engine

import (
	"context"
	"image"
	"unicode"
)

// Wire names for the engines, reported in responses and metrics.
const (
	NameVision    = "cloud_vision"
	NameTesseract = "tesseract"
)

// Outcome is the normalized result of one recognition attempt. Exactly
// one of Text/Confidence (on success) or Err (on failure) is
// meaningful. Empty text with a nil Err is a legitimate success: a
// blank image has no text to find.
type Outcome struct {
	Text       string
	Confidence float64 // ∈ [0,1]
	Err        error
}

// Failed reports whether the attempt should trigger fallback.
func (o Outcome) Failed() bool { return o.Err != nil }

// Engine is one recognition backend. Recognize receives the canonical
// preprocessed image both decoded and PNG-encoded, so each adapter can
// use whichever form its backend wants without re-encoding.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, img image.Image, png []byte) Outcome
}

// denseLen counts non-whitespace runes, the measure used to compare
// competing recognition results.
func denseLen(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
