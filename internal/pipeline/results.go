package pipeline

import (
	"github.com/pictext/pictext/internal/metadata"
	"github.com/pictext/pictext/internal/quality"
	"github.com/pictext/pictext/internal/textproc"
)

// Result is the outcome of one extraction, in the documented response
// shape. A Result is immutable once built; cached copies are cloned
// with Cached set and the processing time reset.
type Result struct {
	Success          bool                `json:"success"`
	Text             string              `json:"text"`
	TextFormatted    string              `json:"text_formatted"`
	Confidence       float64             `json:"confidence"`
	ProcessingTimeMs float64             `json:"processing_time_ms"`
	Engine           string              `json:"ocr_engine"`
	Cached           bool                `json:"cached"`
	TextStats        textproc.Stats      `json:"text_stats"`
	Entities         *textproc.Entities  `json:"entities,omitempty"`
	ImageMetadata    *metadata.Info      `json:"image_metadata,omitempty"`
	Quality          *quality.Assessment `json:"quality_assessment,omitempty"`
}

// Options are the per-request processing flags. They never affect the
// cache key; a cached maximal result is trimmed down per request.
type Options struct {
	IncludeMetadata bool
	IncludeEntities bool
	UseCache        bool
}

// DefaultOptions enables everything.
func DefaultOptions() Options {
	return Options{
		IncludeMetadata: true,
		IncludeEntities: true,
		UseCache:        true,
	}
}

// trim drops the optional sections the request did not ask for.
func (r *Result) trim(opts Options) {
	if !opts.IncludeEntities {
		r.Entities = nil
	}
	if !opts.IncludeMetadata {
		r.ImageMetadata = nil
		r.Quality = nil
	}
}

// ItemError is the error shape carried by a failed batch item.
type ItemError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BatchInput is one file in a batch request.
type BatchInput struct {
	Filename string
	Content  []byte
}

// BatchItem pairs one input with its result or error. Exactly one of
// Result and Error is set.
type BatchItem struct {
	Filename string     `json:"filename"`
	Success  bool       `json:"success"`
	Result   *Result    `json:"result,omitempty"`
	Error    *ItemError `json:"error,omitempty"`
}

// BatchResult aggregates a whole batch. Results keeps submission
// order regardless of completion order.
type BatchResult struct {
	Success               bool        `json:"success"`
	TotalFiles            int         `json:"total_files"`
	Successful            int         `json:"successful"`
	Failed                int         `json:"failed"`
	TotalProcessingTimeMs float64     `json:"total_processing_time_ms"`
	Results               []BatchItem `json:"results"`
}
