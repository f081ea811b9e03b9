package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"log/slog"
	"time"

	"github.com/pictext/pictext/internal/apierr"
	"github.com/pictext/pictext/internal/engine"
	"github.com/pictext/pictext/internal/metadata"
	"github.com/pictext/pictext/internal/preprocess"
	"github.com/pictext/pictext/internal/quality"
	"github.com/pictext/pictext/internal/textproc"
	"github.com/pictext/pictext/internal/validate"
)

var errNoEngines = errors.New("no recognition engines configured")

// ExtractText runs the full flow for one upload: validate, fingerprint,
// cache check, preprocess, recognize with fallback, postprocess, cache
// write. Validation failures and total engine failure come back as
// *apierr.Error; the returned Result is already trimmed per opts.
func (p *Pipeline) ExtractText(ctx context.Context, content []byte, filename string, opts Options) (*Result, error) {
	const op = "pipeline.ExtractText"
	start := time.Now()

	upload, err := validate.File(content, filename, p.limits)
	if err != nil {
		return nil, err
	}
	fingerprint := validate.Fingerprint(content)

	if opts.UseCache {
		if cached, ok := p.cacheLookup(ctx, fingerprint); ok {
			cached.trim(opts)
			slog.Debug("cache hit", "fingerprint", fingerprint, "filename", upload.Filename)
			return cached, nil
		}
	}

	canonical := preprocess.Enhance(upload.Image, p.prep)
	var buf bytes.Buffer
	if err := png.Encode(&buf, canonical); err != nil {
		return nil, apierr.Wrap(op, apierr.CodeInternalError, "failed to encode prepared image", err)
	}

	outcome, engineName := p.recognize(ctx, canonical, buf.Bytes())
	if outcome.Failed() {
		return nil, apierr.Wrap(op, apierr.CodeOCRFailed,
			"Text extraction failed on all available engines", outcome.Err)
	}

	result := p.postprocess(upload, outcome, engineName)
	result.ProcessingTimeMs = float64(time.Since(start).Microseconds()) / 1000.0

	if opts.UseCache {
		p.cacheWrite(ctx, fingerprint, result)
	}

	result.trim(opts)
	return result, nil
}

// recognize tries the primary engine, then falls back to the
// secondary. Each engine runs at most once, under its own timeout.
func (p *Pipeline) recognize(ctx context.Context, canonical image.Image, encoded []byte) (engine.Outcome, string) {
	last := engine.Outcome{Err: errNoEngines}
	lastName := ""

	if p.primary != nil {
		last = p.attempt(ctx, p.primary, p.primaryTimeout, canonical, encoded)
		lastName = p.primary.Name()
		if !last.Failed() {
			return last, lastName
		}
		slog.Warn("primary engine failed, falling back",
			"engine", p.primary.Name(), "error", last.Err)
	}

	if p.secondary != nil {
		last = p.attempt(ctx, p.secondary, p.secondaryTimeout, canonical, encoded)
		lastName = p.secondary.Name()
		if !last.Failed() {
			return last, lastName
		}
		slog.Error("secondary engine failed", "engine", p.secondary.Name(), "error", last.Err)
	}

	return last, lastName
}

func (p *Pipeline) attempt(ctx context.Context, eng engine.Engine, timeout time.Duration, canonical image.Image, encoded []byte) engine.Outcome {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return eng.Recognize(ctx, canonical, encoded)
}

// postprocess builds the maximal-detail result: text cleanup, stats,
// entities, metadata and quality are always computed here so the
// cached copy can serve any combination of request options.
func (p *Pipeline) postprocess(upload *validate.Upload, outcome engine.Outcome, engineName string) *Result {
	text := textproc.Cleanup(outcome.Text)
	entities := textproc.ExtractEntities(text)
	info := metadata.Extract(upload.Image, upload.Format)
	assessment := quality.Assess(upload.Image)

	return &Result{
		Success:       true,
		Text:          text,
		TextFormatted: textproc.FormatParagraphs(text),
		Confidence:    outcome.Confidence,
		Engine:        engineName,
		TextStats:     textproc.Count(text),
		Entities:      &entities,
		ImageMetadata: &info,
		Quality:       &assessment,
	}
}

// cacheLookup fetches and decodes a cached result. The clone comes
// back with Cached set and near-zero processing time.
func (p *Pipeline) cacheLookup(ctx context.Context, fingerprint string) (*Result, bool) {
	if p.store == nil {
		return nil, false
	}
	raw, ok := p.store.Get(ctx, fingerprint)
	if !ok {
		return nil, false
	}

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		slog.Warn("cache entry undecodable, dropping", "fingerprint", fingerprint, "error", err)
		_ = p.store.Delete(ctx, fingerprint)
		return nil, false
	}
	result.Cached = true
	result.ProcessingTimeMs = 0
	return &result, true
}

// cacheWrite stores the maximal result. Cache faults are logged and
// swallowed: a broken cache must not fail a successful extraction.
func (p *Pipeline) cacheWrite(ctx context.Context, fingerprint string, result *Result) {
	if p.store == nil {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		slog.Warn("failed to encode result for cache", "error", err)
		return
	}
	if err := p.store.Put(ctx, fingerprint, raw); err != nil {
		slog.Warn("cache write failed", "fingerprint", fingerprint, "error", err)
	}
}
