package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/pictext/pictext/internal/apierr"
	"github.com/pictext/pictext/internal/validate"
)

// batchJob is one queued upload with its submission position.
type batchJob struct {
	index int
	input BatchInput
}

// batchOutcome carries one finished item back to the collector.
type batchOutcome struct {
	index int
	item  BatchItem
}

// ExtractBatch fans the inputs out to a bounded worker pool and fans
// results back in. Items are isolated: one invalid or failing upload
// never aborts its siblings, and the response keeps submission order.
// Only the wholesale shape checks (empty batch, too many files) reject
// the batch as a whole, before any processing starts.
func (p *Pipeline) ExtractBatch(ctx context.Context, inputs []BatchInput, opts Options) (*BatchResult, error) {
	const op = "pipeline.ExtractBatch"
	start := time.Now()

	if len(inputs) == 0 {
		return nil, apierr.New(op, apierr.CodeMissingFile, "No files provided in the request")
	}
	if len(inputs) > p.maxBatchSize {
		return nil, apierr.New(op, apierr.CodeTooManyFiles,
			fmt.Sprintf("Too many files. Maximum is %d per batch", p.maxBatchSize))
	}

	workers := p.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(inputs) {
		workers = len(inputs)
	}

	jobs := make(chan batchJob, len(inputs))
	outcomes := make(chan batchOutcome, len(inputs))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go p.batchWorker(ctx, jobs, outcomes, &wg, opts)
	}

	for i, input := range inputs {
		jobs <- batchJob{index: i, input: input}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	items := make([]BatchItem, len(inputs))
	for outcome := range outcomes {
		items[outcome.index] = outcome.item
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := &BatchResult{
		TotalFiles:            len(inputs),
		TotalProcessingTimeMs: float64(time.Since(start).Microseconds()) / 1000.0,
		Results:               items,
	}
	for _, item := range items {
		if item.Success {
			batch.Successful++
		} else {
			batch.Failed++
		}
	}
	batch.Success = batch.Failed == 0
	return batch, nil
}

// batchWorker drains the job queue. Per-item validation runs inside
// the worker so a bad file surfaces as that item's error, nothing more.
func (p *Pipeline) batchWorker(
	ctx context.Context,
	jobs <-chan batchJob,
	outcomes chan<- batchOutcome,
	wg *sync.WaitGroup,
	opts Options,
) {
	defer wg.Done()

	for {
		select {
		case job, ok := <-jobs:
			if !ok {
				return
			}
			outcomes <- batchOutcome{index: job.index, item: p.processItem(ctx, job.input, opts)}
		case <-ctx.Done():
			return
		}
	}
}

func (p *Pipeline) processItem(ctx context.Context, input BatchInput, opts Options) BatchItem {
	item := BatchItem{Filename: validate.SanitizeFilename(input.Filename)}

	result, err := p.ExtractText(ctx, input.Content, input.Filename, opts)
	if err != nil {
		item.Error = &ItemError{
			Code:    string(apierr.CodeOf(err)),
			Message: apierr.MessageOf(err),
		}
		return item
	}

	item.Success = true
	item.Result = result
	return item
}
