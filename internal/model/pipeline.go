package model

import (
	"fmt"

	"github.com/Brownie44l1/drive-api/internal/batch"
	"github.com/Brownie44l1/drive-api/internal/preprocess"
)

// Request is one inference call: a variant and its frames, left first for
// stereo.
type Request struct {
	Variant batch.Variant
	Frames  []preprocess.Frame
}

func MonoRequest(frame preprocess.Frame, tta bool) Request {
	return newRequest(batch.Mono, tta, frame)
}

func StereoRequest(left, right preprocess.Frame, tta bool) Request {
	return newRequest(batch.Stereo, tta, left, right)
}

func newRequest(layout batch.Layout, tta bool, frames ...preprocess.Frame) Request {
	mode := batch.Plain
	if tta {
		mode = batch.Augmented
	}
	return Request{Variant: batch.Variant{Layout: layout, Mode: mode}, Frames: frames}
}

// Pipeline normalizes frames, batches them, runs the executor and reduces
// the rows to one estimate. Like the Normalizer it owns, a Pipeline is not
// safe for concurrent use.
type Pipeline struct {
	normalizer *preprocess.Normalizer
	executor   Executor

	// reused between calls, keyed by row count
	batches map[int]*batch.Batch
}

// NewPipeline checks the frame configuration and warms the executor up with
// one blank frame. The executor is not closed on error.
func NewPipeline(executor Executor, width, height, channels int, stats preprocess.Stats) (*Pipeline, error) {
	normalizer, err := preprocess.NewNormalizer(width, height, channels, stats)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		normalizer: normalizer,
		executor:   executor,
		batches:    make(map[int]*batch.Batch),
	}

	if _, err := p.Process(MonoRequest(preprocess.BlankFrame(width, height, channels), false)); err != nil {
		return nil, fmt.Errorf("warm-up failed: %w", err)
	}
	return p, nil
}

func (p *Pipeline) Width() int    { return p.normalizer.Width() }
func (p *Pipeline) Height() int   { return p.normalizer.Height() }
func (p *Pipeline) Channels() int { return p.normalizer.Channels() }

// Process runs one request. Invalid variants and frames are rejected before
// the executor is called; executor errors are returned unchanged.
func (p *Pipeline) Process(req Request) (batch.Estimate, error) {
	v := req.Variant
	if err := v.Validate(); err != nil {
		return batch.Estimate{}, err
	}
	if len(req.Frames) != v.InputCount() {
		return batch.Estimate{}, fmt.Errorf("%w: %s request needs %d frames, got %d",
			preprocess.ErrConfiguration, v, v.InputCount(), len(req.Frames))
	}

	b := p.batchFor(v.Rows())
	for i, frame := range req.Frames {
		if err := p.normalizer.NormalizeInto(frame, b.Row(i)); err != nil {
			return batch.Estimate{}, fmt.Errorf("frame %d: %w", i, err)
		}
	}

	switch v.Mode {
	case batch.Augmented:
		if err := b.Mirror(v.InputCount()); err != nil {
			return batch.Estimate{}, err
		}
	case batch.Plain:
	}

	rows, err := p.executor.Execute(b)
	if err != nil {
		return batch.Estimate{}, err
	}
	if len(rows) != b.Rows {
		return batch.Estimate{}, fmt.Errorf("%w: executor returned %d rows for a batch of %d",
			ErrExecution, len(rows), b.Rows)
	}

	return batch.ReduceVariant(rows, v)
}

func (p *Pipeline) batchFor(rows int) *batch.Batch {
	b, ok := p.batches[rows]
	if !ok {
		b = batch.New(rows, p.normalizer.Channels(), p.normalizer.Height(), p.normalizer.Width())
		p.batches[rows] = b
	}
	return b
}

// Close releases the executor.
func (p *Pipeline) Close() {
	p.executor.Close()
}
