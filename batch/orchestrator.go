// Package batch runs a conversion request over a bounded worker pool,
// isolating failures per input file and reporting monotone progress.
package batch

import (
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"pic2any/contracts"
	"pic2any/extractor"
	"pic2any/formats"
	"pic2any/transform"
	"pic2any/writer"
)

// maxWorkers caps the pool independently of input count.
const maxWorkers = 4

// DefaultOutputDirName is the directory created next to the first input
// when the request does not name an output root.
const DefaultOutputDirName = "pic"

type Orchestrator struct {
	workers int
	log     *slog.Logger
	events  chan<- contracts.Event
	state   atomic.Int32
}

// New builds an orchestrator. logger may be nil (diagnostics are optional);
// events may be nil when no listener cares about progress.
func New(workers int, logger *slog.Logger, events chan<- contracts.Event) *Orchestrator {
	if workers < 1 || workers > maxWorkers {
		workers = maxWorkers
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Orchestrator{workers: workers, log: logger, events: events}
}

func (o *Orchestrator) State() contracts.BatchState {
	return contracts.BatchState(o.state.Load())
}

// Run processes every file of the request independently through
// extract → transform → write and blocks until all outcomes are recorded.
// It returns an error only for conditions that prevent the batch from
// starting at all; per-file failures are reported through outcomes.
func (o *Orchestrator) Run(req contracts.ConversionRequest) (contracts.BatchSummary, error) {
	if len(req.Files) == 0 {
		return contracts.BatchSummary{}, &contracts.InvalidParameterError{Name: "input files", Value: "empty list"}
	}
	format, err := formats.Lookup(req.Format)
	if err != nil {
		return contracts.BatchSummary{}, err
	}
	if req.IconSize != 0 && !formats.ValidIconSize(req.IconSize) {
		return contracts.BatchSummary{}, &contracts.InvalidParameterError{Name: "icon size", Value: fmt.Sprintf("%d", req.IconSize)}
	}
	if req.BatchID == "" {
		req.BatchID = uuid.NewString()
	}

	// One shared output root, fixed before any file is touched.
	root := req.OutputDir
	if root == "" {
		root = filepath.Join(filepath.Dir(req.Files[0]), DefaultOutputDirName)
	}
	w := writer.New(root)
	if err := w.EnsureRoot(); err != nil {
		return contracts.BatchSummary{}, err
	}

	o.state.Store(int32(contracts.BatchRunning))
	defer o.state.Store(int32(contracts.BatchCompleted))

	total := len(req.Files)
	o.log.Info("batch started", "batch", req.BatchID, "files", total, "format", format.Token, "out", root)

	results := make(chan contracts.ConversionOutcome, total)
	sem := make(chan struct{}, o.workers)
	var wg sync.WaitGroup

	for _, path := range req.Files {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			results <- o.convertOne(w, format, req, path, total)
		}(path)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	summary := contracts.BatchSummary{
		BatchID:    req.BatchID,
		OutputRoot: root,
		Total:      total,
	}
	done := 0
	for outcome := range results {
		done++
		if outcome.OK {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
		summary.Outcomes = append(summary.Outcomes, outcome)
		out := outcome
		o.emit(contracts.Event{Path: outcome.Input, Stage: contracts.StageRecorded, Outcome: &out, Done: done, Total: total})
	}

	o.log.Info("batch completed", "batch", req.BatchID, "succeeded", summary.Succeeded, "failed", summary.Failed)
	return summary, nil
}

// convertOne never lets a per-file failure escape: every error kind in the
// taxonomy (and any codec panic on corrupt data) becomes a failed outcome.
func (o *Orchestrator) convertOne(w *writer.Writer, format *formats.Format, req contracts.ConversionRequest, path string, total int) (outcome contracts.ConversionOutcome) {
	outcome.Input = path
	defer func() {
		if r := recover(); r != nil {
			outcome.OK = false
			outcome.Outputs = nil
			outcome.Err = fmt.Sprintf("panic while converting: %v", r)
			o.log.Error("file panicked", "batch", req.BatchID, "file", path, "panic", r)
		}
	}()

	o.log.Info("file started", "batch", req.BatchID, "file", path)
	o.emit(contracts.Event{Path: path, Stage: contracts.StageExtracting, Total: total})

	frames, err := extractor.Extract(path)
	if err != nil {
		return o.fail(req, path, err)
	}

	o.emit(contracts.Event{Path: path, Stage: contracts.StageTransforming, Total: total})

	stem := writer.Stem(path)
	opt := formats.Options{Quality: format.Quality, IconSize: req.IconSize}

	if format.Aggregate {
		prepared := make([]image.Image, 0, len(frames))
		for _, frame := range frames {
			img, err := transform.Prepare(frame, format, req.IconSize)
			if err != nil {
				return o.fail(req, path, err)
			}
			prepared = append(prepared, img)
		}
		o.emit(contracts.Event{Path: path, Stage: contracts.StageWriting, Total: total})
		dest, err := w.WritePDF(stem, prepared, format.Quality)
		if err != nil {
			return o.fail(req, path, err)
		}
		outcome.OK = true
		outcome.Outputs = []string{dest}
	} else {
		for _, frame := range frames {
			img, err := transform.Prepare(frame, format, req.IconSize)
			if err != nil {
				return o.fail(req, path, err)
			}
			o.emit(contracts.Event{Path: path, Stage: contracts.StageWriting, Total: total})
			dest, err := w.WriteFrame(stem, frame.PageIndex, len(frames), img, format, opt)
			if err != nil {
				return o.fail(req, path, err)
			}
			outcome.Outputs = append(outcome.Outputs, dest)
		}
		outcome.OK = true
	}

	o.log.Info("file finished", "batch", req.BatchID, "file", path, "outputs", len(outcome.Outputs))
	return outcome
}

func (o *Orchestrator) fail(req contracts.ConversionRequest, path string, err error) contracts.ConversionOutcome {
	o.log.Error("file failed", "batch", req.BatchID, "file", path, "err", err)
	return contracts.ConversionOutcome{Input: path, Err: err.Error()}
}

func (o *Orchestrator) emit(ev contracts.Event) {
	if o.events != nil {
		o.events <- ev
	}
}
