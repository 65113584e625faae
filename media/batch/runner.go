package batch

import (
	"bytes"
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/leeforge/imagekit/errors"
	"github.com/leeforge/imagekit/logging"
	"github.com/leeforge/imagekit/media/processor"
	"github.com/leeforge/imagekit/media/storage"
	"github.com/leeforge/imagekit/metrics"
)

// ErrBusy is returned when Run is called while another run is in progress.
var ErrBusy = apperrors.New(apperrors.ErrorTypeBusy, "batch runner is busy")

// Converter is the part of the pipeline the runner needs.
type Converter interface {
	ReadSource(path string) ([]byte, error)
	Reencode(ctx context.Context, source []byte, target processor.Target) (*processor.EncodedOutput, error)
}

// State is the runner lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateProcessing
)

func (s State) String() string {
	if s == StateProcessing {
		return "processing"
	}
	return "idle"
}

// Job converts one input file into one or more targets.
type Job struct {
	ID        string
	InputPath string
	Targets   []processor.Target
	// Folder is the output sub-folder inside the storage provider.
	Folder    string
	Overwrite bool
}

// JobResult is the outcome of one job.
type JobResult struct {
	JobID     string             `json:"jobId"`
	InputPath string             `json:"input"`
	Success   bool               `json:"success"`
	Error     error              `json:"-"`
	Outputs   []OutputInfo       `json:"outputs,omitempty"`
	Skipped   []processor.Format `json:"skipped,omitempty"`
	Duration  time.Duration      `json:"duration"`
}

// OutputInfo describes one stored output file.
type OutputInfo struct {
	Format processor.Format `json:"format"`
	Path   string           `json:"path"`
	Size   int64            `json:"size"`
	Width  int              `json:"width"`
	Height int              `json:"height"`
}

// Progress is reported after every job.
type Progress struct {
	Completed  int
	Failed     int
	Total      int
	Percentage float64
	Last       JobResult
}

// Runner processes jobs one at a time. Each job is awaited before the next
// one starts.
type Runner struct {
	converter  Converter
	storage    storage.Provider
	collector  *metrics.Collector
	logger     logging.Logger
	onProgress func(Progress)
	state      atomic.Int32
}

// Option customises a Runner.
type Option func(*Runner)

// WithCollector records conversions into c.
func WithCollector(c *metrics.Collector) Option {
	return func(r *Runner) { r.collector = c }
}

// WithLogger sets the logger. Without it each run logs to the logger carried
// by its context, see logging.ToContext.
func WithLogger(l logging.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithProgress calls fn after every job.
func WithProgress(fn func(Progress)) Option {
	return func(r *Runner) { r.onProgress = fn }
}

// NewRunner creates an idle Runner.
func NewRunner(converter Converter, provider storage.Provider, opts ...Option) *Runner {
	r := &Runner{
		converter: converter,
		storage:   provider,
		collector: metrics.NewCollector(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the current lifecycle state.
func (r *Runner) State() State {
	return State(r.state.Load())
}

// Collector returns the metrics collector the runner records into.
func (r *Runner) Collector() *metrics.Collector {
	return r.collector
}

// Run processes jobs in order. A failing job is recorded in its result and
// the run moves on; the returned error chains every job failure. ctx is
// checked between jobs: on cancellation the results so far are returned
// with ctx.Err().
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]JobResult, error) {
	if !r.state.CompareAndSwap(int32(StateIdle), int32(StateProcessing)) {
		return nil, ErrBusy
	}
	defer r.state.Store(int32(StateIdle))

	batchID := logging.GetBatchID(ctx)
	if batchID == "" {
		batchID = logging.NewID()
		ctx = logging.SetBatchID(ctx, batchID)
	}
	base := r.logger
	if base == nil {
		base = logging.FromContext(ctx)
	}
	log := logging.WithContext(base, ctx)
	log.Info("batch started", zap.Int("jobs", len(jobs)))

	tracker := NewProgressTracker(len(jobs))
	failures := apperrors.NewErrorChain()
	results := make([]JobResult, 0, len(jobs))

	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			log.Warn("batch canceled", zap.Int("remaining", len(jobs)-i))
			return results, err
		}
		if job.ID == "" {
			job.ID = logging.NewID()
		}

		result := r.runJob(ctx, base, job)
		results = append(results, result)
		if result.Success {
			tracker.IncrementCompleted()
		} else {
			tracker.IncrementFailed()
			failures.Add(result.Error)
		}

		if r.onProgress != nil {
			completed, failed, total := tracker.GetProgress()
			r.onProgress(Progress{
				Completed:  completed,
				Failed:     failed,
				Total:      total,
				Percentage: tracker.GetPercentage(),
				Last:       result,
			})
		}
	}

	completed, failed, _ := tracker.GetProgress()
	log.Info("batch finished", zap.Int("completed", completed), zap.Int("failed", failed))
	return results, failures.ErrOrNil()
}

// runJob converts one job. A panic inside a decoder or encoder fails the job
// with an internal error instead of ending the batch.
func (r *Runner) runJob(ctx context.Context, base logging.Logger, job Job) (result JobResult) {
	start := time.Now()
	ctx = logging.SetConversionID(ctx, job.ID)
	log := logging.WithContext(base, ctx).With(zap.String("input", job.InputPath))

	result = JobResult{JobID: job.ID, InputPath: job.InputPath}
	defer func() {
		if err := apperrors.ErrorRecover(recover(), nil); err != nil {
			appErr := apperrors.FromError(err)
			log.Error("job panicked", zap.Error(err), zap.Strings("stack", appErr.Stack))
			result.Success = false
			result.Error = err
			r.collector.RecordConversion("", metrics.OutcomeFailure, time.Since(start), 0, 0)
			result = r.finish(result, start)
		}
	}()

	if len(job.Targets) == 0 {
		result.Error = apperrors.NewValidation("job has no targets")
		return r.finish(result, start)
	}

	source, err := r.converter.ReadSource(job.InputPath)
	if err != nil {
		result.Error = err
		r.collector.RecordConversion("", metrics.OutcomeFailure, time.Since(start), 0, 0)
		log.Error("read failed", zap.Error(err))
		return r.finish(result, start)
	}

	for _, target := range job.Targets {
		targetStart := time.Now()
		format := string(target.Format)

		out, err := r.converter.Reencode(ctx, source, target)
		if err != nil {
			if processor.IsUnavailable(err) {
				log.Warn("skipping unavailable output format", zap.String("format", format))
				result.Skipped = append(result.Skipped, target.Format)
				r.collector.RecordConversion(format, metrics.OutcomeSkipped, time.Since(targetStart), int64(len(source)), 0)
				continue
			}
			result.Error = err
			r.collector.RecordConversion(format, metrics.OutcomeFailure, time.Since(targetStart), int64(len(source)), 0)
			log.Error("conversion failed", zap.String("format", format), zap.Error(err))
			return r.finish(result, start)
		}

		saved, err := r.storage.Save(ctx, storage.SaveInput{
			File:      bytes.NewReader(out.Data),
			Filename:  processor.DownloadName(job.InputPath, out.Format),
			Folder:    job.Folder,
			Overwrite: job.Overwrite,
			Metadata: map[string]interface{}{
				"width":  out.Width,
				"height": out.Height,
				"mime":   out.MIME,
			},
		})
		if err != nil {
			result.Error = err
			r.collector.RecordConversion(string(out.Format), metrics.OutcomeFailure, time.Since(targetStart), int64(len(source)), 0)
			log.Error("save failed", zap.Error(err))
			return r.finish(result, start)
		}

		r.collector.RecordConversion(string(out.Format), metrics.OutcomeSuccess, time.Since(targetStart), int64(len(source)), saved.Size)
		result.Outputs = append(result.Outputs, OutputInfo{
			Format: out.Format,
			Path:   saved.Path,
			Size:   saved.Size,
			Width:  out.Width,
			Height: out.Height,
		})
	}

	result.Success = true
	log.Debug("job finished", zap.Int("outputs", len(result.Outputs)))
	return r.finish(result, start)
}

func (r *Runner) finish(result JobResult, start time.Time) JobResult {
	result.Duration = time.Since(start)
	return result
}
