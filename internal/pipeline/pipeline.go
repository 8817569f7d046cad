package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/kikiluvv/clipstitch/internal/clips"
	"github.com/kikiluvv/clipstitch/internal/metrics"
	"github.com/kikiluvv/clipstitch/internal/transition"
	"github.com/kikiluvv/clipstitch/pkg/util"
	"github.com/rs/zerolog"
)

// Pipeline orchestrates a stitch run: load clips, find transitions, trim
// and render.
type Pipeline struct {
	logger   zerolog.Logger
	opener   clips.Opener
	finder   *transition.Finder
	renderer Renderer
	reporter Reporter
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithReporter sets where progress events go.
func WithReporter(r Reporter) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.reporter = r
		}
	}
}

// New creates a new pipeline instance
func New(logger zerolog.Logger, opener clips.Opener, finder *transition.Finder, renderer Renderer, opts ...Option) *Pipeline {
	p := &Pipeline{
		logger:   logger.With().Str("component", "pipeline").Logger(),
		opener:   opener,
		finder:   finder,
		renderer: renderer,
		reporter: NopReporter{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// run holds the state of one Stitch call.
type run struct {
	p       *Pipeline
	id      string
	logger  zerolog.Logger
	stage   Stage
	started time.Time
	sources []clips.Source
	closed  []bool
}

// Stitch joins req.Clips into req.Output.
//
// Every clip source opened during the run is closed before Stitch returns.
// On failure or cancellation no file is left at req.Output.
func (p *Pipeline) Stitch(ctx context.Context, req Request) (*Result, error) {
	r := &run{
		p:      p,
		id:     uuid.NewString(),
		stage:  StageIdle,
		logger: p.logger,
	}
	r.logger = p.logger.With().Str("run", r.id).Logger()
	defer r.closeAll()

	res, err := r.stitch(ctx, req)
	if err != nil {
		status := "failed"
		if ctx.Err() != nil {
			status = "canceled"
		}
		metrics.RunsTotal.WithLabelValues(status).Inc()
		r.logger.Error().Err(err).Str("stage", string(r.stage)).Msg("stitch failed")
		p.reporter.Report(Progress{RunID: r.id, Stage: StageFailed, Err: err})
		return nil, err
	}

	metrics.RunsTotal.WithLabelValues("ok").Inc()
	return res, nil
}

func (r *run) stitch(ctx context.Context, req Request) (*Result, error) {
	if err := validate(req); err != nil {
		return nil, &StageError{Stage: StageIdle, Kind: ErrValidation, Err: err}
	}

	r.logger.Info().
		Int("clips", len(req.Clips)).
		Str("output", req.Output).
		Float64("window", req.Window).
		Msg("starting stitch")

	loaded, err := r.load(ctx, req.Clips)
	if err != nil {
		return nil, err
	}

	if err := util.EnsureDir(filepath.Dir(req.Output)); err != nil {
		return nil, r.fail(ErrEncode, fmt.Errorf("create output dir: %w", err))
	}

	if len(loaded) == 1 {
		return r.single(ctx, loaded[0], req.Output)
	}

	transitions, err := r.analyze(ctx, req.Window)
	if err != nil {
		return nil, err
	}

	r.enter(StageTrimmingSegments, len(loaded))
	segments, err := BuildSegments(loaded, transitions)
	if err != nil {
		return nil, r.fail(ErrValidation, err)
	}
	for i, seg := range segments {
		if seg.Empty() {
			r.logger.Warn().
				Int("segment", i).
				Str("clip", seg.Clip.Path).
				Float64("start", seg.Start).
				Float64("end", seg.End).
				Msg("segment is empty and will be skipped")
		}
	}
	r.report(Progress{Index: len(segments), Total: len(segments)})

	if err := r.render(ctx, segments, req.Output); err != nil {
		return nil, err
	}

	res := &Result{
		RunID:       r.id,
		Output:      req.Output,
		Transitions: transitions,
		Segments:    segments,
		Duration:    timelineDuration(segments),
	}
	r.done(res)
	return res, nil
}

func validate(req Request) error {
	if len(req.Clips) == 0 {
		return errors.New("no clips given")
	}
	if req.Output == "" {
		return errors.New("output path is required")
	}
	if req.Window < 0 {
		return fmt.Errorf("search window cannot be negative, got %g", req.Window)
	}
	out, _ := filepath.Abs(req.Output)
	for _, c := range req.Clips {
		if c == "" {
			return errors.New("empty clip path")
		}
		if in, _ := filepath.Abs(c); in == out {
			return fmt.Errorf("output %s would overwrite an input clip", req.Output)
		}
	}
	return nil
}

// load opens a source per path, in order.
func (r *run) load(ctx context.Context, paths []string) ([]clips.Clip, error) {
	r.enter(StageLoadingClips, len(paths))

	r.sources = make([]clips.Source, 0, len(paths))
	loaded := make([]clips.Clip, 0, len(paths))
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, r.cancel(err)
		}

		src, err := r.p.opener.Open(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, r.cancel(ctx.Err())
			}
			return nil, r.fail(ErrIO, err)
		}
		r.sources = append(r.sources, src)
		r.closed = append(r.closed, false)
		loaded = append(loaded, src.Clip())

		r.report(Progress{Index: i + 1, Total: len(paths), Clip: path})
	}
	return loaded, nil
}

func (r *run) single(ctx context.Context, clip clips.Clip, output string) (*Result, error) {
	r.enter(StageSingleClipExport, 1)
	r.closeSource(0)

	if err := ctx.Err(); err != nil {
		return nil, r.cancel(err)
	}
	if err := r.p.renderer.RenderSingle(ctx, clip, output, r.renderProgress(func(int) string { return clip.Path })); err != nil {
		if ctx.Err() != nil {
			return nil, r.cancel(ctx.Err())
		}
		return nil, r.fail(ErrEncode, err)
	}
	r.report(Progress{Index: 1, Total: 1, Clip: clip.Path})

	segments := []Segment{{Clip: clip, Start: 0, End: clip.Duration}}
	res := &Result{
		RunID:    r.id,
		Output:   output,
		Segments: segments,
		Duration: clip.Duration,
	}
	r.done(res)
	return res, nil
}

// analyze finds the transition of every adjacent pair, closing each source
// once no later pair needs it.
func (r *run) analyze(ctx context.Context, window float64) ([]transition.Result, error) {
	pairs := len(r.sources) - 1
	r.enter(StageAnalyzingTransitions, pairs)

	transitions := make([]transition.Result, 0, pairs)
	for i := 0; i < pairs; i++ {
		if err := ctx.Err(); err != nil {
			return nil, r.cancel(err)
		}

		a, b := r.sources[i], r.sources[i+1]
		res, err := r.p.finder.FindBest(ctx, a, b, window)
		if err != nil {
			if ctx.Err() != nil {
				return nil, r.cancel(ctx.Err())
			}
			return nil, r.fail(ErrDecode, err)
		}
		r.closeSource(i)

		if res.LowConfidence {
			r.logger.Warn().
				Str("a", a.Clip().Path).
				Str("b", b.Clip().Path).
				Int("misses", res.Misses).
				Msg("no frames could be compared, cutting at end of clip")
		}

		transitions = append(transitions, res)
		r.report(Progress{Index: i + 1, Total: pairs, Clip: b.Clip().Path, Transition: &res})
	}
	r.closeSource(len(r.sources) - 1)

	return transitions, nil
}

func (r *run) render(ctx context.Context, segments []Segment, output string) error {
	r.enter(StageRendering, len(segments))
	if err := ctx.Err(); err != nil {
		return r.cancel(err)
	}

	err := r.p.renderer.RenderSegments(ctx, segments, output, r.renderProgress(func(i int) string {
		return segments[min(i, len(segments)-1)].Clip.Path
	}))
	if err != nil {
		if ctx.Err() != nil {
			return r.cancel(ctx.Err())
		}
		if errors.Is(err, ErrDecode) {
			return r.fail(ErrDecode, err)
		}
		return r.fail(ErrEncode, err)
	}
	return nil
}

// renderProgress turns renderer callbacks into progress events. clipAt
// names the clip of the step in progress.
func (r *run) renderProgress(clipAt func(step int) string) RenderProgress {
	return func(done, total int, percent float64) {
		step := done
		if percent == 0 && done > 0 {
			step = done - 1
		}
		r.report(Progress{Index: done, Total: total, Percent: percent, Clip: clipAt(step)})
	}
}

// enter moves the run to stage, recording how long the previous one took.
func (r *run) enter(stage Stage, total int) {
	r.observe()
	r.stage = stage
	r.started = time.Now()
	r.logger.Debug().Str("stage", string(stage)).Msg("entering stage")
	r.report(Progress{Total: total})
}

func (r *run) observe() {
	if r.stage != StageIdle && !r.started.IsZero() {
		metrics.StageDuration.WithLabelValues(string(r.stage)).Observe(time.Since(r.started).Seconds())
	}
}

func (r *run) done(res *Result) {
	r.observe()
	r.stage = StageDone
	r.logger.Info().
		Str("output", res.Output).
		Int("segments", len(res.Segments)).
		Float64("duration", res.Duration).
		Msg("stitch completed")
	r.report(Progress{Index: 1, Total: 1})
}

func (r *run) report(p Progress) {
	p.RunID = r.id
	p.Stage = r.stage
	r.p.reporter.Report(p)
}

func (r *run) fail(kind, err error) error {
	r.observe()
	return &StageError{Stage: r.stage, Kind: kind, Err: err}
}

func (r *run) cancel(err error) error {
	r.observe()
	return &StageError{Stage: r.stage, Err: err}
}

func (r *run) closeSource(i int) {
	if i < 0 || i >= len(r.sources) || r.closed[i] {
		return
	}
	r.closed[i] = true
	if err := r.sources[i].Close(); err != nil {
		r.logger.Warn().Err(err).Str("clip", r.sources[i].Clip().Path).Msg("close clip")
	}
}

func (r *run) closeAll() {
	for i := range r.sources {
		r.closeSource(i)
	}
}
