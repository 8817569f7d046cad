// Package transition finds where one clip should hand over to the next.
package transition

import (
	"context"
	"image"
	"math"
	"time"

	"github.com/kikiluvv/clipstitch/internal/clips"
	"github.com/kikiluvv/clipstitch/internal/metrics"
	"github.com/kikiluvv/clipstitch/internal/similarity"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Config tunes the search.
type Config struct {
	// Window is how many seconds of each clip are searched.
	Window float64
	// SampleRate is candidates per second of window.
	SampleRate float64
	// Epsilon keeps tail candidates away from the end of stream.
	Epsilon float64
	// CompareHeight is passed to the similarity scorer.
	CompareHeight int
	// Workers bounds concurrent scoring; zero or less means one.
	Workers int
}

// DefaultConfig returns the standard search settings.
func DefaultConfig() Config {
	return Config{
		Window:        2.0,
		SampleRate:    10,
		Epsilon:       clips.EndEpsilon,
		CompareHeight: similarity.DefaultHeight,
		Workers:       4,
	}
}

// Result is the best transition between two clips.
type Result struct {
	// CutA is where the earlier clip stops, in its own seconds.
	CutA float64
	// StartB is where the later clip resumes, in its own seconds.
	StartB float64
	// Score is the similarity at the chosen pair, +Inf when nothing could be compared.
	Score float64
	// LowConfidence marks a fallback transition chosen without any comparison.
	LowConfidence bool

	SamplesA int
	SamplesB int
	Misses   int
}

// Finder searches adjacent clips for their most similar pair of frames.
type Finder struct {
	cfg    Config
	scorer similarity.Scorer
	logger zerolog.Logger
}

// New creates a finder. Zero fields of cfg take their defaults.
func New(logger zerolog.Logger, cfg Config) *Finder {
	def := DefaultConfig()
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = def.SampleRate
	}
	if cfg.Epsilon < 0 {
		cfg.Epsilon = def.Epsilon
	}
	if cfg.CompareHeight <= 0 {
		cfg.CompareHeight = def.CompareHeight
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	return &Finder{
		cfg:    cfg,
		scorer: similarity.New(cfg.CompareHeight),
		logger: logger.With().Str("component", "transition").Logger(),
	}
}

// Config returns the effective settings.
func (f *Finder) Config() Config { return f.cfg }

// sample is one candidate frame, prepared for comparison.
// A nil frame is a miss.
type sample struct {
	t     float64
	frame *image.Gray
	err   error
}

func (s sample) ok() bool { return s.frame != nil }

// FindBest returns the pair (CutA, StartB) whose frames are most alike,
// searching the last window seconds of a and the first window seconds of b.
// A non-positive window uses the configured one.
//
// Frames that cannot be decoded are skipped. When no pair can be compared
// the result falls back to the end of a and the start of b with
// LowConfidence set. The only error returned is a context error.
func (f *Finder) FindBest(ctx context.Context, a, b clips.Source, window float64) (Result, error) {
	if window <= 0 {
		window = f.cfg.Window
	}
	clipA, clipB := a.Clip(), b.Clip()
	start := time.Now()

	timesA := tailTimes(clipA.Duration, window, f.cfg.SampleRate, f.cfg.Epsilon)
	timesB := headTimes(clipB.Duration, window, f.cfg.SampleRate)

	res := Result{
		CutA:          max(0, clipA.Duration-f.cfg.Epsilon),
		StartB:        0,
		Score:         math.Inf(1),
		LowConfidence: true,
		SamplesA:      len(timesA),
		SamplesB:      len(timesB),
	}

	// Frames are fetched sequentially; sources are not safe for concurrent use.
	var size image.Point
	samplesA := make([]sample, len(timesA))
	for i, t := range timesA {
		s, err := f.fetch(ctx, a, t, &size)
		if err != nil {
			return Result{}, err
		}
		samplesA[i] = s
	}

	samplesB := make([]sample, len(timesB))
	if size != (image.Point{}) {
		for i, t := range timesB {
			s, err := f.fetch(ctx, b, t, &size)
			if err != nil {
				return Result{}, err
			}
			samplesB[i] = s
		}
	} else {
		// Nothing to compare against; b is left unread.
		for i, t := range timesB {
			samplesB[i] = sample{t: t}
		}
	}

	res.Misses = countMisses(samplesA) + countMisses(samplesB)
	metrics.SampleMissesTotal.Add(float64(res.Misses))

	best, err := f.score(ctx, samplesA, samplesB)
	if err != nil {
		return Result{}, err
	}

	if best.ok {
		res.CutA = samplesA[best.row].t
		res.StartB = samplesB[best.col].t
		res.Score = best.score
		res.LowConfidence = false
		metrics.TransitionsTotal.WithLabelValues("ok").Inc()
	} else {
		metrics.TransitionsTotal.WithLabelValues("low").Inc()
	}

	event := f.logger.Debug()
	if res.LowConfidence {
		event = f.logger.Warn()
	}
	event.
		Str("a", clipA.Path).
		Str("b", clipB.Path).
		Float64("cut_a", res.CutA).
		Float64("start_b", res.StartB).
		Float64("score", res.Score).
		Int("samples_a", res.SamplesA).
		Int("samples_b", res.SamplesB).
		Int("misses", res.Misses).
		Bool("low_confidence", res.LowConfidence).
		Dur("took", time.Since(start)).
		Msg("transition search finished")

	return res, nil
}

// fetch decodes and prepares the frame at t. The compare size is fixed by
// the first frame that decodes. Decode failures become misses; only
// cancellation is returned as an error.
func (f *Finder) fetch(ctx context.Context, src clips.Source, t float64, size *image.Point) (sample, error) {
	if err := ctx.Err(); err != nil {
		return sample{}, err
	}

	img, err := src.FrameAt(ctx, t)
	if err != nil {
		if ctx.Err() != nil {
			return sample{}, ctx.Err()
		}
		f.logger.Debug().
			Err(err).
			Str("clip", src.Clip().Path).
			Float64("t", t).
			Msg("sample miss")
		return sample{t: t, err: err}, nil
	}

	if *size == (image.Point{}) {
		w, h := f.scorer.TargetSize(img.Bounds())
		*size = image.Pt(w, h)
	}
	return sample{t: t, frame: similarity.Prepare(img, size.X, size.Y)}, nil
}

type cell struct {
	row, col int
	score    float64
	ok       bool
}

// score finds the first minimum over the grid in row-major order. Rows are
// scored concurrently and reduced in index order, so the outcome does not
// depend on the worker count.
func (f *Finder) score(ctx context.Context, rows, cols []sample) (cell, error) {
	bests := make([]cell, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.cfg.Workers)

	for i := range rows {
		if !rows[i].ok() {
			continue
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			best := cell{row: i}
			for j, c := range cols {
				if !c.ok() {
					continue
				}
				s := similarity.MSE(rows[i].frame, c.frame)
				if !best.ok || s < best.score {
					best = cell{row: i, col: j, score: s, ok: true}
				}
			}
			bests[i] = best
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return cell{}, err
	}

	var best cell
	for _, c := range bests {
		if c.ok && (!best.ok || c.score < best.score) {
			best = c
		}
	}
	return best, nil
}

func countMisses(samples []sample) int {
	n := 0
	for _, s := range samples {
		if s.err != nil {
			n++
		}
	}
	return n
}
