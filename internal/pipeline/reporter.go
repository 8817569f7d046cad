package pipeline

import (
	"github.com/rs/zerolog"
)

// Reporter receives progress events from a run. Report is called from the
// goroutine running Stitch and should return quickly.
type Reporter interface {
	Report(Progress)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Progress)

func (f ReporterFunc) Report(p Progress) { f(p) }

// NopReporter discards events.
type NopReporter struct{}

func (NopReporter) Report(Progress) {}

// LogReporter writes events to a logger.
type LogReporter struct {
	Logger zerolog.Logger
}

func (r LogReporter) Report(p Progress) {
	event := r.Logger.Debug()
	switch {
	case p.Stage == StageFailed:
		event = r.Logger.Error().Err(p.Err)
	case p.Transition != nil && p.Transition.LowConfidence:
		event = r.Logger.Warn()
	case p.Index == 0 || p.Stage == StageDone:
		event = r.Logger.Info()
	}

	event = event.
		Str("run", p.RunID).
		Str("stage", string(p.Stage)).
		Int("index", p.Index).
		Int("total", p.Total)
	if p.Clip != "" {
		event = event.Str("clip", p.Clip)
	}
	if p.Percent > 0 {
		event = event.Float64("percent", p.Percent)
	}
	if t := p.Transition; t != nil {
		event = event.
			Float64("cut_a", t.CutA).
			Float64("start_b", t.StartB).
			Float64("score", t.Score).
			Bool("low_confidence", t.LowConfidence)
	}
	event.Msg("progress")
}

// MultiReporter fans events out to every reporter in order.
type MultiReporter []Reporter

func (m MultiReporter) Report(p Progress) {
	for _, r := range m {
		if r != nil {
			r.Report(p)
		}
	}
}

// ChanReporter sends events on a channel. Report blocks until the event is
// received or buffered, so the consumer must keep draining until the run
// returns.
type ChanReporter chan<- Progress

func (c ChanReporter) Report(p Progress) { c <- p }
