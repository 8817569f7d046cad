package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/kikiluvv/clipstitch/internal/pipeline"
	"github.com/schollz/progressbar/v3"
)

var stageLabels = map[pipeline.Stage]string{
	pipeline.StageLoadingClips:         "Loading clips",
	pipeline.StageSingleClipExport:     "Exporting",
	pipeline.StageAnalyzingTransitions: "Finding transitions",
	pipeline.StageTrimmingSegments:     "Trimming",
	pipeline.StageRendering:            "Rendering",
}

// stageBar draws one progress bar per pipeline stage.
type stageBar struct {
	out   io.Writer
	stage pipeline.Stage
	bar   *progressbar.ProgressBar
}

func (s *stageBar) update(p pipeline.Progress) {
	label, ok := stageLabels[p.Stage]
	if !ok {
		s.finish()
		return
	}

	if p.Stage != s.stage || s.bar == nil {
		s.finish()
		s.stage = p.Stage
		s.bar = progressbar.NewOptions(max(1, p.Total),
			progressbar.OptionSetWriter(s.out),
			progressbar.OptionSetDescription(label),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "█",
				SaucerHead:    "█",
				SaucerPadding: "░",
				BarStart:      "▐",
				BarEnd:        "▌",
			}),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetRenderBlankState(true),
		)
	}
	_ = s.bar.Set(p.Index)
}

func (s *stageBar) finish() {
	if s.bar == nil {
		return
	}
	_ = s.bar.Finish()
	fmt.Fprintln(s.out)
	s.bar = nil
}

// runWithProgress runs the stitch in the background and drains its events
// until it returns, drawing them when show is set.
func runWithProgress(ctx context.Context, pipe *pipeline.Pipeline, req pipeline.Request, events chan pipeline.Progress, show bool) (*pipeline.Result, error) {
	var (
		res *pipeline.Result
		err error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer close(events)
		res, err = pipe.Stitch(ctx, req)
	}()

	bar := &stageBar{out: os.Stderr}
	for p := range events {
		if show {
			bar.update(p)
		}
	}
	bar.finish()
	<-done

	return res, err
}
