package pipeline

import (
	"github.com/kikiluvv/clipstitch/internal/clips"
	"github.com/kikiluvv/clipstitch/internal/transition"
)

// Stage is a state of a stitch run.
type Stage string

const (
	StageIdle                 Stage = "idle"
	StageLoadingClips         Stage = "loading_clips"
	StageSingleClipExport     Stage = "single_clip_export"
	StageAnalyzingTransitions Stage = "analyzing_transitions"
	StageTrimmingSegments     Stage = "trimming_segments"
	StageRendering            Stage = "rendering"
	StageDone                 Stage = "done"
	StageFailed               Stage = "failed"
)

// Progress is emitted on every stage change and on each step within a stage.
// Index counts completed steps out of Total.
type Progress struct {
	RunID string
	Stage Stage
	Index int
	Total int
	// Clip is the path being worked on, if any.
	Clip string
	// Percent is how far the current rendering step has got, 0-100.
	Percent float64
	// Transition is set when a transition search completes.
	Transition *transition.Result
	// Err is set on StageFailed.
	Err error
}

// Request describes one stitch run.
type Request struct {
	// Clips are played in this order.
	Clips  []string
	Output string
	// Window is the search window in seconds; zero uses the finder default.
	Window float64
}

// Segment is the part of a clip that appears in the output, [Start, End)
// in the clip's own seconds.
type Segment struct {
	Clip  clips.Clip
	Start float64
	End   float64
}

// Duration is the segment length, zero for an empty segment.
func (s Segment) Duration() float64 {
	return max(0, s.End-s.Start)
}

// Empty reports whether the segment contributes nothing to the output.
func (s Segment) Empty() bool {
	return s.End <= s.Start
}

// Result describes a finished run.
type Result struct {
	RunID       string
	Output      string
	Transitions []transition.Result
	Segments    []Segment
	// Duration is the length of the rendered timeline in seconds.
	Duration float64
}
