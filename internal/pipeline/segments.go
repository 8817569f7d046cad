package pipeline

import (
	"fmt"

	"github.com/kikiluvv/clipstitch/internal/clips"
	"github.com/kikiluvv/clipstitch/internal/transition"
)

// BuildSegments trims each clip to the part between the transitions around
// it. Clip i starts where transition i-1 resumes it (0 for the first clip)
// and ends where transition i cuts it (its duration for the last clip).
//
// Segments whose end is not after their start are kept so indexes line up
// with the clips; renderers skip them.
func BuildSegments(list []clips.Clip, transitions []transition.Result) ([]Segment, error) {
	if len(list) == 0 {
		return nil, fmt.Errorf("no clips")
	}
	if len(transitions) != len(list)-1 {
		return nil, fmt.Errorf("%d clips need %d transitions, got %d", len(list), len(list)-1, len(transitions))
	}

	segments := make([]Segment, len(list))
	carry := 0.0
	for i, clip := range list {
		end := clip.Duration
		if i < len(transitions) {
			end = transitions[i].CutA
		}
		segments[i] = Segment{Clip: clip, Start: carry, End: end}
		if i < len(transitions) {
			carry = transitions[i].StartB
		}
	}
	return segments, nil
}

// timelineDuration sums the non-empty segment lengths.
func timelineDuration(segments []Segment) float64 {
	total := 0.0
	for _, s := range segments {
		total += s.Duration()
	}
	return total
}
