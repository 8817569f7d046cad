package clips

import (
	"context"
	"errors"
	"image"
)

// EndEpsilon keeps frame requests this many seconds before the end of a
// stream, where seeking often yields nothing.
const EndEpsilon = 0.01

// ErrClosed is returned by a Source used after Close.
var ErrClosed = errors.New("source is closed")

// Clip holds the stream metadata of one input video.
// Durations are seconds.
type Clip struct {
	Path     string
	Duration float64
	FPS      float64
	Width    int
	Height   int
	HasAudio bool
}

// SafeEnd is the last timestamp a frame can reliably be read at.
func (c Clip) SafeEnd() float64 {
	return max(0, c.Duration-EndEpsilon)
}

// ClampTime limits t to [0, SafeEnd].
func (c Clip) ClampTime(t float64) float64 {
	if t < 0 {
		return 0
	}
	return min(t, c.SafeEnd())
}

// Source is an opened clip with random access to its frames.
// A Source is not safe for concurrent FrameAt calls unless the
// implementation says otherwise.
type Source interface {
	Clip() Clip
	// FrameAt returns the frame shown at t seconds. Requests at or past the
	// end are clamped to the last readable timestamp.
	FrameAt(ctx context.Context, t float64) (image.Image, error)
	Close() error
}

// Opener opens clips for frame access.
type Opener interface {
	Open(ctx context.Context, path string) (Source, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(ctx context.Context, path string) (Source, error)

func (f OpenerFunc) Open(ctx context.Context, path string) (Source, error) {
	return f(ctx, path)
}
