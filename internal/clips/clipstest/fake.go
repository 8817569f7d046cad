// Package clipstest provides in-memory clip sources for tests.
package clipstest

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/kikiluvv/clipstitch/internal/clips"
)

// FrameFunc renders the frame shown at t seconds.
type FrameFunc func(t float64) (image.Image, error)

// Source is a clips.Source whose frames come from a FrameFunc.
type Source struct {
	Info  clips.Clip
	Frame FrameFunc

	mu     sync.Mutex
	calls  []float64
	closes int
}

// NewSource returns a source of the given duration rendering frames with fn.
func NewSource(path string, duration float64, fn FrameFunc) *Source {
	return &Source{
		Info: clips.Clip{
			Path:     path,
			Duration: duration,
			FPS:      30,
			Width:    64,
			Height:   36,
		},
		Frame: fn,
	}
}

func (s *Source) Clip() clips.Clip { return s.Info }

func (s *Source) FrameAt(ctx context.Context, t float64) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closes > 0 {
		return nil, clips.ErrClosed
	}

	t = s.Info.ClampTime(t)
	s.calls = append(s.calls, t)
	return s.Frame(t)
}

func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	return nil
}

// Calls returns the clamped timestamps FrameAt was called with.
func (s *Source) Calls() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]float64(nil), s.calls...)
}

// Closes returns how many times Close was called.
func (s *Source) Closes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

// Opener hands out registered sources by path.
type Opener struct {
	mu      sync.Mutex
	sources map[string]*Source
	errs    map[string]error
	opened  []string
}

func NewOpener() *Opener {
	return &Opener{
		sources: make(map[string]*Source),
		errs:    make(map[string]error),
	}
}

// Add registers src under its clip path.
func (o *Opener) Add(src *Source) *Opener {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sources[src.Info.Path] = src
	return o
}

// Fail makes opening path return err.
func (o *Opener) Fail(path string, err error) *Opener {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.errs[path] = err
	return o
}

func (o *Opener) Open(ctx context.Context, path string) (clips.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.opened = append(o.opened, path)
	if err, ok := o.errs[path]; ok {
		return nil, err
	}
	src, ok := o.sources[path]
	if !ok {
		return nil, fmt.Errorf("open %s: no such clip", path)
	}
	return src, nil
}

// Opened returns every path Open was called with, in order.
func (o *Opener) Opened() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.opened...)
}

// Solid returns a w×h frame filled with gray level v.
func Solid(w, h int, v uint8) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// SolidFrames renders every timestamp as a solid frame whose level is level(t).
func SolidFrames(level func(t float64) uint8) FrameFunc {
	return func(t float64) (image.Image, error) {
		return Solid(64, 36, level(t)), nil
	}
}

// Noise renders deterministic pseudo-random frames that differ per timestamp.
func Noise(seed uint32) FrameFunc {
	return func(t float64) (image.Image, error) {
		img := image.NewGray(image.Rect(0, 0, 64, 36))
		x := (seed ^ uint32(t*1000+1)*2654435761) | 1
		for i := range img.Pix {
			x ^= x << 13
			x ^= x >> 17
			x ^= x << 5
			img.Pix[i] = uint8(x)
		}
		return img, nil
	}
}
