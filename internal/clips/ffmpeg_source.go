package clips

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/kikiluvv/clipstitch/internal/ffmpeg"
	"github.com/kikiluvv/clipstitch/internal/metrics"
	"github.com/kikiluvv/clipstitch/pkg/util"
	"github.com/rs/zerolog"
)

// FFmpegOpener opens clips by probing them with ffprobe and decoding
// individual frames through ffmpeg.
type FFmpegOpener struct {
	exec   *ffmpeg.Executor
	logger zerolog.Logger
}

// NewFFmpegOpener creates an opener backed by exec.
func NewFFmpegOpener(logger zerolog.Logger, exec *ffmpeg.Executor) *FFmpegOpener {
	return &FFmpegOpener{
		exec:   exec,
		logger: logger.With().Str("component", "clips").Logger(),
	}
}

// Open probes path and returns a Source for it.
func (o *FFmpegOpener) Open(ctx context.Context, path string) (Source, error) {
	if !util.FileExists(path) {
		return nil, fmt.Errorf("open %s: file does not exist", path)
	}

	info, err := o.exec.ProbeVideo(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	clip, err := clipFromInfo(path, info)
	if err != nil {
		return nil, err
	}

	o.logger.Debug().
		Str("path", path).
		Float64("duration", clip.Duration).
		Float64("fps", clip.FPS).
		Int("width", clip.Width).
		Int("height", clip.Height).
		Bool("audio", clip.HasAudio).
		Msg("clip opened")

	return &ffmpegSource{exec: o.exec, clip: clip}, nil
}

func clipFromInfo(path string, info *ffmpeg.VideoInfo) (Clip, error) {
	if !info.HasVideo {
		return Clip{}, fmt.Errorf("open %s: no video stream", path)
	}
	if info.Duration <= 0 {
		return Clip{}, fmt.Errorf("open %s: unknown or zero duration", path)
	}
	return Clip{
		Path:     path,
		Duration: info.Duration.Seconds(),
		FPS:      info.FPS,
		Width:    info.Width,
		Height:   info.Height,
		HasAudio: info.HasAudio,
	}, nil
}

type ffmpegSource struct {
	exec *ffmpeg.Executor
	clip Clip

	mu     sync.Mutex
	closed bool
}

func (s *ffmpegSource) Clip() Clip { return s.clip }

func (s *ffmpegSource) FrameAt(ctx context.Context, t float64) (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	img, err := s.exec.ExtractFrame(ctx, s.clip.Path, util.Seconds(s.clip.ClampTime(t)))
	if err != nil {
		return nil, err
	}
	metrics.FramesDecodedTotal.Inc()
	return img, nil
}

func (s *ffmpegSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	return nil
}
