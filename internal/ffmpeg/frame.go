package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"time"

	"github.com/kikiluvv/clipstitch/pkg/util"
)

// ErrNoFrame is returned when ffmpeg exits cleanly but produces no picture,
// which happens when seeking at or past the last frame of a stream.
var ErrNoFrame = errors.New("no frame decoded")

// ExtractFrame decodes the frame shown at timestamp in input.
// The frame is piped out as PNG so no temporary files are involved.
func (e *Executor) ExtractFrame(ctx context.Context, input string, timestamp time.Duration) (image.Image, error) {
	if input == "" {
		return nil, fmt.Errorf("input path is required")
	}

	args := []string{
		"-ss", util.FormatDuration(timestamp),
		"-i", input,
		"-map", "0:v:0",
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	}

	out, err := e.Output(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("extract frame at %s: %w", util.FormatDuration(timestamp), err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("extract frame at %s: %w", util.FormatDuration(timestamp), ErrNoFrame)
	}

	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("decode frame at %s: %w", util.FormatDuration(timestamp), err)
	}
	return img, nil
}

// FirstFrame returns the first decodable frame of input, or nil when the
// file cannot be opened or yields no frames.
func (e *Executor) FirstFrame(ctx context.Context, input string) image.Image {
	img, err := e.ExtractFrame(ctx, input, 0)
	if err != nil {
		e.logger.Debug().Err(err).Str("input", input).Msg("no first frame")
		return nil
	}
	return img
}
