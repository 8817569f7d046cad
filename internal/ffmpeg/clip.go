package ffmpeg

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kikiluvv/clipstitch/pkg/util"
)

// ClipOptions defines clip extraction parameters
type ClipOptions struct {
	Start  time.Duration
	End    time.Duration
	Output string
	EncodeSettings
	// Filters are applied to the video stream before encoding.
	Filters      []string
	Audio        AudioMode
	ProgressFunc ProgressFunc
}

// ExtractClip cuts [Start, End) out of input and re-encodes it.
func (e *Executor) ExtractClip(ctx context.Context, input string, opts ClipOptions) error {
	duration := opts.End - opts.Start
	if duration <= 0 {
		return fmt.Errorf("invalid clip duration: end must be after start")
	}
	if opts.Output == "" {
		return fmt.Errorf("output path is required")
	}

	e.logger.Info().
		Str("input", input).
		Str("output", opts.Output).
		Dur("start", opts.Start).
		Dur("duration", duration).
		Msg("extracting clip")

	args := buildClipArgs(input, opts)

	runOpts := RunOptions{
		Args:            args,
		Duration:        duration,
		ProgressHandler: opts.ProgressFunc,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("clip extraction")
		},
	}

	if err := e.Run(ctx, runOpts); err != nil {
		return fmt.Errorf("clip extraction failed: %w", err)
	}

	e.logger.Info().Str("output", opts.Output).Msg("clip extraction complete")
	return nil
}

// buildClipArgs seeks on the input side; with re-encoding ffmpeg decodes
// from the previous keyframe and drops frames before Start, so the cut is
// frame accurate.
func buildClipArgs(input string, opts ClipOptions) []string {
	enc := opts.EncodeSettings.withDefaults()
	duration := util.FormatDuration(opts.End - opts.Start)

	args := []string{
		"-ss", util.FormatDuration(opts.Start),
		"-t", duration,
		"-i", input,
	}

	if opts.Audio == AudioSilent {
		args = append(args,
			"-f", "lavfi",
			"-t", duration,
			"-i", fmt.Sprintf("anullsrc=channel_layout=stereo:sample_rate=%d", AudioSampleRate),
		)
	}

	if len(opts.Filters) > 0 {
		args = append(args, "-vf", strings.Join(opts.Filters, ","))
	}

	args = append(args, "-map", "0:v:0")
	switch opts.Audio {
	case AudioKeep:
		args = append(args, "-map", "0:a:0")
	case AudioSilent:
		args = append(args, "-map", "1:a:0")
	case AudioNone:
		args = append(args, "-an")
	}

	args = append(args,
		"-c:v", enc.VideoCodec,
		"-crf", strconv.Itoa(enc.CRF),
		"-preset", enc.Preset,
		"-pix_fmt", DefaultPixFmt,
	)

	if opts.Audio != AudioNone {
		args = append(args,
			"-c:a", enc.AudioCodec,
			"-ar", strconv.Itoa(AudioSampleRate),
			"-ac", strconv.Itoa(AudioChannels),
		)
	}

	return append(args, opts.Output)
}
