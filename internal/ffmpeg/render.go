package ffmpeg

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Render re-encodes a whole input end to end with the given options.
func (e *Executor) Render(ctx context.Context, opts RenderOptions) error {
	if err := validateRenderOptions(opts); err != nil {
		return fmt.Errorf("invalid render options: %w", err)
	}

	e.logger.Info().
		Str("input", opts.Input).
		Str("output", opts.Output).
		Msg("starting render")

	runOpts := RunOptions{
		Args:            buildRenderArgs(opts),
		Duration:        opts.Duration,
		ProgressHandler: opts.ProgressFunc,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("render output")
		},
	}

	if err := e.Run(ctx, runOpts); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	e.logger.Info().Str("output", opts.Output).Msg("render completed")
	return nil
}

func buildRenderArgs(opts RenderOptions) []string {
	enc := opts.EncodeSettings.withDefaults()

	args := []string{"-i", opts.Input}

	if len(opts.Filters) > 0 {
		args = append(args, "-vf", strings.Join(opts.Filters, ","))
	}

	// Optional audio map keeps silent inputs renderable
	args = append(args, "-map", "0:v:0", "-map", "0:a:0?")

	args = append(args,
		"-c:v", enc.VideoCodec,
		"-crf", strconv.Itoa(enc.CRF),
		"-preset", enc.Preset,
		"-pix_fmt", DefaultPixFmt,
		"-c:a", enc.AudioCodec,
	)

	if isMP4Family(opts.Output) {
		args = append(args, "-movflags", "+faststart")
	}

	return append(args, opts.Output)
}

// validateRenderOptions validates the render options
func validateRenderOptions(opts RenderOptions) error {
	if opts.Input == "" {
		return fmt.Errorf("input path is required")
	}
	if opts.Output == "" {
		return fmt.Errorf("output path is required")
	}
	if opts.CRF < 0 || opts.CRF > 51 {
		return fmt.Errorf("CRF must be between 0 and 51")
	}
	return nil
}
