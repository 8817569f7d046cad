package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kikiluvv/clipstitch/internal/clips"
	"github.com/kikiluvv/clipstitch/internal/config"
	"github.com/kikiluvv/clipstitch/internal/ffmpeg"
	"github.com/kikiluvv/clipstitch/internal/logging"
	"github.com/kikiluvv/clipstitch/internal/metrics"
	"github.com/kikiluvv/clipstitch/internal/pipeline"
	"github.com/kikiluvv/clipstitch/internal/transition"
	"github.com/kikiluvv/clipstitch/pkg/util"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var stitchFlags struct {
	output      string
	window      float64
	workers     int
	metricsAddr string
	noProgress  bool
}

var stitchCmd = &cobra.Command{
	Use:   "stitch [clips...]",
	Short: "Stitch clips into one video",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if cmd.Flags().Changed("window") {
			cfg.Search.Window = stitchFlags.window
		}
		if cmd.Flags().Changed("workers") {
			cfg.Workers = stitchFlags.workers
		}
		if stitchFlags.metricsAddr != "" {
			cfg.Metrics.Addr = stitchFlags.metricsAddr
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		if cfg.Metrics.Addr != "" {
			metrics.StartServer(ctx, cfg.Metrics.Addr, logging.WithComponent("metrics"))
		}

		events := make(chan pipeline.Progress, 16)
		reporter := pipeline.MultiReporter{
			pipeline.LogReporter{Logger: log.Logger},
			pipeline.ChanReporter(events),
		}

		pipe, err := newPipeline(cfg, reporter)
		if err != nil {
			return err
		}

		req := pipeline.Request{
			Clips:  args,
			Output: stitchFlags.output,
			Window: cfg.Search.Window,
		}

		res, err := runWithProgress(ctx, pipe, req, events, !stitchFlags.noProgress)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Warn().Msg("stitch cancelled")
			}
			return err
		}

		for i, tr := range res.Transitions {
			event := log.Info()
			if tr.LowConfidence {
				event = log.Warn()
			}
			event.
				Int("pair", i).
				Str("cut_a", util.FormatDuration(util.Seconds(tr.CutA))).
				Str("start_b", util.FormatDuration(util.Seconds(tr.StartB))).
				Float64("score", tr.Score).
				Bool("low_confidence", tr.LowConfidence).
				Msg("transition")
		}

		log.Info().
			Str("output", res.Output).
			Str("duration", util.FormatDuration(util.Seconds(res.Duration))).
			Msg("stitch complete")
		return nil
	},
}

func init() {
	stitchCmd.Flags().StringVarP(&stitchFlags.output, "output", "o", "stitched.mp4", "output video path")
	stitchCmd.Flags().Float64Var(&stitchFlags.window, "window", 2.0, "seconds searched at each side of a transition")
	stitchCmd.Flags().IntVar(&stitchFlags.workers, "workers", 0, "concurrent frame comparisons (default from config)")
	stitchCmd.Flags().StringVar(&stitchFlags.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address while stitching")
	stitchCmd.Flags().BoolVar(&stitchFlags.noProgress, "no-progress", false, "disable the progress bar")
}

func newExecutor(cfg *config.Config) (*ffmpeg.Executor, error) {
	exec, err := ffmpeg.New(log.Logger, ffmpeg.Options{
		FFmpegPath:  cfg.FFmpeg.BinaryPath,
		FFprobePath: cfg.FFmpeg.ProbePath,
		Threads:     cfg.FFmpeg.Threads,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ffmpeg: %w", err)
	}
	return exec, nil
}

func newPipeline(cfg *config.Config, reporter pipeline.Reporter) (*pipeline.Pipeline, error) {
	exec, err := newExecutor(cfg)
	if err != nil {
		return nil, err
	}

	finder := transition.New(log.Logger, transition.Config{
		Window:        cfg.Search.Window,
		SampleRate:    cfg.Search.SampleRate,
		Epsilon:       cfg.Search.Epsilon,
		CompareHeight: cfg.Search.CompareHeight,
		Workers:       cfg.Workers,
	})

	renderer := pipeline.NewFFmpegRenderer(log.Logger, exec, cfg.TempDir, ffmpeg.EncodeSettings{
		VideoCodec: cfg.FFmpeg.VideoCodec,
		AudioCodec: cfg.FFmpeg.AudioCodec,
		CRF:        cfg.FFmpeg.CRF,
		Preset:     cfg.FFmpeg.Preset,
	})

	return pipeline.New(log.Logger, clips.NewFFmpegOpener(log.Logger, exec), finder, renderer,
		pipeline.WithReporter(reporter)), nil
}
