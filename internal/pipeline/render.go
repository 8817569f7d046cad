package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/kikiluvv/clipstitch/internal/clips"
	"github.com/kikiluvv/clipstitch/internal/ffmpeg"
	"github.com/kikiluvv/clipstitch/pkg/util"
	"github.com/rs/zerolog"
)

// RenderProgress is called while a renderer works: done of total steps are
// finished and percent is how far the current step has got.
type RenderProgress func(done, total int, percent float64)

// Renderer writes the final output. Implementations must not leave a
// partial file at output when they fail.
type Renderer interface {
	// RenderSingle re-encodes one clip end to end.
	RenderSingle(ctx context.Context, clip clips.Clip, output string, progress RenderProgress) error
	// RenderSegments extracts every non-empty segment, joins them in order
	// and encodes the result. Each segment is one step.
	RenderSegments(ctx context.Context, segments []Segment, output string, progress RenderProgress) error
}

// FFmpegRenderer renders through the ffmpeg CLI.
type FFmpegRenderer struct {
	exec    *ffmpeg.Executor
	logger  zerolog.Logger
	tempDir string
	encode  ffmpeg.EncodeSettings
}

// NewFFmpegRenderer creates a renderer using tempDir for intermediate
// segment files.
func NewFFmpegRenderer(logger zerolog.Logger, exec *ffmpeg.Executor, tempDir string, encode ffmpeg.EncodeSettings) *FFmpegRenderer {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &FFmpegRenderer{
		exec:    exec,
		logger:  logger.With().Str("component", "renderer").Logger(),
		tempDir: tempDir,
		encode:  encode,
	}
}

func (r *FFmpegRenderer) RenderSingle(ctx context.Context, clip clips.Clip, output string, progress RenderProgress) error {
	// yuv420p needs even dimensions; Fit rounds them down.
	filters := ffmpeg.NewFilterBuilder().Fit(clip.Width, clip.Height).BuildAll()

	return commit(output, func(tmp string) error {
		return r.exec.Render(ctx, ffmpeg.RenderOptions{
			Input:          clip.Path,
			Output:         tmp,
			EncodeSettings: r.encode,
			Filters:        filters,
			Duration:       util.Seconds(clip.Duration),
			ProgressFunc:   forward(progress, 0, 1),
		})
	})
}

// forward adapts ffmpeg progress into a RenderProgress for step done of total.
func forward(progress RenderProgress, done, total int) ffmpeg.ProgressFunc {
	if progress == nil {
		return nil
	}
	return func(p *ffmpeg.Progress) {
		progress(done, total, p.Percentage)
	}
}

func (r *FFmpegRenderer) RenderSegments(ctx context.Context, segments []Segment, output string, progress RenderProgress) error {
	if len(segments) == 0 {
		return fmt.Errorf("no segments to render")
	}

	workDir := filepath.Join(r.tempDir, "clipstitch-"+uuid.NewString())
	if err := util.EnsureDir(workDir); err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	// Segments are conformed to the first clip so the concat demuxer can
	// copy streams without re-encoding.
	ref := segments[0].Clip
	filters := ffmpeg.NewFilterBuilder().Fit(ref.Width, ref.Height).FPS(ref.FPS).BuildAll()
	anyAudio := false
	for _, s := range segments {
		anyAudio = anyAudio || s.Clip.HasAudio
	}

	parts := make([]string, 0, len(segments))
	for i, seg := range segments {
		if seg.Empty() {
			r.logger.Warn().
				Int("segment", i).
				Str("clip", seg.Clip.Path).
				Float64("start", seg.Start).
				Float64("end", seg.End).
				Msg("skipping empty segment")
			if progress != nil {
				progress(i+1, len(segments), 0)
			}
			continue
		}

		part := filepath.Join(workDir, fmt.Sprintf("segment_%03d.mp4", i))
		err := r.exec.ExtractClip(ctx, seg.Clip.Path, ffmpeg.ClipOptions{
			Start:          util.Seconds(seg.Start),
			End:            util.Seconds(seg.End),
			Output:         part,
			EncodeSettings: r.encode,
			Filters:        filters,
			Audio:          audioMode(seg.Clip, anyAudio),
			ProgressFunc:   forward(progress, i, len(segments)),
		})
		if err != nil {
			return fmt.Errorf("%w: segment %d (%s): %w", ErrDecode, i, seg.Clip.Path, err)
		}
		parts = append(parts, part)

		if progress != nil {
			progress(i+1, len(segments), 0)
		}
	}

	if len(parts) == 0 {
		return errors.New("every segment is empty")
	}

	return commit(output, func(tmp string) error {
		return r.exec.Concat(ctx, ffmpeg.ConcatOptions{
			Inputs: parts,
			Output: tmp,
		})
	})
}

func audioMode(clip clips.Clip, anyAudio bool) ffmpeg.AudioMode {
	switch {
	case !anyAudio:
		return ffmpeg.AudioNone
	case clip.HasAudio:
		return ffmpeg.AudioKeep
	default:
		return ffmpeg.AudioSilent
	}
}

// commit runs write against a temporary sibling of output and renames it
// into place on success. On failure the temporary file is removed.
func commit(output string, write func(tmp string) error) error {
	tmp := util.SiblingTempPath(output)
	if err := write(tmp); err != nil {
		util.CleanupFiles(tmp)
		return err
	}
	if err := os.Rename(tmp, output); err != nil {
		util.CleanupFiles(tmp)
		return fmt.Errorf("move output into place: %w", err)
	}
	return nil
}
