package clips

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/kikiluvv/clipstitch/internal/ffmpeg"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestClampTime(t *testing.T) {
	c := Clip{Duration: 3}
	require.Equal(t, 0.0, c.ClampTime(-1))
	require.Equal(t, 1.5, c.ClampTime(1.5))
	require.InDelta(t, 2.99, c.ClampTime(3), 1e-9)
	require.InDelta(t, 2.99, c.ClampTime(10), 1e-9)

	tiny := Clip{Duration: 0.005}
	require.Equal(t, 0.0, tiny.SafeEnd())
	require.Equal(t, 0.0, tiny.ClampTime(1))
}

func TestClipFromInfo(t *testing.T) {
	_, err := clipFromInfo("a.mp4", &ffmpeg.VideoInfo{HasAudio: true, Duration: time.Second})
	require.ErrorContains(t, err, "no video stream")

	_, err = clipFromInfo("a.mp4", &ffmpeg.VideoInfo{HasVideo: true})
	require.ErrorContains(t, err, "zero duration")

	c, err := clipFromInfo("a.mp4", &ffmpeg.VideoInfo{
		HasVideo: true,
		HasAudio: true,
		Duration: 2500 * time.Millisecond,
		FPS:      25,
		Width:    320,
		Height:   240,
	})
	require.NoError(t, err)
	require.Equal(t, Clip{Path: "a.mp4", Duration: 2.5, FPS: 25, Width: 320, Height: 240, HasAudio: true}, c)
}

func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH - install with: brew install ffmpeg")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not found in PATH - install with: brew install ffmpeg")
	}
}

func TestFFmpegSource(t *testing.T) {
	skipIfNoFFmpeg(t)

	path := filepath.Join(t.TempDir(), "src.mp4")
	out, err := exec.Command("ffmpeg", "-y", "-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", "testsrc=duration=2:size=160x120:rate=25",
		"-pix_fmt", "yuv420p", path).CombinedOutput()
	if err != nil {
		t.Skipf("could not generate test video: %v\n%s", err, out)
	}

	logger := zerolog.New(os.Stderr).Level(zerolog.WarnLevel)
	exec, err := ffmpeg.New(logger, ffmpeg.Options{})
	require.NoError(t, err)

	ctx := context.Background()
	opener := NewFFmpegOpener(logger, exec)

	_, err = opener.Open(ctx, filepath.Join(t.TempDir(), "missing.mp4"))
	require.Error(t, err)

	src, err := opener.Open(ctx, path)
	require.NoError(t, err)
	require.InDelta(t, 2.0, src.Clip().Duration, 0.1)
	require.Equal(t, 160, src.Clip().Width)
	require.False(t, src.Clip().HasAudio)

	img, err := src.FrameAt(ctx, 0.5)
	require.NoError(t, err)
	require.Equal(t, 160, img.Bounds().Dx())

	require.NoError(t, src.Close())
	_, err = src.FrameAt(ctx, 0)
	require.True(t, errors.Is(err, ErrClosed))
	require.ErrorIs(t, src.Close(), ErrClosed)
}
