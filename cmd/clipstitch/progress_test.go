package main

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/kikiluvv/clipstitch/internal/clips"
	"github.com/kikiluvv/clipstitch/internal/clips/clipstest"
	"github.com/kikiluvv/clipstitch/internal/pipeline"
	"github.com/kikiluvv/clipstitch/internal/transition"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type nopRenderer struct{}

func (nopRenderer) RenderSingle(context.Context, clips.Clip, string, pipeline.RenderProgress) error {
	return nil
}

func (nopRenderer) RenderSegments(_ context.Context, segments []pipeline.Segment, _ string, progress pipeline.RenderProgress) error {
	for i := range segments {
		progress(i+1, len(segments), 0)
	}
	return nil
}

func TestRunWithProgressDrainsEvents(t *testing.T) {
	opener := clipstest.NewOpener().
		Add(clipstest.NewSource("a.mp4", 2, clipstest.Noise(1))).
		Add(clipstest.NewSource("b.mp4", 2, clipstest.Noise(2)))

	cfg := transition.DefaultConfig()
	cfg.CompareHeight = 18
	events := make(chan pipeline.Progress)
	pipe := pipeline.New(zerolog.Nop(), opener, transition.New(zerolog.Nop(), cfg), nopRenderer{},
		pipeline.WithReporter(pipeline.ChanReporter(events)))

	res, err := runWithProgress(context.Background(), pipe, pipeline.Request{
		Clips:  []string{"a.mp4", "b.mp4"},
		Output: filepath.Join(t.TempDir(), "out.mp4"),
	}, events, false)
	require.NoError(t, err)
	require.Len(t, res.Segments, 2)
}

func TestStageBar(t *testing.T) {
	var buf bytes.Buffer
	bar := &stageBar{out: &buf}

	bar.update(pipeline.Progress{Stage: pipeline.StageAnalyzingTransitions, Total: 2})
	bar.update(pipeline.Progress{Stage: pipeline.StageAnalyzingTransitions, Index: 1, Total: 2})
	bar.update(pipeline.Progress{Stage: pipeline.StageRendering, Total: 3})
	bar.update(pipeline.Progress{Stage: pipeline.StageDone})

	require.Nil(t, bar.bar)
	require.Contains(t, buf.String(), "Finding transitions")
	require.Contains(t, buf.String(), "Rendering")
}

func TestWriteImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 3))
	dir := t.TempDir()

	pngPath := filepath.Join(dir, "thumb.png")
	require.NoError(t, writeImage(pngPath, img))
	f, err := os.Open(pngPath)
	require.NoError(t, err)
	defer f.Close()
	decoded, err := png.Decode(f)
	require.NoError(t, err)
	require.Equal(t, img.Bounds(), decoded.Bounds())

	jpgPath := filepath.Join(dir, "thumb.JPG")
	require.NoError(t, writeImage(jpgPath, img))
	data, err := os.ReadFile(jpgPath)
	require.NoError(t, err)
	require.Equal(t, []byte{0xFF, 0xD8}, data[:2])

	require.Error(t, writeImage(filepath.Join(dir, "missing", "x.png"), img))
}
