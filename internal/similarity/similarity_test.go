package similarity

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func gradient(w, h int) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x * 255) / max(1, w-1))})
		}
	}
	return img
}

func TestIdenticalFramesScoreZero(t *testing.T) {
	s := New(64)
	img := gradient(160, 90)
	require.Equal(t, 0.0, s.Score(img, img))
}

func TestBlackAgainstWhite(t *testing.T) {
	s := New(32)
	score := s.Score(solid(40, 30, color.Black), solid(40, 30, color.White))
	require.InDelta(t, MaxScore, score, 1)
	require.InDelta(t, MaxScore, s.Score(solid(40, 30, color.White), solid(40, 30, color.Black)), 1)
}

func TestColorIsReducedToLuma(t *testing.T) {
	s := New(16)
	a := solid(20, 20, color.RGBA{R: 200, G: 10, B: 10, A: 255})
	b := solid(20, 20, color.Gray{Y: color.GrayModel.Convert(color.RGBA{R: 200, G: 10, B: 10, A: 255}).(color.Gray).Y})
	require.Equal(t, 0.0, s.Score(a, b))
}

func TestTargetSize(t *testing.T) {
	s := New(512)

	w, h := s.TargetSize(image.Rect(0, 0, 1920, 1080))
	require.Equal(t, 910, w)
	require.Equal(t, 512, h)

	w, _ = s.TargetSize(image.Rect(0, 0, 1, 10000))
	require.Equal(t, 1, w)

	w, h = New(0).TargetSize(image.Rect(0, 0, 100, 100))
	require.Equal(t, 512, w)
	require.Equal(t, 512, h)
}

func TestResolutionIndependent(t *testing.T) {
	s := New(36)
	small := solid(64, 36, color.Gray{Y: 100})
	large := solid(1280, 720, color.Gray{Y: 100})
	require.InDelta(t, 0, s.Score(small, large), 0.5)
	require.InDelta(t, 0, s.Score(large, small), 0.5)
}

func TestMSEMismatchedSizes(t *testing.T) {
	p := image.NewGray(image.Rect(0, 0, 4, 4))
	q := image.NewGray(image.Rect(0, 0, 4, 5))
	require.True(t, math.IsInf(MSE(p, q), 1))
	require.True(t, math.IsInf(MSE(image.NewGray(image.Rectangle{}), image.NewGray(image.Rectangle{})), 1))
}

func TestMSEKnownValue(t *testing.T) {
	p := image.NewGray(image.Rect(0, 0, 2, 1))
	q := image.NewGray(image.Rect(0, 0, 2, 1))
	p.Pix[0], p.Pix[1] = 10, 20
	q.Pix[0], q.Pix[1] = 13, 16
	// (9 + 16) / 2
	require.Equal(t, 12.5, MSE(p, q))
}

func TestPrepareSubImage(t *testing.T) {
	base := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range base.Pix {
		base.Pix[i] = uint8(i)
	}
	sub := base.SubImage(image.Rect(4, 4, 8, 8))

	g := Prepare(sub, 4, 4)
	require.Equal(t, image.Rect(0, 0, 4, 4), g.Bounds())
	require.Equal(t, uint8(36), g.Pix[0])
}
