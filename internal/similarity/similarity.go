// Package similarity measures how alike two video frames look.
//
// Frames are reduced to 8-bit luma and resized to a common size before a
// mean squared error is taken, so scores from clips of different
// resolutions are comparable. Scores range from 0 (identical) to 65025
// (black against white).
package similarity

import (
	"image"
	"image/draw"
	"math"

	"github.com/nfnt/resize"
)

// DefaultHeight is the height frames are compared at.
const DefaultHeight = 512

// MaxScore is the score of a black frame against a white one.
const MaxScore = 255 * 255

// Scorer compares frames at a fixed height.
type Scorer struct {
	Height int
}

// New returns a scorer comparing at height; non-positive uses DefaultHeight.
func New(height int) Scorer {
	if height <= 0 {
		height = DefaultHeight
	}
	return Scorer{Height: height}
}

// TargetSize returns the compare size for a frame of the given bounds:
// the scorer's height and a width that keeps the aspect ratio, at least 1.
func (s Scorer) TargetSize(bounds image.Rectangle) (int, int) {
	h := s.Height
	if h <= 0 {
		h = DefaultHeight
	}
	if bounds.Dy() <= 0 {
		return 1, h
	}
	w := int(math.Round(float64(h) * float64(bounds.Dx()) / float64(bounds.Dy())))
	return max(1, w), h
}

// Score returns the mean squared luma difference of a and b, both resized
// to the target size derived from a.
func (s Scorer) Score(a, b image.Image) float64 {
	w, h := s.TargetSize(a.Bounds())
	return MSE(Prepare(a, w, h), Prepare(b, w, h))
}

// Score compares a and b at DefaultHeight.
func Score(a, b image.Image) float64 {
	return New(DefaultHeight).Score(a, b)
}

// Prepare converts img to luma and resizes it to w×h with bilinear
// interpolation.
func Prepare(img image.Image, w, h int) *image.Gray {
	gray := toGray(img)
	if gray.Bounds().Dx() == w && gray.Bounds().Dy() == h {
		return gray
	}
	return toGray(resize.Resize(uint(w), uint(h), gray, resize.Bilinear))
}

// MSE returns the mean squared difference of two equally sized luma images.
// Mismatched or empty images score +Inf.
func MSE(p, q *image.Gray) float64 {
	pb, qb := p.Bounds(), q.Bounds()
	if pb.Dx() != qb.Dx() || pb.Dy() != qb.Dy() || pb.Empty() {
		return math.Inf(1)
	}

	var sum uint64
	for y := 0; y < pb.Dy(); y++ {
		prow := p.Pix[y*p.Stride : y*p.Stride+pb.Dx()]
		qrow := q.Pix[y*q.Stride : y*q.Stride+qb.Dx()]
		for x, pv := range prow {
			d := int(pv) - int(qrow[x])
			sum += uint64(d * d)
		}
	}
	return float64(sum) / float64(pb.Dx()*pb.Dy())
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Rect.Min == (image.Point{}) {
		return g
	}
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Bounds(), img, b.Min, draw.Src)
	return g
}
