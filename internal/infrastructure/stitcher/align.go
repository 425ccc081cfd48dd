package stitcher

import "image"

// maxAlignScore is the normalized mean squared luminance difference above
// which a candidate overlap is considered noise rather than shared content.
const maxAlignScore = 0.08

const (
	minOverlapFrac = 0.08
	maxOverlapFrac = 0.75
	minOverlapPx   = 16
)

// findOverlap estimates how many columns of b repeat the right edge of a.
// It slides b over a's right side and scores each candidate overlap by the
// mean squared difference of luminance, sampled on a coarse grid. Returns
// the best overlap width and its score in [0,1].
func findOverlap(a, b *image.NRGBA) (int, float64) {
	wa := a.Bounds().Dx()
	wb := b.Bounds().Dx()
	h := a.Bounds().Dy()
	if bh := b.Bounds().Dy(); bh < h {
		h = bh
	}

	maxOverlap := int(float64(min(wa, wb)) * maxOverlapFrac)
	minOverlap := int(float64(min(wa, wb)) * minOverlapFrac)
	if minOverlap < minOverlapPx {
		minOverlap = minOverlapPx
	}
	if maxOverlap <= minOverlap {
		maxOverlap = minOverlap + 1
	}

	rowStep := h / 64
	if rowStep < 1 {
		rowStep = 1
	}
	colStep := 2

	bestOverlap := minOverlap
	bestScore := 1.0

	for overlap := minOverlap; overlap <= maxOverlap; overlap++ {
		var sum float64
		var n int
		for y := 0; y < h; y += rowStep {
			for x := 0; x < overlap; x += colStep {
				la := luminance(a, wa-overlap+x, y)
				lb := luminance(b, x, y)
				d := la - lb
				sum += d * d
				n++
			}
		}
		if n == 0 {
			continue
		}
		score := sum / float64(n)
		if score < bestScore {
			bestScore = score
			bestOverlap = overlap
		}
	}

	return bestOverlap, bestScore
}

// luminance returns the Rec. 601 luma of a pixel, scaled to [0,1].
func luminance(img *image.NRGBA, x, y int) float64 {
	i := img.PixOffset(x, y)
	r := float64(img.Pix[i])
	g := float64(img.Pix[i+1])
	b := float64(img.Pix[i+2])
	return (0.299*r + 0.587*g + 0.114*b) / 255.0
}
