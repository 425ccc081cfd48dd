package stitcher

import (
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/wb-go/wbf/zlog"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/yankovsm/panorama360/internal/domain"
)

// Inputs with a smaller side below this are skipped, they carry too little
// texture for the overlap search.
const minInputDimension = 300

// ImagingStitcher is a pure-Go implementation of domain.Stitcher. Images are
// stitched left to right in submission order; there is no reordering
// fallback, so the same set in a different order may produce a different
// panorama.
type ImagingStitcher struct{}

func NewImagingStitcher() *ImagingStitcher {
	return &ImagingStitcher{}
}

func (s *ImagingStitcher) Stitch(ctx context.Context, sources []string, opts domain.GenerationOptions) (image.Image, error) {
	imgs, err := s.loadAll(ctx, sources, opts.Quality.WorkingSize())
	if err != nil {
		return nil, err
	}
	if len(imgs) < domain.MinFiles {
		zlog.Logger.Warn().
			Int("requested", len(sources)).
			Int("usable", len(imgs)).
			Msg("not enough usable images after loading")
		return nil, fmt.Errorf("%w: fewer than %d usable images could be loaded", domain.ErrStitchingFailed, domain.MinFiles)
	}

	pano, err := s.compose(ctx, imgs)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := projectEquirectangular(pano, opts.Resolution)

	zlog.Logger.Info().
		Int("inputs", len(imgs)).
		Int("width", out.Bounds().Dx()).
		Int("height", out.Bounds().Dy()).
		Str("resolution", string(opts.Resolution)).
		Msg("panorama stitched")

	return out, nil
}

// loadAll decodes and normalizes the inputs in parallel. Images that fail to
// decode or are too small are skipped; order of the survivors is preserved.
func (s *ImagingStitcher) loadAll(ctx context.Context, sources []string, workingSize int) ([]*image.NRGBA, error) {
	results := make([]*image.NRGBA, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, path := range sources {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			img, err := imaging.Open(path, imaging.AutoOrientation(true))
			if err != nil {
				zlog.Logger.Warn().Err(err).Str("path", path).Msg("skipping undecodable input")
				return nil
			}

			w := img.Bounds().Dx()
			h := img.Bounds().Dy()
			if w < minInputDimension || h < minInputDimension {
				zlog.Logger.Warn().
					Str("path", path).
					Int("width", w).
					Int("height", h).
					Msg("skipping input below minimum dimension")
				return nil
			}

			if w > workingSize || h > workingSize {
				img = imaging.Fit(img, workingSize, workingSize, imaging.Lanczos)
			}
			results[i] = imaging.Clone(img)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	loaded := make([]*image.NRGBA, 0, len(results))
	for _, img := range results {
		if img != nil {
			loaded = append(loaded, img)
		}
	}
	return loaded, nil
}

// compose aligns adjacent pairs and blends them onto one wide canvas.
func (s *ImagingStitcher) compose(ctx context.Context, imgs []*image.NRGBA) (*image.NRGBA, error) {
	height := imgs[0].Bounds().Dy()
	for _, img := range imgs[1:] {
		if h := img.Bounds().Dy(); h < height {
			height = h
		}
	}
	for i, img := range imgs {
		if img.Bounds().Dy() != height {
			imgs[i] = imaging.Resize(img, 0, height, imaging.Lanczos)
		}
	}

	overlaps := make([]int, len(imgs)-1)
	for i := 0; i < len(imgs)-1; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		overlap, score := findOverlap(imgs[i], imgs[i+1])
		zlog.Logger.Debug().
			Int("pair", i).
			Int("overlap", overlap).
			Float64("score", score).
			Msg("overlap estimated")

		if score > maxAlignScore {
			return nil, fmt.Errorf(
				"%w: no usable overlap between images %d and %d, make sure adjacent photos share visible content",
				domain.ErrStitchingFailed, i+1, i+2,
			)
		}
		overlaps[i] = overlap
	}

	canvasWidth := imgs[0].Bounds().Dx()
	for i := 1; i < len(imgs); i++ {
		canvasWidth += imgs[i].Bounds().Dx() - overlaps[i-1]
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, canvasWidth, height))
	copyInto(canvas, imgs[0], 0)

	offset := imgs[0].Bounds().Dx()
	for i := 1; i < len(imgs); i++ {
		start := offset - overlaps[i-1]
		blendInto(canvas, imgs[i], start, overlaps[i-1])
		offset = start + imgs[i].Bounds().Dx()
	}

	return canvas, nil
}

// copyInto places src onto dst starting at column x0.
func copyInto(dst *image.NRGBA, src *image.NRGBA, x0 int) {
	w := src.Bounds().Dx()
	h := src.Bounds().Dy()
	for y := 0; y < h; y++ {
		di := dst.PixOffset(x0, y)
		si := src.PixOffset(0, y)
		copy(dst.Pix[di:di+w*4], src.Pix[si:si+w*4])
	}
}

// blendInto places src at column x0, linearly feathering the first overlap
// columns against what is already on the canvas.
func blendInto(dst *image.NRGBA, src *image.NRGBA, x0, overlap int) {
	w := src.Bounds().Dx()
	h := src.Bounds().Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			si := src.PixOffset(x, y)
			di := dst.PixOffset(x0+x, y)

			if x >= overlap {
				copy(dst.Pix[di:di+4], src.Pix[si:si+4])
				continue
			}

			alpha := float64(x+1) / float64(overlap+1)
			for c := 0; c < 4; c++ {
				bg := float64(dst.Pix[di+c])
				fg := float64(src.Pix[si+c])
				dst.Pix[di+c] = uint8(bg*(1-alpha) + fg*alpha + 0.5)
			}
		}
	}
}

// projectEquirectangular scales the stitched strip onto the 2:1 target of
// the requested tier.
func projectEquirectangular(pano *image.NRGBA, resolution domain.Resolution) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, resolution.Width(), resolution.Height()))
	xdraw.CatmullRom.Scale(out, out.Bounds(), pano, pano.Bounds(), xdraw.Src, nil)
	return out
}
