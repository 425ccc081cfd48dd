package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	// Input sniffing accepts everything the upload surface allows.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/disintegration/imaging"
	"github.com/wb-go/wbf/zlog"

	"github.com/yankovsm/panorama360/internal/domain"
	"github.com/yankovsm/panorama360/internal/infrastructure/workspace"
)

// PanoramaUsecase validates a generation request, spills the inputs into a
// per-request workspace, runs the stitcher under the processing timeout and
// encodes the result. The workspace is released on every exit path.
type PanoramaUsecase struct {
	stitcher    domain.Stitcher
	workspaces  *workspace.Manager
	maxFiles    int
	maxFileSize int64
	timeout     time.Duration
}

func NewPanoramaUsecase(
	stitcher domain.Stitcher,
	workspaces *workspace.Manager,
	maxFiles int,
	maxFileSize int64,
	timeout time.Duration,
) *PanoramaUsecase {
	return &PanoramaUsecase{
		stitcher:    stitcher,
		workspaces:  workspaces,
		maxFiles:    maxFiles,
		maxFileSize: maxFileSize,
		timeout:     timeout,
	}
}

func (u *PanoramaUsecase) Generate(
	ctx context.Context,
	images []domain.ImageInput,
	opts domain.GenerationOptions,
) (*domain.PanoramaResult, error) {
	// Preconditions run before any workspace is allocated.
	if len(images) < domain.MinFiles || len(images) > u.maxFiles {
		return nil, fmt.Errorf(
			"%w: expected between %d and %d images, got %d",
			domain.ErrInvalidImageCount, domain.MinFiles, u.maxFiles, len(images),
		)
	}

	formats := make([]string, len(images))
	for i, in := range images {
		size := int64(len(in.Data))
		if size == 0 {
			return nil, fmt.Errorf("%w: image %d (%s) is empty", domain.ErrInvalidImage, i+1, in.Filename)
		}
		if size > u.maxFileSize {
			return nil, fmt.Errorf(
				"%w: image %d (%s) is %d bytes, maximum allowed is %d",
				domain.ErrInvalidImage, i+1, in.Filename, size, u.maxFileSize,
			)
		}

		cfg, format, err := image.DecodeConfig(bytes.NewReader(in.Data))
		if err != nil {
			return nil, fmt.Errorf("%w: image %d (%s) could not be decoded", domain.ErrInvalidImage, i+1, in.Filename)
		}
		if cfg.Width < 1 || cfg.Height < 1 {
			return nil, fmt.Errorf("%w: image %d (%s) has no pixels", domain.ErrInvalidImage, i+1, in.Filename)
		}
		formats[i] = format
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	ws, err := u.workspaces.Acquire()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}
	defer ws.Release()

	sources := make([]string, len(images))
	for i, in := range images {
		path, err := ws.SaveInput(i, extForFormat(formats[i]), in.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
		}
		sources[i] = path
	}

	zlog.Logger.Info().
		Str("workspace_id", ws.ID()).
		Int("images", len(images)).
		Str("quality", string(opts.Quality)).
		Str("format", string(opts.Format)).
		Str("resolution", string(opts.Resolution)).
		Msg("starting panorama generation")

	sctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	img, err := u.stitcher.Stitch(sctx, sources, opts)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrStitchingFailed):
			return nil, err
		case errors.Is(err, context.DeadlineExceeded):
			zlog.Logger.Error().Str("workspace_id", ws.ID()).Dur("timeout", u.timeout).Msg("processing timed out")
			return nil, fmt.Errorf("%w: processing timed out after %s", domain.ErrInternal, u.timeout)
		case errors.Is(err, context.Canceled):
			zlog.Logger.Warn().Str("workspace_id", ws.ID()).Msg("generation canceled")
			return nil, err
		default:
			zlog.Logger.Error().Err(err).Str("workspace_id", ws.ID()).Msg("stitching failed unexpectedly")
			return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
		}
	}

	width := img.Bounds().Dx()
	height := img.Bounds().Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: stitcher produced an empty image", domain.ErrInternal)
	}

	var buf bytes.Buffer
	if opts.Format == domain.FormatPNG {
		err = imaging.Encode(&buf, img, imaging.PNG)
	} else {
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(opts.Quality.JPEGQuality()))
	}
	if err != nil {
		zlog.Logger.Error().Err(err).Str("workspace_id", ws.ID()).Msg("failed to encode panorama")
		return nil, fmt.Errorf("%w: encode panorama: %v", domain.ErrInternal, err)
	}

	zlog.Logger.Info().
		Str("workspace_id", ws.ID()).
		Int("width", width).
		Int("height", height).
		Int("bytes", buf.Len()).
		Msg("panorama generated successfully")

	return &domain.PanoramaResult{
		Data:        buf.Bytes(),
		ContentType: opts.Format.ContentType(),
		Width:       width,
		Height:      height,
	}, nil
}

func (u *PanoramaUsecase) SupportedOptions() domain.Capabilities {
	return domain.Capabilities{
		Qualities:         domain.Qualities(),
		Formats:           domain.Formats(),
		Resolutions:       domain.Resolutions(),
		AllowedExtensions: domain.AllowedExtensions,
		Limits: domain.Limits{
			MaxFiles:    u.maxFiles,
			MaxFileSize: u.maxFileSize,
		},
	}
}

func extForFormat(format string) string {
	switch format {
	case "png":
		return ".png"
	case "tiff":
		return ".tiff"
	case "webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
