package domain

import (
	"context"
	"image"
)

// MinFiles is the smallest set a panorama can be stitched from.
const MinFiles = 2

// AllowedExtensions are the upload extensions accepted for input images.
var AllowedExtensions = []string{".jpg", ".jpeg", ".png", ".tiff", ".webp"}

type Limits struct {
	MaxFiles    int
	MaxFileSize int64
}

// Capabilities enumerates the option value sets and the current limits.
type Capabilities struct {
	Qualities         []Quality
	Formats           []Format
	Resolutions       []Resolution
	AllowedExtensions []string
	Limits            Limits
}

type PanoramaService interface {
	Generate(ctx context.Context, images []ImageInput, opts GenerationOptions) (*PanoramaResult, error)
	SupportedOptions() Capabilities
}

// Stitcher aligns and blends the images stored at sources into a single
// equirectangular panorama. Implementations must honor ctx cancellation and
// must not retain any state between calls.
type Stitcher interface {
	Stitch(ctx context.Context, sources []string, opts GenerationOptions) (image.Image, error)
}
