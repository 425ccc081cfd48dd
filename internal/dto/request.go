package dto

import "github.com/yankovsm/panorama360/internal/domain"

// GenerateRequest carries the raw form fields of a generation request.
// Empty fields fall back to the documented defaults; present but unknown
// values are rejected, never coerced.
type GenerateRequest struct {
	Quality    string `form:"quality"`
	Format     string `form:"format"`
	Resolution string `form:"resolution"`
}

func (r *GenerateRequest) ToOptions() (domain.GenerationOptions, error) {
	if r.Quality == "" {
		r.Quality = string(domain.DefaultQuality)
	}
	if r.Format == "" {
		r.Format = string(domain.DefaultFormat)
	}
	if r.Resolution == "" {
		r.Resolution = string(domain.DefaultResolution)
	}

	quality, err := domain.ParseQuality(r.Quality)
	if err != nil {
		return domain.GenerationOptions{}, err
	}
	format, err := domain.ParseFormat(r.Format)
	if err != nil {
		return domain.GenerationOptions{}, err
	}
	resolution, err := domain.ParseResolution(r.Resolution)
	if err != nil {
		return domain.GenerationOptions{}, err
	}

	return domain.GenerationOptions{
		Quality:    quality,
		Format:     format,
		Resolution: resolution,
	}, nil
}
