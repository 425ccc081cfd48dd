package domain

import "fmt"

type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

type Format string

const (
	FormatJPG Format = "jpg"
	FormatPNG Format = "png"
)

type Resolution string

const (
	Resolution2K Resolution = "2K"
	Resolution4K Resolution = "4K"
	Resolution8K Resolution = "8K"
)

const (
	DefaultQuality    = QualityMedium
	DefaultFormat     = FormatJPG
	DefaultResolution = Resolution2K
)

func ParseQuality(s string) (Quality, error) {
	switch Quality(s) {
	case QualityLow, QualityMedium, QualityHigh:
		return Quality(s), nil
	}
	return "", fmt.Errorf("%w: quality must be one of: low, medium, high, got %q", ErrInvalidOption, s)
}

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJPG, FormatPNG:
		return Format(s), nil
	}
	return "", fmt.Errorf("%w: format must be one of: jpg, png, got %q", ErrInvalidOption, s)
}

func ParseResolution(s string) (Resolution, error) {
	switch Resolution(s) {
	case Resolution2K, Resolution4K, Resolution8K:
		return Resolution(s), nil
	}
	return "", fmt.Errorf("%w: resolution must be one of: 2K, 4K, 8K, got %q", ErrInvalidOption, s)
}

// WorkingSize is the maximum dimension source images are scaled down to
// before alignment. Larger inputs cost quadratic time in the overlap search.
func (q Quality) WorkingSize() int {
	switch q {
	case QualityLow:
		return 600
	case QualityHigh:
		return 1200
	default:
		return 800
	}
}

func (q Quality) JPEGQuality() int {
	switch q {
	case QualityLow:
		return 75
	case QualityHigh:
		return 95
	default:
		return 85
	}
}

func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/jpeg"
}

func (f Format) Ext() string {
	return "." + string(f)
}

// Width and Height describe the equirectangular target, always 2:1.
func (r Resolution) Width() int {
	switch r {
	case Resolution4K:
		return 4096
	case Resolution8K:
		return 8192
	default:
		return 2048
	}
}

func (r Resolution) Height() int {
	return r.Width() / 2
}

func Qualities() []Quality {
	return []Quality{QualityLow, QualityMedium, QualityHigh}
}

func Formats() []Format {
	return []Format{FormatJPG, FormatPNG}
}

func Resolutions() []Resolution {
	return []Resolution{Resolution2K, Resolution4K, Resolution8K}
}

// GenerationOptions is an immutable value object describing one generation
// request. Construct it through the Parse functions; a zero value is invalid.
type GenerationOptions struct {
	Quality    Quality
	Format     Format
	Resolution Resolution
}

func (o GenerationOptions) Validate() error {
	if _, err := ParseQuality(string(o.Quality)); err != nil {
		return err
	}
	if _, err := ParseFormat(string(o.Format)); err != nil {
		return err
	}
	if _, err := ParseResolution(string(o.Resolution)); err != nil {
		return err
	}
	return nil
}
