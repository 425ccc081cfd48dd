package dto

import "github.com/yankovsm/panorama360/internal/domain"

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SupportedFormatsResponse struct {
	Qualities         []string `json:"qualities"`
	Formats           []string `json:"formats"`
	Resolutions       []string `json:"resolutions"`
	AllowedExtensions []string `json:"allowed_extensions"`
	MaxFiles          int      `json:"max_files"`
	MaxFileSize       int64    `json:"max_file_size"`
}

func MapCapabilitiesToResponse(caps domain.Capabilities) *SupportedFormatsResponse {
	resp := &SupportedFormatsResponse{
		Qualities:         make([]string, 0, len(caps.Qualities)),
		Formats:           make([]string, 0, len(caps.Formats)),
		Resolutions:       make([]string, 0, len(caps.Resolutions)),
		AllowedExtensions: caps.AllowedExtensions,
		MaxFiles:          caps.Limits.MaxFiles,
		MaxFileSize:       caps.Limits.MaxFileSize,
	}
	for _, q := range caps.Qualities {
		resp.Qualities = append(resp.Qualities, string(q))
	}
	for _, f := range caps.Formats {
		resp.Formats = append(resp.Formats, string(f))
	}
	for _, r := range caps.Resolutions {
		resp.Resolutions = append(resp.Resolutions, string(r))
	}
	return resp
}
