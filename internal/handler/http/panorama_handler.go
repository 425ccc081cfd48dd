package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/yankovsm/panorama360/internal/domain"
	"github.com/yankovsm/panorama360/internal/dto"
)

type PanoramaHandler struct {
	service     domain.PanoramaService
	maxFiles    int
	maxFileSize int64
	debug       bool
}

func NewPanoramaHandler(service domain.PanoramaService, maxFiles int, maxFileSize int64, debug bool) *PanoramaHandler {
	return &PanoramaHandler{
		service:     service,
		maxFiles:    maxFiles,
		maxFileSize: maxFileSize,
		debug:       debug,
	}
}

func (h *PanoramaHandler) RegisterRoutes(engine *ginext.Engine) {
	engine.POST("/api/v1/generate-360", h.Generate360)
	engine.GET("/api/v1/supported-formats", h.SupportedFormats)
}

// Generate360 POST /api/v1/generate-360
func (h *PanoramaHandler) Generate360(c *ginext.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to parse multipart form")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: "Request body must be multipart/form-data with repeated 'images' parts",
		})
		return
	}

	files := form.File["images"]
	if len(files) < domain.MinFiles || len(files) > h.maxFiles {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_image_count",
			Message: fmt.Sprintf("Between %d and %d images are required, got %d", domain.MinFiles, h.maxFiles, len(files)),
		})
		return
	}

	req := dto.GenerateRequest{
		Quality:    c.PostForm("quality"),
		Format:     c.PostForm("format"),
		Resolution: c.PostForm("resolution"),
	}
	opts, err := req.ToOptions()
	if err != nil {
		h.writeError(c, err)
		return
	}

	inputs := make([]domain.ImageInput, 0, len(files))
	for i, fh := range files {
		if fh.Size > h.maxFileSize {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "invalid_image",
				Message: fmt.Sprintf("File %s exceeds the maximum allowed size of %d bytes", fh.Filename, h.maxFileSize),
			})
			return
		}

		file, err := fh.Open()
		if err != nil {
			zlog.Logger.Error().Err(err).Str("filename", fh.Filename).Msg("failed to open uploaded file")
			h.writeError(c, domain.ErrInternal)
			return
		}

		data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
		file.Close()
		if err != nil {
			zlog.Logger.Error().Err(err).Str("filename", fh.Filename).Msg("failed to read uploaded file")
			h.writeError(c, domain.ErrInternal)
			return
		}
		if int64(len(data)) > h.maxFileSize {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "invalid_image",
				Message: fmt.Sprintf("File %s exceeds the maximum allowed size of %d bytes", fh.Filename, h.maxFileSize),
			})
			return
		}

		inputs = append(inputs, domain.ImageInput{
			Index:    i,
			Filename: fh.Filename,
			MimeType: fh.Header.Get("Content-Type"),
			Data:     data,
		})
	}

	result, err := h.service.Generate(c.Request.Context(), inputs, opts)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=panorama_360%s", opts.Format.Ext()))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

// SupportedFormats GET /api/v1/supported-formats
func (h *PanoramaHandler) SupportedFormats(c *ginext.Context) {
	caps := h.service.SupportedOptions()
	c.JSON(http.StatusOK, dto.MapCapabilitiesToResponse(caps))
}

func (h *PanoramaHandler) writeError(c *ginext.Context, err error) {
	kind := "internal_error"
	status := http.StatusInternalServerError
	generic := "An internal error occurred"

	switch {
	case errors.Is(err, domain.ErrInvalidImageCount):
		kind, status = "invalid_image_count", http.StatusBadRequest
		generic = "Invalid number of images"
	case errors.Is(err, domain.ErrInvalidImage):
		kind, status = "invalid_image", http.StatusBadRequest
		generic = "One of the uploaded files is not a valid image"
	case errors.Is(err, domain.ErrInvalidOption):
		kind, status = "invalid_option", http.StatusBadRequest
		generic = "One of the generation options is not supported"
	case errors.Is(err, domain.ErrStitchingFailed):
		kind, status = "stitching_failed", http.StatusUnprocessableEntity
		generic = "Could not stitch the images into a panorama, make sure adjacent photos overlap"
	case errors.Is(err, context.Canceled):
		// Client is gone, nothing useful to write.
		zlog.Logger.Warn().Str("path", c.Request.URL.Path).Msg("request canceled by client")
		c.Status(499)
		return
	}

	message := generic
	// Validation messages are always safe to return; internal detail only in debug.
	if status != http.StatusInternalServerError || h.debug {
		message = err.Error()
	}

	if status == http.StatusInternalServerError {
		zlog.Logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}

	c.JSON(status, dto.ErrorResponse{
		Error:   kind,
		Message: message,
	})
}
