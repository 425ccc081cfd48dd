package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"testing"
	"time"

	"github.com/yankovsm/panorama360/internal/domain"
	"github.com/yankovsm/panorama360/internal/infrastructure/workspace"
)

type fakeStitcher struct {
	img        image.Image
	err        error
	gotSources []string
}

func (f *fakeStitcher) Stitch(ctx context.Context, sources []string, opts domain.GenerationOptions) (image.Image, error) {
	f.gotSources = sources
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.img, nil
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Pix[img.PixOffset(x, y)] = uint8((x + y) % 256)
			img.Pix[img.PixOffset(x, y)+3] = 255
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func validOpts() domain.GenerationOptions {
	return domain.GenerationOptions{
		Quality:    domain.QualityMedium,
		Format:     domain.FormatJPG,
		Resolution: domain.Resolution2K,
	}
}

func newTestUsecase(t *testing.T, s domain.Stitcher, maxFiles int, maxFileSize int64) (*PanoramaUsecase, string) {
	t.Helper()
	base := t.TempDir()
	m, err := workspace.NewManager(base)
	if err != nil {
		t.Fatalf("workspace.NewManager: %v", err)
	}
	return NewPanoramaUsecase(s, m, maxFiles, maxFileSize, 5*time.Second), base
}

func inputsOf(data []byte, n int) []domain.ImageInput {
	inputs := make([]domain.ImageInput, n)
	for i := range inputs {
		inputs[i] = domain.ImageInput{
			Index:    i,
			Filename: fmt.Sprintf("img_%d.jpg", i),
			MimeType: "image/jpeg",
			Data:     data,
		}
	}
	return inputs
}

func assertEmpty(t *testing.T, base string) {
	t.Helper()
	entries, err := os.ReadDir(base)
	if err != nil {
		t.Fatalf("ReadDir(%s): %v", base, err)
	}
	if len(entries) != 0 {
		t.Errorf("temp base not empty: %d entries remain", len(entries))
	}
}

func TestGenerateSuccess(t *testing.T) {
	fake := &fakeStitcher{img: image.NewRGBA(image.Rect(0, 0, 2048, 1024))}
	u, base := newTestUsecase(t, fake, 20, 10<<20)

	data := jpegBytes(t, 320, 320)
	result, err := u.Generate(context.Background(), inputsOf(data, 2), validOpts())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.ContentType != "image/jpeg" {
		t.Errorf("ContentType = %q, want image/jpeg", result.ContentType)
	}
	if result.Width != 2048 || result.Height != 1024 {
		t.Errorf("dimensions = %dx%d, want 2048x1024", result.Width, result.Height)
	}
	if len(fake.gotSources) != 2 {
		t.Errorf("stitcher received %d sources, want 2", len(fake.gotSources))
	}

	decoded, _, err := image.Decode(bytes.NewReader(result.Data))
	if err != nil {
		t.Fatalf("result does not decode: %v", err)
	}
	if decoded.Bounds().Dx() != 2048 {
		t.Errorf("decoded width = %d, want 2048", decoded.Bounds().Dx())
	}

	assertEmpty(t, base)
}

func TestGeneratePNGOutput(t *testing.T) {
	fake := &fakeStitcher{img: image.NewRGBA(image.Rect(0, 0, 64, 32))}
	u, base := newTestUsecase(t, fake, 20, 10<<20)

	opts := validOpts()
	opts.Format = domain.FormatPNG

	result, err := u.Generate(context.Background(), inputsOf(jpegBytes(t, 320, 320), 2), opts)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.ContentType != "image/png" {
		t.Errorf("ContentType = %q, want image/png", result.ContentType)
	}
	if _, format, err := image.Decode(bytes.NewReader(result.Data)); err != nil || format != "png" {
		t.Errorf("result format = %q (err %v), want png", format, err)
	}

	assertEmpty(t, base)
}

func TestGenerateImageCountBounds(t *testing.T) {
	fake := &fakeStitcher{img: image.NewRGBA(image.Rect(0, 0, 64, 32))}
	u, base := newTestUsecase(t, fake, 20, 10<<20)
	data := jpegBytes(t, 320, 320)

	tests := []struct {
		count   int
		wantErr bool
	}{
		{0, true},
		{1, true},
		{2, false},
		{20, false},
		{21, true},
	}

	for _, test := range tests {
		_, err := u.Generate(context.Background(), inputsOf(data, test.count), validOpts())
		if test.wantErr {
			if !errors.Is(err, domain.ErrInvalidImageCount) {
				t.Errorf("count %d: expected ErrInvalidImageCount, got %v", test.count, err)
			}
		} else if err != nil {
			t.Errorf("count %d: unexpected error: %v", test.count, err)
		}
	}

	assertEmpty(t, base)
}

func TestGenerateRejectsInvalidImages(t *testing.T) {
	fake := &fakeStitcher{img: image.NewRGBA(image.Rect(0, 0, 64, 32))}
	u, base := newTestUsecase(t, fake, 20, 1024)

	good := jpegBytes(t, 48, 48)
	tooBig := jpegBytes(t, 600, 600)
	if int64(len(tooBig)) <= 1024 {
		t.Fatalf("test image unexpectedly small: %d bytes", len(tooBig))
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"oversized", tooBig},
		{"corrupt", []byte("definitely not an image")},
		{"empty", nil},
	}

	for _, test := range tests {
		images := []domain.ImageInput{
			{Index: 0, Filename: "good.jpg", Data: good},
			{Index: 1, Filename: "bad.jpg", Data: test.data},
		}
		_, err := u.Generate(context.Background(), images, validOpts())
		if !errors.Is(err, domain.ErrInvalidImage) {
			t.Errorf("%s: expected ErrInvalidImage, got %v", test.name, err)
		}
	}

	// Validation failures never create a workspace.
	assertEmpty(t, base)
}

func TestGenerateRejectsInvalidOptions(t *testing.T) {
	fake := &fakeStitcher{img: image.NewRGBA(image.Rect(0, 0, 64, 32))}
	u, base := newTestUsecase(t, fake, 20, 10<<20)

	opts := domain.GenerationOptions{Quality: "best", Format: domain.FormatJPG, Resolution: domain.Resolution2K}
	_, err := u.Generate(context.Background(), inputsOf(jpegBytes(t, 320, 320), 2), opts)
	if !errors.Is(err, domain.ErrInvalidOption) {
		t.Errorf("expected ErrInvalidOption, got %v", err)
	}
	if fake.gotSources != nil {
		t.Error("stitcher was invoked despite invalid options")
	}

	assertEmpty(t, base)
}

func TestGenerateStitchingFailureCleansUp(t *testing.T) {
	fake := &fakeStitcher{err: fmt.Errorf("%w: no overlap", domain.ErrStitchingFailed)}
	u, base := newTestUsecase(t, fake, 20, 10<<20)

	_, err := u.Generate(context.Background(), inputsOf(jpegBytes(t, 320, 320), 2), validOpts())
	if !errors.Is(err, domain.ErrStitchingFailed) {
		t.Errorf("expected ErrStitchingFailed, got %v", err)
	}

	assertEmpty(t, base)
}

func TestGenerateWrapsUnexpectedStitcherErrors(t *testing.T) {
	fake := &fakeStitcher{err: errors.New("boom")}
	u, base := newTestUsecase(t, fake, 20, 10<<20)

	_, err := u.Generate(context.Background(), inputsOf(jpegBytes(t, 320, 320), 2), validOpts())
	if !errors.Is(err, domain.ErrInternal) {
		t.Errorf("expected ErrInternal, got %v", err)
	}

	assertEmpty(t, base)
}

func TestGenerateCanceledContext(t *testing.T) {
	fake := &fakeStitcher{img: image.NewRGBA(image.Rect(0, 0, 64, 32))}
	u, base := newTestUsecase(t, fake, 20, 10<<20)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := u.Generate(ctx, inputsOf(jpegBytes(t, 320, 320), 2), validOpts())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	assertEmpty(t, base)
}

func TestSupportedOptions(t *testing.T) {
	fake := &fakeStitcher{}
	u, _ := newTestUsecase(t, fake, 20, 10485760)

	caps := u.SupportedOptions()
	if len(caps.Qualities) != 3 || len(caps.Formats) != 2 || len(caps.Resolutions) != 3 {
		t.Errorf("unexpected capability sets: %+v", caps)
	}
	if caps.Limits.MaxFiles != 20 {
		t.Errorf("MaxFiles = %d, want 20", caps.Limits.MaxFiles)
	}
	if caps.Limits.MaxFileSize != 10485760 {
		t.Errorf("MaxFileSize = %d, want 10485760", caps.Limits.MaxFileSize)
	}
}
