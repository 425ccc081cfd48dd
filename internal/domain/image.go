package domain

// ImageInput is a single uploaded source image. Index is its position in the
// submitted set; inputs are stitched in submission order.
type ImageInput struct {
	Index    int
	Filename string
	MimeType string
	Data     []byte
}

// PanoramaResult holds the finished panorama. It is returned directly as the
// response body; nothing is persisted between requests.
type PanoramaResult struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}
