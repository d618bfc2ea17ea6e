package validation

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// maxImagePixels bounds width*height to keep decoders away from decompression bombs.
const maxImagePixels = 40_000_000

// ImageInfo describes a validated upload.
type ImageInfo struct {
	Format      string
	Ext         string
	ContentType string
	Width       int
	Height      int
}

var imageTypes = map[string]struct{ ext, contentType string }{
	"gif":  {".gif", "image/gif"},
	"jpeg": {".jpg", "image/jpeg"},
	"png":  {".png", "image/png"},
	"bmp":  {".bmp", "image/bmp"},
	"webp": {".webp", "image/webp"},
}

// ErrNotImage is returned when the upload is not a decodable image.
var ErrNotImage = errors.New("upload a valid image. The file you uploaded was either not an image or a corrupted image")

// ValidateImage sniffs the image header and returns its format.
func ValidateImage(data []byte) (ImageInfo, error) {
	if len(data) == 0 {
		return ImageInfo{}, errors.New("the submitted file is empty")
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{}, ErrNotImage
	}
	t, ok := imageTypes[format]
	if !ok {
		return ImageInfo{}, ErrNotImage
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxImagePixels {
		return ImageInfo{}, fmt.Errorf("image dimensions %dx%d are not allowed", cfg.Width, cfg.Height)
	}
	return ImageInfo{
		Format:      format,
		Ext:         t.ext,
		ContentType: t.contentType,
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}
