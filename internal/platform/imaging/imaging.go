// Package imaging checks that uploaded bytes really are an image before they
// reach moderation or the object store.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"

	_ "golang.org/x/image/webp"
)

// ErrUnsupportedImage is returned for payloads that are not an accepted image.
var ErrUnsupportedImage = errors.New("unsupported image")

// AllowedMIME lists the accepted sniffed content types.
var AllowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Info describes an inspected image.
type Info struct {
	MIME   string
	Format string
	Width  int
	Height int
}

// Inspect sniffs the content type from the bytes, not from client headers,
// and decodes the image header to make sure the payload is well formed.
func Inspect(data []byte) (*Info, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrUnsupportedImage)
	}

	detected := http.DetectContentType(data)
	if !AllowedMIME[detected] {
		return nil, fmt.Errorf("%w: %s (accepted: jpeg, png, gif, webp)", ErrUnsupportedImage, detected)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s header: %v", ErrUnsupportedImage, detected, err)
	}

	return &Info{
		MIME:   detected,
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}
