package assets

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format

	_ "golang.org/x/image/webp" // Register WebP format
)

// FetchImage fetches an image asset and decodes it.
// Supported formats: JPEG, PNG, GIF, WebP.
func FetchImage(ctx context.Context, source string, opts Options) (image.Image, error) {
	data, err := Fetch(ctx, source, opts)
	if err != nil {
		return nil, err
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image (format: %s): %w", format, err)
	}

	return img, nil
}

// FetchImage fetches and decodes an image asset using the client's options.
func (c *Client) FetchImage(ctx context.Context, source string) (image.Image, error) {
	return FetchImage(ctx, source, c.opts)
}
