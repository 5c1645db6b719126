package convert

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	_ "image/gif" // register decoders
)

// ImageConverter implements Converter with the standard library codecs.
// It decodes JPEG, PNG and GIF input and re-encodes to the requested format.
type ImageConverter struct{}

// NewImageConverter returns a stateless, concurrency-safe converter.
func NewImageConverter() *ImageConverter {
	return &ImageConverter{}
}

// Convert decodes input and re-encodes it per opts.
func (c *ImageConverter) Convert(ctx context.Context, input []byte, opts Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, format, err := image.Decode(bytes.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrConversion, format, err)
	}

	var buf bytes.Buffer
	switch opts.Format {
	case "jpeg":
		quality := opts.Quality
		if quality <= 0 || quality > 100 {
			quality = jpeg.DefaultQuality
		}
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	case "png":
		err = png.Encode(&buf, img)
	default:
		return nil, fmt.Errorf("%w: unsupported output format %q", ErrConversion, opts.Format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: encode %s: %v", ErrConversion, opts.Format, err)
	}

	return buf.Bytes(), nil
}
