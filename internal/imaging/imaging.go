// Package imaging provides image probing and thumbnail operations for
// fetched assets.
//
// Probe reads only the image header to report dimensions and format.
// Resize produces aspect-preserving thumbnails. PNG, JPEG, GIF, BMP and
// WebP are supported.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // GIF decoder registration
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	_ "golang.org/x/image/bmp" // BMP decoder registration
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// Info describes a decoded image header.
type Info struct {
	Width  int
	Height int
	Format string
}

func (i Info) String() string {
	return fmt.Sprintf("%dx%d %s", i.Width, i.Height, i.Format)
}

// Probe decodes the image header and returns its dimensions and format.
//
// Only the header is read, so probing is cheap even for large assets.
// Returns an error if the data is not a supported image format.
func Probe(data []byte) (Info, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, err
	}
	return Info{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}

// Resize scales an image down to fit within the specified maximum
// dimensions, preserving the aspect ratio. Images already within bounds
// are re-encoded without scaling.
//
// The Catmull-Rom algorithm is used for high-quality scaling and the
// result is returned as JPEG-encoded bytes.
func Resize(data []byte, maxWidth, maxHeight int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	// Calculate new dimensions maintaining aspect ratio
	if width > maxWidth || height > maxHeight {
		ratio := float64(width) / float64(height)
		if float64(maxWidth)/float64(maxHeight) > ratio {
			// Height is the limiting factor
			width = int(float64(maxHeight) * ratio)
			height = maxHeight
		} else {
			// Width is the limiting factor
			height = int(float64(maxWidth) / ratio)
			width = maxWidth
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
