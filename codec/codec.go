// Package codec decodes raster images and re-encodes them into the
// service's supported output encodings.
//
// Decoding accepts jpeg, png, gif, bmp and webp streams. Encoding targets
// are jpg/jpeg (lossy), png (lossless) and webp (lossy); both lossy codecs
// use a fixed, configurable quality setting.
package codec

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/webp"
	"github.com/hazyhaar/convertd/format"

	_ "image/gif"            // register GIF decoder
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// DefaultQuality is the fixed quality applied to lossy encodes.
const DefaultQuality = 90

// Meta describes a decoded image.
type Meta struct {
	Width  int
	Height int
	// Format is the source encoding as reported by the decoder
	// ("jpeg", "png", "gif", "bmp", "webp").
	Format string
}

// Codec re-encodes raster images. The zero value uses DefaultQuality for
// both lossy targets.
type Codec struct {
	// JPEGQuality overrides the JPEG quality (1-100). 0 means DefaultQuality.
	JPEGQuality int
	// WebPQuality overrides the WebP quality (1-100). 0 means DefaultQuality.
	WebPQuality int
}

// Decode parses an image byte stream regardless of its source encoding.
func (c *Codec) Decode(data []byte) (image.Image, Meta, error) {
	img, name, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, Meta{}, fmt.Errorf("codec: decode: %w", err)
	}
	b := img.Bounds()
	return img, Meta{Width: b.Dx(), Height: b.Dy(), Format: name}, nil
}

// Encode serializes img into the target format. Unsupported targets fail.
func (c *Codec) Encode(img image.Image, target format.ID) ([]byte, error) {
	// Lossy codecs reject 16-bit and exotic color models;
	// normalize to 8-bit NRGBA first.
	flat := imaging.Clone(img)

	var buf bytes.Buffer
	switch target {
	case format.JPG, format.JPEG:
		if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: c.jpegQuality()}); err != nil {
			return nil, fmt.Errorf("codec: encode jpeg: %w", err)
		}
	case format.PNG:
		if err := png.Encode(&buf, flat); err != nil {
			return nil, fmt.Errorf("codec: encode png: %w", err)
		}
	case format.WebP:
		if err := webp.Encode(&buf, flat, webp.Options{Quality: c.webpQuality()}); err != nil {
			return nil, fmt.Errorf("codec: encode webp: %w", err)
		}
	default:
		return nil, fmt.Errorf("codec: unsupported encode target %q", target)
	}
	return buf.Bytes(), nil
}

// Reencode decodes data and encodes it into the target format.
func (c *Codec) Reencode(data []byte, target format.ID) ([]byte, error) {
	img, _, err := c.Decode(data)
	if err != nil {
		return nil, err
	}
	return c.Encode(img, target)
}

func (c *Codec) jpegQuality() int {
	if c.JPEGQuality > 0 {
		return c.JPEGQuality
	}
	return DefaultQuality
}

func (c *Codec) webpQuality() int {
	if c.WebPQuality > 0 {
		return c.WebPQuality
	}
	return DefaultQuality
}
