// Package compose builds paginated PDF documents from a single raster image
// or from reflowed plain text.
//
// All documents use a fixed A4-equivalent page of 595x842 points. Image
// pages embed the source raster scaled down to fit the page box; text pages
// lay out input lines verbatim at a fixed font size, allocating new pages
// as vertical space runs out.
package compose

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/hazyhaar/convertd/codec"
	"github.com/hazyhaar/convertd/format"
)

// Page geometry in points.
const (
	PageWidth  = 595.0
	PageHeight = 842.0
	Margin     = 50.0
	FontSize   = 12.0
	LineHeight = FontSize * 1.2
)

// DefaultMaxPages bounds text reflow output. Page count grows linearly with
// input line count, so a runaway input is the one unbounded resource here.
const DefaultMaxPages = 5000

// Compositor builds paginated documents. The zero value is usable.
type Compositor struct {
	// MaxPages caps text reflow output. 0 means DefaultMaxPages;
	// negative disables the cap.
	MaxPages int

	// Codec transcodes rasters that gofpdf cannot embed directly.
	// Nil falls back to a zero-value codec.
	Codec *codec.Codec
}

func (c *Compositor) maxPages() int {
	switch {
	case c.MaxPages == 0:
		return DefaultMaxPages
	case c.MaxPages < 0:
		return 0
	default:
		return c.MaxPages
	}
}

func (c *Compositor) codec() *codec.Codec {
	if c.Codec != nil {
		return c.Codec
	}
	return &codec.Codec{}
}

func newDoc() *gofpdf.Fpdf {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: PageWidth, Ht: PageHeight},
	})
	pdf.SetAutoPageBreak(false, 0)
	return pdf
}

// EmbedImage builds a one-page document with the image anchored at the
// page's bottom-left corner. Images larger than the page box are scaled
// down uniformly; smaller ones keep their natural size.
//
// JPEG, PNG and GIF streams embed directly. Other rasters (bmp, webp) are
// transcoded to PNG, losslessly, before embedding.
func (c *Compositor) EmbedImage(data []byte, meta codec.Meta) ([]byte, error) {
	imgType, embeddable := embedType(meta.Format)
	if !embeddable {
		png, err := c.codec().Reencode(data, format.PNG)
		if err != nil {
			return nil, fmt.Errorf("compose: transcode %q for embedding: %w", meta.Format, err)
		}
		data = png
		imgType = "PNG"
	}

	w, h := float64(meta.Width), float64(meta.Height)
	if w <= 0 || h <= 0 {
		// No usable metadata: fall back to a page-sized bounding box.
		w, h = PageWidth, PageHeight
	}
	w, h = fitRect(w, h)

	pdf := newDoc()
	pdf.AddPage()
	opts := gofpdf.ImageOptions{ImageType: imgType}
	pdf.RegisterImageOptionsReader("src", opts, bytes.NewReader(data))
	// Bottom-left anchor: gofpdf's y axis runs downward from the top.
	pdf.ImageOptions("src", 0, PageHeight-h, w, h, false, opts, 0, "")

	return output(pdf)
}

// fitRect scales (w, h) uniformly to fit the page box, preserving aspect
// ratio. Sizes already inside the box are returned unchanged.
func fitRect(w, h float64) (float64, float64) {
	if w <= PageWidth && h <= PageHeight {
		return w, h
	}
	scale := PageWidth / w
	if s := PageHeight / h; s < scale {
		scale = s
	}
	return w * scale, h * scale
}

// embedType maps a decoder format name to gofpdf's image type token.
func embedType(name string) (string, bool) {
	switch strings.ToLower(name) {
	case "jpg", "jpeg":
		return "JPG", true
	case "png":
		return "PNG", true
	case "gif":
		return "GIF", true
	default:
		return "", false
	}
}

// LayoutText reflows text into a paginated document. Each input line maps
// to one output line verbatim; there is no word wrapping.
func (c *Compositor) LayoutText(text string) ([]byte, error) {
	pdf := newDoc()
	if err := c.layoutInto(pdf, text); err != nil {
		return nil, err
	}
	return output(pdf)
}

// layoutInto runs the reflow against an existing document. Split out so
// tests can inspect the page count before serialization.
func (c *Compositor) layoutInto(pdf *gofpdf.Fpdf, text string) error {
	pdf.SetFont("Helvetica", "", FontSize)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	limit := c.maxPages()

	pdf.AddPage()
	cursor := PageHeight - Margin
	for _, line := range lines {
		if cursor < Margin+LineHeight {
			if limit > 0 && pdf.PageCount() >= limit {
				return fmt.Errorf("compose: text reflow exceeds %d pages", limit)
			}
			pdf.AddPage()
			cursor = PageHeight - Margin
		}
		if line == "" {
			// Keep the vertical rhythm of blank lines.
			line = " "
		}
		pdf.Text(Margin, PageHeight-cursor, tr(line))
		cursor -= LineHeight
	}
	return nil
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("compose: serialize document: %w", err)
	}
	return buf.Bytes(), nil
}
