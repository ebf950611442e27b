package convert

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Default placeholder dimensions when the PDF reports no usable page size.
const (
	placeholderWidth  = 595
	placeholderHeight = 842
)

// placeholderPage validates the PDF and produces a blank white image sized
// to its first page. Actual page content is not rasterized: rendering real
// PDF pages needs a rasterizer this service does not carry, so the blank
// page is a stand-in.
func placeholderPage(data []byte) (image.Image, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}
	if ctx.PageCount < 1 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	w, h := placeholderWidth, placeholderHeight
	if dims, err := ctx.PageDims(); err == nil && len(dims) > 0 {
		if dims[0].Width >= 1 && dims[0].Height >= 1 {
			w, h = int(dims[0].Width), int(dims[0].Height)
		}
	}

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img, nil
}
