package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/ritzau/meetmap/pkg/render"
)

// marginPt is the blank border around the raster on every page
const marginPt = 36.0

// PDF renders the scene once and embeds the raster in an A4 document,
// orientation chosen by the raster's aspect ratio. Rasters taller than
// one page are sliced into strips, one page per strip, at a constant
// scale so the pages line up when printed.
func PDF(scene *render.Scene, w io.Writer) error {
	img, err := render.Rasterize(scene, render.Options{})
	if err != nil {
		return fmt.Errorf("render pdf raster: %w", err)
	}
	title := ""
	if scene != nil {
		title = scene.Title
	}
	return writePDF(img, title, w)
}

func writePDF(img *image.RGBA, title string, w io.Writer) error {
	b := img.Bounds()

	orientation := "P"
	if b.Dx() > b.Dy() {
		orientation = "L"
	}
	pdf := fpdf.New(orientation, "pt", "A4", "")
	if title != "" {
		pdf.SetTitle(title, true)
	}

	pageW, pageH := pdf.GetPageSize()
	contentW := pageW - 2*marginPt
	contentH := pageH - 2*marginPt

	// Fit the raster to the page width; height overflow becomes pages
	scale := 1.0
	if s := contentW / float64(b.Dx()); s < scale {
		scale = s
	}
	rowsPerPage := int(contentH / scale)
	if rowsPerPage < 1 {
		rowsPerPage = 1
	}

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	for top, page := 0, 0; top < b.Dy(); top, page = top+rowsPerPage, page+1 {
		bottom := top + rowsPerPage
		if bottom > b.Dy() {
			bottom = b.Dy()
		}
		strip := img.SubImage(image.Rect(b.Min.X, b.Min.Y+top, b.Max.X, b.Min.Y+bottom))

		var buf bytes.Buffer
		if err := png.Encode(&buf, strip); err != nil {
			return fmt.Errorf("encode pdf strip %d: %w", page, err)
		}

		name := fmt.Sprintf("map-strip-%d", page)
		pdf.AddPage()
		pdf.RegisterImageOptionsReader(name, opts, &buf)
		pdf.ImageOptions(name, marginPt, marginPt,
			float64(b.Dx())*scale, float64(bottom-top)*scale, false, opts, 0, "")
	}

	if pdf.Err() {
		return fmt.Errorf("compose pdf: %w", pdf.Error())
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
