package export

import (
	"fmt"
	"image/png"
	"io"

	"github.com/ritzau/meetmap/pkg/render"
)

// PNG rasterizes the whole scene at its natural size and encodes it
func PNG(scene *render.Scene, w io.Writer) error {
	img, err := render.Rasterize(scene, render.Options{})
	if err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// PNGViewport encodes exactly what the given viewport shows, for
// "what you see is what you export" captures from the interactive view
func PNGViewport(scene *render.Scene, vp render.Viewport, w io.Writer) error {
	img, err := render.RasterizeViewport(scene, vp, render.Options{})
	if err != nil {
		return fmt.Errorf("render png viewport: %w", err)
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
