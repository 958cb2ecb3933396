package render

import (
	"errors"
	"image/color"
	"testing"

	"github.com/ritzau/meetmap/pkg/layout"
	"github.com/ritzau/meetmap/pkg/model"
)

// boxScene is a hand-built one-box scene with known geometry
func boxScene() *Scene {
	theme := DefaultTheme()
	return &Scene{
		Title:  "Test map",
		Bounds: layout.Rect{MinX: 0, MinY: 0, MaxX: 100, MaxY: 40},
		Theme:  theme,
		byID:   map[string]int{"a": 0},
		Boxes: []Box{{
			ID:    "a",
			Type:  model.NodeTypeTheme,
			X:     0,
			Y:     0,
			W:     100,
			H:     40,
			Lines: []string{"hello"},
			Style: theme.Style(model.NodeTypeTheme),
		}},
	}
}

// colorNear allows for resampling wobble around flat color regions
func colorNear(got, want color.RGBA, tol int) bool {
	abs := func(a, b uint8) int {
		d := int(a) - int(b)
		if d < 0 {
			return -d
		}
		return d
	}
	return abs(got.R, want.R) <= tol && abs(got.G, want.G) <= tol && abs(got.B, want.B) <= tol
}

func TestRasterize_Dimensions(t *testing.T) {
	// Bounds 100x40 plus the default 32 world units of padding per side
	img, err := Rasterize(boxScene(), Options{})
	if err != nil {
		t.Fatalf("Failed to rasterize: %v", err)
	}

	if img.Bounds().Dx() != 164 || img.Bounds().Dy() != 104 {
		t.Errorf("Expected 164x104 image, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestRasterize_PaintsBoxOnBackground(t *testing.T) {
	scene := boxScene()
	img, err := Rasterize(scene, Options{})
	if err != nil {
		t.Fatalf("Failed to rasterize: %v", err)
	}

	theme := DefaultTheme()

	// Top-left corner sits in the padding band
	if got := img.RGBAAt(1, 50); !colorNear(got, theme.Background, 8) {
		t.Errorf("Expected background at (1,50), got %v", got)
	}

	// World (8,20) is inside the box fill, clear of the label text:
	// screen position is (8+32, 20+32) at zoom 1
	fill := theme.Style(model.NodeTypeTheme).Fill
	if got := img.RGBAAt(40, 52); !colorNear(got, fill, 8) {
		t.Errorf("Expected theme fill at (40,52), got %v", got)
	}
}

func TestRasterize_EmptySceneFails(t *testing.T) {
	if _, err := Rasterize(nil, Options{}); !errors.Is(err, ErrEmptyScene) {
		t.Errorf("Expected ErrEmptyScene for nil scene, got %v", err)
	}
	if _, err := Rasterize(&Scene{}, Options{}); !errors.Is(err, ErrEmptyScene) {
		t.Errorf("Expected ErrEmptyScene for boxless scene, got %v", err)
	}
}

func TestRasterize_SupersampleOne(t *testing.T) {
	img, err := Rasterize(boxScene(), Options{Supersample: 1})
	if err != nil {
		t.Fatalf("Failed to rasterize without supersampling: %v", err)
	}
	if img.Bounds().Dx() != 164 || img.Bounds().Dy() != 104 {
		t.Errorf("Expected 164x104 image, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestRasterize_MaxDimCapsOutput(t *testing.T) {
	// Scale 100 would be 16400px wide; the cap shrinks it while
	// keeping the aspect ratio
	img, err := Rasterize(boxScene(), Options{Scale: 100, MaxDim: 200})
	if err != nil {
		t.Fatalf("Failed to rasterize: %v", err)
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w > 200 || h > 200 {
		t.Errorf("Expected dimensions within 200, got %dx%d", w, h)
	}

	aspect := float64(w) / float64(h)
	want := 164.0 / 104.0
	if aspect < want*0.95 || aspect > want*1.05 {
		t.Errorf("Expected aspect ratio near %v, got %v", want, aspect)
	}
}

func TestRasterizeViewport_CropsToView(t *testing.T) {
	scene := boxScene()
	vp := Viewport{X: 0, Y: 0, Zoom: 1, W: 64, H: 64}

	img, err := RasterizeViewport(scene, vp, Options{})
	if err != nil {
		t.Fatalf("Failed to rasterize viewport: %v", err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 64 {
		t.Fatalf("Expected 64x64 image, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}

	theme := DefaultTheme()
	fill := theme.Style(model.NodeTypeTheme).Fill

	// World (8,20) is box fill; world (40,60) is below the box
	if got := img.RGBAAt(8, 20); !colorNear(got, fill, 8) {
		t.Errorf("Expected theme fill at (8,20), got %v", got)
	}
	if got := img.RGBAAt(40, 60); !colorNear(got, theme.Background, 8) {
		t.Errorf("Expected background at (40,60), got %v", got)
	}
}

func TestRasterizeViewport_RejectsBadViewport(t *testing.T) {
	scene := boxScene()

	if _, err := RasterizeViewport(scene, Viewport{Zoom: 1, W: 0, H: 64}, Options{}); err == nil {
		t.Error("Expected error for zero-width viewport")
	}
	if _, err := RasterizeViewport(scene, Viewport{Zoom: 0, W: 64, H: 64}, Options{}); err == nil {
		t.Error("Expected error for zero zoom")
	}
}

func TestRasterize_EmphasisUsesAccentBorder(t *testing.T) {
	scene := boxScene()
	scene.SetEmphasis("a", EmphasisSelected)

	img, err := Rasterize(scene, Options{Supersample: 1})
	if err != nil {
		t.Fatalf("Failed to rasterize: %v", err)
	}

	theme := DefaultTheme()
	// The left border of the box runs at world x=0, screen x=32;
	// a selected box strokes it in the accent color
	found := false
	for x := 30; x <= 36 && !found; x++ {
		if colorNear(img.RGBAAt(x, 52), theme.Accent, 40) {
			found = true
		}
	}
	if !found {
		t.Error("Expected accent border pixels near the box's left edge")
	}
}
