package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/lixenwraith/forager/core"
)

func TestFindBestQuadrant(t *testing.T) {
	red := RGB{R: 255}
	blue := RGB{B: 255}

	char, fg, bg := findBestQuadrant([4]RGB{red, red, blue, blue})
	if char != '▀' || fg != red || bg != blue {
		t.Errorf("got %q fg=%v bg=%v, want upper half red on blue", char, fg, bg)
	}

	char, _, bg = findBestQuadrant([4]RGB{blue, blue, blue, blue})
	if char != ' ' || bg != blue {
		t.Errorf("uniform cell: got %q bg=%v", char, bg)
	}
}

func TestNewSpriteTransparency(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 0, color.NRGBA{R: 255, A: 255})

	s := NewSprite(img, 1, 1)
	if s.Width != 1 || s.Height != 1 {
		t.Fatalf("sprite size = %dx%d", s.Width, s.Height)
	}
	c := s.At(0, 0)
	if c.Opaque != 3 || c.Rune != '▀' || c.Fg != (RGB{R: 255}) {
		t.Errorf("cell = %+v, want opaque upper half in red", c)
	}

	empty := NewSprite(image.NewNRGBA(image.Rect(0, 0, 4, 4)), 2, 2)
	for _, c := range empty.Cells {
		if c.Opaque != 0 {
			t.Errorf("transparent image produced drawn cell %+v", c)
		}
	}
}

func TestNewSpriteClampsSize(t *testing.T) {
	s := NewSprite(image.NewNRGBA(image.Rect(0, 0, 4, 4)), 0, -1)
	if s.Width != 1 || s.Height != 1 || len(s.Cells) != 1 {
		t.Errorf("sprite = %dx%d with %d cells", s.Width, s.Height, len(s.Cells))
	}
}

func TestDecodeImage(t *testing.T) {
	data := solidPNG(t, 3, 2, color.NRGBA{B: 255, A: 255})
	img, err := DecodeImage(data)
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Errorf("bounds = %v", b)
	}
	if _, err := DecodeImage(nil); err == nil {
		t.Error("expected error for empty data")
	}
}

func TestViewport(t *testing.T) {
	v := NewViewport(core.NewRect(800, 600), 80, 30)

	if w, h := v.CellSize(); w != 10 || h != 20 {
		t.Errorf("cell size = %gx%g", w, h)
	}
	if x, y := v.ToCell(core.Point{X: 0, Y: 0}); x != 0 || y != 0 {
		t.Errorf("origin maps to %d,%d", x, y)
	}
	if x, y := v.ToCell(core.Point{X: 799, Y: 599}); x != 79 || y != 29 {
		t.Errorf("far corner maps to %d,%d", x, y)
	}
	if x, _ := v.ToCell(core.Point{X: -5, Y: 0}); x != -1 || v.Contains(x, 0) {
		t.Errorf("negative x maps to %d", x)
	}

	p := v.ToScene(12, 7)
	if x, y := v.ToCell(p); x != 12 || y != 7 {
		t.Errorf("round trip through %v gave %d,%d", p, x, y)
	}

	if cols, rows := v.SpriteSize(64, 64); cols != 6 || rows != 3 {
		t.Errorf("sprite size = %dx%d, want 6x3", cols, rows)
	}
	if cols, rows := v.SpriteSize(1, 1); cols != 1 || rows != 1 {
		t.Errorf("tiny sprite = %dx%d, want 1x1", cols, rows)
	}
}
