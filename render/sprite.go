package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// QuadrantChars maps 4-bit patterns to Unicode quadrant characters
// Bit order: 0=UL, 1=UR, 2=LL, 3=LR (1 = foreground)
var QuadrantChars = [16]rune{
	' ', // 0000 - empty
	'▘', // 0001 - upper-left
	'▝', // 0010 - upper-right
	'▀', // 0011 - upper half
	'▖', // 0100 - lower-left
	'▌', // 0101 - left half
	'▞', // 0110 - anti-diagonal
	'▛', // 0111 - UL + UR + LL
	'▗', // 1000 - lower-right
	'▚', // 1001 - diagonal
	'▐', // 1010 - right half
	'▜', // 1011 - UL + UR + LR
	'▄', // 1100 - lower half
	'▙', // 1101 - UL + LL + LR
	'▟', // 1110 - UR + LL + LR
	'█', // 1111 - full block
}

// alphaCutoff separates see-through pixels from drawn ones
const alphaCutoff = 0x8000

// RGB is an 8-bit colour
type RGB struct {
	R, G, B uint8
}

// SpriteCell is one terminal cell of a sprite
type SpriteCell struct {
	Rune   rune
	Fg, Bg RGB
	Opaque uint8 // Quadrant mask of drawn pixels; 0 skips the cell, 15 paints Bg as well
}

// Sprite is an image converted to quadrant glyphs
type Sprite struct {
	Cells  []SpriteCell
	Width  int
	Height int
}

// At returns the cell at column x, row y
func (s *Sprite) At(x, y int) SpriteCell {
	return s.Cells[y*s.Width+x]
}

// DecodeImage decodes png, jpeg, gif, bmp or webp data
func DecodeImage(data []byte) (image.Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("decode image: empty %s image", format)
	}
	return img, nil
}

// NewSprite scales img onto a cols x rows cell grid. Each cell covers 2x2 scaled pixels
// and picks the quadrant glyph with the smallest colour error.
func NewSprite(img image.Image, cols, rows int) *Sprite {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	scaled := image.NewNRGBA(image.Rect(0, 0, cols*2, rows*2))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)

	s := &Sprite{Cells: make([]SpriteCell, cols*rows), Width: cols, Height: rows}
	offsets := [4][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}}

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			var pixels [4]RGB
			var mask uint8
			for i, off := range offsets {
				c := scaled.At(x*2+off[0], y*2+off[1])
				if _, _, _, a := c.RGBA(); a >= alphaCutoff {
					mask |= 1 << i
				}
				pixels[i] = colorToRGB(c)
			}
			s.Cells[y*cols+x] = quantizeCell(pixels, mask)
		}
	}
	return s
}

func quantizeCell(pixels [4]RGB, mask uint8) SpriteCell {
	switch mask {
	case 0:
		return SpriteCell{Rune: ' '}
	case 15:
		char, fg, bg := findBestQuadrant(pixels)
		return SpriteCell{Rune: char, Fg: fg, Bg: bg, Opaque: 15}
	}
	// Partially transparent: draw the opaque quadrants over whatever is below
	fg, _, _ := computePatternColors(pixels, int(mask))
	return SpriteCell{Rune: QuadrantChars[mask], Fg: fg, Opaque: mask}
}

// findBestQuadrant searches all 16 patterns for the one minimizing colour error
func findBestQuadrant(pixels [4]RGB) (rune, RGB, RGB) {
	bestError := int(^uint(0) >> 1)
	bestPattern := 0
	var bestFg, bestBg RGB

	for pattern := 0; pattern < 16; pattern++ {
		fg, bg, err := computePatternColors(pixels, pattern)
		if err < bestError {
			bestError = err
			bestPattern = pattern
			bestFg = fg
			bestBg = bg
		}
	}

	return QuadrantChars[bestPattern], bestFg, bestBg
}

// computePatternColors averages each group of the pattern and returns the squared error
func computePatternColors(pixels [4]RGB, pattern int) (fg, bg RGB, totalError int) {
	var fgR, fgG, fgB, fgCount int
	var bgR, bgG, bgB, bgCount int

	for i := 0; i < 4; i++ {
		if pattern&(1<<i) != 0 {
			fgR += int(pixels[i].R)
			fgG += int(pixels[i].G)
			fgB += int(pixels[i].B)
			fgCount++
		} else {
			bgR += int(pixels[i].R)
			bgG += int(pixels[i].G)
			bgB += int(pixels[i].B)
			bgCount++
		}
	}

	if fgCount > 0 {
		fg = RGB{R: uint8(fgR / fgCount), G: uint8(fgG / fgCount), B: uint8(fgB / fgCount)}
	}
	if bgCount > 0 {
		bg = RGB{R: uint8(bgR / bgCount), G: uint8(bgG / bgCount), B: uint8(bgB / bgCount)}
	}

	for i := 0; i < 4; i++ {
		target := bg
		if pattern&(1<<i) != 0 {
			target = fg
		}
		totalError += colorDistanceSq(pixels[i], target)
	}
	return fg, bg, totalError
}

func colorDistanceSq(a, b RGB) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}

// colorToRGB un-premultiplies a colour to 8-bit channels
func colorToRGB(c color.Color) RGB {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return RGB{}
	}
	return RGB{
		R: uint8((r * 0xff) / a),
		G: uint8((g * 0xff) / a),
		B: uint8((b * 0xff) / a),
	}
}
