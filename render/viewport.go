package render

import (
	"math"

	"github.com/lixenwraith/forager/core"
)

// Viewport maps the scene rectangle onto a block of terminal cells
type Viewport struct {
	Scene      core.Rect
	Left, Top  int
	Cols, Rows int
}

// NewViewport stretches scene over cols x rows cells starting at the top-left cell
func NewViewport(scene core.Rect, cols, rows int) Viewport {
	return Viewport{Scene: scene, Cols: max(cols, 1), Rows: max(rows, 1)}
}

// CellSize returns the scene units covered by one cell
func (v Viewport) CellSize() (w, h float64) {
	return v.Scene.Width / float64(v.Cols), v.Scene.Height / float64(v.Rows)
}

// ToCell returns the cell containing p. Points outside the scene map outside the viewport.
func (v Viewport) ToCell(p core.Point) (x, y int) {
	cw, ch := v.CellSize()
	x = v.Left + int(math.Floor((p.X-v.Scene.X)/cw))
	y = v.Top + int(math.Floor((p.Y-v.Scene.Y)/ch))
	return x, y
}

// ToScene returns the scene position of the centre of cell x, y
func (v Viewport) ToScene(x, y int) core.Point {
	cw, ch := v.CellSize()
	return core.Point{
		X: v.Scene.X + (float64(x-v.Left)+0.5)*cw,
		Y: v.Scene.Y + (float64(y-v.Top)+0.5)*ch,
	}
}

// Contains reports whether cell x, y is inside the viewport
func (v Viewport) Contains(x, y int) bool {
	return x >= v.Left && x < v.Left+v.Cols && y >= v.Top && y < v.Top+v.Rows
}

// SpriteSize returns the cell footprint of an image of w x h scene units
func (v Viewport) SpriteSize(w, h int) (cols, rows int) {
	cw, ch := v.CellSize()
	cols = max(int(math.Round(float64(w)/cw)), 1)
	rows = max(int(math.Round(float64(h)/ch)), 1)
	return cols, rows
}
