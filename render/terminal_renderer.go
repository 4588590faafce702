package render

import (
	"fmt"
	"image"
	"io"
	"log"

	"github.com/gdamore/tcell/v2"
	"github.com/lixenwraith/forager/core"
	"github.com/lixenwraith/forager/element"
	"github.com/lixenwraith/forager/trial"
)

// statusRows is the number of rows reserved below the scene
const statusRows = 1

type spriteKey struct {
	ref        string
	cols, rows int
}

// TerminalRenderer draws trial frames as quadrant-glyph sprites on a tcell screen.
// It is driven from the trial goroutine only.
type TerminalRenderer struct {
	screen tcell.Screen
	logger *log.Logger

	images  map[string]image.Image
	sprites map[spriteKey]*Sprite

	viewport Viewport
	under    []tcell.Color // Background colour per viewport cell, for see-through sprite cells

	frame    trial.Frame
	hasFrame bool

	pointerX, pointerY int
	pointerSet         bool
}

// NewTerminalRenderer creates a renderer on an initialized screen
func NewTerminalRenderer(screen tcell.Screen, logger *log.Logger) *TerminalRenderer {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	w, h := screen.Size()
	return &TerminalRenderer{
		screen:   screen,
		logger:   logger,
		images:   make(map[string]image.Image),
		sprites:  make(map[spriteKey]*Sprite),
		viewport: NewViewport(core.NewRect(float64(w), float64(h)), w, h-statusRows),
	}
}

// LoadImage decodes and keeps an image for the current trial
func (r *TerminalRenderer) LoadImage(ref string, data []byte) error {
	img, err := DecodeImage(data)
	if err != nil {
		return err
	}
	r.images[ref] = img
	b := img.Bounds()
	r.logger.Printf("[RENDER] loaded %s (%dx%d)", ref, b.Dx(), b.Dy())
	return nil
}

// Render draws frame and shows it
func (r *TerminalRenderer) Render(frame trial.Frame) error {
	r.frame = frame
	r.hasFrame = true
	return r.draw()
}

// Redraw repaints the last frame, e.g. after a terminal resize
func (r *TerminalRenderer) Redraw() {
	r.screen.Sync()
	if r.hasFrame {
		if err := r.draw(); err != nil {
			r.logger.Printf("[RENDER] redraw failed: %v", err)
		}
	}
}

// MovePointer records the mouse cell and repaints when the pointer glyph is shown
func (r *TerminalRenderer) MovePointer(x, y int) {
	moved := !r.pointerSet || x != r.pointerX || y != r.pointerY
	r.pointerX, r.pointerY, r.pointerSet = x, y, true
	if moved && r.hasFrame && r.frame.ShowMousePointer {
		if err := r.draw(); err != nil {
			r.logger.Printf("[RENDER] pointer redraw failed: %v", err)
		}
	}
}

// CellToScene maps a screen cell to the scene position of its centre
func (r *TerminalRenderer) CellToScene(x, y int) core.Point {
	return r.viewport.ToScene(x, y)
}

// Viewport returns the mapping used by the last draw
func (r *TerminalRenderer) Viewport() Viewport {
	return r.viewport
}

// Release drops the images and sprites of the trial and blanks the screen
func (r *TerminalRenderer) Release() {
	clear(r.images)
	clear(r.sprites)
	r.hasFrame = false
	r.frame = trial.Frame{}
	r.screen.Clear()
	r.screen.Show()
}

func (r *TerminalRenderer) draw() error {
	w, h := r.screen.Size()
	if w < 1 || h < statusRows+1 {
		return fmt.Errorf("terminal too small: %dx%d", w, h)
	}

	bounds := r.frame.Bounds
	if bounds.Width <= 0 || bounds.Height <= 0 {
		bounds = core.NewRect(float64(w), float64(h-statusRows))
	}
	r.viewport = NewViewport(bounds, w, h-statusRows)

	r.screen.Clear()
	if err := r.drawBackground(); err != nil {
		return err
	}
	for _, item := range r.frame.Items {
		r.drawItem(item)
	}
	r.drawStatusBar(w, h-1)
	if r.frame.ShowMousePointer {
		r.drawPointer()
	}
	r.screen.Show()
	return nil
}

func (r *TerminalRenderer) drawBackground() error {
	v := r.viewport
	n := v.Cols * v.Rows
	if cap(r.under) < n {
		r.under = make([]tcell.Color, n)
	}
	r.under = r.under[:n]

	bg := r.frame.Background
	switch bg.Kind {
	case trial.BackgroundImage:
		img, ok := r.images[bg.Image]
		if !ok {
			return &core.ResourceError{Ref: bg.Image}
		}
		sprite := r.sprite(bg.Image, img, v.Cols, v.Rows)
		for y := 0; y < v.Rows; y++ {
			for x := 0; x < v.Cols; x++ {
				sc := sprite.At(x, y)
				under := toColor(sc.Bg)
				style := tcell.StyleDefault.Foreground(toColor(sc.Fg)).Background(under)
				if sc.Opaque != 15 {
					under = tcell.ColorBlack
					style = style.Background(under)
				}
				r.under[y*v.Cols+x] = under
				r.screen.SetContent(v.Left+x, v.Top+y, sc.Rune, nil, style)
			}
		}
		return nil

	case trial.BackgroundColor:
		cr, cg, cb, ok := bg.RGB()
		if !ok {
			return core.NewConfigError("background.color", "invalid hex colour %q", bg.Color)
		}
		r.fill(tcell.NewRGBColor(int32(cr), int32(cg), int32(cb)))
		return nil
	}

	r.fill(tcell.ColorBlack)
	return nil
}

func (r *TerminalRenderer) fill(c tcell.Color) {
	v := r.viewport
	style := tcell.StyleDefault.Background(c)
	for y := 0; y < v.Rows; y++ {
		for x := 0; x < v.Cols; x++ {
			r.under[y*v.Cols+x] = c
			r.screen.SetContent(v.Left+x, v.Top+y, ' ', nil, style)
		}
	}
}

func (r *TerminalRenderer) drawItem(item trial.FrameItem) {
	v := r.viewport
	img, ok := r.images[item.Image]
	if !ok {
		// Unloaded image: mark the position so the element stays clickable
		x, y := v.ToCell(core.Point{X: item.X, Y: item.Y})
		if v.Contains(x, y) {
			r.screen.SetContent(x, y, '●', nil, tcell.StyleDefault.Foreground(roleColor(item.Role)).Background(r.underAt(x, y)))
		}
		return
	}

	b := img.Bounds()
	cols, rows := v.SpriteSize(b.Dx(), b.Dy())
	sprite := r.sprite(item.Image, img, cols, rows)

	cx, cy := v.ToCell(core.Point{X: item.X, Y: item.Y})
	left, top := cx-cols/2, cy-rows/2

	for sy := 0; sy < rows; sy++ {
		for sx := 0; sx < cols; sx++ {
			x, y := left+sx, top+sy
			if !v.Contains(x, y) {
				continue
			}
			sc := sprite.At(sx, sy)
			if sc.Opaque == 0 {
				continue
			}
			bg := r.underAt(x, y)
			if sc.Opaque == 15 {
				bg = toColor(sc.Bg)
			}
			style := tcell.StyleDefault.Foreground(toColor(sc.Fg)).Background(bg)
			if item.Collected {
				style = style.Dim(true)
			}
			r.screen.SetContent(x, y, sc.Rune, nil, style)
		}
	}
}

func (r *TerminalRenderer) drawStatusBar(width, row int) {
	style := tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
	text := fmt.Sprintf(" score %d   targets left %d", r.frame.Score, r.frame.TargetsLeft)
	hint := "esc: quit "

	for x := 0; x < width; x++ {
		r.screen.SetContent(x, row, ' ', nil, style)
	}
	for i, ch := range []rune(text) {
		if i < width {
			r.screen.SetContent(i, row, ch, nil, style)
		}
	}
	start := width - len(hint)
	if start > len(text)+1 {
		for i, ch := range hint {
			r.screen.SetContent(start+i, row, ch, nil, style)
		}
	}
}

func (r *TerminalRenderer) drawPointer() {
	if !r.pointerSet || !r.viewport.Contains(r.pointerX, r.pointerY) {
		return
	}
	mainc, _, style, _ := r.screen.GetContent(r.pointerX, r.pointerY)
	if mainc == ' ' || mainc == 0 {
		mainc = '+'
	}
	r.screen.SetContent(r.pointerX, r.pointerY, mainc, nil, style.Reverse(true))
}

func (r *TerminalRenderer) sprite(ref string, img image.Image, cols, rows int) *Sprite {
	key := spriteKey{ref: ref, cols: cols, rows: rows}
	if s, ok := r.sprites[key]; ok {
		return s
	}
	s := NewSprite(img, cols, rows)
	r.sprites[key] = s
	return s
}

func (r *TerminalRenderer) underAt(x, y int) tcell.Color {
	v := r.viewport
	idx := (y-v.Top)*v.Cols + (x - v.Left)
	if idx < 0 || idx >= len(r.under) {
		return tcell.ColorBlack
	}
	return r.under[idx]
}

func toColor(c RGB) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func roleColor(role element.Role) tcell.Color {
	if role == element.RoleTarget {
		return tcell.ColorGreen
	}
	return tcell.ColorRed
}
