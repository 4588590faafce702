package layout

import (
	"math/rand/v2"

	"github.com/lixenwraith/forager/core"
)

// NewRand returns a deterministic source for seeded trials
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewRandomRand returns a source seeded from process randomness
func NewRandomRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Stream hands out positions in batches. Grid mode keeps its cell cursor between
// batches, so successive element types fill consecutive cells.
//
// Grid origin is the bounds corner (bounds.X, bounds.Y): cell i in row-major order sits
// at (X + col*SpacingX, Y + row*SpacingY). Requests beyond rows*cols wrap around and
// reuse cells from the first one. Positions are never clamped to bounds.
type Stream struct {
	spec   Spec
	bounds core.Rect
	rng    *rand.Rand
	cell   int
}

// NewStream validates spec and creates a position stream; nil rng selects an unseeded source
func NewStream(spec Spec, bounds core.Rect, rng *rand.Rand) (*Stream, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = NewRandomRand()
	}
	return &Stream{spec: spec, bounds: bounds, rng: rng}, nil
}

// Next returns exactly count positions
func (s *Stream) Next(count int) []core.Point {
	if count <= 0 {
		return nil
	}
	points := make([]core.Point, count)
	for i := range points {
		if s.spec.Mode == ModeGrid {
			points[i] = s.nextGrid()
		} else {
			points[i] = s.nextScatter()
		}
	}
	return points
}

func (s *Stream) nextGrid() core.Point {
	g := s.spec.Grid
	cell := s.cell % (g.Rows * g.Cols)
	s.cell++

	row, col := cell/g.Cols, cell%g.Cols
	return core.Point{
		X: s.bounds.X + float64(col)*g.SpacingX + s.jitter(g.JitterX),
		Y: s.bounds.Y + float64(row)*g.SpacingY + s.jitter(g.JitterY),
	}
}

func (s *Stream) nextScatter() core.Point {
	sc := s.spec.Scatter
	return core.Point{
		X: sc.MeanX + s.rng.NormFloat64()*sc.StdX,
		Y: sc.MeanY + s.rng.NormFloat64()*sc.StdY,
	}
}

// jitter draws uniformly from [-amount, amount]
func (s *Stream) jitter(amount float64) float64 {
	if amount == 0 {
		return 0
	}
	return (s.rng.Float64()*2 - 1) * amount
}

// Generate returns count positions for spec within bounds
func Generate(spec Spec, count int, bounds core.Rect, rng *rand.Rand) ([]core.Point, error) {
	if count < 0 {
		return nil, core.NewConfigError("layout", "negative position count %d", count)
	}
	s, err := NewStream(spec, bounds, rng)
	if err != nil {
		return nil, err
	}
	return s.Next(count), nil
}
