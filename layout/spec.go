package layout

import (
	"fmt"
	"math"
	"strings"

	"github.com/lixenwraith/forager/core"
)

// MaxGridSide bounds grid rows and cols so the cell count fits an int
const MaxGridSide = 1 << 15

// Mode selects the placement algorithm
type Mode int

const (
	ModeGrid    Mode = iota // Jittered rows x cols lattice
	ModeScatter             // Independent normal draws per axis
)

func (m Mode) String() string {
	switch m {
	case ModeGrid:
		return "grid"
	case ModeScatter:
		return "scatter"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses a layout mode name
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "grid":
		return ModeGrid, nil
	case "scatter":
		return ModeScatter, nil
	}
	return 0, fmt.Errorf("unknown layout mode %q", s)
}

// Grid parameters; spacing and jitter are in scene units
type Grid struct {
	Rows, Cols         int
	JitterX, JitterY   float64
	SpacingX, SpacingY float64
}

// Scatter parameters; means and deviations are in scene units
type Scatter struct {
	MeanX, StdX float64
	MeanY, StdY float64
}

// Spec is a tagged layout description: only the block matching Mode is used
type Spec struct {
	Mode    Mode
	Grid    Grid
	Scatter Scatter
}

// DefaultGrid mirrors the editor defaults
func DefaultGrid() Grid {
	return Grid{Rows: 7, Cols: 12, JitterX: 20, JitterY: 20, SpacingX: 120, SpacingY: 120}
}

// DefaultScatter mirrors the editor defaults
func DefaultScatter() Scatter {
	return Scatter{MeanX: 0, StdX: 50, MeanY: 0, StdY: 50}
}

// NewGridSpec returns a grid spec
func NewGridSpec(g Grid) Spec {
	return Spec{Mode: ModeGrid, Grid: g}
}

// NewScatterSpec returns a scatter spec
func NewScatterSpec(s Scatter) Spec {
	return Spec{Mode: ModeScatter, Scatter: s}
}

// Validate checks the invariants of the active variant
func (s Spec) Validate() error {
	switch s.Mode {
	case ModeGrid:
		g := s.Grid
		if g.Rows < 1 || g.Cols < 1 || g.Rows > MaxGridSide || g.Cols > MaxGridSide {
			return core.NewConfigError("layout", "grid needs rows and cols in 1..%d, got %dx%d", MaxGridSide, g.Rows, g.Cols)
		}
		if !positive(g.SpacingX) || !positive(g.SpacingY) {
			return core.NewConfigError("layout", "grid spacing must be > 0, got %gx%g", g.SpacingX, g.SpacingY)
		}
		if !nonNegative(g.JitterX) || !nonNegative(g.JitterY) {
			return core.NewConfigError("layout", "grid jitter must be >= 0, got %gx%g", g.JitterX, g.JitterY)
		}
	case ModeScatter:
		sc := s.Scatter
		if !finite(sc.MeanX) || !finite(sc.MeanY) {
			return core.NewConfigError("layout", "scatter mean must be finite, got %gx%g", sc.MeanX, sc.MeanY)
		}
		if !nonNegative(sc.StdX) || !nonNegative(sc.StdY) {
			return core.NewConfigError("layout", "scatter std must be >= 0, got %gx%g", sc.StdX, sc.StdY)
		}
	default:
		return core.NewConfigError("layout.mode", "unknown mode %d", int(s.Mode))
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func positive(v float64) bool { return finite(v) && v > 0 }

func nonNegative(v float64) bool { return finite(v) && v >= 0 }
