package layout

import (
	"errors"
	"math"
	"testing"

	"github.com/lixenwraith/forager/core"
)

func TestGridRowMajorWithoutJitter(t *testing.T) {
	spec := NewGridSpec(Grid{Rows: 2, Cols: 3, SpacingX: 100, SpacingY: 50})
	bounds := core.Rect{X: 10, Y: 20, Width: 800, Height: 600}

	points, err := Generate(spec, 5, bounds, NewRand(1))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	want := []core.Point{{X: 10, Y: 20}, {X: 110, Y: 20}, {X: 210, Y: 20}, {X: 10, Y: 70}, {X: 110, Y: 70}}
	if len(points) != len(want) {
		t.Fatalf("Expected %d points, got %d", len(want), len(points))
	}
	for i := range want {
		if points[i] != want[i] {
			t.Errorf("point %d: got %v, want %v", i, points[i], want[i])
		}
	}
}

func TestGridWrapsWhenCountExceedsCells(t *testing.T) {
	spec := NewGridSpec(Grid{Rows: 1, Cols: 2, SpacingX: 10, SpacingY: 10})

	points, err := Generate(spec, 5, core.NewRect(100, 100), NewRand(1))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	want := []core.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 0}}
	for i := range want {
		if points[i] != want[i] {
			t.Errorf("point %d: got %v, want %v", i, points[i], want[i])
		}
	}
}

func TestGridJitterStaysInRange(t *testing.T) {
	g := Grid{Rows: 4, Cols: 4, JitterX: 7, JitterY: 3, SpacingX: 100, SpacingY: 100}
	points, err := Generate(NewGridSpec(g), 16, core.NewRect(400, 400), NewRand(42))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	jittered := false
	for i, p := range points {
		cx := float64(i%4) * 100
		cy := float64(i/4) * 100
		dx, dy := p.X-cx, p.Y-cy
		if math.Abs(dx) > g.JitterX || math.Abs(dy) > g.JitterY {
			t.Errorf("point %d offset (%.2f, %.2f) exceeds jitter", i, dx, dy)
		}
		if dx != 0 || dy != 0 {
			jittered = true
		}
	}
	if !jittered {
		t.Error("expected at least one jittered point")
	}
}

func TestStreamContinuesAcrossBatches(t *testing.T) {
	spec := NewGridSpec(Grid{Rows: 1, Cols: 3, SpacingX: 100, SpacingY: 100})
	s, err := NewStream(spec, core.NewRect(800, 600), NewRand(1))
	if err != nil {
		t.Fatalf("NewStream failed: %v", err)
	}

	first := s.Next(1)
	second := s.Next(2)
	if first[0] != (core.Point{X: 0, Y: 0}) {
		t.Errorf("first batch got %v", first)
	}
	if second[0] != (core.Point{X: 100, Y: 0}) || second[1] != (core.Point{X: 200, Y: 0}) {
		t.Errorf("second batch got %v", second)
	}
	if got := s.Next(0); got != nil {
		t.Errorf("Next(0) should be nil, got %v", got)
	}
}

func TestScatterStatistics(t *testing.T) {
	spec := NewScatterSpec(Scatter{MeanX: 400, StdX: 30, MeanY: 300, StdY: 10})
	const n = 4000

	points, err := Generate(spec, n, core.NewRect(800, 600), NewRand(7))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	var sumX, sumY float64
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
	}
	meanX, meanY := sumX/n, sumY/n
	if math.Abs(meanX-400) > 3 || math.Abs(meanY-300) > 1 {
		t.Errorf("sample means (%.2f, %.2f) too far from (400, 300)", meanX, meanY)
	}

	var varX float64
	for _, p := range points {
		varX += (p.X - meanX) * (p.X - meanX)
	}
	if sd := math.Sqrt(varX / n); math.Abs(sd-30) > 3 {
		t.Errorf("sample std %.2f too far from 30", sd)
	}
}

func TestScatterZeroStdIsExact(t *testing.T) {
	spec := NewScatterSpec(Scatter{MeanX: 12, MeanY: -3})
	points, err := Generate(spec, 3, core.NewRect(10, 10), NewRand(3))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	for _, p := range points {
		if p.X != 12 || p.Y != -3 {
			t.Errorf("expected (12,-3), got %v", p)
		}
	}
}

func TestSeededGenerationIsDeterministic(t *testing.T) {
	spec := NewGridSpec(DefaultGrid())
	a, _ := Generate(spec, 30, core.NewRect(1024, 768), NewRand(99))
	b, _ := Generate(spec, 30, core.NewRect(1024, 768), NewRand(99))
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("point %d differs between identical seeds: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		ok   bool
	}{
		{"default grid", NewGridSpec(DefaultGrid()), true},
		{"default scatter", NewScatterSpec(DefaultScatter()), true},
		{"zero rows", NewGridSpec(Grid{Rows: 0, Cols: 1, SpacingX: 1, SpacingY: 1}), false},
		{"zero spacing", NewGridSpec(Grid{Rows: 1, Cols: 1, SpacingX: 0, SpacingY: 1}), false},
		{"negative jitter", NewGridSpec(Grid{Rows: 1, Cols: 1, SpacingX: 1, SpacingY: 1, JitterX: -1}), false},
		{"negative std", NewScatterSpec(Scatter{StdY: -0.5}), false},
		{"NaN spacing", NewGridSpec(Grid{Rows: 1, Cols: 1, SpacingX: math.NaN(), SpacingY: 1}), false},
		{"infinite spacing", NewGridSpec(Grid{Rows: 1, Cols: 1, SpacingX: 1, SpacingY: math.Inf(1)}), false},
		{"NaN jitter", NewGridSpec(Grid{Rows: 1, Cols: 1, SpacingX: 1, SpacingY: 1, JitterY: math.NaN()}), false},
		{"NaN std", NewScatterSpec(Scatter{StdX: math.NaN()}), false},
		{"infinite mean", NewScatterSpec(Scatter{MeanY: math.Inf(-1)}), false},
		{"largest grid", NewGridSpec(Grid{Rows: MaxGridSide, Cols: MaxGridSide, SpacingX: 1, SpacingY: 1}), true},
		{"oversized grid", NewGridSpec(Grid{Rows: MaxGridSide + 1, Cols: 2, SpacingX: 1, SpacingY: 1}), false},
		{"unknown mode", Spec{Mode: Mode(9)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, core.ErrConfig) {
				t.Errorf("expected ConfigError, got %v", err)
			}
		})
	}

	if _, err := Generate(NewGridSpec(DefaultGrid()), -1, core.NewRect(1, 1), nil); !errors.Is(err, core.ErrConfig) {
		t.Errorf("expected negative count to be a ConfigError, got %v", err)
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(" Grid "); err != nil || m != ModeGrid {
		t.Errorf("ParseMode(Grid) = %v, %v", m, err)
	}
	if m, err := ParseMode("scatter"); err != nil || m != ModeScatter {
		t.Errorf("ParseMode(scatter) = %v, %v", m, err)
	}
	if _, err := ParseMode("spiral"); err == nil {
		t.Error("expected spiral to be rejected")
	}
}
