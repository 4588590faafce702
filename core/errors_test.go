package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("loading trial: %w", NewConfigError("layout.mode", "unknown mode %q", "spiral"))

	if !errors.Is(err, ErrConfig) {
		t.Fatal("expected wrapped ConfigError to match ErrConfig")
	}
	if errors.Is(err, ErrResource) {
		t.Error("ConfigError must not match ErrResource")
	}

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatal("expected errors.As to find ConfigError")
	}
	if cfgErr.Field != "layout.mode" {
		t.Errorf("Expected field layout.mode, got %q", cfgErr.Field)
	}
	want := `configuration error in layout.mode: unknown mode "spiral"`
	if cfgErr.Error() != want {
		t.Errorf("Expected %q, got %q", want, cfgErr.Error())
	}
}

func TestResourceErrorMatchesSentinel(t *testing.T) {
	cause := errors.New("file does not exist")
	err := &ResourceError{Ref: "target.png", Err: cause}

	if !errors.Is(err, ErrResource) {
		t.Error("expected ResourceError to match ErrResource")
	}
	if !errors.Is(err, cause) {
		t.Error("expected ResourceError to unwrap to its cause")
	}

	missing := &ResourceError{Ref: "pop.wav"}
	if missing.Error() != `resource "pop.wav" not found` {
		t.Errorf("unexpected message: %s", missing.Error())
	}
}

func TestPointDist(t *testing.T) {
	tests := []struct {
		p, q Point
		want float64
	}{
		{Point{0, 0}, Point{3, 4}, 5},
		{Point{1, 1}, Point{1, 1}, 0},
		{Point{-2, 0}, Point{2, 0}, 4},
	}
	for _, tt := range tests {
		if got := tt.p.Dist(tt.q); got != tt.want {
			t.Errorf("Dist(%v, %v) = %v, want %v", tt.p, tt.q, got, tt.want)
		}
	}
}

func TestRectContains(t *testing.T) {
	r := NewRect(100, 50)
	if !r.Contains(Point{100, 50}) {
		t.Error("expected far corner to be inside (edges inclusive)")
	}
	if r.Contains(Point{-1, 10}) {
		t.Error("expected negative x to be outside")
	}
	if c := r.Center(); c.X != 50 || c.Y != 25 {
		t.Errorf("unexpected center %v", c)
	}
}
