package core

import "math"

// Point is a position in scene space
type Point struct {
	X, Y float64
}

// Dist returns the Euclidean distance between p and q
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Rect represents the rectangular scene region elements are placed in
type Rect struct {
	X, Y          float64 // Top-left corner
	Width, Height float64 // Dimensions
}

// NewRect returns a rect anchored at the scene origin
func NewRect(width, height float64) Rect {
	return Rect{Width: width, Height: height}
}

// Contains reports whether p lies inside the rect, edges inclusive
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Center returns the midpoint of the rect
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}
