package trial

import (
	"math"
	"time"

	"github.com/lixenwraith/forager/core"
	"github.com/lixenwraith/forager/element"
	"github.com/lixenwraith/forager/layout"
)

// DefaultClickRadius is the hit tolerance in scene units
const DefaultClickRadius = 32

// Config is the validated, in-memory description of one trial
type Config struct {
	Name             string
	Fullscreen       bool
	Width, Height    int
	ShowMousePointer bool
	ClickRadius      float64
	Timeout          time.Duration // Zero waits forever
	Seed             *uint64       // Nil draws positions from process randomness

	Background Background
	Layout     layout.Spec
	Catalog    element.Catalog
}

// DefaultConfig returns the editor defaults with an empty catalog
func DefaultConfig() Config {
	return Config{
		Width:            1024,
		Height:           768,
		ShowMousePointer: true,
		ClickRadius:      DefaultClickRadius,
		Layout:           layout.NewGridSpec(layout.DefaultGrid()),
	}
}

// Bounds returns the scene rectangle
func (c *Config) Bounds() core.Rect {
	return core.NewRect(float64(c.Width), float64(c.Height))
}

// Validate checks every part of the configuration
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return core.NewConfigError("width/height", "scene size must be positive, got %dx%d", c.Width, c.Height)
	}
	if !(c.ClickRadius >= 0) || math.IsInf(c.ClickRadius, 1) {
		return core.NewConfigError("click_radius", "must be >= 0, got %g", c.ClickRadius)
	}
	if c.Timeout < 0 {
		return core.NewConfigError("timeout", "must be >= 0, got %s", c.Timeout)
	}
	if err := c.Background.Validate(); err != nil {
		return err
	}
	if err := c.Layout.Validate(); err != nil {
		return err
	}
	return c.Catalog.Validate()
}
