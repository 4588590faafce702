package trial

import (
	"github.com/lixenwraith/forager/core"
	"github.com/lucasb-eyer/go-colorful"
)

// BackgroundKind tags the Background variant
type BackgroundKind int

const (
	BackgroundUnset BackgroundKind = iota
	BackgroundColor
	BackgroundImage
)

// Background is what the scene is drawn over
type Background struct {
	Kind  BackgroundKind
	Color string // Hex colour, BackgroundColor only
	Image string // Resource reference, BackgroundImage only
}

// NewBackground picks the variant from the editor pair; an image wins over a colour
func NewBackground(color, image string) Background {
	switch {
	case image != "":
		return Background{Kind: BackgroundImage, Image: image}
	case color != "":
		return Background{Kind: BackgroundColor, Color: color}
	default:
		return Background{}
	}
}

// Validate checks the colour syntax of colour backgrounds
func (b Background) Validate() error {
	switch b.Kind {
	case BackgroundUnset:
		return nil
	case BackgroundColor:
		if _, err := colorful.Hex(b.Color); err != nil {
			return core.NewConfigError("background.color", "invalid hex colour %q", b.Color)
		}
		return nil
	case BackgroundImage:
		if b.Image == "" {
			return core.NewConfigError("background.image", "image reference is empty")
		}
		return nil
	}
	return core.NewConfigError("background", "unknown kind %d", int(b.Kind))
}

// RGB returns the 8-bit channels of a colour background
func (b Background) RGB() (r, g, bl uint8, ok bool) {
	if b.Kind != BackgroundColor {
		return 0, 0, 0, false
	}
	c, err := colorful.Hex(b.Color)
	if err != nil {
		return 0, 0, 0, false
	}
	r, g, bl = c.RGB255()
	return r, g, bl, true
}
