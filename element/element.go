package element

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/lixenwraith/forager/core"
	"github.com/samber/lo"
)

// Type is one catalog entry: a kind of clickable stimulus and how many to spawn
type Type struct {
	Image       string // Resource reference, resolved by the pool
	Kind        string // Free-form label
	Role        Role
	Value       int    // Score delta
	ClickSound  string // Optional resource reference
	ClickAction ClickAction
	ClickResult ClickResult
	Amount      int // Instances to spawn
}

// Instance is one positioned, live occurrence of a Type
type Instance struct {
	Seq         int // Expansion order, unique within a trial
	Image       string
	Kind        string
	Role        Role
	Value       int
	ClickSound  string
	ClickAction ClickAction
	ClickResult ClickResult
	X, Y        float64

	// Collected is set once a remain instance has been scored
	Collected bool
}

// NewInstance copies every field of t except Amount and attaches a position
func NewInstance(t Type, seq int, p core.Point) Instance {
	return Instance{
		Seq:         seq,
		Image:       t.Image,
		Kind:        t.Kind,
		Role:        t.Role,
		Value:       t.Value,
		ClickSound:  t.ClickSound,
		ClickAction: t.ClickAction,
		ClickResult: t.ClickResult,
		X:           p.X,
		Y:           p.Y,
	}
}

// Pos returns the instance position
func (i Instance) Pos() core.Point {
	return core.Point{X: i.X, Y: i.Y}
}

// ClickEvent is a single pointer event delivered by the input source
type ClickEvent struct {
	X, Y         float64
	Button       Button
	ReactionTime time.Duration
	Kind         ClickKind
}

// Pos returns the click position
func (c ClickEvent) Pos() core.Point {
	return core.Point{X: c.X, Y: c.Y}
}

// Catalog is the ordered list of element types of one trial
type Catalog []Type

// Validate checks every entry and fills the default kind label from the image name
func (c Catalog) Validate() error {
	for i := range c {
		t := &c[i]
		field := fmt.Sprintf("elements[%d]", i)
		if t.Image == "" {
			return core.NewConfigError(field+".image", "image reference is required")
		}
		if t.Amount < 0 {
			return core.NewConfigError(field+".amount", "must be >= 0, got %d", t.Amount)
		}
		if t.Role != RoleTarget && t.Role != RoleDistractor {
			return core.NewConfigError(field+".role", "invalid role %d", int(t.Role))
		}
		if t.ClickAction < ActionClick || t.ClickAction > ActionMouseOver {
			return core.NewConfigError(field+".click_action", "invalid action %d", int(t.ClickAction))
		}
		if t.ClickResult != ResultVanish && t.ClickResult != ResultRemain {
			return core.NewConfigError(field+".click_result", "invalid result %d", int(t.ClickResult))
		}
		if t.Kind == "" {
			t.Kind = KindFromImage(t.Image)
		}
	}
	return nil
}

// Total returns the number of instances the catalog spawns
func (c Catalog) Total() int {
	return lo.SumBy(c, func(t Type) int { return t.Amount })
}

// HasAction reports whether any spawning entry uses action a
func (c Catalog) HasAction(a ClickAction) bool {
	return lo.ContainsBy(c, func(t Type) bool { return t.Amount > 0 && t.ClickAction == a })
}

// Refs returns the distinct image and sound references in catalog order
func (c Catalog) Refs() (images, sounds []string) {
	for _, t := range c {
		images = append(images, t.Image)
		if t.ClickSound != "" {
			sounds = append(sounds, t.ClickSound)
		}
	}
	return lo.Uniq(images), lo.Uniq(sounds)
}

// KindFromImage derives a readable label from an image reference
func KindFromImage(ref string) string {
	base := path.Base(strings.ReplaceAll(ref, "\\", "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	return strings.ReplaceAll(base, "_", " ")
}
