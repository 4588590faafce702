package scene

import (
	"github.com/lixenwraith/forager/core"
	"github.com/lixenwraith/forager/element"
)

// Hit is the outcome of resolving one click against the scene
type Hit struct {
	Matched  bool             // An instance was within radius and accepted the event
	Removed  bool             // The instance left the scene
	Scored   bool             // Value and sound apply
	Index    int              // Index of the nearest instance before any removal
	Distance float64          // Distance from the click to the nearest instance
	Instance element.Instance // Nearest instance as it was when clicked
}

// Value returns the score delta of the hit
func (h Hit) Value() int {
	if !h.Scored {
		return 0
	}
	return h.Instance.Value
}

// Sound returns the sound reference to trigger, empty when none
func (h Hit) Sound() string {
	if !h.Scored {
		return ""
	}
	return h.Instance.ClickSound
}

// Nearest finds the instance closest to p by linear scan. Ties keep the first occurrence.
func Nearest(instances []element.Instance, p core.Point) (index int, dist float64, ok bool) {
	if len(instances) == 0 {
		return -1, 0, false
	}
	index, dist = 0, instances[0].Pos().Dist(p)
	for i := 1; i < len(instances); i++ {
		if d := instances[i].Pos().Dist(p); d < dist {
			index, dist = i, d
		}
	}
	return index, dist, true
}

// Resolve applies a click: the nearest instance within radius (inclusive) that accepts
// the event kind is hit. Vanish instances are removed; remain instances stay and score
// only on their first hit. An empty scene yields core.ErrEmptyScene and no change.
func (s *Scene) Resolve(click element.ClickEvent, radius float64) (Hit, error) {
	idx, dist, ok := Nearest(s.instances, click.Pos())
	if !ok {
		return Hit{Index: -1}, core.ErrEmptyScene
	}

	inst := s.instances[idx]
	hit := Hit{Index: idx, Distance: dist, Instance: inst}
	if dist > radius || !inst.ClickAction.Accepts(click.Kind) {
		return hit, nil
	}

	hit.Matched = true
	switch inst.ClickResult {
	case element.ResultRemain:
		if !inst.Collected {
			hit.Scored = true
			s.instances[idx].Collected = true
		}
	default:
		s.Remove(idx)
		hit.Removed = true
		hit.Scored = true
	}
	return hit, nil
}
