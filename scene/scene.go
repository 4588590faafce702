package scene

import (
	"github.com/lixenwraith/forager/element"
	"github.com/samber/lo"
)

// Scene is the live set of element instances of one trial.
// Only the trial loop goroutine touches it.
type Scene struct {
	instances []element.Instance
}

// Counts summarizes the scene per role
type Counts struct {
	Targets              int // Live targets still to collect
	Distractors          int // Live distractors not yet collected
	CollectedTargets     int // Remain targets already scored
	CollectedDistractors int // Remain distractors already scored
}

// New creates a scene owning a copy of instances
func New(instances []element.Instance) *Scene {
	s := &Scene{instances: make([]element.Instance, len(instances))}
	copy(s.instances, instances)
	return s
}

// Len returns the number of live instances
func (s *Scene) Len() int {
	return len(s.instances)
}

// Instances returns a copy of the live instances in stable order
func (s *Scene) Instances() []element.Instance {
	out := make([]element.Instance, len(s.instances))
	copy(out, s.instances)
	return out
}

// At returns the instance at index i
func (s *Scene) At(i int) element.Instance {
	return s.instances[i]
}

// Remove deletes the instance at index i, preserving the order of the rest
func (s *Scene) Remove(i int) element.Instance {
	removed := s.instances[i]
	s.instances = append(s.instances[:i], s.instances[i+1:]...)
	return removed
}

// IsComplete reports whether no uncollected target is left
func (s *Scene) IsComplete() bool {
	return !lo.ContainsBy(s.instances, func(i element.Instance) bool {
		return i.Role == element.RoleTarget && !i.Collected
	})
}

// Counts returns per-role statistics of the live instances
func (s *Scene) Counts() Counts {
	var c Counts
	for _, inst := range s.instances {
		switch {
		case inst.Role == element.RoleTarget && inst.Collected:
			c.CollectedTargets++
		case inst.Role == element.RoleTarget:
			c.Targets++
		case inst.Collected:
			c.CollectedDistractors++
		default:
			c.Distractors++
		}
	}
	return c
}
