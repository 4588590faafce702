package trial

import (
	"time"

	"github.com/lixenwraith/forager/element"
)

// Result is the report of a completed trial
type Result struct {
	ID        string
	Name      string
	StartedAt time.Time
	Elapsed   time.Duration
	Aborted   bool
	TimedOut  bool
	Seed      *uint64
	Score     int

	Targets              int // Spawned
	Distractors          int
	CollectedTargets     int // Scored hits
	CollectedDistractors int
	RemainingTargets     int // Live and uncollected at the end
	RemainingDistractors int

	Clicks []ClickRecord
}

// Completed reports whether the trial ended because every target was collected
func (r Result) Completed() bool {
	return !r.Aborted && !r.TimedOut
}

// ClickRecord is one processed input event
type ClickRecord struct {
	Seq          int
	X, Y         float64
	Button       element.Button
	Kind         element.ClickKind
	ReactionTime time.Duration // Since the wait for this event started
	At           time.Duration // Since the trial started
	Hit          bool
	Removed      bool
	Scored       bool
	InstanceSeq  int // -1 without a nearest instance
	InstanceKind string
	Role         element.Role
	Value        int
	Distance     float64
}
