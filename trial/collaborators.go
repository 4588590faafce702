package trial

import (
	"context"
	"time"

	"github.com/lixenwraith/forager/core"
	"github.com/lixenwraith/forager/element"
)

// Pool resolves opaque resource references to their bytes
type Pool interface {
	Resolve(ref string) ([]byte, error)
}

// RenderSink displays frames. Release drops everything loaded for the trial.
type RenderSink interface {
	LoadImage(ref string, data []byte) error
	Render(frame Frame) error
	Release()
}

// SoundPlayer plays click sounds. Play must not block the trial loop.
type SoundPlayer interface {
	Load(ref string, data []byte) error
	Play(ref string)
	Release()
}

// InputSource blocks until the next pointer event, a quit request or the timeout.
// A zero timeout waits forever.
type InputSource interface {
	AwaitClick(ctx context.Context, timeout time.Duration) (Input, error)
}

// HoverReporter is implemented by input sources that can report pointer motion
type HoverReporter interface {
	SetHoverReporting(enabled bool)
}

// InputKind tags the Input variant
type InputKind int

const (
	InputClick InputKind = iota
	InputQuit
	InputTimeout
)

// Input is the result of one wait for input
type Input struct {
	Kind  InputKind
	Click element.ClickEvent
}

// Frame is one snapshot handed to the render sink
type Frame struct {
	Bounds           core.Rect // Scene rectangle in scene units
	Background       Background
	Items            []FrameItem
	ShowMousePointer bool
	Score            int
	TargetsLeft      int
}

// FrameItem is one element to draw, centred on X, Y in scene units
type FrameItem struct {
	Image     string
	Kind      string
	Role      element.Role
	X, Y      float64
	Collected bool
}
