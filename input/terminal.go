package input

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lixenwraith/forager/core"
	"github.com/lixenwraith/forager/element"
	"github.com/lixenwraith/forager/trial"
)

// DoubleClickInterval is the longest gap between two presses on one cell that still
// makes a double click
const DoubleClickInterval = 400 * time.Millisecond

// eventBuffer bounds the queue between the poller and the trial goroutine
const eventBuffer = 100

// CellMapper converts a screen cell into a scene position
type CellMapper interface {
	CellToScene(x, y int) core.Point
}

// Hooks are optional callbacks run on the goroutine calling AwaitClick
type Hooks struct {
	OnMove   func(x, y int) // Any mouse event
	OnResize func()
}

// TerminalInput turns tcell events into trial input. One poller goroutine forwards
// screen events into a channel; AwaitClick is the only consumer.
type TerminalInput struct {
	screen tcell.Screen
	mapper CellMapper
	clock  core.TimeProvider
	hooks  Hooks
	logger *log.Logger

	events chan tcell.Event
	done   chan struct{}
	once   sync.Once

	hover      bool
	lastHoverX int
	lastHoverY int

	buttons   tcell.ButtonMask
	lastPress time.Time
	lastX     int
	lastY     int
	lastBtn   element.Button
	havePress bool
}

// NewTerminalInput starts polling screen. Close stops the poller.
func NewTerminalInput(screen tcell.Screen, mapper CellMapper, clock core.TimeProvider, hooks Hooks, logger *log.Logger) *TerminalInput {
	if clock == nil {
		clock = core.NewMonotonicTimeProvider()
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	t := &TerminalInput{
		screen:     screen,
		mapper:     mapper,
		clock:      clock,
		hooks:      hooks,
		logger:     logger,
		events:     make(chan tcell.Event, eventBuffer),
		done:       make(chan struct{}),
		lastHoverX: -1,
		lastHoverY: -1,
	}
	core.Go(t.poll)
	return t
}

func (t *TerminalInput) poll() {
	defer close(t.events)
	for {
		// PollEvent returns nil once the screen is finalized
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case t.events <- ev:
		case <-t.done:
			return
		}
	}
}

// Close stops forwarding events. The poller exits after its current PollEvent returns.
func (t *TerminalInput) Close() {
	t.once.Do(func() { close(t.done) })
}

// SetHoverReporting enables hover events for pointer motion without a button held
func (t *TerminalInput) SetHoverReporting(enabled bool) {
	t.hover = enabled
	t.lastHoverX, t.lastHoverY = -1, -1
}

// AwaitClick blocks until a click, a quit request, the timeout or ctx cancellation.
// A zero timeout waits forever.
func (t *TerminalInput) AwaitClick(ctx context.Context, timeout time.Duration) (trial.Input, error) {
	start := t.clock.Now()

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return trial.Input{Kind: trial.InputQuit}, ctx.Err()
		case <-expired:
			return trial.Input{Kind: trial.InputTimeout}, nil
		case ev, ok := <-t.events:
			if !ok {
				t.logger.Printf("[INPUT] event source closed")
				return trial.Input{Kind: trial.InputQuit}, nil
			}
			if in, ok := t.handle(ev, start); ok {
				return in, nil
			}
		}
	}
}

func (t *TerminalInput) handle(ev tcell.Event, start time.Time) (trial.Input, bool) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
			(ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q')) {
			return trial.Input{Kind: trial.InputQuit}, true
		}

	case *tcell.EventResize:
		if t.hooks.OnResize != nil {
			t.hooks.OnResize()
		}

	case *tcell.EventMouse:
		return t.handleMouse(ev, start)
	}
	return trial.Input{}, false
}

func (t *TerminalInput) handleMouse(ev *tcell.EventMouse, start time.Time) (trial.Input, bool) {
	x, y := ev.Position()
	if t.hooks.OnMove != nil {
		t.hooks.OnMove(x, y)
	}

	pressed := ev.Buttons() & (tcell.Button1 | tcell.Button2 | tcell.Button3)
	newly := pressed &^ t.buttons
	t.buttons = pressed

	now := t.clock.Now()
	if newly != 0 {
		button := toButton(newly)
		kind := element.KindSingle
		if t.havePress && button == t.lastBtn && x == t.lastX && y == t.lastY &&
			now.Sub(t.lastPress) <= DoubleClickInterval {
			kind = element.KindDouble
			// A third press starts a new pair
			t.havePress = false
		} else {
			t.havePress = true
			t.lastPress, t.lastX, t.lastY, t.lastBtn = now, x, y, button
		}
		return t.click(x, y, button, kind, now.Sub(start)), true
	}

	if pressed == 0 && t.hover && (x != t.lastHoverX || y != t.lastHoverY) {
		t.lastHoverX, t.lastHoverY = x, y
		return t.click(x, y, element.ButtonNone, element.KindHover, now.Sub(start)), true
	}
	return trial.Input{}, false
}

func (t *TerminalInput) click(x, y int, button element.Button, kind element.ClickKind, rt time.Duration) trial.Input {
	p := t.mapper.CellToScene(x, y)
	return trial.Input{
		Kind: trial.InputClick,
		Click: element.ClickEvent{
			X:            p.X,
			Y:            p.Y,
			Button:       button,
			ReactionTime: rt,
			Kind:         kind,
		},
	}
}

// toButton picks one button from a mask of newly pressed buttons, left first
func toButton(mask tcell.ButtonMask) element.Button {
	switch {
	case mask&tcell.Button1 != 0:
		return element.ButtonLeft
	case mask&tcell.Button3 != 0:
		return element.ButtonMiddle
	case mask&tcell.Button2 != 0:
		return element.ButtonRight
	}
	return element.ButtonNone
}
