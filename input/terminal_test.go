package input

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lixenwraith/forager/core"
	"github.com/lixenwraith/forager/element"
	"github.com/lixenwraith/forager/trial"
)

// tenfold maps cell x, y to scene (10x+5, 10y+5)
type tenfold struct{}

func (tenfold) CellToScene(x, y int) core.Point {
	return core.Point{X: float64(x*10 + 5), Y: float64(y*10 + 5)}
}

// steppingClock advances by step on every read
type steppingClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

func setup(t *testing.T, clock core.TimeProvider, hooks Hooks) (tcell.SimulationScreen, *TerminalInput) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	screen.SetSize(80, 24)
	in := NewTerminalInput(screen, tenfold{}, clock, hooks, nil)
	t.Cleanup(func() {
		in.Close()
		screen.Fini()
	})
	return screen, in
}

func await(t *testing.T, in *TerminalInput, timeout time.Duration) trial.Input {
	t.Helper()
	got, err := in.AwaitClick(context.Background(), timeout)
	if err != nil {
		t.Fatalf("AwaitClick failed: %v", err)
	}
	return got
}

func TestClickAndDoubleClick(t *testing.T) {
	clock := core.NewMockTimeProvider(time.Unix(0, 0))
	screen, in := setup(t, clock, Hooks{})

	screen.InjectMouse(3, 4, tcell.Button1, tcell.ModNone)
	first := await(t, in, time.Second)
	if first.Kind != trial.InputClick {
		t.Fatalf("kind = %d, want click", first.Kind)
	}
	c := first.Click
	if c.X != 35 || c.Y != 45 || c.Button != element.ButtonLeft || c.Kind != element.KindSingle {
		t.Errorf("first click = %+v", c)
	}

	clock.Advance(200 * time.Millisecond)
	screen.InjectMouse(3, 4, tcell.ButtonNone, tcell.ModNone)
	screen.InjectMouse(3, 4, tcell.Button1, tcell.ModNone)
	if second := await(t, in, time.Second); second.Click.Kind != element.KindDouble {
		t.Errorf("second press within interval = %s, want double", second.Click.Kind)
	}

	// Third press starts over
	screen.InjectMouse(3, 4, tcell.ButtonNone, tcell.ModNone)
	screen.InjectMouse(3, 4, tcell.Button1, tcell.ModNone)
	if third := await(t, in, time.Second); third.Click.Kind != element.KindSingle {
		t.Errorf("third press = %s, want single", third.Click.Kind)
	}
}

func TestDoubleClickRequiresSameCellAndInterval(t *testing.T) {
	clock := core.NewMockTimeProvider(time.Unix(0, 0))
	screen, in := setup(t, clock, Hooks{})

	screen.InjectMouse(3, 4, tcell.Button1, tcell.ModNone)
	await(t, in, time.Second)

	clock.Advance(500 * time.Millisecond)
	screen.InjectMouse(3, 4, tcell.ButtonNone, tcell.ModNone)
	screen.InjectMouse(3, 4, tcell.Button1, tcell.ModNone)
	if got := await(t, in, time.Second); got.Click.Kind != element.KindSingle {
		t.Errorf("slow second press = %s, want single", got.Click.Kind)
	}

	screen.InjectMouse(3, 4, tcell.ButtonNone, tcell.ModNone)
	screen.InjectMouse(4, 4, tcell.Button1, tcell.ModNone)
	if got := await(t, in, time.Second); got.Click.Kind != element.KindSingle {
		t.Errorf("press on another cell = %s, want single", got.Click.Kind)
	}
}

func TestButtonsAndHeldPress(t *testing.T) {
	screen, in := setup(t, nil, Hooks{})

	screen.InjectMouse(1, 1, tcell.Button2, tcell.ModNone)
	if got := await(t, in, time.Second); got.Click.Button != element.ButtonRight {
		t.Errorf("button = %s, want right", got.Click.Button)
	}

	// Dragging with the button held is not a new press
	screen.InjectMouse(2, 1, tcell.Button2, tcell.ModNone)
	if got := await(t, in, 50*time.Millisecond); got.Kind != trial.InputTimeout {
		t.Errorf("drag produced %+v", got)
	}

	screen.InjectMouse(2, 1, tcell.ButtonNone, tcell.ModNone)
	screen.InjectMouse(2, 1, tcell.Button3, tcell.ModNone)
	if got := await(t, in, time.Second); got.Click.Button != element.ButtonMiddle {
		t.Errorf("button = %s, want middle", got.Click.Button)
	}
}

func TestQuitKeys(t *testing.T) {
	tests := []struct {
		name string
		key  tcell.Key
		ch   rune
	}{
		{"escape", tcell.KeyEscape, 0},
		{"ctrl-c", tcell.KeyCtrlC, 0},
		{"q", tcell.KeyRune, 'q'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			screen, in := setup(t, nil, Hooks{})
			screen.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
			screen.InjectKey(tt.key, tt.ch, tcell.ModNone)
			if got := await(t, in, time.Second); got.Kind != trial.InputQuit {
				t.Errorf("kind = %d, want quit", got.Kind)
			}
		})
	}
}

func TestTimeoutAndCancel(t *testing.T) {
	_, in := setup(t, nil, Hooks{})

	if got := await(t, in, 20*time.Millisecond); got.Kind != trial.InputTimeout {
		t.Errorf("kind = %d, want timeout", got.Kind)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	got, err := in.AwaitClick(ctx, 0)
	if got.Kind != trial.InputQuit || !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("cancelled wait = %+v, %v", got, err)
	}
}

func TestHoverReporting(t *testing.T) {
	var moves int
	screen, in := setup(t, nil, Hooks{OnMove: func(x, y int) { moves++ }})

	screen.InjectMouse(5, 5, tcell.ButtonNone, tcell.ModNone)
	if got := await(t, in, 50*time.Millisecond); got.Kind != trial.InputTimeout {
		t.Errorf("motion without hover reporting produced %+v", got)
	}

	in.SetHoverReporting(true)
	screen.InjectMouse(6, 5, tcell.ButtonNone, tcell.ModNone)
	got := await(t, in, time.Second)
	if got.Kind != trial.InputClick || got.Click.Kind != element.KindHover || got.Click.Button != element.ButtonNone {
		t.Errorf("hover = %+v", got)
	}

	screen.InjectMouse(6, 5, tcell.ButtonNone, tcell.ModNone)
	if got := await(t, in, 50*time.Millisecond); got.Kind != trial.InputTimeout {
		t.Errorf("repeated hover on one cell produced %+v", got)
	}

	if moves != 3 {
		t.Errorf("OnMove called %d times, want 3", moves)
	}
}

func TestReactionTime(t *testing.T) {
	clock := &steppingClock{now: time.Unix(0, 0), step: 10 * time.Millisecond}
	screen, in := setup(t, clock, Hooks{})

	screen.InjectMouse(0, 0, tcell.Button1, tcell.ModNone)
	if got := await(t, in, time.Second); got.Click.ReactionTime != 10*time.Millisecond {
		t.Errorf("reaction time = %s, want 10ms", got.Click.ReactionTime)
	}
}

func TestClosedScreenQuits(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	in := NewTerminalInput(screen, tenfold{}, nil, Hooks{}, nil)
	defer in.Close()

	screen.Fini()
	if got := await(t, in, time.Second); got.Kind != trial.InputQuit {
		t.Errorf("kind = %d, want quit after screen closed", got.Kind)
	}
}
