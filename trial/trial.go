package trial

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/lixenwraith/forager/core"
	"github.com/lixenwraith/forager/element"
	"github.com/lixenwraith/forager/layout"
	"github.com/lixenwraith/forager/scene"
)

// State is the trial lifecycle phase
type State int

const (
	StatePreparing State = iota
	StateReady
	StateRunning
	StateComplete
)

func (s State) String() string {
	switch s {
	case StatePreparing:
		return "preparing"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateComplete:
		return "complete"
	}
	return "unknown"
}

// ErrNotReady is returned by Run on a trial that already ran
var ErrNotReady = errors.New("trial is not ready to run")

// Deps are the collaborators a trial drives. Sound, Clock, Logger and Rand are optional.
type Deps struct {
	Pool   Pool
	Sink   RenderSink
	Input  InputSource
	Sound  SoundPlayer
	Clock  core.TimeProvider
	Logger *log.Logger
	Rand   *rand.Rand // Overrides Config.Seed
}

// Trial is one prepared scene and the loop that plays it
type Trial struct {
	id     string
	cfg    Config
	deps   Deps
	scene  *scene.Scene
	state  State
	logger *log.Logger

	targets     int
	distractors int
	score       int
	collected   map[element.Role]int
	clicks      []ClickRecord
	released    bool
}

// Prepare validates cfg, lays out the scene and loads every referenced resource
// into the sink and sound player. Loaded resources are released on failure.
func Prepare(cfg Config, deps Deps) (*Trial, error) {
	if deps.Pool == nil || deps.Sink == nil || deps.Input == nil {
		return nil, fmt.Errorf("trial needs a pool, a render sink and an input source")
	}
	if deps.Clock == nil {
		deps.Clock = core.NewMonotonicTimeProvider()
	}
	if deps.Logger == nil {
		deps.Logger = log.New(io.Discard, "", 0)
	}

	// Validate fills default kinds; the caller's catalog stays untouched
	cfg.Catalog = slices.Clone(cfg.Catalog)

	t := &Trial{
		id:        uuid.NewString(),
		cfg:       cfg,
		deps:      deps,
		state:     StatePreparing,
		logger:    deps.Logger,
		collected: make(map[element.Role]int),
	}

	if err := t.cfg.Validate(); err != nil {
		t.release()
		return nil, err
	}

	rng := deps.Rand
	if rng == nil {
		if cfg.Seed != nil {
			rng = layout.NewRand(*cfg.Seed)
		} else {
			rng = layout.NewRandomRand()
		}
	}

	instances, err := scene.Expand(t.cfg.Catalog, t.cfg.Layout, t.cfg.Bounds(), rng)
	if err != nil {
		t.release()
		return nil, err
	}
	t.scene = scene.New(instances)
	for _, inst := range instances {
		if inst.Role == element.RoleTarget {
			t.targets++
		} else {
			t.distractors++
		}
	}

	if err := t.load(); err != nil {
		t.release()
		return nil, err
	}

	t.state = StateReady
	t.logger.Printf("[TRIAL] %s prepared: %d targets, %d distractors", t.id, t.targets, t.distractors)
	return t, nil
}

func (t *Trial) load() error {
	images, sounds := t.cfg.Catalog.Refs()
	if t.cfg.Background.Kind == BackgroundImage {
		images = append(images, t.cfg.Background.Image)
	}

	for _, ref := range images {
		data, err := t.deps.Pool.Resolve(ref)
		if err != nil {
			return err
		}
		if err := t.deps.Sink.LoadImage(ref, data); err != nil {
			return &core.ResourceError{Ref: ref, Err: err}
		}
	}

	if t.deps.Sound == nil {
		if len(sounds) > 0 {
			t.logger.Printf("[TRIAL] no sound player, %d click sounds ignored", len(sounds))
		}
		return nil
	}
	for _, ref := range sounds {
		data, err := t.deps.Pool.Resolve(ref)
		if err != nil {
			return err
		}
		if err := t.deps.Sound.Load(ref, data); err != nil {
			return &core.ResourceError{Ref: ref, Err: err}
		}
	}
	return nil
}

// ID returns the unique trial identifier
func (t *Trial) ID() string { return t.id }

// State returns the lifecycle phase
func (t *Trial) State() State { return t.state }

// Scene exposes the live scene
func (t *Trial) Scene() *scene.Scene { return t.scene }

// Score returns the running score
func (t *Trial) Score() int { return t.score }

// Run renders and processes input until every target is collected, the user quits,
// the timeout expires or ctx is cancelled. Resources are released on every path.
func (t *Trial) Run(ctx context.Context) (Result, error) {
	if t.state != StateReady {
		return Result{}, ErrNotReady
	}
	defer t.release()

	t.state = StateRunning
	clock := t.deps.Clock
	start := clock.Now()

	if hr, ok := t.deps.Input.(HoverReporter); ok {
		hr.SetHoverReporting(t.cfg.Catalog.HasAction(element.ActionMouseOver))
	}

	var aborted, timedOut bool
loop:
	for !t.scene.IsComplete() {
		if ctx.Err() != nil {
			aborted = true
			break
		}

		if err := t.deps.Sink.Render(t.frame()); err != nil {
			t.state = StateComplete
			return t.result(start, true, false), fmt.Errorf("render frame: %w", err)
		}

		var wait time.Duration
		if t.cfg.Timeout > 0 {
			wait = t.cfg.Timeout - clock.Now().Sub(start)
			if wait <= 0 {
				timedOut = true
				break
			}
		}

		in, err := t.deps.Input.AwaitClick(ctx, wait)
		if err != nil {
			if ctx.Err() != nil {
				aborted = true
				break
			}
			t.state = StateComplete
			return t.result(start, true, false), fmt.Errorf("await input: %w", err)
		}

		switch in.Kind {
		case InputQuit:
			aborted = true
			break loop
		case InputTimeout:
			if t.cfg.Timeout > 0 {
				timedOut = true
				break loop
			}
		case InputClick:
			t.handleClick(in.Click, clock.Now().Sub(start))
		}
	}

	if !aborted && !timedOut {
		// Final frame shows the emptied scene
		if err := t.deps.Sink.Render(t.frame()); err != nil {
			t.logger.Printf("[TRIAL] final render failed: %v", err)
		}
	}

	t.state = StateComplete
	res := t.result(start, aborted, timedOut)
	t.logger.Printf("[TRIAL] %s finished: score=%d elapsed=%s aborted=%v timed_out=%v",
		t.id, res.Score, res.Elapsed, res.Aborted, res.TimedOut)
	return res, nil
}

func (t *Trial) handleClick(click element.ClickEvent, at time.Duration) {
	hit, err := t.scene.Resolve(click, t.cfg.ClickRadius)
	if errors.Is(err, core.ErrEmptyScene) {
		t.logger.Printf("[TRIAL] click at %.0f,%.0f on an empty scene ignored", click.X, click.Y)
		return
	}

	// Unmatched pointer motion is not a click
	if click.Kind == element.KindHover && !hit.Matched {
		return
	}

	rec := ClickRecord{
		Seq:          len(t.clicks),
		X:            click.X,
		Y:            click.Y,
		Button:       click.Button,
		Kind:         click.Kind,
		ReactionTime: click.ReactionTime,
		At:           at,
		Hit:          hit.Matched,
		Removed:      hit.Removed,
		Scored:       hit.Scored,
		InstanceSeq:  hit.Instance.Seq,
		InstanceKind: hit.Instance.Kind,
		Role:         hit.Instance.Role,
		Distance:     hit.Distance,
	}
	if hit.Index < 0 {
		rec.InstanceSeq = -1
	}

	if hit.Scored {
		rec.Value = hit.Value()
		t.score += rec.Value
		t.collected[hit.Instance.Role]++
		if snd := hit.Sound(); snd != "" && t.deps.Sound != nil {
			t.deps.Sound.Play(snd)
		}
	}
	t.clicks = append(t.clicks, rec)

	if hit.Matched {
		t.logger.Printf("[TRIAL] hit %s #%d (%s) at %.0f,%.0f value=%d",
			hit.Instance.Kind, hit.Instance.Seq, hit.Instance.Role, click.X, click.Y, rec.Value)
	}
}

func (t *Trial) frame() Frame {
	instances := t.scene.Instances()
	items := make([]FrameItem, len(instances))
	for i, inst := range instances {
		items[i] = FrameItem{
			Image:     inst.Image,
			Kind:      inst.Kind,
			Role:      inst.Role,
			X:         inst.X,
			Y:         inst.Y,
			Collected: inst.Collected,
		}
	}
	return Frame{
		Bounds:           t.cfg.Bounds(),
		Background:       t.cfg.Background,
		Items:            items,
		ShowMousePointer: t.cfg.ShowMousePointer,
		Score:            t.score,
		TargetsLeft:      t.scene.Counts().Targets,
	}
}

func (t *Trial) result(start time.Time, aborted, timedOut bool) Result {
	counts := t.scene.Counts()
	clicks := make([]ClickRecord, len(t.clicks))
	copy(clicks, t.clicks)
	return Result{
		ID:                   t.id,
		Name:                 t.cfg.Name,
		StartedAt:            start,
		Elapsed:              t.deps.Clock.Now().Sub(start),
		Aborted:              aborted,
		TimedOut:             timedOut,
		Seed:                 t.cfg.Seed,
		Score:                t.score,
		Targets:              t.targets,
		Distractors:          t.distractors,
		CollectedTargets:     t.collected[element.RoleTarget],
		CollectedDistractors: t.collected[element.RoleDistractor],
		RemainingTargets:     counts.Targets,
		RemainingDistractors: counts.Distractors,
		Clicks:               clicks,
	}
}

// Release frees trial resources. Safe to call more than once; Run calls it on exit.
func (t *Trial) Release() {
	t.release()
}

func (t *Trial) release() {
	if t.released {
		return
	}
	t.released = true
	t.deps.Sink.Release()
	if t.deps.Sound != nil {
		t.deps.Sound.Release()
	}
}
