package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/lixenwraith/forager/audio"
	"github.com/lixenwraith/forager/config"
	"github.com/lixenwraith/forager/core"
	"github.com/lixenwraith/forager/input"
	"github.com/lixenwraith/forager/pool"
	"github.com/lixenwraith/forager/render"
	"github.com/lixenwraith/forager/store"
	"github.com/lixenwraith/forager/trial"
	"github.com/samber/lo"
)

var (
	configPath = flag.String("config", "", "Trial configuration file (TOML); defaults when empty")
	poolDir    = flag.String("pool", "assets", "Resource pool directory for images and sounds")
	dbPath     = flag.String("db", "forager.db", "SQLite results database; empty disables storage")
	numTrials  = flag.Int("trials", 1, "Number of trials to run")
	debugFlag  = flag.Bool("debug", false, "Write debug log to logs/forager.log")
)

func main() {
	os.Exit(run())
}

func run() int {
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	flag.Parse()

	if logFile := setupLogging(*debugFlag); logFile != nil {
		defer logFile.Close()
	}
	logger := log.Default()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}
	if *numTrials < 1 {
		fmt.Fprintf(os.Stderr, "Invalid -trials %d: must be at least 1\n", *numTrials)
		return 1
	}

	resources := pool.NewDirPool(*poolDir, logger)
	if err := resources.Discover(); err != nil {
		logger.Printf("[MAIN] pool discovery failed: %v", err)
	}
	logger.Printf("[MAIN] pool %s: %d resources", resources.Root(), len(resources.Files()))

	var db store.DB
	if *dbPath != "" {
		sqlite, err := store.NewSQLiteStore(*dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open results database: %v\n", err)
			return 1
		}
		defer sqlite.Close()
		if err := sqlite.Migrate(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to migrate results database: %v\n", err)
			return 1
		}
		db = sqlite
	}

	sound := audio.NewSoundManager(audio.Config{
		Enabled:      cfg.Audio.Enabled,
		MasterVolume: cfg.Audio.MasterVolume,
		SampleRate:   audio.DefaultConfig().SampleRate,
	}, logger)
	if err := sound.Initialize(); err != nil {
		logger.Printf("[MAIN] audio unavailable: %v (continuing without audio)", err)
	}
	defer sound.Cleanup()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		return 1
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize terminal: %v\n", err)
		return 1
	}
	var finiOnce sync.Once
	fini := func() { finiOnce.Do(screen.Fini) }
	core.SetCrashFinalizer(fini)
	defer fini()

	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.HideCursor()
	screen.Clear()

	rend := render.NewTerminalRenderer(screen, logger)
	in := input.NewTerminalInput(screen, rend, nil, input.Hooks{
		OnMove:   rend.MovePointer,
		OnResize: rend.Redraw,
	}, logger)
	defer in.Close()

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := trial.Deps{
		Pool:   resources,
		Sink:   rend,
		Input:  in,
		Sound:  sound,
		Logger: logger,
	}

	var results []trial.Result
	var runErr error
	for i := 0; i < *numTrials; i++ {
		t, err := trial.Prepare(cfg.Trial, deps)
		if err != nil {
			fini()
			fmt.Fprintf(os.Stderr, "Failed to prepare trial %d: %v\n", i+1, err)
			return 1
		}

		ctx, cancel := context.WithCancel(rootCtx)
		res, err := t.Run(ctx)
		cancel()

		if err != nil {
			runErr = fmt.Errorf("trial %d: %w", i+1, err)
			logger.Printf("[MAIN] %v", runErr)
		}
		results = append(results, res)

		if db != nil {
			if err := db.SaveResult(res); err != nil {
				logger.Printf("[MAIN] failed to store trial %s: %v", res.ID, err)
			}
		}

		if err != nil || res.Aborted {
			break
		}
	}

	fini()
	printSummary(os.Stdout, results)

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		return 1
	}
	return 0
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	cfg := config.Default()
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Trial.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func printSummary(w io.Writer, results []trial.Result) {
	if len(results) == 0 {
		return
	}
	for i, res := range results {
		fmt.Fprintf(w, "trial %d  %s  %s  score %d  targets %d/%d  distractors %d/%d  clicks %d  %.2fs\n",
			i+1, res.ID, outcome(res), res.Score,
			res.CollectedTargets, res.Targets,
			res.CollectedDistractors, res.Distractors,
			len(res.Clicks), res.Elapsed.Seconds())
	}
	total := lo.SumBy(results, func(r trial.Result) int { return r.Score })
	completed := lo.CountBy(results, trial.Result.Completed)
	fmt.Fprintf(w, "%d trial(s), %d completed, total score %d\n", len(results), completed, total)
}

func outcome(res trial.Result) string {
	switch {
	case res.Aborted:
		return "aborted"
	case res.TimedOut:
		return "timed out"
	default:
		return "completed"
	}
}
