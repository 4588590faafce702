package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/lixenwraith/forager/core"
	"github.com/lixenwraith/forager/element"
	"github.com/lixenwraith/forager/layout"
	"github.com/lixenwraith/forager/trial"
)

// Audio settings for click sound playback
type Audio struct {
	Enabled      bool
	MasterVolume float64 // 0.0 - 1.0
}

// Config is everything a host needs to run trials
type Config struct {
	Trial trial.Config
	Audio Audio
}

// Default returns the editor defaults with audio on at half volume
func Default() *Config {
	tc := trial.DefaultConfig()
	tc.Layout = defaultLayout()
	return &Config{
		Trial: tc,
		Audio: Audio{Enabled: true, MasterVolume: 0.5},
	}
}

type fileBackground struct {
	Color string `toml:"color"`
	Image string `toml:"image"`
}

type fileLayout struct {
	Mode     string  `toml:"mode"`
	Rows     int     `toml:"rows"`
	Cols     int     `toml:"cols"`
	JitterX  float64 `toml:"jitter_x"`
	JitterY  float64 `toml:"jitter_y"`
	SpacingX float64 `toml:"spacing_x"`
	SpacingY float64 `toml:"spacing_y"`
	MeanX    float64 `toml:"mean_x"`
	StdX     float64 `toml:"std_x"`
	MeanY    float64 `toml:"mean_y"`
	StdY     float64 `toml:"std_y"`
}

type fileElement struct {
	Image       string `toml:"image"`
	Kind        string `toml:"kind"`
	Role        string `toml:"role"`
	Value       int    `toml:"value"`
	ClickSound  string `toml:"click_sound"`
	ClickAction string `toml:"click_action"`
	ClickResult string `toml:"click_result"`
	Amount      int    `toml:"amount"`
}

type fileAudio struct {
	Enabled      bool `toml:"enabled"`
	MasterVolume int  `toml:"master_volume"` // 0-100
}

// file mirrors the TOML trial file. Presence of keys is read from toml.MetaData.
type file struct {
	Name             string            `toml:"name"`
	Fullscreen       bool              `toml:"fullscreen"`
	Width            int               `toml:"width"`
	Height           int               `toml:"height"`
	ShowMousePointer bool              `toml:"show_mousepointer"`
	ClickRadius      float64           `toml:"click_radius"`
	Timeout          string            `toml:"timeout"`
	Seed             int64             `toml:"seed"`
	Background       fileBackground    `toml:"background"`
	Layout           fileLayout        `toml:"layout"`
	Elements         []fileElement     `toml:"elements"`
	Audio            fileAudio         `toml:"audio"`
	Vars             map[string]string `toml:"vars"`
}

// Load reads a TOML trial file, applies environment overrides and validates the result
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Trial.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes a TOML trial file on top of the defaults. Editor variables under
// [vars] are applied first; explicit keys override them.
func Parse(data []byte) (*Config, error) {
	var f file
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		e := core.NewConfigError("toml", "decode failed")
		e.Err = err
		return nil, e
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, core.NewConfigError("toml", "unknown keys: %s", strings.Join(keys, ", "))
	}

	cfg := Default()
	if len(f.Vars) > 0 {
		tc, err := FromVars(f.Vars)
		if err != nil {
			return nil, err
		}
		cfg.Trial = tc
	}

	tc := &cfg.Trial
	if md.IsDefined("name") {
		tc.Name = f.Name
	}
	if md.IsDefined("fullscreen") {
		tc.Fullscreen = f.Fullscreen
	}
	if md.IsDefined("width") {
		tc.Width = f.Width
	}
	if md.IsDefined("height") {
		tc.Height = f.Height
	}
	if md.IsDefined("show_mousepointer") {
		tc.ShowMousePointer = f.ShowMousePointer
	}
	if md.IsDefined("click_radius") {
		tc.ClickRadius = f.ClickRadius
	}
	if md.IsDefined("timeout") {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return nil, core.NewConfigError("timeout", "invalid duration %q", f.Timeout)
		}
		tc.Timeout = d
	}
	if md.IsDefined("seed") {
		if f.Seed < 0 {
			return nil, core.NewConfigError("seed", "must be >= 0, got %d", f.Seed)
		}
		seed := uint64(f.Seed)
		tc.Seed = &seed
	}

	if md.IsDefined("background") {
		tc.Background = trial.NewBackground(f.Background.Color, f.Background.Image)
	}

	if md.IsDefined("layout") {
		spec, err := overlayLayout(tc.Layout, f.Layout, md)
		if err != nil {
			return nil, err
		}
		tc.Layout = spec
	}

	if md.IsDefined("elements") {
		catalog := make(element.Catalog, 0, len(f.Elements))
		for i, fe := range f.Elements {
			field := fmt.Sprintf("elements[%d]", i)
			t, err := newType(field, fe.Image, fe.Kind, fe.Role, fe.ClickSound, fe.ClickAction, fe.ClickResult)
			if err != nil {
				return nil, err
			}
			t.Value, t.Amount = fe.Value, fe.Amount
			catalog = append(catalog, t)
		}
		tc.Catalog = catalog
	}

	if md.IsDefined("audio", "enabled") {
		cfg.Audio.Enabled = f.Audio.Enabled
	}
	if md.IsDefined("audio", "master_volume") {
		cfg.Audio.MasterVolume = clampVolume(f.Audio.MasterVolume)
	}

	return cfg, nil
}

func overlayLayout(base layout.Spec, fl fileLayout, md toml.MetaData) (layout.Spec, error) {
	if md.IsDefined("layout", "mode") {
		mode, err := layout.ParseMode(fl.Mode)
		if err != nil {
			return layout.Spec{}, core.NewConfigError("layout.mode", "%v", err)
		}
		base.Mode = mode
	}

	ints := map[string]*int{"rows": &base.Grid.Rows, "cols": &base.Grid.Cols}
	intVals := map[string]int{"rows": fl.Rows, "cols": fl.Cols}
	for key, dst := range ints {
		if md.IsDefined("layout", key) {
			*dst = intVals[key]
		}
	}

	floats := map[string]struct {
		dst *float64
		val float64
	}{
		"jitter_x":  {&base.Grid.JitterX, fl.JitterX},
		"jitter_y":  {&base.Grid.JitterY, fl.JitterY},
		"spacing_x": {&base.Grid.SpacingX, fl.SpacingX},
		"spacing_y": {&base.Grid.SpacingY, fl.SpacingY},
		"mean_x":    {&base.Scatter.MeanX, fl.MeanX},
		"std_x":     {&base.Scatter.StdX, fl.StdX},
		"mean_y":    {&base.Scatter.MeanY, fl.MeanY},
		"std_y":     {&base.Scatter.StdY, fl.StdY},
	}
	for key, f := range floats {
		if md.IsDefined("layout", key) {
			*f.dst = f.val
		}
	}
	return base, nil
}

// ApplyEnv overrides settings from FORAGER_* environment variables
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("FORAGER_CLICK_RADIUS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return core.NewConfigError("FORAGER_CLICK_RADIUS", "not a number: %q", v)
		}
		c.Trial.ClickRadius = f
	}

	if v := os.Getenv("FORAGER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return core.NewConfigError("FORAGER_TIMEOUT", "invalid duration %q", v)
		}
		c.Trial.Timeout = d
	}

	if v := os.Getenv("FORAGER_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return core.NewConfigError("FORAGER_SEED", "not an unsigned integer: %q", v)
		}
		c.Trial.Seed = &seed
	}

	if v := os.Getenv("FORAGER_AUDIO_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return core.NewConfigError("FORAGER_AUDIO_ENABLED", "not a boolean: %q", v)
		}
		c.Audio.Enabled = b
	}

	// 0-100 converted to 0.0-1.0
	if v := os.Getenv("FORAGER_MASTER_VOLUME"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return core.NewConfigError("FORAGER_MASTER_VOLUME", "not an integer: %q", v)
		}
		c.Audio.MasterVolume = clampVolume(n)
	}
	return nil
}

func clampVolume(percent int) float64 {
	v := float64(percent) / 100.0
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
