package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/lixenwraith/forager/core"
	"github.com/lixenwraith/forager/element"
	"github.com/lixenwraith/forager/layout"
	"github.com/lixenwraith/forager/trial"
)

// Experiment variable names written by the foraging item editor
const (
	VarElements         = "elements"
	VarLocation         = "location_settings"
	VarBackground       = "background"
	VarFullscreen       = "fullscreen"
	VarWidth            = "width"
	VarHeight           = "height"
	VarShowMousePointer = "show_mousepointer"
	VarClickRadius      = "click_radius"
)

// Editor variables cannot hold braces, so JSON objects are stored with angle brackets
func toBraces(s string) string   { return strings.NewReplacer("<", "{", ">", "}").Replace(s) }
func toBrackets(s string) string { return strings.NewReplacer("{", "<", "}", ">").Replace(s) }

// varElement is one element line. The editor writes amount as text and value as a number.
type varElement struct {
	Image       string      `json:"image"`
	Type        string      `json:"type"`
	Role        string      `json:"role"`
	Value       json.Number `json:"value"`
	ClickSound  string      `json:"click_sound"`
	ClickAction string      `json:"click_action"`
	ClickResult string      `json:"click_result"`
	Amount      json.Number `json:"amount"`
}

// flexInt accepts a JSON number or a numeric string
func flexInt(raw json.RawMessage, field string) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" || string(raw) == `""` {
		return 0, nil
	}
	var s string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, core.NewConfigError(field, "%v", err)
		}
	} else {
		s = string(raw)
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, core.NewConfigError(field, "not an integer: %s", raw)
	}
	return n, nil
}

// DecodeElements parses the elements variable: one angle-bracket JSON object per line
func DecodeElements(text string) (element.Catalog, error) {
	var catalog element.Catalog
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		field := fmt.Sprintf("%s[%d]", VarElements, len(catalog))
		var raw map[string]json.RawMessage
		if err := json.Unmarshal([]byte(toBraces(line)), &raw); err != nil {
			e := core.NewConfigError(field, "line %d is not an element record", i+1)
			e.Err = err
			return nil, e
		}

		var ve varElement
		for key, dst := range map[string]*string{
			"image": &ve.Image, "type": &ve.Type, "role": &ve.Role, "click_sound": &ve.ClickSound,
			"click_action": &ve.ClickAction, "click_result": &ve.ClickResult,
		} {
			if v, ok := raw[key]; ok && string(v) != "null" {
				if err := json.Unmarshal(v, dst); err != nil {
					return nil, core.NewConfigError(field+"."+key, "expected a string")
				}
			}
		}

		value, err := flexInt(raw["value"], field+".value")
		if err != nil {
			return nil, err
		}
		amount, err := flexInt(raw["amount"], field+".amount")
		if err != nil {
			return nil, err
		}

		t, err := newType(field, ve.Image, ve.Type, ve.Role, ve.ClickSound, ve.ClickAction, ve.ClickResult)
		if err != nil {
			return nil, err
		}
		t.Value, t.Amount = value, amount
		catalog = append(catalog, t)
	}
	return catalog, nil
}

// newType parses the labelled fields shared by the TOML file and the editor variables
func newType(field, image, kind, role, sound, action, result string) (element.Type, error) {
	r, err := element.ParseRole(role)
	if err != nil {
		return element.Type{}, core.NewConfigError(field+".role", "%v", err)
	}
	a, err := element.ParseClickAction(action)
	if err != nil {
		return element.Type{}, core.NewConfigError(field+".click_action", "%v", err)
	}
	res, err := element.ParseClickResult(result)
	if err != nil {
		return element.Type{}, core.NewConfigError(field+".click_result", "%v", err)
	}
	return element.Type{
		Image:       image,
		Kind:        kind,
		Role:        r,
		ClickSound:  sound,
		ClickAction: a,
		ClickResult: res,
	}, nil
}

// EncodeElements writes the catalog in the editor's element format
func EncodeElements(catalog element.Catalog) (string, error) {
	lines := make([]string, 0, len(catalog))
	for _, t := range catalog {
		ve := varElement{
			Image:       t.Image,
			Type:        t.Kind,
			Role:        t.Role.String(),
			Value:       json.Number(strconv.Itoa(t.Value)),
			ClickSound:  t.ClickSound,
			ClickAction: t.ClickAction.String(),
			ClickResult: t.ClickResult.String(),
			Amount:      json.Number(strconv.Itoa(t.Amount)),
		}
		b, err := json.Marshal(ve)
		if err != nil {
			return "", fmt.Errorf("encode element %q: %w", t.Image, err)
		}
		lines = append(lines, toBrackets(string(b)))
	}
	return strings.Join(lines, "\n"), nil
}

// DecodeLocation parses "<mode: grid, rows: 7, cols: 12, ...>". Missing keys keep the defaults.
func DecodeLocation(text string) (layout.Spec, error) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "<") || !strings.HasSuffix(text, ">") {
		return layout.Spec{}, core.NewConfigError(VarLocation, "expected <mode: ..., key: value> got %q", text)
	}

	fields := make(map[string]string)
	var order []string
	for _, part := range strings.Split(text[1:len(text)-1], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, ok := strings.Cut(part, ":")
		if !ok {
			return layout.Spec{}, core.NewConfigError(VarLocation, "malformed entry %q", part)
		}
		key = strings.TrimSpace(key)
		fields[key] = strings.TrimSpace(val)
		order = append(order, key)
	}

	if len(order) == 0 || order[0] != "mode" {
		return layout.Spec{}, core.NewConfigError(VarLocation, "mode must come first")
	}
	mode, err := layout.ParseMode(fields["mode"])
	if err != nil {
		return layout.Spec{}, core.NewConfigError(VarLocation+".mode", "%v", err)
	}

	spec := defaultLayout()
	spec.Mode = mode

	var targets map[string]*float64
	var rows, cols *int
	switch mode {
	case layout.ModeGrid:
		g := &spec.Grid
		rows, cols = &g.Rows, &g.Cols
		targets = map[string]*float64{
			"jitter_x": &g.JitterX, "jitter_y": &g.JitterY,
			"spacing_x": &g.SpacingX, "spacing_y": &g.SpacingY,
		}
	case layout.ModeScatter:
		sc := &spec.Scatter
		targets = map[string]*float64{
			"mean_x": &sc.MeanX, "std_x": &sc.StdX,
			"mean_y": &sc.MeanY, "std_y": &sc.StdY,
		}
	}

	for _, key := range order[1:] {
		val := fields[key]
		field := VarLocation + "." + key
		switch {
		case key == "rows" && rows != nil, key == "cols" && cols != nil:
			n, err := strconv.Atoi(val)
			if err != nil {
				return layout.Spec{}, core.NewConfigError(field, "not an integer: %q", val)
			}
			if key == "rows" {
				*rows = n
			} else {
				*cols = n
			}
		case targets[key] != nil:
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return layout.Spec{}, core.NewConfigError(field, "not a number: %q", val)
			}
			*targets[key] = f
		default:
			return layout.Spec{}, core.NewConfigError(field, "unknown key for %s layout", mode)
		}
	}

	if err := spec.Validate(); err != nil {
		return layout.Spec{}, err
	}
	return spec, nil
}

// EncodeLocation writes spec in the editor's location format
func EncodeLocation(spec layout.Spec) string {
	num := func(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }
	if spec.Mode == layout.ModeScatter {
		s := spec.Scatter
		return fmt.Sprintf("<mode: scatter, mean_x: %s, std_x: %s, mean_y: %s, std_y: %s>",
			num(s.MeanX), num(s.StdX), num(s.MeanY), num(s.StdY))
	}
	g := spec.Grid
	return fmt.Sprintf("<mode: grid, rows: %d, cols: %d, jitter_x: %s, jitter_y: %s, spacing_x: %s, spacing_y: %s>",
		g.Rows, g.Cols, num(g.JitterX), num(g.JitterY), num(g.SpacingX), num(g.SpacingY))
}

type varBackground struct {
	Color *string `json:"color"`
	Image *string `json:"image"`
}

// DecodeBackground parses the background record; empty text is an unset background
func DecodeBackground(text string) (trial.Background, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return trial.Background{}, nil
	}
	// Older experiments store a bare colour
	if strings.HasPrefix(text, "#") {
		b := trial.NewBackground(text, "")
		return b, b.Validate()
	}

	var vb varBackground
	if err := json.Unmarshal([]byte(toBraces(text)), &vb); err != nil {
		e := core.NewConfigError(VarBackground, "not a background record: %q", text)
		e.Err = err
		return trial.Background{}, e
	}
	var color, image string
	if vb.Color != nil {
		color = *vb.Color
	}
	if vb.Image != nil {
		image = *vb.Image
	}
	b := trial.NewBackground(color, image)
	return b, b.Validate()
}

// EncodeBackground writes the background record with null for the unused side
func EncodeBackground(b trial.Background) (string, error) {
	var vb varBackground
	switch b.Kind {
	case trial.BackgroundColor:
		vb.Color = &b.Color
	case trial.BackgroundImage:
		vb.Image = &b.Image
	}
	out, err := json.Marshal(vb)
	if err != nil {
		return "", fmt.Errorf("encode background: %w", err)
	}
	return toBrackets(string(out)), nil
}

func parseYesNo(field, s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	}
	return false, core.NewConfigError(field, "expected yes or no, got %q", s)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// FromVars builds a trial configuration from editor variables. Absent variables keep
// their defaults; present but malformed ones are errors.
func FromVars(vars map[string]string) (trial.Config, error) {
	cfg := trial.DefaultConfig()
	cfg.Layout = defaultLayout()

	if v, ok := vars[VarElements]; ok {
		catalog, err := DecodeElements(v)
		if err != nil {
			return trial.Config{}, err
		}
		cfg.Catalog = catalog
	}
	if v, ok := vars[VarLocation]; ok && strings.TrimSpace(v) != "" {
		spec, err := DecodeLocation(v)
		if err != nil {
			return trial.Config{}, err
		}
		cfg.Layout = spec
	}
	if v, ok := vars[VarBackground]; ok {
		bg, err := DecodeBackground(v)
		if err != nil {
			return trial.Config{}, err
		}
		cfg.Background = bg
	}

	for name, dst := range map[string]*bool{
		VarFullscreen:       &cfg.Fullscreen,
		VarShowMousePointer: &cfg.ShowMousePointer,
	} {
		if v, ok := vars[name]; ok {
			b, err := parseYesNo(name, v)
			if err != nil {
				return trial.Config{}, err
			}
			*dst = b
		}
	}
	for name, dst := range map[string]*int{VarWidth: &cfg.Width, VarHeight: &cfg.Height} {
		if v, ok := vars[name]; ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return trial.Config{}, core.NewConfigError(name, "not an integer: %q", v)
			}
			*dst = n
		}
	}
	if v, ok := vars[VarClickRadius]; ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return trial.Config{}, core.NewConfigError(VarClickRadius, "not a number: %q", v)
		}
		cfg.ClickRadius = f
	}
	return cfg, nil
}

// ToVars writes cfg as editor variables
func ToVars(cfg trial.Config) (map[string]string, error) {
	elements, err := EncodeElements(cfg.Catalog)
	if err != nil {
		return nil, err
	}
	bg, err := EncodeBackground(cfg.Background)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		VarElements:         elements,
		VarLocation:         EncodeLocation(cfg.Layout),
		VarBackground:       bg,
		VarFullscreen:       yesNo(cfg.Fullscreen),
		VarWidth:            strconv.Itoa(cfg.Width),
		VarHeight:           strconv.Itoa(cfg.Height),
		VarShowMousePointer: yesNo(cfg.ShowMousePointer),
		VarClickRadius:      strconv.FormatFloat(cfg.ClickRadius, 'g', -1, 64),
	}, nil
}

// defaultLayout is a grid spec that also carries the scatter defaults
func defaultLayout() layout.Spec {
	return layout.Spec{Mode: layout.ModeGrid, Grid: layout.DefaultGrid(), Scatter: layout.DefaultScatter()}
}
