package element

import (
	"fmt"
	"strings"
)

// Role decides whether an element counts towards trial completion
type Role int

const (
	RoleTarget     Role = iota // Must all be collected to finish the trial
	RoleDistractor             // Never affects completion
)

// ClickAction is the pointer gesture an element reacts to
type ClickAction int

const (
	ActionClick       ClickAction = iota // Single or double click
	ActionDoubleClick                    // Double click only
	ActionMouseOver                      // Hovering or any click
)

// ClickResult is what happens to an element after a successful hit
type ClickResult int

const (
	ResultVanish ClickResult = iota // Removed from the scene
	ResultRemain                    // Stays, scored once
)

// ClickKind classifies an input event delivered to the resolver
type ClickKind int

const (
	KindSingle ClickKind = iota
	KindDouble
	KindHover
)

// Button identifies the mouse button of a click
type Button int

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
)

func (r Role) String() string {
	switch r {
	case RoleTarget:
		return "target"
	case RoleDistractor:
		return "distractor"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

func (a ClickAction) String() string {
	switch a {
	case ActionClick:
		return "click"
	case ActionDoubleClick:
		return "double_click"
	case ActionMouseOver:
		return "mouse_over"
	default:
		return fmt.Sprintf("ClickAction(%d)", int(a))
	}
}

func (r ClickResult) String() string {
	switch r {
	case ResultVanish:
		return "vanish"
	case ResultRemain:
		return "remain"
	default:
		return fmt.Sprintf("ClickResult(%d)", int(r))
	}
}

func (k ClickKind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindDouble:
		return "double"
	case KindHover:
		return "hover"
	default:
		return fmt.Sprintf("ClickKind(%d)", int(k))
	}
}

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	default:
		return "none"
	}
}

// normalize folds the editor labels ("double click", "Mouse Over") onto identifiers
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "_")
	return strings.ReplaceAll(s, " ", "_")
}

// ParseRole parses a role label
func ParseRole(s string) (Role, error) {
	switch normalize(s) {
	case "target":
		return RoleTarget, nil
	case "distractor":
		return RoleDistractor, nil
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

// ParseClickAction parses a click action label; empty selects click
func ParseClickAction(s string) (ClickAction, error) {
	switch normalize(s) {
	case "", "click":
		return ActionClick, nil
	case "double_click", "doubleclick":
		return ActionDoubleClick, nil
	case "mouse_over", "mouseover", "hover":
		return ActionMouseOver, nil
	}
	return 0, fmt.Errorf("unknown click action %q", s)
}

// ParseClickResult parses a click result label; empty selects vanish
func ParseClickResult(s string) (ClickResult, error) {
	switch normalize(s) {
	case "", "vanish":
		return ResultVanish, nil
	case "remain":
		return ResultRemain, nil
	}
	return 0, fmt.Errorf("unknown click result %q", s)
}

// Accepts reports whether an element with this action reacts to an event of kind k
func (a ClickAction) Accepts(k ClickKind) bool {
	switch a {
	case ActionClick:
		return k == KindSingle || k == KindDouble
	case ActionDoubleClick:
		return k == KindDouble
	case ActionMouseOver:
		return true
	}
	return false
}
