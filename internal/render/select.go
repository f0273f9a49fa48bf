package render

import "github.com/starford/terminalart/internal/models"

// Mode is the terminal layout a render resolved to.
type Mode int

const (
	ModePromo Mode = iota
	ModeSingle
	ModeWindow
)

func (m Mode) String() string {
	switch m {
	case ModeSingle:
		return "single"
	case ModeWindow:
		return "window"
	default:
		return "promo"
	}
}

// View names a rendered product. Artifact and Receipt draw the target
// alone; the window views draw it among its neighbours.
type View int

const (
	ViewArtifact View = iota
	ViewReceipt
	ViewWindow
	ViewCompact
)

var viewNames = map[string]View{
	"artifact": ViewArtifact,
	"receipt":  ViewReceipt,
	"window":   ViewWindow,
	"compact":  ViewCompact,
}

// ParseView maps a view name to a View.
func ParseView(s string) (View, bool) {
	v, ok := viewNames[s]
	return v, ok
}

func (v View) String() string {
	for name, vv := range viewNames {
		if vv == v {
			return name
		}
	}
	return "unknown"
}

// HalfWidth is the number of neighbours read on each side of the target.
func (v View) HalfWidth() int {
	switch v {
	case ViewWindow:
		return WindowLarge.HalfWidth
	case ViewCompact:
		return WindowCompact.HalfWidth
	default:
		return 0
	}
}

// Select picks the layout for w. Precedence: an unresolved target always
// yields the promotional card; otherwise a view with neighbours yields a
// window and a target-only view yields a single message.
func Select(w models.Window, halfWidth int) Mode {
	switch {
	case w.Target == 0 || !w.HasTarget():
		return ModePromo
	case halfWidth > 0:
		return ModeWindow
	default:
		return ModeSingle
	}
}

// Compose selects the mode for w under view v and lays it out.
func Compose(w models.Window, v View) (Scene, Mode) {
	mode := Select(w, v.HalfWidth())
	switch mode {
	case ModeWindow:
		spec := WindowLarge
		if v == ViewCompact {
			spec = WindowCompact
		}
		return Window(w, spec), mode
	case ModeSingle:
		e, _ := w.TargetEntry()
		if v == ViewReceipt {
			return Receipt(e, w.Total), mode
		}
		return Artifact(e), mode
	default:
		return Promo(), mode
	}
}
