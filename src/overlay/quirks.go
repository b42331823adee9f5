package overlay

import "runtime"

// Quirks captures per-OS window behaviour that the lifecycle has to work
// around.
type Quirks interface {
	Name() string
	// HideBeforeReset makes Reset hide the window and reload its content
	// before clearing it. Hiding is slow on some platforms; doing it first
	// trades a visible blink for a faster perceived close.
	HideBeforeReset() bool
}

type defaultQuirks struct{}

func (defaultQuirks) Name() string          { return "default" }
func (defaultQuirks) HideBeforeReset() bool { return false }

type darwinQuirks struct{}

func (darwinQuirks) Name() string          { return "darwin" }
func (darwinQuirks) HideBeforeReset() bool { return true }

// ForOS returns the quirks for a GOOS value.
func ForOS(goos string) Quirks {
	if goos == "darwin" {
		return darwinQuirks{}
	}
	return defaultQuirks{}
}

var current = ForOS(runtime.GOOS)

// Current returns the quirks of the running platform.
func Current() Quirks { return current }
