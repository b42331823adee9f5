// Package overlaytest provides an in-memory overlay window for tests.
package overlaytest

import (
	"sync"

	"screenshots/src/messages"
	"screenshots/src/overlay"
)

// Window records every call and mirrors the state a real window would be in.
type Window struct {
	mu sync.Mutex

	Resizable     bool
	AlwaysOnTop   bool
	Level         overlay.Level
	AllWorkspaces bool
	Kiosk         bool
	Bounds        messages.Rect
	Visible       bool
	Focused       bool
	Reloads       int

	Ops  []string
	Sent []messages.Message

	// Err, when set, is returned from every call after recording it.
	Err error
}

// New returns a window in the idle state.
func New() *Window { return &Window{} }

func (w *Window) record(op string) error {
	w.Ops = append(w.Ops, op)
	return w.Err
}

func (w *Window) SetResizable(resizable bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Resizable = resizable
	if resizable {
		return w.record("resizable:on")
	}
	return w.record("resizable:off")
}

func (w *Window) SetAlwaysOnTop(on bool, level overlay.Level) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.AlwaysOnTop, w.Level = on, level
	if on {
		return w.record("top:on")
	}
	return w.record("top:off")
}

func (w *Window) SetVisibleOnAllWorkspaces(visible bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.AllWorkspaces = visible
	return w.record("workspaces")
}

func (w *Window) SetKiosk(on bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Kiosk = on
	return w.record("kiosk")
}

func (w *Window) SetBounds(r messages.Rect) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Err == nil && !w.Resizable {
		// mirrors backends that ignore bounds on locked windows
		return w.record("bounds:rejected")
	}
	w.Bounds = r
	return w.record("bounds")
}

func (w *Window) Show() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Visible, w.Focused = true, true
	return w.record("show")
}

func (w *Window) Hide() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Visible, w.Focused = false, false
	return w.record("hide")
}

func (w *Window) Blur() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Focused = false
	return w.record("blur")
}

func (w *Window) Reload() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Reloads++
	return w.record("reload")
}

func (w *Window) Send(msg messages.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Sent = append(w.Sent, msg)
	return w.record("send:" + msg.Type())
}

// SentTypes lists the types of every message sent so far.
func (w *Window) SentTypes() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	types := make([]string, 0, len(w.Sent))
	for _, m := range w.Sent {
		types = append(types, m.Type())
	}
	return types
}

// Snapshot returns a copy of the window's state and call logs.
func (w *Window) Snapshot() Window {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Window{
		Resizable:     w.Resizable,
		AlwaysOnTop:   w.AlwaysOnTop,
		Level:         w.Level,
		AllWorkspaces: w.AllWorkspaces,
		Kiosk:         w.Kiosk,
		Bounds:        w.Bounds,
		Visible:       w.Visible,
		Focused:       w.Focused,
		Reloads:       w.Reloads,
		Ops:           append([]string(nil), w.Ops...),
		Sent:          append([]messages.Message(nil), w.Sent...),
	}
}
