// Package overlay owns the lifecycle of the single borderless, always-on-top
// window that hosts the rendering surface.
package overlay

import (
	"math"
	"sync"

	"screenshots/src/display"
	"screenshots/src/logutil"
	"screenshots/src/messages"
)

// Level is the stacking level passed with SetAlwaysOnTop.
type Level string

const (
	LevelNormal      Level = "normal"
	LevelScreenSaver Level = "screen-saver"
)

// Window is a handle to the native overlay window. Implementations may fail
// any call; the Manager treats every call as best-effort.
type Window interface {
	SetResizable(resizable bool) error
	SetAlwaysOnTop(on bool, level Level) error
	SetVisibleOnAllWorkspaces(visible bool) error
	SetKiosk(on bool) error
	SetBounds(r messages.Rect) error
	Show() error
	Hide() error
	Blur() error
	// Reload forces a full reload of the window's content.
	Reload() error
	// Send delivers a message to the rendering surface inside the window.
	Send(msg messages.Message) error
}

// Options configures a Manager.
type Options struct {
	Quirks Quirks
	// SingleWindow keeps the window mapped at zero size between sessions.
	// Otherwise it is also hidden on reset.
	SingleWindow bool
}

// Manager drives one overlay window through
// Uninitialized -> Idle -> Positioned -> Idle.
// With no window attached every operation is a silent no-op.
type Manager struct {
	mu           sync.Mutex
	win          Window
	quirks       Quirks
	singleWindow bool
}

func NewManager(opts Options) *Manager {
	q := opts.Quirks
	if q == nil {
		q = Current()
	}
	return &Manager{quirks: q, singleWindow: opts.SingleWindow}
}

// Attach installs the window handle. The window is expected to start hidden,
// zero-sized and non-resizable.
func (m *Manager) Attach(win Window) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.win = win
}

// Close drops the handle. Later operations become no-ops.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.win = nil
}

// Present reports whether a window handle is attached.
func (m *Manager) Present() bool {
	return m.window() != nil
}

func (m *Manager) window() Window {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.win
}

// LogicalRect converts a display's device-pixel geometry into the logical
// rectangle the window is sized to.
func LogicalRect(d display.Display) messages.Rect {
	s := d.ScaleFactor
	if s <= 0 {
		s = 1
	}
	conv := func(v int) int { return int(math.Round(float64(v) / s)) }
	return messages.Rect{X: conv(d.X), Y: conv(d.Y), Width: conv(d.Width), Height: conv(d.Height)}
}

// Position sizes the window over d and shows it on top of everything.
// Resizing is enabled only for the bounds change; many backends reject
// bounds changes on a non-resizable window.
func (m *Manager) Position(d display.Display) {
	win := m.window()
	if win == nil {
		return
	}
	r := LogicalRect(d)
	logutil.WithComponent("overlay").Debug().
		Int("display", d.ID).
		Interface("bounds", r).
		Msg("positioning overlay")

	try("setResizable", win.SetResizable(true))
	try("setKiosk", win.SetKiosk(false))
	try("setBounds", win.SetBounds(r))
	try("setAlwaysOnTop", win.SetAlwaysOnTop(true, LevelScreenSaver))
	try("setVisibleOnAllWorkspaces", win.SetVisibleOnAllWorkspaces(true))
	try("setResizable", win.SetResizable(false))
	try("show", win.Show())
}

// Reset returns the window to the idle state: zero-size, unfocused,
// non-resizable and not always-on-top, with the surface's state cleared.
func (m *Manager) Reset() {
	win := m.window()
	if win == nil {
		return
	}
	// some platforms refuse to shrink a locked window
	try("setResizable", win.SetResizable(true))
	try("setAlwaysOnTop", win.SetAlwaysOnTop(false, LevelNormal))

	if m.quirks.HideBeforeReset() {
		try("hide", win.Hide())
		try("reload", win.Reload())
	}
	try("send reset", win.Send(messages.Reset{}))

	try("setBounds", win.SetBounds(messages.Rect{}))
	try("blur", win.Blur())
	try("setResizable", win.SetResizable(false))

	if !m.singleWindow {
		try("hide", win.Hide())
	}
}

// Send forwards msg to the rendering surface. It reports false when no
// window is attached or delivery failed.
func (m *Manager) Send(msg messages.Message) bool {
	win := m.window()
	if win == nil {
		return false
	}
	err := win.Send(msg)
	try("send "+msg.Type(), err)
	return err == nil
}

func try(op string, err error) {
	if err != nil {
		logutil.WithComponent("overlay").Debug().Err(err).Str("op", op).Msg("window operation failed")
	}
}
