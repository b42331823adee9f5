package surface

import (
	"screenshots/src/messages"
	"screenshots/src/overlay"
)

// remoteWindow drives the native window hosting the surface by sending it
// window commands.
type remoteWindow struct {
	s *Server
}

// Window returns the overlay window backed by the connected surface.
func (s *Server) Window() overlay.Window { return remoteWindow{s: s} }

func (w remoteWindow) cmd(op string) messages.WindowCommand {
	return messages.WindowCommand{Op: op}
}

func (w remoteWindow) SetResizable(resizable bool) error {
	c := w.cmd(messages.OpSetResizable)
	c.Flag = resizable
	return w.s.Send(c)
}

func (w remoteWindow) SetAlwaysOnTop(on bool, level overlay.Level) error {
	c := w.cmd(messages.OpSetAlwaysOnTop)
	c.Flag, c.Level = on, string(level)
	return w.s.Send(c)
}

func (w remoteWindow) SetVisibleOnAllWorkspaces(visible bool) error {
	c := w.cmd(messages.OpSetVisibleOnAllWorkspaces)
	c.Flag = visible
	return w.s.Send(c)
}

func (w remoteWindow) SetKiosk(on bool) error {
	c := w.cmd(messages.OpSetKiosk)
	c.Flag = on
	return w.s.Send(c)
}

func (w remoteWindow) SetBounds(r messages.Rect) error {
	c := w.cmd(messages.OpSetBounds)
	c.Bounds = &r
	return w.s.Send(c)
}

func (w remoteWindow) Show() error   { return w.s.Send(w.cmd(messages.OpShow)) }
func (w remoteWindow) Hide() error   { return w.s.Send(w.cmd(messages.OpHide)) }
func (w remoteWindow) Blur() error   { return w.s.Send(w.cmd(messages.OpBlur)) }
func (w remoteWindow) Reload() error { return w.s.Send(w.cmd(messages.OpReload)) }

func (w remoteWindow) Send(msg messages.Message) error { return w.s.Send(msg) }
