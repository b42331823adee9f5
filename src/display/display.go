// Package display resolves the monitor under the pointer and reports its
// geometry in device pixels.
package display

import (
	"errors"
	"image"
	"math"
)

// ErrNoDisplays means the host reported no monitors at all. It is a
// configuration error; callers should not retry.
var ErrNoDisplays = errors.New("no displays reported by host")

// Display describes one monitor. X, Y, Width and Height are device pixels,
// i.e. the logical bounds multiplied by ScaleFactor.
type Display struct {
	ID          int     `json:"id"`
	X           int     `json:"x"`
	Y           int     `json:"y"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	ScaleFactor float64 `json:"scaleFactor"`
}

// Monitor is a display as the host enumerates it, in logical coordinates.
type Monitor struct {
	ID     int
	Bounds image.Rectangle
	Scale  float64
}

// Screen is the platform view the resolver needs.
type Screen interface {
	CursorPoint() image.Point
	Monitors() []Monitor
}

// Resolver picks the display nearest to the pointer.
type Resolver struct {
	screen Screen
}

// NewResolver returns a resolver over the given screen. A nil screen selects
// the platform implementation.
func NewResolver(screen Screen) *Resolver {
	if screen == nil {
		screen = NewPlatformScreen()
	}
	return &Resolver{screen: screen}
}

// Resolve reads the pointer location and returns the display nearest to it.
// Geometry is multiplied by the display's scale factor and floored per axis.
func (r *Resolver) Resolve() (Display, error) {
	monitors := r.screen.Monitors()
	if len(monitors) == 0 {
		return Display{}, ErrNoDisplays
	}
	m := Nearest(monitors, r.screen.CursorPoint())
	return Scaled(m), nil
}

// Scaled converts a monitor's logical bounds into device pixels.
func Scaled(m Monitor) Display {
	s := m.Scale
	if s <= 0 {
		s = 1
	}
	b := m.Bounds
	return Display{
		ID:          m.ID,
		X:           int(math.Floor(float64(b.Min.X) * s)),
		Y:           int(math.Floor(float64(b.Min.Y) * s)),
		Width:       int(math.Floor(float64(b.Dx()) * s)),
		Height:      int(math.Floor(float64(b.Dy()) * s)),
		ScaleFactor: s,
	}
}

// Nearest returns the monitor containing p, or the one whose bounds are
// closest to p. monitors must not be empty.
func Nearest(monitors []Monitor, p image.Point) Monitor {
	best := monitors[0]
	bestDist := math.MaxInt
	for _, m := range monitors {
		if p.In(m.Bounds) {
			return m
		}
		if d := distance2(m.Bounds, p); d < bestDist {
			best, bestDist = m, d
		}
	}
	return best
}

func distance2(r image.Rectangle, p image.Point) int {
	dx := 0
	switch {
	case p.X < r.Min.X:
		dx = r.Min.X - p.X
	case p.X >= r.Max.X:
		dx = p.X - r.Max.X + 1
	}
	dy := 0
	switch {
	case p.Y < r.Min.Y:
		dy = r.Min.Y - p.Y
	case p.Y >= r.Max.Y:
		dy = p.Y - r.Max.Y + 1
	}
	return dx*dx + dy*dy
}
