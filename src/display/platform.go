package display

import (
	"image"

	"github.com/go-vgo/robotgo"
)

type platformScreen struct {
	pointer func() (image.Point, bool)
}

// NewPlatformScreen enumerates monitors through robotgo. The pointer is read
// from the native windowing system where one is wired, else from robotgo.
func NewPlatformScreen() Screen {
	return &platformScreen{pointer: nativePointer}
}

func (s *platformScreen) CursorPoint() image.Point {
	if p, ok := s.pointer(); ok {
		return p
	}
	x, y := robotgo.Location()
	return image.Pt(x, y)
}

func (s *platformScreen) Monitors() []Monitor {
	n := robotgo.DisplaysNum()
	monitors := make([]Monitor, 0, n)
	for i := 0; i < n; i++ {
		x, y, w, h := robotgo.GetDisplayBounds(i)
		monitors = append(monitors, Monitor{
			ID:     i,
			Bounds: image.Rect(x, y, x+w, y+h),
			Scale:  robotgo.ScaleF(i),
		})
	}
	return monitors
}
