package screenshot

import (
	"context"
	"image"
	"strconv"

	"github.com/go-vgo/robotgo"
	"github.com/kbinani/screenshot"
	"golang.org/x/image/draw"
)

// DisplayCapturer is the primary backend. Display ids are the host's
// enumeration indices.
type DisplayCapturer struct{}

func (DisplayCapturer) Grab(ctx context.Context, displayID int) Result {
	if err := ctx.Err(); err != nil {
		return Result{Reason: err}
	}
	n := screenshot.NumActiveDisplays()
	if displayID < 0 || displayID >= n {
		return Failed("no capture handle for display %d (%d active)", displayID, n)
	}
	img, err := screenshot.CaptureDisplay(displayID)
	if err != nil {
		return Failed("capture display %d: %v", displayID, err)
	}
	if img == nil {
		return Failed("capture display %d returned no image", displayID)
	}
	data, err := EncodePNG(img)
	if err != nil {
		return Result{Reason: err}
	}
	return Result{Image: data}
}

// RobotgoSources is the fallback backend: one source per display, captured
// through robotgo and scaled to the requested thumbnail size.
type RobotgoSources struct{}

func (RobotgoSources) Sources(ctx context.Context, size image.Point) ([]Source, error) {
	n := robotgo.DisplaysNum()
	sources := make([]Source, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		x, y, w, h := robotgo.GetDisplayBounds(i)
		img, err := robotgo.CaptureImg(x, y, w, h, i)
		if err != nil {
			return nil, err
		}
		sources = append(sources, Source{
			ID:        SourceID(i),
			DisplayID: strconv.Itoa(i),
			Thumbnail: Thumbnail(img, size),
		})
	}
	return sources, nil
}

// Thumbnail scales img to size. A zero size keeps the original.
func Thumbnail(img image.Image, size image.Point) image.Image {
	if img == nil || size.X <= 0 || size.Y <= 0 || img.Bounds().Size() == size {
		return img
	}
	dst := image.NewRGBA(image.Rectangle{Max: size})
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
