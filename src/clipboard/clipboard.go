package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"
	"sync"

	"golang.design/x/clipboard"
	"golang.org/x/image/draw"

	"screenshots/src/messages"
)

var (
	writeMu sync.Mutex
	ready   bool
)

// ErrNotInitialized is returned when Init has not succeeded.
var ErrNotInitialized = errors.New("clipboard not initialized")

func Init() error {
	writeMu.Lock()
	defer writeMu.Unlock()
	if err := clipboard.Init(); err != nil {
		return err
	}
	ready = true
	return nil
}

// Writer is the system clipboard. The zero value is ready to use after Init.
type Writer struct{}

// WriteImage decodes the PNG buffer, resizes it to the selection bounds and
// writes the result to the clipboard. A nil bounds keeps the decoded size.
func (Writer) WriteImage(buffer []byte, bounds *messages.Bounds) error {
	out, err := Prepare(buffer, bounds)
	if err != nil {
		return err
	}
	return Write(out)
}

// Write performs a mutex-guarded clipboard write to prevent corruption under parallel writes.
func Write(pngBytes []byte) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	if !ready {
		return ErrNotInitialized
	}
	clipboard.Write(clipboard.FmtImage, pngBytes)
	return nil
}

// Prepare returns PNG bytes of the buffer resized to bounds.
func Prepare(buffer []byte, bounds *messages.Bounds) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(buffer))
	if err != nil {
		return nil, fmt.Errorf("decode selection: %w", err)
	}
	size := TargetSize(img.Bounds().Size(), bounds)
	if size != img.Bounds().Size() {
		dst := image.NewRGBA(image.Rectangle{Max: size})
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
		img = dst
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode selection: %w", err)
	}
	return buf.Bytes(), nil
}

// TargetSize is the pixel size the clipboard image is written at.
func TargetSize(decoded image.Point, bounds *messages.Bounds) image.Point {
	if bounds == nil {
		return decoded
	}
	w := int(math.Round(bounds.Width))
	h := int(math.Round(bounds.Height))
	if w <= 0 || h <= 0 {
		return decoded
	}
	return image.Pt(w, h)
}
