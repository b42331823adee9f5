// Package screenshot acquires a still frame of one display. A primary
// backend captures the display directly; when it reports failure, screen
// sources are enumerated from a secondary backend and matched to the display.
package screenshot

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strconv"
	"strings"

	"screenshots/src/display"
	"screenshots/src/logutil"
)

// ErrSourceNotFound is returned when the fallback cannot match any source to
// the requested display.
var ErrSourceNotFound = errors.New("capture source not found")

// Result is what the primary backend reports: either a frame or the reason
// it could not produce one.
type Result struct {
	Image  []byte
	Reason error
}

// OK reports whether the result carries a frame.
func (r Result) OK() bool { return r.Reason == nil && len(r.Image) > 0 }

// Failed builds a failure result.
func Failed(format string, args ...any) Result {
	return Result{Reason: fmt.Errorf(format, args...)}
}

// Primary grabs one PNG-encoded frame of a display by id.
type Primary interface {
	Grab(ctx context.Context, displayID int) Result
}

// Source is one capturable screen as the fallback backend sees it.
type Source struct {
	// ID is the composite identifier, "screen:<display id>:<n>".
	ID string
	// DisplayID is the platform display identifier; may be empty.
	DisplayID string
	Thumbnail image.Image
}

// SourceLister enumerates screen sources with thumbnails scaled to size.
type SourceLister interface {
	Sources(ctx context.Context, size image.Point) ([]Source, error)
}

// Acquirer captures displays with the primary backend and falls back to
// source enumeration.
type Acquirer struct {
	primary  Primary
	fallback SourceLister
}

// NewAcquirer wires the two strategies. Nil arguments select the platform
// backends.
func NewAcquirer(primary Primary, fallback SourceLister) *Acquirer {
	if primary == nil {
		primary = DisplayCapturer{}
	}
	if fallback == nil {
		fallback = RobotgoSources{}
	}
	return &Acquirer{primary: primary, fallback: fallback}
}

// Capture returns a PNG-encoded frame of d.
func (a *Acquirer) Capture(ctx context.Context, d display.Display) ([]byte, error) {
	res := a.primary.Grab(ctx, d.ID)
	if res.OK() {
		return res.Image, nil
	}
	logger := logutil.WithComponent("screenshot")
	logger.Warn().Err(res.Reason).Int("display", d.ID).Msg("primary capture failed, enumerating sources")

	sources, err := a.fallback.Sources(ctx, image.Pt(d.Width, d.Height))
	if err != nil {
		return nil, fmt.Errorf("enumerate capture sources: %w", err)
	}
	src, ok := matchSource(sources, d.ID)
	if !ok {
		return nil, fmt.Errorf("display %d: %w", d.ID, ErrSourceNotFound)
	}
	if len(sources) == 1 && !sourceMatches(src, d.ID) {
		// The only source is trusted even when its id disagrees; on a
		// single-display host with mismatched ids this may be the wrong frame.
		logger.Warn().Str("source", src.ID).Int("display", d.ID).Msg("single capture source does not match display id, using it anyway")
	}
	if src.Thumbnail == nil {
		return nil, fmt.Errorf("source %s has no thumbnail", src.ID)
	}
	return EncodePNG(src.Thumbnail)
}

func matchSource(sources []Source, id int) (Source, bool) {
	if len(sources) == 1 {
		return sources[0], true
	}
	for _, s := range sources {
		if sourceMatches(s, id) {
			return s, true
		}
	}
	return Source{}, false
}

func sourceMatches(s Source, id int) bool {
	idStr := strconv.Itoa(id)
	return s.DisplayID == idStr || strings.HasPrefix(s.ID, "screen:"+idStr+":")
}

// SourceID builds the composite identifier used by RobotgoSources.
func SourceID(displayID int) string {
	return fmt.Sprintf("screen:%d:0", displayID)
}

// EncodePNG encodes img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURL renders PNG bytes as a data URL for the rendering surface.
func DataURL(pngBytes []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
}
