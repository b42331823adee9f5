// Package session coordinates one capture session at a time: it resolves the
// display, grabs a frame, presents the overlay and turns the surface's
// terminal outcome into a clipboard write, a file save or nothing.
package session

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"screenshots/src/clipboard"
	"screenshots/src/display"
	"screenshots/src/events"
	"screenshots/src/filesave"
	"screenshots/src/lang"
	"screenshots/src/logutil"
	"screenshots/src/messages"
	"screenshots/src/overlay"
	"screenshots/src/screenshot"
)

type DisplayResolver interface {
	Resolve() (display.Display, error)
}

type FrameAcquirer interface {
	Capture(ctx context.Context, d display.Display) ([]byte, error)
}

type ClipboardWriter interface {
	WriteImage(buffer []byte, bounds *messages.Bounds) error
}

type Options struct {
	// Lang is pushed to the surface once it reports ready.
	Lang *lang.Lang
	// SingleWindow keeps the overlay mapped at zero size between sessions.
	// The zero value hides it on every reset; config.Load turns it on
	// unless SINGLE_WINDOW says otherwise.
	SingleWindow bool

	Resolver  DisplayResolver
	Acquirer  FrameAcquirer
	Window    overlay.Window
	Quirks    overlay.Quirks
	Clipboard ClipboardWriter
	Prompter  filesave.Prompter
	Fs        afero.Fs
	// SaveDir prefixes the suggested file name. Empty leaves the prompt's
	// own default directory.
	SaveDir string
	Now     func() time.Time
}

// Controller is driven from a single goroutine. MarkReady may be called from
// any goroutine.
type Controller struct {
	win       *overlay.Manager
	bus       *events.Bus
	ready     *Latch
	resolver  DisplayResolver
	acquirer  FrameAcquirer
	clipboard ClipboardWriter
	prompter  filesave.Prompter
	fs        afero.Fs
	saveDir   string
	now       func() time.Time

	mu        sync.Mutex
	imageURL  string
	sessionID string
	inFlight  bool

	langMu      sync.Mutex
	pendingLang *lang.Lang
}

func New(opts Options) *Controller {
	c := &Controller{
		win:       overlay.NewManager(overlay.Options{Quirks: opts.Quirks, SingleWindow: opts.SingleWindow}),
		bus:       events.NewBus(),
		ready:     NewLatch(),
		resolver:  opts.Resolver,
		acquirer:  opts.Acquirer,
		clipboard: opts.Clipboard,
		prompter:  opts.Prompter,
		fs:        opts.Fs,
		saveDir:   opts.SaveDir,
		now:       opts.Now,
	}
	if c.resolver == nil {
		c.resolver = display.NewResolver(nil)
	}
	if c.acquirer == nil {
		c.acquirer = screenshot.NewAcquirer(nil, nil)
	}
	if c.clipboard == nil {
		c.clipboard = clipboard.Writer{}
	}
	if c.fs == nil {
		c.fs = afero.NewOsFs()
	}
	if c.now == nil {
		c.now = time.Now
	}
	if opts.Lang != nil {
		l := *opts.Lang
		c.pendingLang = &l
	}
	if opts.Window != nil {
		c.win.Attach(opts.Window)
	}
	return c
}

// Events returns the bus the embedder registers outcome handlers on.
func (c *Controller) Events() *events.Bus { return c.bus }

// Active reports whether a session is open.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.imageURL != ""
}

// Ready exposes the surface readiness latch.
func (c *Controller) Ready() *Latch { return c.ready }

// StartCapture opens a session on the display under the pointer. It does
// nothing while another session is open or being opened, or when no window
// is attached. Resolution and acquisition errors are returned before the
// window is touched.
func (c *Controller) StartCapture(ctx context.Context) error {
	c.mu.Lock()
	if c.imageURL != "" || c.inFlight || !c.win.Present() {
		c.mu.Unlock()
		return nil
	}
	c.inFlight = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	d, err := c.resolver.Resolve()
	if err != nil {
		return fmt.Errorf("resolve display: %w", err)
	}

	type frame struct {
		data []byte
		err  error
	}
	frames := make(chan frame, 1)
	go func() {
		data, err := c.acquirer.Capture(ctx, d)
		frames <- frame{data: data, err: err}
	}()

	if err := c.ready.Wait(ctx); err != nil {
		return fmt.Errorf("wait for surface: %w", err)
	}
	var f frame
	select {
	case f = <-frames:
	case <-ctx.Done():
		return fmt.Errorf("capture display %d: %w", d.ID, ctx.Err())
	}
	if f.err != nil {
		return fmt.Errorf("capture display %d: %w", d.ID, f.err)
	}

	url := screenshot.DataURL(f.data)
	id := uuid.NewString()
	c.mu.Lock()
	c.imageURL = url
	c.sessionID = id
	c.mu.Unlock()

	logutil.WithComponent("session").Info().
		Str("session", id).
		Int("display", d.ID).
		Int("width", d.Width).
		Int("height", d.Height).
		Float64("scale", d.ScaleFactor).
		Int("bytes", len(f.data)).
		Msg("capture started")

	c.win.Position(d)
	c.win.Send(messages.Capture{Display: d, Image: url})
	return nil
}

// EndCapture closes the session and resets the window. It is safe to call
// at any time and any number of times.
func (c *Controller) EndCapture() {
	c.mu.Lock()
	id := c.sessionID
	c.imageURL = ""
	c.sessionID = ""
	c.mu.Unlock()

	if id != "" {
		logutil.WithComponent("session").Info().Str("session", id).Msg("capture ended")
	}
	c.win.Reset()
}

// SetLang patches the surface's strings. Patches made before the surface is
// ready are merged and delivered when it becomes ready.
func (c *Controller) SetLang(patch lang.Lang) {
	c.langMu.Lock()
	defer c.langMu.Unlock()
	if !c.ready.Done() {
		merged := patch
		if c.pendingLang != nil {
			merged = c.pendingLang.Merge(patch)
		}
		c.pendingLang = &merged
		return
	}
	c.win.Send(messages.SetLanguage{Lang: patch})
}

// MarkReady records the surface's one-time ready signal. Later calls are
// ignored.
func (c *Controller) MarkReady() {
	c.langMu.Lock()
	defer c.langMu.Unlock()
	if !c.ready.Resolve() {
		return
	}
	logutil.WithComponent("session").Info().Msg("surface ready")
	if c.pendingLang != nil {
		c.win.Send(messages.SetLanguage{Lang: *c.pendingLang})
		c.pendingLang = nil
	}
}

// Close drops the window. Every later window operation is a no-op.
func (c *Controller) Close() {
	c.mu.Lock()
	c.imageURL = ""
	c.sessionID = ""
	c.mu.Unlock()
	c.win.Close()
}

// Handle applies one inbound surface message.
func (c *Controller) Handle(ctx context.Context, msg messages.Message) {
	switch m := msg.(type) {
	case messages.Ready:
		c.MarkReady()
	case messages.OK:
		c.handleOK(m)
	case messages.Cancel:
		c.handleCancel()
	case messages.Save:
		c.handleSave(ctx, m)
	default:
		logutil.WithComponent("session").Debug().Str("type", msg.Type()).Msg("ignoring message")
	}
}

func (c *Controller) handleOK(m messages.OK) {
	if c.bus.DispatchOK(m.Buffer, m.Data) {
		return
	}
	if err := c.clipboard.WriteImage(m.Buffer, m.Data.Bounds); err != nil {
		logutil.WithComponent("session").Error().Err(err).Msg("clipboard write failed")
	}
	c.EndCapture()
}

func (c *Controller) handleCancel() {
	if c.bus.DispatchCancel() {
		return
	}
	c.EndCapture()
}

func (c *Controller) handleSave(ctx context.Context, m messages.Save) {
	if c.bus.DispatchSave(m.Buffer, m.Data) || !c.win.Present() {
		return
	}
	log := logutil.WithComponent("session")
	if c.prompter == nil {
		log.Warn().Msg("save requested but no save prompt is available")
		return
	}

	defaultPath := filesave.Filename(c.now())
	if c.saveDir != "" {
		defaultPath = filepath.Join(c.saveDir, defaultPath)
	}
	path, ok, err := c.prompter.PromptSavePath(ctx, defaultPath)
	if err != nil {
		log.Error().Err(err).Msg("save prompt failed")
		return
	}
	// the window may have been closed while the prompt was up
	if !c.win.Present() || !ok || path == "" {
		return
	}
	if err := filesave.Write(c.fs, path, m.Buffer); err != nil {
		log.Error().Err(err).Str("path", path).Msg("save failed")
		return
	}
	log.Info().Str("path", path).Int("bytes", len(m.Buffer)).Msg("saved capture")
	c.EndCapture()
}
