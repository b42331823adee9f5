// Package tray shows the resident's notification-area icon with Capture and
// Quit entries.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"screenshots/src/logutil"
)

const defaultTitle = "Screenshots"

type Options struct {
	Tooltip   string
	OnCapture func()
	// OnQuit runs after the tray has been torn down.
	OnQuit func()
}

var (
	mu      sync.Mutex
	running bool
	about   *systray.MenuItem
)

// Run shows the tray icon and blocks until Quit. It must be called from the
// main goroutine on platforms whose UI toolkit requires it.
func Run(opts Options) {
	systray.Run(func() { onReady(opts) }, func() { onExit(opts) })
}

// Quit removes the icon and makes Run return.
func Quit() { systray.Quit() }

func onReady(opts Options) {
	tooltip := opts.Tooltip
	if tooltip == "" {
		tooltip = defaultTitle
	}
	systray.SetIcon(Icon())
	systray.SetTitle(defaultTitle)
	systray.SetTooltip(tooltip)

	mCapture := systray.AddMenuItem("Capture", "Capture the screen under the pointer")
	systray.AddSeparator()
	mAbout := systray.AddMenuItem(defaultTitle, "")
	mAbout.Disable()
	mQuit := systray.AddMenuItem("Quit", "Quit the application")

	mu.Lock()
	running = true
	about = mAbout
	mu.Unlock()

	go func() {
		for {
			select {
			case <-mCapture.ClickedCh:
				logutil.WithComponent("tray").Debug().Msg("capture clicked")
				if opts.OnCapture != nil {
					opts.OnCapture()
				}
			case <-mQuit.ClickedCh:
				systray.Quit()
				return
			}
		}
	}()
}

func onExit(opts Options) {
	mu.Lock()
	running = false
	about = nil
	mu.Unlock()
	if opts.OnQuit != nil {
		opts.OnQuit()
	}
}

// UpdateTooltip changes the tooltip. It does nothing before Run.
func UpdateTooltip(text string) {
	mu.Lock()
	defer mu.Unlock()
	if running {
		systray.SetTooltip(text)
	}
}

// SetAboutExtra shows extra status text in the disabled info entry.
func SetAboutExtra(text string) {
	mu.Lock()
	defer mu.Unlock()
	if about != nil {
		about.SetTitle(defaultTitle + " - " + text)
	}
}
