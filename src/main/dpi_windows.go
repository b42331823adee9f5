//go:build windows

package main

import (
	"golang.org/x/sys/windows"

	"screenshots/src/logutil"
)

const processPerMonitorDPIAware = 2

// enableDPIAwareness makes display metrics report device pixels so scale
// factors come out right on mixed-DPI setups.
func enableDPIAwareness() {
	log := logutil.WithComponent("dpi")

	shcore := windows.NewLazySystemDLL("Shcore.dll")
	setProcessDpiAwareness := shcore.NewProc("SetProcessDpiAwareness")
	if err := setProcessDpiAwareness.Find(); err == nil {
		ret, _, _ := setProcessDpiAwareness.Call(uintptr(processPerMonitorDPIAware))
		if ret == 0 {
			log.Debug().Msg("per-monitor DPI awareness enabled")
		} else {
			log.Warn().Uint64("hresult", uint64(ret)).Msg("SetProcessDpiAwareness failed")
		}
		return
	}

	user32 := windows.NewLazySystemDLL("user32.dll")
	setProcessDPIAware := user32.NewProc("SetProcessDPIAware")
	if err := setProcessDPIAware.Find(); err != nil {
		log.Warn().Msg("no DPI awareness API available")
		return
	}
	if ret, _, _ := setProcessDPIAware.Call(); ret == 0 {
		log.Warn().Msg("SetProcessDPIAware failed")
	}
}
