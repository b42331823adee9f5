//go:build windows

package filesave

import (
	"context"
	"fmt"
	"path/filepath"
	"unicode/utf16"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

type nativeDialog struct{}

// Native returns the platform's own save dialog, if it has one.
func Native() (Prompter, bool) { return nativeDialog{}, true }

func (nativeDialog) PromptSavePath(ctx context.Context, defaultPath string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	buf := make([]uint16, windows.MAX_LONG_PATH)
	copy(buf, utf16.Encode([]rune(defaultPath)))

	filter := utf16.Encode([]rune("PNG Image (*.png)\x00*.png\x00\x00"))
	defExt := utf16.Encode([]rune("png\x00"))

	var ofn win.OPENFILENAME
	ofn.LStructSize = uint32(unsafe.Sizeof(ofn))
	ofn.HwndOwner = win.GetForegroundWindow()
	ofn.LpstrFilter = &filter[0]
	ofn.NFilterIndex = 1
	ofn.LpstrFile = &buf[0]
	ofn.NMaxFile = uint32(len(buf))
	ofn.LpstrDefExt = &defExt[0]
	ofn.Flags = win.OFN_OVERWRITEPROMPT | win.OFN_PATHMUSTEXIST | win.OFN_NOCHANGEDIR

	if dir := filepath.Dir(defaultPath); dir != "." {
		initial := utf16.Encode([]rune(dir + "\x00"))
		ofn.LpstrInitialDir = &initial[0]
	}

	if !win.GetSaveFileName(&ofn) {
		if code := win.CommDlgExtendedError(); code != 0 {
			return "", false, fmt.Errorf("save dialog failed: 0x%x", code)
		}
		return "", false, nil
	}
	path := windows.UTF16ToString(buf)
	return path, path != "", nil
}
