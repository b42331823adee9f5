//go:build linux

package display

import (
	"image"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"screenshots/src/logutil"
)

// nativePointer asks the X server for the pointer position on the default
// root window. It reports false when no X connection can be made (Wayland
// without XWayland, headless CI).
func nativePointer() (image.Point, bool) {
	conn, err := xgb.NewConn()
	if err != nil {
		logutil.WithComponent("display").Debug().Err(err).Msg("X11 unavailable, using robotgo pointer")
		return image.Point{}, false
	}
	defer conn.Close()

	root := xproto.Setup(conn).DefaultScreen(conn).Root
	reply, err := xproto.QueryPointer(conn, root).Reply()
	if err != nil {
		logutil.WithComponent("display").Debug().Err(err).Msg("QueryPointer failed")
		return image.Point{}, false
	}
	return image.Pt(int(reply.RootX), int(reply.RootY)), true
}
