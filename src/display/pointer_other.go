//go:build !linux

package display

import "image"

func nativePointer() (image.Point, bool) { return image.Point{}, false }
