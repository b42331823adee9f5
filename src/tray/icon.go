package tray

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"runtime"
)

const iconSize = 32

var (
	selectionBlue = color.RGBA{R: 0x00, G: 0x78, B: 0xd4, A: 0xff}
	handleGrey    = color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
)

// Icon returns the tray icon in the format the platform expects: ICO on
// Windows, PNG elsewhere.
func Icon() []byte {
	p := iconPNG()
	if runtime.GOOS == "windows" {
		return wrapICO(p, iconSize)
	}
	return p
}

// iconPNG draws a dashed selection rectangle with corner handles.
func iconPNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	const lo, hi = 4, iconSize - 5
	for i := lo; i <= hi; i++ {
		if (i/3)%2 == 0 {
			img.Set(i, lo, selectionBlue)
			img.Set(i, hi, selectionBlue)
			img.Set(lo, i, selectionBlue)
			img.Set(hi, i, selectionBlue)
		}
	}
	for _, c := range []image.Point{{lo, lo}, {hi, lo}, {lo, hi}, {hi, hi}} {
		for dy := -2; dy <= 2; dy++ {
			for dx := -2; dx <= 2; dx++ {
				img.Set(c.X+dx, c.Y+dy, handleGrey)
			}
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

// wrapICO embeds a PNG in a single-image ICO container.
func wrapICO(pngData []byte, size int) []byte {
	var buf bytes.Buffer
	le := binary.LittleEndian
	_ = binary.Write(&buf, le, [3]uint16{0, 1, 1}) // reserved, type icon, count
	dim := byte(size)
	if size >= 256 {
		dim = 0
	}
	// width, height, palette size, reserved
	buf.Write([]byte{dim, dim, 0, 0})
	// planes, bits per pixel
	_ = binary.Write(&buf, le, [2]uint16{1, 32})
	// data size, data offset
	_ = binary.Write(&buf, le, [2]uint32{uint32(len(pngData)), 6 + 16})
	buf.Write(pngData)
	return buf.Bytes()
}
