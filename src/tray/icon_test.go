package tray

import (
	"bytes"
	"encoding/binary"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIconPNGDecodes(t *testing.T) {
	img, err := png.Decode(bytes.NewReader(iconPNG()))
	require.NoError(t, err)
	assert.Equal(t, iconSize, img.Bounds().Dx())
	assert.Equal(t, iconSize, img.Bounds().Dy())
}

func TestWrapICO(t *testing.T) {
	p := iconPNG()
	ico := wrapICO(p, iconSize)

	require.Len(t, ico, 22+len(p))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(ico[2:4]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(ico[4:6]))
	assert.Equal(t, byte(iconSize), ico[6])
	assert.Equal(t, uint32(len(p)), binary.LittleEndian.Uint32(ico[14:18]))
	assert.Equal(t, uint32(22), binary.LittleEndian.Uint32(ico[18:22]))
	assert.Equal(t, p, ico[22:])
}

func TestUpdateTooltipBeforeRunIsNoop(t *testing.T) {
	assert.NotPanics(t, func() {
		UpdateTooltip("busy")
		SetAboutExtra("port 49500")
	})
}
