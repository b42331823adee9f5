package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeOKFromSurface(t *testing.T) {
	raw := `{"type":"ok","payload":{"buffer":"iVBORw==","data":{"bounds":{"x":10,"y":20.5,"width":300,"height":200},"display":{"id":1,"x":0,"y":0,"width":3840,"height":2160,"scaleFactor":2}}}}`

	msg, err := Decode([]byte(raw))
	require.NoError(t, err)

	ok, isOK := msg.(OK)
	require.True(t, isOK, "expected OK, got %T", msg)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, ok.Buffer)
	require.NotNil(t, ok.Data.Bounds)
	assert.Equal(t, 20.5, ok.Data.Bounds.Y)
	assert.Equal(t, 2.0, ok.Data.Display.ScaleFactor)
}

func TestDecodeSaveWithoutBounds(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"save","payload":{"buffer":"","data":{"bounds":null,"display":{"id":2}}}}`))
	require.NoError(t, err)
	save := msg.(Save)
	assert.Nil(t, save.Data.Bounds)
	assert.Equal(t, 2, save.Data.Display.ID)
}

func TestDecodePayloadlessMessages(t *testing.T) {
	for _, raw := range []string{`{"type":"ready"}`, `{"type":"cancel","payload":null}`} {
		msg, err := Decode([]byte(raw))
		require.NoError(t, err, raw)
		assert.NotNil(t, msg)
	}
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"type":"selfDestruct"}`))
	assert.True(t, errors.Is(err, ErrUnknownType))
}

func TestEncodeWindowCommand(t *testing.T) {
	data, err := Encode(WindowCommand{Op: OpSetBounds, Bounds: &Rect{Width: 1920, Height: 1080}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"window","payload":{"op":"setBounds","bounds":{"x":0,"y":0,"width":1920,"height":1080}}}`, string(data))
}
